package render

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys. The English text doubles as the key.
const (
	MsgLoading       = "Loading…"
	MsgError         = "Error: %s"
	MsgLoadMore      = "Load more"
	MsgPostNotFound  = "Post not found."
	MsgTagHeading    = "Tag: %s"
	MsgNoPosts       = "No posts."
	MsgTags          = "Tags"
	MsgNoTags        = "No tags."
	MsgAllPosts      = "All posts"
	MsgPageNotFound  = "Page not found."
	MsgNetworkFailed = "could not reach the server"
	MsgHTTPFailed    = "server responded with status %d"
	MsgParseFailed   = "unexpected response from the server"
	MsgInvalid       = "invalid request"
	MsgUnknown       = "something went wrong"
	MsgAvailable     = "API available"
	MsgStatusError   = "API error (%d)"
	MsgUnreachable   = "API unreachable"
)

var russian = map[string]string{
	MsgLoading:       "Загрузка…",
	MsgError:         "Ошибка: %s",
	MsgLoadMore:      "Загрузить ещё",
	MsgPostNotFound:  "Пост не найден.",
	MsgTagHeading:    "Тег: %s",
	MsgNoPosts:       "Постов нет.",
	MsgTags:          "Теги",
	MsgNoTags:        "Тегов нет.",
	MsgAllPosts:      "Все посты",
	MsgPageNotFound:  "Страница не найдена.",
	MsgNetworkFailed: "сервер недоступен",
	MsgHTTPFailed:    "сервер вернул статус %d",
	MsgParseFailed:   "неожиданный ответ сервера",
	MsgInvalid:       "некорректный запрос",
	MsgUnknown:       "что-то пошло не так",
	MsgAvailable:     "API доступен",
	MsgStatusError:   "Ошибка API (%d)",
	MsgUnreachable:   "API недоступен",
}

var messages = buildCatalog()

func buildCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, ru := range russian {
		if err := b.SetString(language.English, key, key); err != nil {
			panic(err)
		}
		if err := b.SetString(language.Russian, key, ru); err != nil {
			panic(err)
		}
	}
	return b
}

// newPrinter returns a printer for tag, falling back to English.
func newPrinter(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag, message.Catalog(messages))
}
