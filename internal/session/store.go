// Package session keeps per-browser view state. A signed cookie carries the
// session id; the controllers themselves live in memory and expire after the
// configured TTL.
package session

import (
	"crypto/sha256"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/patrickmn/go-cache"

	"github.com/newsportal/reader/internal/conf"
	"github.com/newsportal/reader/internal/errors"
	"github.com/newsportal/reader/internal/feed"
	"github.com/newsportal/reader/internal/logging"
)

const (
	idKey          = "sid"
	defaultTTL     = 30 * time.Minute
	defaultCookie  = "reader_session"
	cleanupDivisor = 2
)

// View is the server-side state of one browser session. Each list view,
// identified by its filter key, owns a separate ListController so tabs showing
// different lists never page through each other's state.
type View struct {
	ID     string
	Detail *feed.DetailController

	src   feed.PostSource
	mu    sync.Mutex
	lists map[string]*feed.ListController
}

// List returns the controller of the list view for key, empty for all posts.
// A controller is created unmounted on first use.
func (v *View) List(key string) *feed.ListController {
	v.mu.Lock()
	defer v.mu.Unlock()

	lc, ok := v.lists[key]
	if !ok {
		lc = feed.NewListController(v.src)
		v.lists[key] = lc
	}
	return lc
}

// FindList returns the controller of the list view for key, or nil when the
// session never showed that list.
func (v *View) FindList(key string) *feed.ListController {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lists[key]
}

// Config configures a Store.
type Config struct {
	CookieName string
	Secret     string
	TTL        time.Duration
	Secure     bool
}

// ConfigFromSettings derives a store config from application settings.
func ConfigFromSettings(s *conf.SessionSettings) Config {
	return Config{
		CookieName: s.CookieName,
		Secret:     s.Secret,
		TTL:        s.TTL,
		Secure:     s.Secure,
	}
}

// Store maps session cookies to views.
type Store struct {
	name    string
	ttl     time.Duration
	cookies *sessions.CookieStore
	views   *cache.Cache
	src     feed.PostSource
	logger  *slog.Logger
}

// NewStore creates a store whose views read from src.
func NewStore(cfg Config, src feed.PostSource) (*Store, error) {
	if cfg.Secret == "" {
		return nil, errors.Newf("session secret is required").
			Component("session").
			Category(errors.CategoryConfiguration).
			Build()
	}
	if cfg.TTL <= 0 {
		cfg.TTL = defaultTTL
	}
	if cfg.CookieName == "" {
		cfg.CookieName = defaultCookie
	}

	cookies := sessions.NewCookieStore(sessionKey(cfg.Secret))
	cookies.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.TTL.Seconds()),
		Secure:   cfg.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	s := &Store{
		name:    cfg.CookieName,
		ttl:     cfg.TTL,
		cookies: cookies,
		views:   cache.New(cfg.TTL, cfg.TTL/cleanupDivisor),
		src:     src,
		logger:  logging.ForService("session"),
	}
	s.views.OnEvicted(func(id string, _ any) {
		s.logger.Debug("session expired", "session_id", id)
	})
	return s, nil
}

// Get returns the view for the request's session, creating one when the
// cookie is missing, invalid or refers to an expired view. The cookie is
// refreshed on every call so active sessions stay alive.
func (s *Store) Get(w http.ResponseWriter, r *http.Request) (*View, error) {
	sess, err := s.cookies.Get(r, s.name)
	if err != nil {
		// A cookie signed with another secret; start over with the fresh session.
		s.logger.Debug("discarding unreadable session cookie", "error", err)
	}

	id, _ := sess.Values[idKey].(string)
	view := s.lookup(id)
	if view == nil {
		view = s.newView()
		sess.Values[idKey] = view.ID
		s.logger.Debug("session created", "session_id", view.ID)
	}
	s.views.Set(view.ID, view, s.ttl)

	if err := sess.Save(r, w); err != nil {
		return nil, errors.New(err).
			Component("session").
			Category(errors.CategorySession).
			Context("operation", "save_cookie").
			Build()
	}
	return view, nil
}

// Count reports how many views are held in memory, including expired ones
// not yet cleaned up.
func (s *Store) Count() int {
	return s.views.ItemCount()
}

// Flush drops every view.
func (s *Store) Flush() {
	s.views.Flush()
}

func (s *Store) lookup(id string) *View {
	if id == "" {
		return nil
	}
	v, ok := s.views.Get(id)
	if !ok {
		return nil
	}
	view, _ := v.(*View)
	return view
}

func (s *Store) newView() *View {
	return &View{
		ID:     uuid.NewString(),
		Detail: feed.NewDetailController(s.src),
		src:    s.src,
		lists:  make(map[string]*feed.ListController),
	}
}

// sessionKey derives a 32 byte signing key from the configured secret.
func sessionKey(secret string) []byte {
	sum := sha256.Sum256([]byte(secret))
	return sum[:]
}
