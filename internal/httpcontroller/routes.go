// internal/httpcontroller/routes.go
package httpcontroller

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/newsportal/reader/internal/httpcontroller/handlers"
)

// Embed the assets and views directories.
//
//go:embed assets
var AssetsFs embed.FS

//go:embed views/*.html
var ViewsFs embed.FS

// PageRouteConfig defines the structure for each page route.
type PageRouteConfig struct {
	Method  string
	Path    string
	Name    string
	Handler func(*handlers.Handlers, echo.Context) error
}

// pageRoutes lists the full-page routes of the front end.
var pageRoutes = []PageRouteConfig{
	{Method: http.MethodGet, Path: "/", Name: "index", Handler: (*handlers.Handlers).Index},
	{Method: http.MethodGet, Path: "/post/:slug", Name: "post", Handler: (*handlers.Handlers).Post},
	{Method: http.MethodGet, Path: "/tag/:slug", Name: "tag", Handler: (*handlers.Handlers).Tag},
	{Method: http.MethodGet, Path: "/tags", Name: "tags", Handler: (*handlers.Handlers).TagIndex},
}

// partialRoutes serve HTMX fragments, with a full-page fallback for plain requests.
var partialRoutes = []PageRouteConfig{
	{Method: http.MethodPost, Path: "/more", Name: "more", Handler: (*handlers.Handlers).LoadMore},
}

// initRoutes initializes the routes for the server.
func (s *Server) initRoutes() {
	for _, group := range [][]PageRouteConfig{pageRoutes, partialRoutes} {
		for _, route := range group {
			handler := route.Handler
			s.Echo.Add(route.Method, route.Path, s.Handlers.WithErrorHandling(func(c echo.Context) error {
				return handler(s.Handlers, c)
			})).Name = route.Name
		}
	}

	s.Echo.GET("/healthz", s.Handlers.Healthz)

	assetsFS, err := fs.Sub(AssetsFs, "assets")
	if err != nil {
		// embed guarantees the directory exists
		panic(err)
	}
	customFileServer(s.Echo, assetsFS, "assets")
}
