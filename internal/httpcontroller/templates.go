// internal/httpcontroller/templates.go
package httpcontroller

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/newsportal/reader/internal/errors"
	"github.com/newsportal/reader/internal/httpcontroller/handlers"
	"github.com/newsportal/reader/internal/logging"
)

// rootTemplate is the page layout every full page is rendered through.
const rootTemplate = "root"

// TemplateRenderer is a custom HTML template renderer for Echo framework.
type TemplateRenderer struct {
	templates *template.Template
	logger    *slog.Logger
}

// newTemplateRenderer parses views/*.html from fsys. The set must define the
// root layout.
func newTemplateRenderer(fsys fs.FS, funcMap template.FuncMap) (*TemplateRenderer, error) {
	tmpl, err := template.New("").Funcs(funcMap).ParseFS(fsys, "views/*.html")
	if err != nil {
		return nil, errors.New(err).
			Component("http-controller").
			Category(errors.CategoryTemplate).
			Context("operation", "parse_templates").
			Build()
	}
	if tmpl.Lookup(rootTemplate) == nil {
		return nil, errors.Newf("template %q is not defined", rootTemplate).
			Component("http-controller").
			Category(errors.CategoryTemplate).
			Context("operation", "parse_templates").
			Build()
	}
	return &TemplateRenderer{
		templates: tmpl,
		logger:    logging.ForService("web").With("component", "templates"),
	}, nil
}

// Render renders a template with the given data. Output is buffered so a
// failing template never leaves a half-written page.
func (t *TemplateRenderer) Render(w io.Writer, name string, data any, c echo.Context) error {
	var buf bytes.Buffer
	if err := t.templates.ExecuteTemplate(&buf, name, data); err != nil {
		t.logger.Error("template execution failed", "template", name, "error", err)
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

// setupTemplateRenderer configures the template renderer for the server
func (s *Server) setupTemplateRenderer() error {
	renderer, err := newTemplateRenderer(ViewsFs, s.GetTemplateFunctions())
	if err != nil {
		return err
	}
	s.Echo.Renderer = renderer
	return nil
}

// RenderContent renders the content template named by the page data.
func (s *Server) RenderContent(data any) (template.HTML, error) {
	d, ok := data.(*handlers.RenderData)
	if !ok {
		return "", fmt.Errorf("invalid data type %T", data)
	}
	if d.Page == "" {
		return "", fmt.Errorf("no content template for path: %s", d.C.Path())
	}

	buf := new(bytes.Buffer)
	if err := s.Echo.Renderer.Render(buf, d.Page, d, d.C); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil //nolint:gosec // output of html/template
}
