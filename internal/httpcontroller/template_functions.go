// internal/httpcontroller/template_functions.go
package httpcontroller

import (
	"html/template"
)

// GetTemplateFunctions returns a map of functions that can be used in templates
func (s *Server) GetTemplateFunctions() template.FuncMap {
	return template.FuncMap{
		"t":             s.Renderer.T,
		"RenderContent": s.RenderContent,
		"add":           addFunc,
	}
}

func addFunc(a, b int) int { return a + b }
