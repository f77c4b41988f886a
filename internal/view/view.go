// Package view renders the dashboard page and its partials.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"time"

	"github.com/iyhunko/price-alerts-dashboard/internal/dashboard"
)

const (
	// PageTemplate renders the whole document.
	PageTemplate = "page"
	// LayoutTemplate renders everything inside the dashboard container.
	LayoutTemplate = "layout"
	// SidebarTemplate renders the product list.
	SidebarTemplate = "sidebar"
	// PanelTemplate renders the main panel.
	PanelTemplate = "panel"
)

const updatedLayout = "1/2/2006, 3:04:05 PM"

//go:embed templates/*.tmpl
var templateFS embed.FS

// Data is what every template is executed with.
type Data struct {
	State   dashboard.State
	PushKey string
	// PageID is set on full pages; the client sends it back with every call.
	PageID string
}

// TemplateFuncs returns the functions the dashboard templates use.
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"expanded":  expanded,
		"localTime": localTime,
		"chartSVG":  chartSVG,
	}
}

// expanded reports whether the sidebar shows full entries: desktop and not
// collapsed, or the open mobile menu.
func expanded(s dashboard.State) bool {
	if s.IsMobile {
		return s.MobileMenuOpen
	}
	return !s.SidebarCollapsed
}

func localTime(s dashboard.State, t time.Time) string {
	return s.TimeIn(t).Format(updatedLayout)
}

func chartSVG(s dashboard.State) template.HTML {
	svg, err := s.Chart().SVG()
	if err != nil {
		slog.Error("failed to render chart", slog.String("product_url", s.Selected), slog.Any("err", err))
		return ""
	}
	return svg
}

// Templates parses the embedded templates.
func Templates() (*template.Template, error) {
	t, err := template.New("dashboard").Funcs(TemplateFuncs()).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return t, nil
}

// Renderer executes named dashboard templates.
type Renderer struct {
	t *template.Template
}

// NewRenderer parses the templates once.
func NewRenderer() (*Renderer, error) {
	t, err := Templates()
	if err != nil {
		return nil, err
	}
	return &Renderer{t: t}, nil
}

// Render writes the named template. Output is buffered so a failing template writes nothing.
func (r *Renderer) Render(w io.Writer, name string, data Data) error {
	var buf bytes.Buffer
	if err := r.t.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}
