package chart

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"strconv"
	"strings"
)

//go:embed svg.tmpl
var svgSource string

var svgTemplate = template.Must(template.New("chart").Funcs(template.FuncMap{
	"num": func(v float64) string {
		return strconv.FormatFloat(v, 'f', 2, 64)
	},
	"add": func(a, b float64) float64 { return a + b },
	"sub": func(a, b float64) float64 { return a - b },
	"plotRight": func(c Chart) float64 {
		return c.Layout.Width - c.Layout.MarginRight
	},
	"plotBottom": func(c Chart) float64 {
		return c.Layout.Height - c.Layout.MarginBottom
	},
	"line": func(c Chart) string {
		return polyline(c.Points)
	},
	"area": func(c Chart) string {
		if len(c.Points) == 0 {
			return ""
		}
		bottom := strconv.FormatFloat(c.Layout.Height-c.Layout.MarginBottom, 'f', 2, 64)
		first := strconv.FormatFloat(c.Points[0].X, 'f', 2, 64)
		last := strconv.FormatFloat(c.Points[len(c.Points)-1].X, 'f', 2, 64)
		return first + "," + bottom + " " + polyline(c.Points) + " " + last + "," + bottom
	},
}).Parse(svgSource))

func polyline(points []Point) string {
	parts := make([]string, 0, len(points))
	for _, p := range points {
		parts = append(parts, fmt.Sprintf("%.2f,%.2f", p.X, p.Y))
	}
	return strings.Join(parts, " ")
}

// SVG renders the chart as an inline SVG element. An empty chart renders nothing.
func (c Chart) SVG() (template.HTML, error) {
	if c.Empty() {
		return "", nil
	}
	var buf bytes.Buffer
	if err := svgTemplate.Execute(&buf, c); err != nil {
		return "", fmt.Errorf("failed to render chart: %w", err)
	}
	// #nosec G203 -- produced by html/template
	return template.HTML(buf.String()), nil
}
