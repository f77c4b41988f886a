// Package chart turns a product's price history into a line chart.
package chart

import (
	"math"
	"strconv"
	"time"

	"github.com/iyhunko/price-alerts-dashboard/internal/model"
)

// CompactBreakpoint is the viewport width below which the compact layout is used.
const CompactBreakpoint = 640

const (
	compactDateLayout = "Jan 02"
	fullDateLayout    = "01/02/2006"
	tooltipLayout     = "January 02, 2006 at 03:04 PM"

	tickCount  = 5
	rangeScale = 0.1
)

// Options describe the device the chart is rendered for.
type Options struct {
	ViewportWidth int
	Location      *time.Location
}

// Compact reports whether the options select the compact layout.
// An unknown width (0) renders the full layout.
func (o Options) Compact() bool {
	return o.ViewportWidth > 0 && o.ViewportWidth < CompactBreakpoint
}

func (o Options) location() *time.Location {
	if o.Location == nil {
		return time.UTC
	}
	return o.Location
}

// Layout holds the drawing dimensions for one mode.
type Layout struct {
	Width         float64
	Height        float64
	MarginTop     float64
	MarginRight   float64
	MarginBottom  float64
	MarginLeft    float64
	XFontSize     int
	YFontSize     int
	StrokeWidth   float64
	PointRadius   float64
	PointBorder   float64
	LabelRotation int
}

var (
	fullLayout = Layout{
		Width: 800, Height: 360,
		MarginTop: 16, MarginRight: 24, MarginBottom: 40, MarginLeft: 96,
		XFontSize: 12, YFontSize: 14,
		StrokeWidth: 3, PointRadius: 5, PointBorder: 3,
	}
	compactLayout = Layout{
		Width: 360, Height: 256,
		MarginTop: 8, MarginRight: 8, MarginBottom: 56, MarginLeft: 44,
		XFontSize: 10, YFontSize: 11,
		StrokeWidth: 2, PointRadius: 4, PointBorder: 2,
		LabelRotation: -45,
	}
)

// Point is one plotted price observation.
type Point struct {
	Label     string
	LocalTime string
	Name      string
	Price     float64
	Currency  string
	Available bool
	X, Y      float64
}

// Tooltip is the hover text of a point.
type Tooltip struct {
	Title string
	Lines []string
}

// Tooltip returns the point's name as title followed by date, price and availability lines.
func (p Point) Tooltip() Tooltip {
	availability := model.OutOfStockLabel
	if p.Available {
		availability = model.AvailableLabel
	}
	return Tooltip{
		Title: p.Name,
		Lines: []string{
			"Date: " + p.LocalTime,
			model.FormatPrice(p.Currency, p.Price),
			availability,
		},
	}
}

// Tick is a labelled y-axis grid line.
type Tick struct {
	Value float64
	Label string
	Y     float64
}

// Chart is a laid-out price chart, points ordered oldest to newest.
type Chart struct {
	Points   []Point
	Ticks    []Tick
	Compact  bool
	Currency string
	YMin     float64
	YMax     float64
	Layout   Layout
}

// Empty reports whether there is nothing to plot.
func (c Chart) Empty() bool {
	return len(c.Points) == 0
}

// Build lays out history, which is expected newest-first as returned by the store.
// Every record becomes exactly one point; nothing is aggregated or resampled.
func Build(history []model.PricePoint, opts Options) Chart {
	c := Chart{
		Compact: opts.Compact(),
		Layout:  fullLayout,
	}
	if c.Compact {
		c.Layout = compactLayout
	}
	if len(history) == 0 {
		return c
	}
	c.Currency = history[0].Currency

	loc := opts.location()
	dateLayout := fullDateLayout
	if c.Compact {
		dateLayout = compactDateLayout
	}

	ordered := model.Reversed(history)
	c.Points = make([]Point, 0, len(ordered))
	for _, rec := range ordered {
		ts := rec.Timestamp.In(loc)
		c.Points = append(c.Points, Point{
			Label:     ts.Format(dateLayout),
			LocalTime: ts.Format(tooltipLayout),
			Name:      rec.Name,
			Price:     rec.Price,
			Currency:  rec.Currency,
			Available: rec.Available(),
		})
	}

	c.YMin, c.YMax = paddedRange(c.Points)
	c.place()
	c.Ticks = c.ticks()
	return c
}

// paddedRange widens the data range by 10% of itself on both ends.
// Flat data gets a pad of 10% of the value (or 1) so the line is not drawn on the border.
func paddedRange(points []Point) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range points {
		lo = math.Min(lo, p.Price)
		hi = math.Max(hi, p.Price)
	}
	pad := (hi - lo) * rangeScale
	if pad == 0 {
		pad = math.Abs(hi) * rangeScale
		if pad == 0 {
			pad = 1
		}
	}
	return lo - pad, hi + pad
}

func (c *Chart) plotArea() (x0, y0, w, h float64) {
	l := c.Layout
	return l.MarginLeft, l.MarginTop, l.Width - l.MarginLeft - l.MarginRight, l.Height - l.MarginTop - l.MarginBottom
}

func (c *Chart) place() {
	x0, _, w, _ := c.plotArea()
	n := len(c.Points)
	for i := range c.Points {
		if n == 1 {
			c.Points[i].X = x0 + w/2
		} else {
			c.Points[i].X = x0 + w*float64(i)/float64(n-1)
		}
		c.Points[i].Y = c.yFor(c.Points[i].Price)
	}
}

func (c *Chart) yFor(v float64) float64 {
	_, y0, _, h := c.plotArea()
	return y0 + h*(c.YMax-v)/(c.YMax-c.YMin)
}

func (c *Chart) ticks() []Tick {
	ticks := make([]Tick, 0, tickCount)
	step := (c.YMax - c.YMin) / float64(tickCount-1)
	for i := 0; i < tickCount; i++ {
		v := c.YMin + step*float64(i)
		ticks = append(ticks, Tick{Value: v, Label: c.TickLabel(v), Y: c.yFor(v)})
	}
	return ticks
}

// TickLabel formats a y-axis value: bare number in compact mode, "CUR 0.00" otherwise.
func (c Chart) TickLabel(v float64) string {
	if c.Compact {
		return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
	}
	return model.FormatPrice(c.Currency, v)
}
