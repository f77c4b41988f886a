package dashboard

import (
	"time"

	"github.com/iyhunko/price-alerts-dashboard/internal/chart"
	"github.com/iyhunko/price-alerts-dashboard/internal/model"
)

// MobileBreakpoint is the viewport width below which the sidebar becomes an overlay menu.
const MobileBreakpoint = 768

// PanelState is the render state of the main panel.
type PanelState string

const (
	PanelNoSelection PanelState = "no-selection"
	PanelLoading     PanelState = "loading"
	PanelEmpty       PanelState = "empty"
	PanelData        PanelState = "data"
)

// State is a point-in-time copy of a session's dashboard.
type State struct {
	Products     []model.ProductView
	Selected     string
	SelectionKey uint64
	History      []model.PricePoint
	Loading      bool
	// FetchFailed marks an empty history caused by a failed query rather than missing data.
	FetchFailed bool

	SidebarCollapsed     bool
	MobileMenuOpen       bool
	IsMobile             bool
	ViewportWidth        int
	NotificationsEnabled bool
	Location             *time.Location
}

// Panel returns which of the four mutually exclusive main panel states applies.
func (s State) Panel() PanelState {
	switch {
	case s.Selected == "":
		return PanelNoSelection
	case s.Loading:
		return PanelLoading
	case len(s.History) == 0:
		return PanelEmpty
	default:
		return PanelData
	}
}

// Latest returns the newest point of the selected product's history.
// Header and chart both read the same History batch.
func (s State) Latest() *model.PricePoint {
	if len(s.History) == 0 {
		return nil
	}
	latest := s.History[0]
	return &latest
}

// Chart lays out the selected product's history for the session's viewport.
func (s State) Chart() chart.Chart {
	return chart.Build(s.History, chart.Options{
		ViewportWidth: s.ViewportWidth,
		Location:      s.Location,
	})
}

// IsSelected reports whether url is the current selection.
func (s State) IsSelected(url string) bool {
	return s.Selected != "" && s.Selected == url
}

// TimeIn formats t in the session's location.
func (s State) TimeIn(t time.Time) time.Time {
	if s.Location == nil {
		return t.UTC()
	}
	return t.In(s.Location)
}
