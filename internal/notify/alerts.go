package notify

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// AlertCandidate is a product price checked against an optional target.
type AlertCandidate struct {
	URL          string
	Name         string
	CurrentPrice float64
	TargetPrice  *float64
}

// DueAlerts returns a price alert for every candidate at or below its target.
// Candidates without a target (nil or zero) never alert.
func DueAlerts(candidates []AlertCandidate) []Options {
	var due []Options
	for _, c := range candidates {
		if c.TargetPrice == nil || *c.TargetPrice == 0 {
			continue
		}
		if c.CurrentPrice > *c.TargetPrice {
			continue
		}
		due = append(due, Options{
			Title: "Price Alert! 🔔",
			Body:  fmt.Sprintf("%s is now $%s (Target: $%s)", c.Name, formatAmount(c.CurrentPrice), formatAmount(*c.TargetPrice)),
			URL:   "/?product=" + escapeComponent(c.URL),
		})
	}
	return due
}

// CheckPriceAlerts shows every due alert, stopping at the first failure.
func (m *Manager) CheckPriceAlerts(ctx context.Context, candidates []AlertCandidate) error {
	for _, opts := range DueAlerts(candidates) {
		if err := m.ShowNotification(ctx, opts); err != nil {
			return err
		}
	}
	return nil
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func escapeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
