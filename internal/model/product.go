package model

import (
	"net/url"
	"sort"
	"strings"
)

// Product is a tracked URL with visibility flags. Rows are owned by the
// ingestion pipeline; this service only reads them.
type Product struct {
	URL       string `json:"url"`
	IsActive  *bool  `json:"is_active"`
	IsDeleted *bool  `json:"is_deleted"`
}

// Visible reports whether the product is active and not deleted.
// NULL flags count as neither.
func (p Product) Visible() bool {
	return p.IsActive != nil && *p.IsActive && p.IsDeleted != nil && !*p.IsDeleted
}

// Active reports the is_active flag, treating NULL as false.
func (p Product) Active() bool {
	return p.IsActive != nil && *p.IsActive
}

// Host returns the hostname of the product URL, or the raw URL when it does not parse.
func (p Product) Host() string {
	u, err := url.Parse(p.URL)
	if err != nil || u.Hostname() == "" {
		return p.URL
	}
	return u.Hostname()
}

// VisibleProducts keeps visible products and orders them by URL ascending.
func VisibleProducts(products []Product) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if p.Visible() {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.Compare(out[i].URL, out[j].URL) < 0
	})
	return out
}

// ProductView is a Product enriched at render time with its latest price point.
type ProductView struct {
	Product
	Latest  *PricePoint `json:"latest_data,omitempty"`
	Loading bool        `json:"loading"`
}

// Initial returns the avatar letter: first letter of the cached name,
// else first letter of the URL host, upper-cased.
func (v ProductView) Initial() string {
	if v.Latest != nil {
		for _, r := range v.Latest.Name {
			return strings.ToUpper(string(r))
		}
	}
	for _, r := range v.Host() {
		return strings.ToUpper(string(r))
	}
	return "?"
}
