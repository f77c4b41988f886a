package model

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	// AvailableLabel is shown for points with availability = true.
	AvailableLabel = "Available"
	// OutOfStockLabel is shown for every other point.
	OutOfStockLabel = "Out of Stock"
)

// PricePoint is one timestamped price/availability observation for a product.
type PricePoint struct {
	ID             string          `json:"id"`
	ProductURL     string          `json:"product_url"`
	Name           string          `json:"name"`
	Price          float64         `json:"price"`
	Currency       string          `json:"currency"`
	MainImageURL   *string         `json:"main_image_url"`
	Availability   *bool           `json:"availability"`
	Timestamp      time.Time       `json:"timestamp"`
	AdditionalData json.RawMessage `json:"additional_data,omitempty"`
}

// Available reports the availability flag, treating NULL as false.
func (p PricePoint) Available() bool {
	return p.Availability != nil && *p.Availability
}

// AvailabilityLabel returns "Available" or "Out of Stock".
func (p PricePoint) AvailabilityLabel() string {
	if p.Available() {
		return AvailableLabel
	}
	return OutOfStockLabel
}

// ImageURL returns the product image URL or an empty string.
func (p PricePoint) ImageURL() string {
	if p.MainImageURL == nil {
		return ""
	}
	return *p.MainImageURL
}

// Reversed returns a copy of points in the opposite order.
func Reversed(points []PricePoint) []PricePoint {
	out := make([]PricePoint, len(points))
	for i, p := range points {
		out[len(points)-1-i] = p
	}
	return out
}

// DisplayPrice formats the price as "CUR 0.00".
func (p PricePoint) DisplayPrice() string {
	return FormatPrice(p.Currency, p.Price)
}

// FormatPrice formats an amount with its currency code and two decimals.
func FormatPrice(currency string, amount float64) string {
	return fmt.Sprintf("%s %.2f", currency, amount)
}
