// Package notify manages notification permission, push subscriptions and
// the notifications shown for price alerts.
package notify

import (
	"errors"
	"time"
)

// Permission is the notification permission of a client.
type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// Decided reports whether the user has already granted or denied permission.
func (p Permission) Decided() bool {
	return p == PermissionGranted || p == PermissionDenied
}

const (
	// DefaultIcon is shown when a notification names no icon.
	DefaultIcon = "/icons/icon-192x192.png"
	// DefaultBadge is the monochrome badge of every notification.
	DefaultBadge = "/icons/icon-72x72.png"
	// DefaultURL is opened when a notification carries no target.
	DefaultURL = "/"

	ActionView    = "view"
	ActionDismiss = "dismiss"
)

var (
	// ErrNotInitialized is returned when no background script registration is bound.
	ErrNotInitialized = errors.New("notification manager not initialized")
	// ErrSubscriptionGone is returned when the push service no longer knows a subscription.
	ErrSubscriptionGone = errors.New("push subscription gone")
)

// Options describe a notification to show.
type Options struct {
	Title string
	Body  string
	URL   string
	Icon  string
}

// Action is a button shown on a notification.
type Action struct {
	Action string `json:"action"`
	Title  string `json:"title"`
	Icon   string `json:"icon,omitempty"`
}

// Data is the payload a notification carries back to the click handler.
type Data struct {
	URL       string `json:"url"`
	Timestamp int64  `json:"timestamp"`
}

// Notification is a fully resolved notification as handed to the platform.
type Notification struct {
	Title   string   `json:"title"`
	Body    string   `json:"body"`
	Icon    string   `json:"icon"`
	Badge   string   `json:"badge"`
	Data    Data     `json:"data"`
	Actions []Action `json:"actions"`
}

// Actions returns the view and dismiss actions every notification offers.
func Actions() []Action {
	return []Action{
		{Action: ActionView, Title: "View Product", Icon: DefaultBadge},
		{Action: ActionDismiss, Title: "Dismiss"},
	}
}

// NewNotification fills in the default icon, badge, target URL and actions.
func NewNotification(opts Options, now time.Time) Notification {
	icon := opts.Icon
	if icon == "" {
		icon = DefaultIcon
	}
	target := opts.URL
	if target == "" {
		target = DefaultURL
	}
	return Notification{
		Title:   opts.Title,
		Body:    opts.Body,
		Icon:    icon,
		Badge:   DefaultBadge,
		Data:    Data{URL: target, Timestamp: now.UnixMilli()},
		Actions: Actions(),
	}
}

// Payload is the JSON body of a push message.
type Payload struct {
	Title string `json:"title,omitempty"`
	Body  string `json:"body,omitempty"`
	URL   string `json:"url,omitempty"`
}

// Subscription is a browser push subscription.
type Subscription struct {
	Endpoint string           `json:"endpoint"`
	Keys     SubscriptionKeys `json:"keys"`
}

// SubscriptionKeys are the client keys used to encrypt push payloads.
type SubscriptionKeys struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}

// Valid reports whether the subscription has an endpoint and both keys.
func (s *Subscription) Valid() bool {
	return s != nil && s.Endpoint != "" && s.Keys.P256dh != "" && s.Keys.Auth != ""
}
