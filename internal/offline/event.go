package offline

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Kind names a lifecycle or functional event.
type Kind string

const (
	KindInstall           Kind = "install"
	KindActivate          Kind = "activate"
	KindFetch             Kind = "fetch"
	KindPush              Kind = "push"
	KindNotificationClick Kind = "notificationclick"
)

// Event is delivered to a Handler. Work passed to WaitUntil or RespondWith
// keeps the event open; Dispatch returns only after all of it has finished.
type Event struct {
	Kind Kind

	// Request is set for fetch events.
	Request Request
	// Data is the raw payload of push events; nil when the message has none.
	Data []byte
	// Action and Notification are set for notificationclick events.
	Action       string
	Notification DisplayedNotification

	group    *errgroup.Group
	ctx      context.Context
	mu       sync.Mutex
	response *Response
}

// WaitUntil extends the event's lifetime until fn returns.
func (e *Event) WaitUntil(fn func(ctx context.Context) error) {
	e.group.Go(func() error {
		return fn(e.ctx)
	})
}

// RespondWith answers a fetch event with the response fn produces.
func (e *Event) RespondWith(fn func(ctx context.Context) (*Response, error)) {
	e.WaitUntil(func(ctx context.Context) error {
		resp, err := fn(ctx)
		if err != nil {
			return err
		}
		e.mu.Lock()
		e.response = resp
		e.mu.Unlock()
		return nil
	})
}
