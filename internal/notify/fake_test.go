package notify

import (
	"context"
	"errors"
	"sync"

	"github.com/iyhunko/price-alerts-dashboard/internal/model"
	"github.com/iyhunko/price-alerts-dashboard/internal/repository"
)

type fakeSubscriptions struct {
	mu      sync.Mutex
	subs    []model.PushSubscription
	listErr error
}

func (f *fakeSubscriptions) Save(_ context.Context, sub *model.PushSubscription) (*model.PushSubscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.subs {
		if f.subs[i].Endpoint == sub.Endpoint {
			f.subs[i] = *sub
			return sub, nil
		}
	}
	sub.InitMeta()
	f.subs = append(f.subs, *sub)
	return sub, nil
}

func (f *fakeSubscriptions) List(_ context.Context) ([]model.PushSubscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]model.PushSubscription(nil), f.subs...), nil
}

func (f *fakeSubscriptions) ListBySession(_ context.Context, sessionID string) ([]model.PushSubscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []model.PushSubscription
	for _, s := range f.subs {
		if s.SessionID == sessionID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSubscriptions) DeleteByEndpoint(_ context.Context, endpoint string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, s := range f.subs {
		if s.Endpoint == endpoint {
			f.subs = append(f.subs[:i], f.subs[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

type fakeSender struct {
	mu    sync.Mutex
	sent  map[string][]byte
	fails map[string]error
}

func newFakeSender() *fakeSender {
	return &fakeSender{sent: map[string][]byte{}, fails: map[string]error{}}
}

func (f *fakeSender) Send(_ context.Context, sub model.PushSubscription, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.fails[sub.Endpoint]; ok {
		return err
	}
	f.sent[sub.Endpoint] = payload
	return nil
}

var errPushUnavailable = errors.New("push service unavailable")
