package controller_test

import (
	"context"
	"errors"
	"sync"

	"github.com/iyhunko/price-alerts-dashboard/internal/model"
	"github.com/iyhunko/price-alerts-dashboard/internal/repository"
)

var errQuery = errors.New("query failed")

type fakeProducts struct {
	products []model.Product
}

func (f *fakeProducts) ListTracked(_ context.Context) ([]model.Product, error) {
	return model.VisibleProducts(f.products), nil
}

type fakeHistory struct {
	mu      sync.Mutex
	points  map[string][]model.PricePoint
	err     error
	queries []repository.HistoryQuery
}

func (f *fakeHistory) Latest(_ context.Context, url string) (*model.PricePoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if points := f.points[url]; len(points) > 0 {
		p := points[0]
		return &p, nil
	}
	return nil, nil
}

func (f *fakeHistory) History(_ context.Context, query repository.HistoryQuery) ([]model.PricePoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	points := f.points[query.ProductURL]
	if limit := query.EffectiveLimit(); len(points) > limit {
		points = points[:limit]
	}
	return append([]model.PricePoint{}, points...), nil
}

type fakeSubscriptions struct {
	mu   sync.Mutex
	subs map[string]model.PushSubscription
}

func newFakeSubscriptions() *fakeSubscriptions {
	return &fakeSubscriptions{subs: map[string]model.PushSubscription{}}
}

func (f *fakeSubscriptions) Save(_ context.Context, sub *model.PushSubscription) (*model.PushSubscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sub.InitMeta()
	f.subs[sub.Endpoint] = *sub
	return sub, nil
}

func (f *fakeSubscriptions) List(_ context.Context) ([]model.PushSubscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.PushSubscription
	for _, s := range f.subs {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeSubscriptions) ListBySession(ctx context.Context, sessionID string) ([]model.PushSubscription, error) {
	all, _ := f.List(ctx)
	var out []model.PushSubscription
	for _, s := range all {
		if s.SessionID == sessionID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSubscriptions) DeleteByEndpoint(_ context.Context, endpoint string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.subs[endpoint]; !ok {
		return repository.ErrNotFound
	}
	delete(f.subs, endpoint)
	return nil
}

func (f *fakeSubscriptions) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}
