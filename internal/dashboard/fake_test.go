package dashboard

import (
	"context"
	"sync"

	"github.com/iyhunko/price-alerts-dashboard/internal/model"
	"github.com/iyhunko/price-alerts-dashboard/internal/repository"
)

type fakeProducts struct {
	products []model.Product
	err      error
}

func (f *fakeProducts) ListTracked(_ context.Context) ([]model.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	return model.VisibleProducts(f.products), nil
}

// fakeHistory serves canned history; calls for a gated URL block until the gate is closed or ctx ends.
type fakeHistory struct {
	mu        sync.Mutex
	latest    map[string]*model.PricePoint
	latestErr map[string]error
	history   map[string][]model.PricePoint
	gates     map[string]chan struct{}
	started   chan string
	queries   []repository.HistoryQuery
}

func newFakeHistory() *fakeHistory {
	return &fakeHistory{
		latest:    map[string]*model.PricePoint{},
		latestErr: map[string]error{},
		history:   map[string][]model.PricePoint{},
		gates:     map[string]chan struct{}{},
		started:   make(chan string, 16),
	}
}

func (f *fakeHistory) wait(ctx context.Context, url string) error {
	f.mu.Lock()
	gate, ok := f.gates[url]
	f.mu.Unlock()
	f.started <- url
	if !ok {
		return nil
	}
	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeHistory) Latest(ctx context.Context, url string) (*model.PricePoint, error) {
	if err := f.wait(ctx, url); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.latestErr[url]; err != nil {
		return nil, err
	}
	return f.latest[url], nil
}

func (f *fakeHistory) History(ctx context.Context, query repository.HistoryQuery) ([]model.PricePoint, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()
	if err := f.wait(ctx, query.ProductURL); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.history[query.ProductURL], nil
}

func boolPtr(b bool) *bool { return &b }
