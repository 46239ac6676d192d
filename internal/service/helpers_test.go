package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"parts-catalog/internal/filter"
	"parts-catalog/internal/model"
	"parts-catalog/internal/repository/memory"

	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

// catalogFixture is inserted in this order, which is also the read order of the memory store.
func catalogFixture() []model.Product {
	return []model.Product{
		{Code: "YA25", Name: "Arm 25", Brand: "Acme", Type: "Mount", Compatibles: []model.CompatibleRef{
			{Type: "Base", Code: "BB10"},
			{Type: "Base", Code: "MISSING"},
			{Type: "Mount", Code: "YA25"},
		}},
		{Code: "BB10", Name: "Base 10", Brand: "Bolt", Type: "Base", Compatibles: []model.CompatibleRef{
			{Type: "Mount", Code: "YA25"},
		}},
		{Code: "CC01", Name: "Cable", Brand: "Yarn Co", Type: "Cable", Compatibles: []model.CompatibleRef{
			{Type: "Mount", Code: "YA25"},
		}},
		{Code: "DD01", Name: "Desk clamp", Brand: "Acme"},
		{Code: "EE05", Name: "Arm extension", Brand: "Acme", Type: "Mount", Compatibles: []model.CompatibleRef{
			{Type: "Base", Code: "BB10"},
		}},
	}
}

func seededStore(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.New()
	require.NoError(t, store.Seed(context.Background(), catalogFixture()...))
	return store
}

func codes(products []model.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Code)
	}
	return out
}

// spyStore counts calls per operation and fails the ones listed in fail.
type spyStore struct {
	*memory.Store

	mu    sync.Mutex
	calls map[string]int
	fail  map[string]error
}

func newSpyStore(t *testing.T) *spyStore {
	return &spyStore{Store: seededStore(t), calls: map[string]int{}, fail: map[string]error{}}
}

func (s *spyStore) hit(op string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[op]++
	if err, ok := s.fail[op]; ok {
		return model.NewStoreError(op, err)
	}
	return nil
}

func (s *spyStore) count(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

func (s *spyStore) FindByCode(ctx context.Context, code string) (*model.Product, error) {
	if err := s.hit("FindByCode"); err != nil {
		return nil, err
	}
	return s.Store.FindByCode(ctx, code)
}

func (s *spyStore) FindByCodeFold(ctx context.Context, code string) (*model.Product, error) {
	if err := s.hit("FindByCodeFold"); err != nil {
		return nil, err
	}
	return s.Store.FindByCodeFold(ctx, code)
}

func (s *spyStore) FindMany(ctx context.Context, expr filter.Expr, skip, limit int64) ([]model.Product, error) {
	if err := s.hit("FindMany"); err != nil {
		return nil, err
	}
	return s.Store.FindMany(ctx, expr, skip, limit)
}

func (s *spyStore) FindByCodes(ctx context.Context, codes []string) ([]model.Product, error) {
	if err := s.hit("FindByCodes"); err != nil {
		return nil, err
	}
	return s.Store.FindByCodes(ctx, codes)
}

func (s *spyStore) FindReferencing(ctx context.Context, code string) ([]model.Product, error) {
	if err := s.hit("FindReferencing"); err != nil {
		return nil, err
	}
	return s.Store.FindReferencing(ctx, code)
}

func (s *spyStore) Count(ctx context.Context, expr filter.Expr) (int64, error) {
	if err := s.hit("Count"); err != nil {
		return 0, err
	}
	return s.Store.Count(ctx, expr)
}

func (s *spyStore) DistinctTypes(ctx context.Context, expr filter.Expr) ([]string, error) {
	if err := s.hit("DistinctTypes"); err != nil {
		return nil, err
	}
	return s.Store.DistinctTypes(ctx, expr)
}

func (s *spyStore) Insert(ctx context.Context, p *model.Product) error {
	if err := s.hit("Insert"); err != nil {
		return err
	}
	return s.Store.Insert(ctx, p)
}

type recorderSpy struct {
	mu     sync.Mutex
	depths []string
}

func (r *recorderSpy) ObserveResolution(depth string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.depths = append(r.depths, depth)
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }
