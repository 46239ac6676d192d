// Package memory is a process-local catalog store for tests and local runs.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"parts-catalog/internal/filter"
	"parts-catalog/internal/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store keeps products in insertion order, which is its stable read order.
type Store struct {
	mu       sync.RWMutex
	products []model.Product
	byCode   map[string]int
}

func New() *Store {
	return &Store{byCode: make(map[string]int)}
}

// Seed inserts the products in order and stops at the first failure.
func (s *Store) Seed(ctx context.Context, products ...model.Product) error {
	for i := range products {
		p := products[i]
		if err := s.Insert(ctx, &p); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) Insert(ctx context.Context, p *model.Product) error {
	if err := ctx.Err(); err != nil {
		return model.NewStoreError("Insert", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byCode[p.Code]; ok {
		return fmt.Errorf("%w: %s", model.ErrDuplicateCode, p.Code)
	}
	p.ApplyDefaults()
	p.ID = primitive.NewObjectID()
	s.byCode[p.Code] = len(s.products)
	s.products = append(s.products, clone(*p))
	return nil
}

func (s *Store) FindByCode(ctx context.Context, code string) (*model.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, model.NewStoreError("FindByCode", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byCode[code]
	if !ok {
		return nil, model.ErrNotFound
	}
	p := clone(s.products[i])
	return &p, nil
}

func (s *Store) FindByCodeFold(ctx context.Context, code string) (*model.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, model.NewStoreError("FindByCodeFold", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.products {
		if strings.EqualFold(p.Code, code) {
			found := clone(p)
			return &found, nil
		}
	}
	return nil, model.ErrNotFound
}

func (s *Store) FindMany(ctx context.Context, expr filter.Expr, skip, limit int64) ([]model.Product, error) {
	matched, err := s.match(ctx, "FindMany", expr.Matches)
	if err != nil {
		return nil, err
	}
	if skip < 0 {
		skip = 0
	}
	if skip >= int64(len(matched)) {
		return []model.Product{}, nil
	}
	matched = matched[skip:]
	if limit > 0 && limit < int64(len(matched)) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (s *Store) FindAll(ctx context.Context) ([]model.Product, error) {
	return s.match(ctx, "FindAll", filter.All().Matches)
}

func (s *Store) FindByCodes(ctx context.Context, codes []string) ([]model.Product, error) {
	if len(codes) == 0 {
		return []model.Product{}, nil
	}
	wanted := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		wanted[c] = struct{}{}
	}
	return s.match(ctx, "FindByCodes", func(p model.Product) bool {
		_, ok := wanted[p.Code]
		return ok
	})
}

func (s *Store) FindReferencing(ctx context.Context, code string) ([]model.Product, error) {
	return s.match(ctx, "FindReferencing", func(p model.Product) bool {
		for _, ref := range p.Compatibles {
			if ref.Code == code {
				return true
			}
		}
		return false
	})
}

func (s *Store) Count(ctx context.Context, expr filter.Expr) (int64, error) {
	matched, err := s.match(ctx, "Count", expr.Matches)
	if err != nil {
		return 0, err
	}
	return int64(len(matched)), nil
}

func (s *Store) DistinctTypes(ctx context.Context, expr filter.Expr) ([]string, error) {
	matched, err := s.match(ctx, "DistinctTypes", expr.Matches)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	labels := make([]string, 0)
	for _, p := range matched {
		label := p.Category()
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels, nil
}

func (s *Store) ReplaceCompatibles(ctx context.Context, code string, refs []model.CompatibleRef) (*model.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, model.NewStoreError("ReplaceCompatibles", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.byCode[code]
	if !ok {
		return nil, model.ErrNotFound
	}
	replaced := make([]model.CompatibleRef, len(refs))
	copy(replaced, refs)
	s.products[i].Compatibles = replaced

	p := clone(s.products[i])
	return &p, nil
}

func (s *Store) match(ctx context.Context, op string, keep func(model.Product) bool) ([]model.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, model.NewStoreError(op, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Product, 0)
	for _, p := range s.products {
		if keep(p) {
			out = append(out, clone(p))
		}
	}
	return out, nil
}

func clone(p model.Product) model.Product {
	refs := make([]model.CompatibleRef, len(p.Compatibles))
	copy(refs, p.Compatibles)
	p.Compatibles = refs
	return p
}
