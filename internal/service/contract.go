package service

import (
	"context"

	"parts-catalog/internal/filter"
	"parts-catalog/internal/model"
)

// CatalogStore is the storage contract of the catalog. Implementations wrap
// failures in model.StoreError and report missing codes as model.ErrNotFound.
type CatalogStore interface {
	FindByCode(ctx context.Context, code string) (*model.Product, error)
	// FindByCodeFold matches the whole code ignoring case.
	FindByCodeFold(ctx context.Context, code string) (*model.Product, error)
	FindMany(ctx context.Context, expr filter.Expr, skip, limit int64) ([]model.Product, error)
	FindAll(ctx context.Context) ([]model.Product, error)
	FindByCodes(ctx context.Context, codes []string) ([]model.Product, error)
	// FindReferencing returns products declaring code in their compatibles.
	FindReferencing(ctx context.Context, code string) ([]model.Product, error)
	Count(ctx context.Context, expr filter.Expr) (int64, error)
	// DistinctTypes returns sorted category labels of the matching products.
	DistinctTypes(ctx context.Context, expr filter.Expr) ([]string, error)
	Insert(ctx context.Context, p *model.Product) error
	ReplaceCompatibles(ctx context.Context, code string, refs []model.CompatibleRef) (*model.Product, error)
}

// Pinger checks store availability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ResolutionRecorder counts compatibility resolutions by depth.
type ResolutionRecorder interface {
	ObserveResolution(depth string)
}

type noopRecorder struct{}

func (noopRecorder) ObserveResolution(string) {}
