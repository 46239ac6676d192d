package service

import (
	"context"
	"strings"

	"parts-catalog/internal/logger"
	"parts-catalog/internal/model"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

type ProductService struct {
	store    CatalogStore
	resolver *CompatibilityResolver
}

var ProductServiceTracer = otel.Tracer("ProductService")

func NewProductService(store CatalogStore, resolver *CompatibilityResolver) *ProductService {
	return &ProductService{store: store, resolver: resolver}
}

// Create validates before any write and stores the product with its defaults.
func (s *ProductService) Create(ctx context.Context, p *model.Product) (*model.Product, error) {
	ctx, span := ProductServiceTracer.Start(ctx, "ProductService.Create")
	defer span.End()
	logger.Info(ctx, "Service")

	p.Code = strings.TrimSpace(p.Code)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.ApplyDefaults()

	if err := s.store.Insert(ctx, p); err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.String("product.code", p.Code))
	return p, nil
}

func (s *ProductService) GetAll(ctx context.Context) (*model.ProductList, error) {
	ctx, span := ProductServiceTracer.Start(ctx, "ProductService.GetAll")
	defer span.End()
	logger.Info(ctx, "Service")

	products, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return &model.ProductList{Products: products, Total: len(products)}, nil
}

// GetByCode matches the code exactly.
func (s *ProductService) GetByCode(ctx context.Context, code string) (*model.Product, error) {
	ctx, span := ProductServiceTracer.Start(ctx, "ProductService.GetByCode")
	defer span.End()
	span.SetAttributes(attribute.String("product.code", code))
	logger.Info(ctx, "Service")

	return s.store.FindByCode(ctx, code)
}

// LookupCode finds a product by exact code, then ignoring case, and returns
// the products it declares and the products declaring it as separate sets.
func (s *ProductService) LookupCode(ctx context.Context, code string) (*model.CodeLookup, error) {
	ctx, span := ProductServiceTracer.Start(ctx, "ProductService.LookupCode")
	defer span.End()
	logger.Info(ctx, "Service")

	code = strings.TrimSpace(code)
	if code == "" {
		return nil, model.NewValidationError("code", "is required")
	}
	span.SetAttributes(attribute.String("product.code", code))

	product, err := findCode(ctx, s.store, code)
	if err != nil {
		return nil, err
	}

	direct, inverse, err := s.resolver.Both(ctx, product)
	if err != nil {
		return nil, err
	}
	return &model.CodeLookup{
		Product:        *product,
		Compatibles:    direct,
		CompatibleWith: inverse,
	}, nil
}

// DirectCompatibles returns only the products declared by the product with this exact code.
func (s *ProductService) DirectCompatibles(ctx context.Context, code string) ([]model.Product, error) {
	ctx, span := ProductServiceTracer.Start(ctx, "ProductService.DirectCompatibles")
	defer span.End()
	span.SetAttributes(attribute.String("product.code", code))
	logger.Info(ctx, "Service")

	product, err := s.store.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return s.resolver.Direct(ctx, product)
}

// MergedCompatibles returns the direct and inverse compatibles of the product with this
// exact code, deduplicated and without the product itself.
func (s *ProductService) MergedCompatibles(ctx context.Context, code string) ([]model.Product, error) {
	ctx, span := ProductServiceTracer.Start(ctx, "ProductService.MergedCompatibles")
	defer span.End()
	span.SetAttributes(attribute.String("product.code", code))
	logger.Info(ctx, "Service")

	return s.resolver.Resolve(ctx, code)
}

// ReplaceCompatibles overwrites the whole compatibles list of a product.
func (s *ProductService) ReplaceCompatibles(ctx context.Context, code string, refs []model.CompatibleRef) (*model.Product, error) {
	ctx, span := ProductServiceTracer.Start(ctx, "ProductService.ReplaceCompatibles")
	defer span.End()
	span.SetAttributes(attribute.String("product.code", code))
	logger.Info(ctx, "Service")

	if err := model.ValidateCompatibles(refs); err != nil {
		return nil, err
	}
	if refs == nil {
		refs = []model.CompatibleRef{}
	}
	return s.store.ReplaceCompatibles(ctx, code, refs)
}
