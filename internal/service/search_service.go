package service

import (
	"context"
	"errors"

	"parts-catalog/internal/filter"
	"parts-catalog/internal/logger"
	"parts-catalog/internal/model"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

const facetConcurrency = 8

type SearchOptions struct {
	DefaultPageSize int64
	MaxPageSize     int64
	FacetMode       string
}

type SearchService struct {
	store    CatalogStore
	resolver *CompatibilityResolver
	opts     SearchOptions
}

var SearchServiceTracer = otel.Tracer("SearchService")

func NewSearchService(store CatalogStore, resolver *CompatibilityResolver, opts SearchOptions) *SearchService {
	if opts.DefaultPageSize < 1 {
		opts.DefaultPageSize = model.DefaultPageSize
	}
	if opts.MaxPageSize < 1 {
		opts.MaxPageSize = model.MaxPageSize
	}
	if opts.FacetMode != model.FacetNarrowing {
		opts.FacetMode = model.FacetDisjunctive
	}
	return &SearchService{store: store, resolver: resolver, opts: opts}
}

// Search runs a paginated faceted search. When the query is a product code the
// product and its merged compatibility set are attached.
func (s *SearchService) Search(ctx context.Context, req model.SearchRequest) (*model.SearchResult, error) {
	ctx, span := SearchServiceTracer.Start(ctx, "SearchService.Search")
	defer span.End()
	logger.Info(ctx, "Service")

	q, err := req.Normalize(s.opts.DefaultPageSize, s.opts.MaxPageSize)
	if err != nil {
		return nil, err
	}

	base := filter.And(filter.Text(q.Query), filter.CategoryIn(q.Categories...))
	span.SetAttributes(
		attribute.String("search.filter", base.String()),
		attribute.Int64("search.page", q.Page),
		attribute.Int64("search.page_size", q.PageSize),
	)

	result := &model.SearchResult{
		CurrentPage:        q.Page,
		CompatibleProducts: []model.Product{},
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		products, err := s.store.FindMany(gctx, base, q.Skip(), q.PageSize)
		result.Products = products
		return err
	})
	g.Go(func() error {
		total, err := s.store.Count(gctx, base)
		result.Total = total
		return err
	})
	g.Go(func() error {
		facets, err := s.facets(gctx, q, base)
		result.Filters.Types = facets
		return err
	})
	g.Go(func() error {
		matched, compatibles, err := s.matchCode(gctx, q.Query)
		result.MatchedProduct = matched
		if compatibles != nil {
			result.CompatibleProducts = compatibles
		}
		return err
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	result.TotalPages = model.TotalPages(result.Total, q.PageSize)
	span.SetAttributes(attribute.Int64("search.total", result.Total))
	return result, nil
}

// facets enumerates category labels and counts each one concurrently.
// Without a query the whole catalog is counted.
func (s *SearchService) facets(ctx context.Context, q model.SearchQuery, base filter.Expr) ([]model.Facet, error) {
	ctx, span := SearchServiceTracer.Start(ctx, "SearchService.facets")
	defer span.End()

	textOnly := base.Without(filter.KindCategoryIn)
	scope := filter.All()
	if !textOnly.IsAll() {
		scope = base
		if s.opts.FacetMode == model.FacetDisjunctive {
			scope = textOnly
		}
	}
	span.SetAttributes(attribute.String("search.facet_scope", scope.String()))

	labels, err := s.store.DistinctTypes(ctx, scope)
	if err != nil {
		return nil, err
	}

	facets := make([]model.Facet, len(labels))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(facetConcurrency)
	for i, label := range labels {
		i, label := i, label
		g.Go(func() error {
			n, err := s.store.Count(gctx, filter.And(scope, filter.CategoryIn(label)))
			facets[i] = model.Facet{Name: label, Count: n}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return facets, nil
}

// matchCode looks the query up as an exact code, then ignoring case.
func (s *SearchService) matchCode(ctx context.Context, query string) (*model.Product, []model.Product, error) {
	if query == "" {
		return nil, nil, nil
	}

	anchor, err := findCode(ctx, s.store, query)
	if errors.Is(err, model.ErrNotFound) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	compatibles, err := s.resolver.Merged(ctx, anchor)
	if err != nil {
		return nil, nil, err
	}
	return anchor, compatibles, nil
}

// findCode tries the exact code first and falls back to a case-insensitive match.
func findCode(ctx context.Context, store CatalogStore, code string) (*model.Product, error) {
	p, err := store.FindByCode(ctx, code)
	if errors.Is(err, model.ErrNotFound) {
		return store.FindByCodeFold(ctx, code)
	}
	return p, err
}
