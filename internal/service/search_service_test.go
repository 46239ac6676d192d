package service

import (
	"context"
	"testing"

	"parts-catalog/internal/filter"
	"parts-catalog/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSearch(store CatalogStore, mode string) *SearchService {
	return NewSearchService(store, NewCompatibilityResolver(store, nil), SearchOptions{FacetMode: mode})
}

func facetMap(facets []model.Facet) map[string]int64 {
	out := make(map[string]int64, len(facets))
	for _, f := range facets {
		out[f.Name] = f.Count
	}
	return out
}

func TestSearchService_ExactCode(t *testing.T) {
	svc := newSearch(seededStore(t), model.FacetDisjunctive)

	for _, query := range []string{"YA25", "ya25", "  YA25  "} {
		t.Run(query, func(t *testing.T) {
			res, err := svc.Search(context.Background(), model.SearchRequest{Query: query})
			require.NoError(t, err)

			assert.Equal(t, []string{"YA25"}, codes(res.Products))
			assert.Equal(t, int64(1), res.Total)
			assert.Equal(t, int64(1), res.TotalPages)
			assert.Equal(t, int64(1), res.CurrentPage)
			require.NotNil(t, res.MatchedProduct)
			assert.Equal(t, "YA25", res.MatchedProduct.Code)
			assert.Equal(t, []string{"BB10", "CC01"}, codes(res.CompatibleProducts))
		})
	}
}

func TestSearchService_PartialQueryHasNoMatch(t *testing.T) {
	svc := newSearch(seededStore(t), model.FacetDisjunctive)

	res, err := svc.Search(context.Background(), model.SearchRequest{Query: "ya"})
	require.NoError(t, err)

	assert.Equal(t, []string{"YA25", "CC01"}, codes(res.Products), "code or brand match")
	assert.Nil(t, res.MatchedProduct)
	assert.NotNil(t, res.CompatibleProducts)
	assert.Empty(t, res.CompatibleProducts)
}

func TestSearchService_Pagination(t *testing.T) {
	svc := newSearch(seededStore(t), model.FacetDisjunctive)
	ctx := context.Background()

	res, err := svc.Search(ctx, model.SearchRequest{Page: model.PageOf(2), PageSize: model.PageOf(2)})
	require.NoError(t, err)
	assert.Equal(t, []string{"CC01", "DD01"}, codes(res.Products))
	assert.Equal(t, int64(5), res.Total)
	assert.Equal(t, int64(3), res.TotalPages)
	assert.Equal(t, int64(2), res.CurrentPage)

	res, err = svc.Search(ctx, model.SearchRequest{Page: model.PageOf(10), PageSize: model.PageOf(2)})
	require.NoError(t, err)
	assert.NotNil(t, res.Products)
	assert.Empty(t, res.Products)
	assert.Equal(t, int64(5), res.Total)
	assert.Equal(t, int64(10), res.CurrentPage)
}

func TestSearchService_PageFarPastTheEnd(t *testing.T) {
	svc := newSearch(seededStore(t), model.FacetDisjunctive)

	res, err := svc.Search(context.Background(), model.SearchRequest{
		Page:     model.PageOf(100000000000000000),
		PageSize: model.PageOf(100),
	})
	require.NoError(t, err)
	assert.NotNil(t, res.Products)
	assert.Empty(t, res.Products)
	assert.Equal(t, int64(5), res.Total)
	assert.Equal(t, int64(1), res.TotalPages)
	assert.Equal(t, int64(100000000000000000), res.CurrentPage)
}

func TestSearchService_InvalidPagination(t *testing.T) {
	store := newSpyStore(t)
	svc := newSearch(store, model.FacetDisjunctive)

	tests := []struct {
		name string
		req  model.SearchRequest
	}{
		{name: "zero page", req: model.SearchRequest{Page: model.PageOf(0)}},
		{name: "negative page size", req: model.SearchRequest{PageSize: model.PageOf(-5)}},
		{name: "page size above max", req: model.SearchRequest{PageSize: model.PageOf(model.MaxPageSize + 1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Search(context.Background(), tt.req)
			assert.ErrorIs(t, err, model.ErrValidation)
		})
	}
	assert.Zero(t, store.count("FindMany"))
}

func TestSearchService_FacetsWithoutQueryIgnoreSelection(t *testing.T) {
	store := seededStore(t)
	svc := newSearch(store, model.FacetDisjunctive)
	ctx := context.Background()

	res, err := svc.Search(ctx, model.SearchRequest{Categories: model.StringList{"Mount"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"YA25", "EE05"}, codes(res.Products))
	assert.Equal(t, []model.Facet{
		{Name: "Base", Count: 1},
		{Name: "Cable", Count: 1},
		{Name: "Mount", Count: 2},
		{Name: model.Uncategorized, Count: 1},
	}, res.Filters.Types)

	for _, facet := range res.Filters.Types {
		n, err := store.Count(ctx, filter.CategoryIn(facet.Name))
		require.NoError(t, err)
		assert.Equal(t, n, facet.Count, facet.Name)
	}
}

func TestSearchService_FacetModes(t *testing.T) {
	req := model.SearchRequest{Query: "acme", Categories: model.StringList{"Mount"}}

	t.Run("disjunctive", func(t *testing.T) {
		res, err := newSearch(seededStore(t), model.FacetDisjunctive).Search(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, []string{"YA25", "EE05"}, codes(res.Products))
		assert.Equal(t, map[string]int64{"Mount": 2, model.Uncategorized: 1}, facetMap(res.Filters.Types))
	})

	t.Run("narrowing", func(t *testing.T) {
		res, err := newSearch(seededStore(t), model.FacetNarrowing).Search(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, []string{"YA25", "EE05"}, codes(res.Products))
		assert.Equal(t, map[string]int64{"Mount": 2}, facetMap(res.Filters.Types))
	})
}

func TestSearchService_UncategorizedSelection(t *testing.T) {
	svc := newSearch(seededStore(t), model.FacetDisjunctive)

	res, err := svc.Search(context.Background(), model.SearchRequest{Categories: model.StringList{model.Uncategorized}})
	require.NoError(t, err)
	assert.Equal(t, []string{"DD01"}, codes(res.Products))
}

func TestSearchService_StoreFailure(t *testing.T) {
	store := newSpyStore(t)
	store.fail["Count"] = errBoom
	svc := newSearch(store, model.FacetDisjunctive)

	_, err := svc.Search(context.Background(), model.SearchRequest{Query: "arm"})
	assert.ErrorIs(t, err, model.ErrStore)
	assert.ErrorIs(t, err, errBoom)
}

func TestSearchService_DefaultsOptions(t *testing.T) {
	svc := NewSearchService(seededStore(t), nil, SearchOptions{FacetMode: "unknown"})
	assert.Equal(t, int64(model.DefaultPageSize), svc.opts.DefaultPageSize)
	assert.Equal(t, int64(model.MaxPageSize), svc.opts.MaxPageSize)
	assert.Equal(t, model.FacetDisjunctive, svc.opts.FacetMode)
}
