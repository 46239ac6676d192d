package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"parts-catalog/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *CatalogClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewCatalogClient(srv.URL+"/", time.Second)
}

func TestCatalogClient_Search(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/products/search", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get("X-Trace-ID"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "ya25", req["query"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"products":[{"code":"YA25","name":"Mount"}],"total":1,"totalPages":1,"currentPage":1,"filters":{"types":[{"name":"Mount","count":1}]},"compatibleProducts":[]}`))
	})

	res, err := c.Search(context.Background(), model.SearchRequest{Query: "ya25"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Total)
	require.Len(t, res.Products, 1)
	assert.Equal(t, "YA25", res.Products[0].Code)
	assert.Equal(t, []model.Facet{{Name: "Mount", Count: 1}}, res.Filters.Types)
}

func TestCatalogClient_LookupCodeEscapesQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/code", r.URL.Path)
		assert.Equal(t, "A B/1", r.URL.Query().Get("code"))
		_, _ = w.Write([]byte(`{"product":{"code":"A B/1"},"compatibles":[],"compatibleWith":[]}`))
	})

	res, err := c.LookupCode(context.Background(), "A B/1")
	require.NoError(t, err)
	assert.Equal(t, "A B/1", res.Product.Code)
}

func TestCatalogClient_ReplaceCompatibles(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/products/code/YA25/compatibles", r.URL.Path)

		var body struct {
			Compatibles []model.CompatibleRef `json:"compatibles"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []model.CompatibleRef{{Type: "Base", Code: "BB10"}}, body.Compatibles)
		_, _ = w.Write([]byte(`{"code":"YA25","compatibles":[{"type":"Base","code":"BB10"}]}`))
	})

	p, err := c.ReplaceCompatibles(context.Background(), "YA25", []model.CompatibleRef{{Type: "Base", Code: "BB10"}})
	require.NoError(t, err)
	assert.Len(t, p.Compatibles, 1)
}

func TestCatalogClient_APIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Product not found"}`))
	})

	_, err := c.Get(context.Background(), "NOPE")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "Product not found", apiErr.Message)
}

func TestCatalogClient_APIErrorWithoutBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.List(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Bad Gateway", apiErr.Message)
	assert.Equal(t, "http 502: Bad Gateway", apiErr.Error())
}

func TestBuildURL(t *testing.T) {
	c := NewHTTPClient("http://catalog:8080/", time.Second)

	u, err := c.buildURL("products/code", map[string]string{"code": "YA25"})
	require.NoError(t, err)
	assert.Equal(t, "http://catalog:8080/products/code?code=YA25", u)

	u, err = c.buildURL("https://other/x", nil)
	require.NoError(t, err)
	assert.Equal(t, "https://other/x", u)
}
