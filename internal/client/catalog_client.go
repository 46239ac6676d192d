package client

import (
	"context"
	"net/url"
	"time"

	"parts-catalog/internal/model"
)

// CatalogClient calls the catalog HTTP API.
type CatalogClient struct {
	http *HTTPClient
}

func NewCatalogClient(baseURL string, timeout time.Duration) *CatalogClient {
	c := NewHTTPClient(baseURL, timeout)
	c.SetDefaultHeader("Accept", "application/json")
	return &CatalogClient{http: c}
}

func (c *CatalogClient) Create(ctx context.Context, p model.Product) (*model.Product, error) {
	var out model.Product
	if err := c.http.Post(ctx, "/products", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *CatalogClient) Search(ctx context.Context, req model.SearchRequest) (*model.SearchResult, error) {
	var out model.SearchResult
	if err := c.http.Post(ctx, "/products/search", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *CatalogClient) List(ctx context.Context) (*model.ProductList, error) {
	var out model.ProductList
	if err := c.http.Get(ctx, "/products", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *CatalogClient) Get(ctx context.Context, code string) (*model.Product, error) {
	var out model.Product
	if err := c.http.Get(ctx, "/products/"+url.PathEscape(code), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *CatalogClient) LookupCode(ctx context.Context, code string) (*model.CodeLookup, error) {
	var out model.CodeLookup
	if err := c.http.Get(ctx, "/products/code", map[string]string{"code": code}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *CatalogClient) Compatibles(ctx context.Context, code string) ([]model.Product, error) {
	var out []model.Product
	if err := c.http.Get(ctx, "/products/"+url.PathEscape(code)+"/compatibles", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CatalogClient) ReplaceCompatibles(ctx context.Context, code string, refs []model.CompatibleRef) (*model.Product, error) {
	body := map[string][]model.CompatibleRef{"compatibles": refs}
	var out model.Product
	if err := c.http.Patch(ctx, "/products/code/"+url.PathEscape(code)+"/compatibles", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
