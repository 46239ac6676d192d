package model

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Facet modes decide which products the category counts are computed over
// when a text query is present.
const (
	// FacetDisjunctive counts over the text match only, ignoring the category selection.
	FacetDisjunctive = "disjunctive"
	// FacetNarrowing counts over the full search filter.
	FacetNarrowing = "narrowing"
)

// IsFacetMode reports whether mode names a known facet mode.
func IsFacetMode(mode string) bool {
	return mode == FacetDisjunctive || mode == FacetNarrowing
}

// PageParam holds a pagination value exactly as the client sent it.
// Numbers and numeric strings are both accepted; anything else fails in Normalize.
type PageParam struct {
	Raw string
	Set bool
}

// PageOf builds a PageParam from an integer.
func PageOf(n int64) PageParam {
	return PageParam{Raw: strconv.FormatInt(n, 10), Set: true}
}

func (p *PageParam) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	p.Set = true

	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		p.Raw = strings.TrimSpace(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		p.Raw = n.String()
		return nil
	}
	p.Raw = string(b)
	return nil
}

func (p PageParam) MarshalJSON() ([]byte, error) {
	if !p.Set {
		return []byte("null"), nil
	}
	if _, err := strconv.ParseInt(p.Raw, 10, 64); err == nil {
		return []byte(p.Raw), nil
	}
	return json.Marshal(p.Raw)
}

func (p PageParam) parse(field string, fallback int64) (int64, error) {
	if !p.Set {
		return fallback, nil
	}
	n, err := strconv.ParseInt(p.Raw, 10, 64)
	if err != nil || n < 1 {
		return 0, NewValidationError(field, "must be a positive integer")
	}
	return n, nil
}

// StringList accepts either a JSON array of strings or a single string.
type StringList []string

func (l *StringList) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*l = nil
		return nil
	}
	var single string
	if err := json.Unmarshal(b, &single); err == nil {
		*l = compactStrings([]string{single})
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return NewValidationError("categories", "must be a string or an array of strings")
	}
	*l = compactStrings(many)
	return nil
}

func compactStrings(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// SearchRequest is the body of a faceted search.
type SearchRequest struct {
	Query      string     `json:"query"`
	Categories StringList `json:"categories"`
	Page       PageParam  `json:"page"`
	PageSize   PageParam  `json:"pageSize"`
}

// SearchQuery is a validated SearchRequest.
type SearchQuery struct {
	Query      string
	Categories []string
	Page       int64
	PageSize   int64
}

// Normalize validates pagination and applies defaults.
func (r SearchRequest) Normalize(defaultPageSize, maxPageSize int64) (SearchQuery, error) {
	if defaultPageSize < 1 {
		defaultPageSize = DefaultPageSize
	}
	if maxPageSize < 1 {
		maxPageSize = MaxPageSize
	}

	page, err := r.Page.parse("page", DefaultPage)
	if err != nil {
		return SearchQuery{}, err
	}
	size, err := r.PageSize.parse("pageSize", defaultPageSize)
	if err != nil {
		return SearchQuery{}, err
	}
	if size > maxPageSize {
		return SearchQuery{}, NewValidationError("pageSize", "must not exceed "+strconv.FormatInt(maxPageSize, 10))
	}

	return SearchQuery{
		Query:      strings.TrimSpace(r.Query),
		Categories: []string(r.Categories),
		Page:       page,
		PageSize:   size,
	}, nil
}

// Skip is the number of documents before the requested page. It saturates at
// math.MaxInt64 so a far-out page reads as past the end rather than wrapping.
func (q SearchQuery) Skip() int64 {
	if q.Page < 1 || q.PageSize < 1 {
		return 0
	}
	if q.Page-1 > math.MaxInt64/q.PageSize {
		return math.MaxInt64
	}
	return (q.Page - 1) * q.PageSize
}

// Facet is a category label with its number of matching products.
type Facet struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

type SearchFilters struct {
	Types []Facet `json:"types"`
}

type SearchResult struct {
	Products           []Product     `json:"products"`
	Total              int64         `json:"total"`
	TotalPages         int64         `json:"totalPages"`
	CurrentPage        int64         `json:"currentPage"`
	Filters            SearchFilters `json:"filters"`
	MatchedProduct     *Product      `json:"matchedProduct,omitempty"`
	CompatibleProducts []Product     `json:"compatibleProducts"`
}

// TotalPages is ceil(total / pageSize).
func TotalPages(total, pageSize int64) int64 {
	if pageSize < 1 || total < 1 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// CodeLookup keeps the direct and inverse sets apart.
type CodeLookup struct {
	Product        Product   `json:"product"`
	Compatibles    []Product `json:"compatibles"`
	CompatibleWith []Product `json:"compatibleWith"`
}

type ProductList struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
}
