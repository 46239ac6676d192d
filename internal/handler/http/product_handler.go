package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"parts-catalog/internal/logger"
	"parts-catalog/internal/model"
	"parts-catalog/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

type ProductHandler struct {
	products *service.ProductService
	search   *service.SearchService
}

var HttpProductHandlerTracer = otel.Tracer("HttpProductHandler")

func NewProductHandler(products *service.ProductService, search *service.SearchService) *ProductHandler {
	return &ProductHandler{
		products: products,
		search:   search,
	}
}

// Routes registers the product endpoints on r, relative to the products prefix.
func (h *ProductHandler) Routes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.GetAll)
	r.Post("/search", h.Search)
	r.Get("/code", h.LookupCode)
	r.Patch("/code/{code}/compatibles", h.ReplaceCompatibles)
	r.Get("/{code}", h.GetByCode)
	r.Get("/{code}/compatibles", h.DirectCompatibles)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpProductHandlerTracer.Start(r.Context(), "HttpProductHandler.Create")
	defer span.End()
	logger.Info(ctx, "Handler")

	var product model.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	created, err := h.products.Create(ctx, &product)
	if err != nil {
		span.RecordError(err)
		writeError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpProductHandlerTracer.Start(r.Context(), "HttpProductHandler.Search")
	defer span.End()
	logger.Info(ctx, "Handler")

	var req model.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		if errors.Is(err, model.ErrValidation) {
			writeError(ctx, w, err)
			return
		}
		writeMessage(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	result, err := h.search.Search(ctx, req)
	if err != nil {
		span.RecordError(err)
		writeError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *ProductHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpProductHandlerTracer.Start(r.Context(), "HttpProductHandler.GetAll")
	defer span.End()
	logger.Info(ctx, "Handler")

	list, err := h.products.GetAll(ctx)
	if err != nil {
		span.RecordError(err)
		writeError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *ProductHandler) GetByCode(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpProductHandlerTracer.Start(r.Context(), "HttpProductHandler.GetByCode")
	defer span.End()
	code := chi.URLParam(r, "code")
	span.SetAttributes(attribute.String("product.code", code))
	logger.Info(ctx, "Handler")

	product, err := h.products.GetByCode(ctx, code)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) LookupCode(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpProductHandlerTracer.Start(r.Context(), "HttpProductHandler.LookupCode")
	defer span.End()
	logger.Info(ctx, "Handler")

	code := r.URL.Query().Get("code")
	if code == "" {
		writeMessage(w, http.StatusBadRequest, "code query parameter is required")
		return
	}
	span.SetAttributes(attribute.String("product.code", code))

	lookup, err := h.products.LookupCode(ctx, code)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, lookup)
}

func (h *ProductHandler) DirectCompatibles(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpProductHandlerTracer.Start(r.Context(), "HttpProductHandler.DirectCompatibles")
	defer span.End()
	code := chi.URLParam(r, "code")
	span.SetAttributes(attribute.String("product.code", code))
	logger.Info(ctx, "Handler")

	var (
		products []model.Product
		err      error
	)
	switch depth := r.URL.Query().Get("depth"); depth {
	case "", service.DepthDirect:
		products, err = h.products.DirectCompatibles(ctx, code)
	case service.DepthMerged:
		products, err = h.products.MergedCompatibles(ctx, code)
	default:
		err = model.NewValidationError("depth", "must be direct or merged")
	}
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

type replaceCompatiblesRequest struct {
	Compatibles *[]model.CompatibleRef `json:"compatibles"`
}

func (h *ProductHandler) ReplaceCompatibles(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpProductHandlerTracer.Start(r.Context(), "HttpProductHandler.ReplaceCompatibles")
	defer span.End()
	code := chi.URLParam(r, "code")
	span.SetAttributes(attribute.String("product.code", code))
	logger.Info(ctx, "Handler")

	var req replaceCompatiblesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if req.Compatibles == nil {
		writeError(ctx, w, model.NewValidationError("compatibles", "is required"))
		return
	}

	updated, err := h.products.ReplaceCompatibles(ctx, code, *req.Compatibles)
	if err != nil {
		span.RecordError(err)
		writeError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
