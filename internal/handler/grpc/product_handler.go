package grpc

import (
	"context"
	"errors"

	"parts-catalog/internal/handler/grpc/catalogpb"
	"parts-catalog/internal/logger"
	"parts-catalog/internal/model"
	"parts-catalog/internal/service"
	"parts-catalog/internal/utils"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ResolverHeader names the host that served the call.
const ResolverHeader = "x-resolver"

type CatalogGRPCHandler struct {
	catalogpb.UnimplementedCatalogServiceServer
	products *service.ProductService
	search   *service.SearchService
}

var GrpcCatalogHandlerTracer = otel.Tracer("GrpcCatalogHandler")

func NewCatalogGRPCHandler(products *service.ProductService, search *service.SearchService) *CatalogGRPCHandler {
	return &CatalogGRPCHandler{
		products: products,
		search:   search,
	}
}

func (h *CatalogGRPCHandler) Search(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	ctx, span := GrpcCatalogHandlerTracer.Start(ctx, "GrpcCatalogHandler.Search")
	defer span.End()
	logger.Info(ctx, "Handler")
	setResolver(ctx)

	var req model.SearchRequest
	if err := catalogpb.Decode(in, &req); err != nil {
		if errors.Is(err, model.ErrValidation) {
			return nil, toStatus(err)
		}
		return nil, status.Error(codes.InvalidArgument, "invalid search request")
	}

	result, err := h.search.Search(ctx, req)
	if err != nil {
		span.RecordError(err)
		return nil, toStatus(err)
	}
	return encodeStruct(result)
}

func (h *CatalogGRPCHandler) GetProduct(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	ctx, span := GrpcCatalogHandlerTracer.Start(ctx, "GrpcCatalogHandler.GetProduct")
	defer span.End()
	span.SetAttributes(attribute.String("product.code", in.GetValue()))
	logger.Info(ctx, "Handler")
	setResolver(ctx)

	product, err := h.products.GetByCode(ctx, in.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	return encodeStruct(product)
}

func (h *CatalogGRPCHandler) LookupCode(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	ctx, span := GrpcCatalogHandlerTracer.Start(ctx, "GrpcCatalogHandler.LookupCode")
	defer span.End()
	span.SetAttributes(attribute.String("product.code", in.GetValue()))
	logger.Info(ctx, "Handler")
	setResolver(ctx)

	lookup, err := h.products.LookupCode(ctx, in.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	return encodeStruct(lookup)
}

func (h *CatalogGRPCHandler) ListCompatibles(ctx context.Context, in *wrapperspb.StringValue) (*structpb.ListValue, error) {
	ctx, span := GrpcCatalogHandlerTracer.Start(ctx, "GrpcCatalogHandler.ListCompatibles")
	defer span.End()
	span.SetAttributes(attribute.String("product.code", in.GetValue()))
	logger.Info(ctx, "Handler")
	setResolver(ctx)

	products, err := h.products.DirectCompatibles(ctx, in.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	list, err := catalogpb.ToList(products)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return list, nil
}

func setResolver(ctx context.Context) {
	_ = grpc.SetHeader(ctx, metadata.Pairs(ResolverHeader, utils.GetHost()))
}

func encodeStruct(v any) (*structpb.Struct, error) {
	out, err := catalogpb.ToStruct(v)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, model.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, model.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, model.ErrDuplicateCode):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, "internal error: "+err.Error())
	}
}
