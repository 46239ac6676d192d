package service

import (
	"context"

	"parts-catalog/internal/logger"
	"parts-catalog/internal/model"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// Resolution depths, also used as metric labels.
const (
	DepthDirect  = "direct"
	DepthInverse = "inverse"
	DepthBoth    = "both"
	DepthMerged  = "merged"
)

var CompatibilityResolverTracer = otel.Tracer("CompatibilityResolver")

// CompatibilityResolver walks the compatibility relation in both directions.
type CompatibilityResolver struct {
	store    CatalogStore
	recorder ResolutionRecorder
}

func NewCompatibilityResolver(store CatalogStore, recorder ResolutionRecorder) *CompatibilityResolver {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &CompatibilityResolver{store: store, recorder: recorder}
}

// Direct returns the products the anchor declares, in declaration order.
// Dangling references are skipped.
func (r *CompatibilityResolver) Direct(ctx context.Context, anchor *model.Product) ([]model.Product, error) {
	ctx, span := CompatibilityResolverTracer.Start(ctx, "CompatibilityResolver.Direct")
	defer span.End()
	span.SetAttributes(attribute.String("product.code", anchor.Code))
	logger.Info(ctx, "Service")

	products, err := r.direct(ctx, anchor)
	if err != nil {
		return nil, err
	}
	r.recorder.ObserveResolution(DepthDirect)
	return products, nil
}

// Inverse returns the products declaring the anchor as compatible.
func (r *CompatibilityResolver) Inverse(ctx context.Context, anchor *model.Product) ([]model.Product, error) {
	ctx, span := CompatibilityResolverTracer.Start(ctx, "CompatibilityResolver.Inverse")
	defer span.End()
	span.SetAttributes(attribute.String("product.code", anchor.Code))
	logger.Info(ctx, "Service")

	products, err := r.store.FindReferencing(ctx, anchor.Code)
	if err != nil {
		return nil, err
	}
	r.recorder.ObserveResolution(DepthInverse)
	return products, nil
}

// Both fetches the direct and inverse sets concurrently and keeps them apart.
func (r *CompatibilityResolver) Both(ctx context.Context, anchor *model.Product) (direct, inverse []model.Product, err error) {
	ctx, span := CompatibilityResolverTracer.Start(ctx, "CompatibilityResolver.Both")
	defer span.End()
	span.SetAttributes(attribute.String("product.code", anchor.Code))
	logger.Info(ctx, "Service")

	direct, inverse, err = r.both(ctx, anchor)
	if err != nil {
		span.RecordError(err)
		return nil, nil, err
	}
	r.recorder.ObserveResolution(DepthBoth)
	return direct, inverse, nil
}

// Merged returns direct then inverse products without duplicates and without the anchor itself.
func (r *CompatibilityResolver) Merged(ctx context.Context, anchor *model.Product) ([]model.Product, error) {
	ctx, span := CompatibilityResolverTracer.Start(ctx, "CompatibilityResolver.Merged")
	defer span.End()
	logger.Info(ctx, "Service")

	direct, inverse, err := r.both(ctx, anchor)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	merged := MergeCompatibles(anchor.Code, direct, inverse)
	span.SetAttributes(attribute.String("product.code", anchor.Code), attribute.Int("compatibility.merged", len(merged)))
	r.recorder.ObserveResolution(DepthMerged)
	return merged, nil
}

// Resolve loads the anchor by exact code and returns its merged compatibility set.
func (r *CompatibilityResolver) Resolve(ctx context.Context, code string) ([]model.Product, error) {
	ctx, span := CompatibilityResolverTracer.Start(ctx, "CompatibilityResolver.Resolve")
	defer span.End()
	span.SetAttributes(attribute.String("product.code", code))
	logger.Info(ctx, "Service")

	anchor, err := r.store.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return r.Merged(ctx, anchor)
}

func (r *CompatibilityResolver) both(ctx context.Context, anchor *model.Product) (direct, inverse []model.Product, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		direct, err = r.direct(gctx, anchor)
		return err
	})
	g.Go(func() error {
		var err error
		inverse, err = r.store.FindReferencing(gctx, anchor.Code)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return direct, inverse, nil
}

func (r *CompatibilityResolver) direct(ctx context.Context, anchor *model.Product) ([]model.Product, error) {
	codes := anchor.CompatibleCodes()
	found, err := r.store.FindByCodes(ctx, codes)
	if err != nil {
		return nil, err
	}
	return inDeclarationOrder(codes, found), nil
}

func inDeclarationOrder(codes []string, found []model.Product) []model.Product {
	byCode := make(map[string]model.Product, len(found))
	for _, p := range found {
		byCode[p.Code] = p
	}
	ordered := make([]model.Product, 0, len(found))
	for _, code := range codes {
		p, ok := byCode[code]
		if !ok {
			continue
		}
		ordered = append(ordered, p)
		delete(byCode, code)
	}
	return ordered
}

// MergeCompatibles concatenates the sets, keeps the first product per code and drops anchorCode.
func MergeCompatibles(anchorCode string, sets ...[]model.Product) []model.Product {
	seen := map[string]struct{}{anchorCode: {}}
	merged := make([]model.Product, 0)
	for _, set := range sets {
		for _, p := range set {
			if _, ok := seen[p.Code]; ok {
				continue
			}
			seen[p.Code] = struct{}{}
			merged = append(merged, p)
		}
	}
	return merged
}
