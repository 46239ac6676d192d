package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sort"

	"parts-catalog/internal/filter"
	"parts-catalog/internal/logger"
	"parts-catalog/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// DefaultCollection holds the catalog when no collection name is configured.
const DefaultCollection = "products"

type ProductRepository struct {
	collection *mongo.Collection
}

var ProductRepositoryTracer = otel.Tracer("ProductRepository")

func NewProductRepository(db *mongo.Database, collection string) *ProductRepository {
	if collection == "" {
		collection = DefaultCollection
	}
	return &ProductRepository{
		collection: db.Collection(collection),
	}
}

// EnsureIndexes creates the unique code index plus the lookup indexes on type and compatibles.code.
func (r *ProductRepository) EnsureIndexes(ctx context.Context) error {
	ctx, span := ProductRepositoryTracer.Start(ctx, "ProductRepository.EnsureIndexes")
	defer span.End()
	logger.Info(ctx, "Repository")

	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "code", Value: 1}}, Options: options.Index().SetUnique(true).SetName("code_unique")},
		{Keys: bson.D{{Key: "type", Value: 1}}, Options: options.Index().SetName("type")},
		{Keys: bson.D{{Key: "compatibles.code", Value: 1}}, Options: options.Index().SetName("compatibles_code")},
	})
	if err != nil {
		return model.NewStoreError("EnsureIndexes", err)
	}
	return nil
}

func (r *ProductRepository) Ping(ctx context.Context) error {
	return r.collection.Database().Client().Ping(ctx, nil)
}

func (r *ProductRepository) Insert(ctx context.Context, product *model.Product) error {
	ctx, span := ProductRepositoryTracer.Start(ctx, "ProductRepository.Insert")
	defer span.End()
	logger.Info(ctx, "Repository")

	product.ApplyDefaults()
	product.ID = primitive.NewObjectID()
	if _, err := r.collection.InsertOne(ctx, product); err != nil {
		product.ID = primitive.NilObjectID
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", model.ErrDuplicateCode, product.Code)
		}
		return model.NewStoreError("Insert", err)
	}
	return nil
}

func (r *ProductRepository) FindAll(ctx context.Context) ([]model.Product, error) {
	ctx, span := ProductRepositoryTracer.Start(ctx, "ProductRepository.FindAll")
	defer span.End()
	logger.Info(ctx, "Repository")

	return r.find(ctx, "FindAll", bson.D{}, options.Find().SetSort(naturalOrder))
}

func (r *ProductRepository) FindByCode(ctx context.Context, code string) (*model.Product, error) {
	ctx, span := ProductRepositoryTracer.Start(ctx, "ProductRepository.FindByCode")
	defer span.End()
	span.SetAttributes(attribute.String("product.code", code))
	logger.Info(ctx, "Repository")

	return r.findOne(ctx, "FindByCode", bson.D{{Key: filter.FieldCode, Value: code}})
}

func (r *ProductRepository) FindByCodeFold(ctx context.Context, code string) (*model.Product, error) {
	ctx, span := ProductRepositoryTracer.Start(ctx, "ProductRepository.FindByCodeFold")
	defer span.End()
	span.SetAttributes(attribute.String("product.code", code))
	logger.Info(ctx, "Repository")

	pattern := primitive.Regex{Pattern: "^" + regexp.QuoteMeta(code) + "$", Options: "i"}
	return r.findOne(ctx, "FindByCodeFold", bson.D{{Key: filter.FieldCode, Value: pattern}})
}

func (r *ProductRepository) FindMany(ctx context.Context, expr filter.Expr, skip, limit int64) ([]model.Product, error) {
	ctx, span := ProductRepositoryTracer.Start(ctx, "ProductRepository.FindMany")
	defer span.End()
	span.SetAttributes(
		attribute.String("catalog.filter", expr.String()),
		attribute.Int64("catalog.skip", skip),
		attribute.Int64("catalog.limit", limit),
	)
	logger.Info(ctx, "Repository")
	query := ToBSON(expr)
	logger.Debug(ctx, "Mongo find", slog.Any("filter", query))

	if skip < 0 {
		skip = 0
	}
	opts := options.Find().SetSort(naturalOrder).SetSkip(skip)
	if limit > 0 {
		opts.SetLimit(limit)
	}
	return r.find(ctx, "FindMany", query, opts)
}

func (r *ProductRepository) FindByCodes(ctx context.Context, codes []string) ([]model.Product, error) {
	if len(codes) == 0 {
		return []model.Product{}, nil
	}

	ctx, span := ProductRepositoryTracer.Start(ctx, "ProductRepository.FindByCodes")
	defer span.End()
	span.SetAttributes(attribute.StringSlice("product.codes", codes))
	logger.Info(ctx, "Repository")

	query := bson.D{{Key: filter.FieldCode, Value: bson.D{{Key: "$in", Value: codes}}}}
	return r.find(ctx, "FindByCodes", query, options.Find().SetSort(naturalOrder))
}

func (r *ProductRepository) FindReferencing(ctx context.Context, code string) ([]model.Product, error) {
	ctx, span := ProductRepositoryTracer.Start(ctx, "ProductRepository.FindReferencing")
	defer span.End()
	span.SetAttributes(attribute.String("product.code", code))
	logger.Info(ctx, "Repository")

	query := bson.D{{Key: "compatibles.code", Value: code}}
	return r.find(ctx, "FindReferencing", query, options.Find().SetSort(naturalOrder))
}

func (r *ProductRepository) Count(ctx context.Context, expr filter.Expr) (int64, error) {
	ctx, span := ProductRepositoryTracer.Start(ctx, "ProductRepository.Count")
	defer span.End()
	span.SetAttributes(attribute.String("catalog.filter", expr.String()))
	logger.Info(ctx, "Repository")

	n, err := r.collection.CountDocuments(ctx, ToBSON(expr))
	if err != nil {
		return 0, model.NewStoreError("Count", err)
	}
	return n, nil
}

// DistinctTypes groups on type so that documents without one are reported too.
func (r *ProductRepository) DistinctTypes(ctx context.Context, expr filter.Expr) ([]string, error) {
	ctx, span := ProductRepositoryTracer.Start(ctx, "ProductRepository.DistinctTypes")
	defer span.End()
	span.SetAttributes(attribute.String("catalog.filter", expr.String()))
	logger.Info(ctx, "Repository")

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: ToBSON(expr)}},
		{{Key: "$group", Value: bson.D{{Key: "_id", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$" + filter.FieldType, ""}}}}}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, model.NewStoreError("DistinctTypes", err)
	}
	defer cursor.Close(ctx)

	var groups []struct {
		Type string `bson:"_id"`
	}
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, model.NewStoreError("DistinctTypes", err)
	}

	labels := make([]string, 0, len(groups))
	seen := make(map[string]struct{}, len(groups))
	for _, g := range groups {
		label := g.Type
		if label == "" {
			label = model.Uncategorized
		}
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels, nil
}

func (r *ProductRepository) ReplaceCompatibles(ctx context.Context, code string, refs []model.CompatibleRef) (*model.Product, error) {
	ctx, span := ProductRepositoryTracer.Start(ctx, "ProductRepository.ReplaceCompatibles")
	defer span.End()
	span.SetAttributes(attribute.String("product.code", code), attribute.Int("product.compatibles", len(refs)))
	logger.Info(ctx, "Repository")

	if refs == nil {
		refs = []model.CompatibleRef{}
	}
	update := bson.D{{Key: "$set", Value: bson.D{{Key: "compatibles", Value: refs}}}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var product model.Product
	err := r.collection.FindOneAndUpdate(ctx, bson.D{{Key: filter.FieldCode, Value: code}}, update, opts).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, model.ErrNotFound
		}
		return nil, model.NewStoreError("ReplaceCompatibles", err)
	}
	normalize(&product)
	return &product, nil
}

var naturalOrder = bson.D{{Key: "_id", Value: 1}}

func (r *ProductRepository) findOne(ctx context.Context, op string, query bson.D) (*model.Product, error) {
	var product model.Product
	if err := r.collection.FindOne(ctx, query).Decode(&product); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, model.ErrNotFound
		}
		return nil, model.NewStoreError(op, err)
	}
	normalize(&product)
	return &product, nil
}

func (r *ProductRepository) find(ctx context.Context, op string, query bson.D, opts *options.FindOptions) ([]model.Product, error) {
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, model.NewStoreError(op, err)
	}
	defer cursor.Close(ctx)

	products := make([]model.Product, 0)
	for cursor.Next(ctx) {
		var product model.Product
		if err := cursor.Decode(&product); err != nil {
			return nil, model.NewStoreError(op, err)
		}
		normalize(&product)
		products = append(products, product)
	}
	if err := cursor.Err(); err != nil {
		return nil, model.NewStoreError(op, err)
	}
	return products, nil
}

// normalize keeps compatibles a non-null array for documents written without one.
func normalize(p *model.Product) {
	if p.Compatibles == nil {
		p.Compatibles = []model.CompatibleRef{}
	}
}
