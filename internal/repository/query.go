package repository

import (
	"parts-catalog/internal/filter"
	"parts-catalog/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ToBSON translates a filter expression into a Mongo query document.
func ToBSON(expr filter.Expr) bson.D {
	switch expr.Kind() {
	case filter.KindText:
		pattern := primitive.Regex{Pattern: expr.Pattern(), Options: "i"}
		or := make(bson.A, 0, len(filter.TextFields))
		for _, field := range filter.TextFields {
			or = append(or, bson.D{{Key: field, Value: pattern}})
		}
		return bson.D{{Key: "$or", Value: or}}
	case filter.KindCategoryIn:
		return bson.D{{Key: filter.FieldType, Value: bson.D{{Key: "$in", Value: categoryValues(expr.Labels())}}}}
	case filter.KindAnd:
		and := make(bson.A, 0, len(expr.Children()))
		for _, c := range expr.Children() {
			and = append(and, ToBSON(c))
		}
		return bson.D{{Key: "$and", Value: and}}
	default:
		return bson.D{}
	}
}

// categoryValues extends the Uncategorized label with null and "". $in on null
// also matches documents without the field.
func categoryValues(labels []string) bson.A {
	values := make(bson.A, 0, len(labels)+2)
	sentinel := false
	for _, l := range labels {
		if l == model.Uncategorized {
			sentinel = true
		}
		values = append(values, l)
	}
	if sentinel {
		values = append(values, nil, "")
	}
	return values
}
