package repository

import (
	"testing"

	"parts-catalog/internal/filter"
	"parts-catalog/internal/model"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestToBSON(t *testing.T) {
	pattern := primitive.Regex{Pattern: `ya\.25`, Options: "i"}
	text := bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "name", Value: pattern}},
		bson.D{{Key: "code", Value: pattern}},
		bson.D{{Key: "brand", Value: pattern}},
	}}}

	tests := []struct {
		name string
		expr filter.Expr
		want bson.D
	}{
		{name: "all", expr: filter.All(), want: bson.D{}},
		{name: "text is escaped", expr: filter.Text("ya.25"), want: text},
		{
			name: "category",
			expr: filter.CategoryIn("Mount", "Base"),
			want: bson.D{{Key: "type", Value: bson.D{{Key: "$in", Value: bson.A{"Mount", "Base"}}}}},
		},
		{
			name: "uncategorized matches missing and empty",
			expr: filter.CategoryIn(model.Uncategorized),
			want: bson.D{{Key: "type", Value: bson.D{{Key: "$in", Value: bson.A{model.Uncategorized, nil, ""}}}}},
		},
		{
			name: "and",
			expr: filter.And(filter.Text("ya.25"), filter.CategoryIn("Mount")),
			want: bson.D{{Key: "$and", Value: bson.A{
				text,
				bson.D{{Key: "type", Value: bson.D{{Key: "$in", Value: bson.A{"Mount"}}}}},
			}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToBSON(tt.expr))
		})
	}
}
