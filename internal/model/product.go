package model

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultProvider is stored when a product is created without a provider.
const DefaultProvider = "Provider"

// Uncategorized is the facet label for products whose type is missing or empty.
// Selecting it as a category matches those products.
const Uncategorized = "Uncategorized"

// CompatibleRef is an edge from the owning product to another product code.
// The referenced code does not have to exist in the catalog.
type CompatibleRef struct {
	Type string `json:"type" bson:"type" yaml:"type"`
	Code string `json:"code" bson:"code" yaml:"code"`
}

type Product struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty" yaml:"-"`
	Code        string             `json:"code" bson:"code" yaml:"code"`
	Name        string             `json:"name" bson:"name" yaml:"name"`
	Brand       string             `json:"brand,omitempty" bson:"brand,omitempty" yaml:"brand"`
	Provider    string             `json:"provider,omitempty" bson:"provider,omitempty" yaml:"provider"`
	Group       string             `json:"group,omitempty" bson:"group,omitempty" yaml:"group"`
	Line        string             `json:"line,omitempty" bson:"line,omitempty" yaml:"line"`
	Image       string             `json:"image,omitempty" bson:"image,omitempty" yaml:"image"`
	Type        string             `json:"type,omitempty" bson:"type,omitempty" yaml:"type"`
	Datasheet   string             `json:"datasheet,omitempty" bson:"datasheet,omitempty" yaml:"datasheet"`
	Compatibles []CompatibleRef    `json:"compatibles" bson:"compatibles" yaml:"compatibles"`
	Price       float64            `json:"price" bson:"price" yaml:"price"`
	Stock       int                `json:"stock" bson:"stock" yaml:"stock"`
}

// ApplyDefaults fills the values a new product gets when they are omitted.
func (p *Product) ApplyDefaults() {
	if p.Provider == "" {
		p.Provider = DefaultProvider
	}
	if p.Compatibles == nil {
		p.Compatibles = []CompatibleRef{}
	}
}

// Validate checks the fields required on creation.
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Code) == "" {
		return NewValidationError("code", "is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return NewValidationError("name", "is required")
	}
	return ValidateCompatibles(p.Compatibles)
}

// CompatibleCodes returns the referenced codes in declaration order.
func (p *Product) CompatibleCodes() []string {
	codes := make([]string, 0, len(p.Compatibles))
	for _, c := range p.Compatibles {
		codes = append(codes, c.Code)
	}
	return codes
}

// Category returns the facet label of the product.
func (p *Product) Category() string {
	if p.Type == "" {
		return Uncategorized
	}
	return p.Type
}

// ValidateCompatibles requires both type and code on every entry.
func ValidateCompatibles(refs []CompatibleRef) error {
	for i, ref := range refs {
		if strings.TrimSpace(ref.Code) == "" {
			return NewValidationError(indexedField("compatibles", i, "code"), "is required")
		}
		if strings.TrimSpace(ref.Type) == "" {
			return NewValidationError(indexedField("compatibles", i, "type"), "is required")
		}
	}
	return nil
}
