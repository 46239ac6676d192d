// Package seed loads catalog fixtures written in YAML.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"parts-catalog/internal/logger"
	"parts-catalog/internal/model"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Fixture is the document layout of a seed file.
type Fixture struct {
	Products []model.Product `yaml:"products"`
}

// Creator is satisfied by the product service.
type Creator interface {
	Create(ctx context.Context, p *model.Product) (*model.Product, error)
}

type Report struct {
	RunID   string
	Created int
	Skipped int
}

// Decode reads one fixture document. Unknown keys are rejected.
func Decode(r io.Reader) ([]model.Product, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f Fixture
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	return f.Products, nil
}

// Apply creates every product in order. Codes that already exist are skipped;
// any other failure stops the run.
func Apply(ctx context.Context, c Creator, products []model.Product) (Report, error) {
	report := Report{RunID: uuid.NewString()}
	ctx = logger.WithRequestID(ctx, report.RunID)

	for i := range products {
		p := products[i]
		_, err := c.Create(ctx, &p)
		switch {
		case err == nil:
			report.Created++
		case errors.Is(err, model.ErrDuplicateCode):
			report.Skipped++
			logger.Warn(ctx, "Skipping existing product", slog.String("code", p.Code))
		default:
			return report, fmt.Errorf("seed product %d (%q): %w", i, p.Code, err)
		}
	}

	logger.Info(ctx, "Seed finished",
		slog.Int("created", report.Created),
		slog.Int("skipped", report.Skipped),
	)
	return report, nil
}
