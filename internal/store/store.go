package store

import (
	"context"

	"github.com/eyupmaiden/sample-size-and-significance-calculators/internal/stats"
)

// Source supplies observed counts for experiments recorded elsewhere.
type Source interface {
	ListExperiments(ctx context.Context) ([]*Experiment, error)
	GetExperiment(ctx context.Context, name string) (*Experiment, error)
	GetVariants(ctx context.Context, name string) ([]stats.Variant, error)
	Close() error
}
