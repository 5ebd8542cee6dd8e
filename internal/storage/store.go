package storage

import (
	"context"

	"galp/internal/model"
)

// Store persists GA runs and their per-generation series.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run model.RunRecord) error
	GetRun(ctx context.Context, id string) (model.RunRecord, bool, error)
	ListRuns(ctx context.Context) ([]model.RunRecord, error)
	SaveGraph(ctx context.Context, graph model.GraphRecord) error
	GetGraph(ctx context.Context, runID string) (model.GraphRecord, bool, error)
	SaveFitnessHistory(ctx context.Context, runID string, history []float64) error
	GetFitnessHistory(ctx context.Context, runID string) ([]float64, bool, error)
	SaveGenerationDiagnostics(ctx context.Context, runID string, diagnostics []model.GenerationDiagnostics) error
	GetGenerationDiagnostics(ctx context.Context, runID string) ([]model.GenerationDiagnostics, bool, error)
	SaveTopChromosomes(ctx context.Context, runID string, top []model.TopChromosomeRecord) error
	GetTopChromosomes(ctx context.Context, runID string) ([]model.TopChromosomeRecord, bool, error)
}
