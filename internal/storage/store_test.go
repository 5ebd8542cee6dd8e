package storage

import (
	"context"
	"testing"

	"galp/internal/model"
)

// exerciseStore runs the same persistence checks against any backend.
func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	older := model.RunRecord{
		VersionedRecord: Versioned(),
		ID:              "run-a",
		Problem:         "longest_path",
		GraphType:       "kite",
		GraphNodes:      13,
		Seed:            7,
		Generations:     40,
		Converged:       true,
		BestObjective:   312,
		BestText:        "(1 | 2, 3) - [312 | 1, 2, 3]",
		CreatedAtUTC:    "2024-01-01T00:00:00Z",
	}
	newer := older
	newer.ID = "run-b"
	newer.CreatedAtUTC = "2024-02-01T00:00:00Z"
	for _, run := range []model.RunRecord{older, newer} {
		if err := store.SaveRun(ctx, run); err != nil {
			t.Fatalf("save run %s: %v", run.ID, err)
		}
	}

	loaded, ok, err := store.GetRun(ctx, "run-a")
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if !ok || loaded.BestObjective != 312 || loaded.BestText != older.BestText || !loaded.Converged {
		t.Fatalf("unexpected run: ok=%t %+v", ok, loaded)
	}
	if _, ok, err := store.GetRun(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected missing run, ok=%t err=%v", ok, err)
	}

	runs, err := store.ListRuns(ctx)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "run-b" || runs[1].ID != "run-a" {
		t.Fatalf("unexpected run order: %+v", runs)
	}

	graph := model.GraphRecord{
		VersionedRecord: Versioned(),
		RunID:           "run-a",
		NodeCount:       3,
		Edges:           []model.EdgeRecord{{A: 1, B: 2, Weight: 2}, {A: 2, B: 3, Weight: 3}},
	}
	if err := store.SaveGraph(ctx, graph); err != nil {
		t.Fatalf("save graph: %v", err)
	}
	loadedGraph, ok, err := store.GetGraph(ctx, "run-a")
	if err != nil || !ok {
		t.Fatalf("get graph: ok=%t err=%v", ok, err)
	}
	if loadedGraph.NodeCount != 3 || len(loadedGraph.Edges) != 2 || loadedGraph.Edges[1].Weight != 3 {
		t.Fatalf("unexpected graph: %+v", loadedGraph)
	}

	history := []float64{10, 12, 12}
	if err := store.SaveFitnessHistory(ctx, "run-a", history); err != nil {
		t.Fatalf("save history: %v", err)
	}
	loadedHistory, ok, err := store.GetFitnessHistory(ctx, "run-a")
	if err != nil || !ok {
		t.Fatalf("get history: ok=%t err=%v", ok, err)
	}
	if len(loadedHistory) != 3 || loadedHistory[1] != 12 {
		t.Fatalf("unexpected history: %+v", loadedHistory)
	}

	diagnostics := []model.GenerationDiagnostics{
		{Generation: 1, BestObjective: 10, MeanObjective: 6, MinObjective: 1, Distinct: 8, Elites: 2},
		{Generation: 2, BestObjective: 12, MeanObjective: 7.5, MinObjective: 2, Distinct: 6, Elites: 2},
	}
	if err := store.SaveGenerationDiagnostics(ctx, "run-a", diagnostics); err != nil {
		t.Fatalf("save diagnostics: %v", err)
	}
	loadedDiagnostics, ok, err := store.GetGenerationDiagnostics(ctx, "run-a")
	if err != nil || !ok {
		t.Fatalf("get diagnostics: ok=%t err=%v", ok, err)
	}
	if len(loadedDiagnostics) != 2 || loadedDiagnostics[1].MeanObjective != 7.5 {
		t.Fatalf("unexpected diagnostics: %+v", loadedDiagnostics)
	}

	top := []model.TopChromosomeRecord{
		{VersionedRecord: Versioned(), Rank: 1, Objective: 12, Text: "best", Status: "elite", Genes: []int{1, 2, 3, 1}},
		{VersionedRecord: Versioned(), Rank: 2, Objective: 10, Text: "second", Status: "offspring"},
	}
	if err := store.SaveTopChromosomes(ctx, "run-a", top); err != nil {
		t.Fatalf("save top: %v", err)
	}
	loadedTop, ok, err := store.GetTopChromosomes(ctx, "run-a")
	if err != nil || !ok {
		t.Fatalf("get top: ok=%t err=%v", ok, err)
	}
	if len(loadedTop) != 2 || loadedTop[0].Status != "elite" || len(loadedTop[0].Genes) != 4 {
		t.Fatalf("unexpected top chromosomes: %+v", loadedTop)
	}

	if _, ok, err := store.GetTopChromosomes(ctx, "run-b"); err != nil || ok {
		t.Fatalf("expected no top chromosomes for run-b, ok=%t err=%v", ok, err)
	}
}
