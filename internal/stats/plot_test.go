package stats

import (
	"os"
	"path/filepath"
	"testing"

	"galp/internal/model"
)

func TestBuildAveragePlot(t *testing.T) {
	lists := [][]float64{
		{1, 2, 3},
		{2, 4},
		{3},
	}
	points := BuildAveragePlot(lists)
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d (%+v)", len(points), points)
	}
	if points[0].Index != 1 || points[2].Index != 3 {
		t.Fatalf("unexpected indices: %+v", points)
	}
	if points[0].Value != 2 || points[1].Value != 3 || points[2].Value != 3 {
		t.Fatalf("unexpected averages: %+v", points)
	}
	if got := BuildAveragePlot(nil); len(got) != 0 {
		t.Fatalf("expected no points, got %+v", got)
	}
}

func TestWriteHistoryPlot(t *testing.T) {
	path := filepath.Join(t.TempDir(), HistoryPlotFile)
	diagnostics := []model.GenerationDiagnostics{
		{Generation: 1, MeanObjective: 2},
		{Generation: 2, MeanObjective: 3.5},
	}
	if err := WriteHistoryPlot(path, "history", []float64{4, 6}, diagnostics); err != nil {
		t.Fatalf("write plot: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat plot: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("expected non-empty plot")
	}
	if err := WriteHistoryPlot(path, "empty", nil, nil); err == nil {
		t.Fatal("expected error for empty history")
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{2, 5, 9, 9})
	if s.Generations != 4 || s.InitialBest != 2 || s.FinalBest != 9 {
		t.Fatalf("unexpected summary: %+v", s)
	}
	if s.Improvement != 7 || s.BestMax != 9 || s.BestMin != 2 {
		t.Fatalf("unexpected range: %+v", s)
	}
	if s.FirstBestGeneration != 3 {
		t.Fatalf("expected first best at generation 3, got %d", s.FirstBestGeneration)
	}
	if s.BestMean != 6.25 {
		t.Fatalf("unexpected mean %v", s.BestMean)
	}
	if single := Summarize([]float64{4}); single.BestStd != 0 {
		t.Fatalf("expected zero deviation for one value, got %v", single.BestStd)
	}
	if empty := Summarize(nil); empty.Generations != 0 {
		t.Fatalf("expected empty summary, got %+v", empty)
	}

	mean, std := MeanStd([]float64{1, 3})
	if mean != 2 || std <= 1.41 || std >= 1.42 {
		t.Fatalf("unexpected mean/std %v %v", mean, std)
	}
}
