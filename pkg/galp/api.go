package galp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"galp/internal/config"
	"galp/internal/experiment"
	"galp/internal/graph"
	"galp/internal/metrics"
	"galp/internal/model"
	"galp/internal/platform"
	"galp/internal/report"
	"galp/internal/stats"
	"galp/internal/storage"
)

const (
	defaultArtifactsDir = "runs"
	defaultExportsDir   = "exports"
	defaultDBPath       = "galp.db"
	defaultStoreKind    = "sqlite"
)

type Options struct {
	StoreKind    string
	DBPath       string
	ArtifactsDir string
	ExportsDir   string
	// Plot writes a fitness chart into every run's artifacts.
	Plot     bool
	Reporter report.Reporter
	Metrics  *metrics.Collector
	Logger   *slog.Logger
}

type Client struct {
	store  storage.Store
	runner *platform.Runner
	log    *slog.Logger

	artifactsDir string
	exportsDir   string
}

type RunRequest struct {
	RunID  string
	Params config.Params
}

type RunSummary struct {
	RunID            string
	ArtifactsDir     string
	Seed             int64
	Generations      int
	Converged        bool
	BestObjective    float64
	BestText         string
	BestByGeneration []float64
	Elapsed          time.Duration
}

type RunsRequest struct {
	Limit int
}

type RunItem struct {
	RunID         string
	CreatedAtUTC  string
	Problem       string
	GraphType     string
	GraphNodes    int
	Seed          int64
	Population    int
	Generations   int
	CrossoverType string
	LocalSearch   bool
	Converged     bool
	BestObjective float64
}

type ExportRequest struct {
	RunID  string
	Latest bool
	OutDir string
}

type ExportSummary struct {
	RunID     string
	Directory string
}

type FitnessHistoryRequest struct {
	RunID  string
	Latest bool
	Limit  int
}

type DiagnosticsRequest struct {
	RunID  string
	Latest bool
	Limit  int
}

type TopChromosomesRequest struct {
	RunID  string
	Latest bool
	Limit  int
}

type GraphRequest struct {
	RunID  string
	Latest bool
}

type PlotRequest struct {
	RunID  string
	Latest bool
	// Average plots the per-generation mean best objective of these runs
	// instead of a single run.
	Average []string
	// OutPath defaults to the run's artifact directory, or the exports
	// directory for an averaged plot.
	OutPath string
}

// GraphSummary describes a generated graph.
type GraphSummary struct {
	Type        string
	Nodes       int
	Edges       []graph.Edge
	TotalWeight int
	Components  [][]int
}

type SweepRequest struct {
	ID                     string
	Notes                  string
	Params                 config.Params
	Runs                   int
	Parallel               int
	PopulationSizes        []int
	MutationProbabilities  []float64
	CrossoverProbabilities []float64
	EliteCounts            []int
}

type CompareRequest struct {
	ID       string
	Notes    string
	Params   config.Params
	Runs     int
	Parallel int
	Variants []experiment.Variant
	// Cases runs the comparison on each fixed graph instead of the graph
	// Params describes.
	Cases []experiment.GraphCase
}

type SweepSummary struct {
	ID        string
	Directory string
	Rows      []stats.SweepRow
	Best      []stats.SweepRow
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = defaultStoreKind
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	artifactsDir := opts.ArtifactsDir
	if artifactsDir == "" {
		artifactsDir = defaultArtifactsDir
	}
	exportsDir := opts.ExportsDir
	if exportsDir == "" {
		exportsDir = defaultExportsDir
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	return &Client{
		store: store,
		runner: platform.NewRunner(platform.Config{
			Store:        store,
			ArtifactsDir: artifactsDir,
			Plot:         opts.Plot,
			Reporter:     opts.Reporter,
			Metrics:      opts.Metrics,
			Logger:       logger,
		}),
		log:          logger,
		artifactsDir: artifactsDir,
		exportsDir:   exportsDir,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	return c.runner.Init(ctx)
}

func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	if err := c.Init(ctx); err != nil {
		return RunSummary{}, err
	}
	res, err := c.runner.Run(ctx, platform.RunRequest{RunID: req.RunID, Params: req.Params})
	if err != nil {
		return RunSummary{}, err
	}
	return RunSummary{
		RunID:            res.RunID,
		ArtifactsDir:     res.RunDir,
		Seed:             res.Params.RandomSeed,
		Generations:      res.Outcome.Generations,
		Converged:        res.Outcome.Converged,
		BestObjective:    res.Outcome.BestObjective,
		BestText:         res.Outcome.BestText,
		BestByGeneration: res.Outcome.BestByGeneration,
		Elapsed:          res.Elapsed,
	}, nil
}

// Graph builds the graph p describes without running the GA.
func (c *Client) Graph(_ context.Context, p config.Params) (GraphSummary, error) {
	p.Problem = config.ProblemLongestPath
	p, err := config.ResolveSeed(p)
	if err != nil {
		return GraphSummary{}, err
	}
	if err := p.Validate(); err != nil {
		return GraphSummary{}, err
	}
	g, err := platform.BuildGraph(p, rand.New(rand.NewSource(p.RandomSeed)))
	if err != nil {
		return GraphSummary{}, err
	}
	edges := g.Edges()
	summary := GraphSummary{
		Type:       p.GraphType.String(),
		Nodes:      g.NodeCount(),
		Edges:      edges,
		Components: graph.ConnectedComponents(edges, g.NodeCount()),
	}
	for _, e := range edges {
		summary.TotalWeight += e.Weight
	}
	return summary, nil
}

func (c *Client) Sweep(ctx context.Context, req SweepRequest) (SweepSummary, error) {
	started := time.Now().UTC()
	res, err := experiment.Sweep{
		Base:                   req.Params,
		Runs:                   req.Runs,
		Parallel:               req.Parallel,
		PopulationSizes:        req.PopulationSizes,
		MutationProbabilities:  req.MutationProbabilities,
		CrossoverProbabilities: req.CrossoverProbabilities,
		EliteCounts:            req.EliteCounts,
		Logger:                 c.log,
	}.Run(ctx)
	if err != nil {
		return SweepSummary{}, err
	}
	return c.saveSweep(stats.SweepRecord{
		ID:           req.ID,
		Kind:         stats.SweepParams,
		Notes:        req.Notes,
		StartedAtUTC: started.Format(time.RFC3339Nano),
		Config:       platform.RunConfigFromParams("", res.Params),
		RunsPerValue: req.Runs,
		Rows:         res.Rows,
		Best:         res.Best,
	})
}

func (c *Client) Compare(ctx context.Context, req CompareRequest) (SweepSummary, error) {
	started := time.Now().UTC()
	cmp := experiment.Compare{
		Base:     req.Params,
		Variants: req.Variants,
		Runs:     req.Runs,
		Parallel: req.Parallel,
		Logger:   c.log,
	}
	var (
		rows []stats.SweepRow
		err  error
	)
	if len(req.Cases) > 0 {
		rows, err = experiment.CompareCases(ctx, cmp, req.Cases)
	} else {
		rows, err = cmp.Run(ctx)
	}
	if err != nil {
		return SweepSummary{}, err
	}
	return c.saveSweep(stats.SweepRecord{
		ID:           req.ID,
		Kind:         stats.SweepCompare,
		Notes:        req.Notes,
		StartedAtUTC: started.Format(time.RFC3339Nano),
		Config:       platform.RunConfigFromParams("", req.Params),
		RunsPerValue: req.Runs,
		Rows:         rows,
	})
}

func (c *Client) saveSweep(rec stats.SweepRecord) (SweepSummary, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.CompletedAtUTC = time.Now().UTC().Format(time.RFC3339Nano)
	dir, err := stats.WriteSweep(c.artifactsDir, rec)
	if err != nil {
		return SweepSummary{}, fmt.Errorf("write sweep %s: %w", rec.ID, err)
	}
	c.log.Info("sweep saved", "id", rec.ID, "kind", rec.Kind, "rows", len(rec.Rows), "dir", dir)
	return SweepSummary{ID: rec.ID, Directory: filepath.Clean(dir), Rows: rec.Rows, Best: rec.Best}, nil
}

func (c *Client) Sweeps(_ context.Context) ([]stats.SweepRecord, error) {
	return stats.ListSweeps(c.artifactsDir)
}

func (c *Client) Runs(_ context.Context, req RunsRequest) ([]RunItem, error) {
	if req.Limit <= 0 {
		req.Limit = 20
	}

	entries, err := stats.ListRunIndex(c.artifactsDir)
	if err != nil {
		return nil, err
	}
	if len(entries) > req.Limit {
		entries = entries[:req.Limit]
	}

	out := make([]RunItem, 0, len(entries))
	for _, e := range entries {
		out = append(out, RunItem{
			RunID:         e.RunID,
			CreatedAtUTC:  e.CreatedAtUTC,
			Problem:       e.Problem,
			GraphType:     e.GraphType,
			GraphNodes:    e.GraphNodes,
			Seed:          e.Seed,
			Population:    e.PopulationSize,
			Generations:   e.Generations,
			CrossoverType: e.CrossoverType,
			LocalSearch:   e.LocalSearch,
			Converged:     e.Converged,
			BestObjective: e.FinalBestObjective,
		})
	}
	return out, nil
}

func (c *Client) Export(_ context.Context, req ExportRequest) (ExportSummary, error) {
	if req.RunID != "" && req.Latest {
		return ExportSummary{}, errors.New("use either run id or latest")
	}
	if req.RunID == "" && !req.Latest {
		return ExportSummary{}, errors.New("export requires run id or latest")
	}
	if req.OutDir == "" {
		req.OutDir = c.exportsDir
	}

	runID, err := c.resolveRunID(req.RunID, req.Latest, "export")
	if err != nil {
		return ExportSummary{}, err
	}
	exportedDir, err := stats.ExportRunArtifacts(c.artifactsDir, runID, req.OutDir)
	if err != nil {
		return ExportSummary{}, err
	}
	return ExportSummary{RunID: runID, Directory: filepath.Clean(exportedDir)}, nil
}

// FitnessHistory reads the store first and falls back to the run's
// artifacts, so runs made by another process stay readable with the memory
// store.
func (c *Client) FitnessHistory(ctx context.Context, req FitnessHistoryRequest) ([]float64, error) {
	if err := checkLookup(req.RunID, req.Latest, req.Limit); err != nil {
		return nil, err
	}
	runID, err := c.resolveRunID(req.RunID, req.Latest, "fitness history")
	if err != nil {
		return nil, err
	}
	if err := c.Init(ctx); err != nil {
		return nil, err
	}

	history, ok, err := c.store.GetFitnessHistory(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		history, ok, err = stats.ReadFitnessHistory(c.artifactsDir, runID)
		if err != nil {
			return nil, err
		}
	}
	if !ok {
		history, ok, err = stats.ReadHistorySeries(c.artifactsDir, runID)
		if err != nil {
			return nil, err
		}
	}
	if !ok {
		return nil, fmt.Errorf("fitness history not found for run id: %s", runID)
	}
	if req.Limit > 0 && len(history) > req.Limit {
		history = history[:req.Limit]
	}
	return history, nil
}

func (c *Client) Diagnostics(ctx context.Context, req DiagnosticsRequest) ([]model.GenerationDiagnostics, error) {
	if err := checkLookup(req.RunID, req.Latest, req.Limit); err != nil {
		return nil, err
	}
	runID, err := c.resolveRunID(req.RunID, req.Latest, "diagnostics")
	if err != nil {
		return nil, err
	}
	if err := c.Init(ctx); err != nil {
		return nil, err
	}

	diagnostics, ok, err := c.store.GetGenerationDiagnostics(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		diagnostics, ok, err = stats.ReadGenerationDiagnostics(c.artifactsDir, runID)
		if err != nil {
			return nil, err
		}
	}
	if !ok {
		return nil, fmt.Errorf("diagnostics not found for run id: %s", runID)
	}
	if req.Limit > 0 && len(diagnostics) > req.Limit {
		diagnostics = diagnostics[:req.Limit]
	}
	return diagnostics, nil
}

func (c *Client) TopChromosomes(ctx context.Context, req TopChromosomesRequest) ([]model.TopChromosomeRecord, error) {
	if err := checkLookup(req.RunID, req.Latest, req.Limit); err != nil {
		return nil, err
	}
	runID, err := c.resolveRunID(req.RunID, req.Latest, "top chromosomes")
	if err != nil {
		return nil, err
	}
	if err := c.Init(ctx); err != nil {
		return nil, err
	}

	top, ok, err := c.store.GetTopChromosomes(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		fromFiles, found, err := stats.ReadTopChromosomes(c.artifactsDir, runID)
		if err != nil {
			return nil, err
		}
		ok = found
		for _, t := range fromFiles {
			top = append(top, model.TopChromosomeRecord{
				VersionedRecord: storage.Versioned(),
				Rank:            t.Rank,
				Objective:       t.Objective,
				Text:            t.Text,
				Status:          t.Status,
				Genes:           t.Genes,
			})
		}
	}
	if !ok {
		return nil, fmt.Errorf("top chromosomes not found for run id: %s", runID)
	}
	if req.Limit > 0 && len(top) > req.Limit {
		top = top[:req.Limit]
	}
	return top, nil
}

func (c *Client) RunGraph(ctx context.Context, req GraphRequest) (model.GraphRecord, error) {
	if err := checkLookup(req.RunID, req.Latest, 0); err != nil {
		return model.GraphRecord{}, err
	}
	runID, err := c.resolveRunID(req.RunID, req.Latest, "graph")
	if err != nil {
		return model.GraphRecord{}, err
	}
	if err := c.Init(ctx); err != nil {
		return model.GraphRecord{}, err
	}

	rec, ok, err := c.store.GetGraph(ctx, runID)
	if err != nil {
		return model.GraphRecord{}, err
	}
	if !ok {
		rec, ok, err = stats.ReadGraph(c.artifactsDir, runID)
		if err != nil {
			return model.GraphRecord{}, err
		}
	}
	if !ok {
		return model.GraphRecord{}, fmt.Errorf("graph not found for run id: %s", runID)
	}
	return rec, nil
}

// Plot renders a stored run's history and returns the image path.
func (c *Client) Plot(ctx context.Context, req PlotRequest) (string, error) {
	if len(req.Average) > 0 {
		if req.RunID != "" || req.Latest {
			return "", errors.New("use either run ids to average or a single run")
		}
		return c.plotAverage(ctx, req.Average, req.OutPath)
	}
	runID, err := c.resolveRunID(req.RunID, req.Latest, "plot")
	if err != nil {
		return "", err
	}
	history, err := c.FitnessHistory(ctx, FitnessHistoryRequest{RunID: runID})
	if err != nil {
		return "", err
	}
	diagnostics, err := c.Diagnostics(ctx, DiagnosticsRequest{RunID: runID})
	if err != nil {
		diagnostics = nil
	}
	out := req.OutPath
	if out == "" {
		out = filepath.Join(c.artifactsDir, runID, stats.HistoryPlotFile)
	}
	title := "run " + runID
	if cfg, ok, err := stats.ReadRunConfig(c.artifactsDir, runID); err == nil && ok {
		title = fmt.Sprintf("run %s (%s)", runID, cfg.Problem)
	}
	if err := stats.WriteHistoryPlot(out, title, history, diagnostics); err != nil {
		return "", err
	}
	return filepath.Clean(out), nil
}

func (c *Client) plotAverage(ctx context.Context, runIDs []string, out string) (string, error) {
	lists := make([][]float64, 0, len(runIDs))
	for _, id := range runIDs {
		history, err := c.FitnessHistory(ctx, FitnessHistoryRequest{RunID: id})
		if err != nil {
			return "", err
		}
		lists = append(lists, history)
	}
	points := stats.BuildAveragePlot(lists)
	mean := make([]float64, len(points))
	for i, pt := range points {
		mean[i] = pt.Value
	}
	if out == "" {
		out = filepath.Join(c.exportsDir, "average_"+stats.HistoryPlotFile)
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return "", err
	}
	title := fmt.Sprintf("mean of %d runs", len(runIDs))
	if err := stats.WriteHistoryPlot(out, title, mean, nil); err != nil {
		return "", err
	}
	return filepath.Clean(out), nil
}

func checkLookup(runID string, latest bool, limit int) error {
	if runID != "" && latest {
		return errors.New("use either run id or latest")
	}
	if limit < 0 {
		return errors.New("limit must be >= 0")
	}
	return nil
}

func (c *Client) resolveRunID(runID string, latest bool, what string) (string, error) {
	if runID != "" && latest {
		return "", errors.New("use either run id or latest")
	}
	if !latest {
		if runID == "" {
			return "", fmt.Errorf("%s requires run id or latest", what)
		}
		return runID, nil
	}
	entries, err := stats.ListRunIndex(c.artifactsDir)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "", errors.New("no runs available")
	}
	return entries[0].RunID, nil
}
