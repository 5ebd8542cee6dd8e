package platform

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"galp/internal/config"
	"galp/internal/graph"
	"galp/internal/metrics"
	"galp/internal/model"
	"galp/internal/report"
	"galp/internal/stats"
	"galp/internal/storage"
)

type Config struct {
	Store storage.Store
	// ArtifactsDir receives per-run files and the run index. Empty disables
	// artifact output.
	ArtifactsDir string
	// Plot adds a history chart to the artifacts.
	Plot     bool
	Reporter report.Reporter
	Metrics  *metrics.Collector
	Logger   *slog.Logger
	Now      func() time.Time
}

type RunRequest struct {
	RunID  string
	Params config.Params
}

type RunResult struct {
	RunID        string
	Params       config.Params
	Outcome      Outcome
	Graph        *model.GraphRecord
	RunDir       string
	Elapsed      time.Duration
	CreatedAtUTC string
}

// Runner executes GA runs and persists what they produce.
type Runner struct {
	store        storage.Store
	artifactsDir string
	plot         bool
	reporter     report.Reporter
	metrics      *metrics.Collector
	log          *slog.Logger
	now          func() time.Time

	mu      sync.Mutex
	started bool
}

func NewRunner(cfg Config) *Runner {
	r := &Runner{
		store:        cfg.Store,
		artifactsDir: cfg.ArtifactsDir,
		plot:         cfg.Plot,
		reporter:     cfg.Reporter,
		metrics:      cfg.Metrics,
		log:          cfg.Logger,
		now:          cfg.Now,
	}
	if r.reporter == nil {
		r.reporter = report.Discard{}
	}
	if r.log == nil {
		r.log = slog.Default()
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r
}

func (r *Runner) Init(ctx context.Context) error {
	if r.store == nil {
		return fmt.Errorf("store is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return nil
	}
	if err := r.store.Init(ctx); err != nil {
		return err
	}
	r.started = true
	return nil
}

func (r *Runner) Store() storage.Store {
	return r.store
}

// Run builds the graph, evolves until convergence or the generation cap,
// then saves the run to the store and the artifacts directory.
func (r *Runner) Run(ctx context.Context, req RunRequest) (RunResult, error) {
	r.mu.Lock()
	started := r.started
	r.mu.Unlock()
	if !started {
		return RunResult{}, fmt.Errorf("runner is not initialized")
	}

	params, err := config.ResolveSeed(req.Params)
	if err != nil {
		return RunResult{}, err
	}
	if err := params.Validate(); err != nil {
		return RunResult{}, err
	}
	runID := req.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	log := r.log.With("run_id", runID, "problem", params.Problem)

	start := r.now()
	rng := rand.New(rand.NewSource(params.RandomSeed))
	result := RunResult{RunID: runID, Params: params}

	var g *graph.Graph
	if params.Problem == config.ProblemLongestPath {
		buildStart := time.Now()
		g, err = BuildGraph(params, rng)
		if err != nil {
			r.metrics.ObserveRun(params.Problem, "error", time.Since(start))
			return RunResult{}, err
		}
		r.metrics.ObserveGraphBuild(params.GraphType.String(), time.Since(buildStart))
		result.Graph = GraphRecord(runID, g)
		log.Info("graph ready",
			"graph_type", params.GraphType.String(),
			"nodes", g.NodeCount(),
			"edges", len(result.Graph.Edges),
		)
	}

	log.Info("run started",
		"seed", params.RandomSeed,
		"population_size", params.PopulationSize,
		"max_generations", params.Generations,
		"crossover", params.Crossover.String(),
		"local_search", params.LocalSearch,
	)
	progress := &progressReporter{
		log:     log,
		metrics: r.metrics,
		problem: params.Problem,
		runID:   runID,
		last:    time.Now(),
	}
	outcome, err := Evolve(ctx, params, g, rng, report.Multi{r.reporter, progress})
	result.Elapsed = r.now().Sub(start)
	if err != nil {
		r.metrics.ObserveRun(params.Problem, "error", result.Elapsed)
		log.Error("run failed", "error", err)
		return RunResult{}, err
	}
	result.Outcome = outcome
	result.CreatedAtUTC = start.UTC().Format(time.RFC3339Nano)

	outcomeLabel := "limit"
	if outcome.Converged {
		outcomeLabel = "converged"
	}
	r.metrics.ObserveRun(params.Problem, outcomeLabel, result.Elapsed)
	log.Info("run finished",
		"generations", outcome.Generations,
		"converged", outcome.Converged,
		"best_objective", outcome.BestObjective,
		"elapsed", result.Elapsed,
	)

	if err := r.persist(ctx, &result); err != nil {
		return RunResult{}, fmt.Errorf("persist run %s: %w", runID, err)
	}
	return result, nil
}

func (r *Runner) persist(ctx context.Context, result *RunResult) error {
	p := result.Params
	out := result.Outcome
	run := model.RunRecord{
		VersionedRecord:  storage.Versioned(),
		ID:               result.RunID,
		Problem:          p.Problem,
		Seed:             p.RandomSeed,
		Generations:      out.Generations,
		Converged:        out.Converged,
		BestObjective:    out.BestObjective,
		BestText:         out.BestText,
		CreatedAtUTC:     result.CreatedAtUTC,
		ElapsedMillis:    result.Elapsed.Milliseconds(),
		LocalSearch:      p.LocalSearch,
		PopulationSize:   p.PopulationSize,
		EliteCount:       p.Elites,
		MutationProb:     p.MutationProbability,
		CrossoverProb:    p.CrossoverProbability,
		ConvergenceLimit: p.ConvergenceThreshold,
	}
	if p.Problem == config.ProblemLongestPath {
		run.GraphType = p.GraphType.String()
		run.GraphNodes = p.GraphNodes
		run.CrossoverType = p.Crossover.String()
	}
	if err := r.store.SaveRun(ctx, run); err != nil {
		return err
	}
	if result.Graph != nil {
		if err := r.store.SaveGraph(ctx, *result.Graph); err != nil {
			return err
		}
	}
	if err := r.store.SaveFitnessHistory(ctx, result.RunID, out.BestByGeneration); err != nil {
		return err
	}
	if err := r.store.SaveGenerationDiagnostics(ctx, result.RunID, out.Diagnostics); err != nil {
		return err
	}
	if err := r.store.SaveTopChromosomes(ctx, result.RunID, toModelTop(out.Top)); err != nil {
		return err
	}

	if r.artifactsDir == "" {
		return nil
	}
	runDir, err := stats.WriteRunArtifacts(r.artifactsDir, stats.RunArtifacts{
		Config:                RunConfigFromParams(result.RunID, p),
		BestByGeneration:      out.BestByGeneration,
		GenerationDiagnostics: out.Diagnostics,
		FinalBestObjective:    out.BestObjective,
		Converged:             out.Converged,
		TopChromosomes:        out.Top,
		Graph:                 result.Graph,
		Summary:               stats.Summarize(out.BestByGeneration),
	})
	if err != nil {
		return err
	}
	result.RunDir = runDir
	if r.plot {
		title := fmt.Sprintf("%s run %s", p.Problem, result.RunID)
		if err := stats.WriteHistoryPlot(filepath.Join(runDir, stats.HistoryPlotFile), title, out.BestByGeneration, out.Diagnostics); err != nil {
			return err
		}
	}
	return stats.AppendRunIndex(r.artifactsDir, stats.RunIndexEntry{
		RunID:              result.RunID,
		Problem:            p.Problem,
		GraphType:          run.GraphType,
		GraphNodes:         run.GraphNodes,
		PopulationSize:     p.PopulationSize,
		Generations:        out.Generations,
		Seed:               p.RandomSeed,
		Workers:            p.Workers,
		EliteCount:         p.Elites,
		CrossoverType:      run.CrossoverType,
		LocalSearch:        p.LocalSearch,
		Converged:          out.Converged,
		FinalBestObjective: out.BestObjective,
		CreatedAtUTC:       result.CreatedAtUTC,
	})
}

// RunConfigFromParams flattens p into the artifact config record.
func RunConfigFromParams(runID string, p config.Params) stats.RunConfig {
	cfg := stats.RunConfig{
		RunID:                runID,
		Problem:              p.Problem,
		Seed:                 p.RandomSeed,
		Generations:          p.Generations,
		PopulationSize:       p.PopulationSize,
		MutationProbability:  p.MutationProbability,
		CrossoverProbability: p.CrossoverProbability,
		ConvergenceThreshold: p.ConvergenceThreshold,
		Elites:               p.Elites,
		LocalSearch:          p.LocalSearch,
		FitnessA:             p.FitnessA,
		FitnessB:             p.FitnessB,
		Workers:              p.Workers,
		Selection:            p.Selection,
	}
	switch p.Problem {
	case config.ProblemLongestPath:
		cfg.GraphType = p.GraphType.String()
		cfg.GraphNodes = p.GraphNodes
		cfg.GraphP = p.GraphP
		cfg.GraphOverrideOnes = p.GraphOverrideOnes
		cfg.CrossoverType = p.Crossover.String()
		cfg.MutateStart = p.MutateStart
	case config.ProblemMaxInt:
		cfg.ChromosomeLength = p.ChromosomeLength
	}
	return cfg
}

func toModelTop(top []stats.TopChromosome) []model.TopChromosomeRecord {
	out := make([]model.TopChromosomeRecord, 0, len(top))
	for _, t := range top {
		out = append(out, model.TopChromosomeRecord{
			VersionedRecord: storage.Versioned(),
			Rank:            t.Rank,
			Objective:       t.Objective,
			Text:            t.Text,
			Status:          t.Status,
			Genes:           append([]int(nil), t.Genes...),
		})
	}
	return out
}

// progressReporter feeds generation reports into logs and metrics.
type progressReporter struct {
	log     *slog.Logger
	metrics *metrics.Collector
	problem string
	runID   string
	last    time.Time
}

func (p *progressReporter) Generation(g report.GenerationReport) {
	now := time.Now()
	p.metrics.ObserveGeneration(p.problem, p.runID, g.Objective, now.Sub(p.last))
	p.last = now
	p.log.Debug("generation", "generation", g.Generation, "best_objective", g.Objective)
}

func (p *progressReporter) Converged(generation int) {
	p.log.Debug("stopped", "generation", generation)
}
