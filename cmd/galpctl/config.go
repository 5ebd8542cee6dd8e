package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"galp/internal/config"
	"galp/internal/experiment"
	"galp/internal/longestpath"
	"galp/internal/metrics"
	galp "galp/pkg/galp"
)

const (
	defaultArtifactsDir = "runs"
	defaultExportsDir   = "exports"
	defaultDBPath       = "galp.db"
)

// commonFlags are shared by every command that opens the client.
type commonFlags struct {
	storeKind    *string
	dbPath       *string
	artifactsDir *string
	logLevel     *string
	logFormat    *string
}

func addCommonFlags(fs *flag.FlagSet) commonFlags {
	return commonFlags{
		storeKind:    fs.String("store", "sqlite", "store backend: memory|sqlite"),
		dbPath:       fs.String("db-path", defaultDBPath, "sqlite database path"),
		artifactsDir: fs.String("artifacts-dir", defaultArtifactsDir, "run artifacts directory"),
		logLevel:     fs.String("log-level", "warn", "log level: debug|info|warn|error"),
		logFormat:    fs.String("log-format", "text", "log format: text|json"),
	}
}

func (c commonFlags) client(opts galp.Options) (*galp.Client, error) {
	logger, err := newLogger(os.Stderr, *c.logLevel, *c.logFormat)
	if err != nil {
		return nil, err
	}
	if opts.StoreKind == "" {
		opts.StoreKind = *c.storeKind
	}
	opts.DBPath = *c.dbPath
	opts.ArtifactsDir = *c.artifactsDir
	if opts.ExportsDir == "" {
		opts.ExportsDir = defaultExportsDir
	}
	opts.Logger = logger
	return galp.New(opts)
}

func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	switch format {
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
}

// paramFlags mirror the parameter file keys.
type paramFlags struct {
	config      *string
	problem     *string
	graphType   *string
	nodes       *int
	p           *float64
	seed        *int64
	ones        *bool
	gens        *int
	pop         *int
	length      *int
	mutation    *float64
	crossover   *float64
	convergence *int
	elites      *int
	crossType   *string
	localSearch *bool
	mutateStart *bool
	workers     *int
	selection   *string
}

func addParamFlags(fs *flag.FlagSet) paramFlags {
	d := config.Default()
	return paramFlags{
		config:      fs.String("config", "", "parameter file (key = value lines, or .json)"),
		problem:     fs.String("problem", d.Problem, "problem: longest_path|max_int"),
		graphType:   fs.String("graph-type", d.GraphType.String(), "graph type name or code"),
		nodes:       fs.Int("nodes", d.GraphNodes, "graph node count"),
		p:           fs.Float64("p", d.GraphP, "random graph edge probability"),
		seed:        fs.Int64("seed", d.RandomSeed, "rng seed (0 draws one)"),
		ones:        fs.Bool("ones", d.GraphOverrideOnes, "override every edge weight with 1"),
		gens:        fs.Int("gens", d.Generations, "generation cap"),
		pop:         fs.Int("pop", d.PopulationSize, "population size"),
		length:      fs.Int("length", d.ChromosomeLength, "bit count for max_int"),
		mutation:    fs.Float64("mutation", d.MutationProbability, "mutation probability"),
		crossover:   fs.Float64("crossover", d.CrossoverProbability, "crossover probability"),
		convergence: fs.Int("convergence", d.ConvergenceThreshold, "generations without improvement before stopping"),
		elites:      fs.Int("elites", d.Elites, "elites carried unchanged"),
		crossType:   fs.String("crossover-type", d.Crossover.String(), "crossover: random|fixed_position|optimum_greedy|path_splice or code"),
		localSearch: fs.Bool("local-search", d.LocalSearch, "run local search on offspring"),
		mutateStart: fs.Bool("mutate-start", d.MutateStart, "let mutation move a path's start node"),
		workers:     fs.Int("workers", d.Workers, "objective evaluation workers"),
		selection:   fs.String("selection", d.Selection, "parent selection: roulette|tournament"),
	}
}

// flagKeys maps flag names to parameter file keys.
var flagKeys = map[string]string{
	"problem":        "problem",
	"graph-type":     "graph_type",
	"nodes":          "graph_nodes",
	"p":              "graph_p",
	"seed":           "random_seed",
	"ones":           "graph_override_ones",
	"gens":           "nr_generations",
	"pop":            "population_size",
	"length":         "chromosome_length",
	"mutation":       "mutation_probability",
	"crossover":      "crossover_probability",
	"convergence":    "convergence_threshold",
	"elites":         "nr_of_elites",
	"crossover-type": "crossover_type",
	"local-search":   "local_search",
	"mutate-start":   "mutate_start",
	"workers":        "workers",
	"selection":      "selection",
}

func (f paramFlags) values() map[string]any {
	return map[string]any{
		"problem":        *f.problem,
		"graph-type":     *f.graphType,
		"nodes":          *f.nodes,
		"p":              *f.p,
		"seed":           *f.seed,
		"ones":           *f.ones,
		"gens":           *f.gens,
		"pop":            *f.pop,
		"length":         *f.length,
		"mutation":       *f.mutation,
		"crossover":      *f.crossover,
		"convergence":    *f.convergence,
		"elites":         *f.elites,
		"crossover-type": *f.crossType,
		"local-search":   *f.localSearch,
		"mutate-start":   *f.mutateStart,
		"workers":        *f.workers,
		"selection":      *f.selection,
	}
}

// resolve loads the parameter file, when given, and applies the flags the
// caller set explicitly on top of it. Without a file every flag applies.
func (f paramFlags) resolve(fs *flag.FlagSet) (config.Params, error) {
	p := config.Default()
	if *f.config != "" {
		loaded, err := config.Load(*f.config)
		if err != nil {
			return config.Params{}, err
		}
		p = loaded
	}
	setFlags := make(map[string]bool)
	fs.Visit(func(fl *flag.Flag) {
		setFlags[fl.Name] = true
	})
	if err := overrideFromFlags(&p, setFlags, f.values(), *f.config == ""); err != nil {
		return config.Params{}, err
	}
	return p, p.Validate()
}

func overrideFromFlags(p *config.Params, set map[string]bool, flagValue map[string]any, all bool) error {
	raw := make(map[string]any)
	for name, v := range flagValue {
		if !all && !set[name] {
			continue
		}
		key, ok := flagKeys[name]
		if !ok {
			continue
		}
		raw[key] = v
	}
	return config.Apply(p, raw)
}

func parseIntList(s string) ([]int, error) {
	var out []int
	for _, part := range splitList(s) {
		v, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", part)
		}
		out = append(out, v)
	}
	return out, nil
}

func parseFloatList(s string) ([]float64, error) {
	var out []float64
	for _, part := range splitList(s) {
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", part)
		}
		out = append(out, v)
	}
	return out, nil
}

// parseVariants reads "crossover[+ls],..." such as "random,random+ls".
func parseVariants(s string) ([]experiment.Variant, error) {
	var out []experiment.Variant
	for _, part := range splitList(s) {
		name, ls := strings.CutSuffix(part, "+ls")
		strategy, err := longestpath.ParseCrossover(name)
		if err != nil {
			return nil, err
		}
		out = append(out, experiment.Variant{Crossover: strategy, LocalSearch: ls})
	}
	return out, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// serveMetrics exposes the collector until the returned stop is called. An
// empty addr serves nothing.
func serveMetrics(addr string, collector *metrics.Collector, log io.Writer) (stop func(), err error) {
	if addr == "" {
		return func() {}, nil
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listener: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(log, "metrics server: %v\n", err)
		}
	}()
	fmt.Fprintf(log, "metrics listening on http://%s/metrics\n", ln.Addr())
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
