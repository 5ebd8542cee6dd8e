package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"galp/internal/experiment"
	"galp/internal/metrics"
	"galp/internal/report"
	galp "galp/pkg/galp"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "run":
		return runRun(ctx, args[1:])
	case "sweep":
		return runSweep(ctx, args[1:])
	case "compare":
		return runCompare(ctx, args[1:])
	case "sweeps":
		return runSweeps(ctx, args[1:])
	case "graph":
		return runGraph(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "fitness":
		return runFitness(ctx, args[1:])
	case "diagnostics":
		return runDiagnostics(ctx, args[1:])
	case "top":
		return runTop(ctx, args[1:])
	case "plot":
		return runPlot(ctx, args[1:])
	case "export":
		return runExport(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func runRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	common := addCommonFlags(fs)
	params := addParamFlags(fs)
	runID := fs.String("run-id", "", "explicit run id (optional)")
	quiet := fs.Bool("quiet", false, "suppress per-generation output")
	plot := fs.Bool("plot", false, "write a fitness chart into the run artifacts")
	jsonOut := fs.Bool("json", false, "emit run summary as JSON")
	metricsAddr := fs.String("metrics-addr", "", "serve prometheus metrics on this address while running")
	if err := fs.Parse(args); err != nil {
		return err
	}

	p, err := params.resolve(fs)
	if err != nil {
		return err
	}

	collector := metrics.New()
	stopMetrics, err := serveMetrics(*metricsAddr, collector, os.Stderr)
	if err != nil {
		return err
	}
	defer stopMetrics()

	var reporter report.Reporter = report.NewTextReporter(os.Stdout)
	if *quiet || *jsonOut {
		reporter = report.Discard{}
	}
	client, err := common.client(galp.Options{Plot: *plot, Reporter: reporter, Metrics: collector})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Run(ctx, galp.RunRequest{RunID: *runID, Params: p})
	if err != nil {
		return err
	}
	if *jsonOut {
		return writeJSON(os.Stdout, map[string]any{
			"run_id":             summary.RunID,
			"seed":               summary.Seed,
			"generations":        summary.Generations,
			"converged":          summary.Converged,
			"best_objective":     summary.BestObjective,
			"best":               summary.BestText,
			"best_by_generation": summary.BestByGeneration,
			"elapsed_ms":         summary.Elapsed.Milliseconds(),
			"artifacts_dir":      filepath.Clean(summary.ArtifactsDir),
		})
	}
	fmt.Printf("run completed run_id=%s problem=%s seed=%d generations=%d converged=%t\n",
		summary.RunID, p.Problem, summary.Seed, summary.Generations, summary.Converged)
	fmt.Printf("best_objective=%g\n", summary.BestObjective)
	fmt.Printf("best=%s\n", summary.BestText)
	fmt.Printf("artifacts_dir=%s\n", filepath.Clean(summary.ArtifactsDir))
	return nil
}

func runSweep(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("sweep", flag.ContinueOnError)
	common := addCommonFlags(fs)
	params := addParamFlags(fs)
	id := fs.String("id", "", "sweep id (optional)")
	notes := fs.String("notes", "", "free-form notes stored with the sweep")
	runs := fs.Int("runs", 2, "runs averaged per value")
	parallel := fs.Int("parallel", 0, "concurrent runs (0 uses GOMAXPROCS)")
	pops := fs.String("pop-values", "", "comma separated population sizes")
	mutations := fs.String("mutation-values", "", "comma separated mutation probabilities")
	crossovers := fs.String("crossover-values", "", "comma separated crossover probabilities")
	elites := fs.String("elite-values", "", "comma separated elite counts")
	best := fs.Bool("best", false, "print only the best value per parameter")
	jsonOut := fs.Bool("json", false, "emit sweep result as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	p, err := params.resolve(fs)
	if err != nil {
		return err
	}
	req := galp.SweepRequest{ID: *id, Notes: *notes, Params: p, Runs: *runs, Parallel: *parallel}
	if req.PopulationSizes, err = parseIntList(*pops); err != nil {
		return err
	}
	if req.MutationProbabilities, err = parseFloatList(*mutations); err != nil {
		return err
	}
	if req.CrossoverProbabilities, err = parseFloatList(*crossovers); err != nil {
		return err
	}
	if req.EliteCounts, err = parseIntList(*elites); err != nil {
		return err
	}

	client, err := common.client(galp.Options{})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Sweep(ctx, req)
	if err != nil {
		return err
	}
	rows := summary.Rows
	if *best {
		rows = summary.Best
	}
	if *jsonOut {
		return writeJSON(os.Stdout, map[string]any{
			"id":        summary.ID,
			"directory": summary.Directory,
			"rows":      rows,
		})
	}
	fmt.Printf("sweep completed id=%s dir=%s\n", summary.ID, summary.Directory)
	for _, r := range rows {
		fmt.Printf("%s=%s mean_generations=%g mean_objective=%g std_objective=%g max_objective=%g\n",
			r.Axis, r.Label, r.MeanGenerations, r.MeanObjective, r.StdObjective, r.MaxObjective)
	}
	return nil
}

func runCompare(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("compare", flag.ContinueOnError)
	common := addCommonFlags(fs)
	params := addParamFlags(fs)
	id := fs.String("id", "", "comparison id (optional)")
	notes := fs.String("notes", "", "free-form notes stored with the comparison")
	runs := fs.Int("runs", 10, "runs averaged per variant")
	parallel := fs.Int("parallel", 0, "concurrent runs (0 uses GOMAXPROCS)")
	variants := fs.String("variants", "", "comma separated crossover[+ls] variants (default: every crossover, then random+ls)")
	fixtures := fs.Bool("fixtures", false, "compare on each fixed reference graph instead of the configured one")
	jsonOut := fs.Bool("json", false, "emit comparison rows as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	p, err := params.resolve(fs)
	if err != nil {
		return err
	}
	req := galp.CompareRequest{ID: *id, Notes: *notes, Params: p, Runs: *runs, Parallel: *parallel}
	if req.Variants, err = parseVariants(*variants); err != nil {
		return err
	}
	if *fixtures {
		req.Cases = experiment.DefaultGraphCases
	}

	client, err := common.client(galp.Options{})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Compare(ctx, req)
	if err != nil {
		return err
	}
	if *jsonOut {
		return writeJSON(os.Stdout, map[string]any{
			"id":        summary.ID,
			"directory": summary.Directory,
			"rows":      summary.Rows,
		})
	}
	fmt.Printf("compare completed id=%s dir=%s\n", summary.ID, summary.Directory)
	for _, r := range summary.Rows {
		fmt.Printf("%s %s mean_generations=%g mean_objective=%g mean_elapsed_ms=%.3f\n",
			r.Axis, r.Label, r.MeanGenerations, r.MeanObjective, r.MeanElapsedMs)
	}
	return nil
}

func runSweeps(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("sweeps", flag.ContinueOnError)
	common := addCommonFlags(fs)
	jsonOut := fs.Bool("json", false, "emit sweeps as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	client, err := common.client(galp.Options{StoreKind: "memory"})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	sweeps, err := client.Sweeps(ctx)
	if err != nil {
		return err
	}
	if *jsonOut {
		return writeJSON(os.Stdout, sweeps)
	}
	if len(sweeps) == 0 {
		fmt.Println("no sweeps found")
		return nil
	}
	for _, s := range sweeps {
		fmt.Printf("id=%s kind=%s started_at=%s rows=%d runs_per_value=%d\n",
			s.ID, s.Kind, s.StartedAtUTC, len(s.Rows), s.RunsPerValue)
	}
	return nil
}

func runGraph(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("graph", flag.ContinueOnError)
	common := addCommonFlags(fs)
	params := addParamFlags(fs)
	runID := fs.String("run-id", "", "show the graph stored for this run instead of generating one")
	latest := fs.Bool("latest", false, "show the graph of the most recent run")
	jsonOut := fs.Bool("json", false, "emit graph as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := common.client(galp.Options{})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if *runID != "" || *latest {
		rec, err := client.RunGraph(ctx, galp.GraphRequest{RunID: *runID, Latest: *latest})
		if err != nil {
			return err
		}
		if *jsonOut {
			return writeJSON(os.Stdout, rec)
		}
		fmt.Printf("graph run_id=%s nodes=%d edges=%d\n", rec.RunID, rec.NodeCount, len(rec.Edges))
		for _, e := range rec.Edges {
			fmt.Printf("edge a=%d b=%d weight=%d\n", e.A, e.B, e.Weight)
		}
		return nil
	}

	p, err := params.resolve(fs)
	if err != nil {
		return err
	}
	summary, err := client.Graph(ctx, p)
	if err != nil {
		return err
	}
	if *jsonOut {
		return writeJSON(os.Stdout, map[string]any{
			"type":         summary.Type,
			"nodes":        summary.Nodes,
			"edges":        summary.Edges,
			"total_weight": summary.TotalWeight,
			"components":   summary.Components,
		})
	}
	fmt.Printf("graph type=%s nodes=%d edges=%d total_weight=%d components=%d\n",
		summary.Type, summary.Nodes, len(summary.Edges), summary.TotalWeight, len(summary.Components))
	for _, e := range summary.Edges {
		fmt.Printf("edge a=%d b=%d weight=%d\n", e.A, e.B, e.Weight)
	}
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	common := addCommonFlags(fs)
	limit := fs.Int("limit", 20, "max runs to list")
	jsonOut := fs.Bool("json", false, "emit runs list as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit <= 0 {
		return errors.New("limit must be > 0")
	}

	client, err := common.client(galp.Options{StoreKind: "memory"})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	items, err := client.Runs(ctx, galp.RunsRequest{Limit: *limit})
	if err != nil {
		return err
	}
	if *jsonOut {
		type runsItem struct {
			RunID         string  `json:"run_id"`
			CreatedAtUTC  string  `json:"created_at_utc"`
			Problem       string  `json:"problem"`
			GraphType     string  `json:"graph_type,omitempty"`
			GraphNodes    int     `json:"graph_nodes,omitempty"`
			Seed          int64   `json:"seed"`
			Population    int     `json:"population_size"`
			Generations   int     `json:"generations"`
			CrossoverType string  `json:"crossover_type,omitempty"`
			LocalSearch   bool    `json:"local_search"`
			Converged     bool    `json:"converged"`
			BestObjective float64 `json:"best_objective"`
		}
		out := make([]runsItem, 0, len(items))
		for _, it := range items {
			out = append(out, runsItem(it))
		}
		return writeJSON(os.Stdout, out)
	}
	if len(items) == 0 {
		fmt.Println("no runs found")
		return nil
	}
	for _, it := range items {
		fmt.Printf("run_id=%s created_at=%s problem=%s graph=%s/%d seed=%d pop=%d gens=%d crossover=%s local_search=%t converged=%t best_objective=%g\n",
			it.RunID,
			it.CreatedAtUTC,
			it.Problem,
			it.GraphType,
			it.GraphNodes,
			it.Seed,
			it.Population,
			it.Generations,
			it.CrossoverType,
			it.LocalSearch,
			it.Converged,
			it.BestObjective,
		)
	}
	return nil
}

func runFitness(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("fitness", flag.ContinueOnError)
	common := addCommonFlags(fs)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "show fitness history for the most recent run from run index")
	limit := fs.Int("limit", 0, "max generations to print (0 for all)")
	jsonOut := fs.Bool("json", false, "emit fitness history as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := checkRunSelector(*runID, *latest, "fitness"); err != nil {
		return err
	}

	client, err := common.client(galp.Options{})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	history, err := client.FitnessHistory(ctx, galp.FitnessHistoryRequest{RunID: *runID, Latest: *latest, Limit: *limit})
	if err != nil {
		return err
	}
	if *jsonOut {
		return writeJSON(os.Stdout, history)
	}
	if len(history) == 0 {
		fmt.Println("no fitness history")
		return nil
	}
	for i, best := range history {
		fmt.Printf("generation=%d best_objective=%g\n", i+1, best)
	}
	return nil
}

func runDiagnostics(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("diagnostics", flag.ContinueOnError)
	common := addCommonFlags(fs)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "show diagnostics for the most recent run from run index")
	limit := fs.Int("limit", 0, "max generations to print (0 for all)")
	jsonOut := fs.Bool("json", false, "emit diagnostics as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := checkRunSelector(*runID, *latest, "diagnostics"); err != nil {
		return err
	}

	client, err := common.client(galp.Options{})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	diagnostics, err := client.Diagnostics(ctx, galp.DiagnosticsRequest{RunID: *runID, Latest: *latest, Limit: *limit})
	if err != nil {
		return err
	}
	if *jsonOut {
		return writeJSON(os.Stdout, diagnostics)
	}
	for _, d := range diagnostics {
		fmt.Printf("generation=%d best=%g mean=%g min=%g std=%g distinct=%d elites=%d\n",
			d.Generation, d.BestObjective, d.MeanObjective, d.MinObjective, d.StdObjective, d.Distinct, d.Elites)
	}
	return nil
}

func runTop(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("top", flag.ContinueOnError)
	common := addCommonFlags(fs)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "show top chromosomes for the most recent run from run index")
	limit := fs.Int("limit", 5, "max chromosomes to print (0 for all)")
	jsonOut := fs.Bool("json", false, "emit top chromosomes as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := checkRunSelector(*runID, *latest, "top"); err != nil {
		return err
	}

	client, err := common.client(galp.Options{})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	top, err := client.TopChromosomes(ctx, galp.TopChromosomesRequest{RunID: *runID, Latest: *latest, Limit: *limit})
	if err != nil {
		return err
	}
	if *jsonOut {
		return writeJSON(os.Stdout, top)
	}
	for _, t := range top {
		fmt.Printf("rank=%d objective=%g status=%s best=%s\n", t.Rank, t.Objective, t.Status, t.Text)
	}
	return nil
}

func runPlot(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("plot", flag.ContinueOnError)
	common := addCommonFlags(fs)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "plot the most recent run from run index")
	average := fs.String("average", "", "comma separated run ids plotted as one averaged curve")
	out := fs.String("out", "", "output image path (.png or .svg; default: inside the run's artifacts)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	averageIDs := splitList(*average)
	if len(averageIDs) == 0 {
		if err := checkRunSelector(*runID, *latest, "plot"); err != nil {
			return err
		}
	}

	client, err := common.client(galp.Options{})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	path, err := client.Plot(ctx, galp.PlotRequest{RunID: *runID, Latest: *latest, Average: averageIDs, OutPath: *out})
	if err != nil {
		return err
	}
	fmt.Printf("plot written to=%s\n", path)
	return nil
}

func runExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	common := addCommonFlags(fs)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "export the most recent run from run index")
	outDir := fs.String("out", defaultExportsDir, "export output directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := checkRunSelector(*runID, *latest, "export"); err != nil {
		return err
	}

	client, err := common.client(galp.Options{StoreKind: "memory", ExportsDir: *outDir})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	exported, err := client.Export(ctx, galp.ExportRequest{RunID: *runID, Latest: *latest})
	if err != nil {
		return err
	}
	fmt.Printf("exported run_id=%s to=%s\n", exported.RunID, exported.Directory)
	return nil
}

func checkRunSelector(runID string, latest bool, command string) error {
	if runID != "" && latest {
		return errors.New("use either --run-id or --latest, not both")
	}
	if runID == "" && !latest {
		return fmt.Errorf("%s requires --run-id or --latest", command)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: galpctl <run|sweep|compare|sweeps|graph|runs|fitness|diagnostics|top|plot|export> [flags]", msg)
}
