package stats

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"galp/internal/model"
)

const runIndexFile = "run_index.json"

// RunConfig is the parameter record written next to a run's results.
type RunConfig struct {
	RunID                string  `json:"run_id"`
	Problem              string  `json:"problem"`
	GraphType            string  `json:"graph_type,omitempty"`
	GraphNodes           int     `json:"graph_nodes,omitempty"`
	GraphP               float64 `json:"graph_p,omitempty"`
	GraphOverrideOnes    bool    `json:"graph_override_ones,omitempty"`
	ChromosomeLength     int     `json:"chromosome_length,omitempty"`
	Seed                 int64   `json:"seed"`
	Generations          int     `json:"nr_generations"`
	PopulationSize       int     `json:"population_size"`
	MutationProbability  float64 `json:"mutation_probability"`
	CrossoverProbability float64 `json:"crossover_probability"`
	ConvergenceThreshold int     `json:"convergence_threshold"`
	Elites               int     `json:"nr_of_elites"`
	CrossoverType        string  `json:"crossover_type,omitempty"`
	MutateStart          bool    `json:"mutate_start,omitempty"`
	LocalSearch          bool    `json:"local_search"`
	FitnessA             float64 `json:"fitness_a"`
	FitnessB             float64 `json:"fitness_b"`
	Workers              int     `json:"workers"`
	Selection            string  `json:"selection"`
}

type TopChromosome struct {
	Rank      int     `json:"rank"`
	Objective float64 `json:"objective"`
	Text      string  `json:"text"`
	Status    string  `json:"status"`
	Genes     []int   `json:"genes,omitempty"`
}

type RunArtifacts struct {
	Config                RunConfig                     `json:"config"`
	BestByGeneration      []float64                     `json:"best_by_generation"`
	GenerationDiagnostics []model.GenerationDiagnostics `json:"generation_diagnostics,omitempty"`
	FinalBestObjective    float64                       `json:"final_best_objective"`
	Converged             bool                          `json:"converged"`
	TopChromosomes        []TopChromosome               `json:"top_chromosomes"`
	Graph                 *model.GraphRecord            `json:"graph,omitempty"`
	Summary               RunSummary                    `json:"summary"`
}

type RunIndexEntry struct {
	RunID              string  `json:"run_id"`
	Problem            string  `json:"problem"`
	GraphType          string  `json:"graph_type,omitempty"`
	GraphNodes         int     `json:"graph_nodes,omitempty"`
	PopulationSize     int     `json:"population_size"`
	Generations        int     `json:"generations"`
	Seed               int64   `json:"seed"`
	Workers            int     `json:"workers"`
	EliteCount         int     `json:"elite_count"`
	CrossoverType      string  `json:"crossover_type,omitempty"`
	LocalSearch        bool    `json:"local_search"`
	Converged          bool    `json:"converged"`
	FinalBestObjective float64 `json:"final_best_objective"`
	CreatedAtUTC       string  `json:"created_at_utc"`
}

// Files every run directory holds. graph.json and the plot are optional.
var runFiles = []string{"config.json", "fitness_history.json", "top_chromosomes.json", "generation_diagnostics.json", "summary.json", "fitness_history.csv"}

var optionalRunFiles = []string{"graph.json", HistoryPlotFile}

func WriteRunArtifacts(baseDir string, artifacts RunArtifacts) (string, error) {
	if artifacts.Config.RunID == "" {
		return "", fmt.Errorf("run id is required")
	}

	runDir := filepath.Join(baseDir, artifacts.Config.RunID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", err
	}

	if err := WriteRunConfig(baseDir, artifacts.Config.RunID, artifacts.Config); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "fitness_history.json"), map[string]any{
		"best_by_generation":   artifacts.BestByGeneration,
		"final_best_objective": artifacts.FinalBestObjective,
		"converged":            artifacts.Converged,
	}); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "top_chromosomes.json"), artifacts.TopChromosomes); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "generation_diagnostics.json"), artifacts.GenerationDiagnostics); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "summary.json"), artifacts.Summary); err != nil {
		return "", err
	}
	if err := WriteHistorySeries(runDir, artifacts.BestByGeneration); err != nil {
		return "", err
	}
	if artifacts.Graph != nil {
		if err := writeJSON(filepath.Join(runDir, "graph.json"), artifacts.Graph); err != nil {
			return "", err
		}
	}

	return runDir, nil
}

func AppendRunIndex(baseDir string, entry RunIndexEntry) error {
	if entry.RunID == "" {
		return fmt.Errorf("run id is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return err
	}

	index, err := readRunIndex(baseDir)
	if err != nil {
		return err
	}

	for i := range index {
		if index[i].RunID == entry.RunID {
			index[i] = entry
			return writeJSON(filepath.Join(baseDir, runIndexFile), index)
		}
	}

	index = append(index, entry)
	return writeJSON(filepath.Join(baseDir, runIndexFile), index)
}

func readRunIndex(baseDir string) ([]RunIndexEntry, error) {
	data, err := os.ReadFile(filepath.Join(baseDir, runIndexFile))
	if err != nil {
		if os.IsNotExist(err) {
			return []RunIndexEntry{}, nil
		}
		return nil, err
	}

	var entries []RunIndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// ListRunIndex returns the index newest first.
func ListRunIndex(baseDir string) ([]RunIndexEntry, error) {
	entries, err := readRunIndex(baseDir)
	if err != nil {
		return nil, err
	}

	type indexedEntry struct {
		entry RunIndexEntry
		idx   int
	}
	indexed := make([]indexedEntry, len(entries))
	for i := range entries {
		indexed[i] = indexedEntry{entry: entries[i], idx: i}
	}
	sort.Slice(indexed, func(i, j int) bool {
		if indexed[i].entry.CreatedAtUTC == indexed[j].entry.CreatedAtUTC {
			// Prefer later appended entries for equal timestamps.
			return indexed[i].idx > indexed[j].idx
		}
		return indexed[i].entry.CreatedAtUTC > indexed[j].entry.CreatedAtUTC
	})

	sorted := make([]RunIndexEntry, 0, len(indexed))
	for _, item := range indexed {
		sorted = append(sorted, item.entry)
	}
	return sorted, nil
}

func ExportRunArtifacts(baseDir, runID, outDir string) (string, error) {
	if runID == "" {
		return "", fmt.Errorf("run id is required")
	}

	src := filepath.Join(baseDir, runID)
	if _, err := os.Stat(src); err != nil {
		return "", err
	}

	dst := filepath.Join(outDir, runID)
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return "", err
	}

	for _, file := range runFiles {
		if err := copyFile(filepath.Join(src, file), filepath.Join(dst, file)); err != nil {
			return "", err
		}
	}
	for _, file := range optionalRunFiles {
		path := filepath.Join(src, file)
		if _, err := os.Stat(path); err == nil {
			if err := copyFile(path, filepath.Join(dst, file)); err != nil {
				return "", err
			}
		} else if !os.IsNotExist(err) {
			return "", err
		}
	}

	return dst, nil
}

func ReadRunConfig(baseDir, runID string) (RunConfig, bool, error) {
	var cfg RunConfig
	ok, err := readJSON(filepath.Join(baseDir, runID, "config.json"), &cfg)
	return cfg, ok, err
}

func WriteRunConfig(baseDir, runID string, cfg RunConfig) error {
	if strings.TrimSpace(runID) == "" {
		return fmt.Errorf("run id is required")
	}
	if strings.TrimSpace(cfg.RunID) == "" {
		cfg.RunID = strings.TrimSpace(runID)
	}
	if cfg.RunID != strings.TrimSpace(runID) {
		return fmt.Errorf("run config run id mismatch: got=%s want=%s", cfg.RunID, strings.TrimSpace(runID))
	}
	runDir := filepath.Join(baseDir, runID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return err
	}
	return writeJSON(filepath.Join(runDir, "config.json"), cfg)
}

func ReadTopChromosomes(baseDir, runID string) ([]TopChromosome, bool, error) {
	var top []TopChromosome
	ok, err := readJSON(filepath.Join(baseDir, runID, "top_chromosomes.json"), &top)
	return top, ok, err
}

func ReadFitnessHistory(baseDir, runID string) ([]float64, bool, error) {
	var history struct {
		Best []float64 `json:"best_by_generation"`
	}
	ok, err := readJSON(filepath.Join(baseDir, runID, "fitness_history.json"), &history)
	return history.Best, ok, err
}

func ReadGenerationDiagnostics(baseDir, runID string) ([]model.GenerationDiagnostics, bool, error) {
	var diagnostics []model.GenerationDiagnostics
	ok, err := readJSON(filepath.Join(baseDir, runID, "generation_diagnostics.json"), &diagnostics)
	return diagnostics, ok, err
}

func ReadGraph(baseDir, runID string) (model.GraphRecord, bool, error) {
	var graph model.GraphRecord
	ok, err := readJSON(filepath.Join(baseDir, runID, "graph.json"), &graph)
	return graph, ok, err
}

func readJSON(path string, value any) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, value); err != nil {
		return false, err
	}
	return true, nil
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
