package stats

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
)

const experimentsDir = "experiments"

// Sweep kinds.
const (
	SweepParams  = "params"
	SweepCompare = "compare"
)

// SweepRow aggregates the runs made for one parameter value or variant.
type SweepRow struct {
	Axis            string  `json:"axis"`
	Label           string  `json:"label"`
	Value           float64 `json:"value"`
	Runs            int     `json:"runs"`
	MeanGenerations float64 `json:"mean_generations"`
	MeanObjective   float64 `json:"mean_objective"`
	StdObjective    float64 `json:"std_objective"`
	MaxObjective    float64 `json:"max_objective"`
	MeanElapsedMs   float64 `json:"mean_elapsed_ms"`
}

type SweepRecord struct {
	ID             string     `json:"id"`
	Kind           string     `json:"kind"`
	Notes          string     `json:"notes,omitempty"`
	StartedAtUTC   string     `json:"started_at_utc,omitempty"`
	CompletedAtUTC string     `json:"completed_at_utc,omitempty"`
	Config         RunConfig  `json:"config"`
	RunsPerValue   int        `json:"runs_per_value"`
	Rows           []SweepRow `json:"rows,omitempty"`
	Best           []SweepRow `json:"best,omitempty"`
}

func WriteSweep(baseDir string, rec SweepRecord) (string, error) {
	if rec.ID == "" {
		return "", fmt.Errorf("experiment id is required")
	}
	path := sweepPath(baseDir, rec.ID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := writeJSON(path, rec); err != nil {
		return "", err
	}
	if err := WriteSweepCSV(filepath.Join(filepath.Dir(path), "rows.csv"), rec.Rows); err != nil {
		return "", err
	}
	return filepath.Dir(path), nil
}

func ReadSweep(baseDir, id string) (SweepRecord, bool, error) {
	if id == "" {
		return SweepRecord{}, false, fmt.Errorf("experiment id is required")
	}
	var rec SweepRecord
	ok, err := readJSON(sweepPath(baseDir, id), &rec)
	if err != nil || !ok {
		return SweepRecord{}, ok, err
	}
	return rec, true, nil
}

// ListSweeps returns stored sweeps newest first; undated ones go last.
func ListSweeps(baseDir string) ([]SweepRecord, error) {
	root := filepath.Join(baseDir, experimentsDir)
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return []SweepRecord{}, nil
		}
		return nil, err
	}

	recs := make([]SweepRecord, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		rec, ok, err := ReadSweep(baseDir, entry.Name())
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool {
		switch {
		case recs[i].StartedAtUTC == recs[j].StartedAtUTC:
			return recs[i].ID < recs[j].ID
		case recs[i].StartedAtUTC == "":
			return false
		case recs[j].StartedAtUTC == "":
			return true
		default:
			return recs[i].StartedAtUTC > recs[j].StartedAtUTC
		}
	})
	return recs, nil
}

var sweepHeader = []string{
	"axis", "label", "value", "runs",
	"mean_generations", "mean_objective", "std_objective", "max_objective",
	"mean_elapsed_ms",
}

func WriteSweepCSV(path string, rows []SweepRow) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(sweepHeader); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			r.Axis,
			r.Label,
			ftoa(r.Value),
			strconv.Itoa(r.Runs),
			ftoa(r.MeanGenerations),
			ftoa(r.MeanObjective),
			ftoa(r.StdObjective),
			ftoa(r.MaxObjective),
			ftoa(r.MeanElapsedMs),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func sweepPath(baseDir, id string) string {
	return filepath.Join(baseDir, experimentsDir, id, "experiment.json")
}
