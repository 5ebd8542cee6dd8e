package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// RunRecord is the persisted outcome of one GA run.
type RunRecord struct {
	VersionedRecord
	ID               string  `json:"id"`
	Problem          string  `json:"problem"`
	GraphType        string  `json:"graph_type,omitempty"`
	GraphNodes       int     `json:"graph_nodes,omitempty"`
	Seed             int64   `json:"seed"`
	Generations      int     `json:"generations"`
	Converged        bool    `json:"converged"`
	BestObjective    float64 `json:"best_objective"`
	BestText         string  `json:"best_text"`
	CreatedAtUTC     string  `json:"created_at_utc"`
	ElapsedMillis    int64   `json:"elapsed_ms"`
	CrossoverType    string  `json:"crossover_type,omitempty"`
	LocalSearch      bool    `json:"local_search"`
	PopulationSize   int     `json:"population_size"`
	EliteCount       int     `json:"elite_count"`
	MutationProb     float64 `json:"mutation_probability"`
	CrossoverProb    float64 `json:"crossover_probability"`
	ConvergenceLimit int     `json:"convergence_threshold"`
}

// GraphRecord stores the graph a longest-path run searched.
type GraphRecord struct {
	VersionedRecord
	RunID     string       `json:"run_id"`
	NodeCount int          `json:"node_count"`
	Edges     []EdgeRecord `json:"edges"`
}

type EdgeRecord struct {
	A      int `json:"a"`
	B      int `json:"b"`
	Weight int `json:"weight"`
}

// TopChromosomeRecord is one ranked member of a run's final population.
type TopChromosomeRecord struct {
	VersionedRecord
	Rank      int     `json:"rank"`
	Objective float64 `json:"objective"`
	Text      string  `json:"text"`
	Status    string  `json:"status"`
	Genes     []int   `json:"genes,omitempty"`
}

type GenerationDiagnostics struct {
	Generation    int     `json:"generation"`
	BestObjective float64 `json:"best_objective"`
	MeanObjective float64 `json:"mean_objective"`
	MinObjective  float64 `json:"min_objective"`
	StdObjective  float64 `json:"std_objective"`
	Distinct      int     `json:"distinct"`
	Elites        int     `json:"elites"`
}
