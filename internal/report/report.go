// Package report formats per-generation progress of a GA run.
package report

import (
	"fmt"
	"io"
	"sync"

	"galp/internal/evo"
)

// DefaultTop is the number of ranked members printed per generation.
const DefaultTop = 5

type Entry struct {
	Objective float64    `json:"objective"`
	Text      string     `json:"text"`
	Status    evo.Status `json:"status"`
}

// GenerationReport is a snapshot taken after one NextGeneration call.
type GenerationReport struct {
	Generation  int     `json:"generation"`
	Top         []Entry `json:"top"`
	Objective   float64 `json:"objective"`
	OptimumText string  `json:"optimum_text"`
}

type Reporter interface {
	Generation(GenerationReport)
	Converged(generation int)
}

// Snapshot builds the report for the GA's current generation.
func Snapshot[C evo.Chromosome[C]](ga *evo.GeneticAlgorithm[C], top int) GenerationReport {
	r := GenerationReport{Generation: ga.Generation()}
	for _, m := range ga.Best(top) {
		r.Top = append(r.Top, Entry{Objective: m.Objective, Text: m.Chromosome.Text(), Status: m.Status})
	}
	if history := ga.History(); len(history) > 0 {
		r.Objective = history[len(history)-1]
	}
	optimum, _ := ga.Optimum()
	r.OptimumText = optimum.Text()
	return r
}

// TextReporter writes human readable progress lines.
type TextReporter struct {
	mu sync.Mutex
	w  io.Writer
}

func NewTextReporter(w io.Writer) *TextReporter {
	return &TextReporter{w: w}
}

func (r *TextReporter) Generation(g GenerationReport) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintf(r.w, "\nGeneration: %d\n", g.Generation)
	for _, e := range g.Top {
		fmt.Fprintf(r.w, "%g : %s\n", e.Objective, e.Text)
	}
	fmt.Fprintf(r.w, " * Objective value: %g\n", g.Objective)
	fmt.Fprintf(r.w, " * Optimum solution: %s\n", g.OptimumText)
}

func (r *TextReporter) Converged(generation int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.w, "Generation %d converged.\n", generation)
}

// Discard drops every report.
type Discard struct{}

func (Discard) Generation(GenerationReport) {}
func (Discard) Converged(int)               {}

// Multi fans reports out to several reporters.
type Multi []Reporter

func (m Multi) Generation(g GenerationReport) {
	for _, r := range m {
		r.Generation(g)
	}
}

func (m Multi) Converged(generation int) {
	for _, r := range m {
		r.Converged(generation)
	}
}
