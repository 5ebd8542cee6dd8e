package stats

import (
	"errors"
	"image/color"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"galp/internal/model"
)

const HistoryPlotFile = "fitness_history.png"

type PlotPoint struct {
	Index int     `json:"index"`
	Value float64 `json:"value"`
}

// BuildAveragePlot averages the lists position by position. Shorter lists
// drop out once exhausted, so later points average fewer runs.
func BuildAveragePlot(lists [][]float64) []PlotPoint {
	points := make([]PlotPoint, 0, 128)
	for i := 0; ; i++ {
		values := make([]float64, 0, len(lists))
		for _, list := range lists {
			if i < len(list) {
				values = append(values, list[i])
			}
		}
		if len(values) == 0 {
			return points
		}
		points = append(points, PlotPoint{Index: i + 1, Value: stat.Mean(values, nil)})
	}
}

// WriteHistoryPlot renders the best objective per generation, plus the mean
// objective when diagnostics are given, to a PNG or SVG chosen by path.
func WriteHistoryPlot(path, title string, best []float64, diagnostics []model.GenerationDiagnostics) error {
	if len(best) == 0 {
		return errors.New("history is empty")
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Generation"
	p.Y.Label.Text = "Objective"

	bestPts := make(plotter.XYs, len(best))
	for i, v := range best {
		bestPts[i].X = float64(i + 1)
		bestPts[i].Y = v
	}
	bestLine, err := plotter.NewLine(bestPts)
	if err != nil {
		return err
	}
	bestLine.Color = color.RGBA{R: 200, A: 255}
	p.Add(bestLine)
	p.Legend.Add("best", bestLine)

	if len(diagnostics) > 0 {
		meanPts := make(plotter.XYs, len(diagnostics))
		for i, d := range diagnostics {
			meanPts[i].X = float64(d.Generation)
			meanPts[i].Y = d.MeanObjective
		}
		meanLine, err := plotter.NewLine(meanPts)
		if err != nil {
			return err
		}
		meanLine.Color = color.RGBA{B: 200, A: 255}
		p.Add(meanLine)
		p.Legend.Add("mean", meanLine)
	}

	p.Legend.Top = true
	p.Legend.Left = true
	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}
