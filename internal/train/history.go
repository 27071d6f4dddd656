package train

import (
	"fmt"

	"github.com/guptarohit/asciigraph"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// History records per-epoch metrics. Validation slices stay empty when no
// validation set was given.
type History struct {
	TrainLoss []float64
	TrainAcc  []float64
	ValLoss   []float64
	ValAcc    []float64
}

// Epochs returns the number of recorded epochs.
func (h *History) Epochs() int { return len(h.TrainLoss) }

// Best returns the epoch (1-based) with the highest validation accuracy,
// falling back to training accuracy when there was no validation set.
func (h *History) Best() (epoch int, acc float64) {
	accs := h.ValAcc
	if len(accs) == 0 {
		accs = h.TrainAcc
	}
	for i, a := range accs {
		if a > acc {
			epoch, acc = i+1, a
		}
	}
	return epoch, acc
}

// MeanValAcc returns the mean validation accuracy over all epochs.
func (h *History) MeanValAcc() float64 {
	if len(h.ValAcc) == 0 {
		return 0
	}
	return stat.Mean(h.ValAcc, nil)
}

// AsciiLossCurve renders the loss curves as a terminal graph.
func (h *History) AsciiLossCurve(height int) string {
	if h.Epochs() == 0 {
		return ""
	}
	series := [][]float64{h.TrainLoss}
	legend := "train loss"
	if len(h.ValLoss) > 0 {
		series = append(series, h.ValLoss)
		legend = "train loss (first), val loss (second)"
	}
	graph := asciigraph.PlotMany(series,
		asciigraph.Height(height),
		asciigraph.Caption(legend),
	)
	return graph
}

// SaveLossPlot writes the loss curves to a PNG file.
func (h *History) SaveLossPlot(path string) error {
	p := plot.New()
	p.Title.Text = "Loss"
	p.X.Label.Text = "epoch"
	p.Y.Label.Text = "loss"

	if err := addLine(p, "train", h.TrainLoss); err != nil {
		return err
	}
	if len(h.ValLoss) > 0 {
		if err := addLine(p, "val", h.ValLoss); err != nil {
			return err
		}
	}
	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("save loss plot: %w", err)
	}
	return nil
}

func addLine(p *plot.Plot, name string, values []float64) error {
	points := make(plotter.XYs, len(values))
	for i, v := range values {
		points[i].X = float64(i + 1)
		points[i].Y = v
	}
	line, err := plotter.NewLine(points)
	if err != nil {
		return fmt.Errorf("plot line %s: %w", name, err)
	}
	p.Add(line)
	p.Legend.Add(name, line)
	return nil
}
