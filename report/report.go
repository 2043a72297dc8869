package report

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/sheikhrachel/go-gol3d/model"
)

const (
	PopulationFile = "population.png"
	ScatterFile    = "lattice.html"
)

// PopulationPlot writes a PNG line plot of live cells per generation.
// Generations listed in regenerations are marked where the lattice was re-seeded.
func PopulationPlot(path string, population []float64, regenerations []int) error {
	if len(population) == 0 {
		return errors.New("[PopulationPlot] no samples to plot")
	}

	p := plot.New()
	p.Title.Text = "Population"
	p.X.Label.Text = "generation"
	p.Y.Label.Text = "live cells"

	pts := make(plotter.XYs, len(population))
	for i, v := range population {
		pts[i].X = float64(i)
		pts[i].Y = v
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return errors.Wrap(err, "[PopulationPlot] failed to build line")
	}
	line.Color = color.RGBA{R: 40, G: 110, B: 200, A: 255}
	p.Add(line)

	var marks plotter.XYs
	for _, g := range regenerations {
		if g >= 0 && g < len(population) {
			marks = append(marks, plotter.XY{X: float64(g), Y: population[g]})
		}
	}
	if len(marks) > 0 {
		scatter, err := plotter.NewScatter(marks)
		if err != nil {
			return errors.Wrap(err, "[PopulationPlot] failed to build regeneration marks")
		}
		scatter.Color = color.RGBA{R: 220, G: 50, B: 50, A: 255}
		p.Add(scatter)
		p.Legend.Add("regenerated", scatter)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "[PopulationPlot] failed to create dir for %s", path)
	}
	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "[PopulationPlot] failed to save %s", path)
	}
	return nil
}

// LatticeScatter renders the live cells as an interactive 3D scatter page
func LatticeScatter(w io.Writer, title string, cells []model.CellState) error {
	data := make([]opts.Chart3DData, 0, len(cells))
	for _, c := range cells {
		if !c.Alive {
			continue
		}
		data = append(data, opts.Chart3DData{
			Value:     []interface{}{c.Position.X(), c.Position.Y(), c.Position.Z()},
			ItemStyle: &opts.ItemStyle{Color: hexColor(c)},
		})
	}

	scatter := charts.NewScatter3D()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "900px", Height: "700px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("%d live cells", len(data))}),
		charts.WithXAxis3DOpts(opts.XAxis3D{Name: "x"}),
		charts.WithYAxis3DOpts(opts.YAxis3D{Name: "y"}),
		charts.WithZAxis3DOpts(opts.ZAxis3D{Name: "z"}),
	)
	scatter.AddSeries("alive", data)

	if err := scatter.Render(w); err != nil {
		return errors.Wrap(err, "[LatticeScatter] render failed")
	}
	return nil
}

// WriteLatticeScatter renders LatticeScatter into a file
func WriteLatticeScatter(path, title string, cells []model.CellState) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "[WriteLatticeScatter] failed to create dir for %s", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "[WriteLatticeScatter] failed to create %s", path)
	}
	defer f.Close()
	return LatticeScatter(f, title, cells)
}

// hexColor converts a cell's dim gradient color to #rrggbb. Channels are
// doubled so the gradient spans the full range.
func hexColor(c model.CellState) string {
	channel := func(v float32) uint8 {
		v *= 2
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		return uint8(v * 255)
	}
	return fmt.Sprintf("#%02x%02x%02x", channel(c.Color[0]), channel(c.Color[1]), channel(c.Color[2]))
}
