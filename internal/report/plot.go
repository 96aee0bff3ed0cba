package report

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/brookluers/survgap/internal/predict"
)

// PlotDisparity renders the disparity curve: a shaded 95% credible ribbon,
// the posterior mean line, and a dashed zero-reference line.
func PlotDisparity(sums []predict.Summary, path string) error {
	if len(sums) == 0 {
		return fmt.Errorf("report: nothing to plot")
	}

	p := plot.New()
	p.Title.Text = "Black-White gap in predicted 2-year survival"
	p.X.Label.Text = "Policy index"
	p.Y.Label.Text = "Difference in predicted probability"

	// Ribbon: upper bound left to right, lower bound back.
	ribbon := make(plotter.XYs, 0, 2*len(sums))
	for _, s := range sums {
		ribbon = append(ribbon, plotter.XY{X: s.Policy, Y: s.Upper})
	}
	for i := len(sums) - 1; i >= 0; i-- {
		ribbon = append(ribbon, plotter.XY{X: sums[i].Policy, Y: sums[i].Lower})
	}
	poly, err := plotter.NewPolygon(ribbon)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}
	poly.Color = color.NRGBA{R: 70, G: 130, B: 180, A: 70}
	poly.LineStyle.Width = 0
	p.Add(poly)

	mean := make(plotter.XYs, len(sums))
	for i, s := range sums {
		mean[i] = plotter.XY{X: s.Policy, Y: s.Mean}
	}
	line, err := plotter.NewLine(mean)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}
	line.Color = color.NRGBA{R: 25, G: 60, B: 120, A: 255}
	line.Width = vg.Points(1.5)
	p.Add(line)

	zero := plotter.XYs{
		{X: sums[0].Policy, Y: 0},
		{X: sums[len(sums)-1].Policy, Y: 0},
	}
	zl, err := plotter.NewLine(zero)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}
	zl.Color = color.Gray{Y: 100}
	zl.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
	p.Add(zl)

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	return nil
}
