package render

import (
	"fmt"

	"github.com/phil-mansfield/gospline/spline"
	plt "github.com/phil-mansfield/pyplot"
)

// Sample evaluates intr at n evenly spaced points spanning its entire range.
// The endpoints are included exactly.
func Sample(intr spline.Interpolator, n int) (xs, ys []float64, err error) {
	if n < 2 {
		panic(fmt.Sprintf("Sample() given n = %d, but n must be at least 2.", n))
	}

	lo, hi := intr.Range()
	xs = make([]float64, n)
	for i := range xs {
		xs[i] = lo + (hi-lo)*float64(i)/float64(n-1)
	}
	xs[n-1] = hi

	ys, err = intr.EvalAll(xs)
	if err != nil {
		return nil, nil, err
	}
	return xs, ys, nil
}

// Knots returns the positions of every knot in sp, including both endpoints.
func Knots(sp spline.Spline) (xs, ys []float64, err error) {
	xs = make([]float64, len(sp)+1)
	for i := range sp {
		xs[i] = sp[i].Knot0
	}
	xs[len(sp)] = sp[len(sp)-1].Knot1

	ys, err = sp.EvalAll(xs)
	if err != nil {
		return nil, nil, err
	}
	return xs, ys, nil
}

// PlotSpline queues up a figure showing sp sampled at the given number of
// points and its knots, which will be saved to fname. Nothing is drawn until
// Execute is called.
func PlotSpline(sp spline.Spline, title, fname string, points int) error {
	if len(sp) == 0 {
		return spline.ErrEmptySpline
	}

	xs, ys, err := Sample(sp, points)
	if err != nil {
		return err
	}
	kxs, kys, err := Knots(sp)
	if err != nil {
		return err
	}

	plt.Figure()
	plt.Plot(xs, ys, plt.LW(2), plt.C("b"))
	plt.Plot(kxs, kys, "ok")

	lo, hi := sp.Range()
	plt.XLim(lo, hi)
	plt.Title(title)
	plt.XLabel(`$x$`, plt.FontSize(16))
	plt.YLabel(`$S(x)$`, plt.FontSize(16))
	plt.SaveFig(fname)

	return nil
}

// Execute runs every queued plotting command.
func Execute() {
	plt.Execute()
}
