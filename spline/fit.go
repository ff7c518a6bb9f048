package spline

import (
	"errors"
	"fmt"
	"math"

	"github.com/phil-mansfield/gospline/math/mat"
)

const (
	// Rows per segment in the linear system.
	constraintsPerSegment = 4
	// Columns per segment in the linear system.
	parametersPerSegment = 4
)

// Fit computes the natural cubic spline which passes through every knot.
// The knots must be sorted in increasing order of X and must not share X
// values. The returned Spline has len(knots) - 1 segments.
func Fit(knots []Knot) (Spline, error) {
	return FitWith(knots, LUSolver)
}

// FitWith is identical to Fit, but solves the spline system with the given
// Solver.
func FitWith(knots []Knot, solver Solver) (Spline, error) {
	if len(knots) < 2 {
		return nil, fmt.Errorf(
			"Fit() given %d knots: %w", len(knots), ErrInputTooSmall,
		)
	}
	if err := checkKnots(knots); err != nil {
		return nil, err
	}

	a, bs := System(knots)
	coeffs, err := solver.Solve(a, bs)
	if err != nil {
		if errors.Is(err, mat.ErrSingular) {
			return nil, fmt.Errorf("%s: %w", err.Error(), ErrSingularSystem)
		}
		return nil, err
	}
	for i := range coeffs {
		if math.IsNaN(coeffs[i]) || math.IsInf(coeffs[i], 0) {
			return nil, fmt.Errorf(
				"coefficient %d of spline solution is %g: %w",
				i, coeffs[i], ErrSingularSystem,
			)
		}
	}

	sp := make(Spline, len(knots)-1)
	for i := range sp {
		off := i * parametersPerSegment
		sp[i] = Segment{
			A: coeffs[off], B: coeffs[off+1], C: coeffs[off+2], D: coeffs[off+3],
			Knot0: knots[i].X, Knot1: knots[i+1].X,
		}
	}

	return sp, nil
}

func checkKnots(knots []Knot) error {
	for i := range knots {
		if !isFinite(knots[i].X) || !isFinite(knots[i].Y) {
			return fmt.Errorf(
				"knot %d is (%g, %g): %w", i, knots[i].X, knots[i].Y, ErrNonFinite,
			)
		}
	}

	for i := 0; i < len(knots)-1; i++ {
		x0, x1 := knots[i].X, knots[i+1].X
		if x0 == x1 {
			return fmt.Errorf(
				"knots %d and %d share x = %g: %w", i, i+1, x0, ErrSingularSystem,
			)
		} else if x1 < x0 {
			return fmt.Errorf(
				"knot %d has x = %g, but knot %d has x = %g: %w",
				i, x0, i+1, x1, ErrUnsorted,
			)
		}
	}
	return nil
}

// System returns the matrix and right hand side of the linear system whose
// solution is the list of (a, b, c, d) coefficients of every segment, in
// segment order. At least two knots must be given.
//
// Each segment contributes one row for each of its endpoint values and, if
// it isn't the last segment, one row each matching the first and second
// derivative of the next segment. The two rows left over by the last segment
// hold the natural boundary conditions.
func System(knots []Knot) (*mat.Matrix, []float64) {
	if len(knots) < 2 {
		panic(fmt.Sprintf("System() given %d knots.", len(knots)))
	}

	segs := len(knots) - 1
	n := segs * constraintsPerSegment
	a := mat.Zeros(segs*parametersPerSegment, n)
	bs := make([]float64, n)

	for i := 0; i < segs; i++ {
		k0, k1 := knots[i], knots[i+1]
		row := i * constraintsPerSegment
		col := i * parametersPerSegment

		// S_i(x_i) = y_i
		setValueRow(a, row, col, k0.X)
		bs[row] = k0.Y

		// S_i(x_i+1) = y_i+1
		setValueRow(a, row+1, col, k1.X)
		bs[row+1] = k1.Y

		if i == segs-1 {
			break
		}
		next := col + parametersPerSegment
		x := k1.X

		// S_i'(x_i+1) - S_i+1'(x_i+1) = 0
		a.Set(row+2, col, 3*(x*x))
		a.Set(row+2, col+1, 2*x)
		a.Set(row+2, col+2, 1)
		a.Set(row+2, next, -3*(x*x))
		a.Set(row+2, next+1, -2*x)
		a.Set(row+2, next+2, -1)

		// S_i''(x_i+1) - S_i+1''(x_i+1) = 0
		a.Set(row+3, col, 6*x)
		a.Set(row+3, col+1, 2)
		a.Set(row+3, next, -6*x)
		a.Set(row+3, next+1, -2)
	}

	// S_0''(x_0) = 0
	first := knots[0].X
	a.Set(n-2, 0, 6*first)
	a.Set(n-2, 1, 2)

	// S_n-1''(x_n) = 0
	last, lastCol := knots[len(knots)-1].X, n-parametersPerSegment
	a.Set(n-1, lastCol, 6*last)
	a.Set(n-1, lastCol+1, 2)

	return a, bs
}

func setValueRow(a *mat.Matrix, row, col int, x float64) {
	a.Set(row, col, x*x*x)
	a.Set(row, col+1, x*x)
	a.Set(row, col+2, x)
	a.Set(row, col+3, 1)
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
