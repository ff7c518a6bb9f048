package spline

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/phil-mansfield/gospline/math/mat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenarioKnots() []Knot {
	return []Knot{{0, 10}, {0.5, 8}, {0.8, 5}, {1.0, 6}}
}

func makeKnots(xs, ys []float64) []Knot {
	knots := make([]Knot, len(xs))
	for i := range xs {
		knots[i] = Knot{xs[i], ys[i]}
	}
	return knots
}

// testKnotSets are the tables used for checking the properties every fit
// must satisfy.
func testKnotSets() map[string][]Knot {
	sines := make([]Knot, 15)
	for i := range sines {
		x := 0.2*float64(i) + 0.01*float64(i*i)
		sines[i] = Knot{x, math.Sin(3 * x)}
	}

	return map[string][]Knot{
		"scenario": scenarioKnots(),
		"table": makeKnots(
			[]float64{0, 1, 1.5, 2, 3, 4, 5},
			[]float64{2, 1, 1, 0, 2, 3, 1},
		),
		"line":     makeKnots([]float64{-1, 1}, []float64{3, -1}),
		"negative": makeKnots([]float64{-3, -2.5, -1, -0.25}, []float64{1, 4, 2, 8}),
		"sines":    sines,
	}
}

func TestFitScenario(t *testing.T) {
	sp, err := Fit(scenarioKnots())
	require.NoError(t, err)
	require.Len(t, sp, 3)

	for i, ref := range validSpline() {
		assert.InDelta(t, ref.A, sp[i].A, 1e-9, "segment %d", i)
		assert.InDelta(t, ref.B, sp[i].B, 1e-9, "segment %d", i)
		assert.InDelta(t, ref.C, sp[i].C, 1e-9, "segment %d", i)
		assert.InDelta(t, ref.D, sp[i].D, 1e-9, "segment %d", i)
		assert.Equal(t, ref.Knot0, sp[i].Knot0)
		assert.Equal(t, ref.Knot1, sp[i].Knot1)
	}

	x := 0.6
	seg := sp[1]
	direct := seg.A*(x*x*x) + seg.B*(x*x) + seg.C*x + seg.D
	y, err := sp.Eval(x)
	require.NoError(t, err)
	assert.InDelta(t, direct, y, 1e-12)
	assert.InDelta(t, 6.776158940397357, y, 1e-9)
}

func TestFitProperties(t *testing.T) {
	for name, knots := range testKnotSets() {
		sp, err := Fit(knots)
		require.NoError(t, err, name)

		// Segment count and adjacency.
		require.Len(t, sp, len(knots)-1, name)
		for i := range sp {
			assert.Less(t, sp[i].Knot0, sp[i].Knot1, name)
			assert.Equal(t, knots[i].X, sp[i].Knot0, name)
			assert.Equal(t, knots[i+1].X, sp[i].Knot1, name)
		}

		// Interpolation.
		for i, k := range knots {
			y, err := sp.Eval(k.X)
			require.NoError(t, err, name)
			assert.InDelta(t, k.Y, y, 1e-8, "%s: knot %d", name, i)
		}

		// Continuity of the value and the first two derivatives.
		for i := 1; i < len(sp); i++ {
			x := knots[i].X
			for order := 0; order <= 2; order++ {
				l, err := sp[i-1].Diff(x, order)
				require.NoError(t, err)
				r, err := sp[i].Diff(x, order)
				require.NoError(t, err)
				assert.InDelta(t, l, r, 1e-8,
					"%s: order %d at knot %d", name, order, i)
			}
		}

		// Natural boundaries.
		lo, hi := sp.Range()
		d2lo, err := sp[0].Diff(lo, 2)
		require.NoError(t, err)
		d2hi, err := sp[len(sp)-1].Diff(hi, 2)
		require.NoError(t, err)
		assert.InDelta(t, 0.0, d2lo, 1e-8, name)
		assert.InDelta(t, 0.0, d2hi, 1e-8, name)

		assert.NoError(t, sp.Validate(DefaultTolerance), name)
	}
}

func TestFitTwoKnots(t *testing.T) {
	sp, err := Fit([]Knot{{1, 2}, {3, 6}})
	require.NoError(t, err)
	require.Len(t, sp, 1)

	// Both boundaries have zero curvature, so the spline is a line.
	assert.InDelta(t, 0.0, sp[0].A, 1e-12)
	assert.InDelta(t, 0.0, sp[0].B, 1e-12)
	assert.InDelta(t, 2.0, sp[0].C, 1e-12)
	assert.InDelta(t, 0.0, sp[0].D, 1e-12)

	y, err := sp.Eval(2)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, y, 1e-12)
}

func TestFitTooSmall(t *testing.T) {
	for _, knots := range [][]Knot{nil, {}, {{1, 1}}} {
		_, err := Fit(knots)
		assert.True(t, errors.Is(err, ErrInputTooSmall), "%d knots", len(knots))
	}
}

func TestFitNonFinite(t *testing.T) {
	for _, bad := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := Fit([]Knot{{0, 1}, {1, bad}, {2, 3}})
		assert.True(t, errors.Is(err, ErrNonFinite), "y = %g", bad)
		_, err = Fit([]Knot{{0, 1}, {bad, 2}})
		assert.True(t, errors.Is(err, ErrNonFinite), "x = %g", bad)
	}
}

func TestFitDegenerate(t *testing.T) {
	_, err := Fit([]Knot{{0, 1}, {0.5, 2}, {0.5, 3}, {1, 0}})
	assert.True(t, errors.Is(err, ErrSingularSystem))

	_, err = Fit([]Knot{{0, 1}, {1, 2}, {0.5, 3}})
	assert.True(t, errors.Is(err, ErrUnsorted))
}

func TestSingularSolver(t *testing.T) {
	failing := SolverFunc(func(a *mat.Matrix, bs []float64) ([]float64, error) {
		return nil, fmt.Errorf("column 3: %w", mat.ErrSingular)
	})

	_, err := FitWith(scenarioKnots(), failing)
	assert.True(t, errors.Is(err, ErrSingularSystem))

	// A system with duplicate knots which skips the input checks must still
	// be rejected by every solver.
	a, bs := System([]Knot{{0, 1}, {0.5, 2}, {0.5, 3}, {1, 0}})
	for _, name := range SolverNames() {
		solver, err := SolverByName(name)
		require.NoError(t, err)
		_, err = solver.Solve(a, bs)
		assert.True(t, errors.Is(err, mat.ErrSingular), name)
	}
}

func TestSolversAgree(t *testing.T) {
	for name, knots := range testKnotSets() {
		ref, err := FitWith(knots, LUSolver)
		require.NoError(t, err)

		for _, solver := range []Solver{InverseSolver, GonumSolver} {
			sp, err := FitWith(knots, solver)
			require.NoError(t, err, name)
			require.Len(t, sp, len(ref))
			for _, x := range []float64{knots[0].X, knots[len(knots)-1].X,
				(knots[0].X + knots[1].X) / 2} {

				want, err := ref.Eval(x)
				require.NoError(t, err)
				got, err := sp.Eval(x)
				require.NoError(t, err)
				assert.InDelta(t, want, got, 1e-8, "%s: x = %g", name, x)
			}
		}
	}
}

func TestSolverByName(t *testing.T) {
	assert.Equal(t, []string{"gonum", "inverse", "lu"}, SolverNames())

	_, err := SolverByName("LU")
	assert.NoError(t, err)
	_, err = SolverByName("cholesky")
	assert.Error(t, err)
}

func TestSystem(t *testing.T) {
	a, bs := System(scenarioKnots())
	require.Equal(t, 12, a.Width)
	require.Equal(t, 12, a.Height)
	require.Len(t, bs, 12)

	// Value rows of the second segment.
	assert.Equal(t, []float64{0.125, 0.25, 0.5, 1}, a.Vals[4*12+4:4*12+8])
	assert.Equal(t, 8.0, bs[4])
	assert.Equal(t, 5.0, bs[5])

	// Boundary rows.
	assert.Equal(t, 0.0, a.At(10, 0))
	assert.Equal(t, 2.0, a.At(10, 1))
	assert.Equal(t, 6.0, a.At(11, 8))
	assert.Equal(t, 2.0, a.At(11, 9))
	assert.Equal(t, 0.0, bs[10])
	assert.Equal(t, 0.0, bs[11])

	assert.Panics(t, func() { System([]Knot{{0, 0}}) })
}
