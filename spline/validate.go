package spline

import (
	"fmt"
	"math"
)

// DefaultTolerance is the relative tolerance used when checking the
// continuity of splines read from disk.
const DefaultTolerance = 1e-8

// Validate checks that sp could have been produced by Fit: segments are
// finite, ordered, have no gaps or overlaps, and neighboring segments agree on
// their value and first two derivatives at the shared knot to within a
// relative tolerance of tol.
func (sp Spline) Validate(tol float64) error {
	if len(sp) == 0 {
		return ErrEmptySpline
	}

	for i := range sp {
		seg := &sp[i]
		for _, v := range []float64{
			seg.A, seg.B, seg.C, seg.D, seg.Knot0, seg.Knot1,
		} {
			if !isFinite(v) {
				return fmt.Errorf("segment %d contains %g: %w", i, v, ErrNonFinite)
			}
		}

		if !(seg.Knot0 < seg.Knot1) {
			return fmt.Errorf(
				"segment %d has the interval [%g, %g]: %w",
				i, seg.Knot0, seg.Knot1, ErrUnsorted,
			)
		}
	}

	for i := 1; i < len(sp); i++ {
		prev, seg := &sp[i-1], &sp[i]
		if prev.Knot1 != seg.Knot0 {
			return fmt.Errorf(
				"segment %d ends at %g, but segment %d starts at %g: %w",
				i-1, prev.Knot1, i, seg.Knot0, ErrUnsorted,
			)
		}

		x := seg.Knot0
		for order := 0; order <= 2; order++ {
			l, r := prev.diff(x, order), seg.diff(x, order)
			scale := math.Max(1, math.Max(prev.scale(x, order), seg.scale(x, order)))
			if math.Abs(l-r) > tol*scale {
				return fmt.Errorf(
					"order %d derivatives of segments %d and %d are %g "+
						"and %g at x = %g: %w",
					order, i-1, i, l, r, x, ErrDiscontinuous,
				)
			}
		}
	}

	return nil
}

// scale returns the sum of the magnitudes of the terms which make up the
// order'th derivative at x. Differences smaller than this are rounding error.
func (seg *Segment) scale(x float64, order int) float64 {
	a, b, c, d := math.Abs(seg.A), math.Abs(seg.B), math.Abs(seg.C), math.Abs(seg.D)
	x = math.Abs(x)
	switch order {
	case 0:
		return a*(x*x*x) + b*(x*x) + c*x + d
	case 1:
		return 3*a*(x*x) + 2*b*x + c
	case 2:
		return 6*a*x + 2*b
	default:
		return 6 * a
	}
}
