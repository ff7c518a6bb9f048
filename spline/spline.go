/*package spline fits natural cubic splines through a table of knots and
evaluates them.

A Spline is an ordered list of Segments, each of which is a cubic polynomial in
the absolute coordinate x which is valid over a closed interval between two
consecutive knots. Fit builds a Spline and the Eval methods consume one. The
two halves only share the Segment type, so a Spline which was written to disk
and read back in evaluates the same way as one which came straight out of Fit.
*/
package spline

import (
	"errors"
	"fmt"
)

var (
	// ErrInputTooSmall is returned when fewer than two knots are fit.
	ErrInputTooSmall = errors.New("at least two knots are required")
	// ErrNonFinite is returned when a NaN or infinite value is encountered.
	ErrNonFinite = errors.New("non-finite value")
	// ErrSingularSystem is returned when the spline constraints cannot be
	// solved, which happens for degenerate knot layouts.
	ErrSingularSystem = errors.New("singular spline system")
	// ErrOutOfRange is returned when a point lies outside the range covered
	// by a Spline or a Segment.
	ErrOutOfRange = errors.New("point outside of spline range")
	// ErrEmptySpline is returned when evaluating a Spline with no segments.
	ErrEmptySpline = errors.New("spline has no segments")
	// ErrUnsorted is returned when knots or segments are out of order, or
	// when neighboring segments leave gaps or overlap.
	ErrUnsorted = errors.New("knots are not in increasing order")
	// ErrDiscontinuous is returned when the neighboring segments of a Spline
	// disagree on the value or the first two derivatives at a shared knot.
	ErrDiscontinuous = errors.New("spline is discontinuous")
)

// Knot is a single point which the spline is required to pass through.
type Knot struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Segment is the cubic polynomial S(x) = A*x^3 + B*x^2 + C*x + D, valid on the
// closed interval [Knot0, Knot1].
type Segment struct {
	A     float64 `yaml:"a"`
	B     float64 `yaml:"b"`
	C     float64 `yaml:"c"`
	D     float64 `yaml:"d"`
	Knot0 float64 `yaml:"knot0"`
	Knot1 float64 `yaml:"knot1"`
}

// Contains returns true if x is inside [Knot0, Knot1]. NaN is never contained.
func (seg *Segment) Contains(x float64) bool {
	return x >= seg.Knot0 && x <= seg.Knot1
}

// Eval computes the value of the segment's polynomial at x.
func (seg *Segment) Eval(x float64) (float64, error) {
	if !seg.Contains(x) {
		return 0, fmt.Errorf(
			"Point %g given to Segment.Eval() out of bounds [%g, %g]: %w",
			x, seg.Knot0, seg.Knot1, ErrOutOfRange,
		)
	}
	return seg.poly(x), nil
}

// Diff computes the derivative of the segment's polynomial at x to the
// specified order. Orders above three are zero.
func (seg *Segment) Diff(x float64, order int) (float64, error) {
	if !seg.Contains(x) {
		return 0, fmt.Errorf(
			"Point %g given to Segment.Diff() out of bounds [%g, %g]: %w",
			x, seg.Knot0, seg.Knot1, ErrOutOfRange,
		)
	}
	return seg.diff(x, order), nil
}

func (seg *Segment) poly(x float64) float64 {
	return seg.A*(x*x*x) + seg.B*(x*x) + seg.C*x + seg.D
}

func (seg *Segment) diff(x float64, order int) float64 {
	switch order {
	case 0:
		return seg.poly(x)
	case 1:
		return 3*seg.A*(x*x) + 2*seg.B*x + seg.C
	case 2:
		return 6*seg.A*x + 2*seg.B
	case 3:
		return 6 * seg.A
	default:
		return 0
	}
}

// Interpolator is anything which can be evaluated over a one dimensional
// range.
type Interpolator interface {
	Eval(x float64) (float64, error)
	EvalAll(xs []float64, out ...[]float64) ([]float64, error)
	Range() (lo, hi float64)
}

var _ Interpolator = Spline{}

// Spline is a sequence of Segments ordered by increasing Knot0 where each
// segment's Knot1 is the next segment's Knot0.
type Spline []Segment

// Range returns the interval covered by the spline. It panics on an empty
// Spline.
func (sp Spline) Range() (lo, hi float64) {
	return sp[0].Knot0, sp[len(sp)-1].Knot1
}

// Locate returns the index of a segment which contains x. At a knot shared by
// two segments either one may be returned.
func (sp Spline) Locate(x float64) (int, error) {
	if len(sp) == 0 {
		return 0, fmt.Errorf(
			"Spline.Locate() given point %g: %w", x, ErrEmptySpline,
		)
	}

	lo, hi := 0, len(sp)-1
	if !(x >= sp[lo].Knot0 && x <= sp[hi].Knot1) {
		return 0, fmt.Errorf(
			"Point %g given to Spline.Locate() out of bounds [%g, %g]: %w",
			x, sp[lo].Knot0, sp[hi].Knot1, ErrOutOfRange,
		)
	}

	for lo < hi {
		mid := (lo + hi) / 2
		if sp[mid].Knot1 < x {
			lo = mid + 1
		} else if sp[mid].Knot0 > x {
			hi = mid - 1
		} else {
			return mid, nil
		}
	}

	return lo, nil
}

// Eval computes the value of the spline at the given point.
func (sp Spline) Eval(x float64) (float64, error) {
	i, err := sp.Locate(x)
	if err != nil {
		return 0, err
	}
	return sp[i].Eval(x)
}

// Diff computes the derivative of spline at the given point to the
// specified order.
func (sp Spline) Diff(x float64, order int) (float64, error) {
	i, err := sp.Locate(x)
	if err != nil {
		return 0, err
	}
	return sp[i].Diff(x, order)
}

// EvalAll evaluates the spline at every point in xs, in order. If an output
// slice is supplied, results are written to it instead of a new slice. The
// first point which fails to evaluate aborts the whole batch.
func (sp Spline) EvalAll(xs []float64, out ...[]float64) ([]float64, error) {
	if len(out) == 0 {
		out = [][]float64{make([]float64, len(xs))}
	} else if len(out[0]) < len(xs) {
		panic(fmt.Sprintf(
			"len(out) = %d, but len(xs) = %d", len(out[0]), len(xs),
		))
	}

	for i := range xs {
		y, err := sp.Eval(xs[i])
		if err != nil {
			return nil, fmt.Errorf("query %d: %w", i, err)
		}
		out[0][i] = y
	}
	return out[0][:len(xs)], nil
}
