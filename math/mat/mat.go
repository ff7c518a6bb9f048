/*mat contains routines for executing operations on dense matrices. Operations
are split into easy to use methods which might be somewhat wasteful with memory
consumption and execution time and slightly less easy to use methods which
require explictly managing LU decomposition.

Pretty much everything only works on square matrices because that's all the
spline solver needs. Shape mismatches are programming errors and panic.
Singular matrices are a property of the input data and are reported through
ErrSingular.
*/
package mat

import (
	"errors"
	"fmt"
	"math"
)

// ErrSingular is returned when a matrix cannot be decomposed because one of
// its pivots vanishes.
var ErrSingular = errors.New("matrix is singular")

// Matrix represents a row-major matrix of float64 values.
type Matrix struct {
	Vals          []float64
	Width, Height int
}

// LUFactors contains data fields neccessary for a number of matrix operations.
// Exporting this type allows calling routines to better manage their memory
// consumption and to prevent recomputing the same decomposition many times.
type LUFactors struct {
	lu    Matrix
	pivot []int
	d     float64
}

// NewMatrix creates a matrix with the specified values and dimensions.
func NewMatrix(vals []float64, width, height int) *Matrix {
	if width <= 0 {
		panic("width must be positive.")
	} else if height <= 0 {
		panic("height must be positive.")
	} else if width*height != len(vals) {
		panic("height * width must equal len(vals).")
	}

	return &Matrix{Vals: vals, Width: width, Height: height}
}

// Zeros creates a height x width matrix filled with zeros.
func Zeros(width, height int) *Matrix {
	return NewMatrix(make([]float64, width*height), width, height)
}

// Identity creates the n x n identity matrix.
func Identity(n int) *Matrix {
	m := Zeros(n, n)
	for i := 0; i < n; i++ {
		m.Vals[i*n+i] = 1
	}
	return m
}

// At returns the element in row i and column j.
func (m *Matrix) At(i, j int) float64 { return m.Vals[i*m.Width+j] }

// Set sets the element in row i and column j.
func (m *Matrix) Set(i, j int, val float64) { m.Vals[i*m.Width+j] = val }

// Mult multiplies two matrices together.
func (m1 *Matrix) Mult(m2 *Matrix) *Matrix {
	h, w := m1.Height, m2.Width
	out := NewMatrix(make([]float64, h*w), w, h)
	return m1.MultAt(m2, out)
}

// MultAt multiplies to matrices together and writes the result to the
// specified matrix.
func (m1 *Matrix) MultAt(m2, out *Matrix) *Matrix {
	if m1.Width != m2.Height {
		panic("Multiplication of incompatible matrix sizes.")
	} else if out.Height != m1.Height || out.Width != m2.Width {
		panic("out matrix has the wrong dimensions.")
	}

	for i := range out.Vals {
		out.Vals[i] = 0
	}
	for i := 0; i < m1.Height; i++ {
		off := i * m1.Width
		for j := 0; j < m2.Width; j++ {
			outIdx := i*out.Width + j
			for k := 0; k < m1.Width; k++ {
				out.Vals[outIdx] += m1.Vals[off+k] * m2.Vals[k*m2.Width+j]
			}
		}
	}

	return out
}

// MultVector computes m * xs.
func (m *Matrix) MultVector(xs []float64) []float64 {
	if m.Width != len(xs) {
		panic("len(xs) != m.Width")
	}

	out := make([]float64, m.Height)
	for i := range out {
		off := i * m.Width
		sum := 0.0
		for j, x := range xs {
			sum += m.Vals[off+j] * x
		}
		out[i] = sum
	}
	return out
}

// Invert computes the inverse of a matrix.
func (m *Matrix) Invert() (*Matrix, error) {
	lu, err := m.LU()
	if err != nil {
		return nil, err
	}
	inv := NewMatrix(make([]float64, len(m.Vals)), m.Width, m.Height)
	return lu.InvertAt(inv), nil
}

// Determinant computes the determinant of a matrix. Singular matrices have a
// determinant of zero.
func (m *Matrix) Determinant() float64 {
	lu, err := m.LU()
	if err != nil {
		return 0
	}
	return lu.Determinant()
}

// SolveVector solves the equation m * xs = bs for xs.
func (m *Matrix) SolveVector(bs []float64) ([]float64, error) {
	xs := make([]float64, len(bs))
	lu, err := m.LU()
	if err != nil {
		return nil, err
	}
	return lu.SolveVector(bs, xs), nil
}

// NewLUFactors creates an LUFactors instance of the requested dimensions.
func NewLUFactors(n int) *LUFactors {
	luf := new(LUFactors)

	luf.lu.Vals, luf.lu.Width, luf.lu.Height = make([]float64, n*n), n, n
	luf.pivot = make([]int, n)
	luf.d = 1

	return luf
}

// LU returns the LU decomposition of a matrix.
func (m *Matrix) LU() (*LUFactors, error) {
	if m.Width != m.Height {
		panic("m is non-square.")
	}

	lu := NewLUFactors(m.Width)
	if err := m.LUFactorsAt(lu); err != nil {
		return nil, err
	}
	return lu, nil
}

// LUFactorsAt stores the LU decomposition of a matrix at the specified
// location. Rows are pivoted on the largest remaining value in each column.
func (m *Matrix) LUFactorsAt(luf *LUFactors) error {
	if luf.lu.Width != m.Width || luf.lu.Height != m.Height {
		panic("luf has different dimenstions than m.")
	}

	n := m.Width
	for i := 0; i < n; i++ {
		luf.pivot[i] = i
	}
	lu := luf.lu.Vals
	copy(lu, m.Vals)

	// Maintained for determinant calculations.
	luf.d = 1

	// Pivots smaller than this are treated as zero.
	tol := maxAbs(m.Vals) * eps
	if tol == 0 {
		return fmt.Errorf("%d x %d zero matrix: %w", n, n, ErrSingular)
	}

	for k := 0; k < n; k++ {
		maxRow := findMaxRow(n, lu, k)
		if math.Abs(lu[maxRow*n+k]) <= tol {
			return fmt.Errorf("zero pivot in column %d: %w", k, ErrSingular)
		}

		if k != maxRow {
			swapRows(k, maxRow, n, lu)
			luf.pivot[k], luf.pivot[maxRow] = luf.pivot[maxRow], luf.pivot[k]
			luf.d = -luf.d
		}

		kOffset := k * n
		for i := k + 1; i < n; i++ {
			iOffset := i * n
			lu[iOffset+k] /= lu[kOffset+k]
			tmp := lu[iOffset+k]
			if tmp == 0 {
				continue
			}
			for j := k + 1; j < n; j++ {
				lu[iOffset+j] -= tmp * lu[kOffset+j]
			}
		}
	}

	return nil
}

const eps = 1.0 / (1 << 52)

func maxAbs(xs []float64) float64 {
	max := 0.0
	for _, x := range xs {
		if a := math.Abs(x); a > max {
			max = a
		}
	}
	return max
}

// Finds the index of the row containing the maximum value in the column.
// Ignores the values above the point m_col,col since those have already been
// swapped.
func findMaxRow(n int, m []float64, col int) int {
	max, maxRow := -1.0, col

	for i := col; i < n; i++ {
		val := math.Abs(m[i*n+col])
		if val > max {
			max = val
			maxRow = i
		}
	}
	return maxRow
}

func swapRows(i1, i2, n int, lu []float64) {
	i1Offset, i2Offset := n*i1, n*i2
	for j := 0; j < n; j++ {
		idx1, idx2 := i1Offset+j, i2Offset+j
		lu[idx1], lu[idx2] = lu[idx2], lu[idx1]
	}
}

// SolveVector solves M * xs = bs for xs.
//
// bs and xs may point to the same physical memory.
func (luf *LUFactors) SolveVector(bs, xs []float64) []float64 {
	n := luf.lu.Width
	if n != len(bs) {
		panic("len(b) != luf.Width")
	} else if n != len(xs) {
		panic("len(x) != luf.Width")
	}

	// A x = b -> (L U) x = b -> L (U x) = b -> L y = b
	ys := make([]float64, n)

	// Solve L * y = b for y.
	forwardSubst(n, luf.pivot, luf.lu.Vals, bs, ys)
	// Solve U * x = y for x.
	backSubst(n, luf.lu.Vals, ys, xs)

	return xs
}

// Solves L * y = P * b for y. L has an implicit unit diagonal.
// y_i = b_p(i) - sum_j=0^i-1 (alpha_ij y_j)
func forwardSubst(n int, pivot []int, lu, bs, ys []float64) {
	for i := 0; i < n; i++ {
		sum := bs[pivot[i]]
		for j := 0; j < i; j++ {
			sum -= lu[i*n+j] * ys[j]
		}
		ys[i] = sum
	}
}

// Solves U * x = y for x.
// x_i = (y_i - sum_j=i+1^N-1 (beta_ij x_j)) / beta_ii
func backSubst(n int, lu, ys, xs []float64) {
	for i := n - 1; i >= 0; i-- {
		sum := ys[i]
		for j := i + 1; j < n; j++ {
			sum -= lu[i*n+j] * xs[j]
		}
		xs[i] = sum / lu[i*n+i]
	}
}

// SolveMatrix solves the equation M * x = b column by column.
//
// x and b may point to the same physical memory.
func (luf *LUFactors) SolveMatrix(b, x *Matrix) *Matrix {
	n := luf.lu.Width

	if b.Height != n {
		panic("b matrix different height than m matrix.")
	} else if x.Height != n || x.Width != b.Width {
		panic("x matrix different size than b matrix.")
	}

	col := make([]float64, n)
	for j := 0; j < b.Width; j++ {
		for i := 0; i < n; i++ {
			col[i] = b.Vals[i*b.Width+j]
		}
		luf.SolveVector(col, col)
		for i := 0; i < n; i++ {
			x.Vals[i*x.Width+j] = col[i]
		}
	}

	return x
}

// InvertAt inverts the matrix represented by the given LU decomposition
// and writes the results into the specified out matrix.
func (luf *LUFactors) InvertAt(out *Matrix) *Matrix {
	n := luf.lu.Width
	if out.Width != out.Height {
		panic("out matrix is non-square.")
	} else if n != out.Width {
		panic("out matrix different size than m matrix.")
	}

	for i := range out.Vals {
		out.Vals[i] = 0
	}
	for i := 0; i < n; i++ {
		out.Vals[i*n+i] = 1
	}

	luf.SolveMatrix(out, out)
	return out
}

// Determinant compute the determinant of of the matrix represented by the
// given LU decomposition.
func (luf *LUFactors) Determinant() float64 {
	d := luf.d
	lu := luf.lu.Vals
	n := luf.lu.Width

	for i := 0; i < n; i++ {
		d *= lu[i*n+i]
	}
	return d
}
