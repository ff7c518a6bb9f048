package spline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/phil-mansfield/gospline/math/mat"
	gonum "gonum.org/v1/gonum/mat"
)

// Solver solves the dense system a * xs = bs for xs. Singular systems must be
// reported with an error wrapping mat.ErrSingular.
type Solver interface {
	Solve(a *mat.Matrix, bs []float64) ([]float64, error)
}

// SolverFunc allows a plain function to be used as a Solver.
type SolverFunc func(a *mat.Matrix, bs []float64) ([]float64, error)

func (f SolverFunc) Solve(a *mat.Matrix, bs []float64) ([]float64, error) {
	return f(a, bs)
}

var (
	// LUSolver uses an LU decomposition with partial pivoting.
	LUSolver Solver = SolverFunc(solveLU)
	// InverseSolver explicitly inverts the system matrix.
	InverseSolver Solver = SolverFunc(solveInverse)
	// GonumSolver hands the system to gonum.
	GonumSolver Solver = SolverFunc(solveGonum)
)

var solvers = map[string]Solver{
	"lu":      LUSolver,
	"inverse": InverseSolver,
	"gonum":   GonumSolver,
}

// SolverNames returns the names accepted by SolverByName.
func SolverNames() []string {
	names := make([]string, 0, len(solvers))
	for name := range solvers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SolverByName looks up a Solver by its case-insensitive name.
func SolverByName(name string) (Solver, error) {
	solver, ok := solvers[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf(
			"Unrecognized solver '%s'. Recognized solvers are: %s.",
			name, strings.Join(SolverNames(), ", "),
		)
	}
	return solver, nil
}

func solveLU(a *mat.Matrix, bs []float64) ([]float64, error) {
	return a.SolveVector(bs)
}

func solveInverse(a *mat.Matrix, bs []float64) ([]float64, error) {
	inv, err := a.Invert()
	if err != nil {
		return nil, err
	}
	return inv.MultVector(bs), nil
}

func solveGonum(a *mat.Matrix, bs []float64) ([]float64, error) {
	A := gonum.NewDense(a.Height, a.Width, append([]float64{}, a.Vals...))
	b := gonum.NewVecDense(len(bs), append([]float64{}, bs...))

	var x gonum.VecDense
	if err := x.SolveVec(A, b); err != nil {
		return nil, fmt.Errorf("gonum: %s: %w", err.Error(), mat.ErrSingular)
	}

	xs := make([]float64, x.Len())
	for i := range xs {
		xs[i] = x.AtVec(i)
	}
	return xs, nil
}
