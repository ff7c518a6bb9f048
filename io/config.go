package io

import (
	"fmt"

	"github.com/phil-mansfield/gospline/spline"
	"gopkg.in/gcfg.v1"
)

const ExampleSplineFile = `[Spline]

#######################
# Optional Parameters #
#######################

# Solver used for the spline system. Can be set to one of:
# [ lu | inverse | gonum ]
# lu is an LU decomposition with partial pivoting and is the default. inverse
# explicitly inverts the system matrix and gonum hands the system off to
# gonum's LU solver. All three are dense, so very long knot tables will be
# slow.
# Solver = lu

# Format of knot and spline tables. Can be set to one of:
# [ auto | text | csv | yaml ]
# auto picks a format from the file extension: .csv files are CSV, .yaml and
# .yml files are YAML, and everything else is a whitespace-separated text
# table with '#' comments.
# Format = auto

# Spline tables read from disk are checked for gaps, overlaps, and
# discontinuities before they are evaluated. Turning this off lets you
# evaluate hand-written piecewise polynomials.
# Validate = true

# Relative tolerance used by the continuity checks.
# Tolerance = 1e-8

# Number of points used to draw the curve in Plot mode.
# PlotPoints = 200

# Log progress to stderr.
# Verbose = false

# Output files which are useful for profiling and debugging. Generally, there
# isn't a reason to use these unless something goes wrong.
# ProfileFile = prof.out
# LogFile = log.out`

// SplineConfig holds the settings read from a [Spline] configuration file.
type SplineConfig struct {
	// Optional
	Solver     string
	Format     string
	Validate   bool
	Tolerance  float64
	PlotPoints int
	Verbose    bool

	LogFile, ProfileFile string
}

// SplineWrapper is the top-level structure gcfg reads into.
type SplineWrapper struct {
	Spline SplineConfig
}

// DefaultSplineWrapper returns a wrapper with every optional field set to its
// default value.
func DefaultSplineWrapper() *SplineWrapper {
	con := SplineConfig{}
	con.Solver = "lu"
	con.Format = "auto"
	con.Validate = true
	con.Tolerance = spline.DefaultTolerance
	con.PlotPoints = 200
	return &SplineWrapper{con}
}

// ReadConfig reads the [Spline] section of the given file on top of the
// default settings. An empty file name returns the defaults.
func ReadConfig(fname string) (*SplineConfig, error) {
	wrap := DefaultSplineWrapper()
	if fname != "" {
		if err := gcfg.ReadFileInto(wrap, fname); err != nil {
			return nil, err
		}
	}

	con := &wrap.Spline
	if err := con.CheckInit(); err != nil {
		return nil, err
	}
	return con, nil
}

// CheckInit returns a descriptive error if any field has an invalid value.
func (con *SplineConfig) CheckInit() error {
	if !con.ValidSolver() {
		_, err := spline.SolverByName(con.Solver)
		return err
	} else if !con.ValidFormat() {
		_, err := ParseFormat(con.Format)
		return err
	} else if !con.ValidTolerance() {
		return fmt.Errorf(
			"Tolerance must be positive, but is %g.", con.Tolerance,
		)
	} else if !con.ValidPlotPoints() {
		return fmt.Errorf(
			"PlotPoints must be at least 2, but is %d.", con.PlotPoints,
		)
	}
	return nil
}

func (con *SplineConfig) ValidSolver() bool {
	_, err := spline.SolverByName(con.Solver)
	return err == nil
}
func (con *SplineConfig) ValidFormat() bool {
	_, err := ParseFormat(con.Format)
	return err == nil
}
func (con *SplineConfig) ValidTolerance() bool {
	return con.Tolerance > 0
}
func (con *SplineConfig) ValidPlotPoints() bool {
	return con.PlotPoints >= 2
}
func (con *SplineConfig) ValidLogFile() bool {
	return con.LogFile != ""
}
func (con *SplineConfig) ValidProfileFile() bool {
	return con.ProfileFile != ""
}

// TableFormat returns the parsed Format field. Must only be called on a
// config which passed CheckInit.
func (con *SplineConfig) TableFormat() Format {
	f, err := ParseFormat(con.Format)
	if err != nil {
		panic(err.Error())
	}
	return f
}

// SplineSolver returns the Solver named by the Solver field. Must only be
// called on a config which passed CheckInit.
func (con *SplineConfig) SplineSolver() spline.Solver {
	solver, err := spline.SolverByName(con.Solver)
	if err != nil {
		panic(err.Error())
	}
	return solver
}
