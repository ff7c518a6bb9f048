package main

import (
	"flag"
	"fmt"
	goio "io"
	"log"
	"os"
	"path/filepath"
	"runtime/pprof"
	"strings"

	"github.com/phil-mansfield/gospline/io"
	"github.com/phil-mansfield/gospline/render"
	"github.com/phil-mansfield/gospline/spline"
	"github.com/spf13/cast"
)

const usage = `Usage: gospline [flags] <mode> [arguments]

Modes:
  interpolate <knot-table> <spline-table>
      Fits a natural cubic spline to the knots and writes its segments.
  evaluate <spline-table> <value>...
      Evaluates a spline at every value, in order.
  plot <spline-table> <image>
      Plots a spline and its knots with matplotlib.
  batch
      Reads lines of the form '<spline-table> <value>...' from stdin and
      prints one '<spline-table> <value> <result>' line per value.

Flags:
`

// FileGroup contains utility files for logging and writing profiles to.
type FileGroup struct {
	log, prof *os.File
}

// Close closes the files inside FileGroup.
func (fg *FileGroup) Close() {
	if fg.log != nil {
		log.SetOutput(os.Stderr)
		if err := fg.log.Close(); err != nil {
			log.Fatal(err.Error())
		}
	}

	if fg.prof != nil {
		pprof.StopCPUProfile()
		if err := fg.prof.Close(); err != nil {
			log.Fatal(err.Error())
		}
	}
}

// openFileGroup starts logging and profiling to the files named by con.
func openFileGroup(con *io.SplineConfig) (*FileGroup, error) {
	fg := &FileGroup{}

	if con.ValidLogFile() {
		f, err := os.Create(con.LogFile)
		if err != nil {
			return nil, err
		}
		fg.log = f
		log.SetOutput(f)
	}

	if con.ValidProfileFile() {
		f, err := os.Create(con.ProfileFile)
		if err != nil {
			fg.Close()
			return nil, err
		}
		fg.prof = f
		if err := pprof.StartCPUProfile(f); err != nil {
			fg.Close()
			return nil, err
		}
	}

	return fg, nil
}

func main() {
	var (
		configFile, exampleConfig string
		verbose                   bool
	)

	flag.StringVar(
		&configFile, "Config", "",
		"Configuration file with a [Spline] section. Defaults are used for "+
			"every value when this isn't set.",
	)
	flag.StringVar(
		&exampleConfig, "ExampleConfig", "",
		"Prints an example configuration file of the specified type to "+
			"stdout. The only accepted argument is 'Spline'.",
	)
	flag.BoolVar(&verbose, "Verbose", false, "Log progress to stderr.")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}

	flag.Parse()

	if exampleConfig != "" {
		switch exampleConfig {
		case "Spline":
			fmt.Println(io.ExampleSplineFile)
		default:
			log.Fatal(
				"Unrecognized 'ExampleConfig' argument. The only recognized " +
					"argument is 'Spline'.",
			)
		}
		return
	}

	con, err := io.ReadConfig(configFile)
	if err != nil {
		log.Fatal(err.Error())
	}
	con.Verbose = con.Verbose || verbose

	fg, err := openFileGroup(con)
	if err != nil {
		log.Fatal(err.Error())
	}

	err = run(con, flag.Args(), os.Stdin, os.Stdout)
	fg.Close()
	if err != nil {
		log.Fatal(err.Error())
	}
}

// run dispatches to the requested mode. It never exits the process, so all
// failures come back as errors.
func run(con *io.SplineConfig, args []string, in goio.Reader, out goio.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf(
			"Please enter a mode: one of %s.", strings.Join(modeNames, ", "),
		)
	}

	mode, args := args[0], args[1:]
	switch mode {
	case "interpolate":
		if len(args) != 2 {
			return fmt.Errorf(
				"interpolate mode takes an input and an output path, but "+
					"%d arguments were given.", len(args),
			)
		}
		return interpolateMain(con, args[0], args[1])

	case "evaluate":
		if len(args) < 1 {
			return fmt.Errorf("Please enter the path of a spline table.")
		}
		return evaluateMain(con, args[0], args[1:], out)

	case "plot":
		if len(args) != 2 {
			return fmt.Errorf(
				"plot mode takes a spline table and an image path, but "+
					"%d arguments were given.", len(args),
			)
		}
		if err := plotMain(con, args[0], args[1]); err != nil {
			return err
		}
		render.Execute()
		return nil

	case "batch":
		if len(args) != 0 {
			return fmt.Errorf(
				"batch mode reads from stdin, but %d arguments were given.",
				len(args),
			)
		}
		return batchMain(con, in, out)

	default:
		return fmt.Errorf(
			"Unrecognized mode '%s'. Recognized modes are %s.",
			mode, strings.Join(modeNames, ", "),
		)
	}
}

var modeNames = []string{"interpolate", "evaluate", "plot", "batch"}

func interpolateMain(con *io.SplineConfig, input, output string) error {
	knots, err := io.ReadKnots(input, con.TableFormat())
	if err != nil {
		return err
	}
	if con.Verbose {
		log.Printf("Read %d knots from '%s'.", len(knots), input)
	}

	sp, err := spline.FitWith(knots, con.SplineSolver())
	if err != nil {
		return fmt.Errorf("Could not fit '%s': %w", input, err)
	}

	if err := io.WriteSpline(output, con.TableFormat(), sp); err != nil {
		return err
	}
	if con.Verbose {
		log.Printf("Wrote %d segments to '%s'.", len(sp), output)
	}
	return nil
}

func evaluateMain(
	con *io.SplineConfig, input string, args []string, out goio.Writer,
) error {
	xs, err := parseValues(args)
	if err != nil {
		return err
	}
	sp, err := loadSpline(con, input)
	if err != nil {
		return err
	}

	ys, err := sp.EvalAll(xs)
	if err != nil {
		return err
	}
	for i := range xs {
		fmt.Fprintf(out, "S(%v) = %v\n", xs[i], ys[i])
	}
	return nil
}

func plotMain(con *io.SplineConfig, input, output string) error {
	sp, err := loadSpline(con, input)
	if err != nil {
		return err
	}
	return render.PlotSpline(sp, filepath.Base(input), output, con.PlotPoints)
}

// loadSpline reads a spline table and, unless the config turns it off, checks
// that it is a valid spline.
func loadSpline(con *io.SplineConfig, fname string) (spline.Spline, error) {
	sp, err := io.ReadSpline(fname, con.TableFormat())
	if err != nil {
		return nil, err
	}
	if con.Validate {
		if err := sp.Validate(con.Tolerance); err != nil {
			return nil, fmt.Errorf("Invalid spline table '%s': %w", fname, err)
		}
	}
	if con.Verbose {
		log.Printf("Read %d segments from '%s'.", len(sp), fname)
	}
	return sp, nil
}

// parseValues converts command line arguments to query values.
func parseValues(args []string) ([]float64, error) {
	xs := make([]float64, len(args))
	for i, arg := range args {
		x, err := cast.ToFloat64E(arg)
		if err != nil {
			return nil, fmt.Errorf(
				"Value %d, '%s', does not parse as a number.", i+1, arg,
			)
		}
		xs[i] = x
	}
	return xs, nil
}
