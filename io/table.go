package io

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/phil-mansfield/gospline/spline"
	"github.com/phil-mansfield/table"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

var (
	// ErrDuplicateKnot is returned when two knots share the same x value.
	ErrDuplicateKnot = errors.New("duplicate knot x position")
	// ErrBadHeader is returned when a CSV or YAML table is missing one of the
	// required columns.
	ErrBadHeader = errors.New("missing table column")
)

var (
	knotColumns    = []string{"x", "y"}
	segmentColumns = []string{"a", "b", "c", "d", "knot0", "knot1"}
)

// Format is a file format which knot and spline tables can be stored in.
type Format int

const (
	// Auto picks a format based on the extension of the file.
	Auto Format = iota
	// Text is a whitespace-separated table where lines starting with '#'
	// are comments.
	Text
	// CSV is a comma-separated table with a header row naming the columns.
	CSV
	// YAML is a sequence of mappings from column names to values.
	YAML
)

var formatNames = []string{"auto", "text", "csv", "yaml"}

func (f Format) String() string {
	if f < 0 || int(f) >= len(formatNames) {
		return fmt.Sprintf("Format(%d)", int(f))
	}
	return formatNames[f]
}

// ParseFormat converts the case-insensitive name of a format to a Format.
func ParseFormat(name string) (Format, error) {
	for i, fname := range formatNames {
		if strings.EqualFold(name, fname) {
			return Format(i), nil
		}
	}
	return Auto, fmt.Errorf(
		"Unrecognized table format '%s'. Recognized formats are: %s.",
		name, strings.Join(formatNames, ", "),
	)
}

// Resolve returns the format which will be used for the given file. Auto is
// resolved by the file's extension, anything unrecognized is Text.
func (f Format) Resolve(fname string) Format {
	if f != Auto {
		return f
	}

	switch strings.ToLower(filepath.Ext(fname)) {
	case ".csv":
		return CSV
	case ".yaml", ".yml":
		return YAML
	default:
		return Text
	}
}

// ReadKnots reads a table of knots with the columns x and y, sorts it by x,
// and checks that every value is finite and that no two knots share an x
// value.
func ReadKnots(fname string, f Format) ([]spline.Knot, error) {
	cols, err := readColumns(fname, f, knotColumns)
	if err != nil {
		return nil, err
	}

	knots := make([]spline.Knot, len(cols[0]))
	for i := range knots {
		knots[i] = spline.Knot{X: cols[0][i], Y: cols[1][i]}
		if !isFinite(knots[i].X) || !isFinite(knots[i].Y) {
			return nil, fmt.Errorf(
				"Knot %d in '%s' is (%g, %g): %w",
				i, fname, knots[i].X, knots[i].Y, spline.ErrNonFinite,
			)
		}
	}

	sort.SliceStable(knots, func(i, j int) bool { return knots[i].X < knots[j].X })
	for i := 1; i < len(knots); i++ {
		if knots[i].X == knots[i-1].X {
			return nil, fmt.Errorf(
				"Two knots in '%s' have x = %g: %w",
				fname, knots[i].X, ErrDuplicateKnot,
			)
		}
	}

	return knots, nil
}

// ReadSpline reads a table of segments with the columns a, b, c, d, knot0,
// and knot1. Segments are returned in file order and every value is checked
// to be finite. The continuity of the spline is not checked: use
// spline.Spline.Validate for that.
func ReadSpline(fname string, f Format) (spline.Spline, error) {
	cols, err := readColumns(fname, f, segmentColumns)
	if err != nil {
		return nil, err
	}

	sp := make(spline.Spline, len(cols[0]))
	for i := range sp {
		sp[i] = spline.Segment{
			A: cols[0][i], B: cols[1][i], C: cols[2][i], D: cols[3][i],
			Knot0: cols[4][i], Knot1: cols[5][i],
		}
		for j := range cols {
			if !isFinite(cols[j][i]) {
				return nil, fmt.Errorf(
					"Segment %d in '%s' has %s = %g: %w",
					i, fname, segmentColumns[j], cols[j][i], spline.ErrNonFinite,
				)
			}
		}
	}

	return sp, nil
}

// WriteKnots writes knots to a table in the given format.
func WriteKnots(fname string, f Format, knots []spline.Knot) error {
	if f.Resolve(fname) == YAML {
		return writeYAML(fname, knots)
	}

	cols := [][]float64{make([]float64, len(knots)), make([]float64, len(knots))}
	for i := range knots {
		cols[0][i], cols[1][i] = knots[i].X, knots[i].Y
	}
	return writeColumns(fname, f, knotColumns, cols)
}

// WriteSpline writes the segments of sp to a table in the given format,
// preserving their order. Values are written with enough precision to be read
// back exactly.
func WriteSpline(fname string, f Format, sp spline.Spline) error {
	if f.Resolve(fname) == YAML {
		return writeYAML(fname, sp)
	}

	cols := make([][]float64, len(segmentColumns))
	for j := range cols {
		cols[j] = make([]float64, len(sp))
	}
	for i, seg := range sp {
		cols[0][i], cols[1][i], cols[2][i] = seg.A, seg.B, seg.C
		cols[3][i], cols[4][i], cols[5][i] = seg.D, seg.Knot0, seg.Knot1
	}
	return writeColumns(fname, f, segmentColumns, cols)
}

// readColumns returns the named columns of a table. Text tables are read
// positionally, CSV and YAML tables by column name.
func readColumns(fname string, f Format, names []string) ([][]float64, error) {
	switch f.Resolve(fname) {
	case CSV:
		return readCSV(fname, names)
	case YAML:
		return readYAML(fname, names)
	default:
		idxs := make([]int, len(names))
		for i := range idxs {
			idxs[i] = i
		}
		cols, err := table.ReadTable(fname, idxs, nil)
		if err != nil {
			return nil, fmt.Errorf("Could not read table '%s': %w", fname, err)
		} else if len(cols) != len(names) {
			return nil, fmt.Errorf(
				"Table '%s' needs the %d columns %s: %w",
				fname, len(names), strings.Join(names, ", "), ErrBadHeader,
			)
		}
		return cols, nil
	}
}

func readCSV(fname string, names []string) ([][]float64, error) {
	file, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	rd := csv.NewReader(file)
	rd.TrimLeadingSpace = true
	rd.Comment = '#'
	records, err := rd.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("Could not parse CSV '%s': %w", fname, err)
	} else if len(records) == 0 {
		return nil, fmt.Errorf("CSV '%s' has no header: %w", fname, ErrBadHeader)
	}

	idxs, err := headerIndices(records[0], names)
	if err != nil {
		return nil, fmt.Errorf("CSV '%s': %w", fname, err)
	}

	cols := make([][]float64, len(names))
	for j := range cols {
		cols[j] = make([]float64, len(records)-1)
	}
	for i, record := range records[1:] {
		for j, idx := range idxs {
			val, err := cast.ToFloat64E(strings.TrimSpace(record[idx]))
			if err != nil {
				return nil, fmt.Errorf(
					"Line %d of '%s' has %s = '%s', which is not a number.",
					i+2, fname, names[j], record[idx],
				)
			}
			cols[j][i] = val
		}
	}

	return cols, nil
}

func headerIndices(header, names []string) ([]int, error) {
	idxs := make([]int, len(names))
	for j, name := range names {
		idxs[j] = -1
		for i, col := range header {
			if strings.EqualFold(strings.TrimSpace(col), name) {
				idxs[j] = i
				break
			}
		}
		if idxs[j] == -1 {
			return nil, fmt.Errorf("no '%s' column: %w", name, ErrBadHeader)
		}
	}
	return idxs, nil
}

func readYAML(fname string, names []string) ([][]float64, error) {
	bs, err := os.ReadFile(fname)
	if err != nil {
		return nil, err
	}

	rows := []map[string]float64{}
	if err := yaml.Unmarshal(bs, &rows); err != nil {
		return nil, fmt.Errorf("Could not parse YAML '%s': %w", fname, err)
	}

	cols := make([][]float64, len(names))
	for j := range cols {
		cols[j] = make([]float64, len(rows))
	}
	for i, row := range rows {
		for j, name := range names {
			val, ok := row[name]
			if !ok {
				return nil, fmt.Errorf(
					"Entry %d of '%s' has no '%s' key: %w",
					i, fname, name, ErrBadHeader,
				)
			}
			cols[j][i] = val
		}
	}

	return cols, nil
}

func writeYAML(fname string, v interface{}) error {
	bs, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(fname, bs, 0644)
}

func writeColumns(fname string, f Format, names []string, cols [][]float64) error {
	file, err := os.Create(fname)
	if err != nil {
		return err
	}
	defer file.Close()

	wr := bufio.NewWriter(file)
	sep := " "
	if f.Resolve(fname) == CSV {
		sep = ","
		fmt.Fprintln(wr, strings.Join(names, sep))
	} else {
		fmt.Fprintf(wr, "# %s\n", strings.Join(names, sep))
	}

	row := make([]string, len(cols))
	for i := range cols[0] {
		for j := range cols {
			row[j] = strconv.FormatFloat(cols[j][i], 'g', -1, 64)
		}
		fmt.Fprintln(wr, strings.Join(row, sep))
	}

	if err := wr.Flush(); err != nil {
		return err
	}
	return file.Close()
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
