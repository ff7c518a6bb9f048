package io

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/phil-mansfield/gospline/spline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	fname := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(fname, []byte(body), 0644))
	return fname
}

func fitScenario(t *testing.T) spline.Spline {
	sp, err := spline.Fit([]spline.Knot{{0, 10}, {0.5, 8}, {0.8, 5}, {1.0, 6}})
	require.NoError(t, err)
	return sp
}

func TestResolve(t *testing.T) {
	assert.Equal(t, CSV, Auto.Resolve("knots.CSV"))
	assert.Equal(t, YAML, Auto.Resolve("dir/spline.yaml"))
	assert.Equal(t, YAML, Auto.Resolve("spline.yml"))
	assert.Equal(t, Text, Auto.Resolve("spline.txt"))
	assert.Equal(t, Text, Auto.Resolve("spline"))
	assert.Equal(t, CSV, CSV.Resolve("spline.yaml"))
}

func TestParseFormat(t *testing.T) {
	for _, f := range []Format{Auto, Text, CSV, YAML} {
		parsed, err := ParseFormat(f.String())
		require.NoError(t, err)
		assert.Equal(t, f, parsed)
	}

	f, err := ParseFormat("YAML")
	require.NoError(t, err)
	assert.Equal(t, YAML, f)

	_, err = ParseFormat("hdf5")
	assert.Error(t, err)
}

func TestSplineRoundTrip(t *testing.T) {
	sp := fitScenario(t)
	queries := []float64{0, 0.1, 0.5, 0.6, 0.8, 0.95, 1}
	want, err := sp.EvalAll(queries)
	require.NoError(t, err)

	dir := t.TempDir()
	for _, name := range []string{"spline.txt", "spline.csv", "spline.yaml"} {
		fname := filepath.Join(dir, name)
		require.NoError(t, WriteSpline(fname, Auto, sp), name)

		read, err := ReadSpline(fname, Auto)
		require.NoError(t, err, name)
		assert.Equal(t, sp, read, name)
		assert.NoError(t, read.Validate(spline.DefaultTolerance), name)

		got, err := read.EvalAll(queries)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
}

func TestKnotRoundTrip(t *testing.T) {
	knots := []spline.Knot{{-1, 2}, {0.25, 1e-20}, {3, -7.5}}

	dir := t.TempDir()
	for _, name := range []string{"knots.dat", "knots.csv", "knots.yml"} {
		fname := filepath.Join(dir, name)
		require.NoError(t, WriteKnots(fname, Auto, knots), name)

		read, err := ReadKnots(fname, Auto)
		require.NoError(t, err, name)
		assert.Equal(t, knots, read, name)
	}
}

func TestReadTextTable(t *testing.T) {
	fname := writeFile(t, "knots.txt", `# Knots are sorted after reading.
# x y
1.0  8
0    10
0.5  9
`)

	knots, err := ReadKnots(fname, Auto)
	require.NoError(t, err)
	assert.Equal(t, []spline.Knot{{0, 10}, {0.5, 9}, {1, 8}}, knots)
}

func TestReadCSV(t *testing.T) {
	fname := writeFile(t, "knots.csv", "y, x\n8, 1.0\n10, 0\n")

	knots, err := ReadKnots(fname, Auto)
	require.NoError(t, err)
	assert.Equal(t, []spline.Knot{{0, 10}, {1, 8}}, knots)

	fname = writeFile(t, "spline.csv",
		"knot0,knot1,a,b,c,d\n0,1,0,0,2,1\n1,2,0,0,2,1\n")
	sp, err := ReadSpline(fname, Auto)
	require.NoError(t, err)
	assert.Equal(t, spline.Spline{
		{C: 2, D: 1, Knot0: 0, Knot1: 1},
		{C: 2, D: 1, Knot0: 1, Knot1: 2},
	}, sp)
}

func TestReadYAML(t *testing.T) {
	fname := writeFile(t, "knots.yaml", "- {x: 2, y: 1}\n- {x: 1, y: 0.5}\n")

	knots, err := ReadKnots(fname, Auto)
	require.NoError(t, err)
	assert.Equal(t, []spline.Knot{{1, 0.5}, {2, 1}}, knots)
}

func TestReadKnotsRejects(t *testing.T) {
	fname := writeFile(t, "dup.csv", "x,y\n0,1\n1,2\n0,3\n")
	_, err := ReadKnots(fname, Auto)
	assert.True(t, errors.Is(err, ErrDuplicateKnot), "%v", err)

	fname = writeFile(t, "nan.csv", "x,y\n0,1\n1,NaN\n")
	_, err = ReadKnots(fname, Auto)
	assert.True(t, errors.Is(err, spline.ErrNonFinite), "%v", err)

	fname = writeFile(t, "inf.yaml", "- {x: .inf, y: 1}\n- {x: 0, y: 2}\n")
	_, err = ReadKnots(fname, Auto)
	assert.True(t, errors.Is(err, spline.ErrNonFinite), "%v", err)

	fname = writeFile(t, "header.csv", "x,z\n0,1\n")
	_, err = ReadKnots(fname, Auto)
	assert.True(t, errors.Is(err, ErrBadHeader), "%v", err)

	fname = writeFile(t, "key.yaml", "- {x: 0}\n")
	_, err = ReadKnots(fname, Auto)
	assert.True(t, errors.Is(err, ErrBadHeader), "%v", err)

	fname = writeFile(t, "word.csv", "x,y\n0,one\n")
	_, err = ReadKnots(fname, Auto)
	assert.Error(t, err)

	_, err = ReadKnots(filepath.Join(t.TempDir(), "missing.csv"), Auto)
	assert.Error(t, err)
}

func TestReadSplineRejects(t *testing.T) {
	fname := writeFile(t, "spline.csv", "a,b,c,d,knot0,knot1\n0,0,1,inf,0,1\n")
	_, err := ReadSpline(fname, Auto)
	assert.True(t, errors.Is(err, spline.ErrNonFinite), "%v", err)
}

func TestReadSplineUnvalidated(t *testing.T) {
	// Gaps are the caller's problem: ReadSpline returns the table as written.
	fname := writeFile(t, "gap.csv", "a,b,c,d,knot0,knot1\n0,0,0,1,0,1\n0,0,0,1,2,3\n")
	sp, err := ReadSpline(fname, Auto)
	require.NoError(t, err)
	require.Len(t, sp, 2)
	assert.True(t, errors.Is(sp.Validate(spline.DefaultTolerance), spline.ErrUnsorted))
}
