package main

import (
	"bufio"
	"fmt"
	goio "io"
	"log"
	"strings"

	"github.com/patrickmn/go-cache"
	"github.com/phil-mansfield/gospline/io"
	"github.com/phil-mansfield/gospline/spline"
)

// splineCache memoizes loaded spline tables so that a batch which queries the
// same table on many lines only reads it once. Tables never expire: a batch is
// a single short-lived process.
type splineCache struct {
	con   *io.SplineConfig
	c     *cache.Cache
	loads int
}

func newSplineCache(con *io.SplineConfig) *splineCache {
	return &splineCache{con: con, c: cache.New(cache.NoExpiration, 0)}
}

func (sc *splineCache) Get(fname string) (spline.Spline, error) {
	if sp, ok := sc.c.Get(fname); ok {
		return sp.(spline.Spline), nil
	}

	sp, err := loadSpline(sc.con, fname)
	if err != nil {
		return nil, err
	}
	sc.loads++
	sc.c.Set(fname, sp, cache.NoExpiration)
	return sp, nil
}

// batchMain evaluates every line of in, which takes the form
// '<spline-table> <value>...'. Blank lines and lines starting with '#' are
// skipped. The first bad line stops the batch.
func batchMain(con *io.SplineConfig, in goio.Reader, out goio.Writer) error {
	sc := newSplineCache(con)
	scanner := bufio.NewScanner(in)
	wr := bufio.NewWriter(out)

	for i := 1; scanner.Scan(); i++ {
		tokens := strings.Fields(scanner.Text())
		if len(tokens) == 0 || strings.HasPrefix(tokens[0], "#") {
			continue
		}

		fname := tokens[0]
		xs, err := parseValues(tokens[1:])
		if err != nil {
			wr.Flush()
			return fmt.Errorf("Line %d of stdin: %w", i, err)
		}
		sp, err := sc.Get(fname)
		if err != nil {
			wr.Flush()
			return fmt.Errorf("Line %d of stdin: %w", i, err)
		}
		ys, err := sp.EvalAll(xs)
		if err != nil {
			wr.Flush()
			return fmt.Errorf("Line %d of stdin: %w", i, err)
		}

		for j := range xs {
			fmt.Fprintf(wr, "%s %v %v\n", fname, xs[j], ys[j])
		}
	}

	if err := scanner.Err(); err != nil {
		wr.Flush()
		return fmt.Errorf("Error reading stdin: %w", err)
	}
	if con.Verbose {
		log.Printf("Batch read %d distinct spline tables.", sc.loads)
	}
	return wr.Flush()
}
