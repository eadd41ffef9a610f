package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	admitdoc "github.com/alnah/go-admitdoc"
	"github.com/alnah/go-admitdoc/internal/fileutil"
	"github.com/alnah/go-admitdoc/internal/hints"
	flag "github.com/spf13/pflag"
)

// batchResult is the outcome of one roster row.
type batchResult struct {
	Row        rosterRow
	OutputPath string
	Pages      int
	Duration   time.Duration
	Err        error
}

// runBatch renders one notice per roster row.
func runBatch(ctx context.Context, args []string, env *Environment) error {
	f, positional, err := parseBatchFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printBatchUsage(env.Stdout)
			return nil
		}
		return err
	}
	if len(positional) != 1 {
		return fmt.Errorf("%w: batch: expected one roster file, got %d arguments", ErrUsage, len(positional))
	}

	rows, err := readRoster(positional[0], f.sheet)
	if err != nil {
		return err
	}

	g, err := setupGeneration(ctx, f.common, f.image, env)
	if err != nil {
		return err
	}
	defer func() { _ = g.sources.Close() }()

	outDir := f.output
	if outDir == "" {
		outDir = g.settings.cfg.Output.DefaultDir
	}
	if outDir != "" {
		if err := fileutil.EnsureDir(outDir); err != nil {
			return fmt.Errorf("%w: %v%s", ErrWritePDF, err, hints.ForOutputDirectory())
		}
	}

	workers := f.workers
	if workers == 0 {
		workers = g.settings.workers
	}
	workers = admitdoc.ResolveWorkers(workers)
	g.logger.Debug("batch starting", "rows", len(rows), "workers", workers)

	results, err := g.generateRoster(ctx, rows, outDir, workers)
	if err != nil {
		return err
	}

	failed := printResults(results, f.common.quiet, f.common.verbose, env)
	if failed > 0 {
		return fmt.Errorf("%d of %d notice(s) failed", failed, len(results))
	}
	return nil
}

// generateRoster validates every row, renders the valid ones concurrently,
// and writes the documents into outDir. Rows keep roster order.
func (g *generation) generateRoster(ctx context.Context, rows []rosterRow, outDir string, workers int) ([]batchResult, error) {
	tc, err := g.sources.resolver.Load(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]batchResult, len(rows))
	var inputs []admitdoc.Input
	var owners []int // owners[i] is the row index of inputs[i]
	for i, row := range rows {
		results[i].Row = row
		p, err := row.patient()
		if err != nil {
			results[i].Err = err
			continue
		}
		in, err := inputFor(tc, p.admission, p.name, p.birthDate)
		if err != nil {
			results[i].Err = err
			continue
		}
		inputs = append(inputs, in)
		owners = append(owners, i)
	}

	used := make(map[string]bool)
	for _, br := range g.gen.GenerateBatch(ctx, inputs, workers) {
		r := &results[owners[br.Index]]
		r.Duration = br.Duration
		if br.Err != nil {
			r.Err = br.Err
			continue
		}
		path := uniquePath(filepath.Join(outDir, br.Result.Filename), used)
		if err := writePDF(path, br.Result.PDF); err != nil {
			r.Err = err
			continue
		}
		if br.Result.ImageDropped {
			g.logger.Warn("notice generated without header image", "path", path)
		}
		r.OutputPath = path
		r.Pages = br.Result.Pages
	}
	return results, nil
}

// uniquePath suffixes path with _2, _3, ... until it is not in used.
// Homonymous patients of one admission type share a filename on a given day.
func uniquePath(path string, used map[string]bool) string {
	candidate := path
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	for n := 2; used[candidate]; n++ {
		candidate = base + "_" + strconv.Itoa(n) + ext
	}
	used[candidate] = true
	return candidate
}

// printResults prints batch results and returns the failure count.
func printResults(results []batchResult, quiet, verbose bool, env *Environment) int {
	var succeeded, failed int

	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(env.Stderr, "FAILED row %d (%s): %v\n", r.Row.line, r.Row.name, r.Err)
			continue
		}

		succeeded++
		if quiet {
			continue
		}

		if verbose {
			fmt.Fprintf(env.Stdout, "row %d -> %s (%d pages, %v)\n", r.Row.line, r.OutputPath, r.Pages, r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", succeeded, failed)
	}

	return failed
}
