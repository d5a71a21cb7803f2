// Package driver orchestrates batch lowering: it reads serialized MIR
// modules from disk, runs the LLVM backend over them and writes the
// resulting textual IR next to the inputs (or into a chosen directory).
package driver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"rill/internal/backend/llvm"
	"rill/internal/mir"
)

// Options configures a batch emission run.
type Options struct {
	// OutDir receives the .ll files. Empty means next to each input.
	OutDir string
	// TargetTriple and DataLayout pass through to the emitted modules.
	TargetTriple string
	DataLayout   string
	// Jobs bounds the number of files lowered concurrently. Zero or
	// negative means one worker per CPU.
	Jobs int
	// Cache, when non-nil, short-circuits emission for inputs whose
	// content and target were seen before.
	Cache *Cache
}

// Result describes one finished input.
type Result struct {
	Input  string
	Output string
	Cached bool
}

// EmitFile lowers a single .mir file and writes the .ll output.
func EmitFile(path string, opts Options) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("driver: read %s: %w", path, err)
	}
	outPath, err := outputPath(path, opts.OutDir)
	if err != nil {
		return Result{}, err
	}

	key := CacheKey(data, opts.TargetTriple, opts.DataLayout)
	if opts.Cache != nil {
		if text, ok := opts.Cache.Get(key); ok {
			if err := writeOutput(outPath, text); err != nil {
				return Result{}, err
			}
			return Result{Input: path, Output: outPath, Cached: true}, nil
		}
	}

	mod, reg, err := mir.Decode(data)
	if err != nil {
		return Result{}, fmt.Errorf("driver: %s: %w", path, err)
	}
	moduleID := mod.Name
	if moduleID == "" {
		moduleID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	text, err := llvm.EmitModule(mod, reg, llvm.Options{
		ModuleID:     moduleID,
		TargetTriple: opts.TargetTriple,
		DataLayout:   opts.DataLayout,
	})
	if err != nil {
		return Result{}, fmt.Errorf("driver: %s: %w", path, err)
	}
	if err := writeOutput(outPath, text); err != nil {
		return Result{}, err
	}
	if opts.Cache != nil {
		if err := opts.Cache.Put(key, text); err != nil {
			return Result{}, err
		}
	}
	return Result{Input: path, Output: outPath}, nil
}

// EmitAll lowers every input, fanning work across a bounded worker group.
// The first failure cancels the remaining inputs; partial results for the
// files that did finish are still returned.
func EmitAll(ctx context.Context, paths []string, opts Options) ([]Result, error) {
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	results := make([]Result, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := EmitFile(path, opts)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func outputPath(input, outDir string) (string, error) {
	base := filepath.Base(input)
	base = strings.TrimSuffix(base, filepath.Ext(base)) + ".ll"
	if outDir == "" {
		return filepath.Join(filepath.Dir(input), base), nil
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("driver: create output directory: %w", err)
	}
	return filepath.Join(outDir, base), nil
}

func writeOutput(path, text string) error {
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("driver: write %s: %w", path, err)
	}
	return nil
}
