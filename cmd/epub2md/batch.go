package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	epub2md "github.com/alnah/go-epub2md"
)

// ErrConversionsFailed reports that at least one book in a batch failed.
var ErrConversionsFailed = errors.New("conversion(s) failed")

// ConversionResult holds the outcome of a single conversion.
type ConversionResult struct {
	InputPath  string
	OutputPath string
	Result     *epub2md.Result
	Err        error
	Duration   time.Duration
}

// convertBatch processes files concurrently with up to workers goroutines.
// Results keep the order of files.
func convertBatch(ctx context.Context, conv BookConverter, files []FileToConvert, workers int) []ConversionResult {
	if len(files) == 0 {
		return nil
	}

	concurrency := workers
	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > len(files) {
		concurrency = len(files)
	}

	results := make([]ConversionResult, len(files))
	var wg sync.WaitGroup
	jobs := make(chan int, len(files))

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = ConversionResult{
						InputPath:  files[idx].InputPath,
						OutputPath: files[idx].OutputPath,
						Err:        ctx.Err(),
					}
					continue
				}
				results[idx] = convertFile(ctx, conv, files[idx])
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// convertFile converts one book and returns the result.
func convertFile(ctx context.Context, conv BookConverter, f FileToConvert) ConversionResult {
	start := time.Now()
	result := ConversionResult{
		InputPath:  f.InputPath,
		OutputPath: f.OutputPath,
	}

	res, err := conv.Convert(ctx, epub2md.Input{EPUBPath: f.InputPath, OutputPath: f.OutputPath})
	result.Duration = time.Since(start)
	if err != nil {
		result.Err = err
		return result
	}

	result.Result = res
	result.OutputPath = res.OutputPath
	return result
}

// ResultSummary holds the count of succeeded and failed conversions.
type ResultSummary struct {
	Succeeded int
	Failed    int
}

// countResults tallies succeeded and failed conversions.
func countResults(results []ConversionResult) ResultSummary {
	var summary ResultSummary
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}
	return summary
}

// printResults writes per-book results and, for batches, a summary.
// A lone failure is left to the caller, which reports the error itself.
// Returns the number of failures.
func printResults(results []ConversionResult, quiet, verbose bool, env *Environment) int {
	summary := countResults(results)
	batch := len(results) > 1

	for _, r := range results {
		if r.Err != nil {
			if batch {
				fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", r.InputPath, r.Err)
			}
			continue
		}

		if quiet {
			continue
		}

		if !verbose {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
			continue
		}

		fmt.Fprintf(env.Stdout, "%s -> %s (%v)\n", r.InputPath, r.OutputPath, r.Duration.Round(time.Millisecond))
		if r.Result != nil {
			printDetails(env, r.Result)
		}
	}

	if !quiet && batch {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
	}

	return summary.Failed
}

// printDetails writes the verbose per-book lines.
func printDetails(env *Environment, res *epub2md.Result) {
	if res.Metadata.Title != "" {
		fmt.Fprintf(env.Stdout, "  title:   %s\n", res.Metadata.Title)
	}
	if res.Metadata.Author != "" {
		fmt.Fprintf(env.Stdout, "  author:  %s\n", res.Metadata.Author)
	}
	fmt.Fprintf(env.Stdout, "  backend: %s\n", res.Backend)
	fmt.Fprintf(env.Stdout, "  cleanup: divs %d, spans %d, headers %d, links %d\n",
		res.Report[epub2md.ReportDivsRemoved],
		res.Report[epub2md.ReportSpansRemoved],
		res.Report[epub2md.ReportHeadersFixed],
		res.Report[epub2md.ReportLinksFixed],
	)
	fmt.Fprintf(env.Stdout, "  images:  %d found, %d rewritten, %d duplicates removed, %d optimized\n",
		res.Images.Found,
		res.Images.Rewritten,
		res.Images.DuplicatesRemoved,
		res.Images.Optimized,
	)
	if res.Audit.RawHTML > 0 {
		fmt.Fprintf(env.Stdout, "  warning: %d raw HTML fragment(s) left\n", res.Audit.RawHTML)
	}
}
