// Package fileproc parses source files concurrently.
package fileproc

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/panbanda/remapper/pkg/parser"
	"github.com/panbanda/remapper/pkg/source"
)

// ProcessingError represents an error that occurred while processing a file.
type ProcessingError struct {
	Path string
	Err  error
}

func (e ProcessingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e ProcessingError) Unwrap() error { return e.Err }

// ProcessingErrors collects multiple file processing errors.
type ProcessingErrors struct {
	Errors []ProcessingError
	mu     sync.Mutex
}

// Add appends an error to the collection (thread-safe).
func (e *ProcessingErrors) Add(path string, err error) {
	e.mu.Lock()
	e.Errors = append(e.Errors, ProcessingError{Path: path, Err: err})
	e.mu.Unlock()
}

// HasErrors returns true if any errors were collected.
func (e *ProcessingErrors) HasErrors() bool {
	if e == nil {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.Errors) > 0
}

// Sorted returns the collected errors ordered by path.
func (e *ProcessingErrors) Sorted() []ProcessingError {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	out := append([]ProcessingError(nil), e.Errors...)
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Error implements the error interface.
func (e *ProcessingErrors) Error() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d files failed to process (first: %v)", len(e.Errors), e.Errors[0])
}

// DefaultWorkerMultiplier is the multiplier applied to NumCPU for worker count.
// 2x is optimal for mixed I/O and CGO workloads.
const DefaultWorkerMultiplier = 2

// ErrTooLarge is recorded for files above the size limit.
var ErrTooLarge = errors.New("file exceeds size limit")

// ProgressFunc is called after each file is processed.
type ProgressFunc func()

// Options tunes ParseSources.
type Options struct {
	// Workers bounds concurrency; <= 0 means 2x NumCPU.
	Workers int
	// MaxSize skips files larger than this many bytes; 0 disables the limit.
	MaxSize int64
	// OnProgress is called once per input path.
	OnProgress ProgressFunc
}

type content struct {
	path string
	data []byte
}

// ParseSources reads every path from src and parses the readable ones in
// parallel. Each worker owns one parser. Files are returned sorted by path;
// unreadable, oversized and unparsable files are reported in the collected
// errors and left out of the result.
func ParseSources(ctx context.Context, paths []string, src source.ContentSource, opts Options) ([]*parser.File, *ProcessingErrors) {
	if len(paths) == 0 {
		return nil, nil
	}
	errs := &ProcessingErrors{}
	progress := func() {
		if opts.OnProgress != nil {
			opts.OnProgress()
		}
	}

	// Read sequentially: git trees are not safe for concurrent access.
	contents := make([]content, 0, len(paths))
	for _, path := range paths {
		data, err := src.Read(path)
		switch {
		case err != nil:
			errs.Add(path, err)
			progress()
			continue
		case opts.MaxSize > 0 && int64(len(data)) > opts.MaxSize:
			errs.Add(path, fmt.Errorf("%w: %d bytes", ErrTooLarge, len(data)))
			progress()
			continue
		}
		contents = append(contents, content{path: path, data: data})
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU() * DefaultWorkerMultiplier
	}
	if workers > len(contents) {
		workers = len(contents)
	}
	parsers := make(chan *parser.Parser, workers)
	for range workers {
		parsers <- parser.New()
	}

	results := make([]*parser.File, 0, len(contents))
	var mu sync.Mutex

	p := pool.New().WithMaxGoroutines(max(workers, 1)).WithContext(ctx)
	for _, fc := range contents {
		p.Go(func(ctx context.Context) error {
			defer progress()
			select {
			case <-ctx.Done():
				errs.Add(fc.path, ctx.Err())
				return ctx.Err()
			default:
			}

			psr := <-parsers
			defer func() { parsers <- psr }()

			f, err := psr.ParseFile(ctx, fc.path, fc.data)
			if err != nil {
				errs.Add(fc.path, err)
				return nil // Don't stop pool on individual file errors
			}
			mu.Lock()
			results = append(results, f)
			mu.Unlock()
			return nil
		})
	}
	_ = p.Wait() // Context errors are already captured in errs

	close(parsers)
	for psr := range parsers {
		psr.Close()
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })
	if !errs.HasErrors() {
		return results, nil
	}
	return results, errs
}
