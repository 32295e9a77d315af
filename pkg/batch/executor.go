// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

// Package batch runs a set of files through a per-file operation with
// bounded concurrency, per-file timeouts, and isolated failures (§4.1).
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	nierrors "github.com/niemforge/niemgraph/internal/errors"
	"github.com/niemforge/niemgraph/pkg/metrics"
)

// OpKind names the kind of operation a batch performs, used for the
// per-request file cap (§6.6 batch.maxFiles.*) and for metrics labels.
type OpKind string

const (
	OpSchema  OpKind = "schema"
	OpIngest  OpKind = "ingest"
	OpConvert OpKind = "convert"
)

// FileResult is one file's outcome within a BatchResult (§3).
type FileResult struct {
	Filename string
	Err      error
	Value    any // the per-file fn's return value, when Err is nil
}

// BatchResult is the aggregate outcome of one RunBatch call (§3).
type BatchResult struct {
	Results  []FileResult
	Duration time.Duration
}

// Succeeded reports how many files in the batch completed without error.
func (r BatchResult) Succeeded() int {
	n := 0
	for _, fr := range r.Results {
		if fr.Err == nil {
			n++
		}
	}
	return n
}

// Failed reports how many files in the batch returned an error.
func (r BatchResult) Failed() int {
	return len(r.Results) - r.Succeeded()
}

// Limits mirrors the batch.maxFiles config (§6.6).
type Limits struct {
	MaxConcurrent         int
	PerFileTimeout        time.Duration
	MaxFilesSchema        int
	MaxFilesIngest        int
	MaxFilesConvert       int
}

// Executor runs per-file work with bounded concurrency (§4.1). It holds no
// per-call state; a single Executor is safe to reuse and share across
// concurrent RunBatch calls.
type Executor struct {
	limits Limits
	logger *slog.Logger
}

// NewExecutor constructs an Executor. A nil logger defaults to
// slog.Default(), matching the teacher's constructor convention.
func NewExecutor(limits Limits, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{limits: limits, logger: logger}
}

func (e *Executor) maxFilesFor(op OpKind) int {
	switch op {
	case OpSchema:
		return e.limits.MaxFilesSchema
	case OpConvert:
		return e.limits.MaxFilesConvert
	default:
		return e.limits.MaxFilesIngest
	}
}

// Progress is invoked once per completed file (advisory only, not part of
// BatchResult): index is 0-based, total is len(filenames), outcome is
// "success" or "failure". A nil Progress is a no-op.
type Progress func(index, total int, filename string, outcome string)

// RunBatch executes fn once per file, honoring the per-request file cap,
// per-file timeout, and a semaphore bounding MaxConcurrent concurrent
// invocations (§4.1). A single file's error or panic recovery never
// aborts the batch: every file gets exactly one FileResult.
func (e *Executor) RunBatch(ctx context.Context, op OpKind, filenames []string, fn func(ctx context.Context, filename string) (any, error)) (BatchResult, error) {
	return e.RunBatchWithProgress(ctx, op, filenames, fn, nil)
}

// RunBatchWithProgress is RunBatch plus an optional per-file progress
// callback, wired by CLI callers into a progress bar.
func (e *Executor) RunBatchWithProgress(ctx context.Context, op OpKind, filenames []string, fn func(ctx context.Context, filename string) (any, error), onProgress Progress) (BatchResult, error) {
	start := time.Now()

	if max := e.maxFilesFor(op); len(filenames) > max {
		return BatchResult{}, nierrors.NewBatchTooLargeError(
			"Too many files in one batch request",
			fmt.Sprintf("%d files submitted, limit is %d for %s", len(filenames), max, op),
			fmt.Sprintf("Split the request into batches of %d or fewer files", max),
		)
	}

	results := make([]FileResult, len(filenames))
	sem := make(chan struct{}, e.limits.MaxConcurrent)
	metrics.SetBatchConcurrencyCap(e.limits.MaxConcurrent)

	var wg sync.WaitGroup
	for i, filename := range filenames {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, filename string) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = e.runOne(ctx, op, filename, fn)
			if onProgress != nil {
				outcome := "success"
				if results[i].Err != nil {
					outcome = "failure"
				}
				onProgress(i, len(filenames), filename, outcome)
			}
		}(i, filename)
	}
	wg.Wait()

	dur := time.Since(start)
	metrics.ObserveBatchDuration(string(op), dur.Seconds())
	e.logger.Info("batch.run.done", "op", string(op), "files", len(filenames),
		"duration_ms", dur.Milliseconds())

	return BatchResult{Results: results, Duration: dur}, nil
}

// runOne races fn against the per-file timeout (§4.1) and isolates its
// error so one bad file never takes down the batch.
func (e *Executor) runOne(ctx context.Context, op OpKind, filename string, fn func(context.Context, string) (any, error)) FileResult {
	fileStart := time.Now()

	fileCtx, cancel := context.WithTimeout(ctx, e.limits.PerFileTimeout)
	defer cancel()

	type outcome struct {
		value any
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("panic processing %s: %v", filename, r)}
			}
		}()
		v, err := fn(fileCtx, filename)
		done <- outcome{value: v, err: err}
	}()

	var result FileResult
	select {
	case o := <-done:
		result = FileResult{Filename: filename, Value: o.value, Err: o.err}
	case <-fileCtx.Done():
		metrics.RecordBatchTimeout(string(op))
		result = FileResult{Filename: filename, Err: fmt.Errorf("processing %s: %w", filename, fileCtx.Err())}
	}

	outcomeLabel := "success"
	if result.Err != nil {
		outcomeLabel = "failure"
		e.logger.Warn("batch.file.error", "op", string(op), "filename", filename, "err", result.Err)
	}
	metrics.RecordBatchFile(string(op), outcomeLabel)
	metrics.ObserveFileDuration(string(op), time.Since(fileStart).Seconds())

	return result
}
