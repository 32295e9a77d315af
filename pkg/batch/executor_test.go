// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package batch

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testLimits() Limits {
	return Limits{
		MaxConcurrent:   2,
		PerFileTimeout:  200 * time.Millisecond,
		MaxFilesSchema:  50,
		MaxFilesIngest:  20,
		MaxFilesConvert: 20,
	}
}

func TestRunBatch_AllSucceed(t *testing.T) {
	e := NewExecutor(testLimits(), nil)
	files := []string{"a.xml", "b.xml", "c.xml"}

	result, err := e.RunBatch(context.Background(), OpIngest, files, func(ctx context.Context, filename string) (any, error) {
		return filename + ":ok", nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, result.Succeeded())
	require.Equal(t, 0, result.Failed())
}

func TestRunBatch_IsolatesPerFileErrors(t *testing.T) {
	e := NewExecutor(testLimits(), nil)
	files := []string{"good.xml", "bad.xml"}

	result, err := e.RunBatch(context.Background(), OpIngest, files, func(ctx context.Context, filename string) (any, error) {
		if filename == "bad.xml" {
			return nil, errors.New("boom")
		}
		return "ok", nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, result.Succeeded())
	require.Equal(t, 1, result.Failed())
}

func TestRunBatch_TooManyFilesRejected(t *testing.T) {
	e := NewExecutor(testLimits(), nil)
	files := make([]string, 25)
	for i := range files {
		files[i] = fmt.Sprintf("f%d.xml", i)
	}

	_, err := e.RunBatch(context.Background(), OpIngest, files, func(ctx context.Context, filename string) (any, error) {
		return nil, nil
	})
	require.Error(t, err)
}

func TestRunBatch_PerFileTimeout(t *testing.T) {
	limits := testLimits()
	limits.PerFileTimeout = 20 * time.Millisecond
	e := NewExecutor(limits, nil)

	result, err := e.RunBatch(context.Background(), OpIngest, []string{"slow.xml"}, func(ctx context.Context, filename string) (any, error) {
		select {
		case <-time.After(500 * time.Millisecond):
			return "too slow", nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	})
	require.NoError(t, err)
	require.Equal(t, 1, result.Failed())
}

func TestRunBatch_RespectsConcurrencyCap(t *testing.T) {
	limits := testLimits()
	limits.MaxConcurrent = 2
	e := NewExecutor(limits, nil)

	var inFlight, maxSeen int32
	files := []string{"1", "2", "3", "4", "5", "6"}

	_, err := e.RunBatch(context.Background(), OpIngest, files, func(ctx context.Context, filename string) (any, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			seen := atomic.LoadInt32(&maxSeen)
			if n <= seen || atomic.CompareAndSwapInt32(&maxSeen, seen, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return nil, nil
	})
	require.NoError(t, err)
	require.LessOrEqual(t, int(atomic.LoadInt32(&maxSeen)), 2)
}

func TestRunBatch_RecoversFromPanic(t *testing.T) {
	e := NewExecutor(testLimits(), nil)

	result, err := e.RunBatch(context.Background(), OpIngest, []string{"panics.xml"}, func(ctx context.Context, filename string) (any, error) {
		panic("unexpected")
	})
	require.NoError(t, err)
	require.Equal(t, 1, result.Failed())
}
