/*
 * Copyright (c) 2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package executor

import (
	"context"

	v1 "github.com/AMD-AIG-AIMA/inference-scheduler/pkg/apis/v1"
)

// ProgressSink receives per-tile progress from a running executor. It is
// safe to call from the executor's own goroutine; updates are forwarded to
// the scheduler as events. A tilesTotal of zero means tile counts are
// unknown and should not be reported.
type ProgressSink func(progress float64, tilesProcessed, tilesTotal int)

// Executor performs the work of a single job and returns the path of the
// result document it produced. A returned error marks the job FAILED with
// the error text as the job's error message.
type Executor interface {
	Execute(ctx context.Context, job *v1.Job, sink ProgressSink) (string, error)
}

// Table is the dispatch table mapping job types to their executors.
// Unknown job types are rejected at submission validation, so a lookup
// miss at execution time indicates a scheduler bug.
type Table struct {
	executors map[v1.JobType]Executor
}

func NewTable() *Table {
	return &Table{
		executors: make(map[v1.JobType]Executor),
	}
}

func (t *Table) Register(jobType v1.JobType, exec Executor) {
	t.executors[jobType] = exec
}

func (t *Table) Lookup(jobType v1.JobType) (Executor, bool) {
	exec, exists := t.executors[jobType]
	return exec, exists
}
