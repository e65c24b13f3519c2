/*
 * Copyright (C) 2025-2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package workerpool

import (
	"context"
	"fmt"

	"k8s.io/klog/v2"

	v1 "github.com/AMD-AIG-AIMA/inference-scheduler/pkg/apis/v1"
	"github.com/AMD-AIG-AIMA/inference-scheduler/pkg/controller"
	"github.com/AMD-AIG-AIMA/inference-scheduler/pkg/executor"
)

// Task is one job execution handed to the pool. The job snapshot is owned
// by the task; the scheduler never mutates it after submission.
type Task struct {
	Job  *v1.Job
	Sink executor.ProgressSink
	// Done delivers exactly one outcome per task. It is invoked from the
	// worker goroutine and must not block for long.
	Done func(outcome *v1.JobOutcome)
	// IsCancelled lets the pool skip a job that was cancelled after dispatch
	// but before a worker picked it up. Optional.
	IsCancelled func() bool
}

// Pool executes tasks with bounded concurrency. It knows nothing about
// branches or tenants; the scheduler loop gates what gets submitted.
type Pool struct {
	*controller.Controller[*Task]
	table *executor.Table
}

func NewPool(table *executor.Table, maxWorkers int) *Pool {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	pool := &Pool{table: table}
	pool.Controller = controller.NewController[*Task](pool, maxWorkers)
	return pool
}

// Start launches the worker goroutines.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.MaxConcurrent; i++ {
		p.Run(ctx)
	}
}

// Stop shuts the task queue down. In-flight executions finish on their own.
func (p *Pool) Stop() {
	p.ShutDown()
}

// Submit queues one task for execution.
func (p *Pool) Submit(task *Task) {
	p.Add(task)
}

// Do runs one task to completion. Execution failures become FAILED outcomes
// rather than handler errors: re-running a job on requeue would execute its
// side effects twice.
func (p *Pool) Do(ctx context.Context, task *Task) (controller.Result, error) {
	job := task.Job
	if task.IsCancelled != nil && task.IsCancelled() {
		task.Done(&v1.JobOutcome{Status: v1.JobCancelled})
		return controller.Result{}, nil
	}
	exec, found := p.table.Lookup(job.JobType)
	if !found {
		task.Done(&v1.JobOutcome{
			Status:       v1.JobFailed,
			ErrorMessage: fmt.Sprintf("no executor registered for job type %s", job.JobType),
		})
		return controller.Result{}, nil
	}
	resultPath, err := exec.Execute(ctx, job, task.Sink)
	if err != nil {
		klog.ErrorS(err, "job execution failed", "workflow", job.WorkflowId, "job", job.JobId)
		task.Done(&v1.JobOutcome{Status: v1.JobFailed, ErrorMessage: err.Error()})
		return controller.Result{}, nil
	}
	task.Done(&v1.JobOutcome{Status: v1.JobSucceeded, ResultPath: resultPath})
	return controller.Result{}, nil
}
