/*
 * Copyright (c) 2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package v1

import (
	"time"
)

type WorkflowStatus string

const (
	WorkflowPending   WorkflowStatus = "PENDING"
	WorkflowRunning   WorkflowStatus = "RUNNING"
	WorkflowSucceeded WorkflowStatus = "SUCCEEDED"
	WorkflowFailed    WorkflowStatus = "FAILED"
)

type Workflow struct {
	// Unique workflow identifier, generated at submission when absent
	WorkflowId string `json:"workflow_id"`
	// The tenant that owns the workflow
	TenantId string `json:"tenant_id"`
	// Free-form label supplied by the submitter
	Name string `json:"name"`
	// The jobs of the workflow. Order is preserved for display only; scheduling ignores it.
	Jobs []*Job `json:"jobs"`
	// The status of workflow, such as PENDING, RUNNING, SUCCEEDED, FAILED
	Status WorkflowStatus `json:"status"`
	// Workflow creation time
	CreatedAt time.Time `json:"created_at"`
	// Set when the first job transitions to RUNNING
	StartedAt *time.Time `json:"started_at,omitempty"`
	// Set when the workflow reaches a terminal status
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

func (w *Workflow) IsEnd() bool {
	return w.Status == WorkflowSucceeded || w.Status == WorkflowFailed
}

func (w *Workflow) FindJob(jobId string) *Job {
	for _, job := range w.Jobs {
		if job.JobId == jobId {
			return job
		}
	}
	return nil
}

// Progress is the arithmetic mean of the jobs' progress values.
// TODO: decide whether tile counts should weight the mean before exposing
// per-tile accounting to clients.
func (w *Workflow) Progress() float64 {
	if len(w.Jobs) == 0 {
		return 0
	}
	sum := 0.0
	for _, job := range w.Jobs {
		sum += job.Progress
	}
	return sum / float64(len(w.Jobs))
}

// JobsCompleted counts the jobs that have reached a terminal status.
func (w *Workflow) JobsCompleted() int {
	count := 0
	for _, job := range w.Jobs {
		if job.Status.IsTerminal() {
			count++
		}
	}
	return count
}

// DeriveStatus recomputes the workflow status from its jobs. A workflow is
// RUNNING as soon as any job runs, SUCCEEDED when every job succeeded, and
// FAILED once all jobs are terminal with any failure or cancellation among
// them.
func (w *Workflow) DeriveStatus() WorkflowStatus {
	if len(w.Jobs) == 0 {
		return w.Status
	}
	allTerminal := true
	allSucceeded := true
	anyActive := false
	for _, job := range w.Jobs {
		if !job.Status.IsTerminal() {
			allTerminal = false
		}
		if job.Status != JobSucceeded {
			allSucceeded = false
		}
		if job.Status == JobRunning {
			anyActive = true
		}
	}
	switch {
	case allTerminal && allSucceeded:
		return WorkflowSucceeded
	case allTerminal:
		return WorkflowFailed
	case anyActive || w.Status == WorkflowRunning:
		return WorkflowRunning
	default:
		return WorkflowPending
	}
}

// HasActiveJobs reports whether any job is still PENDING or RUNNING.
func (w *Workflow) HasActiveJobs() bool {
	for _, job := range w.Jobs {
		if job.Status == JobPending || job.Status == JobRunning {
			return true
		}
	}
	return false
}
