/*
 * Copyright (c) 2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package v1

import (
	"time"
)

type JobStatus string
type JobType string

const (
	JobPending   JobStatus = "PENDING"
	JobRunning   JobStatus = "RUNNING"
	JobSucceeded JobStatus = "SUCCEEDED"
	JobFailed    JobStatus = "FAILED"
	JobCancelled JobStatus = "CANCELLED"

	JobTypeCellSegmentation JobType = "cell_segmentation"
	JobTypeTissueMask       JobType = "tissue_mask"
)

func (s JobStatus) IsTerminal() bool {
	return s == JobSucceeded || s == JobFailed || s == JobCancelled
}

func IsValidJobType(t JobType) bool {
	return t == JobTypeCellSegmentation || t == JobTypeTissueMask
}

type Job struct {
	// Unique within the enclosing workflow; the global identity is (workflow_id, job_id)
	JobId string `json:"job_id"`
	// Denormalized for O(1) routing
	WorkflowId string `json:"workflow_id"`
	TenantId   string `json:"tenant_id"`
	// Selects the executor, such as cell_segmentation, tissue_mask
	JobType JobType `json:"job_type"`
	// Scheduling key; at most one job per (tenant, branch) runs at a time
	Branch string `json:"branch"`
	// Predecessor job ids within the same workflow
	DependsOn []string `json:"depends_on,omitempty"`
	// Opaque path handed to the executor
	ImagePath string `json:"image_path"`
	// The status of job, such as PENDING, RUNNING, SUCCEEDED, FAILED, CANCELLED
	Status JobStatus `json:"status"`
	// Completion fraction in [0, 1], monotonically non-decreasing
	Progress float64 `json:"progress"`
	// Optional tile accounting reported by the executor
	TilesProcessed *int `json:"tiles_processed,omitempty"`
	TilesTotal     *int `json:"tiles_total,omitempty"`
	// Set only when the status is FAILED
	ErrorMessage string `json:"error_message,omitempty"`
	// Opaque descriptor of the executor output, set only when SUCCEEDED
	ResultPath string `json:"result_path,omitempty"`
	// Job start time
	StartedAt *time.Time `json:"started_at,omitempty"`
	// Job end time
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

func (j *Job) Ref() JobRef {
	return JobRef{WorkflowId: j.WorkflowId, JobId: j.JobId}
}

func (j *Job) IsEnd() bool {
	return j.Status.IsTerminal()
}

// JobRef is the global identity of a job. Single-string lookups exist only
// as a tolerant transport convenience and must resolve unambiguously.
type JobRef struct {
	WorkflowId string
	JobId      string
}

func (r JobRef) String() string {
	return r.WorkflowId + "/" + r.JobId
}

// JobPatch carries the only fields the registry may mutate on a job. Nil
// fields are left untouched.
type JobPatch struct {
	Status         *JobStatus
	Progress       *float64
	TilesProcessed *int
	TilesTotal     *int
	ErrorMessage   *string
	ResultPath     *string
	StartedAt      *time.Time
	FinishedAt     *time.Time
}

// JobOutcome is the worker pool's report for one execution.
type JobOutcome struct {
	// SUCCEEDED, FAILED or CANCELLED
	Status JobStatus
	// Set on SUCCEEDED
	ResultPath string
	// Set on FAILED
	ErrorMessage string
}
