/*
 * Copyright (c) 2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package types

import (
	"time"

	v1 "github.com/AMD-AIG-AIMA/inference-scheduler/pkg/apis/v1"
)

type CreateJobRequest struct {
	// job id, generated when empty; unique within the workflow
	JobId string `json:"job_id,omitempty"`
	// cell_segmentation or tissue_mask
	JobType v1.JobType `json:"job_type"`
	// opaque path handed to the executor; never opened by the scheduler
	ImagePath string `json:"image_path"`
	// scheduling key; one job per (tenant, branch) runs at a time
	Branch string `json:"branch"`
	// predecessor job ids within the same workflow
	DependsOn []string `json:"depends_on,omitempty"`
}

type CreateWorkflowRequest struct {
	// display name
	Name string `json:"name"`
	// workflow id, generated when empty; collisions are rejected
	WorkflowId string             `json:"workflow_id,omitempty"`
	Jobs       []CreateJobRequest `json:"jobs"`
}

type JobView struct {
	JobId          string       `json:"job_id"`
	JobType        v1.JobType   `json:"job_type"`
	Status         v1.JobStatus `json:"status"`
	Progress       float64      `json:"progress"`
	Branch         string       `json:"branch"`
	TilesProcessed *int         `json:"tiles_processed,omitempty"`
	TilesTotal     *int         `json:"tiles_total,omitempty"`
	ErrorMessage   string       `json:"error_message,omitempty"`
	// seconds since the job started; stops at completion
	ElapsedTimeSeconds *float64 `json:"elapsed_time_seconds,omitempty"`
	// elapsed/progress * (1-progress); absent until progress > 0
	EstimatedRemainingSeconds *float64 `json:"estimated_remaining_seconds,omitempty"`
}

type WorkflowResponse struct {
	WorkflowId string            `json:"workflow_id"`
	Name       string            `json:"name"`
	Status     v1.WorkflowStatus `json:"status"`
	Progress   float64           `json:"progress"`
	JobCount   int               `json:"job_count"`
	// jobs in a terminal status
	JobsCompleted int        `json:"jobs_completed"`
	CreatedAt     time.Time  `json:"created_at"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	Jobs          []JobView  `json:"jobs"`
}
