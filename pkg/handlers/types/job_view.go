/*
 * Copyright (c) 2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package types

import (
	"time"

	v1 "github.com/AMD-AIG-AIMA/inference-scheduler/pkg/apis/v1"
)

type JobResponse struct {
	JobId          string       `json:"job_id"`
	WorkflowId     string       `json:"workflow_id"`
	JobType        v1.JobType   `json:"job_type"`
	Status         v1.JobStatus `json:"status"`
	Branch         string       `json:"branch"`
	Progress       float64      `json:"progress"`
	TilesProcessed *int         `json:"tiles_processed,omitempty"`
	TilesTotal     *int         `json:"tiles_total,omitempty"`
	StartedAt      *time.Time   `json:"started_at,omitempty"`
	CompletedAt    *time.Time   `json:"completed_at,omitempty"`
	ResultPath     string       `json:"result_path,omitempty"`
	ErrorMessage   string       `json:"error_message,omitempty"`
}

type JobResultsResponse struct {
	JobId      string                 `json:"job_id"`
	ResultPath string                 `json:"result_path"`
	Results    map[string]interface{} `json:"results"`
}

type CancelJobResponse struct {
	JobId  string       `json:"job_id"`
	Status v1.JobStatus `json:"status"`
}
