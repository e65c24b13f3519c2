/*
 * Copyright (c) 2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package types

import (
	v1 "github.com/AMD-AIG-AIMA/inference-scheduler/pkg/apis/v1"
)

type WorkflowProgress struct {
	WorkflowId    string            `json:"workflow_id"`
	Progress      float64           `json:"progress"`
	Status        v1.WorkflowStatus `json:"status"`
	JobsCompleted int               `json:"jobs_completed"`
	JobsTotal     int               `json:"jobs_total"`
	// job ids currently RUNNING
	ActiveJobs []string `json:"active_jobs"`
}
