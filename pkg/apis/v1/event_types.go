/*
 * Copyright (c) 2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package v1

import (
	"time"
)

type EventKind string

const (
	EventJobProgress      EventKind = "job_progress"
	EventJobStatus        EventKind = "job_status"
	EventWorkflowProgress EventKind = "workflow_progress"
	EventWorkflowStatus   EventKind = "workflow_status"
)

// Event is one entry on a subscriber's stream. TenantId routes the event and
// never appears on the wire.
type Event struct {
	Kind       EventKind `json:"type"`
	TenantId   string    `json:"-"`
	WorkflowId string    `json:"workflow_id,omitempty"`
	JobId      string    `json:"job_id,omitempty"`
	// JobStatus or WorkflowStatus rendered as its wire string
	Status         string    `json:"status,omitempty"`
	Progress       *float64  `json:"progress,omitempty"`
	TilesProcessed *int      `json:"tiles_processed,omitempty"`
	TilesTotal     *int      `json:"tiles_total,omitempty"`
	JobsCompleted  *int      `json:"jobs_completed,omitempty"`
	JobsTotal      *int      `json:"jobs_total,omitempty"`
	ErrorMessage   string    `json:"error_message,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}
