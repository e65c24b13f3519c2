/*
 * Copyright (C) 2025-2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package scheduler

import (
	"time"

	v1 "github.com/AMD-AIG-AIMA/inference-scheduler/pkg/apis/v1"
	"github.com/AMD-AIG-AIMA/inference-scheduler/pkg/metrics"
	"github.com/AMD-AIG-AIMA/inference-scheduler/pkg/queues"
	"github.com/AMD-AIG-AIMA/inference-scheduler/pkg/sets"
)

func (e *Engine) publishJobStatus(job *v1.Job) {
	e.bus.Publish(&v1.Event{
		Kind:         v1.EventJobStatus,
		TenantId:     job.TenantId,
		WorkflowId:   job.WorkflowId,
		JobId:        job.JobId,
		Status:       string(job.Status),
		ErrorMessage: job.ErrorMessage,
		Timestamp:    time.Now(),
	})
}

func (e *Engine) publishJobProgress(job *v1.Job) {
	progress := job.Progress
	e.bus.Publish(&v1.Event{
		Kind:           v1.EventJobProgress,
		TenantId:       job.TenantId,
		WorkflowId:     job.WorkflowId,
		JobId:          job.JobId,
		Progress:       &progress,
		TilesProcessed: job.TilesProcessed,
		TilesTotal:     job.TilesTotal,
		Timestamp:      time.Now(),
	})
}

// publishWorkflowProgress emits the aggregate workflow progress, the
// arithmetic mean of the jobs' progress values.
func (e *Engine) publishWorkflowProgress(workflowId string) {
	workflow, err := e.registry.SnapshotWorkflow(workflowId)
	if err != nil {
		return
	}
	progress := workflow.Progress()
	completed := workflow.JobsCompleted()
	total := len(workflow.Jobs)
	e.bus.Publish(&v1.Event{
		Kind:          v1.EventWorkflowProgress,
		TenantId:      workflow.TenantId,
		WorkflowId:    workflowId,
		Progress:      &progress,
		JobsCompleted: &completed,
		JobsTotal:     &total,
		Timestamp:     time.Now(),
	})
	metrics.SetWorkflowProgress(workflowId, workflow.TenantId, progress)
}

func (e *Engine) publishWorkflowStatus(workflow *v1.Workflow) {
	e.bus.Publish(&v1.Event{
		Kind:       v1.EventWorkflowStatus,
		TenantId:   workflow.TenantId,
		WorkflowId: workflow.WorkflowId,
		Status:     string(workflow.Status),
		Timestamp:  time.Now(),
	})
}

func (e *Engine) recordCompletionMetrics(job *v1.Job) {
	duration := 0.0
	if job.StartedAt != nil && job.FinishedAt != nil {
		duration = job.FinishedAt.Sub(*job.StartedAt).Seconds()
	}
	metrics.RecordJobCompletion(string(job.JobType), job.Branch, job.TenantId, string(job.Status), duration)
}

// updateGauges refreshes the load gauges after a state-changing message.
// Series of lanes and tenants that went away are dropped or zeroed so the
// exporter never reports stale load.
func (e *Engine) updateGauges() {
	depths := e.queues.DepthByKey()
	for key, depth := range depths {
		metrics.SetQueueDepth(key.TenantId, key.Branch, depth)
	}
	for key := range e.gaugedLanes {
		if _, exists := depths[key]; !exists {
			metrics.DeleteQueueDepth(key.TenantId, key.Branch)
		}
	}
	e.gaugedLanes = make(map[queues.Key]struct{}, len(depths))
	for key := range depths {
		e.gaugedLanes[key] = struct{}{}
	}

	running, byTenant := e.registry.RunningJobs()
	metrics.SetWorkerActiveJobs("global", running)
	seen := sets.NewSet()
	for tenantId, count := range byTenant {
		metrics.SetWorkerActiveJobs(tenantId, count)
		seen.Insert(tenantId)
	}
	for _, tenantId := range e.gaugedTenants.UnsortedList() {
		if !seen.Has(tenantId) {
			metrics.SetWorkerActiveJobs(tenantId, 0)
		}
	}
	e.gaugedTenants = seen

	count, _ := e.admission.ActiveUsers()
	metrics.SetActiveUsers(count)
}
