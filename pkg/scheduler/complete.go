/*
 * Copyright (C) 2025-2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package scheduler

import (
	"fmt"
	"time"

	"k8s.io/klog/v2"

	v1 "github.com/AMD-AIG-AIMA/inference-scheduler/pkg/apis/v1"
	"github.com/AMD-AIG-AIMA/inference-scheduler/pkg/metrics"
	"github.com/AMD-AIG-AIMA/inference-scheduler/pkg/queues"
)

func (e *Engine) handleProgress(msg *message) {
	if e.frozen.Has(msg.ref.WorkflowId) {
		return
	}
	patch := &v1.JobPatch{Progress: &msg.progress}
	if msg.tilesTotal > 0 {
		patch.TilesProcessed = &msg.tilesProcessed
		patch.TilesTotal = &msg.tilesTotal
	}
	job, changed, err := e.registry.UpdateJob(msg.ref, patch)
	if err != nil || !changed {
		return
	}
	e.publishJobProgress(job)
	e.publishWorkflowProgress(msg.ref.WorkflowId)
}

func (e *Engine) handleCompletion(msg *message) {
	job, err := e.registry.GetJob(msg.ref)
	if err != nil {
		klog.ErrorS(err, "completion for unknown job", "job", msg.ref.String())
		return
	}
	// The lane frees up no matter how the execution ended.
	e.queues.MarkDone(queues.Key{TenantId: job.TenantId, Branch: job.Branch})

	if !e.frozen.Has(msg.ref.WorkflowId) {
		e.applyOutcome(msg.ref, msg.outcome)
		e.finalizeWorkflow(msg.ref.WorkflowId)
	}

	e.dispatch()
	e.verifyInvariants()
	e.queues.GC()
	e.updateGauges()
}

// applyOutcome writes the terminal status reported by the pool and fans out
// its consequences: successors become ready on success, dependents
// cascade-fail otherwise.
func (e *Engine) applyOutcome(ref v1.JobRef, outcome *v1.JobOutcome) {
	now := time.Now()
	patch := &v1.JobPatch{Status: &outcome.Status, FinishedAt: &now}
	switch outcome.Status {
	case v1.JobSucceeded:
		done := 1.0
		patch.Progress = &done
		patch.ResultPath = &outcome.ResultPath
	case v1.JobFailed:
		patch.ErrorMessage = &outcome.ErrorMessage
	}
	job, changed, err := e.registry.UpdateJob(ref, patch)
	if err != nil {
		klog.ErrorS(err, "failed to apply job outcome", "job", ref.String())
		return
	}
	if !changed {
		return
	}
	e.resolver.MarkTerminal(ref.WorkflowId, ref.JobId)
	e.publishJobStatus(job)
	e.recordCompletionMetrics(job)
	klog.Infof("job finished, job: %s, status: %s", ref.String(), job.Status)

	switch job.Status {
	case v1.JobSucceeded:
		e.enqueueReady(ref)
		e.publishWorkflowProgress(ref.WorkflowId)
	case v1.JobFailed:
		e.cascadeFail(ref.WorkflowId, ref.JobId, fmt.Sprintf(v1.UpstreamFailedMessage, ref.JobId))
	case v1.JobCancelled:
		e.cascadeFail(ref.WorkflowId, ref.JobId, v1.UpstreamCancelledMessage)
	}
}

// enqueueReady queues the successors whose last outstanding predecessor just
// succeeded.
func (e *Engine) enqueueReady(ref v1.JobRef) {
	ready := e.resolver.OnSucceeded(ref.WorkflowId, ref.JobId)
	if len(ready) == 0 {
		return
	}
	workflow, err := e.registry.SnapshotWorkflow(ref.WorkflowId)
	if err != nil {
		klog.ErrorS(err, "failed to snapshot workflow for ready jobs", "workflowId", ref.WorkflowId)
		return
	}
	for _, jobId := range ready {
		job := workflow.FindJob(jobId)
		if job == nil || job.Status != v1.JobPending {
			continue
		}
		e.queues.Enqueue(queues.Key{TenantId: workflow.TenantId, Branch: job.Branch}, job.Ref())
	}
}

// cascadeFail marks every transitive dependent of the job FAILED with the
// given message and pulls queued ones out of their lanes. Dependents cannot
// be RUNNING here: their predecessors never all succeeded.
func (e *Engine) cascadeFail(workflowId, jobId, errorMessage string) {
	for _, dependentId := range e.resolver.TransitiveDependents(workflowId, jobId) {
		ref := v1.JobRef{WorkflowId: workflowId, JobId: dependentId}
		job, err := e.registry.GetJob(ref)
		if err != nil || job.Status.IsTerminal() {
			continue
		}
		now := time.Now()
		failed := v1.JobFailed
		updated, changed, err := e.registry.UpdateJob(ref, &v1.JobPatch{
			Status:       &failed,
			ErrorMessage: &errorMessage,
			FinishedAt:   &now,
		})
		if err != nil || !changed {
			continue
		}
		e.queues.Remove(queues.Key{TenantId: job.TenantId, Branch: job.Branch}, ref)
		e.resolver.MarkTerminal(workflowId, dependentId)
		e.publishJobStatus(updated)
		e.recordCompletionMetrics(updated)
		klog.Infof("job cascade-failed, job: %s, reason: %s", ref.String(), errorMessage)
	}
}

// finalizeWorkflow recomputes the workflow status from its jobs, emits the
// status event on change, and tears down per-workflow state once terminal.
// The admission slot is handed back as soon as the tenant fully drains.
func (e *Engine) finalizeWorkflow(workflowId string) {
	snapshot, err := e.registry.SnapshotWorkflow(workflowId)
	if err != nil {
		return
	}
	derived := snapshot.DeriveStatus()
	workflow, changed, err := e.registry.SetWorkflowStatus(workflowId, derived, time.Now())
	if err != nil {
		return
	}
	if changed {
		e.publishWorkflowStatus(workflow)
	}
	if workflow.IsEnd() {
		e.resolver.Unregister(workflowId)
		metrics.DeleteWorkflowProgress(workflowId, workflow.TenantId)
		if changed {
			klog.Infof("workflow finished, workflowId: %s, status: %s", workflowId, workflow.Status)
		}
	}
	if e.admission.IsActive(workflow.TenantId) && !e.registry.TenantHasActiveJobs(workflow.TenantId) {
		e.admission.Release(workflow.TenantId)
	}
}
