/*
 * Copyright (C) 2025-2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package scheduler

import (
	"fmt"

	"k8s.io/klog/v2"

	v1 "github.com/AMD-AIG-AIMA/inference-scheduler/pkg/apis/v1"
	"github.com/AMD-AIG-AIMA/inference-scheduler/pkg/queues"
)

// verifyInvariants audits the scheduling invariants after a pass. A
// violation is a bug, not an operational condition: the affected workflow is
// frozen so it cannot corrupt further state, health flips to unhealthy, and
// the engine keeps serving everything else.
func (e *Engine) verifyInvariants() {
	laneRunning := make(map[queues.Key][]v1.JobRef)
	globalRunning := 0

	for _, workflowId := range e.registry.WorkflowIds() {
		workflow, err := e.registry.SnapshotWorkflow(workflowId)
		if err != nil {
			continue
		}
		for _, job := range workflow.Jobs {
			if job.Status != v1.JobRunning {
				continue
			}
			globalRunning++
			key := queues.Key{TenantId: workflow.TenantId, Branch: job.Branch}
			laneRunning[key] = append(laneRunning[key], job.Ref())
			for _, predecessorId := range job.DependsOn {
				predecessor := workflow.FindJob(predecessorId)
				if predecessor == nil || predecessor.Status != v1.JobSucceeded {
					e.freeze(workflowId, fmt.Sprintf("job %s runs before predecessor %s succeeded",
						job.JobId, predecessorId))
				}
			}
		}
	}

	for key, refs := range laneRunning {
		if len(refs) <= 1 {
			continue
		}
		for _, ref := range refs {
			e.freeze(ref.WorkflowId, fmt.Sprintf("%d jobs running on lane %s", len(refs), key.String()))
		}
	}
	if globalRunning > e.maxWorkers {
		e.setUnhealthy(fmt.Sprintf("%d jobs running with max workers %d", globalRunning, e.maxWorkers))
	}
	if count, max := e.admission.ActiveUsers(); count > max {
		e.setUnhealthy(fmt.Sprintf("%d tenants active with max active users %d", count, max))
	}
}

// freeze stops all further transitions of the workflow. Only called from
// the engine goroutine.
func (e *Engine) freeze(workflowId, reason string) {
	if e.frozen.Has(workflowId) {
		return
	}
	e.frozen.Insert(workflowId)
	e.setUnhealthy(fmt.Sprintf("workflow %s frozen: %s", workflowId, reason))
}

func (e *Engine) setUnhealthy(reason string) {
	if e.unhealthy.CompareAndSwap(false, true) {
		klog.Errorf("scheduling invariant violated, reason: %s", reason)
	} else {
		klog.Errorf("scheduling invariant violated again, reason: %s", reason)
	}
}
