/*
 * Copyright (C) 2025-2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package scheduler

import (
	"sort"
	"time"

	"github.com/cespare/xxhash/v2"
	"k8s.io/klog/v2"

	v1 "github.com/AMD-AIG-AIMA/inference-scheduler/pkg/apis/v1"
	"github.com/AMD-AIG-AIMA/inference-scheduler/pkg/executor"
	"github.com/AMD-AIG-AIMA/inference-scheduler/pkg/queues"
	"github.com/AMD-AIG-AIMA/inference-scheduler/pkg/workerpool"
)

// dispatch starts as many queued jobs as worker capacity allows, at most one
// per idle lane. Lanes are visited in stable hash order starting after the
// lane dispatched last, so no lane starves while capacity exists. The pass
// is idempotent: with no capacity or no idle lanes it does nothing.
func (e *Engine) dispatch() {
	running, _ := e.registry.RunningJobs()
	capacity := e.maxWorkers - running
	if capacity <= 0 {
		return
	}
	keys := e.queues.Keys()
	if len(keys) == 0 {
		return
	}
	sort.Slice(keys, func(i, j int) bool {
		hi, hj := laneHash(keys[i]), laneHash(keys[j])
		if hi == hj {
			return keys[i].String() < keys[j].String()
		}
		return hi < hj
	})
	start := e.cursorIndex(keys)
	for i := 0; i < len(keys) && capacity > 0; i++ {
		key := keys[(start+i)%len(keys)]
		ref, ok := e.queues.TakeIfIdle(key)
		if !ok {
			continue
		}
		if e.startJob(key, ref) {
			capacity--
		} else {
			e.queues.MarkDone(key)
		}
		e.cursor = laneHash(key)
	}
}

// cursorIndex finds the first lane strictly after the remembered cursor,
// wrapping to the start when the cursor points past every lane.
func (e *Engine) cursorIndex(keys []queues.Key) int {
	for i, key := range keys {
		if laneHash(key) > e.cursor {
			return i
		}
	}
	return 0
}

func laneHash(key queues.Key) uint64 {
	return xxhash.Sum64String(key.String())
}

// startJob transitions the job to RUNNING and hands it to the worker pool.
// Returns false when the job cannot start, leaving the lane idle again.
func (e *Engine) startJob(key queues.Key, ref v1.JobRef) bool {
	if e.frozen.Has(ref.WorkflowId) {
		return false
	}
	now := time.Now()
	running := v1.JobRunning
	job, changed, err := e.registry.UpdateJob(ref, &v1.JobPatch{Status: &running, StartedAt: &now})
	if err != nil {
		klog.ErrorS(err, "failed to start job", "job", ref.String())
		return false
	}
	if !changed {
		// Already terminal, nothing left to run.
		return false
	}
	workflow, wfChanged, err := e.registry.SetWorkflowStatus(ref.WorkflowId, v1.WorkflowRunning, now)
	if err == nil && wfChanged {
		e.publishWorkflowStatus(workflow)
	}
	e.publishJobStatus(job)

	e.pool.Submit(&workerpool.Task{
		Job:  job,
		Sink: e.progressSink(ref),
		Done: e.completionCallback(ref),
		IsCancelled: func() bool {
			current, err := e.registry.GetJob(ref)
			return err == nil && current.Status == v1.JobCancelled
		},
	})
	klog.Infof("job dispatched, job: %s, tenantId: %s, branch: %s", ref.String(), key.TenantId, key.Branch)
	return true
}

// progressSink forwards executor progress into the message loop. It is
// called from worker goroutines and never mutates state directly.
func (e *Engine) progressSink(ref v1.JobRef) executor.ProgressSink {
	return func(progress float64, tilesProcessed, tilesTotal int) {
		e.Add(&message{
			kind:           msgProgress,
			ref:            ref,
			progress:       progress,
			tilesProcessed: tilesProcessed,
			tilesTotal:     tilesTotal,
		})
	}
}

func (e *Engine) completionCallback(ref v1.JobRef) func(*v1.JobOutcome) {
	return func(outcome *v1.JobOutcome) {
		e.Add(&message{
			kind:    msgCompletion,
			ref:     ref,
			outcome: outcome,
		})
	}
}
