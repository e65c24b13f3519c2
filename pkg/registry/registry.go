/*
 * Copyright (C) 2025-2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package registry

import (
	"sort"
	"sync"
	"time"

	v1 "github.com/AMD-AIG-AIMA/inference-scheduler/pkg/apis/v1"
	schederrors "github.com/AMD-AIG-AIMA/inference-scheduler/pkg/errors"
	"github.com/AMD-AIG-AIMA/inference-scheduler/pkg/sets"
)

// Registry is the single source of truth for workflow and job records.
// All mutations are funneled through the scheduler loop; reads may happen
// concurrently and always return deep copies, never the stored records.
type Registry struct {
	mu        sync.RWMutex
	workflows map[string]*v1.Workflow
	jobs      map[v1.JobRef]*v1.Job
	byTenant  map[string]sets.Set
	byJobId   map[string]sets.Set
}

func NewRegistry() *Registry {
	return &Registry{
		workflows: make(map[string]*v1.Workflow),
		jobs:      make(map[v1.JobRef]*v1.Job),
		byTenant:  make(map[string]sets.Set),
		byJobId:   make(map[string]sets.Set),
	}
}

// CreateWorkflow inserts a workflow and all of its jobs.
// The registry takes ownership of the records; callers must not retain them.
func (r *Registry) CreateWorkflow(workflow *v1.Workflow) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.workflows[workflow.WorkflowId]; exists {
		return schederrors.NewDuplicateWorkflowId(workflow.WorkflowId)
	}
	r.workflows[workflow.WorkflowId] = workflow
	for _, job := range workflow.Jobs {
		r.jobs[job.Ref()] = job
		if _, exists := r.byJobId[job.JobId]; !exists {
			r.byJobId[job.JobId] = sets.NewSet()
		}
		r.byJobId[job.JobId].Insert(workflow.WorkflowId)
	}
	if _, exists := r.byTenant[workflow.TenantId]; !exists {
		r.byTenant[workflow.TenantId] = sets.NewSet()
	}
	r.byTenant[workflow.TenantId].Insert(workflow.WorkflowId)
	return nil
}

// UpdateJob applies a patch to a job record. Terminal statuses are absorbing:
// once a job is SUCCEEDED, FAILED or CANCELLED the patch is dropped entirely.
// Progress regressions are ignored and out-of-range values are clamped.
// Returns a deep copy of the record and whether the patch changed anything.
func (r *Registry) UpdateJob(ref v1.JobRef, patch *v1.JobPatch) (*v1.Job, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, exists := r.jobs[ref]
	if !exists {
		return nil, false, schederrors.NewNotFound("job", ref.String())
	}
	if job.Status.IsTerminal() {
		return job.DeepCopy(), false, nil
	}
	changed := false
	if patch.Status != nil && *patch.Status != job.Status {
		job.Status = *patch.Status
		changed = true
	}
	if patch.Progress != nil {
		progress := clampProgress(*patch.Progress)
		if progress > job.Progress {
			job.Progress = progress
			changed = true
		}
	}
	if patch.TilesProcessed != nil {
		job.TilesProcessed = patch.TilesProcessed
		changed = true
	}
	if patch.TilesTotal != nil {
		job.TilesTotal = patch.TilesTotal
		changed = true
	}
	if patch.ErrorMessage != nil && *patch.ErrorMessage != job.ErrorMessage {
		job.ErrorMessage = *patch.ErrorMessage
		changed = true
	}
	if patch.ResultPath != nil && *patch.ResultPath != job.ResultPath {
		job.ResultPath = *patch.ResultPath
		changed = true
	}
	if patch.StartedAt != nil {
		job.StartedAt = patch.StartedAt
		changed = true
	}
	if patch.FinishedAt != nil {
		job.FinishedAt = patch.FinishedAt
		changed = true
	}
	return job.DeepCopy(), changed, nil
}

// SetWorkflowStatus applies a derived status to the workflow record,
// stamping started_at on the first transition to RUNNING and finished_at
// when the workflow reaches a terminal status. Terminal is absorbing.
func (r *Registry) SetWorkflowStatus(workflowId string, status v1.WorkflowStatus, now time.Time) (*v1.Workflow, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	workflow, exists := r.workflows[workflowId]
	if !exists {
		return nil, false, schederrors.NewNotFound("workflow", workflowId)
	}
	if workflow.IsEnd() || workflow.Status == status {
		return workflow.DeepCopy(), false, nil
	}
	workflow.Status = status
	if status == v1.WorkflowRunning && workflow.StartedAt == nil {
		startedAt := now
		workflow.StartedAt = &startedAt
	}
	if workflow.IsEnd() && workflow.FinishedAt == nil {
		finishedAt := now
		workflow.FinishedAt = &finishedAt
	}
	return workflow.DeepCopy(), true, nil
}

// SnapshotWorkflow returns a deep copy of the workflow and its jobs.
func (r *Registry) SnapshotWorkflow(workflowId string) (*v1.Workflow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	workflow, exists := r.workflows[workflowId]
	if !exists {
		return nil, schederrors.NewNotFound("workflow", workflowId)
	}
	return workflow.DeepCopy(), nil
}

// GetJob returns a deep copy of a single job record.
func (r *Registry) GetJob(ref v1.JobRef) (*v1.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, exists := r.jobs[ref]
	if !exists {
		return nil, schederrors.NewNotFound("job", ref.String())
	}
	return job.DeepCopy(), nil
}

// ListWorkflows returns deep copies of the tenant's workflows ordered by
// creation time. Workflows of other tenants are never visible here.
func (r *Registry) ListWorkflows(tenantId string) []*v1.Workflow {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids, exists := r.byTenant[tenantId]
	if !exists {
		return nil
	}
	result := make([]*v1.Workflow, 0, ids.Len())
	for _, workflowId := range ids.UnsortedList() {
		if workflow, ok := r.workflows[workflowId]; ok {
			result = append(result, workflow.DeepCopy())
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].WorkflowId < result[j].WorkflowId
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

// ResolveJobId resolves a bare job id to its (workflow, job) pair within the
// tenant's view. The id must match exactly one job; an ambiguous or unknown
// id resolves to a not found error. Composite keys are never split apart.
func (r *Registry) ResolveJobId(tenantId, jobId string) (v1.JobRef, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var matches []v1.JobRef
	for _, workflowId := range r.byJobId[jobId].UnsortedList() {
		workflow, exists := r.workflows[workflowId]
		if !exists || workflow.TenantId != tenantId {
			continue
		}
		matches = append(matches, v1.JobRef{WorkflowId: workflowId, JobId: jobId})
	}
	if len(matches) != 1 {
		return v1.JobRef{}, schederrors.NewNotFound("job", jobId)
	}
	return matches[0], nil
}

// TenantHasActiveJobs reports whether the tenant still has any job in
// PENDING or RUNNING across all of its workflows.
func (r *Registry) TenantHasActiveJobs(tenantId string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, workflowId := range r.byTenant[tenantId].UnsortedList() {
		workflow, exists := r.workflows[workflowId]
		if !exists {
			continue
		}
		if workflow.HasActiveJobs() {
			return true
		}
	}
	return false
}

// RunningJobs returns the global count of RUNNING jobs and the per-tenant
// breakdown.
func (r *Registry) RunningJobs() (int, map[string]int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	total := 0
	byTenant := make(map[string]int)
	for _, job := range r.jobs {
		if job.Status == v1.JobRunning {
			total++
			byTenant[job.TenantId]++
		}
	}
	return total, byTenant
}

// JobDurationsSince returns the start-to-finish durations of jobs that
// reached a terminal status at or after the cutoff and carry both timestamps.
func (r *Registry) JobDurationsSince(cutoff time.Time) []time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var durations []time.Duration
	for _, job := range r.jobs {
		if !job.Status.IsTerminal() || job.StartedAt == nil || job.FinishedAt == nil {
			continue
		}
		if job.FinishedAt.Before(cutoff) {
			continue
		}
		durations = append(durations, job.FinishedAt.Sub(*job.StartedAt))
	}
	return durations
}

// WorkflowIds returns all workflow ids currently registered.
func (r *Registry) WorkflowIds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.workflows))
	for id := range r.workflows {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func clampProgress(progress float64) float64 {
	if progress < 0 {
		return 0
	}
	if progress > 1 {
		return 1
	}
	return progress
}
