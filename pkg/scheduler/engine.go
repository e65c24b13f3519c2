/*
 * Copyright (C) 2025-2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package scheduler

import (
	"context"
	"sync/atomic"
	"time"

	"k8s.io/klog/v2"

	"github.com/AMD-AIG-AIMA/inference-scheduler/pkg/admission"
	v1 "github.com/AMD-AIG-AIMA/inference-scheduler/pkg/apis/v1"
	"github.com/AMD-AIG-AIMA/inference-scheduler/pkg/controller"
	schederrors "github.com/AMD-AIG-AIMA/inference-scheduler/pkg/errors"
	"github.com/AMD-AIG-AIMA/inference-scheduler/pkg/eventbus"
	"github.com/AMD-AIG-AIMA/inference-scheduler/pkg/queues"
	"github.com/AMD-AIG-AIMA/inference-scheduler/pkg/registry"
	"github.com/AMD-AIG-AIMA/inference-scheduler/pkg/resolver"
	"github.com/AMD-AIG-AIMA/inference-scheduler/pkg/sets"
	"github.com/AMD-AIG-AIMA/inference-scheduler/pkg/workerpool"
)

type messageKind string

const (
	msgSubmit     messageKind = "submit"
	msgCancel     messageKind = "cancel"
	msgProgress   messageKind = "progress"
	msgCompletion messageKind = "completion"
)

// message is one unit of work on the engine's input queue. Control messages
// (submit, cancel) carry a reply channel; worker callbacks (progress,
// completion) are fire-and-forget.
type message struct {
	kind messageKind

	// submit
	workflow *v1.Workflow

	// cancel
	tenantId string
	jobId    string

	// progress and completion
	ref            v1.JobRef
	progress       float64
	tilesProcessed int
	tilesTotal     int
	outcome        *v1.JobOutcome

	reply chan *reply
}

type reply struct {
	workflow *v1.Workflow
	job      *v1.Job
	err      error
}

// Engine is the single writer over the registry, branch queues and
// dependency graphs. Every mutation enters through its one-worker message
// queue; reads go straight to the registry and return snapshots.
type Engine struct {
	registry  *registry.Registry
	admission *admission.Manager
	queues    *queues.Manager
	resolver  *resolver.Resolver
	pool      *workerpool.Pool
	bus       *eventbus.Bus

	maxWorkers int

	// cursor remembers the hash of the last dispatched lane so successive
	// passes rotate fairly across lanes.
	cursor uint64
	// frozen workflows take no further transitions after an invariant
	// violation was detected inside them.
	frozen    sets.Set
	unhealthy atomic.Bool

	// previously exported gauge series, tracked so stale series are
	// zeroed or dropped when their lane or tenant goes away.
	gaugedLanes   map[queues.Key]struct{}
	gaugedTenants sets.Set

	*controller.Controller[*message]
}

func NewEngine(reg *registry.Registry, adm *admission.Manager, q *queues.Manager,
	res *resolver.Resolver, pool *workerpool.Pool, bus *eventbus.Bus, maxWorkers int) *Engine {
	e := &Engine{
		registry:      reg,
		admission:     adm,
		queues:        q,
		resolver:      res,
		pool:          pool,
		bus:           bus,
		maxWorkers:    maxWorkers,
		frozen:        sets.NewSet(),
		gaugedLanes:   make(map[queues.Key]struct{}),
		gaugedTenants: sets.NewSet(),
	}
	e.Controller = controller.NewController[*message](e, 1)
	return e
}

// Start launches the engine's message loop.
func (e *Engine) Start(ctx context.Context) {
	for i := 0; i < e.MaxConcurrent; i++ {
		e.Run(ctx)
	}
	klog.Infof("scheduler engine started, maxWorkers: %d", e.maxWorkers)
}

// Stop drains no further messages. In-flight executions finish on their own.
func (e *Engine) Stop() {
	e.ShutDown()
}

// Do processes one queued message. It is the interface of the custom
// controller. Errors are never returned: replaying a submit or completion
// would apply its side effects twice.
func (e *Engine) Do(ctx context.Context, msg *message) (controller.Result, error) {
	switch msg.kind {
	case msgSubmit:
		e.handleSubmit(msg)
	case msgCancel:
		e.handleCancel(msg)
	case msgProgress:
		e.handleProgress(msg)
	case msgCompletion:
		e.handleCompletion(msg)
	default:
		klog.Errorf("dropping message of unknown kind: %s", msg.kind)
	}
	return controller.Result{}, nil
}

// Submit validates and admits the workflow, then returns the stored
// snapshot. Nothing is written when any check fails.
func (e *Engine) Submit(ctx context.Context, workflow *v1.Workflow) (*v1.Workflow, error) {
	msg := &message{
		kind:     msgSubmit,
		workflow: workflow,
		reply:    make(chan *reply, 1),
	}
	e.Add(msg)
	select {
	case r := <-msg.reply:
		return r.workflow, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// CancelJob cancels a PENDING job of the tenant and cascades to its
// dependents. RUNNING and terminal jobs are not cancellable.
func (e *Engine) CancelJob(ctx context.Context, tenantId, jobId string) (*v1.Job, error) {
	msg := &message{
		kind:     msgCancel,
		tenantId: tenantId,
		jobId:    jobId,
		reply:    make(chan *reply, 1),
	}
	e.Add(msg)
	select {
	case r := <-msg.reply:
		return r.job, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// GetWorkflow returns a snapshot of the tenant's workflow. Workflows of
// other tenants resolve to not found, never to a permission error.
func (e *Engine) GetWorkflow(tenantId, workflowId string) (*v1.Workflow, error) {
	workflow, err := e.registry.SnapshotWorkflow(workflowId)
	if err != nil || workflow.TenantId != tenantId {
		return nil, schederrors.NewNotFound("workflow", workflowId)
	}
	return workflow, nil
}

// ListWorkflows returns snapshots of all workflows owned by the tenant.
func (e *Engine) ListWorkflows(tenantId string) []*v1.Workflow {
	return e.registry.ListWorkflows(tenantId)
}

// GetJob resolves a bare job id inside the tenant's view.
func (e *Engine) GetJob(tenantId, jobId string) (*v1.Job, error) {
	ref, err := e.registry.ResolveJobId(tenantId, jobId)
	if err != nil {
		return nil, err
	}
	return e.registry.GetJob(ref)
}

// Healthy reports whether any scheduling invariant has been violated since
// start. The engine keeps serving either way.
func (e *Engine) Healthy() bool {
	return !e.unhealthy.Load()
}

func (e *Engine) handleSubmit(msg *message) {
	workflow := msg.workflow
	if err := validateWorkflow(workflow); err != nil {
		msg.reply <- &reply{err: err}
		return
	}
	if !e.admission.TryAdmit(workflow.TenantId) {
		msg.reply <- &reply{err: schederrors.NewTenantRejected(workflow.TenantId)}
		return
	}
	if err := e.registry.CreateWorkflow(workflow); err != nil {
		// A slot taken just for this workflow is handed back.
		if !e.registry.TenantHasActiveJobs(workflow.TenantId) {
			e.admission.Release(workflow.TenantId)
		}
		msg.reply <- &reply{err: err}
		return
	}
	e.resolver.Register(workflow)
	for _, jobId := range e.resolver.InitiallyReady(workflow.WorkflowId) {
		job := workflow.FindJob(jobId)
		if job == nil {
			continue
		}
		e.queues.Enqueue(queues.Key{TenantId: workflow.TenantId, Branch: job.Branch}, job.Ref())
	}
	snapshot, err := e.registry.SnapshotWorkflow(workflow.WorkflowId)
	if err != nil {
		msg.reply <- &reply{err: err}
		return
	}
	msg.reply <- &reply{workflow: snapshot}
	klog.Infof("workflow submitted, workflowId: %s, tenantId: %s, jobs: %d",
		workflow.WorkflowId, workflow.TenantId, len(workflow.Jobs))

	e.dispatch()
	e.verifyInvariants()
	e.updateGauges()
}

func (e *Engine) handleCancel(msg *message) {
	ref, err := e.registry.ResolveJobId(msg.tenantId, msg.jobId)
	if err != nil {
		msg.reply <- &reply{err: err}
		return
	}
	job, err := e.registry.GetJob(ref)
	if err != nil {
		msg.reply <- &reply{err: err}
		return
	}
	if job.Status != v1.JobPending {
		msg.reply <- &reply{err: schederrors.NewNotCancellable(job.JobId, string(job.Status))}
		return
	}

	now := time.Now()
	cancelled := v1.JobCancelled
	updated, _, err := e.registry.UpdateJob(ref, &v1.JobPatch{Status: &cancelled, FinishedAt: &now})
	if err != nil {
		msg.reply <- &reply{err: err}
		return
	}
	e.queues.Remove(queues.Key{TenantId: job.TenantId, Branch: job.Branch}, ref)
	e.resolver.MarkTerminal(ref.WorkflowId, ref.JobId)
	e.publishJobStatus(updated)
	e.recordCompletionMetrics(updated)
	e.cascadeFail(ref.WorkflowId, ref.JobId, v1.UpstreamCancelledMessage)
	e.finalizeWorkflow(ref.WorkflowId)
	msg.reply <- &reply{job: updated}
	klog.Infof("job cancelled, job: %s, tenantId: %s", ref.String(), msg.tenantId)

	e.dispatch()
	e.verifyInvariants()
	e.queues.GC()
	e.updateGauges()
}
