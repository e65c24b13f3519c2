/*
 * Copyright (c) 2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"gotest.tools/assert"

	"github.com/AMD-AIG-AIMA/inference-scheduler/pkg/admission"
	v1 "github.com/AMD-AIG-AIMA/inference-scheduler/pkg/apis/v1"
	schederrors "github.com/AMD-AIG-AIMA/inference-scheduler/pkg/errors"
	"github.com/AMD-AIG-AIMA/inference-scheduler/pkg/eventbus"
	"github.com/AMD-AIG-AIMA/inference-scheduler/pkg/executor"
	"github.com/AMD-AIG-AIMA/inference-scheduler/pkg/queues"
	"github.com/AMD-AIG-AIMA/inference-scheduler/pkg/registry"
	"github.com/AMD-AIG-AIMA/inference-scheduler/pkg/resolver"
	"github.com/AMD-AIG-AIMA/inference-scheduler/pkg/workerpool"
)

const waitTimeout = 5 * time.Second

// stepExecutor reports progress in fixed steps and succeeds.
type stepExecutor struct {
	steps int
	delay time.Duration
}

func (s *stepExecutor) Execute(ctx context.Context, job *v1.Job, sink executor.ProgressSink) (string, error) {
	steps := s.steps
	if steps == 0 {
		steps = 4
	}
	for i := 1; i <= steps; i++ {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
		sink(float64(i)/float64(steps), i, steps)
	}
	return "/tmp/results/" + job.JobId + ".json", nil
}

// failingExecutor reports some progress and then fails.
type failingExecutor struct {
	message string
}

func (f *failingExecutor) Execute(ctx context.Context, job *v1.Job, sink executor.ProgressSink) (string, error) {
	sink(0.5, 2, 4)
	return "", errors.New(f.message)
}

// blockingExecutor announces each start and holds every execution until the
// gate closes.
type blockingExecutor struct {
	started chan string
	gate    chan struct{}
}

func newBlockingExecutor() *blockingExecutor {
	return &blockingExecutor{
		started: make(chan string, 16),
		gate:    make(chan struct{}),
	}
}

func (b *blockingExecutor) Execute(ctx context.Context, job *v1.Job, sink executor.ProgressSink) (string, error) {
	b.started <- job.JobId
	select {
	case <-b.gate:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	sink(1.0, 4, 4)
	return "/tmp/results/" + job.JobId + ".json", nil
}

// orderExecutor records which tenant each execution belonged to.
type orderExecutor struct {
	mu    sync.Mutex
	order []string
	delay time.Duration
}

func (o *orderExecutor) Execute(ctx context.Context, job *v1.Job, sink executor.ProgressSink) (string, error) {
	o.mu.Lock()
	o.order = append(o.order, job.TenantId)
	o.mu.Unlock()
	select {
	case <-time.After(o.delay):
	case <-ctx.Done():
		return "", ctx.Err()
	}
	sink(1.0, 1, 1)
	return "/tmp/results/" + job.JobId + ".json", nil
}

func (o *orderExecutor) recorded() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string{}, o.order...)
}

// countingExecutor tracks the highest number of concurrent executions.
type countingExecutor struct {
	active  int64
	maxSeen int64
	delay   time.Duration
}

func (c *countingExecutor) Execute(ctx context.Context, job *v1.Job, sink executor.ProgressSink) (string, error) {
	current := atomic.AddInt64(&c.active, 1)
	defer atomic.AddInt64(&c.active, -1)
	for {
		max := atomic.LoadInt64(&c.maxSeen)
		if current <= max || atomic.CompareAndSwapInt64(&c.maxSeen, max, current) {
			break
		}
	}
	select {
	case <-time.After(c.delay):
	case <-ctx.Done():
		return "", ctx.Err()
	}
	sink(1.0, 1, 1)
	return "/tmp/results/" + job.JobId + ".json", nil
}

func tableFor(exec executor.Executor) *executor.Table {
	table := executor.NewTable()
	table.Register(v1.JobTypeCellSegmentation, exec)
	table.Register(v1.JobTypeTissueMask, exec)
	return table
}

type harness struct {
	engine    *Engine
	registry  *registry.Registry
	admission *admission.Manager
	queues    *queues.Manager
	bus       *eventbus.Bus
}

func newHarness(t *testing.T, maxWorkers, maxActiveUsers, mailboxSize int, table *executor.Table) *harness {
	t.Helper()
	reg := registry.NewRegistry()
	adm := admission.NewManager(maxActiveUsers)
	q := queues.NewManager()
	res := resolver.NewResolver()
	bus := eventbus.NewBus(mailboxSize)
	pool := workerpool.NewPool(table, maxWorkers)
	engine := NewEngine(reg, adm, q, res, pool, bus, maxWorkers)

	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)
	engine.Start(ctx)
	t.Cleanup(func() {
		engine.Stop()
		pool.Stop()
		cancel()
	})
	return &harness{engine: engine, registry: reg, admission: adm, queues: q, bus: bus}
}

func buildJob(jobId string, jobType v1.JobType, branch string, dependsOn ...string) *v1.Job {
	return &v1.Job{
		JobId:     jobId,
		JobType:   jobType,
		Branch:    branch,
		DependsOn: dependsOn,
		ImagePath: "/data/slide.tiff",
	}
}

func buildWorkflow(tenantId, workflowId string, jobs ...*v1.Job) *v1.Workflow {
	for _, job := range jobs {
		job.WorkflowId = workflowId
		job.TenantId = tenantId
		job.Status = v1.JobPending
	}
	return &v1.Workflow{
		WorkflowId: workflowId,
		TenantId:   tenantId,
		Name:       "test-" + workflowId,
		Jobs:       jobs,
		Status:     v1.WorkflowPending,
		CreatedAt:  time.Now(),
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(waitTimeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func (h *harness) waitJobStatus(t *testing.T, ref v1.JobRef, status v1.JobStatus) *v1.Job {
	t.Helper()
	var job *v1.Job
	waitFor(t, fmt.Sprintf("job %s to reach %s", ref.String(), status), func() bool {
		current, err := h.registry.GetJob(ref)
		if err != nil {
			return false
		}
		job = current
		return current.Status == status
	})
	return job
}

func (h *harness) waitWorkflowStatus(t *testing.T, workflowId string, status v1.WorkflowStatus) *v1.Workflow {
	t.Helper()
	var workflow *v1.Workflow
	waitFor(t, fmt.Sprintf("workflow %s to reach %s", workflowId, status), func() bool {
		current, err := h.registry.SnapshotWorkflow(workflowId)
		if err != nil {
			return false
		}
		workflow = current
		return current.Status == status
	})
	return workflow
}

func recvStarted(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case jobId := <-ch:
		return jobId
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for an execution to start")
		return ""
	}
}

func collectEvents(t *testing.T, sub *eventbus.Subscription, done func(*v1.Event) bool) []*v1.Event {
	t.Helper()
	var events []*v1.Event
	deadline := time.After(waitTimeout)
	for {
		select {
		case event := <-sub.Events():
			events = append(events, event)
			if done(event) {
				return events
			}
		case <-deadline:
			t.Fatalf("timed out collecting events, got %d so far", len(events))
			return events
		}
	}
}

func eventIndex(events []*v1.Event, kind v1.EventKind, jobId, status string) int {
	for i, event := range events {
		if event.Kind == kind && event.JobId == jobId && event.Status == status {
			return i
		}
	}
	return -1
}

func TestSingleJobWorkflow(t *testing.T) {
	h := newHarness(t, 4, 3, 64, tableFor(&stepExecutor{delay: time.Millisecond}))

	created, err := h.engine.Submit(context.Background(),
		buildWorkflow("t1", "wf_1", buildJob("seg", v1.JobTypeCellSegmentation, "main")))
	assert.NilError(t, err)
	assert.Equal(t, created.Status, v1.WorkflowPending)

	workflow := h.waitWorkflowStatus(t, "wf_1", v1.WorkflowSucceeded)
	job := workflow.Jobs[0]
	assert.Equal(t, job.Status, v1.JobSucceeded)
	assert.Equal(t, job.Progress, 1.0)
	assert.Equal(t, job.ResultPath, "/tmp/results/seg.json")
	assert.Equal(t, job.StartedAt != nil && job.FinishedAt != nil, true)
	assert.Equal(t, workflow.StartedAt != nil && workflow.FinishedAt != nil, true)

	waitFor(t, "tenant slot release", func() bool { return !h.admission.IsActive("t1") })
}

func TestChainRunsInOrder(t *testing.T) {
	h := newHarness(t, 4, 3, 64, tableFor(&stepExecutor{delay: time.Millisecond}))
	sub := h.bus.Subscribe("t1")
	defer h.bus.Unsubscribe(sub)

	_, err := h.engine.Submit(context.Background(), buildWorkflow("t1", "wf_1",
		buildJob("a", v1.JobTypeCellSegmentation, "main"),
		buildJob("b", v1.JobTypeTissueMask, "main", "a"),
		buildJob("c", v1.JobTypeCellSegmentation, "main", "b"),
	))
	assert.NilError(t, err)

	workflow := h.waitWorkflowStatus(t, "wf_1", v1.WorkflowSucceeded)
	jobA, jobB, jobC := workflow.FindJob("a"), workflow.FindJob("b"), workflow.FindJob("c")
	assert.Equal(t, jobB.StartedAt.Before(*jobA.FinishedAt), false)
	assert.Equal(t, jobC.StartedAt.Before(*jobB.FinishedAt), false)

	events := collectEvents(t, sub, func(event *v1.Event) bool {
		return event.Kind == v1.EventWorkflowStatus && event.Status == string(v1.WorkflowSucceeded)
	})
	// A dependent starts strictly after its predecessor succeeded.
	aDone := eventIndex(events, v1.EventJobStatus, "a", string(v1.JobSucceeded))
	bRun := eventIndex(events, v1.EventJobStatus, "b", string(v1.JobRunning))
	bDone := eventIndex(events, v1.EventJobStatus, "b", string(v1.JobSucceeded))
	cRun := eventIndex(events, v1.EventJobStatus, "c", string(v1.JobRunning))
	assert.Equal(t, aDone >= 0 && bRun >= 0 && bDone >= 0 && cRun >= 0, true)
	assert.Equal(t, aDone < bRun, true)
	assert.Equal(t, bDone < cRun, true)
}

func TestBranchesRunInParallel(t *testing.T) {
	exec := newBlockingExecutor()
	h := newHarness(t, 4, 3, 64, tableFor(exec))

	_, err := h.engine.Submit(context.Background(), buildWorkflow("t1", "wf_1",
		buildJob("left", v1.JobTypeCellSegmentation, "branch-a"),
		buildJob("right", v1.JobTypeTissueMask, "branch-b"),
	))
	assert.NilError(t, err)

	first, second := recvStarted(t, exec.started), recvStarted(t, exec.started)
	assert.Equal(t, first != second, true)
	for _, jobId := range []string{"left", "right"} {
		job, err := h.registry.GetJob(v1.JobRef{WorkflowId: "wf_1", JobId: jobId})
		assert.NilError(t, err)
		assert.Equal(t, job.Status, v1.JobRunning)
	}

	close(exec.gate)
	h.waitWorkflowStatus(t, "wf_1", v1.WorkflowSucceeded)
}

func TestSameBranchIsSerial(t *testing.T) {
	exec := newBlockingExecutor()
	h := newHarness(t, 4, 3, 64, tableFor(exec))

	_, err := h.engine.Submit(context.Background(), buildWorkflow("t1", "wf_1",
		buildJob("first", v1.JobTypeCellSegmentation, "main"),
		buildJob("second", v1.JobTypeTissueMask, "main"),
	))
	assert.NilError(t, err)

	assert.Equal(t, recvStarted(t, exec.started), "first")
	time.Sleep(30 * time.Millisecond)
	select {
	case jobId := <-exec.started:
		t.Fatalf("job %s started while the branch was busy", jobId)
	default:
	}
	second, err := h.registry.GetJob(v1.JobRef{WorkflowId: "wf_1", JobId: "second"})
	assert.NilError(t, err)
	assert.Equal(t, second.Status, v1.JobPending)

	close(exec.gate)
	workflow := h.waitWorkflowStatus(t, "wf_1", v1.WorkflowSucceeded)
	first := workflow.FindJob("first")
	second = workflow.FindJob("second")
	assert.Equal(t, second.StartedAt.Before(*first.FinishedAt), false)
}

func TestAdmissionCap(t *testing.T) {
	exec := newBlockingExecutor()
	h := newHarness(t, 4, 1, 64, tableFor(exec))

	_, err := h.engine.Submit(context.Background(), buildWorkflow("t1", "wf_1",
		buildJob("hold", v1.JobTypeCellSegmentation, "main")))
	assert.NilError(t, err)
	recvStarted(t, exec.started)

	// The second tenant is rejected while the first occupies the only slot,
	// and nothing of the rejected submission is recorded.
	_, err = h.engine.Submit(context.Background(), buildWorkflow("t2", "wf_2",
		buildJob("seg", v1.JobTypeCellSegmentation, "main")))
	assert.Equal(t, schederrors.IsTenantRejected(err), true)
	assert.Equal(t, len(h.engine.ListWorkflows("t2")), 0)
	assert.Equal(t, h.admission.IsActive("t2"), false)

	close(exec.gate)
	h.waitWorkflowStatus(t, "wf_1", v1.WorkflowSucceeded)
	waitFor(t, "tenant slot release", func() bool { return !h.admission.IsActive("t1") })

	_, err = h.engine.Submit(context.Background(), buildWorkflow("t2", "wf_2",
		buildJob("seg", v1.JobTypeCellSegmentation, "main")))
	assert.NilError(t, err)
	h.waitWorkflowStatus(t, "wf_2", v1.WorkflowSucceeded)
}

func TestCascadingFailure(t *testing.T) {
	h := newHarness(t, 4, 3, 64, tableFor(&failingExecutor{message: "inference crashed"}))

	_, err := h.engine.Submit(context.Background(), buildWorkflow("t1", "wf_1",
		buildJob("a", v1.JobTypeCellSegmentation, "main"),
		buildJob("b", v1.JobTypeTissueMask, "left", "a"),
		buildJob("c", v1.JobTypeTissueMask, "right", "a"),
		buildJob("d", v1.JobTypeCellSegmentation, "main", "b", "c"),
	))
	assert.NilError(t, err)

	workflow := h.waitWorkflowStatus(t, "wf_1", v1.WorkflowFailed)
	assert.Equal(t, workflow.FindJob("a").ErrorMessage, "inference crashed")
	for _, jobId := range []string{"b", "c", "d"} {
		job := workflow.FindJob(jobId)
		assert.Equal(t, job.Status, v1.JobFailed)
		assert.Equal(t, job.ErrorMessage, "upstream failure: a")
		assert.Equal(t, job.StartedAt == nil, true)
	}
	assert.Equal(t, h.queues.TotalDepth(), 0)
	waitFor(t, "tenant slot release", func() bool { return !h.admission.IsActive("t1") })
}

func TestCancelJob(t *testing.T) {
	exec := newBlockingExecutor()
	h := newHarness(t, 4, 3, 64, tableFor(exec))

	_, err := h.engine.Submit(context.Background(), buildWorkflow("t1", "wf_1",
		buildJob("running", v1.JobTypeCellSegmentation, "main"),
		buildJob("queued", v1.JobTypeTissueMask, "main"),
		buildJob("dependent", v1.JobTypeCellSegmentation, "other", "queued"),
	))
	assert.NilError(t, err)
	recvStarted(t, exec.started)

	cancelled, err := h.engine.CancelJob(context.Background(), "t1", "queued")
	assert.NilError(t, err)
	assert.Equal(t, cancelled.Status, v1.JobCancelled)
	assert.Equal(t, cancelled.FinishedAt != nil, true)

	dependent, err := h.registry.GetJob(v1.JobRef{WorkflowId: "wf_1", JobId: "dependent"})
	assert.NilError(t, err)
	assert.Equal(t, dependent.Status, v1.JobFailed)
	assert.Equal(t, dependent.ErrorMessage, "upstream cancelled")

	// Cancel is PENDING-only: a second cancel and a cancel of the running
	// job both fail.
	_, err = h.engine.CancelJob(context.Background(), "t1", "queued")
	assert.Equal(t, schederrors.IsNotCancellable(err), true)
	_, err = h.engine.CancelJob(context.Background(), "t1", "running")
	assert.Equal(t, schederrors.IsNotCancellable(err), true)

	close(exec.gate)
	workflow := h.waitWorkflowStatus(t, "wf_1", v1.WorkflowFailed)
	assert.Equal(t, workflow.FindJob("running").Status, v1.JobSucceeded)
	assert.Equal(t, h.queues.TotalDepth(), 0)
	waitFor(t, "tenant slot release", func() bool { return !h.admission.IsActive("t1") })
}

func TestSlowSubscriberDoesNotBlock(t *testing.T) {
	h := newHarness(t, 4, 3, 4, tableFor(&stepExecutor{delay: time.Millisecond}))
	sub := h.bus.Subscribe("t1")
	defer h.bus.Unsubscribe(sub)

	_, err := h.engine.Submit(context.Background(), buildWorkflow("t1", "wf_1",
		buildJob("a", v1.JobTypeCellSegmentation, "main"),
		buildJob("b", v1.JobTypeTissueMask, "main", "a"),
	))
	assert.NilError(t, err)

	// The subscriber never reads; the workflow still completes and the
	// mailbox holds at most its bound.
	h.waitWorkflowStatus(t, "wf_1", v1.WorkflowSucceeded)
	drained := 0
	for {
		select {
		case <-sub.Events():
			drained++
			continue
		default:
		}
		break
	}
	assert.Equal(t, drained > 0 && drained <= 4, true)
}

func TestWorkflowProgressIsMeanOfJobs(t *testing.T) {
	h := newHarness(t, 4, 3, 64, tableFor(&stepExecutor{steps: 4, delay: time.Millisecond}))
	sub := h.bus.Subscribe("t1")
	defer h.bus.Unsubscribe(sub)

	_, err := h.engine.Submit(context.Background(), buildWorkflow("t1", "wf_1",
		buildJob("left", v1.JobTypeCellSegmentation, "branch-a"),
		buildJob("right", v1.JobTypeTissueMask, "branch-b"),
	))
	assert.NilError(t, err)
	h.waitWorkflowStatus(t, "wf_1", v1.WorkflowSucceeded)

	events := collectEvents(t, sub, func(event *v1.Event) bool {
		return event.Kind == v1.EventWorkflowStatus && event.Status == string(v1.WorkflowSucceeded)
	})
	previous := 0.0
	var last *v1.Event
	sawTiles := false
	for _, event := range events {
		switch event.Kind {
		case v1.EventWorkflowProgress:
			assert.Equal(t, *event.Progress >= previous-1e-9, true)
			previous = *event.Progress
			last = event
		case v1.EventJobProgress:
			if event.TilesTotal != nil {
				assert.Equal(t, *event.TilesTotal, 4)
				sawTiles = true
			}
		}
	}
	assert.Equal(t, last != nil, true)
	assert.Equal(t, *last.Progress, 1.0)
	assert.Equal(t, *last.JobsCompleted, 2)
	assert.Equal(t, *last.JobsTotal, 2)
	assert.Equal(t, sawTiles, true)
}

func TestMaxWorkersBoundsConcurrency(t *testing.T) {
	t.Run("serial_with_one_worker", func(t *testing.T) {
		exec := &countingExecutor{delay: 5 * time.Millisecond}
		h := newHarness(t, 1, 3, 64, tableFor(exec))
		_, err := h.engine.Submit(context.Background(), buildWorkflow("t1", "wf_1",
			buildJob("a", v1.JobTypeCellSegmentation, "x"),
			buildJob("b", v1.JobTypeTissueMask, "y"),
			buildJob("c", v1.JobTypeCellSegmentation, "z"),
		))
		assert.NilError(t, err)
		h.waitWorkflowStatus(t, "wf_1", v1.WorkflowSucceeded)
		assert.Equal(t, atomic.LoadInt64(&exec.maxSeen), int64(1))
	})

	t.Run("bounded_with_two_workers", func(t *testing.T) {
		exec := &countingExecutor{delay: 5 * time.Millisecond}
		h := newHarness(t, 2, 3, 64, tableFor(exec))
		_, err := h.engine.Submit(context.Background(), buildWorkflow("t1", "wf_1",
			buildJob("a", v1.JobTypeCellSegmentation, "w"),
			buildJob("b", v1.JobTypeTissueMask, "x"),
			buildJob("c", v1.JobTypeCellSegmentation, "y"),
			buildJob("d", v1.JobTypeTissueMask, "z"),
		))
		assert.NilError(t, err)
		h.waitWorkflowStatus(t, "wf_1", v1.WorkflowSucceeded)
		assert.Equal(t, atomic.LoadInt64(&exec.maxSeen) <= 2, true)
	})
}

func TestDispatchAlternatesAcrossLanes(t *testing.T) {
	exec := &orderExecutor{delay: 50 * time.Millisecond}
	h := newHarness(t, 1, 3, 64, tableFor(exec))

	_, err := h.engine.Submit(context.Background(), buildWorkflow("t1", "wf_1",
		buildJob("j1", v1.JobTypeCellSegmentation, "main"),
		buildJob("j2", v1.JobTypeTissueMask, "main"),
	))
	assert.NilError(t, err)
	_, err = h.engine.Submit(context.Background(), buildWorkflow("t2", "wf_2",
		buildJob("k1", v1.JobTypeCellSegmentation, "main"),
		buildJob("k2", v1.JobTypeTissueMask, "main"),
	))
	assert.NilError(t, err)

	h.waitWorkflowStatus(t, "wf_1", v1.WorkflowSucceeded)
	h.waitWorkflowStatus(t, "wf_2", v1.WorkflowSucceeded)

	// With one worker and two busy lanes the cursor rotates between them
	// instead of draining one lane first.
	order := exec.recorded()
	assert.Equal(t, len(order), 4)
	for i := 0; i < len(order)-1; i++ {
		assert.Equal(t, order[i] != order[i+1], true)
	}
}

func TestSubmitValidationWritesNothing(t *testing.T) {
	h := newHarness(t, 4, 3, 64, tableFor(&stepExecutor{delay: time.Millisecond}))

	_, err := h.engine.Submit(context.Background(), buildWorkflow("t1", "wf_1",
		buildJob("a", v1.JobTypeCellSegmentation, "main", "b"),
		buildJob("b", v1.JobTypeTissueMask, "main", "a"),
	))
	assert.Equal(t, schederrors.IsValidationFailed(err), true)
	assert.Equal(t, strings.Contains(err.Error(), "cycle"), true)
	assert.Equal(t, len(h.engine.ListWorkflows("t1")), 0)
	assert.Equal(t, h.admission.IsActive("t1"), false)
}

func TestDuplicateWorkflowIdRollsBackAdmission(t *testing.T) {
	exec := newBlockingExecutor()
	h := newHarness(t, 4, 2, 64, tableFor(exec))

	_, err := h.engine.Submit(context.Background(), buildWorkflow("t2", "wf_dup",
		buildJob("hold", v1.JobTypeCellSegmentation, "main")))
	assert.NilError(t, err)
	recvStarted(t, exec.started)

	_, err = h.engine.Submit(context.Background(), buildWorkflow("t1", "wf_dup",
		buildJob("seg", v1.JobTypeCellSegmentation, "main")))
	assert.Equal(t, schederrors.IsDuplicateWorkflowId(err), true)
	assert.Equal(t, h.admission.IsActive("t1"), false)
	assert.Equal(t, h.admission.IsActive("t2"), true)

	close(exec.gate)
	h.waitWorkflowStatus(t, "wf_dup", v1.WorkflowSucceeded)
}

func TestTenantIsolation(t *testing.T) {
	h := newHarness(t, 4, 3, 64, tableFor(&stepExecutor{delay: time.Millisecond}))

	_, err := h.engine.Submit(context.Background(), buildWorkflow("t1", "wf_1",
		buildJob("seg", v1.JobTypeCellSegmentation, "main")))
	assert.NilError(t, err)
	h.waitWorkflowStatus(t, "wf_1", v1.WorkflowSucceeded)

	_, err = h.engine.GetWorkflow("t2", "wf_1")
	assert.Equal(t, schederrors.IsNotFound(err), true)
	assert.Equal(t, len(h.engine.ListWorkflows("t2")), 0)
	_, err = h.engine.GetJob("t2", "seg")
	assert.Equal(t, schederrors.IsNotFound(err), true)
	_, err = h.engine.CancelJob(context.Background(), "t2", "seg")
	assert.Equal(t, schederrors.IsNotFound(err), true)
}

func TestAmbiguousJobIdIsNotFound(t *testing.T) {
	h := newHarness(t, 4, 3, 64, tableFor(&stepExecutor{delay: time.Millisecond}))

	for _, workflowId := range []string{"wf_1", "wf_2"} {
		_, err := h.engine.Submit(context.Background(), buildWorkflow("t1", workflowId,
			buildJob("dup", v1.JobTypeCellSegmentation, "main")))
		assert.NilError(t, err)
		h.waitWorkflowStatus(t, workflowId, v1.WorkflowSucceeded)
	}

	_, err := h.engine.GetJob("t1", "dup")
	assert.Equal(t, schederrors.IsNotFound(err), true)
}

func TestInvariantViolationFreezesAndFlagsUnhealthy(t *testing.T) {
	h := newHarness(t, 4, 3, 64, tableFor(&stepExecutor{delay: time.Millisecond}))
	assert.Equal(t, h.engine.Healthy(), true)

	// Corrupt the registry behind the engine's back: two jobs running on
	// the same branch of one tenant.
	workflow := buildWorkflow("t1", "wf_bad",
		buildJob("a", v1.JobTypeCellSegmentation, "main"),
		buildJob("b", v1.JobTypeTissueMask, "main"))
	assert.NilError(t, h.registry.CreateWorkflow(workflow))
	running := v1.JobRunning
	for _, jobId := range []string{"a", "b"} {
		_, _, err := h.registry.UpdateJob(v1.JobRef{WorkflowId: "wf_bad", JobId: jobId},
			&v1.JobPatch{Status: &running})
		assert.NilError(t, err)
	}

	h.engine.verifyInvariants()
	assert.Equal(t, h.engine.Healthy(), false)
	assert.Equal(t, h.engine.frozen.Has("wf_bad"), true)
}
