/*
 * Copyright (c) 2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package handlers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"

	v1 "github.com/AMD-AIG-AIMA/inference-scheduler/pkg/apis/v1"
	"github.com/AMD-AIG-AIMA/inference-scheduler/pkg/handlers/types"
	apiutils "github.com/AMD-AIG-AIMA/inference-scheduler/pkg/utils"
)

// CreateWorkflow: builds a workflow from the request body and submits it to
// the scheduler. The response is the snapshot taken at admission, so every
// job still reads PENDING even when dispatch happens right away.
func (h *Handler) CreateWorkflow(c *gin.Context) {
	handle(c, h.createWorkflow)
}

func (h *Handler) createWorkflow(c *gin.Context) (interface{}, error) {
	req := &types.CreateWorkflowRequest{}
	if _, err := getBodyFromRequest(c.Request, req); err != nil {
		return nil, err
	}
	workflow := cvtToWorkflow(c.GetString(types.UserId), req)
	created, err := h.engine.Submit(c.Request.Context(), workflow)
	if err != nil {
		return nil, err
	}
	klog.Infof("workflow created, workflowId: %s, tenantId: %s, jobs: %d",
		created.WorkflowId, created.TenantId, len(created.Jobs))
	return cvtToWorkflowResponse(created, time.Now()), nil
}

// ListWorkflows returns the caller's workflows ordered by creation time.
func (h *Handler) ListWorkflows(c *gin.Context) {
	handle(c, h.listWorkflows)
}

func (h *Handler) listWorkflows(c *gin.Context) (interface{}, error) {
	workflows := h.engine.ListWorkflows(c.GetString(types.UserId))
	now := time.Now()
	result := make([]*types.WorkflowResponse, 0, len(workflows))
	for _, workflow := range workflows {
		result = append(result, cvtToWorkflowResponse(workflow, now))
	}
	return result, nil
}

func (h *Handler) GetWorkflow(c *gin.Context) {
	handle(c, h.getWorkflow)
}

func (h *Handler) getWorkflow(c *gin.Context) (interface{}, error) {
	workflowId := strings.TrimSpace(c.Param(types.WorkflowId))
	workflow, err := h.engine.GetWorkflow(c.GetString(types.UserId), workflowId)
	if err != nil {
		return nil, err
	}
	return cvtToWorkflowResponse(workflow, time.Now()), nil
}

func cvtToWorkflow(tenantId string, req *types.CreateWorkflowRequest) *v1.Workflow {
	workflowId := req.WorkflowId
	if workflowId == "" {
		workflowId = apiutils.GenerateWorkflowId()
	}
	workflow := &v1.Workflow{
		WorkflowId: workflowId,
		TenantId:   tenantId,
		Name:       req.Name,
		Status:     v1.WorkflowPending,
		CreatedAt:  time.Now(),
	}
	for _, job := range req.Jobs {
		jobId := job.JobId
		if jobId == "" {
			jobId = apiutils.GenerateJobId()
		}
		workflow.Jobs = append(workflow.Jobs, &v1.Job{
			JobId:      jobId,
			WorkflowId: workflowId,
			TenantId:   tenantId,
			JobType:    job.JobType,
			Branch:     job.Branch,
			DependsOn:  job.DependsOn,
			ImagePath:  job.ImagePath,
			Status:     v1.JobPending,
		})
	}
	return workflow
}

func cvtToWorkflowResponse(workflow *v1.Workflow, now time.Time) *types.WorkflowResponse {
	result := &types.WorkflowResponse{
		WorkflowId:    workflow.WorkflowId,
		Name:          workflow.Name,
		Status:        workflow.Status,
		Progress:      workflow.Progress(),
		JobCount:      len(workflow.Jobs),
		JobsCompleted: workflow.JobsCompleted(),
		CreatedAt:     workflow.CreatedAt,
		StartedAt:     workflow.StartedAt,
		CompletedAt:   workflow.FinishedAt,
		Jobs:          make([]types.JobView, 0, len(workflow.Jobs)),
	}
	for _, job := range workflow.Jobs {
		view := types.JobView{
			JobId:          job.JobId,
			JobType:        job.JobType,
			Status:         job.Status,
			Progress:       job.Progress,
			Branch:         job.Branch,
			TilesProcessed: job.TilesProcessed,
			TilesTotal:     job.TilesTotal,
			ErrorMessage:   job.ErrorMessage,
		}
		view.ElapsedTimeSeconds, view.EstimatedRemainingSeconds = jobTiming(job, now)
		result.Jobs = append(result.Jobs, view)
	}
	return result
}

// jobTiming derives the elapsed seconds and the remaining-time estimate for
// a job view. Elapsed stops counting once the job finished; the estimate
// extrapolates the observed rate and is absent before the first progress
// report and after completion.
func jobTiming(job *v1.Job, now time.Time) (*float64, *float64) {
	if job.StartedAt == nil {
		return nil, nil
	}
	end := now
	if job.FinishedAt != nil {
		end = *job.FinishedAt
	}
	elapsed := end.Sub(*job.StartedAt).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}
	var eta *float64
	if job.Status == v1.JobRunning && job.Progress > 0 && job.Progress < 1.0 {
		remaining := elapsed / job.Progress * (1.0 - job.Progress)
		eta = &remaining
	}
	return &elapsed, eta
}
