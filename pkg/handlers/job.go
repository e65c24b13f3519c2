/*
 * Copyright (c) 2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"

	v1 "github.com/AMD-AIG-AIMA/inference-scheduler/pkg/apis/v1"
	schederrors "github.com/AMD-AIG-AIMA/inference-scheduler/pkg/errors"
	"github.com/AMD-AIG-AIMA/inference-scheduler/pkg/handlers/types"
)

func (h *Handler) GetJob(c *gin.Context) {
	handle(c, h.getJob)
}

func (h *Handler) getJob(c *gin.Context) (interface{}, error) {
	jobId := strings.TrimSpace(c.Param(types.JobId))
	job, err := h.engine.GetJob(c.GetString(types.UserId), jobId)
	if err != nil {
		return nil, err
	}
	return cvtToJobResponse(job), nil
}

// GetJobResults: reads the stored result document of a SUCCEEDED job.
func (h *Handler) GetJobResults(c *gin.Context) {
	handle(c, h.getJobResults)
}

func (h *Handler) getJobResults(c *gin.Context) (interface{}, error) {
	jobId := strings.TrimSpace(c.Param(types.JobId))
	job, err := h.engine.GetJob(c.GetString(types.UserId), jobId)
	if err != nil {
		return nil, err
	}
	if job.ResultPath == "" {
		return nil, schederrors.NewNotFoundWithMessage("Job results not available yet")
	}
	results, found, err := h.store.LoadResults(job.JobId)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, schederrors.NewNotFoundWithMessage("Job results file not found")
	}
	return &types.JobResultsResponse{
		JobId:      job.JobId,
		ResultPath: job.ResultPath,
		Results:    results,
	}, nil
}

// CancelJob: cancels a PENDING job. Running jobs are never interrupted;
// cancelling one returns not_cancellable.
func (h *Handler) CancelJob(c *gin.Context) {
	handle(c, h.cancelJob)
}

func (h *Handler) cancelJob(c *gin.Context) (interface{}, error) {
	jobId := strings.TrimSpace(c.Param(types.JobId))
	job, err := h.engine.CancelJob(c.Request.Context(), c.GetString(types.UserId), jobId)
	if err != nil {
		return nil, err
	}
	klog.Infof("job cancelled, jobId: %s, workflowId: %s, tenantId: %s",
		job.JobId, job.WorkflowId, job.TenantId)
	return &types.CancelJobResponse{JobId: job.JobId, Status: job.Status}, nil
}

func cvtToJobResponse(job *v1.Job) *types.JobResponse {
	return &types.JobResponse{
		JobId:          job.JobId,
		WorkflowId:     job.WorkflowId,
		JobType:        job.JobType,
		Status:         job.Status,
		Branch:         job.Branch,
		Progress:       job.Progress,
		TilesProcessed: job.TilesProcessed,
		TilesTotal:     job.TilesTotal,
		StartedAt:      job.StartedAt,
		CompletedAt:    job.FinishedAt,
		ResultPath:     job.ResultPath,
		ErrorMessage:   job.ErrorMessage,
	}
}
