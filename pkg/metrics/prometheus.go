/*
 * Copyright (C) 2025-2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "endpoint", "status_code"})
	httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0},
	}, []string{"method", "endpoint"})
	httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_errors_total",
		Help: "Total number of HTTP errors (5xx)",
	}, []string{"method", "endpoint"})
	queueDepth = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "queue_depth",
		Help: "Number of jobs waiting in queue",
	}, []string{"tenant_id", "branch_name"})
	workerActiveJobs = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "worker_active_jobs",
		Help: "Number of currently running jobs",
	}, []string{"tenant_id"})
	jobLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "job_latency_seconds",
		Help:    "Job execution latency in seconds",
		Buckets: []float64{1.0, 5.0, 10.0, 30.0, 60.0, 120.0, 300.0, 600.0},
	}, []string{"job_type", "branch", "tenant_id", "status"})
	jobsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "jobs_total",
		Help: "Total number of jobs processed",
	}, []string{"job_type", "status", "tenant_id"})
	activeUsers = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "active_users",
		Help: "Number of currently active users",
	})
	workflowProgress = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "workflow_progress",
		Help: "Workflow completion progress (0.0 to 1.0)",
	}, []string{"workflow_id", "tenant_id"})
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(httpErrorsTotal)
	prometheus.MustRegister(queueDepth)
	prometheus.MustRegister(workerActiveJobs)
	prometheus.MustRegister(jobLatencySeconds)
	prometheus.MustRegister(jobsTotal)
	prometheus.MustRegister(activeUsers)
	prometheus.MustRegister(workflowProgress)
}

// RecordHttpRequest tracks one finished HTTP request.
func RecordHttpRequest(method, endpoint string, statusCode int, durationSeconds float64) {
	httpRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint).Observe(durationSeconds)
	if statusCode >= 500 {
		httpErrorsTotal.WithLabelValues(method, endpoint).Inc()
	}
}

// SetQueueDepth updates the queued job count for one (tenant, branch) lane.
func SetQueueDepth(tenantId, branchName string, depth int) {
	queueDepth.WithLabelValues(tenantId, branchName).Set(float64(depth))
}

// DeleteQueueDepth drops the gauge series of a garbage collected lane.
func DeleteQueueDepth(tenantId, branchName string) {
	queueDepth.DeleteLabelValues(tenantId, branchName)
}

// SetWorkerActiveJobs updates the running job count for one tenant.
// The tenant_id label "global" carries the system-wide count.
func SetWorkerActiveJobs(tenantId string, count int) {
	workerActiveJobs.WithLabelValues(tenantId).Set(float64(count))
}

// RecordJobCompletion tracks one terminal job outcome.
func RecordJobCompletion(jobType, branch, tenantId, status string, durationSeconds float64) {
	jobsTotal.WithLabelValues(jobType, status, tenantId).Inc()
	if durationSeconds > 0 {
		jobLatencySeconds.WithLabelValues(jobType, branch, tenantId, status).Observe(durationSeconds)
	}
}

// SetActiveUsers updates the admitted tenant count.
func SetActiveUsers(count int) {
	activeUsers.Set(float64(count))
}

// SetWorkflowProgress updates a workflow's aggregate progress gauge.
func SetWorkflowProgress(workflowId, tenantId string, progress float64) {
	workflowProgress.WithLabelValues(workflowId, tenantId).Set(progress)
}

// DeleteWorkflowProgress drops the gauge series of a finished workflow.
func DeleteWorkflowProgress(workflowId, tenantId string) {
	workflowProgress.DeleteLabelValues(workflowId, tenantId)
}
