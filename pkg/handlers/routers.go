/*
 * Copyright (C) 2025-2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AMD-AIG-AIMA/inference-scheduler/pkg/handlers/middleware"
	"github.com/AMD-AIG-AIMA/inference-scheduler/pkg/handlers/types"
)

// InitWorkflowRouters initializes the workflow related routes.
func InitWorkflowRouters(e *gin.Engine, h *Handler, limiter *middleware.Limiter) {
	group := e.Group("/api/workflows", middleware.Authenticate(), middleware.RateLimit(limiter))
	{
		group.POST("", h.CreateWorkflow)
		group.GET("", h.ListWorkflows)
		group.GET(fmt.Sprintf(":%s", types.WorkflowId), h.GetWorkflow)
	}
}

// InitJobRouters initializes the job related routes.
func InitJobRouters(e *gin.Engine, h *Handler, limiter *middleware.Limiter) {
	group := e.Group("/api/jobs", middleware.Authenticate(), middleware.RateLimit(limiter))
	{
		group.GET(fmt.Sprintf(":%s", types.JobId), h.GetJob)
		group.GET(fmt.Sprintf(":%s/results", types.JobId), h.GetJobResults)
		group.DELETE(fmt.Sprintf(":%s", types.JobId), h.CancelJob)
	}
}

// InitProgressRouters initializes the progress routes. The WebSocket route
// carries the tenant in the path and stays off the concurrency limiter: a
// subscription holds its connection far longer than any request budget.
func InitProgressRouters(e *gin.Engine, h *Handler, limiter *middleware.Limiter) {
	group := e.Group("/api/progress", middleware.Authenticate(), middleware.RateLimit(limiter))
	{
		group.GET(fmt.Sprintf("workflow/:%s", types.WorkflowId), h.GetWorkflowProgress)
	}
	e.GET(fmt.Sprintf("/api/progress/ws/:%s", types.TenantId), h.WatchProgress)
}

// InitMetricsRouters initializes the dashboard route. The dashboard is a
// system-wide view and carries no tenant scope.
func InitMetricsRouters(e *gin.Engine, h *Handler, limiter *middleware.Limiter) {
	group := e.Group("/api/metrics", middleware.RateLimit(limiter))
	{
		group.GET("dashboard", h.GetDashboard)
	}
}

// InitSystemRouters initializes the unauthenticated service routes.
func InitSystemRouters(e *gin.Engine, h *Handler) {
	e.GET("/", h.GetApiInfo)
	e.GET("/health", h.GetHealth)
	e.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
