/*
 * Copyright (C) 2025-2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/AMD-AIG-AIMA/inference-scheduler/pkg/config"
	schederrors "github.com/AMD-AIG-AIMA/inference-scheduler/pkg/errors"
	"github.com/AMD-AIG-AIMA/inference-scheduler/pkg/handlers/middleware"
	apiutils "github.com/AMD-AIG-AIMA/inference-scheduler/pkg/utils"
)

// InitHttpHandlers: initializes the HTTP handlers for the API server.
// It creates a new Gin engine, sets up middleware including logging,
// recovery, CORS and request metrics, and registers all API routes.
// Returns the configured Gin engine.
func InitHttpHandlers(h *Handler) *gin.Engine {
	engine := gin.New()
	engine.Use(apiutils.Logger(), middleware.Cors(), middleware.Metrics(), gin.Recovery())
	engine.NoRoute(func(c *gin.Context) {
		apiutils.AbortWithApiError(c, schederrors.NewNotFoundWithMessage(c.Request.RequestURI+" not found"))
	})

	limiter := middleware.NewLimiter(config.GetRateLimitGlobal(), config.GetRateLimitPerTenant())
	InitWorkflowRouters(engine, h, limiter)
	InitJobRouters(engine, h, limiter)
	InitProgressRouters(engine, h, limiter)
	InitMetricsRouters(engine, h, limiter)
	InitSystemRouters(engine, h)
	return engine
}
