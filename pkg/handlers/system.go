/*
 * Copyright (c) 2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/AMD-AIG-AIMA/inference-scheduler/pkg/handlers/types"
)

const (
	apiTitle   = "Workflow Scheduler API"
	apiVersion = "1.0.0"
)

func (h *Handler) GetHealth(c *gin.Context) {
	handle(c, h.getHealth)
}

func (h *Handler) getHealth(c *gin.Context) (interface{}, error) {
	return h.view.Health(), nil
}

func (h *Handler) GetApiInfo(c *gin.Context) {
	handle(c, h.getApiInfo)
}

func (h *Handler) getApiInfo(c *gin.Context) (interface{}, error) {
	return &types.ApiInfoResponse{Message: apiTitle, Version: apiVersion}, nil
}
