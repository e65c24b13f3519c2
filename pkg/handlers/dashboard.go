/*
 * Copyright (c) 2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package handlers

import (
	"github.com/gin-gonic/gin"
)

// GetDashboard returns the aggregated scheduler view: worker occupancy,
// queue depths, completion latency and admission state.
func (h *Handler) GetDashboard(c *gin.Context) {
	handle(c, h.getDashboard)
}

func (h *Handler) getDashboard(c *gin.Context) (interface{}, error) {
	return h.view.Dashboard(), nil
}
