/*
 * Copyright (c) 2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AMD-AIG-AIMA/inference-scheduler/pkg/eventbus"
	"github.com/AMD-AIG-AIMA/inference-scheduler/pkg/metrics"
	"github.com/AMD-AIG-AIMA/inference-scheduler/pkg/scheduler"
	"github.com/AMD-AIG-AIMA/inference-scheduler/pkg/storage"
	apiutils "github.com/AMD-AIG-AIMA/inference-scheduler/pkg/utils"
)

var (
	jsonContentType = "application/json; charset=utf-8"
)

type Handler struct {
	engine *scheduler.Engine
	store  *storage.Store
	view   *metrics.View
	bus    *eventbus.Bus
}

func NewHandler(engine *scheduler.Engine, store *storage.Store,
	view *metrics.View, bus *eventbus.Bus) *Handler {
	return &Handler{
		engine: engine,
		store:  store,
		view:   view,
		bus:    bus,
	}
}

type handleFunc func(*gin.Context) (interface{}, error)

func handle(c *gin.Context, fn handleFunc) {
	rsp, err := fn(c)
	if err != nil {
		apiutils.AbortWithApiError(c, err)
		return
	}
	code := http.StatusOK
	// If a status was previously set, use that status in the response.
	if c.Writer.Status() > 0 {
		code = c.Writer.Status()
	}
	switch rspType := rsp.(type) {
	case []byte:
		c.Data(code, jsonContentType, rspType)
	case string:
		c.Data(code, jsonContentType, []byte(rspType))
	default:
		c.JSON(code, rspType)
	}
}

func getBodyFromRequest(req *http.Request, bodyStruct interface{}) ([]byte, error) {
	return apiutils.ParseRequestBody(req, bodyStruct)
}
