/*
 * Copyright (c) 2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"k8s.io/klog/v2"

	v1 "github.com/AMD-AIG-AIMA/inference-scheduler/pkg/apis/v1"
	"github.com/AMD-AIG-AIMA/inference-scheduler/pkg/handlers/types"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Allow Cross-Origin Access
		return true
	},
}

func (h *Handler) GetWorkflowProgress(c *gin.Context) {
	handle(c, h.getWorkflowProgress)
}

func (h *Handler) getWorkflowProgress(c *gin.Context) (interface{}, error) {
	workflowId := strings.TrimSpace(c.Param(types.WorkflowId))
	workflow, err := h.engine.GetWorkflow(c.GetString(types.UserId), workflowId)
	if err != nil {
		return nil, err
	}
	return cvtToWorkflowProgress(workflow), nil
}

// WatchProgress upgrades the connection to a WebSocket and forwards the
// tenant's event stream until the client disconnects. Inbound frames are
// answered with a pong envelope to keep the connection alive.
func (h *Handler) WatchProgress(c *gin.Context) {
	tenantId := strings.TrimSpace(c.Param(types.TenantId))
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		klog.ErrorS(err, "failed to upgrade websocket", "tenantId", tenantId)
		return
	}
	defer conn.Close()

	sub := h.bus.Subscribe(tenantId)
	defer h.bus.Unsubscribe(sub)
	klog.Infof("progress subscriber connected, tenantId: %s", tenantId)

	// Gorilla connections allow a single reader and a single writer; the
	// read loop only signals, all writes happen below.
	inbound := make(chan struct{}, 8)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
			select {
			case inbound <- struct{}{}:
			default:
			}
		}
	}()

	for {
		select {
		case event := <-sub.Events():
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		case <-inbound:
			if err := conn.WriteJSON(gin.H{"type": "pong"}); err != nil {
				return
			}
		case <-done:
			klog.Infof("progress subscriber disconnected, tenantId: %s", tenantId)
			return
		}
	}
}

func cvtToWorkflowProgress(workflow *v1.Workflow) *types.WorkflowProgress {
	result := &types.WorkflowProgress{
		WorkflowId:    workflow.WorkflowId,
		Progress:      workflow.Progress(),
		Status:        workflow.Status,
		JobsCompleted: workflow.JobsCompleted(),
		JobsTotal:     len(workflow.Jobs),
		ActiveJobs:    make([]string, 0),
	}
	for _, job := range workflow.Jobs {
		if job.Status == v1.JobRunning {
			result.ActiveJobs = append(result.ActiveJobs, job.JobId)
		}
	}
	return result
}
