/*
 * Copyright (C) 2025-2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package metrics

import (
	"time"

	"github.com/AMD-AIG-AIMA/inference-scheduler/pkg/admission"
	"github.com/AMD-AIG-AIMA/inference-scheduler/pkg/queues"
	"github.com/AMD-AIG-AIMA/inference-scheduler/pkg/registry"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

type ActiveWorkers struct {
	Global   int            `json:"global"`
	ByTenant map[string]int `json:"by_tenant"`
	Max      int            `json:"max"`
}

type QueueDepth struct {
	Total    int                       `json:"total"`
	ByTenant map[string]int            `json:"by_tenant"`
	ByBranch map[string]map[string]int `json:"by_branch"`
}

type JobLatency struct {
	AverageSeconds float64 `json:"average_seconds"`
	AverageMinutes float64 `json:"average_minutes"`
}

type ActiveUsers struct {
	Count int `json:"count"`
	Max   int `json:"max"`
}

type SystemHealth struct {
	Status      string `json:"status"`
	RunningJobs int    `json:"running_jobs"`
	QueueDepth  int    `json:"queue_depth"`
}

// Dashboard is a point-in-time view of scheduler load assembled for the
// monitoring endpoint. Every field is computed from live state, nothing
// is cached between calls.
type Dashboard struct {
	ActiveWorkers ActiveWorkers `json:"active_workers"`
	QueueDepth    QueueDepth    `json:"queue_depth"`
	JobLatency    JobLatency    `json:"job_latency"`
	ActiveUsers   ActiveUsers   `json:"active_users"`
	SystemHealth  SystemHealth  `json:"system_health"`
}

type Health struct {
	Status      string `json:"status"`
	ActiveUsers int    `json:"active_users"`
	RunningJobs int    `json:"running_jobs"`
	QueueDepth  int    `json:"queue_depth"`
}

// View renders monitoring snapshots from the live scheduler components.
type View struct {
	registry   *registry.Registry
	queues     *queues.Manager
	admission  *admission.Manager
	maxWorkers int
	window     time.Duration
	healthy    func() bool
}

func NewView(reg *registry.Registry, q *queues.Manager, adm *admission.Manager,
	maxWorkers int, window time.Duration, healthy func() bool) *View {
	return &View{
		registry:   reg,
		queues:     q,
		admission:  adm,
		maxWorkers: maxWorkers,
		window:     window,
		healthy:    healthy,
	}
}

func (v *View) Dashboard() *Dashboard {
	running, runningByTenant := v.registry.RunningJobs()
	total, byTenant, byBranch := v.queueDepths()
	count, max := v.admission.ActiveUsers()

	return &Dashboard{
		ActiveWorkers: ActiveWorkers{
			Global:   running,
			ByTenant: runningByTenant,
			Max:      v.maxWorkers,
		},
		QueueDepth: QueueDepth{
			Total:    total,
			ByTenant: byTenant,
			ByBranch: byBranch,
		},
		JobLatency:  v.latency(time.Now()),
		ActiveUsers: ActiveUsers{Count: count, Max: max},
		SystemHealth: SystemHealth{
			Status:      v.status(),
			RunningJobs: running,
			QueueDepth:  total,
		},
	}
}

func (v *View) Health() *Health {
	running, _ := v.registry.RunningJobs()
	count, _ := v.admission.ActiveUsers()
	return &Health{
		Status:      v.status(),
		ActiveUsers: count,
		RunningJobs: running,
		QueueDepth:  v.queues.TotalDepth(),
	}
}

// latency averages the durations of jobs that finished inside the
// sliding window ending at now. An empty window reports zero.
func (v *View) latency(now time.Time) JobLatency {
	durations := v.registry.JobDurationsSince(now.Add(-v.window))
	if len(durations) == 0 {
		return JobLatency{}
	}
	var sum time.Duration
	for _, d := range durations {
		sum += d
	}
	avg := sum.Seconds() / float64(len(durations))
	return JobLatency{
		AverageSeconds: avg,
		AverageMinutes: avg / 60,
	}
}

func (v *View) queueDepths() (int, map[string]int, map[string]map[string]int) {
	total := 0
	byTenant := map[string]int{}
	byBranch := map[string]map[string]int{}
	for key, depth := range v.queues.DepthByKey() {
		if depth == 0 {
			continue
		}
		total += depth
		byTenant[key.TenantId] += depth
		tenants, exists := byBranch[key.Branch]
		if !exists {
			tenants = map[string]int{}
			byBranch[key.Branch] = tenants
		}
		tenants[key.TenantId] += depth
	}
	return total, byTenant, byBranch
}

func (v *View) status() string {
	if v.healthy != nil && !v.healthy() {
		return StatusUnhealthy
	}
	return StatusHealthy
}
