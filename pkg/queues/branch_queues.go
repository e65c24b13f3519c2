/*
 * Copyright (C) 2025-2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package queues

import (
	"fmt"
	"sync"

	v1 "github.com/AMD-AIG-AIMA/inference-scheduler/pkg/apis/v1"
)

// Key identifies one serialization lane. Jobs sharing a key run one at a
// time; distinct keys are independent.
type Key struct {
	TenantId string
	Branch   string
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s", k.TenantId, k.Branch)
}

type branchQueue struct {
	waiting []v1.JobRef
	running bool
}

// Manager maintains one FIFO queue plus a running flag per (tenant, branch)
// key. The scheduler loop is the only caller of the mutating methods; depth
// snapshots are read concurrently by the metrics view.
type Manager struct {
	mu       sync.RWMutex
	branches map[Key]*branchQueue
}

func NewManager() *Manager {
	return &Manager{
		branches: make(map[Key]*branchQueue),
	}
}

// Enqueue appends the job to the key's FIFO queue.
func (m *Manager) Enqueue(key Key, ref v1.JobRef) {
	m.mu.Lock()
	defer m.mu.Unlock()
	queue, exists := m.branches[key]
	if !exists {
		queue = &branchQueue{}
		m.branches[key] = queue
	}
	queue.waiting = append(queue.waiting, ref)
}

// TakeIfIdle pops the head of the key's queue when the queue is non-empty
// and no job of the key is running, marking the key busy.
func (m *Manager) TakeIfIdle(key Key) (v1.JobRef, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	queue, exists := m.branches[key]
	if !exists || queue.running || len(queue.waiting) == 0 {
		return v1.JobRef{}, false
	}
	ref := queue.waiting[0]
	queue.waiting = queue.waiting[1:]
	queue.running = true
	return ref, true
}

// MarkDone clears the running flag after the key's in-flight job finished.
func (m *Manager) MarkDone(key Key) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if queue, exists := m.branches[key]; exists {
		queue.running = false
	}
}

// Remove deletes the first queued occurrence of the job, if any.
func (m *Manager) Remove(key Key, ref v1.JobRef) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	queue, exists := m.branches[key]
	if !exists {
		return false
	}
	for i, queued := range queue.waiting {
		if queued == ref {
			queue.waiting = append(queue.waiting[:i], queue.waiting[i+1:]...)
			return true
		}
	}
	return false
}

// IsRunning reports whether the key currently has an in-flight job.
func (m *Manager) IsRunning(key Key) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	queue, exists := m.branches[key]
	return exists && queue.running
}

// Depth returns the number of queued jobs for the key.
func (m *Manager) Depth(key Key) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if queue, exists := m.branches[key]; exists {
		return len(queue.waiting)
	}
	return 0
}

// TotalDepth returns the number of queued jobs across all keys.
func (m *Manager) TotalDepth() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := 0
	for _, queue := range m.branches {
		total += len(queue.waiting)
	}
	return total
}

// DepthByKey returns a snapshot of the queued depth per key. Keys that are
// only busy (running with an empty queue) are reported with depth zero.
func (m *Manager) DepthByKey() map[Key]int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make(map[Key]int, len(m.branches))
	for key, queue := range m.branches {
		result[key] = len(queue.waiting)
	}
	return result
}

// Keys returns all live keys in unspecified order.
func (m *Manager) Keys() []Key {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]Key, 0, len(m.branches))
	for key := range m.branches {
		keys = append(keys, key)
	}
	return keys
}

// GC drops keys that are idle with an empty queue and returns how many
// were reaped. Invoked by the scheduler at the end of a tick.
func (m *Manager) GC() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	reaped := 0
	for key, queue := range m.branches {
		if !queue.running && len(queue.waiting) == 0 {
			delete(m.branches, key)
			reaped++
		}
	}
	return reaped
}
