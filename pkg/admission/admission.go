/*
 * Copyright (c) 2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package admission

import (
	"sync"

	"k8s.io/klog/v2"

	"github.com/AMD-AIG-AIMA/inference-scheduler/pkg/sets"
)

// Manager tracks the set of active tenants and enforces the active-user cap.
// A tenant is active from the moment it is admitted until the scheduler
// releases it, which happens once the tenant has no pending or running jobs.
type Manager struct {
	mu             sync.RWMutex
	maxActiveUsers int
	activeTenants  sets.Set
}

func NewManager(maxActiveUsers int) *Manager {
	return &Manager{
		maxActiveUsers: maxActiveUsers,
		activeTenants:  sets.NewSet(),
	}
}

// TryAdmit admits the tenant if it is already active or the set has room.
// Admission for an already-active tenant never reserves an extra slot.
func (m *Manager) TryAdmit(tenantId string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.activeTenants.Has(tenantId) {
		return true
	}
	if m.activeTenants.Len() >= m.maxActiveUsers {
		klog.Infof("tenant rejected, active user limit reached, tenant: %s, limit: %d",
			tenantId, m.maxActiveUsers)
		return false
	}
	m.activeTenants.Insert(tenantId)
	klog.Infof("tenant admitted, tenant: %s, active users: %d", tenantId, m.activeTenants.Len())
	return true
}

// Release removes the tenant from the active set. Releasing a tenant that is
// not active is a no-op.
func (m *Manager) Release(tenantId string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.activeTenants.Has(tenantId) {
		return
	}
	m.activeTenants.Delete(tenantId)
	klog.Infof("tenant released, tenant: %s, active users: %d", tenantId, m.activeTenants.Len())
}

// IsActive reports whether the tenant currently holds an admission slot.
func (m *Manager) IsActive(tenantId string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.activeTenants.Has(tenantId)
}

// ActiveUsers returns the current number of active tenants and the cap.
func (m *Manager) ActiveUsers() (int, int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.activeTenants.Len(), m.maxActiveUsers
}

// ActiveTenantList returns the active tenants in sorted order.
func (m *Manager) ActiveTenantList() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.activeTenants.List()
}
