/*
 * Copyright (c) 2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package middleware

import (
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"

	v1 "github.com/AMD-AIG-AIMA/inference-scheduler/pkg/apis/v1"
	schederrors "github.com/AMD-AIG-AIMA/inference-scheduler/pkg/errors"
	apiutils "github.com/AMD-AIG-AIMA/inference-scheduler/pkg/utils"
)

const anonymousTenant = "anonymous"

// Limiter bounds the number of in-flight requests, globally and per tenant.
// Tenant semaphores are created on first use and never reclaimed; the
// population is small and bounded by the caller set.
type Limiter struct {
	global    *semaphore.Weighted
	perTenant int64

	mu      sync.Mutex
	tenants map[string]*semaphore.Weighted
}

func NewLimiter(globalLimit, perTenantLimit int) *Limiter {
	return &Limiter{
		global:    semaphore.NewWeighted(int64(globalLimit)),
		perTenant: int64(perTenantLimit),
		tenants:   make(map[string]*semaphore.Weighted),
	}
}

func (l *Limiter) tenant(tenantId string) *semaphore.Weighted {
	l.mu.Lock()
	defer l.mu.Unlock()
	sem, exists := l.tenants[tenantId]
	if !exists {
		sem = semaphore.NewWeighted(l.perTenant)
		l.tenants[tenantId] = sem
	}
	return sem
}

// RateLimit holds a global and a per-tenant concurrency slot for the
// duration of the request. Acquisition blocks until capacity frees or the
// client gives up, at which point too_many_requests is returned.
func RateLimit(limiter *Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if err := limiter.global.Acquire(ctx, 1); err != nil {
			apiutils.AbortWithApiError(c,
				schederrors.NewTooManyRequests("the server is at its request concurrency limit"))
			return
		}
		defer limiter.global.Release(1)

		tenantId := c.GetHeader(v1.TenantHeader)
		if tenantId == "" {
			tenantId = anonymousTenant
		}
		sem := limiter.tenant(tenantId)
		if err := sem.Acquire(ctx, 1); err != nil {
			apiutils.AbortWithApiError(c,
				schederrors.NewTooManyRequests("the tenant is at its request concurrency limit"))
			return
		}
		defer sem.Release(1)

		c.Next()
	}
}
