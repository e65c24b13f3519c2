/*
 * Copyright (c) 2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	v1 "github.com/AMD-AIG-AIMA/inference-scheduler/pkg/apis/v1"
	schederrors "github.com/AMD-AIG-AIMA/inference-scheduler/pkg/errors"
	"github.com/AMD-AIG-AIMA/inference-scheduler/pkg/handlers/types"
	apiutils "github.com/AMD-AIG-AIMA/inference-scheduler/pkg/utils"
)

// Authenticate resolves the caller identity from the X-User-ID header and
// stores it on the request context. Requests without one are rejected.
func Authenticate(_ ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantId := strings.TrimSpace(c.GetHeader(v1.TenantHeader))
		if tenantId == "" {
			apiutils.AbortWithApiError(c, schederrors.NewTenantMissing())
			return
		}
		c.Set(types.UserId, tenantId)
	}
}
