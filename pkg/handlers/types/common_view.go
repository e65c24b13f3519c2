/*
 * Copyright (c) 2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package types

const (
	WorkflowId = "workflowId"
	JobId      = "jobId"
	TenantId   = "tenantId"

	// UserId is the gin context key holding the authenticated tenant.
	UserId = "userId"
)
