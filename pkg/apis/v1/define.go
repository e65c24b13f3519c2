/*
 * Copyright (c) 2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package v1

const (
	// TenantHeader carries the caller identity on stateless API routes.
	TenantHeader = "X-User-ID"

	// WorkflowIdPrefix prefixes generated workflow identifiers.
	WorkflowIdPrefix = "wf_"

	// JobIdPrefix prefixes job identifiers generated for jobs submitted
	// without one.
	JobIdPrefix = "job_"

	// UpstreamFailedMessage formats the error set on dependents of a FAILED job.
	UpstreamFailedMessage = "upstream failure: %s"
	// UpstreamCancelledMessage is set on dependents of a CANCELLED job.
	UpstreamCancelledMessage = "upstream cancelled"
)
