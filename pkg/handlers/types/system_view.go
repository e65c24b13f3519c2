/*
 * Copyright (c) 2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package types

type ApiInfoResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
}
