/*
 * Copyright (c) 2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package config

const (
	// server
	serverPrefix = "server."
	serverPort   = serverPrefix + "port"

	// scheduler
	schedulerPrefix = "scheduler."
	maxWorkers      = schedulerPrefix + "max_workers"
	maxActiveUsers  = schedulerPrefix + "max_active_users"

	// eventbus
	eventbusPrefix   = "eventbus."
	eventMailboxSize = eventbusPrefix + "mailbox_size"

	// metrics
	metricsPrefix        = "metrics."
	latencyWindowSeconds = metricsPrefix + "latency_window_seconds"

	// storage
	storagePrefix     = "storage."
	resultStoragePath = storagePrefix + "result_path"

	// executor
	executorPrefix      = "executor."
	executorTileDelayMs = executorPrefix + "tile_delay_ms"

	// rate_limit
	rateLimitPrefix    = "rate_limit."
	rateLimitGlobal    = rateLimitPrefix + "global_concurrency"
	rateLimitPerTenant = rateLimitPrefix + "per_tenant_concurrency"
)

// envBindings maps config keys to the environment variables that may
// override them, matching the names the deployment has always used.
var envBindings = map[string]string{
	serverPort:           "SERVER_PORT",
	maxWorkers:           "MAX_WORKERS",
	maxActiveUsers:       "MAX_ACTIVE_USERS",
	eventMailboxSize:     "EVENT_MAILBOX_SIZE",
	latencyWindowSeconds: "LATENCY_WINDOW_SECONDS",
	resultStoragePath:    "RESULT_STORAGE_PATH",
	executorTileDelayMs:  "TILE_DELAY_MS",
	rateLimitGlobal:      "RATE_LIMIT_GLOBAL",
	rateLimitPerTenant:   "RATE_LIMIT_PER_TENANT",
}
