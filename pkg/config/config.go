/*
 * Copyright (C) 2025-2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package config

import (
	"github.com/spf13/viper"
)

func SetValue(key string, value interface{}) {
	viper.Set(key, value)
}

// LoadConfig binds environment overrides and reads the optional yaml file.
// An empty path runs on defaults and environment alone.
func LoadConfig(path string) error {
	for key, env := range envBindings {
		// only errors on empty input
		_ = viper.BindEnv(key, env)
	}
	if path == "" {
		return nil
	}
	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")
	return viper.ReadInConfig()
}

func getString(key, defaultValue string) string {
	if !viper.IsSet(key) {
		return defaultValue
	}
	return viper.GetString(key)
}

func getInt(key string, defaultValue int) int {
	if !viper.IsSet(key) {
		return defaultValue
	}
	return viper.GetInt(key)
}

func GetServerPort() int {
	return getInt(serverPort, 8000)
}

// GetMaxWorkers bounds concurrently executing jobs across the system.
func GetMaxWorkers() int {
	return getInt(maxWorkers, 10)
}

// GetMaxActiveUsers bounds tenants with running or pending work.
func GetMaxActiveUsers() int {
	return getInt(maxActiveUsers, 3)
}

// GetEventMailboxSize is the per-subscriber bounded mailbox capacity.
func GetEventMailboxSize() int {
	return getInt(eventMailboxSize, 64)
}

// GetLatencyWindowSeconds is the sliding window for dashboard job latency.
func GetLatencyWindowSeconds() int {
	return getInt(latencyWindowSeconds, 60)
}

func GetResultStoragePath() string {
	return getString(resultStoragePath, "/tmp/inference_results")
}

// GetExecutorTileDelayMs is the simulated per-tile processing time.
func GetExecutorTileDelayMs() int {
	return getInt(executorTileDelayMs, 50)
}

func GetRateLimitGlobal() int {
	return getInt(rateLimitGlobal, 100)
}

func GetRateLimitPerTenant() int {
	return getInt(rateLimitPerTenant, 20)
}
