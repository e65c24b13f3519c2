/*
 * Copyright (c) 2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AMD-AIG-AIMA/inference-scheduler/pkg/metrics"
)

const metricsPath = "/metrics"

// Metrics records request count, latency and error counters for every
// route except the Prometheus endpoint itself. The endpoint label uses the
// route pattern so path parameters do not explode the cardinality.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == metricsPath {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			// Unmatched routes all fold into one label value.
			endpoint = "unmatched"
		}
		metrics.RecordHttpRequest(c.Request.Method, endpoint,
			c.Writer.Status(), time.Since(start).Seconds())
	}
}
