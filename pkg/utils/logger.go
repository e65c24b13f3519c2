/*
 * Copyright (C) 2025-2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package utils

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"
)

// Logger logs one line per request after completion, including any errors
// the handlers attached to the context.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		latency := time.Since(start)
		if len(c.Errors) > 0 {
			klog.Errorf("%s %s, status: %d, latency: %v, client: %s, errors: %s",
				c.Request.Method, c.Request.URL.Path, c.Writer.Status(), latency,
				c.ClientIP(), strings.Join(c.Errors.Errors(), "; "))
			return
		}
		klog.Infof("%s %s, status: %d, latency: %v, client: %s",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(), latency, c.ClientIP())
	}
}
