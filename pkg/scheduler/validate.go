/*
 * Copyright (C) 2025-2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package scheduler

import (
	"fmt"
	"strings"

	v1 "github.com/AMD-AIG-AIMA/inference-scheduler/pkg/apis/v1"
	schederrors "github.com/AMD-AIG-AIMA/inference-scheduler/pkg/errors"
	"github.com/AMD-AIG-AIMA/inference-scheduler/pkg/sets"
)

// validateWorkflow checks the structural rules of a submission. The
// filesystem is never touched here; image paths are opaque strings.
func validateWorkflow(workflow *v1.Workflow) error {
	if workflow.TenantId == "" {
		return schederrors.NewValidationFailed("tenant id is empty")
	}
	if workflow.WorkflowId == "" {
		return schederrors.NewValidationFailed("workflow id is empty")
	}
	if len(workflow.Jobs) == 0 {
		return schederrors.NewValidationFailed("workflow has no jobs")
	}

	jobIds := sets.NewSet()
	for _, job := range workflow.Jobs {
		if job.JobId == "" {
			return schederrors.NewValidationFailed("job id is empty")
		}
		if jobIds.Has(job.JobId) {
			return schederrors.NewValidationFailed(fmt.Sprintf("duplicate job id %s", job.JobId))
		}
		jobIds.Insert(job.JobId)
		if !v1.IsValidJobType(job.JobType) {
			return schederrors.NewValidationFailed(fmt.Sprintf("unknown job type %s for job %s", job.JobType, job.JobId))
		}
		if job.Branch == "" {
			return schederrors.NewValidationFailed(fmt.Sprintf("job %s has an empty branch", job.JobId))
		}
		if job.ImagePath == "" {
			return schederrors.NewValidationFailed(fmt.Sprintf("job %s has an empty image path", job.JobId))
		}
	}
	for _, job := range workflow.Jobs {
		for _, dependency := range job.DependsOn {
			if dependency == job.JobId {
				return schederrors.NewValidationFailed(fmt.Sprintf("job %s depends on itself", job.JobId))
			}
			if !jobIds.Has(dependency) {
				return schederrors.NewValidationFailed(fmt.Sprintf("job %s depends on unknown job %s", job.JobId, dependency))
			}
		}
	}
	if cycle := findCycle(workflow); len(cycle) > 0 {
		return schederrors.NewValidationFailed(fmt.Sprintf("dependency cycle: %s", strings.Join(cycle, " -> ")))
	}
	return nil
}

const (
	colorWhite = iota
	colorGray
	colorBlack
)

// findCycle runs a depth-first search over the dependency edges and returns
// one cycle as a job id path, or nil when the graph is acyclic.
func findCycle(workflow *v1.Workflow) []string {
	dependsOn := make(map[string][]string, len(workflow.Jobs))
	for _, job := range workflow.Jobs {
		dependsOn[job.JobId] = job.DependsOn
	}
	colors := make(map[string]int, len(workflow.Jobs))
	var stack []string
	var cycle []string

	var visit func(jobId string) bool
	visit = func(jobId string) bool {
		colors[jobId] = colorGray
		stack = append(stack, jobId)
		for _, dependency := range dependsOn[jobId] {
			switch colors[dependency] {
			case colorGray:
				// Close the loop for the error message.
				start := 0
				for i, id := range stack {
					if id == dependency {
						start = i
						break
					}
				}
				cycle = append(append(cycle, stack[start:]...), dependency)
				return true
			case colorWhite:
				if visit(dependency) {
					return true
				}
			}
		}
		stack = stack[:len(stack)-1]
		colors[jobId] = colorBlack
		return false
	}

	for _, job := range workflow.Jobs {
		if colors[job.JobId] == colorWhite && visit(job.JobId) {
			return cycle
		}
	}
	return nil
}
