/*
 * Copyright (c) 2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package scheduler

import (
	"strings"
	"testing"

	"gotest.tools/assert"

	v1 "github.com/AMD-AIG-AIMA/inference-scheduler/pkg/apis/v1"
	schederrors "github.com/AMD-AIG-AIMA/inference-scheduler/pkg/errors"
)

func TestValidateWorkflow(t *testing.T) {
	tests := []struct {
		name     string
		workflow *v1.Workflow
		wantErr  string
	}{
		{
			name: "valid_diamond",
			workflow: buildWorkflow("t1", "wf_1",
				buildJob("a", v1.JobTypeCellSegmentation, "main"),
				buildJob("b", v1.JobTypeTissueMask, "left", "a"),
				buildJob("c", v1.JobTypeTissueMask, "right", "a"),
				buildJob("d", v1.JobTypeCellSegmentation, "main", "b", "c"),
			),
		},
		{
			name:     "empty_tenant",
			workflow: buildWorkflow("", "wf_1", buildJob("a", v1.JobTypeCellSegmentation, "main")),
			wantErr:  "tenant id is empty",
		},
		{
			name:     "empty_workflow_id",
			workflow: buildWorkflow("t1", "", buildJob("a", v1.JobTypeCellSegmentation, "main")),
			wantErr:  "workflow id is empty",
		},
		{
			name:     "no_jobs",
			workflow: buildWorkflow("t1", "wf_1"),
			wantErr:  "workflow has no jobs",
		},
		{
			name: "duplicate_job_id",
			workflow: buildWorkflow("t1", "wf_1",
				buildJob("a", v1.JobTypeCellSegmentation, "main"),
				buildJob("a", v1.JobTypeTissueMask, "other"),
			),
			wantErr: "duplicate job id a",
		},
		{
			name:     "unknown_job_type",
			workflow: buildWorkflow("t1", "wf_1", buildJob("a", "nuclei_detection", "main")),
			wantErr:  "unknown job type nuclei_detection",
		},
		{
			name:     "empty_branch",
			workflow: buildWorkflow("t1", "wf_1", buildJob("a", v1.JobTypeCellSegmentation, "")),
			wantErr:  "empty branch",
		},
		{
			name: "empty_image_path",
			workflow: func() *v1.Workflow {
				job := buildJob("a", v1.JobTypeCellSegmentation, "main")
				job.ImagePath = ""
				return buildWorkflow("t1", "wf_1", job)
			}(),
			wantErr: "empty image path",
		},
		{
			name:     "self_dependency",
			workflow: buildWorkflow("t1", "wf_1", buildJob("a", v1.JobTypeCellSegmentation, "main", "a")),
			wantErr:  "depends on itself",
		},
		{
			name: "unknown_dependency",
			workflow: buildWorkflow("t1", "wf_1",
				buildJob("a", v1.JobTypeCellSegmentation, "main", "ghost")),
			wantErr: "depends on unknown job ghost",
		},
		{
			name: "two_job_cycle",
			workflow: buildWorkflow("t1", "wf_1",
				buildJob("a", v1.JobTypeCellSegmentation, "main", "b"),
				buildJob("b", v1.JobTypeTissueMask, "main", "a"),
			),
			wantErr: "dependency cycle",
		},
		{
			name: "long_cycle",
			workflow: buildWorkflow("t1", "wf_1",
				buildJob("a", v1.JobTypeCellSegmentation, "main", "c"),
				buildJob("b", v1.JobTypeTissueMask, "main", "a"),
				buildJob("c", v1.JobTypeTissueMask, "main", "b"),
			),
			wantErr: "dependency cycle",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateWorkflow(tt.workflow)
			if tt.wantErr == "" {
				assert.NilError(t, err)
				return
			}
			assert.Equal(t, schederrors.IsValidationFailed(err), true)
			assert.Equal(t, strings.Contains(err.Error(), tt.wantErr), true)
		})
	}
}

func TestFindCycle(t *testing.T) {
	workflow := buildWorkflow("t1", "wf_1",
		buildJob("a", v1.JobTypeCellSegmentation, "main", "c"),
		buildJob("b", v1.JobTypeTissueMask, "main", "a"),
		buildJob("c", v1.JobTypeTissueMask, "main", "b"),
	)
	cycle := findCycle(workflow)
	assert.Equal(t, len(cycle) >= 3, true)
	// The path closes on the job it started from.
	assert.Equal(t, cycle[0], cycle[len(cycle)-1])

	acyclic := buildWorkflow("t1", "wf_2",
		buildJob("a", v1.JobTypeCellSegmentation, "main"),
		buildJob("b", v1.JobTypeTissueMask, "main", "a"),
	)
	assert.Equal(t, len(findCycle(acyclic)), 0)
}
