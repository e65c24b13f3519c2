/*
 * Copyright (c) 2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"k8s.io/klog/v2"

	jsonutils "github.com/AMD-AIG-AIMA/inference-scheduler/pkg/json"
)

const (
	segmentationSuffix = "_segmentation.json"
	tissueMaskSuffix   = "_tissue_mask.json"
)

// Store persists executor result documents as JSON files under a single
// root directory. Files are named {job_id}_segmentation.json or
// {job_id}_tissue_mask.json, matching what the results endpoint serves.
type Store struct {
	resultPath string
}

func NewStore(resultPath string) (*Store, error) {
	if err := os.MkdirAll(resultPath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create result directory %s: %w", resultPath, err)
	}
	return &Store{resultPath: resultPath}, nil
}

// SaveSegmentationResults writes the segmentation document and returns the
// file path.
func (s *Store) SaveSegmentationResults(jobId string, doc interface{}) (string, error) {
	return s.save(jobId+segmentationSuffix, doc)
}

// SaveTissueMaskResults writes the tissue mask document and returns the
// file path.
func (s *Store) SaveTissueMaskResults(jobId string, doc interface{}) (string, error) {
	return s.save(jobId+tissueMaskSuffix, doc)
}

// LoadResults loads whichever result document exists for the job,
// trying segmentation first. The second return reports whether a
// document was found.
func (s *Store) LoadResults(jobId string) (map[string]interface{}, bool, error) {
	for _, suffix := range []string{segmentationSuffix, tissueMaskSuffix} {
		data, err := os.ReadFile(filepath.Join(s.resultPath, jobId+suffix))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, false, err
		}
		var doc map[string]interface{}
		if err = jsonutils.Unmarshal(data, &doc); err != nil {
			return nil, false, fmt.Errorf("failed to decode results of job %s: %w", jobId, err)
		}
		return doc, true, nil
	}
	return nil, false, nil
}

func (s *Store) save(filename string, doc interface{}) (string, error) {
	data := jsonutils.MarshalIndentSilently(doc)
	if data == nil {
		return "", fmt.Errorf("failed to encode result document %s", filename)
	}
	path := filepath.Join(s.resultPath, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	klog.V(4).Infof("result document written, path: %s, bytes: %d", path, len(data))
	return path, nil
}
