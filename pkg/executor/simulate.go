/*
 * Copyright (c) 2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package executor

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	v1 "github.com/AMD-AIG-AIMA/inference-scheduler/pkg/apis/v1"
	"github.com/AMD-AIG-AIMA/inference-scheduler/pkg/storage"
)

const (
	minTiles   = 24
	tileSpread = 40
)

// SegmentationResult is the document written for cell segmentation jobs.
type SegmentationResult struct {
	JobId          string `json:"job_id"`
	ImagePath      string `json:"image_path"`
	TotalCells     int    `json:"total_cells"`
	TilesProcessed int    `json:"tiles_processed"`
	TilesTotal     int    `json:"tiles_total"`
	Method         string `json:"method"`
}

// TissueMaskResult is the document written for tissue mask jobs.
type TissueMaskResult struct {
	JobId            string  `json:"job_id"`
	ImagePath        string  `json:"image_path"`
	TotalRegions     int     `json:"total_regions"`
	TissuePercentage float64 `json:"tissue_percentage"`
	TilesProcessed   int     `json:"tiles_processed"`
	TilesTotal       int     `json:"tiles_total"`
	Method           string  `json:"method"`
}

// NewSimulatedTable returns the dispatch table with the built-in simulated
// executors. They walk a pseudo-random number of tiles, sleeping tileDelay
// per tile and reporting progress after each one, then write their result
// document to the store.
func NewSimulatedTable(store *storage.Store, tileDelay time.Duration) *Table {
	table := NewTable()
	table.Register(v1.JobTypeCellSegmentation, &cellSegmentation{store: store, tileDelay: tileDelay})
	table.Register(v1.JobTypeTissueMask, &tissueMask{store: store, tileDelay: tileDelay})
	return table
}

type cellSegmentation struct {
	store     *storage.Store
	tileDelay time.Duration
}

func (e *cellSegmentation) Execute(ctx context.Context, job *v1.Job, sink ProgressSink) (string, error) {
	tilesTotal := minTiles + rand.Intn(tileSpread)
	totalCells := 0
	for processed := 1; processed <= tilesTotal; processed++ {
		if err := waitTile(ctx, e.tileDelay); err != nil {
			return "", err
		}
		totalCells += 30 + rand.Intn(170)
		sink(float64(processed)/float64(tilesTotal), processed, tilesTotal)
	}
	return e.store.SaveSegmentationResults(job.JobId, &SegmentationResult{
		JobId:          job.JobId,
		ImagePath:      job.ImagePath,
		TotalCells:     totalCells,
		TilesProcessed: tilesTotal,
		TilesTotal:     tilesTotal,
		Method:         "tiled_parallel",
	})
}

type tissueMask struct {
	store     *storage.Store
	tileDelay time.Duration
}

func (e *tissueMask) Execute(ctx context.Context, job *v1.Job, sink ProgressSink) (string, error) {
	tilesTotal := minTiles + rand.Intn(tileSpread)
	totalRegions := 0
	for processed := 1; processed <= tilesTotal; processed++ {
		if err := waitTile(ctx, e.tileDelay); err != nil {
			return "", err
		}
		totalRegions += rand.Intn(6)
		sink(float64(processed)/float64(tilesTotal), processed, tilesTotal)
	}
	return e.store.SaveTissueMaskResults(job.JobId, &TissueMaskResult{
		JobId:            job.JobId,
		ImagePath:        job.ImagePath,
		TotalRegions:     totalRegions,
		TissuePercentage: 20 + rand.Float64()*60,
		TilesProcessed:   tilesTotal,
		TilesTotal:       tilesTotal,
		Method:           "tiled_parallel",
	})
}

func waitTile(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		select {
		case <-ctx.Done():
			return fmt.Errorf("execution aborted: %v", ctx.Err())
		default:
		}
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("execution aborted: %v", ctx.Err())
	case <-timer.C:
		return nil
	}
}
