/*
 * Copyright (c) 2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package resolver

import (
	"sort"
	"sync"

	v1 "github.com/AMD-AIG-AIMA/inference-scheduler/pkg/apis/v1"
	"github.com/AMD-AIG-AIMA/inference-scheduler/pkg/sets"
)

type workflowGraph struct {
	orderIndex  map[string]int
	outstanding map[string]int
	successors  map[string]sets.Set
	terminal    sets.Set
}

// Resolver tracks, per workflow, how many predecessors each job is still
// waiting for, plus the reverse edges used for cascading failures. Graphs
// are registered at submission from an already validated workflow.
type Resolver struct {
	mu        sync.Mutex
	workflows map[string]*workflowGraph
}

func NewResolver() *Resolver {
	return &Resolver{
		workflows: make(map[string]*workflowGraph),
	}
}

// Register builds the dependency graph for the workflow.
func (r *Resolver) Register(workflow *v1.Workflow) {
	r.mu.Lock()
	defer r.mu.Unlock()
	graph := &workflowGraph{
		orderIndex:  make(map[string]int, len(workflow.Jobs)),
		outstanding: make(map[string]int, len(workflow.Jobs)),
		successors:  make(map[string]sets.Set),
		terminal:    sets.NewSet(),
	}
	for i, job := range workflow.Jobs {
		graph.orderIndex[job.JobId] = i
		graph.outstanding[job.JobId] = len(job.DependsOn)
		for _, predecessor := range job.DependsOn {
			if _, exists := graph.successors[predecessor]; !exists {
				graph.successors[predecessor] = sets.NewSet()
			}
			graph.successors[predecessor].Insert(job.JobId)
		}
	}
	r.workflows[workflow.WorkflowId] = graph
}

// Unregister drops the workflow's graph once the workflow is terminal.
func (r *Resolver) Unregister(workflowId string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.workflows, workflowId)
}

// InitiallyReady returns the jobs with no predecessors, in submission order.
func (r *Resolver) InitiallyReady(workflowId string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	graph, exists := r.workflows[workflowId]
	if !exists {
		return nil
	}
	var ready []string
	for jobId, count := range graph.outstanding {
		if count == 0 {
			ready = append(ready, jobId)
		}
	}
	graph.sortByOrder(ready)
	return ready
}

// OnSucceeded decrements the outstanding count of the job's successors and
// returns those that reached zero, in submission order. Must be called at
// most once per succeeded job.
func (r *Resolver) OnSucceeded(workflowId, jobId string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	graph, exists := r.workflows[workflowId]
	if !exists {
		return nil
	}
	var ready []string
	for _, successor := range graph.successors[jobId].UnsortedList() {
		graph.outstanding[successor]--
		if graph.outstanding[successor] == 0 {
			ready = append(ready, successor)
		}
	}
	graph.sortByOrder(ready)
	return ready
}

// TransitiveDependents returns every job reachable from the given one via
// successor edges, in breadth-first order. The job itself is excluded.
func (r *Resolver) TransitiveDependents(workflowId, jobId string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	graph, exists := r.workflows[workflowId]
	if !exists {
		return nil
	}
	visited := sets.NewSet()
	frontier := graph.successors[jobId].UnsortedList()
	graph.sortByOrder(frontier)
	var result []string
	for len(frontier) > 0 {
		var next []string
		for _, dependent := range frontier {
			if visited.Has(dependent) {
				continue
			}
			visited.Insert(dependent)
			result = append(result, dependent)
			next = append(next, graph.successors[dependent].UnsortedList()...)
		}
		graph.sortByOrder(next)
		frontier = next
	}
	return result
}

// MarkTerminal records that the job reached a terminal status. Idempotent.
func (r *Resolver) MarkTerminal(workflowId, jobId string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if graph, exists := r.workflows[workflowId]; exists {
		graph.terminal.Insert(jobId)
	}
}

// IsWorkflowDone reports whether every job of the workflow is terminal.
func (r *Resolver) IsWorkflowDone(workflowId string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	graph, exists := r.workflows[workflowId]
	if !exists {
		return false
	}
	return graph.terminal.Len() == len(graph.orderIndex)
}

func (g *workflowGraph) sortByOrder(jobIds []string) {
	sort.Slice(jobIds, func(i, j int) bool {
		return g.orderIndex[jobIds[i]] < g.orderIndex[jobIds[j]]
	})
}
