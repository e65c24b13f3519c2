/*
 * Copyright (c) 2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package v1

// DeepCopy returns a copy sharing no mutable state with the receiver.
// Snapshots handed out of the registry rely on this.
func (j *Job) DeepCopy() *Job {
	if j == nil {
		return nil
	}
	out := *j
	if j.DependsOn != nil {
		out.DependsOn = make([]string, len(j.DependsOn))
		copy(out.DependsOn, j.DependsOn)
	}
	out.TilesProcessed = copyInt(j.TilesProcessed)
	out.TilesTotal = copyInt(j.TilesTotal)
	out.StartedAt = copyTime(j.StartedAt)
	out.FinishedAt = copyTime(j.FinishedAt)
	return &out
}

func (w *Workflow) DeepCopy() *Workflow {
	if w == nil {
		return nil
	}
	out := *w
	if w.Jobs != nil {
		out.Jobs = make([]*Job, len(w.Jobs))
		for i, job := range w.Jobs {
			out.Jobs[i] = job.DeepCopy()
		}
	}
	out.StartedAt = copyTime(w.StartedAt)
	out.FinishedAt = copyTime(w.FinishedAt)
	return &out
}

func (e *Event) DeepCopy() *Event {
	if e == nil {
		return nil
	}
	out := *e
	out.Progress = copyFloat(e.Progress)
	out.TilesProcessed = copyInt(e.TilesProcessed)
	out.TilesTotal = copyInt(e.TilesTotal)
	return &out
}
