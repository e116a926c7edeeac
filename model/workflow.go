/*
Copyright 2024 Tonlage Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package model

import "time"

// Workflow flag names. These are the only columns SetWorkflowFlag accepts;
// anything else is rejected before it reaches SQL.
const (
	FlagInitDone  = "init_done"
	FlagGenreDone = "genre_done"
	FlagYtDone    = "yt_done"
)

// Workflow tracks one logical unit of work (a single track play) across the
// independently-scheduled enrichment stages. Flags are monotonic: each one
// flips false -> true exactly once and is never reset. The requirement flags
// are fixed at creation time so a consumer never blocks on a stage that was
// never triggered.
type Workflow struct {
	WorkflowID    string    `json:"workflow_id"`
	InitDone      bool      `json:"init_done"`
	GenreDone     bool      `json:"genre_done"`
	YtDone        bool      `json:"yt_done"`
	GenreRequired bool      `json:"genre_required"`
	YtRequired    bool      `json:"yt_required"`
	CreatedAt     time.Time `json:"created_at"`
}

// Ready reports whether every stage a downstream consumer depends on has
// completed. A stage that is not required counts as satisfied.
func (w *Workflow) Ready() bool {
	if !w.InitDone {
		return false
	}
	if w.GenreRequired && !w.GenreDone {
		return false
	}
	if w.YtRequired && !w.YtDone {
		return false
	}
	return true
}

// ValidWorkflowFlag reports whether name is one of the known flag columns.
func ValidWorkflowFlag(name string) bool {
	switch name {
	case FlagInitDone, FlagGenreDone, FlagYtDone:
		return true
	}
	return false
}
