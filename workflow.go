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

package tonlage

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tonlage/tonlage/model"
)

const awaitPollInterval = 200 * time.Millisecond

// BeginWorkflow creates a workflow for a play of the given artist and
// track. Stages that already ran for an earlier play are not required
// again: an artist already in the catalogue needs no genre lookup, a known
// track needs no video search.
func (t *Tonlage) BeginWorkflow(ctx context.Context, artistName, trackTitle string) (string, error) {
	genreRequired := true
	ytRequired := true

	artist, err := t.datasource.GetArtistByName(ctx, artistName)
	if err == nil {
		genreRequired = artist.GenreStatus == model.StatusNone
		if _, trackErr := t.datasource.GetTrackByTitle(ctx, artist.ID, trackTitle); trackErr == nil {
			ytRequired = false
		}
	}

	return t.datasource.CreateWorkflow(ctx, genreRequired, ytRequired)
}

// CompleteWorkflowInit raises init_done once the play row is written.
func (t *Tonlage) CompleteWorkflowInit(ctx context.Context, workflowID string) error {
	return t.datasource.SetWorkflowFlag(ctx, workflowID, model.FlagInitDone)
}

// AwaitWorkflow blocks until the workflow's required flags are all raised
// or the timeout passes. It returns the last state seen and whether the
// workflow became ready. The flags are monotonic, so a true result stays
// true.
func (t *Tonlage) AwaitWorkflow(ctx context.Context, workflowID string, timeout time.Duration) (*model.Workflow, bool, error) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(awaitPollInterval)
	defer ticker.Stop()

	var last *model.Workflow
	for {
		workflow, err := t.datasource.GetWorkflow(ctx, workflowID)
		if err != nil {
			return nil, false, err
		}
		last = workflow
		if workflow.Ready() {
			return workflow, true, nil
		}

		select {
		case <-ctx.Done():
			return last, false, ctx.Err()
		case <-deadline.C:
			logrus.WithField("workflow_id", workflowID).Debug("workflow wait timed out")
			return last, false, nil
		case <-ticker.C:
		}
	}
}
