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
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hibiken/asynq"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tonlage/tonlage/internal/apierror"
	pg_listener "github.com/tonlage/tonlage/internal/pg-listener"
	"github.com/tonlage/tonlage/model"
	"go.opentelemetry.io/otel"
)

// HandlePlayRecorded reacts to a new play row by queueing a chat
// announcement. Skipped plays are not worth announcing and are dropped
// here; everything else is resolved at delivery time, when enrichment may
// have finished.
func (t *Tonlage) HandlePlayRecorded(ctx context.Context, payload pg_listener.Payload) error {
	playID, ok := payload.Int64("id")
	if !ok {
		logrus.WithField("payload", payload).Warn("play notification missing id")
		return nil
	}
	workflowID, _ := payload.String("workflow_id")

	return t.queue.queueChatPost(ChatPostPayload{PlayID: playID, WorkflowID: workflowID})
}

// ProcessChatPost delivers one announcement. Returning an error makes
// asynq retry the task, which is how an announcement waits for its
// workflow: not-ready is just a retryable failure.
func (t *Tonlage) ProcessChatPost(ctx context.Context, task *asynq.Task) error {
	ctx, span := otel.Tracer("tonlage.chat.worker").Start(ctx, "Deliver Chat Announcement")
	defer span.End()

	var payload ChatPostPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logrus.WithError(err).Error("undeliverable chat task payload")
		return nil
	}

	if payload.WorkflowID != "" {
		workflow, err := t.datasource.GetWorkflow(ctx, payload.WorkflowID)
		if err != nil {
			if apierror.IsNotFound(err) {
				logrus.WithField("workflow_id", payload.WorkflowID).Warn("announcing without workflow")
			} else {
				return err
			}
		} else if !workflow.Ready() {
			return errors.Errorf("workflow %s not ready", payload.WorkflowID)
		}
	}

	detail, err := t.datasource.GetPlayDetail(ctx, payload.PlayID)
	if err != nil {
		return err
	}
	if detail.Skipped {
		return nil
	}

	// The same track twice in a row reads like a stuck bot. Announce it
	// once.
	if payload.PlayID > 1 {
		previous, err := t.datasource.GetPlayDetail(ctx, payload.PlayID-1)
		if err == nil && previous.SameTrack(detail) {
			logrus.WithField("play_id", payload.PlayID).Debug("suppressing repeat announcement")
			return nil
		}
	}

	return t.chat.Post(ctx, formatAnnouncement(detail))
}

// formatAnnouncement renders the chat line, appending genres and a video
// link when enrichment produced them.
func formatAnnouncement(detail *model.PlayDetail) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Now playing: %s - %s", detail.Artist, detail.Title)
	if len(detail.Genres) > 0 {
		fmt.Fprintf(&b, " [%s]", strings.Join(detail.Genres, ", "))
	}
	if detail.YoutubeCode != "" {
		fmt.Fprintf(&b, " https://youtu.be/%s", detail.YoutubeCode)
	}
	return b.String()
}
