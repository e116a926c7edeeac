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

	"github.com/sirupsen/logrus"
	pg_listener "github.com/tonlage/tonlage/internal/pg-listener"
	"github.com/tonlage/tonlage/model"
)

// HandleTrackInserted reacts to a new track row: it claims the video
// dimension, searches for the track's video and stores the code. A search
// with no hits still finishes the stage and raises the workflow flag,
// otherwise a track with no video would block its workflow forever.
func (t *Tonlage) HandleTrackInserted(ctx context.Context, payload pg_listener.Payload) error {
	trackID, ok := payload.Int64("id")
	if !ok {
		logrus.WithField("payload", payload).Warn("track notification missing id")
		return nil
	}
	title, _ := payload.String("title")
	artistID, _ := payload.Int64("artist_id")
	workflowID, _ := payload.String("workflow_id")

	won, err := t.datasource.ClaimTrackYoutube(ctx, trackID)
	if err != nil {
		return err
	}
	if !won {
		return nil
	}

	if err := t.resolveTrackVideo(ctx, trackID, artistID, title, workflowID); err != nil {
		if markErr := t.datasource.MarkTrackYoutubeError(ctx, trackID); markErr != nil {
			logrus.WithError(markErr).WithField("track_id", trackID).Error("failed to record video lookup error")
		}
		return err
	}
	return nil
}

func (t *Tonlage) resolveTrackVideo(ctx context.Context, trackID, artistID int64, title, workflowID string) error {
	if title == "" || artistID == 0 {
		track, err := t.datasource.GetTrack(ctx, trackID)
		if err != nil {
			return err
		}
		title = track.Title
		artistID = track.ArtistID
	}

	artistName, err := t.datasource.GetArtistName(ctx, artistID)
	if err != nil {
		return err
	}

	videoID, err := t.ytsearch.FirstVideoID(ctx, artistName, title)
	if err != nil {
		return err
	}

	if err := t.datasource.MarkTrackYoutubeDone(ctx, trackID, videoID); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"track_id": trackID,
		"track":    title,
		"video":    videoID,
	}).Info("track video resolved")

	if workflowID != "" {
		if err := t.datasource.SetWorkflowFlag(ctx, workflowID, model.FlagYtDone); err != nil {
			logrus.WithError(err).WithField("workflow_id", workflowID).Error("failed to raise video flag")
		}
	}
	return nil
}

// BackfillYoutube resolves videos for every track still missing one.
func (t *Tonlage) BackfillYoutube(ctx context.Context) (int, error) {
	tracks, err := t.datasource.TracksMissingYoutubeCode(ctx)
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, track := range tracks {
		if err := t.resolveTrackVideo(ctx, track.ID, track.ArtistID, track.Title, ""); err != nil {
			logrus.WithError(err).WithField("track", track.Title).Warn("video backfill failed for track")
			continue
		}
		processed++
	}
	return processed, nil
}
