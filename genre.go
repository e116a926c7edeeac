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

// HandleArtistInserted reacts to a new artist row: it claims the genre
// dimension, fetches the artist's tags and stores them. Duplicate
// notifications for the same artist lose the claim and return without
// doing any work.
func (t *Tonlage) HandleArtistInserted(ctx context.Context, payload pg_listener.Payload) error {
	artistID, ok := payload.Int64("id")
	if !ok {
		logrus.WithField("payload", payload).Warn("artist notification missing id")
		return nil
	}
	name, _ := payload.String("name")
	workflowID, _ := payload.String("workflow_id")

	won, err := t.datasource.ClaimArtistGenre(ctx, artistID)
	if err != nil {
		return err
	}
	if !won {
		return nil
	}

	if err := t.enrichArtistGenres(ctx, artistID, name, workflowID); err != nil {
		if markErr := t.datasource.MarkArtistGenreError(ctx, artistID, err.Error()); markErr != nil {
			logrus.WithError(markErr).WithField("artist_id", artistID).Error("failed to record genre error")
		}
		return err
	}
	return nil
}

func (t *Tonlage) enrichArtistGenres(ctx context.Context, artistID int64, name, workflowID string) error {
	if name == "" {
		storedName, err := t.datasource.GetArtistName(ctx, artistID)
		if err != nil {
			return err
		}
		name = storedName
	}

	genres, err := t.lastfm.TopGenres(ctx, name)
	if err != nil {
		return err
	}

	// An empty genre list still completes the stage. The lookup ran; the
	// artist is just untagged.
	if len(genres) > 0 {
		if err := t.datasource.WriteArtistGenres(ctx, artistID, genres); err != nil {
			return err
		}
	}
	if err := t.datasource.MarkArtistGenreDone(ctx, artistID); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"artist_id": artistID,
		"artist":    name,
		"genres":    len(genres),
	}).Info("artist genres stored")

	if workflowID != "" {
		if err := t.datasource.SetWorkflowFlag(ctx, workflowID, model.FlagGenreDone); err != nil {
			logrus.WithError(err).WithField("workflow_id", workflowID).Error("failed to raise genre flag")
		}
	}
	return nil
}

// BackfillGenres runs the genre stage over every artist that has none,
// re-arming errored rows first so they can be claimed again.
func (t *Tonlage) BackfillGenres(ctx context.Context) (int, error) {
	artists, err := t.datasource.ArtistsMissingGenres(ctx)
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, artist := range artists {
		if err := t.enrichArtistGenres(ctx, artist.ID, artist.Name, ""); err != nil {
			logrus.WithError(err).WithField("artist", artist.Name).Warn("genre backfill failed for artist")
			continue
		}
		processed++
	}
	return processed, nil
}
