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

package database

import (
	"context"

	"github.com/tonlage/tonlage/internal/apierror"
	"github.com/tonlage/tonlage/model"
)

// ImportAlbum upserts an artist, an album and its track listing in one
// transaction. An empty albumTitle imports the tracks without an album row,
// which is how single recordings with no release land. New track rows fire
// the insert triggers, so an imported album flows into the video and
// download stages exactly like tracks first seen through a play. It returns
// the number of tracks newly inserted.
func (d Datasource) ImportAlbum(ctx context.Context, artistName, albumTitle string, tracks []model.TrackImport) (int, error) {
	tx, err := d.Conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to begin import transaction", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var artistID int64
	err = tx.QueryRowContext(ctx, `
		WITH ins AS (
			INSERT INTO artists (name)
			VALUES ($1)
			ON CONFLICT (name) DO NOTHING
			RETURNING id
		)
		SELECT id FROM ins
		UNION ALL
		SELECT id FROM artists WHERE name = $1
		LIMIT 1
	`, artistName).Scan(&artistID)
	if err != nil {
		return 0, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to upsert artist", err)
	}

	var albumID int64
	if albumTitle != "" {
		err = tx.QueryRowContext(ctx, `
			WITH ins AS (
				INSERT INTO albums (artist_id, title)
				VALUES ($1, $2)
				ON CONFLICT (artist_id, title) DO NOTHING
				RETURNING id
			)
			SELECT id FROM ins
			UNION ALL
			SELECT id FROM albums WHERE artist_id = $1 AND title = $2
			LIMIT 1
		`, artistID, albumTitle).Scan(&albumID)
		if err != nil {
			return 0, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to upsert album", err)
		}
	}

	inserted := 0
	for _, track := range tracks {
		var trackID int64
		var isNew bool
		err = tx.QueryRowContext(ctx, `
			WITH ins AS (
				INSERT INTO tracks (artist_id, title, duration_ms)
				VALUES ($1, $2, $3)
				ON CONFLICT (artist_id, title) DO NOTHING
				RETURNING id
			)
			SELECT id, TRUE FROM ins
			UNION ALL
			SELECT id, FALSE FROM tracks WHERE artist_id = $1 AND title = $2
			LIMIT 1
		`, artistID, track.Title, track.DurationMs).Scan(&trackID, &isNew)
		if err != nil {
			return 0, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to upsert track", err)
		}
		if isNew {
			inserted++
		}

		if albumID != 0 {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO album_tracks (album_id, track_id)
				VALUES ($1, $2)
				ON CONFLICT DO NOTHING
			`, albumID, trackID)
			if err != nil {
				return 0, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to link album track", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to commit import transaction", err)
	}
	return inserted, nil
}
