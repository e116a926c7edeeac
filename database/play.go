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
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/tonlage/tonlage/internal/apierror"
	"github.com/tonlage/tonlage/model"
)

// RecordPlay persists one finished playback: it upserts the artist, album
// and track rows on first sight and appends the play itself. Each insert
// uses ON CONFLICT DO NOTHING, so replaying the same poll cycle twice
// cannot duplicate rows. New artist and track rows fire the notify
// triggers that drive the enrichment stages, carrying workflowID in the
// payload.
func (d Datasource) RecordPlay(ctx context.Context, artistName, albumTitle, trackTitle string, durationMs int64, playedAt time.Time, skipped bool, workflowID string) error {
	tx, err := d.Conn.BeginTx(ctx, nil)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to begin play transaction", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var artistID int64
	err = tx.QueryRowContext(ctx, `
		WITH ins AS (
			INSERT INTO artists (name, workflow_id)
			VALUES ($1, $2)
			ON CONFLICT (name) DO NOTHING
			RETURNING id
		)
		SELECT id FROM ins
		UNION ALL
		SELECT id FROM artists WHERE name = $1
		LIMIT 1
	`, artistName, nullString(workflowID)).Scan(&artistID)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to upsert artist", err)
	}

	var trackID int64
	err = tx.QueryRowContext(ctx, `
		WITH ins AS (
			INSERT INTO tracks (artist_id, title, duration_ms, workflow_id)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (artist_id, title) DO NOTHING
			RETURNING id
		)
		SELECT id FROM ins
		UNION ALL
		SELECT id FROM tracks WHERE artist_id = $1 AND title = $2
		LIMIT 1
	`, artistID, trackTitle, durationMs, nullString(workflowID)).Scan(&trackID)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to upsert track", err)
	}

	if albumTitle != "" {
		var albumID int64
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
			return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to upsert album", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO album_tracks (album_id, track_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, albumID, trackID)
		if err != nil {
			return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to link album track", err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO track_plays (track_id, played_at, skipped, workflow_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (track_id, played_at) DO NOTHING
	`, trackID, playedAt, skipped, nullString(workflowID))
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to insert play", err)
	}

	if err := tx.Commit(); err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to commit play transaction", err)
	}
	return nil
}

func (d Datasource) GetPlayIDByWorkflow(ctx context.Context, workflowID string) (int64, error) {
	var playID int64
	err := d.Conn.QueryRowContext(ctx, `
		SELECT id FROM track_plays WHERE workflow_id = $1
		ORDER BY id DESC
		LIMIT 1
	`, workflowID).Scan(&playID)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, apierror.NewAPIError(apierror.ErrNotFound,
				fmt.Sprintf("No play found for workflow %s", workflowID), err)
		}
		return 0, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to look up play by workflow", err)
	}
	return playID, nil
}

// GetPlayDetail loads one play joined with its track, artist and genres.
// The notifier uses consecutive play IDs to detect repeats.
func (d Datasource) GetPlayDetail(ctx context.Context, playID int64) (*model.PlayDetail, error) {
	detail := model.PlayDetail{PlayID: playID}
	var (
		youtubeCode sql.NullString
		genres      pq.StringArray
	)

	row := d.Conn.QueryRowContext(ctx, `
		SELECT t.title, a.name, t.youtube_code, p.skipped,
			COALESCE(array_agg(g.name) FILTER (WHERE g.name IS NOT NULL), '{}')
		FROM track_plays p
		JOIN tracks t ON t.id = p.track_id
		JOIN artists a ON a.id = t.artist_id
		LEFT JOIN artist_genres ag ON ag.artist_id = a.id
		LEFT JOIN genres g ON g.id = ag.genre_id
		WHERE p.id = $1
		GROUP BY t.title, a.name, t.youtube_code, p.skipped
	`, playID)

	err := row.Scan(&detail.Title, &detail.Artist, &youtubeCode, &detail.Skipped, &genres)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound,
				fmt.Sprintf("Play %d not found", playID), err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve play detail", err)
	}
	detail.YoutubeCode = youtubeCode.String
	detail.Genres = []string(genres)
	return &detail, nil
}

func (d Datasource) GetRecentPlays(ctx context.Context, limit int) ([]model.Play, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT id, track_id, played_at, skipped, workflow_id
		FROM track_plays
		ORDER BY played_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to list recent plays", err)
	}
	defer rows.Close()

	plays := []model.Play{}
	for rows.Next() {
		play := model.Play{}
		var workflowID sql.NullString
		if err := rows.Scan(&play.ID, &play.TrackID, &play.PlayedAt, &play.Skipped, &workflowID); err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan play row", err)
		}
		play.WorkflowID = workflowID.String
		plays = append(plays, play)
	}
	if err := rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error iterating play rows", err)
	}
	return plays, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
