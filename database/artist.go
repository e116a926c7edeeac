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

	"github.com/sirupsen/logrus"
	"github.com/tonlage/tonlage/internal/apierror"
	"github.com/tonlage/tonlage/model"
)

// truncate keeps stored error messages bounded.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func (d Datasource) GetArtistByName(ctx context.Context, name string) (*model.Artist, error) {
	artist := model.Artist{}
	var workflowID sql.NullString

	row := d.Conn.QueryRowContext(ctx, `
		SELECT id, name, genre_status, workflow_id, created_at
		FROM artists
		WHERE name = $1
	`, name)

	err := row.Scan(&artist.ID, &artist.Name, &artist.GenreStatus, &workflowID, &artist.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, "Artist not found", err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve artist", err)
	}
	artist.WorkflowID = workflowID.String

	return &artist, nil
}

func (d Datasource) GetArtistName(ctx context.Context, artistID int64) (string, error) {
	var name string
	err := d.Conn.QueryRowContext(ctx, `
		SELECT name FROM artists WHERE id = $1
	`, artistID).Scan(&name)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", apierror.NewAPIError(apierror.ErrNotFound, "Artist not found", err)
		}
		return "", apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve artist name", err)
	}
	return name, nil
}

// ClaimArtistGenre is the claim protocol for the genre dimension: a single
// conditional update from none to loading. Exactly one concurrent caller
// sees a row change.
func (d Datasource) ClaimArtistGenre(ctx context.Context, artistID int64) (bool, error) {
	res, err := d.Conn.ExecContext(ctx, `
		UPDATE artists
		SET genre_status = $1
		WHERE id = $2
		AND genre_status = $3
	`, model.StatusLoading, artistID, model.StatusNone)
	if err != nil {
		return false, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to claim artist for genre lookup", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to read claim result", err)
	}
	return rows == 1, nil
}

func (d Datasource) MarkArtistGenreDone(ctx context.Context, artistID int64) error {
	_, err := d.Conn.ExecContext(ctx, `
		UPDATE artists SET genre_status = $1 WHERE id = $2
	`, model.StatusDone, artistID)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to mark genre lookup done", err)
	}
	return nil
}

func (d Datasource) MarkArtistGenreError(ctx context.Context, artistID int64, message string) error {
	logrus.WithFields(logrus.Fields{"artist_id": artistID, "error": truncate(message, 1000)}).
		Warn("genre lookup failed")
	_, err := d.Conn.ExecContext(ctx, `
		UPDATE artists SET genre_status = $1 WHERE id = $2
	`, model.StatusError, artistID)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to mark genre lookup error", err)
	}
	return nil
}

// WriteArtistGenres upserts each genre and links it to the artist. Each
// statement is atomic on its own; a duplicate link is a no-op.
func (d Datasource) WriteArtistGenres(ctx context.Context, artistID int64, genres []string) error {
	for _, genre := range genres {
		_, err := d.Conn.ExecContext(ctx, `
			INSERT INTO genres (name)
			VALUES ($1)
			ON CONFLICT (name) DO NOTHING
		`, genre)
		if err != nil {
			return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to insert genre", err)
		}

		_, err = d.Conn.ExecContext(ctx, `
			INSERT INTO artist_genres (artist_id, genre_id)
			SELECT $1, g.id
			FROM genres g
			WHERE g.name = $2
			ON CONFLICT DO NOTHING
		`, artistID, genre)
		if err != nil {
			return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to link genre to artist", err)
		}
	}
	return nil
}

func (d Datasource) ArtistsMissingGenres(ctx context.Context) ([]model.Artist, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT a.id, a.name, a.genre_status, a.created_at
		FROM artists a
		LEFT JOIN artist_genres ag ON ag.artist_id = a.id
		WHERE ag.artist_id IS NULL
		ORDER BY a.created_at ASC
	`)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to list artists missing genres", err)
	}
	defer rows.Close()

	artists := []model.Artist{}
	for rows.Next() {
		artist := model.Artist{}
		if err := rows.Scan(&artist.ID, &artist.Name, &artist.GenreStatus, &artist.CreatedAt); err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan artist row", err)
		}
		artists = append(artists, artist)
	}
	if err := rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error iterating artist rows", err)
	}
	return artists, nil
}
