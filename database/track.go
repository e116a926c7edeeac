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

	"github.com/tonlage/tonlage/internal/apierror"
	"github.com/tonlage/tonlage/model"
)

func scanTrack(row interface {
	Scan(dest ...interface{}) error
}) (*model.Track, error) {
	track := model.Track{}
	var (
		youtubeCode   sql.NullString
		filePath      sql.NullString
		audioFormat   sql.NullString
		downloadError sql.NullString
		downloadedAt  sql.NullTime
		workflowID    sql.NullString
	)

	err := row.Scan(
		&track.ID, &track.ArtistID, &track.Title, &track.DurationMs,
		&youtubeCode, &track.YoutubeStatus, &track.DownloadStatus,
		&filePath, &audioFormat, &downloadError, &downloadedAt,
		&workflowID, &track.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	track.YoutubeCode = youtubeCode.String
	track.FilePath = filePath.String
	track.AudioFormat = audioFormat.String
	track.DownloadError = downloadError.String
	track.WorkflowID = workflowID.String
	if downloadedAt.Valid {
		track.DownloadedAt = &downloadedAt.Time
	}
	return &track, nil
}

const trackColumns = `
	id, artist_id, title, duration_ms,
	youtube_code, youtube_status, download_status,
	file_path, audio_format, download_error, downloaded_at,
	workflow_id, created_at`

func (d Datasource) GetTrack(ctx context.Context, trackID int64) (*model.Track, error) {
	row := d.Conn.QueryRowContext(ctx, `
		SELECT `+trackColumns+`
		FROM tracks
		WHERE id = $1
	`, trackID)

	track, err := scanTrack(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, "Track not found", err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve track", err)
	}
	return track, nil
}

func (d Datasource) GetTrackByTitle(ctx context.Context, artistID int64, title string) (*model.Track, error) {
	row := d.Conn.QueryRowContext(ctx, `
		SELECT `+trackColumns+`
		FROM tracks
		WHERE artist_id = $1
		AND title = $2
	`, artistID, title)

	track, err := scanTrack(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, "Track not found", err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve track", err)
	}
	return track, nil
}

// NextQueuedDownload returns the oldest track still waiting for audio, or
// nil when the queue is empty. Callers must still win ClaimTrackDownload
// before doing any work.
func (d Datasource) NextQueuedDownload(ctx context.Context) (*model.DownloadJob, error) {
	job := model.DownloadJob{}
	var youtubeCode sql.NullString

	row := d.Conn.QueryRowContext(ctx, `
		SELECT t.id, a.name, t.title, t.youtube_code
		FROM tracks t
		JOIN artists a ON a.id = t.artist_id
		WHERE t.download_status = $1
		AND t.youtube_code IS NOT NULL
		ORDER BY t.created_at ASC
		LIMIT 1
	`, model.DownloadQueued)

	err := row.Scan(&job.TrackID, &job.Artist, &job.Title, &youtubeCode)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to poll download queue", err)
	}
	job.YoutubeCode = youtubeCode.String
	return &job, nil
}

func (d Datasource) ClaimTrackDownload(ctx context.Context, trackID int64) (bool, error) {
	res, err := d.Conn.ExecContext(ctx, `
		UPDATE tracks
		SET download_status = $1
		WHERE id = $2
		AND download_status = $3
	`, model.DownloadInProgress, trackID, model.DownloadQueued)
	if err != nil {
		return false, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to claim track for download", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to read claim result", err)
	}
	return rows == 1, nil
}

func (d Datasource) MarkTrackDownloaded(ctx context.Context, trackID int64, filePath, format string) error {
	_, err := d.Conn.ExecContext(ctx, `
		UPDATE tracks
		SET download_status = $1, file_path = $2, audio_format = $3,
			download_error = NULL, downloaded_at = NOW()
		WHERE id = $4
	`, model.DownloadDone, filePath, format, trackID)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to mark track downloaded", err)
	}
	return nil
}

func (d Datasource) MarkTrackDownloadError(ctx context.Context, trackID int64, message string) error {
	_, err := d.Conn.ExecContext(ctx, `
		UPDATE tracks
		SET download_status = $1, download_error = $2
		WHERE id = $3
	`, model.DownloadError, truncate(message, 1000), trackID)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to mark download error", err)
	}
	return nil
}

func (d Datasource) ClaimTrackYoutube(ctx context.Context, trackID int64) (bool, error) {
	res, err := d.Conn.ExecContext(ctx, `
		UPDATE tracks
		SET youtube_status = $1
		WHERE id = $2
		AND youtube_status = $3
	`, model.StatusLoading, trackID, model.StatusNone)
	if err != nil {
		return false, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to claim track for video lookup", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to read claim result", err)
	}
	return rows == 1, nil
}

// MarkTrackYoutubeDone records the lookup result. An empty youtubeCode is
// valid: the search ran and found nothing, and the lookup still counts as
// finished.
func (d Datasource) MarkTrackYoutubeDone(ctx context.Context, trackID int64, youtubeCode string) error {
	var code sql.NullString
	if youtubeCode != "" {
		code = sql.NullString{String: youtubeCode, Valid: true}
	}

	_, err := d.Conn.ExecContext(ctx, `
		UPDATE tracks
		SET youtube_status = $1, youtube_code = $2
		WHERE id = $3
	`, model.StatusDone, code, trackID)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to mark video lookup done", err)
	}
	return nil
}

func (d Datasource) MarkTrackYoutubeError(ctx context.Context, trackID int64) error {
	_, err := d.Conn.ExecContext(ctx, `
		UPDATE tracks
		SET youtube_status = $1
		WHERE id = $2
	`, model.StatusError, trackID)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to mark video lookup error", err)
	}
	return nil
}

func (d Datasource) TracksMissingYoutubeCode(ctx context.Context) ([]model.Track, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT `+trackColumns+`
		FROM tracks
		WHERE youtube_code IS NULL
		AND youtube_status != $1
		ORDER BY created_at ASC
	`, model.StatusLoading)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to list tracks missing videos", err)
	}
	defer rows.Close()

	tracks := []model.Track{}
	for rows.Next() {
		track, err := scanTrack(rows)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan track row", err)
		}
		tracks = append(tracks, *track)
	}
	if err := rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error iterating track rows", err)
	}
	return tracks, nil
}
