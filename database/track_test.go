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
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/stretchr/testify/assert"
	"github.com/tonlage/tonlage/internal/apierror"
	"github.com/tonlage/tonlage/model"
)

func TestClaimTrackYoutube_Won(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectExec("UPDATE tracks").
		WithArgs(model.StatusLoading, int64(42), model.StatusNone).
		WillReturnResult(sqlmock.NewResult(0, 1))

	won, err := ds.ClaimTrackYoutube(context.Background(), 42)
	assert.NoError(t, err)
	assert.True(t, won)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimTrackYoutube_Lost(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	// Another worker already moved the row out of 'none'.
	mock.ExpectExec("UPDATE tracks").
		WithArgs(model.StatusLoading, int64(42), model.StatusNone).
		WillReturnResult(sqlmock.NewResult(0, 0))

	won, err := ds.ClaimTrackYoutube(context.Background(), 42)
	assert.NoError(t, err)
	assert.False(t, won)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimTrackDownload_Won(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectExec("UPDATE tracks").
		WithArgs(model.DownloadInProgress, int64(7), model.DownloadQueued).
		WillReturnResult(sqlmock.NewResult(0, 1))

	won, err := ds.ClaimTrackDownload(context.Background(), 7)
	assert.NoError(t, err)
	assert.True(t, won)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimTrackDownload_Lost(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectExec("UPDATE tracks").
		WithArgs(model.DownloadInProgress, int64(7), model.DownloadQueued).
		WillReturnResult(sqlmock.NewResult(0, 0))

	won, err := ds.ClaimTrackDownload(context.Background(), 7)
	assert.NoError(t, err)
	assert.False(t, won)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNextQueuedDownload_Found(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	rows := sqlmock.NewRows([]string{"id", "name", "title", "youtube_code"}).
		AddRow(11, "Boards of Canada", "Roygbiv", "yT2_gM9z1SE")
	mock.ExpectQuery("SELECT t.id, a.name, t.title, t.youtube_code").
		WithArgs(model.DownloadQueued).
		WillReturnRows(rows)

	job, err := ds.NextQueuedDownload(context.Background())
	assert.NoError(t, err)
	assert.NotNil(t, job)
	assert.Equal(t, int64(11), job.TrackID)
	assert.Equal(t, "Boards of Canada", job.Artist)
	assert.Equal(t, "Roygbiv", job.Title)
	assert.Equal(t, "yT2_gM9z1SE", job.YoutubeCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNextQueuedDownload_EmptyQueue(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectQuery("SELECT t.id, a.name, t.title, t.youtube_code").
		WithArgs(model.DownloadQueued).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "title", "youtube_code"}))

	job, err := ds.NextQueuedDownload(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, job)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkTrackYoutubeDone_EmptyCodeStoresNull(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectExec("UPDATE tracks").
		WithArgs(model.StatusDone, nullString(""), int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = ds.MarkTrackYoutubeDone(context.Background(), 3, "")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTrack_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectQuery("SELECT").
		WithArgs(int64(999)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	track, err := ds.GetTrack(context.Background(), 999)
	assert.Error(t, err)
	assert.Nil(t, track)

	apiErr, ok := err.(apierror.APIError)
	assert.True(t, ok)
	assert.Equal(t, apierror.ErrNotFound, apiErr.Code)
}

func TestGetTrackByTitle_Found(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "artist_id", "title", "duration_ms",
		"youtube_code", "youtube_status", "download_status",
		"file_path", "audio_format", "download_error", "downloaded_at",
		"workflow_id", "created_at",
	}).AddRow(5, 2, "Roygbiv", 148000, "yT2_gM9z1SE", model.StatusDone, model.DownloadDone,
		"/music/Boards of Canada/5 - Roygbiv.m4a", "m4a", nil, now, "wfl_abc", now)

	mock.ExpectQuery("SELECT").
		WithArgs(int64(2), "Roygbiv").
		WillReturnRows(rows)

	track, err := ds.GetTrackByTitle(context.Background(), 2, "Roygbiv")
	assert.NoError(t, err)
	assert.Equal(t, int64(5), track.ID)
	assert.Equal(t, "yT2_gM9z1SE", track.YoutubeCode)
	assert.Equal(t, "m4a", track.AudioFormat)
	assert.NotNil(t, track.DownloadedAt)
	assert.Equal(t, "wfl_abc", track.WorkflowID)
}
