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

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/tonlage/tonlage/internal/apierror"
	"github.com/tonlage/tonlage/model"
)

func TestGetArtistByName_Found(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	name := gofakeit.Name()

	rows := sqlmock.NewRows([]string{"id", "name", "genre_status", "workflow_id", "created_at"}).
		AddRow(2, name, model.StatusDone, "wfl_abc", time.Now())
	mock.ExpectQuery("SELECT id, name, genre_status, workflow_id, created_at").
		WithArgs(name).
		WillReturnRows(rows)

	artist, err := ds.GetArtistByName(context.Background(), name)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), artist.ID)
	assert.Equal(t, name, artist.Name)
	assert.Equal(t, "wfl_abc", artist.WorkflowID)
}

func TestGetArtistByName_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectQuery("SELECT id, name, genre_status, workflow_id, created_at").
		WithArgs("Nobody").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	artist, err := ds.GetArtistByName(context.Background(), "Nobody")
	assert.Error(t, err)
	assert.Nil(t, artist)

	apiErr, ok := err.(apierror.APIError)
	assert.True(t, ok)
	assert.Equal(t, apierror.ErrNotFound, apiErr.Code)
}

func TestClaimArtistGenre_WonThenLost(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectExec("UPDATE artists").
		WithArgs(model.StatusLoading, int64(2), model.StatusNone).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE artists").
		WithArgs(model.StatusLoading, int64(2), model.StatusNone).
		WillReturnResult(sqlmock.NewResult(0, 0))

	won, err := ds.ClaimArtistGenre(context.Background(), 2)
	assert.NoError(t, err)
	assert.True(t, won)

	won, err = ds.ClaimArtistGenre(context.Background(), 2)
	assert.NoError(t, err)
	assert.False(t, won)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWriteArtistGenres_UpsertsAndLinks(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	for _, genre := range []string{"electronic", "idm"} {
		mock.ExpectExec("INSERT INTO genres").
			WithArgs(genre).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec("INSERT INTO artist_genres").
			WithArgs(int64(2), genre).
			WillReturnResult(sqlmock.NewResult(1, 1))
	}

	err = ds.WriteArtistGenres(context.Background(), 2, []string{"electronic", "idm"})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArtistsMissingGenres(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	rows := sqlmock.NewRows([]string{"id", "name", "genre_status", "created_at"}).
		AddRow(1, "Burial", model.StatusError, time.Now()).
		AddRow(2, "Boards of Canada", model.StatusNone, time.Now())
	mock.ExpectQuery("SELECT a.id, a.name, a.genre_status, a.created_at").
		WillReturnRows(rows)

	artists, err := ds.ArtistsMissingGenres(context.Background())
	assert.NoError(t, err)
	assert.Len(t, artists, 2)
	assert.Equal(t, "Burial", artists[0].Name)
}
