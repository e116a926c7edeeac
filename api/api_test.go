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
package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/tonlage/tonlage"
	"github.com/tonlage/tonlage/config"
	"github.com/tonlage/tonlage/database/mocks"
	"github.com/tonlage/tonlage/internal/apierror"
	"github.com/tonlage/tonlage/model"
)

func newTestRouter(t *testing.T, ds *mocks.MockDataSource) http.Handler {
	config.MockConfig(&config.Configuration{
		Redis:       config.RedisConfig{Dns: "localhost:6379"},
		MusicBrainz: config.MusicBrainzConfig{BaseUrl: "https://musicbrainz.org/ws/2", UserAgent: "Tonlage/1.0"},
	})

	service, err := tonlage.NewTonlage(ds)
	assert.NoError(t, err)
	return NewAPI(service).Router()
}

func TestGetWorkflow_ReportsReadiness(t *testing.T) {
	ds := new(mocks.MockDataSource)
	ds.On("GetWorkflow", mock.Anything, "wfl_1").Return(&model.Workflow{
		WorkflowID: "wfl_1", InitDone: true, GenreDone: true,
		GenreRequired: true,
	}, nil)

	router := newTestRouter(t, ds)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/workflows/wfl_1", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["ready"])
}

func TestGetWorkflow_NotFound(t *testing.T) {
	ds := new(mocks.MockDataSource)
	ds.On("GetWorkflow", mock.Anything, "wfl_missing").
		Return(nil, apierror.NewAPIError(apierror.ErrNotFound, "Workflow wfl_missing not found", nil))

	router := newTestRouter(t, ds)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/workflows/wfl_missing", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetRecentPlays_DefaultLimit(t *testing.T) {
	ds := new(mocks.MockDataSource)
	ds.On("GetRecentPlays", mock.Anything, 50).Return([]model.Play{
		{ID: 2, TrackID: 5},
		{ID: 1, TrackID: 6, Skipped: true},
	}, nil)

	router := newTestRouter(t, ds)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/plays", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var plays []model.Play
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &plays))
	assert.Len(t, plays, 2)
}

func TestImportAlbum_CreatesTracks(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()
	httpmock.RegisterResponder("GET", `=~^https://musicbrainz\.org/ws/2/release/`,
		httpmock.NewStringResponder(200, `{
			"title": "Untrue",
			"artist-credit": [{"name": "Burial"}],
			"media": [{"tracks": [
				{"title": "Archangel", "length": 238000},
				{"title": "Near Dark", "length": 228000}
			]}]
		}`))

	ds := new(mocks.MockDataSource)
	ds.On("ImportAlbum", mock.Anything, "Burial", "Untrue", mock.Anything).Return(2, nil)

	router := newTestRouter(t, ds)
	w := httptest.NewRecorder()
	payload, _ := json.Marshal(map[string]string{"mbid": "some-mbid"})
	req, _ := http.NewRequest("POST", "/albums", bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var result tonlage.AlbumImportResult
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 2, result.InsertedTracks)
}

func TestImportTrack_SingleRecording(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()
	httpmock.RegisterResponder("GET", `=~^https://musicbrainz\.org/ws/2/recording/`,
		httpmock.NewStringResponder(200, `{
			"title": "Archangel",
			"length": 238000,
			"artist-credit": [{"name": "Burial"}],
			"releases": [{"title": "Untrue"}]
		}`))

	ds := new(mocks.MockDataSource)
	ds.On("ImportAlbum", mock.Anything, "Burial", "Untrue",
		[]model.TrackImport{{Title: "Archangel", DurationMs: 238000}}).Return(1, nil)

	router := newTestRouter(t, ds)
	w := httptest.NewRecorder()
	payload, _ := json.Marshal(map[string]string{"mbid": "some-mbid"})
	req, _ := http.NewRequest("POST", "/tracks", bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var result tonlage.TrackImportResult
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.Inserted)
	assert.Equal(t, "Untrue", result.Album)
}

func TestImportTrack_MissingMbid(t *testing.T) {
	ds := new(mocks.MockDataSource)
	router := newTestRouter(t, ds)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/tracks", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImportAlbum_MissingMbid(t *testing.T) {
	ds := new(mocks.MockDataSource)
	router := newTestRouter(t, ds)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/albums", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
