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
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/tonlage/tonlage/database/mocks"
	"github.com/tonlage/tonlage/internal/lastfm"
	pg_listener "github.com/tonlage/tonlage/internal/pg-listener"
	"github.com/tonlage/tonlage/model"
)

func artistPayload() pg_listener.Payload {
	return pg_listener.Payload{
		"id":          float64(2),
		"name":        "Boards of Canada",
		"workflow_id": "wfl_1",
	}
}

func newGenreTestTonlage(ds *mocks.MockDataSource) *Tonlage {
	return &Tonlage{
		datasource: ds,
		lastfm:     lastfm.NewClient("http://ws.audioscrobbler.com/2.0", "test-key", nil),
	}
}

func TestHandleArtistInserted_StoresGenresAndRaisesFlag(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()
	httpmock.RegisterResponder("GET", `=~^http://ws\.audioscrobbler\.com/2\.0`,
		httpmock.NewStringResponder(200, `{"toptags": {"tag": [
			{"name": "Electronic", "count": 100},
			{"name": "seen live", "count": 20}
		]}}`))

	ds := new(mocks.MockDataSource)
	ds.On("ClaimArtistGenre", mock.Anything, int64(2)).Return(true, nil)
	ds.On("WriteArtistGenres", mock.Anything, int64(2), []string{"electronic"}).Return(nil)
	ds.On("MarkArtistGenreDone", mock.Anything, int64(2)).Return(nil)
	ds.On("SetWorkflowFlag", mock.Anything, "wfl_1", model.FlagGenreDone).Return(nil)

	tl := newGenreTestTonlage(ds)
	err := tl.HandleArtistInserted(context.Background(), artistPayload())
	assert.NoError(t, err)
	ds.AssertExpectations(t)
}

func TestHandleArtistInserted_LostClaimDoesNothing(t *testing.T) {
	ds := new(mocks.MockDataSource)
	ds.On("ClaimArtistGenre", mock.Anything, int64(2)).Return(false, nil)

	tl := newGenreTestTonlage(ds)
	err := tl.HandleArtistInserted(context.Background(), artistPayload())
	assert.NoError(t, err)
	ds.AssertNotCalled(t, "WriteArtistGenres", mock.Anything, mock.Anything, mock.Anything)
	ds.AssertNotCalled(t, "MarkArtistGenreDone", mock.Anything, mock.Anything)
}

func TestHandleArtistInserted_UntaggedArtistStillFinishes(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()
	httpmock.RegisterResponder("GET", `=~^http://ws\.audioscrobbler\.com/2\.0`,
		httpmock.NewStringResponder(200, `{"toptags": {"tag": []}}`))

	ds := new(mocks.MockDataSource)
	ds.On("ClaimArtistGenre", mock.Anything, int64(2)).Return(true, nil)
	ds.On("MarkArtistGenreDone", mock.Anything, int64(2)).Return(nil)
	ds.On("SetWorkflowFlag", mock.Anything, "wfl_1", model.FlagGenreDone).Return(nil)

	tl := newGenreTestTonlage(ds)
	err := tl.HandleArtistInserted(context.Background(), artistPayload())
	assert.NoError(t, err)
	ds.AssertNotCalled(t, "WriteArtistGenres", mock.Anything, mock.Anything, mock.Anything)
	ds.AssertCalled(t, "SetWorkflowFlag", mock.Anything, "wfl_1", model.FlagGenreDone)
}

func TestHandleArtistInserted_LookupFailureMarksError(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()
	httpmock.RegisterResponder("GET", `=~^http://ws\.audioscrobbler\.com/2\.0`,
		httpmock.NewStringResponder(200, `{"error": 10, "message": "Invalid API key"}`))

	ds := new(mocks.MockDataSource)
	ds.On("ClaimArtistGenre", mock.Anything, int64(2)).Return(true, nil)
	ds.On("MarkArtistGenreError", mock.Anything, int64(2), mock.Anything).Return(nil)

	tl := newGenreTestTonlage(ds)
	err := tl.HandleArtistInserted(context.Background(), artistPayload())
	assert.Error(t, err)
	ds.AssertCalled(t, "MarkArtistGenreError", mock.Anything, int64(2), mock.Anything)
	ds.AssertNotCalled(t, "SetWorkflowFlag", mock.Anything, mock.Anything, mock.Anything)
}
