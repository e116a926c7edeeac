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
	pg_listener "github.com/tonlage/tonlage/internal/pg-listener"
	"github.com/tonlage/tonlage/internal/ytsearch"
	"github.com/tonlage/tonlage/model"
)

func trackPayload() pg_listener.Payload {
	return pg_listener.Payload{
		"id":          float64(5),
		"title":       "Roygbiv",
		"artist_id":   float64(2),
		"workflow_id": "wfl_1",
	}
}

func newYoutubeTestTonlage(ds *mocks.MockDataSource) *Tonlage {
	return &Tonlage{
		datasource: ds,
		ytsearch:   ytsearch.NewClient("https://www.googleapis.com/youtube/v3", "test-key", nil),
	}
}

func TestHandleTrackInserted_StoresVideoCode(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()
	httpmock.RegisterResponder("GET", `=~^https://www\.googleapis\.com/youtube/v3/search`,
		httpmock.NewStringResponder(200, `{"items": [{"id": {"videoId": "yT2_gM9z1SE"}}]}`))

	ds := new(mocks.MockDataSource)
	ds.On("ClaimTrackYoutube", mock.Anything, int64(5)).Return(true, nil)
	ds.On("GetArtistName", mock.Anything, int64(2)).Return("Boards of Canada", nil)
	ds.On("MarkTrackYoutubeDone", mock.Anything, int64(5), "yT2_gM9z1SE").Return(nil)
	ds.On("SetWorkflowFlag", mock.Anything, "wfl_1", model.FlagYtDone).Return(nil)

	tl := newYoutubeTestTonlage(ds)
	err := tl.HandleTrackInserted(context.Background(), trackPayload())
	assert.NoError(t, err)
	ds.AssertExpectations(t)
}

func TestHandleTrackInserted_NoResultStillFinishesWorkflow(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()
	httpmock.RegisterResponder("GET", `=~^https://www\.googleapis\.com/youtube/v3/search`,
		httpmock.NewStringResponder(200, `{"items": []}`))

	ds := new(mocks.MockDataSource)
	ds.On("ClaimTrackYoutube", mock.Anything, int64(5)).Return(true, nil)
	ds.On("GetArtistName", mock.Anything, int64(2)).Return("Boards of Canada", nil)
	ds.On("MarkTrackYoutubeDone", mock.Anything, int64(5), "").Return(nil)
	ds.On("SetWorkflowFlag", mock.Anything, "wfl_1", model.FlagYtDone).Return(nil)

	tl := newYoutubeTestTonlage(ds)
	err := tl.HandleTrackInserted(context.Background(), trackPayload())
	assert.NoError(t, err)
	ds.AssertCalled(t, "SetWorkflowFlag", mock.Anything, "wfl_1", model.FlagYtDone)
}

func TestHandleTrackInserted_LostClaimDoesNothing(t *testing.T) {
	ds := new(mocks.MockDataSource)
	ds.On("ClaimTrackYoutube", mock.Anything, int64(5)).Return(false, nil)

	tl := newYoutubeTestTonlage(ds)
	err := tl.HandleTrackInserted(context.Background(), trackPayload())
	assert.NoError(t, err)
	ds.AssertNotCalled(t, "MarkTrackYoutubeDone", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleTrackInserted_SearchFailureMarksError(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()
	httpmock.RegisterResponder("GET", `=~^https://www\.googleapis\.com/youtube/v3/search`,
		httpmock.NewStringResponder(403, `{"error": {"code": 403, "message": "quotaExceeded"}}`))

	ds := new(mocks.MockDataSource)
	ds.On("ClaimTrackYoutube", mock.Anything, int64(5)).Return(true, nil)
	ds.On("GetArtistName", mock.Anything, int64(2)).Return("Boards of Canada", nil)
	ds.On("MarkTrackYoutubeError", mock.Anything, int64(5)).Return(nil)

	tl := newYoutubeTestTonlage(ds)
	err := tl.HandleTrackInserted(context.Background(), trackPayload())
	assert.Error(t, err)
	ds.AssertCalled(t, "MarkTrackYoutubeError", mock.Anything, int64(5))
	ds.AssertNotCalled(t, "SetWorkflowFlag", mock.Anything, mock.Anything, mock.Anything)
}
