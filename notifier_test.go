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
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/tonlage/tonlage/database/mocks"
	"github.com/tonlage/tonlage/internal/chat"
	"github.com/tonlage/tonlage/model"
)

func chatTask(t *testing.T, payload ChatPostPayload) *asynq.Task {
	raw, err := json.Marshal(payload)
	assert.NoError(t, err)
	return asynq.NewTask("chat_posts", raw)
}

func newNotifierTestTonlage(ds *mocks.MockDataSource) *Tonlage {
	return &Tonlage{
		datasource: ds,
		chat:       chat.NewClient("http://chat.local/webhook", nil),
	}
}

func TestProcessChatPost_AnnouncesEnrichedPlay(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	var posted string
	httpmock.RegisterResponder("POST", "http://chat.local/webhook",
		func(req *http.Request) (*http.Response, error) {
			raw, _ := io.ReadAll(req.Body)
			var body map[string]string
			_ = json.Unmarshal(raw, &body)
			posted = body["text"]
			return httpmock.NewStringResponse(200, `{"ok": true}`), nil
		})

	ds := new(mocks.MockDataSource)
	ds.On("GetWorkflow", mock.Anything, "wfl_1").Return(&model.Workflow{
		WorkflowID: "wfl_1", InitDone: true, GenreDone: true, YtDone: true,
		GenreRequired: true, YtRequired: true,
	}, nil)
	ds.On("GetPlayDetail", mock.Anything, int64(77)).Return(&model.PlayDetail{
		PlayID: 77, Title: "Roygbiv", Artist: "Boards of Canada",
		Genres: []string{"electronic", "idm"}, YoutubeCode: "yT2_gM9z1SE",
	}, nil)
	ds.On("GetPlayDetail", mock.Anything, int64(76)).Return(&model.PlayDetail{
		PlayID: 76, Title: "Archangel", Artist: "Burial",
	}, nil)

	tl := newNotifierTestTonlage(ds)
	err := tl.ProcessChatPost(context.Background(), chatTask(t, ChatPostPayload{PlayID: 77, WorkflowID: "wfl_1"}))
	assert.NoError(t, err)
	assert.Equal(t, "Now playing: Boards of Canada - Roygbiv [electronic, idm] https://youtu.be/yT2_gM9z1SE", posted)
}

func TestProcessChatPost_WorkflowNotReadyRetries(t *testing.T) {
	ds := new(mocks.MockDataSource)
	ds.On("GetWorkflow", mock.Anything, "wfl_1").Return(&model.Workflow{
		WorkflowID: "wfl_1", InitDone: true, GenreRequired: true,
	}, nil)

	tl := newNotifierTestTonlage(ds)
	err := tl.ProcessChatPost(context.Background(), chatTask(t, ChatPostPayload{PlayID: 77, WorkflowID: "wfl_1"}))
	assert.Error(t, err)
	ds.AssertNotCalled(t, "GetPlayDetail", mock.Anything, mock.Anything)
}

func TestProcessChatPost_SkippedPlaySuppressed(t *testing.T) {
	ds := new(mocks.MockDataSource)
	ds.On("GetPlayDetail", mock.Anything, int64(77)).Return(&model.PlayDetail{
		PlayID: 77, Title: "Roygbiv", Artist: "Boards of Canada", Skipped: true,
	}, nil)

	tl := newNotifierTestTonlage(ds)
	err := tl.ProcessChatPost(context.Background(), chatTask(t, ChatPostPayload{PlayID: 77}))
	assert.NoError(t, err)
}

func TestProcessChatPost_RepeatSuppressed(t *testing.T) {
	ds := new(mocks.MockDataSource)
	detail := &model.PlayDetail{PlayID: 77, Title: "Roygbiv", Artist: "Boards of Canada"}
	previous := &model.PlayDetail{PlayID: 76, Title: "Roygbiv", Artist: "Boards of Canada"}
	ds.On("GetPlayDetail", mock.Anything, int64(77)).Return(detail, nil)
	ds.On("GetPlayDetail", mock.Anything, int64(76)).Return(previous, nil)

	tl := newNotifierTestTonlage(ds)
	err := tl.ProcessChatPost(context.Background(), chatTask(t, ChatPostPayload{PlayID: 77}))
	assert.NoError(t, err)
}

func TestFormatAnnouncement_BareTrack(t *testing.T) {
	text := formatAnnouncement(&model.PlayDetail{Title: "Archangel", Artist: "Burial"})
	assert.Equal(t, "Now playing: Burial - Archangel", text)
}
