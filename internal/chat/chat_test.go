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

package chat

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
)

func TestPost_SendsTextAndHeaders(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	var gotAuth string
	var gotText string
	httpmock.RegisterResponder("POST", "http://chat.local/webhook",
		func(req *http.Request) (*http.Response, error) {
			gotAuth = req.Header.Get("Authorization")
			raw, _ := io.ReadAll(req.Body)
			var payload map[string]string
			_ = json.Unmarshal(raw, &payload)
			gotText = payload["text"]
			return httpmock.NewStringResponse(200, `{"ok": true}`), nil
		})

	client := NewClient("http://chat.local/webhook", map[string]string{"Authorization": "Bearer tok"})
	err := client.Post(context.Background(), "Now playing: Boards of Canada - Roygbiv")
	assert.NoError(t, err)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "Now playing: Boards of Canada - Roygbiv", gotText)
}

func TestPost_WebhookFailure(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("POST", "http://chat.local/webhook",
		httpmock.NewStringResponder(500, `{"ok": false, "error": "internal"}`))

	client := NewClient("http://chat.local/webhook", nil)
	err := client.Post(context.Background(), "hello")
	assert.Error(t, err)
}
