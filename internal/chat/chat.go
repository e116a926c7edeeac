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

// Package chat posts now-playing announcements to a webhook.
package chat

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
	"github.com/tonlage/tonlage/internal/request"
)

type Client struct {
	webhookURL string
	headers    map[string]string
}

func NewClient(webhookURL string, headers map[string]string) *Client {
	return &Client{webhookURL: webhookURL, headers: headers}
}

type postPayload struct {
	Text string `json:"text"`
}

type postResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

func (c *Client) Post(ctx context.Context, text string) error {
	payload, err := request.ToJsonReq(postPayload{Text: text})
	if err != nil {
		return errors.Wrap(err, "encoding chat post")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, payload)
	if err != nil {
		return errors.Wrap(err, "building chat post request")
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	var body postResponse
	resp, err := request.Call(req, &body)
	if err != nil {
		return errors.Wrap(err, "posting to chat webhook")
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return errors.Errorf("chat webhook returned status %d", resp.StatusCode)
	}
	if body.Error != "" {
		return errors.Errorf("chat webhook error: %s", body.Error)
	}
	return nil
}
