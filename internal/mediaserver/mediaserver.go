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

// Package mediaserver reads the streamer's now-playing endpoint.
package mediaserver

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
	"github.com/tonlage/tonlage/internal/request"
	"github.com/tonlage/tonlage/model"
)

type Client struct {
	baseURL string
}

func NewClient(baseURL string) *Client {
	return &Client{baseURL: baseURL}
}

type nowPlayingResponse struct {
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	Album      string `json:"album"`
	DurationMs int64  `json:"duration_ms"`
	PositionMs int64  `json:"position_ms"`
	Playing    bool   `json:"playing"`
	ListenerID string `json:"listener_id"`
	DeviceID   string `json:"device_id"`
}

// NowPlaying polls the player. A 204 means nothing is playing and returns
// nil without error; any other non-200 is a source failure the accountant
// backs off from.
func (c *Client) NowPlaying(ctx context.Context) (*model.NowPlaying, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/data", nil)
	if err != nil {
		return nil, errors.Wrap(err, "building now-playing request")
	}

	var body nowPlayingResponse
	resp, err := request.Call(req, &body)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNoContent {
			return nil, nil
		}
		return nil, errors.Wrap(err, "calling now-playing endpoint")
	}
	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("player returned status %d", resp.StatusCode)
	}

	return &model.NowPlaying{
		Title:      body.Title,
		Artist:     body.Artist,
		Album:      body.Album,
		DurationMs: body.DurationMs,
		PositionMs: body.PositionMs,
		Playing:    body.Playing,
		ListenerID: body.ListenerID,
		DeviceID:   body.DeviceID,
	}, nil
}
