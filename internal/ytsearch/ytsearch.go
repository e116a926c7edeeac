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

// Package ytsearch resolves artist/title pairs to YouTube video codes
// through the Data API v3 search endpoint.
package ytsearch

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/tonlage/tonlage/internal/cache"
	"github.com/tonlage/tonlage/internal/request"
)

const cacheTTL = 24 * time.Hour

type Client struct {
	baseURL string
	apiKey  string
	cache   cache.Cache
}

func NewClient(baseURL, apiKey string, cache cache.Cache) *Client {
	return &Client{baseURL: baseURL, apiKey: apiKey, cache: cache}
}

type searchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
	} `json:"items"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// FirstVideoID searches for "artist title" and returns the top hit's video
// code. No hits is an empty string with a nil error: the lookup completed,
// there just is no video.
func (c *Client) FirstVideoID(ctx context.Context, artist, title string) (string, error) {
	query := artist + " " + title

	cacheKey := "ytsearch:" + strings.ToLower(query)
	if c.cache != nil {
		var cached string
		if err := c.cache.Get(ctx, cacheKey, &cached); err == nil && cached != "" {
			return cached, nil
		}
	}

	params := url.Values{}
	params.Set("part", "id")
	params.Set("q", query)
	params.Set("type", "video")
	params.Set("maxResults", "1")
	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return "", errors.Wrap(err, "building youtube search request")
	}

	var body searchResponse
	resp, err := request.Call(req, &body)
	if err != nil {
		return "", errors.Wrap(err, "calling youtube search")
	}
	if body.Error != nil {
		return "", errors.Errorf("youtube search error %d: %s", body.Error.Code, body.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("youtube search returned status %d", resp.StatusCode)
	}

	if len(body.Items) == 0 {
		return "", nil
	}
	videoID := body.Items[0].ID.VideoID

	if c.cache != nil && videoID != "" {
		_ = c.cache.Set(ctx, cacheKey, videoID, cacheTTL)
	}
	return videoID, nil
}
