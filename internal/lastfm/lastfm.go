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

// Package lastfm looks up artist genres through the Last.fm tag API.
package lastfm

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

// Tags below this weight are noise, not genres.
const minTagCount = 50

const cacheTTL = 24 * time.Hour

type Client struct {
	baseURL string
	apiKey  string
	cache   cache.Cache
}

func NewClient(baseURL, apiKey string, cache cache.Cache) *Client {
	return &Client{baseURL: baseURL, apiKey: apiKey, cache: cache}
}

type topTagsResponse struct {
	TopTags struct {
		Tag []struct {
			Name  string `json:"name"`
			Count int    `json:"count"`
		} `json:"tag"`
	} `json:"toptags"`
	Error   int    `json:"error"`
	Message string `json:"message"`
}

// TopGenres returns the artist's strong tags, lowercased, in descending
// weight order. An artist Last.fm does not know yields an empty slice, not
// an error.
func (c *Client) TopGenres(ctx context.Context, artist string) ([]string, error) {
	cacheKey := "lastfm:toptags:" + strings.ToLower(artist)
	if c.cache != nil {
		var cached []string
		if err := c.cache.Get(ctx, cacheKey, &cached); err == nil && cached != nil {
			return cached, nil
		}
	}

	params := url.Values{}
	params.Set("method", "artist.gettoptags")
	params.Set("artist", artist)
	params.Set("api_key", c.apiKey)
	params.Set("format", "json")
	params.Set("autocorrect", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "building last.fm request")
	}

	var body topTagsResponse
	resp, err := request.Call(req, &body)
	if err != nil {
		return nil, errors.Wrap(err, "calling last.fm")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("last.fm returned status %d", resp.StatusCode)
	}
	// Error 6 means unknown artist, which is an empty result rather than
	// a failure.
	if body.Error != 0 && body.Error != 6 {
		return nil, errors.Errorf("last.fm error %d: %s", body.Error, body.Message)
	}

	genres := []string{}
	for _, tag := range body.TopTags.Tag {
		if tag.Count > minTagCount {
			genres = append(genres, strings.ToLower(tag.Name))
		}
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, cacheKey, genres, cacheTTL); err != nil {
			return genres, nil
		}
	}
	return genres, nil
}
