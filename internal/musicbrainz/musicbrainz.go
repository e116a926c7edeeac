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

// Package musicbrainz fetches release track listings for album imports.
// MusicBrainz requires a descriptive User-Agent on every call.
package musicbrainz

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
	"github.com/tonlage/tonlage/internal/request"
)

type Client struct {
	baseURL   string
	userAgent string
}

func NewClient(baseURL, userAgent string) *Client {
	return &Client{baseURL: baseURL, userAgent: userAgent}
}

type Release struct {
	Title  string
	Artist string
	Tracks []ReleaseTrack
}

type ReleaseTrack struct {
	Title      string
	DurationMs int64
}

// Recording is a single MusicBrainz recording with the release it most
// recently appeared on, if any.
type Recording struct {
	Title      string
	Artist     string
	Album      string
	DurationMs int64
}

type recordingResponse struct {
	Title        string `json:"title"`
	Length       int64  `json:"length"`
	ArtistCredit []struct {
		Name string `json:"name"`
	} `json:"artist-credit"`
	Releases []struct {
		Title string `json:"title"`
	} `json:"releases"`
	Error string `json:"error"`
}

type releaseResponse struct {
	Title        string `json:"title"`
	ArtistCredit []struct {
		Name string `json:"name"`
	} `json:"artist-credit"`
	Media []struct {
		Tracks []struct {
			Title  string `json:"title"`
			Length int64  `json:"length"`
		} `json:"tracks"`
	} `json:"media"`
	Error string `json:"error"`
}

// LookupRelease fetches a release by MBID with its recordings, flattening
// multi-disc media into one track list in disc order.
func (c *Client) LookupRelease(ctx context.Context, mbid string) (*Release, error) {
	endpoint := c.baseURL + "/release/" + mbid + "?inc=recordings+artist-credits&fmt=json"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, "building musicbrainz request")
	}
	req.Header.Set("User-Agent", c.userAgent)

	var body releaseResponse
	resp, err := request.Call(req, &body)
	if err != nil {
		return nil, errors.Wrap(err, "calling musicbrainz")
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, errors.Errorf("release %s not found", mbid)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("musicbrainz returned status %d", resp.StatusCode)
	}
	if body.Error != "" {
		return nil, errors.Errorf("musicbrainz error: %s", body.Error)
	}

	release := &Release{Title: body.Title}
	if len(body.ArtistCredit) > 0 {
		release.Artist = body.ArtistCredit[0].Name
	}
	for _, medium := range body.Media {
		for _, track := range medium.Tracks {
			release.Tracks = append(release.Tracks, ReleaseTrack{
				Title:      track.Title,
				DurationMs: track.Length,
			})
		}
	}
	return release, nil
}

// LookupRecording fetches a single recording by MBID with its artist credit
// and releases. The first credited artist and the first release title win.
func (c *Client) LookupRecording(ctx context.Context, mbid string) (*Recording, error) {
	endpoint := c.baseURL + "/recording/" + mbid + "?inc=artists+releases&fmt=json"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, "building musicbrainz request")
	}
	req.Header.Set("User-Agent", c.userAgent)

	var body recordingResponse
	resp, err := request.Call(req, &body)
	if err != nil {
		return nil, errors.Wrap(err, "calling musicbrainz")
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, errors.Errorf("recording %s not found", mbid)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("musicbrainz returned status %d", resp.StatusCode)
	}
	if body.Error != "" {
		return nil, errors.Errorf("musicbrainz error: %s", body.Error)
	}

	recording := &Recording{Title: body.Title, DurationMs: body.Length}
	if len(body.ArtistCredit) > 0 {
		recording.Artist = body.ArtistCredit[0].Name
	}
	if len(body.Releases) > 0 {
		recording.Album = body.Releases[0].Title
	}
	return recording, nil
}
