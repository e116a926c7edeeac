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

package musicbrainz

import (
	"context"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
)

func TestLookupRelease_FlattensMedia(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	var gotUserAgent string
	httpmock.RegisterResponder("GET", `=~^https://musicbrainz\.org/ws/2/release/`,
		func(req *http.Request) (*http.Response, error) {
			gotUserAgent = req.Header.Get("User-Agent")
			return httpmock.NewStringResponse(200, `{
				"title": "Music Has the Right to Children",
				"artist-credit": [{"name": "Boards of Canada"}],
				"media": [
					{"tracks": [
						{"title": "Wildlife Analysis", "length": 77000},
						{"title": "An Eagle in Your Mind", "length": 378000}
					]},
					{"tracks": [
						{"title": "Roygbiv", "length": 148000}
					]}
				]
			}`), nil
		})

	client := NewClient("https://musicbrainz.org/ws/2", "Tonlage/1.0 (tonlage@example.com)")
	release, err := client.LookupRelease(context.Background(), "some-mbid")
	assert.NoError(t, err)
	assert.Equal(t, "Boards of Canada", release.Artist)
	assert.Len(t, release.Tracks, 3)
	assert.Equal(t, "Roygbiv", release.Tracks[2].Title)
	assert.Equal(t, int64(148000), release.Tracks[2].DurationMs)
	assert.Equal(t, "Tonlage/1.0 (tonlage@example.com)", gotUserAgent)
}

func TestLookupRecording_FirstCreditAndReleaseWin(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", `=~^https://musicbrainz\.org/ws/2/recording/`,
		httpmock.NewStringResponder(200, `{
			"title": "Roygbiv",
			"length": 148000,
			"artist-credit": [{"name": "Boards of Canada"}, {"name": "Someone Else"}],
			"releases": [
				{"title": "Music Has the Right to Children"},
				{"title": "A Compilation"}
			]
		}`))

	client := NewClient("https://musicbrainz.org/ws/2", "Tonlage/1.0")
	recording, err := client.LookupRecording(context.Background(), "some-mbid")
	assert.NoError(t, err)
	assert.Equal(t, "Roygbiv", recording.Title)
	assert.Equal(t, "Boards of Canada", recording.Artist)
	assert.Equal(t, "Music Has the Right to Children", recording.Album)
	assert.Equal(t, int64(148000), recording.DurationMs)
}

func TestLookupRecording_NoReleases(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", `=~^https://musicbrainz\.org/ws/2/recording/`,
		httpmock.NewStringResponder(200, `{
			"title": "Unreleased Session",
			"length": 90000,
			"artist-credit": [{"name": "Boards of Canada"}]
		}`))

	client := NewClient("https://musicbrainz.org/ws/2", "Tonlage/1.0")
	recording, err := client.LookupRecording(context.Background(), "some-mbid")
	assert.NoError(t, err)
	assert.Equal(t, "", recording.Album)
}

func TestLookupRelease_NotFound(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", `=~^https://musicbrainz\.org/ws/2/release/`,
		httpmock.NewStringResponder(404, `{"error": "Not Found"}`))

	client := NewClient("https://musicbrainz.org/ws/2", "Tonlage/1.0")
	_, err := client.LookupRelease(context.Background(), "missing-mbid")
	assert.Error(t, err)
}
