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

	"github.com/sirupsen/logrus"
	"github.com/tonlage/tonlage/model"
)

// AlbumImportResult summarises one MusicBrainz-backed import.
type AlbumImportResult struct {
	Artist         string `json:"artist"`
	Album          string `json:"album"`
	TotalTracks    int    `json:"total_tracks"`
	InsertedTracks int    `json:"inserted_tracks"`
}

// ImportAlbum looks a release up by MBID and writes its track listing into
// the catalogue. Tracks the catalogue already has are left untouched; new
// ones enter the video and download pipelines through the insert triggers.
func (t *Tonlage) ImportAlbum(ctx context.Context, mbid string) (*AlbumImportResult, error) {
	release, err := t.musicbrainz.LookupRelease(ctx, mbid)
	if err != nil {
		return nil, err
	}

	imports := make([]model.TrackImport, 0, len(release.Tracks))
	for _, track := range release.Tracks {
		imports = append(imports, model.TrackImport{Title: track.Title, DurationMs: track.DurationMs})
	}

	inserted, err := t.datasource.ImportAlbum(ctx, release.Artist, release.Title, imports)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"artist":   release.Artist,
		"album":    release.Title,
		"inserted": inserted,
	}).Info("album imported")

	return &AlbumImportResult{
		Artist:         release.Artist,
		Album:          release.Title,
		TotalTracks:    len(release.Tracks),
		InsertedTracks: inserted,
	}, nil
}

// TrackImportResult summarises a single-recording import.
type TrackImportResult struct {
	Artist   string `json:"artist"`
	Album    string `json:"album,omitempty"`
	Title    string `json:"title"`
	Inserted bool   `json:"inserted"`
}

// ImportTrack looks a single recording up by MBID and writes it into the
// catalogue, attached to the recording's first release when it has one.
func (t *Tonlage) ImportTrack(ctx context.Context, mbid string) (*TrackImportResult, error) {
	recording, err := t.musicbrainz.LookupRecording(ctx, mbid)
	if err != nil {
		return nil, err
	}

	imports := []model.TrackImport{{Title: recording.Title, DurationMs: recording.DurationMs}}
	inserted, err := t.datasource.ImportAlbum(ctx, recording.Artist, recording.Album, imports)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"artist":   recording.Artist,
		"title":    recording.Title,
		"inserted": inserted,
	}).Info("track imported")

	return &TrackImportResult{
		Artist:   recording.Artist,
		Album:    recording.Album,
		Title:    recording.Title,
		Inserted: inserted > 0,
	}, nil
}
