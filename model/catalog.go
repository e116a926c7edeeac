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

package model

import "time"

// Enrichment status values. The status column is the concurrency-control
// field for an enrichment dimension: a worker owns an item only after it has
// flipped the status from StatusNone to StatusLoading with a conditional
// update. Terminal states are StatusDone and StatusError.
const (
	StatusNone    = "none"
	StatusLoading = "loading"
	StatusDone    = "done"
	StatusError   = "error"
)

// Download status values for the audio download dimension. They follow the
// same none -> loading -> terminal shape but keep the column values the
// player-facing tooling already knows.
const (
	DownloadQueued     = "queued"
	DownloadInProgress = "downloading"
	DownloadDone       = "done"
	DownloadError      = "error"
)

// Artist is a catalog row subject to the genre enrichment dimension.
type Artist struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	GenreStatus string    `json:"genre_status"`
	WorkflowID  string    `json:"workflow_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Track is a catalog row subject to the youtube-code and download dimensions.
type Track struct {
	ID             int64      `json:"id"`
	ArtistID       int64      `json:"artist_id"`
	Title          string     `json:"title"`
	DurationMs     int64      `json:"duration_ms"`
	YoutubeCode    string     `json:"youtube_code,omitempty"`
	YoutubeStatus  string     `json:"youtube_status"`
	DownloadStatus string     `json:"download_status"`
	FilePath       string     `json:"file_path,omitempty"`
	AudioFormat    string     `json:"audio_format,omitempty"`
	DownloadError  string     `json:"download_error,omitempty"`
	DownloadedAt   *time.Time `json:"downloaded_at,omitempty"`
	WorkflowID     string     `json:"workflow_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// DownloadJob is the work item handed to the download worker pool: one
// queued track joined with its artist names, oldest first.
type DownloadJob struct {
	TrackID     int64  `json:"track_id"`
	Artist      string `json:"artist"`
	Title       string `json:"title"`
	YoutubeCode string `json:"youtube_code"`
}

// TrackImport is one track of a catalogue import that did not come from a
// play.
type TrackImport struct {
	Title      string `json:"title"`
	DurationMs int64  `json:"duration_ms"`
}
