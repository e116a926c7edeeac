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

package database

import (
	"context"
	"time"

	"github.com/tonlage/tonlage/model"
)

// IDataSource defines the interface for data source operations, grouping related functionalities.
type IDataSource interface {
	artist   // Artist rows and the genre enrichment dimension
	track    // Track rows, the youtube-code and download dimensions
	workflow // Workflow record operations
	play     // Play records and the notifier's read model
}

// artist defines methods for the genre enrichment dimension.
type artist interface {
	GetArtistByName(ctx context.Context, name string) (*model.Artist, error)        // Retrieves an artist by exact name
	GetArtistName(ctx context.Context, artistID int64) (string, error)              // Retrieves only the artist name
	ClaimArtistGenre(ctx context.Context, artistID int64) (bool, error)             // Flips genre_status none -> loading; true iff this caller won
	MarkArtistGenreDone(ctx context.Context, artistID int64) error                  // Terminal, idempotent
	MarkArtistGenreError(ctx context.Context, artistID int64, message string) error // Terminal, idempotent
	WriteArtistGenres(ctx context.Context, artistID int64, genres []string) error   // Upserts genres and links them to the artist
	ArtistsMissingGenres(ctx context.Context) ([]model.Artist, error)               // Backfill view: artists with no genre links
}

// track defines methods for the youtube-code and download dimensions.
type track interface {
	GetTrack(ctx context.Context, trackID int64) (*model.Track, error)
	GetTrackByTitle(ctx context.Context, artistID int64, title string) (*model.Track, error)
	NextQueuedDownload(ctx context.Context) (*model.DownloadJob, error)  // Oldest queued track, FIFO by created_at; nil when queue empty
	ClaimTrackDownload(ctx context.Context, trackID int64) (bool, error) // Flips download_status queued -> downloading
	MarkTrackDownloaded(ctx context.Context, trackID int64, filePath, format string) error
	MarkTrackDownloadError(ctx context.Context, trackID int64, message string) error
	ClaimTrackYoutube(ctx context.Context, trackID int64) (bool, error)                // Flips youtube_status none -> loading
	MarkTrackYoutubeDone(ctx context.Context, trackID int64, youtubeCode string) error // Empty code is a completed no-op lookup
	MarkTrackYoutubeError(ctx context.Context, trackID int64) error
	TracksMissingYoutubeCode(ctx context.Context) ([]model.Track, error)                                     // Backfill view
	ImportAlbum(ctx context.Context, artistName, albumTitle string, tracks []model.TrackImport) (int, error) // Returns number of newly inserted tracks
}

// workflow defines the workflow record state machine.
type workflow interface {
	CreateWorkflow(ctx context.Context, genreRequired, ytRequired bool) (string, error) // Inserts the record and returns its id before any producer starts
	SetWorkflowFlag(ctx context.Context, workflowID, flag string) error                 // Idempotent monotonic OR
	GetWorkflow(ctx context.Context, workflowID string) (*model.Workflow, error)
}

// play defines play recording and the notifier's read model.
type play interface {
	RecordPlay(ctx context.Context, artistName, albumTitle, trackTitle string, durationMs int64, playedAt time.Time, skipped bool, workflowID string) error
	GetPlayIDByWorkflow(ctx context.Context, workflowID string) (int64, error)
	GetPlayDetail(ctx context.Context, playID int64) (*model.PlayDetail, error)
	GetRecentPlays(ctx context.Context, limit int) ([]model.Play, error)
}
