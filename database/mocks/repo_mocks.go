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
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/tonlage/tonlage/model"
)

// MockDataSource is a mock implementation of the IDataSource interface
type MockDataSource struct {
	mock.Mock
}

// Artist methods

func (m *MockDataSource) GetArtistByName(ctx context.Context, name string) (*model.Artist, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Artist), args.Error(1)
}

func (m *MockDataSource) GetArtistName(ctx context.Context, artistID int64) (string, error) {
	args := m.Called(ctx, artistID)
	return args.String(0), args.Error(1)
}

func (m *MockDataSource) ClaimArtistGenre(ctx context.Context, artistID int64) (bool, error) {
	args := m.Called(ctx, artistID)
	return args.Bool(0), args.Error(1)
}

func (m *MockDataSource) MarkArtistGenreDone(ctx context.Context, artistID int64) error {
	args := m.Called(ctx, artistID)
	return args.Error(0)
}

func (m *MockDataSource) MarkArtistGenreError(ctx context.Context, artistID int64, message string) error {
	args := m.Called(ctx, artistID, message)
	return args.Error(0)
}

func (m *MockDataSource) WriteArtistGenres(ctx context.Context, artistID int64, genres []string) error {
	args := m.Called(ctx, artistID, genres)
	return args.Error(0)
}

func (m *MockDataSource) ArtistsMissingGenres(ctx context.Context) ([]model.Artist, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Artist), args.Error(1)
}

// Track methods

func (m *MockDataSource) GetTrack(ctx context.Context, trackID int64) (*model.Track, error) {
	args := m.Called(ctx, trackID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Track), args.Error(1)
}

func (m *MockDataSource) GetTrackByTitle(ctx context.Context, artistID int64, title string) (*model.Track, error) {
	args := m.Called(ctx, artistID, title)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Track), args.Error(1)
}

func (m *MockDataSource) NextQueuedDownload(ctx context.Context) (*model.DownloadJob, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DownloadJob), args.Error(1)
}

func (m *MockDataSource) ClaimTrackDownload(ctx context.Context, trackID int64) (bool, error) {
	args := m.Called(ctx, trackID)
	return args.Bool(0), args.Error(1)
}

func (m *MockDataSource) MarkTrackDownloaded(ctx context.Context, trackID int64, filePath, format string) error {
	args := m.Called(ctx, trackID, filePath, format)
	return args.Error(0)
}

func (m *MockDataSource) MarkTrackDownloadError(ctx context.Context, trackID int64, message string) error {
	args := m.Called(ctx, trackID, message)
	return args.Error(0)
}

func (m *MockDataSource) ClaimTrackYoutube(ctx context.Context, trackID int64) (bool, error) {
	args := m.Called(ctx, trackID)
	return args.Bool(0), args.Error(1)
}

func (m *MockDataSource) MarkTrackYoutubeDone(ctx context.Context, trackID int64, youtubeCode string) error {
	args := m.Called(ctx, trackID, youtubeCode)
	return args.Error(0)
}

func (m *MockDataSource) MarkTrackYoutubeError(ctx context.Context, trackID int64) error {
	args := m.Called(ctx, trackID)
	return args.Error(0)
}

func (m *MockDataSource) TracksMissingYoutubeCode(ctx context.Context) ([]model.Track, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Track), args.Error(1)
}

func (m *MockDataSource) ImportAlbum(ctx context.Context, artistName, albumTitle string, tracks []model.TrackImport) (int, error) {
	args := m.Called(ctx, artistName, albumTitle, tracks)
	return args.Int(0), args.Error(1)
}

// Workflow methods

func (m *MockDataSource) CreateWorkflow(ctx context.Context, genreRequired, ytRequired bool) (string, error) {
	args := m.Called(ctx, genreRequired, ytRequired)
	return args.String(0), args.Error(1)
}

func (m *MockDataSource) SetWorkflowFlag(ctx context.Context, workflowID string, flag string) error {
	args := m.Called(ctx, workflowID, flag)
	return args.Error(0)
}

func (m *MockDataSource) GetWorkflow(ctx context.Context, workflowID string) (*model.Workflow, error) {
	args := m.Called(ctx, workflowID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Workflow), args.Error(1)
}

// Play methods

func (m *MockDataSource) RecordPlay(ctx context.Context, artistName, albumTitle, trackTitle string, durationMs int64, playedAt time.Time, skipped bool, workflowID string) error {
	args := m.Called(ctx, artistName, albumTitle, trackTitle, durationMs, playedAt, skipped, workflowID)
	return args.Error(0)
}

func (m *MockDataSource) GetPlayIDByWorkflow(ctx context.Context, workflowID string) (int64, error) {
	args := m.Called(ctx, workflowID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDataSource) GetPlayDetail(ctx context.Context, playID int64) (*model.PlayDetail, error) {
	args := m.Called(ctx, playID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PlayDetail), args.Error(1)
}

func (m *MockDataSource) GetRecentPlays(ctx context.Context, limit int) ([]model.Play, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Play), args.Error(1)
}
