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

	"github.com/tonlage/tonlage/model"
)

// Read-side pass-throughs for the HTTP surface.

func (t *Tonlage) ArtistByName(ctx context.Context, name string) (*model.Artist, error) {
	return t.datasource.GetArtistByName(ctx, name)
}

func (t *Tonlage) TrackByID(ctx context.Context, trackID int64) (*model.Track, error) {
	return t.datasource.GetTrack(ctx, trackID)
}

func (t *Tonlage) Workflow(ctx context.Context, workflowID string) (*model.Workflow, error) {
	return t.datasource.GetWorkflow(ctx, workflowID)
}

func (t *Tonlage) RecentPlays(ctx context.Context, limit int) ([]model.Play, error) {
	return t.datasource.GetRecentPlays(ctx, limit)
}

func (t *Tonlage) PlayDetail(ctx context.Context, playID int64) (*model.PlayDetail, error) {
	return t.datasource.GetPlayDetail(ctx, playID)
}
