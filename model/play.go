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

import (
	"fmt"
	"time"
)

// NowPlaying is one observation of the playback source collaborator.
// Position and duration are in milliseconds.
type NowPlaying struct {
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	Album      string `json:"album"`
	DurationMs int64  `json:"duration"`
	PositionMs int64  `json:"position"`
	Playing    bool   `json:"playing"`
	ListenerID string `json:"listener_id"`
	DeviceID   string `json:"device_id"`
}

// TrackKey identifies the playing track within a session. Two observations
// with the same key belong to the same track.
func (n NowPlaying) TrackKey() string {
	return fmt.Sprintf("%s - %s", n.Artist, n.Title)
}

// Play is one finalized, skip-classified listening event.
type Play struct {
	ID         int64     `json:"id"`
	TrackID    int64     `json:"track_id"`
	PlayedAt   time.Time `json:"played_at"`
	Skipped    bool      `json:"skipped"`
	WorkflowID string    `json:"workflow_id"`
}

// PlayDetail is the joined view the chat notifier works with: one play with
// its track, artist and genre context.
type PlayDetail struct {
	PlayID      int64    `json:"play_id"`
	Title       string   `json:"title"`
	Artist      string   `json:"artist"`
	Genres      []string `json:"genres"`
	YoutubeCode string   `json:"youtube_code"`
	Skipped     bool     `json:"skipped"`
}

// SameTrack reports whether two play details refer to the same recording.
// The notifier uses it to suppress repeat announcements.
func (p *PlayDetail) SameTrack(other *PlayDetail) bool {
	if other == nil {
		return false
	}
	return p.Title == other.Title && p.Artist == other.Artist
}
