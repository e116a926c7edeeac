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
	"time"

	"github.com/tonlage/tonlage/model"
)

const (
	// A play is complete once this share of the track has been heard.
	skipThreshold = 0.9
	// Short tracks stop mattering: if less than this remains unheard, the
	// play is never a skip.
	minSkipMs = 5000
	// Plays shorter than this are polling noise and are dropped.
	minPlaytimeMs = 100
	// A backward jump from within this share of the end of the track is
	// the same track looping, not a seek.
	loopEndShare = 0.15
)

type sessionKey struct {
	listener string
	device   string
}

// playSession accumulates listening time for one track on one device.
// Position deltas between polls are summed; backward movement never
// subtracts, so seeks and loops cannot produce negative listening time.
type playSession struct {
	key        sessionKey
	artist     string
	album      string
	title      string
	durationMs int64

	lastPositionMs int64
	accumulatedMs  int64
	startedAt      time.Time
	lastSeenAt     time.Time
}

func newPlaySession(np *model.NowPlaying, now time.Time) *playSession {
	s := &playSession{
		key:            sessionKey{listener: np.ListenerID, device: np.DeviceID},
		artist:         np.Artist,
		album:          np.Album,
		title:          np.Title,
		durationMs:     np.DurationMs,
		lastPositionMs: np.PositionMs,
		startedAt:      now,
		lastSeenAt:     now,
	}
	// A session picked up mid-track starts with the position already
	// heard, but only if the transport is actually playing.
	if np.Playing {
		s.accumulatedMs = np.PositionMs
	}
	return s
}

// sameTrack reports whether the poll is still the session's track.
func (s *playSession) sameTrack(np *model.NowPlaying) bool {
	return s.artist == np.Artist && s.title == np.Title
}

// looped reports whether a backward position jump means the track wrapped
// around rather than the listener seeking back.
func (s *playSession) looped(np *model.NowPlaying) bool {
	if np.PositionMs >= s.lastPositionMs {
		return false
	}
	if s.durationMs <= 0 {
		return false
	}
	nearEnd := s.lastPositionMs >= s.durationMs-int64(float64(s.durationMs)*loopEndShare)
	nearStart := np.PositionMs <= int64(float64(s.durationMs)*loopEndShare)
	return nearEnd && nearStart
}

// observe folds one poll into the session. Position movement only counts
// while the transport reports it is playing; a paused seek moves
// lastPositionMs without crediting time.
func (s *playSession) observe(np *model.NowPlaying, now time.Time) {
	if np.Playing {
		delta := np.PositionMs - s.lastPositionMs
		if delta > 0 {
			s.accumulatedMs += delta
		}
	}
	s.lastPositionMs = np.PositionMs
	s.lastSeenAt = now
}

// creditToEnd adds the unheard tail before a loop finalizes the pass.
func (s *playSession) creditToEnd() {
	if s.durationMs > s.lastPositionMs {
		s.accumulatedMs += s.durationMs - s.lastPositionMs
		s.lastPositionMs = s.durationMs
	}
}

// finalize classifies the finished session. The second return is false when
// the play was too short to record at all.
func (s *playSession) finalize(now time.Time) (skipped bool, record bool) {
	if s.accumulatedMs < minPlaytimeMs {
		return false, false
	}
	if s.durationMs <= 0 {
		return false, true
	}

	heardEnough := float64(s.accumulatedMs) >= skipThreshold*float64(s.durationMs)
	missedTail := s.durationMs-s.accumulatedMs > minSkipMs
	skipped = !heardEnough && missedTail

	// A full-listen verdict reached in less wall-clock time than the track
	// takes to play means the track ended early, not that it was heard.
	if !skipped && now.Sub(s.startedAt).Milliseconds() < int64(skipThreshold*float64(s.durationMs)) {
		skipped = true
	}
	return skipped, true
}
