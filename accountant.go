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
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tonlage/tonlage/model"
)

const (
	// Polling never backs off beyond this when the player is down.
	maxPollInterval = 60 * time.Second
	// A session with no polls for this long belongs to a listener who went
	// away mid-track.
	sessionStaleAfter = 30 * time.Second
)

// nowPlayingSource is the slice of the media server the accountant needs.
type nowPlayingSource interface {
	NowPlaying(ctx context.Context) (*model.NowPlaying, error)
}

// Accountant turns a stream of now-playing polls into play records. Each
// finished play opens a workflow, writes the play row (which fires the
// insert triggers the enrichment stages listen on) and raises init_done.
type Accountant struct {
	tonlage      *Tonlage
	player       nowPlayingSource
	pollInterval time.Duration
	sessions     map[sessionKey]*playSession
	clock        func() time.Time
}

func NewAccountant(t *Tonlage, player nowPlayingSource, pollInterval time.Duration) *Accountant {
	return &Accountant{
		tonlage:      t,
		player:       player,
		pollInterval: pollInterval,
		sessions:     make(map[sessionKey]*playSession),
		clock:        time.Now,
	}
}

// Run polls until the context is cancelled. While the player is
// unreachable the interval doubles up to a ceiling, then snaps back on the
// first good poll.
func (a *Accountant) Run(ctx context.Context) {
	interval := a.pollInterval
	for {
		select {
		case <-ctx.Done():
			// The run context is already cancelled; the final sessions
			// still need a live one to land in the database.
			flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			a.flush(flushCtx)
			cancel()
			return
		case <-time.After(interval):
		}

		np, err := a.player.NowPlaying(ctx)
		if err != nil {
			logrus.WithError(err).Warn("now-playing poll failed")
			interval *= 2
			if interval > maxPollInterval {
				interval = maxPollInterval
			}
			continue
		}
		interval = a.pollInterval

		a.Observe(ctx, np, a.clock())
	}
}

// Observe folds one poll result into the session table. A nil poll means
// nothing is playing and closes every open session.
func (a *Accountant) Observe(ctx context.Context, np *model.NowPlaying, now time.Time) {
	if np == nil || np.Title == "" {
		a.flushAt(ctx, now)
		return
	}

	key := sessionKey{listener: np.ListenerID, device: np.DeviceID}
	current, ok := a.sessions[key]

	switch {
	case !ok:
		a.sessions[key] = newPlaySession(np, now)
	case !current.sameTrack(np):
		a.closeSession(ctx, current, now)
		a.sessions[key] = newPlaySession(np, now)
	case current.looped(np):
		// The track wrapped around. Credit the unheard tail, book the
		// completed pass and start counting the next one.
		current.creditToEnd()
		a.closeSession(ctx, current, now)
		a.sessions[key] = newPlaySession(np, now)
	default:
		current.observe(np, now)
	}

	a.expireStale(ctx, now)
}

// expireStale closes sessions whose listener stopped polling without a
// track change ever arriving.
func (a *Accountant) expireStale(ctx context.Context, now time.Time) {
	for key, session := range a.sessions {
		if now.Sub(session.lastSeenAt) > sessionStaleAfter {
			delete(a.sessions, key)
			a.record(ctx, session, now)
		}
	}
}

func (a *Accountant) closeSession(ctx context.Context, s *playSession, now time.Time) {
	delete(a.sessions, s.key)
	a.record(ctx, s, now)
}

// record books one finished session: workflow, play row, init flag.
func (a *Accountant) record(ctx context.Context, s *playSession, now time.Time) {
	skipped, keep := s.finalize(now)
	if !keep {
		return
	}

	workflowID, err := a.tonlage.BeginWorkflow(ctx, s.artist, s.title)
	if err != nil {
		logrus.WithError(err).WithField("track", s.title).Error("failed to open play workflow")
		workflowID = ""
	}

	err = a.tonlage.datasource.RecordPlay(ctx, s.artist, s.album, s.title, s.durationMs, s.startedAt, skipped, workflowID)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"artist": s.artist,
			"track":  s.title,
		}).Error("failed to record play")
		return
	}

	logrus.WithFields(logrus.Fields{
		"artist":  s.artist,
		"track":   s.title,
		"skipped": skipped,
	}).Info("play recorded")

	if workflowID != "" {
		if err := a.tonlage.CompleteWorkflowInit(ctx, workflowID); err != nil {
			logrus.WithError(err).WithField("workflow_id", workflowID).Error("failed to raise init flag")
		}
	}
}

func (a *Accountant) flush(ctx context.Context) {
	a.flushAt(ctx, a.clock())
}

func (a *Accountant) flushAt(ctx context.Context, now time.Time) {
	for key, session := range a.sessions {
		delete(a.sessions, key)
		a.record(ctx, session, now)
	}
}
