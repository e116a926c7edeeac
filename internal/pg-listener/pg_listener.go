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

// Package pg_listener turns a Postgres LISTEN/NOTIFY channel into a
// supervised stream of decoded JSON payloads. The relay reconnects forever
// on connection loss; a payload is only ever a wake-up hint, so consumers
// re-read authoritative row state before acting on one.
package pg_listener

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// Payload is one decoded notification body.
type Payload map[string]interface{}

// Int64 extracts an integer field. JSON numbers arrive as float64; ids
// emitted by triggers may also arrive as strings.
func (p Payload) Int64(key string) (int64, bool) {
	switch v := p[key].(type) {
	case float64:
		return int64(v), true
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// String extracts a string field.
func (p Payload) String(key string) (string, bool) {
	v, ok := p[key].(string)
	return v, ok
}

// Handler consumes one payload. A returned error is logged and the relay
// moves on; a bad event never stops the stream.
type Handler func(ctx context.Context, payload Payload) error

// notifier is the slice of *pq.Listener the relay depends on. Tests swap in
// a fake to exercise reconnect behavior without a database.
type notifier interface {
	Listen(channel string) error
	NotificationChannel() <-chan *pq.Notification
	Ping() error
	Close() error
}

// Relay supervises one LISTEN subscription per Subscribe call.
type Relay struct {
	heartbeat     time.Duration
	reconnectWait time.Duration
	newNotifier   func() notifier
}

const (
	defaultHeartbeat     = 5 * time.Second
	defaultReconnectWait = 5 * time.Second
	minReconnectInterval = 10 * time.Second
	maxReconnectInterval = time.Minute
)

// NewRelay returns a relay that opens dedicated listener connections against
// connStr.
func NewRelay(connStr string) *Relay {
	return &Relay{
		heartbeat:     defaultHeartbeat,
		reconnectWait: defaultReconnectWait,
		newNotifier: func() notifier {
			return pq.NewListener(connStr, minReconnectInterval, maxReconnectInterval, func(ev pq.ListenerEventType, err error) {
				if err != nil {
					logrus.WithError(err).Warn("pg listener event error")
				}
			})
		},
	}
}

// WithHeartbeat overrides the bounded wait used as a liveness check.
func (r *Relay) WithHeartbeat(d time.Duration) *Relay {
	r.heartbeat = d
	return r
}

// WithReconnectWait overrides the pause between failed subscribe cycles.
func (r *Relay) WithReconnectWait(d time.Duration) *Relay {
	r.reconnectWait = d
	return r
}

// Subscribe listens on channel and feeds decoded payloads to handler until
// ctx is cancelled. Connection errors restart the whole subscribe sequence
// after a fixed backoff; the relay never gives up on its own.
func (r *Relay) Subscribe(ctx context.Context, channel string, handler Handler) {
	policy := backoff.WithContext(backoff.NewConstantBackOff(r.reconnectWait), ctx)

	operation := func() error {
		err := r.listenOnce(ctx, channel, handler)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"channel": channel,
				"error":   err,
			}).Error("listener connection lost, will retry")
		}
		return err
	}

	// backoff.Retry returns when the operation succeeds (clean shutdown)
	// or the context is cancelled.
	_ = backoff.Retry(operation, policy)
	logrus.WithField("channel", channel).Info("listener stopped")
}

// listenOnce runs one connect-listen-drain cycle. It returns nil on clean
// shutdown and an error when the connection should be rebuilt.
func (r *Relay) listenOnce(ctx context.Context, channel string, handler Handler) error {
	listener := r.newNotifier()
	defer func() {
		if err := listener.Close(); err != nil {
			logrus.WithError(err).Debug("error closing listener")
		}
	}()

	if err := listener.Listen(channel); err != nil {
		return err
	}
	logrus.WithField("channel", channel).Info("listening for notifications")

	notifications := listener.NotificationChannel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case n := <-notifications:
			// A nil notification signals that the underlying
			// connection was re-established; outstanding events may
			// have been missed, so callers must not treat payloads
			// as state.
			if n == nil {
				continue
			}
			r.dispatch(ctx, channel, n, handler)
			r.drain(ctx, channel, notifications, handler)
		case <-time.After(r.heartbeat):
			logrus.WithField("channel", channel).Debug("no notifications, still listening")
			if err := listener.Ping(); err != nil {
				return err
			}
		}
	}
}

// drain consumes every currently buffered notification before the relay
// goes back to waiting. Events often arrive in batches.
func (r *Relay) drain(ctx context.Context, channel string, notifications <-chan *pq.Notification, handler Handler) {
	for {
		select {
		case n := <-notifications:
			if n == nil {
				return
			}
			r.dispatch(ctx, channel, n, handler)
		default:
			return
		}
	}
}

func (r *Relay) dispatch(ctx context.Context, channel string, n *pq.Notification, handler Handler) {
	var payload Payload
	if err := json.Unmarshal([]byte(n.Extra), &payload); err != nil {
		logrus.WithFields(logrus.Fields{
			"channel": channel,
			"payload": n.Extra,
		}).Warn("invalid JSON payload in notification, dropping")
		return
	}

	if err := handler(ctx, payload); err != nil {
		logrus.WithFields(logrus.Fields{
			"channel": channel,
			"error":   err,
		}).Error("error handling notification")
	}
}
