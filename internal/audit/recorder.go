// Cookbook API - Recipe sharing REST backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookbook

package audit

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/cookbook/internal/logging"
)

// Config holds configuration for the Recorder.
type Config struct {
	// Retention is how long events are kept by Prune.
	Retention time.Duration

	// BufferSize is the size of the async write buffer.
	BufferSize int

	// LogEvents also writes every event to the application log.
	LogEvents bool
}

// DefaultConfig returns the defaults used when no config is given.
func DefaultConfig() Config {
	return Config{
		Retention:  30 * 24 * time.Hour,
		BufferSize: 1000,
	}
}

// ErrClosed is returned by Prune after Close.
var ErrClosed = errors.New("audit recorder is closed")

// Recorder buffers events and writes them to a Store in the background.
// A nil *Recorder discards events.
type Recorder struct {
	config Config
	store  Store
	now    func() time.Time

	events chan *Event
	done   chan struct{}
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewRecorder starts a recorder writing to store.
func NewRecorder(store Store, config Config) *Recorder {
	defaults := DefaultConfig()
	if config.BufferSize <= 0 {
		config.BufferSize = defaults.BufferSize
	}
	if config.Retention <= 0 {
		config.Retention = defaults.Retention
	}

	r := &Recorder{
		config: config,
		store:  store,
		now:    time.Now,
		events: make(chan *Event, config.BufferSize),
		done:   make(chan struct{}),
	}

	r.wg.Add(1)
	go r.writer()

	return r
}

func (r *Recorder) writer() {
	defer r.wg.Done()

	for {
		select {
		case <-r.done:
			for {
				select {
				case event := <-r.events:
					r.write(event)
				default:
					return
				}
			}
		case event := <-r.events:
			r.write(event)
		}
	}
}

func (r *Recorder) write(event *Event) {
	if r.config.LogEvents {
		logging.Info().
			Str("component", "audit").
			Str("event_id", event.ID).
			Str("type", string(event.Type)).
			Str("outcome", string(event.Outcome)).
			Int64("actor_id", event.Actor.ID).
			Msg("Audit event")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := r.store.Save(ctx, event); err != nil {
		logging.Error().Err(err).Str("event_id", event.ID).Msg("Failed to save audit event")
		return
	}
	EventsRecorded.WithLabelValues(string(event.Type), string(event.Outcome)).Inc()
}

// Record queues event for storage, filling in ID, Timestamp and Severity
// when they are empty. It never blocks; events are dropped when the buffer
// is full or the recorder is closed.
func (r *Recorder) Record(event *Event) {
	if r == nil || event == nil {
		return
	}

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = r.now().UTC()
	}
	if event.Severity == "" {
		event.Severity = SeverityInfo
		if event.Outcome == OutcomeFailure {
			event.Severity = SeverityWarning
		}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		EventsDropped.Inc()
		return
	}

	select {
	case r.events <- event:
	default:
		EventsDropped.Inc()
		logging.Warn().Str("event_id", event.ID).Str("type", string(event.Type)).Msg("Audit buffer full, dropping event")
	}
}

// Close stops the writer after draining buffered events.
func (r *Recorder) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()

	close(r.done)
	r.wg.Wait()
	return nil
}

// Query returns stored events matching filter, most recent first.
func (r *Recorder) Query(ctx context.Context, filter QueryFilter) ([]Event, error) {
	return r.store.Query(ctx, filter)
}

// Count returns the number of stored events matching filter.
func (r *Recorder) Count(ctx context.Context, filter QueryFilter) (int64, error) {
	return r.store.Count(ctx, filter)
}

// Prune deletes events older than the retention period.
func (r *Recorder) Prune(ctx context.Context) error {
	r.mu.RLock()
	closed := r.closed
	r.mu.RUnlock()
	if closed {
		return ErrClosed
	}

	cutoff := r.now().Add(-r.config.Retention)
	count, err := r.store.Delete(ctx, cutoff)
	if err != nil {
		return err
	}
	if count > 0 {
		logging.Info().Int64("count", count).Time("cutoff", cutoff).Msg("Pruned audit events")
	}
	return nil
}

// SourceFromRequest extracts the client address and user agent.
func SourceFromRequest(req *http.Request) Source {
	ip := req.RemoteAddr
	if host, _, err := net.SplitHostPort(req.RemoteAddr); err == nil {
		ip = host
	}
	return Source{IPAddress: ip, UserAgent: req.UserAgent()}
}
