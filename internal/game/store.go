package game

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"log"
	"strings"
	"time"

	"snowman/pkg/realtime"
)

// Events published to a session's subscribers.
const (
	EventHUD     = "hud"
	EventOutcome = "outcome"
)

// Store holds live sessions and delegates to realtime.RoomStore for lookup,
// broadcast and the clock loop.
type Store struct {
	r      *realtime.RoomStore[*Session]
	tuning Tuning
}

// NewStore creates an in-memory session store using tuning for every new session.
func NewStore(tuning Tuning) *Store {
	return &Store{r: realtime.NewRoomStore[*Session](), tuning: tuning}
}

// Tuning returns the constants new sessions are created with.
func (s *Store) Tuning() Tuning {
	return s.tuning
}

// CreateSession registers a new, not yet started session for player.
func (s *Store) CreateSession(player Player, viewport Viewport) *Session {
	session := NewSession(player, viewport, s.tuning)
	s.r.Create(session.ID, session)
	return session
}

// GetSession returns a session by ID if it exists.
func (s *Store) GetSession(id string) (*Session, bool) {
	room, ok := s.r.Get(id)
	if !ok || room.State == nil {
		return nil, false
	}
	return room.State, true
}

// IDs returns the ids of every live session, sorted.
func (s *Store) IDs() []string {
	return s.r.IDs()
}

// Broadcaster returns the SSE broadcaster for a session.
func (s *Store) Broadcaster(id string) (*realtime.Broadcaster, bool) {
	return s.r.Broadcaster(id)
}

// Publish notifies subscribers of a session update with a typed event.
func (s *Store) Publish(id string, event string) {
	s.r.Publish(id, event)
}

// EnsureClockLoop starts the countdown loop for a session if not already running.
// The loop exits once the session finishes or is closed, publishing the outcome.
func (s *Store) EnsureClockLoop(id string) {
	getState := func() *Session {
		session, _ := s.GetSession(id)
		return session
	}
	tick := func(session *Session, now time.Time) (time.Time, []string, bool) {
		if session == nil {
			return time.Time{}, nil, true
		}
		changed := session.AdvanceClock(now)
		next, ok := session.NextTick(now)
		if !ok {
			if session.State() == StateFinished {
				return time.Time{}, []string{EventHUD, EventOutcome}, true
			}
			return time.Time{}, nil, true
		}
		if changed {
			return next, []string{EventHUD}, false
		}
		return next, nil, false
	}
	s.r.RunLoop(id, getState, tick)
}

// ClockRunning reports whether the countdown loop is active for a session.
func (s *Store) ClockRunning(id string) bool {
	return s.r.LoopRunning(id)
}

// WakeClockLoop makes the loop re-evaluate immediately, e.g. after a winning drop.
func (s *Store) WakeClockLoop(id string) {
	s.r.Wake(id)
}

// End tears a session down: its clock loop stops, its subscribers are
// closed and its pointer sources are released.
func (s *Store) End(id string) bool {
	session, ok := s.r.Remove(id)
	if !ok {
		return false
	}
	if session != nil {
		session.Close()
	}
	return true
}

// CloseAll ends every session. Used on shutdown.
func (s *Store) CloseAll() {
	for _, id := range s.r.IDs() {
		s.End(id)
	}
}

// Sweep ends sessions that nobody is watching and that have been idle for
// ttl. It returns the ids it ended.
func (s *Store) Sweep(now time.Time, ttl time.Duration) []string {
	var ended []string
	for _, id := range s.r.IDs() {
		session, ok := s.GetSession(id)
		if !ok {
			continue
		}
		if hub, ok := s.r.Broadcaster(id); ok && hub.Subscribers() > 0 {
			continue
		}
		if session.Expired(now, ttl) && s.End(id) {
			ended = append(ended, id)
		}
	}
	return ended
}

// RunSweeper calls Sweep every interval until ctx ends.
func (s *Store) RunSweeper(ctx context.Context, interval, ttl time.Duration, logger *log.Logger) {
	if logger == nil {
		logger = log.Default()
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if ended := s.Sweep(now.UTC(), ttl); len(ended) > 0 {
				logger.Printf("swept idle sessions count=%d", len(ended))
			}
		}
	}
}

func newID() string {
	// 10 bytes -> 16 chars of base32, short and url-safe.
	buf := make([]byte, 10)
	_, _ = rand.Read(buf)
	encoder := base32.StdEncoding.WithPadding(base32.NoPadding)
	return strings.ToLower(encoder.EncodeToString(buf))
}
