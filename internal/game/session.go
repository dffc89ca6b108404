package game

import (
	"errors"
	"sync"
	"time"

	"snowman/pkg/realtime"
)

// State is the session lifecycle stage. It only moves forward.
type State string

const (
	StateNotStarted State = "not_started"
	StatePlaying    State = "playing"
	StateFinished   State = "finished"
)

// SubmitStatus tracks the score submission for a finished session.
type SubmitStatus string

const (
	SubmitIdle    SubmitStatus = "idle"
	SubmitPending SubmitStatus = "pending"
	SubmitSuccess SubmitStatus = "success"
	SubmitError   SubmitStatus = "error"
)

// floatingDrawOrder keeps unplaced parts above the assembled snowman.
const floatingDrawOrder = 99

var (
	ErrAlreadyStarted   = errors.New("session already started")
	ErrNotPlaying       = errors.New("session not in progress")
	ErrNoPlayer         = errors.New("session has no player identity")
	ErrClosed           = errors.New("session closed")
	ErrSubmitNotAllowed = errors.New("score submission requires a won session")
	ErrSubmitPending    = errors.New("score submission already in progress")
	ErrAlreadySubmitted = errors.New("score already submitted")
)

// Player is the identity a session plays under, as issued by the gateway.
type Player struct {
	ID   string
	Name string
}

// Session is the authoritative state of one game. Every input goes through
// its methods, which hold the lock for a whole transition, so a clock tick
// never lands in the middle of a pick or drop.
type Session struct {
	mu        sync.Mutex
	ID        string
	CreatedAt time.Time
	Player    Player
	Viewport  Viewport
	Tuning    Tuning

	state      State
	registry   *Registry
	pool       PartPool
	stack      PlacedStack
	controller *Controller
	clock      Clock
	countdown  realtime.Countdown
	startedAt  time.Time
	finishedAt time.Time
	lastUsed   time.Time

	outcome    Outcome
	hasOutcome bool
	submit     SubmitStatus
	submitErr  string

	closed      bool
	releases    map[int]func()
	nextRelease int
}

// NewSession creates a session that has not started yet.
func NewSession(player Player, viewport Viewport, tuning Tuning) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        newID(),
		CreatedAt: now,
		Player:    player,
		Viewport:  viewport.Normalize(),
		Tuning:    tuning,
		state:     StateNotStarted,
		clock:     NewClock(tuning.DurationSeconds),
		countdown: realtime.NewCountdown(realtime.DefaultTickInterval),
		submit:    SubmitIdle,
		lastUsed:  now,
	}
}

// Start lays out the targets and the tray and starts the clock.
func (s *Session) Start(now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.state != StateNotStarted {
		return ErrAlreadyStarted
	}
	if s.Player.ID == "" {
		return ErrNoPlayer
	}
	s.registry = NewRegistry(s.Viewport)
	for _, part := range TrayParts(s.Viewport, s.registry) {
		s.pool.Add(part)
	}
	s.controller = NewController(&s.pool, &s.stack, s.registry, s.Tuning)
	s.state = StatePlaying
	s.startedAt = now
	s.lastUsed = now
	s.clock.Start()
	s.countdown.Start(now)
	return nil
}

// HandlePointer feeds one pointer sample (nil when tracking is lost) to the
// controller. A placement that completes the snowman finishes the session.
func (s *Session) HandlePointer(sample *PointerSample, now time.Time) (Action, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ActionNone, ErrClosed
	}
	if s.state != StatePlaying {
		return ActionNone, ErrNotPlaying
	}
	s.lastUsed = now
	action := s.controller.HandlePointer(sample)
	if action == ActionPlace && IsComplete(&s.stack, s.registry) {
		s.finishLocked(true, now)
	}
	return action, nil
}

// AdvanceClock applies every whole-second tick due at now and reports
// whether the countdown moved.
func (s *Session) AdvanceClock(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.state != StatePlaying {
		return false
	}
	due := s.countdown.Advance(now)
	changed := false
	for i := 0; i < due && s.state == StatePlaying; i++ {
		changed = true
		if s.clock.Tick() {
			s.finishLocked(false, now)
		}
	}
	return changed
}

// NextTick returns when the next clock tick is due, or false once the clock is inert.
func (s *Session) NextTick(now time.Time) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.state != StatePlaying {
		return time.Time{}, false
	}
	return s.countdown.NextWake(now)
}

func (s *Session) finishLocked(isWin bool, now time.Time) {
	if s.state != StatePlaying {
		return
	}
	s.state = StateFinished
	s.finishedAt = now
	s.lastUsed = now
	s.clock.Freeze()
	s.countdown.Stop()
	// A part still in hand when time runs out stays where it was dragged.
	s.controller.HandlePointer(nil)
	s.outcome = ComputeOutcome(isWin, &s.stack, s.registry, &s.clock, s.Tuning.PointsPerPart)
	s.hasOutcome = true
}

// State returns the lifecycle stage.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Outcome returns the final result once the session has finished.
func (s *Session) Outcome() (Outcome, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcome, s.hasOutcome
}

// Remaining returns the seconds left on the clock.
func (s *Session) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clock.Remaining()
}

// BeginSubmit reserves the submission of a won session's score. Only one
// submission may be in flight; a failed one can be retried.
func (s *Session) BeginSubmit() (Player, Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Player{}, Outcome{}, ErrClosed
	}
	if !s.hasOutcome || !s.outcome.IsWin {
		return Player{}, Outcome{}, ErrSubmitNotAllowed
	}
	if s.Player.ID == "" {
		return Player{}, Outcome{}, ErrNoPlayer
	}
	switch s.submit {
	case SubmitPending:
		return Player{}, Outcome{}, ErrSubmitPending
	case SubmitSuccess:
		return Player{}, Outcome{}, ErrAlreadySubmitted
	}
	s.submit = SubmitPending
	s.submitErr = ""
	return s.Player, s.outcome, nil
}

// CompleteSubmit records the result of the submission started by BeginSubmit.
func (s *Session) CompleteSubmit(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submit != SubmitPending {
		return
	}
	if err != nil {
		s.submit = SubmitError
		s.submitErr = err.Error()
		return
	}
	s.submit = SubmitSuccess
}

// SubmitStatus returns the submission state and the last error message.
func (s *Session) SubmitStatus() (SubmitStatus, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submit, s.submitErr
}

// AttachPointer registers the release hook of a pointer source feeding this
// session. Close invokes it; the returned detach removes it when the source
// goes away on its own.
func (s *Session) AttachPointer(release func()) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	if s.releases == nil {
		s.releases = make(map[int]func())
	}
	id := s.nextRelease
	s.nextRelease++
	s.releases[id] = release
	return func() {
		s.mu.Lock()
		delete(s.releases, id)
		s.mu.Unlock()
	}, nil
}

// Close tears the session down: the clock stops, pointer samples are refused
// and every attached pointer source is released. Close is idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.clock.Freeze()
	s.countdown.Stop()
	if s.controller != nil {
		s.controller.HandlePointer(nil)
	}
	releases := make([]func(), 0, len(s.releases))
	for _, release := range s.releases {
		releases = append(releases, release)
	}
	s.releases = nil
	s.mu.Unlock()

	for _, release := range releases {
		release()
	}
}

// Expired reports whether the session can be swept: nothing has touched it
// for ttl and neither its clock nor a score submission is still running.
func (s *Session) Expired(now time.Time, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return true
	}
	if s.state == StatePlaying || s.submit == SubmitPending {
		return false
	}
	return !s.lastUsed.After(now.Add(-ttl))
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// PartView is a read-only copy of a part for renderers.
type PartView struct {
	ID        int      `json:"id"`
	Type      PartType `json:"type"`
	X         float64  `json:"x"`
	Y         float64  `json:"y"`
	Radius    float64  `json:"radius"`
	Locked    bool     `json:"locked"`
	Held      bool     `json:"held"`
	DrawOrder int      `json:"drawOrder"`
}

// TargetView is a read-only copy of a target slot.
type TargetView struct {
	Type      PartType `json:"type"`
	X         float64  `json:"x"`
	Y         float64  `json:"y"`
	Radius    float64  `json:"radius"`
	DrawOrder int      `json:"drawOrder"`
}

// Snapshot captures everything renderers need at one instant.
type Snapshot struct {
	ID          string       `json:"id"`
	State       State        `json:"state"`
	PlayerName  string       `json:"playerName"`
	Viewport    Viewport     `json:"viewport"`
	Remaining   int          `json:"remaining"`
	Duration    int          `json:"duration"`
	Score       int          `json:"score"`
	PartsPlaced int          `json:"partsPlaced"`
	TotalParts  int          `json:"totalParts"`
	Targets     []TargetView `json:"targets"`
	Placed      []PartView   `json:"placed"`
	Pool        []PartView   `json:"pool"`
	HeldID      int          `json:"heldId,omitempty"`
	Outcome     *Outcome     `json:"outcome,omitempty"`
	Submit      SubmitStatus `json:"submit"`
	SubmitError string       `json:"submitError,omitempty"`
	Closed      bool         `json:"closed"`
}

// Snapshot returns a consistent copy of the session.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:          s.ID,
		State:       s.state,
		PlayerName:  s.Player.Name,
		Viewport:    s.Viewport,
		Remaining:   s.clock.Remaining(),
		Duration:    s.clock.Total(),
		Score:       s.stack.Len() * s.Tuning.PointsPerPart,
		PartsPlaced: s.stack.Len(),
		TotalParts:  len(PartTypes()),
		Targets:     []TargetView{},
		Placed:      []PartView{},
		Pool:        []PartView{},
		Submit:      s.submit,
		SubmitError: s.submitErr,
		Closed:      s.closed,
	}
	if s.hasOutcome {
		outcome := s.outcome
		snap.Outcome = &outcome
	}
	if s.registry == nil {
		return snap
	}
	snap.TotalParts = s.registry.Len()
	for _, t := range s.registry.Targets() {
		snap.Targets = append(snap.Targets, TargetView{
			Type:      t.Type,
			X:         t.Position.X,
			Y:         t.Position.Y,
			Radius:    t.Radius,
			DrawOrder: t.DrawOrder,
		})
	}
	heldID, holding := s.controller.Hold().PartID()
	if holding {
		snap.HeldID = heldID
	}
	s.stack.Each(func(p *Part) {
		order := floatingDrawOrder
		if t, ok := s.registry.Target(p.Type); ok {
			order = t.DrawOrder
		}
		snap.Placed = append(snap.Placed, partView(p, order, false))
	})
	s.pool.Each(func(p *Part) {
		snap.Pool = append(snap.Pool, partView(p, floatingDrawOrder, holding && p.ID == heldID))
	})
	return snap
}

func partView(p *Part, order int, held bool) PartView {
	return PartView{
		ID:        p.ID,
		Type:      p.Type,
		X:         p.Position.X,
		Y:         p.Position.Y,
		Radius:    p.Radius,
		Locked:    p.Locked,
		Held:      held,
		DrawOrder: order,
	}
}
