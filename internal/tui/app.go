// Package tui runs a snowman session in the terminal. The mouse is the
// pointer source: holding the left button pinches.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"snowman/internal/game"
	"snowman/internal/gateway"
)

// Each terminal cell stands for a CellWidth x CellHeight block of the
// session viewport.
const (
	CellWidth  = 16
	CellHeight = 32
)

const tickInterval = 100 * time.Millisecond

// Config wires an App.
type Config struct {
	Screen         tcell.Screen
	Gateway        gateway.Gateway
	Tuning         game.Tuning
	Sounds         Sounds
	Logger         *log.Logger
	GatewayTimeout time.Duration
}

type submitResult struct {
	session *game.Session
	err     error
}

// App owns one terminal, one player and the current session. All state is
// touched from the Run loop only.
type App struct {
	screen  tcell.Screen
	gateway gateway.Gateway
	tuning  game.Tuning
	sounds  Sounds
	logger  *log.Logger
	timeout time.Duration

	player    game.Player
	session   *game.Session
	status    string
	announced bool

	submits    chan submitResult
	submitting sync.WaitGroup
	done       chan struct{}
	doneOnce   sync.Once
}

// New validates cfg and returns an App that has not logged in yet.
func New(cfg Config) (*App, error) {
	if cfg.Screen == nil {
		return nil, errors.New("screen is required")
	}
	if cfg.Gateway == nil {
		return nil, errors.New("gateway is required")
	}
	if cfg.Sounds == nil {
		cfg.Sounds = Silent{}
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.GatewayTimeout <= 0 {
		cfg.GatewayTimeout = 5 * time.Second
	}
	return &App{
		screen:  cfg.Screen,
		gateway: cfg.Gateway,
		tuning:  cfg.Tuning,
		sounds:  cfg.Sounds,
		logger:  cfg.Logger,
		timeout: cfg.GatewayTimeout,
		submits: make(chan submitResult, 1),
		done:    make(chan struct{}),
	}, nil
}

// Login resolves the player. It must succeed before Start.
func (a *App) Login(ctx context.Context, name, phone string) error {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	player, err := a.gateway.Login(ctx, name, phone)
	if err != nil {
		return err
	}
	a.player = player
	return nil
}

// Start replaces the current session with a fresh one sized to the screen.
func (a *App) Start(now time.Time) error {
	if a.session != nil {
		a.session.Close()
	}
	cols, rows := a.screen.Size()
	viewport := game.Viewport{Width: float64(cols * CellWidth), Height: float64(rows * CellHeight)}
	session := game.NewSession(a.player, viewport, a.tuning)
	if err := session.Start(now); err != nil {
		return err
	}
	a.session = session
	a.status = "Drag the parts onto the snowman. q quits."
	a.announced = false
	return nil
}

// Session returns the current session.
func (a *App) Session() *game.Session {
	return a.session
}

// Status returns the message shown on the bottom line.
func (a *App) Status() string {
	return a.status
}

// Run drives the session until ctx ends or the player quits. Pointer
// samples, clock ticks and submission results are all handled on this one
// goroutine. The session is closed on every exit path.
func (a *App) Run(ctx context.Context) error {
	if a.session == nil {
		return errors.New("no session started")
	}
	defer func() {
		a.doneOnce.Do(func() { close(a.done) })
		if a.session != nil {
			a.session.Close()
		}
	}()
	a.screen.EnableMouse()
	defer a.screen.DisableMouse()
	// Focus reports are how the terminal tells us the pointer went away.
	a.screen.EnableFocus()
	defer a.screen.DisableFocus()

	events := make(chan tcell.Event, 64)
	quit := make(chan struct{})
	defer close(quit)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	a.Draw()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if !a.HandleEvent(ev, time.Now().UTC()) {
				return nil
			}
		case <-ticker.C:
			a.Tick(time.Now().UTC())
		case res := <-a.submits:
			a.finishSubmit(res)
		}
		a.Draw()
	}
}

// HandleEvent applies one terminal event and reports whether to keep running.
func (a *App) HandleEvent(ev tcell.Event, now time.Time) bool {
	switch ev := ev.(type) {
	case *tcell.EventMouse:
		x, y := ev.Position()
		a.Pointer(&game.PointerSample{
			Position: CellCenter(x, y),
			Pinching: ev.Buttons()&tcell.Button1 != 0,
		}, now)
	case *tcell.EventFocus:
		if !ev.Focused {
			a.Pointer(nil, now)
		}
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() == tcell.KeyRune {
			return a.HandleRune(ev.Rune(), now)
		}
	case *tcell.EventResize:
		a.screen.Sync()
	}
	return true
}

// HandleRune handles a command key and reports whether to keep running.
func (a *App) HandleRune(r rune, now time.Time) bool {
	switch r {
	case 'q':
		return false
	case 'r':
		if err := a.Start(now); err != nil {
			a.status = "restart failed: " + err.Error()
		}
	case 's':
		a.Submit()
	}
	return true
}

// Pointer feeds one sample to the session and plays the matching cue.
// A nil sample means the pointer source lost track of the player.
func (a *App) Pointer(sample *game.PointerSample, now time.Time) {
	if a.session == nil {
		return
	}
	action, err := a.session.HandlePointer(sample, now)
	if err != nil {
		return
	}
	switch action {
	case game.ActionPlace:
		a.sounds.Play(CueSnap)
	case game.ActionMiss:
		a.sounds.Play(CueMiss)
	}
	a.checkFinished()
}

// Tick advances the session clock.
func (a *App) Tick(now time.Time) {
	if a.session != nil && a.session.AdvanceClock(now) {
		a.checkFinished()
	}
}

func (a *App) checkFinished() {
	outcome, ok := a.session.Outcome()
	if !ok || a.announced {
		return
	}
	a.announced = true
	if outcome.IsWin {
		a.sounds.Play(CueWin)
		a.status = fmt.Sprintf("You built the snowman! Score %d. s submits, r plays again, q quits.", outcome.Score)
		return
	}
	a.sounds.Play(CueTimeout)
	a.status = fmt.Sprintf("Time's up! %d of %d parts, score %d. r plays again, q quits.",
		outcome.PartsPlaced, outcome.TotalParts, outcome.Score)
}

// Submit starts an explicit score submission in the background. The
// result comes back through the Run loop; once Run has returned it is dropped.
func (a *App) Submit() {
	if a.session == nil {
		return
	}
	player, outcome, err := a.session.BeginSubmit()
	if err != nil {
		a.status = "cannot submit: " + err.Error()
		return
	}
	a.status = "Submitting score..."
	session := a.session
	a.submitting.Add(1)
	go func() {
		defer a.submitting.Done()
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()
		err := a.gateway.SubmitScore(ctx, player, outcome.Score, outcome.TimeTaken)
		select {
		case a.submits <- submitResult{session: session, err: err}:
		case <-a.done:
		}
	}()
}

// AwaitSubmit blocks until a pending submission reports back and applies it.
func (a *App) AwaitSubmit(ctx context.Context) error {
	select {
	case res := <-a.submits:
		a.finishSubmit(res)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *App) finishSubmit(res submitResult) {
	res.session.CompleteSubmit(res.err)
	if res.session != a.session {
		return
	}
	if res.err != nil {
		a.logger.Printf("submit score failed player=%s err=%v", a.player.ID, res.err)
		a.status = "Submission failed, press s to retry."
		return
	}
	a.status = "Score submitted. r plays again, q quits."
}

// CellCenter maps a terminal cell to the viewport point at its center.
func CellCenter(x, y int) game.Point {
	return game.Point{
		X: (float64(x) + 0.5) * CellWidth,
		Y: (float64(y) + 0.5) * CellHeight,
	}
}

// CellOf maps a viewport point to the terminal cell containing it.
func CellOf(p game.Point) (int, int) {
	return int(p.X / CellWidth), int(p.Y / CellHeight)
}
