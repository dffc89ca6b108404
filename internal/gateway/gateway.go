// Package gateway connects sessions to the users service: a player logs in
// before a session starts and submits the score after a win.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"snowman/internal/game"
	"snowman/internal/users"
)

// ErrUnavailable reports that the users service could not be reached.
var ErrUnavailable = errors.New("gateway unavailable")

// Gateway is the login and score submission boundary.
type Gateway interface {
	Login(ctx context.Context, name, phone string) (game.Player, error)
	SubmitScore(ctx context.Context, player game.Player, score, timeTaken int) error
}

// Local serves the gateway from an in-process users store.
type Local struct {
	store  users.Store
	client string
}

// NewLocal returns a gateway over store. Users sign up under client, or the
// default client when empty.
func NewLocal(store users.Store, client string) *Local {
	if client == "" {
		client = users.DefaultClient
	}
	return &Local{store: store, client: client}
}

func (l *Local) Login(ctx context.Context, name, phone string) (game.Player, error) {
	u, err := l.store.FindOrCreate(ctx, name, phone, l.client)
	if err != nil {
		return game.Player{}, fmt.Errorf("login: %w", err)
	}
	return playerOf(u), nil
}

func (l *Local) SubmitScore(ctx context.Context, player game.Player, score, timeTaken int) error {
	id, err := userID(player)
	if err != nil {
		return err
	}
	if _, err := l.store.UpdateScore(ctx, id, score, timeTaken); err != nil {
		return fmt.Errorf("submit score: %w", err)
	}
	return nil
}

func playerOf(u users.User) game.Player {
	return game.Player{ID: strconv.FormatInt(u.ID, 10), Name: u.Name}
}

func userID(player game.Player) (int64, error) {
	id, err := strconv.ParseInt(player.ID, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: bad player id %q", users.ErrInvalid, player.ID)
	}
	return id, nil
}

var (
	_ Gateway = (*Local)(nil)
	_ Gateway = (*Client)(nil)
)
