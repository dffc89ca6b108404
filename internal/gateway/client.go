package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"snowman/internal/game"
	"snowman/internal/users"
)

// LoginRequest is the body of POST /user/login.
type LoginRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// FinishRequest is the body of PATCH /user/{id}/finish.
type FinishRequest struct {
	Score     int `json:"score"`
	TimeTaken int `json:"timeTaken"`
}

// SubmitRequest is the body of POST /user/submit, a one-shot registration
// that records a result without a prior login.
type SubmitRequest struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Score      int    `json:"score"`
	TimeTaken  int    `json:"timeTaken"`
	ClientName string `json:"clientName"`
}

// ErrorResponse is the body of a failed gateway call.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Client talks to a remote gateway service over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client for the service at baseURL.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid gateway url %q", baseURL)
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(u.String(), "/"),
		http:    &http.Client{Timeout: timeout},
	}, nil
}

func (c *Client) Login(ctx context.Context, name, phone string) (game.Player, error) {
	var u users.User
	if err := c.do(ctx, http.MethodPost, "/user/login", LoginRequest{Name: name, Phone: phone}, &u); err != nil {
		return game.Player{}, fmt.Errorf("login: %w", err)
	}
	return playerOf(u), nil
}

func (c *Client) SubmitScore(ctx context.Context, player game.Player, score, timeTaken int) error {
	id, err := userID(player)
	if err != nil {
		return err
	}
	path := fmt.Sprintf("/user/%d/finish", id)
	if err := c.do(ctx, http.MethodPatch, path, FinishRequest{Score: score, TimeTaken: timeTaken}, nil); err != nil {
		return fmt.Errorf("submit score: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return errors.Join(ErrUnavailable, ctxErr)
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return statusError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	return nil
}

func statusError(resp *http.Response) error {
	var body ErrorResponse
	_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&body)
	msg := body.Error
	if msg == "" {
		msg = resp.Status
	}
	switch {
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %s", users.ErrInvalid, msg)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", users.ErrNotFound, msg)
	default:
		return fmt.Errorf("%w: %s", ErrUnavailable, msg)
	}
}
