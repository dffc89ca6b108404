// Package users holds the player records behind the login gateway.
package users

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DefaultClient is the campaign a user signs up under when none is given.
const DefaultClient = "Christmas Game"

// MaxNameLength bounds the display name.
const MaxNameLength = 40

var (
	ErrNotFound = errors.New("user not found")
	ErrInvalid  = errors.New("invalid user")
)

var phonePattern = regexp.MustCompile(`^[0-9]{10,15}$`)

// User is one registered player and their latest result.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Client    string    `json:"client"`
	Score     int       `json:"score"`
	TimeTaken int       `json:"timeTaken"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Store persists users.
type Store interface {
	// FindOrCreate returns the user registered under phone, creating it
	// with name and client when absent. An existing user is returned unchanged.
	FindOrCreate(ctx context.Context, name, phone, client string) (User, error)
	Get(ctx context.Context, id int64) (User, error)
	UpdateScore(ctx context.Context, id int64, score, timeTaken int) (User, error)
}

// NormalizeLogin trims and validates login input.
func NormalizeLogin(name, phone string) (string, string, error) {
	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)
	if name == "" {
		return "", "", fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if len([]rune(name)) > MaxNameLength {
		return "", "", fmt.Errorf("%w: name must be at most %d characters", ErrInvalid, MaxNameLength)
	}
	if !phonePattern.MatchString(phone) {
		return "", "", fmt.Errorf("%w: phone must be 10 to 15 digits", ErrInvalid)
	}
	return name, phone, nil
}

// ValidateResult rejects negative scores and times.
func ValidateResult(score, timeTaken int) error {
	if score < 0 {
		return fmt.Errorf("%w: score must not be negative", ErrInvalid)
	}
	if timeTaken < 0 {
		return fmt.Errorf("%w: time taken must not be negative", ErrInvalid)
	}
	return nil
}
