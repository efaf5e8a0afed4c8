package host

import (
	"errors"
	"fmt"
	"time"

	initdata "github.com/telegram-mini-apps/init-data-golang"
)

// Launch data errors.
var (
	ErrBadSignature = errors.New("launch data signature mismatch")
	ErrNoUser       = errors.New("launch data has no user")
	ErrExpired      = errors.New("launch data expired")
)

// ParseInitData verifies platform launch data against botToken and returns
// the user it carries. maxAge <= 0 disables the auth_date check.
func ParseInitData(raw, botToken string, maxAge time.Duration) (Identity, error) {
	if err := initdata.Validate(raw, botToken, maxAge); err != nil {
		switch {
		case errors.Is(err, initdata.ErrSignMissing), errors.Is(err, initdata.ErrSignInvalid):
			return Identity{}, ErrBadSignature
		case errors.Is(err, initdata.ErrExpired):
			return Identity{}, ErrExpired
		}
		return Identity{}, fmt.Errorf("validate launch data: %w", err)
	}

	d, err := initdata.Parse(raw)
	if err != nil {
		return Identity{}, fmt.Errorf("parse launch data: %w", err)
	}
	if d.User.ID == 0 {
		return Identity{}, ErrNoUser
	}
	return Identity{
		ID:        d.User.ID,
		FirstName: d.User.FirstName,
		LastName:  d.User.LastName,
		Username:  d.User.Username,
	}, nil
}
