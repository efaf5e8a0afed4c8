package host

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LaunchClaims are the claims of a signed launch token; the subject is the platform id.
type LaunchClaims struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
	jwt.RegisteredClaims
}

// IssueLaunchToken signs an HS256 launch token for id.
func IssueLaunchToken(key []byte, id Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := LaunchClaims{
		FirstName: id.FirstName,
		LastName:  id.LastName,
		Username:  id.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  id.IDString(),
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
}

// ParseLaunchToken validates an HS256 launch token and returns its identity.
func ParseLaunchToken(tok string, key []byte) (Identity, error) {
	var c LaunchClaims
	_, err := jwt.ParseWithClaims(tok, &c, func(*jwt.Token) (any, error) { return key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Identity{}, fmt.Errorf("launch token: %w", err)
	}
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id == 0 {
		return Identity{}, errors.New("launch token: bad subject")
	}
	return Identity{ID: id, FirstName: c.FirstName, LastName: c.LastName, Username: c.Username}, nil
}
