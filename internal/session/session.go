// Package session holds the per-chat credentials: the backend bearer token
// and the serialized profile. The context is an explicit value handed to the
// API client and to the bot's route guards, never ambient state.
package session

import (
	"strings"
	"time"

	"boardeasy/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// Context is one chat's authenticated session.
type Context struct {
	ChatID int64       `json:"chat_id"`
	Token  string      `json:"token"`
	User   models.User `json:"user"`
}

// Valid reports whether a token is present and, when the token is a JWT with
// an exp claim, not yet expired. The claim is read unverified: the backend is
// the authority, this check only avoids sending calls doomed to 401.
func (c *Context) Valid(now time.Time) bool {
	if c == nil || strings.TrimSpace(c.Token) == "" {
		return false
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(c.Token, claims); err != nil {
		// Opaque token: assume valid, the backend will reject it if not.
		return true
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return now.Before(exp.Time)
}

func (c *Context) IsAdmin() bool {
	return c != nil && c.User.Role == models.RoleAdmin
}

func (c *Context) IsDriver() bool {
	return c != nil && c.User.Role == models.RoleDriver
}

func (c *Context) IsPassenger() bool {
	return c != nil && c.User.Role == models.RolePassenger
}
