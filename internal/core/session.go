package core

import (
	"context"
	"errors"
	"strings"
)

// ErrNoSession is returned when an operation needs an authenticated user
// and none was supplied.
var ErrNoSession = errors.New("no authenticated session")

// Session identifies the caller on whose behalf store calls and page loads
// run. It is passed explicitly; nothing in the application keeps a global
// "current user".
type Session struct {
	UserID string
}

// NewSession builds a session for an opaque user id handed over by the
// authenticating collaborator.
func NewSession(userID string) (Session, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Session{}, ErrNoSession
	}
	return Session{UserID: userID}, nil
}

func (s Session) Validate() error {
	if strings.TrimSpace(s.UserID) == "" {
		return ErrNoSession
	}
	return nil
}

type sessionKey struct{}

// WithSession returns a context carrying s.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFrom extracts the session placed by WithSession.
func SessionFrom(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	return s, ok && s.UserID != ""
}
