package session

import (
	"context"
	"time"
)

// Session is an opaque API token bound to a user. Tokens are random
// UUIDs and carry an expiry; a login may issue many in parallel.
type Session struct {
	Token     string
	UserID    int64
	IP        string
	UserAgent string
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (s *Session) Expired() bool {
	return time.Now().After(s.ExpiresAt)
}

type Repository interface {
	GetByToken(ctx context.Context, token string) (*Session, error)
	Create(ctx context.Context, s *Session) error
	Delete(ctx context.Context, token string) error
	DeleteByUserID(ctx context.Context, userID int64) error
}
