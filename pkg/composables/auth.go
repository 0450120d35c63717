package composables

import (
	"context"
	"errors"

	"github.com/transapp/opct/modules/core/domain/aggregates/user"
	"github.com/transapp/opct/modules/core/domain/entities/session"
	"github.com/transapp/opct/pkg/constants"
)

var (
	ErrNoUserInContext    = errors.New("no user found in context")
	ErrNoSessionInContext = errors.New("no session found in context")
)

func WithUser(ctx context.Context, u user.User) context.Context {
	return context.WithValue(ctx, constants.UserKey, u)
}

// UseUser returns the authenticated actor for the current request.
func UseUser(ctx context.Context) (user.User, error) {
	u, ok := ctx.Value(constants.UserKey).(user.User)
	if !ok {
		return user.User{}, ErrNoUserInContext
	}
	return u, nil
}

func WithSession(ctx context.Context, s *session.Session) context.Context {
	return context.WithValue(ctx, constants.SessionKey, s)
}

func UseSession(ctx context.Context) (*session.Session, error) {
	s, ok := ctx.Value(constants.SessionKey).(*session.Session)
	if !ok {
		return nil, ErrNoSessionInContext
	}
	return s, nil
}
