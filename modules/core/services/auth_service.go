package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/go-faster/errors"

	"github.com/transapp/opct/modules/core/domain/aggregates/user"
	"github.com/transapp/opct/modules/core/domain/entities/session"
	"github.com/transapp/opct/modules/core/infrastructure/persistence"
	"github.com/transapp/opct/pkg/composables"
	"github.com/transapp/opct/pkg/configuration"
	"github.com/transapp/opct/pkg/serrors"
)

type AuthService struct {
	users    user.Repository
	sessions session.Repository
}

func NewAuthService(users user.Repository, sessions session.Repository) *AuthService {
	return &AuthService{users: users, sessions: sessions}
}

func newSessionToken() (string, error) {
	b := make([]byte, 20)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Wrap(err, "failed to generate session token")
	}
	return hex.EncodeToString(b), nil
}

// Login verifies credentials and opens a session. The returned session
// token authenticates subsequent requests.
func (s *AuthService) Login(ctx context.Context, email, password string) (user.User, *session.Session, error) {
	var (
		u    user.User
		sess *session.Session
	)
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		found, err := s.users.GetByEmail(txCtx, email)
		if err != nil {
			if errors.Is(err, persistence.ErrUserNotFound) {
				return serrors.Unauthorized("INVALID_CREDENTIALS", "invalid email or password", nil)
			}
			return err
		}
		if !found.CheckPassword(password) {
			return serrors.Unauthorized("INVALID_CREDENTIALS", "invalid email or password", nil)
		}

		token, err := newSessionToken()
		if err != nil {
			return err
		}
		ip, _ := composables.UseIP(txCtx)
		userAgent := ""
		if params, ok := composables.UseParams(txCtx); ok {
			userAgent = params.UserAgent
		}
		now := time.Now()
		sess = &session.Session{
			Token:     token,
			UserID:    found.ID(),
			IP:        ip,
			UserAgent: userAgent,
			ExpiresAt: now.Add(configuration.Use().SessionLifetime()),
			CreatedAt: now,
		}
		if err := s.sessions.Create(txCtx, sess); err != nil {
			return err
		}
		if err := s.users.UpdateLastLogin(txCtx, found.ID()); err != nil {
			return err
		}
		u = found
		return nil
	})
	if err != nil {
		return user.User{}, nil, err
	}
	return u, sess, nil
}

// Authorize resolves a session token into its user. Expired sessions are
// removed on sight.
func (s *AuthService) Authorize(ctx context.Context, token string) (user.User, *session.Session, error) {
	var (
		u    user.User
		sess *session.Session
	)
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		found, err := s.sessions.GetByToken(txCtx, token)
		if err != nil {
			if errors.Is(err, persistence.ErrSessionNotFound) {
				return serrors.Unauthorized("INVALID_TOKEN", "invalid token", nil)
			}
			return err
		}
		if found.Expired() {
			if err := s.sessions.Delete(txCtx, token); err != nil {
				return err
			}
			return serrors.Unauthorized("SESSION_EXPIRED", "session expired", nil)
		}
		owner, err := s.users.GetByID(txCtx, found.UserID)
		if err != nil {
			return err
		}
		u = owner
		sess = found
		return nil
	})
	if err != nil {
		return user.User{}, nil, err
	}
	return u, sess, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	return composables.InTx(ctx, func(txCtx context.Context) error {
		return s.sessions.Delete(txCtx, token)
	})
}

// ChangePassword rotates the actor's password and revokes every other
// session, keeping only the one making the call.
func (s *AuthService) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	actor, err := composables.UseUser(ctx)
	if err != nil {
		return serrors.Unauthorized("UNAUTHENTICATED", "authentication required", err)
	}
	current, err := composables.UseSession(ctx)
	if err != nil {
		return serrors.Unauthorized("UNAUTHENTICATED", "authentication required", err)
	}

	return composables.InTx(ctx, func(txCtx context.Context) error {
		found, err := s.users.GetByID(txCtx, actor.ID())
		if err != nil {
			return err
		}
		if !found.CheckPassword(oldPassword) {
			return serrors.Unauthorized("INVALID_CREDENTIALS", "old password does not match", nil)
		}
		updated, err := found.SetPassword(newPassword)
		if err != nil {
			return err
		}
		if _, err := s.users.Update(txCtx, updated); err != nil {
			return err
		}
		if err := s.sessions.DeleteByUserID(txCtx, actor.ID()); err != nil {
			return err
		}
		return s.sessions.Create(txCtx, current)
	})
}
