package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/transapp/opct/modules/core/domain/entities/session"
	"github.com/transapp/opct/pkg/composables"
)

var ErrSessionNotFound = errors.New("session not found")

const (
	sessionFindQuery = `
        SELECT token, user_id, ip, user_agent, expires_at, created_at
        FROM sessions`

	sessionInsertQuery = `
        INSERT INTO sessions (token, user_id, ip, user_agent, expires_at, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)`

	sessionDeleteQuery       = `DELETE FROM sessions WHERE token = $1`
	sessionDeleteByUserQuery = `DELETE FROM sessions WHERE user_id = $1`
)

type PgSessionRepository struct{}

func NewSessionRepository() session.Repository {
	return &PgSessionRepository{}
}

func (g *PgSessionRepository) GetByToken(ctx context.Context, token string) (*session.Session, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	s := &session.Session{}
	err = tx.QueryRow(ctx, sessionFindQuery+" WHERE token = $1", token).Scan(
		&s.Token, &s.UserID, &s.IP, &s.UserAgent, &s.ExpiresAt, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return s, nil
}

func (g *PgSessionRepository) Create(ctx context.Context, s *session.Session) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(
		ctx, sessionInsertQuery,
		s.Token, s.UserID, s.IP, s.UserAgent, s.ExpiresAt, s.CreatedAt,
	); err != nil {
		return errors.Wrap(err, "failed to insert session")
	}
	return nil
}

func (g *PgSessionRepository) Delete(ctx context.Context, token string) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, sessionDeleteQuery, token)
	return err
}

func (g *PgSessionRepository) DeleteByUserID(ctx context.Context, userID int64) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, sessionDeleteByUserQuery, userID)
	return err
}
