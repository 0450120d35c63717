package services

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/transapp/opct/pkg/serrors"
)

func mapPgError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return serrors.NotFound("NOT_FOUND", "not found", err)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case "23505": // unique_violation
		switch pgErr.ConstraintName {
		case "users_email_key":
			return serrors.Conflict("USER_EMAIL_CONFLICT", "email already exists", err)
		case "groups_name_key":
			return serrors.Conflict("GROUP_NAME_CONFLICT", "group already exists", err)
		default:
			return serrors.Conflict("CONFLICT", "unique constraint violated", err)
		}
	case "23503": // foreign_key_violation
		return serrors.New(http.StatusUnprocessableEntity, "REFERENCE_NOT_FOUND", "referenced record not found", err)
	default:
		return serrors.Internal(fmt.Sprintf("database error (%s)", pgErr.Code), err)
	}
}
