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

	var svcErr *serrors.ServiceError
	if errors.As(err, &svcErr) {
		return err
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
		if pgErr.ConstraintName == "operation_programs_start_date_key" {
			return serrors.Conflict("OP_START_DATE_CONFLICT", "an operation program already starts on that date", err)
		}
		return serrors.Conflict("CONFLICT", "unique constraint violated", err)
	case "23503": // foreign_key_violation
		return serrors.New(http.StatusUnprocessableEntity, "REFERENCE_NOT_FOUND", "referenced record not found", err)
	default:
		return serrors.Internal(fmt.Sprintf("database error (%s)", pgErr.Code), err)
	}
}
