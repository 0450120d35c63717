package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/transapp/opct/modules/core/domain/entities/contracttype"
	"github.com/transapp/opct/modules/opct/domain/entities/status"
	"github.com/transapp/opct/pkg/composables"
)

var ErrStatusNotFound = errors.New("status not found")

const statusFindQuery = `
        SELECT s.id, s.contract_type_id, s.scope, s.name
        FROM workflow_statuses s`

type PgStatusRepository struct{}

func NewStatusRepository() status.Repository {
	return &PgStatusRepository{}
}

func (g *PgStatusRepository) scan(row pgx.Row) (status.Status, error) {
	var (
		s     status.Status
		ctID  int64
		scope string
	)
	if err := row.Scan(&s.ID, &ctID, &scope, &s.Name); err != nil {
		return status.Status{}, err
	}
	ct, err := contracttype.FromID(ctID)
	if err != nil {
		return status.Status{}, err
	}
	s.ContractType = ct
	s.Scope = status.Scope(scope)
	return s, nil
}

func (g *PgStatusRepository) GetByID(ctx context.Context, scope status.Scope, id int64) (status.Status, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return status.Status{}, err
	}
	s, err := g.scan(tx.QueryRow(ctx, statusFindQuery+" WHERE s.scope = $1 AND s.id = $2", string(scope), id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return status.Status{}, ErrStatusNotFound
		}
		return status.Status{}, err
	}
	return s, nil
}

func (g *PgStatusRepository) GetByName(
	ctx context.Context,
	scope status.Scope,
	ct contracttype.ContractType,
	name string,
) (status.Status, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return status.Status{}, err
	}
	s, err := g.scan(tx.QueryRow(
		ctx,
		statusFindQuery+" WHERE s.scope = $1 AND s.contract_type_id = $2 AND s.name = $3",
		string(scope), int64(ct), name,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return status.Status{}, ErrStatusNotFound
		}
		return status.Status{}, err
	}
	return s, nil
}

func (g *PgStatusRepository) GetAll(
	ctx context.Context,
	scope status.Scope,
	ct contracttype.ContractType,
) ([]status.Status, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(
		ctx,
		statusFindQuery+" WHERE s.scope = $1 AND s.contract_type_id = $2 ORDER BY s.id",
		string(scope), int64(ct),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query statuses")
	}
	defer rows.Close()

	var statuses []status.Status
	for rows.Next() {
		s, err := g.scan(rows)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, s)
	}
	return statuses, rows.Err()
}
