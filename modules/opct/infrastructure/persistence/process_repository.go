package persistence

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/transapp/opct/modules/core/domain/entities/contracttype"
	"github.com/transapp/opct/modules/opct/domain/aggregates/process"
	"github.com/transapp/opct/pkg/composables"
	"github.com/transapp/opct/pkg/repo"
)

var ErrProcessNotFound = errors.New("change process not found")

const (
	processFindQuery = `
        SELECT
            p.id,
            p.title,
            p.message,
            p.counterpart_id,
            p.contract_type_id,
            p.creator_id,
            p.status_id,
            p.operation_program_id,
            p.release_date,
            p.created_at,
            p.updated_at
        FROM change_op_processes p`

	processCountQuery = `SELECT COUNT(*) FROM change_op_processes p`

	processInsertQuery = `
        INSERT INTO change_op_processes (
            title, message, counterpart_id, contract_type_id, creator_id,
            status_id, operation_program_id, release_date, created_at, updated_at
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
        RETURNING id`

	processUpdateQuery = `
        UPDATE change_op_processes
        SET status_id = $1,
            operation_program_id = $2,
            release_date = $3,
            updated_at = NOW()
        WHERE id = $4`

	// A process is visible to the organization that created it and to
	// the counterpart it addresses.
	processVisibilityCond = `(p.counterpart_id = $1 OR EXISTS (
            SELECT 1 FROM users u WHERE u.id = p.creator_id AND u.organization_id = $1
        ))`
)

type PgProcessRepository struct{}

func NewProcessRepository() process.Repository {
	return &PgProcessRepository{}
}

func (g *PgProcessRepository) scan(row pgx.Row) (process.ChangeOPProcess, error) {
	var (
		id            int64
		title         string
		message       string
		counterpartID int64
		ctID          int64
		creatorID     int64
		statusID      int64
		opID          *int64
		releaseDate   *time.Time
		createdAt     time.Time
		updatedAt     time.Time
	)
	if err := row.Scan(
		&id, &title, &message, &counterpartID, &ctID, &creatorID,
		&statusID, &opID, &releaseDate, &createdAt, &updatedAt,
	); err != nil {
		return process.ChangeOPProcess{}, err
	}
	ct, err := contracttype.FromID(ctID)
	if err != nil {
		return process.ChangeOPProcess{}, err
	}
	return process.Hydrate(
		id, title, message, counterpartID, ct, creatorID, statusID,
		opID, releaseDate, createdAt, updatedAt,
	), nil
}

func (g *PgProcessRepository) GetPaginated(
	ctx context.Context,
	params *process.FindParams,
) ([]process.ChangeOPProcess, int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, 0, err
	}

	conditions := []string{processVisibilityCond}
	args := []interface{}{params.OrganizationID}
	if params.Search != "" {
		conditions = append(conditions, "p.title ILIKE $2")
		args = append(args, "%"+params.Search+"%")
	}
	where := repo.JoinWhere(conditions...)

	query := repo.Join(
		processFindQuery,
		where,
		"ORDER BY p.created_at DESC",
		repo.FormatLimitOffset(params.Limit, params.Offset),
	)
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to query change processes")
	}
	defer rows.Close()

	var processes []process.ChangeOPProcess
	for rows.Next() {
		p, err := g.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		processes = append(processes, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int64
	if err := tx.QueryRow(ctx, repo.Join(processCountQuery, where), args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "failed to count change processes")
	}
	return processes, total, nil
}

func (g *PgProcessRepository) GetByID(ctx context.Context, id int64) (process.ChangeOPProcess, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return process.ChangeOPProcess{}, err
	}
	p, err := g.scan(tx.QueryRow(ctx, processFindQuery+" WHERE p.id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return process.ChangeOPProcess{}, ErrProcessNotFound
		}
		return process.ChangeOPProcess{}, err
	}
	return p, nil
}

func (g *PgProcessRepository) Create(ctx context.Context, p process.ChangeOPProcess) (process.ChangeOPProcess, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return process.ChangeOPProcess{}, err
	}
	var id int64
	if err := tx.QueryRow(
		ctx, processInsertQuery,
		p.Title(), p.Message(), p.CounterpartID(), int64(p.ContractType()),
		p.CreatorID(), p.StatusID(), p.OperationProgramID(), p.ReleaseDate(),
	).Scan(&id); err != nil {
		return process.ChangeOPProcess{}, errors.Wrap(err, "failed to insert change process")
	}
	return g.GetByID(ctx, id)
}

func (g *PgProcessRepository) Update(ctx context.Context, p process.ChangeOPProcess) (process.ChangeOPProcess, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return process.ChangeOPProcess{}, err
	}
	if _, err := tx.Exec(
		ctx, processUpdateQuery,
		p.StatusID(), p.OperationProgramID(), p.ReleaseDate(), p.ID(),
	); err != nil {
		return process.ChangeOPProcess{}, errors.Wrap(err, "failed to update change process")
	}
	return g.GetByID(ctx, p.ID())
}

func (g *PgProcessRepository) CountByOperationProgram(ctx context.Context, opID int64) (int64, error) {
	return g.count(ctx, `SELECT COUNT(*) FROM change_op_processes WHERE operation_program_id = $1`, opID)
}

func (g *PgProcessRepository) CountByCounterpart(ctx context.Context, organizationID int64) (int64, error) {
	return g.count(ctx, `SELECT COUNT(*) FROM change_op_processes WHERE counterpart_id = $1`, organizationID)
}

func (g *PgProcessRepository) CountByCreator(ctx context.Context, userID int64) (int64, error) {
	return g.count(ctx, `SELECT COUNT(*) FROM change_op_processes WHERE creator_id = $1`, userID)
}

func (g *PgProcessRepository) count(ctx context.Context, query string, arg interface{}) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	var count int64
	if err := tx.QueryRow(ctx, query, arg).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
