package persistence

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/transapp/opct/modules/opct/domain/entities/operationprogram"
	"github.com/transapp/opct/pkg/composables"
	"github.com/transapp/opct/pkg/repo"
)

var (
	ErrOperationProgramNotFound = errors.New("operation program not found")
	ErrProgramTypeNotFound      = errors.New("program type not found")
)

const (
	opFindQuery = `
        SELECT
            op.id,
            op.start_date,
            op.created_at,
            t.id,
            t.name
        FROM operation_programs op
        JOIN operation_program_types t ON t.id = op.program_type_id`

	opCountQuery = `SELECT COUNT(*) FROM operation_programs op`

	opInsertQuery = `
        INSERT INTO operation_programs (start_date, program_type_id, created_at)
        VALUES ($1, $2, NOW())
        RETURNING id`

	opUpdateQuery = `
        UPDATE operation_programs
        SET start_date = $1, program_type_id = $2
        WHERE id = $3`

	opDeleteQuery = `DELETE FROM operation_programs WHERE id = $1`

	programTypesQuery = `SELECT id, name FROM operation_program_types ORDER BY id`
)

type PgOperationProgramRepository struct{}

func NewOperationProgramRepository() operationprogram.Repository {
	return &PgOperationProgramRepository{}
}

func (g *PgOperationProgramRepository) scan(row pgx.Row) (operationprogram.OperationProgram, error) {
	var (
		id        int64
		startDate time.Time
		createdAt time.Time
		typeID    int64
		typeName  string
	)
	if err := row.Scan(&id, &startDate, &createdAt, &typeID, &typeName); err != nil {
		return operationprogram.OperationProgram{}, err
	}
	return operationprogram.Hydrate(
		id, startDate,
		operationprogram.ProgramType{ID: typeID, Name: typeName},
		createdAt,
	), nil
}

func (g *PgOperationProgramRepository) GetPaginated(
	ctx context.Context,
	params *operationprogram.FindParams,
) ([]operationprogram.OperationProgram, int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, 0, err
	}

	var (
		where string
		args  []interface{}
	)
	if params.Search != "" {
		where = repo.JoinWhere("t.name ILIKE $1")
		args = append(args, "%"+params.Search+"%")
	}

	query := repo.Join(
		opFindQuery,
		where,
		"ORDER BY op.start_date DESC",
		repo.FormatLimitOffset(params.Limit, params.Offset),
	)
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to query operation programs")
	}
	defer rows.Close()

	var programs []operationprogram.OperationProgram
	for rows.Next() {
		p, err := g.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		programs = append(programs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	countWhere := where
	if countWhere != "" {
		countWhere = "JOIN operation_program_types t ON t.id = op.program_type_id " + countWhere
	}
	var total int64
	if err := tx.QueryRow(ctx, repo.Join(opCountQuery, countWhere), args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "failed to count operation programs")
	}
	return programs, total, nil
}

func (g *PgOperationProgramRepository) GetByID(ctx context.Context, id int64) (operationprogram.OperationProgram, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return operationprogram.OperationProgram{}, err
	}
	p, err := g.scan(tx.QueryRow(ctx, opFindQuery+" WHERE op.id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return operationprogram.OperationProgram{}, ErrOperationProgramNotFound
		}
		return operationprogram.OperationProgram{}, err
	}
	return p, nil
}

func (g *PgOperationProgramRepository) GetByStartDate(ctx context.Context, startDate time.Time) (operationprogram.OperationProgram, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return operationprogram.OperationProgram{}, err
	}
	p, err := g.scan(tx.QueryRow(ctx, opFindQuery+" WHERE op.start_date = $1", startDate))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return operationprogram.OperationProgram{}, ErrOperationProgramNotFound
		}
		return operationprogram.OperationProgram{}, err
	}
	return p, nil
}

func (g *PgOperationProgramRepository) Create(ctx context.Context, program operationprogram.OperationProgram) (operationprogram.OperationProgram, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return operationprogram.OperationProgram{}, err
	}
	var id int64
	if err := tx.QueryRow(
		ctx, opInsertQuery,
		program.StartDate(), program.ProgramType().ID,
	).Scan(&id); err != nil {
		return operationprogram.OperationProgram{}, errors.Wrap(err, "failed to insert operation program")
	}
	return g.GetByID(ctx, id)
}

func (g *PgOperationProgramRepository) Update(ctx context.Context, program operationprogram.OperationProgram) (operationprogram.OperationProgram, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return operationprogram.OperationProgram{}, err
	}
	if _, err := tx.Exec(
		ctx, opUpdateQuery,
		program.StartDate(), program.ProgramType().ID, program.ID(),
	); err != nil {
		return operationprogram.OperationProgram{}, errors.Wrap(err, "failed to update operation program")
	}
	return g.GetByID(ctx, program.ID())
}

func (g *PgOperationProgramRepository) Delete(ctx context.Context, id int64) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, opDeleteQuery, id)
	return err
}

func (g *PgOperationProgramRepository) GetProgramTypes(ctx context.Context) ([]operationprogram.ProgramType, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, programTypesQuery)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query program types")
	}
	defer rows.Close()

	var types []operationprogram.ProgramType
	for rows.Next() {
		var t operationprogram.ProgramType
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

func (g *PgOperationProgramRepository) GetProgramTypeByID(ctx context.Context, id int64) (operationprogram.ProgramType, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return operationprogram.ProgramType{}, err
	}
	var t operationprogram.ProgramType
	err = tx.QueryRow(ctx, `SELECT id, name FROM operation_program_types WHERE id = $1`, id).Scan(&t.ID, &t.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return operationprogram.ProgramType{}, ErrProgramTypeNotFound
		}
		return operationprogram.ProgramType{}, err
	}
	return t, nil
}
