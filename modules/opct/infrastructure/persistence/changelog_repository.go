package persistence

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/transapp/opct/modules/opct/domain/entities/changelog"
	"github.com/transapp/opct/pkg/composables"
)

const (
	processLogInsertQuery = `
        INSERT INTO change_op_process_logs (process_id, user_id, kind, previous_data, new_data, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)`

	processLogFindQuery = `
        SELECT id, process_id, user_id, kind, previous_data, new_data, created_at
        FROM change_op_process_logs`

	requestLogInsertQuery = `
        INSERT INTO change_op_request_logs (request_id, user_id, kind, previous_data, new_data, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)`

	requestLogFindQuery = `
        SELECT id, request_id, user_id, kind, previous_data, new_data, created_at
        FROM change_op_request_logs`

	opDataLogInsertQuery = `
        INSERT INTO op_change_data_logs (operation_program_id, user_id, previous_data, new_data, created_at)
        VALUES ($1, $2, $3, $4, $5)`

	opDataLogFindQuery = `
        SELECT id, operation_program_id, user_id, previous_data, new_data, created_at
        FROM op_change_data_logs`
)

type PgChangelogRepository struct{}

func NewChangelogRepository() changelog.Repository {
	return &PgChangelogRepository{}
}

func marshalSnapshot(s changelog.Snapshot) ([]byte, error) {
	if s == nil {
		s = changelog.Snapshot{}
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal snapshot")
	}
	return data, nil
}

func unmarshalSnapshot(data []byte) (changelog.Snapshot, error) {
	s := changelog.Snapshot{}
	if len(data) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal snapshot")
	}
	return s, nil
}

func (g *PgChangelogRepository) AppendProcessLog(ctx context.Context, log changelog.ProcessLog) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	previous, err := marshalSnapshot(log.Previous)
	if err != nil {
		return err
	}
	next, err := marshalSnapshot(log.New)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(
		ctx, processLogInsertQuery,
		log.ProcessID, log.UserID, string(log.Kind), previous, next, log.CreatedAt,
	); err != nil {
		return errors.Wrap(err, "failed to insert process log")
	}
	return nil
}

func (g *PgChangelogRepository) AppendRequestLog(ctx context.Context, log changelog.RequestLog) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	previous, err := marshalSnapshot(log.Previous)
	if err != nil {
		return err
	}
	next, err := marshalSnapshot(log.New)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(
		ctx, requestLogInsertQuery,
		log.RequestID, log.UserID, string(log.Kind), previous, next, log.CreatedAt,
	); err != nil {
		return errors.Wrap(err, "failed to insert request log")
	}
	return nil
}

func (g *PgChangelogRepository) AppendOPDataLog(ctx context.Context, log changelog.OPDataLog) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	previous, err := marshalSnapshot(log.Previous)
	if err != nil {
		return err
	}
	next, err := marshalSnapshot(log.New)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(
		ctx, opDataLogInsertQuery,
		log.OperationProgramID, log.UserID, previous, next, log.CreatedAt,
	); err != nil {
		return errors.Wrap(err, "failed to insert operation program log")
	}
	return nil
}

func (g *PgChangelogRepository) ProcessLogs(ctx context.Context, processID int64) ([]changelog.ProcessLog, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, processLogFindQuery+" WHERE process_id = $1 ORDER BY created_at DESC", processID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query process logs")
	}
	defer rows.Close()

	var logs []changelog.ProcessLog
	for rows.Next() {
		var (
			log      changelog.ProcessLog
			kind     string
			previous []byte
			next     []byte
		)
		if err := rows.Scan(
			&log.ID, &log.ProcessID, &log.UserID, &kind, &previous, &next, &log.CreatedAt,
		); err != nil {
			return nil, err
		}
		log.Kind = changelog.ChangeKind(kind)
		if log.Previous, err = unmarshalSnapshot(previous); err != nil {
			return nil, err
		}
		if log.New, err = unmarshalSnapshot(next); err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}

func (g *PgChangelogRepository) RequestLogs(ctx context.Context, requestID int64) ([]changelog.RequestLog, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, requestLogFindQuery+" WHERE request_id = $1 ORDER BY created_at DESC", requestID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query request logs")
	}
	defer rows.Close()

	var logs []changelog.RequestLog
	for rows.Next() {
		var (
			log      changelog.RequestLog
			kind     string
			previous []byte
			next     []byte
		)
		if err := rows.Scan(
			&log.ID, &log.RequestID, &log.UserID, &kind, &previous, &next, &log.CreatedAt,
		); err != nil {
			return nil, err
		}
		log.Kind = changelog.ChangeKind(kind)
		if log.Previous, err = unmarshalSnapshot(previous); err != nil {
			return nil, err
		}
		if log.New, err = unmarshalSnapshot(next); err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}

func (g *PgChangelogRepository) OPDataLogs(ctx context.Context, opID int64) ([]changelog.OPDataLog, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, opDataLogFindQuery+" WHERE operation_program_id = $1 ORDER BY created_at DESC", opID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query operation program logs")
	}
	defer rows.Close()

	var logs []changelog.OPDataLog
	for rows.Next() {
		log, err := g.scanOPDataLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}

func (g *PgChangelogRepository) LatestOPDataLog(ctx context.Context, opID int64) (*changelog.OPDataLog, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	row := tx.QueryRow(ctx, opDataLogFindQuery+" WHERE operation_program_id = $1 ORDER BY created_at DESC LIMIT 1", opID)
	log, err := g.scanOPDataLog(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &log, nil
}

func (g *PgChangelogRepository) scanOPDataLog(row pgx.Row) (changelog.OPDataLog, error) {
	var (
		log      changelog.OPDataLog
		previous []byte
		next     []byte
	)
	if err := row.Scan(
		&log.ID, &log.OperationProgramID, &log.UserID, &previous, &next, &log.CreatedAt,
	); err != nil {
		return changelog.OPDataLog{}, err
	}
	var err error
	if log.Previous, err = unmarshalSnapshot(previous); err != nil {
		return changelog.OPDataLog{}, err
	}
	if log.New, err = unmarshalSnapshot(next); err != nil {
		return changelog.OPDataLog{}, err
	}
	return log, nil
}
