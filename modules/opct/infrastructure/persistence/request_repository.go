package persistence

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/transapp/opct/modules/opct/domain/aggregates/request"
	"github.com/transapp/opct/pkg/composables"
	"github.com/transapp/opct/pkg/repo"
)

var ErrRequestNotFound = errors.New("change request not found")

const (
	requestFindQuery = `
        SELECT
            r.id,
            r.process_id,
            r.creator_id,
            r.title,
            r.message,
            r.reason,
            r.operation_program_id,
            r.status_id,
            r.related_routes,
            r.created_at,
            r.updated_at
        FROM change_op_requests r`

	requestInsertQuery = `
        INSERT INTO change_op_requests (
            process_id, creator_id, title, message, reason,
            operation_program_id, status_id, related_routes, created_at, updated_at
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
        RETURNING id`

	requestUpdateQuery = `
        UPDATE change_op_requests
        SET title = $1,
            message = $2,
            reason = $3,
            operation_program_id = $4,
            status_id = $5,
            related_routes = $6,
            updated_at = NOW()
        WHERE id = $7`

	relatedRequestsQuery = `
        SELECT related_request_id FROM change_op_request_relations
        WHERE request_id = $1 ORDER BY related_request_id`

	relatedRequestsDeleteQuery = `DELETE FROM change_op_request_relations WHERE request_id = $1`

	relatedRequestsInsertQuery = `
        INSERT INTO change_op_request_relations (request_id, related_request_id) VALUES`
)

type PgRequestRepository struct{}

func NewRequestRepository() request.Repository {
	return &PgRequestRepository{}
}

type requestRow struct {
	id            int64
	processID     int64
	creatorID     int64
	title         string
	message       string
	reason        string
	opID          *int64
	statusID      int64
	relatedRoutes []string
	createdAt     time.Time
	updatedAt     time.Time
}

func (g *PgRequestRepository) scan(row pgx.Row) (*requestRow, error) {
	r := &requestRow{}
	if err := row.Scan(
		&r.id, &r.processID, &r.creatorID, &r.title, &r.message, &r.reason,
		&r.opID, &r.statusID, &r.relatedRoutes, &r.createdAt, &r.updatedAt,
	); err != nil {
		return nil, err
	}
	return r, nil
}

func (g *PgRequestRepository) hydrate(ctx context.Context, r *requestRow) (request.ChangeOPRequest, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return request.ChangeOPRequest{}, err
	}
	rows, err := tx.Query(ctx, relatedRequestsQuery, r.id)
	if err != nil {
		return request.ChangeOPRequest{}, errors.Wrap(err, "failed to query related requests")
	}
	defer rows.Close()

	var relatedIDs []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return request.ChangeOPRequest{}, err
		}
		relatedIDs = append(relatedIDs, id)
	}
	if err := rows.Err(); err != nil {
		return request.ChangeOPRequest{}, err
	}

	return request.Hydrate(
		r.id, r.processID, r.creatorID, r.title, r.message,
		request.Reason(r.reason), r.opID, r.statusID,
		r.relatedRoutes, relatedIDs, r.createdAt, r.updatedAt,
	), nil
}

func (g *PgRequestRepository) GetByID(ctx context.Context, id int64) (request.ChangeOPRequest, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return request.ChangeOPRequest{}, err
	}
	row, err := g.scan(tx.QueryRow(ctx, requestFindQuery+" WHERE r.id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return request.ChangeOPRequest{}, ErrRequestNotFound
		}
		return request.ChangeOPRequest{}, err
	}
	return g.hydrate(ctx, row)
}

func (g *PgRequestRepository) GetByProcess(ctx context.Context, processID int64) ([]request.ChangeOPRequest, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, requestFindQuery+" WHERE r.process_id = $1 ORDER BY r.created_at DESC", processID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query change requests")
	}
	defer rows.Close()

	var scanned []*requestRow
	for rows.Next() {
		r, err := g.scan(rows)
		if err != nil {
			return nil, err
		}
		scanned = append(scanned, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	requests := make([]request.ChangeOPRequest, 0, len(scanned))
	for _, r := range scanned {
		req, err := g.hydrate(ctx, r)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, nil
}

func (g *PgRequestRepository) Create(ctx context.Context, req request.ChangeOPRequest) (request.ChangeOPRequest, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return request.ChangeOPRequest{}, err
	}
	routes := req.RelatedRoutes()
	if routes == nil {
		routes = []string{}
	}
	var id int64
	if err := tx.QueryRow(
		ctx, requestInsertQuery,
		req.ProcessID(), req.CreatorID(), req.Title(), req.Message(),
		string(req.Reason()), req.OperationProgramID(), req.StatusID(), routes,
	).Scan(&id); err != nil {
		return request.ChangeOPRequest{}, errors.Wrap(err, "failed to insert change request")
	}
	return g.GetByID(ctx, id)
}

func (g *PgRequestRepository) Update(ctx context.Context, req request.ChangeOPRequest) (request.ChangeOPRequest, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return request.ChangeOPRequest{}, err
	}
	routes := req.RelatedRoutes()
	if routes == nil {
		routes = []string{}
	}
	if _, err := tx.Exec(
		ctx, requestUpdateQuery,
		req.Title(), req.Message(), string(req.Reason()),
		req.OperationProgramID(), req.StatusID(), routes, req.ID(),
	); err != nil {
		return request.ChangeOPRequest{}, errors.Wrap(err, "failed to update change request")
	}
	return g.GetByID(ctx, req.ID())
}

func (g *PgRequestRepository) SetRelatedRequests(ctx context.Context, requestID int64, relatedIDs []int64) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, relatedRequestsDeleteQuery, requestID); err != nil {
		return errors.Wrap(err, "failed to clear related requests")
	}
	if len(relatedIDs) == 0 {
		return nil
	}
	values := make([][]interface{}, 0, len(relatedIDs))
	for _, relatedID := range relatedIDs {
		values = append(values, []interface{}{requestID, relatedID})
	}
	query, args := repo.BatchInsertQueryN(relatedRequestsInsertQuery, values)
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return errors.Wrap(err, "failed to insert related requests")
	}
	return nil
}

func (g *PgRequestRepository) CountByOperationProgram(ctx context.Context, opID int64) (int64, error) {
	return g.count(ctx, `SELECT COUNT(*) FROM change_op_requests WHERE operation_program_id = $1`, opID)
}

func (g *PgRequestRepository) CountByCreator(ctx context.Context, userID int64) (int64, error) {
	return g.count(ctx, `SELECT COUNT(*) FROM change_op_requests WHERE creator_id = $1`, userID)
}

func (g *PgRequestRepository) count(ctx context.Context, query string, arg interface{}) (int64, error) {
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
