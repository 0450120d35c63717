package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/transapp/opct/modules/routes/domain/entities/routedictionary"
	"github.com/transapp/opct/pkg/composables"
	"github.com/transapp/opct/pkg/repo"
)

var ErrRouteNotFound = errors.New("route dictionary entry not found")

const (
	routeFindQuery = `
        SELECT rd.id, rd.auth_route_code, rd.op_route_code, rd.user_route_code,
               rd.route_type, rd.operator, rd.created_at, rd.updated_at
        FROM route_dictionaries rd`

	routeCountQuery = `SELECT COUNT(*) FROM route_dictionaries rd`

	routeUpsertQuery = `
        INSERT INTO route_dictionaries (
            auth_route_code, op_route_code, user_route_code, route_type, operator
        ) VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (auth_route_code) DO UPDATE SET
            op_route_code = EXCLUDED.op_route_code,
            user_route_code = EXCLUDED.user_route_code,
            route_type = EXCLUDED.route_type,
            operator = EXCLUDED.operator,
            updated_at = NOW()
        RETURNING id, (xmax = 0) AS inserted`
)

type PgRouteDictionaryRepository struct{}

func NewRouteDictionaryRepository() routedictionary.Repository {
	return &PgRouteDictionaryRepository{}
}

func (g *PgRouteDictionaryRepository) scan(row pgx.Row) (routedictionary.RouteDictionary, error) {
	var r routedictionary.RouteDictionary
	if err := row.Scan(
		&r.ID,
		&r.AuthRouteCode,
		&r.OPRouteCode,
		&r.UserRouteCode,
		&r.RouteType,
		&r.Operator,
		&r.CreatedAt,
		&r.UpdatedAt,
	); err != nil {
		return routedictionary.RouteDictionary{}, err
	}
	return r, nil
}

func (g *PgRouteDictionaryRepository) GetPaginated(
	ctx context.Context,
	params *routedictionary.FindParams,
) ([]routedictionary.RouteDictionary, int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, 0, err
	}

	where, args := []string{}, []interface{}{}
	if params.Search != "" {
		where = append(where, "(rd.auth_route_code ILIKE $1 OR rd.user_route_code ILIKE $1 OR rd.operator ILIKE $1)")
		args = append(args, "%"+params.Search+"%")
	}

	var total int64
	countQuery := repo.Join(routeCountQuery, repo.JoinWhere(where...))
	if err := tx.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "failed to count route dictionary entries")
	}

	query := repo.Join(
		routeFindQuery,
		repo.JoinWhere(where...),
		"ORDER BY rd.auth_route_code",
		repo.FormatLimitOffset(params.Limit, params.Offset),
	)
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to query route dictionary entries")
	}
	defer rows.Close()

	var entries []routedictionary.RouteDictionary
	for rows.Next() {
		entry, err := g.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, entry)
	}
	return entries, total, rows.Err()
}

func (g *PgRouteDictionaryRepository) GetByAuthCode(
	ctx context.Context,
	authRouteCode string,
) (routedictionary.RouteDictionary, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return routedictionary.RouteDictionary{}, err
	}
	entry, err := g.scan(tx.QueryRow(ctx, routeFindQuery+" WHERE rd.auth_route_code = $1", authRouteCode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return routedictionary.RouteDictionary{}, ErrRouteNotFound
		}
		return routedictionary.RouteDictionary{}, err
	}
	return entry, nil
}

func (g *PgRouteDictionaryRepository) Upsert(
	ctx context.Context,
	entry routedictionary.RouteDictionary,
) (routedictionary.RouteDictionary, bool, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return routedictionary.RouteDictionary{}, false, err
	}
	var (
		id       int64
		inserted bool
	)
	if err := tx.QueryRow(
		ctx,
		routeUpsertQuery,
		entry.AuthRouteCode,
		entry.OPRouteCode,
		entry.UserRouteCode,
		entry.RouteType,
		entry.Operator,
	).Scan(&id, &inserted); err != nil {
		return routedictionary.RouteDictionary{}, false, errors.Wrap(err, "failed to upsert route dictionary entry")
	}
	saved, err := g.GetByAuthCode(ctx, entry.AuthRouteCode)
	if err != nil {
		return routedictionary.RouteDictionary{}, false, err
	}
	return saved, inserted, nil
}
