package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/transapp/opct/modules/core/domain/aggregates/user"
	"github.com/transapp/opct/pkg/composables"
	"github.com/transapp/opct/pkg/repo"
)

var (
	ErrUserNotFound = errors.New("user not found")
)

const (
	userFindQuery = `
        SELECT
            u.id,
            u.email,
            u.first_name,
            u.last_name,
            u.organization_id,
            u.password_hash,
            u.is_staff,
            u.last_login,
            u.created_at,
            u.updated_at
        FROM users u`

	userCountQuery = `SELECT COUNT(u.id) FROM users u`

	userCountByOrganizationQuery = `SELECT COUNT(*) FROM users WHERE organization_id = $1`

	userInsertQuery = `
        INSERT INTO users (email, first_name, last_name, organization_id, password_hash, is_staff, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
        RETURNING id`

	userUpdateQuery = `
        UPDATE users
        SET email = $1, first_name = $2, last_name = $3, organization_id = $4, password_hash = $5, is_staff = $6, updated_at = NOW()
        WHERE id = $7`

	userUpdateLastLoginQuery = `UPDATE users SET last_login = NOW() WHERE id = $1`

	userDeleteQuery      = `DELETE FROM users WHERE id = $1`
	userGroupDeleteQuery = `DELETE FROM user_groups WHERE user_id = $1`
	userGroupInsertQuery = `
        INSERT INTO user_groups (user_id, group_id)
        SELECT $1, g.id FROM groups g WHERE g.name = ANY($2)`

	userGroupsQuery = `
        SELECT g.name
        FROM user_groups ug
        JOIN groups g ON g.id = ug.group_id
        WHERE ug.user_id = $1
        ORDER BY g.name`
)

type PgUserRepository struct{}

func NewUserRepository() user.Repository {
	return &PgUserRepository{}
}

type userRow struct {
	id             int64
	email          string
	firstName      string
	lastName       string
	organizationID int64
	passwordHash   string
	isStaff        bool
	lastLogin      *time.Time
	createdAt      time.Time
	updatedAt      time.Time
}

func (g *PgUserRepository) scanUser(row pgx.Row) (userRow, error) {
	var r userRow
	err := row.Scan(
		&r.id,
		&r.email,
		&r.firstName,
		&r.lastName,
		&r.organizationID,
		&r.passwordHash,
		&r.isStaff,
		&r.lastLogin,
		&r.createdAt,
		&r.updatedAt,
	)
	return r, err
}

func (g *PgUserRepository) hydrate(ctx context.Context, r userRow) (user.User, error) {
	groups, err := g.groupsOf(ctx, r.id)
	if err != nil {
		return user.User{}, err
	}
	return user.Hydrate(
		r.id,
		r.email,
		r.firstName,
		r.lastName,
		r.organizationID,
		groups,
		r.passwordHash,
		r.isStaff,
		r.lastLogin,
		r.createdAt,
		r.updatedAt,
	), nil
}

func (g *PgUserRepository) groupsOf(ctx context.Context, userID int64) ([]string, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, userGroupsQuery, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query user groups")
	}
	defer rows.Close()

	var groups []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		groups = append(groups, name)
	}
	return groups, rows.Err()
}

func (g *PgUserRepository) GetPaginated(ctx context.Context, params *user.FindParams) ([]user.User, int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, 0, err
	}

	var where []string
	var args []interface{}
	if params.Search != "" {
		where = append(where, fmt.Sprintf(
			"(u.first_name ILIKE $%d OR u.last_name ILIKE $%d OR u.email ILIKE $%d)", 1, 1, 1,
		))
		args = append(args, "%"+params.Search+"%")
	}

	query := repo.Join(
		userFindQuery,
		repo.JoinWhere(where...),
		"ORDER BY u.created_at DESC",
		repo.FormatLimitOffset(params.Limit, params.Offset),
	)
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to query users")
	}
	defer rows.Close()

	var raws []userRow
	for rows.Next() {
		r, err := g.scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		raws = append(raws, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	users := make([]user.User, 0, len(raws))
	for _, r := range raws {
		u, err := g.hydrate(ctx, r)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}

	countQuery := repo.Join(userCountQuery, repo.JoinWhere(where...))
	var total int64
	if err := tx.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (g *PgUserRepository) GetByID(ctx context.Context, id int64) (user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return user.User{}, err
	}
	r, err := g.scanUser(tx.QueryRow(ctx, userFindQuery+" WHERE u.id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, ErrUserNotFound
		}
		return user.User{}, err
	}
	return g.hydrate(ctx, r)
}

func (g *PgUserRepository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return user.User{}, err
	}
	r, err := g.scanUser(tx.QueryRow(ctx, userFindQuery+" WHERE u.email = $1", email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, ErrUserNotFound
		}
		return user.User{}, err
	}
	return g.hydrate(ctx, r)
}

func (g *PgUserRepository) Create(ctx context.Context, u user.User) (user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return user.User{}, err
	}
	var id int64
	if err := tx.QueryRow(
		ctx, userInsertQuery,
		u.Email(), u.FirstName(), u.LastName(), u.OrganizationID(), u.PasswordHash(), u.IsStaff(),
	).Scan(&id); err != nil {
		return user.User{}, errors.Wrap(err, "failed to insert user")
	}
	if err := g.setGroups(ctx, id, u.Groups()); err != nil {
		return user.User{}, err
	}
	return g.GetByID(ctx, id)
}

func (g *PgUserRepository) Update(ctx context.Context, u user.User) (user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return user.User{}, err
	}
	if _, err := tx.Exec(
		ctx, userUpdateQuery,
		u.Email(), u.FirstName(), u.LastName(), u.OrganizationID(), u.PasswordHash(), u.IsStaff(), u.ID(),
	); err != nil {
		return user.User{}, errors.Wrap(err, "failed to update user")
	}
	if err := g.setGroups(ctx, u.ID(), u.Groups()); err != nil {
		return user.User{}, err
	}
	return g.GetByID(ctx, u.ID())
}

func (g *PgUserRepository) setGroups(ctx context.Context, userID int64, groups []string) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, userGroupDeleteQuery, userID); err != nil {
		return err
	}
	if len(groups) == 0 {
		return nil
	}
	_, err = tx.Exec(ctx, userGroupInsertQuery, userID, groups)
	return err
}

func (g *PgUserRepository) UpdateLastLogin(ctx context.Context, id int64) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, userUpdateLastLoginQuery, id)
	return err
}

func (g *PgUserRepository) Delete(ctx context.Context, id int64) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, userGroupDeleteQuery, id); err != nil {
		return err
	}
	_, err = tx.Exec(ctx, userDeleteQuery, id)
	return err
}

func (g *PgUserRepository) CountByOrganization(ctx context.Context, organizationID int64) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	var count int64
	if err := tx.QueryRow(ctx, userCountByOrganizationQuery, organizationID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
