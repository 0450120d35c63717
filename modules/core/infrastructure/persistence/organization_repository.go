package persistence

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/transapp/opct/modules/core/domain/entities/contracttype"
	"github.com/transapp/opct/modules/core/domain/entities/organization"
	"github.com/transapp/opct/pkg/composables"
)

var ErrOrganizationNotFound = errors.New("organization not found")

const (
	organizationFindQuery = `
        SELECT
            o.id,
            o.name,
            o.contract_type_id,
            o.default_counterpart_id,
            o.default_user_contact_id,
            o.created_at
        FROM organizations o`

	organizationInsertQuery = `
        INSERT INTO organizations (name, contract_type_id, default_counterpart_id, default_user_contact_id, created_at)
        VALUES ($1, $2, $3, $4, NOW())
        RETURNING id`

	organizationUpdateQuery = `
        UPDATE organizations
        SET name = $1, contract_type_id = $2, default_counterpart_id = $3, default_user_contact_id = $4
        WHERE id = $5`

	organizationDeleteQuery = `DELETE FROM organizations WHERE id = $1`
)

type PgOrganizationRepository struct{}

func NewOrganizationRepository() organization.Repository {
	return &PgOrganizationRepository{}
}

func (g *PgOrganizationRepository) scan(row pgx.Row) (organization.Organization, error) {
	var (
		id                   int64
		name                 string
		contractTypeID       int64
		defaultCounterpartID *int64
		defaultUserContactID *int64
		createdAt            time.Time
	)
	if err := row.Scan(&id, &name, &contractTypeID, &defaultCounterpartID, &defaultUserContactID, &createdAt); err != nil {
		return organization.Organization{}, err
	}
	ct, err := contracttype.FromID(contractTypeID)
	if err != nil {
		return organization.Organization{}, err
	}
	return organization.Hydrate(id, name, ct, defaultCounterpartID, defaultUserContactID, createdAt), nil
}

func (g *PgOrganizationRepository) GetAll(ctx context.Context) ([]organization.Organization, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, organizationFindQuery+" ORDER BY o.name")
	if err != nil {
		return nil, errors.Wrap(err, "failed to query organizations")
	}
	defer rows.Close()

	var orgs []organization.Organization
	for rows.Next() {
		o, err := g.scan(rows)
		if err != nil {
			return nil, err
		}
		orgs = append(orgs, o)
	}
	return orgs, rows.Err()
}

func (g *PgOrganizationRepository) GetByID(ctx context.Context, id int64) (organization.Organization, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return organization.Organization{}, err
	}
	o, err := g.scan(tx.QueryRow(ctx, organizationFindQuery+" WHERE o.id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return organization.Organization{}, ErrOrganizationNotFound
		}
		return organization.Organization{}, err
	}
	return o, nil
}

func (g *PgOrganizationRepository) Create(ctx context.Context, o organization.Organization) (organization.Organization, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return organization.Organization{}, err
	}
	var id int64
	if err := tx.QueryRow(
		ctx, organizationInsertQuery,
		o.Name(), int64(o.ContractType()), o.DefaultCounterpartID(), o.DefaultUserContactID(),
	).Scan(&id); err != nil {
		return organization.Organization{}, errors.Wrap(err, "failed to insert organization")
	}
	return g.GetByID(ctx, id)
}

func (g *PgOrganizationRepository) Update(ctx context.Context, o organization.Organization) (organization.Organization, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return organization.Organization{}, err
	}
	if _, err := tx.Exec(
		ctx, organizationUpdateQuery,
		o.Name(), int64(o.ContractType()), o.DefaultCounterpartID(), o.DefaultUserContactID(), o.ID(),
	); err != nil {
		return organization.Organization{}, errors.Wrap(err, "failed to update organization")
	}
	return g.GetByID(ctx, o.ID())
}

func (g *PgOrganizationRepository) Delete(ctx context.Context, id int64) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, organizationDeleteQuery, id)
	return err
}
