package services

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"

	"github.com/transapp/opct/modules/core/domain/entities/organization"
	"github.com/transapp/opct/modules/core/domain/aggregates/user"
	"github.com/transapp/opct/modules/core/infrastructure/persistence"
	"github.com/transapp/opct/pkg/composables"
	"github.com/transapp/opct/pkg/eventbus"
	"github.com/transapp/opct/pkg/serrors"
)

type OrganizationCreatedEvent struct{ Organization organization.Organization }
type OrganizationUpdatedEvent struct{ Organization organization.Organization }
type OrganizationDeletedEvent struct{ ID int64 }

type OrganizationService struct {
	repo      organization.Repository
	users     user.Repository
	publisher eventbus.EventBus
}

func NewOrganizationService(
	repo organization.Repository,
	users user.Repository,
	publisher eventbus.EventBus,
) *OrganizationService {
	return &OrganizationService{repo: repo, users: users, publisher: publisher}
}

func (s *OrganizationService) GetAll(ctx context.Context) ([]organization.Organization, error) {
	var orgs []organization.Organization
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		var err error
		orgs, err = s.repo.GetAll(txCtx)
		return err
	})
	if err != nil {
		return nil, mapPgError(err)
	}
	return orgs, nil
}

func (s *OrganizationService) GetByID(ctx context.Context, id int64) (organization.Organization, error) {
	var org organization.Organization
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		var err error
		org, err = s.repo.GetByID(txCtx, id)
		return err
	})
	if err != nil {
		if errors.Is(err, persistence.ErrOrganizationNotFound) {
			return organization.Organization{}, serrors.NotFound("ORGANIZATION_NOT_FOUND", "organization not found", err)
		}
		return organization.Organization{}, mapPgError(err)
	}
	return org, nil
}

func (s *OrganizationService) Create(ctx context.Context, org organization.Organization) (organization.Organization, error) {
	var created organization.Organization
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		var err error
		created, err = s.repo.Create(txCtx, org)
		return err
	})
	if err != nil {
		return organization.Organization{}, mapPgError(err)
	}
	s.publisher.Publish(OrganizationCreatedEvent{Organization: created})
	return created, nil
}

func (s *OrganizationService) Update(ctx context.Context, org organization.Organization) (organization.Organization, error) {
	var updated organization.Organization
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		var err error
		updated, err = s.repo.Update(txCtx, org)
		return err
	})
	if err != nil {
		if errors.Is(err, persistence.ErrOrganizationNotFound) {
			return organization.Organization{}, serrors.NotFound("ORGANIZATION_NOT_FOUND", "organization not found", err)
		}
		return organization.Organization{}, mapPgError(err)
	}
	s.publisher.Publish(OrganizationUpdatedEvent{Organization: updated})
	return updated, nil
}

// Delete refuses to remove an organization that still has users.
func (s *OrganizationService) Delete(ctx context.Context, id int64) error {
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.GetByID(txCtx, id); err != nil {
			if errors.Is(err, persistence.ErrOrganizationNotFound) {
				return serrors.NotFound("ORGANIZATION_NOT_FOUND", "organization not found", err)
			}
			return err
		}
		count, err := s.users.CountByOrganization(txCtx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return serrors.Conflict(
				"ORGANIZATION_IN_USE",
				fmt.Sprintf("organization still has %d users", count),
				nil,
			)
		}
		return s.repo.Delete(txCtx, id)
	})
	if err != nil {
		return mapPgError(err)
	}
	s.publisher.Publish(OrganizationDeletedEvent{ID: id})
	return nil
}
