package seed

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/transapp/opct/modules/core/domain/aggregates/user"
	"github.com/transapp/opct/modules/core/domain/entities/contracttype"
	"github.com/transapp/opct/modules/core/domain/entities/organization"
	"github.com/transapp/opct/modules/core/infrastructure/persistence"
	"github.com/transapp/opct/pkg/application"
	"github.com/transapp/opct/pkg/composables"
)

// AdminUser creates the bootstrap staff account and its organization.
// Safe to run repeatedly: it backs off when the email already exists.
func AdminUser(email, password string) application.SeedFunc {
	return func(ctx context.Context, app application.Application) error {
		users := persistence.NewUserRepository()
		orgs := persistence.NewOrganizationRepository()

		return composables.InTx(ctx, func(txCtx context.Context) error {
			if _, err := users.GetByEmail(txCtx, email); err == nil {
				return nil
			} else if !errors.Is(err, persistence.ErrUserNotFound) {
				return err
			}

			org, err := orgs.Create(txCtx, organization.New("Administration", contracttype.Both))
			if err != nil {
				return err
			}

			admin := user.New(email, "Admin", "", org.ID())
			admin = admin.SetStaff(true).SetGroups([]string{
				user.GroupUser,
				user.GroupOrganization,
				user.GroupOperationProgram,
				user.GroupRouteImport,
			})
			admin, err = admin.SetPassword(password)
			if err != nil {
				return err
			}
			_, err = users.Create(txCtx, admin)
			return err
		})
	}
}
