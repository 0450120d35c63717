package core

import (
	"embed"

	"github.com/transapp/opct/modules/core/infrastructure/persistence"
	"github.com/transapp/opct/modules/core/presentation/controllers"
	"github.com/transapp/opct/modules/core/services"
	"github.com/transapp/opct/pkg/application"
)

//go:embed infrastructure/persistence/schema/*.sql
var migrationFiles embed.FS

type Module struct{}

func NewModule() *Module {
	return &Module{}
}

func (m *Module) Name() string {
	return "core"
}

func (m *Module) Register(app application.Application) error {
	userRepo := persistence.NewUserRepository()
	orgRepo := persistence.NewOrganizationRepository()
	sessionRepo := persistence.NewSessionRepository()

	app.RegisterServices(
		services.NewAuthService(userRepo, sessionRepo),
		services.NewUserService(userRepo, app.EventPublisher()),
		services.NewOrganizationService(orgRepo, userRepo, app.EventPublisher()),
	)

	app.RegisterControllers(
		controllers.NewLoginController(app),
		controllers.NewUserController(app),
		controllers.NewOrganizationController(app),
		controllers.NewContractTypeController(app),
	)

	app.Migrations().RegisterSchema(m.Name(), &migrationFiles, "infrastructure/persistence/schema")
	return nil
}
