package routes

import (
	"embed"

	"github.com/transapp/opct/modules/routes/infrastructure/persistence"
	"github.com/transapp/opct/modules/routes/presentation/controllers"
	"github.com/transapp/opct/modules/routes/services"
	"github.com/transapp/opct/pkg/application"
)

//go:embed infrastructure/persistence/schema/*.sql
var migrationFiles embed.FS

type Module struct{}

func NewModule() *Module {
	return &Module{}
}

func (m *Module) Name() string {
	return "routes"
}

func (m *Module) Register(app application.Application) error {
	routeRepo := persistence.NewRouteDictionaryRepository()

	app.RegisterServices(
		services.NewRouteDictionaryService(routeRepo),
	)

	app.RegisterControllers(
		controllers.NewRouteDictionaryController(app),
	)

	app.Migrations().RegisterSchema(m.Name(), &migrationFiles, "infrastructure/persistence/schema")
	return nil
}
