package opct

import (
	"context"
	"embed"

	corepersistence "github.com/transapp/opct/modules/core/infrastructure/persistence"
	coreservices "github.com/transapp/opct/modules/core/services"
	"github.com/transapp/opct/modules/opct/infrastructure/persistence"
	"github.com/transapp/opct/modules/opct/presentation/controllers"
	"github.com/transapp/opct/modules/opct/services"
	"github.com/transapp/opct/pkg/application"
	"github.com/transapp/opct/pkg/configuration"
)

//go:embed infrastructure/persistence/schema/*.sql
var migrationFiles embed.FS

type Module struct{}

func NewModule() *Module {
	return &Module{}
}

func (m *Module) Name() string {
	return "opct"
}

func (m *Module) Register(app application.Application) error {
	conf := configuration.Use()

	programRepo := persistence.NewOperationProgramRepository()
	statusRepo := persistence.NewStatusRepository()
	processRepo := persistence.NewProcessRepository()
	requestRepo := persistence.NewRequestRepository()
	changelogRepo := persistence.NewChangelogRepository()
	messageRepo := persistence.NewMessageRepository()
	orgRepo := corepersistence.NewOrganizationRepository()
	storage := persistence.NewDiskStorage(conf.Uploads.Dir)

	app.RegisterServices(
		services.NewProcessService(
			processRepo,
			requestRepo,
			statusRepo,
			programRepo,
			changelogRepo,
			messageRepo,
			orgRepo,
			storage,
			services.NewLogDeadlineRecalculator(conf.Logger()),
			app.EventPublisher(),
			conf.Uploads.MaxFileSize,
		),
		services.NewRequestService(requestRepo, statusRepo, programRepo, changelogRepo, app.EventPublisher()),
		services.NewOperationProgramService(programRepo, processRepo, requestRepo, changelogRepo),
	)

	app.RegisterControllers(
		controllers.NewProcessController(app),
		controllers.NewRequestController(app),
		controllers.NewOperationProgramController(app),
	)

	// Users referenced by workflow rows cannot be deleted from core.
	userService := app.Service(coreservices.UserService{}).(*coreservices.UserService)
	userService.RegisterDependencyChecker(func(ctx context.Context, userID int64) ([]coreservices.UserDependency, error) {
		var deps []coreservices.UserDependency
		processCount, err := processRepo.CountByCreator(ctx, userID)
		if err != nil {
			return nil, err
		}
		if processCount > 0 {
			deps = append(deps, coreservices.UserDependency{Kind: "change_op_processes", Count: processCount})
		}
		requestCount, err := requestRepo.CountByCreator(ctx, userID)
		if err != nil {
			return nil, err
		}
		if requestCount > 0 {
			deps = append(deps, coreservices.UserDependency{Kind: "change_op_requests", Count: requestCount})
		}
		return deps, nil
	})

	app.Migrations().RegisterSchema(m.Name(), &migrationFiles, "infrastructure/persistence/schema")
	return nil
}
