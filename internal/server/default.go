package server

import (
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/transapp/opct/modules/core/services"
	"github.com/transapp/opct/pkg/application"
	"github.com/transapp/opct/pkg/configuration"
	"github.com/transapp/opct/pkg/constants"
	"github.com/transapp/opct/pkg/httpapi"
	"github.com/transapp/opct/pkg/middleware"
	"github.com/transapp/opct/pkg/server"
)

type DefaultOptions struct {
	Logger        *logrus.Logger
	Configuration *configuration.Configuration
	Application   application.Application
	Pool          *pgxpool.Pool
}

// Default assembles the HTTP server with the shared middleware stack.
// Authorize only attaches the actor; route groups decide access.
func Default(options *DefaultOptions) (*server.HTTPServer, error) {
	app := options.Application
	authService := app.Service(services.AuthService{}).(*services.AuthService)

	app.RegisterMiddleware(
		middleware.WithLogger(options.Logger),
		middleware.Provide(constants.AppKey, app),
		middleware.Provide(constants.PoolKey, options.Pool),
		middleware.Cors(options.Configuration.AllowedOrigins...),
		middleware.RequestParams(),
		middleware.Authorize(authService),
	)

	notFound := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = httpapi.WriteError(w, http.StatusNotFound, "NOT_FOUND", "resource not found", nil)
	})
	methodNotAllowed := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = httpapi.WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", nil)
	})
	return server.NewHTTPServer(app, notFound, methodNotAllowed), nil
}
