package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/transapp/opct/modules/core/domain/aggregates/user"
	"github.com/transapp/opct/modules/routes/domain/entities/routedictionary"
	"github.com/transapp/opct/modules/routes/services"
	"github.com/transapp/opct/pkg/application"
	"github.com/transapp/opct/pkg/httpapi"
	"github.com/transapp/opct/pkg/middleware"
)

const importMemory = 32 << 20

type RouteDictionaryController struct {
	app    application.Application
	routes *services.RouteDictionaryService
}

func NewRouteDictionaryController(app application.Application) application.Controller {
	return &RouteDictionaryController{
		app:    app,
		routes: app.Service(services.RouteDictionaryService{}).(*services.RouteDictionaryService),
	}
}

func (c *RouteDictionaryController) Key() string {
	return "/api/route-dictionaries"
}

func (c *RouteDictionaryController) Register(r *mux.Router) {
	api := r.PathPrefix("/api/route-dictionaries").Subrouter()
	api.Use(middleware.RequireAuthenticated())
	api.HandleFunc("", c.List).Methods(http.MethodGet)

	admin := api.NewRoute().Subrouter()
	admin.Use(middleware.RequireGroup(user.GroupRouteImport))
	admin.HandleFunc("/update-definitions", c.Import).Methods(http.MethodPost)
}

type RouteDictionaryResponse struct {
	ID            int64  `json:"id"`
	AuthRouteCode string `json:"auth_route_code"`
	OPRouteCode   string `json:"op_route_code"`
	UserRouteCode string `json:"user_route_code"`
	RouteType     string `json:"route_type"`
	Operator      string `json:"operator"`
	UpdatedAt     string `json:"updated_at"`
}

type routeListResponse struct {
	Total   int64                     `json:"total"`
	Results []RouteDictionaryResponse `json:"results"`
}

func (c *RouteDictionaryController) List(w http.ResponseWriter, r *http.Request) {
	params := &routedictionary.FindParams{
		Search: r.URL.Query().Get("search"),
		Limit:  500,
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 && limit <= 5000 {
			params.Limit = limit
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if offset, err := strconv.Atoi(raw); err == nil && offset >= 0 {
			params.Offset = offset
		}
	}

	entries, total, err := c.routes.GetPaginated(r.Context(), params)
	if err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	results := make([]RouteDictionaryResponse, 0, len(entries))
	for _, entry := range entries {
		results = append(results, RouteDictionaryResponse{
			ID:            entry.ID,
			AuthRouteCode: entry.AuthRouteCode,
			OPRouteCode:   entry.OPRouteCode,
			UserRouteCode: entry.UserRouteCode,
			RouteType:     entry.RouteType,
			Operator:      entry.Operator,
			UpdatedAt:     entry.UpdatedAt.Format(time.RFC3339),
		})
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, &routeListResponse{Total: total, Results: results})
}

// Import accepts one multipart "files" part holding a CSV, gzipped CSV
// or zip archive.
func (c *RouteDictionaryController) Import(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(importMemory); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "malformed multipart body", nil)
		return
	}
	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "MISSING_FILE", "dictionary file is required", nil)
		return
	}
	header := headers[0]
	if header.Size == 0 {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "EMPTY_FILE", "dictionary file cannot be empty", nil)
		return
	}
	f, err := header.Open()
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "unreadable file part", nil)
		return
	}
	defer f.Close()

	result, err := c.routes.Import(r.Context(), header.Filename, f)
	if err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, result)
}
