package controllers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/transapp/opct/modules/core/domain/aggregates/user"
	"github.com/transapp/opct/modules/opct/domain/entities/changelog"
	"github.com/transapp/opct/modules/opct/domain/entities/operationprogram"
	"github.com/transapp/opct/modules/opct/presentation/controllers/dtos"
	"github.com/transapp/opct/modules/opct/services"
	"github.com/transapp/opct/pkg/application"
	"github.com/transapp/opct/pkg/httpapi"
	"github.com/transapp/opct/pkg/middleware"
)

type OperationProgramController struct {
	app      application.Application
	programs *services.OperationProgramService
}

func NewOperationProgramController(app application.Application) application.Controller {
	return &OperationProgramController{
		app:      app,
		programs: app.Service(services.OperationProgramService{}).(*services.OperationProgramService),
	}
}

func (c *OperationProgramController) Key() string {
	return "/api/operation-programs"
}

func (c *OperationProgramController) Register(r *mux.Router) {
	api := r.PathPrefix("/api/operation-programs").Subrouter()
	api.Use(middleware.RequireAuthenticated())

	api.HandleFunc("", c.List).Methods(http.MethodGet)
	api.HandleFunc("/{id:[0-9]+}", c.Get).Methods(http.MethodGet)
	api.HandleFunc("/{id:[0-9]+}/logs", c.Logs).Methods(http.MethodGet)

	admin := api.NewRoute().Subrouter()
	admin.Use(middleware.RequireGroup(user.GroupOperationProgram))
	admin.HandleFunc("", c.Create).Methods(http.MethodPost)
	admin.HandleFunc("/{id:[0-9]+}", c.Update).Methods(http.MethodPut)
	admin.HandleFunc("/{id:[0-9]+}", c.Delete).Methods(http.MethodDelete)

	types := r.PathPrefix("/api/operation-program-types").Subrouter()
	types.Use(middleware.RequireAuthenticated())
	types.HandleFunc("", c.ProgramTypes).Methods(http.MethodGet)
}

type operationProgramListResponse struct {
	Total   int64                      `json:"total"`
	Results []OperationProgramResponse `json:"results"`
}

func (c *OperationProgramController) List(w http.ResponseWriter, r *http.Request) {
	params := &operationprogram.FindParams{
		Search: r.URL.Query().Get("search"),
		Limit:  queryInt(r, "limit", 100, 1000),
		Offset: queryInt(r, "offset", 0, 0),
	}
	programs, total, err := c.programs.GetPaginated(r.Context(), params)
	if err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	results := make([]OperationProgramResponse, 0, len(programs))
	for _, p := range programs {
		results = append(results, toOperationProgramResponse(p))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, &operationProgramListResponse{Total: total, Results: results})
}

func (c *OperationProgramController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "invalid operation program id", nil)
		return
	}
	p, err := c.programs.GetByID(r.Context(), id)
	if err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toOperationProgramResponse(p))
}

type opDataLogResponse struct {
	ID           int64              `json:"id"`
	User         int64              `json:"user"`
	PreviousData changelog.Snapshot `json:"previous_data"`
	NewData      changelog.Snapshot `json:"new_data"`
	CreatedAt    string             `json:"created_at"`
}

func (c *OperationProgramController) Logs(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "invalid operation program id", nil)
		return
	}
	logs, err := c.programs.Logs(r.Context(), id)
	if err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	results := make([]opDataLogResponse, 0, len(logs))
	for _, l := range logs {
		results = append(results, opDataLogResponse{
			ID:           l.ID,
			User:         l.UserID,
			PreviousData: l.Previous,
			NewData:      l.New,
			CreatedAt:    l.CreatedAt.Format(time.RFC3339),
		})
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, results)
}

func (c *OperationProgramController) Create(w http.ResponseWriter, r *http.Request) {
	dto := &dtos.OperationProgramDTO{}
	if !decodeJSON(w, r, dto) {
		return
	}
	if fields, ok := dto.Ok(); !ok {
		writeValidationError(w, fields)
		return
	}
	startDate, err := dto.StartDate()
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "start_at must be a YYYY-MM-DD date", nil)
		return
	}
	created, err := c.programs.Create(r.Context(), startDate, dto.ProgramType)
	if err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, toOperationProgramResponse(created))
}

func (c *OperationProgramController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "invalid operation program id", nil)
		return
	}
	dto := &dtos.OperationProgramDTO{}
	if !decodeJSON(w, r, dto) {
		return
	}
	if fields, ok := dto.Ok(); !ok {
		writeValidationError(w, fields)
		return
	}
	startDate, err := dto.StartDate()
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "start_at must be a YYYY-MM-DD date", nil)
		return
	}
	updated, err := c.programs.Update(r.Context(), id, startDate, dto.ProgramType)
	if err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toOperationProgramResponse(updated))
}

func (c *OperationProgramController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "invalid operation program id", nil)
		return
	}
	if err := c.programs.Delete(r.Context(), id); err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusNoContent, nil)
}

type programTypeResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (c *OperationProgramController) ProgramTypes(w http.ResponseWriter, r *http.Request) {
	types, err := c.programs.ProgramTypes(r.Context())
	if err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	results := make([]programTypeResponse, 0, len(types))
	for _, t := range types {
		results = append(results, programTypeResponse{ID: t.ID, Name: t.Name})
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, results)
}
