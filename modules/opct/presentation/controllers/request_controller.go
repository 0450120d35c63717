package controllers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/transapp/opct/modules/core/domain/entities/contracttype"
	"github.com/transapp/opct/modules/opct/domain/aggregates/request"
	"github.com/transapp/opct/modules/opct/domain/entities/status"
	"github.com/transapp/opct/modules/opct/presentation/controllers/dtos"
	"github.com/transapp/opct/modules/opct/services"
	"github.com/transapp/opct/pkg/application"
	"github.com/transapp/opct/pkg/httpapi"
	"github.com/transapp/opct/pkg/middleware"
)

type RequestController struct {
	app      application.Application
	requests *services.RequestService
}

func NewRequestController(app application.Application) application.Controller {
	return &RequestController{
		app:      app,
		requests: app.Service(services.RequestService{}).(*services.RequestService),
	}
}

func (c *RequestController) Key() string {
	return "/api/change-op-requests"
}

func (c *RequestController) Register(r *mux.Router) {
	api := r.PathPrefix("/api/change-op-requests").Subrouter()
	api.Use(middleware.RequireAuthenticated())

	api.HandleFunc("/reasons", c.Reasons).Methods(http.MethodGet)
	api.HandleFunc("/statuses", c.Statuses).Methods(http.MethodGet)
	api.HandleFunc("/{id:[0-9]+}", c.Get).Methods(http.MethodGet)
	api.HandleFunc("/{id:[0-9]+}/logs", c.Logs).Methods(http.MethodGet)
	api.HandleFunc("/{id:[0-9]+}/change-op", c.ChangeOP).Methods(http.MethodPut)
	api.HandleFunc("/{id:[0-9]+}/change-status", c.ChangeStatus).Methods(http.MethodPut)
	api.HandleFunc("/{id:[0-9]+}/change-reason", c.ChangeReason).Methods(http.MethodPut)

	processStatuses := r.PathPrefix("/api/change-op-process-statuses").Subrouter()
	processStatuses.Use(middleware.RequireAuthenticated())
	processStatuses.HandleFunc("", c.ProcessStatuses).Methods(http.MethodGet)
}

func (c *RequestController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "invalid request id", nil)
		return
	}
	req, err := c.requests.GetByID(r.Context(), id)
	if err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toRequestResponse(req))
}

func (c *RequestController) Logs(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "invalid request id", nil)
		return
	}
	logs, err := c.requests.Logs(r.Context(), id)
	if err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	results := make([]LogResponse, 0, len(logs))
	for _, l := range logs {
		results = append(results, toRequestLogResponse(l))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, results)
}

func (c *RequestController) ChangeOP(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "invalid request id", nil)
		return
	}
	dto := &dtos.ChangeOPDTO{}
	if !decodeJSON(w, r, dto) {
		return
	}
	if fields, ok := dto.Ok(); !ok {
		writeValidationError(w, fields)
		return
	}
	updated, err := c.requests.ChangeOperationProgram(r.Context(), id, dto.OperationProgram)
	if err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toRequestResponse(updated))
}

func (c *RequestController) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "invalid request id", nil)
		return
	}
	dto := &dtos.ChangeStatusDTO{}
	if !decodeJSON(w, r, dto) {
		return
	}
	if fields, ok := dto.Ok(); !ok {
		writeValidationError(w, fields)
		return
	}
	updated, err := c.requests.ChangeStatus(r.Context(), id, dto.Status)
	if err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toRequestResponse(updated))
}

func (c *RequestController) ChangeReason(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "invalid request id", nil)
		return
	}
	dto := &dtos.ChangeReasonDTO{}
	if !decodeJSON(w, r, dto) {
		return
	}
	if fields, ok := dto.Ok(); !ok {
		writeValidationError(w, fields)
		return
	}
	updated, err := c.requests.ChangeReason(r.Context(), id, request.Reason(dto.Reason))
	if err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toRequestResponse(updated))
}

type reasonResponse struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

func (c *RequestController) Reasons(w http.ResponseWriter, _ *http.Request) {
	reasons := request.Reasons()
	results := make([]reasonResponse, 0, len(reasons))
	for _, reason := range reasons {
		results = append(results, reasonResponse{Key: string(reason), Name: reason.Label()})
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, results)
}

func (c *RequestController) statusCatalog(w http.ResponseWriter, r *http.Request, scope status.Scope) {
	raw := r.URL.Query().Get("contract_type")
	ctID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_CONTRACT_TYPE", "contract_type query parameter is required", nil)
		return
	}
	ct, err := contracttype.FromID(ctID)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_CONTRACT_TYPE", err.Error(), nil)
		return
	}
	statuses, err := c.requests.StatusCatalog(r.Context(), scope, ct)
	if err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	results := make([]StatusResponse, 0, len(statuses))
	for _, s := range statuses {
		results = append(results, toStatusResponse(s))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, results)
}

func (c *RequestController) Statuses(w http.ResponseWriter, r *http.Request) {
	c.statusCatalog(w, r, status.ScopeRequest)
}

func (c *RequestController) ProcessStatuses(w http.ResponseWriter, r *http.Request) {
	c.statusCatalog(w, r, status.ScopeProcess)
}
