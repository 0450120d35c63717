package controllers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/transapp/opct/modules/opct/domain/aggregates/process"
	"github.com/transapp/opct/modules/opct/presentation/controllers/dtos"
	"github.com/transapp/opct/modules/opct/services"
	"github.com/transapp/opct/pkg/application"
	"github.com/transapp/opct/pkg/composables"
	"github.com/transapp/opct/pkg/httpapi"
	"github.com/transapp/opct/pkg/middleware"
)

// multipartMemory caps how much of an upload is buffered in memory
// before spilling to temp files.
const multipartMemory = 32 << 20

type ProcessController struct {
	app       application.Application
	processes *services.ProcessService
}

func NewProcessController(app application.Application) application.Controller {
	return &ProcessController{
		app:       app,
		processes: app.Service(services.ProcessService{}).(*services.ProcessService),
	}
}

func (c *ProcessController) Key() string {
	return "/api/change-op-processes"
}

func (c *ProcessController) Register(r *mux.Router) {
	api := r.PathPrefix("/api/change-op-processes").Subrouter()
	api.Use(middleware.RequireAuthenticated())

	api.HandleFunc("", c.List).Methods(http.MethodGet)
	api.HandleFunc("", c.Create).Methods(http.MethodPost)
	api.HandleFunc("/{id:[0-9]+}", c.Get).Methods(http.MethodGet)
	api.HandleFunc("/{id:[0-9]+}/change-op", c.ChangeOP).Methods(http.MethodPut)
	api.HandleFunc("/{id:[0-9]+}/change-status", c.ChangeStatus).Methods(http.MethodPut)
	api.HandleFunc("/{id:[0-9]+}/add-message", c.AddMessage).Methods(http.MethodPost)
	api.HandleFunc("/{id:[0-9]+}/change-op-requests", c.CreateRequest).Methods(http.MethodPost)
	api.HandleFunc("/{id:[0-9]+}/change-op-requests", c.UpdateRequests).Methods(http.MethodPut)
	api.HandleFunc(
		"/{id:[0-9]+}/change-op-requests/{requestID:[0-9]+}/change-related-requests",
		c.ChangeRelatedRequests,
	).Methods(http.MethodPut)
}

type processListResponse struct {
	Total   int64             `json:"total"`
	Results []ProcessResponse `json:"results"`
}

// List scopes results to the caller's organization: processes it
// created or processes naming it as counterpart.
func (c *ProcessController) List(w http.ResponseWriter, r *http.Request) {
	actor, err := composables.UseUser(r.Context())
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "authentication required", nil)
		return
	}
	params := &process.FindParams{
		OrganizationID: actor.OrganizationID(),
		Search:         r.URL.Query().Get("search"),
		Limit:          queryInt(r, "limit", 100, 1000),
		Offset:         queryInt(r, "offset", 0, 0),
	}
	items, total, err := c.processes.GetPaginated(r.Context(), params)
	if err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	results := make([]ProcessResponse, 0, len(items))
	for _, p := range items {
		results = append(results, toProcessResponse(p))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, &processListResponse{Total: total, Results: results})
}

func (c *ProcessController) detailResponse(r *http.Request, detail services.ProcessDetail) (ProcessResponse, []LogResponse, []MessageResponse, error) {
	resp := toProcessResponse(detail.Process)
	resp.Requests = make([]RequestResponse, 0, len(detail.Requests))
	for _, req := range detail.Requests {
		resp.Requests = append(resp.Requests, toRequestResponse(req))
	}
	logs := make([]LogResponse, 0, len(detail.Logs))
	for _, l := range detail.Logs {
		logs = append(logs, toProcessLogResponse(l))
	}
	messages := make([]MessageResponse, 0, len(detail.Messages))
	for _, m := range detail.Messages {
		files, err := c.processes.MessageFiles(r.Context(), m.ID)
		if err != nil {
			return ProcessResponse{}, nil, nil, err
		}
		messages = append(messages, toMessageResponse(m, files))
	}
	return resp, logs, messages, nil
}

type processDetailResponse struct {
	ProcessResponse
	Logs     []LogResponse     `json:"logs"`
	Messages []MessageResponse `json:"messages"`
}

func (c *ProcessController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "invalid process id", nil)
		return
	}
	detail, err := c.processes.GetByID(r.Context(), id)
	if err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	resp, logs, messages, err := c.detailResponse(r, detail)
	if err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, &processDetailResponse{
		ProcessResponse: resp,
		Logs:            logs,
		Messages:        messages,
	})
}

func (c *ProcessController) Create(w http.ResponseWriter, r *http.Request) {
	dto := &dtos.CreateProcessDTO{}
	if !decodeJSON(w, r, dto) {
		return
	}
	if fields, ok := dto.Ok(); !ok {
		writeValidationError(w, fields)
		return
	}
	detail, err := c.processes.Create(r.Context(), dto.ToInput())
	if err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	resp, logs, messages, err := c.detailResponse(r, detail)
	if err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, &processDetailResponse{
		ProcessResponse: resp,
		Logs:            logs,
		Messages:        messages,
	})
}

func (c *ProcessController) ChangeOP(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "invalid process id", nil)
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
	updated, err := c.processes.ChangeOperationProgram(r.Context(), id, dto.OperationProgram, dto.UpdateDeadlines)
	if err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toProcessResponse(updated))
}

func (c *ProcessController) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "invalid process id", nil)
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
	updated, err := c.processes.ChangeStatus(r.Context(), id, dto.Status)
	if err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toProcessResponse(updated))
}

// AddMessage accepts multipart form data: a "message" text field,
// repeated "related_requests" ids and any number of "files" parts.
func (c *ProcessController) AddMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "invalid process id", nil)
		return
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "malformed multipart body", nil)
		return
	}

	related := make([]int64, 0, len(r.MultipartForm.Value["related_requests"]))
	for _, raw := range r.MultipartForm.Value["related_requests"] {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v <= 0 {
			_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "invalid related request id", nil)
			return
		}
		related = append(related, v)
	}

	files := make([]services.FileUpload, 0, len(r.MultipartForm.File["files"]))
	for _, header := range r.MultipartForm.File["files"] {
		f, err := header.Open()
		if err != nil {
			_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "unreadable file part", nil)
			return
		}
		defer f.Close()
		files = append(files, services.FileUpload{
			Filename: header.Filename,
			Size:     header.Size,
			Content:  f,
		})
	}

	created, err := c.processes.AddMessage(r.Context(), id, r.FormValue("message"), files, related)
	if err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	storedFiles, err := c.processes.MessageFiles(r.Context(), created.ID)
	if err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, toMessageResponse(created, storedFiles))
}

func (c *ProcessController) CreateRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "invalid process id", nil)
		return
	}
	dto := &dtos.CreateRequestDTO{}
	if !decodeJSON(w, r, dto) {
		return
	}
	if fields, ok := dto.Ok(); !ok {
		writeValidationError(w, fields)
		return
	}
	created, err := c.processes.CreateRequest(r.Context(), id, dto.ToInput())
	if err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, toRequestResponse(created))
}

func (c *ProcessController) UpdateRequests(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "invalid process id", nil)
		return
	}
	dto := &dtos.UpdateRequestsDTO{}
	if !decodeJSON(w, r, dto) {
		return
	}
	if fields, ok := dto.Ok(); !ok {
		writeValidationError(w, fields)
		return
	}
	updated, err := c.processes.UpdateRequests(r.Context(), id, dto.ToInputs())
	if err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	results := make([]RequestResponse, 0, len(updated))
	for _, req := range updated {
		results = append(results, toRequestResponse(req))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, results)
}

func (c *ProcessController) ChangeRelatedRequests(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "invalid process id", nil)
		return
	}
	requestID, ok := pathInt64(r, "requestID")
	if !ok {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "invalid request id", nil)
		return
	}
	dto := &dtos.ChangeRelatedRequestsDTO{}
	if !decodeJSON(w, r, dto) {
		return
	}
	if fields, ok := dto.Ok(); !ok {
		writeValidationError(w, fields)
		return
	}
	if err := c.processes.ChangeRelatedRequests(r.Context(), id, requestID, dto.RelatedRequests); err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusNoContent, nil)
}
