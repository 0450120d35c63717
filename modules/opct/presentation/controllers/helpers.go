package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/transapp/opct/modules/opct/domain/aggregates/process"
	"github.com/transapp/opct/modules/opct/domain/aggregates/request"
	"github.com/transapp/opct/modules/opct/domain/entities/changelog"
	"github.com/transapp/opct/modules/opct/domain/entities/message"
	"github.com/transapp/opct/modules/opct/domain/entities/operationprogram"
	"github.com/transapp/opct/modules/opct/domain/entities/status"
	"github.com/transapp/opct/pkg/httpapi"
)

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "malformed JSON body", nil)
		return false
	}
	return true
}

func writeValidationError(w http.ResponseWriter, fields map[string]string) {
	_ = httpapi.WriteError(w, http.StatusBadRequest, "VALIDATION_ERROR", "validation failed", fields)
}

func pathInt64(r *http.Request, name string) (int64, bool) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func pathID(r *http.Request) (int64, bool) {
	return pathInt64(r, "id")
}

func queryInt(r *http.Request, name string, fallback, max int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 || (max > 0 && v > max) {
		return fallback
	}
	return v
}

type RequestResponse struct {
	ID               int64    `json:"id"`
	Process          int64    `json:"change_op_process"`
	Creator          int64    `json:"creator"`
	Title            string   `json:"title"`
	Message          string   `json:"message"`
	Reason           string   `json:"reason"`
	ReasonName       string   `json:"reason_name"`
	OperationProgram *int64   `json:"op"`
	Status           int64    `json:"status"`
	RelatedRoutes    []string `json:"related_routes"`
	RelatedRequests  []int64  `json:"related_requests"`
	CreatedAt        string   `json:"created_at"`
	UpdatedAt        string   `json:"updated_at"`
}

func toRequestResponse(r request.ChangeOPRequest) RequestResponse {
	routes := r.RelatedRoutes()
	if routes == nil {
		routes = []string{}
	}
	related := r.RelatedRequestIDs()
	if related == nil {
		related = []int64{}
	}
	return RequestResponse{
		ID:               r.ID(),
		Process:          r.ProcessID(),
		Creator:          r.CreatorID(),
		Title:            r.Title(),
		Message:          r.Message(),
		Reason:           string(r.Reason()),
		ReasonName:       r.Reason().Label(),
		OperationProgram: r.OperationProgramID(),
		Status:           r.StatusID(),
		RelatedRoutes:    routes,
		RelatedRequests:  related,
		CreatedAt:        r.CreatedAt().Format(time.RFC3339),
		UpdatedAt:        r.UpdatedAt().Format(time.RFC3339),
	}
}

type ProcessResponse struct {
	ID               int64             `json:"id"`
	Title            string            `json:"title"`
	Message          string            `json:"message"`
	Counterpart      int64             `json:"counterpart"`
	ContractType     int64             `json:"contract_type"`
	Creator          int64             `json:"creator"`
	Status           int64             `json:"status"`
	OperationProgram *int64            `json:"op"`
	OPReleaseDate    *string           `json:"op_release_date"`
	Requests         []RequestResponse `json:"change_op_requests,omitempty"`
	CreatedAt        string            `json:"created_at"`
	UpdatedAt        string            `json:"updated_at"`
}

func toProcessResponse(p process.ChangeOPProcess) ProcessResponse {
	var release *string
	if p.ReleaseDate() != nil {
		formatted := p.ReleaseDate().Format("2006-01-02")
		release = &formatted
	}
	return ProcessResponse{
		ID:               p.ID(),
		Title:            p.Title(),
		Message:          p.Message(),
		Counterpart:      p.CounterpartID(),
		ContractType:     int64(p.ContractType()),
		Creator:          p.CreatorID(),
		Status:           p.StatusID(),
		OperationProgram: p.OperationProgramID(),
		OPReleaseDate:    release,
		CreatedAt:        p.CreatedAt().Format(time.RFC3339),
		UpdatedAt:        p.UpdatedAt().Format(time.RFC3339),
	}
}

type LogResponse struct {
	ID           int64              `json:"id"`
	User         int64              `json:"user"`
	Type         string             `json:"type"`
	PreviousData changelog.Snapshot `json:"previous_data"`
	NewData      changelog.Snapshot `json:"new_data"`
	CreatedAt    string             `json:"created_at"`
}

func toProcessLogResponse(l changelog.ProcessLog) LogResponse {
	return LogResponse{
		ID:           l.ID,
		User:         l.UserID,
		Type:         string(l.Kind),
		PreviousData: l.Previous,
		NewData:      l.New,
		CreatedAt:    l.CreatedAt.Format(time.RFC3339),
	}
}

func toRequestLogResponse(l changelog.RequestLog) LogResponse {
	return LogResponse{
		ID:           l.ID,
		User:         l.UserID,
		Type:         string(l.Kind),
		PreviousData: l.Previous,
		NewData:      l.New,
		CreatedAt:    l.CreatedAt.Format(time.RFC3339),
	}
}

type FileResponse struct {
	ID       int64  `json:"id"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	MimeType string `json:"mime_type"`
	URL      string `json:"url"`
}

type MessageResponse struct {
	ID              int64          `json:"id"`
	Process         int64          `json:"change_op_process"`
	Creator         int64          `json:"creator"`
	Message         string         `json:"message"`
	RelatedRequests []int64        `json:"related_requests"`
	Files           []FileResponse `json:"files"`
	CreatedAt       string         `json:"created_at"`
}

func toMessageResponse(m message.Message, files []message.File) MessageResponse {
	related := m.RelatedRequestIDs
	if related == nil {
		related = []int64{}
	}
	fileResponses := make([]FileResponse, 0, len(files))
	for _, f := range files {
		fileResponses = append(fileResponses, FileResponse{
			ID:       f.ID,
			Filename: f.Filename,
			Size:     f.Size,
			MimeType: f.MimeType,
			URL:      "/uploads/" + f.Path,
		})
	}
	return MessageResponse{
		ID:              m.ID,
		Process:         m.ProcessID,
		Creator:         m.CreatorID,
		Message:         m.Text,
		RelatedRequests: related,
		Files:           fileResponses,
		CreatedAt:       m.CreatedAt.Format(time.RFC3339),
	}
}

type OperationProgramResponse struct {
	ID              int64  `json:"id"`
	StartAt         string `json:"start_at"`
	ProgramType     int64  `json:"op_type"`
	ProgramTypeName string `json:"op_type_name"`
	CreatedAt       string `json:"created_at"`
}

func toOperationProgramResponse(p operationprogram.OperationProgram) OperationProgramResponse {
	return OperationProgramResponse{
		ID:              p.ID(),
		StartAt:         p.StartDateString(),
		ProgramType:     p.ProgramType().ID,
		ProgramTypeName: p.ProgramType().Name,
		CreatedAt:       p.CreatedAt().Format(time.RFC3339),
	}
}

type StatusResponse struct {
	ID           int64  `json:"id"`
	ContractType int64  `json:"contract_type"`
	Scope        string `json:"scope"`
	Name         string `json:"name"`
}

func toStatusResponse(s status.Status) StatusResponse {
	return StatusResponse{
		ID:           s.ID,
		ContractType: int64(s.ContractType),
		Scope:        string(s.Scope),
		Name:         s.Name,
	}
}
