package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/transapp/opct/modules/core/domain/aggregates/user"
	"github.com/transapp/opct/modules/core/domain/entities/organization"
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

func pathID(r *http.Request) (int64, bool) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

type UserResponse struct {
	ID             int64    `json:"id"`
	Email          string   `json:"email"`
	FirstName      string   `json:"first_name"`
	LastName       string   `json:"last_name"`
	OrganizationID int64    `json:"organization_id"`
	Groups         []string `json:"groups"`
	IsStaff        bool     `json:"is_staff"`
	LastLogin      *string  `json:"last_login"`
	CreatedAt      string   `json:"created_at"`
}

func toUserResponse(u user.User) UserResponse {
	var lastLogin *string
	if u.LastLogin() != nil {
		formatted := u.LastLogin().Format(time.RFC3339)
		lastLogin = &formatted
	}
	groups := u.Groups()
	if groups == nil {
		groups = []string{}
	}
	return UserResponse{
		ID:             u.ID(),
		Email:          u.Email(),
		FirstName:      u.FirstName(),
		LastName:       u.LastName(),
		OrganizationID: u.OrganizationID(),
		Groups:         groups,
		IsStaff:        u.IsStaff(),
		LastLogin:      lastLogin,
		CreatedAt:      u.CreatedAt().Format(time.RFC3339),
	}
}

type OrganizationResponse struct {
	ID                 int64  `json:"id"`
	Name               string `json:"name"`
	ContractType       int64  `json:"contract_type"`
	ContractTypeName   string `json:"contract_type_name"`
	DefaultCounterpart *int64 `json:"default_counterpart"`
	DefaultUserContact *int64 `json:"default_user_contact"`
	CreatedAt          string `json:"created_at"`
}

func toOrganizationResponse(o organization.Organization) OrganizationResponse {
	return OrganizationResponse{
		ID:                 o.ID(),
		Name:               o.Name(),
		ContractType:       int64(o.ContractType()),
		ContractTypeName:   o.ContractType().Name(),
		DefaultCounterpart: o.DefaultCounterpartID(),
		DefaultUserContact: o.DefaultUserContactID(),
		CreatedAt:          o.CreatedAt().Format(time.RFC3339),
	}
}
