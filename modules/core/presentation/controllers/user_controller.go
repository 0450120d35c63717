package controllers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/transapp/opct/modules/core/domain/aggregates/user"
	"github.com/transapp/opct/modules/core/presentation/controllers/dtos"
	"github.com/transapp/opct/modules/core/services"
	"github.com/transapp/opct/pkg/application"
	"github.com/transapp/opct/pkg/httpapi"
	"github.com/transapp/opct/pkg/middleware"
)

type UserController struct {
	app   application.Application
	users *services.UserService
}

func NewUserController(app application.Application) application.Controller {
	return &UserController{
		app:   app,
		users: app.Service(services.UserService{}).(*services.UserService),
	}
}

func (c *UserController) Key() string {
	return "/api/users"
}

func (c *UserController) Register(r *mux.Router) {
	api := r.PathPrefix("/api/users").Subrouter()
	api.Use(middleware.RequireAuthenticated())

	api.HandleFunc("", c.List).Methods(http.MethodGet)
	api.HandleFunc("/{id:[0-9]+}", c.Get).Methods(http.MethodGet)

	admin := api.NewRoute().Subrouter()
	admin.Use(middleware.RequireGroup(user.GroupUser))
	admin.HandleFunc("", c.Create).Methods(http.MethodPost)
	admin.HandleFunc("/{id:[0-9]+}", c.Update).Methods(http.MethodPut)
	admin.HandleFunc("/{id:[0-9]+}", c.Delete).Methods(http.MethodDelete)
}

type userListResponse struct {
	Total   int64          `json:"total"`
	Results []UserResponse `json:"results"`
}

func (c *UserController) List(w http.ResponseWriter, r *http.Request) {
	params := &user.FindParams{
		Search: r.URL.Query().Get("search"),
		Limit:  100,
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 && limit <= 1000 {
			params.Limit = limit
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if offset, err := strconv.Atoi(raw); err == nil && offset >= 0 {
			params.Offset = offset
		}
	}

	users, total, err := c.users.GetPaginated(r.Context(), params)
	if err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	results := make([]UserResponse, 0, len(users))
	for _, u := range users {
		results = append(results, toUserResponse(u))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, &userListResponse{Total: total, Results: results})
}

func (c *UserController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "invalid user id", nil)
		return
	}
	u, err := c.users.GetByID(r.Context(), id)
	if err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toUserResponse(u))
}

func (c *UserController) Create(w http.ResponseWriter, r *http.Request) {
	dto := &dtos.CreateUserDTO{}
	if !decodeJSON(w, r, dto) {
		return
	}
	if fields, ok := dto.Ok(); !ok {
		writeValidationError(w, fields)
		return
	}
	entity, err := dto.ToEntity()
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}
	created, err := c.users.Create(r.Context(), entity)
	if err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, toUserResponse(created))
}

func (c *UserController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "invalid user id", nil)
		return
	}
	dto := &dtos.UpdateUserDTO{}
	if !decodeJSON(w, r, dto) {
		return
	}
	if fields, ok := dto.Ok(); !ok {
		writeValidationError(w, fields)
		return
	}

	existing, err := c.users.GetByID(r.Context(), id)
	if err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	entity, err := dto.Apply(existing)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}
	updated, err := c.users.Update(r.Context(), entity)
	if err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toUserResponse(updated))
}

func (c *UserController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "invalid user id", nil)
		return
	}
	if err := c.users.Delete(r.Context(), id); err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusNoContent, nil)
}
