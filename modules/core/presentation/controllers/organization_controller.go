package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/transapp/opct/modules/core/domain/aggregates/user"
	"github.com/transapp/opct/modules/core/presentation/controllers/dtos"
	"github.com/transapp/opct/modules/core/services"
	"github.com/transapp/opct/pkg/application"
	"github.com/transapp/opct/pkg/httpapi"
	"github.com/transapp/opct/pkg/middleware"
)

type OrganizationController struct {
	app  application.Application
	orgs *services.OrganizationService
}

func NewOrganizationController(app application.Application) application.Controller {
	return &OrganizationController{
		app:  app,
		orgs: app.Service(services.OrganizationService{}).(*services.OrganizationService),
	}
}

func (c *OrganizationController) Key() string {
	return "/api/organizations"
}

func (c *OrganizationController) Register(r *mux.Router) {
	api := r.PathPrefix("/api/organizations").Subrouter()
	api.Use(middleware.RequireAuthenticated())

	api.HandleFunc("", c.List).Methods(http.MethodGet)
	api.HandleFunc("/{id:[0-9]+}", c.Get).Methods(http.MethodGet)

	admin := api.NewRoute().Subrouter()
	admin.Use(middleware.RequireGroup(user.GroupOrganization))
	admin.HandleFunc("", c.Create).Methods(http.MethodPost)
	admin.HandleFunc("/{id:[0-9]+}", c.Update).Methods(http.MethodPut)
	admin.HandleFunc("/{id:[0-9]+}", c.Delete).Methods(http.MethodDelete)
}

func (c *OrganizationController) List(w http.ResponseWriter, r *http.Request) {
	orgs, err := c.orgs.GetAll(r.Context())
	if err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	results := make([]OrganizationResponse, 0, len(orgs))
	for _, o := range orgs {
		results = append(results, toOrganizationResponse(o))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, results)
}

func (c *OrganizationController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "invalid organization id", nil)
		return
	}
	org, err := c.orgs.GetByID(r.Context(), id)
	if err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toOrganizationResponse(org))
}

func (c *OrganizationController) Create(w http.ResponseWriter, r *http.Request) {
	dto := &dtos.CreateOrganizationDTO{}
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
	created, err := c.orgs.Create(r.Context(), entity)
	if err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, toOrganizationResponse(created))
}

func (c *OrganizationController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "invalid organization id", nil)
		return
	}
	dto := &dtos.UpdateOrganizationDTO{}
	if !decodeJSON(w, r, dto) {
		return
	}
	if fields, ok := dto.Ok(); !ok {
		writeValidationError(w, fields)
		return
	}

	existing, err := c.orgs.GetByID(r.Context(), id)
	if err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	entity, err := dto.Apply(existing)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}
	updated, err := c.orgs.Update(r.Context(), entity)
	if err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toOrganizationResponse(updated))
}

func (c *OrganizationController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "invalid organization id", nil)
		return
	}
	if err := c.orgs.Delete(r.Context(), id); err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusNoContent, nil)
}
