package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/transapp/opct/modules/core/domain/entities/contracttype"
	"github.com/transapp/opct/pkg/application"
	"github.com/transapp/opct/pkg/httpapi"
	"github.com/transapp/opct/pkg/middleware"
)

type ContractTypeController struct {
	app application.Application
}

func NewContractTypeController(app application.Application) application.Controller {
	return &ContractTypeController{app: app}
}

func (c *ContractTypeController) Key() string {
	return "/api/contract-types"
}

func (c *ContractTypeController) Register(r *mux.Router) {
	api := r.PathPrefix("/api/contract-types").Subrouter()
	api.Use(middleware.RequireAuthenticated())
	api.HandleFunc("", c.List).Methods(http.MethodGet)
}

type contractTypeResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (c *ContractTypeController) List(w http.ResponseWriter, r *http.Request) {
	results := make([]contractTypeResponse, 0, len(contracttype.All()))
	for _, ct := range contracttype.All() {
		results = append(results, contractTypeResponse{ID: int64(ct), Name: ct.Name()})
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, results)
}
