package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/transapp/opct/modules/core/presentation/controllers/dtos"
	"github.com/transapp/opct/modules/core/services"
	"github.com/transapp/opct/pkg/application"
	"github.com/transapp/opct/pkg/composables"
	"github.com/transapp/opct/pkg/httpapi"
	"github.com/transapp/opct/pkg/middleware"
)

type LoginController struct {
	app  application.Application
	auth *services.AuthService
}

func NewLoginController(app application.Application) application.Controller {
	return &LoginController{
		app:  app,
		auth: app.Service(services.AuthService{}).(*services.AuthService),
	}
}

func (c *LoginController) Key() string {
	return "/api/auth"
}

func (c *LoginController) Register(r *mux.Router) {
	r.HandleFunc("/api/login", c.Login).Methods(http.MethodPost)
	r.HandleFunc("/api/logout", c.Logout).Methods(http.MethodPost)

	verify := r.PathPrefix("/api/verify").Subrouter()
	verify.Use(middleware.RequireAuthenticated())
	verify.HandleFunc("", c.Verify).Methods(http.MethodGet, http.MethodPost)

	password := r.PathPrefix("/api/change-password").Subrouter()
	password.Use(middleware.RequireAuthenticated())
	password.HandleFunc("", c.ChangePassword).Methods(http.MethodPut)
}

type loginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

func (c *LoginController) Login(w http.ResponseWriter, r *http.Request) {
	dto := &dtos.LoginDTO{}
	if !decodeJSON(w, r, dto) {
		return
	}
	if fields, ok := dto.Ok(); !ok {
		writeValidationError(w, fields)
		return
	}

	u, sess, err := c.auth.Login(r.Context(), dto.Email, dto.Password)
	if err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, &loginResponse{
		Token: sess.Token,
		User:  toUserResponse(u),
	})
}

// Verify confirms the token attached by the auth middleware and echoes
// the authenticated user.
func (c *LoginController) Verify(w http.ResponseWriter, r *http.Request) {
	u, err := composables.UseUser(r.Context())
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "authentication required", nil)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toUserResponse(u))
}

func (c *LoginController) ChangePassword(w http.ResponseWriter, r *http.Request) {
	dto := &dtos.ChangePasswordDTO{}
	if !decodeJSON(w, r, dto) {
		return
	}
	if fields, ok := dto.Ok(); !ok {
		writeValidationError(w, fields)
		return
	}
	if err := c.auth.ChangePassword(r.Context(), dto.OldPassword, dto.NewPassword); err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusNoContent, nil)
}

func (c *LoginController) Logout(w http.ResponseWriter, r *http.Request) {
	sess, err := composables.UseSession(r.Context())
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "authentication required", nil)
		return
	}
	if err := c.auth.Logout(r.Context(), sess.Token); err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusNoContent, nil)
}
