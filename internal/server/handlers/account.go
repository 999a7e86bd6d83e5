package handlers

import (
	"net/http"

	"github.com/vyfood/storefront/internal/backend"
	"github.com/vyfood/storefront/internal/server/response"
	"github.com/vyfood/storefront/internal/validation"
)

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	backend.Registration
	ConfirmPassword string `json:"confirm_password"`
}

// HandleLogin handles POST /api/v1/auth/login.
// @Summary Log in
// @Tags account
// @Accept json
// @Produce json
// @Param body body backend.Credentials true "Email and password"
// @Success 200 {object} response.Response{data=backend.Session}
// @Failure 401 {object} response.Response{error=response.Error}
// @Failure 422 {object} response.Response{error=response.Error}
// @Router /api/v1/auth/login [post].
func (h *Handlers) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if !h.requireBackend(w) {
		return
	}
	var creds backend.Credentials
	if !decodeJSON(w, r, &creds) {
		return
	}
	if err := validation.Login(creds); err != nil {
		response.ErrorFromType(w, err)
		return
	}
	session, err := h.backend.Login(r.Context(), creds)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	response.OK(w, session)
}

// HandleRegister handles POST /api/v1/auth/register.
// @Summary Create account
// @Tags account
// @Accept json
// @Produce json
// @Param body body RegisterRequest true "Account details"
// @Success 201 {object} response.Response{data=backend.Session}
// @Failure 409 {object} response.Response{error=response.Error}
// @Failure 422 {object} response.Response{error=response.Error}
// @Router /api/v1/auth/register [post].
func (h *Handlers) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if !h.requireBackend(w) {
		return
	}
	var req RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validation.Registration(req.Registration, req.ConfirmPassword); err != nil {
		response.ErrorFromType(w, err)
		return
	}
	session, err := h.backend.Register(r.Context(), req.Registration)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	response.Created(w, session)
}

// HandleGetProfile handles GET /api/v1/profile.
// @Summary Get profile
// @Tags account
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=backend.User}
// @Failure 401 {object} response.Response{error=response.Error}
// @Router /api/v1/profile [get].
func (h *Handlers) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	if !h.requireBackend(w) {
		return
	}
	user, err := h.backend.Profile(r.Context())
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	response.OK(w, user)
}

// HandleUpdateProfile handles PUT /api/v1/profile.
// @Summary Update profile
// @Tags account
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body backend.ProfileUpdate true "Profile fields"
// @Success 200 {object} response.Response{data=backend.User}
// @Failure 422 {object} response.Response{error=response.Error}
// @Router /api/v1/profile [put].
func (h *Handlers) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	if !h.requireBackend(w) {
		return
	}
	var update backend.ProfileUpdate
	if !decodeJSON(w, r, &update) {
		return
	}
	update.Phone = validation.NormalizePhone(update.Phone)
	if err := validation.Profile(update); err != nil {
		response.ErrorFromType(w, err)
		return
	}
	user, err := h.backend.UpdateProfile(r.Context(), update)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	response.OK(w, user)
}

// HandleListOrders handles GET /api/v1/orders.
// @Summary Order history
// @Tags account
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]orders.Order}
// @Failure 401 {object} response.Response{error=response.Error}
// @Router /api/v1/orders [get].
func (h *Handlers) HandleListOrders(w http.ResponseWriter, r *http.Request) {
	if !h.requireBackend(w) {
		return
	}
	list, err := h.backend.ListOrders(r.Context(), false)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	response.OK(w, list)
}
