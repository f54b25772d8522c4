package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carhire/apiserver/internal/services"
	"github.com/carhire/apiserver/types"
)

// AuthHandler serves registration, login, verification and the current account.
type AuthHandler struct {
	accounts *services.AccountService
}

func NewAuthHandler(accounts *services.AccountService) *AuthHandler {
	return &AuthHandler{accounts: accounts}
}

// AuthRouter registers auth routes on the given router. When adminGate is
// non-nil it guards admin creation.
func AuthRouter(r chi.Router, accounts *services.AccountService, gate *Gate, adminGate func(http.Handler) http.Handler) {
	handler := NewAuthHandler(accounts)

	r.Post("/register", handler.Register)
	r.Post("/login", handler.Login)
	r.Post("/verify", handler.Verify)
	r.Post("/verify/resend", handler.ResendCode)
	if adminGate != nil {
		r.With(adminGate).Post("/admin/create", handler.CreateAdmin)
	} else {
		r.Post("/admin/create", handler.CreateAdmin)
	}
	r.Group(func(r chi.Router) {
		r.Use(gate.RequireAuth)
		r.Get("/me", handler.Me)
		r.Put("/me", handler.UpdateMe)
	})
}

type AuthResponse struct {
	Message string         `json:"message"`
	User    types.Customer `json:"user"`
	Token   string         `json:"token"`
}

type AdminResponse struct {
	Message string          `json:"message"`
	Admin   types.AdminView `json:"admin"`
	Token   string          `json:"token"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type VerifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type ResendRequest struct {
	Email string `json:"email"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.accounts.Register(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err, "account", "create user")
		return
	}
	writeJSON(w, http.StatusCreated, AuthResponse{Message: "User created successfully", User: res.Account, Token: res.Token})
}

func (h *AuthHandler) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	var req services.CreateAdminInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.accounts.CreateAdmin(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err, "account", "create admin")
		return
	}
	writeJSON(w, http.StatusCreated, AdminResponse{Message: "Admin created successfully", Admin: res.Account.AdminView(), Token: res.Token})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err, "account", "authenticate")
		return
	}
	writeJSON(w, http.StatusOK, AuthResponse{Message: "Login successful", User: res.Account, Token: res.Token})
}

func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.accounts.VerifyCode(r.Context(), req.Email, req.Code); err != nil {
		writeServiceError(w, r, err, "account", "verify account")
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Account verified successfully"})
}

// ResendCode answers the same way whether or not the email belongs to an
// unverified account.
func (h *AuthHandler) ResendCode(w http.ResponseWriter, r *http.Request) {
	var req ResendRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.accounts.ResendCode(r.Context(), req.Email); err != nil {
		writeServiceError(w, r, err, "account", "resend verification code")
		return
	}
	writeJSON(w, http.StatusAccepted, MessageResponse{Message: "If the account is awaiting verification, a new code has been sent"})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	customer, ok := customerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	customer, ok := customerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req services.ProfileInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.accounts.UpdateProfile(r.Context(), customer.ID, req)
	if err != nil {
		writeServiceError(w, r, err, "account", "update profile")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
