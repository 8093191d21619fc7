package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/supersonicwisd1/result-processing-system/internal/auth"
	apierrors "github.com/supersonicwisd1/result-processing-system/internal/errors"
	"github.com/supersonicwisd1/result-processing-system/internal/store"
	"github.com/supersonicwisd1/result-processing-system/pkg/contracts/domain"
)

// AuthHandler handles registration, login and session introspection.
type AuthHandler struct {
	service  *auth.Service
	logger   *slog.Logger
	validate *validator.Validate
}

// NewAuthHandler creates an auth handler.
func NewAuthHandler(service *auth.Service, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		service:  service,
		logger:   logger.With(slog.String("component", "auth_handler")),
		validate: validator.New(),
	}
}

// Routes returns the auth routes.
func (h *AuthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/register", h.Register)
	r.Post("/login", h.Login)

	r.Group(func(r chi.Router) {
		r.Use(h.service.Middleware)
		r.Get("/me", h.Me)
		r.Post("/logout", h.Logout)
	})
	return r
}

type registerRequest struct {
	Username   string `json:"username" validate:"required,min=3"`
	Email      string `json:"email" validate:"omitempty,email"`
	Password   string `json:"password" validate:"required,min=6"`
	Role       string `json:"role" validate:"required"`
	Department string `json:"department"`
}

// Register handles POST /api/v1/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.InvalidRequestWithError(err)))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.InvalidRequestWithError(err)))
		return
	}

	user, err := h.service.Register(r.Context(), req.Username, req.Email, req.Password, domain.Role(req.Role), req.Department)
	switch {
	case errors.Is(err, auth.ErrUnknownRole):
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrValidation("role", "unknown role")))
		return
	case errors.Is(err, store.ErrDuplicateUser):
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrConflict))
		return
	case err != nil:
		h.logger.ErrorContext(r.Context(), "register failed", slog.String("error", err.Error()))
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrInternalServer))
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, user)
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.InvalidRequestWithError(err)))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.InvalidRequestWithError(err)))
		return
	}

	session, err := h.service.Login(r.Context(), req.Username, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrUnauthorized))
		return
	}
	if err != nil {
		h.logger.ErrorContext(r.Context(), "login failed", slog.String("error", err.Error()))
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrInternalServer))
		return
	}

	render.JSON(w, r, session)
}

// Me handles GET /api/v1/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrUnauthorized))
		return
	}
	render.JSON(w, r, user)
}

// Logout handles POST /api/v1/auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get("Authorization")
	if len(token) > 7 {
		token = token[7:]
	}
	if err := h.service.Logout(r.Context(), token); err != nil {
		h.logger.ErrorContext(r.Context(), "logout failed", slog.String("error", err.Error()))
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrInternalServer))
		return
	}
	render.JSON(w, r, map[string]bool{"success": true})
}
