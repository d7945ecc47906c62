package identity

import (
	"encoding/json"
	"net/http"
	"reflect"
	"strings"

	"github.com/bissquit/storefront-auth/internal/domain"
	"github.com/bissquit/storefront-auth/internal/pkg/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// Handler handles HTTP requests for the identity module.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new identity handler.
func NewHandler(service *Service) *Handler {
	v := validator.New()
	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return &Handler{
		service:   service,
		validator: v,
	}
}

// RegisterRoutes registers public identity routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/forgot-password", h.ForgotPassword)
	})
}

// RegisterProtectedRoutes registers routes that require authentication.
func (h *Handler) RegisterProtectedRoutes(r chi.Router) {
	r.Get("/me", h.Me)
	r.Get("/auth/test", h.Test)
	r.Get("/auth/user-auth", h.AuthCheck)
}

// RegisterAdminRoutes registers routes that require the admin role.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/auth/admin-auth", h.AuthCheck)
}

// RegisterRequest represents registration request body.
// Role is caller-supplied, so the public route can create admins. Existing
// clients depend on this; lock it down before exposing the service publicly.
type RegisterRequest struct {
	Name     string       `json:"name" validate:"required"`
	Email    string       `json:"email" validate:"required,email"`
	Password string       `json:"password" validate:"required"`
	Phone    string       `json:"phone" validate:"required"`
	Address  string       `json:"address" validate:"required"`
	Answer   string       `json:"answer" validate:"required"`
	Role     *domain.Role `json:"role,omitempty"`
}

// Register handles POST /auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	user, err := h.service.Register(r.Context(), RegisterInput(req))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusCreated, user)
}

// LoginRequest represents login request body.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Login handles POST /auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	result, err := h.service.Authenticate(r.Context(), LoginInput(req))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusOK, result)
}

// ForgotPasswordRequest represents password reset request body.
type ForgotPasswordRequest struct {
	Email       string `json:"email" validate:"required"`
	Answer      string `json:"answer" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

// ForgotPassword handles POST /auth/forgot-password.
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	if err := h.service.ResetPassword(r.Context(), ResetPasswordInput(req)); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r.Context())
	if userID == "" {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.service.GetUserByID(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusOK, user)
}

// Test handles GET /auth/test.
func (h *Handler) Test(w http.ResponseWriter, _ *http.Request) {
	httputil.Text(w, http.StatusOK, "Protected Routes")
}

// AuthCheck reports that the caller passed the route's auth middleware.
func (h *Handler) AuthCheck(w http.ResponseWriter, _ *http.Request) {
	httputil.Success(w, http.StatusOK, map[string]bool{"ok": true})
}

var errorMappings = []httputil.ErrorMapping{
	{Error: ErrMissingFields, Status: http.StatusBadRequest},
	{Error: ErrInvalidRole, Status: http.StatusBadRequest},
	{Error: ErrEmailExists, Status: http.StatusConflict, Message: "user already registered, please login"},
	{Error: ErrUserNotFound, Status: http.StatusNotFound},
	{Error: ErrInvalidCredentials, Status: http.StatusUnauthorized},
	{Error: ErrChallengeFailed, Status: http.StatusNotFound},
	{Error: ErrTokenExpired, Status: http.StatusUnauthorized},
	{Error: ErrTokenInvalid, Status: http.StatusUnauthorized, Message: "invalid token"},
}

// handleServiceError maps expected outcomes to 4xx responses.
// Hashing and store faults fall through to a logged 500.
func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	httputil.HandleError(r.Context(), w, err, errorMappings)
}
