package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/nvoss/agent-chat/internal/api/middleware"
	"github.com/nvoss/agent-chat/internal/api/response"
	"github.com/nvoss/agent-chat/internal/domain"
	"github.com/nvoss/agent-chat/internal/security"
	"github.com/nvoss/agent-chat/internal/service"
)

var validate = validator.New()

// validationErrors flattens validator output into a field -> message map
func validationErrors(err error) any {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	fields := make(map[string]string)
	for _, e := range verrs {
		switch e.Tag() {
		case "required":
			fields[e.Field()] = "field is required"
		case "email":
			fields[e.Field()] = "invalid email format"
		case "min":
			fields[e.Field()] = "must be at least " + e.Param() + " characters"
		case "max":
			fields[e.Field()] = "must be at most " + e.Param() + " characters"
		case "oneof":
			fields[e.Field()] = "must be one of: " + e.Param()
		default:
			fields[e.Field()] = "validation failed on " + e.Tag()
		}
	}
	return fields
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService  *service.AuthService
	tokenTTL     time.Duration
	secureCookie bool
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, tokenTTL time.Duration, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		tokenTTL:     tokenTTL,
		secureCookie: secureCookie,
	}
}

// Signup handles user registration
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var input domain.UserCreate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationErrors(err))
		return
	}

	user, token, err := h.authService.Register(r.Context(), input)
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			response.Conflict(w, "email already registered")
			return
		}
		response.InternalError(w, "failed to create account")
		return
	}

	http.SetCookie(w, security.SessionCookie(token, h.tokenTTL, h.secureCookie))
	response.Created(w, user.Summary())
}

// Signin handles user login
func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var input domain.UserLogin
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationErrors(err))
		return
	}

	user, token, err := h.authService.Login(r.Context(), input)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			response.Unauthorized(w, "invalid email or password")
			return
		}
		response.InternalError(w, "failed to sign in")
		return
	}

	http.SetCookie(w, security.SessionCookie(token, h.tokenTTL, h.secureCookie))
	response.OK(w, user.Summary())
}

// Signout clears the session cookie
func (h *AuthHandler) Signout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, security.ClearSessionCookie(h.secureCookie))
	response.OK(w, map[string]string{"message": "signed out"})
}

// Me returns the identity decoded from the session token. No store read
// happens here; the token is the source of truth.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required")
		return
	}

	response.OK(w, domain.UserSummary{
		ID:       identity.UserID.Hex(),
		Username: identity.Username,
		Email:    identity.Email,
	})
}
