package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/photoflow/photoflow-api/internal/core/domain"
	"github.com/photoflow/photoflow-api/internal/core/port"
	"github.com/photoflow/photoflow-api/pkg/apperror"
	"github.com/photoflow/photoflow-api/pkg/validation"
)

// Token actions
const (
	ActionRequestToken = "request_token"
	ActionVerifyToken  = "verify_token"
)

// TokenHandler issues and verifies caller tokens
type TokenHandler struct {
	tokens port.TokenService
	errors *apperror.Handler
}

// NewTokenHandler creates a new token handler
func NewTokenHandler(tokens port.TokenService, errors *apperror.Handler) *TokenHandler {
	return &TokenHandler{
		tokens: tokens,
		errors: errors,
	}
}

// Routes registers token routes
func (h *TokenHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Handle)

	return r
}

// Handle dispatches on the "action" field
func (h *TokenHandler) Handle(w http.ResponseWriter, r *http.Request) {
	raw, err := readLimited(w, r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	if len(raw) == 0 {
		h.errors.Handle(w, r, apperror.BadRequest("missing request body"))
		return
	}

	body, err := parseActionBody(raw)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	switch body.Action {
	case ActionRequestToken:
		h.issue(w, r, body)
	case ActionVerifyToken:
		h.verify(w, r, body)
	default:
		h.errors.Handle(w, r, apperror.Validation("invalid action, use 'request_token' or 'verify_token'"))
	}
}

func (h *TokenHandler) issue(w http.ResponseWriter, r *http.Request, body actionBody) {
	if err := validation.Validate(func(v *validation.Validator) {
		v.Required("email", body.Email).Email("email", body.Email)
	}); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	token, err := h.tokens.Issue(r.Context(), body.Email)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, domain.IssuedToken{
		Message: "Token generated successfully",
		Email:   body.Email,
		Token:   token,
	})
}

func (h *TokenHandler) verify(w http.ResponseWriter, r *http.Request, body actionBody) {
	if err := validation.Validate(func(v *validation.Validator) {
		v.Required("email", body.Email).Required("token", body.Token)
	}); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	valid := h.tokens.Verify(r.Context(), domain.Identity{Email: body.Email}, domain.Credential{Token: body.Token})

	message := "Token is invalid"
	if valid {
		message = "Token is valid"
	}
	respondJSON(w, http.StatusOK, domain.TokenVerification{
		Valid:   valid,
		Email:   body.Email,
		Message: message,
	})
}
