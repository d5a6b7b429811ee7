package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/photoflow/photoflow-api/internal/core/domain"
	"github.com/photoflow/photoflow-api/internal/core/port"
	"github.com/photoflow/photoflow-api/pkg/apperror"
	"github.com/photoflow/photoflow-api/pkg/observability"
)

// maxBodyBytes bounds request bodies; uploads carry base64 image content
const maxBodyBytes = 10 << 20

// PhotoHandler handles photo upload and delete requests
type PhotoHandler struct {
	service port.ActionService
	errors  *apperror.Handler
}

// NewPhotoHandler creates a new photo handler
func NewPhotoHandler(service port.ActionService, errors *apperror.Handler) *PhotoHandler {
	return &PhotoHandler{
		service: service,
		errors:  errors,
	}
}

// Routes registers photo routes
func (h *PhotoHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Upload)
	r.Delete("/", h.Delete)
	r.Post("/delete", h.Delete)

	return r
}

// Upload orchestrates insert-record -> upload-original -> create-thumbnail.
// Field checks happen in the orchestrator once the caller is authenticated.
func (h *PhotoHandler) Upload(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}

	req := domain.NewUploadRequest(body.Key, body.Email, body.Token, body.Content, body.Description)
	h.execute(w, r, req)
}

// Delete orchestrates the independent delete steps after an ownership check
func (h *PhotoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}

	req := domain.NewDeleteRequest(body.Key, body.Email, body.Token)
	h.execute(w, r, req)
}

func (h *PhotoHandler) execute(w http.ResponseWriter, r *http.Request, req domain.ActionRequest) {
	ctx := r.Context()
	if req.Claim.Email != "" {
		ctx = observability.WithEmail(ctx, req.Claim.Email)
	}

	result, err := h.service.Execute(ctx, req)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondResult(w, result)
}

func (h *PhotoHandler) readBody(w http.ResponseWriter, r *http.Request) (actionBody, bool) {
	raw, err := readLimited(w, r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return actionBody{}, false
	}

	body, err := parseActionBody(raw)
	if err != nil {
		h.errors.Handle(w, r, err)
		return actionBody{}, false
	}
	return body, true
}
