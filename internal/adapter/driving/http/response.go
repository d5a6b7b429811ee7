package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/photoflow/photoflow-api/internal/core/domain"
	"github.com/photoflow/photoflow-api/pkg/apperror"
)

// StrategyHeader tells the caller which execution path produced the result
const StrategyHeader = "X-Orchestration-Strategy"

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	apperror.WriteJSON(w, status, data)
}

// respondResult writes an orchestrated action result
func respondResult(w http.ResponseWriter, result *domain.ActionResult) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(StrategyHeader, string(result.Strategy))
	w.WriteHeader(result.StatusCode)
	w.Write(result.ResponseBody())
}

// readLimited reads the whole body, rejecting anything over maxBodyBytes
// instead of truncating it.
func readLimited(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperror.New(apperror.CodePayloadTooLarge,
				fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
		}
		return nil, apperror.BadRequest("failed to read request body")
	}
	return raw, nil
}
