package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-manager-api/internal/repo"
	"github.com/BuzzLyutic/task-manager-api/internal/service"
	"github.com/BuzzLyutic/task-manager-api/pkg/respond"
)

const maxBodyBytes = 1 << 20

// handleErrors maps the error taxonomy onto status codes. Store failures are
// logged and reported without detail.
func handleErrors(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		respond.Error(w, r, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrUnauthorized):
		respond.Unauthorized(w, r, service.ErrUnauthorized.Error())
	case errors.Is(err, repo.ErrorNotFound):
		respond.Error(w, r, http.StatusNotFound, "not found")
	case errors.Is(err, repo.ErrorConflict):
		respond.Error(w, r, http.StatusConflict, "conflict")
	default:
		logger.Error("internal error",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		respond.Error(w, r, http.StatusInternalServerError, "internal error")
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", service.ErrValidation, fmt.Sprintf(format, args...))
}

// decodeJSON reads a JSON body into dst; an empty or malformed body is a validation error.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return invalid("empty request body")
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		return invalid("invalid json: %v", err)
	}
	return nil
}

func taskID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		return 0, invalid("task id must be a positive integer")
	}
	return id, nil
}
