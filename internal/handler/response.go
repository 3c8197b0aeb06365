package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/probuddy/api/internal/journey"
	"github.com/probuddy/api/internal/repository"
	"github.com/probuddy/api/internal/service"
	"github.com/probuddy/api/internal/validation"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// decode reads a JSON body into v. On failure it writes a 400 and returns
// false.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(v)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	return true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, repository.ErrGoalNotFound),
		errors.Is(err, repository.ErrJourneyNotFound),
		errors.Is(err, journey.ErrStepNotFound):
		return http.StatusNotFound
	case errors.Is(err, validation.ErrInvalid),
		errors.Is(err, service.ErrUnsupportedStatus),
		errors.Is(err, journey.ErrInvalidDuration),
		errors.Is(err, journey.ErrInvalidNote),
		errors.Is(err, journey.ErrInvalidTitle),
		errors.Is(err, journey.ErrInvalidOption),
		errors.Is(err, journey.ErrNotDecisionPoint):
		return http.StatusBadRequest
	case errors.Is(err, journey.ErrInvalidTransition),
		errors.Is(err, journey.ErrPrerequisitesPending),
		errors.Is(err, journey.ErrPathLocked),
		errors.Is(err, journey.ErrNoSteps),
		errors.Is(err, journey.ErrNoCurrentStep):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// fail maps err to a status. Server errors are logged and hidden from the
// client; everything else is the client's to see.
func fail(w http.ResponseWriter, r *http.Request, err error, msg string, args ...any) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.Error(msg, append([]any{"error", err, "path", r.URL.Path}, args...)...)
		writeError(w, status, "Something went wrong. Please try again.")
		return
	}
	writeError(w, status, err.Error())
}
