package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	pkgerrors "github.com/angelmondragon/vendorverse-backend/pkg/errors"
	"github.com/angelmondragon/vendorverse-backend/pkg/logger"
)

// RequestIDHeader is set on every response by the request id middleware and
// echoed inside error bodies.
const RequestIDHeader = "X-Request-Id"

// Success is the body of every 2xx JSON response.
type Success struct {
	Data any `json:"data"`
}

// Failure is the body of every error response.
type Failure struct {
	Error ErrorPayload `json:"error"`
}

type ErrorPayload struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func WriteSuccess(w http.ResponseWriter, data any) {
	WriteSuccessStatus(w, http.StatusOK, data)
}

func WriteSuccessStatus(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, Success{Data: data})
}

// WriteError maps err to its status and public message. Untyped errors are
// reported as internal; 5xx responses never expose the underlying message.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}
	status := pkgerrors.MetadataFor(typed.Code()).HTTPStatus

	if logg != nil {
		ctx = logg.WithFields(ctx, pkgerrors.Dump(err).Fields())
		if status >= http.StatusInternalServerError {
			logg.Error(ctx, "request.error", err)
		} else {
			logg.Warn(ctx, "request.rejected")
		}
	}

	msg, details := typed.Public()
	writeJSON(w, status, Failure{Error: ErrorPayload{
		Code:      string(typed.Code()),
		Message:   msg,
		Details:   details,
		RequestID: w.Header().Get(RequestIDHeader),
	}})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// status is already written; an encode failure means the client went away
	_ = json.NewEncoder(w).Encode(payload)
}
