package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"

	"greeter"
)

// RequestIDHeader carries the request ID on requests & responses.
const RequestIDHeader = "X-Request-ID"

// ErrorResponse represents a JSON structure for error output.
type ErrorResponse struct {
	Error       string               `json:"error"`
	ErrorKey    string               `json:"errorKey,omitempty"`
	EntityName  string               `json:"entityName,omitempty"`
	FieldErrors []greeter.FieldError `json:"fieldErrors,omitempty"`
}

// encodeError prints & optionally logs an error message. It satisfies the
// go-kit ErrorEncoder signature.
func (s *Server) encodeError(ctx context.Context, err error, w http.ResponseWriter) {
	// Extract error code & message.
	code, message, key := greeter.ErrorCode(err), greeter.ErrorMessage(err), greeter.ErrorKey(err)

	// Log internal errors. Their details never reach the client.
	if code == greeter.EINTERNAL {
		LogError(ctx, s.Logger, err)
	}

	resp := &ErrorResponse{Error: message, FieldErrors: greeter.ErrorFields(err)}
	if key != "" {
		resp.ErrorKey = key
		resp.EntityName = greeter.EntityName
		if key != greeter.KeyValidation {
			s.setFailureAlert(w, key)
		}
	}

	// Print user message to response.
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(ErrorStatusCode(code))
	_ = json.NewEncoder(w).Encode(resp)
}

// LogError logs an error with the request ID carried by ctx.
func LogError(ctx context.Context, logger log.Logger, err error) {
	if logger == nil {
		return
	}
	_ = level.Error(logger).Log("request_id", greeter.RequestIDFromContext(ctx), "err", err)
}

// encodeResponse is the common method to encode all response types to the
// client. I chose to do it this way because, since we're using JSON, there's no
// reason to provide anything more specific. It's certainly possible to
// specialize on a per-response (per-method) basis.
func encodeResponse(_ context.Context, w http.ResponseWriter, response interface{}) error {
	return encodeJSON(w, http.StatusOK, response)
}

func encodeJSON(w http.ResponseWriter, status int, v interface{}) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// setAlert sets the entity alert headers on a successful mutation.
func (s *Server) setAlert(w http.ResponseWriter, message string, id int64) {
	w.Header().Set("X-"+s.AppName+"-alert", message)
	w.Header().Set("X-"+s.AppName+"-params", fmt.Sprint(id))
}

// setFailureAlert sets the error alert headers for a business-rule failure.
func (s *Server) setFailureAlert(w http.ResponseWriter, key string) {
	w.Header().Set("X-"+s.AppName+"-error", "error."+key)
	w.Header().Set("X-"+s.AppName+"-params", greeter.EntityName)
}

// lookup of application error codes to HTTP status codes.
var codes = map[string]int{
	greeter.ECONFLICT:       http.StatusConflict,
	greeter.EINVALID:        http.StatusBadRequest,
	greeter.ENOTFOUND:       http.StatusNotFound,
	greeter.ENOTIMPLEMENTED: http.StatusNotImplemented,
	greeter.EUNAUTHORIZED:   http.StatusUnauthorized,
	greeter.EINTERNAL:       http.StatusInternalServerError,
}

// ErrorStatusCode returns the associated HTTP status code for an error code.
func ErrorStatusCode(code string) int {
	if v, ok := codes[code]; ok {
		return v
	}
	return http.StatusInternalServerError
}
