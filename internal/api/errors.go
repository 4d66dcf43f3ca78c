package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	domainerrors "github.com/modelshare/modelshare-server/internal/errors"
)

// StatusNOK is the status of every error envelope.
const StatusNOK = "nok"

// ErrorBody is the "error" member of an error envelope.
type ErrorBody struct {
	Code    int    `json:"code" doc:"0 malformed input, 1 unsupported method, 2 DB error, 3 authentication failed, 4 too many requests"`
	Msg     string `json:"msg" doc:"Fixed message for the code"`
	Details any    `json:"details,omitempty" doc:"What exactly went wrong, when known"`
}

// APIError is the {status:"nok", error:{code, msg}} envelope. It implements
// huma.StatusError so handlers can return it directly.
type APIError struct { //nolint:revive // API prefix is intentional for clarity
	status int
	Status string    `json:"status"`
	Err    ErrorBody `json:"error"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Err.Msg
}

// GetStatus implements huma.StatusError.
func (e *APIError) GetStatus() int {
	return e.status
}

// ContentType returns the content type for the error response.
func (e *APIError) ContentType(_ string) string {
	return "application/json"
}

func newAPIError(code domainerrors.Code, details any) *APIError {
	envCode, msg := code.Envelope()
	return &APIError{
		status: code.HTTPStatus(),
		Status: StatusNOK,
		Err:    ErrorBody{Code: envCode, Msg: msg, Details: details},
	}
}

// fromDomain converts a domain error. Storage and internal errors never
// leak their message.
func fromDomain(de *domainerrors.Error) *APIError {
	var details any
	switch de.Code {
	case domainerrors.CodeStorage, domainerrors.CodeInternal:
	default:
		details = de.Details
		if details == nil && de.Message != "" {
			details = de.Message
		}
	}
	return newAPIError(de.Code, details)
}

// RegisterErrorHandler makes huma report its own failures (bad JSON,
// schema validation) through the envelope.
// Call this after creating the huma.API but before registering routes.
func RegisterErrorHandler() {
	huma.NewError = func(status int, message string, errs ...error) huma.StatusError {
		var details []string
		for _, err := range errs {
			var domainErr *domainerrors.Error
			if errors.As(err, &domainErr) {
				return fromDomain(domainErr)
			}
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return apiErr
			}
			if err != nil {
				details = append(details, err.Error())
			}
		}

		e := newAPIError(domainerrors.CodeForStatus(status), nil)
		e.status = status
		if e.Err.Code != domainerrors.EnvelopeStorage {
			switch {
			case len(details) > 0:
				e.Err.Details = details
			case message != "":
				e.Err.Details = message
			}
		}
		return e
	}
}

// writeError writes an envelope outside of huma, for router level failures.
func writeError(w http.ResponseWriter, e *APIError) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(e.status)
	_ = json.NewEncoder(w).Encode(e)
}

// fail turns a service error into an envelope. Anything that is not a
// domain error is reported as a storage failure and logged.
func (s *Server) fail(op string, err error) error {
	var de *domainerrors.Error
	if errors.As(err, &de) {
		return fromDomain(de)
	}

	s.logger.Error("request failed", "op", op, "error", err)
	return newAPIError(domainerrors.CodeStorage, nil)
}
