package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// ErrorResponse is the body of every v2 error response
type ErrorResponse struct {
	Error     bool                   `json:"error"`
	Type      string                 `json:"type"`
	Message   string                 `json:"message"`
	Code      string                 `json:"code,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Retryable bool                   `json:"retryable,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// ErrorHandler writes errors as JSON responses and logs them at a level
// matching their status
type ErrorHandler struct {
	logger *zap.Logger
	debug  bool
}

// NewErrorHandler creates a new error handler. In debug mode unexpected
// errors expose their message and stack.
func NewErrorHandler(logger *zap.Logger, debug bool) *ErrorHandler {
	return &ErrorHandler{logger: logger, debug: debug}
}

// classify maps err onto its status and response body
func classify(err error) (int, ErrorResponse) {
	var validationErrs *ValidationErrors
	var domainErr *DomainError

	switch {
	case stderrors.As(err, &validationErrs):
		return http.StatusBadRequest, ErrorResponse{
			Type:    string(ErrorTypeValidation),
			Message: validationErrs.Error(),
			Code:    "VALIDATION_FAILED",
			Details: map[string]interface{}{
				"errors": validationErrs.Messages(),
				"fields": validationErrs.ToMap(),
			},
		}
	case stderrors.As(err, &domainErr):
		status := domainErr.StatusCode
		if status == 0 {
			status = http.StatusInternalServerError
		}
		return status, ErrorResponse{
			Type:      string(domainErr.Type),
			Message:   domainErr.Message,
			Code:      domainErr.Code,
			Details:   domainErr.Details,
			Retryable: domainErr.Retryable,
		}
	}

	if appErr := GetAppError(err); appErr != nil {
		status := appErr.HTTPStatus
		if status == 0 {
			status = http.StatusInternalServerError
		}
		return status, ErrorResponse{
			Type:    string(appErr.Type),
			Message: appErr.Message,
			Code:    appErr.Code,
			Details: appErr.Details,
		}
	}

	return http.StatusInternalServerError, ErrorResponse{
		Type:    string(ErrorTypeInternal),
		Message: "An internal error occurred",
	}
}

// StatusCode returns the HTTP status err maps to
func StatusCode(err error) int {
	status, _ := classify(err)
	return status
}

// Message returns the client-facing message of err. Errors outside the
// taxonomy yield fallback.
func Message(err error, fallback string) string {
	var validationErrs *ValidationErrors
	var domainErr *DomainError
	if !stderrors.As(err, &validationErrs) && !stderrors.As(err, &domainErr) && GetAppError(err) == nil {
		return fallback
	}
	_, resp := classify(err)
	return resp.Message
}

// Handle writes err as a JSON error response
func (h *ErrorHandler) Handle(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	status, resp := classify(err)
	resp.Error = true
	resp.RequestID = r.Header.Get("X-Request-ID")

	if h.debug && status >= http.StatusInternalServerError {
		if appErr := GetAppError(err); appErr != nil && appErr.StackTrace != "" {
			if resp.Details == nil {
				resp.Details = make(map[string]interface{})
			}
			resp.Details["stack_trace"] = appErr.StackTrace
		} else if resp.Code == "" {
			resp.Message = err.Error()
		}
	}

	fields := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.String("type", resp.Type),
		zap.String("request_id", resp.RequestID),
	}
	if resp.Code != "" {
		fields = append(fields, zap.String("error_code", resp.Code))
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error(resp.Message, append(fields, zap.Error(err))...)
	} else {
		h.logger.Warn(resp.Message, fields...)
	}

	h.write(w, status, resp)
}

// HandleStatus writes a bare status with a message, for routing failures
// that have no error value
func (h *ErrorHandler) HandleStatus(w http.ResponseWriter, r *http.Request, status int, message string) {
	errType := ErrorTypeInternal
	switch status {
	case http.StatusBadRequest:
		errType = ErrorTypeValidation
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		errType = ErrorTypeNotFound
	case http.StatusTooManyRequests:
		errType = ErrorTypeRateLimit
	case http.StatusServiceUnavailable:
		errType = ErrorTypeUnavailable
	}

	h.logger.Warn("HTTP error",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
	)
	h.write(w, status, ErrorResponse{
		Error:     true,
		Type:      string(errType),
		Message:   message,
		RequestID: r.Header.Get("X-Request-ID"),
	})
}

func (h *ErrorHandler) write(w http.ResponseWriter, status int, resp ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("Failed to encode error response", zap.Error(err))
	}
}

// Middleware recovers panics in later handlers and answers them with a 500
func (h *ErrorHandler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				h.Handle(w, r, NewInternalError(fmt.Sprintf("panic: %v", rec)))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
