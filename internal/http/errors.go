package http

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"ledger/internal/core"
	"ledger/internal/log"
)

const redactedMessage = "An unexpected error occurred"

// appHandler is a handler that reports failures instead of writing them.
type appHandler func(w http.ResponseWriter, r *http.Request) error

// applicationErrorBody is the response of every application error.
type applicationErrorBody struct {
	ErrorMessage string       `json:"errorMessage"`
	Issues       []core.Issue `json:"issues,omitempty"`
}

// unexpectedErrorBody is the response of every other failure.
type unexpectedErrorBody struct {
	StatusCode int    `json:"statusCode"`
	Error      string `json:"error"`
	Message    string `json:"message"`
}

// routeError covers routing failures that never reach a handler.
type routeError struct {
	status  int
	message string
}

func (e *routeError) Error() string { return e.message }

var (
	errRouteNotFound    = &routeError{status: http.StatusNotFound, message: "Not found"}
	errMethodNotAllowed = &routeError{status: http.StatusMethodNotAllowed, message: "Method not allowed"}
)

// ErrorTranslator maps every failure to a response. It is the only place
// that writes error bodies.
type ErrorTranslator struct {
	redact bool
}

func NewErrorTranslator(production bool) *ErrorTranslator {
	return &ErrorTranslator{redact: production}
}

// Handle adapts an appHandler into an http.Handler.
func (t *ErrorTranslator) Handle(h appHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			t.Write(w, r, err)
		}
	})
}

// Write sends the response for err.
func (t *ErrorTranslator) Write(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	logger := log.FromContext(ctx)

	if appErr, ok := core.AsError(err); ok {
		logger.WarnContext(ctx, "Request failed",
			log.FieldErrorKind, appErr.Kind.String(),
			log.FieldError, appErr.Error(),
			log.FieldPath, r.URL.Path)
		t.send(w, r, statusOf(appErr.Kind), applicationErrorBody{
			ErrorMessage: appErr.Message,
			Issues:       appErr.Issues,
		})
		return
	}

	if re, ok := err.(*routeError); ok {
		t.send(w, r, re.status, applicationErrorBody{ErrorMessage: re.message})
		return
	}

	log.NewStructuredLogger(logger).LogError(ctx, "Unexpected error", err, r.Method+" "+r.URL.Path, nil)

	message := err.Error()
	if t.redact {
		message = redactedMessage
	}
	t.send(w, r, http.StatusInternalServerError, unexpectedErrorBody{
		StatusCode: http.StatusInternalServerError,
		Error:      http.StatusText(http.StatusInternalServerError),
		Message:    message,
	})
}

func (t *ErrorTranslator) send(w http.ResponseWriter, r *http.Request, status int, body any) {
	if err := NewJSONResponse().Status(status).JSON(body).Write(w); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to write error response", log.FieldError, err.Error())
	}
}

// NotFound is the router's handler for unknown paths.
func (t *ErrorTranslator) NotFound() http.Handler {
	return t.Handle(func(w http.ResponseWriter, r *http.Request) error {
		return errRouteNotFound
	})
}

// MethodNotAllowed is the router's handler for known paths with a wrong method.
func (t *ErrorTranslator) MethodNotAllowed() http.Handler {
	return t.Handle(func(w http.ResponseWriter, r *http.Request) error {
		return errMethodNotAllowed
	})
}

// Recover turns a panic in next into an unexpected error response.
func (t *ErrorTranslator) Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			log.FromContext(r.Context()).ErrorContext(r.Context(), "Handler panicked",
				"panic", fmt.Sprint(rec),
				"stack", string(debug.Stack()))
			t.Write(w, r, fmt.Errorf("panic: %v", rec))
		}()
		next.ServeHTTP(w, r)
	})
}

func statusOf(kind core.ErrorKind) int {
	switch kind {
	case core.KindUnauthorized:
		return http.StatusUnauthorized
	case core.KindValidation:
		return http.StatusBadRequest
	case core.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
