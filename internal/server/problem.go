package server

import (
	"encoding/json"
	"net/http"
)

// Problem types served by this API.
const (
	ProblemTypeValidation      = "https://prayer-times.dev/problems/validation-error"
	ProblemTypeUnsolvable      = "https://prayer-times.dev/problems/unsolvable"
	ProblemTypeNotFound        = "https://prayer-times.dev/problems/not-found"
	ProblemTypeTooManyRequests = "https://prayer-times.dev/problems/too-many-requests"
	ProblemTypeInternal        = "https://prayer-times.dev/problems/internal-error"
)

// Problem is an RFC 7807 error body, served as application/problem+json.
type Problem struct {
	Type     string       `json:"type"`
	Title    string       `json:"title"`
	Status   int          `json:"status"`
	Detail   string       `json:"detail,omitempty"`
	Instance string       `json:"instance,omitempty"`
	TraceID  string       `json:"traceId"`
	Errors   []FieldError `json:"errors,omitempty"`
}

// FieldError points at one bad query parameter.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// NewProblem creates a Problem for the given request ID.
func NewProblem(problemType, title string, status int, traceID string) *Problem {
	return &Problem{
		Type:    problemType,
		Title:   title,
		Status:  status,
		TraceID: traceID,
	}
}

// Write sends p as the response.
func (p *Problem) Write(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/problem+json")
	if p.TraceID != "" {
		w.Header().Set("X-Request-Id", p.TraceID)
	}
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	if id := RequestIDFrom(r.Context()); id != "" {
		w.Header().Set("X-Request-Id", id)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func writeProblem(w http.ResponseWriter, r *http.Request, p *Problem) {
	p.Instance = r.URL.Path
	p.Write(w)
}

func badRequest(w http.ResponseWriter, r *http.Request, detail string, errs ...FieldError) {
	p := NewProblem(ProblemTypeValidation, "Validation error", http.StatusBadRequest, RequestIDFrom(r.Context()))
	p.Detail = detail
	p.Errors = errs
	writeProblem(w, r, p)
}

func unprocessable(w http.ResponseWriter, r *http.Request, detail string) {
	p := NewProblem(ProblemTypeUnsolvable, "Prayer time cannot be determined", http.StatusUnprocessableEntity, RequestIDFrom(r.Context()))
	p.Detail = detail
	writeProblem(w, r, p)
}

func internalError(w http.ResponseWriter, r *http.Request, detail string) {
	p := NewProblem(ProblemTypeInternal, "Internal server error", http.StatusInternalServerError, RequestIDFrom(r.Context()))
	p.Detail = detail
	writeProblem(w, r, p)
}

func notFound(w http.ResponseWriter, r *http.Request) {
	p := NewProblem(ProblemTypeNotFound, "Not found", http.StatusNotFound, RequestIDFrom(r.Context()))
	p.Detail = "no route for " + r.Method + " " + r.URL.Path
	writeProblem(w, r, p)
}
