// Package response writes the storefront's JSON reply shapes.
//
// Public endpoints answer {"success":true,...} on success and
// {"success":false,"errors":...} on business failures; the auth guard
// answers 401 with a bare {"errors":...}.
package response

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Failure is the body of a rejected request.
type Failure struct {
	Success bool        `json:"success"`
	Errors  interface{} `json:"errors"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

// OK writes v with 200.
func OK(w http.ResponseWriter, v interface{}) {
	JSON(w, http.StatusOK, v)
}

// Fail writes {"success":false,"errors":errs}. Business failures use 200.
func Fail(w http.ResponseWriter, status int, errs interface{}) {
	JSON(w, status, Failure{Success: false, Errors: errs})
}

// Unauthorized writes 401 {"errors":message}.
func Unauthorized(w http.ResponseWriter, message string) {
	JSON(w, http.StatusUnauthorized, map[string]string{"errors": message})
}

// InternalError writes 500 with a generic message.
func InternalError(w http.ResponseWriter) {
	Fail(w, http.StatusInternalServerError, "Internal Server Error")
}

// Text writes a plain-text body.
func Text(w http.ResponseWriter, status int, format string, args ...interface{}) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintf(w, format, args...)
}
