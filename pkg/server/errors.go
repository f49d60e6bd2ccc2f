package server

import (
	"encoding/json"
	"net/http"

	kerrors "github.com/matzehuels/knitstack/pkg/errors"
)

// errorBody is the JSON form of a coded error.
type errorBody struct {
	Code    kerrors.Code `json:"code"`
	Message string       `json:"message"`
	Line    int          `json:"line,omitempty"`
}

func newErrorBody(err error) *errorBody {
	code := kerrors.GetCode(err)
	if code == "" {
		code = kerrors.ErrCodeInternal
	}
	return &errorBody{
		Code:    code,
		Message: kerrors.UserMessage(err),
		Line:    kerrors.GetLine(err),
	}
}

// Status maps an error code to its HTTP status.
func Status(code kerrors.Code) int {
	switch {
	case code.IsInvalid():
		return http.StatusBadRequest
	case code == kerrors.ErrCodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	body := newErrorBody(err)
	writeJSON(w, Status(body.Code), map[string]*errorBody{"error": body})
}
