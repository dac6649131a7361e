package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/Hrittik-Chatterjee/crm-backend-lite/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps an error to its HTTP status and the Fail envelope.
// Unexpected errors (no apperr status attached) become an opaque 500.
func writeError(w http.ResponseWriter, err error) {
	var e *apperr.Error
	if errors.As(err, &e) {
		writeJSON(w, e.Status, Fail(e.Message))
		return
	}
	writeJSON(w, http.StatusInternalServerError, Fail("internal server error"))
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

// parseBoolPtr turns "true"/"false" into a pointer; anything else, including
// absence, means the caller did not filter.
func parseBoolPtr(s string) *bool {
	switch s {
	case "true":
		v := true
		return &v
	case "false":
		v := false
		return &v
	}
	return nil
}

func readBodyJSON(r *http.Request, maxBytes int64, out any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBytes))
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}
