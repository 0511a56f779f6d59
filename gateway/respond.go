package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/talentbase/talentbase/db"
	"github.com/talentbase/talentbase/errors"
	"github.com/talentbase/talentbase/store"
)

// Page is the standard envelope for list responses: the requested page slice
// plus the full filtered count, so callers can compute ceil(total/pageSize).
type Page[T any] struct {
	Data  []T `json:"data"`
	Total int `json:"total"`
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

const codeSimulatedFailure = "simulated_failure"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps the store's sentinel errors onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.Is(err, store.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case db.IsDatabaseClosed(err):
		// Requests can race a graceful shutdown; answer 503 rather than
		// a generic 500 so callers know to retry elsewhere.
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
	}
}

func writeSimulatedFailure(w http.ResponseWriter, route string) {
	writeJSON(w, http.StatusInternalServerError, errorBody{
		Error: "simulated network failure on " + route,
		Code:  codeSimulatedFailure,
	})
}

// paginate returns the 1-indexed page slice bounds over n records, clamped to
// available data. A page past the end yields an empty range, never an error.
func paginate(n, page, pageSize int) (lo, hi int) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if page <= 0 {
		page = 1
	}

	// Bound the page before multiplying; an extreme page value would
	// otherwise overflow into a negative slice index.
	if page-1 > n/pageSize {
		return n, n
	}
	lo = (page - 1) * pageSize
	hi = lo + pageSize
	if hi > n {
		hi = n
	}
	return lo, hi
}

// DefaultPageSize applies when a list request omits pageSize.
const DefaultPageSize = 10

// pageOf slices records for the envelope without losing the total.
func pageOf[T any](records []T, page, pageSize int) Page[T] {
	lo, hi := paginate(len(records), page, pageSize)
	out := records[lo:hi]
	if out == nil {
		out = []T{}
	}
	return Page[T]{Data: out, Total: len(records)}
}
