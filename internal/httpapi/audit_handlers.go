package httpapi

import (
	"net/http"
	"strings"
	"time"

	"taskgrid.org/internal/audit"
)

type listAuditResponse struct {
	Items []audit.Entry `json:"items"`
	AsOf  time.Time     `json:"as_of"`
}

// handleAuditLog serves the audit trail. Access is gated by RequireRole at
// route registration; filters narrow by actor or resource, never both.
func (a *API) handleAuditLog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	actorID := strings.TrimSpace(r.URL.Query().Get("actor_id"))
	resourceID := strings.TrimSpace(r.URL.Query().Get("resource_id"))
	if actorID != "" && resourceID != "" {
		writeError(w, r, http.StatusBadRequest, "actor_id and resource_id are mutually exclusive")
		return
	}

	var (
		entries []audit.Entry
		err     error
	)
	switch {
	case actorID != "":
		entries, err = a.audit.ByActor(r.Context(), actorID)
	case resourceID != "":
		entries, err = a.audit.ByResource(r.Context(), resourceID)
	default:
		entries, err = a.audit.All(r.Context())
	}
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	if entries == nil {
		entries = []audit.Entry{}
	}
	writeJSON(w, http.StatusOK, listAuditResponse{Items: entries, AsOf: time.Now().UTC()})
}
