package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/galien-mouassim/galien/internal/audit"
	"github.com/galien-mouassim/galien/internal/question"
)

// Moderation queue: worker-authored questions wait here until an admin
// approves or rejects them. Decisions land in the audit log.

func ListPendingHandler(store *question.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := store.ListPending(r.Context())
		if err != nil {
			http.Error(w, "db error", 500)
			return
		}
		writeJSON(w, 200, out)
	}
}

func ApproveQuestionHandler(store *question.Store, log *audit.Log) http.HandlerFunc {
	return setStatusHandler(store, log, question.StatusApproved, audit.EventQuestionApproved)
}

func RejectQuestionHandler(store *question.Store, log *audit.Log) http.HandlerFunc {
	return setStatusHandler(store, log, question.StatusRejected, audit.EventQuestionRejected)
}

func setStatusHandler(store *question.Store, log *audit.Log, status, event string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(chi.URLParam(r, "id"))
		if !ok {
			http.Error(w, "bad id", 400)
			return
		}
		if err := store.SetStatus(r.Context(), id, status); err != nil {
			if errors.Is(err, question.ErrNotFound) {
				http.Error(w, "not found", 404)
				return
			}
			http.Error(w, "db error", 500)
			return
		}
		if log != nil {
			_ = log.Record(r.Context(), event, strconv.FormatInt(id, 10), nil)
		}
		writeJSON(w, 200, map[string]any{"id": id, "status": status})
	}
}

// AuditLogHandler exposes recent moderation/import events to admins.
func AuditLogHandler(log *audit.Log) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
			limit = v
		}
		out, err := log.Recent(r.Context(), limit)
		if err != nil {
			http.Error(w, "db error", 500)
			return
		}
		writeJSON(w, 200, out)
	}
}
