package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	auth "github.com/galien-mouassim/galien/internal/auth/middleware"
	"github.com/galien-mouassim/galien/internal/scoring"
	"github.com/galien-mouassim/galien/internal/session"
)

// CreateResultHandler stores a finished quiz session for the caller.
func CreateResultHandler(store *session.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserID(r)
		if !ok {
			http.Error(w, "unauthorized", 401)
			return
		}
		var req struct {
			Score            float64                  `json:"score"`
			Total            int                      `json:"total"`
			Mode             string                   `json:"mode"`
			ElapsedSeconds   int                      `json:"elapsed_seconds"`
			CorrectionSystem string                   `json:"correction_system"`
			TimeLimitSeconds *int                     `json:"time_limit_seconds"`
			IsSaved          bool                     `json:"is_saved"`
			SessionName      string                   `json:"session_name"`
			QuestionResults  []session.QuestionResult `json:"question_results"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		if req.CorrectionSystem != "" {
			if _, err := scoring.ParsePolicy(req.CorrectionSystem); err != nil {
				http.Error(w, err.Error(), 400)
				return
			}
		}
		id, err := store.Create(r.Context(), session.Result{
			UserID:           uid,
			Score:            req.Score,
			Total:            req.Total,
			Mode:             req.Mode,
			ElapsedSeconds:   req.ElapsedSeconds,
			CorrectionSystem: req.CorrectionSystem,
			TimeLimitSeconds: req.TimeLimitSeconds,
			IsSaved:          req.IsSaved,
			SessionName:      req.SessionName,
		}, req.QuestionResults)
		if err != nil {
			http.Error(w, "db error", 500)
			return
		}
		writeJSON(w, 201, map[string]any{"id": id})
	}
}

func ListResultsHandler(store *session.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserID(r)
		if !ok {
			http.Error(w, "unauthorized", 401)
			return
		}
		_, pageSize := pagination(r)
		out, err := store.ListByUser(r.Context(), uid, pageSize)
		if err != nil {
			http.Error(w, "db error", 500)
			return
		}
		writeJSON(w, 200, out)
	}
}

// PatchResultMetaHandler renames a session or toggles its saved flag.
func PatchResultMetaHandler(store *session.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserID(r)
		if !ok {
			http.Error(w, "unauthorized", 401)
			return
		}
		id, okID := idParam(chi.URLParam(r, "id"))
		if !okID {
			http.Error(w, "bad id", 400)
			return
		}
		var req struct {
			SessionName *string `json:"session_name"`
			IsSaved     *bool   `json:"is_saved"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		if err := store.UpdateMeta(r.Context(), id, uid, req.SessionName, req.IsSaved); err != nil {
			if errors.Is(err, session.ErrNotFound) {
				http.Error(w, "not found", 404)
				return
			}
			http.Error(w, "db error", 500)
			return
		}
		writeJSON(w, 200, map[string]any{"updated": id})
	}
}

func ResultQuestionsHandler(store *session.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserID(r)
		if !ok {
			http.Error(w, "unauthorized", 401)
			return
		}
		id, okID := idParam(chi.URLParam(r, "id"))
		if !okID {
			http.Error(w, "bad id", 400)
			return
		}
		out, err := store.Questions(r.Context(), id, uid)
		if err != nil {
			if errors.Is(err, session.ErrNotFound) {
				http.Error(w, "not found", 404)
				return
			}
			http.Error(w, "db error", 500)
			return
		}
		writeJSON(w, 200, out)
	}
}

// AttemptHistoryHandler lists the caller's past scores on one question.
func AttemptHistoryHandler(store *session.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserID(r)
		if !ok {
			http.Error(w, "unauthorized", 401)
			return
		}
		qid, okID := idParam(chi.URLParam(r, "id"))
		if !okID {
			http.Error(w, "bad id", 400)
			return
		}
		out, err := store.AttemptHistory(r.Context(), uid, qid)
		if err != nil {
			http.Error(w, "db error", 500)
			return
		}
		writeJSON(w, 200, out)
	}
}

func UserStatsHandler(store *session.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserID(r)
		if !ok {
			http.Error(w, "unauthorized", 401)
			return
		}
		st, err := store.UserStats(r.Context(), uid)
		if err != nil {
			http.Error(w, "db error", 500)
			return
		}
		writeJSON(w, 200, st)
	}
}
