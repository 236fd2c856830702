package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	auth "github.com/galien-mouassim/galien/internal/auth/middleware"
	"github.com/galien-mouassim/galien/internal/audit"
	"github.com/galien-mouassim/galien/internal/feedback"
	"github.com/galien-mouassim/galien/internal/question"
	"github.com/galien-mouassim/galien/internal/rbac"
)

// FlagQuestionHandler records a reader's report against a question so
// the moderation team can review it.
func FlagQuestionHandler(flags *feedback.Store, questions *question.Store) http.HandlerFunc {
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
		if _, err := questions.Get(r.Context(), qid); err != nil {
			if errors.Is(err, question.ErrNotFound) {
				http.Error(w, "not found", 404)
				return
			}
			http.Error(w, "db error", 500)
			return
		}
		var req struct {
			Reason string `json:"reason"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		if strings.TrimSpace(req.Reason) == "" {
			http.Error(w, "reason required", 400)
			return
		}
		id, err := flags.CreateFlag(r.Context(), qid, uid, strings.TrimSpace(req.Reason))
		if err != nil {
			http.Error(w, "db error", 500)
			return
		}
		writeJSON(w, 201, map[string]any{"id": id})
	}
}

// ListFlagsHandler lists flags for the moderation view, open ones by
// default.
func ListFlagsHandler(flags *feedback.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := r.URL.Query().Get("status")
		if status == "" {
			status = feedback.FlagOpen
		}
		if status == "all" {
			status = ""
		}
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		out, err := flags.ListFlags(r.Context(), status, limit)
		if err != nil {
			http.Error(w, "db error", 500)
			return
		}
		writeJSON(w, 200, out)
	}
}

func ResolveFlagHandler(flags *feedback.Store, log *audit.Log) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(chi.URLParam(r, "id"))
		if !ok {
			http.Error(w, "bad id", 400)
			return
		}
		if err := flags.ResolveFlag(r.Context(), id); err != nil {
			if errors.Is(err, feedback.ErrNotFound) {
				http.Error(w, "not found", 404)
				return
			}
			http.Error(w, "db error", 500)
			return
		}
		if log != nil {
			uid, _ := auth.UserID(r)
			_ = log.Record(r.Context(), audit.EventFlagResolved,
				strconv.FormatInt(id, 10), map[string]any{"by": uid})
		}
		writeJSON(w, 200, map[string]any{"resolved": id})
	}
}

func ListCommentsHandler(comments *feedback.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qid, ok := idParam(chi.URLParam(r, "id"))
		if !ok {
			http.Error(w, "bad id", 400)
			return
		}
		out, err := comments.ListComments(r.Context(), qid)
		if err != nil {
			http.Error(w, "db error", 500)
			return
		}
		writeJSON(w, 200, out)
	}
}

func CreateCommentHandler(comments *feedback.Store, questions *question.Store) http.HandlerFunc {
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
		if _, err := questions.Get(r.Context(), qid); err != nil {
			if errors.Is(err, question.ErrNotFound) {
				http.Error(w, "not found", 404)
				return
			}
			http.Error(w, "db error", 500)
			return
		}
		var req struct {
			Body string `json:"body"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		body := strings.TrimSpace(req.Body)
		if body == "" {
			http.Error(w, "body required", 400)
			return
		}
		id, err := comments.CreateComment(r.Context(), qid, uid, body)
		if err != nil {
			http.Error(w, "db error", 500)
			return
		}
		writeJSON(w, 201, map[string]any{"id": id})
	}
}

// DeleteCommentHandler removes a comment. Authors delete their own;
// moderators can delete anyone's.
func DeleteCommentHandler(comments *feedback.Store) http.HandlerFunc {
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
		moderator := rbac.Has(rbac.RoleFromContext(r.Context()), "moderation:review")
		if err := comments.DeleteComment(r.Context(), id, uid, moderator); err != nil {
			if errors.Is(err, feedback.ErrNotFound) {
				http.Error(w, "not found", 404)
				return
			}
			http.Error(w, "db error", 500)
			return
		}
		writeJSON(w, 200, map[string]any{"deleted": id})
	}
}
