package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	auth "github.com/galien-mouassim/galien/internal/auth/middleware"
	"github.com/galien-mouassim/galien/internal/question"
	"github.com/galien-mouassim/galien/internal/rbac"
	"github.com/galien-mouassim/galien/internal/scoring"
)

type questionPayload struct {
	Question       string `json:"question"`
	OptionA        string `json:"option_a"`
	OptionB        string `json:"option_b"`
	OptionC        string `json:"option_c"`
	OptionD        string `json:"option_d"`
	OptionE        string `json:"option_e"`
	CorrectOptions string `json:"correct_options"`
	Explanation    string `json:"explanation"`
	ModuleID       *int64 `json:"module_id"`
	CourseID       *int64 `json:"course_id"`
	SourceID       *int64 `json:"source_id"`
}

func (p questionPayload) toQuestion() (question.Question, error) {
	if strings.TrimSpace(p.Question) == "" {
		return question.Question{}, errors.New("question required")
	}
	correct := scoring.SplitLetters(p.CorrectOptions)
	if correct.Len() == 0 {
		return question.Question{}, errors.New("correct_options must contain at least one of A..E")
	}
	return question.Question{
		Text:    strings.TrimSpace(p.Question),
		OptionA: p.OptionA, OptionB: p.OptionB, OptionC: p.OptionC,
		OptionD: p.OptionD, OptionE: p.OptionE,
		CorrectOptions: strings.Join(correct.Letters(), ","),
		Explanation:    p.Explanation,
		ModuleID:       p.ModuleID, CourseID: p.CourseID, SourceID: p.SourceID,
	}, nil
}

func ListQuestionsHandler(store *question.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, pageSize := pagination(r)
		f := question.Filter{
			ModuleIDs: intList(r.URL.Query().Get("module_ids")),
			CourseIDs: intList(r.URL.Query().Get("course_ids")),
			SourceIDs: intList(r.URL.Query().Get("source_ids")),
			Status:    question.StatusApproved,
			Page:      page,
			PageSize:  pageSize,
		}
		qs, err := store.List(r.Context(), f)
		if err != nil {
			http.Error(w, "db error", 500)
			return
		}
		// answer keys stay server-side for students; admins and workers
		// see them in the authoring views
		if role := rbac.RoleFromContext(r.Context()); role == "student" {
			for i := range qs {
				qs[i].CorrectOptions = ""
				qs[i].Explanation = ""
			}
		}
		total, err := store.Count(r.Context(), f)
		if err != nil {
			http.Error(w, "db error", 500)
			return
		}
		writeJSON(w, 200, map[string]any{"questions": qs, "total": total, "page": page})
	}
}

func CountQuestionsHandler(store *question.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f := question.Filter{
			ModuleIDs: intList(r.URL.Query().Get("module_ids")),
			CourseIDs: intList(r.URL.Query().Get("course_ids")),
			SourceIDs: intList(r.URL.Query().Get("source_ids")),
			Status:    question.StatusApproved,
		}
		total, err := store.Count(r.Context(), f)
		if err != nil {
			http.Error(w, "db error", 500)
			return
		}
		writeJSON(w, 200, map[string]any{"total": total})
	}
}

// CreateQuestionHandler persists a question. Admin-authored questions are
// approved immediately; worker submissions enter the moderation queue.
func CreateQuestionHandler(store *question.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p questionPayload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		q, err := p.toQuestion()
		if err != nil {
			http.Error(w, err.Error(), 400)
			return
		}
		if uid, ok := auth.UserID(r); ok {
			q.CreatedBy = &uid
		}
		q.Status = question.StatusApproved
		if rbac.RoleFromContext(r.Context()) == "worker" {
			q.Status = question.StatusPending
		}
		id, err := store.Insert(r.Context(), q)
		if err != nil {
			http.Error(w, "db error", 500)
			return
		}
		q.ID = id
		writeJSON(w, 201, q)
	}
}

func UpdateQuestionHandler(store *question.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(chi.URLParam(r, "id"))
		if !ok {
			http.Error(w, "bad id", 400)
			return
		}
		var p questionPayload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		q, err := p.toQuestion()
		if err != nil {
			http.Error(w, err.Error(), 400)
			return
		}
		q.ID = id
		if err := store.Update(r.Context(), q); err != nil {
			if errors.Is(err, question.ErrNotFound) {
				http.Error(w, "not found", 404)
				return
			}
			http.Error(w, "db error", 500)
			return
		}
		writeJSON(w, 200, q)
	}
}

func DeleteQuestionHandler(store *question.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(chi.URLParam(r, "id"))
		if !ok {
			http.Error(w, "bad id", 400)
			return
		}
		if err := store.Delete(r.Context(), id); err != nil {
			if errors.Is(err, question.ErrNotFound) {
				http.Error(w, "not found", 404)
				return
			}
			http.Error(w, "db error", 500)
			return
		}
		writeJSON(w, 200, map[string]any{"deleted": id})
	}
}
