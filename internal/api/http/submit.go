package http

import (
	"encoding/json"
	"net/http"

	"github.com/galien-mouassim/galien/internal/question"
	"github.com/galien-mouassim/galien/internal/scoring"
)

type submittedAnswer struct {
	ID              int64    `json:"id"`
	SelectedOptions []string `json:"selectedOptions"`
}

type correctionLine struct {
	ID              int64    `json:"id"`
	CorrectOptions  []string `json:"correctOptions"`
	SelectedOptions []string `json:"selectedOptions"`
	Score           float64  `json:"score"`
}

// SubmitAnswersHandler grades a batch of answers under the session's
// correction system and returns per-question corrections plus the
// aggregate. Questions that no longer exist are skipped, not failed.
func SubmitAnswersHandler(store *question.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Answers          []submittedAnswer `json:"answers"`
			CorrectionSystem string            `json:"correction_system"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		policy := scoring.AllOrNothing
		if req.CorrectionSystem != "" {
			p, err := scoring.ParsePolicy(req.CorrectionSystem)
			if err != nil {
				http.Error(w, err.Error(), 400)
				return
			}
			policy = p
		}

		ids := make([]int64, 0, len(req.Answers))
		for _, a := range req.Answers {
			ids = append(ids, a.ID)
		}
		keys, err := store.CorrectOptions(r.Context(), ids)
		if err != nil {
			http.Error(w, "db error", 500)
			return
		}

		scores := make([]float64, 0, len(req.Answers))
		corrections := make([]correctionLine, 0, len(req.Answers))
		for _, a := range req.Answers {
			key, ok := keys[a.ID]
			if !ok {
				continue
			}
			correct := scoring.SplitLetters(key)
			selected := scoring.ParseLetters(a.SelectedOptions)
			s := scoring.Score(correct, selected, policy)
			scores = append(scores, s)
			corrections = append(corrections, correctionLine{
				ID:              a.ID,
				CorrectOptions:  correct.Letters(),
				SelectedOptions: selected.Letters(),
				Score:           s,
			})
		}
		total, max := scoring.Aggregate(scores)
		writeJSON(w, 200, map[string]any{
			"score":       total,
			"total":       max,
			"corrections": corrections,
		})
	}
}
