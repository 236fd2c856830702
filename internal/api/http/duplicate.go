package http

import (
	"encoding/json"
	"net/http"

	"github.com/galien-mouassim/galien/internal/question"
	"github.com/galien-mouassim/galien/internal/similarity"
	"github.com/galien-mouassim/galien/internal/textnorm"
)

type duplicateRequest struct {
	questionPayload
	ExcludeID int64 `json:"exclude_id"`
	Floor     int   `json:"floor"` // optional; default 55
}

type similarMatch struct {
	ID       int64           `json:"id"`
	Question string          `json:"question"`
	ModuleID *int64          `json:"module_id"`
	CourseID *int64          `json:"course_id"`
	SourceID *int64          `json:"source_id"`
	Percent  int             `json:"percent"`
	Band     similarity.Band `json:"band"`
}

// CheckDuplicateHandler ranks a draft against the persisted bank. Exact
// matches (same normalized text, options and classification) are split
// out from the weighted similar list, as the authoring UI treats them
// differently.
func CheckDuplicateHandler(store *question.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req duplicateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		draft := similarity.Candidate{
			Question: req.Question,
			Options: [5]string{req.OptionA, req.OptionB, req.OptionC,
				req.OptionD, req.OptionE},
			Correction: req.CorrectOptions,
			ModuleID:   req.ModuleID,
			CourseID:   req.CourseID,
			SourceID:   req.SourceID,
		}
		if textnorm.Normalize(draft.Question) == "" {
			writeJSON(w, 200, map[string]any{"exact_matches": []similarMatch{}, "similar_matches": []similarMatch{}})
			return
		}
		pool, err := store.CandidatePool(r.Context(), draft, req.ExcludeID)
		if err != nil {
			http.Error(w, "db error", 500)
			return
		}

		exact := []similarMatch{}
		for _, entry := range pool {
			if isExactDuplicate(draft, entry.Candidate) {
				exact = append(exact, toMatch(entry.Candidate, 100))
			}
		}
		similar := []similarMatch{}
		for _, m := range similarity.Rank(draft, pool, similarity.Options{Floor: req.Floor}) {
			if m.Percent >= 100 {
				continue // already reported as exact
			}
			similar = append(similar, toMatch(m.Candidate, m.Percent))
		}
		writeJSON(w, 200, map[string]any{"exact_matches": exact, "similar_matches": similar})
	}
}

func toMatch(c similarity.Candidate, percent int) similarMatch {
	return similarMatch{
		ID:       c.ID,
		Question: c.Question,
		ModuleID: c.ModuleID,
		CourseID: c.CourseID,
		SourceID: c.SourceID,
		Percent:  percent,
		Band:     similarity.BandFor(percent),
	}
}

func isExactDuplicate(draft, c similarity.Candidate) bool {
	if textnorm.Normalize(draft.Question) != textnorm.Normalize(c.Question) {
		return false
	}
	for i := range draft.Options {
		if textnorm.Normalize(draft.Options[i]) != textnorm.Normalize(c.Options[i]) {
			return false
		}
	}
	return idEq(draft.ModuleID, c.ModuleID) && idEq(draft.CourseID, c.CourseID) && idEq(draft.SourceID, c.SourceID)
}

func idEq(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
