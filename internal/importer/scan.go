package importer

import (
	"strings"

	"github.com/galien-mouassim/galien/internal/scoring"
	"github.com/galien-mouassim/galien/internal/similarity"
)

// BestMatch is the strongest duplicate found for a row in one pool.
type BestMatch struct {
	Percent   int                   `json:"percent"`
	ID        int64                 `json:"id,omitempty"`         // bank match
	RowNumber int                   `json:"row_number,omitempty"` // batch match
	Question  string                `json:"question,omitempty"`
	Source    similarity.PoolSource `json:"source,omitempty"`
}

// Analyzed is a row annotated by the duplicate scan.
type Analyzed struct {
	Row             Row              `json:"row"`
	ValidationError string           `json:"validation_error,omitempty"`
	Percent         int              `json:"percent"` // max over both pools
	Band            similarity.Band  `json:"band,omitempty"`
	BestBank        *BestMatch       `json:"best_bank,omitempty"`
	BestBatch       *BestMatch       `json:"best_batch,omitempty"`
	Include         bool             `json:"include"`
}

func (r Row) candidate() similarity.Candidate {
	return similarity.Candidate{
		RowNumber:  r.RowNumber,
		Question:   r.Question,
		Options:    [5]string{r.OptionA, r.OptionB, r.OptionC, r.OptionD, r.OptionE},
		Correction: r.CorrectOptions,
		ModuleID:   r.ModuleID,
		CourseID:   r.CourseID,
		SourceID:   r.SourceID,
	}
}

// validate rejects rows that cannot become questions. The similarity scan
// still runs on invalid rows so the preview shows their duplicates.
func validate(r Row) string {
	if strings.TrimSpace(r.Question) == "" {
		return "question manquante"
	}
	if scoring.SplitLetters(r.CorrectOptions).Len() == 0 {
		return "aucune option correcte valide"
	}
	hasOption := false
	for _, o := range [5]string{r.OptionA, r.OptionB, r.OptionC, r.OptionD, r.OptionE} {
		if strings.TrimSpace(o) != "" {
			hasOption = true
			break
		}
	}
	if !hasOption {
		return "aucune proposition"
	}
	return ""
}

// Scan annotates every row with its best duplicate across the persisted
// bank pool and the rows staged earlier in the same batch. Rows at or
// above autoExclude percent (or failing validation) start deselected; the
// operator can re-include them in the preview.
func Scan(rows []Row, bankPool []similarity.PoolEntry, autoExclude int) []Analyzed {
	if autoExclude <= 0 {
		autoExclude = similarity.DefaultImportFloor
	}
	out := make([]Analyzed, 0, len(rows))
	staged := make([]similarity.PoolEntry, 0, len(rows))

	for _, row := range rows {
		draft := row.candidate()
		a := Analyzed{Row: row, ValidationError: validate(row)}

		bank := bestOf(draft, bankPool)
		batch := bestOf(draft, staged)
		if bank != nil {
			a.BestBank = bank
			a.Percent = bank.Percent
		}
		if batch != nil {
			a.BestBatch = batch
			if batch.Percent > a.Percent {
				a.Percent = batch.Percent
			}
		}
		a.Band = similarity.BandFor(a.Percent)
		a.Include = a.ValidationError == "" && a.Percent < autoExclude
		out = append(out, a)

		// every scanned row, valid or not, becomes a comparison target
		// for the ones after it
		staged = append(staged, similarity.PoolEntry{Source: similarity.SourceBatch, Candidate: draft})
	}
	return out
}

func bestOf(draft similarity.Candidate, pool []similarity.PoolEntry) *BestMatch {
	var best *BestMatch
	for _, entry := range pool {
		p := similarity.Compare(draft, entry.Candidate)
		if best != nil && p <= best.Percent {
			continue
		}
		if best == nil && p == 0 {
			continue
		}
		best = &BestMatch{
			Percent:   p,
			ID:        entry.Candidate.ID,
			RowNumber: entry.Candidate.RowNumber,
			Question:  entry.Candidate.Question,
			Source:    entry.Source,
		}
	}
	return best
}

// Reapply recomputes the include flags for a different threshold without
// rescanning, mirroring the preview's tunable slider.
func Reapply(analyzed []Analyzed, autoExclude int) {
	if autoExclude <= 0 {
		autoExclude = similarity.DefaultImportFloor
	}
	for i := range analyzed {
		if analyzed[i].ValidationError != "" {
			analyzed[i].Include = false
			continue
		}
		analyzed[i].Include = analyzed[i].Percent < autoExclude
	}
}
