// Package similarity ranks a draft question against a pool of existing
// candidates and reports probable duplicates as percentages. It is used
// both by the interactive duplicate check in the admin editor and by the
// bulk CSV import scan; the pool abstraction keeps it agnostic of where
// candidates come from.
package similarity

import (
	"math"
	"sort"
	"strings"

	"github.com/galien-mouassim/galien/internal/textnorm"
)

// Sub-score weights. These were tuned together with the severity bands
// below; do not adjust one without the other.
const (
	weightQuestion   = 0.5
	weightOptions    = 0.4
	weightCorrection = 0.1
)

// Default floors and limits for the two call sites.
const (
	DefaultFloor       = 55 // interactive duplicate check
	DefaultImportFloor = 80 // bulk import auto-exclude threshold
	DefaultLimit       = 5
	substringScore     = 0.92
)

// PoolSource tags where a candidate came from.
type PoolSource string

const (
	SourceBank  PoolSource = "bank"  // persisted question
	SourceBatch PoolSource = "batch" // row staged earlier in the same import
)

// Candidate is the comparable shape of a question, persisted or not.
type Candidate struct {
	ID         int64
	RowNumber  int // meaningful for SourceBatch entries
	Question   string
	Options    [5]string // A..E, empty string when absent
	Correction string    // raw correct-options string, e.g. "A,C"
	ModuleID   *int64
	CourseID   *int64
	SourceID   *int64
}

// PoolEntry pairs a candidate with its provenance.
type PoolEntry struct {
	Source    PoolSource
	Candidate Candidate
}

// Match is one ranked result.
type Match struct {
	Source    PoolSource
	Candidate Candidate
	Percent   int
}

// Options tunes a Rank call.
type Options struct {
	Floor int // minimum percent reported; <=0 means DefaultFloor
	Limit int // maximum matches returned; <=0 means DefaultLimit
}

// Severity bands for presentation.
type Band string

const (
	BandHigh   Band = "high"   // probable duplicate
	BandReview Band = "review" // similar, needs a look
	BandWeak   Band = "weak"
	BandNone   Band = ""
)

// BandFor maps a percentage to its severity band.
func BandFor(percent int) Band {
	switch {
	case percent >= 90:
		return BandHigh
	case percent >= 70:
		return BandReview
	case percent >= 50:
		return BandWeak
	default:
		return BandNone
	}
}

// Rank compares draft against every pool entry and returns matches at or
// above the floor, best first. Ties are broken by ascending candidate id
// so output is deterministic. A draft with no usable question text, or an
// empty pool, yields no matches; Rank never fails.
func Rank(draft Candidate, pool []PoolEntry, opts Options) []Match {
	floor := opts.Floor
	if floor <= 0 {
		floor = DefaultFloor
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if textnorm.Normalize(draft.Question) == "" {
		return nil
	}

	draftOpts := normalizedOptions(draft.Options)
	draftCorr := correctionSet(draft.Correction)

	matches := make([]Match, 0, len(pool))
	for _, entry := range pool {
		p := Percent(draft, draftOpts, draftCorr, entry.Candidate)
		if p < floor {
			continue
		}
		matches = append(matches, Match{Source: entry.Source, Candidate: entry.Candidate, Percent: p})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Percent != matches[j].Percent {
			return matches[i].Percent > matches[j].Percent
		}
		return matches[i].Candidate.ID < matches[j].Candidate.ID
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// Compare scores a single draft/candidate pair. Convenience wrapper for
// callers that track their own best match (the import scan).
func Compare(draft, candidate Candidate) int {
	return Percent(draft, normalizedOptions(draft.Options), correctionSet(draft.Correction), candidate)
}

// Percent combines the weighted sub-scores and the location factor into
// the final 0..100 value. draftOpts and draftCorr are precomputed with
// normalizedOptions and correctionSet so pool scans do that work once.
func Percent(draft Candidate, draftOpts []string, draftCorr map[string]struct{}, c Candidate) int {
	q := questionScore(draft.Question, c.Question)
	p := optionsScore(draftOpts, normalizedOptions(c.Options))
	cs := correctionScore(draftCorr, correctionSet(c.Correction))
	loc := locationFactor(draft, c)
	return int(math.Round(100 * (q*weightQuestion + p*weightOptions + cs*weightCorrection) * loc))
}

// questionScore is 1 for identical normalized texts, 0.92 when one
// contains the other, otherwise token-set Jaccard.
func questionScore(a, b string) float64 {
	na := textnorm.Normalize(a)
	nb := textnorm.Normalize(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return substringScore
	}
	return textnorm.Jaccard(textnorm.TokenSet(na), textnorm.TokenSet(nb))
}

// normalizedOptions drops empty options and sorts the remainder, which
// makes the greedy matching below independent of option order.
func normalizedOptions(opts [5]string) []string {
	out := make([]string, 0, len(opts))
	for _, o := range opts {
		if n := textnorm.Normalize(o); n != "" {
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out
}

// optionsScore greedily pairs each draft option with the most similar
// unused candidate option. This heuristic is not an optimal assignment
// and is kept that way on purpose: the percent thresholds used across
// the product were calibrated against its output.
func optionsScore(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	used := make([]bool, len(b))
	total := 0.0
	count := 0
	for _, opt := range a {
		optSet := textnorm.TokenSet(opt)
		best := -1
		bestScore := 0.0
		for i, cand := range b {
			if used[i] {
				continue
			}
			s := textnorm.Jaccard(optSet, textnorm.TokenSet(cand))
			if s > bestScore {
				bestScore = s
				best = i
			}
		}
		if best >= 0 {
			used[best] = true
			total += bestScore
			count++
		}
	}
	if count == 0 {
		return 0
	}
	larger := len(a)
	if len(b) > larger {
		larger = len(b)
	}
	return (total / float64(count)) * (float64(count) / float64(larger))
}

// correctionSet parses a correct-options string ("A,C", "b;d", "A / C")
// into a set of uppercase tokens.
func correctionSet(s string) map[string]struct{} {
	fields := strings.FieldsFunc(strings.ToUpper(s), func(r rune) bool {
		switch r {
		case ',', ';', '|', '/', ' ', '\t', '\n', '\r':
			return true
		}
		return false
	})
	if len(fields) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

func correctionScore(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	return textnorm.Jaccard(a, b)
}

// locationFactor averages equality over the classification dimensions the
// draft actually specifies; an unclassified draft is not penalized.
func locationFactor(draft, c Candidate) float64 {
	sum := 0.0
	n := 0
	for _, dim := range [][2]*int64{
		{draft.ModuleID, c.ModuleID},
		{draft.CourseID, c.CourseID},
		{draft.SourceID, c.SourceID},
	} {
		if dim[0] == nil {
			continue
		}
		n++
		if dim[1] != nil && *dim[0] == *dim[1] {
			sum++
		}
	}
	if n == 0 {
		return 1
	}
	return sum / float64(n)
}
