// Package scoring computes per-question and per-session scores for QCM
// submissions. All functions are pure: they never touch storage and never
// return errors, a malformed submission simply scores 0.
package scoring

import (
	"fmt"
	"strings"
)

// Policy selects how partial credit is awarded on multi-answer questions.
type Policy int

const (
	// AllOrNothing awards 1 only on exact match of the selected set.
	AllOrNothing Policy = iota
	// PartialPositive awards (correct - wrong) / k, floored at 0.
	PartialPositive
	// PartialNegative awards correct / k, but any wrong selection zeroes
	// the question.
	PartialNegative
)

// Wire literals used by the HTTP layer and by persisted user preferences.
const (
	PolicyLiteralAllOrNothing    = "tout_ou_rien"
	PolicyLiteralPartialPositive = "partiel_positive"
	PolicyLiteralPartialNegative = "partiel_negative"
)

func (p Policy) String() string {
	switch p {
	case PartialPositive:
		return PolicyLiteralPartialPositive
	case PartialNegative:
		return PolicyLiteralPartialNegative
	default:
		return PolicyLiteralAllOrNothing
	}
}

// ParsePolicy maps a wire literal to a Policy. Unknown literals are
// rejected here so scoring itself never sees one.
func ParsePolicy(s string) (Policy, error) {
	switch strings.TrimSpace(s) {
	case PolicyLiteralAllOrNothing:
		return AllOrNothing, nil
	case PolicyLiteralPartialPositive:
		return PartialPositive, nil
	case PolicyLiteralPartialNegative:
		return PartialNegative, nil
	default:
		return AllOrNothing, fmt.Errorf("unknown correction system %q", s)
	}
}

// LetterSet is a set over the option alphabet A..E.
type LetterSet uint8

const letterAlphabet = "ABCDE"

// ParseLetters builds a LetterSet from single-letter strings, silently
// dropping anything outside A..E. Lowercase input is accepted.
func ParseLetters(letters []string) LetterSet {
	var set LetterSet
	for _, l := range letters {
		l = strings.ToUpper(strings.TrimSpace(l))
		if len(l) != 1 {
			continue
		}
		if i := strings.IndexByte(letterAlphabet, l[0]); i >= 0 {
			set |= 1 << uint(i)
		}
	}
	return set
}

// SplitLetters parses a stored correct-options string such as "A,C" or
// "B;D" into a LetterSet.
func SplitLetters(s string) LetterSet {
	return ParseLetters(strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == '|' || r == '/' || r == ' ' || r == '\t'
	}))
}

// Len returns the number of letters in the set.
func (s LetterSet) Len() int {
	n := 0
	for i := 0; i < len(letterAlphabet); i++ {
		if s&(1<<uint(i)) != 0 {
			n++
		}
	}
	return n
}

// Letters returns the members in alphabetical order.
func (s LetterSet) Letters() []string {
	out := make([]string, 0, s.Len())
	for i := 0; i < len(letterAlphabet); i++ {
		if s&(1<<uint(i)) != 0 {
			out = append(out, letterAlphabet[i:i+1])
		}
	}
	return out
}

// Score grades one question. correct must be non-empty (a question always
// has at least one correct option); selected may be empty.
//
// Questions with a single correct option are always graded all-or-nothing,
// whatever the session policy says.
func Score(correct, selected LetterSet, policy Policy) float64 {
	k := correct.Len()
	if k == 0 {
		return 0
	}
	if k == 1 || policy == AllOrNothing {
		if selected == correct {
			return 1
		}
		return 0
	}

	correctSelected := (selected & correct).Len()
	wrongSelected := (selected &^ correct).Len()

	switch policy {
	case PartialNegative:
		if wrongSelected > 0 {
			return 0
		}
		return float64(correctSelected) / float64(k)
	default: // PartialPositive
		frac := float64(correctSelected-wrongSelected) / float64(k)
		if frac < 0 {
			return 0
		}
		return frac
	}
}

// Aggregate sums per-question scores. The session maximum is the number
// of scored questions, each question being worth 1 point.
func Aggregate(scores []float64) (total float64, max int) {
	for _, s := range scores {
		total += s
	}
	return total, len(scores)
}
