package similarity

import "testing"

func ptr(v int64) *int64 { return &v }

func draftFoie() Candidate {
	return Candidate{
		Question:   "Quel est le role du foie",
		Options:    [5]string{"La digestion", "La detoxification", "Le stockage du glycogene", "", ""},
		Correction: "B,C",
	}
}

func TestExactDuplicateScores100(t *testing.T) {
	draft := draftFoie()
	cand := draft
	cand.ID = 42
	cand.Question = "quel est le rôle du foie ?" // identical once normalized

	matches := Rank(draft, []PoolEntry{{Source: SourceBank, Candidate: cand}}, Options{})
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].Percent != 100 {
		t.Fatalf("percent = %d, want 100", matches[0].Percent)
	}
	if matches[0].Source != SourceBank {
		t.Fatalf("source = %q, want bank", matches[0].Source)
	}
}

func TestDisjointCandidateScoresZero(t *testing.T) {
	draft := draftFoie()
	cand := Candidate{
		ID:         7,
		Question:   "Citez une valence habituelle du carbone",
		Options:    [5]string{"Quatre", "Deux", "", "", ""},
		Correction: "A",
	}
	if p := Compare(draft, cand); p > 20 {
		t.Fatalf("unrelated candidate scored %d", p)
	}
	if matches := Rank(draft, []PoolEntry{{SourceBank, cand}}, Options{}); len(matches) != 0 {
		t.Fatalf("unrelated candidate must fall below the floor, got %v", matches)
	}
}

func TestEmptyPool(t *testing.T) {
	if got := Rank(draftFoie(), nil, Options{}); len(got) != 0 {
		t.Fatalf("expected no matches, got %v", got)
	}
}

func TestEmptyDraftQuestion(t *testing.T) {
	draft := Candidate{Question: "  ?! "}
	pool := []PoolEntry{{SourceBank, draftFoie()}}
	if got := Rank(draft, pool, Options{}); len(got) != 0 {
		t.Fatalf("draft without text must match nothing, got %v", got)
	}
}

func TestSubstringQuestionScore(t *testing.T) {
	if got := questionScore("le role du foie", "quel est le role du foie dans la digestion"); got != substringScore {
		t.Fatalf("got %v, want %v", got, substringScore)
	}
}

func TestQuestionScoreJaccardFallback(t *testing.T) {
	// "le foie humain" vs "le rein humain": inter {le, humain} = 2, union 4.
	if got := questionScore("le foie humain", "le rein humain"); got != 0.5 {
		t.Fatalf("got %v, want 0.5", got)
	}
}

func TestOptionsScoreEmptySides(t *testing.T) {
	if got := optionsScore(nil, nil); got != 1 {
		t.Fatalf("both empty: got %v, want 1", got)
	}
	if got := optionsScore([]string{"foo"}, nil); got != 0 {
		t.Fatalf("one empty: got %v, want 0", got)
	}
}

func TestOptionsScorePenalizesCountMismatch(t *testing.T) {
	a := []string{"la digestion", "le stockage"}
	b := []string{"la digestion", "le stockage", "la synthese", "le transport"}
	got := optionsScore(a, b)
	// two perfect matches out of max(2,4) slots: (2/2) * (2/4)
	if got != 0.5 {
		t.Fatalf("got %v, want 0.5", got)
	}
}

func TestCorrectionScore(t *testing.T) {
	if got := correctionScore(correctionSet("A,C"), correctionSet("c / a")); got != 1 {
		t.Fatalf("same letters: got %v, want 1", got)
	}
	if got := correctionScore(correctionSet(""), correctionSet("")); got != 1 {
		t.Fatalf("both empty: got %v, want 1", got)
	}
	if got := correctionScore(correctionSet("A"), correctionSet("")); got != 0 {
		t.Fatalf("one empty: got %v, want 0", got)
	}
	if got := correctionScore(correctionSet("A,B"), correctionSet("B,C")); got != 1.0/3.0 {
		t.Fatalf("got %v, want 1/3", got)
	}
}

func TestLocationFactor(t *testing.T) {
	draft := draftFoie()
	cand := draftFoie()
	if got := locationFactor(draft, cand); got != 1 {
		t.Fatalf("unclassified draft must not be penalized, got %v", got)
	}
	draft.ModuleID = ptr(3)
	draft.SourceID = ptr(9)
	cand.ModuleID = ptr(3)
	cand.SourceID = ptr(12)
	if got := locationFactor(draft, cand); got != 0.5 {
		t.Fatalf("got %v, want 0.5", got)
	}
	cand.SourceID = nil
	if got := locationFactor(draft, cand); got != 0.5 {
		t.Fatalf("nil candidate field counts as mismatch, got %v", got)
	}
}

func TestLocationFactorIsMultiplicative(t *testing.T) {
	draft := draftFoie()
	draft.ModuleID = ptr(1)
	cand := draftFoie()
	cand.ID = 5
	cand.ModuleID = ptr(2) // textual duplicate, different module
	if got := Compare(draft, cand); got != 0 {
		t.Fatalf("full location mismatch must zero the percent, got %d", got)
	}
}

func TestRankOrderingAndTieBreak(t *testing.T) {
	draft := draftFoie()
	dup1 := draftFoie()
	dup1.ID = 20
	dup2 := draftFoie()
	dup2.ID = 10
	weaker := draftFoie()
	weaker.ID = 1
	weaker.Question = "Quel est le role du foie dans l organisme humain et animal"

	pool := []PoolEntry{
		{SourceBank, dup1},
		{SourceBatch, dup2},
		{SourceBank, weaker},
	}
	matches := Rank(draft, pool, Options{Floor: 1})
	if len(matches) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(matches))
	}
	// Both exact duplicates score 100; the lower id wins the tie.
	if matches[0].Candidate.ID != 10 || matches[1].Candidate.ID != 20 {
		t.Fatalf("tie-break wrong: ids %d, %d", matches[0].Candidate.ID, matches[1].Candidate.ID)
	}
	if matches[0].Source != SourceBatch {
		t.Fatalf("provenance lost: %q", matches[0].Source)
	}
	if matches[2].Candidate.ID != 1 || matches[2].Percent >= 100 {
		t.Fatalf("weaker match misplaced: %+v", matches[2])
	}
}

func TestRankHonorsLimitAndFloor(t *testing.T) {
	draft := draftFoie()
	var pool []PoolEntry
	for i := int64(1); i <= 10; i++ {
		c := draftFoie()
		c.ID = i
		pool = append(pool, PoolEntry{SourceBank, c})
	}
	matches := Rank(draft, pool, Options{Limit: 3})
	if len(matches) != 3 {
		t.Fatalf("limit ignored, got %d matches", len(matches))
	}
	matches = Rank(draft, pool, Options{Floor: 101})
	if len(matches) != 0 {
		t.Fatalf("floor ignored, got %d matches", len(matches))
	}
}

func TestBandFor(t *testing.T) {
	cases := map[int]Band{100: BandHigh, 90: BandHigh, 89: BandReview, 70: BandReview, 69: BandWeak, 50: BandWeak, 49: BandNone, 0: BandNone}
	for p, want := range cases {
		if got := BandFor(p); got != want {
			t.Errorf("BandFor(%d) = %q, want %q", p, got, want)
		}
	}
}
