package question_test

import (
	"context"
	"testing"

	"github.com/galien-mouassim/galien/internal/db"
	"github.com/galien-mouassim/galien/internal/question"
)

func newStore(t *testing.T) *question.Store {
	t.Helper()
	ctx := context.Background()
	dbh, err := db.Open(ctx, db.DriverSQLite, "file:"+t.TempDir()+"/test.db")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { dbh.Close() })
	return question.NewStore(dbh)
}

func seedModule(t *testing.T, s *question.Store, name string) int64 {
	t.Helper()
	m, err := s.CreateModule(context.Background(), name)
	if err != nil {
		t.Fatalf("create module: %v", err)
	}
	return m.ID
}

func TestInsertGetUpdateDelete(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	mod := seedModule(t, s, "Biochimie")
	q := question.Question{
		Text:           "Quel est le role du foie",
		OptionA:        "La digestion",
		OptionB:        "La detoxification",
		CorrectOptions: "B",
		ModuleID:       &mod,
	}
	id, err := s.Insert(ctx, q)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Text != q.Text || got.CorrectOptions != "B" || got.Status != question.StatusApproved {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.ModuleID == nil || *got.ModuleID != mod {
		t.Fatalf("module ref lost: %+v", got.ModuleID)
	}

	got.Text = "Quel est le role du foie dans la digestion"
	if err := s.Update(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}
	got2, _ := s.Get(ctx, id)
	if got2.Text != got.Text {
		t.Fatalf("update not persisted")
	}

	if err := s.Delete(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, id); err != question.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Delete(ctx, id); err != question.ErrNotFound {
		t.Fatalf("double delete should be ErrNotFound, got %v", err)
	}
}

func TestListFiltersAndCount(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	bio := seedModule(t, s, "Biochimie")
	ana := seedModule(t, s, "Anatomie")
	for i, mod := range []int64{bio, bio, ana} {
		m := mod
		_, err := s.Insert(ctx, question.Question{
			Text:           "Question numero " + string(rune('1'+i)),
			OptionA:        "Oui",
			CorrectOptions: "A",
			ModuleID:       &m,
		})
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	qs, err := s.List(ctx, question.Filter{ModuleIDs: []int64{bio}})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(qs) != 2 {
		t.Fatalf("expected 2 questions for module, got %d", len(qs))
	}
	n, err := s.Count(ctx, question.Filter{ModuleIDs: []int64{ana}})
	if err != nil || n != 1 {
		t.Fatalf("count = %d, %v", n, err)
	}
	n, _ = s.Count(ctx, question.Filter{})
	if n != 3 {
		t.Fatalf("unfiltered count = %d", n)
	}
}

func TestCandidatePoolNarrowing(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	mod := seedModule(t, s, "Physiologie")
	idFoie, _ := s.Insert(ctx, question.Question{
		Text: "Quel est le role du foie", OptionA: "x", CorrectOptions: "A", ModuleID: &mod,
	})
	_, _ = s.Insert(ctx, question.Question{
		Text: "Citez une valence du carbone", OptionA: "x", CorrectOptions: "A", ModuleID: &mod,
	})

	draft := question.Question{Text: "quel est le role du rein", ModuleID: &mod}.Candidate()
	pool, err := s.CandidatePool(ctx, draft, 0)
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	// first-token LIKE keeps only questions containing "quel"
	if len(pool) != 1 || pool[0].Candidate.ID != idFoie {
		t.Fatalf("pool narrowing wrong: %+v", pool)
	}

	pool, _ = s.CandidatePool(ctx, draft, idFoie)
	if len(pool) != 0 {
		t.Fatalf("exclude id ignored: %+v", pool)
	}
}

func TestCandidatePoolSkipsUnapproved(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	idLive, _ := s.Insert(ctx, question.Question{
		Text: "Quel est le role du foie", OptionA: "x", CorrectOptions: "A",
	})
	idRejected, _ := s.Insert(ctx, question.Question{
		Text: "Quel est le role du rein", OptionA: "x", CorrectOptions: "A",
	})
	_, _ = s.Insert(ctx, question.Question{
		Text: "Quel organe filtre le sang", OptionA: "x", CorrectOptions: "A",
		Status: question.StatusPending,
	})
	if err := s.SetStatus(ctx, idRejected, question.StatusRejected); err != nil {
		t.Fatalf("reject: %v", err)
	}

	pool, err := s.CandidatePool(ctx, question.Question{Text: "quel est le role du poumon"}.Candidate(), 0)
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	if len(pool) != 1 || pool[0].Candidate.ID != idLive {
		t.Fatalf("rejected or pending rows leaked into pool: %+v", pool)
	}
}

func TestModerationQueue(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	id, _ := s.Insert(ctx, question.Question{
		Text: "En attente", OptionA: "x", CorrectOptions: "A", Status: question.StatusPending,
	})
	pending, err := s.ListPending(ctx)
	if err != nil || len(pending) != 1 {
		t.Fatalf("pending = %v, %v", pending, err)
	}
	if err := s.SetStatus(ctx, id, question.StatusApproved); err != nil {
		t.Fatalf("approve: %v", err)
	}
	pending, _ = s.ListPending(ctx)
	if len(pending) != 0 {
		t.Fatalf("queue not drained: %v", pending)
	}
	// approved question now visible in the student listing
	n, _ := s.Count(ctx, question.Filter{Status: question.StatusApproved})
	if n != 1 {
		t.Fatalf("approved count = %d", n)
	}
}
