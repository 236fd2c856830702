package feedback_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/galien-mouassim/galien/internal/db"
	"github.com/galien-mouassim/galien/internal/feedback"
)

func newStore(t *testing.T) (*feedback.Store, *sql.DB) {
	t.Helper()
	dbh, err := db.Open(context.Background(), db.DriverSQLite, "file:"+t.TempDir()+"/feedback.db")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { dbh.Close() })
	return feedback.NewStore(dbh), dbh
}

func seedUser(t *testing.T, dbh *sql.DB, email, name string) int64 {
	t.Helper()
	var id int64
	err := dbh.QueryRow(`INSERT INTO users (email, password, name, created_at)
		VALUES ($1,'x',$2,$3) RETURNING id`, email, name, time.Now().Unix()).Scan(&id)
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return id
}

func seedBankQuestion(t *testing.T, dbh *sql.DB) int64 {
	t.Helper()
	var id int64
	err := dbh.QueryRow(`INSERT INTO questions (question, correct_options, created_at)
		VALUES ('Quel est le role du foie', 'A', $1) RETURNING id`, time.Now().Unix()).Scan(&id)
	if err != nil {
		t.Fatalf("seed question: %v", err)
	}
	return id
}

func TestFlagLifecycle(t *testing.T) {
	s, dbh := newStore(t)
	ctx := context.Background()
	uid := seedUser(t, dbh, "a@b.c", "Alice")
	qid := seedBankQuestion(t, dbh)

	id, err := s.CreateFlag(ctx, qid, uid, "reponse incorrecte")
	if err != nil {
		t.Fatalf("create flag: %v", err)
	}

	open, err := s.ListFlags(ctx, feedback.FlagOpen, 0)
	if err != nil || len(open) != 1 {
		t.Fatalf("open flags = %v, %v", open, err)
	}
	if open[0].Reason != "reponse incorrecte" || open[0].QuestionID != qid {
		t.Fatalf("flag content wrong: %+v", open[0])
	}

	if err := s.ResolveFlag(ctx, id); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if err := s.ResolveFlag(ctx, id); err != feedback.ErrNotFound {
		t.Fatalf("double resolve should be ErrNotFound, got %v", err)
	}

	open, _ = s.ListFlags(ctx, feedback.FlagOpen, 0)
	if len(open) != 0 {
		t.Fatalf("resolved flag still open: %v", open)
	}
	all, _ := s.ListFlags(ctx, "", 0)
	if len(all) != 1 || all[0].Status != feedback.FlagResolved {
		t.Fatalf("flag history lost: %v", all)
	}
}

func TestCommentsOwnership(t *testing.T) {
	s, dbh := newStore(t)
	ctx := context.Background()
	alice := seedUser(t, dbh, "alice@b.c", "Alice")
	bob := seedUser(t, dbh, "bob@b.c", "Bob")
	qid := seedBankQuestion(t, dbh)

	id, err := s.CreateComment(ctx, qid, alice, "la reponse B me semble fausse")
	if err != nil {
		t.Fatalf("create comment: %v", err)
	}

	list, err := s.ListComments(ctx, qid)
	if err != nil || len(list) != 1 {
		t.Fatalf("list = %v, %v", list, err)
	}
	if list[0].UserName != "Alice" || list[0].Body == "" {
		t.Fatalf("author join wrong: %+v", list[0])
	}

	// another user cannot remove it
	if err := s.DeleteComment(ctx, id, bob, false); err != feedback.ErrNotFound {
		t.Fatalf("foreign delete should be ErrNotFound, got %v", err)
	}
	// a moderator can
	if err := s.DeleteComment(ctx, id, bob, true); err != nil {
		t.Fatalf("moderator delete: %v", err)
	}
	list, _ = s.ListComments(ctx, qid)
	if len(list) != 0 {
		t.Fatalf("comment not deleted: %v", list)
	}
}

func TestOwnerDeletesOwnComment(t *testing.T) {
	s, dbh := newStore(t)
	ctx := context.Background()
	alice := seedUser(t, dbh, "alice@b.c", "Alice")
	qid := seedBankQuestion(t, dbh)

	id, _ := s.CreateComment(ctx, qid, alice, "oubliez ma remarque")
	if err := s.DeleteComment(ctx, id, alice, false); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
}
