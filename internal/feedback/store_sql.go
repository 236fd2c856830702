// Package feedback stores reader reactions to bank questions: flags
// raised for the moderation team and discussion comments.
package feedback

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"
)

var ErrNotFound = errors.New("feedback not found")

const (
	FlagOpen     = "open"
	FlagResolved = "resolved"
)

type Flag struct {
	ID         int64  `json:"id"`
	QuestionID int64  `json:"question_id"`
	UserID     int64  `json:"user_id"`
	Reason     string `json:"reason"`
	Status     string `json:"status"`
	CreatedAt  int64  `json:"created_at"`
}

type Comment struct {
	ID         int64  `json:"id"`
	QuestionID int64  `json:"question_id"`
	UserID     int64  `json:"user_id"`
	UserName   string `json:"user_name,omitempty"`
	Body       string `json:"body"`
	CreatedAt  int64  `json:"created_at"`
}

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) CreateFlag(ctx context.Context, questionID, userID int64, reason string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `INSERT INTO question_flags
		(question_id, user_id, reason, status, created_at)
		VALUES ($1,$2,$3,$4,$5) RETURNING id`,
		questionID, userID, reason, FlagOpen, time.Now().Unix()).Scan(&id)
	return id, err
}

// ListFlags returns flags in a given status, newest first. An empty
// status lists everything.
func (s *Store) ListFlags(ctx context.Context, status string, limit int) ([]Flag, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query := `SELECT id, question_id, user_id, reason, status, created_at
		FROM question_flags`
	args := []any{}
	if status != "" {
		query += ` WHERE status=$1`
		args = append(args, status)
	}
	args = append(args, limit)
	query += ` ORDER BY id DESC LIMIT $` + strconv.Itoa(len(args))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Flag{}
	for rows.Next() {
		var f Flag
		if err := rows.Scan(&f.ID, &f.QuestionID, &f.UserID, &f.Reason, &f.Status, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *Store) ResolveFlag(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE question_flags SET status=$1 WHERE id=$2 AND status=$3`,
		FlagResolved, id, FlagOpen)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) CreateComment(ctx context.Context, questionID, userID int64, body string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `INSERT INTO question_comments
		(question_id, user_id, body, created_at)
		VALUES ($1,$2,$3,$4) RETURNING id`,
		questionID, userID, body, time.Now().Unix()).Scan(&id)
	return id, err
}

// ListComments returns a question's comments oldest first, with author
// names joined in for display.
func (s *Store) ListComments(ctx context.Context, questionID int64) ([]Comment, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT c.id, c.question_id, c.user_id,
		COALESCE(u.name, ''), c.body, c.created_at
		FROM question_comments c
		LEFT JOIN users u ON u.id = c.user_id
		WHERE c.question_id=$1 ORDER BY c.id`, questionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Comment{}
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.QuestionID, &c.UserID, &c.UserName, &c.Body, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// DeleteComment removes one comment. Unless moderator is set, only the
// author's own comment can be removed.
func (s *Store) DeleteComment(ctx context.Context, id, userID int64, moderator bool) error {
	var res sql.Result
	var err error
	if moderator {
		res, err = s.db.ExecContext(ctx, `DELETE FROM question_comments WHERE id=$1`, id)
	} else {
		res, err = s.db.ExecContext(ctx,
			`DELETE FROM question_comments WHERE id=$1 AND user_id=$2`, id, userID)
	}
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
