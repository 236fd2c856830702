// Package session persists finished quiz sessions and the per-question
// results backing attempt history and user statistics.
package session

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var ErrNotFound = errors.New("result not found")

type Result struct {
	ID               int64   `json:"id"`
	UserID           int64   `json:"user_id"`
	Score            float64 `json:"score"`
	Total            int     `json:"total"`
	Mode             string  `json:"mode"` // libre|examen
	ElapsedSeconds   int     `json:"elapsed_seconds"`
	CorrectionSystem string  `json:"correction_system"`
	TimeLimitSeconds *int    `json:"time_limit_seconds"`
	IsSaved          bool    `json:"is_saved"`
	SessionName      string  `json:"session_name"`
	CreatedAt        int64   `json:"created_at"`
}

// QuestionResult is one graded question inside a session.
type QuestionResult struct {
	QuestionID int64   `json:"question_id"`
	Selected   string  `json:"selected"` // "A,C"
	Score      float64 `json:"score"`
}

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Create stores a session and its per-question rows in one transaction.
func (s *Store) Create(ctx context.Context, r Result, questions []QuestionResult) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowContext(ctx, `INSERT INTO results
		(user_id, score, total, mode, elapsed_seconds, correction_system,
		 time_limit_seconds, is_saved, session_name, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING id`,
		r.UserID, r.Score, r.Total, r.Mode, r.ElapsedSeconds, r.CorrectionSystem,
		r.TimeLimitSeconds, r.IsSaved, r.SessionName, time.Now().Unix()).Scan(&id)
	if err != nil {
		return 0, err
	}
	for _, q := range questions {
		if _, err := tx.ExecContext(ctx, `INSERT INTO result_questions
			(result_id, question_id, selected, score) VALUES ($1,$2,$3,$4)
			ON CONFLICT (result_id, question_id) DO NOTHING`,
			id, q.QuestionID, q.Selected, q.Score); err != nil {
			return 0, err
		}
	}
	return id, tx.Commit()
}

func (s *Store) ListByUser(ctx context.Context, userID int64, limit int) ([]Result, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, user_id, score, total, mode,
		elapsed_seconds, correction_system, time_limit_seconds, is_saved, session_name, created_at
		FROM results WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Result{}
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.ID, &r.UserID, &r.Score, &r.Total, &r.Mode,
			&r.ElapsedSeconds, &r.CorrectionSystem, &r.TimeLimitSeconds,
			&r.IsSaved, &r.SessionName, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// UpdateMeta renames a session and/or toggles its saved flag. Only the
// owner may touch a result.
func (s *Store) UpdateMeta(ctx context.Context, id, userID int64, name *string, saved *bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE results SET
		session_name = COALESCE($1, session_name),
		is_saved = COALESCE($2, is_saved)
		WHERE id=$3 AND user_id=$4`, name, saved, id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Questions(ctx context.Context, resultID, userID int64) ([]QuestionResult, error) {
	var owner int64
	err := s.db.QueryRowContext(ctx, `SELECT user_id FROM results WHERE id=$1`, resultID).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && owner != userID) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT question_id, selected, score
		FROM result_questions WHERE result_id=$1 ORDER BY question_id`, resultID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []QuestionResult{}
	for rows.Next() {
		var q QuestionResult
		if err := rows.Scan(&q.QuestionID, &q.Selected, &q.Score); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// AttemptHistory lists a user's past scores on one question, most recent
// first, for the per-question history view.
func (s *Store) AttemptHistory(ctx context.Context, userID, questionID int64) ([]QuestionResult, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT rq.question_id, rq.selected, rq.score
		FROM result_questions rq
		JOIN results r ON r.id = rq.result_id
		WHERE r.user_id=$1 AND rq.question_id=$2
		ORDER BY r.created_at DESC`, userID, questionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []QuestionResult{}
	for rows.Next() {
		var q QuestionResult
		if err := rows.Scan(&q.QuestionID, &q.Selected, &q.Score); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// Stats summarizes a user's sessions.
type Stats struct {
	Sessions      int     `json:"sessions"`
	TotalScore    float64 `json:"total_score"`
	TotalMax      int     `json:"total_max"`
	AveragePct    float64 `json:"average_pct"`
	ElapsedTotal  int     `json:"elapsed_seconds_total"`
	LastSessionAt int64   `json:"last_session_at"`
}

func (s *Store) UserStats(ctx context.Context, userID int64) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*),
		COALESCE(SUM(score),0), COALESCE(SUM(total),0),
		COALESCE(SUM(elapsed_seconds),0), COALESCE(MAX(created_at),0)
		FROM results WHERE user_id=$1`, userID).
		Scan(&st.Sessions, &st.TotalScore, &st.TotalMax, &st.ElapsedTotal, &st.LastSessionAt)
	if err != nil {
		return Stats{}, err
	}
	if st.TotalMax > 0 {
		st.AveragePct = 100 * st.TotalScore / float64(st.TotalMax)
	}
	return st, nil
}
