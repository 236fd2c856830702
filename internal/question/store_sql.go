package question

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/galien-mouassim/galien/internal/similarity"
	"github.com/galien-mouassim/galien/internal/textnorm"
)

var ErrNotFound = errors.New("question not found")

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

const questionCols = `id, question, option_a, option_b, option_c, option_d, option_e,
	correct_options, explanation, module_id, course_id, source_id, status, created_by, created_at`

func scanQuestion(row interface{ Scan(...any) error }) (Question, error) {
	var q Question
	err := row.Scan(&q.ID, &q.Text, &q.OptionA, &q.OptionB, &q.OptionC, &q.OptionD, &q.OptionE,
		&q.CorrectOptions, &q.Explanation, &q.ModuleID, &q.CourseID, &q.SourceID,
		&q.Status, &q.CreatedBy, &q.CreatedAt)
	return q, err
}

func (s *Store) Insert(ctx context.Context, q Question) (int64, error) {
	if q.Status == "" {
		q.Status = StatusApproved
	}
	var id int64
	err := s.db.QueryRowContext(ctx, `INSERT INTO questions
		(question, option_a, option_b, option_c, option_d, option_e,
		 correct_options, explanation, module_id, course_id, source_id, status, created_by, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		RETURNING id`,
		q.Text, q.OptionA, q.OptionB, q.OptionC, q.OptionD, q.OptionE,
		q.CorrectOptions, q.Explanation, q.ModuleID, q.CourseID, q.SourceID,
		q.Status, q.CreatedBy, time.Now().Unix()).Scan(&id)
	return id, err
}

func (s *Store) Update(ctx context.Context, q Question) error {
	res, err := s.db.ExecContext(ctx, `UPDATE questions SET
		question=$1, option_a=$2, option_b=$3, option_c=$4, option_d=$5, option_e=$6,
		correct_options=$7, explanation=$8, module_id=$9, course_id=$10, source_id=$11
		WHERE id=$12`,
		q.Text, q.OptionA, q.OptionB, q.OptionC, q.OptionD, q.OptionE,
		q.CorrectOptions, q.Explanation, q.ModuleID, q.CourseID, q.SourceID, q.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM questions WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id int64) (Question, error) {
	q, err := scanQuestion(s.db.QueryRowContext(ctx,
		`SELECT `+questionCols+` FROM questions WHERE id=$1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Question{}, ErrNotFound
	}
	return q, err
}

// filterSQL renders the WHERE clause for f and appends its arguments.
func filterSQL(f Filter, args *[]any) string {
	var conds []string
	add := func(col string, ids []int64) {
		if len(ids) == 0 {
			return
		}
		ph := make([]string, len(ids))
		for i, id := range ids {
			*args = append(*args, id)
			ph[i] = fmt.Sprintf("$%d", len(*args))
		}
		conds = append(conds, fmt.Sprintf("%s IN (%s)", col, strings.Join(ph, ",")))
	}
	add("module_id", f.ModuleIDs)
	add("course_id", f.CourseIDs)
	add("source_id", f.SourceIDs)
	if f.Status != "" {
		*args = append(*args, f.Status)
		conds = append(conds, fmt.Sprintf("status=$%d", len(*args)))
	}
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

func (s *Store) List(ctx context.Context, f Filter) ([]Question, error) {
	if f.PageSize <= 0 || f.PageSize > 200 {
		f.PageSize = 50
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	var args []any
	query := `SELECT ` + questionCols + ` FROM questions` + filterSQL(f, &args)
	args = append(args, f.PageSize, (f.Page-1)*f.PageSize)
	query += fmt.Sprintf(" ORDER BY id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Question{}
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *Store) Count(ctx context.Context, f Filter) (int, error) {
	var args []any
	query := `SELECT COUNT(*) FROM questions` + filterSQL(f, &args)
	var n int
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&n)
	return n, err
}

// CorrectOptions loads the answer keys for a submission's question ids.
// Unknown ids are simply absent from the map.
func (s *Store) CorrectOptions(ctx context.Context, ids []int64) (map[int64]string, error) {
	out := make(map[int64]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	ph := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		ph[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, correct_options FROM questions WHERE id IN (`+strings.Join(ph, ",")+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		var correct string
		if err := rows.Scan(&id, &correct); err != nil {
			return nil, err
		}
		out[id] = correct
	}
	return out, rows.Err()
}

// CandidatePool loads the comparison pool for a duplicate check. Only
// approved questions compete; as in the interactive flow, the pool is
// pre-narrowed to the draft's classification (when given) plus a LIKE
// on the draft's first normalized token, then hard-capped.
func (s *Store) CandidatePool(ctx context.Context, draft similarity.Candidate, excludeID int64) ([]similarity.PoolEntry, error) {
	args := []any{StatusApproved}
	conds := []string{"status=$1"}
	addEq := func(col string, v *int64) {
		if v == nil {
			return
		}
		args = append(args, *v)
		conds = append(conds, fmt.Sprintf("%s=$%d", col, len(args)))
	}
	if excludeID > 0 {
		args = append(args, excludeID)
		conds = append(conds, fmt.Sprintf("id<>$%d", len(args)))
	}
	addEq("module_id", draft.ModuleID)
	addEq("course_id", draft.CourseID)
	addEq("source_id", draft.SourceID)
	if toks := textnorm.Tokenize(draft.Question); len(toks) > 0 {
		args = append(args, "%"+toks[0]+"%")
		conds = append(conds, fmt.Sprintf("LOWER(question) LIKE $%d", len(args)))
	}
	query := `SELECT id, question, option_a, option_b, option_c, option_d, option_e,
		correct_options, module_id, course_id, source_id FROM questions
		WHERE ` + strings.Join(conds, " AND ") + ` ORDER BY id DESC LIMIT 1500`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var pool []similarity.PoolEntry
	for rows.Next() {
		var c similarity.Candidate
		if err := rows.Scan(&c.ID, &c.Question,
			&c.Options[0], &c.Options[1], &c.Options[2], &c.Options[3], &c.Options[4],
			&c.Correction, &c.ModuleID, &c.CourseID, &c.SourceID); err != nil {
			return nil, err
		}
		pool = append(pool, similarity.PoolEntry{Source: similarity.SourceBank, Candidate: c})
	}
	return pool, rows.Err()
}

// FullPool loads every approved question as a similarity pool, used by the
// bulk import scan where a per-row SQL filter would be wasteful.
func (s *Store) FullPool(ctx context.Context) ([]similarity.PoolEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, question, option_a, option_b, option_c,
		option_d, option_e, correct_options, module_id, course_id, source_id
		FROM questions WHERE status=$1`, StatusApproved)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var pool []similarity.PoolEntry
	for rows.Next() {
		var c similarity.Candidate
		if err := rows.Scan(&c.ID, &c.Question,
			&c.Options[0], &c.Options[1], &c.Options[2], &c.Options[3], &c.Options[4],
			&c.Correction, &c.ModuleID, &c.CourseID, &c.SourceID); err != nil {
			return nil, err
		}
		pool = append(pool, similarity.PoolEntry{Source: similarity.SourceBank, Candidate: c})
	}
	return pool, rows.Err()
}

// --- moderation queue ---

func (s *Store) ListPending(ctx context.Context) ([]Question, error) {
	return s.List(ctx, Filter{Status: StatusPending, PageSize: 200})
}

func (s *Store) SetStatus(ctx context.Context, id int64, status string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE questions SET status=$1 WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
