// Package audit appends moderation and import events to an append-only
// log so admin actions on the question bank can be traced.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

const (
	EventQuestionApproved = "QuestionApproved"
	EventQuestionRejected = "QuestionRejected"
	EventQuestionDeleted  = "QuestionDeleted"
	EventImportCompleted  = "ImportCompleted"
	EventFlagResolved     = "FlagResolved"
)

type Event struct {
	Offset    int64
	Type      string
	Key       string // natural key, e.g. question id
	DataJSON  string
	CreatedAt int64
}

type Log struct{ db *sql.DB }

func NewLog(db *sql.DB) *Log { return &Log{db: db} }

// Record appends one event. payload is marshalled to JSON; a nil payload
// stores an empty object. Audit failures are reported but callers treat
// them as non-fatal.
func (l *Log) Record(ctx context.Context, typ, key string, payload any) error {
	data := "{}"
	if payload != nil {
		if buf, err := json.Marshal(payload); err == nil {
			data = string(buf)
		}
	}
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO event_log (typ, key, data, created_at) VALUES ($1,$2,$3,$4)`,
		typ, key, data, time.Now().Unix())
	return err
}

// Recent returns the newest events, for the admin activity view.
func (l *Log) Recent(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT "offset", typ, key, data, created_at FROM event_log
		 ORDER BY "offset" DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Event{}
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.Offset, &e.Type, &e.Key, &e.DataJSON, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
