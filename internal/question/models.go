package question

import (
	"github.com/galien-mouassim/galien/internal/similarity"
)

// Moderation states. Worker-authored questions start pending and only
// reach students once an admin approves them.
const (
	StatusApproved = "approved"
	StatusPending  = "pending"
	StatusRejected = "rejected"
)

type Question struct {
	ID             int64  `json:"id"`
	Text           string `json:"question"`
	OptionA        string `json:"option_a"`
	OptionB        string `json:"option_b"`
	OptionC        string `json:"option_c"`
	OptionD        string `json:"option_d"`
	OptionE        string `json:"option_e"`
	CorrectOptions string `json:"correct_options"` // "A,C"
	Explanation    string `json:"explanation,omitempty"`
	ModuleID       *int64 `json:"module_id"`
	CourseID       *int64 `json:"course_id"`
	SourceID       *int64 `json:"source_id"`
	Status         string `json:"status,omitempty"`
	CreatedBy      *int64 `json:"created_by,omitempty"`
	CreatedAt      int64  `json:"created_at,omitempty"`
}

// Options returns the five option texts in order A..E.
func (q Question) Options() [5]string {
	return [5]string{q.OptionA, q.OptionB, q.OptionC, q.OptionD, q.OptionE}
}

// Candidate adapts a persisted question to the similarity engine's shape.
func (q Question) Candidate() similarity.Candidate {
	return similarity.Candidate{
		ID:         q.ID,
		Question:   q.Text,
		Options:    q.Options(),
		Correction: q.CorrectOptions,
		ModuleID:   q.ModuleID,
		CourseID:   q.CourseID,
		SourceID:   q.SourceID,
	}
}

type Module struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Course struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	ModuleID *int64 `json:"module_id"`
}

type Source struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Filter narrows question listings. Zero values mean "no constraint".
type Filter struct {
	ModuleIDs []int64
	CourseIDs []int64
	SourceIDs []int64
	Status    string
	Page      int
	PageSize  int
}
