package submission

import (
	"time"

	"github.com/trezcool/shule/core"
)

// Submission statuses. A resubmission always moves the record back to Submitted,
// even when it was already Reviewed.
const (
	StatusSubmitted = "Submitted"
	StatusReviewed  = "Reviewed"
)

// Submission is the single per-(assignment, student) record of submitted work.
// Resubmissions mutate it in place; AttemptNumber counts them.
type Submission struct {
	ID            string    `json:"id"`
	AssignmentID  string    `json:"assignment_id"`
	StudentID     string    `json:"student_id"`
	CourseID      string    `json:"course_id"`
	Text          string    `json:"text"`
	FileRef       string    `json:"file_ref"`
	MarksObtained *int      `json:"marks_obtained"`
	Feedback      string    `json:"feedback"`
	Status        string    `json:"status"`
	IsLate        bool      `json:"is_late"`
	AttemptNumber int       `json:"attempt_number"`
	SubmittedAt   time.Time `json:"submitted_at"` // UTC
	UpdatedAt     time.Time `json:"updated_at"`   // UTC
}

func (s Submission) IsReviewed() bool { return s.Status == StatusReviewed }

// NewSubmission contains information needed to submit work for an assignment.
// At least one of Text and FileRef must be provided.
type NewSubmission struct {
	AssignmentID string `json:"assignment_id" validate:"required"`
	Text         string `json:"text" validate:"required_without=FileRef"`
	FileRef      string `json:"file_ref" validate:"required_without=Text"`
}

func (ns *NewSubmission) Validate() error {
	ns.AssignmentID = core.CleanString(ns.AssignmentID)
	ns.Text = core.CleanString(ns.Text)
	ns.FileRef = core.CleanString(ns.FileRef)
	return core.Validate.Struct(ns)
}

// Review carries a teacher's grading of a submission.
type Review struct {
	MarksObtained int    `json:"marks_obtained" validate:"min=0"`
	Feedback      string `json:"feedback"`
}

func (r *Review) Validate() error {
	r.Feedback = core.CleanString(r.Feedback)
	return core.Validate.Struct(r)
}

// QueryFilter selects submissions by assignment and/or student.
type QueryFilter struct {
	AssignmentID string
	StudentID    string
}

// AssignmentSubmissions is a teacher's view of all submissions for one assignment,
// with server-computed review progress.
type AssignmentSubmissions struct {
	Submissions   []Submission `json:"submissions"`
	TotalCount    int          `json:"total_count"`
	ReviewedCount int          `json:"reviewed_count"`
}
