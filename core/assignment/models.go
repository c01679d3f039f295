package assignment

import (
	"time"

	"github.com/trezcool/shule/core"
)

// Assignment statuses. Publishing is a one-way visibility gate: students only ever see
// Published assignments.
const (
	StatusDraft     = "Draft"
	StatusPublished = "Published"
)

type (
	Attachment struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	}

	Assignment struct {
		ID            string       `json:"id"`
		CourseID      string       `json:"course_id"`
		Title         string       `json:"title"`
		Description   string       `json:"description"`
		DueAt         time.Time    `json:"due_at"` // UTC
		TotalMarks    int          `json:"total_marks"`
		CreatedBy     string       `json:"created_by"` // teacher id
		Status        string       `json:"status"`
		IsLateAllowed bool         `json:"is_late_allowed"`
		MaxAttempts   int          `json:"max_attempts"`
		Attachments   []Attachment `json:"attachments"`
		CreatedAt     time.Time    `json:"created_at"` // UTC
		UpdatedAt     time.Time    `json:"updated_at"` // UTC
	}
)

func (a Assignment) IsPublished() bool { return a.Status == StatusPublished }

// NewAssignment contains information needed to create a new Assignment.
type NewAssignment struct {
	CourseID      string       `json:"course_id" validate:"required"`
	Title         string       `json:"title" validate:"required"`
	Description   string       `json:"description" validate:"required"`
	DueAt         time.Time    `json:"due_at" validate:"required"`
	TotalMarks    int          `json:"total_marks" validate:"required,min=1"`
	IsLateAllowed bool         `json:"is_late_allowed"`
	MaxAttempts   int          `json:"max_attempts" validate:"omitempty,min=1"`
	Attachments   []Attachment `json:"attachments"`
}

func (na *NewAssignment) Validate() error {
	na.Title = core.CleanString(na.Title)
	na.Description = core.CleanString(na.Description)
	if na.MaxAttempts == 0 {
		na.MaxAttempts = 1
	}
	return core.Validate.Struct(na)
}

// UpdateAssignment defines what may be modified on an existing Assignment.
// Nil/zero fields are left untouched.
type UpdateAssignment struct {
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	DueAt         *time.Time   `json:"due_at"`
	TotalMarks    *int         `json:"total_marks" validate:"omitempty,min=1"`
	IsLateAllowed *bool        `json:"is_late_allowed"`
	MaxAttempts   *int         `json:"max_attempts" validate:"omitempty,min=1"`
	Attachments   []Attachment `json:"attachments"`
}

func (ua *UpdateAssignment) Validate() error {
	ua.Title = core.CleanString(ua.Title)
	ua.Description = core.CleanString(ua.Description)
	return core.Validate.Struct(ua)
}

// QueryFilter selects assignments by course and/or author.
type QueryFilter struct {
	CourseID      string
	CreatedBy     string
	PublishedOnly bool
}
