package enrollment

import (
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
)

// Enrollment statuses
const (
	StatusActive    = "Active"
	StatusCompleted = "Completed"
	StatusExpired   = "Expired"
	StatusCancelled = "Cancelled"
)

// Enrollment binds one student to one course with their progress record.
// Exactly one exists per (student, course) pair; cancellation is terminal.
type Enrollment struct {
	ID                  string    `json:"id"`
	StudentID           string    `json:"student_id"`
	CourseID            string    `json:"course_id"`
	Status              string    `json:"status"`
	Progress            int       `json:"progress"` // 0..100
	CompletedLectureIDs []string  `json:"completed_lecture_ids"`
	EnrolledAt          time.Time `json:"enrolled_at"`      // UTC
	LastAccessedAt      time.Time `json:"last_accessed_at"` // UTC
	UpdatedAt           time.Time `json:"updated_at"`       // UTC
}

// IsActive reports whether the enrollment still grants course access.
func (e Enrollment) IsActive() bool {
	return e.Status != StatusCancelled && e.Status != StatusExpired
}

func (e Enrollment) hasCompletedLecture(lectureID string) bool {
	for _, id := range e.CompletedLectureIDs {
		if id == lectureID {
			return true
		}
	}
	return false
}

// NewEnrollment contains information needed to enroll a student in a course.
type NewEnrollment struct {
	StudentID string `json:"student_id" validate:"required"`
	CourseID  string `json:"course_id" validate:"required"`
}

func (ne *NewEnrollment) Validate() error {
	ne.StudentID = core.CleanString(ne.StudentID)
	ne.CourseID = core.CleanString(ne.CourseID)
	return core.Validate.Struct(ne)
}

// ProgressUpdate carries either a manual progress value or a completed lecture id,
// never both: manual updates overwrite, lecture completions derive.
type ProgressUpdate struct {
	Progress           *int   `json:"progress"`
	CompletedLectureID string `json:"completed_lecture_id"`
}

var errProgressModesExclusive = errors.New("progress and completed_lecture_id are mutually exclusive")

func (pu *ProgressUpdate) Validate() error {
	pu.CompletedLectureID = core.CleanString(pu.CompletedLectureID)
	if pu.Progress != nil && pu.CompletedLectureID != "" {
		return core.NewValidationError(
			errProgressModesExclusive,
			core.FieldError{Field: "progress", Error: errProgressModesExclusive.Error()},
			core.FieldError{Field: "completed_lecture_id", Error: errProgressModesExclusive.Error()},
		)
	}
	return nil
}

// QueryFilter selects enrollments by student and/or course.
type QueryFilter struct {
	StudentID string
	CourseID  string
	Limit     int
}
