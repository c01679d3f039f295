package attendance

import (
	"time"

	"github.com/trezcool/shule/core"
)

// Per-student attendance statuses. Anything other than Present counts against the
// student's attendance percentage.
const (
	StatusPresent = "Present"
	StatusAbsent  = "Absent"
	StatusLate    = "Late"
	StatusExcused = "Excused"
)

type (
	// Record is one student's status within a session roster.
	Record struct {
		StudentID string `json:"student_id" validate:"required"`
		Status    string `json:"status" validate:"required,oneof=Present Absent Late Excused"`
	}

	// Attendance is one calendar day's roster for a course. Exactly one exists per
	// (course, day); re-marking the same day replaces Records and Notes in place.
	Attendance struct {
		ID        string    `json:"id"`
		CourseID  string    `json:"course_id"`
		Date      time.Time `json:"date"` // truncated to UTC day
		Records   []Record  `json:"records"`
		MarkedBy  string    `json:"marked_by"` // teacher id
		Notes     string    `json:"notes"`
		CreatedAt time.Time `json:"created_at"` // UTC
		UpdatedAt time.Time `json:"updated_at"` // UTC
	}
)

func (a Attendance) statusOf(studentID string) (string, bool) {
	for _, rec := range a.Records {
		if rec.StudentID == studentID {
			return rec.Status, true
		}
	}
	return "", false
}

// NewAttendance contains information needed to mark a day's attendance for a course.
type NewAttendance struct {
	CourseID string    `json:"course_id" validate:"required"`
	Date     time.Time `json:"date" validate:"required"`
	Records  []Record  `json:"records" validate:"required,min=1,dive"`
	Notes    string    `json:"notes"`
}

func (na *NewAttendance) Validate() error {
	na.CourseID = core.CleanString(na.CourseID)
	na.Notes = core.CleanString(na.Notes)
	return core.Validate.Struct(na)
}

type (
	// QueryFilter selects attendance rows by course and optional date range.
	QueryFilter struct {
		CourseID string
		From     *time.Time
		To       *time.Time
	}

	// CourseAttendance is a course's session history, newest day first.
	CourseAttendance struct {
		Sessions  []Attendance `json:"sessions"`
		TotalDays int          `json:"total_days"`
	}

	// CourseStats aggregates one student's attendance within one course.
	CourseStats struct {
		CourseID    string `json:"course_id"`
		TotalDays   int    `json:"total_days"`
		PresentDays int    `json:"present_days"`
		AbsentDays  int    `json:"absent_days"`
		Percentage  int    `json:"percentage"`
	}

	// StudentAttendance is a student's per-course stats plus the overall rollup.
	StudentAttendance struct {
		PerCourse []CourseStats `json:"per_course"`
		Overall   CourseStats   `json:"overall"`
	}
)
