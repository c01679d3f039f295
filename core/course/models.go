package course

import (
	"fmt"
	"time"

	"github.com/trezcool/shule/core"
)

// Lecture content types
const (
	ContentVideo      = "Video"
	ContentArticle    = "Article"
	ContentQuiz       = "Quiz"
	ContentAssignment = "Assignment"
)

type (
	Lecture struct {
		Title         string `json:"title" validate:"required"`
		ContentType   string `json:"content_type" validate:"omitempty,oneof=Video Article Quiz Assignment"`
		Duration      int    `json:"duration" validate:"omitempty,min=0"` // minutes
		ContentURL    string `json:"content_url"`
		IsFreePreview bool   `json:"is_free_preview"`
	}

	Module struct {
		Title       string    `json:"title" validate:"required"`
		Description string    `json:"description"`
		Duration    string    `json:"duration"` // e.g. "2 weeks"
		Lectures    []Lecture `json:"lectures" validate:"omitempty,dive"`
	}

	// Syllabus is the course's content outline: one per course.
	Syllabus struct {
		ID               string    `json:"id"`
		CourseID         string    `json:"course_id"`
		Title            string    `json:"title"`
		Modules          []Module  `json:"modules"`
		LearningOutcomes []string  `json:"learning_outcomes"`
		CreatedAt        time.Time `json:"created_at"` // UTC
		UpdatedAt        time.Time `json:"updated_at"` // UTC
	}

	Course struct {
		ID          string    `json:"id"`
		Title       string    `json:"title"`
		Description string    `json:"description"`
		Level       string    `json:"level"`
		Duration    string    `json:"duration"`
		TeacherIDs  []string  `json:"teacher_ids"`
		// EnrollmentCount is recomputed from the enrollment ledger on read, never stored.
		EnrollmentCount int       `json:"enrollment_count"`
		CreatedAt       time.Time `json:"created_at"` // UTC
		UpdatedAt       time.Time `json:"updated_at"` // UTC
	}
)

// LectureID returns the stable identifier of the lecture at (module, lecture) position.
// The "m<i>-l<j>" form matches the ids the frontend reports on lesson completion.
func LectureID(moduleIdx, lectureIdx int) string {
	return fmt.Sprintf("m%d-l%d", moduleIdx, lectureIdx)
}

// LectureIDs yields the full set of valid lecture ids in the syllabus.
func (s Syllabus) LectureIDs() []string {
	var ids []string
	for i, mod := range s.Modules {
		for j := range mod.Lectures {
			ids = append(ids, LectureID(i, j))
		}
	}
	return ids
}

// LectureCount is the total number of lectures across all modules.
func (s Syllabus) LectureCount() int {
	var n int
	for _, mod := range s.Modules {
		n += len(mod.Lectures)
	}
	return n
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description"`
	Level       string   `json:"level"`
	Duration    string   `json:"duration"`
	TeacherIDs  []string `json:"teacher_ids"`
}

func (nc *NewCourse) Validate() error {
	nc.Title = core.CleanString(nc.Title)
	nc.Description = core.CleanString(nc.Description)
	return core.Validate.Struct(nc)
}

// NewSyllabus contains information needed to create a course's Syllabus.
type NewSyllabus struct {
	Title            string   `json:"title" validate:"required"`
	Modules          []Module `json:"modules" validate:"omitempty,dive"`
	LearningOutcomes []string `json:"learning_outcomes"`
}

func (ns *NewSyllabus) Validate() error {
	ns.Title = core.CleanString(ns.Title)
	return core.Validate.Struct(ns)
}

// NewLesson adds a single lecture to an existing syllabus module.
type NewLesson struct {
	Title         string `json:"title" validate:"required"`
	ContentType   string `json:"content_type" validate:"omitempty,oneof=Video Article Quiz Assignment"`
	Duration      int    `json:"duration" validate:"omitempty,min=0"`
	ContentURL    string `json:"content_url"`
	IsFreePreview bool   `json:"is_free_preview"`
}

func (nl *NewLesson) Validate() error {
	nl.Title = core.CleanString(nl.Title)
	if nl.ContentType == "" {
		nl.ContentType = ContentVideo
	}
	return core.Validate.Struct(nl)
}

// SetTeachers replaces the set of teachers assigned to a course.
type SetTeachers struct {
	TeacherIDs []string `json:"teacher_ids" validate:"required"`
}

func (st SetTeachers) Validate() error { return core.Validate.Struct(st) }
