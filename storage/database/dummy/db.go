package dummydb

import (
	"sync"

	"github.com/trezcool/shule/core/assignment"
	"github.com/trezcool/shule/core/attendance"
	"github.com/trezcool/shule/core/course"
	"github.com/trezcool/shule/core/enrollment"
	"github.com/trezcool/shule/core/submission"
	"github.com/trezcool/shule/core/user"
)

type (
	DB struct {
		user       *userTable
		course     *courseTable
		syllabus   *syllabusTable
		enrollment *enrollmentTable
		assignment *assignmentTable
		submission *submissionTable
		attendance *attendanceTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	courseTable struct {
		sync.RWMutex
		table map[string]*course.Course
	}

	syllabusTable struct {
		sync.RWMutex
		table map[string]*course.Syllabus
	}

	enrollmentTable struct {
		sync.RWMutex
		table map[string]*enrollment.Enrollment
	}

	assignmentTable struct {
		sync.RWMutex
		table map[string]*assignment.Assignment
	}

	submissionTable struct {
		sync.RWMutex
		table map[string]*submission.Submission
	}

	attendanceTable struct {
		sync.RWMutex
		table map[string]*attendance.Attendance
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:       &userTable{table: make(map[string]*user.User)},
		course:     &courseTable{table: make(map[string]*course.Course)},
		syllabus:   &syllabusTable{table: make(map[string]*course.Syllabus)},
		enrollment: &enrollmentTable{table: make(map[string]*enrollment.Enrollment)},
		assignment: &assignmentTable{table: make(map[string]*assignment.Assignment)},
		submission: &submissionTable{table: make(map[string]*submission.Submission)},
		attendance: &attendanceTable{table: make(map[string]*attendance.Attendance)},
	}
	return db, nil
}
