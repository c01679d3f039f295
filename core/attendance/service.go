package attendance

import (
	"context"
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
)

var (
	// errors
	ErrNotFound      = errors.New("attendance record not found")
	ErrNotAssigned   = errors.New("you are not assigned to this course")
	ErrAlreadyMarked = errors.New("attendance is already marked for this date")
)

type (
	Repository interface {
		// CreateAttendance fails with ErrAlreadyMarked when a row already exists for
		// the (course, date) pair; the store's uniqueness constraint is the arbiter
		// under concurrent marks.
		CreateAttendance(ctx context.Context, att Attendance) (Attendance, error)
		GetAttendance(ctx context.Context, id string) (Attendance, error)
		GetAttendanceByCourseAndDate(ctx context.Context, courseID string, date time.Time) (Attendance, error)
		// QueryAttendance returns rows sorted by date descending.
		QueryAttendance(ctx context.Context, filter QueryFilter) ([]Attendance, error)
		// QueryAttendanceByStudent returns all rows whose roster contains the student.
		QueryAttendanceByStudent(ctx context.Context, studentID string) ([]Attendance, error)
		UpdateAttendance(ctx context.Context, att Attendance) (Attendance, error)
	}

	// TeacherRoster reports course assignments of teachers; implemented by the course
	// service.
	TeacherRoster interface {
		IsTeacherAssigned(ctx context.Context, teacherID, courseID string) (bool, error)
	}

	Service struct {
		repo   Repository
		roster TeacherRoster
	}
)

func NewService(repo Repository, roster TeacherRoster) *Service {
	return &Service{repo: repo, roster: roster}
}

// Mark upserts the day's roster for a course. Marking an already-marked day replaces
// its records and notes rather than failing; a create that loses a duplicate-key race
// falls back to updating the winner's row.
func (svc *Service) Mark(ctx context.Context, teacherID string, na NewAttendance) (Attendance, error) {
	assigned, err := svc.roster.IsTeacherAssigned(ctx, teacherID, na.CourseID)
	if err != nil {
		return Attendance{}, errors.Wrap(err, "checking course assignment")
	}
	if !assigned {
		return Attendance{}, ErrNotAssigned
	}

	now := time.Now().UTC()
	date := core.TruncateToDay(na.Date)

	existing, err := svc.repo.GetAttendanceByCourseAndDate(ctx, na.CourseID, date)
	if err != nil {
		if errors.Cause(err) != ErrNotFound {
			return Attendance{}, err
		}
		att := Attendance{
			CourseID:  na.CourseID,
			Date:      date,
			Records:   na.Records,
			MarkedBy:  teacherID,
			Notes:     na.Notes,
			CreatedAt: now,
			UpdatedAt: now,
		}
		att, err = svc.repo.CreateAttendance(ctx, att)
		if errors.Cause(err) == ErrAlreadyMarked {
			// lost the race; the winner's row is the one to mutate
			existing, err = svc.repo.GetAttendanceByCourseAndDate(ctx, na.CourseID, date)
			if err != nil {
				return Attendance{}, err
			}
			return svc.replaceRoster(ctx, existing, teacherID, na, now)
		}
		return att, err
	}

	return svc.replaceRoster(ctx, existing, teacherID, na, now)
}

func (svc *Service) replaceRoster(ctx context.Context, att Attendance, teacherID string, na NewAttendance, now time.Time) (Attendance, error) {
	att.Records = na.Records
	att.Notes = na.Notes
	att.MarkedBy = teacherID
	att.UpdatedAt = now
	return svc.repo.UpdateAttendance(ctx, att)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Attendance, error) {
	return svc.repo.GetAttendance(ctx, id)
}

// Exists reports whether the day's attendance is already marked for the course.
func (svc *Service) Exists(ctx context.Context, courseID string, date time.Time) (bool, error) {
	_, err := svc.repo.GetAttendanceByCourseAndDate(ctx, courseID, core.TruncateToDay(date))
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// GetForCourse returns the course's session history, newest day first, optionally
// bounded to a date range.
func (svc *Service) GetForCourse(ctx context.Context, courseID string, from, to *time.Time) (CourseAttendance, error) {
	sessions, err := svc.repo.QueryAttendance(ctx, QueryFilter{CourseID: courseID, From: from, To: to})
	if err != nil {
		return CourseAttendance{}, err
	}
	return CourseAttendance{Sessions: sessions, TotalDays: len(sessions)}, nil
}

// GetForStudent aggregates the student's attendance per course plus an overall rollup.
// Only Present counts toward the percentage; a course with no sessions scores 0.
func (svc *Service) GetForStudent(ctx context.Context, studentID string) (StudentAttendance, error) {
	rows, err := svc.repo.QueryAttendanceByStudent(ctx, studentID)
	if err != nil {
		return StudentAttendance{}, err
	}

	byCourse := make(map[string]*CourseStats)
	var order []string
	for _, att := range rows {
		status, found := att.statusOf(studentID)
		if !found {
			continue
		}
		stats, ok := byCourse[att.CourseID]
		if !ok {
			stats = &CourseStats{CourseID: att.CourseID}
			byCourse[att.CourseID] = stats
			order = append(order, att.CourseID)
		}
		stats.TotalDays++
		if status == StatusPresent {
			stats.PresentDays++
		} else {
			stats.AbsentDays++
		}
	}

	res := StudentAttendance{PerCourse: make([]CourseStats, 0, len(order))}
	for _, courseID := range order {
		stats := byCourse[courseID]
		stats.Percentage = percentage(stats.PresentDays, stats.TotalDays)
		res.PerCourse = append(res.PerCourse, *stats)

		res.Overall.TotalDays += stats.TotalDays
		res.Overall.PresentDays += stats.PresentDays
		res.Overall.AbsentDays += stats.AbsentDays
	}
	res.Overall.Percentage = percentage(res.Overall.PresentDays, res.Overall.TotalDays)
	return res, nil
}

func percentage(present, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(present) / float64(total)))
}
