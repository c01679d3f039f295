package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/shule/core/attendance"
)

type attendanceRepository struct {
	db *attendanceTable
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *DB) *attendanceRepository {
	return &attendanceRepository{db: db.attendance}
}

func (repo *attendanceRepository) CreateAttendance(ctx context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, existing := range repo.db.table {
		if existing.CourseID == att.CourseID && existing.Date.Equal(att.Date) {
			return attendance.Attendance{}, attendance.ErrAlreadyMarked
		}
	}
	att.ID = uuid.New().String()
	repo.db.table[att.ID] = &att
	return att, nil
}

func (repo *attendanceRepository) GetAttendance(ctx context.Context, id string) (attendance.Attendance, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if att, ok := repo.db.table[id]; ok {
		return *att, nil
	}
	return attendance.Attendance{}, attendance.ErrNotFound
}

func (repo *attendanceRepository) GetAttendanceByCourseAndDate(ctx context.Context, courseID string, date time.Time) (attendance.Attendance, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, att := range repo.db.table {
		if att.CourseID == courseID && att.Date.Equal(date) {
			return *att, nil
		}
	}
	return attendance.Attendance{}, attendance.ErrNotFound
}

func (repo *attendanceRepository) QueryAttendance(ctx context.Context, filter attendance.QueryFilter) ([]attendance.Attendance, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	atts := make([]attendance.Attendance, 0, len(repo.db.table))
	for _, att := range repo.db.table {
		if filter.CourseID != "" && att.CourseID != filter.CourseID {
			continue
		}
		if filter.From != nil && att.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && att.Date.After(*filter.To) {
			continue
		}
		atts = append(atts, *att)
	}
	sort.Slice(atts, func(i, j int) bool { return atts[i].Date.After(atts[j].Date) })
	return atts, nil
}

func (repo *attendanceRepository) QueryAttendanceByStudent(ctx context.Context, studentID string) ([]attendance.Attendance, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var atts []attendance.Attendance
	for _, att := range repo.db.table {
		for _, rec := range att.Records {
			if rec.StudentID == studentID {
				atts = append(atts, *att)
				break
			}
		}
	}
	sort.Slice(atts, func(i, j int) bool { return atts[i].Date.After(atts[j].Date) })
	return atts, nil
}

func (repo *attendanceRepository) UpdateAttendance(ctx context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[att.ID]; !ok {
		return attendance.Attendance{}, attendance.ErrNotFound
	}
	repo.db.table[att.ID] = &att
	return att, nil
}
