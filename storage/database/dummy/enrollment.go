package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/shule/core/enrollment"
)

type enrollmentRepository struct {
	db *enrollmentTable
}

var _ enrollment.Repository = (*enrollmentRepository)(nil) // interface compliance check

func NewEnrollmentRepository(db *DB) *enrollmentRepository {
	return &enrollmentRepository{db: db.enrollment}
}

func (repo *enrollmentRepository) CreateEnrollment(ctx context.Context, enr enrollment.Enrollment) (enrollment.Enrollment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, existing := range repo.db.table {
		if existing.StudentID == enr.StudentID && existing.CourseID == enr.CourseID {
			return enrollment.Enrollment{}, enrollment.ErrAlreadyEnrolled
		}
	}
	enr.ID = uuid.New().String()
	repo.db.table[enr.ID] = &enr
	return enr, nil
}

func (repo *enrollmentRepository) GetEnrollment(ctx context.Context, id string) (enrollment.Enrollment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if enr, ok := repo.db.table[id]; ok {
		return *enr, nil
	}
	return enrollment.Enrollment{}, enrollment.ErrNotFound
}

func (repo *enrollmentRepository) QueryEnrollments(ctx context.Context, filter enrollment.QueryFilter) ([]enrollment.Enrollment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	enrs := make([]enrollment.Enrollment, 0, len(repo.db.table))
	for _, enr := range repo.db.table {
		if filter.StudentID != "" && enr.StudentID != filter.StudentID {
			continue
		}
		if filter.CourseID != "" && enr.CourseID != filter.CourseID {
			continue
		}
		enrs = append(enrs, *enr)
	}
	sort.Slice(enrs, func(i, j int) bool { return enrs[i].EnrolledAt.After(enrs[j].EnrolledAt) })
	if filter.Limit > 0 && len(enrs) > filter.Limit {
		enrs = enrs[:filter.Limit]
	}
	return enrs, nil
}

func (repo *enrollmentRepository) UpdateEnrollment(ctx context.Context, enr enrollment.Enrollment) (enrollment.Enrollment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[enr.ID]; !ok {
		return enrollment.Enrollment{}, enrollment.ErrNotFound
	}
	repo.db.table[enr.ID] = &enr
	return enr, nil
}

func (repo *enrollmentRepository) CountActiveByCourse(ctx context.Context, courseID string) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var cnt int
	for _, enr := range repo.db.table {
		if enr.CourseID == courseID && enr.IsActive() {
			cnt++
		}
	}
	return cnt, nil
}
