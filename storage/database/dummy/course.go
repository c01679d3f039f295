package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/shule/core/course"
)

type courseRepository struct {
	courses  *courseTable
	syllabus *syllabusTable
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *DB) *courseRepository {
	return &courseRepository{courses: db.course, syllabus: db.syllabus}
}

func (repo *courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	repo.courses.Lock()
	defer repo.courses.Unlock()

	crs.ID = uuid.New().String()
	repo.courses.table[crs.ID] = &crs
	return crs, nil
}

func (repo *courseRepository) GetCourse(ctx context.Context, id string) (course.Course, error) {
	repo.courses.RLock()
	defer repo.courses.RUnlock()

	if crs, ok := repo.courses.table[id]; ok {
		return *crs, nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) QueryAllCourses(ctx context.Context) ([]course.Course, error) {
	repo.courses.RLock()
	defer repo.courses.RUnlock()

	courses := make([]course.Course, 0, len(repo.courses.table))
	for _, crs := range repo.courses.table {
		courses = append(courses, *crs)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].CreatedAt.After(courses[j].CreatedAt) })
	return courses, nil
}

func (repo *courseRepository) UpdateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	repo.courses.Lock()
	defer repo.courses.Unlock()

	if _, ok := repo.courses.table[crs.ID]; !ok {
		return course.Course{}, course.ErrNotFound
	}
	repo.courses.table[crs.ID] = &crs
	return crs, nil
}

func (repo *courseRepository) CreateSyllabus(ctx context.Context, syl course.Syllabus) (course.Syllabus, error) {
	repo.syllabus.Lock()
	defer repo.syllabus.Unlock()

	for _, existing := range repo.syllabus.table {
		if existing.CourseID == syl.CourseID {
			return course.Syllabus{}, course.ErrSyllabusExists
		}
	}
	syl.ID = uuid.New().String()
	repo.syllabus.table[syl.ID] = &syl
	return syl, nil
}

func (repo *courseRepository) GetSyllabusByCourse(ctx context.Context, courseID string) (course.Syllabus, error) {
	repo.syllabus.RLock()
	defer repo.syllabus.RUnlock()

	for _, syl := range repo.syllabus.table {
		if syl.CourseID == courseID {
			return *syl, nil
		}
	}
	return course.Syllabus{}, course.ErrSyllabusNotFound
}

func (repo *courseRepository) UpdateSyllabus(ctx context.Context, syl course.Syllabus) (course.Syllabus, error) {
	repo.syllabus.Lock()
	defer repo.syllabus.Unlock()

	if _, ok := repo.syllabus.table[syl.ID]; !ok {
		return course.Syllabus{}, course.ErrSyllabusNotFound
	}
	repo.syllabus.table[syl.ID] = &syl
	return syl, nil
}
