package sqlxrepos

import (
	"context"
	"database/sql"
	"database/sql/driver"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core/course"
)

// modulesJSON stores a syllabus' module tree as a JSONB document.
type modulesJSON []course.Module

func (m modulesJSON) Value() (driver.Value, error) { return jsonValue([]course.Module(m)) }
func (m *modulesJSON) Scan(src interface{}) error  { return jsonScan(src, m) }

type courseRow struct {
	ID          string         `db:"id"`
	Title       null.String    `db:"title"`
	Description null.String    `db:"description"`
	Level       null.String    `db:"level"`
	Duration    null.String    `db:"duration"`
	TeacherIDs  pq.StringArray `db:"teacher_ids"`
	CreatedAt   null.Time      `db:"created_at"`
	UpdatedAt   null.Time      `db:"updated_at"`
}

func packCourse(crs course.Course) courseRow {
	return courseRow{
		ID:          crs.ID,
		Title:       null.NewString(crs.Title, crs.Title != ""),
		Description: null.NewString(crs.Description, crs.Description != ""),
		Level:       null.NewString(crs.Level, crs.Level != ""),
		Duration:    null.NewString(crs.Duration, crs.Duration != ""),
		TeacherIDs:  crs.TeacherIDs,
		CreatedAt:   null.NewTime(crs.CreatedAt.UTC(), !crs.CreatedAt.IsZero()),
		UpdatedAt:   null.NewTime(crs.UpdatedAt.UTC(), !crs.UpdatedAt.IsZero()),
	}
}

func unpackCourse(row courseRow) course.Course {
	return course.Course{
		ID:          row.ID,
		Title:       row.Title.String,
		Description: row.Description.String,
		Level:       row.Level.String,
		Duration:    row.Duration.String,
		TeacherIDs:  row.TeacherIDs,
		CreatedAt:   row.CreatedAt.Time,
		UpdatedAt:   row.UpdatedAt.Time,
	}
}

type syllabusRow struct {
	ID               string         `db:"id"`
	CourseID         string         `db:"course_id"`
	Title            null.String    `db:"title"`
	Modules          modulesJSON    `db:"modules"`
	LearningOutcomes pq.StringArray `db:"learning_outcomes"`
	CreatedAt        null.Time      `db:"created_at"`
	UpdatedAt        null.Time      `db:"updated_at"`
}

func packSyllabus(syl course.Syllabus) syllabusRow {
	return syllabusRow{
		ID:               syl.ID,
		CourseID:         syl.CourseID,
		Title:            null.NewString(syl.Title, syl.Title != ""),
		Modules:          syl.Modules,
		LearningOutcomes: syl.LearningOutcomes,
		CreatedAt:        null.NewTime(syl.CreatedAt.UTC(), !syl.CreatedAt.IsZero()),
		UpdatedAt:        null.NewTime(syl.UpdatedAt.UTC(), !syl.UpdatedAt.IsZero()),
	}
}

func unpackSyllabus(row syllabusRow) course.Syllabus {
	return course.Syllabus{
		ID:               row.ID,
		CourseID:         row.CourseID,
		Title:            row.Title.String,
		Modules:          row.Modules,
		LearningOutcomes: row.LearningOutcomes,
		CreatedAt:        row.CreatedAt.Time,
		UpdatedAt:        row.UpdatedAt.Time,
	}
}

type courseRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *sqlx.DB) *courseRepository {
	return &courseRepository{db: db}
}

func (repo courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	crs.ID = uuid.New().String()
	row := packCourse(crs)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO course (id, title, description, level, duration, teacher_ids, created_at, updated_at)
		VALUES (:id, :title, :description, :level, :duration, :teacher_ids, :created_at, :updated_at)`,
		row)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "inserting course")
	}
	return crs, nil
}

func (repo courseRepository) GetCourse(ctx context.Context, id string) (course.Course, error) {
	if _, err := uuid.Parse(id); err != nil {
		return course.Course{}, course.ErrNotFound
	}
	var row courseRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM course WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, errors.Wrap(err, "finding course")
	}
	return unpackCourse(row), nil
}

func (repo courseRepository) QueryAllCourses(ctx context.Context) ([]course.Course, error) {
	var rows []courseRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM course ORDER BY created_at DESC`); err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	courses := make([]course.Course, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, unpackCourse(row))
	}
	return courses, nil
}

func (repo courseRepository) UpdateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	row := packCourse(crs)
	_, err := repo.db.NamedExecContext(ctx, `
		UPDATE course
		SET title = :title, description = :description, level = :level, duration = :duration,
		    teacher_ids = :teacher_ids, updated_at = :updated_at
		WHERE id = :id`,
		row)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "updating course")
	}
	return crs, nil
}

func (repo courseRepository) CreateSyllabus(ctx context.Context, syl course.Syllabus) (course.Syllabus, error) {
	syl.ID = uuid.New().String()
	row := packSyllabus(syl)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO syllabus (id, course_id, title, modules, learning_outcomes, created_at, updated_at)
		VALUES (:id, :course_id, :title, :modules, :learning_outcomes, :created_at, :updated_at)`,
		row)
	if err != nil {
		if isUniqueViolation(err) {
			return course.Syllabus{}, course.ErrSyllabusExists
		}
		return course.Syllabus{}, errors.Wrap(err, "inserting syllabus")
	}
	return syl, nil
}

func (repo courseRepository) GetSyllabusByCourse(ctx context.Context, courseID string) (course.Syllabus, error) {
	if _, err := uuid.Parse(courseID); err != nil {
		return course.Syllabus{}, course.ErrSyllabusNotFound
	}
	var row syllabusRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM syllabus WHERE course_id = $1`, courseID); err != nil {
		if err == sql.ErrNoRows {
			return course.Syllabus{}, course.ErrSyllabusNotFound
		}
		return course.Syllabus{}, errors.Wrap(err, "finding syllabus")
	}
	return unpackSyllabus(row), nil
}

func (repo courseRepository) UpdateSyllabus(ctx context.Context, syl course.Syllabus) (course.Syllabus, error) {
	row := packSyllabus(syl)
	_, err := repo.db.NamedExecContext(ctx, `
		UPDATE syllabus
		SET title = :title, modules = :modules, learning_outcomes = :learning_outcomes, updated_at = :updated_at
		WHERE id = :id`,
		row)
	if err != nil {
		return course.Syllabus{}, errors.Wrap(err, "updating syllabus")
	}
	return syl, nil
}
