package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core/enrollment"
)

type enrollmentRow struct {
	ID                  string         `db:"id"`
	StudentID           string         `db:"student_id"`
	CourseID            string         `db:"course_id"`
	Status              null.String    `db:"status"`
	Progress            null.Int       `db:"progress"`
	CompletedLectureIDs pq.StringArray `db:"completed_lecture_ids"`
	EnrolledAt          null.Time      `db:"enrolled_at"`
	LastAccessedAt      null.Time      `db:"last_accessed_at"`
	UpdatedAt           null.Time      `db:"updated_at"`
}

func packEnrollment(enr enrollment.Enrollment) enrollmentRow {
	return enrollmentRow{
		ID:                  enr.ID,
		StudentID:           enr.StudentID,
		CourseID:            enr.CourseID,
		Status:              null.NewString(enr.Status, enr.Status != ""),
		Progress:            null.IntFrom(enr.Progress),
		CompletedLectureIDs: enr.CompletedLectureIDs,
		EnrolledAt:          null.NewTime(enr.EnrolledAt.UTC(), !enr.EnrolledAt.IsZero()),
		LastAccessedAt:      null.NewTime(enr.LastAccessedAt.UTC(), !enr.LastAccessedAt.IsZero()),
		UpdatedAt:           null.NewTime(enr.UpdatedAt.UTC(), !enr.UpdatedAt.IsZero()),
	}
}

func unpackEnrollment(row enrollmentRow) enrollment.Enrollment {
	return enrollment.Enrollment{
		ID:                  row.ID,
		StudentID:           row.StudentID,
		CourseID:            row.CourseID,
		Status:              row.Status.String,
		Progress:            row.Progress.Int,
		CompletedLectureIDs: row.CompletedLectureIDs,
		EnrolledAt:          row.EnrolledAt.Time,
		LastAccessedAt:      row.LastAccessedAt.Time,
		UpdatedAt:           row.UpdatedAt.Time,
	}
}

type enrollmentRepository struct {
	db *sqlx.DB
}

var _ enrollment.Repository = (*enrollmentRepository)(nil) // interface compliance check

func NewEnrollmentRepository(db *sqlx.DB) *enrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (repo enrollmentRepository) CreateEnrollment(ctx context.Context, enr enrollment.Enrollment) (enrollment.Enrollment, error) {
	enr.ID = uuid.New().String()
	row := packEnrollment(enr)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO enrollment (id, student_id, course_id, status, progress, completed_lecture_ids,
		                        enrolled_at, last_accessed_at, updated_at)
		VALUES (:id, :student_id, :course_id, :status, :progress, :completed_lecture_ids,
		        :enrolled_at, :last_accessed_at, :updated_at)`,
		row)
	if err != nil {
		if isUniqueViolation(err) {
			return enrollment.Enrollment{}, enrollment.ErrAlreadyEnrolled
		}
		return enrollment.Enrollment{}, errors.Wrap(err, "inserting enrollment")
	}
	return enr, nil
}

func (repo enrollmentRepository) GetEnrollment(ctx context.Context, id string) (enrollment.Enrollment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return enrollment.Enrollment{}, enrollment.ErrNotFound
	}
	var row enrollmentRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM enrollment WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return enrollment.Enrollment{}, enrollment.ErrNotFound
		}
		return enrollment.Enrollment{}, errors.Wrap(err, "finding enrollment")
	}
	return unpackEnrollment(row), nil
}

func (repo enrollmentRepository) QueryEnrollments(ctx context.Context, filter enrollment.QueryFilter) ([]enrollment.Enrollment, error) {
	var clauses []string
	var args []interface{}
	arg := func(val interface{}) string {
		args = append(args, val)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.StudentID != "" {
		clauses = append(clauses, "student_id = "+arg(filter.StudentID))
	}
	if filter.CourseID != "" {
		clauses = append(clauses, "course_id = "+arg(filter.CourseID))
	}

	query := `SELECT * FROM enrollment`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY enrolled_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
	}

	var rows []enrollmentRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying enrollments")
	}
	enrs := make([]enrollment.Enrollment, 0, len(rows))
	for _, row := range rows {
		enrs = append(enrs, unpackEnrollment(row))
	}
	return enrs, nil
}

func (repo enrollmentRepository) UpdateEnrollment(ctx context.Context, enr enrollment.Enrollment) (enrollment.Enrollment, error) {
	row := packEnrollment(enr)
	_, err := repo.db.NamedExecContext(ctx, `
		UPDATE enrollment
		SET status = :status, progress = :progress, completed_lecture_ids = :completed_lecture_ids,
		    last_accessed_at = :last_accessed_at, updated_at = :updated_at
		WHERE id = :id`,
		row)
	if err != nil {
		return enrollment.Enrollment{}, errors.Wrap(err, "updating enrollment")
	}
	return enr, nil
}

func (repo enrollmentRepository) CountActiveByCourse(ctx context.Context, courseID string) (int, error) {
	var cnt int
	err := repo.db.GetContext(ctx, &cnt,
		`SELECT COUNT(*) FROM enrollment WHERE course_id = $1 AND status NOT IN ($2, $3)`,
		courseID, enrollment.StatusCancelled, enrollment.StatusExpired)
	if err != nil {
		return 0, errors.Wrap(err, "counting enrollments")
	}
	return cnt, nil
}
