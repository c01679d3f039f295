package sqlxrepos

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/assignment"
)

// attachmentsJSON stores an assignment's attachment list as a JSONB document.
type attachmentsJSON []assignment.Attachment

func (a attachmentsJSON) Value() (driver.Value, error) { return jsonValue([]assignment.Attachment(a)) }
func (a *attachmentsJSON) Scan(src interface{}) error  { return jsonScan(src, a) }

type assignmentRow struct {
	ID            string          `db:"id"`
	CourseID      string          `db:"course_id"`
	Title         null.String     `db:"title"`
	Description   null.String     `db:"description"`
	DueAt         null.Time       `db:"due_at"`
	TotalMarks    null.Int        `db:"total_marks"`
	CreatedBy     string          `db:"created_by"`
	Status        null.String     `db:"status"`
	IsLateAllowed null.Bool       `db:"is_late_allowed"`
	MaxAttempts   null.Int        `db:"max_attempts"`
	Attachments   attachmentsJSON `db:"attachments"`
	CreatedAt     null.Time       `db:"created_at"`
	UpdatedAt     null.Time       `db:"updated_at"`
}

func packAssignment(a assignment.Assignment) assignmentRow {
	return assignmentRow{
		ID:            a.ID,
		CourseID:      a.CourseID,
		Title:         null.NewString(a.Title, a.Title != ""),
		Description:   null.NewString(a.Description, a.Description != ""),
		DueAt:         null.NewTime(a.DueAt.UTC(), !a.DueAt.IsZero()),
		TotalMarks:    null.IntFrom(a.TotalMarks),
		CreatedBy:     a.CreatedBy,
		Status:        null.NewString(a.Status, a.Status != ""),
		IsLateAllowed: null.BoolFrom(a.IsLateAllowed),
		MaxAttempts:   null.IntFrom(a.MaxAttempts),
		Attachments:   a.Attachments,
		CreatedAt:     null.NewTime(a.CreatedAt.UTC(), !a.CreatedAt.IsZero()),
		UpdatedAt:     null.NewTime(a.UpdatedAt.UTC(), !a.UpdatedAt.IsZero()),
	}
}

func unpackAssignment(row assignmentRow) assignment.Assignment {
	return assignment.Assignment{
		ID:            row.ID,
		CourseID:      row.CourseID,
		Title:         row.Title.String,
		Description:   row.Description.String,
		DueAt:         row.DueAt.Time,
		TotalMarks:    row.TotalMarks.Int,
		CreatedBy:     row.CreatedBy,
		Status:        row.Status.String,
		IsLateAllowed: row.IsLateAllowed.Bool,
		MaxAttempts:   row.MaxAttempts.Int,
		Attachments:   row.Attachments,
		CreatedAt:     row.CreatedAt.Time,
		UpdatedAt:     row.UpdatedAt.Time,
	}
}

type assignmentRepository struct {
	db *sqlx.DB
}

var _ assignment.Repository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(db *sqlx.DB) *assignmentRepository {
	return &assignmentRepository{db: db}
}

func (repo assignmentRepository) CreateAssignment(ctx context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	a.ID = uuid.New().String()
	row := packAssignment(a)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO assignment (id, course_id, title, description, due_at, total_marks, created_by,
		                        status, is_late_allowed, max_attempts, attachments, created_at, updated_at)
		VALUES (:id, :course_id, :title, :description, :due_at, :total_marks, :created_by,
		        :status, :is_late_allowed, :max_attempts, :attachments, :created_at, :updated_at)`,
		row)
	if err != nil {
		return assignment.Assignment{}, errors.Wrap(err, "inserting assignment")
	}
	return a, nil
}

func (repo assignmentRepository) GetAssignment(ctx context.Context, id string) (assignment.Assignment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return assignment.Assignment{}, assignment.ErrNotFound
	}
	var row assignmentRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM assignment WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return assignment.Assignment{}, assignment.ErrNotFound
		}
		return assignment.Assignment{}, errors.Wrap(err, "finding assignment")
	}
	return unpackAssignment(row), nil
}

func (repo assignmentRepository) QueryAssignments(ctx context.Context, filter assignment.QueryFilter, ordering ...core.DBOrdering) ([]assignment.Assignment, error) {
	var clauses []string
	var args []interface{}
	arg := func(val interface{}) string {
		args = append(args, val)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.CourseID != "" {
		clauses = append(clauses, "course_id = "+arg(filter.CourseID))
	}
	if filter.CreatedBy != "" {
		clauses = append(clauses, "created_by = "+arg(filter.CreatedBy))
	}
	if filter.PublishedOnly {
		clauses = append(clauses, "status = "+arg(assignment.StatusPublished))
	}

	query := `SELECT * FROM assignment`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY " + orderBy(ordering, "created_at DESC")

	var rows []assignmentRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying assignments")
	}
	assignments := make([]assignment.Assignment, 0, len(rows))
	for _, row := range rows {
		assignments = append(assignments, unpackAssignment(row))
	}
	return assignments, nil
}

func (repo assignmentRepository) UpdateAssignment(ctx context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	row := packAssignment(a)
	_, err := repo.db.NamedExecContext(ctx, `
		UPDATE assignment
		SET title = :title, description = :description, due_at = :due_at, total_marks = :total_marks,
		    status = :status, is_late_allowed = :is_late_allowed, max_attempts = :max_attempts,
		    attachments = :attachments, updated_at = :updated_at
		WHERE id = :id`,
		row)
	if err != nil {
		return assignment.Assignment{}, errors.Wrap(err, "updating assignment")
	}
	return a, nil
}

func (repo assignmentRepository) DeleteAssignment(ctx context.Context, id string) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM assignment WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting assignment")
	}
	return nil
}
