package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core/submission"
)

type submissionRow struct {
	ID            string      `db:"id"`
	AssignmentID  string      `db:"assignment_id"`
	StudentID     string      `db:"student_id"`
	CourseID      string      `db:"course_id"`
	Text          null.String `db:"text"`
	FileRef       null.String `db:"file_ref"`
	MarksObtained null.Int    `db:"marks_obtained"`
	Feedback      null.String `db:"feedback"`
	Status        null.String `db:"status"`
	IsLate        null.Bool   `db:"is_late"`
	AttemptNumber null.Int    `db:"attempt_number"`
	SubmittedAt   null.Time   `db:"submitted_at"`
	UpdatedAt     null.Time   `db:"updated_at"`
}

func packSubmission(sub submission.Submission) submissionRow {
	return submissionRow{
		ID:            sub.ID,
		AssignmentID:  sub.AssignmentID,
		StudentID:     sub.StudentID,
		CourseID:      sub.CourseID,
		Text:          null.NewString(sub.Text, sub.Text != ""),
		FileRef:       null.NewString(sub.FileRef, sub.FileRef != ""),
		MarksObtained: null.IntFromPtr(sub.MarksObtained),
		Feedback:      null.NewString(sub.Feedback, sub.Feedback != ""),
		Status:        null.NewString(sub.Status, sub.Status != ""),
		IsLate:        null.BoolFrom(sub.IsLate),
		AttemptNumber: null.IntFrom(sub.AttemptNumber),
		SubmittedAt:   null.NewTime(sub.SubmittedAt.UTC(), !sub.SubmittedAt.IsZero()),
		UpdatedAt:     null.NewTime(sub.UpdatedAt.UTC(), !sub.UpdatedAt.IsZero()),
	}
}

func unpackSubmission(row submissionRow) submission.Submission {
	return submission.Submission{
		ID:            row.ID,
		AssignmentID:  row.AssignmentID,
		StudentID:     row.StudentID,
		CourseID:      row.CourseID,
		Text:          row.Text.String,
		FileRef:       row.FileRef.String,
		MarksObtained: row.MarksObtained.Ptr(),
		Feedback:      row.Feedback.String,
		Status:        row.Status.String,
		IsLate:        row.IsLate.Bool,
		AttemptNumber: row.AttemptNumber.Int,
		SubmittedAt:   row.SubmittedAt.Time,
		UpdatedAt:     row.UpdatedAt.Time,
	}
}

type submissionRepository struct {
	db *sqlx.DB
}

var _ submission.Repository = (*submissionRepository)(nil) // interface compliance check

func NewSubmissionRepository(db *sqlx.DB) *submissionRepository {
	return &submissionRepository{db: db}
}

func (repo submissionRepository) CreateSubmission(ctx context.Context, sub submission.Submission) (submission.Submission, error) {
	sub.ID = uuid.New().String()
	row := packSubmission(sub)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO submission (id, assignment_id, student_id, course_id, text, file_ref, marks_obtained,
		                        feedback, status, is_late, attempt_number, submitted_at, updated_at)
		VALUES (:id, :assignment_id, :student_id, :course_id, :text, :file_ref, :marks_obtained,
		        :feedback, :status, :is_late, :attempt_number, :submitted_at, :updated_at)`,
		row)
	if err != nil {
		if isUniqueViolation(err) {
			return submission.Submission{}, submission.ErrAlreadySubmitted
		}
		return submission.Submission{}, errors.Wrap(err, "inserting submission")
	}
	return sub, nil
}

func (repo submissionRepository) GetSubmission(ctx context.Context, id string) (submission.Submission, error) {
	if _, err := uuid.Parse(id); err != nil {
		return submission.Submission{}, submission.ErrNotFound
	}
	var row submissionRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM submission WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return submission.Submission{}, submission.ErrNotFound
		}
		return submission.Submission{}, errors.Wrap(err, "finding submission")
	}
	return unpackSubmission(row), nil
}

func (repo submissionRepository) GetSubmissionByAssignmentAndStudent(ctx context.Context, assignmentID, studentID string) (submission.Submission, error) {
	var row submissionRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT * FROM submission WHERE assignment_id = $1 AND student_id = $2`, assignmentID, studentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return submission.Submission{}, submission.ErrNotFound
		}
		return submission.Submission{}, errors.Wrap(err, "finding submission")
	}
	return unpackSubmission(row), nil
}

func (repo submissionRepository) QuerySubmissions(ctx context.Context, filter submission.QueryFilter) ([]submission.Submission, error) {
	var clauses []string
	var args []interface{}
	arg := func(val interface{}) string {
		args = append(args, val)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.AssignmentID != "" {
		clauses = append(clauses, "assignment_id = "+arg(filter.AssignmentID))
	}
	if filter.StudentID != "" {
		clauses = append(clauses, "student_id = "+arg(filter.StudentID))
	}

	query := `SELECT * FROM submission`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY submitted_at DESC"

	var rows []submissionRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying submissions")
	}
	subs := make([]submission.Submission, 0, len(rows))
	for _, row := range rows {
		subs = append(subs, unpackSubmission(row))
	}
	return subs, nil
}

func (repo submissionRepository) UpdateSubmission(ctx context.Context, sub submission.Submission) (submission.Submission, error) {
	row := packSubmission(sub)
	_, err := repo.db.NamedExecContext(ctx, `
		UPDATE submission
		SET text = :text, file_ref = :file_ref, marks_obtained = :marks_obtained, feedback = :feedback,
		    status = :status, is_late = :is_late, attempt_number = :attempt_number,
		    submitted_at = :submitted_at, updated_at = :updated_at
		WHERE id = :id`,
		row)
	if err != nil {
		return submission.Submission{}, errors.Wrap(err, "updating submission")
	}
	return sub, nil
}
