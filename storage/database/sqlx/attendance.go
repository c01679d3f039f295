package sqlxrepos

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core/attendance"
)

// recordsJSON stores a session's roster as a JSONB document; the GIN index on it backs
// the per-student containment query.
type recordsJSON []attendance.Record

func (r recordsJSON) Value() (driver.Value, error) { return jsonValue([]attendance.Record(r)) }
func (r *recordsJSON) Scan(src interface{}) error  { return jsonScan(src, r) }

type attendanceRow struct {
	ID        string      `db:"id"`
	CourseID  string      `db:"course_id"`
	Date      time.Time   `db:"date"`
	Records   recordsJSON `db:"records"`
	MarkedBy  string      `db:"marked_by"`
	Notes     null.String `db:"notes"`
	CreatedAt null.Time   `db:"created_at"`
	UpdatedAt null.Time   `db:"updated_at"`
}

func packAttendance(att attendance.Attendance) attendanceRow {
	return attendanceRow{
		ID:        att.ID,
		CourseID:  att.CourseID,
		Date:      att.Date,
		Records:   att.Records,
		MarkedBy:  att.MarkedBy,
		Notes:     null.NewString(att.Notes, att.Notes != ""),
		CreatedAt: null.NewTime(att.CreatedAt.UTC(), !att.CreatedAt.IsZero()),
		UpdatedAt: null.NewTime(att.UpdatedAt.UTC(), !att.UpdatedAt.IsZero()),
	}
}

func unpackAttendance(row attendanceRow) attendance.Attendance {
	return attendance.Attendance{
		ID:        row.ID,
		CourseID:  row.CourseID,
		Date:      row.Date.UTC(),
		Records:   row.Records,
		MarkedBy:  row.MarkedBy,
		Notes:     row.Notes.String,
		CreatedAt: row.CreatedAt.Time,
		UpdatedAt: row.UpdatedAt.Time,
	}
}

type attendanceRepository struct {
	db *sqlx.DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *sqlx.DB) *attendanceRepository {
	return &attendanceRepository{db: db}
}

func (repo attendanceRepository) CreateAttendance(ctx context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	att.ID = uuid.New().String()
	row := packAttendance(att)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO attendance (id, course_id, date, records, marked_by, notes, created_at, updated_at)
		VALUES (:id, :course_id, :date, :records, :marked_by, :notes, :created_at, :updated_at)`,
		row)
	if err != nil {
		if isUniqueViolation(err) {
			return attendance.Attendance{}, attendance.ErrAlreadyMarked
		}
		return attendance.Attendance{}, errors.Wrap(err, "inserting attendance")
	}
	return att, nil
}

func (repo attendanceRepository) GetAttendance(ctx context.Context, id string) (attendance.Attendance, error) {
	if _, err := uuid.Parse(id); err != nil {
		return attendance.Attendance{}, attendance.ErrNotFound
	}
	var row attendanceRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM attendance WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return attendance.Attendance{}, attendance.ErrNotFound
		}
		return attendance.Attendance{}, errors.Wrap(err, "finding attendance")
	}
	return unpackAttendance(row), nil
}

func (repo attendanceRepository) GetAttendanceByCourseAndDate(ctx context.Context, courseID string, date time.Time) (attendance.Attendance, error) {
	var row attendanceRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT * FROM attendance WHERE course_id = $1 AND date = $2`, courseID, date)
	if err != nil {
		if err == sql.ErrNoRows {
			return attendance.Attendance{}, attendance.ErrNotFound
		}
		return attendance.Attendance{}, errors.Wrap(err, "finding attendance")
	}
	return unpackAttendance(row), nil
}

func (repo attendanceRepository) QueryAttendance(ctx context.Context, filter attendance.QueryFilter) ([]attendance.Attendance, error) {
	var clauses []string
	var args []interface{}
	arg := func(val interface{}) string {
		args = append(args, val)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.CourseID != "" {
		clauses = append(clauses, "course_id = "+arg(filter.CourseID))
	}
	if filter.From != nil {
		clauses = append(clauses, "date >= "+arg(*filter.From))
	}
	if filter.To != nil {
		clauses = append(clauses, "date <= "+arg(*filter.To))
	}

	query := `SELECT * FROM attendance`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY date DESC"

	var rows []attendanceRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying attendance")
	}
	atts := make([]attendance.Attendance, 0, len(rows))
	for _, row := range rows {
		atts = append(atts, unpackAttendance(row))
	}
	return atts, nil
}

func (repo attendanceRepository) QueryAttendanceByStudent(ctx context.Context, studentID string) ([]attendance.Attendance, error) {
	// roster containment on the JSONB records column
	match, err := json.Marshal([]map[string]string{{"student_id": studentID}})
	if err != nil {
		return nil, errors.Wrap(err, "building roster match")
	}

	var rows []attendanceRow
	err = repo.db.SelectContext(ctx, &rows,
		`SELECT * FROM attendance WHERE records @> $1 ORDER BY date DESC`, string(match))
	if err != nil {
		return nil, errors.Wrap(err, "querying attendance by student")
	}
	atts := make([]attendance.Attendance, 0, len(rows))
	for _, row := range rows {
		atts = append(atts, unpackAttendance(row))
	}
	return atts, nil
}

func (repo attendanceRepository) UpdateAttendance(ctx context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	row := packAttendance(att)
	_, err := repo.db.NamedExecContext(ctx, `
		UPDATE attendance
		SET records = :records, marked_by = :marked_by, notes = :notes, updated_at = :updated_at
		WHERE id = :id`,
		row)
	if err != nil {
		return attendance.Attendance{}, errors.Wrap(err, "updating attendance")
	}
	return att, nil
}
