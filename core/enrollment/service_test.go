package enrollment_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core/enrollment"
	dummydb "github.com/trezcool/shule/storage/database/dummy"
)

type stubStudents struct{ known map[string]bool }

func (s stubStudents) StudentExists(ctx context.Context, id string) (bool, error) {
	return s.known[id], nil
}

type stubCatalog struct {
	known    map[string]bool
	lectures map[string][]string
}

func (s stubCatalog) CourseExists(ctx context.Context, id string) (bool, error) {
	return s.known[id], nil
}

func (s stubCatalog) CourseLectureIDs(ctx context.Context, courseID string) ([]string, error) {
	return s.lectures[courseID], nil
}

func newTestService(t *testing.T) *enrollment.Service {
	t.Helper()
	db, err := dummydb.Open()
	require.NoError(t, err)

	students := stubStudents{known: map[string]bool{"stud1": true}}
	catalog := stubCatalog{
		known: map[string]bool{"crs1": true, "crs2": true},
		lectures: map[string][]string{
			"crs1": {"m0-l0", "m0-l1", "m1-l0", "m1-l1"},
			// crs2 has no syllabus yet
		},
	}
	return enrollment.NewService(dummydb.NewEnrollmentRepository(db), students, catalog)
}

func TestService_lectureCompletions(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	enr, err := svc.Enroll(ctx, enrollment.NewEnrollment{StudentID: "stud1", CourseID: "crs1"})
	require.NoError(t, err)

	complete := func(t *testing.T, lectureID string) enrollment.Enrollment {
		got, err := svc.UpdateProgress(ctx, enr.ID, "stud1", enrollment.ProgressUpdate{CompletedLectureID: lectureID})
		require.NoError(t, err)
		return got
	}

	t.Run("progress is derived from the syllabus", func(t *testing.T) {
		got := complete(t, "m0-l0")
		assert.Equal(t, 25, got.Progress)
		assert.Equal(t, enrollment.StatusActive, got.Status)
	})

	t.Run("completions are idempotent", func(t *testing.T) {
		got := complete(t, "m0-l0")
		assert.Equal(t, 25, got.Progress)
		assert.Equal(t, []string{"m0-l0"}, got.CompletedLectureIDs)
	})

	t.Run("completing everything finishes the course", func(t *testing.T) {
		for _, id := range []string{"m0-l1", "m1-l0"} {
			complete(t, id)
		}
		got := complete(t, "m1-l1")
		assert.Equal(t, 100, got.Progress)
		assert.Equal(t, enrollment.StatusCompleted, got.Status)
	})
}

func TestService_completionWithoutSyllabus(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	enr, err := svc.Enroll(ctx, enrollment.NewEnrollment{StudentID: "stud1", CourseID: "crs2"})
	require.NoError(t, err)

	manual := 40
	enr, err = svc.UpdateProgress(ctx, enr.ID, "stud1", enrollment.ProgressUpdate{Progress: &manual})
	require.NoError(t, err)
	require.Equal(t, 40, enr.Progress)

	// the completion is recorded but cannot be scored yet
	got, err := svc.UpdateProgress(ctx, enr.ID, "stud1", enrollment.ProgressUpdate{CompletedLectureID: "m0-l0"})
	require.NoError(t, err)
	assert.Equal(t, 40, got.Progress)
	assert.Equal(t, []string{"m0-l0"}, got.CompletedLectureIDs)
}
