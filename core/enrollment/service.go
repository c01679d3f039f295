package enrollment

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var (
	// errors
	ErrNotFound        = errors.New("enrollment not found")
	ErrAlreadyEnrolled = errors.New("student is already enrolled in this course")
	ErrNotOwner        = errors.New("not authorized to update this enrollment")
	ErrStudentNotFound = errors.New("student not found")
	ErrCourseNotFound  = errors.New("course not found")
)

type (
	Repository interface {
		// CreateEnrollment fails with ErrAlreadyEnrolled when an enrollment already
		// exists for the (student, course) pair; the store's uniqueness constraint is
		// the arbiter under concurrent creates.
		CreateEnrollment(ctx context.Context, enr Enrollment) (Enrollment, error)
		GetEnrollment(ctx context.Context, id string) (Enrollment, error)
		// QueryEnrollments returns enrollments newest-first.
		QueryEnrollments(ctx context.Context, filter QueryFilter) ([]Enrollment, error)
		UpdateEnrollment(ctx context.Context, enr Enrollment) (Enrollment, error)
		// CountActiveByCourse derives a course's live enrollment count from the ledger;
		// it also satisfies the course catalog's EnrollmentCounter.
		CountActiveByCourse(ctx context.Context, courseID string) (int, error)
	}

	// StudentDirectory resolves student accounts; implemented by the user service.
	StudentDirectory interface {
		StudentExists(ctx context.Context, id string) (bool, error)
	}

	// CourseCatalog resolves courses and their syllabus lecture ids; implemented by
	// the course service.
	CourseCatalog interface {
		CourseExists(ctx context.Context, id string) (bool, error)
		CourseLectureIDs(ctx context.Context, courseID string) ([]string, error)
	}

	Service struct {
		repo     Repository
		students StudentDirectory
		catalog  CourseCatalog
	}
)

func NewService(repo Repository, students StudentDirectory, catalog CourseCatalog) *Service {
	return &Service{repo: repo, students: students, catalog: catalog}
}

// Enroll creates an Active enrollment for the (student, course) pair.
// The student's enrolled-course set and the course's enrollment count are derived from
// the ledger on read, so this is a single conditional create: a lost race against a
// concurrent enroll surfaces as ErrAlreadyEnrolled.
func (svc *Service) Enroll(ctx context.Context, ne NewEnrollment) (Enrollment, error) {
	exists, err := svc.students.StudentExists(ctx, ne.StudentID)
	if err != nil {
		return Enrollment{}, errors.Wrap(err, "checking student")
	}
	if !exists {
		return Enrollment{}, ErrStudentNotFound
	}

	exists, err = svc.catalog.CourseExists(ctx, ne.CourseID)
	if err != nil {
		return Enrollment{}, errors.Wrap(err, "checking course")
	}
	if !exists {
		return Enrollment{}, ErrCourseNotFound
	}

	now := time.Now().UTC()
	enr := Enrollment{
		StudentID:      ne.StudentID,
		CourseID:       ne.CourseID,
		Status:         StatusActive,
		Progress:       0,
		EnrolledAt:     now,
		LastAccessedAt: now,
		UpdatedAt:      now,
	}
	return svc.repo.CreateEnrollment(ctx, enr)
}

// Cancel marks the enrollment Cancelled. Cancelling an already-cancelled enrollment is
// a no-op, so retries cannot skew any derived counts.
func (svc *Service) Cancel(ctx context.Context, id string) (Enrollment, error) {
	enr, err := svc.repo.GetEnrollment(ctx, id)
	if err != nil {
		return Enrollment{}, err
	}
	if enr.Status == StatusCancelled {
		return enr, nil
	}
	enr.Status = StatusCancelled
	enr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateEnrollment(ctx, enr)
}

// UpdateProgress applies a manual progress value or records a lecture completion on the
// student's own enrollment. Lecture completions are idempotent and recompute the derived
// percentage from the syllabus; manual values overwrite it directly, clamped to [0,100].
func (svc *Service) UpdateProgress(ctx context.Context, id, studentID string, pu ProgressUpdate) (Enrollment, error) {
	enr, err := svc.repo.GetEnrollment(ctx, id)
	if err != nil {
		return Enrollment{}, err
	}
	if enr.StudentID != studentID {
		return Enrollment{}, ErrNotOwner
	}

	switch {
	case pu.Progress != nil:
		progress := *pu.Progress
		if progress < 0 {
			progress = 0
		} else if progress > 100 {
			progress = 100
		}
		enr.Progress = progress

	case pu.CompletedLectureID != "":
		if !enr.hasCompletedLecture(pu.CompletedLectureID) {
			enr.CompletedLectureIDs = append(enr.CompletedLectureIDs, pu.CompletedLectureID)
		}
		valid, err := svc.catalog.CourseLectureIDs(ctx, enr.CourseID)
		if err != nil {
			return Enrollment{}, errors.Wrap(err, "getting course lectures")
		}
		if pct, ok := computePercent(enr.CompletedLectureIDs, valid); ok {
			enr.Progress = pct
		}
	}

	now := time.Now().UTC()
	enr.LastAccessedAt = now
	enr.UpdatedAt = now

	if enr.Progress >= 100 {
		enr.Status = StatusCompleted
	}
	return svc.repo.UpdateEnrollment(ctx, enr)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Enrollment, error) {
	return svc.repo.GetEnrollment(ctx, id)
}

func (svc *Service) QueryByStudent(ctx context.Context, studentID string) ([]Enrollment, error) {
	return svc.repo.QueryEnrollments(ctx, QueryFilter{StudentID: studentID})
}

func (svc *Service) QueryByCourse(ctx context.Context, courseID string) ([]Enrollment, error) {
	return svc.repo.QueryEnrollments(ctx, QueryFilter{CourseID: courseID})
}

func (svc *Service) QueryAll(ctx context.Context) ([]Enrollment, error) {
	return svc.repo.QueryEnrollments(ctx, QueryFilter{Limit: 50})
}

// IsActivelyEnrolled reports whether the student holds a non-cancelled, non-expired
// enrollment in the course. Consumed by the submission workflow.
func (svc *Service) IsActivelyEnrolled(ctx context.Context, studentID, courseID string) (bool, error) {
	enrs, err := svc.repo.QueryEnrollments(ctx, QueryFilter{StudentID: studentID, CourseID: courseID})
	if err != nil {
		return false, err
	}
	for _, enr := range enrs {
		if enr.IsActive() {
			return true, nil
		}
	}
	return false, nil
}
