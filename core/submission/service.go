package submission

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/assignment"
)

var (
	// errors
	ErrNotFound          = errors.New("submission not found")
	ErrNotPublished      = errors.New("assignment is not open for submissions")
	ErrNotEnrolled       = errors.New("you are not enrolled in this course")
	ErrDeadlinePassed    = errors.New("the submission deadline has passed")
	ErrAttemptsExhausted = errors.New("maximum submission attempts reached")
	ErrAlreadySubmitted  = errors.New("a submission already exists for this assignment")
	ErrNotOwner          = errors.New("you can only review submissions for your own assignments")

	errMarksExceedTotal = errors.New("marks_obtained exceeds the assignment's total marks")
)

type (
	Repository interface {
		// CreateSubmission fails with ErrAlreadySubmitted when a submission already
		// exists for the (assignment, student) pair; the store's uniqueness constraint
		// is the arbiter under concurrent first-time submits.
		CreateSubmission(ctx context.Context, sub Submission) (Submission, error)
		GetSubmission(ctx context.Context, id string) (Submission, error)
		GetSubmissionByAssignmentAndStudent(ctx context.Context, assignmentID, studentID string) (Submission, error)
		// QuerySubmissions returns submissions newest-first.
		QuerySubmissions(ctx context.Context, filter QueryFilter) ([]Submission, error)
		UpdateSubmission(ctx context.Context, sub Submission) (Submission, error)
	}

	// AssignmentRegistry resolves assignments; implemented by the assignment service.
	AssignmentRegistry interface {
		GetByID(ctx context.Context, id string) (assignment.Assignment, error)
	}

	// EnrollmentLedger reports active course enrollments; implemented by the
	// enrollment service.
	EnrollmentLedger interface {
		IsActivelyEnrolled(ctx context.Context, studentID, courseID string) (bool, error)
	}

	// StudentDirectory resolves student contact addresses; implemented by the user
	// service.
	StudentDirectory interface {
		StudentEmail(ctx context.Context, id string) (mail.Address, error)
	}

	Service struct {
		repo        Repository
		assignments AssignmentRegistry
		enrollments EnrollmentLedger
		students    StudentDirectory
		mailSvc     core.EmailService
		logger      core.Logger
	}
)

func NewService(
	repo Repository,
	assignments AssignmentRegistry,
	enrollments EnrollmentLedger,
	students StudentDirectory,
	mailSvc core.EmailService,
	logger core.Logger,
) *Service {
	return &Service{
		repo:        repo,
		assignments: assignments,
		enrollments: enrollments,
		students:    students,
		mailSvc:     mailSvc,
		logger:      logger,
	}
}

// Submit records the student's work for a Published assignment. The first submit
// creates the record with attempt 1; later submits overwrite the work, bump the attempt
// counter up to the assignment's max and reset the status to Submitted. Lateness is
// re-evaluated on every attempt.
func (svc *Service) Submit(ctx context.Context, studentID string, ns NewSubmission) (Submission, error) {
	a, err := svc.assignments.GetByID(ctx, ns.AssignmentID)
	if err != nil {
		return Submission{}, err
	}
	if !a.IsPublished() {
		return Submission{}, ErrNotPublished
	}

	enrolled, err := svc.enrollments.IsActivelyEnrolled(ctx, studentID, a.CourseID)
	if err != nil {
		return Submission{}, errors.Wrap(err, "checking enrollment")
	}
	if !enrolled {
		return Submission{}, ErrNotEnrolled
	}

	now := time.Now().UTC()
	isLate := now.After(a.DueAt)
	if isLate && !a.IsLateAllowed {
		return Submission{}, ErrDeadlinePassed
	}

	existing, err := svc.repo.GetSubmissionByAssignmentAndStudent(ctx, ns.AssignmentID, studentID)
	if err != nil {
		if errors.Cause(err) != ErrNotFound {
			return Submission{}, err
		}
		sub := Submission{
			AssignmentID:  ns.AssignmentID,
			StudentID:     studentID,
			CourseID:      a.CourseID,
			Text:          ns.Text,
			FileRef:       ns.FileRef,
			Status:        StatusSubmitted,
			IsLate:        isLate,
			AttemptNumber: 1,
			SubmittedAt:   now,
			UpdatedAt:     now,
		}
		// a lost race against a concurrent first-time submit surfaces as
		// ErrAlreadySubmitted from the store
		return svc.repo.CreateSubmission(ctx, sub)
	}

	if existing.AttemptNumber >= a.MaxAttempts {
		return Submission{}, ErrAttemptsExhausted
	}
	existing.Text = ns.Text
	existing.FileRef = ns.FileRef
	existing.Status = StatusSubmitted
	existing.IsLate = isLate
	existing.AttemptNumber++
	existing.SubmittedAt = now
	existing.UpdatedAt = now
	return svc.repo.UpdateSubmission(ctx, existing)
}

// ReviewSubmission grades a submission. Only the teacher who authored the parent
// assignment may review, and marks may not exceed the assignment's total. The student
// is notified by email.
func (svc *Service) ReviewSubmission(ctx context.Context, id, teacherID string, rev Review) (Submission, error) {
	sub, err := svc.repo.GetSubmission(ctx, id)
	if err != nil {
		return Submission{}, err
	}

	a, err := svc.assignments.GetByID(ctx, sub.AssignmentID)
	if err != nil {
		return Submission{}, err
	}
	if a.CreatedBy != teacherID {
		return Submission{}, ErrNotOwner
	}
	if rev.MarksObtained > a.TotalMarks {
		return Submission{}, core.NewValidationError(
			errMarksExceedTotal,
			core.FieldError{Field: "marks_obtained", Error: errMarksExceedTotal.Error()},
		)
	}

	marks := rev.MarksObtained
	sub.MarksObtained = &marks
	sub.Feedback = rev.Feedback
	sub.Status = StatusReviewed
	sub.UpdatedAt = time.Now().UTC()

	sub, err = svc.repo.UpdateSubmission(ctx, sub)
	if err != nil {
		return Submission{}, err
	}
	svc.notifyReviewed(ctx, sub, a)
	return sub, nil
}

// notifyReviewed emails the student their grade. Failure to resolve the address is
// logged, never surfaced: the review itself already succeeded.
func (svc *Service) notifyReviewed(ctx context.Context, sub Submission, a assignment.Assignment) {
	addr, err := svc.students.StudentEmail(ctx, sub.StudentID)
	if err != nil {
		svc.logger.Error("resolving student email for review notification", err)
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{addr},
		Subject:      "Your submission has been reviewed",
		TemplateName: "submission-reviewed",
		TemplateData: struct {
			AssignmentTitle string
			MarksObtained   int
			TotalMarks      int
			Feedback        string
		}{
			AssignmentTitle: a.Title,
			MarksObtained:   *sub.MarksObtained,
			TotalMarks:      a.TotalMarks,
			Feedback:        sub.Feedback,
		},
	})
}

func (svc *Service) GetByID(ctx context.Context, id string) (Submission, error) {
	return svc.repo.GetSubmission(ctx, id)
}

// QueryForAssignment lists an assignment's submissions newest-first, restricted to the
// authoring teacher, along with review progress counts.
func (svc *Service) QueryForAssignment(ctx context.Context, assignmentID, teacherID string) (AssignmentSubmissions, error) {
	a, err := svc.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		return AssignmentSubmissions{}, err
	}
	if a.CreatedBy != teacherID {
		return AssignmentSubmissions{}, ErrNotOwner
	}

	subs, err := svc.repo.QuerySubmissions(ctx, QueryFilter{AssignmentID: assignmentID})
	if err != nil {
		return AssignmentSubmissions{}, err
	}

	res := AssignmentSubmissions{Submissions: subs, TotalCount: len(subs)}
	for _, sub := range subs {
		if sub.IsReviewed() {
			res.ReviewedCount++
		}
	}
	return res, nil
}

// QueryByStudent lists the student's own submissions, newest-first.
func (svc *Service) QueryByStudent(ctx context.Context, studentID string) ([]Submission, error) {
	return svc.repo.QuerySubmissions(ctx, QueryFilter{StudentID: studentID})
}
