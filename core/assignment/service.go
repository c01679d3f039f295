package assignment

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
)

var (
	// errors
	ErrNotFound    = errors.New("assignment not found")
	ErrNotAssigned = errors.New("you are not assigned to this course")
	ErrNotOwner    = errors.New("you can only manage your own assignments")
)

type (
	Repository interface {
		CreateAssignment(ctx context.Context, a Assignment) (Assignment, error)
		GetAssignment(ctx context.Context, id string) (Assignment, error)
		// QueryAssignments applies AND on available filter fields; ordering defaults to
		// newest-first when none is given.
		QueryAssignments(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Assignment, error)
		UpdateAssignment(ctx context.Context, a Assignment) (Assignment, error)
		DeleteAssignment(ctx context.Context, id string) error
	}

	// TeacherRoster reports course assignments of teachers; implemented by the course
	// service.
	TeacherRoster interface {
		IsTeacherAssigned(ctx context.Context, teacherID, courseID string) (bool, error)
	}

	Service struct {
		repo   Repository
		roster TeacherRoster
	}
)

func NewService(repo Repository, roster TeacherRoster) *Service {
	return &Service{repo: repo, roster: roster}
}

// Create registers a Draft assignment authored by the teacher, who must be assigned to
// the course.
func (svc *Service) Create(ctx context.Context, teacherID string, na NewAssignment) (Assignment, error) {
	assigned, err := svc.roster.IsTeacherAssigned(ctx, teacherID, na.CourseID)
	if err != nil {
		return Assignment{}, errors.Wrap(err, "checking course assignment")
	}
	if !assigned {
		return Assignment{}, ErrNotAssigned
	}

	now := time.Now().UTC()
	a := Assignment{
		CourseID:      na.CourseID,
		Title:         na.Title,
		Description:   na.Description,
		DueAt:         na.DueAt.UTC(),
		TotalMarks:    na.TotalMarks,
		CreatedBy:     teacherID,
		Status:        StatusDraft,
		IsLateAllowed: na.IsLateAllowed,
		MaxAttempts:   na.MaxAttempts,
		Attachments:   na.Attachments,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	return svc.repo.CreateAssignment(ctx, a)
}

// getOwned resolves the assignment and enforces authorship.
func (svc *Service) getOwned(ctx context.Context, id, teacherID string) (Assignment, error) {
	a, err := svc.repo.GetAssignment(ctx, id)
	if err != nil {
		return Assignment{}, err
	}
	if a.CreatedBy != teacherID {
		return Assignment{}, ErrNotOwner
	}
	return a, nil
}

// Publish makes the assignment visible to enrolled students. Publishing does not freeze
// the assignment: update/delete stay owner-gated regardless of status.
func (svc *Service) Publish(ctx context.Context, id, teacherID string) (Assignment, error) {
	a, err := svc.getOwned(ctx, id, teacherID)
	if err != nil {
		return Assignment{}, err
	}
	a.Status = StatusPublished
	a.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateAssignment(ctx, a)
}

func (svc *Service) Update(ctx context.Context, id, teacherID string, ua UpdateAssignment) (Assignment, error) {
	a, err := svc.getOwned(ctx, id, teacherID)
	if err != nil {
		return Assignment{}, err
	}

	if ua.Title != "" {
		a.Title = ua.Title
	}
	if ua.Description != "" {
		a.Description = ua.Description
	}
	if ua.DueAt != nil {
		a.DueAt = ua.DueAt.UTC()
	}
	if ua.TotalMarks != nil {
		a.TotalMarks = *ua.TotalMarks
	}
	if ua.IsLateAllowed != nil {
		a.IsLateAllowed = *ua.IsLateAllowed
	}
	if ua.MaxAttempts != nil {
		a.MaxAttempts = *ua.MaxAttempts
	}
	if ua.Attachments != nil {
		a.Attachments = ua.Attachments
	}
	a.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateAssignment(ctx, a)
}

func (svc *Service) Delete(ctx context.Context, id, teacherID string) error {
	if _, err := svc.getOwned(ctx, id, teacherID); err != nil {
		return err
	}
	return svc.repo.DeleteAssignment(ctx, id)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Assignment, error) {
	return svc.repo.GetAssignment(ctx, id)
}

// QueryForCourse lists a course's assignments ordered by ascending due date.
// Students only see Published ones.
func (svc *Service) QueryForCourse(ctx context.Context, courseID string, includeDrafts bool) ([]Assignment, error) {
	return svc.repo.QueryAssignments(
		ctx,
		QueryFilter{CourseID: courseID, PublishedOnly: !includeDrafts},
		core.DBOrdering{Field: "due_at", Ascending: true},
	)
}

// QueryByTeacher lists all assignments authored by the teacher, newest-first.
func (svc *Service) QueryByTeacher(ctx context.Context, teacherID string) ([]Assignment, error) {
	return svc.repo.QueryAssignments(ctx, QueryFilter{CreatedBy: teacherID})
}
