package course

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var (
	// errors
	ErrNotFound           = errors.New("course not found")
	ErrSyllabusNotFound   = errors.New("syllabus not found for this course")
	ErrSyllabusExists     = errors.New("a syllabus already exists for this course")
	ErrInvalidModuleIndex = errors.New("invalid module index")
)

type (
	Repository interface {
		CreateCourse(ctx context.Context, crs Course) (Course, error)
		GetCourse(ctx context.Context, id string) (Course, error)
		QueryAllCourses(ctx context.Context) ([]Course, error)
		UpdateCourse(ctx context.Context, crs Course) (Course, error)

		// CreateSyllabus fails with ErrSyllabusExists when the course already has one.
		CreateSyllabus(ctx context.Context, syl Syllabus) (Syllabus, error)
		GetSyllabusByCourse(ctx context.Context, courseID string) (Syllabus, error)
		UpdateSyllabus(ctx context.Context, syl Syllabus) (Syllabus, error)
	}

	// EnrollmentCounter reports the number of active enrollments in a course.
	// Implemented by the enrollment ledger; the count is derived, never stored.
	EnrollmentCounter interface {
		CountActiveByCourse(ctx context.Context, courseID string) (int, error)
	}

	Service struct {
		repo    Repository
		counter EnrollmentCounter
	}
)

func NewService(repo Repository, counter EnrollmentCounter) *Service {
	return &Service{repo: repo, counter: counter}
}

func (svc *Service) Create(ctx context.Context, nc NewCourse) (Course, error) {
	now := time.Now().UTC()
	crs := Course{
		Title:       nc.Title,
		Description: nc.Description,
		Level:       nc.Level,
		Duration:    nc.Duration,
		TeacherIDs:  nc.TeacherIDs,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateCourse(ctx, crs)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Course, error) {
	crs, err := svc.repo.GetCourse(ctx, id)
	if err != nil {
		return Course{}, err
	}
	if svc.counter != nil {
		if crs.EnrollmentCount, err = svc.counter.CountActiveByCourse(ctx, id); err != nil {
			return Course{}, errors.Wrap(err, "counting enrollments")
		}
	}
	return crs, nil
}

func (svc *Service) QueryAll(ctx context.Context) ([]Course, error) {
	courses, err := svc.repo.QueryAllCourses(ctx)
	if err != nil {
		return nil, err
	}
	if svc.counter != nil {
		for i := range courses {
			if courses[i].EnrollmentCount, err = svc.counter.CountActiveByCourse(ctx, courses[i].ID); err != nil {
				return nil, errors.Wrap(err, "counting enrollments")
			}
		}
	}
	return courses, nil
}

// SetTeachers replaces the course's assigned teacher set.
func (svc *Service) SetTeachers(ctx context.Context, courseID string, st SetTeachers) (Course, error) {
	crs, err := svc.repo.GetCourse(ctx, courseID)
	if err != nil {
		return Course{}, err
	}
	crs.TeacherIDs = st.TeacherIDs
	crs.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateCourse(ctx, crs)
}

// CourseExists reports whether the course exists.
func (svc *Service) CourseExists(ctx context.Context, id string) (bool, error) {
	if _, err := svc.repo.GetCourse(ctx, id); err != nil {
		if errors.Cause(err) == ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// IsTeacherAssigned reports whether the teacher is assigned to the course.
func (svc *Service) IsTeacherAssigned(ctx context.Context, teacherID, courseID string) (bool, error) {
	crs, err := svc.repo.GetCourse(ctx, courseID)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return false, nil
		}
		return false, err
	}
	for _, id := range crs.TeacherIDs {
		if id == teacherID {
			return true, nil
		}
	}
	return false, nil
}

// CourseLectureIDs yields the valid lecture id set of the course's syllabus.
// A course without a syllabus has no valid lectures.
func (svc *Service) CourseLectureIDs(ctx context.Context, courseID string) ([]string, error) {
	syl, err := svc.repo.GetSyllabusByCourse(ctx, courseID)
	if err != nil {
		if errors.Cause(err) == ErrSyllabusNotFound {
			return nil, nil
		}
		return nil, err
	}
	return syl.LectureIDs(), nil
}

func (svc *Service) CreateSyllabus(ctx context.Context, courseID string, ns NewSyllabus) (Syllabus, error) {
	if _, err := svc.repo.GetCourse(ctx, courseID); err != nil {
		return Syllabus{}, err
	}
	now := time.Now().UTC()
	syl := Syllabus{
		CourseID:         courseID,
		Title:            ns.Title,
		Modules:          ns.Modules,
		LearningOutcomes: ns.LearningOutcomes,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	return svc.repo.CreateSyllabus(ctx, syl)
}

func (svc *Service) GetSyllabus(ctx context.Context, courseID string) (Syllabus, error) {
	return svc.repo.GetSyllabusByCourse(ctx, courseID)
}

func (svc *Service) AddModule(ctx context.Context, courseID string, mod Module) (Syllabus, error) {
	syl, err := svc.repo.GetSyllabusByCourse(ctx, courseID)
	if err != nil {
		return Syllabus{}, err
	}
	syl.Modules = append(syl.Modules, mod)
	syl.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateSyllabus(ctx, syl)
}

func (svc *Service) AddLesson(ctx context.Context, courseID string, moduleIdx int, nl NewLesson) (Syllabus, error) {
	syl, err := svc.repo.GetSyllabusByCourse(ctx, courseID)
	if err != nil {
		return Syllabus{}, err
	}
	if moduleIdx < 0 || moduleIdx >= len(syl.Modules) {
		return Syllabus{}, ErrInvalidModuleIndex
	}
	syl.Modules[moduleIdx].Lectures = append(syl.Modules[moduleIdx].Lectures, Lecture{
		Title:         nl.Title,
		ContentType:   nl.ContentType,
		Duration:      nl.Duration,
		ContentURL:    nl.ContentURL,
		IsFreePreview: nl.IsFreePreview,
	})
	syl.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateSyllabus(ctx, syl)
}
