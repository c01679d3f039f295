package tests

import (
	"fmt"
	"os"
	"testing"

	echoapi "github.com/trezcool/shule/apps/api/echo"
	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/assignment"
	"github.com/trezcool/shule/core/attendance"
	"github.com/trezcool/shule/core/course"
	"github.com/trezcool/shule/core/enrollment"
	"github.com/trezcool/shule/core/submission"
	"github.com/trezcool/shule/core/user"
	emailsvc "github.com/trezcool/shule/services/email"
	dummydb "github.com/trezcool/shule/storage/database/dummy"
)

var (
	app *echoapi.Server

	usrRepo user.Repository

	usrSvc        *user.Service
	courseSvc     *course.Service
	enrollmentSvc *enrollment.Service
	assignmentSvc *assignment.Service
	submissionSvc *submission.Service
	attendanceSvc *attendance.Service

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errForbidden    = httpErr{Error: "permission denied"}
)

func TestMain(m *testing.M) {
	// set up DB & repos
	db, err := dummydb.Open()
	if err != nil {
		fmt.Printf("dummydb.Open(): %v", err)
		os.Exit(1)
	}
	usrRepo = dummydb.NewUserRepository(db)
	courseRepo := dummydb.NewCourseRepository(db)
	enrRepo := dummydb.NewEnrollmentRepository(db)
	assignRepo := dummydb.NewAssignmentRepository(db)
	subRepo := dummydb.NewSubmissionRepository(db)
	attRepo := dummydb.NewAttendanceRepository(db)

	// set up services
	logger := nopLogger{}
	mailSvc := emailsvc.NewConsoleServiceMock()
	usrSvc = user.NewService(usrRepo, mailSvc)
	courseSvc = course.NewService(courseRepo, enrRepo)
	enrollmentSvc = enrollment.NewService(enrRepo, usrSvc, courseSvc)
	assignmentSvc = assignment.NewService(assignRepo, courseSvc)
	submissionSvc = submission.NewService(subRepo, assignmentSvc, enrollmentSvc, usrSvc, mailSvc, logger)
	attendanceSvc = attendance.NewService(attRepo, courseSvc)

	// set up server
	app = echoapi.NewServer(
		echoapi.ServerDeps{
			Logger:         logger,
			DisableReqLogs: true,
			UserSvc:        usrSvc,
			CourseSvc:      courseSvc,
			EnrollmentSvc:  enrollmentSvc,
			AssignmentSvc:  assignmentSvc,
			SubmissionSvc:  submissionSvc,
			AttendanceSvc:  attendanceSvc,
		},
	)

	os.Exit(m.Run())
}

type nopLogger struct{}

var _ core.Logger = nopLogger{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}
