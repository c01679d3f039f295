package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	echoapi "github.com/trezcool/shule/apps/api/echo"
	"github.com/trezcool/shule/core/assignment"
	"github.com/trezcool/shule/core/course"
	"github.com/trezcool/shule/core/enrollment"
	"github.com/trezcool/shule/core/user"
)

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	claims := echoapi.GetUserClaims(usr)
	token, err := echoapi.GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ObjectsAreEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

// Fixtures

func createUser(t *testing.T, name, uname, email, pwd string, roles []string, isActive bool) user.User {
	t.Helper()
	now := time.Now().UTC()
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		IsActive:  &isActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("createUser(): %v", err)
		}
	}
	usr, err := usrRepo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("createUser(): %v", err)
	}
	return usr
}

func createCourse(t *testing.T, title string, teacherIDs ...string) course.Course {
	t.Helper()
	crs, err := courseSvc.Create(context.Background(), course.NewCourse{
		Title:      title,
		Level:      "Beginner",
		Duration:   "6 weeks",
		TeacherIDs: teacherIDs,
	})
	if err != nil {
		t.Fatalf("createCourse(): %v", err)
	}
	return crs
}

func createEnrollment(t *testing.T, studentID, courseID string) enrollment.Enrollment {
	t.Helper()
	enr, err := enrollmentSvc.Enroll(context.Background(), enrollment.NewEnrollment{StudentID: studentID, CourseID: courseID})
	if err != nil {
		t.Fatalf("createEnrollment(): %v", err)
	}
	return enr
}

func createAssignment(t *testing.T, teacherID, courseID string, dueAt time.Time, publish bool) assignment.Assignment {
	t.Helper()
	ctx := context.Background()
	assign, err := assignmentSvc.Create(ctx, teacherID, assignment.NewAssignment{
		CourseID:    courseID,
		Title:       "Past paper revision",
		Description: "Work through the attached questions.",
		DueAt:       dueAt,
		TotalMarks:  20,
	})
	if err != nil {
		t.Fatalf("createAssignment(): %v", err)
	}
	if publish {
		if assign, err = assignmentSvc.Publish(ctx, assign.ID, teacherID); err != nil {
			t.Fatalf("createAssignment(): %v", err)
		}
	}
	return assign
}
