package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core/course"
	"github.com/trezcool/shule/core/user"
)

func Test_courseApi_create(t *testing.T) {
	student := createUser(t, "Student", "coursestudent", "coursestudent@test.cd", "", user.StudentRoles, true)
	teacher := createUser(t, "Teacher", "courseteacher", "courseteacher@test.cd", "", user.TeacherRoles, true)
	admin := createUser(t, "Admin", "courseadmin", "courseadmin@test.cd", "", []string{user.RoleAdmin}, true)

	body := marchallObj(t, course.NewCourse{
		Title:      "Algebra II",
		Level:      "Intermediate",
		Duration:   "8 weeks",
		TeacherIDs: []string{teacher.ID},
	})

	tests := []httpTest{
		{name: "auth required", body: body, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "admin required (student)", body: body, token: getToken(t, student), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{name: "admin required (teacher)", body: body, token: getToken(t, teacher), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{
			name: "empty title", body: marchallObj(t, course.NewCourse{}), token: getToken(t, admin),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"title": "this field is required"}),
		},
		{name: "create", body: body, token: getToken(t, admin), wantCode: http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/courses", tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
				return
			}
			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			var crs course.Course
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &crs))
			assert.Equal(t, "Algebra II", crs.Title)
			assert.Equal(t, []string{teacher.ID}, crs.TeacherIDs)
			assert.Zero(t, crs.EnrollmentCount)
			assert.NotEmpty(t, crs.ID)
		})
	}
}

func Test_courseApi_retrieve(t *testing.T) {
	student := createUser(t, "Student", "crsretrstudent", "crsretrstudent@test.cd", "", user.StudentRoles, true)
	crs := createCourse(t, "Biology 101")
	createEnrollment(t, student.ID, crs.ID)

	t.Run("unknown course", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/courses/lol", getToken(t, student))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: course.ErrNotFound.Error()})}, rec)
	})

	t.Run("enrollment count is derived", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/courses/"+crs.ID, getToken(t, student))
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var got course.Course
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, crs.ID, got.ID)
		assert.Equal(t, 1, got.EnrollmentCount)
	})
}

func Test_courseApi_setTeachers(t *testing.T) {
	teacher := createUser(t, "Teacher", "setteacher01", "setteacher01@test.cd", "", user.TeacherRoles, true)
	admin := createUser(t, "Admin", "setteachadmin", "setteachadmin@test.cd", "", []string{user.RoleAdmin}, true)
	crs := createCourse(t, "Chemistry 101")

	t.Run("admin required", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/courses/"+crs.ID+"/teachers", getToken(t, teacher),
			marchallObj(t, course.SetTeachers{TeacherIDs: []string{teacher.ID}}))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}, rec)
	})

	t.Run("replace teacher set", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/courses/"+crs.ID+"/teachers", getToken(t, admin),
			marchallObj(t, course.SetTeachers{TeacherIDs: []string{teacher.ID}}))
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var got course.Course
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, []string{teacher.ID}, got.TeacherIDs)
	})
}

func Test_courseApi_syllabus(t *testing.T) {
	student := createUser(t, "Student", "sylstudent", "sylstudent@test.cd", "", user.StudentRoles, true)
	teacher := createUser(t, "Teacher", "sylteacher", "sylteacher@test.cd", "", user.TeacherRoles, true)
	crs := createCourse(t, "Physics 101", teacher.ID)

	teacherToken := getToken(t, teacher)
	newSyl := marchallObj(t, course.NewSyllabus{
		Title: "Physics 101 Outline",
		Modules: []course.Module{
			{Title: "Kinematics", Lectures: []course.Lecture{{Title: "Velocity", ContentType: course.ContentVideo}}},
		},
		LearningOutcomes: []string{"Understand motion"},
	})

	t.Run("teacher required", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/courses/"+crs.ID+"/syllabus", getToken(t, student), newSyl)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}, rec)
	})

	t.Run("no syllabus yet", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/courses/"+crs.ID+"/syllabus", teacherToken)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: course.ErrSyllabusNotFound.Error()})}, rec)
	})

	t.Run("create", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/courses/"+crs.ID+"/syllabus", teacherToken, newSyl)
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var syl course.Syllabus
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &syl))
		assert.Equal(t, crs.ID, syl.CourseID)
		assert.Len(t, syl.Modules, 1)
	})

	t.Run("only one per course", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/courses/"+crs.ID+"/syllabus", teacherToken, newSyl)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusConflict, wantData: marchallObj(t, httpErr{Error: course.ErrSyllabusExists.Error()})}, rec)
	})

	t.Run("add module", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/courses/"+crs.ID+"/syllabus/modules", teacherToken,
			marchallObj(t, course.Module{Title: "Dynamics"}))
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var syl course.Syllabus
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &syl))
		assert.Len(t, syl.Modules, 2)
	})

	t.Run("add lesson to module", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/courses/"+crs.ID+"/syllabus/modules/1/lessons", teacherToken,
			marchallObj(t, course.NewLesson{Title: "Newton's laws"}))
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var syl course.Syllabus
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &syl))
		require.Len(t, syl.Modules[1].Lectures, 1)
		// omitted content type falls back to Video
		assert.Equal(t, course.ContentVideo, syl.Modules[1].Lectures[0].ContentType)
	})

	t.Run("add lesson to unknown module", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/courses/"+crs.ID+"/syllabus/modules/9/lessons", teacherToken,
			marchallObj(t, course.NewLesson{Title: "Lost lesson"}))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: course.ErrInvalidModuleIndex.Error()})}, rec)
	})
}
