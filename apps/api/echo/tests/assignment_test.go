package tests

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core/assignment"
	"github.com/trezcool/shule/core/user"
)

func Test_assignmentApi_create(t *testing.T) {
	student := createUser(t, "Student", "assignstudent", "assignstudent@test.cd", "", user.StudentRoles, true)
	teacher := createUser(t, "Teacher", "assignteacher", "assignteacher@test.cd", "", user.TeacherRoles, true)
	outsider := createUser(t, "Outsider", "assignoutsider", "assignoutsider@test.cd", "", user.TeacherRoles, true)
	crs := createCourse(t, "Maths 101", teacher.ID)

	body := marchallObj(t, assignment.NewAssignment{
		CourseID:    crs.ID,
		Title:       "Homework 1",
		Description: "Solve the odd-numbered exercises.",
		DueAt:       time.Now().Add(72 * time.Hour),
		TotalMarks:  20,
	})

	tests := []httpTest{
		{name: "auth required", body: body, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "teacher required", body: body, token: getToken(t, student), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{
			name: "must be assigned to the course", body: body, token: getToken(t, outsider),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: assignment.ErrNotAssigned.Error()}),
		},
		{name: "create", body: body, token: getToken(t, teacher), wantCode: http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/assignments", tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
				return
			}
			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			var a assignment.Assignment
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &a))
			assert.Equal(t, assignment.StatusDraft, a.Status)
			assert.Equal(t, teacher.ID, a.CreatedBy)
			// attempts default to a single one
			assert.Equal(t, 1, a.MaxAttempts)
		})
	}
}

func Test_assignmentApi_publish(t *testing.T) {
	teacher := createUser(t, "Teacher", "pubteacher", "pubteacher@test.cd", "", user.TeacherRoles, true)
	rival := createUser(t, "Rival", "pubrival", "pubrival@test.cd", "", user.TeacherRoles, true)
	crs := createCourse(t, "Maths 102", teacher.ID, rival.ID)
	a := createAssignment(t, teacher.ID, crs.ID, time.Now().Add(72*time.Hour), false)

	path := "/v1/assignments/" + a.ID + "/publish"

	t.Run("only the author", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, path, getToken(t, rival))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: assignment.ErrNotOwner.Error()})}, rec)
	})

	t.Run("publish", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, path, getToken(t, teacher))
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var got assignment.Assignment
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, assignment.StatusPublished, got.Status)
	})
}

func Test_assignmentApi_queryByCourse(t *testing.T) {
	student := createUser(t, "Student", "aqcstudent", "aqcstudent@test.cd", "", user.StudentRoles, true)
	teacher := createUser(t, "Teacher", "aqcteacher", "aqcteacher@test.cd", "", user.TeacherRoles, true)
	crs := createCourse(t, "Maths 103", teacher.ID)

	later := createAssignment(t, teacher.ID, crs.ID, time.Now().Add(96*time.Hour), true)
	sooner := createAssignment(t, teacher.ID, crs.ID, time.Now().Add(24*time.Hour), true)
	draft := createAssignment(t, teacher.ID, crs.ID, time.Now().Add(48*time.Hour), false)

	path := "/v1/assignments/course/" + crs.ID

	query := func(t *testing.T, token string) []assignment.Assignment {
		req, rec := newAuthRequest(http.MethodGet, path, token)
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var assigns []assignment.Assignment
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &assigns))
		return assigns
	}

	t.Run("students only see published, due date ascending", func(t *testing.T) {
		assigns := query(t, getToken(t, student))
		require.Len(t, assigns, 2)
		assert.Equal(t, sooner.ID, assigns[0].ID)
		assert.Equal(t, later.ID, assigns[1].ID)
	})

	t.Run("teachers see drafts too", func(t *testing.T) {
		assigns := query(t, getToken(t, teacher))
		require.Len(t, assigns, 3)
		assert.Equal(t, sooner.ID, assigns[0].ID)
		assert.Equal(t, draft.ID, assigns[1].ID)
		assert.Equal(t, later.ID, assigns[2].ID)
	})
}

func Test_assignmentApi_update(t *testing.T) {
	teacher := createUser(t, "Teacher", "updteacher", "updteacher@test.cd", "", user.TeacherRoles, true)
	crs := createCourse(t, "Maths 104", teacher.ID)
	a := createAssignment(t, teacher.ID, crs.ID, time.Now().Add(72*time.Hour), true)

	marks := 50
	req, rec := newAuthRequest(http.MethodPut, "/v1/assignments/"+a.ID, getToken(t, teacher),
		marchallObj(t, assignment.UpdateAssignment{Title: "Extended revision", TotalMarks: &marks}))
	app.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var got assignment.Assignment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Extended revision", got.Title)
	assert.Equal(t, 50, got.TotalMarks)
	// untouched fields keep their values, publishing does not freeze edits
	assert.Equal(t, a.Description, got.Description)
	assert.Equal(t, assignment.StatusPublished, got.Status)
}

func Test_assignmentApi_destroy(t *testing.T) {
	teacher := createUser(t, "Teacher", "delteacher", "delteacher@test.cd", "", user.TeacherRoles, true)
	crs := createCourse(t, "Maths 105", teacher.ID)
	a := createAssignment(t, teacher.ID, crs.ID, time.Now().Add(72*time.Hour), false)

	teacherToken := getToken(t, teacher)

	req, rec := newAuthRequest(http.MethodDelete, "/v1/assignments/"+a.ID, teacherToken)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	req, rec = newAuthRequest(http.MethodGet, "/v1/assignments/"+a.ID, teacherToken)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: assignment.ErrNotFound.Error()})}, rec)
}
