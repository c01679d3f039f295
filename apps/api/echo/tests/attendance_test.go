package tests

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core/attendance"
	"github.com/trezcool/shule/core/user"
)

func markAttendance(t *testing.T, token string, na attendance.NewAttendance) (*markResult, attendance.Attendance) {
	t.Helper()
	req, rec := newAuthRequest(http.MethodPost, "/v1/attendance", token, marchallObj(t, na))
	app.ServeHTTP(rec, req)

	var att attendance.Attendance
	if rec.Code < http.StatusBadRequest {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &att))
	}
	return &markResult{code: rec.Code, body: rec.Body.Bytes()}, att
}

type markResult struct {
	code int
	body []byte
}

func Test_attendanceApi_mark(t *testing.T) {
	student := createUser(t, "Student", "attstudent", "attstudent@test.cd", "", user.StudentRoles, true)
	teacher := createUser(t, "Teacher", "attteacher", "attteacher@test.cd", "", user.TeacherRoles, true)
	outsider := createUser(t, "Outsider", "attoutsider", "attoutsider@test.cd", "", user.TeacherRoles, true)
	crs := createCourse(t, "Civics 101", teacher.ID)

	day := time.Date(2021, 3, 15, 10, 30, 0, 0, time.UTC)
	na := attendance.NewAttendance{
		CourseID: crs.ID,
		Date:     day,
		Records: []attendance.Record{
			{StudentID: student.ID, Status: attendance.StatusPresent},
		},
	}

	t.Run("teacher required", func(t *testing.T) {
		res, _ := markAttendance(t, getToken(t, student), na)
		require.Equal(t, http.StatusForbidden, res.code, string(res.body))
	})

	t.Run("must be assigned to the course", func(t *testing.T) {
		res, _ := markAttendance(t, getToken(t, outsider), na)
		require.Equal(t, http.StatusForbidden, res.code, string(res.body))
		var got httpErr
		require.NoError(t, json.Unmarshal(res.body, &got))
		assert.Equal(t, attendance.ErrNotAssigned.Error(), got.Error)
	})

	t.Run("invalid status", func(t *testing.T) {
		bad := na
		bad.Records = []attendance.Record{{StudentID: student.ID, Status: "Sleeping"}}
		res, _ := markAttendance(t, getToken(t, teacher), bad)
		require.Equal(t, http.StatusBadRequest, res.code, string(res.body))
	})

	t.Run("mark", func(t *testing.T) {
		res, att := markAttendance(t, getToken(t, teacher), na)
		require.Equal(t, http.StatusCreated, res.code, string(res.body))
		assert.Equal(t, teacher.ID, att.MarkedBy)
		// the date is kept as a calendar day
		assert.True(t, att.Date.Equal(time.Date(2021, 3, 15, 0, 0, 0, 0, time.UTC)))
	})

	t.Run("re-marking the day replaces the roster", func(t *testing.T) {
		remark := na
		remark.Date = day.Add(4 * time.Hour) // same day, later in the afternoon
		remark.Records = []attendance.Record{
			{StudentID: student.ID, Status: attendance.StatusLate},
		}
		remark.Notes = "arrived after the bell"

		res, att := markAttendance(t, getToken(t, teacher), remark)
		require.Equal(t, http.StatusOK, res.code, string(res.body))
		require.Len(t, att.Records, 1)
		assert.Equal(t, attendance.StatusLate, att.Records[0].Status)
		assert.Equal(t, "arrived after the bell", att.Notes)
	})
}

func Test_attendanceApi_check(t *testing.T) {
	teacher := createUser(t, "Teacher", "checkteacher", "checkteacher@test.cd", "", user.TeacherRoles, true)
	student := createUser(t, "Student", "checkstudent", "checkstudent@test.cd", "", user.StudentRoles, true)
	crs := createCourse(t, "Civics 102", teacher.ID)

	teacherToken := getToken(t, teacher)
	_, _ = markAttendance(t, teacherToken, attendance.NewAttendance{
		CourseID: crs.ID,
		Date:     time.Date(2021, 3, 16, 8, 0, 0, 0, time.UTC),
		Records:  []attendance.Record{{StudentID: student.ID, Status: attendance.StatusPresent}},
	})

	check := func(t *testing.T, courseID, date string) (int, map[string]bool) {
		v := make(url.Values)
		v.Set("course_id", courseID)
		v.Set("date", date)
		req, rec := newAuthRequest(http.MethodGet, "/v1/attendance/check?"+v.Encode(), teacherToken)
		app.ServeHTTP(rec, req)

		var resp map[string]bool
		_ = json.Unmarshal(rec.Body.Bytes(), &resp)
		return rec.Code, resp
	}

	t.Run("missing params", func(t *testing.T) {
		code, _ := check(t, "", "")
		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("marked day", func(t *testing.T) {
		code, resp := check(t, crs.ID, "2021-03-16")
		require.Equal(t, http.StatusOK, code)
		assert.True(t, resp["exists"])
	})

	t.Run("unmarked day", func(t *testing.T) {
		code, resp := check(t, crs.ID, "2021-03-17")
		require.Equal(t, http.StatusOK, code)
		assert.False(t, resp["exists"])
	})
}

func Test_attendanceApi_queryByCourse(t *testing.T) {
	teacher := createUser(t, "Teacher", "aqbcteacher", "aqbcteacher@test.cd", "", user.TeacherRoles, true)
	student := createUser(t, "Student", "aqbcstudent", "aqbcstudent@test.cd", "", user.StudentRoles, true)
	crs := createCourse(t, "Civics 103", teacher.ID)

	teacherToken := getToken(t, teacher)
	for _, day := range []int{1, 2, 3} {
		_, _ = markAttendance(t, teacherToken, attendance.NewAttendance{
			CourseID: crs.ID,
			Date:     time.Date(2021, 4, day, 8, 0, 0, 0, time.UTC),
			Records:  []attendance.Record{{StudentID: student.ID, Status: attendance.StatusPresent}},
		})
	}

	t.Run("full history, newest first", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/attendance/course/"+crs.ID, teacherToken)
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var res attendance.CourseAttendance
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		require.Equal(t, 3, res.TotalDays)
		assert.True(t, res.Sessions[0].Date.After(res.Sessions[2].Date))
	})

	t.Run("date range", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/attendance/course/"+crs.ID+"?from=2021-04-02&to=2021-04-03", teacherToken)
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var res attendance.CourseAttendance
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Equal(t, 2, res.TotalDays)
	})
}

func Test_attendanceApi_studentStats(t *testing.T) {
	teacher := createUser(t, "Teacher", "statsteacher", "statsteacher@test.cd", "", user.TeacherRoles, true)
	student := createUser(t, "Student", "statsstudent", "statsstudent@test.cd", "", user.StudentRoles, true)
	crs := createCourse(t, "Civics 104", teacher.ID)

	teacherToken := getToken(t, teacher)
	statuses := []string{attendance.StatusPresent, attendance.StatusAbsent, attendance.StatusPresent, attendance.StatusLate}
	for i, status := range statuses {
		_, _ = markAttendance(t, teacherToken, attendance.NewAttendance{
			CourseID: crs.ID,
			Date:     time.Date(2021, 5, i+1, 8, 0, 0, 0, time.UTC),
			Records:  []attendance.Record{{StudentID: student.ID, Status: status}},
		})
	}

	getStats := func(t *testing.T, path, token string) attendance.StudentAttendance {
		req, rec := newAuthRequest(http.MethodGet, path, token)
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var stats attendance.StudentAttendance
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
		return stats
	}

	t.Run("own stats", func(t *testing.T) {
		stats := getStats(t, "/v1/attendance/mine", getToken(t, student))
		require.Len(t, stats.PerCourse, 1)
		crsStats := stats.PerCourse[0]
		assert.Equal(t, crs.ID, crsStats.CourseID)
		assert.Equal(t, 4, crsStats.TotalDays)
		assert.Equal(t, 2, crsStats.PresentDays)
		assert.Equal(t, 2, crsStats.AbsentDays)
		// only Present counts: 2 of 4
		assert.Equal(t, 50, crsStats.Percentage)
		assert.Equal(t, crsStats.Percentage, stats.Overall.Percentage)
	})

	t.Run("teachers can pull a student's stats", func(t *testing.T) {
		stats := getStats(t, "/v1/attendance/student/"+student.ID, teacherToken)
		assert.Equal(t, 4, stats.Overall.TotalDays)
	})

	t.Run("no sessions scores zero", func(t *testing.T) {
		fresh := createUser(t, "Fresh", "statsfresh", "statsfresh@test.cd", "", user.StudentRoles, true)
		stats := getStats(t, "/v1/attendance/mine", getToken(t, fresh))
		assert.Empty(t, stats.PerCourse)
		assert.Zero(t, stats.Overall.Percentage)
	})
}
