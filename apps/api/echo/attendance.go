package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/attendance"
)

const dateLayout = "2006-01-02"

type attendanceApi struct {
	svc *attendance.Service
}

func registerAttendanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *attendance.Service) {
	api := attendanceApi{svc: svc}

	ag := g.Group("/attendance", jwt)
	ag.POST("", api.mark, teacherMiddleware())
	ag.GET("/check", api.check, teacherMiddleware())
	ag.GET("/mine", api.queryMine, studentMiddleware())
	ag.GET("/course/:courseID", api.queryByCourse, teacherMiddleware())
	ag.GET("/student/:studentID", api.queryByStudent, teacherMiddleware())
	ag.GET("/:id", api.retrieve, teacherMiddleware())
}

// Handlers

func (api *attendanceApi) mark(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data attendance.NewAttendance
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAttendance")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	att, err := api.svc.Mark(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return err
	}
	// re-marking an existing day replaces its roster
	if att.UpdatedAt.After(att.CreatedAt) {
		return ctx.JSON(http.StatusOK, att)
	}
	return ctx.JSON(http.StatusCreated, att)
}

func (api *attendanceApi) check(ctx echo.Context) error {
	courseID := ctx.QueryParam("course_id")
	date, err := time.Parse(dateLayout, ctx.QueryParam("date"))
	if courseID == "" || err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, echo.Map{"error": "course_id and date (YYYY-MM-DD) are required"})
	}

	exists, err := api.svc.Exists(ctx.Request().Context(), courseID, date)
	if err != nil {
		return errors.Wrap(err, "checking attendance")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"exists": exists})
}

func (api *attendanceApi) queryMine(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	stats, err := api.svc.GetForStudent(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "querying attendance")
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (api *attendanceApi) queryByCourse(ctx echo.Context) error {
	var fromPtr, toPtr *time.Time
	if from, err := time.Parse(dateLayout, ctx.QueryParam("from")); err == nil {
		fromPtr = &from
	}
	if to, err := time.Parse(dateLayout, ctx.QueryParam("to")); err == nil {
		toPtr = &to
	}

	res, err := api.svc.GetForCourse(ctx.Request().Context(), ctx.Param("courseID"), fromPtr, toPtr)
	if err != nil {
		return errors.Wrap(err, "querying attendance")
	}
	if res.Sessions == nil {
		res.Sessions = []attendance.Attendance{}
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *attendanceApi) queryByStudent(ctx echo.Context) error {
	stats, err := api.svc.GetForStudent(ctx.Request().Context(), ctx.Param("studentID"))
	if err != nil {
		return errors.Wrap(err, "querying attendance")
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (api *attendanceApi) retrieve(ctx echo.Context) error {
	att, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, att)
}
