package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/enrollment"
)

type enrollmentApi struct {
	svc *enrollment.Service
}

func registerEnrollmentAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *enrollment.Service) {
	api := enrollmentApi{svc: svc}

	eg := g.Group("/enrollments", jwt)
	eg.POST("", api.enroll, adminMiddleware())
	eg.GET("", api.query, adminMiddleware())
	eg.GET("/mine", api.queryMine, studentMiddleware())
	eg.GET("/course/:courseID", api.queryByCourse, teacherMiddleware())
	eg.GET("/:id", api.retrieve)
	eg.PUT("/:id/progress", api.updateProgress, studentMiddleware())
	eg.DELETE("/:id", api.cancel, adminMiddleware())
}

// Handlers

func (api *enrollmentApi) enroll(ctx echo.Context) error {
	var data enrollment.NewEnrollment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEnrollment")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	enr, err := api.svc.Enroll(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, enr)
}

func (api *enrollmentApi) query(ctx echo.Context) error {
	enrs, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying enrollments")
	}
	if enrs == nil {
		enrs = []enrollment.Enrollment{}
	}
	return ctx.JSON(http.StatusOK, enrs)
}

func (api *enrollmentApi) queryMine(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	enrs, err := api.svc.QueryByStudent(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "querying enrollments")
	}
	if enrs == nil {
		enrs = []enrollment.Enrollment{}
	}
	return ctx.JSON(http.StatusOK, enrs)
}

func (api *enrollmentApi) queryByCourse(ctx echo.Context) error {
	enrs, err := api.svc.QueryByCourse(ctx.Request().Context(), ctx.Param("courseID"))
	if err != nil {
		return errors.Wrap(err, "querying enrollments")
	}
	if enrs == nil {
		enrs = []enrollment.Enrollment{}
	}
	return ctx.JSON(http.StatusOK, enrs)
}

func (api *enrollmentApi) retrieve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	enr, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	// students may only see their own enrollments
	if claims.IsStudent && !claims.IsAdmin && enr.StudentID != claims.Subject {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, enr)
}

func (api *enrollmentApi) updateProgress(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data enrollment.ProgressUpdate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ProgressUpdate")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	enr, err := api.svc.UpdateProgress(ctx.Request().Context(), ctx.Param("id"), claims.Subject, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, enr)
}

func (api *enrollmentApi) cancel(ctx echo.Context) error {
	enr, err := api.svc.Cancel(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, enr)
}
