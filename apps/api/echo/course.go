package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/course"
)

type courseApi struct {
	svc *course.Service
}

func registerCourseAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *course.Service) {
	api := courseApi{svc: svc}

	cg := g.Group("/courses", jwt)
	cg.POST("", api.create, adminMiddleware())
	cg.GET("", api.query)
	cg.GET("/:id", api.retrieve)
	cg.PUT("/:id/teachers", api.setTeachers, adminMiddleware())

	sg := cg.Group("/:id/syllabus")
	sg.POST("", api.createSyllabus, teacherMiddleware())
	sg.GET("", api.retrieveSyllabus)
	sg.POST("/modules", api.addModule, teacherMiddleware())
	sg.POST("/modules/:idx/lessons", api.addLesson, teacherMiddleware())
}

// Handlers

func (api *courseApi) create(ctx echo.Context) error {
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	crs, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, crs)
}

func (api *courseApi) query(ctx echo.Context) error {
	courses, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	if courses == nil {
		courses = []course.Course{}
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	crs, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) setTeachers(ctx echo.Context) error {
	var data course.SetTeachers
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SetTeachers")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	crs, err := api.svc.SetTeachers(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) createSyllabus(ctx echo.Context) error {
	var data course.NewSyllabus
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSyllabus")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	syl, err := api.svc.CreateSyllabus(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, syl)
}

func (api *courseApi) retrieveSyllabus(ctx echo.Context) error {
	syl, err := api.svc.GetSyllabus(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, syl)
}

func (api *courseApi) addModule(ctx echo.Context) error {
	var data course.Module
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Module")
	}

	syl, err := api.svc.AddModule(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, syl)
}

func (api *courseApi) addLesson(ctx echo.Context) error {
	idx, err := strconv.Atoi(ctx.Param("idx"))
	if err != nil {
		return course.ErrInvalidModuleIndex
	}

	var data course.NewLesson
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLesson")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	syl, err := api.svc.AddLesson(ctx.Request().Context(), ctx.Param("id"), idx, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, syl)
}
