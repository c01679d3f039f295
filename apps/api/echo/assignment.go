package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/assignment"
)

type assignmentApi struct {
	svc *assignment.Service
}

func registerAssignmentAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *assignment.Service) {
	api := assignmentApi{svc: svc}

	ag := g.Group("/assignments", jwt)
	ag.POST("", api.create, teacherMiddleware())
	ag.GET("/mine", api.queryMine, teacherMiddleware())
	ag.GET("/course/:courseID", api.queryByCourse)
	ag.GET("/:id", api.retrieve)
	ag.PUT("/:id", api.update, teacherMiddleware())
	ag.PUT("/:id/publish", api.publish, teacherMiddleware())
	ag.DELETE("/:id", api.destroy, teacherMiddleware())
}

// Handlers

func (api *assignmentApi) create(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data assignment.NewAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssignment")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	assign, err := api.svc.Create(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, assign)
}

func (api *assignmentApi) queryMine(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	assigns, err := api.svc.QueryByTeacher(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "querying assignments")
	}
	if assigns == nil {
		assigns = []assignment.Assignment{}
	}
	return ctx.JSON(http.StatusOK, assigns)
}

func (api *assignmentApi) queryByCourse(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	// students only ever see published assignments
	includeDrafts := claims.IsTeacher || claims.IsAdmin
	assigns, err := api.svc.QueryForCourse(ctx.Request().Context(), ctx.Param("courseID"), includeDrafts)
	if err != nil {
		return errors.Wrap(err, "querying assignments")
	}
	if assigns == nil {
		assigns = []assignment.Assignment{}
	}
	return ctx.JSON(http.StatusOK, assigns)
}

func (api *assignmentApi) retrieve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	assign, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	if !assign.IsPublished() && !(claims.IsTeacher || claims.IsAdmin) {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, assign)
}

func (api *assignmentApi) update(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data assignment.UpdateAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateAssignment")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	assign, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), claims.Subject, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, assign)
}

func (api *assignmentApi) publish(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	assign, err := api.svc.Publish(ctx.Request().Context(), ctx.Param("id"), claims.Subject)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, assign)
}

func (api *assignmentApi) destroy(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id"), claims.Subject); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
