package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/submission"
)

type submissionApi struct {
	svc *submission.Service
}

func registerSubmissionAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *submission.Service) {
	api := submissionApi{svc: svc}

	sg := g.Group("/submissions", jwt)
	sg.POST("", api.submit, studentMiddleware())
	sg.GET("/mine", api.queryMine, studentMiddleware())
	sg.GET("/assignment/:assignmentID", api.queryByAssignment, teacherMiddleware())
	sg.GET("/:id", api.retrieve)
	sg.PUT("/:id/review", api.review, teacherMiddleware())
}

// Handlers

func (api *submissionApi) submit(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data submission.NewSubmission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubmission")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	sub, err := api.svc.Submit(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return err
	}
	if sub.AttemptNumber > 1 {
		return ctx.JSON(http.StatusOK, sub)
	}
	return ctx.JSON(http.StatusCreated, sub)
}

func (api *submissionApi) queryMine(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	subs, err := api.svc.QueryByStudent(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "querying submissions")
	}
	if subs == nil {
		subs = []submission.Submission{}
	}
	return ctx.JSON(http.StatusOK, subs)
}

func (api *submissionApi) queryByAssignment(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	res, err := api.svc.QueryForAssignment(ctx.Request().Context(), ctx.Param("assignmentID"), claims.Subject)
	if err != nil {
		return err
	}
	if res.Submissions == nil {
		res.Submissions = []submission.Submission{}
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *submissionApi) retrieve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	sub, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	// students may only see their own submissions
	if !(claims.IsTeacher || claims.IsAdmin) && sub.StudentID != claims.Subject {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *submissionApi) review(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data submission.Review
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Review")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	sub, err := api.svc.ReviewSubmission(ctx.Request().Context(), ctx.Param("id"), claims.Subject, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sub)
}
