package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/edulabbr/oratoria/core"
	"github.com/edulabbr/oratoria/core/lesson"
	"github.com/edulabbr/oratoria/core/progress"
)

type progressApi struct {
	svc      progress.Service
	validate *validator.Validate
}

func registerProgressAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := progressApi{
		svc:      deps.ProgressSvc,
		validate: deps.Validate,
	}

	g.POST("/scores", api.createScore, jwt)
	g.POST("/speech/score", api.scoreSpeech, jwt)

	pg := g.Group("/progress", jwt)
	pg.GET("/me", api.myDashboard)
	pg.GET("/students", api.studentAnalytics, teacherMiddleware())
}

// Handlers

func (api *progressApi) createScore(ctx echo.Context) error {
	var data progress.NewScore
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewScore")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	score, err := api.svc.RecordScore(data, claims.Subject)
	if err != nil {
		if errors.Cause(err) == lesson.ErrModuleNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "recording score")
	}
	return ctx.JSON(http.StatusCreated, score)
}

func (api *progressApi) scoreSpeech(ctx echo.Context) error {
	var data progress.NewSpeechAttempt
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSpeechAttempt")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	res, err := api.svc.RecordSpeechAttempt(data, claims.Subject)
	if err != nil {
		switch errors.Cause(err) {
		case lesson.ErrModuleNotFound:
			return errHttpNotFound
		case progress.ErrNotSpeakingModule:
			return core.NewValidationError(progress.ErrNotSpeakingModule)
		}
		return errors.Wrap(err, "recording speech attempt")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *progressApi) myDashboard(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	perfs, err := api.svc.StudentDashboard(claims.Subject)
	if err != nil {
		return errors.Wrap(err, "querying student dashboard")
	}
	if perfs == nil {
		perfs = []progress.StudentPerformance{}
	}
	return ctx.JSON(http.StatusOK, perfs)
}

func (api *progressApi) studentAnalytics(ctx echo.Context) error {
	perfs, err := api.svc.TeacherAnalytics()
	if err != nil {
		return errors.Wrap(err, "querying student analytics")
	}
	if perfs == nil {
		perfs = []progress.StudentPerformance{}
	}
	return ctx.JSON(http.StatusOK, perfs)
}
