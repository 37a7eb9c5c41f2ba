package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/edulabbr/oratoria/core/lesson"
)

type lessonApi struct {
	svc      lesson.Service
	validate *validator.Validate
}

func registerLessonAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := lessonApi{
		svc:      deps.LessonSvc,
		validate: deps.Validate,
	}

	// course modules
	cg := g.Group("/course-modules", jwt)
	cg.POST("", api.createCourseModule, teacherMiddleware())
	cg.GET("", api.queryCourseModules)
	cg.PUT("/:id", api.updateCourseModule, teacherMiddleware())

	// lessons
	lg := g.Group("/lessons", jwt)
	lg.POST("", api.createLesson, teacherMiddleware())
	lg.GET("", api.queryLessons)
	lg.GET("/:id", api.retrieveLesson)
	lg.PUT("/:id", api.updateLesson, teacherMiddleware())
	lg.DELETE("/:id", api.destroyLesson, teacherMiddleware())
	lg.GET("/:id/modules", api.queryLessonModules)

	// modules
	mg := g.Group("/modules", jwt)
	mg.PUT("/:id", api.updateModule, teacherMiddleware())
	mg.DELETE("/:id", api.destroyModule, teacherMiddleware())
}

// Handlers

func (api *lessonApi) createCourseModule(ctx echo.Context) error {
	var data lesson.NewCourseModule
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourseModule")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	cm, err := api.svc.CreateCourseModule(data, claims.Subject)
	if err != nil {
		return errors.Wrap(err, "creating course module")
	}
	return ctx.JSON(http.StatusCreated, cm)
}

func (api *lessonApi) queryCourseModules(ctx echo.Context) error {
	mods, err := api.svc.QueryCourseModules()
	if err != nil {
		return errors.Wrap(err, "querying course modules")
	}
	if mods == nil {
		mods = []lesson.CourseModule{}
	}
	return ctx.JSON(http.StatusOK, mods)
}

func (api *lessonApi) updateCourseModule(ctx echo.Context) error {
	var data lesson.UpdateCourseModule
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCourseModule")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	cm, err := api.svc.UpdateCourseModule(ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == lesson.ErrCourseModuleNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating course module")
	}
	return ctx.JSON(http.StatusOK, cm)
}

func (api *lessonApi) createLesson(ctx echo.Context) error {
	var data lesson.NewLesson
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLesson")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	lsn, err := api.svc.CreateLesson(data, claims.Subject)
	if err != nil {
		return errors.Wrap(err, "creating lesson")
	}
	return ctx.JSON(http.StatusCreated, lsn)
}

func (api *lessonApi) queryLessons(ctx echo.Context) error {
	filter := new(lesson.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []lesson.Lesson{})
	}
	filter.Clean()

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	// students only ever see published lessons
	if !(claims.IsTeacher || claims.IsAdmin) {
		published := true
		filter.IsPublished = &published
	}

	ordering := new(Ordering)
	ordering.Bind(ctx)

	lessons, err := api.svc.QueryLessons(filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying lessons")
	}
	if lessons == nil {
		lessons = []lesson.Lesson{}
	}
	return ctx.JSON(http.StatusOK, lessons)
}

func (api *lessonApi) retrieveLesson(ctx echo.Context) error {
	lsn, err := api.getVisibleLesson(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, lsn)
}

func (api *lessonApi) updateLesson(ctx echo.Context) error {
	var data lesson.UpdateLesson
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateLesson")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	lsn, err := api.svc.UpdateLesson(ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == lesson.ErrLessonNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating lesson")
	}
	return ctx.JSON(http.StatusOK, lsn)
}

func (api *lessonApi) destroyLesson(ctx echo.Context) error {
	if err := api.svc.DeleteLessons(ctx.Param("id")); err != nil {
		if errors.Cause(err) == lesson.ErrLessonNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting lesson")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *lessonApi) queryLessonModules(ctx echo.Context) error {
	lsn, err := api.getVisibleLesson(ctx)
	if err != nil {
		return err
	}

	mods, err := api.svc.QueryModules(lsn.ID)
	if err != nil {
		return errors.Wrap(err, "querying lesson modules")
	}
	if mods == nil {
		mods = []lesson.Module{}
	}
	return ctx.JSON(http.StatusOK, mods)
}

func (api *lessonApi) updateModule(ctx echo.Context) error {
	var data lesson.UpdateModule
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateModule")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	mod, err := api.svc.UpdateModule(ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == lesson.ErrModuleNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating module")
	}
	return ctx.JSON(http.StatusOK, mod)
}

func (api *lessonApi) destroyModule(ctx echo.Context) error {
	if err := api.svc.DeleteModules(ctx.Param("id")); err != nil {
		if errors.Cause(err) == lesson.ErrModuleNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting module")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// getVisibleLesson loads the lesson and hides unpublished ones from students.
func (api *lessonApi) getVisibleLesson(ctx echo.Context) (lesson.Lesson, error) {
	lsn, err := api.svc.GetLesson(ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == lesson.ErrLessonNotFound {
			return lesson.Lesson{}, errHttpNotFound
		}
		return lesson.Lesson{}, errors.Wrap(err, "finding lesson by ID")
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return lesson.Lesson{}, errors.Wrap(err, "getting context claims")
	}
	if !(claims.IsTeacher || claims.IsAdmin) && !lsn.Published() {
		return lesson.Lesson{}, errHttpNotFound
	}
	return lsn, nil
}
