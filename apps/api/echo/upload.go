package echoapi

import (
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/edulabbr/oratoria/core"
	"github.com/edulabbr/oratoria/core/lesson"
	"github.com/edulabbr/oratoria/core/user"
)

type uploadApi struct {
	svc      lesson.Service
	usrSvc   user.Service
	limiter  core.RateLimiter
	conf     *core.Config
	validate *validator.Validate
}

func registerUploadAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := uploadApi{
		svc:      deps.LessonSvc,
		usrSvc:   deps.UserSvc,
		limiter:  deps.RateLimiter,
		conf:     deps.Conf,
		validate: deps.Validate,
	}

	ug := g.Group("/uploads", jwt, teacherMiddleware())
	ug.POST("", api.create)
	ug.GET("", api.query)
	ug.POST("/:id/process", api.process)
}

// Handlers

func (api *uploadApi) create(ctx echo.Context) error {
	fileHdr, err := ctx.FormFile("file")
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "file", Error: "this field is required"})
	}
	if fileHdr.Size > api.conf.Uploads.MaxSizeBytes {
		return core.NewValidationError(nil, core.FieldError{Field: "file", Error: "file too large"})
	}

	data := lesson.NewUpload{
		Filename:    fileHdr.Filename,
		LessonTitle: ctx.FormValue("lesson_title"),
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	src, err := fileHdr.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	defer src.Close()

	blob, err := io.ReadAll(src)
	if err != nil {
		return errors.Wrap(err, "reading uploaded file")
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	up, lsn, err := api.svc.Upload(data, blob, ctxUsr)
	if err != nil {
		return errors.Wrap(err, "creating upload")
	}

	return ctx.JSON(http.StatusCreated, UploadResponse{Upload: up, Lesson: lsn})
}

func (api *uploadApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	uploads, err := api.svc.QueryUploads(claims.Subject)
	if err != nil {
		return errors.Wrap(err, "querying uploads")
	}
	if uploads == nil {
		uploads = []lesson.Upload{}
	}
	return ctx.JSON(http.StatusOK, uploads)
}

func (api *uploadApi) process(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	res, err := api.limiter.Allow(ctx.Request().Context(), claims.Subject, core.RateLimitConfig{
		Endpoint:    "process-deck",
		MaxRequests: api.conf.RateLimit.ProcessMaxRequests,
		Window:      api.conf.RateLimit.ProcessWindow,
	})
	if err != nil {
		return errors.Wrap(err, "checking rate limit")
	}
	if !res.Allowed {
		return errRateLimited
	}

	lsn, mods, err := api.svc.ProcessUpload(ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == lesson.ErrUploadNotFound {
			return errHttpNotFound
		}
		return err
	}
	if mods == nil {
		mods = []lesson.Module{}
	}

	return ctx.JSON(http.StatusOK, ProcessResponse{Lesson: lsn, Modules: mods})
}

type (
	UploadResponse struct {
		Upload lesson.Upload `json:"upload"`
		Lesson lesson.Lesson `json:"lesson"`
	}

	ProcessResponse struct {
		Lesson  lesson.Lesson   `json:"lesson"`
		Modules []lesson.Module `json:"modules"`
	}
)
