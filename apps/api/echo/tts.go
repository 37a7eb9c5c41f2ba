package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/edulabbr/oratoria/core"
	ttssvc "github.com/edulabbr/oratoria/services/tts"
)

type ttsApi struct {
	svc      ttssvc.Service
	limiter  core.RateLimiter
	conf     *core.Config
	validate *validator.Validate
}

func registerTTSAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := ttsApi{
		svc:      deps.TTSSvc,
		limiter:  deps.RateLimiter,
		conf:     deps.Conf,
		validate: deps.Validate,
	}

	g.POST("/tts", api.synthesize, jwt)
}

// Handlers

func (api *ttsApi) synthesize(ctx echo.Context) error {
	var data TTSRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TTSRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	res, err := api.limiter.Allow(ctx.Request().Context(), claims.Subject, core.RateLimitConfig{
		Endpoint:    "tts",
		MaxRequests: api.conf.RateLimit.TTSMaxRequests,
		Window:      api.conf.RateLimit.TTSWindow,
	})
	if err != nil {
		return errors.Wrap(err, "checking rate limit")
	}
	if !res.Allowed {
		return errRateLimited
	}

	out := api.svc.Synthesize(ctx.Request().Context(), data.Text, data.Voice)
	if out.Fallback {
		// client falls back to the browser's speech synthesis
		return ctx.JSON(http.StatusOK, echo.Map{"fallback": true})
	}
	return ctx.Blob(http.StatusOK, out.ContentType, out.Audio)
}

type TTSRequest struct {
	Text  string `json:"text" validate:"required,max=1000"`
	Voice string `json:"voice"`
}

func (tr *TTSRequest) Validate(validate *validator.Validate) error {
	tr.Text = core.CleanString(tr.Text)
	tr.Voice = core.CleanString(tr.Voice)
	return validate.Struct(tr)
}
