package lesson

import (
	"path/filepath"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/edulabbr/oratoria/core"
)

var deckExtensions = map[string]bool{
	".pptx": true,
	".ppt":  true,
}

// InitValidators registers this package's custom validations on the app's
// Validate instance. It must be called on app startup.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation("deckfile", deckFileValidation)
	core.RegisterCustomTranslation(validate, translator, "deckfile", "{0} must be a .pptx or .ppt file")
}

func deckFileValidation(fl validator.FieldLevel) bool {
	ext := strings.ToLower(filepath.Ext(fl.Field().String()))
	return deckExtensions[ext]
}
