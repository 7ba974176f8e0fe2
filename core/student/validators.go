package student

import (
	"regexp"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/ltoral/escolar/core"
)

var (
	// custom validation tags & texts
	curpTag  = "curp"
	curpText = "must be a valid 18-character CURP"

	// 4 letters, birth date, sex, 5 consonants, homonym char, check digit
	curpRegex = regexp.MustCompile(`^[A-Z]{4}\d{6}[HM][A-Z]{5}[A-Z0-9]\d$`)
)

// InitValidators registers this package's custom validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(curpTag, curpValidation)
	core.RegisterCustomTranslation(validate, translator, curpTag, curpText)
}

func curpValidation(fl validator.FieldLevel) bool {
	return curpRegex.MatchString(fl.Field().String())
}

func upper(s string) string { return strings.ToUpper(s) }
