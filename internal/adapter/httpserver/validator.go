package httpserver

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/Mahesh-Wijerathna/game-review-sentiment/internal/platform/errors"
)

// requestValidator adapts validator/v10 to echo.Validator. Field names in
// errors use the json tag so they match what the client sent.
type requestValidator struct {
	v *validator.Validate
}

func newRequestValidator() *requestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &requestValidator{v: v}
}

func (rv *requestValidator) Validate(i any) error {
	err := rv.v.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperrors.ValidationError("invalid request")
	}
	return fieldError(fieldErrs[0])
}

// fieldError reports the first failing field.
func fieldError(fe validator.FieldError) *apperrors.Error {
	switch {
	case fe.Field() == "text" && fe.Tag() == "required":
		return apperrors.ValidationError(msgNoText).WithCode(codeEmptyText)
	case fe.Field() == "game_name" && fe.Tag() == "max":
		return apperrors.ValidationError(fmt.Sprintf("game_name must be at most %s characters", fe.Param())).
			WithCode(codeGameNameTooLong).
			WithField("field", fe.Field())
	default:
		return apperrors.ValidationError(fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())).
			WithField("field", fe.Field())
	}
}
