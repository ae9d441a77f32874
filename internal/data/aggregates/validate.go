package aggregates

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	domainagg "github.com/yungbote/lecture-feedback-backend/internal/domain/aggregates"
)

var inputValidate *validator.Validate

func init() {
	inputValidate = validator.New()
	_ = inputValidate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}

// validateInput runs struct tag validation and reports the first failing
// field as a validation error.
func validateInput(op string, in any) error {
	err := inputValidate.Struct(in)
	if err == nil {
		return nil
	}
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		fe := verrs[0]
		return domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()), err)
	}
	return domainagg.Wrap(domainagg.CodeValidation, op, err)
}
