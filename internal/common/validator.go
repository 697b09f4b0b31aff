package common

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// RequestValidator plugs go-playground/validator into echo
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	return &RequestValidator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

func (v *RequestValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

// ValidationDetails flattens validator errors into field -> message pairs
func ValidationDetails(err error) map[string]string {
	details := map[string]string{}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		details["request"] = err.Error()
		return details
	}
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		if fe.Param() != "" {
			details[field] = fmt.Sprintf("failed %s=%s", fe.Tag(), fe.Param())
		} else {
			details[field] = fmt.Sprintf("failed %s", fe.Tag())
		}
	}
	return details
}
