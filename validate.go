package greeter

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate checks struct tags. Field names are reported by their JSON name.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// FieldError describes a single field that failed validation.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Validation is the result of validating a DTO: it is OK when no field errors
// were found.
type Validation struct {
	Errors []FieldError
}

// OK returns true if nothing failed.
func (v Validation) OK() bool {
	return len(v.Errors) == 0
}

// Err converts a failed validation into an EINVALID application error.
// Returns nil if the validation passed.
func (v Validation) Err() error {
	if v.OK() {
		return nil
	}
	names := make([]string, len(v.Errors))
	for i, fe := range v.Errors {
		names[i] = fe.Field
	}
	return &Error{
		Code:    EINVALID,
		Message: fmt.Sprintf("Invalid %s: %s.", EntityName, strings.Join(names, ", ")),
		Key:     KeyValidation,
		Fields:  v.Errors,
	}
}

// ValidateGreeter checks the required fields & length bounds of dto.
func ValidateGreeter(dto *GreeterDTO) Validation {
	err := validate.Struct(dto)
	if err == nil {
		return Validation{}
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return Validation{Errors: []FieldError{{Rule: "invalid", Message: err.Error()}}}
	}

	var result Validation
	for _, fe := range verrs {
		result.Errors = append(result.Errors, FieldError{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Message: ruleMessage(fe),
		})
	}
	return result
}

// ruleMessage renders a human readable message for a failed rule.
func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must not be blank"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	}
	return fmt.Sprintf("failed on the '%s' rule", fe.Tag())
}
