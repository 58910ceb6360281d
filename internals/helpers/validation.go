package helper

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// pakai nama field JSON di pesan error
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Validator exposes the shared instance for callers needing custom rules.
func Validator() *validator.Validate { return validate }

// ValidateStruct returns field -> messages, or nil when s is valid.
func ValidateStruct(s any) map[string][]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return map[string][]string{"_": {err.Error()}}
	}
	out := make(map[string][]string, len(ve))
	for _, fe := range ve {
		out[fe.Field()] = append(out[fe.Field()], fieldMessage(fe))
	}
	return out
}

// Validate writes a 422 response when s is invalid. The caller returns the
// error as-is when ok is false.
func Validate(c *fiber.Ctx, s any) (ok bool, err error) {
	if fields := ValidateStruct(s); fields != nil {
		return false, JsonValidationError(c, fields)
	}
	return true, nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return "invalid email format"
	case "min":
		return fe.Field() + " must be at least " + fe.Param()
	case "max":
		return fe.Field() + " must be at most " + fe.Param()
	case "gt":
		return fe.Field() + " must be greater than " + fe.Param()
	case "gte":
		return fe.Field() + " must be " + fe.Param() + " or more"
	case "oneof":
		return fe.Field() + " must be one of " + fe.Param()
	case "eqfield":
		return fe.Field() + " must match " + fe.Param()
	case "uuid", "uuid4":
		return fe.Field() + " must be a valid id"
	default:
		return "invalid value"
	}
}
