package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"aminashop/backend/internal/store"
)

type ErrorResponse struct {
	FailedField string `json:"field"`
	Tag         string `json:"tag"`
	Value       string `json:"value,omitempty"`
}

type valuer interface {
	Valid() bool
}

var validate = validator.New()

func init() {
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// enum accepts any named string type with a Valid method.
	_ = validate.RegisterValidation("enum", func(fl validator.FieldLevel) bool {
		v, ok := fl.Field().Interface().(valuer)
		return ok && v.Valid()
	})
}

func ValidateStruct(data any) []*ErrorResponse {
	var out []*ErrorResponse
	err := validate.Struct(data)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []*ErrorResponse{{FailedField: "", Tag: err.Error()}}
	}
	for _, e := range verrs {
		out = append(out, &ErrorResponse{
			FailedField: e.Namespace(),
			Tag:         e.Tag(),
			Value:       e.Param(),
		})
	}
	return out
}

// Check validates data and folds failures into one error wrapping
// store.ErrInvalidTransaction.
func Check(data any) error {
	failures := ValidateStruct(data)
	if len(failures) == 0 {
		return nil
	}
	parts := make([]string, 0, len(failures))
	for _, f := range failures {
		part := fmt.Sprintf("%s failed %s", f.FailedField, f.Tag)
		if f.Value != "" {
			part += "=" + f.Value
		}
		parts = append(parts, part)
	}
	return fmt.Errorf("%w: %s", store.ErrInvalidTransaction, strings.Join(parts, "; "))
}
