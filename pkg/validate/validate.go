// Package validate holds the caller-side input checks that run before any
// value reaches the geodesy engine, which itself never validates.
package validate

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kass/go-geo-bearing/pkg/models"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// ValidationError reports a single out-of-range input
type ValidationError struct {
	Field string
	Value interface{}
	Rule  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v (must satisfy %s)", e.Field, e.Value, e.Rule)
}

// IsValidationError reports whether err wraps a *ValidationError
func IsValidationError(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}

// Struct validates s against its `validate` tags and converts the first
// failure into a *ValidationError.
func Struct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	fe := verrs[0]
	rule := fe.Tag()
	if fe.Param() != "" {
		rule += "=" + fe.Param()
	}
	return &ValidationError{
		Field: fe.Field(),
		Value: fe.Value(),
		Rule:  rule,
	}
}

// Point checks that p is a finite latitude/longitude pair in range.
// Longitude -180 is accepted and normalizes to 180 downstream.
func Point(p models.GeoPoint) error {
	return Struct(p)
}

// Distance checks that meters is finite and non-negative
func Distance(field string, meters float64) error {
	if math.IsNaN(meters) || math.IsInf(meters, 0) || meters < 0 {
		return &ValidationError{Field: field, Value: meters, Rule: "gte=0"}
	}
	return nil
}

// Bearing checks that deg is a finite angle. Any finite value is accepted
// because the engine normalizes it.
func Bearing(deg float64) error {
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		return &ValidationError{Field: "bearing", Value: deg, Rule: "finite"}
	}
	return nil
}
