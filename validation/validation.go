package validation

import (
	"errors"
	"maps"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Violations maps a field name to an error code (translatable through i18n).
type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Error lists the violations as "field: code" pairs in field order.
func (v Violations) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+v[f])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Err returns v as an error, or nil when there is nothing to report.
func (v Violations) Err() error {
	if v.Empty() {
		return nil
	}
	return v
}

// NonNegativeFloat flags val below zero.
func NonNegativeFloat(field string, val float64, v Violations) {
	if val < 0 {
		v[field] = "must_be_non_negative"
	}
}

func RangeFloat(field string, val, minVal, maxVal float64, v Violations) {
	if val < minVal || val > maxVal {
		v[field] = "out_of_range"
	}
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func instance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(jsonName)
		_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
	})
	return validate
}

// Struct runs the `validate` struct tags of s and converts failures into
// Violations keyed by the json field name.
func Struct(s any) error {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	v := make(Violations, len(fieldErrs))
	for _, fe := range fieldErrs {
		v[fe.Field()] = codeFor(fe.Tag())
	}
	return v
}

// Check runs Struct on e, then its Validate method when it has one, and
// merges both into one set of violations.
func Check(e any) error {
	v := make(Violations)
	if err := Struct(e); err != nil {
		var tagged Violations
		if !errors.As(err, &tagged) {
			return err
		}
		maps.Copy(v, tagged)
	}
	if c, ok := e.(interface{ Validate(Violations) }); ok {
		c.Validate(v)
	}
	return v.Err()
}

func jsonName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return fld.Name
	}
	return name
}

func codeFor(tag string) string {
	switch tag {
	case "required", "notblank":
		return "required"
	case "gte", "min":
		return "must_be_non_negative"
	case "gt":
		return "must_be_positive"
	case "lte", "max", "oneof":
		return "out_of_range"
	}
	return "invalid"
}
