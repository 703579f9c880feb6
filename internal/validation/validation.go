package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// FieldErrors maps a payload field (by its json name) to a readable reason.
type FieldErrors map[string]string

// Error is returned when a payload fails schema checks.
type Error struct {
	Fields FieldErrors
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid payload: " + strings.Join(parts, "; ")
}

// Validator wraps a configured go-playground validator.
type Validator struct {
	v *validator.Validate
}

// New builds a Validator that reports fields by their json tag and knows the
// "minor_units" tag: a decimal string holding a positive whole number.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	// Registration only fails on an empty tag or nil func.
	_ = v.RegisterValidation("minor_units", func(fl validator.FieldLevel) bool {
		_, err := ParseMinorUnits(fl.Field().String())
		return err == nil
	})
	return &Validator{v: v}
}

// Struct validates s and returns an *Error listing every failing field.
func (v *Validator) Struct(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return &Error{Fields: FieldErrors{"_": err.Error()}}
	}
	out := FieldErrors{}
	for _, fe := range ve {
		out[fe.Field()] = messageForTag(fe.Tag(), fe.Param())
	}
	return &Error{Fields: out}
}

// FromBindError turns a JSON decoding failure into an *Error so type
// mismatches are reported the same way as rule violations.
func FromBindError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "_"
		}
		return &Error{Fields: FieldErrors{field: fmt.Sprintf("must be of type %s", typeErr.Type.String())}}
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return &Error{Fields: FieldErrors{"_": "malformed JSON"}}
	}
	return &Error{Fields: FieldErrors{"_": "unreadable body"}}
}

// ParseMinorUnits parses a decimal string that must hold a positive whole
// number, e.g. "500" or "500.00".
func ParseMinorUnits(s string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("amount %q is not a number", s)
	}
	if !d.IsPositive() {
		return 0, fmt.Errorf("amount must be positive")
	}
	if !d.IsInteger() {
		return 0, fmt.Errorf("amount must be a whole number of minor units")
	}
	if d.GreaterThan(decimal.NewFromInt(maxMinorUnits)) {
		return 0, fmt.Errorf("amount is out of range")
	}
	return d.IntPart(), nil
}

const maxMinorUnits = int64(1) << 53

func messageForTag(tag, param string) string {
	switch tag {
	case "required":
		return "is required"
	case "len":
		return "must be exactly " + param + " characters"
	case "min":
		return "must be at least " + param
	case "max":
		return "must be at most " + param
	case "gt":
		return "must be greater than " + param
	case "number":
		return "must contain digits only"
	case "minor_units":
		return "must be a positive whole amount"
	default:
		return "is invalid"
	}
}
