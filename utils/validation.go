package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// validate is the singleton validator instance
	validate *validator.Validate
)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Report JSON field names so messages match what the client sent.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// bcrypt's input limit is in bytes, not runes.
	_ = validate.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		limit, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return len(fl.Field().String()) <= limit
	})
}

// Schema is a request payload that knows how to normalize itself before validation.
type Schema interface {
	Normalize()
}

// FieldError is a single (field, message) validation issue
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldErrors is an ordered list of validation issues
type FieldErrors []FieldError

// Join flattens the issues into one client-visible string.
func (fe FieldErrors) Join() string {
	if len(fe) == 0 {
		return "Validation failed"
	}
	msgs := make([]string, len(fe))
	for i, e := range fe {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, ", ")
}

// ValidationResult is either a normalized valid value or a list of issues.
type ValidationResult[T any] struct {
	Value  T
	Issues FieldErrors
}

// OK reports whether validation passed.
func (r ValidationResult[T]) OK() bool {
	return len(r.Issues) == 0
}

// Validate normalizes s and checks its struct tags.
func Validate[T Schema](s T) ValidationResult[T] {
	s.Normalize()
	if err := ValidateStruct(s); err != nil {
		var vErr *ValidationError
		if errors.As(err, &vErr) {
			return ValidationResult[T]{Value: s, Issues: vErr.Fields}
		}
		return ValidationResult[T]{Value: s, Issues: FieldErrors{{Field: "", Message: err.Error()}}}
	}
	return ValidationResult[T]{Value: s}
}

// DecodeAndValidate reads a JSON body into a fresh T and validates it.
// Malformed JSON is reported as a validation issue rather than a server error.
func DecodeAndValidate[T any, PT interface {
	*T
	Schema
}](body io.Reader) ValidationResult[PT] {
	var v T
	dec := json.NewDecoder(body)
	if err := dec.Decode(&v); err != nil {
		msg := "request body must be valid JSON"
		if errors.Is(err, io.EOF) {
			msg = "request body is required"
		}
		return ValidationResult[PT]{Value: PT(&v), Issues: FieldErrors{{Field: "body", Message: msg}}}
	}
	return Validate(PT(&v))
}

// ValidateStruct validates a struct using go-playground/validator
func ValidateStruct(s interface{}) error {
	if err := validate.Struct(s); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return NewValidationError(validationErrors)
		}
		return err
	}
	return nil
}

// ValidationError wraps validation errors with structured details
type ValidationError struct {
	Message string
	Fields  FieldErrors
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return e.Message + ": " + e.Fields.Join()
}

// NewValidationError creates a ValidationError from validator.ValidationErrors
func NewValidationError(errs validator.ValidationErrors) *ValidationError {
	fields := make(FieldErrors, 0, len(errs))
	for _, err := range errs {
		fields = append(fields, FieldError{Field: err.Field(), Message: fieldMessage(err)})
	}

	return &ValidationError{
		Message: "Validation failed",
		Fields:  fields,
	}
}

func fieldMessage(err validator.FieldError) string {
	field := err.Field()
	unit := ""
	if err.Kind() == reflect.String {
		unit = " characters"
	}

	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s%s", field, err.Param(), unit)
	case "max":
		return fmt.Sprintf("%s must be at most %s%s", field, err.Param(), unit)
	case "maxbytes":
		return fmt.Sprintf("%s must be at most %s bytes", field, err.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(err.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s validation failed on '%s' tag", field, err.Tag())
	}
}
