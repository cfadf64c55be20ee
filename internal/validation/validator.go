package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/labstack/echo/v4"
	"net/http"
	"reflect"
	"strings"
)

// BodyField is reported as violated field when payload can't be decoded at all
const BodyField = "body"

type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type PayloadError struct {
	violations []Violation
}

func (e *PayloadError) Error() string {
	buff := bytes.NewBufferString("")

	for _, err := range e.violations {
		buff.WriteString(err.Message)
		buff.WriteString("\n")
	}

	return buff.String()
}

func (e *PayloadError) Violation(v Violation) {
	e.violations = append(e.violations, v)
}

func (e *PayloadError) Violations() []Violation {
	v := make([]Violation, len(e.violations))
	copy(v, e.violations)
	return v
}

func (e *PayloadError) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.violations)
}

func NewPayloadError(violations ...Violation) *PayloadError {
	return &PayloadError{violations: violations}
}

type EchoValidator struct {
	validator  *validator.Validate
	translator ut.Translator
}

func Echo(validator *validator.Validate, translator ut.Translator) *EchoValidator {
	return &EchoValidator{
		validator:  validator,
		translator: translator,
	}
}

// Default builds EchoValidator with english translations and client rules registered
func Default() (*EchoValidator, error) {
	enLocale := en.New()
	unvTranslator := ut.New(enLocale, enLocale)
	trans, ok := unvTranslator.GetTranslator("en")
	if !ok {
		return nil, errors.New("missing en translations")
	}

	v := validator.New()
	v.RegisterTagNameFunc(jsonTagName)

	if err := enTranslations.RegisterDefaultTranslations(v, trans); err != nil {
		return nil, fmt.Errorf("failed to register default translations - %w", err)
	}

	if err := RegisterClientRules(v, trans); err != nil {
		return nil, err
	}

	return Echo(v, trans), nil
}

func (v *EchoValidator) Validate(i any) error {
	err := v.validator.Struct(i)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return v.payloadError(ve)
	}

	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

func (v *EchoValidator) payloadError(ve validator.ValidationErrors) error {
	pldErr := &PayloadError{violations: make([]Violation, 0, len(ve))}
	for _, e := range ve {
		pldErr.Violation(Violation{
			Field:   e.Field(),
			Message: e.Translate(v.translator),
		})
	}
	return pldErr
}

// FromBindError converts echo bind failure to PayloadError
func FromBindError(err error) *PayloadError {
	var ute *json.UnmarshalTypeError
	if errors.As(err, &ute) && ute.Field != "" {
		return NewPayloadError(Violation{
			Field:   ute.Field,
			Message: fmt.Sprintf("%s must be a %s", ute.Field, jsonTypeName(ute.Type)),
		})
	}

	return NewPayloadError(Violation{
		Field:   BodyField,
		Message: "request body must be a valid JSON object",
	})
}

// IsTypeMismatch reports whether body was decoded completely except for value of wrong json type
func IsTypeMismatch(err error) bool {
	var ute *json.UnmarshalTypeError
	return errors.As(err, &ute) && ute.Field != ""
}

// Merge appends violations of err for fields not reported yet, non payload errors are returned as is
func (e *PayloadError) Merge(err error) error {
	if err == nil {
		return e
	}

	var other *PayloadError
	if !errors.As(err, &other) {
		return err
	}

	reported := make(map[string]struct{}, len(e.violations))
	for _, v := range e.violations {
		reported[v.Field] = struct{}{}
	}

	for _, v := range other.violations {
		if _, ok := reported[v.Field]; !ok {
			e.Violation(v)
		}
	}
	return e
}

func jsonTagName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}

func jsonTypeName(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Map, reflect.Struct:
		return "object"
	case reflect.Ptr:
		return jsonTypeName(t.Elem())
	default:
		return "number"
	}
}
