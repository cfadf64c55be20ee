package validation

import (
	"fmt"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/umalmyha/leads/internal/model"
	"reflect"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

const IDNumberLength = 13

const (
	tagMobilePhone = "mobile_phone"
	tagIDNumber    = "id_number"
	tagISODate     = "iso_date"
	tagClockTime   = "clock_time"
	tagString      = "string_value"
)

var (
	phoneSeparators       = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "")
	internationalMobileRx = regexp.MustCompile(`^\+?[1-9]\d{7,14}$`)
	nationalMobileRx      = regexp.MustCompile(`^0\d{9}$`)
	clockTimeRx           = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d:[0-5]\d$`)
)

type rule struct {
	tag     string
	fn      validator.Func
	message string
}

var clientRules = []rule{
	{tag: tagMobilePhone, fn: isMobilePhone, message: "{0} must be a valid mobile phone number"},
	{tag: tagIDNumber, fn: isIDNumber, message: fmt.Sprintf("{0} must be a %d-digit ID number", IDNumberLength)},
	{tag: tagISODate, fn: isISODate, message: "{0} must be a valid ISO-8601 date (YYYY-MM-DD)"},
	{tag: tagClockTime, fn: isClockTime, message: "{0} must be a 24-hour time in HH:MM:SS format"},
	{tag: tagString, fn: isString, message: "{0} must be a string"},
}

// RegisterClientRules registers client lead validations and their english messages
func RegisterClientRules(v *validator.Validate, trans ut.Translator) error {
	for _, r := range clientRules {
		if err := v.RegisterValidation(r.tag, r.fn); err != nil {
			return fmt.Errorf("failed to register %s validation - %w", r.tag, err)
		}

		if err := v.RegisterTranslation(r.tag, trans, registerMessage(r.tag, r.message), translateMessage(r.tag)); err != nil {
			return fmt.Errorf("failed to register %s translation - %w", r.tag, err)
		}
	}
	return nil
}

func registerMessage(tag, msg string) validator.RegisterTranslationsFunc {
	return func(trans ut.Translator) error {
		return trans.Add(tag, msg, true)
	}
}

func translateMessage(tag string) validator.TranslationFunc {
	return func(trans ut.Translator, fe validator.FieldError) string {
		msg, err := trans.T(tag, fe.Field())
		if err != nil {
			return fe.Error()
		}
		return msg
	}
}

// IsMobilePhone reports whether phone is international or national mobile number
func IsMobilePhone(phone string) bool {
	normalized := phoneSeparators.Replace(strings.TrimSpace(phone))
	return internationalMobileRx.MatchString(normalized) || nationalMobileRx.MatchString(normalized)
}

func isMobilePhone(fl validator.FieldLevel) bool {
	return IsMobilePhone(fl.Field().String())
}

func isIDNumber(fl validator.FieldLevel) bool {
	return utf8.RuneCountInString(fl.Field().String()) == IDNumberLength
}

func isISODate(fl validator.FieldLevel) bool {
	_, err := time.Parse(model.DateLayout, fl.Field().String())
	return err == nil
}

func isClockTime(fl validator.FieldLevel) bool {
	return clockTimeRx.MatchString(fl.Field().String())
}

func isString(fl validator.FieldLevel) bool {
	return fl.Field().Kind() == reflect.String
}
