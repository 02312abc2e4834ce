package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"gymdesk/pkg/dates"
	apperrors "gymdesk/pkg/errors"
	"gymdesk/pkg/logger"
	"gymdesk/pkg/model"

	"github.com/go-playground/validator/v10"
)

var pinRegex = regexp.MustCompile(`^\d{4}$`)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// AppError converts the collected field errors into a 422 response.
func (v ValidationErrors) AppError() *apperrors.AppError {
	details := make(map[string]any, len(v))
	for _, err := range v {
		details[err.Field] = err.Message
	}
	return apperrors.Validation(v.Error(), details)
}

type enum interface {
	Valid() bool
}

// Validator wraps a go-playground validator with the domain tags
// period, facility, weekday, enum, notdate and pin4.
type Validator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func New(log *logger.Logger) *Validator {
	v := validator.New()

	v.RegisterCustomTypeFunc(dateValue, dates.Date{})
	v.RegisterTagNameFunc(jsonFieldName)

	custom := map[string]validator.Func{
		"period":   validatePeriod,
		"facility": validateFacility,
		"weekday":  validateWeekday,
		"enum":     validateEnum,
		"pin4":     validatePin,
		"notdate":  validateNotDate,
	}
	for tag, fn := range custom {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatal("Failed to register validator", "tag", tag, "error", err)
		}
	}

	log.Debug("Validator initialized successfully")

	return &Validator{
		validate: v,
		logger:   log,
	}
}

func dateValue(field reflect.Value) any {
	if d, ok := field.Interface().(dates.Date); ok {
		return d.String()
	}
	return nil
}

func jsonFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}

func validatePeriod(fl validator.FieldLevel) bool {
	p, ok := fl.Field().Interface().(model.Period)
	return ok && p.Valid()
}

func validateFacility(fl validator.FieldLevel) bool {
	f, ok := fl.Field().Interface().(model.Facility)
	return ok && f.Valid()
}

func validateWeekday(fl validator.FieldLevel) bool {
	w, ok := fl.Field().Interface().(model.Weekday)
	return ok && w.Valid()
}

func validateEnum(fl validator.FieldLevel) bool {
	e, ok := fl.Field().Interface().(enum)
	return ok && e.Valid()
}

// validateNotDate rejects identifiers that are really dates, such as a
// borrower class copied from the date column.
func validateNotDate(fl validator.FieldLevel) bool {
	_, err := dates.Parse(fl.Field().String())
	return err != nil
}

func validatePin(fl validator.FieldLevel) bool {
	return pinRegex.MatchString(fl.Field().String())
}

// Struct validates s and returns ValidationErrors on failure.
func (v *Validator) Struct(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

// Check is Struct for service code: failures come back as an AppError.
func (v *Validator) Check(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs ValidationErrors
	if errors.As(err, &verrs) {
		return verrs.AppError()
	}
	return apperrors.InvalidInput(err.Error())
}

// Password reports whether pw has the four-digit format accounts use.
func Password(pw string) bool {
	return pinRegex.MatchString(pw)
}

func translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "period":
			message = fmt.Sprintf("%s must be one of the timetable periods", err.Field())
		case "facility":
			message = fmt.Sprintf("%s must be a bookable facility", err.Field())
		case "weekday":
			message = fmt.Sprintf("%s must be a school weekday", err.Field())
		case "enum":
			message = fmt.Sprintf("%s has an unknown value", err.Field())
		case "notdate":
			message = fmt.Sprintf("%s must not be a date", err.Field())
		case "pin4":
			message = fmt.Sprintf("%s must be exactly 4 digits", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
