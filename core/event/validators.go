package event

import (
	"sort"
	"strconv"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/agenda/core"
	"github.com/trezcool/agenda/core/calendar"
)

var (
	eventTypeTag  = "eventtype"
	eventTypeText = "must be one of " + joinTypes()

	subjectTag  = "subject"
	subjectText = "unknown subject"

	reminderTag  = "reminder"
	reminderText = "must be one of " + joinReminders() + " minutes"

	clockTag  = "clock"
	clockText = "must be a time formatted as HH:MM"

	endAfterStartTag  = "endafterstart"
	endAfterStartText = "the end time must be later than the start time"

	dateRequiredText = "this field is required"
	dateInPastText   = "the date cannot be earlier than today"
)

// InitValidators registers the event validation rules.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(eventTypeTag, eventTypeValidation)
	core.RegisterCustomTranslation(validate, translator, eventTypeTag, eventTypeText)

	_ = validate.RegisterValidation(subjectTag, subjectValidation)
	core.RegisterCustomTranslation(validate, translator, subjectTag, subjectText)

	_ = validate.RegisterValidation(reminderTag, reminderValidation)
	core.RegisterCustomTranslation(validate, translator, reminderTag, reminderText)

	_ = validate.RegisterValidation(clockTag, clockValidation)
	core.RegisterCustomTranslation(validate, translator, clockTag, clockText)

	validate.RegisterStructValidation(draftStructValidation, Draft{})
	core.RegisterCustomTranslation(validate, translator, endAfterStartTag, endAfterStartText)
}

// NewValidator returns a core.Validator with the global and the event rules registered.
func NewValidator() *core.Validator {
	v := core.NewValidator()
	InitValidators(v.Validate, v.Translator)
	return v
}

// Result is the outcome of validating a Draft. Errors is keyed by JSON field name.
type Result struct {
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors"`
}

// Err returns a *core.ValidationError, or nil if the result is valid.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	fields := make([]string, 0, len(r.Errors))
	for f := range r.Errors {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	fldErrs := make([]core.FieldError, 0, len(fields))
	for _, f := range fields {
		fldErrs = append(fldErrs, core.FieldError{Field: f, Error: r.Errors[f]})
	}
	return core.NewValidationError(nil, fldErrs...)
}

// Validate checks d without side effects. today is the current date in the calendar's timezone;
// a past date is only accepted when editing an existing event.
func (d Draft) Validate(v *core.Validator, today calendar.Date, isEdit bool) Result {
	errs := v.FieldErrors(d)

	if _, exists := errs["date"]; !exists {
		switch {
		case d.Date.IsZero():
			errs["date"] = dateRequiredText
		case !isEdit && d.Date.Before(today):
			errs["date"] = dateInPastText
		}
	}
	return Result{Valid: len(errs) == 0, Errors: errs}
}

// Custom Validators

func eventTypeValidation(fl validator.FieldLevel) bool {
	return Type(fl.Field().String()).Valid()
}

func subjectValidation(fl validator.FieldLevel) bool {
	return IsSubject(fl.Field().String())
}

func reminderValidation(fl validator.FieldLevel) bool {
	return IsReminder(int(fl.Field().Int()))
}

func clockValidation(fl validator.FieldLevel) bool {
	return Clock(fl.Field().String()).Valid()
}

// draftStructValidation checks that the event ends after it starts. Events are single-day.
func draftStructValidation(sl validator.StructLevel) {
	d, ok := sl.Current().Interface().(Draft)
	if !ok {
		return
	}
	if d.StartTime.Valid() && d.EndTime.Valid() && !d.StartTime.Before(d.EndTime) {
		sl.ReportError(d.EndTime, "endTime", "EndTime", endAfterStartTag, "")
	}
}

func joinTypes() string {
	names := make([]string, 0, len(Types))
	for _, info := range Types {
		names = append(names, string(info.Value))
	}
	return strings.Join(names, ", ")
}

func joinReminders() string {
	values := make([]string, 0, len(ReminderOptions))
	for _, opt := range ReminderOptions {
		values = append(values, strconv.Itoa(opt.Value))
	}
	return strings.Join(values, ", ")
}
