package event

import (
	"github.com/trezcool/agenda/core"
	"github.com/trezcool/agenda/core/calendar"
)

// Form buffers a draft while it is being edited. It never talks to the store:
// Submit hands a validated draft back to the caller.
type Form struct {
	draft         Draft
	editing       string // id of the edited event, "" when creating
	colorOverride bool
	errors        map[string]string
}

// NewCreateForm seeds a form with the creation defaults. date may be zero.
func NewCreateForm(date calendar.Date) *Form {
	return &Form{
		draft: Draft{
			Type:            DefaultType,
			Date:            date,
			StartTime:       NewClock(9, 0),
			EndTime:         NewClock(10, 0),
			IsPublic:        true,
			Color:           DefaultType.Color(),
			ReminderMinutes: DefaultReminder,
		},
		errors: map[string]string{},
	}
}

// NewEditForm seeds a form from a stored event.
func NewEditForm(ev Event) *Form {
	d := ev.Draft
	if d.Type == "" {
		d.Type = DefaultType
	}
	if d.Color == "" {
		d.Color = d.Type.Color()
	}
	if d.ReminderMinutes == 0 {
		d.ReminderMinutes = DefaultReminder
	}
	return &Form{draft: d, editing: ev.ID, errors: map[string]string{}}
}

func (f *Form) Draft() Draft { return f.draft }

func (f *Form) IsEdit() bool          { return f.editing != "" }
func (f *Form) EventID() string       { return f.editing }
func (f *Form) ColorOverridden() bool { return f.colorOverride }

// Errors returns the field errors of the last Submit.
func (f *Form) Errors() map[string]string {
	errs := make(map[string]string, len(f.errors))
	for k, v := range f.errors {
		errs[k] = v
	}
	return errs
}

func (f *Form) clearError(field string) {
	delete(f.errors, field)
}

// SetType changes the type. The color follows the type's default unless the user picked one;
// a picked color survives this type change only, later changes re-derive it.
func (f *Form) SetType(t Type) {
	f.draft.Type = t
	f.clearError("type")
	if f.colorOverride {
		f.colorOverride = false
		return
	}
	f.draft.Color = t.Color()
	f.clearError("color")
}

// SetColor records an explicit color choice.
func (f *Form) SetColor(color string) {
	f.draft.Color = core.CleanString(color)
	f.colorOverride = true
	f.clearError("color")
}

func (f *Form) SetTitle(s string)       { f.draft.Title = s; f.clearError("title") }
func (f *Form) SetDescription(s string) { f.draft.Description = s; f.clearError("description") }
func (f *Form) SetLocation(s string)    { f.draft.Location = s; f.clearError("location") }
func (f *Form) SetSubject(s string)     { f.draft.Subject = s; f.clearError("subject") }
func (f *Form) SetPublic(b bool)        { f.draft.IsPublic = b; f.clearError("isPublic") }
func (f *Form) SetReminder(minutes int) { f.draft.ReminderMinutes = minutes; f.clearError("reminderMinutes") }
func (f *Form) SetDate(d calendar.Date) { f.draft.Date = d; f.clearError("date") }

func (f *Form) SetTimes(start, end Clock) {
	f.draft.StartTime = start
	f.draft.EndTime = end
	f.clearError("startTime")
	f.clearError("endTime")
}

// Apply sets every non-nil field of p, going through the setters so the color rules hold.
func (f *Form) Apply(p Patch) {
	if p.Title != nil {
		f.SetTitle(*p.Title)
	}
	if p.Description != nil {
		f.SetDescription(*p.Description)
	}
	if p.Color != nil {
		f.SetColor(*p.Color)
	}
	if p.Type != nil && *p.Type != f.draft.Type {
		f.SetType(*p.Type)
	}
	if p.Date != nil {
		f.SetDate(*p.Date)
	}
	if p.StartTime != nil || p.EndTime != nil {
		start, end := f.draft.StartTime, f.draft.EndTime
		if p.StartTime != nil {
			start = *p.StartTime
		}
		if p.EndTime != nil {
			end = *p.EndTime
		}
		f.SetTimes(start, end)
	}
	if p.Location != nil {
		f.SetLocation(*p.Location)
	}
	if p.Subject != nil {
		f.SetSubject(*p.Subject)
	}
	if p.IsPublic != nil {
		f.SetPublic(*p.IsPublic)
	}
	if p.ReminderMinutes != nil {
		f.SetReminder(*p.ReminderMinutes)
	}
}

// Submit validates the buffered draft. On failure the field errors are kept on the form.
func (f *Form) Submit(v *core.Validator, today calendar.Date) (Draft, Result) {
	d := f.draft
	d.Clean()
	res := d.Validate(v, today, f.IsEdit())
	f.errors = make(map[string]string, len(res.Errors))
	for k, msg := range res.Errors {
		f.errors[k] = msg
	}
	return d, res
}
