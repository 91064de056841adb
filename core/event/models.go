package event

import (
	"time"

	"github.com/trezcool/agenda/core"
	"github.com/trezcool/agenda/core/calendar"
)

// Draft holds the user-editable fields of an event. It has no identity:
// an Event is a Draft the store has accepted.
type Draft struct {
	Title           string        `json:"title" yaml:"title" validate:"notblank,max=100"`
	Description     string        `json:"description" yaml:"description" validate:"max=500"`
	Type            Type          `json:"type" yaml:"type" validate:"eventtype"`
	Date            calendar.Date `json:"date" yaml:"date"`
	StartTime       Clock         `json:"startTime" yaml:"startTime" validate:"required,clock"`
	EndTime         Clock         `json:"endTime" yaml:"endTime" validate:"required,clock"`
	Location        string        `json:"location" yaml:"location" validate:"max=100"`
	Subject         string        `json:"subject" yaml:"subject" validate:"omitempty,subject"`
	IsPublic        bool          `json:"isPublic" yaml:"isPublic"`
	Color           string        `json:"color" yaml:"color" validate:"omitempty,hexcolor"`
	ReminderMinutes int           `json:"reminderMinutes" yaml:"reminderMinutes" validate:"reminder"`
}

// Clean trims text fields and fills the defaults derived from other fields.
func (d *Draft) Clean() {
	d.Title = core.CleanString(d.Title)
	d.Description = core.CleanString(d.Description)
	d.Location = core.CleanString(d.Location)
	d.Subject = core.CleanString(d.Subject)
	d.Color = core.CleanString(d.Color)
	if d.Type == "" {
		d.Type = DefaultType
	}
	if d.Color == "" {
		d.Color = d.Type.Color()
	}
	if d.ReminderMinutes == 0 {
		d.ReminderMinutes = DefaultReminder
	}
}

// Event is a persisted scheduling entry.
type Event struct {
	ID string `json:"id"`
	Draft
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"` // UTC
	UpdatedAt time.Time `json:"updatedAt"` // UTC
}

// Start returns the instant the event starts at in loc.
func (ev Event) Start(loc *time.Location) time.Time {
	return ev.Date.In(loc).Add(time.Duration(ev.StartTime.Minutes()) * time.Minute)
}

func (ev Event) End(loc *time.Location) time.Time {
	return ev.Date.In(loc).Add(time.Duration(ev.EndTime.Minutes()) * time.Minute)
}

// Patch is a partial update. Only non-nil fields are applied.
// The author and creation time are not part of it and can never be patched.
type Patch struct {
	Title           *string        `json:"title,omitempty" yaml:"title"`
	Description     *string        `json:"description,omitempty" yaml:"description"`
	Type            *Type          `json:"type,omitempty" yaml:"type"`
	Date            *calendar.Date `json:"date,omitempty" yaml:"date"`
	StartTime       *Clock         `json:"startTime,omitempty" yaml:"startTime"`
	EndTime         *Clock         `json:"endTime,omitempty" yaml:"endTime"`
	Location        *string        `json:"location,omitempty" yaml:"location"`
	Subject         *string        `json:"subject,omitempty" yaml:"subject"`
	IsPublic        *bool          `json:"isPublic,omitempty" yaml:"isPublic"`
	Color           *string        `json:"color,omitempty" yaml:"color"`
	ReminderMinutes *int           `json:"reminderMinutes,omitempty" yaml:"reminderMinutes"`
}

// PatchOf returns a Patch setting every field of d.
func PatchOf(d Draft) Patch {
	return Patch{
		Title:           &d.Title,
		Description:     &d.Description,
		Type:            &d.Type,
		Date:            &d.Date,
		StartTime:       &d.StartTime,
		EndTime:         &d.EndTime,
		Location:        &d.Location,
		Subject:         &d.Subject,
		IsPublic:        &d.IsPublic,
		Color:           &d.Color,
		ReminderMinutes: &d.ReminderMinutes,
	}
}

func (p Patch) IsEmpty() bool {
	return p == Patch{}
}

// Apply returns d with the patch merged onto it.
func (p Patch) Apply(d Draft) Draft {
	if p.Title != nil {
		d.Title = *p.Title
	}
	if p.Description != nil {
		d.Description = *p.Description
	}
	if p.Type != nil {
		d.Type = *p.Type
	}
	if p.Date != nil {
		d.Date = *p.Date
	}
	if p.StartTime != nil {
		d.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		d.EndTime = *p.EndTime
	}
	if p.Location != nil {
		d.Location = *p.Location
	}
	if p.Subject != nil {
		d.Subject = *p.Subject
	}
	if p.IsPublic != nil {
		d.IsPublic = *p.IsPublic
	}
	if p.Color != nil {
		d.Color = *p.Color
	}
	if p.ReminderMinutes != nil {
		d.ReminderMinutes = *p.ReminderMinutes
	}
	return d
}

// QueryFilter applies AND on its set fields. From and To are inclusive.
type QueryFilter struct {
	From      *calendar.Date
	To        *calendar.Date
	CreatedBy string
	Type      Type
	IsPublic  *bool
}

// Match is used by stores that filter in memory.
func (qf QueryFilter) Match(ev Event) bool {
	if qf.From != nil && ev.Date.Before(*qf.From) {
		return false
	}
	if qf.To != nil && ev.Date.After(*qf.To) {
		return false
	}
	if qf.CreatedBy != "" && ev.CreatedBy != qf.CreatedBy {
		return false
	}
	if qf.Type != "" && ev.Type != qf.Type {
		return false
	}
	if qf.IsPublic != nil && ev.IsPublic != *qf.IsPublic {
		return false
	}
	return true
}

// Less orders events by date, then start time, then id.
func Less(a, b Event) bool {
	if c := a.Date.Compare(b.Date); c != 0 {
		return c < 0
	}
	if am, bm := a.StartTime.Minutes(), b.StartTime.Minutes(); am != bm {
		return am < bm
	}
	return a.ID < b.ID
}
