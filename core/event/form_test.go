package event

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/agenda/core/calendar"
)

func TestNewCreateForm_Defaults(t *testing.T) {
	date := calendar.NewDate(2025, 8, 11)
	f := NewCreateForm(date)
	d := f.Draft()

	assert.False(t, f.IsEdit())
	assert.Equal(t, TypeClass, d.Type)
	assert.Equal(t, "#3B82F6", d.Color)
	assert.Equal(t, Clock("09:00"), d.StartTime)
	assert.Equal(t, Clock("10:00"), d.EndTime)
	assert.True(t, d.IsPublic)
	assert.Equal(t, 15, d.ReminderMinutes)
	assert.Equal(t, date, d.Date)
}

func TestForm_TypeDrivesColor(t *testing.T) {
	f := NewCreateForm(calendar.Date{})

	f.SetType(TypeExam)
	assert.Equal(t, "#EF4444", f.Draft().Color)

	f.SetColor("#123456")
	assert.True(t, f.ColorOverridden())

	// the picked color survives the next type change
	f.SetType(TypeMeeting)
	assert.Equal(t, "#123456", f.Draft().Color)
	assert.False(t, f.ColorOverridden())

	f.SetType(TypeHoliday)
	assert.Equal(t, "#10B981", f.Draft().Color)
}

func TestForm_Apply(t *testing.T) {
	f := NewCreateForm(calendar.Date{})
	typ := TypeDeadline
	title := "Essay"
	end := Clock("11:30")
	f.Apply(Patch{Type: &typ, Title: &title, EndTime: &end})

	d := f.Draft()
	assert.Equal(t, TypeDeadline, d.Type)
	assert.Equal(t, "#F97316", d.Color)
	assert.Equal(t, "Essay", d.Title)
	assert.Equal(t, Clock("09:00"), d.StartTime)
	assert.Equal(t, Clock("11:30"), d.EndTime)

	color := "#000000"
	typ = TypeExam
	f.Apply(Patch{Type: &typ, Color: &color})
	assert.Equal(t, "#000000", f.Draft().Color)
}

func TestForm_Submit(t *testing.T) {
	f := NewCreateForm(calendar.NewDate(2025, 8, 11))
	f.SetTitle("Exam")
	f.SetTimes("09:00", "08:00")

	_, res := f.Submit(testValidator, today)
	assert.False(t, res.Valid)
	assert.Equal(t, endAfterStartText, f.Errors()["endTime"])

	f.SetTimes("09:00", "11:00")
	assert.NotContains(t, f.Errors(), "endTime")

	d, res := f.Submit(testValidator, today)
	assert.True(t, res.Valid)
	assert.Empty(t, f.Errors())
	assert.Equal(t, "Exam", d.Title)
}

func TestNewEditForm(t *testing.T) {
	ev := Event{ID: "e1", Draft: validDraft(), CreatedBy: "u1"}
	ev.Date = today.AddDays(-10)

	f := NewEditForm(ev)
	assert.True(t, f.IsEdit())
	assert.Equal(t, "e1", f.EventID())
	assert.Equal(t, ev.Draft, f.Draft())

	// an edit may keep a past date
	_, res := f.Submit(testValidator, today)
	assert.True(t, res.Valid, "%v", res.Errors)
}
