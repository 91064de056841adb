package event

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/agenda/core"
	"github.com/trezcool/agenda/core/calendar"
)

var (
	testValidator = NewValidator()
	today         = calendar.NewDate(2025, 8, 1)
)

func validDraft() Draft {
	return Draft{
		Title:           "Exam",
		Type:            TypeExam,
		Date:            calendar.NewDate(2025, 8, 11),
		StartTime:       "09:00",
		EndTime:         "10:00",
		IsPublic:        true,
		Color:           TypeExam.Color(),
		ReminderMinutes: DefaultReminder,
	}
}

func TestDraft_Validate(t *testing.T) {
	tests := []struct {
		name      string
		edit      func(d *Draft)
		isEdit    bool
		wantField string
		wantMsg   string
	}{
		{name: "valid", edit: func(d *Draft) {}},
		{name: "end before start", edit: func(d *Draft) { d.EndTime = "08:00" }, wantField: "endTime", wantMsg: endAfterStartText},
		{name: "end equals start", edit: func(d *Draft) { d.EndTime = "09:00" }, wantField: "endTime", wantMsg: endAfterStartText},
		{name: "end one minute after start", edit: func(d *Draft) { d.EndTime = "09:01" }},
		{name: "blank title", edit: func(d *Draft) { d.Title = "   " }, wantField: "title", wantMsg: "this field cannot be blank"},
		{name: "long title", edit: func(d *Draft) { d.Title = strings.Repeat("a", 101) }, wantField: "title", wantMsg: "must be at most 100 characters long"},
		{name: "title at limit", edit: func(d *Draft) { d.Title = strings.Repeat("é", 100) }},
		{name: "long description", edit: func(d *Draft) { d.Description = strings.Repeat("a", 501) }, wantField: "description", wantMsg: "must be at most 500 characters long"},
		{name: "long location", edit: func(d *Draft) { d.Location = strings.Repeat("a", 101) }, wantField: "location", wantMsg: "must be at most 100 characters long"},
		{name: "unknown type", edit: func(d *Draft) { d.Type = "party" }, wantField: "type", wantMsg: eventTypeText},
		{name: "unknown subject", edit: func(d *Draft) { d.Subject = "Alchemy" }, wantField: "subject", wantMsg: subjectText},
		{name: "known subject", edit: func(d *Draft) { d.Subject = "Physics" }},
		{name: "bad reminder", edit: func(d *Draft) { d.ReminderMinutes = 20 }, wantField: "reminderMinutes", wantMsg: reminderText},
		{name: "bad clock", edit: func(d *Draft) { d.StartTime = "25:00" }, wantField: "startTime", wantMsg: clockText},
		{name: "missing end", edit: func(d *Draft) { d.EndTime = "" }, wantField: "endTime", wantMsg: "this field is required"},
		{name: "missing date", edit: func(d *Draft) { d.Date = calendar.Date{} }, wantField: "date", wantMsg: dateRequiredText},
		{name: "past date on create", edit: func(d *Draft) { d.Date = today.AddDays(-1) }, wantField: "date", wantMsg: dateInPastText},
		{name: "past date on edit", edit: func(d *Draft) { d.Date = today.AddDays(-1) }, isEdit: true},
		{name: "today on create", edit: func(d *Draft) { d.Date = today }},
		{name: "bad color", edit: func(d *Draft) { d.Color = "blue" }, wantField: "color"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDraft()
			tt.edit(&d)

			res := d.Validate(testValidator, today, tt.isEdit)
			if tt.wantField == "" {
				assert.True(t, res.Valid, "%v", res.Errors)
				assert.Empty(t, res.Errors)
				assert.NoError(t, res.Err())
				return
			}
			assert.False(t, res.Valid)
			require.Contains(t, res.Errors, tt.wantField)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, res.Errors[tt.wantField])
			}
		})
	}
}

func TestResult_Err(t *testing.T) {
	d := validDraft()
	d.Title = ""
	d.EndTime = "08:00"

	err := d.Validate(testValidator, today, false).Err()
	var vErr *core.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, []core.FieldError{
		{Field: "endTime", Error: endAfterStartText},
		{Field: "title", Error: "this field cannot be blank"},
	}, vErr.Fields)
}

func TestDraft_Clean(t *testing.T) {
	d := Draft{Title: "  Exam  ", Type: TypeHoliday}
	d.Clean()
	assert.Equal(t, "Exam", d.Title)
	assert.Equal(t, "#10B981", d.Color)
	assert.Equal(t, DefaultReminder, d.ReminderMinutes)

	var empty Draft
	empty.Clean()
	assert.Equal(t, DefaultType, empty.Type)
	assert.Equal(t, DefaultColor, empty.Color)
}

func TestClock(t *testing.T) {
	c, err := ParseClock("9:05")
	require.NoError(t, err)
	assert.Equal(t, Clock("09:05"), c)
	assert.Equal(t, 545, c.Minutes())

	_, err = ParseClock("nine")
	assert.Equal(t, ErrInvalidClock, err)

	assert.True(t, Clock("08:59").Before("09:00"))
	assert.False(t, Clock("09:00").Before("09:00"))
	assert.False(t, Clock("bad").Before("09:00"))
	assert.False(t, Clock("9:00").Valid())
}

func TestType_Table(t *testing.T) {
	assert.Len(t, Types, 7)
	for _, info := range Types {
		assert.True(t, info.Value.Valid())
		assert.Equal(t, info.Color, info.Value.Color())
		assert.NotEmpty(t, info.Label)
		assert.NotEmpty(t, info.Icon)
	}
	assert.Equal(t, DefaultColor, Type("unknown").Color())
	assert.Equal(t, "#EF4444", TypeExam.Color())

	typ, ok := ParseType(" Deadline ")
	assert.True(t, ok)
	assert.Equal(t, TypeDeadline, typ)
}
