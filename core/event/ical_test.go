package event

import (
	"bytes"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportICS(t *testing.T) {
	stamp := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	exam := Event{ID: "e1", Draft: validDraft(), CreatedBy: "u1", CreatedAt: stamp, UpdatedAt: stamp}
	trip := Event{ID: "e2", Draft: validDraft(), CreatedBy: "u2", CreatedAt: stamp, UpdatedAt: stamp}
	trip.Title = "Field trip"
	trip.Type = TypeHoliday
	trip.IsPublic = false
	trip.ReminderMinutes = Reminder1Week

	var buf bytes.Buffer
	require.NoError(t, ExportICS(&buf, "School agenda", []Event{exam, trip}, time.UTC, stamp))

	out := buf.String()
	assert.Contains(t, out, "TRIGGER:-PT15M")
	assert.Contains(t, out, "TRIGGER:-P1W")
	assert.Contains(t, out, "CLASS:PRIVATE")

	cal, err := ical.ParseCalendar(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	events := cal.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "e1@agenda", events[0].Id())
	assert.Equal(t, "Exam", events[0].GetProperty(ical.ComponentPropertySummary).Value)

	start, err := events[1].GetStartAt()
	require.NoError(t, err)
	assert.True(t, start.Equal(time.Date(2025, 8, 11, 9, 0, 0, 0, time.UTC)))
}

func TestReminderTrigger(t *testing.T) {
	assert.Equal(t, "-PT5M", reminderTrigger(5))
	assert.Equal(t, "-PT1H", reminderTrigger(60))
	assert.Equal(t, "-P1D", reminderTrigger(1440))
	assert.Equal(t, "-P2D", reminderTrigger(2880))
	assert.Equal(t, "-P1W", reminderTrigger(10080))
}
