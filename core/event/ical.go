package event

import (
	"fmt"
	"io"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/pkg/errors"
)

// ExportICS writes evs as an iCalendar document. Reminders become display alarms.
func ExportICS(w io.Writer, name string, evs []Event, loc *time.Location, stamp time.Time) error {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//agenda//calendar export//EN")
	cal.SetXWRCalName(name)

	for _, ev := range evs {
		vev := cal.AddEvent(ev.ID + "@agenda")
		vev.SetDtStampTime(stamp.UTC())
		vev.SetCreatedTime(ev.CreatedAt)
		vev.SetModifiedAt(ev.UpdatedAt)
		vev.SetStartAt(ev.Start(loc))
		vev.SetEndAt(ev.End(loc))
		vev.SetSummary(ev.Title)
		if ev.Description != "" {
			vev.SetDescription(ev.Description)
		}
		if ev.Location != "" {
			vev.SetLocation(ev.Location)
		}
		vev.SetProperty(ical.ComponentPropertyCategories, ev.Type.Label())
		vev.SetProperty(ical.ComponentProperty("COLOR"), ev.Color)
		if ev.IsPublic {
			vev.SetProperty(ical.ComponentPropertyClass, "PUBLIC")
		} else {
			vev.SetProperty(ical.ComponentPropertyClass, "PRIVATE")
		}

		if ev.ReminderMinutes > 0 {
			alarm := vev.AddAlarm()
			alarm.SetAction(ical.ActionDisplay)
			alarm.SetTrigger(reminderTrigger(ev.ReminderMinutes))
			alarm.SetProperty(ical.ComponentPropertyDescription, ev.Title)
		}
	}

	if err := cal.SerializeTo(w); err != nil {
		return errors.Wrap(err, "serializing calendar")
	}
	return nil
}

// reminderTrigger renders a negative iCalendar duration, e.g. -PT15M or -P1W.
func reminderTrigger(minutes int) string {
	switch {
	case minutes%10080 == 0:
		return fmt.Sprintf("-P%dW", minutes/10080)
	case minutes%1440 == 0:
		return fmt.Sprintf("-P%dD", minutes/1440)
	case minutes%60 == 0:
		return fmt.Sprintf("-PT%dH", minutes/60)
	}
	return fmt.Sprintf("-PT%dM", minutes)
}
