package event

import (
	"time"

	"github.com/trezcool/agenda/core/calendar"
)

// Document is the stored shape of an event. Dates travel as the UTC instant of
// local midnight in the calendar's timezone, so range queries on them stay ordered.
type Document struct {
	ID              string    `json:"id" bson:"-"`
	Title           string    `json:"title" bson:"title"`
	Description     string    `json:"description" bson:"description"`
	Type            string    `json:"type" bson:"type"`
	Date            time.Time `json:"date" bson:"date"`
	StartTime       string    `json:"startTime" bson:"start_time"`
	EndTime         string    `json:"endTime" bson:"end_time"`
	Location        string    `json:"location" bson:"location"`
	Subject         string    `json:"subject" bson:"subject"`
	IsPublic        bool      `json:"isPublic" bson:"is_public"`
	Color           string    `json:"color" bson:"color"`
	ReminderMinutes int       `json:"reminderMinutes" bson:"reminder_minutes"`
	CreatedBy       string    `json:"createdBy" bson:"created_by"`
	CreatedAt       time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" bson:"updated_at"`
}

func EncodeDate(d calendar.Date, loc *time.Location) time.Time {
	return d.In(loc).UTC()
}

func DecodeDate(t time.Time, loc *time.Location) calendar.Date {
	return calendar.DateOf(t.In(loc))
}

// Codec translates between events and documents for one timezone.
type Codec struct {
	Location *time.Location
}

func NewCodec(loc *time.Location) Codec {
	if loc == nil {
		loc = time.Local
	}
	return Codec{Location: loc}
}

func (c Codec) Encode(ev Event) Document {
	return Document{
		ID:              ev.ID,
		Title:           ev.Title,
		Description:     ev.Description,
		Type:            string(ev.Type),
		Date:            EncodeDate(ev.Date, c.Location),
		StartTime:       string(ev.StartTime),
		EndTime:         string(ev.EndTime),
		Location:        ev.Location,
		Subject:         ev.Subject,
		IsPublic:        ev.IsPublic,
		Color:           ev.Color,
		ReminderMinutes: ev.ReminderMinutes,
		CreatedBy:       ev.CreatedBy,
		CreatedAt:       ev.CreatedAt.UTC(),
		UpdatedAt:       ev.UpdatedAt.UTC(),
	}
}

func (c Codec) Decode(doc Document) Event {
	return Event{
		ID: doc.ID,
		Draft: Draft{
			Title:           doc.Title,
			Description:     doc.Description,
			Type:            Type(doc.Type),
			Date:            DecodeDate(doc.Date, c.Location),
			StartTime:       Clock(doc.StartTime),
			EndTime:         Clock(doc.EndTime),
			Location:        doc.Location,
			Subject:         doc.Subject,
			IsPublic:        doc.IsPublic,
			Color:           doc.Color,
			ReminderMinutes: doc.ReminderMinutes,
		},
		CreatedBy: doc.CreatedBy,
		CreatedAt: doc.CreatedAt.UTC(),
		UpdatedAt: doc.UpdatedAt.UTC(),
	}
}

// EncodeRange returns the instants bounding the dates of f, with an exclusive upper bound.
// Zero times mean unbounded.
func (c Codec) EncodeRange(f QueryFilter) (from, to time.Time) {
	if f.From != nil {
		from = EncodeDate(*f.From, c.Location)
	}
	if f.To != nil {
		to = EncodeDate(f.To.AddDays(1), c.Location)
	}
	return from, to
}
