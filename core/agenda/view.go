package agenda

import (
	"github.com/trezcool/agenda/core/calendar"
	"github.com/trezcool/agenda/core/event"
)

type FormMode int

const (
	FormNone FormMode = iota
	FormCreate
	FormEdit
)

func (m FormMode) String() string {
	switch m {
	case FormCreate:
		return "create"
	case FormEdit:
		return "edit"
	}
	return "none"
}

func (m FormMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *FormMode) UnmarshalText(b []byte) error {
	switch string(b) {
	case "create":
		*m = FormCreate
	case "edit":
		*m = FormEdit
	default:
		*m = FormNone
	}
	return nil
}

// Notice is a dismissible message shown after a failed operation.
type Notice struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

const (
	NoticeError   = "error"
	NoticeWarning = "warning"
)

// Cell is one day of the month view with its events overlaid.
type Cell struct {
	Date           calendar.Date `json:"date"`
	IsCurrentMonth bool          `json:"isCurrentMonth"`
	IsToday        bool          `json:"isToday"`
	IsSelected     bool          `json:"isSelected"`
	Events         []event.Event `json:"events"`
	More           int           `json:"more"`
}

// Detail is an opened event with the actions the current principal may take on it.
type Detail struct {
	Event     event.Event    `json:"event"`
	TypeInfo  event.TypeInfo `json:"typeInfo"`
	CanEdit   bool           `json:"canEdit"`
	CanDelete bool           `json:"canDelete"`
}

type FormView struct {
	Mode            FormMode          `json:"mode"`
	EventID         string            `json:"eventId,omitempty"`
	Draft           event.Draft       `json:"draft"`
	Errors          map[string]string `json:"errors"`
	ColorOverridden bool              `json:"colorOverridden"`
	Submitting      bool              `json:"submitting"`
}

type DayView struct {
	Date   calendar.Date `json:"date"`
	Events []event.Event `json:"events"`
}

// MonthView is a snapshot of the controller state, ready to render.
type MonthView struct {
	Month    calendar.Month          `json:"month"`
	Today    calendar.Date           `json:"today"`
	Cells    [calendar.GridSize]Cell `json:"cells"`
	Selected *DayView                `json:"selected,omitempty"`
	Detail   *Detail                 `json:"detail,omitempty"`
	Form     *FormView               `json:"form,omitempty"`
	Notice   *Notice                 `json:"notice,omitempty"`
	Upcoming []event.Event           `json:"upcoming"`
	Loaded   bool                    `json:"loaded"`
}
