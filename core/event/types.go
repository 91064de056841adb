package event

import "strings"

// Type is the kind of an event. It drives the default color and the display label.
type Type string

// Types
const (
	TypeExam         Type = "exam"
	TypeAssignment   Type = "assignment"
	TypeClass        Type = "class"
	TypeMeeting      Type = "meeting"
	TypeHoliday      Type = "holiday"
	TypePresentation Type = "presentation"
	TypeDeadline     Type = "deadline"

	DefaultType  = TypeClass
	DefaultColor = "#3B82F6"
)

// TypeInfo is the display metadata of a Type.
type TypeInfo struct {
	Value Type   `json:"value"`
	Label string `json:"label"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

// Types is the lookup table every presentation surface reads labels, icons and colors from.
var Types = []TypeInfo{
	{Value: TypeExam, Label: "Exam", Icon: "📝", Color: "#EF4444"},
	{Value: TypeAssignment, Label: "Assignment", Icon: "📋", Color: "#F59E0B"},
	{Value: TypeClass, Label: "Class", Icon: "📚", Color: "#3B82F6"},
	{Value: TypeMeeting, Label: "Meeting", Icon: "👥", Color: "#8B5CF6"},
	{Value: TypeHoliday, Label: "Holiday", Icon: "🎉", Color: "#10B981"},
	{Value: TypePresentation, Label: "Presentation", Icon: "🎤", Color: "#06B6D4"},
	{Value: TypeDeadline, Label: "Deadline", Icon: "⏰", Color: "#F97316"},
}

func ParseType(s string) (Type, bool) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	return t, t.Valid()
}

func (t Type) Info() (TypeInfo, bool) {
	for _, info := range Types {
		if info.Value == t {
			return info, true
		}
	}
	return TypeInfo{}, false
}

func (t Type) Valid() bool {
	_, ok := t.Info()
	return ok
}

// Color returns the default color of t, or DefaultColor for unknown types.
func (t Type) Color() string {
	if info, ok := t.Info(); ok {
		return info.Color
	}
	return DefaultColor
}

func (t Type) Label() string {
	if info, ok := t.Info(); ok {
		return info.Label
	}
	return string(t)
}

// Subjects is the controlled subject vocabulary.
var Subjects = []string{
	"Mathematics", "Science", "History", "Literature", "English",
	"Physical Education", "Art", "Music", "Geography", "Chemistry",
	"Physics", "Biology", "Computer Science", "Philosophy",
}

func IsSubject(s string) bool {
	for _, subject := range Subjects {
		if subject == s {
			return true
		}
	}
	return false
}

// Reminder offsets, in minutes before the start of an event.
const (
	Reminder5Minutes  = 5
	Reminder15Minutes = 15
	Reminder30Minutes = 30
	Reminder1Hour     = 60
	Reminder1Day      = 1440
	Reminder2Days     = 2880
	Reminder1Week     = 10080

	DefaultReminder = Reminder15Minutes
)

type ReminderOption struct {
	Value int    `json:"value"`
	Label string `json:"label"`
}

var ReminderOptions = []ReminderOption{
	{Value: Reminder5Minutes, Label: "5 minutes before"},
	{Value: Reminder15Minutes, Label: "15 minutes before"},
	{Value: Reminder30Minutes, Label: "30 minutes before"},
	{Value: Reminder1Hour, Label: "1 hour before"},
	{Value: Reminder1Day, Label: "1 day before"},
	{Value: Reminder2Days, Label: "2 days before"},
	{Value: Reminder1Week, Label: "1 week before"},
}

func IsReminder(minutes int) bool {
	for _, opt := range ReminderOptions {
		if opt.Value == minutes {
			return true
		}
	}
	return false
}
