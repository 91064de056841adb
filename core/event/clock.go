package event

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const clockLayout = "15:04"

var ErrInvalidClock = errors.New("invalid time, expected HH:MM")

// Clock is a local wall-clock time formatted as HH:MM.
type Clock string

func NewClock(hour, minute int) Clock {
	return Clock(fmt.Sprintf("%02d:%02d", hour, minute))
}

func ParseClock(s string) (Clock, error) {
	t, err := time.Parse(clockLayout, strings.TrimSpace(s))
	if err != nil {
		return "", ErrInvalidClock
	}
	return NewClock(t.Hour(), t.Minute()), nil
}

func (c Clock) Valid() bool {
	parsed, err := ParseClock(string(c))
	return err == nil && parsed == c
}

// Minutes returns the number of minutes since midnight, or -1 if c is not valid.
func (c Clock) Minutes() int {
	t, err := time.Parse(clockLayout, string(c))
	if err != nil {
		return -1
	}
	return t.Hour()*60 + t.Minute()
}

// Before reports whether c is strictly earlier than o. Invalid clocks are never before anything.
func (c Clock) Before(o Clock) bool {
	cm, om := c.Minutes(), o.Minutes()
	return cm >= 0 && om >= 0 && cm < om
}

func (c Clock) String() string { return string(c) }
