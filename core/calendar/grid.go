package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
)

var ErrInvalidMonth = errors.New("invalid month, expected YYYY-MM")

// GridSize is the fixed number of cells in a month grid: 6 weeks of 7 days.
const GridSize = 42

// Month identifies a calendar month.
type Month struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

func MonthOf(d Date) Month {
	return Month{Year: d.Year, Month: d.Month}
}

// ParseMonth parses a "YYYY-MM" month.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return Month{}, ErrInvalidMonth
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, m.Month)
}

// AddMonths moves m by n months (n may be negative).
func (m Month) AddMonths(n int) Month {
	return MonthOf(NewDate(m.Year, m.Month+time.Month(n), 1))
}

func (m Month) FirstDay() Date { return NewDate(m.Year, m.Month, 1) }
func (m Month) LastDay() Date  { return NewDate(m.Year, m.Month+1, 0) }

func (m Month) Contains(d Date) bool {
	return d.Year == m.Year && d.Month == m.Month
}

// Day is one grid cell.
type Day struct {
	Date           Date `json:"date"`
	IsCurrentMonth bool `json:"isCurrentMonth"`
}

// MonthGrid returns the 42 days shown for the given month, starting on the Sunday on or before the 1st.
// Months that fit in fewer weeks are padded with days of the following month, so the grid
// keeps the same shape across navigation.
func MonthGrid(year int, month time.Month) [GridSize]Day {
	m := Month{Year: year, Month: month}
	if month < time.January || month > time.December {
		m = MonthOf(NewDate(year, month, 1))
	}

	first := m.FirstDay()
	start := first.AddDays(-int(first.Weekday()))

	var grid [GridSize]Day
	for i := range grid {
		d := start.AddDays(i)
		grid[i] = Day{Date: d, IsCurrentMonth: m.Contains(d)}
	}
	return grid
}

// GridRange returns the first and last dates covered by the month's grid.
func GridRange(m Month) (Date, Date) {
	grid := MonthGrid(m.Year, m.Month)
	return grid[0].Date, grid[GridSize-1].Date
}
