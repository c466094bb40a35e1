package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/username/remote-work-bot/pkg/dateutil"
)

// Weekdays is an immutable set of remote-work weekdays (Monday..Friday)
type Weekdays struct {
	days [7]bool
}

// NewWeekdays builds a weekday set. Only Monday to Friday are accepted.
func NewWeekdays(days ...time.Weekday) (Weekdays, error) {
	var w Weekdays
	for _, d := range days {
		if d < time.Monday || d > time.Friday {
			return Weekdays{}, fmt.Errorf("weekday %s is not a workday", d)
		}
		w.days[d] = true
	}
	return w, nil
}

// MustWeekdays is NewWeekdays for static input; it panics on weekends.
func MustWeekdays(days ...time.Weekday) Weekdays {
	w, err := NewWeekdays(days...)
	if err != nil {
		panic(err)
	}
	return w
}

// Contains reports whether the weekday is in the set
func (w Weekdays) Contains(d time.Weekday) bool {
	if d < time.Sunday || d > time.Saturday {
		return false
	}
	return w.days[d]
}

// Empty reports whether no weekday is selected
func (w Weekdays) Empty() bool {
	return len(w.List()) == 0
}

// List returns the selected weekdays in Monday..Friday order
func (w Weekdays) List() []time.Weekday {
	var list []time.Weekday
	for d := time.Monday; d <= time.Friday; d++ {
		if w.days[d] {
			list = append(list, d)
		}
	}
	return list
}

// String returns e.g. "Tuesday, Thursday"
func (w Weekdays) String() string {
	names := make([]string, 0, 5)
	for _, d := range w.List() {
		names = append(names, d.String())
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}

// RemoteDaysForMonth returns every date of the anchor's month whose weekday is in
// weekdays, ascending. Each date carries the anchor's hour and minute and location.
func RemoteDaysForMonth(anchor time.Time, weekdays Weekdays) []time.Time {
	n := dateutil.DaysInMonth(anchor)

	var days []time.Time
	for i := 1; i <= n; i++ {
		d := time.Date(anchor.Year(), anchor.Month(), i, anchor.Hour(), anchor.Minute(), 0, 0, anchor.Location())
		if weekdays.Contains(d.Weekday()) {
			days = append(days, d)
		}
	}

	return days
}

// Window is the instant range used to query absences for a month
type Window struct {
	From time.Time // inclusive
	To   time.Time // exclusive
}

// MonthWindowFor returns the absence query window for the anchor's month.
// From is 00:00 on the last day of the previous month so that absences starting
// right at the month boundary are fetched; To is 00:00 on the first of the next month.
func MonthWindowFor(anchor time.Time) Window {
	first := dateutil.StartOfMonth(anchor)
	return Window{
		From: first.AddDate(0, 0, -1),
		To:   first.AddDate(0, 1, 0),
	}
}

// Contains reports whether t lies in [From, To)
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.From) && t.Before(w.To)
}

func (w Window) String() string {
	return fmt.Sprintf("[%s, %s)", w.From.Format(time.RFC3339), w.To.Format(time.RFC3339))
}
