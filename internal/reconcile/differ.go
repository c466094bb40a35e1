package reconcile

import (
	"time"

	"github.com/username/remote-work-bot/internal/absence"
)

// UncoveredDays returns the days, in their original order, that no absence covers.
// Absence boundaries are inclusive: a day exactly at start or end is covered.
func UncoveredDays(days []time.Time, absences []absence.Absence) []time.Time {
	var uncovered []time.Time

	for _, day := range days {
		if !isCovered(day, absences) {
			uncovered = append(uncovered, day)
		}
	}

	return uncovered
}

func isCovered(day time.Time, absences []absence.Absence) bool {
	for _, a := range absences {
		if a.Covers(day) {
			return true
		}
	}
	return false
}
