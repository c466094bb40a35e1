package reconcile

import (
	"context"
	"fmt"

	"github.com/username/remote-work-bot/internal/absence"
	"github.com/username/remote-work-bot/internal/calendar"
)

// PageSize is the number of absences requested per page
const PageSize = 1000

// FetchAbsences retrieves every absence of the user whose start lies in the window.
// Pages are requested one after another; a page shorter than PageSize is the last one.
// Any page error fails the whole fetch.
func FetchAbsences(ctx context.Context, q AbsenceQuerier, userID string, w calendar.Window) ([]absence.Absence, error) {
	var all []absence.Absence

	for page := 0; ; page++ {
		records, err := q.QueryAbsences(ctx, absence.AbsenceQuery{
			AssignedToID: userID,
			From:         w.From,
			To:           w.To,
			Limit:        PageSize,
			Skip:         page * PageSize,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to fetch absences page %d: %w", page, err)
		}

		all = append(all, records...)

		if len(records) < PageSize {
			return all, nil
		}
	}
}
