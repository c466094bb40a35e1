package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/username/remote-work-bot/internal/absence"
	"github.com/username/remote-work-bot/pkg/dateutil"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// CreationResult is the outcome of creating the absence for one day
type CreationResult struct {
	Day     time.Time
	Start   time.Time
	End     time.Time
	Absence *absence.Absence
	Err     error
}

// DayRange returns local midnight of the day and of the following day, both
// expressed in the reference zone.
func DayRange(day time.Time, ref *time.Location) (start, end time.Time) {
	return dateutil.StartOfDay(day).In(ref), dateutil.NextDay(day).In(ref)
}

// CreateAbsences creates one absence per day, all requests in flight at once.
// A failing request does not cancel its siblings. Every outcome is returned in
// day order; the error combines all failures.
func CreateAbsences(
	ctx context.Context,
	c AbsenceCreator,
	user *absence.User,
	reason *absence.Reason,
	days []time.Time,
	ref *time.Location,
) ([]CreationResult, error) {
	results := make([]CreationResult, len(days))

	var g errgroup.Group
	for i, day := range days {
		start, end := DayRange(day, ref)
		results[i] = CreationResult{Day: day, Start: start, End: end}
		i := i

		g.Go(func() error {
			created, err := c.CreateAbsence(ctx, absence.CreateAbsenceRequest{
				AssignedToID: user.ID,
				ApproverID:   user.ID,
				Start:        absence.APITime{Time: start},
				End:          absence.APITime{Time: end},
				ReasonID:     reason.ID,
			})
			results[i].Absence = created
			results[i].Err = err
			return err
		})
	}

	if err := g.Wait(); err == nil {
		return results, nil
	}

	var errs error
	for _, r := range results {
		if r.Err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", dateutil.FormatDay(r.Day), r.Err))
		}
	}

	return results, errs
}
