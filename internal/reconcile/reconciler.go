package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/username/remote-work-bot/internal/absence"
	"github.com/username/remote-work-bot/internal/calendar"
	"github.com/username/remote-work-bot/internal/console"
	"github.com/username/remote-work-bot/pkg/dateutil"
	"go.uber.org/zap"
)

const (
	DefaultReasonName  = "Remote Work"
	DefaultCalendarURL = "https://app.absence.io/#/mycalendar"
)

// Outcome tells how a run ended when it returned without error
type Outcome int

const (
	// OutcomeFailed accompanies a non-nil error
	OutcomeFailed Outcome = iota
	// OutcomeCompleted means the operator stopped at a "next month?" question
	OutcomeCompleted
	// OutcomeDeclined means the operator refused to create proposed absences
	OutcomeDeclined
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "completed"
	case OutcomeDeclined:
		return "declined"
	default:
		return "failed"
	}
}

// Options configures a Reconciler
type Options struct {
	Email      string
	ReasonName string
	Weekdays   calendar.Weekdays
	// ReferenceZone is the zone absence start/end are sent in
	ReferenceZone *time.Location
	DryRun        bool
	CalendarURL   string
}

// MonthPlan is the result of reconciling one month
type MonthPlan struct {
	Month      time.Time
	Window     calendar.Window
	Candidates []time.Time
	Existing   []absence.Absence
	Uncovered  []time.Time
}

// Reconciler walks month by month, proposing and creating missing remote-work absences
type Reconciler struct {
	svc    Service
	op     Operator
	opts   Options
	logger *zap.Logger

	reason *absence.Reason // resolved on first use
}

// NewReconciler creates a reconciler
func NewReconciler(svc Service, op Operator, opts Options, logger *zap.Logger) *Reconciler {
	if opts.ReasonName == "" {
		opts.ReasonName = DefaultReasonName
	}
	if opts.ReferenceZone == nil {
		opts.ReferenceZone = time.UTC
	}
	if opts.CalendarURL == "" {
		opts.CalendarURL = DefaultCalendarURL
	}

	return &Reconciler{
		svc:    svc,
		op:     op,
		opts:   opts,
		logger: logger,
	}
}

// Run reconciles the anchor's month, then each following month for as long as the
// operator agrees. Candidate days carry the anchor's clock time and location.
func (r *Reconciler) Run(ctx context.Context, anchor time.Time) (Outcome, error) {
	r.logger.Info("Starting reconciliation",
		zap.String("email", r.opts.Email),
		zap.String("weekdays", r.opts.Weekdays.String()),
		zap.Time("anchor", anchor),
		zap.Bool("dry_run", r.opts.DryRun))

	user, err := r.resolveUser(ctx)
	if err != nil {
		return OutcomeFailed, err
	}

	for offset := 0; ; offset++ {
		month := dateutil.AddMonths(anchor, offset)

		plan, err := r.PlanMonth(ctx, user, month)
		if err != nil {
			return OutcomeFailed, err
		}

		if len(plan.Uncovered) == 0 {
			r.op.Printf("No new %q absences found for %s\n", r.opts.ReasonName, dateutil.FormatMonth(month))
		} else {
			r.printPlan(plan)

			if r.opts.DryRun {
				r.op.Printf("[DRY RUN] No absences were created\n")
			} else {
				answer, err := r.op.Confirm(ctx, fmt.Sprintf("Create %q absences for these %d day(s)?",
					r.opts.ReasonName, len(plan.Uncovered)))
				if err != nil {
					return OutcomeFailed, fmt.Errorf("failed to confirm creation: %w", err)
				}
				if answer == console.No {
					r.logger.Info("Operator declined creation, stopping",
						zap.String("month", dateutil.FormatMonth(month)))
					r.op.Printf("Ok, nothing was created.\n")
					return OutcomeDeclined, nil
				}

				if err := r.createAbsences(ctx, user, plan); err != nil {
					return OutcomeFailed, err
				}
			}
		}

		next := dateutil.AddMonths(anchor, offset+1)
		answer, err := r.op.Confirm(ctx, fmt.Sprintf("Should %q be entered for %s?",
			r.opts.ReasonName, dateutil.FormatMonth(next)))
		if err != nil {
			return OutcomeFailed, fmt.Errorf("failed to confirm next month: %w", err)
		}
		if answer == console.No {
			break
		}
		r.op.Printf("Ok, moving on\n")
	}

	r.op.Printf("%s\n", r.opts.CalendarURL)
	r.op.Printf("Done\n")

	r.logger.Info("Reconciliation finished")

	return OutcomeCompleted, nil
}

// PlanMonth computes the remote days of the month that have no absence yet
func (r *Reconciler) PlanMonth(ctx context.Context, user *absence.User, month time.Time) (*MonthPlan, error) {
	if _, err := r.resolveReason(ctx); err != nil {
		return nil, err
	}

	window := calendar.MonthWindowFor(month)

	existing, err := FetchAbsences(ctx, r.svc, user.ID, window)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch absences for %s: %w", dateutil.FormatMonth(month), err)
	}

	candidates := calendar.RemoteDaysForMonth(month, r.opts.Weekdays)
	uncovered := UncoveredDays(candidates, existing)

	r.logger.Info("Month reconciled",
		zap.String("month", dateutil.FormatMonth(month)),
		zap.Stringer("window", window),
		zap.Int("existing_absences", len(existing)),
		zap.Int("remote_days", len(candidates)),
		zap.Int("uncovered_days", len(uncovered)))

	return &MonthPlan{
		Month:      month,
		Window:     window,
		Candidates: candidates,
		Existing:   existing,
		Uncovered:  uncovered,
	}, nil
}

func (r *Reconciler) resolveUser(ctx context.Context) (*absence.User, error) {
	user, err := r.svc.FindUserByEmail(ctx, r.opts.Email)
	if err != nil {
		if errors.Is(err, absence.ErrNotFound) {
			return nil, fmt.Errorf("%w: no user with email %q", ErrUserNotFound, r.opts.Email)
		}
		return nil, fmt.Errorf("failed to look up user %q: %w", r.opts.Email, err)
	}

	r.logger.Info("User resolved",
		zap.String("id", user.ID),
		zap.String("name", user.DisplayName()))

	return user, nil
}

func (r *Reconciler) resolveReason(ctx context.Context) (*absence.Reason, error) {
	if r.reason != nil {
		return r.reason, nil
	}

	reason, err := r.svc.FindReasonByName(ctx, r.opts.ReasonName)
	if err != nil {
		if errors.Is(err, absence.ErrNotFound) {
			return nil, fmt.Errorf("%w: %q", ErrReasonNotFound, r.opts.ReasonName)
		}
		return nil, fmt.Errorf("failed to look up reason %q: %w", r.opts.ReasonName, err)
	}

	r.reason = reason
	return reason, nil
}

func (r *Reconciler) printPlan(plan *MonthPlan) {
	r.op.Printf("%q days without an absence in %s:\n", r.opts.ReasonName, dateutil.FormatMonth(plan.Month))
	for _, day := range plan.Uncovered {
		r.op.Printf("  %s  %s\n", dateutil.FormatDay(day), day.Weekday())
	}
}

func (r *Reconciler) createAbsences(ctx context.Context, user *absence.User, plan *MonthPlan) error {
	results, err := CreateAbsences(ctx, r.svc, user, r.reason, plan.Uncovered, r.opts.ReferenceZone)

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			r.op.Failuref("  ❌ %s: %v\n", dateutil.FormatDay(res.Day), res.Err)
			continue
		}
		r.op.Successf("  ✅ Absence created for %s\n", dateutil.FormatDay(res.Day))
	}

	r.logger.Info("Absences created",
		zap.String("month", dateutil.FormatMonth(plan.Month)),
		zap.Int("requested", len(results)),
		zap.Int("failed", failed))

	if err != nil {
		r.op.Printf("%d of %d absences created\n", len(results)-failed, len(results))
		return fmt.Errorf("failed to create %d of %d absences: %w", failed, len(results), err)
	}

	return nil
}
