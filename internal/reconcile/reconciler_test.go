package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/remote-work-bot/internal/absence"
	"github.com/username/remote-work-bot/internal/calendar"
	"github.com/username/remote-work-bot/internal/console"
	"go.uber.org/zap"
)

func newTestReconciler(t *testing.T, svc *fakeService, op *fakeOperator, weekdays calendar.Weekdays, ref *time.Location) *Reconciler {
	t.Helper()
	return NewReconciler(svc, op, Options{
		Email:         "jane@example.com",
		Weekdays:      weekdays,
		ReferenceZone: ref,
	}, zap.NewNop())
}

func newFakeService() *fakeService {
	return &fakeService{
		user:   &absence.User{ID: "u1", Email: "jane@example.com"},
		reason: &absence.Reason{ID: "r-remote", Name: "Remote Work"},
	}
}

func TestReconciler_DeclineCreatesNothingAndStopsRun(t *testing.T) {
	// GIVEN: February 2024 has four Mondays, the 12th already has an absence
	svc := newFakeService()
	svc.absences = []absence.Absence{dayAbsence("u1",
		time.Date(2024, 2, 12, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 13, 0, 0, 0, 0, time.UTC))}
	op := &fakeOperator{answers: []console.Answer{console.No}}
	r := newTestReconciler(t, svc, op, calendar.MustWeekdays(time.Monday), time.UTC)

	// WHEN: the operator declines the proposal
	outcome, err := r.Run(context.Background(), time.Date(2024, 2, 10, 9, 15, 0, 0, time.UTC))

	// THEN: three days were proposed, none created, no further month asked for
	require.NoError(t, err)
	assert.Equal(t, OutcomeDeclined, outcome)
	assert.Empty(t, svc.created)
	require.Len(t, op.questions, 1)
	assert.Contains(t, op.questions[0], "3 day(s)")
	assert.Len(t, svc.queries, 1, "only the first month was fetched")

	out := op.out.String()
	assert.Contains(t, out, "05.02.2024")
	assert.NotContains(t, out, "12.02.2024")
	assert.Contains(t, out, "19.02.2024")
	assert.Contains(t, out, "26.02.2024")
	assert.NotContains(t, out, "Done")
}

func TestReconciler_AcceptCreatesEveryUncoveredDay(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	// GIVEN: no absences, February 2024 has five Thursdays
	svc := newFakeService()
	op := &fakeOperator{answers: []console.Answer{console.Yes, console.No}}
	r := newTestReconciler(t, svc, op, calendar.MustWeekdays(time.Thursday), berlin)

	// WHEN: the operator accepts, then stops
	outcome, err := r.Run(context.Background(), time.Date(2024, 2, 1, 8, 0, 0, 0, berlin))

	// THEN
	require.NoError(t, err)
	assert.Equal(t, OutcomeCompleted, outcome)
	require.Len(t, svc.created, 5)

	seen := map[int]bool{}
	for _, req := range svc.created {
		start := req.Start.Time
		end := req.End.Time
		assert.Equal(t, berlin, start.Location())
		assert.True(t, end.Equal(start.AddDate(0, 0, 1)), "start %v end %v", start, end)
		assert.Equal(t, 0, start.Hour())
		assert.Equal(t, time.Thursday, start.Weekday())
		assert.Equal(t, "u1", req.AssignedToID)
		assert.Equal(t, "u1", req.ApproverID)
		assert.Equal(t, "r-remote", req.ReasonID)
		seen[start.Day()] = true
	}
	assert.Equal(t, map[int]bool{1: true, 8: true, 15: true, 22: true, 29: true}, seen)

	require.Len(t, op.questions, 2)
	assert.Contains(t, op.questions[1], "03.2024")
	assert.Contains(t, op.out.String(), "Absence created for 29.02.2024")
	assert.Contains(t, op.out.String(), DefaultCalendarURL)
	assert.Contains(t, op.out.String(), "Done")
}

func TestReconciler_UserNotFound(t *testing.T) {
	svc := newFakeService()
	svc.user = &absence.User{ID: "u9", Email: "someone-else@example.com"}
	op := &fakeOperator{}
	r := newTestReconciler(t, svc, op, calendar.MustWeekdays(time.Monday), time.UTC)

	outcome, err := r.Run(context.Background(), time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Equal(t, OutcomeFailed, outcome)
	assert.Empty(t, svc.queries)
	assert.Empty(t, op.questions)
}

func TestReconciler_UserLookupFailureIsNotNotFound(t *testing.T) {
	svc := newFakeService()
	svc.userErr = errors.New("dial tcp: i/o timeout")
	r := newTestReconciler(t, svc, &fakeOperator{}, calendar.MustWeekdays(time.Monday), time.UTC)

	_, err := r.Run(context.Background(), time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC))

	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUserNotFound))
}

func TestReconciler_ReasonNotFoundAbortsRun(t *testing.T) {
	svc := newFakeService()
	svc.reason = &absence.Reason{ID: "r1", Name: "Vacation"}
	op := &fakeOperator{}
	r := newTestReconciler(t, svc, op, calendar.MustWeekdays(time.Monday), time.UTC)

	outcome, err := r.Run(context.Background(), time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrReasonNotFound)
	assert.Equal(t, OutcomeFailed, outcome)
	assert.Empty(t, svc.queries)
	assert.Empty(t, op.questions)
}

func TestReconciler_WindowOnlySeesAbsencesStartingInside(t *testing.T) {
	// GIVEN: a single vacation starting Feb 1 and covering February and March 2024
	svc := newFakeService()
	svc.absences = []absence.Absence{dayAbsence("u1",
		time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))}
	op := &fakeOperator{answers: []console.Answer{console.Yes, console.No}}
	r := newTestReconciler(t, svc, op, calendar.MustWeekdays(time.Monday, time.Friday), time.UTC)

	// WHEN
	outcome, err := r.Run(context.Background(), time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC))

	// THEN: February reports nothing new, the March window no longer sees the
	// February-start absence, and the reason was looked up once
	require.NoError(t, err)
	assert.Equal(t, OutcomeDeclined, outcome)
	assert.Empty(t, svc.created)

	out := op.out.String()
	assert.Contains(t, out, `No new "Remote Work" absences found for 02.2024`)
	assert.Contains(t, out, `"Remote Work" days without an absence in 03.2024`)
	assert.Equal(t, 1, svc.reasonLookups)
	require.Len(t, svc.queries, 2)
	assert.True(t, svc.queries[1].From.Equal(time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)))
}

func TestReconciler_YearRollover(t *testing.T) {
	svc := newFakeService()
	op := &fakeOperator{answers: []console.Answer{console.Yes, console.Yes, console.Yes, console.No}}
	r := newTestReconciler(t, svc, op, calendar.MustWeekdays(time.Wednesday), time.UTC)

	// Anchored on Dec 31 to make sure the next month is January, not March
	_, err := r.Run(context.Background(), time.Date(2024, 12, 31, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.Len(t, svc.queries, 2)
	assert.True(t, svc.queries[0].From.Equal(time.Date(2024, 11, 30, 0, 0, 0, 0, time.UTC)))
	assert.True(t, svc.queries[0].To.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, svc.queries[1].From.Equal(time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)))
	assert.True(t, svc.queries[1].To.Equal(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)))

	require.Len(t, op.questions, 4)
	assert.Contains(t, op.questions[1], "01.2025")
	assert.Contains(t, op.questions[3], "02.2025")

	// December 2024: 4, 11, 18, 25; January 2025: 1, 8, 15, 22, 29
	require.Len(t, svc.created, 9)
	for _, req := range svc.created {
		assert.Equal(t, time.Wednesday, req.Start.Weekday())
	}
}

func TestReconciler_DryRunNeverCreates(t *testing.T) {
	svc := newFakeService()
	op := &fakeOperator{answers: []console.Answer{console.No}}
	r := NewReconciler(svc, op, Options{
		Email:    "jane@example.com",
		Weekdays: calendar.MustWeekdays(time.Tuesday),
		DryRun:   true,
	}, zap.NewNop())

	outcome, err := r.Run(context.Background(), time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC))

	require.NoError(t, err)
	assert.Equal(t, OutcomeCompleted, outcome)
	assert.Empty(t, svc.created)
	require.Len(t, op.questions, 1, "only the next-month question is asked")
	assert.Contains(t, op.out.String(), "[DRY RUN]")
}

func TestReconciler_PartialCreationFailureStopsRun(t *testing.T) {
	svc := newFakeService()
	svc.createErrs = map[string]error{"2024-02-13": errors.New("500 internal error")}
	op := &fakeOperator{answers: []console.Answer{console.Yes}}
	r := newTestReconciler(t, svc, op, calendar.MustWeekdays(time.Tuesday), time.UTC)

	outcome, err := r.Run(context.Background(), time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC))

	require.Error(t, err)
	assert.Equal(t, OutcomeFailed, outcome)
	assert.Contains(t, err.Error(), "failed to create 1 of 4 absences")

	// Tuesdays 6, 13, 20, 27: three created, the failure reported, no next month
	assert.Len(t, svc.created, 3)
	assert.Len(t, op.questions, 1)
	out := op.out.String()
	assert.Contains(t, out, "❌ 13.02.2024")
	assert.Contains(t, out, "3 of 4 absences created")
}

func TestReconciler_RerunSkipsCreatedAbsences(t *testing.T) {
	svc := newFakeService()
	anchor := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)

	first := newTestReconciler(t, svc, &fakeOperator{answers: []console.Answer{console.Yes, console.No}},
		calendar.MustWeekdays(time.Friday), time.UTC)
	_, err := first.Run(context.Background(), anchor)
	require.NoError(t, err)
	require.Len(t, svc.created, 4)

	op := &fakeOperator{answers: []console.Answer{console.No}}
	second := newTestReconciler(t, svc, op, calendar.MustWeekdays(time.Friday), time.UTC)
	_, err = second.Run(context.Background(), anchor)
	require.NoError(t, err)

	assert.Len(t, svc.created, 4)
	assert.Contains(t, op.out.String(), "No new")
}

func TestReconciler_FetchErrorAbortsRun(t *testing.T) {
	svc := newFakeService()
	svc.queryErr = errors.New("connection refused")
	op := &fakeOperator{}
	r := newTestReconciler(t, svc, op, calendar.MustWeekdays(time.Monday), time.UTC)

	outcome, err := r.Run(context.Background(), time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC))

	require.Error(t, err)
	assert.Equal(t, OutcomeFailed, outcome)
	assert.Contains(t, err.Error(), "02.2024")
	assert.Empty(t, op.questions)
}
