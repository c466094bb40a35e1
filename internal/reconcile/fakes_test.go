package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/username/remote-work-bot/internal/absence"
	"github.com/username/remote-work-bot/internal/calendar"
	"github.com/username/remote-work-bot/internal/console"
)

// fakeService is an in-memory absence.io
type fakeService struct {
	mu sync.Mutex

	user      *absence.User
	userErr   error
	reason    *absence.Reason
	reasonErr error

	absences   []absence.Absence
	pages      [][]absence.Absence // when set, served in order instead of absences
	queryErr   error
	queries    []absence.AbsenceQuery
	createErrs map[string]error // keyed by start date "2006-01-02" in the reference zone

	reasonLookups int
	created       []absence.CreateAbsenceRequest
}

func (f *fakeService) FindUserByEmail(ctx context.Context, email string) (*absence.User, error) {
	if f.userErr != nil {
		return nil, f.userErr
	}
	if f.user == nil || !strings.EqualFold(f.user.Email, email) {
		return nil, fmt.Errorf("user %q: %w", email, absence.ErrNotFound)
	}
	return f.user, nil
}

func (f *fakeService) FindReasonByName(ctx context.Context, name string) (*absence.Reason, error) {
	f.reasonLookups++
	if f.reasonErr != nil {
		return nil, f.reasonErr
	}
	if f.reason == nil || f.reason.Name != name {
		return nil, fmt.Errorf("reason %q: %w", name, absence.ErrNotFound)
	}
	return f.reason, nil
}

func (f *fakeService) QueryAbsences(ctx context.Context, q absence.AbsenceQuery) ([]absence.Absence, error) {
	f.queries = append(f.queries, q)
	if f.queryErr != nil {
		return nil, f.queryErr
	}

	if f.pages != nil {
		i := len(f.queries) - 1
		if i >= len(f.pages) {
			return nil, errors.New("unexpected page request")
		}
		return f.pages[i], nil
	}

	window := calendar.Window{From: q.From, To: q.To}
	var matched []absence.Absence
	for _, a := range f.absences {
		if a.AssignedToID == q.AssignedToID && window.Contains(a.Start.Time) {
			matched = append(matched, a)
		}
	}
	if q.Skip >= len(matched) {
		return nil, nil
	}
	end := q.Skip + q.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[q.Skip:end], nil
}

func (f *fakeService) CreateAbsence(ctx context.Context, req absence.CreateAbsenceRequest) (*absence.Absence, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.createErrs[req.Start.Format("2006-01-02")]; err != nil {
		return nil, err
	}

	f.created = append(f.created, req)
	created := absence.Absence{
		ID:           fmt.Sprintf("abs-%d", len(f.created)),
		AssignedToID: req.AssignedToID,
		ApproverID:   req.ApproverID,
		Start:        req.Start,
		End:          req.End,
		ReasonID:     req.ReasonID,
	}
	f.absences = append(f.absences, created)
	return &created, nil
}

// fakeOperator answers questions from a script and records everything printed
type fakeOperator struct {
	answers   []console.Answer
	questions []string
	out       strings.Builder
}

func (o *fakeOperator) Confirm(ctx context.Context, question string) (console.Answer, error) {
	o.questions = append(o.questions, question)
	if len(o.answers) == 0 {
		return console.No, errors.New("no scripted answer left")
	}
	a := o.answers[0]
	o.answers = o.answers[1:]
	return a, nil
}

func (o *fakeOperator) Printf(format string, a ...interface{}) {
	fmt.Fprintf(&o.out, format, a...)
}

func (o *fakeOperator) Successf(format string, a ...interface{}) {
	fmt.Fprintf(&o.out, format, a...)
}

func (o *fakeOperator) Failuref(format string, a ...interface{}) {
	fmt.Fprintf(&o.out, format, a...)
}

func dayAbsence(userID string, start, end time.Time) absence.Absence {
	return absence.Absence{
		ID:           "existing-" + start.Format("0102"),
		AssignedToID: userID,
		Start:        absence.APITime{Time: start},
		End:          absence.APITime{Time: end},
		ReasonID:     "r-remote",
	}
}

func makeAbsences(n int) []absence.Absence {
	out := make([]absence.Absence, n)
	for i := range out {
		out[i] = absence.Absence{ID: fmt.Sprintf("a%d", i)}
	}
	return out
}
