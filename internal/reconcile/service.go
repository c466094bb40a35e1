package reconcile

import (
	"context"
	"errors"

	"github.com/username/remote-work-bot/internal/absence"
	"github.com/username/remote-work-bot/internal/console"
)

var (
	// ErrUserNotFound means the configured email matches no absence.io user
	ErrUserNotFound = errors.New("user not found")
	// ErrReasonNotFound means the configured absence reason does not exist
	ErrReasonNotFound = errors.New("absence reason not found")
)

// Directory resolves users and reasons
type Directory interface {
	FindUserByEmail(ctx context.Context, email string) (*absence.User, error)
	FindReasonByName(ctx context.Context, name string) (*absence.Reason, error)
}

// AbsenceQuerier retrieves one page of absences
type AbsenceQuerier interface {
	QueryAbsences(ctx context.Context, q absence.AbsenceQuery) ([]absence.Absence, error)
}

// AbsenceCreator creates a single absence
type AbsenceCreator interface {
	CreateAbsence(ctx context.Context, req absence.CreateAbsenceRequest) (*absence.Absence, error)
}

// Service is everything the reconciler needs from absence.io.
// *absence.Client implements it.
type Service interface {
	Directory
	AbsenceQuerier
	AbsenceCreator
}

// Operator is the person driving the run. *console.Console implements it.
type Operator interface {
	Confirm(ctx context.Context, question string) (console.Answer, error)
	Printf(format string, a ...interface{})
	Successf(format string, a ...interface{})
	Failuref(format string, a ...interface{})
}

var (
	_ Service  = (*absence.Client)(nil)
	_ Operator = (*console.Console)(nil)
)
