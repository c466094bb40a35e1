package absence

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/username/remote-work-bot/pkg/dateutil"
)

// ErrNotFound is returned by lookups that matched no record
var ErrNotFound = errors.New("not found")

// APITime handles the timestamp formats absence.io returns.
// Stored absences come back in UTC ("2024-02-04T23:00:00.000Z"), but older records
// and other clients may carry an offset without a colon.
type APITime struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler for APITime
func (t *APITime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}

	if s == "" {
		t.Time = time.Time{}
		return nil
	}

	formats := []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05.000Z07:00",
		"2006-01-02T15:04:05.000-0700",
		"2006-01-02T15:04:05-0700",
	}

	var parseErr error
	for _, format := range formats {
		parsed, err := time.Parse(format, s)
		if err == nil {
			t.Time = parsed
			return nil
		}
		parseErr = err
	}

	return parseErr
}

// MarshalJSON keeps the offset of the value's own location
func (t APITime) MarshalJSON() ([]byte, error) {
	return json.Marshal(dateutil.FormatISO8601(t.Time))
}

// User represents an absence.io user
type User struct {
	ID        string `json:"_id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// DisplayName returns "First Last" or the email when no name is set
func (u *User) DisplayName() string {
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	if name == "" {
		return u.Email
	}
	return name
}

// Reason represents an absence reason such as "Remote Work"
type Reason struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// Absence represents an absence entry
type Absence struct {
	ID           string  `json:"_id"`
	AssignedToID string  `json:"assignedToId"`
	ApproverID   string  `json:"approverId,omitempty"`
	Start        APITime `json:"start"`
	End          APITime `json:"end"`
	ReasonID     string  `json:"reasonId"`
}

// Covers reports whether t lies in [Start, End], both ends inclusive
func (a Absence) Covers(t time.Time) bool {
	return !t.Before(a.Start.Time) && !t.After(a.End.Time)
}

// AbsenceQuery selects one page of absences assigned to a user whose start lies in [From, To)
type AbsenceQuery struct {
	AssignedToID string
	From         time.Time
	To           time.Time
	Limit        int
	Skip         int
}

// CreateAbsenceRequest represents request to create an absence
type CreateAbsenceRequest struct {
	AssignedToID string  `json:"assignedToId"`
	ApproverID   string  `json:"approverId"`
	Start        APITime `json:"start"`
	End          APITime `json:"end"`
	ReasonID     string  `json:"reasonId"`
}

// listRequest is the body of every absence.io retrieve call
type listRequest struct {
	Skip   int                    `json:"skip"`
	Limit  int                    `json:"limit"`
	Filter map[string]interface{} `json:"filter,omitempty"`
}

// listResponse is the envelope of every absence.io retrieve call
type listResponse[T any] struct {
	Skip       int `json:"skip"`
	Limit      int `json:"limit"`
	Count      int `json:"count"`
	TotalCount int `json:"totalCount"`
	Data       []T `json:"data"`
}
