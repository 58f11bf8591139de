package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrStoreUnavailable = errors.New("calendar store unavailable")
	// ErrUnauthenticated means the identity can no longer act on the store,
	// for example after the user revoked access.
	ErrUnauthenticated = errors.New("calendar authentication required")
)

type Operation string

const (
	OpList   Operation = "list"
	OpCreate Operation = "create"
)

// StoreError reports a failed calendar store call together with the operation
// that failed. It matches ErrStoreUnavailable with errors.Is.
type StoreError struct {
	Op  Operation
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("calendar store %s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func (e *StoreError) Is(target error) bool {
	return target == ErrStoreUnavailable
}

// Identity is the opaque credential pair used to act as a user against the
// calendar store. Subject names the owner so refreshed tokens can be saved.
type Identity struct {
	Subject      string
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
}

// ExistingEvent is an event already present in the user's calendar. Start and
// End are always normalized instants.
type ExistingEvent struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Location string    `json:"location,omitempty"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	AllDay   bool      `json:"allDay"`
	HTMLLink string    `json:"htmlLink,omitempty"`
}

type EventTime struct {
	DateTime string
	TimeZone string
}

// EventPayload is what gets sent to the store on creation.
type EventPayload struct {
	Summary     string
	Description string
	Location    string
	Start       EventTime
	End         EventTime
}

// ListQuery selects events overlapping [TimeMin, TimeMax). MaxResults caps a
// single page; with AllPages every page of a bounded window is fetched.
type ListQuery struct {
	TimeMin    time.Time
	TimeMax    time.Time // zero means unbounded
	MaxResults int64
	AllPages   bool
}

// Store is the calendar of a single user. Listing is ordered by start time and
// recurring events are expanded into single instances.
type Store interface {
	ListEvents(ctx context.Context, query ListQuery) ([]ExistingEvent, error)
	CreateEvent(ctx context.Context, payload EventPayload) (ExistingEvent, error)
}

type StoreProvider interface {
	StoreFor(ctx context.Context, identity Identity) (Store, error)
}
