// Package domain holds the entities the query DSL and SQL compiler operate
// over: users, API keys, sessions, labels and testcases.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// TestcaseStatus is encoded so that MIN(status) over a group yields the
// worst status present: ERROR < FAIL < PASS < SKIP.
type TestcaseStatus int

const (
	StatusError TestcaseStatus = 0
	StatusFail  TestcaseStatus = 1
	StatusPass  TestcaseStatus = 2
	StatusSkip  TestcaseStatus = 3
)

// String returns the DSL/wire string for the status ("pass", "fail", ...).
func (s TestcaseStatus) String() string {
	switch s {
	case StatusError:
		return "error"
	case StatusFail:
		return "fail"
	case StatusPass:
		return "pass"
	case StatusSkip:
		return "skip"
	default:
		return "unknown"
	}
}

// ParseTestcaseStatus maps a wire/DSL status string to its enum value.
func ParseTestcaseStatus(s string) (TestcaseStatus, bool) {
	switch s {
	case "error":
		return StatusError, true
	case "fail":
		return StatusFail, true
	case "pass":
		return StatusPass, true
	case "skip":
		return StatusSkip, true
	default:
		return 0, false
	}
}

// User is created out of band by admin tooling; the username is immutable.
type User struct {
	ID           uuid.UUID
	Username     string
	PasswordSalt []byte
	PasswordHash []byte
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// APIKey's plaintext secret is returned exactly once at creation time; only
// the salted hash is persisted.
type APIKey struct {
	ID          uuid.UUID
	Description *string
	SecretSalt  []byte
	SecretHash  []byte
	UserID      uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Session owns zero or more Labels and Testcases. Its ID may be client
// supplied; collisions within the global keyspace are rejected.
type Session struct {
	ID          uuid.UUID
	Description *string
	Baggage     []byte // raw JSON, nil if absent
	UserID      uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Label is a key/value tag on a Session. Value == nil means "tag present,
// valueless". (SessionID, Key) is not unique.
type Label struct {
	ID        int64
	Key       string
	Value     *string
	SessionID uuid.UUID
	UserID    uuid.UUID
	CreatedAt time.Time
}

// Testcase is a single test result emitted within a Session.
type Testcase struct {
	ID         uuid.UUID
	Status     TestcaseStatus
	Name       string
	Classname  *string
	File       *string
	Testsuite  *string
	Output     *string
	Baggage    []byte
	SessionID  uuid.UUID
	UserID     uuid.UUID
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
