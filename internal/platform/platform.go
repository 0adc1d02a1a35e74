package platform

import (
	"time"

	"github.com/google/uuid"
)

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewUUID() uuid.UUID
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

type UUIDGenerator struct{}

func (UUIDGenerator) NewUUID() uuid.UUID {
	return uuid.New()
}

// FixedClock always reports the same instant. It is meant for tests and
// for replaying a sweep as of a past date.
type FixedClock struct {
	At time.Time
}

func (c FixedClock) Now() time.Time {
	return c.At
}
