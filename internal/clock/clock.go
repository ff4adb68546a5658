// Package clock abstracts wall-clock time so bill numbering and
// dashboard day windows are testable.
package clock

import (
	"time"

	"go.uber.org/fx"
)

// Clock returns the current time in UTC.
type Clock interface {
	Now() time.Time
}

// Module provides the system clock.
var Module = fx.Module("clock",
	fx.Provide(NewSystemClock),
)

type SystemClock struct{}

func NewSystemClock() Clock {
	return SystemClock{}
}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
