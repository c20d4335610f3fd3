package domain

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// eventClock stamps interaction events. Tests freeze it with SetClock.
var eventClock clockwork.Clock = clockwork.NewRealClock()

// SetClock replaces the time source used for event timestamps. A nil clock
// restores wall time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		c = clockwork.NewRealClock()
	}
	eventClock = c
}

func now() time.Time {
	return eventClock.Now().UTC()
}
