package combat

import (
	"sync"
	"time"
)

// Pacing holds the cosmetic delays between encounter phases.
// A zero delay runs the next phase synchronously.
type Pacing struct {
	// StartDelay is the pause between showing the roster and the first player turn.
	StartDelay time.Duration
	// EndDelay is the pause between reaching a terminal state and ending the encounter.
	EndDelay time.Duration
}

// DelayTimer runs a callback after a delay unless stopped first.
// It is safe for concurrent use.
type DelayTimer struct {
	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

// After schedules onFire after d. With d <= 0, onFire runs before After
// returns and the returned timer is already spent.
//
// Precondition: onFire must not be nil.
// Postcondition: onFire runs exactly once unless Stop is called before the delay elapses.
func After(d time.Duration, onFire func()) *DelayTimer {
	dt := &DelayTimer{}
	if d <= 0 {
		dt.stopped = true
		onFire()
		return dt
	}
	dt.timer = time.AfterFunc(d, func() {
		dt.mu.Lock()
		stopped := dt.stopped
		dt.stopped = true
		dt.mu.Unlock()
		if !stopped {
			onFire()
		}
	})
	return dt
}

// Stop prevents the callback from firing. Safe to call multiple times and on a nil timer.
//
// Postcondition: onFire will not start after Stop returns.
func (dt *DelayTimer) Stop() {
	if dt == nil {
		return
	}
	dt.mu.Lock()
	defer dt.mu.Unlock()
	dt.stopped = true
	if dt.timer != nil {
		dt.timer.Stop()
	}
}
