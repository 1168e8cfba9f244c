package lifecycle

import "sync/atomic"

// Phase is the process lifecycle phase reported by /health.
type Phase int32

const (
	// Starting covers wiring and the one-shot geolocation probe.
	Starting Phase = iota
	// Ready means the server is accepting traffic.
	Ready
	// ShuttingDown is set on SIGTERM/SIGINT; /health answers 503 from then on.
	ShuttingDown
)

func (p Phase) String() string {
	switch p {
	case Starting:
		return "starting"
	case Ready:
		return "ready"
	case ShuttingDown:
		return "shutting-down"
	}
	return "unknown"
}

var phase atomic.Int32

// SetPhase records the current phase. ShuttingDown is terminal unless Reset is called.
func SetPhase(p Phase) {
	for {
		cur := phase.Load()
		if Phase(cur) == ShuttingDown && p != ShuttingDown {
			return
		}
		if phase.CompareAndSwap(cur, int32(p)) {
			return
		}
	}
}

// Current returns the current phase.
func Current() Phase {
	return Phase(phase.Load())
}

// IsShuttingDown returns true if the process is draining and should not receive new traffic.
func IsShuttingDown() bool {
	return Current() == ShuttingDown
}

// Reset returns to Starting. Tests only.
func Reset() {
	phase.Store(int32(Starting))
}
