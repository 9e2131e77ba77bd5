package lifecycle

import (
	"sync/atomic"
	"time"
)

// State tracks process start time and whether the server is draining.
// Health handler returns 503 with status shutting-down while draining.
type State struct {
	started      time.Time
	shuttingDown atomic.Bool
}

func New() *State {
	return &State{started: time.Now()}
}

// BeginShutdown marks the process as draining. Call when SIGTERM/SIGINT is received,
// before http.Server.Shutdown.
func (s *State) BeginShutdown() {
	s.shuttingDown.Store(true)
}

// IsShuttingDown returns true once BeginShutdown has been called.
func (s *State) IsShuttingDown() bool {
	return s.shuttingDown.Load()
}

func (s *State) Uptime() time.Duration {
	return time.Since(s.started)
}
