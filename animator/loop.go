package animator

import "sync/atomic"

// Loop runs a frame step once per host tick until stopped. Stop may be called
// from any goroutine; the step itself always runs on the ticking goroutine.
type Loop struct {
	step    func()
	running atomic.Bool
	ticks   atomic.Uint64
}

func NewLoop(step func()) *Loop {
	l := &Loop{step: step}
	l.running.Store(true)
	return l
}

// Tick runs one step if the loop is still running and reports whether it did.
func (l *Loop) Tick() bool {
	if !l.running.Load() {
		return false
	}
	if l.step != nil {
		l.step()
	}
	l.ticks.Add(1)
	return true
}

func (l *Loop) Stop() {
	l.running.Store(false)
}

func (l *Loop) Running() bool {
	return l.running.Load()
}

func (l *Loop) Ticks() uint64 {
	return l.ticks.Load()
}

// RunFrames ticks up to n times, returning early if the loop is stopped.
func (l *Loop) RunFrames(n int) int {
	ran := 0
	for ran < n && l.Tick() {
		ran++
	}
	return ran
}
