// Package hostbridge pauses the embedding application's reading timer and
// speech engine around a capture, so recording time is not double-counted.
// The bridge is consumed, never owned: the core only remembers whether each
// side was actually running before pausing it.
package hostbridge

import "sync"

// Host exposes the embedding application's timer and speech controls.
type Host interface {
	TimerRunning() bool
	PauseTimer()
	ResumeTimer()
	SpeechActive() bool
	PauseSpeech()
	ResumeSpeech()
}

// Coordinator suspends the host for the duration of a capture and resumes
// only what was running beforehand. Suspend/Resume pairs are idempotent:
// a second Suspend before Resume is a no-op, and vice versa.
type Coordinator struct {
	mu   sync.Mutex
	host Host

	suspended       bool
	timerWasRunning bool
	speechWasActive bool
}

// NewCoordinator wraps a host bridge.
func NewCoordinator(host Host) *Coordinator {
	return &Coordinator{host: host}
}

// Suspend records which host activities are running and pauses them.
func (c *Coordinator) Suspend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.suspended {
		return
	}

	c.timerWasRunning = c.host.TimerRunning()
	if c.timerWasRunning {
		c.host.PauseTimer()
	}
	c.speechWasActive = c.host.SpeechActive()
	if c.speechWasActive {
		c.host.PauseSpeech()
	}
	c.suspended = true
}

// Resume restarts only the activities Suspend actually paused.
func (c *Coordinator) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.suspended {
		return
	}

	if c.timerWasRunning {
		c.host.ResumeTimer()
	}
	if c.speechWasActive {
		c.host.ResumeSpeech()
	}
	c.suspended = false
}
