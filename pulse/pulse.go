// package pulse implements the two interrupt-driven biphasic pulse
// state machines that drive each channel's H-bridge (spec §4.1).
//
// Channel models the hardware compare-match ISR as a sequence of calls
// to Advance, one per phase boundary. A real embedding calls Advance
// directly from the timer ISR and reprograms the compare register with
// the returned duration; this software rendition lets tests drive the
// same state machine from a goroutine or a loop.
package pulse

import (
	"errors"
	"sync"
	"sync/atomic"
)

// Phase is one step of the five-phase biphasic cycle.
type Phase int

const (
	PhasePositive Phase = iota
	PhaseDeadtime1
	PhaseNegative
	PhaseDeadtime2
	PhaseGap
)

func (p Phase) String() string {
	switch p {
	case PhasePositive:
		return "positive"
	case PhaseDeadtime1:
		return "deadtime1"
	case PhaseNegative:
		return "negative"
	case PhaseDeadtime2:
		return "deadtime2"
	case PhaseGap:
		return "gap"
	default:
		return "invalid"
	}
}

// Pins is the instantaneous state of a channel's two H-bridge legs.
type Pins struct {
	Plus, Minus bool
}

// Limits, per spec §4.1.
const (
	MinWidthUS  = 20
	MaxWidthUS  = 255
	MinPeriodUS = 500
	MaxPeriodUS = 65535
	DeadtimeUS  = 4

	// HardFloorPeriodUS is the absolute physical minimum period (two
	// dead-times, zero pulse width). Submissions below it are rejected
	// rather than clamped; everything else is clamped into range.
	HardFloorPeriodUS = 2 * DeadtimeUS
)

var ErrSubmissionRejected = errors.New("pulse: period below hard floor")

// Channel is one channel's pulse generator state machine.
//
// The active/pending split follows spec §9: the ISR (Advance) is the
// exclusive writer of phase/width/period; the foreground (Submit,
// SetGate) is the exclusive writer of the pending slot. A mutex guards
// the pending pair so the ISR never observes a torn width/period, and a
// second, narrowly-scoped mutex guards the visible pin state so gate-off
// is atomic with respect to Advance.
type Channel struct {
	// CompareWidth is the maximum duration the hardware compare
	// register can hold in one load. The "short-counter" channel uses
	// an 8-bit register (255) and must split a long GAP phase into
	// segments; the other channel can hold a full 16-bit gap (65535).
	CompareWidth uint16

	phaseMu sync.Mutex // guards phase, width, period, gapRemaining, pins
	phase   Phase
	width   uint16
	period  uint16
	gapRemaining uint16
	pins    Pins

	pendingMu sync.Mutex
	pendingWidth, pendingPeriod uint16

	dirty  atomic.Bool
	gateOn atomic.Bool
}

// NewChannel returns a channel parked at the end of DEADTIME2 with the
// gate on and pulse parameters at their floor values, so the first
// Advance starts a GAP and takes up any submission made before it.
func NewChannel(compareWidth uint16) *Channel {
	c := &Channel{CompareWidth: compareWidth}
	c.gateOn.Store(true)
	c.phase = PhaseDeadtime2
	c.width = MinWidthUS
	c.period = MinPeriodUS
	return c
}

func clamp(v, lo, hi uint16) uint16 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Submit writes new (width, period) into the pending slot, to be
// consumed atomically at the start of the next GAP phase. All values
// are clamped into range except a period below HardFloorPeriodUS,
// which is rejected outright (spec §4.1).
func (c *Channel) Submit(widthUS, periodUS uint16) error {
	if periodUS < HardFloorPeriodUS {
		return ErrSubmissionRejected
	}
	width := clamp(widthUS, MinWidthUS, MaxWidthUS)
	period := clamp(periodUS, MinPeriodUS, MaxPeriodUS)

	c.pendingMu.Lock()
	c.pendingWidth, c.pendingPeriod = width, period
	c.pendingMu.Unlock()
	c.dirty.Store(true)
	return nil
}

// SetGate turns the channel's output on or off. Turning it off also
// immediately drives both bridge pins low under the same critical
// section Advance uses, so the bridge is never left energized between
// ISR ticks (spec §4.1, §8 invariant 3).
func (c *Channel) SetGate(on bool) {
	c.gateOn.Store(on)
	if !on {
		c.phaseMu.Lock()
		c.pins = Pins{}
		c.phaseMu.Unlock()
	}
}

// GateOn reports the current gate state.
func (c *Channel) GateOn() bool { return c.gateOn.Load() }

// Pins returns the channel's current H-bridge pin state.
func (c *Channel) Pins() Pins {
	c.phaseMu.Lock()
	defer c.phaseMu.Unlock()
	return c.pins
}

// ActivePulse returns the width/period the ISR is currently driving.
func (c *Channel) ActivePulse() (width, period uint16) {
	c.phaseMu.Lock()
	defer c.phaseMu.Unlock()
	return c.width, c.period
}

func (c *Channel) gapDuration() uint16 {
	gap := int(c.period) - 2*int(c.width) - 2*DeadtimeUS
	if gap < DeadtimeUS {
		// Guarded invariant: never a negative or implausibly short
		// gap; use the dead-time as a floor instead of failing.
		gap = DeadtimeUS
	}
	return uint16(gap)
}

func (c *Channel) consumePending() {
	if !c.dirty.Load() {
		return
	}
	c.pendingMu.Lock()
	w, p := c.pendingWidth, c.pendingPeriod
	c.pendingMu.Unlock()
	c.dirty.Store(false)
	c.width, c.period = w, p
}

func (c *Channel) segmentDuration() uint16 {
	if c.gapRemaining > c.CompareWidth {
		return c.CompareWidth
	}
	return c.gapRemaining
}

func (c *Channel) pinsFor(p Phase) Pins {
	switch p {
	case PhasePositive:
		return Pins{Plus: true, Minus: false}
	case PhaseNegative:
		return Pins{Plus: false, Minus: true}
	default:
		return Pins{}
	}
}

// Advance runs one phase-boundary step of the state machine: the
// current phase has elapsed, so compute pins and duration for the
// phase that follows, exactly as the compare-match ISR would on a real
// device. It returns the new pin state and the duration (in
// microseconds) to reprogram the compare register with.
func (c *Channel) Advance() (Pins, uint16) {
	c.phaseMu.Lock()
	defer c.phaseMu.Unlock()

	switch c.phase {
	case PhasePositive:
		c.phase = PhaseDeadtime1
	case PhaseDeadtime1:
		c.phase = PhaseNegative
	case PhaseNegative:
		c.phase = PhaseDeadtime2
	case PhaseDeadtime2:
		c.phase = PhaseGap
		c.enterGap()
	case PhaseGap:
		if c.gapRemaining > 0 {
			// Multi-segment GAP: stay in phase, re-fire with the next
			// segment.
		} else if c.gateOn.Load() {
			c.phase = PhasePositive
		} else {
			// Re-armed for another period; the handoff contract still
			// applies, since this is a fresh start of GAP.
			c.enterGap()
		}
	}

	var dur uint16
	switch c.phase {
	case PhaseDeadtime1, PhaseDeadtime2:
		dur = DeadtimeUS
	case PhaseGap:
		dur = c.segmentDuration()
		c.gapRemaining -= dur
	case PhasePositive, PhaseNegative:
		dur = c.width
	}
	if c.gateOn.Load() {
		c.pins = c.pinsFor(c.phase)
	} else {
		// Gated off: both legs stay low through any phase.
		c.pins = Pins{}
	}
	return c.pins, dur
}

// enterGap performs the handoff: pending parameters are consumed only
// here, at the start of a GAP phase, never mid-pulse (spec §4.1).
func (c *Channel) enterGap() {
	c.consumePending()
	c.gapRemaining = c.gapDuration()
}

// Phase reports the channel's current phase (for tests/diagnostics).
func (c *Channel) Phase() Phase {
	c.phaseMu.Lock()
	defer c.phaseMu.Unlock()
	return c.phase
}
