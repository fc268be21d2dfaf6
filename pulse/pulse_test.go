package pulse

import "testing"

func TestBiphasicBalance(t *testing.T) {
	c := NewChannel(MaxPeriodUS)
	c.Submit(100, 1000)
	for c.Phase() != PhasePositive {
		c.Advance()
	}
	// Advance() reports the phase it is transitioning *into*.
	_, d1 := c.Advance() // -> deadtime1
	if c.Phase() != PhaseDeadtime1 || d1 != DeadtimeUS {
		t.Fatalf("expected deadtime1 of %d us, got phase=%v dur=%d", DeadtimeUS, c.Phase(), d1)
	}
	_, d2 := c.Advance() // -> negative
	if c.Phase() != PhaseNegative || d2 != 100 {
		t.Fatalf("expected negative width 100, got phase=%v dur=%d", c.Phase(), d2)
	}
	_, d3 := c.Advance() // -> deadtime2
	if c.Phase() != PhaseDeadtime2 || d3 != DeadtimeUS {
		t.Fatalf("expected deadtime2 of %d us, got phase=%v dur=%d", DeadtimeUS, c.Phase(), d3)
	}
}

func TestHandoffAtomicity(t *testing.T) {
	c := NewChannel(MaxPeriodUS)
	c.Submit(50, 2000)
	// Drive into the first GAP so the initial submission is active.
	for c.Phase() != PhaseGap {
		c.Advance()
	}
	w, p := c.ActivePulse()

	// Submit mid-cycle, repeatedly, while stepping through phases; the
	// active width/period must only ever be a value that was fully
	// submitted together, never a mix.
	submissions := [][2]uint16{{60, 3000}, {70, 4000}, {80, 1200}}
	si := 0
	for i := 0; i < 200; i++ {
		if i%3 == 0 && si < len(submissions) {
			s := submissions[si]
			si++
			c.Submit(s[0], s[1])
		}
		c.Advance()
		nw, np := c.ActivePulse()
		valid := (nw == w && np == p)
		for _, s := range submissions {
			if nw == s[0] && np == s[1] {
				valid = true
			}
		}
		if !valid {
			t.Fatalf("torn handoff observed: width=%d period=%d is not any submitted pair", nw, np)
		}
		w, p = nw, np
	}
}

func TestGateOffIsTight(t *testing.T) {
	c := NewChannel(MaxPeriodUS)
	c.Submit(50, 1000)
	for i := 0; i < 3; i++ {
		c.Advance()
	}
	c.SetGate(false)
	pins := c.Pins()
	if pins.Plus || pins.Minus {
		t.Fatalf("expected both pins low immediately after SetGate(false), got %+v", pins)
	}
	// Must stay low across at least one full GAP even as Advance keeps
	// being called.
	for i := 0; i < 10; i++ {
		pins, _ := c.Advance()
		if pins.Plus || pins.Minus {
			t.Fatalf("pins energized while gated off: %+v", pins)
		}
	}
}

func TestSubmitClampsWidthAndPeriod(t *testing.T) {
	c := NewChannel(MaxPeriodUS)
	if err := c.Submit(0, 0xFFFF); err != nil {
		t.Fatal(err)
	}
	for c.Phase() != PhaseGap {
		c.Advance()
	}
	w, p := c.ActivePulse()
	if w != MinWidthUS {
		t.Fatalf("width not clamped to floor: got %d", w)
	}
	if p != MaxPeriodUS {
		t.Fatalf("period not clamped to ceiling: got %d", p)
	}
}

func TestSubmitRejectsBelowHardFloor(t *testing.T) {
	c := NewChannel(MaxPeriodUS)
	if err := c.Submit(20, HardFloorPeriodUS-1); err != ErrSubmissionRejected {
		t.Fatalf("expected ErrSubmissionRejected, got %v", err)
	}
}

func TestShortCounterSplitsGap(t *testing.T) {
	// A short (8-bit-ish) compare register must split a large gap into
	// segments no wider than CompareWidth, counted down across re-fires
	// of GAP.
	c := NewChannel(255)
	c.Submit(20, 65535)
	for c.Phase() != PhaseGap {
		c.Advance()
	}
	segments := 0
	for c.Phase() == PhaseGap {
		_, dur := c.Advance()
		if dur > 255 {
			t.Fatalf("gap segment %d exceeds compare width: %d", segments, dur)
		}
		segments++
		if segments > 1000 {
			t.Fatal("gap never completed")
		}
	}
	if segments < 2 {
		t.Fatalf("expected the wide gap to be split into multiple segments, got %d", segments)
	}
}
