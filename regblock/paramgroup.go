package regblock

// ParamGroup is a 9-byte view onto one of a ChannelBlock's four
// parameter groups (ramp, intensity, frequency, width). Field order is
// contractual: value, min, max, rate, step, action_min, action_max,
// select, timer.
type ParamGroup [GroupSize]byte

func (g *ParamGroup) Value() byte { return g[GOffValue] }
func (g *ParamGroup) SetValue(v byte) { g[GOffValue] = v }
func (g *ParamGroup) Min() byte { return g[GOffMin] }
func (g *ParamGroup) SetMin(v byte) { g[GOffMin] = v }
func (g *ParamGroup) Max() byte { return g[GOffMax] }
func (g *ParamGroup) SetMax(v byte) { g[GOffMax] = v }

// Rate returns the group's raw rate field. A bytecode-written 0 is
// invalid per spec §3 ("rate > 0; if bytecode writes 0, treat as 1")
// and is normalized at read time.
func (g *ParamGroup) Rate() byte {
	if g[GOffRate] == 0 {
		return 1
	}
	return g[GOffRate]
}
func (g *ParamGroup) SetRate(v byte) { g[GOffRate] = v }

func (g *ParamGroup) Step() byte { return g[GOffStep] }
func (g *ParamGroup) SetStep(v byte) { g[GOffStep] = v }
func (g *ParamGroup) ActionMin() byte { return g[GOffActionMin] }
func (g *ParamGroup) SetActionMin(v byte) { g[GOffActionMin] = v }
func (g *ParamGroup) ActionMax() byte { return g[GOffActionMax] }
func (g *ParamGroup) SetActionMax(v byte) { g[GOffActionMax] = v }
func (g *ParamGroup) Select() byte { return g[GOffSelect] }
func (g *ParamGroup) SetSelect(v byte) { g[GOffSelect] = v }
func (g *ParamGroup) Timer() byte { return g[GOffTimer] }
func (g *ParamGroup) SetTimer(v byte) { g[GOffTimer] = v }
func (g *ParamGroup) IncTimer() { g[GOffTimer]++ }

// Select byte field extraction, per spec §4.3.
const (
	selTimerRateMask  = 0b0000_0011
	selMinSourceMask  = 0b0001_1100
	selRateSourceMask = 0b1110_0000

	// TimerRateMask is exported for other select-style bytes (the
	// next-module timer's select byte) that share this convention.
	TimerRateMask = selTimerRateMask
)

// DecodeSource extracts a 3-bit Source (plus invert flag) from sel at
// the given bit offset, for select bytes that follow the same
// convention as a ParamGroup's min/rate source fields.
func DecodeSource(sel byte, shift uint) Source {
	return Source((sel >> shift) & 0b111)
}

// TimerRateBits returns the select byte's bits 0-1 (timer rate class).
func (g *ParamGroup) TimerRateBits() byte {
	return g.Select() & selTimerRateMask
}

// MinSource returns the select byte's bits 2-4 as a Source.
func (g *ParamGroup) MinSource() Source {
	return Source((g.Select() & selMinSourceMask) >> 2)
}

// RateSource returns the select byte's bits 5-7 as a Source.
func (g *ParamGroup) RateSource() Source {
	return Source((g.Select() & selRateSourceMask) >> 5)
}

// ClearTimerRate clears the timer-rate bits (the STOP boundary action),
// freezing the group: it becomes static and is no longer source-refreshed.
// The min-source bits are cleared too, since a static group with a
// non-own min source would otherwise keep overwriting its value.
func (g *ParamGroup) ClearTimerRate() {
	g[GOffSelect] &^= selTimerRateMask | selMinSourceMask
}

// Source is the 3-bit {own,advanced,knob,other} selector with its
// invert flag, as spec §3/§4.3 describes for both Min/RateSource.
type Source byte

const (
	SourceOwn Source = iota
	SourceAdvanced
	SourceKnob
	SourceOther
)

const SourceInvert = 0b100

// Base returns the 2-bit source selector without the invert flag.
func (s Source) Base() Source { return s & 0b011 }

// Inverted reports whether the invert bit is set.
func (s Source) Inverted() bool { return s&SourceInvert != 0 }
