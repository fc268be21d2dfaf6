package paramengine

import "stimbox.dev/regblock"

// Gate-select byte layout (spec §4.3: "timer-rate bits and two
// source-flag bits... a parallel pair for the other half"). Bits 0-1
// are the shared timer-rate class; the remaining four bits choose,
// independently for on-time and off-time, whether to substitute the
// advanced "effect" setting or the scaled knob for the block's own
// configured duration.
const (
	gateSelTimerMask = 0b0000_0011
	gateSelOnEffect  = 0b0000_0100
	gateSelOnKnob    = 0b0000_1000
	gateSelOffEffect = 0b0001_0000
	gateSelOffKnob   = 0b0010_0000
)

// GateTimerState is the gate timer's live countdown, held outside the
// block like the direction bits (the block only stores the *configured*
// on/off durations, not the in-flight countdown).
type GateTimerState struct {
	Countdown uint16
}

func resolveGateOnTime(b *regblock.ChannelBlock, adv Advanced, knob byte) byte {
	sel := b.GateSelect()
	switch {
	case sel&gateSelOnKnob != 0:
		return KnobRange(knob, b.KnobRangeLow(), b.KnobRangeHigh())
	case sel&gateSelOnEffect != 0:
		return adv.Effect
	default:
		return b.GateOnTime()
	}
}

func resolveGateOffTime(b *regblock.ChannelBlock, adv Advanced, knob byte) byte {
	sel := b.GateSelect()
	switch {
	case sel&gateSelOffKnob != 0:
		return KnobRange(knob, b.KnobRangeLow(), b.KnobRangeHigh())
	case sel&gateSelOffEffect != 0:
		return adv.Effect
	default:
		return b.GateOffTime()
	}
}

// InitGateTimer arms the countdown for the gate's current state
// (on/off), to be called on mode entry.
func InitGateTimer(b *regblock.ChannelBlock, adv Advanced, knob byte, st *GateTimerState) {
	if b.GateValue()&regblock.GateOn != 0 {
		st.Countdown = uint16(resolveGateOnTime(b, adv, knob))
	} else {
		st.Countdown = uint16(resolveGateOffTime(b, adv, knob))
	}
}

// StepGateTimer advances the gate duty-cycle timer by one tick. On
// each on<->off transition it flips the gate-on bit, and on an
// off-to-on transition it increments gate_transitions (spec §4.3).
func StepGateTimer(b *regblock.ChannelBlock, tickCounter uint8, adv Advanced, knob byte, st *GateTimerState) {
	rateBits := b.GateSelect() & gateSelTimerMask
	if !TimerRateFires(rateBits, tickCounter) {
		return
	}
	if st.Countdown > 0 {
		st.Countdown--
		return
	}
	if b.GateValue()&regblock.GateOn != 0 {
		b.SetGateValue(b.GateValue() &^ regblock.GateOn)
		st.Countdown = uint16(resolveGateOffTime(b, adv, knob))
	} else {
		b.SetGateValue(b.GateValue() | regblock.GateOn)
		b.IncGateTransitions()
		st.Countdown = uint16(resolveGateOnTime(b, adv, knob))
	}
}
