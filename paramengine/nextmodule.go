package paramengine

import "stimbox.dev/regblock"

// next-module select byte: bits 0-1 are the timer-rate class; bits 2-4
// are a Source selector (own/advanced/knob/other, with invert) that
// scales next_module_timer_max, mirroring a ParamGroup's min source.
const nextModuleSourceShift = 2

func resolveNextModuleMax(ctx ResolveCtx) byte {
	b := ctx.Block
	s := regblock.DecodeSource(b.NextModuleSelect(), nextModuleSourceShift)
	_, advRate := advancedFields(ctx.Group, ctx.Advanced)
	var base byte
	switch s.Base() {
	case regblock.SourceOwn:
		base = b.NextModuleMax()
	case regblock.SourceAdvanced:
		base = advRate
	case regblock.SourceKnob:
		base = KnobRange(ctx.Knob, b.KnobRangeLow(), b.KnobRangeHigh())
	case regblock.SourceOther:
		if ctx.Other != nil {
			base = ctx.Other.NextModuleMax()
		}
	}
	if s.Inverted() {
		base = 255 - base
	}
	return base
}

// StepNextModuleTimer advances the next-module countdown by one tick.
// When it elapses it reports the configured next_module_number as a
// pending module (spec §4.3); the caller is responsible for the
// "first one wins" single-slot mailbox semantics across a tick.
func StepNextModuleTimer(ctx ResolveCtx, tickCounter uint8) StepResult {
	b := ctx.Block
	rateBits := b.NextModuleSelect() & regblock.TimerRateMask
	if !TimerRateFires(rateBits, tickCounter) {
		return StepResult{}
	}
	max := resolveNextModuleMax(ctx)
	cur := b.NextModuleTimer()
	if cur < max {
		b.SetNextModuleTimer(cur + 1)
		return StepResult{}
	}
	b.SetNextModuleTimer(0)
	return StepResult{Raised: true, Module: b.NextModuleNumber()}
}
