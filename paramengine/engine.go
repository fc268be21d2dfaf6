package paramengine

import "stimbox.dev/regblock"

// ChannelState is the per-channel shadow state the parameter engine
// keeps outside the 64-byte block: sweep directions and the gate
// timer's live countdown.
type ChannelState struct {
	Dir  ChannelDirections
	Gate GateTimerState
}

// Reset reinitializes direction and gate-timer state from the block's
// current field values, as done on every mode entry and after every
// boundary-triggered module execution (spec §4.3).
func (cs *ChannelState) Reset(b *regblock.ChannelBlock, adv Advanced, knob byte) {
	cs.Dir = InitDirections(b)
	InitGateTimer(b, adv, knob, &cs.Gate)
}

// Engine runs the per-tick parameter modulation sweep across both
// channels (spec §4.3, §5 ordering guarantees).
type Engine struct {
	TickCounter uint8
}

// TickOutcome collects everything this tick's sweep raised, so the
// mode dispatcher can drain it after both channels have stepped (spec
// §4.5's per-tick protocol, step 4).
type TickOutcome struct {
	ModuleA, ModuleB StepResult
}

// Tick steps channel A fully, then channel B, groups in fixed order
// ramp -> intensity -> frequency -> width, then each channel's gate
// timer and next-module timer. Only the first boundary-triggered
// module raised per channel this tick is kept (single-slot mailbox,
// spec §9's cyclic-access note).
func (e *Engine) Tick(a, b *regblock.ChannelBlock, adv Advanced, knob byte, sa, sb *ChannelState) TickOutcome {
	var out TickOutcome
	out.ModuleA = e.stepChannel(a, b, adv, knob, sa)
	out.ModuleB = e.stepChannel(b, a, adv, knob, sb)
	e.TickCounter++
	return out
}

func (e *Engine) stepChannel(own, other *regblock.ChannelBlock, adv Advanced, knob byte, st *ChannelState) StepResult {
	var raised StepResult
	keep := func(r StepResult) {
		if r.Raised && !raised.Raised {
			raised = r
		}
	}
	for _, g := range allGroups {
		ctx := ResolveCtx{Block: own, Other: other, Advanced: adv, Knob: knob, Group: g}
		keep(StepGroup(ctx, e.TickCounter, &st.Dir[g]))
	}
	StepGateTimer(own, e.TickCounter, adv, knob, &st.Gate)
	// The next-module timer's Group field is unused by
	// resolveNextModuleMax's Own/Knob/Other paths; Ramp is an arbitrary
	// but harmless placeholder for the Advanced-source case.
	ctx := ResolveCtx{Block: own, Other: other, Advanced: adv, Knob: knob, Group: regblock.Ramp}
	keep(StepNextModuleTimer(ctx, e.TickCounter))
	return raised
}
