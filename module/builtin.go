package module

import "stimbox.dev/regblock"

// Builtin holds the compile-time bytecode for every built-in mode's
// fixed module list and chain target (spec §4.5's module table). User1-7
// interpret a program from the persistent store instead and have no
// entry here.
var Builtin = map[byte]Program{
	1: moduleSplitBaseline(),

	2:  moduleIntenseSecond(),
	3:  moduleStrokeA(),
	4:  moduleStrokeB(),
	5:  moduleClimbStep1(),
	6:  moduleClimbStep2(),
	7:  moduleClimbStep4(),
	8:  moduleClimbWidth(),
	11: moduleWavesFrequency(),
	12: moduleWavesWidth(),
	13: moduleComboA(),
	14: moduleIntenseFirst(),
	15: moduleRhythm(),
	18: moduleToggle(),
	20: modulePhase1(),
	21: modulePhase2(),
	22: modulePhase3(),
	24: moduleOrgasm(),
	28: moduleTorment(),
	32: moduleRandom2(),
	23: moduleAudio1Or2(),
	33: moduleComboB(),
	34: moduleAudio3(),
	35: modulePhase2Fixup(),
}

// moduleSplitBaseline is module 1, run before each half of split-init
// (spec §4.5): a neutral static ramp so a submode's own module(s) are
// configuring a block in a known, quiescent state.
func moduleSplitBaseline() Program {
	return build(group(regblock.Ramp, 128, 0, 255, 1, 1, regblock.ActionReverse, regblock.ActionReverse, 0x00))
}

// Waves (mode entry: 11, 12). Frequency and width each sweep
// continuously, rate sourced from the knob (spec §8 scenario S1).
func moduleWavesFrequency() Program {
	return build(
		knobRange(1, 8),
		group(regblock.Frequency, 200, 139, 255, 1, 1, regblock.ActionReverse, regblock.ActionReverse, 0x41),
	)
}

func moduleWavesWidth() Program {
	return build(
		group(regblock.Width, 90, 0, 179, 1, 3, regblock.ActionReverse, regblock.ActionReverse, 0x41),
	)
}

// Stroke (mode entry: 3, 4). Intensity's min tracks the advanced "depth"
// knob, inverted, stepping by 2 (spec §8 scenario S2).
func moduleStrokeA() Program {
	return build(
		group(regblock.Intensity, 200, 5, 255, 1, 2, regblock.ActionReverse, regblock.ActionReverse, 0b0001_0101),
	)
}

func moduleStrokeB() Program {
	return build(
		group(regblock.Width, 128, 40, 220, 1, 2, regblock.ActionReverse, regblock.ActionReverse, 0x01),
	)
}

// Climb (mode entry: 5, 8). Module 5 configures intensity with step 1 and
// chains to module 6 on reaching min; 6 (step 2) chains to 7; 7 (step 4)
// chains back to 5 — a three-stage climbing ramp (spec §8 scenario S3).
// Module 8 independently shapes width for the whole mode.
func moduleClimbStep1() Program {
	return build(
		group(regblock.Intensity, 255, 8, 255, 1, 1, 6, regblock.ActionReverse, 0x01),
	)
}

func moduleClimbStep2() Program {
	return build(
		group(regblock.Intensity, 255, 8, 255, 1, 2, 7, regblock.ActionReverse, 0x01),
	)
}

func moduleClimbStep4() Program {
	return build(
		group(regblock.Intensity, 255, 8, 255, 1, 4, 5, regblock.ActionReverse, 0x01),
	)
}

func moduleClimbWidth() Program {
	return build(
		group(regblock.Width, 128, 60, 200, 1, 1, regblock.ActionReverse, regblock.ActionReverse, 0x01),
	)
}

// Combo (mode entry: 13, 33). Ramp and frequency both cycle, ramp slow
// (1Hz class), frequency fast, for a layered feel.
func moduleComboA() Program {
	return build(
		group(regblock.Ramp, 0, 0, 255, 1, 4, regblock.ActionReverseToggle, regblock.ActionReverseToggle, 0b11),
	)
}

func moduleComboB() Program {
	return build(
		group(regblock.Frequency, 150, 60, 240, 1, 2, regblock.ActionReverse, regblock.ActionReverse, 0b01),
	)
}

// Intense (mode entry: 14, 2). High static intensity, gentle width sweep.
func moduleIntenseFirst() Program {
	return build(
		group(regblock.Intensity, 230, 200, 255, 1, 1, regblock.ActionStop, regblock.ActionStop, 0x00),
	)
}

func moduleIntenseSecond() Program {
	return build(
		group(regblock.Width, 180, 120, 220, 1, 1, regblock.ActionReverse, regblock.ActionReverse, 0x01),
	)
}

// Rhythm (mode entry: 15). A single module drives a gated pulse train
// with a short duty cycle and a cycling frequency.
func moduleRhythm() Program {
	return build(
		gate(8, 8),
		group(regblock.Frequency, 80, 40, 160, 1, 2, regblock.ActionReverse, regblock.ActionReverse, 0x01),
	)
}

// Toggle (mode entry: 18). The next-module timer period is knob-scaled
// (decreasing as the knob rises, ~240 down to ~60); reaching it
// re-triggers this same module, after which the dispatcher re-arms the
// gate countdown from the current gate state. The module itself does
// not write the gate value: the gate timer flips it, running off the
// fast (every-tick) rate class (spec §8 scenario S4).
func moduleToggle() Program {
	return build(
		knobRange(240, 60),
		gate(20, 20),
		setA(regblock.OffGateSelect, 0b01),
		nextModule(240, byte(regblock.SourceKnob)<<2|0b01, 18),
	)
}

// Phase1/Phase2 (mode entry: 20, 21; Phase2 also runs 35). Both
// channels sweep the same group from the same shared configuration
// (mirrored by setA's apply_channel fan-out), then channel B's value
// is overwritten with the reflection of A's across the group's
// midpoint. For a symmetric min/max sweep that one write is equivalent
// to starting B half a sweep period behind A, so B leads A by one
// half-period once both are running (spec §9 decision).
func modulePhase1() Program {
	return build(
		group(regblock.Frequency, 60, 60, 200, 1, 2, regblock.ActionReverse, regblock.ActionReverse, 0x01),
		setB(groupField(regblock.Frequency, regblock.GOffValue), 60+200-60),
	)
}

func modulePhase2() Program {
	return build(
		group(regblock.Frequency, 200, 60, 200, 1, 2, regblock.ActionReverse, regblock.ActionReverse, 0x01),
		setB(groupField(regblock.Frequency, regblock.GOffValue), 60+200-200),
	)
}

func modulePhase2Fixup() Program {
	return build(
		group(regblock.Width, 128, 80, 180, 1, 1, regblock.ActionReverse, regblock.ActionReverse, 0x01),
		setB(groupField(regblock.Width, regblock.GOffValue), 80+180-128),
	)
}

// Phase3 (mode entry: 22). Same shared-group-plus-reflection scheme as
// Phase1/2. The starting value is kept off the group's exact midpoint
// so the reflection written to channel B is a distinct value and not a
// no-op (spec §9 decision).
func modulePhase3() Program {
	return build(
		group(regblock.Frequency, 140, 60, 200, 1, 3, regblock.ActionReverse, regblock.ActionReverse, 0x01),
		setB(groupField(regblock.Frequency, regblock.GOffValue), 60+200-140),
	)
}

// Orgasm/Torment (mode entry: 24, 28). Chain structure only (spec §9
// open-question decision): intensity sweeps down and, on reaching its
// min, chains back into the same module, which reloads the same step
// (1 for Orgasm, 2 for Torment); the stages do not escalate, and no
// elapsed-time component is modeled.
func moduleOrgasm() Program {
	return build(
		group(regblock.Intensity, 255, 40, 255, 1, 1, 24, regblock.ActionReverse, 0x01),
	)
}

func moduleTorment() Program {
	return build(
		group(regblock.Intensity, 255, 20, 255, 1, 2, 28, regblock.ActionReverse, 0x01),
	)
}

// Random2 (mode entry: 32). Sets random_min..random_max to 40..220 and
// sweeps ramp over that same range, reversing at both ends. No MEMOP
// random draw and no chained module are used.
func moduleRandom2() Program {
	return build(
		setA(regblock.OffRandomMin, 40),
		setA(regblock.OffRandomMax, 220),
		group(regblock.Ramp, 128, 40, 220, 1, 5, regblock.ActionReverse, regblock.ActionReverse, 0x01),
	)
}

// Audio1/2 (mode entry: 23, with post-entry gate/output-flag fixups
// applied by the dispatcher). The intensity group stays static; the
// box's audio follower overwrites its value with the audio envelope.
func moduleAudio1Or2() Program {
	return build(
		group(regblock.Intensity, 128, 0, 255, 0, 1, regblock.ActionStop, regblock.ActionStop, 0x00),
	)
}

// Audio3 (mode entry: 34, with its own gate/output-flag fixups).
func moduleAudio3() Program {
	return build(
		group(regblock.Width, 128, 0, 255, 0, 1, regblock.ActionStop, regblock.ActionStop, 0x00),
	)
}
