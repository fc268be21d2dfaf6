package dispatch

import (
	"math/rand"

	"stimbox.dev/module"
	"stimbox.dev/paramengine"
	"stimbox.dev/regblock"
)

// Command is a deferred request from the serial/menu layer, queued into
// a single-slot last-write-wins mailbox and applied synchronously at
// the top of the next foreground iteration (spec §4.5).
type Command struct {
	Kind CommandKind
	Mode Mode // valid when Kind == CmdSetMode
}

type CommandKind int

const (
	CmdNone CommandKind = iota
	CmdSetMode
	CmdPause
	CmdUnpause
	CmdNext
	CmdPrev
	CmdReload
	CmdStartRamp
)

// UserModuleSource loads the stored bytecode for a user-programmable
// mode slot (spec §4.5's User1..7 row); backed by config's persistent
// store.
type UserModuleSource interface {
	UserModule(slot int) module.Program
}

// Dispatcher holds the current mode, the split sub-mode selections, the
// deferred-command mailbox, and Random-1's rotation state (spec §4.5).
type Dispatcher struct {
	A, B   *regblock.ChannelBlock
	VM     *module.VM
	Engine *paramengine.Engine
	StateA paramengine.ChannelState
	StateB paramengine.ChannelState

	Mode           Mode
	SplitA, SplitB Mode

	Paused      bool
	OutputFlags byte
	RampPercent int

	Users UserModuleSource

	pending Command
	random1 random1State
	rng     *rand.Rand
}

// New constructs a Dispatcher bound to both channel blocks and a
// parameter engine. users may be nil if no persistent store is wired
// (User modes then run an empty program).
func New(a, b *regblock.ChannelBlock, users UserModuleSource, seed int64) *Dispatcher {
	return &Dispatcher{
		A:      a,
		B:      b,
		VM:     module.NewVM(a, b, seed),
		Engine: &paramengine.Engine{},
		Users:  users,
		rng:    rand.New(rand.NewSource(seed ^ 0x5A5A5A5A)),
	}
}

// Defer queues an asynchronous command for the next foreground
// iteration. Last write wins (spec §4.5, §5).
func (d *Dispatcher) Defer(c Command) {
	d.pending = c
}

// PollDeferred applies any pending command, synchronously, between
// engine ticks (spec §5's ordering guarantee). Call this at the top of
// every foreground iteration, before Tick.
func (d *Dispatcher) PollDeferred(adv paramengine.Advanced, knob byte, silence func()) {
	c := d.pending
	d.pending = Command{}
	switch c.Kind {
	case CmdNone:
		return
	case CmdSetMode:
		d.EnterMode(c.Mode, adv, knob, silence)
	case CmdPause:
		d.Paused = true
	case CmdUnpause:
		d.Paused = false
	case CmdNext:
		d.EnterMode(d.nextNonUserMode(1), adv, knob, silence)
	case CmdPrev:
		d.EnterMode(d.nextNonUserMode(-1), adv, knob, silence)
	case CmdReload:
		d.EnterMode(d.Mode, adv, knob, silence)
	case CmdStartRamp:
		d.RampPercent = 0
	}
}

func (d *Dispatcher) nextNonUserMode(delta int) Mode {
	m := int(d.Mode)
	for {
		m = (m + delta + int(modeCount)) % int(modeCount)
		if !Mode(m).IsUser() {
			return Mode(m)
		}
	}
}

// EnterMode runs the mode-entry protocol (spec §4.5):
//  1. Force gates off and silence the DAC.
//  2. Reset the tick counter and pending-module mailboxes.
//  3. Random-1: reset its rotation timer.
//     Split: run the split-init protocol.
//     Else: reload defaults and run the mode's fixed module list.
//  4. Run init_directions and publish output flags.
func (d *Dispatcher) EnterMode(m Mode, adv paramengine.Advanced, knob byte, silence func()) {
	if silence != nil {
		silence()
	}
	d.Mode = m
	d.Engine.TickCounter = 0

	switch {
	case m == Random1:
		d.random1.reset(d.rng)
		*d.A = regblock.DefaultImage()
		*d.B = regblock.DefaultImage()
	case m == Split:
		d.runSplitInit(adv, knob)
	case m.IsUser():
		*d.A = regblock.DefaultImage()
		*d.B = regblock.DefaultImage()
		d.runUserModule(m.UserSlot())
	default:
		*d.A = regblock.DefaultImage()
		*d.B = regblock.DefaultImage()
		d.runFixedModules(m)
	}

	d.StateA.Reset(d.A, adv, knob)
	d.StateB.Reset(d.B, adv, knob)
	d.publishOutputFlags()
}

func (d *Dispatcher) runFixedModules(m Mode) {
	entry, ok := modeTable[m]
	if !ok {
		return
	}
	for _, n := range entry.modules {
		d.runModule(n)
	}
	if entry.gate != 0 {
		d.A.SetGateValue(entry.gate)
		d.B.SetGateValue(entry.gate)
	}
	if entry.outputFlags != 0 {
		d.A.SetOutputFlags(entry.outputFlags)
		d.B.SetOutputFlags(entry.outputFlags)
	}
}

func (d *Dispatcher) runUserModule(slot int) {
	if d.Users == nil {
		return
	}
	d.VM.Run(d.Users.UserModule(slot))
}

// runModule executes a built-in module by number against both blocks.
// Numbers outside the built-in table (e.g. a stray chained action byte
// with no defined program) are silently ignored, matching the bytecode
// interpreter's "fails with no error code" contract.
func (d *Dispatcher) runModule(n byte) {
	prog, ok := module.Builtin[n]
	if !ok {
		return
	}
	d.VM.Run(prog)
}

// runSplitInit implements the three-step split-mode protocol (spec
// §4.5): each half is built in isolation (apply_channel restricted to
// one channel) so the two sub-modes never fight over a shared block,
// then both results are restored together.
func (d *Dispatcher) runSplitInit(adv paramengine.Advanced, knob byte) {
	*d.A = regblock.DefaultImage()
	*d.B = regblock.DefaultImage()
	d.setApplyChannelBoth(regblock.ApplyA)
	d.runModule(1)
	d.runFixedModules(d.SplitA)
	snapA := *d.A

	*d.A = regblock.DefaultImage()
	*d.B = regblock.DefaultImage()
	d.setApplyChannelBoth(regblock.ApplyB)
	d.runModule(1)
	d.runFixedModules(d.SplitB)
	// Channel A's mode (step 1) owns the shared gate/output-flags state;
	// propagate it into B so the restored pair agrees, the way a normal
	// (non-split) entry's apply_channel=0x03 writes would have.
	d.B.SetGateValue(snapA.GateValue())
	d.B.SetOutputFlags(snapA.OutputFlags())
	snapB := *d.B

	*d.A = snapA
	*d.B = snapB
	d.setApplyChannelBoth(regblock.ApplyA | regblock.ApplyB)
}

// setApplyChannelBoth writes the same apply_channel mask into both
// blocks: module writes read the mask from the A block's field by
// convention (module.VM), but both blocks carry their own independent
// apply_channel byte (spec §3), so dispatch keeps them mirrored.
func (d *Dispatcher) setApplyChannelBoth(mask byte) {
	d.A.SetApplyChannel(mask)
	d.B.SetApplyChannel(mask)
}

func (d *Dispatcher) publishOutputFlags() {
	d.OutputFlags = d.A.OutputFlags()
}

// Tick runs the per-tick update protocol (spec §4.5): Random-1
// rotation, engine tick, mailbox drain, output-flags mirror.
func (d *Dispatcher) Tick(adv paramengine.Advanced, knob byte) {
	if d.Paused {
		return
	}
	if d.Mode == Random1 {
		if sub, ok := d.random1.step(d.rng); ok {
			d.EnterMode(sub, adv, knob, nil)
			// Stay in Random-1 so the rotation keeps running.
			d.Mode = Random1
			return
		}
	}
	outcome := d.Engine.Tick(d.A, d.B, adv, knob, &d.StateA, &d.StateB)
	if outcome.ModuleA.Raised && outcome.ModuleA.Module < 36 {
		d.runModule(outcome.ModuleA.Module)
		d.StateA.Reset(d.A, adv, knob)
	}
	if outcome.ModuleB.Raised && outcome.ModuleB.Module < 36 {
		d.runModule(outcome.ModuleB.Module)
		d.StateB.Reset(d.B, adv, knob)
	}
	d.publishOutputFlags()
}
