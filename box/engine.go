// package box wires the pulse generator, register blocks, parameter
// engine, bytecode interpreter, mode dispatcher, output stage, and
// persisted configuration into the single running "engine context"
// spec §9 calls for, and exposes it as a serialproto.AddressSpace so
// the external serial protocol can read and write it directly.
package box

import (
	"stimbox.dev/config"
	"stimbox.dev/dispatch"
	"stimbox.dev/driver"
	"stimbox.dev/outputstage"
	"stimbox.dev/paramengine"
	"stimbox.dev/pulse"
	"stimbox.dev/regblock"
)

// Box model/version identity bytes (spec §6: 0x00FC-0x00FF).
const (
	BoxModel      = 0x01
	FirmwareMajor = 1
	FirmwareMinor = 0
	FirmwarePatch = 0
)

// Virtual addresses (spec §6).
const (
	addrBoxModel = 0x00FC

	addrRAMBase      = 0x4000
	addrChannelA     = 0x4080
	addrChannelB     = 0x4180
	addrBoxCommand   = 0x4070
	addrCurrentMode  = 0x407B
	addrLevelA       = 0x4064
	addrLevelB       = 0x4065
	addrKnob         = 0x420D
	addrPowerLevel   = 0x41F4
	addrAdvancedBase = 0x41F8
	addrRAMEnd       = 0x4400

	addrStoreBase = 0x8000
	addrStoreEnd  = 0x8200

	// modeWireOffset is added to the internal mode index on the wire
	// (spec §6).
	modeWireOffset = 0x76
)

// Box commands, written to addrBoxCommand (spec §6).
const (
	cmdReload    = 0x00
	cmdNextMode  = 0x10
	cmdPrevMode  = 0x11
	cmdRefresh   = 0x12
	cmdPauseMute = 0x18
	cmdSwapChans = 0x19
	cmdCopyAtoB  = 0x1A
	cmdCopyBtoA  = 0x1B
	cmdStartRamp = 0x21
)

// EngineContext is the process-wide engine singleton: two ChannelBlocks,
// the persisted SystemConfig, the mode dispatcher, both channels' pulse
// generators, and the hardware collaborators the foreground loop drives
// every pass (spec §9's "global mutable state" note). Tests construct
// independent instances via New.
type EngineContext struct {
	A, B       regblock.ChannelBlock
	Config     config.SystemConfig
	Dispatcher *dispatch.Dispatcher

	PulseA, PulseB *pulse.Channel
	DAC            driver.DAC
	Knob           driver.Knob
	Audio          driver.AudioEnvelope
	Store          driver.Store

	KnobPos          byte
	LevelA, LevelB   byte
	pendingBoxCmd    byte
	hasPendingBoxCmd bool
}

// New constructs an EngineContext from cfg, ready to enter its starting
// mode. Pulse channels and hardware collaborators may be wired in
// afterward (box.ForegroundLoop tolerates nil DAC/Knob/Audio/Store,
// skipping the corresponding step).
func New(cfg config.SystemConfig, seed int64) *EngineContext {
	ctx := &EngineContext{Config: cfg}
	ctx.Dispatcher = dispatch.New(&ctx.A, &ctx.B, &ctx.Config, seed)
	ctx.Dispatcher.SplitA = cfg.SplitA
	ctx.Dispatcher.SplitB = cfg.SplitB
	ctx.Dispatcher.EnterMode(cfg.Mode, advancedFromConfig(cfg), 0, nil)
	return ctx
}

func advancedFromConfig(cfg config.SystemConfig) paramengine.Advanced {
	a := cfg.Advanced
	return paramengine.Advanced{
		RampLevel: a[0],
		RampTime:  a[1],
		Depth:     a[2],
		Tempo:     a[3],
		Frequency: a[4],
		Effect:    a[5],
		Width:     a[6],
		Pace:      a[7],
	}
}

// SetBoxCommand queues a box command from the serial protocol's
// write to addrBoxCommand. Single-slot, last-write-wins, applied at
// the top of the next Step (spec §5, §7).
func (ctx *EngineContext) SetBoxCommand(v byte) {
	ctx.pendingBoxCmd = v
	ctx.hasPendingBoxCmd = true
}

// Step runs one foreground iteration: apply the pending box command,
// poll the dispatcher's deferred command, tick the engine, then derive
// and submit each channel's output (spec §2's control-flow summary).
func (ctx *EngineContext) Step() {
	ctx.applyBoxCommand()

	if ctx.Knob != nil {
		ctx.KnobPos = ctx.Knob.Read()
	}
	adv := advancedFromConfig(ctx.Config)

	ctx.Dispatcher.PollDeferred(adv, ctx.KnobPos, ctx.silence)
	ctx.applyAudioFollower()
	ctx.Dispatcher.Tick(adv, ctx.KnobPos)

	ctx.submitOutput(&ctx.A, ctx.PulseA, 0)
	ctx.submitOutput(&ctx.B, ctx.PulseB, 1)
}

func (ctx *EngineContext) silence() {
	if ctx.PulseA != nil {
		ctx.PulseA.SetGate(false)
	}
	if ctx.PulseB != nil {
		ctx.PulseB.SetGate(false)
	}
	if ctx.DAC != nil {
		ctx.DAC.SetLevel(0, 1023)
		ctx.DAC.SetLevel(1, 1023)
	}
}

func (ctx *EngineContext) submitOutput(b *regblock.ChannelBlock, ch *pulse.Channel, dacChannel int) {
	target := outputstage.Derive(b, ctx.Config.PowerLevel, !ctx.Dispatcher.Paused, uint16(ctx.KnobPos)*4, ctx.Dispatcher.RampPercent)
	if dacChannel == 0 {
		ctx.LevelA = byte(target.DACCode >> 2)
	} else {
		ctx.LevelB = byte(target.DACCode >> 2)
	}
	if ch != nil {
		outputstage.Submit(target, ch, ctx.DAC, dacChannel)
	}
}

// applyAudioFollower implements the audio-follower contract (spec §6):
// while an Audio mode is active, each channel's intensity value is
// replaced by an envelope sampled from the channel's audio input
// instead of being swept by the parameter engine.
func (ctx *EngineContext) applyAudioFollower() {
	if ctx.Audio == nil {
		return
	}
	switch ctx.Dispatcher.Mode {
	case dispatch.Audio1, dispatch.Audio2, dispatch.Audio3:
		level := ctx.Audio.Level()
		ctx.A.Intensity().SetValue(level)
		ctx.B.Intensity().SetValue(level)
	}
}

func (ctx *EngineContext) applyBoxCommand() {
	if !ctx.hasPendingBoxCmd {
		return
	}
	cmd := ctx.pendingBoxCmd
	ctx.pendingBoxCmd = 0
	ctx.hasPendingBoxCmd = false

	switch cmd {
	case cmdReload, cmdRefresh:
		ctx.Dispatcher.Defer(dispatch.Command{Kind: dispatch.CmdReload})
	case cmdNextMode:
		ctx.Dispatcher.Defer(dispatch.Command{Kind: dispatch.CmdNext})
	case cmdPrevMode:
		ctx.Dispatcher.Defer(dispatch.Command{Kind: dispatch.CmdPrev})
	case cmdPauseMute:
		if ctx.Dispatcher.Paused {
			ctx.Dispatcher.Defer(dispatch.Command{Kind: dispatch.CmdUnpause})
		} else {
			ctx.Dispatcher.Defer(dispatch.Command{Kind: dispatch.CmdPause})
		}
	case cmdSwapChans:
		ctx.A, ctx.B = ctx.B, ctx.A
		ctx.Dispatcher.SplitA, ctx.Dispatcher.SplitB = ctx.Dispatcher.SplitB, ctx.Dispatcher.SplitA
	case cmdCopyAtoB:
		ctx.B = ctx.A
	case cmdCopyBtoA:
		ctx.A = ctx.B
	case cmdStartRamp:
		ctx.Dispatcher.Defer(dispatch.Command{Kind: dispatch.CmdStartRamp})
	}
	// Unknown box commands fall out of the switch untouched (spec §7).
}
