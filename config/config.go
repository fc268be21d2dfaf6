// package config implements the box's persisted configuration: current
// mode, power level, split selections, per-channel base levels, the
// advanced-settings slab, the favourite mode, and the seven
// user-programmable module slots (spec §4.7).
package config

import (
	"stimbox.dev/dispatch"
	"stimbox.dev/module"
)

// Image is the persisted configuration block's on-the-wire byte layout:
// a magic byte, fixed-offset fields, seven 32-byte user-module slots,
// and a trailing 8-bit XOR checksum.
type Image [Size]byte

const (
	Magic = 0xA5

	offMagic       = 0
	offMode        = 1
	offPowerLevel  = 2
	offSplitA      = 3
	offSplitB      = 4
	offBaseIntA    = 5
	offBaseIntB    = 6
	offBaseFreqA   = 7
	offBaseFreqB   = 8
	offBaseWidthA  = 9
	offBaseWidthB  = 10
	offKnobPos     = 11
	offAudioGain   = 12
	offAdvanced    = 13 // 8 bytes: 13..20
	offFavourite   = 21
	offUserModules = 22

	// UserSlotSize is one user-programmable module slot: a validity
	// magic byte followed by up to 31 bytes of bytecode.
	UserSlotSize   = 32
	NumUserSlots   = 7
	offChecksum    = offUserModules + NumUserSlots*UserSlotSize
	Size           = offChecksum + 1
	slotValidMagic = 0x5A
)

// PowerLevel selects the DAC base/modulation pair (spec §4.6).
type PowerLevel byte

const (
	PowerLow PowerLevel = iota
	PowerNormal
	PowerHigh
)

// SystemConfig is the config block's decoded, in-memory form.
type SystemConfig struct {
	Mode       dispatch.Mode
	PowerLevel PowerLevel
	SplitA     dispatch.Mode
	SplitB     dispatch.Mode

	BaseIntensityA, BaseIntensityB byte
	BaseFrequencyA, BaseFrequencyB byte
	BaseWidthA, BaseWidthB         byte

	KnobPosition byte
	AudioGain    byte
	Advanced     [8]byte
	Favourite    dispatch.Mode

	userModules [NumUserSlots][UserSlotSize - 1]byte
	userValid   [NumUserSlots]bool
}

// Default returns factory-default settings (spec §4.7: "on failure,
// substitute factory defaults without writing").
func Default() SystemConfig {
	return SystemConfig{
		Mode:           dispatch.Waves,
		PowerLevel:     PowerNormal,
		SplitA:         dispatch.Waves,
		SplitB:         dispatch.Climb,
		BaseIntensityA: 128,
		BaseIntensityB: 128,
		BaseFrequencyA: 128,
		BaseFrequencyB: 128,
		BaseWidthA:     128,
		BaseWidthB:     128,
		KnobPosition:   0,
		AudioGain:      128,
		Favourite:      dispatch.Waves,
	}
}

// UserModule implements dispatch.UserModuleSource.
func (c *SystemConfig) UserModule(slot int) module.Program {
	if slot < 0 || slot >= NumUserSlots || !c.userValid[slot] {
		return nil
	}
	return module.Program(c.userModules[slot][:])
}

// SetUserModule stores slot's bytecode (truncated to fit) and marks it
// valid.
func (c *SystemConfig) SetUserModule(slot int, program []byte) {
	if slot < 0 || slot >= NumUserSlots {
		return
	}
	n := copy(c.userModules[slot][:], program)
	for i := n; i < len(c.userModules[slot]); i++ {
		c.userModules[slot][i] = 0
	}
	c.userValid[slot] = true
}
