package box

import (
	"stimbox.dev/config"
	"stimbox.dev/regblock"
)

// ReadByte implements serialproto.AddressSpace (spec §6's virtual
// address map). Addresses outside every named range read as zero,
// matching the bytecode interpreter's "out of range is a harmless
// no-op" convention rather than erroring.
func (ctx *EngineContext) ReadByte(addr uint16) byte {
	switch {
	case addr == addrBoxModel:
		return BoxModel
	case addr == addrBoxModel+1:
		return FirmwareMajor
	case addr == addrBoxModel+2:
		return FirmwareMinor
	case addr == addrBoxModel+3:
		return FirmwarePatch
	case addr < 0x0100:
		return 0

	case addr >= addrChannelA && addr < addrChannelA+regblock.Size:
		return ctx.A[addr-addrChannelA]
	case addr >= addrChannelB && addr < addrChannelB+regblock.Size:
		return ctx.B[addr-addrChannelB]
	case addr == addrKnob:
		return ctx.KnobPos
	case addr == addrLevelA:
		return ctx.LevelA
	case addr == addrLevelB:
		return ctx.LevelB
	case addr == addrCurrentMode:
		return byte(ctx.Dispatcher.Mode) + modeWireOffset
	case addr == addrPowerLevel:
		return byte(ctx.Config.PowerLevel)
	case addr >= addrAdvancedBase && addr < addrAdvancedBase+8:
		return ctx.Config.Advanced[addr-addrAdvancedBase]
	case addr >= addrRAMBase && addr < addrRAMEnd:
		return 0

	case addr >= addrStoreBase && addr < addrStoreEnd:
		return ctx.readStoreByte(addr - addrStoreBase)

	default:
		return 0
	}
}

// WriteByte implements serialproto.AddressSpace. The box-command
// register is the one write-triggered side effect in RAM; the
// read-only identity range and unmapped addresses silently discard
// writes (spec §7).
func (ctx *EngineContext) WriteByte(addr uint16, v byte) {
	switch {
	case addr == addrBoxCommand:
		ctx.SetBoxCommand(v)
	case addr >= addrChannelA && addr < addrChannelA+regblock.Size:
		ctx.A[addr-addrChannelA] = v
	case addr >= addrChannelB && addr < addrChannelB+regblock.Size:
		ctx.B[addr-addrChannelB] = v
	case addr == addrPowerLevel:
		ctx.Config.PowerLevel = config.PowerLevel(v)
	case addr >= addrAdvancedBase && addr < addrAdvancedBase+8:
		ctx.Config.Advanced[addr-addrAdvancedBase] = v
	case addr >= addrStoreBase && addr < addrStoreEnd:
		ctx.writeStoreByte(addr-addrStoreBase, v)
	}
	// Read-only identity bytes, the mode register (mode only changes via
	// box commands), and unmapped addresses: write silently discarded.
}

// readStoreByte/writeStoreByte expose the persisted (not live) system
// configuration byte-for-byte over the wire (spec §6's 0x8000-0x81FF
// range), independent of the live RAM mirror at addrRAMBase.
func (ctx *EngineContext) readStoreByte(off uint16) byte {
	img := config.Encode(&ctx.Config)
	if int(off) >= len(img) {
		return 0
	}
	return img[off]
}

func (ctx *EngineContext) writeStoreByte(off uint16, v byte) {
	img := config.Encode(&ctx.Config)
	if int(off) >= len(img) {
		return
	}
	img[off] = v
	if cfg, ok := config.Decode(&img); ok {
		ctx.Config = cfg
	}
	// An intermediate byte write that leaves the checksum stale is
	// silently ignored until the writer supplies a consistent image
	// (spec §7's integrity-failure policy, applied per-byte here).
}
