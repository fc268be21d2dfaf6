package regblock

// DefaultImage returns the compile-time default ChannelBlock image
// copied into a block on mode entry (spec §4.2). It leaves the engine
// quiescent: every parameter group is static (timer-rate bits clear)
// until a module configures it, the gate is on with plain biphasic
// polarity, and apply_channel addresses both channels.
func DefaultImage() ChannelBlock {
	var b ChannelBlock
	b.SetApplyChannel(ApplyA | ApplyB)
	b.SetGateValue(GateOn)
	b[OffGateOnTime] = 30
	b[OffGateOffTime] = 30
	for _, g := range []Group{Ramp, Intensity, Frequency, Width} {
		pg := b.group(g)
		pg.SetValue(128)
		pg.SetMin(0)
		pg.SetMax(255)
		pg.SetRate(1)
		pg.SetStep(1)
		pg.SetActionMin(ActionReverse)
		pg.SetActionMax(ActionReverse)
		pg.SetSelect(0x00)
	}
	return b
}
