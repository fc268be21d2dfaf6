// package outputstage implements the foreground pass that turns a
// channel's live register state into pulse-generator microsecond
// parameters and a DAC intensity code (spec §4.6).
package outputstage

import (
	"stimbox.dev/config"
	"stimbox.dev/driver"
	"stimbox.dev/pulse"
	"stimbox.dev/regblock"
)

// powerLevelConstant is a base/modulation pair for one PowerLevel
// setting (spec §4.6: "compile-time constants").
type powerLevelConstant struct {
	base, modulation int
}

var powerLevels = map[config.PowerLevel]powerLevelConstant{
	config.PowerLow:    {base: 650, modulation: 220},
	config.PowerNormal: {base: 590, modulation: 330},
	config.PowerHigh:   {base: 500, modulation: 440},
}

// silentPeriodUS is the sentinel period submitted when the frequency
// byte is too low to produce an audible/felt pulse train.
const silentPeriodUS = 65000

// Target is one channel's derived output: whether the gate is open,
// the pulse parameters to submit, and the DAC code to write.
type Target struct {
	GateOn   bool
	WidthUS  uint16
	PeriodUS uint16
	DACCode  uint16
}

// Derive computes b's output target. knobADC is the raw 0-1023 ADC
// reading of the intensity knob (inverted by the DAC formula: a higher
// knob reading yields a lower DAC code and so a stronger felt output).
// rampPercent is the menu-driven 0-100 ramp-in percentage.
func Derive(b *regblock.ChannelBlock, level config.PowerLevel, globalEnable bool, knobADC uint16, rampPercent int) Target {
	freq := b.Frequency().Value()
	gateOn := b.GateValue()&regblock.GateOn != 0 && globalEnable && freq >= 2

	var period uint16
	if freq < 2 {
		period = silentPeriodUS
	} else {
		period = uint16(256 * int(freq))
	}
	width := uint16(70 + int(b.Width().Value())*180/256)

	intensity := int(b.Intensity().Value()) * int(b.Ramp().Value()) / 256
	if rampPercent < 0 {
		rampPercent = 0
	}
	if rampPercent > 100 {
		rampPercent = 100
	}
	intensity = intensity * rampPercent / 100

	pc := powerLevels[level]
	if knobADC > 1023 {
		knobADC = 1023
	}
	dac := pc.base + pc.modulation*(1023-int(knobADC))/1024
	dac = 1023 - ((1023 - dac) * intensity / 256)
	dac = clampInt(dac, 0, 1023)

	return Target{
		GateOn:   gateOn,
		WidthUS:  width,
		PeriodUS: period,
		DACCode:  uint16(dac),
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Submit pushes t to the channel's pulse generator and DAC. The pulse
// submission error is only ever SubmissionRejected on a period below
// the hard floor; Derive's own sentinel/clamp logic never produces
// such a value, so callers may discard the error, but it is returned
// for completeness and for callers that feed externally-set periods.
func Submit(t Target, ch *pulse.Channel, dac driver.DAC, dacChannel int) error {
	ch.SetGate(t.GateOn)
	if err := ch.Submit(t.WidthUS, t.PeriodUS); err != nil {
		return err
	}
	if dac == nil {
		return nil
	}
	return dac.SetLevel(dacChannel, t.DACCode)
}
