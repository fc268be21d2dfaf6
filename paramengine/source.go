// package paramengine implements the per-tick parameter modulation
// engine: source resolution, group stepping, the gate timer, and the
// next-module timer (spec §4.3).
package paramengine

import "stimbox.dev/regblock"

// Advanced holds the eight named modulation sources a mode can route a
// group's min or rate through (spec §3).
type Advanced struct {
	RampLevel byte
	RampTime  byte
	Depth     byte
	Tempo     byte
	Frequency byte
	Effect    byte
	Width     byte
	Pace      byte
}

// KnobRange scales a raw knob reading through a block's configured
// range, per spec §4.3: "if high >= low, result = low +
// ((K*(high-low))>>8); else result = low - ((K*(low-high))>>8)."
func KnobRange(knob, low, high byte) byte {
	k := int(knob)
	lo, hi := int(low), int(high)
	if hi >= lo {
		return byte(lo + ((k * (hi - lo)) >> 8))
	}
	return byte(lo - ((k * (lo - hi)) >> 8))
}

// advancedFields selects which Advanced fields feed a group's min and
// rate sources, per spec §4.3's "advanced mapping per group".
func advancedFields(g regblock.Group, adv Advanced) (minSrc, rateSrc byte) {
	switch g {
	case regblock.Ramp:
		return adv.RampLevel, adv.RampTime
	case regblock.Intensity:
		return adv.Depth, adv.Tempo
	case regblock.Frequency:
		return adv.Frequency, adv.Effect
	case regblock.Width:
		return adv.Width, adv.Pace
	default:
		return 0, 0
	}
}

// ResolveCtx bundles everything a Source resolution needs: the block's
// own channel, the advanced settings, the live knob position, and the
// other channel (for SourceOther).
type ResolveCtx struct {
	Block    *regblock.ChannelBlock
	Other    *regblock.ChannelBlock
	Advanced Advanced
	Knob     byte
	Group    regblock.Group
}

// ResolveMin resolves a group's min-source selector to a concrete byte.
func ResolveMin(ctx ResolveCtx) byte {
	pg := ctx.Block.GroupAt(ctx.Group)
	return resolve(ctx, pg.MinSource(), true)
}

// ResolveRate resolves a group's rate-source selector to a concrete
// byte (the effective_rate used to gate stepping).
func ResolveRate(ctx ResolveCtx) byte {
	pg := ctx.Block.GroupAt(ctx.Group)
	return resolve(ctx, pg.RateSource(), false)
}

func resolve(ctx ResolveCtx, s regblock.Source, forMin bool) byte {
	advMin, advRate := advancedFields(ctx.Group, ctx.Advanced)
	var base byte
	switch s.Base() {
	case regblock.SourceOwn:
		pg := ctx.Block.GroupAt(ctx.Group)
		if forMin {
			base = pg.Min()
		} else {
			base = pg.Rate()
		}
	case regblock.SourceAdvanced:
		if forMin {
			base = advMin
		} else {
			base = advRate
		}
	case regblock.SourceKnob:
		base = KnobRange(ctx.Knob, ctx.Block.KnobRangeLow(), ctx.Block.KnobRangeHigh())
	case regblock.SourceOther:
		if ctx.Other != nil {
			opg := ctx.Other.GroupAt(ctx.Group)
			if forMin {
				base = opg.Min()
			} else {
				base = opg.Rate()
			}
		}
	}
	if s.Inverted() {
		base = 255 - base
	}
	return base
}
