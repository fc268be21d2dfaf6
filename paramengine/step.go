package paramengine

import "stimbox.dev/regblock"

// ChannelDirections holds the four per-group sweep-direction bits that
// live outside the 64-byte block (spec §4.3/§9 "direction tracking").
// true means the group's value is currently moving up (toward max).
type ChannelDirections [4]bool

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// InitDirections reconstructs the four direction bits from the block's
// field values alone: the group moves away from whichever endpoint its
// value is nearest to. Ties go up. Called after every mode change and
// after every boundary-triggered module execution (spec §4.3).
func InitDirections(b *regblock.ChannelBlock) ChannelDirections {
	var d ChannelDirections
	for _, g := range allGroups {
		pg := b.GroupAt(g)
		v, mn, mx := int(pg.Value()), int(pg.Min()), int(pg.Max())
		d[g] = abs(v-mn) <= abs(v-mx)
	}
	return d
}

var allGroups = [4]regblock.Group{regblock.Ramp, regblock.Intensity, regblock.Frequency, regblock.Width}

// TimerRateFires reports whether a group's timer-rate class fires on
// the given tick counter value (spec §4.3's table).
func TimerRateFires(rateBits byte, tickCounter uint8) bool {
	switch rateBits {
	case 0b00:
		return false
	case 0b01:
		return true
	case 0b10:
		return tickCounter%8 == 0
	case 0b11:
		return tickCounter == 0
	default:
		return false
	}
}

// StepResult reports a module the group's boundary action requested be
// run on this channel. Raised is false when no module was requested.
type StepResult struct {
	Raised bool
	Module byte
}

// StepGroup advances one parameter group by one tick, per spec §4.3's
// six-step algorithm. ctx.Group selects which group; dir is that
// group's direction bit, updated in place.
func StepGroup(ctx ResolveCtx, tickCounter uint8, dir *bool) StepResult {
	pg := ctx.Block.GroupAt(ctx.Group)

	if pg.TimerRateBits() == 0b00 {
		// Static: continuously source-driven, never stepped.
		if pg.MinSource() != regblock.SourceOwn {
			pg.SetValue(ResolveMin(ctx))
		}
		return StepResult{}
	}

	if !TimerRateFires(pg.TimerRateBits(), tickCounter) {
		return StepResult{}
	}

	rate := ResolveRate(ctx)
	if rate == 0 {
		rate = 1
	}

	pg.IncTimer()
	if pg.Timer() < rate {
		return StepResult{}
	}
	pg.SetTimer(0)

	if pg.MinSource() != regblock.SourceOwn {
		pg.SetMin(ResolveMin(ctx))
	}

	value := int(pg.Value())
	step := int(pg.Step())
	if step == 0 {
		step = 1
	}
	min, max := int(pg.Min()), int(pg.Max())

	if *dir {
		value += step
		if value >= max {
			pg.SetValue(byte(max))
			return applyBoundary(ctx.Block, pg, dir, pg.ActionMax(), true)
		}
		pg.SetValue(byte(value))
		return StepResult{}
	}
	value -= step
	if value <= min {
		pg.SetValue(byte(min))
		return applyBoundary(ctx.Block, pg, dir, pg.ActionMin(), false)
	}
	pg.SetValue(byte(value))
	return StepResult{}
}

func applyBoundary(b *regblock.ChannelBlock, pg *regblock.ParamGroup, dir *bool, action byte, wasGoingUp bool) StepResult {
	switch action {
	case regblock.ActionReverse:
		*dir = !wasGoingUp
	case regblock.ActionReverseToggle:
		*dir = !wasGoingUp
		b.SetGateValue(b.GateValue() ^ regblock.GateAltPol)
	case regblock.ActionLoop:
		if wasGoingUp {
			pg.SetValue(pg.Min())
		} else {
			pg.SetValue(pg.Max())
		}
		// Direction unchanged.
	case regblock.ActionStop:
		pg.ClearTimerRate()
	default:
		if action <= regblock.MaxModuleAction {
			return StepResult{Raised: true, Module: action}
		}
		// Unrecognized action byte: defined behaviour is to ignore it.
	}
	return StepResult{}
}
