package dispatch

import "math/rand"

// slowPeriodTicks is the number of 250 Hz engine ticks per Random-1
// "slow" count, giving the master counter its ~1.91 Hz rate (spec
// §4.5).
const slowPeriodTicks = 131

// random1State tracks Random-1's rotation: a master slow counter and a
// randomly chosen deadline (in slow counts) before the next built-in
// sub-mode is picked.
type random1State struct {
	slowCounter int
	deadline    int
}

func (r *random1State) reset(rng *rand.Rand) {
	r.slowCounter = 0
	r.deadline = 1 + rng.Intn(20)
}

// step advances the slow counter by one engine tick. When the deadline
// elapses it picks one of the first six built-in modes uniformly, draws
// a random secondary field (consumed by the sub-mode's own module
// defaults), and reports the chosen sub-mode.
func (r *random1State) step(rng *rand.Rand) (Mode, bool) {
	r.slowCounter++
	if r.slowCounter < slowPeriodTicks {
		return 0, false
	}
	r.slowCounter = 0
	r.deadline--
	if r.deadline > 0 {
		return 0, false
	}
	r.deadline = 1 + rng.Intn(20)
	sub := Mode(rng.Intn(int(Rhythm) + 1))
	_ = rng.Intn(256) // secondary field, not separately modeled
	return sub, true
}
