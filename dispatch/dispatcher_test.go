package dispatch

import (
	"testing"

	"stimbox.dev/paramengine"
	"stimbox.dev/regblock"
)

func TestEnterModeRunsFixedModulesAndResetsTickCounter(t *testing.T) {
	a, b := regblock.DefaultImage(), regblock.DefaultImage()
	d := New(&a, &b, nil, 1)

	d.EnterMode(Waves, paramengine.Advanced{}, 0, nil)
	for i := 0; i < 10; i++ {
		d.Tick(paramengine.Advanced{}, 0)
	}
	if d.Engine.TickCounter == 0 {
		t.Fatalf("ticks did not advance the tick counter")
	}

	d.EnterMode(Waves, paramengine.Advanced{}, 0, nil)
	if d.Engine.TickCounter != 0 {
		t.Fatalf("EnterMode did not reset the tick counter: got %d", d.Engine.TickCounter)
	}
	if got, want := a.Frequency().Select(), byte(0x41); got != want {
		t.Fatalf("Waves did not configure frequency select: got %#x, want %#x", got, want)
	}
	if got, want := a.Width().Max(), byte(179); got != want {
		t.Fatalf("Waves did not configure width max: got %d, want %d", got, want)
	}
}

func TestSplitIsolation(t *testing.T) {
	refA, refB := regblock.DefaultImage(), regblock.DefaultImage()
	ref := New(&refA, &refB, nil, 1)
	ref.EnterMode(Waves, paramengine.Advanced{}, 0, nil)

	a, b := regblock.DefaultImage(), regblock.DefaultImage()
	d := New(&a, &b, nil, 1)
	d.SplitA = Waves
	d.SplitB = Climb
	d.EnterMode(Split, paramengine.Advanced{}, 0, nil)

	checkGroupMatches := func(name string, got, want *regblock.ParamGroup) {
		t.Helper()
		if got.Min() != want.Min() || got.Max() != want.Max() || got.Step() != want.Step() || got.Select() != want.Select() {
			t.Fatalf("%s group after split does not match standalone Waves: got %+v want %+v", name, *got, *want)
		}
	}
	checkGroupMatches("frequency", a.Frequency(), refA.Frequency())
	checkGroupMatches("width", a.Width(), refA.Width())

	if got := a.ApplyChannel(); got != regblock.ApplyA|regblock.ApplyB {
		t.Fatalf("apply_channel after split restore = %#x, want both", got)
	}
}

func TestDeferredCommandLastWriteWins(t *testing.T) {
	a, b := regblock.DefaultImage(), regblock.DefaultImage()
	d := New(&a, &b, nil, 1)

	d.Defer(Command{Kind: CmdPause})
	d.Defer(Command{Kind: CmdUnpause})
	d.PollDeferred(paramengine.Advanced{}, 0, nil)

	if d.Paused {
		t.Fatalf("last-write-wins: unpause should have overridden the earlier pause")
	}
}

func TestPausedSkipsTick(t *testing.T) {
	a, b := regblock.DefaultImage(), regblock.DefaultImage()
	d := New(&a, &b, nil, 1)
	d.EnterMode(Waves, paramengine.Advanced{}, 0, nil)
	d.Paused = true

	d.Tick(paramengine.Advanced{}, 0)
	if d.Engine.TickCounter != 0 {
		t.Fatalf("paused dispatcher advanced the engine tick: got %d", d.Engine.TickCounter)
	}
}
