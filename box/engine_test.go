package box

import (
	"testing"

	"stimbox.dev/config"
	"stimbox.dev/dispatch"
)

func TestAddressMapRoundTripsChannelA(t *testing.T) {
	ctx := New(config.Default(), 1)
	for addr := uint16(addrChannelA); addr < addrChannelA+64; addr++ {
		ctx.WriteByte(addr, 0x5A)
		if got := ctx.ReadByte(addr); got != 0x5A {
			t.Fatalf("address %#x did not round trip: got %#x", addr, got)
		}
	}
}

func TestBoxModelAndVersionAreReadOnly(t *testing.T) {
	ctx := New(config.Default(), 1)
	if got := ctx.ReadByte(addrBoxModel); got != BoxModel {
		t.Fatalf("box model byte = %#x, want %#x", got, BoxModel)
	}
	ctx.WriteByte(addrBoxModel, 0xFF)
	if got := ctx.ReadByte(addrBoxModel); got != BoxModel {
		t.Fatalf("box model byte should be read-only, got %#x after write", got)
	}
}

func TestCurrentModeWireOffset(t *testing.T) {
	ctx := New(config.Default(), 1)
	ctx.Dispatcher.EnterMode(dispatch.Climb, advancedFromConfig(ctx.Config), 0, nil)
	got := ctx.ReadByte(addrCurrentMode)
	want := byte(dispatch.Climb) + modeWireOffset
	if got != want {
		t.Fatalf("current mode register = %#x, want %#x", got, want)
	}
}

func TestBoxCommandNextModeAppliesOnNextStep(t *testing.T) {
	ctx := New(config.Default(), 1)
	start := ctx.Dispatcher.Mode

	ctx.WriteByte(addrBoxCommand, cmdNextMode)
	if ctx.Dispatcher.Mode != start {
		t.Fatalf("box command should not apply before the next Step")
	}
	ctx.Step()
	if ctx.Dispatcher.Mode == start {
		t.Fatalf("next-mode box command did not advance the mode after Step")
	}
}

func TestBoxCommandCopyChannelAtoB(t *testing.T) {
	ctx := New(config.Default(), 1)
	ctx.A.Intensity().SetValue(77)
	ctx.B.Intensity().SetValue(1)

	ctx.WriteByte(addrBoxCommand, cmdCopyAtoB)
	ctx.Step()
	if ctx.B.Intensity().Value() != 77 {
		t.Fatalf("copy A->B did not copy channel A's state: got %d", ctx.B.Intensity().Value())
	}
}

func TestPersistentStoreByteRangeRoundTrips(t *testing.T) {
	ctx := New(config.Default(), 1)
	ctx.Config.SetUserModule(2, []byte{0x11, 0x22})

	img := config.Encode(&ctx.Config)
	for i, want := range img {
		if got := ctx.ReadByte(addrStoreBase + uint16(i)); got != want {
			t.Fatalf("store byte %d = %#x, want %#x", i, got, want)
		}
	}
}

func TestStepDrivesTickCounterForward(t *testing.T) {
	ctx := New(config.Default(), 1)
	before := ctx.Dispatcher.Engine.TickCounter
	for i := 0; i < 5; i++ {
		ctx.Step()
	}
	if ctx.Dispatcher.Engine.TickCounter == before {
		t.Fatalf("Step did not advance the engine's tick counter")
	}
}
