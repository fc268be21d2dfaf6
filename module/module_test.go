package module

import (
	"testing"

	"stimbox.dev/regblock"
)

func newBlocks() (regblock.ChannelBlock, regblock.ChannelBlock) {
	return regblock.DefaultImage(), regblock.DefaultImage()
}

func TestSetHonoursApplyChannelMirror(t *testing.T) {
	a, b := newBlocks()
	vm := &VM{A: &a, B: &b}

	// SET intensity value (offset 34) to 200, c=0 (base A), default
	// apply_channel mirrors into both A and B.
	f := byte(regblock.OffIntensity + regblock.GOffValue)
	prog := Program{0x80 | f, 200, 0x00}
	vm.Run(prog)

	if got := a.Intensity().Value(); got != 200 {
		t.Fatalf("A intensity value = %d, want 200", got)
	}
	if got := b.Intensity().Value(); got != 200 {
		t.Fatalf("B intensity value (mirror) = %d, want 200", got)
	}
}

func TestSetApplyChannelAOnlySkipsB(t *testing.T) {
	a, b := newBlocks()
	a.SetApplyChannel(regblock.ApplyA)
	b.Intensity().SetValue(77)
	vm := &VM{A: &a, B: &b}

	f := byte(regblock.OffIntensity + regblock.GOffValue)
	prog := Program{0x80 | f, 5, 0x00}
	vm.Run(prog)

	if got := a.Intensity().Value(); got != 5 {
		t.Fatalf("A intensity value = %d, want 5", got)
	}
	if got := b.Intensity().Value(); got != 77 {
		t.Fatalf("B intensity value changed when apply_channel was A-only: got %d, want 77", got)
	}
}

func TestSetChannelBBase(t *testing.T) {
	a, b := newBlocks()
	vm := &VM{A: &a, B: &b}

	f := byte(regblock.OffGateValue)
	prog := Program{0x80 | 0x40 | f, 0x09, 0x00} // c=1 -> base B
	vm.Run(prog)

	if got := b.GateValue(); got != 0x09 {
		t.Fatalf("B gate value = %#x, want 0x09", got)
	}
	if got := a.GateValue(); got == 0x09 {
		t.Fatalf("SET with c=1 should not touch A")
	}
}

func TestCopyWritesConsecutiveBytes(t *testing.T) {
	a, b := newBlocks()
	vm := &VM{A: &a, B: &b}

	// l=1 (2 bytes), aaa=0 since addr fits entirely in addr_low.
	addr := regblock.BaseA + regblock.OffIntensity
	prog := Program{0b0010_1000, byte(addr), 111, 222, 0x00}
	vm.Run(prog)

	if got := a.Intensity().Value(); got != 111 {
		t.Fatalf("copied value = %d, want 111", got)
	}
	if got := a.Intensity().Min(); got != 222 {
		t.Fatalf("copied min = %d, want 222", got)
	}
}

func TestMemopStoreAndLoadBank(t *testing.T) {
	a, b := newBlocks()
	a.SetRetryCount(99)
	vm := &VM{A: &a, B: &b}

	store := Program{0b0100_0000, byte(regblock.BaseA + regblock.OffRetryCount), 0x00}
	vm.Run(store)
	if got := a.Bank(); got != 99 {
		t.Fatalf("bank after store = %d, want 99", got)
	}

	a.SetOutputFlags(0)
	load := Program{0b0100_0100, byte(regblock.BaseA + regblock.OffOutputFlags), 0x00}
	vm.Run(load)
	if got := a.OutputFlags(); got != 99 {
		t.Fatalf("output_flags after load-from-bank = %d, want 99", got)
	}
}

func TestMemopRightShift(t *testing.T) {
	a, b := newBlocks()
	a.SetRetryCount(128)
	vm := &VM{A: &a, B: &b}

	prog := Program{0b0100_1000, byte(regblock.BaseA + regblock.OffRetryCount), 0x00}
	vm.Run(prog)
	if got := a.RetryCount(); got != 64 {
		t.Fatalf("retry_count after right-shift = %d, want 64", got)
	}
}

func TestMemopRandomStaysInRange(t *testing.T) {
	a, b := newBlocks()
	a[regblock.OffRandomMin] = 10
	a[regblock.OffRandomMax] = 20
	vm := NewVM(&a, &b, 1)

	prog := Program{0b0100_1100, byte(regblock.BaseA + regblock.OffAudioTrigger), 0x00}
	for i := 0; i < 50; i++ {
		vm.Run(prog)
		v := a.AudioTrigger()
		if v < 10 || v > 20 {
			t.Fatalf("random draw %d out of [10,20]", v)
		}
	}
}

func TestMathopOperations(t *testing.T) {
	a, b := newBlocks()
	vm := &VM{A: &a, B: &b}

	a.SetRetryCount(5)
	add := Program{0b0101_0000, byte(regblock.BaseA + regblock.OffRetryCount), 10, 0x00}
	vm.Run(add)
	if got := a.RetryCount(); got != 15 {
		t.Fatalf("add: retry_count = %d, want 15", got)
	}

	a.SetRetryCount(0b1111_0000)
	and := Program{0b0101_0100, byte(regblock.BaseA + regblock.OffRetryCount), 0b0000_1111, 0x00}
	vm.Run(and)
	if got := a.RetryCount(); got != 0 {
		t.Fatalf("and: retry_count = %d, want 0", got)
	}

	a.SetRetryCount(0b1010_1010)
	xor := Program{0b0101_1100, byte(regblock.BaseA + regblock.OffRetryCount), 0xFF, 0x00}
	vm.Run(xor)
	if got := a.RetryCount(); got != 0b0101_0101 {
		t.Fatalf("xor: retry_count = %#x, want %#x", got, 0b0101_0101)
	}
}

func TestEndHaltsExecution(t *testing.T) {
	a, b := newBlocks()
	vm := &VM{A: &a, B: &b}

	prog := Program{0x00, 0x80, 200, 0x00} // END then garbage that must not run
	vm.Run(prog)
	if got := a.RetryCount(); got != 0 {
		t.Fatalf("bytes after END were executed: retry_count = %d", got)
	}
}

func TestReservedOpcodeSkipsTwoBytes(t *testing.T) {
	a, b := newBlocks()
	vm := &VM{A: &a, B: &b}

	f := byte(regblock.OffRetryCount)
	prog := Program{0b0001_1111, 0xAA, 0x80 | f, 77, 0x00}
	vm.Run(prog)
	if got := a.RetryCount(); got != 77 {
		t.Fatalf("SET after reserved opcode did not run: retry_count = %d, want 77", got)
	}
}

func TestUnknownOpcodeAdvancesOneByte(t *testing.T) {
	a, b := newBlocks()
	vm := &VM{A: &a, B: &b}

	f := byte(regblock.OffRetryCount)
	prog := Program{0x65, 0x80 | f, 88, 0x00}
	vm.Run(prog)
	if got := a.RetryCount(); got != 88 {
		t.Fatalf("SET after unknown opcode did not run: retry_count = %d, want 88", got)
	}
}
