package regblock

import "testing"

func TestBankOffset(t *testing.T) {
	// Bytecode's MEMOP addresses the scratch "bank" byte at local
	// offset 0x0C within the selected block (spec §4.4).
	if OffBank != 0x0C {
		t.Fatalf("bank offset = 0x%02x, want 0x0c", OffBank)
	}
}

func TestRegisterPtrAddressing(t *testing.T) {
	var a, b ChannelBlock
	var scratch Scratch

	pa := RegisterPtr(BaseA+OffBank, &a, &b, &scratch)
	*pa = 0x42
	if a[OffBank] != 0x42 {
		t.Fatalf("write through RegisterPtr(A) did not land in block A")
	}

	pb := RegisterPtr(BaseB+OffGateValue, &a, &b, &scratch)
	*pb = GateOn
	if b[OffGateValue] != GateOn {
		t.Fatalf("write through RegisterPtr(B) did not land in block B")
	}

	// Out-of-range addresses are a silent, write-only no-op routed to
	// the shared scratch cell; they must never alias A or B.
	po := RegisterPtr(0x4000, &a, &b, &scratch)
	*po = 0xFF
	if a[OffBank] != 0x42 || b[OffGateValue] != GateOn {
		t.Fatalf("out-of-range write corrupted a live block")
	}
}

func TestParamGroupSelectDecoding(t *testing.T) {
	var pg ParamGroup
	pg.SetSelect(0x41) // 0b0100_0001
	if got := pg.TimerRateBits(); got != 0b01 {
		t.Fatalf("TimerRateBits() = %#b, want 0b01", got)
	}
	if got := pg.MinSource(); got != SourceOwn {
		t.Fatalf("MinSource() = %v, want SourceOwn", got)
	}
	if got := pg.RateSource(); got != SourceKnob {
		t.Fatalf("RateSource() = %v, want SourceKnob", got)
	}
}

func TestParamGroupRateNormalizesZero(t *testing.T) {
	var pg ParamGroup
	pg.SetRate(0)
	if pg.Rate() != 1 {
		t.Fatalf("Rate() with raw 0 = %d, want 1", pg.Rate())
	}
	pg.SetRate(5)
	if pg.Rate() != 5 {
		t.Fatalf("Rate() = %d, want 5", pg.Rate())
	}
}

func TestDefaultImageQuiescent(t *testing.T) {
	b := DefaultImage()
	if b.ApplyChannel() != ApplyA|ApplyB {
		t.Fatalf("default apply_channel = %#x, want both", b.ApplyChannel())
	}
	if b.GateValue()&GateOn == 0 {
		t.Fatalf("default gate should be on")
	}
	for _, g := range []Group{Ramp, Intensity, Frequency, Width} {
		if b.GroupAt(g).TimerRateBits() != 0 {
			t.Fatalf("default group %v is not static", g)
		}
	}
}
