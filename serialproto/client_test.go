package serialproto

import "testing"

func TestClientAgainstSession(t *testing.T) {
	space := newFakeSpace()
	host, stop := startSession(t, space)
	defer stop()

	client := NewClient(host)
	if err := client.Handshake(); err != nil {
		t.Fatalf("Handshake: %v", err)
	}
	if err := client.ExchangeKey(0x42); err != nil {
		t.Fatalf("ExchangeKey: %v", err)
	}
	if err := client.WriteAddr(0x4200, []byte{0x99}); err != nil {
		t.Fatalf("WriteAddr: %v", err)
	}
	got, err := client.ReadAddr(0x4200)
	if err != nil {
		t.Fatalf("ReadAddr: %v", err)
	}
	if got != 0x99 {
		t.Fatalf("read back %#x, want 0x99", got)
	}
	if space.mem[0x4200] != 0x99 {
		t.Fatalf("address space not updated: got %#x", space.mem[0x4200])
	}
}
