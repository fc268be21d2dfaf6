package serialproto

import (
	"io"
	"testing"
)

type fakeSpace struct {
	mem map[uint16]byte
}

func newFakeSpace() *fakeSpace { return &fakeSpace{mem: map[uint16]byte{}} }

func (f *fakeSpace) ReadByte(addr uint16) byte     { return f.mem[addr] }
func (f *fakeSpace) WriteByte(addr uint16, v byte) { f.mem[addr] = v }

// duplex pairs a host-facing io.ReadWriter with the session's
// io.ReadWriter, backed by two in-memory pipes.
type duplex struct {
	hostR, deviceR *io.PipeReader
	hostW, deviceW *io.PipeWriter
}

func newDuplex() *duplex {
	hr, dw := io.Pipe()
	dr, hw := io.Pipe()
	return &duplex{hostR: hr, deviceR: dr, hostW: hw, deviceW: dw}
}

type sideRW struct {
	r io.Reader
	w io.Writer
}

func (s sideRW) Read(p []byte) (int, error)  { return s.r.Read(p) }
func (s sideRW) Write(p []byte) (int, error) { return s.w.Write(p) }

func (d *duplex) host() sideRW   { return sideRW{d.hostR, d.hostW} }
func (d *duplex) device() sideRW { return sideRW{d.deviceR, d.deviceW} }

func startSession(t *testing.T, space AddressSpace) (sideRW, func()) {
	t.Helper()
	d := newDuplex()
	sess := NewSession(d.device(), space, 1)
	done := make(chan struct{})
	go func() {
		sess.Serve()
		close(done)
	}()
	return d.host(), func() {
		d.hostW.Close()
		<-done
	}
}

func readN(t *testing.T, r io.Reader, n int) []byte {
	t.Helper()
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		t.Fatalf("read %d bytes: %v", n, err)
	}
	return buf
}

func TestHandshake(t *testing.T) {
	host, stop := startSession(t, newFakeSpace())
	defer stop()

	host.Write([]byte{opHandshakeReq})
	got := readN(t, host, 1)
	if got[0] != opHandshakeRep {
		t.Fatalf("handshake reply = %#x, want %#x", got[0], opHandshakeRep)
	}
}

func TestPlaintextReadWriteBeforeKeyExchange(t *testing.T) {
	space := newFakeSpace()
	host, stop := startSession(t, space)
	defer stop()

	// Write 0x99 to address 0x4200.
	req := []byte{writeOp(1), 0x42, 0x00, 0x99}
	req = append(req, checksum(req...))
	host.Write(req)
	if got := readN(t, host, 1)[0]; got != opOK {
		t.Fatalf("write reply = %#x, want opOK", got)
	}
	if space.mem[0x4200] != 0x99 {
		t.Fatalf("address space did not receive the write: got %#x", space.mem[0x4200])
	}

	// Read it back.
	req = []byte{opReadReq, 0x42, 0x00}
	req = append(req, checksum(req...))
	host.Write(req)
	resp := readN(t, host, 3)
	if resp[0] != opReadRep || resp[1] != 0x99 {
		t.Fatalf("read reply = %#v, want [0x22 0x99 checksum]", resp)
	}
}

func TestChecksumFailureRepliesAndContinues(t *testing.T) {
	space := newFakeSpace()
	host, stop := startSession(t, space)
	defer stop()

	bad := []byte{opReadReq, 0x42, 0x00, 0xFF} // wrong checksum
	host.Write(bad)
	if got := readN(t, host, 1)[0]; got != opHandshakeRep {
		t.Fatalf("bad checksum reply = %#x, want %#x", got, opHandshakeRep)
	}

	good := []byte{opReadReq, 0x42, 0x00}
	good = append(good, checksum(good...))
	host.Write(good)
	resp := readN(t, host, 3)
	if resp[0] != opReadRep {
		t.Fatalf("session did not recover after a checksum failure: got %#v", resp)
	}
}

func TestKeyExchangeAndEncryptedTraffic(t *testing.T) {
	space := newFakeSpace()
	host, stop := startSession(t, space)
	defer stop()

	const hostKey = 0x13
	req := []byte{opKeyReq, hostKey}
	req = append(req, checksum(req...))
	host.Write(req)
	resp := readN(t, host, 3)
	if resp[0] != opKeyRep {
		t.Fatalf("key exchange reply opcode = %#x, want %#x", resp[0], opKeyRep)
	}
	boxKey := resp[1]
	if resp[2] != checksum(resp[:2]...) {
		t.Fatalf("key exchange reply checksum mismatch")
	}

	key := decryptKey(boxKey, hostKey)
	plain := []byte{opReadReq, 0x42, 0x00}
	plain = append(plain, checksum(plain...))
	enc := make([]byte, len(plain))
	for i, b := range plain {
		enc[i] = b ^ key
	}
	host.Write(enc)
	resp = readN(t, host, 3)
	if resp[0] != opReadRep {
		t.Fatalf("encrypted read did not decode: got %#v", resp)
	}
}

func TestResetClearsEncryption(t *testing.T) {
	space := newFakeSpace()
	host, stop := startSession(t, space)
	defer stop()

	const hostKey = 0x55
	req := []byte{opKeyReq, hostKey}
	req = append(req, checksum(req...))
	host.Write(req)
	keyResp := readN(t, host, 3)

	// The reset request is itself device-bound, so it goes out encrypted.
	key := decryptKey(keyResp[1], hostKey)
	host.Write([]byte{opResetReq ^ key})
	if got := readN(t, host, 1)[0]; got != opOK {
		t.Fatalf("reset reply = %#x, want opOK", got)
	}

	// Plaintext traffic should work again after reset.
	plain := []byte{opReadReq, 0x42, 0x00}
	plain = append(plain, checksum(plain...))
	host.Write(plain)
	resp := readN(t, host, 3)
	if resp[0] != opReadRep {
		t.Fatalf("post-reset plaintext read failed: got %#v", resp)
	}
}
