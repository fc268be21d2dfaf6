package serialproto

import (
	"bufio"
	"io"
	"math/rand"
)

// Session runs one serial-protocol conversation over rw: handshake, key
// exchange, and repeated read/write/reset packets against space.
// Device-bound bytes are XOR-decrypted once a key exchange has
// completed; device-to-host traffic is always plaintext (spec §6).
type Session struct {
	r     *bufio.Reader
	w     io.Writer
	space AddressSpace
	rng   *rand.Rand

	keyed           bool
	hostKey, boxKey byte
}

// NewSession constructs a Session. seed drives the box_key chosen
// during key exchange; it need not be cryptographically strong (spec
// §9: "do not rely on it for security").
func NewSession(rw io.ReadWriter, space AddressSpace, seed int64) *Session {
	return &Session{
		r:     bufio.NewReader(rw),
		w:     rw,
		space: space,
		rng:   rand.New(rand.NewSource(seed)),
	}
}

// Serve processes packets from rw until a read error (typically the
// transport closing) occurs. It never returns on protocol errors:
// framing/checksum failures reply 0x07 and the session continues
// (spec §7).
func (s *Session) Serve() error {
	for {
		op, err := s.readByte()
		if err != nil {
			return err
		}
		if err := s.dispatch(op); err != nil {
			return err
		}
	}
}

func (s *Session) dispatch(op byte) error {
	switch {
	case op == opHandshakeReq:
		return s.ack(opHandshakeRep)
	case op == opResetReq:
		s.keyed = false
		s.hostKey, s.boxKey = 0, 0
		return s.ack(opOK)
	case op == opKeyReq:
		return s.handleKeyExchange()
	case op == opReadReq:
		return s.handleRead()
	case writeOpN(op) >= 0:
		return s.handleWrite(op)
	default:
		// Unknown opcode: silently ignored, per spec §7. There is no
		// framing to resynchronize on, so nothing further is consumed.
		return nil
	}
}

func (s *Session) handleKeyExchange() error {
	hostKey, err := s.readByte()
	if err != nil {
		return err
	}
	chk, err := s.readByte()
	if err != nil {
		return err
	}
	if chk != checksum(opKeyReq, hostKey) {
		return s.ack(opHandshakeRep)
	}
	s.hostKey = hostKey
	s.boxKey = byte(s.rng.Intn(256))
	s.keyed = true
	return s.reply(opKeyRep, s.boxKey)
}

func (s *Session) handleRead() error {
	hi, err := s.readByte()
	if err != nil {
		return err
	}
	lo, err := s.readByte()
	if err != nil {
		return err
	}
	chk, err := s.readByte()
	if err != nil {
		return err
	}
	if chk != checksum(opReadReq, hi, lo) {
		return s.ack(opHandshakeRep)
	}
	addr := uint16(hi)<<8 | uint16(lo)
	return s.reply(opReadRep, s.space.ReadByte(addr))
}

func (s *Session) handleWrite(op byte) error {
	n := writeOpN(op)
	hi, err := s.readByte()
	if err != nil {
		return err
	}
	lo, err := s.readByte()
	if err != nil {
		return err
	}
	data := make([]byte, n)
	for i := range data {
		data[i], err = s.readByte()
		if err != nil {
			return err
		}
	}
	chk, err := s.readByte()
	if err != nil {
		return err
	}
	want := checksum(append([]byte{op, hi, lo}, data...)...)
	if chk != want {
		return s.ack(opHandshakeRep)
	}
	addr := uint16(hi)<<8 | uint16(lo)
	for i, v := range data {
		s.space.WriteByte(addr+uint16(i), v)
	}
	return s.ack(opOK)
}

// readByte reads one wire byte and, once a key exchange has completed,
// XOR-decrypts it before returning it to the caller (spec §6).
func (s *Session) readByte() (byte, error) {
	b, err := s.r.ReadByte()
	if err != nil {
		return 0, err
	}
	if s.keyed {
		b ^= decryptKey(s.boxKey, s.hostKey)
	}
	return b, nil
}

// reply writes a plaintext device-to-host packet, appending its
// trailing checksum (used by key-exchange and read replies, which carry
// one on the wire per spec §6).
func (s *Session) reply(b ...byte) error {
	full := append(append([]byte{}, b...), checksum(b...))
	_, err := s.w.Write(full)
	return err
}

// ack writes a single bare acknowledgement/status byte: the handshake
// reply, write/reset OK, and the checksum-failure NACK carry no
// trailing checksum of their own.
func (s *Session) ack(b byte) error {
	_, err := s.w.Write([]byte{b})
	return err
}
