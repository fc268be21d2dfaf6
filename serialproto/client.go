package serialproto

import (
	"bufio"
	"errors"
	"io"
)

// ErrNAK is returned when the device replies with the bare framing/
// checksum-failure byte instead of the expected response (spec §7: "no
// retry; the host retries").
var ErrNAK = errors.New("serialproto: device replied NAK")

// Client is the host side of the protocol: it frames requests, applies
// the XOR encryption once a key exchange has completed, and parses
// replies. It is the counterpart to Session, which plays the device
// role.
type Client struct {
	r *bufio.Reader
	w io.Writer

	keyed           bool
	hostKey, boxKey byte
}

// NewClient wraps a transport (typically driver.Transport, or
// boxsim.Simulator for tests) as a protocol client.
func NewClient(rw io.ReadWriter) *Client {
	return &Client{r: bufio.NewReader(rw), w: rw}
}

// Handshake sends the ready-check byte and waits for the device's 0x07.
func (c *Client) Handshake() error {
	if err := c.writeByte(opHandshakeReq); err != nil {
		return err
	}
	b, err := c.r.ReadByte()
	if err != nil {
		return err
	}
	if b != opHandshakeRep {
		return ErrNAK
	}
	return nil
}

// ExchangeKey performs the key exchange, enabling XOR encryption of
// subsequent outgoing bytes.
func (c *Client) ExchangeKey(hostKey byte) error {
	req := []byte{opKeyReq, hostKey}
	req = append(req, checksum(req...))
	if _, err := c.w.Write(req); err != nil {
		return err
	}
	resp := make([]byte, 3)
	if _, err := io.ReadFull(c.r, resp); err != nil {
		return err
	}
	if resp[0] == opHandshakeRep {
		return ErrNAK
	}
	if resp[0] != opKeyRep || resp[2] != checksum(resp[:2]...) {
		return errors.New("serialproto: malformed key exchange reply")
	}
	c.hostKey = hostKey
	c.boxKey = resp[1]
	c.keyed = true
	return nil
}

// ReadAddr reads one byte at addr.
func (c *Client) ReadAddr(addr uint16) (byte, error) {
	hi, lo := byte(addr>>8), byte(addr)
	req := []byte{opReadReq, hi, lo}
	req = append(req, checksum(req...))
	if err := c.writeEncrypted(req); err != nil {
		return 0, err
	}
	resp := make([]byte, 3)
	if _, err := io.ReadFull(c.r, resp); err != nil {
		return 0, err
	}
	if resp[0] == opHandshakeRep {
		return 0, ErrNAK
	}
	if resp[0] != opReadRep || resp[2] != checksum(resp[:2]...) {
		return 0, errors.New("serialproto: malformed read reply")
	}
	return resp[1], nil
}

// WriteAddr writes data starting at addr.
func (c *Client) WriteAddr(addr uint16, data []byte) error {
	n := len(data)
	if n < writeNMin || n > writeNMax {
		return errors.New("serialproto: write payload out of range")
	}
	hi, lo := byte(addr>>8), byte(addr)
	req := append([]byte{writeOp(n), hi, lo}, data...)
	req = append(req, checksum(req...))
	if err := c.writeEncrypted(req); err != nil {
		return err
	}
	b, err := c.r.ReadByte()
	if err != nil {
		return err
	}
	if b != opOK {
		return ErrNAK
	}
	return nil
}

// Reset clears the negotiated encryption key on both sides.
func (c *Client) Reset() error {
	if err := c.writeEncrypted([]byte{opResetReq}); err != nil {
		return err
	}
	b, err := c.r.ReadByte()
	if err != nil {
		return err
	}
	c.keyed = false
	if b != opOK {
		return ErrNAK
	}
	return nil
}

func (c *Client) writeByte(b byte) error {
	_, err := c.w.Write([]byte{b})
	return err
}

// writeEncrypted XOR-encodes every byte of req once a key exchange has
// completed, matching Session.readByte's decryption on the other end.
func (c *Client) writeEncrypted(req []byte) error {
	if !c.keyed {
		_, err := c.w.Write(req)
		return err
	}
	key := decryptKey(c.boxKey, c.hostKey)
	enc := make([]byte, len(req))
	for i, b := range req {
		enc[i] = b ^ key
	}
	_, err := c.w.Write(enc)
	return err
}
