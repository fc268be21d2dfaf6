// package boxsim provides an in-process simulator of the box: a live
// box.EngineContext driven by its own foreground loop, reachable as an
// io.ReadWriteCloser serial transport so cmd/boxctl and integration
// tests can exercise the full serial protocol without hardware.
// Grounded on driver/mjolnir's Simulator, which runs a device state
// machine on a goroutine behind a plain Read/Write/Close surface.
package boxsim

import (
	"io"

	"stimbox.dev/box"
	"stimbox.dev/config"
	"stimbox.dev/serialproto"
)

// Simulator is a complete in-process box: its own EngineContext,
// foreground loop, and serial-protocol session, wired together and
// exposed as a transport.
type Simulator struct {
	ctx    *box.EngineContext
	hostIO io.ReadWriteCloser

	stopLoop chan struct{}
	done     chan struct{}
}

// New starts a simulator seeded from cfg. Call Close to stop both the
// foreground loop and the serial session.
func New(cfg config.SystemConfig, seed int64) *Simulator {
	ctx := box.New(cfg, seed)

	hostSide, deviceSide := pipePair()
	sess := serialproto.NewSession(deviceSide, ctx, seed^0x1234)

	s := &Simulator{
		ctx:      ctx,
		hostIO:   hostSide,
		stopLoop: make(chan struct{}),
		done:     make(chan struct{}),
	}
	go func() {
		defer close(s.done)
		sess.Serve()
	}()
	go box.ForegroundLoop(ctx, s.stopLoop)
	return s
}

// Engine exposes the live engine context for tests that want to peek
// at state no serial read would expose directly.
func (s *Simulator) Engine() *box.EngineContext { return s.ctx }

func (s *Simulator) Read(p []byte) (int, error)  { return s.hostIO.Read(p) }
func (s *Simulator) Write(p []byte) (int, error) { return s.hostIO.Write(p) }

// Close stops the foreground loop and the serial session.
func (s *Simulator) Close() error {
	close(s.stopLoop)
	err := s.hostIO.Close()
	<-s.done
	return err
}

// pipePair returns two io.ReadWriteCloser ends of a full-duplex
// in-memory connection, one for the host side and one for the device
// side, each a combination of the other's io.Pipe halves.
func pipePair() (host, device io.ReadWriteCloser) {
	hostR, deviceW := io.Pipe()
	deviceR, hostW := io.Pipe()
	return &halfDuplex{hostR, hostW}, &halfDuplex{deviceR, deviceW}
}

type halfDuplex struct {
	r *io.PipeReader
	w *io.PipeWriter
}

func (h *halfDuplex) Read(p []byte) (int, error)  { return h.r.Read(p) }
func (h *halfDuplex) Write(p []byte) (int, error) { return h.w.Write(p) }
func (h *halfDuplex) Close() error {
	h.r.Close()
	return h.w.Close()
}
