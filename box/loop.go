package box

import "time"

// TickInterval is the engine tick period: "every 4 ms, calls
// engine_tick" (spec §2), giving the ≥250 Hz foreground loop its
// actual parameter-modulation rate.
const TickInterval = 4 * time.Millisecond

// ForegroundLoop runs ctx.Step once per TickInterval until stop is
// closed, mirroring the teacher's "for { a.Frame() }" main loop shape
// (cmd/controller/main.go) with an explicit tick source instead of an
// unthrottled spin, since nothing here waits on a display's vsync.
func ForegroundLoop(ctx *EngineContext, stop <-chan struct{}) {
	t := time.NewTicker(TickInterval)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			ctx.Step()
		}
	}
}
