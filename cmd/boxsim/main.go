// command boxsim runs a standalone box engine against in-process
// simulated hardware: no serial transport, just the foreground loop
// ticking the engine so its behavior (mode rotation, module chains,
// pulse/DAC targets) can be observed or driven from tests.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"stimbox.dev/box"
	"stimbox.dev/config"
	"stimbox.dev/dispatch"
)

var (
	mode     = flag.String("mode", "Waves", "starting mode")
	seed     = flag.Int64("seed", 1, "PRNG seed")
	duration = flag.Duration("duration", 0, "run for this long, then exit (0 = until interrupted)")
)

func main() {
	flag.Parse()
	log.SetFlags(log.Flags() &^ (log.Ldate | log.Ltime))
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "boxsim: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	m, ok := modeByName(*mode)
	if !ok {
		return fmt.Errorf("unknown mode %q", *mode)
	}
	cfg := config.Default()
	cfg.Mode = m
	ctx := box.New(cfg, *seed)

	log.Printf("boxsim: running in mode %s", ctx.Dispatcher.Mode)

	stop := make(chan struct{})
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)

	done := make(chan struct{})
	go func() {
		box.ForegroundLoop(ctx, stop)
		close(done)
	}()

	var timeout <-chan time.Time
	if *duration > 0 {
		timeout = time.After(*duration)
	}
	select {
	case <-sig:
	case <-timeout:
	}
	close(stop)
	<-done
	return nil
}

func modeByName(name string) (dispatch.Mode, bool) {
	for m := dispatch.Waves; m <= dispatch.Split; m++ {
		if m.String() == name {
			return m, true
		}
	}
	return 0, false
}
