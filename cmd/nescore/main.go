// Command nescore runs the emulator against a cartridge image, either
// in a window via ebiten or, with -nogui, as a fixed-frame-count headless run
// useful for scripted testing.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/rng999/nescore/internal/cartridge"
	"github.com/rng999/nescore/internal/console"
	"github.com/rng999/nescore/internal/frontend"
)

func main() {
	var (
		romFile    = flag.String("rom", "", "path to an iNES ROM file")
		configFile = flag.String("config", "", "path to a JSON config file")
		scale      = flag.Int("scale", 0, "integer window scale (overrides config)")
		sampleRate = flag.Int("samplerate", 0, "audio sample rate in Hz (overrides config)")
		nogui      = flag.Bool("nogui", false, "run a fixed number of frames with no window and exit")
		frames     = flag.Int("frames", 120, "frame count for -nogui mode")
		noaudio    = flag.Bool("noaudio", false, "disable audio output")
		version    = flag.Bool("version", false, "print version information and exit")
	)
	flag.Usage = printUsage
	flag.Parse()

	if *version {
		fmt.Println("nescore (development build)")
		return
	}

	if *romFile == "" {
		printUsage()
		os.Exit(2)
	}

	cfg := frontend.DefaultConfig()
	if *configFile != "" {
		var err error
		if cfg, err = frontend.LoadConfig(*configFile); err != nil {
			log.Fatalf("loading config: %v", err)
		}
	}
	if *scale > 0 {
		cfg.Window.Scale = *scale
	}
	if *sampleRate > 0 {
		cfg.Audio.SampleRate = *sampleRate
	}
	if *noaudio {
		cfg.Audio.Enabled = false
	}

	setupGracefulShutdown()

	data, err := os.ReadFile(*romFile)
	if err != nil {
		log.Fatalf("reading ROM: %v", err)
	}
	cart, err := cartridge.Parse(data)
	if err != nil {
		log.Fatalf("parsing ROM: %v", err)
	}
	fmt.Printf("loaded %s: %d PRG bank(s), %d CHR bank(s), mapper %d\n",
		*romFile, cart.PRGBankCount(), cart.CHRBankCount(), cart.MapperID)

	con, err := console.New(cart, cfg.Audio.SampleRate)
	if err != nil {
		log.Fatalf("initializing console: %v", err)
	}

	if *nogui {
		runHeadless(con, *frames)
		return
	}

	if err := runWindowed(con, cfg); err != nil {
		log.Fatalf("run failed: %v", err)
	}
}

func runWindowed(con *console.Console, cfg frontend.Config) error {
	var sink console.AudioSink
	if cfg.Audio.Enabled {
		s, err := frontend.NewAudioSink(cfg.Audio.SampleRate)
		if err != nil {
			return fmt.Errorf("audio init: %w", err)
		}
		sink = s
	}

	game := frontend.NewGame(con, sink, cfg)
	ebiten.SetWindowSize(256*cfg.Window.Scale, 240*cfg.Window.Scale)
	ebiten.SetWindowTitle("nescore")
	return ebiten.RunGame(game)
}

// runHeadless steps the console a fixed number of frames without
// opening a window, discarding audio and video output. Useful for
// smoke-testing a ROM from a script.
func runHeadless(con *console.Console, frameCount int) {
	for i := 0; i < frameCount; i++ {
		con.StepFrame(nil, nil)
	}
	fmt.Printf("ran %d frames\n", frameCount)
}

func setupGracefulShutdown() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		fmt.Println("\ninterrupt received, shutting down")
		os.Exit(0)
	}()
}

func printUsage() {
	fmt.Println("nescore - an NES emulator")
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  nescore -rom <file> [options]")
	fmt.Println()
	fmt.Println("OPTIONS:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("CONTROLS:")
	fmt.Println("  Arrow keys  D-Pad")
	fmt.Println("  Z / X       B / A")
	fmt.Println("  Enter       Start")
	fmt.Println("  Shift       Select")
	fmt.Println("  Escape      Quit")
}
