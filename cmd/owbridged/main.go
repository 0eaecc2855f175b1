// Command owbridged wires a real portaudio duplex stream and an
// in-memory MIDI ring to a constructed engine.Engine, exercising the
// full construct/activate/run/stop/destroy lifecycle against an
// actual sound card. It demonstrates the boundary contract; it does
// not replace it (see SPEC_FULL §1).
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/gordonklaus/portaudio"
	flag "github.com/spf13/pflag"

	"github.com/overwitch/owbridge/config"
	"github.com/overwitch/owbridge/engine"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "owbridged:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath = flag.StringP("config", "c", "", "path to a YAML configuration file")
		bus        = flag.Int("bus", 0, "USB bus number (overrides config)")
		address    = flag.Int("address", 0, "USB device address (overrides config)")
		fd         = flag.Int("fd", 0, "already-open USB file descriptor (overrides bus/address)")
		dumpConfig = flag.Bool("dump-config", false, "print the effective configuration and exit")
	)
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if *bus != 0 {
		cfg.Device.Bus = *bus
	}
	if *address != 0 {
		cfg.Device.Address = *address
	}
	if *fd != 0 {
		cfg.Device.FileDescriptor = *fd
	}

	if *dumpConfig {
		data, err := cfg.Marshal()
		if err != nil {
			return err
		}
		os.Stdout.Write(data)
		return nil
	}

	logger := charmlog.NewWithOptions(os.Stderr, charmlog.Options{Prefix: "owbridged"})
	level, err := charmlog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("log level %q: %w", cfg.LogLevel, err)
	}
	logger.SetLevel(level)

	desc := &engine.DeviceDescriptor{
		Name:              "owbridge-demo",
		Inputs:            2,
		Outputs:           2,
		SampleRate:        48000,
		OutputTrackScales: []float32{1, 1},
	}

	var eng *engine.Engine
	if cfg.Device.FromFileDescriptor() {
		eng, err = engine.NewFromFileDescriptor(cfg.Device.FileDescriptor, desc, cfg.BlocksPerTransfer)
	} else {
		eng, err = engine.NewFromBusAddress(cfg.Device.Bus, cfg.Device.Address, desc, cfg.BlocksPerTransfer)
	}
	if err != nil {
		return fmt.Errorf("construct engine: %w", err)
	}

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initialize portaudio: %w", err)
	}
	defer portaudio.Terminate()

	framesPerTransfer := cfg.BlocksPerTransfer * engine.FramesPerBlock
	p2oAudio := newByteRing(4 * framesPerTransfer * desc.Inputs * 4)
	o2pAudio := newByteRing(4 * framesPerTransfer * desc.Outputs * 4)
	p2oMIDI := newByteRing(64 * 16)
	o2pMIDI := newByteRing(64 * 16)

	stream, err := openDuplexStream(desc, framesPerTransfer, p2oAudio, o2pAudio)
	if err != nil {
		eng.Destroy()
		return fmt.Errorf("open audio stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		eng.Destroy()
		return fmt.Errorf("start audio stream: %w", err)
	}
	defer func() {
		stream.Stop()
		stream.Close()
	}()

	start := time.Now()
	var opts engine.Option
	if cfg.Options.P2OAudio {
		opts |= engine.OptionP2OAudio
	}
	if cfg.Options.O2PAudio {
		opts |= engine.OptionO2PAudio
	}
	if cfg.Options.P2OMIDI {
		opts |= engine.OptionP2OMIDI
	}
	if cfg.Options.O2PMIDI {
		opts |= engine.OptionO2PMIDI
	}
	if cfg.Options.DLL {
		opts |= engine.OptionDLL
	}

	ctx := &engine.Context{
		Options:    opts,
		P2OAudio:   p2oAudio,
		O2PAudio:   o2pAudio,
		P2OMIDI:    p2oMIDI,
		O2PMIDI:    o2pMIDI,
		ReadSpace:  func(r engine.Ring) int { return r.(*byteRing).readSpace() },
		WriteSpace: func(r engine.Ring) int { return r.(*byteRing).writeSpace() },
		Read:       func(r engine.Ring, p []byte) int { return r.(*byteRing).read(p) },
		Write:      func(r engine.Ring, p []byte) int { return r.(*byteRing).write(p) },
		GetTime:    func() float64 { return time.Since(start).Seconds() },
		DLL:        &demoDLL{logger: logger},
		Priority:   cfg.Priority,
	}

	if err := eng.Activate(ctx); err != nil {
		eng.Destroy()
		return fmt.Errorf("activate engine: %w", err)
	}
	logger.Info("engine activated", "device", desc.Name, "frames_per_transfer", framesPerTransfer)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	logger.Info("shutting down")
	eng.Stop()
	eng.Wait()
	return eng.Destroy()
}

// openDuplexStream opens a single portaudio stream that copies device
// input frames into p2oAudio and device output frames out of o2pAudio,
// the demo's stand-in for a real host audio graph's realtime callback.
func openDuplexStream(desc *engine.DeviceDescriptor, framesPerTransfer int, p2oAudio, o2pAudio *byteRing) (*portaudio.Stream, error) {
	in := make([]float32, framesPerTransfer*desc.Inputs)
	out := make([]float32, framesPerTransfer*desc.Outputs)

	callback := func(inBuf, outBuf []float32) {
		copy(in, inBuf)
		writeFloatsLE(p2oAudio, in)

		if readFloatsLE(o2pAudio, out) {
			copy(outBuf, out)
		} else {
			for i := range outBuf {
				outBuf[i] = 0
			}
		}
	}

	return portaudio.OpenDefaultStream(desc.Inputs, desc.Outputs, desc.SampleRate, framesPerTransfer, callback)
}
