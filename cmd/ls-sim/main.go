// ls-sim renders the logistic_snd sound generator to a WAV file, simulating
// every edge of its 25.2 MHz clock.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"strconv"
	"text/tabwriter"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/pfcm/lssim"
	"github.com/pfcm/lssim/analysis"
	"github.com/pfcm/lssim/fix"
	lsio "github.com/pfcm/lssim/io"
	"github.com/pfcm/lssim/osc"
	"github.com/pfcm/lssim/resample"
)

const help = `Usage: ls-sim [flags] N_OSC R_INC FRAC PHASE_BITS FREQ_RES duration filename

Simulates duration seconds of the generator and writes them to filename as
48 kHz 16 bit mono PCM.

  N_OSC       number of oscillator channels, 1 to 65536
  R_INC       growth rate step between channels, in units of 2^-FRAC
  FRAC        fractional bits in each iterate, 1 to 61
  PHASE_BITS  width of each oscillator's phase accumulator, 2 to 64
  FREQ_RES    clock divider for the iterators and oscillators, at least 1
`

const (
	exitOK = iota
	exitUsage
	exitParams
	exitOutput
	exitInternal
	exitPlayback
)

var argNames = [...]string{"N_OSC", "R_INC", "FRAC", "PHASE_BITS", "FREQ_RES", "duration"}

func main() {
	os.Exit(run(interruptContext(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	logger := log.New(stderr, "ls-sim: ", 0)

	fs := flag.NewFlagSet("ls-sim", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		decimatorFlag = fs.String("decimator", "sinc", "`resampler` to bring the clock down to 48 kHz: sinc or blip")
		statsFlag     = fs.Bool("stats", false, "print level and spectrum statistics of the output")
		progressFlag  = fs.Bool("progress", false, "report progress on stderr while rendering")
		channelsFlag  = fs.Bool("channels", false, "print each channel's growth rate and seed before rendering")
		playFlag      = fs.Bool("play", false, "play the output on the default device once it is written")
		backendFlag   = fs.String("backend", string(lsio.Malgo), "playback `library`: malgo or oto")
		profileFlag   = fs.Bool("profile", false, "whether to write pprof profiles to the current working directory")
	)
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), help)
		fmt.Fprintln(fs.Output(), "\nOptional arguments:")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if fs.NArg() != len(argNames)+1 {
		logger.Printf("Need exactly %d arguments, got %d.", len(argNames)+1, fs.NArg())
		fs.Usage()
		return exitUsage
	}
	var nums [len(argNames)]uint64
	for i := range nums {
		// values past 2^64-1 are rejected like any other non-number.
		v, err := strconv.ParseUint(fs.Arg(i), 10, 64)
		if err != nil {
			logger.Printf("%s: %q is not a number", argNames[i], fs.Arg(i))
			fs.Usage()
			return exitUsage
		}
		nums[i] = v
	}
	path := fs.Arg(len(argNames))

	if *decimatorFlag != "sinc" && *decimatorFlag != "blip" {
		logger.Printf("Unknown decimator %q, want sinc or blip.", *decimatorFlag)
		return exitUsage
	}
	backend, err := lsio.ParseBackend(*backendFlag)
	if err != nil {
		logger.Print(err)
		return exitUsage
	}

	p := lssim.Params{
		NOsc:      nums[0],
		RInc:      nums[1],
		Frac:      nums[2],
		PhaseBits: nums[3],
		FreqRes:   nums[4],
	}
	if err := p.Validate(); err != nil {
		logger.Print(err)
		return exitParams
	}
	cycles, err := lssim.CycleCount(nums[5])
	if err != nil {
		logger.Print(err)
		return exitParams
	}
	synth, err := lssim.NewSynth(p, lssim.Seeds(p))
	if err != nil {
		logger.Print(err)
		return exitParams
	}
	if *channelsFlag {
		printChannels(stdout, synth)
	}
	rs, err := newResampler(*decimatorFlag)
	if err != nil {
		logger.Print(err)
		return exitInternal
	}

	if *profileFlag {
		finish, err := startProfiles(".")
		if err != nil {
			logger.Printf("Starting profiling: %v", err)
			return exitInternal
		}
		defer func() {
			if err := finish(); err != nil {
				logger.Printf("Finishing profiles: %v", err)
			}
		}()
	}

	w, err := lsio.CreateWAV(path, lssim.SampleRate, lssim.BitDepth, lssim.Channels)
	if err != nil {
		logger.Print(err)
		return exitOutput
	}
	var (
		sink  lssim.Sink = w
		meter *analysis.Meter
	)
	if *statsFlag {
		if meter, err = analysis.NewMeter(lssim.SampleRate, analysis.DefaultFrame); err != nil {
			logger.Print(err)
			w.Close()
			return exitInternal
		}
		sink = lssim.MultiSink(w, meter)
	}
	pl := lssim.NewPipeline(synth, rs, sink)

	logger.Printf("Rendering %s, %d cycles, to %s", p, cycles, path)
	t0 := time.Now()
	g := new(errgroup.Group)
	rendering, done := context.WithCancel(context.Background())
	g.Go(func() error {
		defer done()
		return pl.Run(cycles)
	})
	if *progressFlag {
		g.Go(func() error {
			report(rendering, stderr, pl, cycles)
			return nil
		})
	}
	err = g.Wait()
	if cerr := w.Close(); cerr != nil {
		logger.Print(cerr)
		return exitOutput
	}
	if err != nil {
		logger.Printf("Rendering: %v", err)
		var se *lssim.SinkError
		if errors.As(err, &se) {
			return exitOutput
		}
		return exitInternal
	}
	logger.Printf("Wrote %d samples in %v", w.Samples(), time.Since(t0).Round(time.Millisecond))

	if meter != nil {
		fmt.Fprintln(stdout, meter.Summary())
	}
	if *playFlag {
		samples, format, err := lsio.ReadWAV(path)
		if err != nil {
			logger.Print(err)
			return exitOutput
		}
		if err := lsio.Play(ctx, backend, samples, format.SampleRate); err != nil {
			logger.Printf("Playing %s: %v", path, err)
			return exitPlayback
		}
	}
	return exitOK
}

func newResampler(name string) (lssim.Resampler, error) {
	if name == "blip" {
		b, err := resample.NewBlip(lssim.ClockHz, lssim.SampleRate, lssim.BufferSize)
		if err != nil {
			return nil, err
		}
		return b, nil
	}
	s, err := resample.NewSinc(resample.DefaultConfig(lssim.ClockHz, lssim.SampleRate))
	if err != nil {
		return nil, err
	}
	return s, nil
}

// report prints the cycle count every so often until ctx is done.
func report(ctx context.Context, w io.Writer, pl *lssim.Pipeline, total uint64) {
	p := message.NewPrinter(language.English)
	t0 := time.Now()
	t := time.NewTicker(250 * time.Millisecond)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			p.Fprintf(w, "\r%d / %d cycles in %.1fs\n", pl.Cycles(), total, time.Since(t0).Seconds())
			return
		case <-t.C:
			n := pl.Cycles()
			p.Fprintf(w, "\r%d / %d cycles (%.0f%%)", n, total, 100*float64(n)/float64(max(total, 1)))
		}
	}
}

// printChannels shows the reset state of each channel.
func printChannels(out io.Writer, s *lssim.Synth) {
	w := tabwriter.NewWriter(out, 8, 1, 1, ' ', 0)
	defer w.Flush()
	p := s.Params()
	shift := osc.FreqShift(uint(p.Frac), uint(p.PhaseBits))
	fmt.Fprintln(w, "channel\tr\tseed\tstart Hz\t")
	for i, c := range s.Current().Chans {
		xf := c.Iter.Format()
		rf := fix.Format{Int: 3, Frac: xf.Frac}
		rate := float64(lssim.ClockHz) / float64(c.Div.N())
		hz := osc.Hz(c.Iter.X>>shift, c.Osc.Bits(), rate)
		fmt.Fprintf(w, "%d\t%s\t%s\t%.2f\t\n", i, rf.Sprint(c.Iter.R()), xf.Sprint(c.Iter.X), hz)
	}
}

func interruptContext() context.Context {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	go func() {
		<-ctx.Done()
		cancel()
	}()
	return ctx
}

// startProfiles writes cpu.pprof and mem.pprof to dir.
func startProfiles(dir string) (func() error, error) {
	cpu, err := os.Create(filepath.Join(dir, "cpu.pprof"))
	if err != nil {
		return nil, err
	}
	if err := pprof.StartCPUProfile(cpu); err != nil {
		return nil, fmt.Errorf("starting cpu profile: %w", err)
	}

	mem, err := os.Create(filepath.Join(dir, "mem.pprof"))
	if err != nil {
		pprof.StopCPUProfile()
		cpu.Close()
		return nil, err
	}
	return func() error {
		pprof.StopCPUProfile()
		if err := cpu.Close(); err != nil {
			return err
		}
		runtime.GC()
		if err := pprof.WriteHeapProfile(mem); err != nil {
			return err
		}
		return mem.Close()
	}, nil
}
