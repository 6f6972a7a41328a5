package main

import (
	"bytes"
	"context"
	"os"
	"io"
	"path/filepath"
	"runtime/pprof"
	"strings"
	"testing"

	"github.com/pfcm/lssim"
	lsio "github.com/pfcm/lssim/io"
)

func runArgs(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestExitCodes(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.wav")
	for _, c := range []struct {
		name string
		args []string
		want int
	}{
		{"five args", []string{"1", "1", "8", "16", "1"}, exitUsage},
		{"eight args", []string{"1", "1", "8", "16", "1", "1", out, "x"}, exitUsage},
		{"non-numeric", []string{"abc", "1", "8", "16", "1", "1", out}, exitUsage},
		{"negative", []string{"1", "-1", "8", "16", "1", "1", out}, exitUsage},
		{"bad flag", []string{"-nope", "1", "1", "8", "16", "1", "1", out}, exitUsage},
		{"bad decimator", []string{"-decimator", "linear", "1", "1", "8", "16", "1", "0", out}, exitUsage},
		{"bad backend", []string{"-backend", "alsa", "1", "1", "8", "16", "1", "0", out}, exitUsage},
		{"no channels", []string{"0", "1", "8", "16", "1", "1", out}, exitParams},
		{"wide frac", []string{"1", "1", "62", "16", "1", "1", out}, exitParams},
		{"zero freq res", []string{"1", "1", "8", "16", "0", "1", out}, exitParams},
		{"negative growth rate", []string{"2", "1024", "8", "16", "1", "1", out}, exitParams},
		{"duration overflow", []string{"1", "1", "8", "16", "1", "18446744073709551615", out}, exitParams},
		{"huge number", []string{"1", "1", "8", "16", "1", "18446744073709551616", out}, exitUsage},
		{"huge channel count", []string{"18446744073709551616", "1", "8", "16", "1", "1", out}, exitUsage},
		{"one bit phase", []string{"1", "1", "8", "1", "1", "1", out}, exitParams},
		{"missing dir", []string{"1", "1", "8", "16", "1", "0", filepath.Join(dir, "nope", "out.wav")}, exitOutput},
		{"help", []string{"-h"}, exitOK},
	} {
		code, _, stderr := runArgs(t, c.args...)
		if code != c.want {
			t.Errorf("%s: run(%q) = %d, want: %d\n%s", c.name, c.args, code, c.want, stderr)
		}
		if c.want == exitUsage && !strings.Contains(stderr, "Usage: ls-sim") && !strings.Contains(stderr, "ls-sim: ") {
			t.Errorf("%s: run(%q) printed nothing to stderr", c.name, c.args)
		}
	}
}

func TestUsageOnWrongCount(t *testing.T) {
	_, _, stderr := runArgs(t, "1", "1", "8", "16", "1")
	if !strings.Contains(stderr, "Usage: ls-sim [flags] N_OSC R_INC FRAC PHASE_BITS FREQ_RES duration filename") {
		t.Errorf("stderr = %q, want the usage line", stderr)
	}
}

func TestZeroDuration(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.wav")
	code, stdout, stderr := runArgs(t, "-channels", "3", "1", "8", "16", "1", "0", out)
	if code != exitOK {
		t.Fatalf("run = %d, want: %d\n%s", code, exitOK, stderr)
	}
	if !strings.Contains(stdout, "channel") || strings.Count(stdout, "\n") != 4 {
		t.Errorf("-channels printed %q, want a header and 3 rows", stdout)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("no output file: %v", err)
	}
}

func TestOneSecond(t *testing.T) {
	if testing.Short() {
		t.Skip("renders a second of audio, twice")
	}
	dir := t.TempDir()
	var files [2][]byte
	for i := range files {
		out := filepath.Join(dir, "out.wav")
		if i == 1 {
			out = filepath.Join(dir, "again.wav")
		}
		code, _, stderr := runArgs(t, "1", "1", "8", "16", "1", "1", out)
		if code != exitOK {
			t.Fatalf("run = %d, want: %d\n%s", code, exitOK, stderr)
		}
		samples, format, err := lsio.ReadWAV(out)
		if err != nil {
			t.Fatal(err)
		}
		want := lsio.Format{SampleRate: lssim.SampleRate, BitDepth: lssim.BitDepth, Channels: lssim.Channels}
		if format != want {
			t.Errorf("format = %v, want: %v", format, want)
		}
		if len(samples) != lssim.SampleRate {
			t.Errorf("wrote %d samples, want: %d", len(samples), lssim.SampleRate)
		}
		if files[i], err = os.ReadFile(out); err != nil {
			t.Fatal(err)
		}
	}
	if !bytes.Equal(files[0], files[1]) {
		t.Errorf("two renders with the same arguments differ")
	}
}

func TestStatsWithBlip(t *testing.T) {
	if testing.Short() {
		t.Skip("renders a second of audio")
	}
	out := filepath.Join(t.TempDir(), "out.wav")
	code, stdout, stderr := runArgs(t, "-stats", "-progress", "-decimator", "blip", "4", "3", "10", "12", "2", "1", out)
	if code != exitOK {
		t.Fatalf("run = %d, want: %d\n%s", code, exitOK, stderr)
	}
	if !strings.Contains(stdout, "48000 samples") || !strings.Contains(stdout, "dominant") {
		t.Errorf("-stats printed %q, want a summary of 48000 samples", stdout)
	}
	if !strings.Contains(stderr, "25,200,000 / 25,200,000 cycles") {
		t.Errorf("-progress printed %q, want a final cycle count", stderr)
	}
}

func TestStartProfiles(t *testing.T) {
	dir := t.TempDir()
	finish, err := startProfiles(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := finish(); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"cpu.pprof", "mem.pprof"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("no %s: %v", name, err)
		}
	}
}

func TestStartProfilesStopsOnError(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "mem.pprof"), 0o755); err != nil {
		t.Fatal(err)
	}
	if _, err := startProfiles(dir); err == nil {
		t.Fatalf("startProfiles(%q) succeeded with mem.pprof a directory", dir)
	}
	// a second cpu profile can only start if the first was stopped.
	if err := pprof.StartCPUProfile(io.Discard); err != nil {
		t.Errorf("cpu profile still running after a failed start: %v", err)
	}
	pprof.StopCPUProfile()
}
