package lssim

import (
	"errors"
	"math"
	"testing"
)

func TestValidate(t *testing.T) {
	for _, c := range []struct {
		name string
		p    Params
		ok   bool
	}{
		{"smallest", Params{NOsc: 1, RInc: 1, Frac: 8, PhaseBits: 16, FreqRes: 1}, true},
		{"r of 4", Params{NOsc: 1, RInc: 0, Frac: 8, PhaseBits: 16, FreqRes: 1}, true},
		{"last r is 0", Params{NOsc: 4, RInc: 256, Frac: 8, PhaseBits: 16, FreqRes: 1}, true},
		{"widest", Params{NOsc: MaxOscillators, RInc: 1, Frac: MaxFrac, PhaseBits: 64, FreqRes: 1 << 20}, true},
		{"no channels", Params{NOsc: 0, RInc: 1, Frac: 8, PhaseBits: 16, FreqRes: 1}, false},
		{"too many channels", Params{NOsc: MaxOscillators + 1, RInc: 0, Frac: 8, PhaseBits: 16, FreqRes: 1}, false},
		{"zero frac", Params{NOsc: 1, RInc: 0, Frac: 0, PhaseBits: 16, FreqRes: 1}, false},
		{"wide frac", Params{NOsc: 1, RInc: 0, Frac: MaxFrac + 1, PhaseBits: 16, FreqRes: 1}, false},
		{"zero phase bits", Params{NOsc: 1, RInc: 1, Frac: 8, PhaseBits: 0, FreqRes: 1}, false},
		{"one bit phase", Params{NOsc: 1, RInc: 1, Frac: 8, PhaseBits: 1, FreqRes: 1}, false},
		{"two bit phase", Params{NOsc: 1, RInc: 1, Frac: 8, PhaseBits: 2, FreqRes: 1}, true},
		{"wide phase", Params{NOsc: 1, RInc: 1, Frac: 8, PhaseBits: 65, FreqRes: 1}, false},
		{"zero freq res", Params{NOsc: 1, RInc: 1, Frac: 8, PhaseBits: 16, FreqRes: 0}, false},
		{"negative r", Params{NOsc: 5, RInc: 256, Frac: 8, PhaseBits: 16, FreqRes: 1}, false},
		{"r_inc overflow", Params{NOsc: 1 << 16, RInc: 1 << 60, Frac: 8, PhaseBits: 16, FreqRes: 1}, false},
	} {
		err := c.p.Validate()
		if c.ok && err != nil {
			t.Errorf("%s: Validate(%v) = %v, want: nil", c.name, c.p, err)
		}
		if !c.ok && !errors.Is(err, ErrInvalidParams) {
			t.Errorf("%s: Validate(%v) = %v, want: %v", c.name, c.p, err, ErrInvalidParams)
		}
	}
}

func TestGrowthRate(t *testing.T) {
	p := Params{NOsc: 3, RInc: 5, Frac: 8, PhaseBits: 16, FreqRes: 1}
	for i, want := range []uint64{1019, 1014, 1009} {
		if got := p.GrowthRate(i); got != want {
			t.Errorf("GrowthRate(%d) = %d, want: %d", i, got, want)
		}
	}
}

func TestCycleCount(t *testing.T) {
	for _, c := range []struct {
		in   uint64
		want uint64
	}{
		{0, 0},
		{1, 25_200_000},
		{60, 1_512_000_000},
		{math.MaxUint64 / ClockHz, math.MaxUint64 / ClockHz * ClockHz},
	} {
		got, err := CycleCount(c.in)
		if err != nil || got != c.want {
			t.Errorf("CycleCount(%d) = %d, %v, want: %d, nil", c.in, got, err, c.want)
		}
	}
	if got, err := CycleCount(math.MaxUint64/ClockHz + 1); !errors.Is(err, ErrInvalidParams) {
		t.Errorf("CycleCount(overflow) = %d, %v, want: %v", got, err, ErrInvalidParams)
	}
}

func TestSampleCount(t *testing.T) {
	for _, c := range []struct {
		in   uint64
		want uint64
	}{
		{0, 0},
		{1, 1},
		{525, 1},
		{526, 2},
		{25_200_000, 48_000},
		{10 * 25_200_000, 480_000},
		{math.MaxUint64, 35_136_655_378_494_385},
	} {
		if got := SampleCount(c.in); got != c.want {
			t.Errorf("SampleCount(%d) = %d, want: %d", c.in, got, c.want)
		}
	}
}

func TestLFSRPeriod(t *testing.T) {
	l := NewLFSR()
	start := l.state
	for i := 1; i <= 1<<16; i++ {
		if l.Next() == start {
			if i != 1<<16-1 {
				t.Errorf("%v: period %d, want: %d", l, i, 1<<16-1)
			}
			return
		}
	}
	t.Errorf("%v: never returned to %#x", l, start)
}

func TestSeeds(t *testing.T) {
	for frac := uint64(1); frac <= MaxFrac; frac++ {
		p := Params{NOsc: 64, RInc: 0, Frac: frac, PhaseBits: 16, FreqRes: 1}
		a, b := Seeds(p), Seeds(p)
		hi := p.Format().Max()
		for i := range a {
			if a[i] != b[i] {
				t.Fatalf("frac %d: Seeds not deterministic at %d: %#x != %#x", frac, i, a[i], b[i])
			}
			if a[i] == 0 || a[i] > hi {
				t.Errorf("frac %d: seed %d = %#x, want in [1, %#x]", frac, i, a[i], hi)
			}
		}
	}
	p := Params{NOsc: 1000, RInc: 0, Frac: 16, PhaseBits: 16, FreqRes: 1}
	seen := make(map[uint64]int)
	for i, s := range Seeds(p) {
		if j, ok := seen[s]; ok {
			t.Errorf("seeds %d and %d are both %#x", j, i, s)
		}
		seen[s] = i
	}
}
