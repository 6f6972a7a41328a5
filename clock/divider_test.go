package clock

import (
	"errors"
	"testing"
)

func TestNewZero(t *testing.T) {
	if _, err := New(0); !errors.Is(err, ErrZeroModulus) {
		t.Errorf("New(0) error = %v, want: %v", err, ErrZeroModulus)
	}
}

func TestOnePulsePerN(t *testing.T) {
	for _, n := range []uint64{1, 2, 3, 7, 16, 100, 1023} {
		d, err := New(n)
		if err != nil {
			t.Fatalf("New(%d): %v", n, err)
		}
		var cur, next = d, Divider{}
		const windows = 5
		pulses := make([]int, 0, windows*int(n))
		for i := 0; i < windows*int(n); i++ {
			cur.StepInto(&next)
			cur, next = next, cur
			if cur.ModN {
				pulses = append(pulses, i)
			}
		}
		if len(pulses) != windows {
			t.Errorf("n=%d: got %d pulses in %d cycles, want: %d", n, len(pulses), windows*n, windows)
			continue
		}
		for i := 1; i < len(pulses); i++ {
			if gap := pulses[i] - pulses[i-1]; gap != int(n) {
				t.Errorf("n=%d: pulses %d and %d are %d cycles apart, want: %d", n, i-1, i, gap, n)
			}
		}
		// every window of n consecutive cycles holds exactly one pulse.
		for start := 0; start+int(n) <= windows*int(n); start++ {
			count := 0
			for _, p := range pulses {
				if p >= start && p < start+int(n) {
					count++
				}
			}
			if count != 1 {
				t.Errorf("n=%d: cycles [%d, %d) hold %d pulses, want: 1", n, start, start+int(n), count)
				break
			}
		}
	}
}

func TestStepIntoReadsOnlyReceiver(t *testing.T) {
	d, _ := New(4)
	before := d
	var next Divider
	d.StepInto(&next)
	if d != before {
		t.Errorf("StepInto modified its receiver: %+v, want: %+v", d, before)
	}
	if next.counter != 1 || next.ModN {
		t.Errorf("after one step: counter=%d ModN=%v, want: counter=1 ModN=false", next.counter, next.ModN)
	}
}
