package enrollment

import "testing"

func Test_computePercent(t *testing.T) {
	valid := []string{"m0-l0", "m0-l1", "m1-l0", "m1-l1"}

	tests := []struct {
		name      string
		completed []string
		valid     []string
		wantPct   int
		wantOK    bool
	}{
		{name: "course without lectures", completed: []string{"m0-l0"}},
		{name: "nothing completed", valid: valid, wantOK: true},
		{name: "half way", completed: []string{"m0-l0", "m1-l1"}, valid: valid, wantPct: 50, wantOK: true},
		{name: "stale completions do not count", completed: []string{"m0-l0", "m9-l9"}, valid: valid, wantPct: 25, wantOK: true},
		{name: "all done", completed: valid, valid: valid, wantPct: 100, wantOK: true},
		{name: "rounds to nearest", completed: []string{"m0-l0"}, valid: []string{"m0-l0", "m0-l1", "m1-l0"}, wantPct: 33, wantOK: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pct, ok := computePercent(tt.completed, tt.valid)
			if pct != tt.wantPct || ok != tt.wantOK {
				t.Errorf("computePercent() = (%d, %v), want (%d, %v)", pct, ok, tt.wantPct, tt.wantOK)
			}
		})
	}
}
