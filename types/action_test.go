package types

import "testing"

func TestActionValid(t *testing.T) {
	for _, a := range []Action{ActionBuy, ActionSell, ActionHold} {
		if !a.Valid() {
			t.Errorf("%s.Valid() = false, want true", a)
		}
	}
	for _, a := range []Action{"", "buy", "ACCUMULATE"} {
		if a.Valid() {
			t.Errorf("%q.Valid() = true, want false", a)
		}
	}
}

func TestFrequencyDays(t *testing.T) {
	tests := []struct {
		frequency Frequency
		want      int
	}{
		{FrequencyDaily, 1},
		{FrequencyWeekly, 7},
		{FrequencyMonthly, 30},
		{Frequency("unknown"), 30},
	}
	for _, tt := range tests {
		if got := tt.frequency.Days(); got != tt.want {
			t.Errorf("%q.Days() = %d, want %d", tt.frequency, got, tt.want)
		}
	}
}
