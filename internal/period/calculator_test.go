package period

import (
	"testing"

	"buste/internal/core"
)

func monthlyCfg(day int) core.PeriodConfig {
	return core.PeriodConfig{Mode: core.PeriodModeMonthly, AnchorDay: day}
}

func semiCfg(lo, hi int) core.PeriodConfig {
	return core.PeriodConfig{Mode: core.PeriodModeSemiMonthly, AnchorDay: lo, SecondAnchorDay: hi}
}

func intervalCfg(days int, anchor core.Date) core.PeriodConfig {
	return core.PeriodConfig{Mode: core.PeriodModeInterval, IntervalDays: days, IntervalAnchor: anchor}
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name      string
		cfg       core.PeriodConfig
		ref       core.Date
		wantStart core.Date
		wantEnd   core.Date
	}{
		{
			name:      "monthly anchor 1 mid month",
			cfg:       monthlyCfg(1),
			ref:       core.NewDate(2026, 2, 15),
			wantStart: core.NewDate(2026, 2, 1),
			wantEnd:   core.NewDate(2026, 2, 28),
		},
		{
			name:      "monthly anchor 1 last day of january",
			cfg:       monthlyCfg(1),
			ref:       core.NewDate(2026, 1, 31),
			wantStart: core.NewDate(2026, 1, 1),
			wantEnd:   core.NewDate(2026, 1, 31),
		},
		{
			name:      "monthly anchor 15 before the anchor",
			cfg:       monthlyCfg(15),
			ref:       core.NewDate(2026, 3, 10),
			wantStart: core.NewDate(2026, 2, 15),
			wantEnd:   core.NewDate(2026, 3, 14),
		},
		{
			name:      "monthly anchor 31 clamps across february",
			cfg:       monthlyCfg(31),
			ref:       core.NewDate(2026, 2, 15),
			wantStart: core.NewDate(2026, 1, 31),
			wantEnd:   core.NewDate(2026, 2, 27),
		},
		{
			name:      "monthly anchor 31 leap february",
			cfg:       monthlyCfg(31),
			ref:       core.NewDate(2024, 3, 1),
			wantStart: core.NewDate(2024, 2, 29),
			wantEnd:   core.NewDate(2024, 3, 30),
		},
		{
			name:      "semimonthly hi period clamped at february end crosses into march",
			cfg:       semiCfg(15, 31),
			ref:       core.NewDate(2026, 2, 28),
			wantStart: core.NewDate(2026, 2, 28),
			wantEnd:   core.NewDate(2026, 3, 14),
		},
		{
			name:      "semimonthly lo period",
			cfg:       semiCfg(15, 31),
			ref:       core.NewDate(2026, 2, 20),
			wantStart: core.NewDate(2026, 2, 15),
			wantEnd:   core.NewDate(2026, 2, 27),
		},
		{
			name:      "semimonthly before first anchor of the month",
			cfg:       semiCfg(15, 31),
			ref:       core.NewDate(2026, 2, 10),
			wantStart: core.NewDate(2026, 1, 31),
			wantEnd:   core.NewDate(2026, 2, 14),
		},
		{
			name:      "interval 14 days",
			cfg:       intervalCfg(14, core.NewDate(2026, 2, 6)),
			ref:       core.NewDate(2026, 2, 20),
			wantStart: core.NewDate(2026, 2, 20),
			wantEnd:   core.NewDate(2026, 3, 5),
		},
		{
			name:      "interval reference on anchor",
			cfg:       intervalCfg(14, core.NewDate(2026, 2, 6)),
			ref:       core.NewDate(2026, 2, 6),
			wantStart: core.NewDate(2026, 2, 6),
			wantEnd:   core.NewDate(2026, 2, 19),
		},
		{
			name:      "interval before the anchor date",
			cfg:       intervalCfg(14, core.NewDate(2026, 2, 6)),
			ref:       core.NewDate(2026, 1, 30),
			wantStart: core.NewDate(2026, 1, 23),
			wantEnd:   core.NewDate(2026, 2, 5),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(tt.cfg, tt.ref)
			if !got.Start.Equal(tt.wantStart) || !got.End.Equal(tt.wantEnd) {
				t.Errorf("Compute() = (%s, %s), want (%s, %s)", got.Start, got.End, tt.wantStart, tt.wantEnd)
			}
			if !got.Contains(tt.ref) {
				t.Errorf("Compute() = (%s, %s) does not contain reference %s", got.Start, got.End, tt.ref)
			}
		})
	}
}

// Every config must produce gapless, non-overlapping periods, and stepping
// forward then back must return the original period.
func TestPeriodContiguity(t *testing.T) {
	configs := map[string]core.PeriodConfig{
		"monthly day 1":       monthlyCfg(1),
		"monthly day 15":      monthlyCfg(15),
		"monthly day 31":      monthlyCfg(31),
		"semimonthly 1/16":    semiCfg(1, 16),
		"semimonthly 15/31":   semiCfg(15, 31),
		"semimonthly 28/31":   semiCfg(28, 31),
		"interval 14 days":    intervalCfg(14, core.NewDate(2026, 2, 6)),
		"interval 30 days":    intervalCfg(30, core.NewDate(2023, 12, 25)),
		"interval single day": intervalCfg(1, core.NewDate(2024, 2, 29)),
	}

	for name, cfg := range configs {
		t.Run(name, func(t *testing.T) {
			// Walk two years crossing leap-year February 2024.
			ref := core.NewDate(2023, 11, 5)
			for ref.Before(core.NewDate(2025, 11, 5)) {
				p := Compute(cfg, ref)
				if !p.Contains(ref) {
					t.Fatalf("period (%s, %s) does not contain %s", p.Start, p.End, ref)
				}

				next := Next(cfg, p)
				if !next.Start.Equal(p.End.AddDays(1)) {
					t.Fatalf("gap or overlap: period ends %s, next starts %s", p.End, next.Start)
				}
				back := Previous(cfg, next)
				if !back.Equal(p) {
					t.Fatalf("Previous(Next(p)) = (%s, %s), want (%s, %s)", back.Start, back.End, p.Start, p.End)
				}

				ref = ref.AddDays(7)
			}
		})
	}
}

func TestComputeStability(t *testing.T) {
	// Every date of a period must resolve to that same period.
	cfg := semiCfg(15, 31)
	p := Compute(cfg, core.NewDate(2026, 2, 28))
	for d := p.Start; !d.After(p.End); d = d.AddDays(1) {
		if got := Compute(cfg, d); !got.Equal(p) {
			t.Fatalf("Compute(%s) = (%s, %s), want (%s, %s)", d, got.Start, got.End, p.Start, p.End)
		}
	}
}
