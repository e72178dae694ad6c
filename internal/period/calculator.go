// Package period resolves a budget's period configuration into concrete
// calendar ranges. Every function is a pure, total computation: any
// well-formed configuration and any date yield exactly one period.
package period

import (
	"sort"

	"buste/internal/core"
)

// Compute returns the period containing ref under the given configuration.
//
// Anchor days beyond a month's length are clamped to its last day, which
// makes period lengths vary and lets a semimonthly period cross a month
// boundary (anchors 15/31 in February run the hi sub-period from the 28th
// into March).
func Compute(cfg core.PeriodConfig, ref core.Date) core.PeriodRange {
	if cfg.Mode == core.PeriodModeInterval {
		return intervalPeriod(cfg, ref)
	}
	anchors := anchorsAround(cfg, ref)

	// Latest anchor on or before ref starts the period; the next anchor
	// bounds it.
	var start, next core.Date
	for _, a := range anchors {
		if !a.After(ref) {
			start = a
			continue
		}
		next = a
		break
	}
	return core.PeriodRange{Start: start, End: next.AddDays(-1)}
}

// Next returns the period immediately after cur. Periods are contiguous, so
// it is the period containing the day after cur ends.
func Next(cfg core.PeriodConfig, cur core.PeriodRange) core.PeriodRange {
	return Compute(cfg, cur.End.AddDays(1))
}

// Previous returns the period immediately before cur. It is the exact
// inverse of Next.
func Previous(cfg core.PeriodConfig, cur core.PeriodRange) core.PeriodRange {
	return Compute(cfg, cur.Start.AddDays(-1))
}

func intervalPeriod(cfg core.PeriodConfig, ref core.Date) core.PeriodRange {
	days := daysBetween(cfg.IntervalAnchor, ref)
	k := floorDiv(days, cfg.IntervalDays)
	start := cfg.IntervalAnchor.AddDays(k * cfg.IntervalDays)
	return core.PeriodRange{Start: start, End: start.AddDays(cfg.IntervalDays - 1)}
}

// anchorsAround lists the clamped anchor dates in the months surrounding
// ref, sorted and deduplicated. Two months on each side is enough to bracket
// ref's period under both anchor modes.
func anchorsAround(cfg core.PeriodConfig, ref core.Date) []core.Date {
	days := []int{cfg.AnchorDay}
	if cfg.Mode == core.PeriodModeSemiMonthly {
		days = append(days, cfg.SecondAnchorDay)
	}

	var anchors []core.Date
	for off := -2; off <= 2; off++ {
		m := ref.Time.AddDate(0, off, -(ref.Day() - 1)) // first of the month
		for _, day := range days {
			anchors = append(anchors, clampToMonth(m.Year(), int(m.Month()), day))
		}
	}
	sort.Slice(anchors, func(i, j int) bool { return anchors[i].Before(anchors[j]) })

	// Clamping can land two anchor days on the same date in a short month.
	out := anchors[:1]
	for _, a := range anchors[1:] {
		if !a.Equal(out[len(out)-1]) {
			out = append(out, a)
		}
	}
	return out
}

func clampToMonth(year, month, day int) core.Date {
	if last := core.DaysInMonth(year, month); day > last {
		day = last
	}
	return core.NewDate(year, month, day)
}

func daysBetween(from, to core.Date) int {
	return int(to.Time.Sub(from.Time).Hours() / 24)
}

// floorDiv divides rounding toward negative infinity, so periods before the
// interval anchor resolve to negative multiples.
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
