// Package recurrence expands recurring charge definitions into concrete
// occurrence dates inside a period window.
package recurrence

import (
	"sort"

	"github.com/shopspring/decimal"

	"buste/internal/core"
)

// Occurrence is one scheduled instance of a recurring item. Amount is the
// expected figure for that date (the item's base amount unless the date has
// an override). Recorded is the amount of a transaction already booked
// against the occurrence, reported for reconciliation only; it never feeds
// back into Amount.
type Occurrence struct {
	Date     core.Date
	Amount   decimal.Decimal
	Recorded *decimal.Decimal
}

// Occurrences returns the item's occurrences inside the window, sorted
// ascending by date. Each anchor is expanded independently and the results
// merged; two anchors landing on the same day stay two occurrences, since
// each anchor is a separately scheduled charge.
//
// Paused and cancelled items, and windows touching no occurrence, yield an
// empty result, never an error.
func Occurrences(item core.RecurringItem, window core.PeriodRange) []Occurrence {
	if !item.Active() {
		return nil
	}

	lower := window.Start
	if item.StartDate.After(lower) {
		lower = item.StartDate
	}
	upper := window.End
	if !item.EndDate.IsZero() {
		// End date is exclusive: nothing on or after it.
		if last := item.EndDate.AddDays(-1); last.Before(upper) {
			upper = last
		}
	}
	if upper.Before(lower) {
		return nil
	}

	var out []Occurrence
	for _, anchor := range item.Anchors {
		out = append(out, expandAnchor(item, anchor, lower, upper)...)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Count returns how many occurrences fall inside the window.
func Count(item core.RecurringItem, window core.PeriodRange) int {
	return len(Occurrences(item, window))
}

func expandAnchor(item core.RecurringItem, anchor core.Date, lower, upper core.Date) []Occurrence {
	var out []Occurrence

	// Start one step below the estimated first multiple so clamping can
	// never skip the boundary occurrence.
	for n := stepEstimate(item, anchor, lower) - 1; ; n++ {
		d := occurrenceAt(item, anchor, n)
		if d.After(upper) {
			break
		}
		if d.Before(lower) {
			continue
		}
		out = append(out, Occurrence{
			Date:     d,
			Amount:   amountFor(item, d),
			Recorded: recordedFor(item, d),
		})
	}
	return out
}

// occurrenceAt computes anchor advanced by n whole steps. Month and year
// steps keep the anchor's day-of-month and clamp it to the target month's
// length, so an anchor on the 31st lands on the 30th or the 28th/29th
// rather than rolling over into the next month.
func occurrenceAt(item core.RecurringItem, anchor core.Date, n int) core.Date {
	step := n * item.Quantity
	switch item.Every {
	case core.Daily:
		return anchor.AddDays(step)
	case core.Weekly:
		return anchor.AddDays(step * 7)
	case core.Yearly:
		step *= 12
		fallthrough
	default: // core.Monthly
		monthStart := anchor.Time.AddDate(0, step, -(anchor.Day() - 1))
		day := anchor.Day()
		if last := core.DaysInMonth(monthStart.Year(), int(monthStart.Month())); day > last {
			day = last
		}
		return core.NewDate(monthStart.Year(), int(monthStart.Month()), day)
	}
}

// stepEstimate returns an n whose occurrence is at or before the lower
// bound. It only needs to be a safe floor; the expansion walks forward from
// it.
func stepEstimate(item core.RecurringItem, anchor core.Date, lower core.Date) int {
	switch item.Every {
	case core.Daily:
		return floorDiv(daysBetween(anchor, lower), item.Quantity)
	case core.Weekly:
		return floorDiv(daysBetween(anchor, lower), item.Quantity*7)
	case core.Yearly:
		return floorDiv(monthsBetween(anchor, lower), item.Quantity*12)
	default: // core.Monthly
		return floorDiv(monthsBetween(anchor, lower), item.Quantity)
	}
}

func amountFor(item core.RecurringItem, d core.Date) decimal.Decimal {
	if override, ok := item.Overrides[d]; ok {
		return override
	}
	return item.Amount
}

func recordedFor(item core.RecurringItem, d core.Date) *decimal.Decimal {
	if recorded, ok := item.Recorded[d]; ok {
		return &recorded
	}
	return nil
}

func daysBetween(from, to core.Date) int {
	return int(to.Time.Sub(from.Time).Hours() / 24)
}

func monthsBetween(from, to core.Date) int {
	return (to.Year()-from.Year())*12 + to.Month() - from.Month()
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
