package services

import "errors"

// Validation failures surfaced to the caller. They are deterministic for a
// given input and carry no retry semantics.
var (
	// ErrPeriodNotConfigured: the budget has no period configuration, so no
	// period math is possible for it.
	ErrPeriodNotConfigured = errors.New("budget period is not configured")

	// ErrPeriodMisaligned: a write referenced a period start date that is
	// not an actual computed period boundary for the budget.
	ErrPeriodMisaligned = errors.New("date is not a period boundary for this budget")

	// ErrGroupCategory: expected amounts can only be written against leaf
	// categories; group figures are always derived from their children.
	ErrGroupCategory = errors.New("cannot set an expected amount on a group category")

	// ErrUnknownCategory: the category does not exist in the budget's
	// workspace.
	ErrUnknownCategory = errors.New("unknown category")
)
