package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestFieldApply(t *testing.T) {
	var unset Field[string]
	if got := unset.Apply("keep"); got != "keep" {
		t.Errorf("unset Apply = %q, want %q", got, "keep")
	}
	if !unset.IsUnset() {
		t.Error("zero Field reports set")
	}

	if got := Clear[string]().Apply("wipe"); got != "" {
		t.Errorf("Clear Apply = %q, want empty", got)
	}
	if got := Set("new").Apply("old"); got != "new" {
		t.Errorf("Set Apply = %q, want %q", got, "new")
	}
}

func TestRecurringItemPatchApplyTo(t *testing.T) {
	item := RecurringItem{
		ID:         7,
		Name:       "Gym",
		CategoryID: 3,
		AccountID:  1,
		Status:     StatusActive,
		Every:      Monthly,
		Quantity:   1,
		Anchors:    []Date{NewDate(2026, 1, 1)},
		StartDate:  NewDate(2026, 1, 1),
		EndDate:    NewDate(2026, 12, 1),
		Amount:     decimal.NewFromInt(45),
	}

	patch := RecurringItemPatch{
		Status:  Set(StatusPaused),
		Amount:  Set(decimal.NewFromInt(50)),
		EndDate: Clear[Date](),
	}
	got := patch.ApplyTo(item)

	if got.Status != StatusPaused {
		t.Errorf("Status = %s, want paused", got.Status)
	}
	if !got.Amount.Equal(decimal.NewFromInt(50)) {
		t.Errorf("Amount = %s, want 50", got.Amount)
	}
	if !got.EndDate.IsZero() {
		t.Errorf("EndDate = %s, want cleared", got.EndDate)
	}
	// Unset fields stay untouched.
	if got.Name != "Gym" || got.CategoryID != 3 {
		t.Errorf("untouched fields changed: name=%q category=%d", got.Name, got.CategoryID)
	}
	// The original is a value; it must not have been modified.
	if item.Status != StatusActive {
		t.Error("patch mutated its input")
	}
}
