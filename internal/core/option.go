package core

import "github.com/shopspring/decimal"

// fieldState distinguishes "leave unchanged" from "reset to empty" from
// "replace with a value" in patch requests.
type fieldState int

const (
	fieldUnset fieldState = iota
	fieldClear
	fieldSet
)

// Field is an optional patch value. The zero Field means the caller did not
// mention the field at all; Clear means the caller asked to empty it; Set
// carries a replacement value.
type Field[T any] struct {
	state fieldState
	value T
}

// Set returns a Field carrying a replacement value.
func Set[T any](v T) Field[T] {
	return Field[T]{state: fieldSet, value: v}
}

// Clear returns a Field that resets the target to its zero value.
func Clear[T any]() Field[T] {
	return Field[T]{state: fieldClear}
}

// IsUnset reports whether the field was not mentioned by the caller.
func (f Field[T]) IsUnset() bool { return f.state == fieldUnset }

// Apply resolves the patch against the current value: unchanged when unset,
// the zero value on clear, the carried value on set.
func (f Field[T]) Apply(current T) T {
	switch f.state {
	case fieldClear:
		var zero T
		return zero
	case fieldSet:
		return f.value
	default:
		return current
	}
}

// RecurringItemPatch is a partial update of a recurring item. Unset fields
// stay untouched; Clear on EndDate reopens the schedule, Clear on
// CategoryID detaches the item from its category.
type RecurringItemPatch struct {
	Name       Field[string]
	CategoryID Field[int64]
	Status     Field[ItemStatus]
	Amount     Field[decimal.Decimal]
	EndDate    Field[Date]
}

// ApplyTo resolves the patch against an existing item and returns the
// result; the input is left unchanged.
func (p RecurringItemPatch) ApplyTo(item RecurringItem) RecurringItem {
	item.Name = p.Name.Apply(item.Name)
	item.CategoryID = p.CategoryID.Apply(item.CategoryID)
	item.Status = p.Status.Apply(item.Status)
	item.Amount = p.Amount.Apply(item.Amount)
	item.EndDate = p.EndDate.Apply(item.EndDate)
	return item
}
