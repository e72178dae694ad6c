// Package services orchestrates the budgeting engine: it resolves periods,
// gathers figure snapshots from the ledger, and guards the write paths the
// engine itself leaves to its caller.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"buste/internal/core"
	"buste/internal/envelope"
	"buste/internal/ledger"
	applog "buste/internal/log"
	"buste/internal/period"
	"buste/internal/recurrence"
)

// BudgetService is the host around the pure engine packages. All state
// lives in the ledger; the service itself is safe for concurrent use.
type BudgetService struct {
	ledger ledger.Ledger
}

func NewBudgetService(l ledger.Ledger) *BudgetService {
	return &BudgetService{ledger: l}
}

// ScheduledCharge is one recurring item expanded inside a window.
type ScheduledCharge struct {
	ItemID      int64
	Name        string
	CategoryID  int64
	Occurrences []recurrence.Occurrence
	Count       int
	Total       decimal.Decimal
}

// ResolvePeriod returns the budget's period containing ref.
func (s *BudgetService) ResolvePeriod(ctx context.Context, budgetID int64, ref core.Date) (core.PeriodRange, error) {
	cfg, _, err := s.periodConfig(ctx, budgetID)
	if err != nil {
		return core.PeriodRange{}, err
	}
	return period.Compute(cfg, ref), nil
}

// NextPeriod steps one period forward from cur.
func (s *BudgetService) NextPeriod(ctx context.Context, budgetID int64, cur core.PeriodRange) (core.PeriodRange, error) {
	cfg, _, err := s.periodConfig(ctx, budgetID)
	if err != nil {
		return core.PeriodRange{}, err
	}
	return period.Next(cfg, cur), nil
}

// PreviousPeriod steps one period back from cur.
func (s *BudgetService) PreviousPeriod(ctx context.Context, budgetID int64, cur core.PeriodRange) (core.PeriodRange, error) {
	cfg, _, err := s.periodConfig(ctx, budgetID)
	if err != nil {
		return core.PeriodRange{}, err
	}
	return period.Previous(cfg, cur), nil
}

// PeriodView computes the envelope view for the period containing ref.
//
// The snapshot is gathered from the ledger in one concurrent pass: the
// current and the immediately preceding period's figures, the category
// tree, rollover policies, recurring items, and linked account balances.
func (s *BudgetService) PeriodView(ctx context.Context, budgetID int64, ref core.Date) (envelope.View, error) {
	cfg, budget, err := s.periodConfig(ctx, budgetID)
	if err != nil {
		return envelope.View{}, err
	}

	cur := period.Compute(cfg, ref)
	prev := period.Previous(cfg, cur)

	var (
		categories              []core.Category
		policies                map[int64]core.RolloverPolicy
		curExpected, prevExpect map[int64]decimal.Decimal
		curActivity, prevActive map[int64]decimal.Decimal
		items                   []core.RecurringItem
		linkedIDs               []int64
		balance                 decimal.Decimal
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		categories, err = s.ledger.Categories(gctx, budget.WorkspaceID)
		return err
	})
	g.Go(func() (err error) {
		policies, err = s.ledger.Policies(gctx, budgetID)
		return err
	})
	g.Go(func() (err error) {
		curExpected, err = s.ledger.ExpectedAmounts(gctx, budgetID, cur.Start)
		return err
	})
	g.Go(func() (err error) {
		prevExpect, err = s.ledger.ExpectedAmounts(gctx, budgetID, prev.Start)
		return err
	})
	g.Go(func() (err error) {
		curActivity, err = s.ledger.ActivityByCategory(gctx, budgetID, cur.Start, cur.End)
		return err
	})
	g.Go(func() (err error) {
		prevActive, err = s.ledger.ActivityByCategory(gctx, budgetID, prev.Start, prev.End)
		return err
	})
	g.Go(func() (err error) {
		items, err = s.ledger.RecurringItems(gctx, budget.WorkspaceID)
		return err
	})
	g.Go(func() (err error) {
		// Balance depends on the linked account set, so both run in the
		// same goroutine.
		linkedIDs, err = s.ledger.LinkedAccounts(gctx, budgetID)
		if err != nil {
			return err
		}
		balance, err = s.ledger.BalanceSum(gctx, linkedIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		return envelope.View{}, fmt.Errorf("gather period snapshot: %w", err)
	}

	view := envelope.BuildView(envelope.Input{
		Period:        cur,
		Categories:    categories,
		Current:       mergeFigures(curExpected, curActivity, recurringByCategory(items, linkedIDs, cur)),
		Previous:      mergeFigures(prevExpect, prevActive, nil),
		Policies:      policies,
		LinkedBalance: balance,
	})

	slog.InfoContext(ctx, "Computed period view",
		applog.FieldBudgetID, budgetID,
		applog.FieldPeriodStart, cur.Start.String(),
		applog.FieldPeriodEnd, cur.End.String(),
		"categories", len(categories),
		"left_to_budget", view.LeftToBudget.String())

	return view, nil
}

// SetExpectedAmount records an expected amount for one category and period.
// The period start must be an exact period boundary and the category must
// be a leaf; group figures are always derived.
func (s *BudgetService) SetExpectedAmount(ctx context.Context, budgetID, categoryID int64, periodStart core.Date, amount decimal.Decimal) error {
	cfg, budget, err := s.periodConfig(ctx, budgetID)
	if err != nil {
		return err
	}

	if computed := period.Compute(cfg, periodStart); !computed.Start.Equal(periodStart) {
		return fmt.Errorf("%w: %s starts %s", ErrPeriodMisaligned, periodStart, computed.Start)
	}

	categories, err := s.ledger.Categories(ctx, budget.WorkspaceID)
	if err != nil {
		return fmt.Errorf("load categories: %w", err)
	}
	found := false
	for _, c := range categories {
		if c.ID == categoryID {
			found = true
		}
		if c.ParentID == categoryID {
			return ErrGroupCategory
		}
	}
	if !found {
		return fmt.Errorf("%w: %d", ErrUnknownCategory, categoryID)
	}

	if err := s.ledger.SetExpectedAmount(ctx, budgetID, categoryID, periodStart, amount); err != nil {
		return fmt.Errorf("set expected amount: %w", err)
	}

	slog.InfoContext(ctx, "Expected amount saved",
		applog.FieldBudgetID, budgetID,
		applog.FieldCategoryID, categoryID,
		applog.FieldPeriodStart, periodStart.String(),
		applog.FieldAmount, amount.String())
	return nil
}

// UpcomingCharges expands every active recurring item of the budget's
// workspace inside the window, restricted to linked accounts.
func (s *BudgetService) UpcomingCharges(ctx context.Context, budgetID int64, window core.PeriodRange) ([]ScheduledCharge, error) {
	budget, err := s.ledger.Budget(ctx, budgetID)
	if err != nil {
		return nil, fmt.Errorf("load budget: %w", err)
	}
	items, err := s.ledger.RecurringItems(ctx, budget.WorkspaceID)
	if err != nil {
		return nil, fmt.Errorf("load recurring items: %w", err)
	}
	linkedIDs, err := s.ledger.LinkedAccounts(ctx, budgetID)
	if err != nil {
		return nil, fmt.Errorf("load linked accounts: %w", err)
	}

	linked := make(map[int64]bool, len(linkedIDs))
	for _, id := range linkedIDs {
		linked[id] = true
	}

	var out []ScheduledCharge
	for _, item := range items {
		if !item.Active() || !linked[item.AccountID] {
			continue
		}
		occurrences := recurrence.Occurrences(item, window)
		if len(occurrences) == 0 {
			continue
		}
		total := decimal.Zero
		for _, o := range occurrences {
			total = total.Add(o.Amount)
		}
		out = append(out, ScheduledCharge{
			ItemID:      item.ID,
			Name:        item.Name,
			CategoryID:  item.CategoryID,
			Occurrences: occurrences,
			Count:       len(occurrences),
			Total:       total,
		})
	}
	return out, nil
}

// UpdateRecurringItem applies a partial update to a recurring item.
func (s *BudgetService) UpdateRecurringItem(ctx context.Context, itemID int64, patch core.RecurringItemPatch) (core.RecurringItem, error) {
	updated, err := s.ledger.UpdateRecurringItem(ctx, itemID, patch)
	if err != nil {
		return core.RecurringItem{}, fmt.Errorf("update recurring item: %w", err)
	}
	slog.InfoContext(ctx, "Recurring item updated",
		applog.FieldItemID, itemID,
		"status", string(updated.Status),
		applog.FieldAmount, updated.Amount.String())
	return updated, nil
}

func (s *BudgetService) periodConfig(ctx context.Context, budgetID int64) (core.PeriodConfig, core.Budget, error) {
	budget, err := s.ledger.Budget(ctx, budgetID)
	if err != nil {
		return core.PeriodConfig{}, core.Budget{}, fmt.Errorf("load budget: %w", err)
	}
	if budget.Period == nil {
		return core.PeriodConfig{}, core.Budget{}, ErrPeriodNotConfigured
	}
	if err := budget.Period.Validate(); err != nil {
		return core.PeriodConfig{}, core.Budget{}, fmt.Errorf("period config for budget %d: %w", budgetID, err)
	}
	return *budget.Period, budget, nil
}

// recurringByCategory sums occurrence amounts per category over the window.
// Uncategorized items, inactive items, and items on accounts outside the
// budget contribute nothing.
func recurringByCategory(items []core.RecurringItem, linkedIDs []int64, window core.PeriodRange) map[int64]decimal.Decimal {
	linked := make(map[int64]bool, len(linkedIDs))
	for _, id := range linkedIDs {
		linked[id] = true
	}

	out := make(map[int64]decimal.Decimal)
	for _, item := range items {
		if item.CategoryID == 0 || !linked[item.AccountID] {
			continue
		}
		for _, o := range recurrence.Occurrences(item, window) {
			out[item.CategoryID] = out[item.CategoryID].Add(o.Amount)
		}
	}
	return out
}

// mergeFigures assembles per-category PeriodFigures from the three id-keyed
// sums.
func mergeFigures(expected, activity, recurring map[int64]decimal.Decimal) map[int64]core.PeriodFigures {
	out := make(map[int64]core.PeriodFigures)
	for id, v := range expected {
		fig := out[id]
		fig.Expected = v
		out[id] = fig
	}
	for id, v := range activity {
		fig := out[id]
		fig.Activity = v
		out[id] = fig
	}
	for id, v := range recurring {
		fig := out[id]
		fig.RecurringExpected = v
		out[id] = fig
	}
	return out
}
