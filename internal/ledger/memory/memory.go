// Package memory is an in-memory ledger backend. It backs the default
// runtime configuration and the service tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"buste/internal/core"
)

// entryKey addresses one expected-amount record.
type entryKey struct {
	budgetID    int64
	categoryID  int64
	periodStart core.Date
}

// txn is one booked transaction.
type txn struct {
	BudgetID   int64
	CategoryID int64
	AccountID  int64
	Date       core.Date
	Amount     decimal.Decimal
}

type Store struct {
	mu         sync.Mutex
	budgets    map[int64]core.Budget
	categories map[int64][]core.Category // by workspace
	policies   map[int64]map[int64]core.RolloverPolicy
	entries    map[entryKey]decimal.Decimal
	txns       []txn
	items      map[int64][]core.RecurringItem // by workspace
	linked     map[int64][]int64              // budget -> account ids
	balances   map[int64]decimal.Decimal      // account -> balance
}

func New() *Store {
	return &Store{
		budgets:    make(map[int64]core.Budget),
		categories: make(map[int64][]core.Category),
		policies:   make(map[int64]map[int64]core.RolloverPolicy),
		entries:    make(map[entryKey]decimal.Decimal),
		items:      make(map[int64][]core.RecurringItem),
		linked:     make(map[int64][]int64),
		balances:   make(map[int64]decimal.Decimal),
	}
}

// Seeding helpers. These are plain puts; validation belongs to the service.

func (s *Store) PutBudget(b core.Budget) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budgets[b.ID] = b
}

func (s *Store) PutCategory(workspaceID int64, c core.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[workspaceID] = append(s.categories[workspaceID], c)
}

func (s *Store) PutPolicy(budgetID, categoryID int64, p core.RolloverPolicy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.policies[budgetID] == nil {
		s.policies[budgetID] = make(map[int64]core.RolloverPolicy)
	}
	s.policies[budgetID][categoryID] = p
}

func (s *Store) PutTransaction(budgetID, categoryID, accountID int64, date core.Date, amount decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txns = append(s.txns, txn{BudgetID: budgetID, CategoryID: categoryID, AccountID: accountID, Date: date, Amount: amount})
}

func (s *Store) PutRecurringItem(workspaceID int64, item core.RecurringItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[workspaceID] = append(s.items[workspaceID], item)
}

func (s *Store) LinkAccount(budgetID, accountID int64, balance decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.linked[budgetID] = append(s.linked[budgetID], accountID)
	s.balances[accountID] = balance
}

// Ports.

func (s *Store) Budget(_ context.Context, budgetID int64) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[budgetID]
	if !ok {
		return core.Budget{}, fmt.Errorf("budget %d not found", budgetID)
	}
	return b, nil
}

func (s *Store) Categories(_ context.Context, workspaceID int64) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]core.Category(nil), s.categories[workspaceID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) Policies(_ context.Context, budgetID int64) (map[int64]core.RolloverPolicy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int64]core.RolloverPolicy, len(s.policies[budgetID]))
	for id, p := range s.policies[budgetID] {
		out[id] = p
	}
	return out, nil
}

func (s *Store) ExpectedAmounts(_ context.Context, budgetID int64, periodStart core.Date) (map[int64]decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int64]decimal.Decimal)
	for k, amount := range s.entries {
		if k.budgetID == budgetID && k.periodStart.Equal(periodStart) {
			out[k.categoryID] = amount
		}
	}
	return out, nil
}

func (s *Store) SetExpectedAmount(_ context.Context, budgetID, categoryID int64, periodStart core.Date, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entryKey{budgetID: budgetID, categoryID: categoryID, periodStart: periodStart}] = amount
	return nil
}

func (s *Store) ActivityByCategory(_ context.Context, budgetID int64, from, to core.Date) (map[int64]decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	linked := make(map[int64]bool, len(s.linked[budgetID]))
	for _, id := range s.linked[budgetID] {
		linked[id] = true
	}
	out := make(map[int64]decimal.Decimal)
	for _, t := range s.txns {
		if t.BudgetID != budgetID || !linked[t.AccountID] {
			continue
		}
		if t.Date.Before(from) || t.Date.After(to) {
			continue
		}
		out[t.CategoryID] = out[t.CategoryID].Add(t.Amount)
	}
	return out, nil
}

func (s *Store) RecurringItems(_ context.Context, workspaceID int64) ([]core.RecurringItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.RecurringItem(nil), s.items[workspaceID]...), nil
}

func (s *Store) UpdateRecurringItem(_ context.Context, itemID int64, patch core.RecurringItemPatch) (core.RecurringItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for workspaceID, items := range s.items {
		for i, item := range items {
			if item.ID != itemID {
				continue
			}
			updated := patch.ApplyTo(item)
			if err := updated.Validate(); err != nil {
				return core.RecurringItem{}, fmt.Errorf("apply patch: %w", err)
			}
			s.items[workspaceID][i] = updated
			return updated, nil
		}
	}
	return core.RecurringItem{}, fmt.Errorf("recurring item %d not found", itemID)
}

func (s *Store) LinkedAccounts(_ context.Context, budgetID int64) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int64(nil), s.linked[budgetID]...), nil
}

func (s *Store) BalanceSum(_ context.Context, accountIDs []int64) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, id := range accountIDs {
		total = total.Add(s.balances[id])
	}
	return total, nil
}
