// Package ledger declares the collaborator ports the budgeting engine's
// host service reads its snapshot from. Implementations live in the
// subpackages: memory for tests and the default backend, sqlite for
// persistent data.
package ledger

import (
	"context"

	"github.com/shopspring/decimal"

	"buste/internal/core"
)

// Ledger is the full set of collaborator ports a backend provides.
type Ledger interface {
	BudgetReader
	CategoryReader
	RolloverReader
	EntryStore
	ActivityReader
	RecurringStore
	AccountReader
}

// Ports for outbound adapters.
type (
	BudgetReader interface {
		// Budget returns the budget with its period configuration, which is
		// nil when the user never configured periods.
		Budget(ctx context.Context, budgetID int64) (core.Budget, error)
	}

	CategoryReader interface {
		// Categories returns the full category tree of a workspace as a
		// flat list; parent links are ids, resolved by the engine into an
		// arena.
		Categories(ctx context.Context, workspaceID int64) ([]core.Category, error)
	}

	RolloverReader interface {
		// Policies maps category ids to their rollover policy for one
		// budget. Absent entries default to none.
		Policies(ctx context.Context, budgetID int64) (map[int64]core.RolloverPolicy, error)
	}

	EntryStore interface {
		// ExpectedAmounts returns the expected amount per category recorded
		// for the period starting at periodStart.
		ExpectedAmounts(ctx context.Context, budgetID int64, periodStart core.Date) (map[int64]decimal.Decimal, error)

		// SetExpectedAmount records an expected amount. Alignment of
		// periodStart with a real period boundary and the no-group-category
		// rule are enforced by the service before this is called.
		SetExpectedAmount(ctx context.Context, budgetID, categoryID int64, periodStart core.Date, amount decimal.Decimal) error
	}

	ActivityReader interface {
		// ActivityByCategory sums transaction amounts per category over the
		// range, ends included, restricted to the budget's linked accounts.
		// Sums keep the transaction sign convention: negative outflow.
		ActivityByCategory(ctx context.Context, budgetID int64, from, to core.Date) (map[int64]decimal.Decimal, error)
	}

	RecurringStore interface {
		// RecurringItems returns every recurring item of a workspace,
		// whatever its status, with overrides and recorded amounts loaded.
		RecurringItems(ctx context.Context, workspaceID int64) ([]core.RecurringItem, error)

		// UpdateRecurringItem applies a patch and returns the updated item.
		UpdateRecurringItem(ctx context.Context, itemID int64, patch core.RecurringItemPatch) (core.RecurringItem, error)

		// LinkedAccounts returns the ids of the accounts linked to a
		// budget.
		LinkedAccounts(ctx context.Context, budgetID int64) ([]int64, error)
	}

	AccountReader interface {
		// BalanceSum adds up the current balances of the given accounts.
		BalanceSum(ctx context.Context, accountIDs []int64) (decimal.Decimal, error)
	}
)
