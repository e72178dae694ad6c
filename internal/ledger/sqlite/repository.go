// Package sqlite is the persistent ledger backend.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"buste/internal/core"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Budget implements ledger.BudgetReader.
func (r *Repository) Budget(ctx context.Context, budgetID int64) (core.Budget, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, workspace_id, name, period_mode, anchor_day, second_anchor_day, interval_days, interval_anchor
		FROM budgets WHERE id = ?`, budgetID)

	var (
		b              core.Budget
		mode           sql.NullString
		cfg            core.PeriodConfig
		intervalAnchor string
	)
	err := row.Scan(&b.ID, &b.WorkspaceID, &b.Name, &mode, &cfg.AnchorDay, &cfg.SecondAnchorDay, &cfg.IntervalDays, &intervalAnchor)
	if err != nil {
		return core.Budget{}, fmt.Errorf("select budget %d: %w", budgetID, err)
	}

	if mode.Valid && mode.String != "" {
		cfg.Mode = core.PeriodMode(mode.String)
		if intervalAnchor != "" {
			anchor, err := core.ParseDate(intervalAnchor)
			if err != nil {
				return core.Budget{}, fmt.Errorf("parse interval anchor: %w", err)
			}
			cfg.IntervalAnchor = anchor
		}
		b.Period = &cfg
	}
	return b, nil
}

// Categories implements ledger.CategoryReader.
func (r *Repository) Categories(ctx context.Context, workspaceID int64) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, parent_id, income, excluded
		FROM categories WHERE workspace_id = ? ORDER BY id`, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("select categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.ParentID, &c.Income, &c.Excluded); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Policies implements ledger.RolloverReader.
func (r *Repository) Policies(ctx context.Context, budgetID int64) (map[int64]core.RolloverPolicy, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT category_id, policy FROM rollover_policies WHERE budget_id = ?`, budgetID)
	if err != nil {
		return nil, fmt.Errorf("select rollover policies: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]core.RolloverPolicy)
	for rows.Next() {
		var (
			categoryID int64
			policy     string
		)
		if err := rows.Scan(&categoryID, &policy); err != nil {
			return nil, fmt.Errorf("scan rollover policy: %w", err)
		}
		out[categoryID] = core.RolloverPolicy(policy)
	}
	return out, rows.Err()
}

// ExpectedAmounts implements ledger.EntryStore.
func (r *Repository) ExpectedAmounts(ctx context.Context, budgetID int64, periodStart core.Date) (map[int64]decimal.Decimal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT category_id, amount FROM period_entries
		WHERE budget_id = ? AND period_start = ?`, budgetID, periodStart.String())
	if err != nil {
		return nil, fmt.Errorf("select period entries: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]decimal.Decimal)
	for rows.Next() {
		var (
			categoryID int64
			raw        string
		)
		if err := rows.Scan(&categoryID, &raw); err != nil {
			return nil, fmt.Errorf("scan period entry: %w", err)
		}
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("parse period entry amount %q: %w", raw, err)
		}
		out[categoryID] = amount
	}
	return out, rows.Err()
}

// SetExpectedAmount implements ledger.EntryStore.
func (r *Repository) SetExpectedAmount(ctx context.Context, budgetID, categoryID int64, periodStart core.Date, amount decimal.Decimal) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO period_entries (budget_id, category_id, period_start, amount)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (budget_id, category_id, period_start) DO UPDATE SET amount = excluded.amount`,
		budgetID, categoryID, periodStart.String(), amount.String())
	if err != nil {
		return fmt.Errorf("upsert period entry: %w", err)
	}
	return nil
}

// ActivityByCategory implements ledger.ActivityReader.
func (r *Repository) ActivityByCategory(ctx context.Context, budgetID int64, from, to core.Date) (map[int64]decimal.Decimal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT t.category_id, t.amount
		FROM transactions t
		JOIN budget_accounts ba ON ba.budget_id = t.budget_id AND ba.account_id = t.account_id
		WHERE t.budget_id = ? AND t.booked_on >= ? AND t.booked_on <= ?`,
		budgetID, from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("select activity: %w", err)
	}
	defer rows.Close()

	// Decimal sums happen here rather than in SQL so sqlite's float
	// arithmetic never touches the amounts.
	out := make(map[int64]decimal.Decimal)
	for rows.Next() {
		var (
			categoryID int64
			raw        string
		)
		if err := rows.Scan(&categoryID, &raw); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("parse transaction amount %q: %w", raw, err)
		}
		out[categoryID] = out[categoryID].Add(amount)
	}
	return out, rows.Err()
}

// RecurringItems implements ledger.RecurringStore.
func (r *Repository) RecurringItems(ctx context.Context, workspaceID int64) ([]core.RecurringItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, category_id, account_id, status, frequency, quantity, start_date, end_date, amount
		FROM recurring_items WHERE workspace_id = ? ORDER BY id`, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("select recurring items: %w", err)
	}
	defer rows.Close()

	var out []core.RecurringItem
	for rows.Next() {
		item, err := scanRecurringItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		if err := r.loadItemDetails(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// UpdateRecurringItem implements ledger.RecurringStore.
func (r *Repository) UpdateRecurringItem(ctx context.Context, itemID int64, patch core.RecurringItemPatch) (core.RecurringItem, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, category_id, account_id, status, frequency, quantity, start_date, end_date, amount
		FROM recurring_items WHERE id = ?`, itemID)
	item, err := scanRecurringItem(row)
	if err != nil {
		return core.RecurringItem{}, fmt.Errorf("select recurring item %d: %w", itemID, err)
	}
	if err := r.loadItemDetails(ctx, &item); err != nil {
		return core.RecurringItem{}, err
	}

	updated := patch.ApplyTo(item)
	if err := updated.Validate(); err != nil {
		return core.RecurringItem{}, fmt.Errorf("apply patch: %w", err)
	}

	endDate := ""
	if !updated.EndDate.IsZero() {
		endDate = updated.EndDate.String()
	}
	_, err = r.db.ExecContext(ctx, `
		UPDATE recurring_items
		SET name = ?, category_id = ?, status = ?, end_date = ?, amount = ?
		WHERE id = ?`,
		updated.Name, updated.CategoryID, string(updated.Status), endDate, updated.Amount.String(), itemID)
	if err != nil {
		return core.RecurringItem{}, fmt.Errorf("update recurring item %d: %w", itemID, err)
	}
	return updated, nil
}

// LinkedAccounts implements ledger.RecurringStore.
func (r *Repository) LinkedAccounts(ctx context.Context, budgetID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT account_id FROM budget_accounts WHERE budget_id = ? ORDER BY account_id`, budgetID)
	if err != nil {
		return nil, fmt.Errorf("select linked accounts: %w", err)
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan linked account: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// BalanceSum implements ledger.AccountReader.
func (r *Repository) BalanceSum(ctx context.Context, accountIDs []int64) (decimal.Decimal, error) {
	if len(accountIDs) == 0 {
		return decimal.Zero, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(accountIDs)), ",")
	args := make([]any, len(accountIDs))
	for i, id := range accountIDs {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx, `SELECT balance FROM accounts WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return decimal.Zero, fmt.Errorf("select balances: %w", err)
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return decimal.Zero, fmt.Errorf("scan balance: %w", err)
		}
		balance, err := decimal.NewFromString(raw)
		if err != nil {
			return decimal.Zero, fmt.Errorf("parse balance %q: %w", raw, err)
		}
		total = total.Add(balance)
	}
	return total, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecurringItem(row rowScanner) (core.RecurringItem, error) {
	var (
		item                       core.RecurringItem
		status, frequency          string
		startDate, endDate, amount string
	)
	err := row.Scan(&item.ID, &item.Name, &item.CategoryID, &item.AccountID,
		&status, &frequency, &item.Quantity, &startDate, &endDate, &amount)
	if err != nil {
		return core.RecurringItem{}, fmt.Errorf("scan recurring item: %w", err)
	}

	item.Status = core.ItemStatus(status)
	item.Every = core.Frequency(frequency)

	if item.StartDate, err = core.ParseDate(startDate); err != nil {
		return core.RecurringItem{}, fmt.Errorf("parse start date %q: %w", startDate, err)
	}
	if endDate != "" {
		if item.EndDate, err = core.ParseDate(endDate); err != nil {
			return core.RecurringItem{}, fmt.Errorf("parse end date %q: %w", endDate, err)
		}
	}
	if item.Amount, err = decimal.NewFromString(amount); err != nil {
		return core.RecurringItem{}, fmt.Errorf("parse item amount %q: %w", amount, err)
	}
	return item, nil
}

func (r *Repository) loadItemDetails(ctx context.Context, item *core.RecurringItem) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT anchor FROM recurring_anchors WHERE item_id = ? ORDER BY anchor`, item.ID)
	if err != nil {
		return fmt.Errorf("select anchors: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return fmt.Errorf("scan anchor: %w", err)
		}
		anchor, err := core.ParseDate(raw)
		if err != nil {
			return fmt.Errorf("parse anchor %q: %w", raw, err)
		}
		item.Anchors = append(item.Anchors, anchor)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if item.Overrides, err = r.amountsByDate(ctx, "recurring_overrides", item.ID); err != nil {
		return err
	}
	item.Recorded, err = r.amountsByDate(ctx, "recurring_recorded", item.ID)
	return err
}

func (r *Repository) amountsByDate(ctx context.Context, table string, itemID int64) (map[core.Date]decimal.Decimal, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT occurs_on, amount FROM `+table+` WHERE item_id = ?`, itemID)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", table, err)
	}
	defer rows.Close()

	out := make(map[core.Date]decimal.Decimal)
	for rows.Next() {
		var rawDate, rawAmount string
		if err := rows.Scan(&rawDate, &rawAmount); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		d, err := core.ParseDate(rawDate)
		if err != nil {
			return nil, fmt.Errorf("parse %s date %q: %w", table, rawDate, err)
		}
		amount, err := decimal.NewFromString(rawAmount)
		if err != nil {
			return nil, fmt.Errorf("parse %s amount %q: %w", table, rawAmount, err)
		}
		out[d] = amount
	}
	return out, rows.Err()
}
