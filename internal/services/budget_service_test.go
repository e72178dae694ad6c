package services

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"buste/internal/core"
	"buste/internal/ledger/memory"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

// seedService builds a memory-backed service with one configured budget:
// workspace 1, budget 1, monthly periods anchored on the 1st, one linked
// account and one foreign account.
func seedService(t *testing.T) (*BudgetService, *memory.Store) {
	t.Helper()
	store := memory.New()

	monthly := core.PeriodConfig{Mode: core.PeriodModeMonthly, AnchorDay: 1}
	store.PutBudget(core.Budget{ID: 1, WorkspaceID: 1, Name: "Household", Period: &monthly})
	store.PutBudget(core.Budget{ID: 2, WorkspaceID: 1, Name: "Unconfigured"})

	store.LinkAccount(1, 1, decimal.RequireFromString("1200.50"))

	store.PutCategory(1, core.Category{ID: 1, Name: "Salary", Income: true})
	store.PutCategory(1, core.Category{ID: 2, Name: "Groceries"})
	store.PutCategory(1, core.Category{ID: 10, Name: "Living"})
	store.PutCategory(1, core.Category{ID: 11, Name: "Rent", ParentID: 10})
	store.PutPolicy(1, 2, core.RolloverSameCategory)

	ctx := context.Background()
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	must(store.SetExpectedAmount(ctx, 1, 1, core.NewDate(2026, 2, 1), dec(5000)))
	must(store.SetExpectedAmount(ctx, 1, 2, core.NewDate(2026, 2, 1), dec(400)))
	must(store.SetExpectedAmount(ctx, 1, 11, core.NewDate(2026, 2, 1), dec(800)))
	must(store.SetExpectedAmount(ctx, 1, 2, core.NewDate(2026, 1, 1), dec(400)))

	store.PutTransaction(1, 1, 1, core.NewDate(2026, 2, 3), dec(4600))
	store.PutTransaction(1, 2, 1, core.NewDate(2026, 2, 10), dec(-150))
	store.PutTransaction(1, 11, 1, core.NewDate(2026, 2, 1), dec(-800))
	store.PutTransaction(1, 2, 1, core.NewDate(2026, 1, 20), dec(-350))
	// Foreign account: must never show up in activity.
	store.PutTransaction(1, 2, 9, core.NewDate(2026, 2, 12), dec(-60))

	store.PutRecurringItem(1, core.RecurringItem{
		ID: 1, Name: "Internet", CategoryID: 11, AccountID: 1,
		Status: core.StatusActive, Every: core.Monthly, Quantity: 1,
		Anchors:   []core.Date{core.NewDate(2026, 1, 5)},
		StartDate: core.NewDate(2026, 1, 5),
		Amount:    dec(55),
	})
	store.PutRecurringItem(1, core.RecurringItem{
		ID: 2, Name: "Foreign account sub", CategoryID: 2, AccountID: 9,
		Status: core.StatusActive, Every: core.Monthly, Quantity: 1,
		Anchors:   []core.Date{core.NewDate(2026, 1, 7)},
		StartDate: core.NewDate(2026, 1, 7),
		Amount:    dec(99),
	})
	store.PutRecurringItem(1, core.RecurringItem{
		ID: 3, Name: "Uncategorized", AccountID: 1,
		Status: core.StatusActive, Every: core.Monthly, Quantity: 1,
		Anchors:   []core.Date{core.NewDate(2026, 1, 9)},
		StartDate: core.NewDate(2026, 1, 9),
		Amount:    dec(20),
	})

	return NewBudgetService(store), store
}

func TestResolvePeriod(t *testing.T) {
	svc, _ := seedService(t)
	ctx := context.Background()

	p, err := svc.ResolvePeriod(ctx, 1, core.NewDate(2026, 2, 15))
	if err != nil {
		t.Fatalf("ResolvePeriod() error: %v", err)
	}
	if p.Start.String() != "2026-02-01" || p.End.String() != "2026-02-28" {
		t.Errorf("ResolvePeriod() = (%s, %s), want (2026-02-01, 2026-02-28)", p.Start, p.End)
	}

	next, err := svc.NextPeriod(ctx, 1, p)
	if err != nil {
		t.Fatalf("NextPeriod() error: %v", err)
	}
	if next.Start.String() != "2026-03-01" {
		t.Errorf("NextPeriod() starts %s, want 2026-03-01", next.Start)
	}
	back, err := svc.PreviousPeriod(ctx, 1, next)
	if err != nil {
		t.Fatalf("PreviousPeriod() error: %v", err)
	}
	if !back.Equal(p) {
		t.Errorf("PreviousPeriod(NextPeriod(p)) = (%s, %s), want (%s, %s)", back.Start, back.End, p.Start, p.End)
	}
}

func TestResolvePeriodNotConfigured(t *testing.T) {
	svc, _ := seedService(t)
	_, err := svc.ResolvePeriod(context.Background(), 2, core.NewDate(2026, 2, 15))
	if !errors.Is(err, ErrPeriodNotConfigured) {
		t.Errorf("error = %v, want ErrPeriodNotConfigured", err)
	}
}

func TestPeriodView(t *testing.T) {
	svc, _ := seedService(t)
	view, err := svc.PeriodView(context.Background(), 1, core.NewDate(2026, 2, 15))
	if err != nil {
		t.Fatalf("PeriodView() error: %v", err)
	}

	if view.Period.Start.String() != "2026-02-01" || view.Period.End.String() != "2026-02-28" {
		t.Fatalf("period = (%s, %s), want february", view.Period.Start, view.Period.End)
	}

	var groceries, living *struct {
		expected, activity, rolled, available, recurring decimal.Decimal
	}
	for _, c := range view.Outflow.Categories {
		figs := &struct {
			expected, activity, rolled, available, recurring decimal.Decimal
		}{c.Expected, c.Activity, c.RolledOver, c.Available, c.RecurringExpected}
		switch c.Name {
		case "Groceries":
			groceries = figs
		case "Living":
			living = figs
		}
	}
	if groceries == nil || living == nil {
		t.Fatal("missing outflow categories in view")
	}

	// Groceries: expected 400, spent 150 (the foreign-account transaction
	// is filtered out), january leftover 400-350 rolls over.
	if !groceries.rolled.Equal(dec(50)) {
		t.Errorf("groceries rolled = %s, want 50", groceries.rolled)
	}
	if !groceries.activity.Equal(dec(-150)) {
		t.Errorf("groceries activity = %s, want -150", groceries.activity)
	}
	if !groceries.available.Equal(dec(300)) {
		t.Errorf("groceries available = %s, want 300", groceries.available)
	}

	// Living is a group: pure sum of Rent, with the recurring item folded
	// into recurring expected only.
	if !living.expected.Equal(dec(800)) || !living.available.Equal(dec(0)) {
		t.Errorf("living = expected %s available %s, want 800 / 0", living.expected, living.available)
	}
	if !living.recurring.Equal(dec(55)) {
		t.Errorf("living recurring expected = %s, want 55", living.recurring)
	}

	if !view.Inflow.Expected.Equal(dec(5000)) || !view.Inflow.Available.Equal(dec(400)) {
		t.Errorf("inflow = expected %s available %s, want 5000 / 400", view.Inflow.Expected, view.Inflow.Available)
	}
	if !view.Budgetable.Equal(dec(5000)) {
		t.Errorf("budgetable = %s, want 5000", view.Budgetable)
	}
	if !view.TotalBudgeted.Equal(dec(1200)) {
		t.Errorf("total budgeted = %s, want 1200", view.TotalBudgeted)
	}
	if !view.LeftToBudget.Equal(dec(3800)) {
		t.Errorf("left to budget = %s, want 3800", view.LeftToBudget)
	}
	if !view.NetTotalAvailable.Equal(decimal.RequireFromString("1200.50")) {
		t.Errorf("net total available = %s, want 1200.50", view.NetTotalAvailable)
	}
}

func TestSetExpectedAmount(t *testing.T) {
	svc, _ := seedService(t)
	ctx := context.Background()

	tests := []struct {
		name       string
		budgetID   int64
		categoryID int64
		start      core.Date
		wantErr    error
	}{
		{"aligned leaf write", 1, 2, core.NewDate(2026, 3, 1), nil},
		{"misaligned start", 1, 2, core.NewDate(2026, 3, 2), ErrPeriodMisaligned},
		{"group category", 1, 10, core.NewDate(2026, 3, 1), ErrGroupCategory},
		{"unknown category", 1, 99, core.NewDate(2026, 3, 1), ErrUnknownCategory},
		{"unconfigured budget", 2, 2, core.NewDate(2026, 3, 1), ErrPeriodNotConfigured},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.SetExpectedAmount(ctx, tt.budgetID, tt.categoryID, tt.start, dec(100))
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("SetExpectedAmount() error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestUpcomingCharges(t *testing.T) {
	svc, _ := seedService(t)
	window := core.PeriodRange{Start: core.NewDate(2026, 2, 1), End: core.NewDate(2026, 2, 28)}

	charges, err := svc.UpcomingCharges(context.Background(), 1, window)
	if err != nil {
		t.Fatalf("UpcomingCharges() error: %v", err)
	}

	// The foreign-account item is filtered; the uncategorized one is not.
	if len(charges) != 2 {
		t.Fatalf("got %d charges, want 2", len(charges))
	}
	byName := map[string]ScheduledCharge{}
	for _, c := range charges {
		byName[c.Name] = c
	}
	internet, ok := byName["Internet"]
	if !ok {
		t.Fatal("missing Internet charge")
	}
	if internet.Count != 1 || !internet.Total.Equal(dec(55)) {
		t.Errorf("Internet = count %d total %s, want 1 / 55", internet.Count, internet.Total)
	}
	if _, ok := byName["Uncategorized"]; !ok {
		t.Error("uncategorized linked item missing from charges")
	}
}

func TestUpdateRecurringItem(t *testing.T) {
	svc, _ := seedService(t)
	ctx := context.Background()

	updated, err := svc.UpdateRecurringItem(ctx, 1, core.RecurringItemPatch{
		Status: core.Set(core.StatusPaused),
		Amount: core.Set(dec(60)),
	})
	if err != nil {
		t.Fatalf("UpdateRecurringItem() error: %v", err)
	}
	if updated.Status != core.StatusPaused || !updated.Amount.Equal(dec(60)) {
		t.Errorf("updated = %s/%s, want paused/60", updated.Status, updated.Amount)
	}

	// Pausing removes the item from recurring expected sums.
	view, err := svc.PeriodView(ctx, 1, core.NewDate(2026, 2, 15))
	if err != nil {
		t.Fatalf("PeriodView() error: %v", err)
	}
	for _, c := range view.Outflow.Categories {
		if c.Name == "Living" && !c.RecurringExpected.Equal(dec(0)) {
			t.Errorf("living recurring expected after pause = %s, want 0", c.RecurringExpected)
		}
	}

	// An invalid patch leaves the item untouched.
	if _, err := svc.UpdateRecurringItem(ctx, 1, core.RecurringItemPatch{
		Status: core.Set(core.ItemStatus("finished")),
	}); err == nil {
		t.Error("invalid status accepted")
	}
}
