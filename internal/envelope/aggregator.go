// Package envelope builds the per-period budget view: the category rollup
// tree, rollover propagation, and the workspace totals.
//
// The aggregator is a pure function over a caller-supplied snapshot. It
// never reads storage and never mutates its input; the host service is
// responsible for gathering internally-consistent figures.
package envelope

import (
	"github.com/shopspring/decimal"

	"buste/internal/core"
)

type (
	// CategoryView is one node of the computed rollup tree.
	CategoryView struct {
		ID                int64
		Name              string
		Income            bool
		Expected          decimal.Decimal
		Activity          decimal.Decimal
		RolledOver        decimal.Decimal
		RecurringExpected decimal.Decimal
		Available         decimal.Decimal
		Children          []CategoryView
	}

	// Side groups the category views and totals of one flow direction.
	Side struct {
		Expected   decimal.Decimal
		Activity   decimal.Decimal
		Available  decimal.Decimal
		Categories []CategoryView
	}

	// View is the full period view for one budget.
	View struct {
		Period            core.PeriodRange
		Inflow            Side
		Outflow           Side
		AvailablePool     decimal.Decimal
		TotalRolledOver   decimal.Decimal
		Budgetable        decimal.Decimal
		TotalBudgeted     decimal.Decimal
		LeftToBudget      decimal.Decimal
		NetTotalAvailable decimal.Decimal
	}

	// Input is the snapshot BuildView consumes. Current and Previous map
	// category ids to that period's figures; Policies maps category ids to
	// their rollover policy, absent entries meaning none. LinkedBalance is
	// the balance sum of the budget's linked accounts, passed through
	// verbatim.
	Input struct {
		Period        core.PeriodRange
		Categories    []core.Category
		Current       map[int64]core.PeriodFigures
		Previous      map[int64]core.PeriodFigures
		Policies      map[int64]core.RolloverPolicy
		LinkedBalance decimal.Decimal
	}
)

// BuildView computes the envelope view for one period.
//
// The category tree is rolled up bottom-up. Leaves read their own figures
// and resolve their rollover policy; groups are pure sums of their direct
// children and never read figures recorded against their own id (such
// records are stale leftovers from before the category became a parent).
// Excluded categories vanish from the view and from every total.
func BuildView(in Input) View {
	b := &builder{in: in, children: make(map[int64][]core.Category)}
	for _, c := range in.Categories {
		if c.ParentID != 0 {
			b.children[c.ParentID] = append(b.children[c.ParentID], c)
		}
	}

	var inflow, outflow Side
	for _, c := range in.Categories {
		if c.ParentID != 0 || c.Excluded {
			continue
		}
		view := b.build(c)
		if c.Income {
			inflow.add(view)
		} else {
			outflow.add(view)
		}
	}

	pool := b.pool
	return View{
		Period:            in.Period,
		Inflow:            inflow,
		Outflow:           outflow,
		AvailablePool:     pool,
		TotalRolledOver:   b.sameRolled.Add(pool),
		Budgetable:        inflow.Expected.Add(pool),
		TotalBudgeted:     outflow.Expected,
		LeftToBudget:      inflow.Expected.Add(pool).Sub(outflow.Expected),
		NetTotalAvailable: in.LinkedBalance,
	}
}

type builder struct {
	in       Input
	children map[int64][]core.Category

	pool       decimal.Decimal // available-pool surpluses carried into this period
	sameRolled decimal.Decimal // sum of same-category leaf rollovers
}

// build computes the view of one category subtree, post-order.
func (b *builder) build(c core.Category) CategoryView {
	kids := b.children[c.ID]
	if len(kids) == 0 {
		return b.leaf(c)
	}

	view := CategoryView{ID: c.ID, Name: c.Name, Income: c.Income}
	for _, kid := range kids {
		if kid.Excluded {
			continue
		}
		kv := b.build(kid)
		view.Expected = view.Expected.Add(kv.Expected)
		view.Activity = view.Activity.Add(kv.Activity)
		view.RolledOver = view.RolledOver.Add(kv.RolledOver)
		view.RecurringExpected = view.RecurringExpected.Add(kv.RecurringExpected)
		view.Available = view.Available.Add(kv.Available)
		view.Children = append(view.Children, kv)
	}
	return view
}

func (b *builder) leaf(c core.Category) CategoryView {
	fig := b.in.Current[c.ID]
	rolled := decimal.Zero

	switch b.in.Policies[c.ID] {
	case core.RolloverSameCategory:
		rolled = b.previousLeftover(c.ID)
		b.sameRolled = b.sameRolled.Add(rolled)
	case core.RolloverAvailablePool:
		// Surplus feeds the workspace pool; a deficit stays attached to
		// the category instead of draining the pool.
		leftover := b.previousLeftover(c.ID)
		if leftover.IsPositive() {
			b.pool = b.pool.Add(leftover)
		} else {
			rolled = leftover
		}
	}

	available := fig.Expected.Add(rolled)
	if c.Income {
		// Remaining expected inflow: what was budgeted minus what arrived.
		available = available.Sub(fig.Activity)
	} else {
		// Activity is negative for spending, so adding it consumes the
		// envelope.
		available = available.Add(fig.Activity)
	}

	return CategoryView{
		ID:                c.ID,
		Name:              c.Name,
		Income:            c.Income,
		Expected:          fig.Expected,
		Activity:          fig.Activity,
		RolledOver:        rolled,
		RecurringExpected: fig.RecurringExpected,
		Available:         available,
	}
}

// previousLeftover is the category's unspent balance from exactly one
// period back: expected plus activity, negative on overspend. An absent
// previous entry counts as zero expected; the lookback never chains further
// into the past.
func (b *builder) previousLeftover(categoryID int64) decimal.Decimal {
	prev := b.in.Previous[categoryID]
	return prev.Expected.Add(prev.Activity)
}

func (s *Side) add(v CategoryView) {
	s.Expected = s.Expected.Add(v.Expected)
	s.Activity = s.Activity.Add(v.Activity)
	s.Available = s.Available.Add(v.Available)
	s.Categories = append(s.Categories, v)
}
