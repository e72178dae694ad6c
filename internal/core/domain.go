package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

const (
	StatusActive    ItemStatus = "active"
	StatusPaused    ItemStatus = "paused"
	StatusCancelled ItemStatus = "cancelled"
)

const (
	RolloverNone          RolloverPolicy = "none"
	RolloverSameCategory  RolloverPolicy = "same_category"
	RolloverAvailablePool RolloverPolicy = "available_pool"
)

const (
	// PeriodModeMonthly splits time at a single anchor day per month.
	PeriodModeMonthly PeriodMode = "monthly"
	// PeriodModeSemiMonthly splits each month at two anchor days.
	PeriodModeSemiMonthly PeriodMode = "semimonthly"
	// PeriodModeInterval repeats a fixed number of days from an anchor date.
	PeriodModeInterval PeriodMode = "interval"
)

type (
	Frequency      string
	ItemStatus     string
	RolloverPolicy string
	PeriodMode     string

	// Date is a calendar day. The time-of-day part is always midnight UTC.
	Date struct {
		time.Time
	}

	// Category is one node of a workspace's category tree. ParentID is zero
	// for root categories; the tree itself is resolved by the caller into an
	// id-keyed arena, never into live object references.
	Category struct {
		ID       int64
		Name     string
		ParentID int64
		Income   bool
		Excluded bool // excluded from budgeting and from every aggregate
	}

	// PeriodConfig selects exactly one of the three period modes. The unused
	// fields of the other modes stay zero.
	PeriodConfig struct {
		Mode PeriodMode

		AnchorDay       int // monthly and semimonthly: 1-31, clamped per month
		SecondAnchorDay int // semimonthly: second split day, distinct from AnchorDay

		IntervalDays   int  // interval: period length in days
		IntervalAnchor Date // interval: a known period start
	}

	// PeriodRange is a calendar period, inclusive on both ends. Adjacent
	// periods are contiguous: the next period starts on End plus one day.
	PeriodRange struct {
		Start Date
		End   Date
	}

	// Budget ties a period configuration to a workspace and its linked
	// accounts. Period is nil when the user never configured periods.
	Budget struct {
		ID          int64
		WorkspaceID int64
		Name        string
		Period      *PeriodConfig
	}

	// RecurringItem is one scheduled charge definition. Anchors holds one or
	// more base dates; every occurrence is an anchor advanced by whole
	// multiples of Quantity x Every. Overrides replaces the base amount for
	// single occurrence dates; Recorded carries the amount of a transaction
	// already booked against an occurrence date.
	RecurringItem struct {
		ID         int64
		Name       string
		CategoryID int64 // zero when uncategorized
		AccountID  int64
		Status     ItemStatus
		Every      Frequency
		Quantity   int
		Anchors    []Date
		StartDate  Date
		EndDate    Date // zero means open-ended; otherwise exclusive
		Amount     decimal.Decimal
		Overrides  map[Date]decimal.Decimal
		Recorded   map[Date]decimal.Decimal
	}

	// PeriodFigures are the raw per-category numbers for one period.
	// Activity follows the transaction sign convention: negative outflow,
	// positive inflow.
	PeriodFigures struct {
		Expected          decimal.Decimal
		Activity          decimal.Decimal
		RecurringExpected decimal.Decimal
	}
)

var (
	ErrInvalidAnchorDay    = errors.New("anchor day must be between 1 and 31")
	ErrDuplicateAnchorDays = errors.New("anchor days must be distinct")
	ErrInvalidInterval     = errors.New("interval must be at least one day")
	ErrInvalidPeriodMode   = errors.New("invalid period mode")
	ErrInvalidFrequency    = errors.New("invalid frequency")
	ErrInvalidQuantity     = errors.New("quantity must be at least 1")
	ErrNoAnchors           = errors.New("at least one anchor date required")
	ErrEmptyName           = errors.New("empty name")
)

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an arbitrary instant to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

// AddDays returns the date n days later (earlier for negative n).
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// Before reports whether d is strictly before other.
func (d Date) Before(other Date) bool { return d.Time.Before(other.Time) }

// After reports whether d is strictly after other.
func (d Date) After(other Date) bool { return d.Time.After(other.Time) }

// Equal reports whether d and other are the same day.
func (d Date) Equal(other Date) bool { return d.Time.Equal(other.Time) }

// Day returns the day of the month.
func (d Date) Day() int { return d.Time.Day() }

// Month returns the month as 1-12.
func (d Date) Month() int { return int(d.Time.Month()) }

// Year returns the year.
func (d Date) Year() int { return d.Time.Year() }

// String formats the date as YYYY-MM-DD.
func (d Date) String() string { return d.Time.Format("2006-01-02") }

// DaysInMonth returns the length of the given month.
func DaysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Contains reports whether the day falls inside the range, ends included.
func (p PeriodRange) Contains(d Date) bool {
	return !d.Before(p.Start) && !d.After(p.End)
}

// Days returns the period length in days.
func (p PeriodRange) Days() int {
	return int(p.End.Time.Sub(p.Start.Time).Hours()/24) + 1
}

// Equal reports whether two ranges cover the same days.
func (p PeriodRange) Equal(other PeriodRange) bool {
	return p.Start.Equal(other.Start) && p.End.Equal(other.End)
}

func (c PeriodConfig) Validate() error {
	switch c.Mode {
	case PeriodModeMonthly:
		if c.AnchorDay < 1 || c.AnchorDay > 31 {
			return ErrInvalidAnchorDay
		}
	case PeriodModeSemiMonthly:
		if c.AnchorDay < 1 || c.AnchorDay > 31 || c.SecondAnchorDay < 1 || c.SecondAnchorDay > 31 {
			return ErrInvalidAnchorDay
		}
		if c.AnchorDay == c.SecondAnchorDay {
			return ErrDuplicateAnchorDays
		}
	case PeriodModeInterval:
		if c.IntervalDays < 1 {
			return ErrInvalidInterval
		}
		if c.IntervalAnchor.IsZero() {
			return errors.New("interval mode requires an anchor date")
		}
	default:
		return ErrInvalidPeriodMode
	}
	return nil
}

func (s ItemStatus) Valid() bool {
	switch s {
	case StatusActive, StatusPaused, StatusCancelled:
		return true
	}
	return false
}

func (p RolloverPolicy) Valid() bool {
	switch p {
	case RolloverNone, RolloverSameCategory, RolloverAvailablePool:
		return true
	}
	return false
}

func (ri RecurringItem) Validate() error {
	if len(strings.TrimSpace(ri.Name)) == 0 {
		return ErrEmptyName
	}
	if len(ri.Name) > 200 {
		return errors.New("name too long (max 200 characters)")
	}
	switch ri.Every {
	case Daily, Weekly, Monthly, Yearly:
	default:
		return ErrInvalidFrequency
	}
	if ri.Quantity < 1 {
		return ErrInvalidQuantity
	}
	if len(ri.Anchors) == 0 {
		return ErrNoAnchors
	}
	if ri.StartDate.IsZero() {
		return errors.New("start date required")
	}
	if !ri.EndDate.IsZero() && !ri.EndDate.After(ri.StartDate) {
		return errors.New("end date must be after start date")
	}
	if !ri.Status.Valid() {
		return errors.New("invalid status")
	}
	return nil
}

// Active reports whether the item currently produces occurrences.
func (ri RecurringItem) Active() bool { return ri.Status == StatusActive }
