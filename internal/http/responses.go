package http

import (
	"buste/internal/core"
	"buste/internal/envelope"
	"buste/internal/recurrence"
	"buste/internal/services"
)

// Wire DTOs. Amounts are decimal strings end to end.

type periodDTO struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Days  int    `json:"days"`
}

type categoryViewDTO struct {
	ID                int64             `json:"id"`
	Name              string            `json:"name"`
	Income            bool              `json:"income"`
	Expected          string            `json:"expected"`
	Activity          string            `json:"activity"`
	RolledOver        string            `json:"rolled_over"`
	RecurringExpected string            `json:"recurring_expected"`
	Available         string            `json:"available"`
	Children          []categoryViewDTO `json:"children,omitempty"`
}

type sideDTO struct {
	Expected   string            `json:"expected"`
	Activity   string            `json:"activity"`
	Available  string            `json:"available"`
	Categories []categoryViewDTO `json:"categories"`
}

type viewDTO struct {
	Period            periodDTO `json:"period"`
	Inflow            sideDTO   `json:"inflow"`
	Outflow           sideDTO   `json:"outflow"`
	AvailablePool     string    `json:"available_pool"`
	TotalRolledOver   string    `json:"total_rolled_over"`
	Budgetable        string    `json:"budgetable"`
	TotalBudgeted     string    `json:"total_budgeted"`
	LeftToBudget      string    `json:"left_to_budget"`
	NetTotalAvailable string    `json:"net_total_available"`
}

type occurrenceDTO struct {
	Date     string  `json:"date"`
	Amount   string  `json:"amount"`
	Recorded *string `json:"recorded,omitempty"`
}

type scheduledChargeDTO struct {
	ItemID      int64           `json:"item_id"`
	Name        string          `json:"name"`
	CategoryID  int64           `json:"category_id,omitempty"`
	Count       int             `json:"count"`
	Total       string          `json:"total"`
	Occurrences []occurrenceDTO `json:"occurrences"`
}

type recurringItemDTO struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	CategoryID int64  `json:"category_id,omitempty"`
	AccountID  int64  `json:"account_id"`
	Status     string `json:"status"`
	Every      string `json:"every"`
	Quantity   int    `json:"quantity"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date,omitempty"`
	Amount     string `json:"amount"`
}

func toPeriodDTO(p core.PeriodRange) periodDTO {
	return periodDTO{Start: p.Start.String(), End: p.End.String(), Days: p.Days()}
}

func toCategoryViewDTO(v envelope.CategoryView) categoryViewDTO {
	dto := categoryViewDTO{
		ID:                v.ID,
		Name:              v.Name,
		Income:            v.Income,
		Expected:          v.Expected.String(),
		Activity:          v.Activity.String(),
		RolledOver:        v.RolledOver.String(),
		RecurringExpected: v.RecurringExpected.String(),
		Available:         v.Available.String(),
	}
	for _, child := range v.Children {
		dto.Children = append(dto.Children, toCategoryViewDTO(child))
	}
	return dto
}

func toSideDTO(s envelope.Side) sideDTO {
	dto := sideDTO{
		Expected:   s.Expected.String(),
		Activity:   s.Activity.String(),
		Available:  s.Available.String(),
		Categories: []categoryViewDTO{},
	}
	for _, c := range s.Categories {
		dto.Categories = append(dto.Categories, toCategoryViewDTO(c))
	}
	return dto
}

func toViewDTO(v envelope.View) viewDTO {
	return viewDTO{
		Period:            toPeriodDTO(v.Period),
		Inflow:            toSideDTO(v.Inflow),
		Outflow:           toSideDTO(v.Outflow),
		AvailablePool:     v.AvailablePool.String(),
		TotalRolledOver:   v.TotalRolledOver.String(),
		Budgetable:        v.Budgetable.String(),
		TotalBudgeted:     v.TotalBudgeted.String(),
		LeftToBudget:      v.LeftToBudget.String(),
		NetTotalAvailable: v.NetTotalAvailable.String(),
	}
}

func toOccurrenceDTO(o recurrence.Occurrence) occurrenceDTO {
	dto := occurrenceDTO{Date: o.Date.String(), Amount: o.Amount.String()}
	if o.Recorded != nil {
		recorded := o.Recorded.String()
		dto.Recorded = &recorded
	}
	return dto
}

func toScheduledChargeDTO(c services.ScheduledCharge) scheduledChargeDTO {
	dto := scheduledChargeDTO{
		ItemID:     c.ItemID,
		Name:       c.Name,
		CategoryID: c.CategoryID,
		Count:      c.Count,
		Total:      c.Total.String(),
	}
	for _, o := range c.Occurrences {
		dto.Occurrences = append(dto.Occurrences, toOccurrenceDTO(o))
	}
	return dto
}

func toRecurringItemDTO(item core.RecurringItem) recurringItemDTO {
	dto := recurringItemDTO{
		ID:         item.ID,
		Name:       item.Name,
		CategoryID: item.CategoryID,
		AccountID:  item.AccountID,
		Status:     string(item.Status),
		Every:      string(item.Every),
		Quantity:   item.Quantity,
		StartDate:  item.StartDate.String(),
		Amount:     item.Amount.String(),
	}
	if !item.EndDate.IsZero() {
		dto.EndDate = item.EndDate.String()
	}
	return dto
}
