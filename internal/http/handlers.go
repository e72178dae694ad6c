package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"buste/internal/core"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.start).String(),
	})
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	budgetID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid budget id")
		return
	}
	ref, err := queryDate(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	view, err := s.svc.PeriodView(r.Context(), budgetID, ref)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toViewDTO(view))
}

func (s *Server) handlePeriod(w http.ResponseWriter, r *http.Request) {
	budgetID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid budget id")
		return
	}
	ref, err := queryDate(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	p, err := s.svc.ResolvePeriod(r.Context(), budgetID, ref)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPeriodDTO(p))
}

func (s *Server) handlePeriodNext(w http.ResponseWriter, r *http.Request) {
	s.handlePeriodShift(w, r, true)
}

func (s *Server) handlePeriodPrevious(w http.ResponseWriter, r *http.Request) {
	s.handlePeriodShift(w, r, false)
}

func (s *Server) handlePeriodShift(w http.ResponseWriter, r *http.Request, forward bool) {
	budgetID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid budget id")
		return
	}
	cur, err := queryRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid range, expected start and end as YYYY-MM-DD")
		return
	}

	var p core.PeriodRange
	if forward {
		p, err = s.svc.NextPeriod(r.Context(), budgetID, cur)
	} else {
		p, err = s.svc.PreviousPeriod(r.Context(), budgetID, cur)
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPeriodDTO(p))
}

func (s *Server) handleSetExpected(w http.ResponseWriter, r *http.Request) {
	budgetID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid budget id")
		return
	}
	categoryID, err := pathID(r, "category")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	var body struct {
		PeriodStart string `json:"period_start"`
		Amount      string `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	periodStart, err := core.ParseDate(body.PeriodStart)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid period_start, expected YYYY-MM-DD")
		return
	}
	amount, err := core.ParseAmount(body.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount")
		return
	}

	if err := s.svc.SetExpectedAmount(r.Context(), budgetID, categoryID, periodStart, amount); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"period_start": periodStart.String(),
		"amount":       amount.String(),
	})
}

func (s *Server) handleUpcoming(w http.ResponseWriter, r *http.Request) {
	budgetID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid budget id")
		return
	}
	window, err := queryRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid range, expected start and end as YYYY-MM-DD")
		return
	}

	charges, err := s.svc.UpcomingCharges(r.Context(), budgetID, window)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := []scheduledChargeDTO{}
	for _, c := range charges {
		out = append(out, toScheduledChargeDTO(c))
	}
	writeJSON(w, http.StatusOK, out)
}

// handlePatchRecurring updates a recurring item. Field presence matters:
// an absent key leaves the field alone, an explicit null clears it, a value
// replaces it.
func (s *Server) handlePatchRecurring(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	patch, err := parseRecurringPatch(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := s.svc.UpdateRecurringItem(r.Context(), itemID, patch)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecurringItemDTO(updated))
}

func parseRecurringPatch(raw map[string]json.RawMessage) (core.RecurringItemPatch, error) {
	var patch core.RecurringItemPatch

	if msg, ok := raw["name"]; ok {
		var v string
		if err := json.Unmarshal(msg, &v); err != nil {
			return patch, errInvalidField("name")
		}
		patch.Name = core.Set(v)
	}
	if msg, ok := raw["category_id"]; ok {
		if isNull(msg) {
			patch.CategoryID = core.Clear[int64]()
		} else {
			var v int64
			if err := json.Unmarshal(msg, &v); err != nil {
				return patch, errInvalidField("category_id")
			}
			patch.CategoryID = core.Set(v)
		}
	}
	if msg, ok := raw["status"]; ok {
		var v string
		if err := json.Unmarshal(msg, &v); err != nil {
			return patch, errInvalidField("status")
		}
		patch.Status = core.Set(core.ItemStatus(v))
	}
	if msg, ok := raw["amount"]; ok {
		var v string
		if err := json.Unmarshal(msg, &v); err != nil {
			return patch, errInvalidField("amount")
		}
		amount, err := decimal.NewFromString(v)
		if err != nil {
			return patch, errInvalidField("amount")
		}
		patch.Amount = core.Set(amount)
	}
	if msg, ok := raw["end_date"]; ok {
		if isNull(msg) {
			patch.EndDate = core.Clear[core.Date]()
		} else {
			var v string
			if err := json.Unmarshal(msg, &v); err != nil {
				return patch, errInvalidField("end_date")
			}
			d, err := core.ParseDate(v)
			if err != nil {
				return patch, errInvalidField("end_date")
			}
			patch.EndDate = core.Set(d)
		}
	}
	return patch, nil
}

func isNull(msg json.RawMessage) bool {
	return string(msg) == "null"
}

type fieldError string

func errInvalidField(name string) error { return fieldError(name) }

func (e fieldError) Error() string { return "invalid value for field " + string(e) }
