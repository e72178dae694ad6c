package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"buste/internal/core"
	"buste/internal/services"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps the service's validation failures onto status
// codes; everything else is a 500.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrPeriodNotConfigured),
		errors.Is(err, services.ErrPeriodMisaligned),
		errors.Is(err, services.ErrGroupCategory):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, services.ErrUnknownCategory):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.PathValue(name), 10, 64)
}

// queryDate reads a YYYY-MM-DD query parameter, defaulting to today.
func queryDate(r *http.Request, name string) (core.Date, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return core.DateOf(time.Now().UTC()), nil
	}
	return core.ParseDate(raw)
}

// queryRange reads the start and end parameters into a period range.
func queryRange(r *http.Request) (core.PeriodRange, error) {
	start, err := core.ParseDate(r.URL.Query().Get("start"))
	if err != nil {
		return core.PeriodRange{}, err
	}
	end, err := core.ParseDate(r.URL.Query().Get("end"))
	if err != nil {
		return core.PeriodRange{}, err
	}
	return core.PeriodRange{Start: start, End: end}, nil
}
