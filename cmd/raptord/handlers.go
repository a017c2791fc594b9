package main

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/transitcore/raptorengine/internal/facade"
	"github.com/transitcore/raptorengine/internal/journey"
	"github.com/transitcore/raptorengine/internal/transit"
)

const defaultDepartureTime = 8*3600 + 30*60 // 08:30, same default the teacher's handler used

// routeHandler answers GET /api/v1/route. Stops are given either as
// from/to name substrings (§6's "route by stop names" convenience entry
// point) or as repeatable from_id/to_id numeric stop ids. A "day" query
// param fans weekend into saturday/sunday the way the teacher's handler
// did, trying each period until one yields a non-empty result.
func routeHandler(fc *facade.Facade) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		departureTime := int64(defaultDepartureTime)
		if t := q.Get("time"); t != "" {
			if parsed, err := strconv.Atoi(t); err == nil && parsed >= 0 {
				departureTime = int64(parsed)
			}
		}
		k := 0
		if kStr := q.Get("k"); kStr != "" {
			k, _ = strconv.Atoi(kStr)
		}

		for _, period := range dayTypesFor(q.Get("day")) {
			if err := fc.SetPeriod(period); err != nil {
				continue
			}

			journeys, err := queryFromParams(fc, q, departureTime, k)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			if len(journeys) > 0 {
				writeJourneys(w, journeys)
				return
			}
		}
		writeJourneys(w, nil)
	}
}

// arriveByHandler answers GET /api/v1/route/arrive-by?deadline=&window=&k=,
// resolving stops from repeatable from_id/to_id numeric ids only; from/to
// name substrings are not read. Only the first day type of "day" is tried.
func arriveByHandler(fc *facade.Facade) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		deadline, err := strconv.ParseInt(q.Get("deadline"), 10, 64)
		if err != nil {
			http.Error(w, "deadline (seconds since midnight) is required", http.StatusBadRequest)
			return
		}
		window := 0
		if ws := q.Get("window"); ws != "" {
			window, _ = strconv.Atoi(ws)
		}
		k := 0
		if kStr := q.Get("k"); kStr != "" {
			k, _ = strconv.Atoi(kStr)
		}

		if err := fc.SetPeriod(dayTypesFor(q.Get("day"))[0]); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		origins, destinations, err := resolveStopIDs(q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if len(origins) == 0 || len(destinations) == 0 {
			writeJourneys(w, nil)
			return
		}

		journeys, err := fc.ArriveByQuery(origins, destinations, deadline, k, window, nil)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJourneys(w, journeys)
	}
}

func periodsHandler(fc *facade.Facade) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"active":    fc.CurrentPeriod(),
			"available": fc.AvailablePeriods(),
		})
	}
}

func setPeriodHandler(fc *facade.Facade) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("id")
		if err := fc.SetPeriod(id); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// queryFromParams prefers from/to name substrings when present, falling
// back to from_id/to_id numeric stop ids.
func queryFromParams(fc *facade.Facade, q url.Values, departureTime int64, k int) ([]journey.Journey, error) {
	if fromName, toName := q.Get("from"), q.Get("to"); fromName != "" && toName != "" {
		return fc.QueryByStopNames(fromName, toName, departureTime, k, nil)
	}

	origins, destinations, err := resolveStopIDs(q)
	if err != nil {
		return nil, err
	}
	if len(origins) == 0 || len(destinations) == 0 {
		return nil, nil
	}
	return fc.ForwardQuery(origins, destinations, departureTime, k, nil)
}

func resolveStopIDs(q url.Values) ([]transit.StopID, []transit.StopID, error) {
	var origins, destinations []transit.StopID
	for _, raw := range q["from_id"] {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return nil, nil, err
		}
		origins = append(origins, transit.StopID(id))
	}
	for _, raw := range q["to_id"] {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return nil, nil, err
		}
		destinations = append(destinations, transit.StopID(id))
	}
	return origins, destinations, nil
}

func dayTypesFor(day string) []string {
	switch strings.ToLower(day) {
	case "weekend":
		return []string{"saturday", "sunday"}
	case "saturday", "sunday":
		return []string{strings.ToLower(day)}
	default:
		return []string{"weekday"}
	}
}

func writeJourneys(w http.ResponseWriter, journeys []journey.Journey) {
	w.Header().Set("Content-Type", "application/json")
	if journeys == nil {
		journeys = []journey.Journey{}
	}
	json.NewEncoder(w).Encode(map[string]interface{}{"journeys": journeys})
}
