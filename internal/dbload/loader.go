// Package dbload builds a Network straight from Postgres/PostGIS, for
// operators who keep their source of truth there instead of shipping
// binary snapshots (internal/binformat). It mirrors the teacher's
// internal/routing.Loader query-by-query: same line_stops/schedules
// schema, same line/direction pattern grouping, same day-type fan-out —
// but produces a network.Network instead of an ad hoc RaptorData, and a
// separate Network per day type since each is a distinct period (§4.H).
package dbload

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/transitcore/raptorengine/internal/network"
	"github.com/transitcore/raptorengine/internal/transit"
)

// DayTypes are the service calendars this loader fans queries out across,
// matching the teacher's day_type column values.
var DayTypes = []string{"weekday", "saturday", "sunday"}

// averageSecondsPerHop approximates inter-stop travel time when a line's
// schedule only records a departure at its first stop, same simplification
// the teacher's loader makes ("3 minutes per stop").
const averageSecondsPerHop = 180

type Loader struct {
	db  *pgxpool.Pool
	log zerolog.Logger
}

func NewLoader(db *pgxpool.Pool, log zerolog.Logger) *Loader {
	return &Loader{db: db, log: log}
}

// LoadPeriod builds the Network for a single day type (period id). Callers
// wanting every period call this once per entry in DayTypes and hand the
// results to a period registry.
func (l *Loader) LoadPeriod(ctx context.Context, dayType string) (*network.Network, error) {
	start := time.Now()

	stops, stopDBToID, err := l.loadStops(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "loading stops")
	}

	routes, err := l.loadRoutes(ctx, dayType, stopDBToID)
	if err != nil {
		return nil, errors.Wrap(err, "loading routes")
	}

	if err := l.loadTransfers(ctx, stops, stopDBToID); err != nil {
		return nil, errors.Wrap(err, "loading transfers")
	}

	net, err := network.Build(stops, routes, l.log)
	if err != nil {
		return nil, errors.Wrap(err, "building network index")
	}

	l.log.Info().Str("period", dayType).Dur("elapsed", time.Since(start)).Msg("postgres load complete")
	return net, nil
}

func (l *Loader) loadStops(ctx context.Context) ([]transit.Stop, map[int]transit.StopID, error) {
	rows, err := l.db.Query(ctx, `SELECT id, name, ST_X(location::geometry), ST_Y(location::geometry) FROM stops`)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var stops []transit.Stop
	dbToID := make(map[int]transit.StopID)

	for rows.Next() {
		var dbID int
		var name string
		var lon, lat float64
		if err := rows.Scan(&dbID, &name, &lon, &lat); err != nil {
			return nil, nil, err
		}
		id := transit.StopID(len(stops))
		dbToID[dbID] = id
		stops = append(stops, transit.Stop{ID: id, Name: name, Lat: lat, Lon: lon})
	}
	l.log.Info().Int("count", len(stops)).Msg("stops loaded")
	return stops, dbToID, rows.Err()
}

func (l *Loader) loadRoutes(ctx context.Context, dayType string, stopDBToID map[int]transit.StopID) ([]transit.Route, error) {
	patternRows, err := l.db.Query(ctx, `SELECT DISTINCT line_id, direction FROM line_stops`)
	if err != nil {
		return nil, err
	}
	type pattern struct{ lineID, direction int }
	var patterns []pattern
	for patternRows.Next() {
		var p pattern
		if err := patternRows.Scan(&p.lineID, &p.direction); err != nil {
			patternRows.Close()
			return nil, err
		}
		patterns = append(patterns, p)
	}
	patternRows.Close()

	var routes []transit.Route
	for _, p := range patterns {
		var lineName string
		if err := l.db.QueryRow(ctx, `SELECT code FROM lines WHERE id=$1`, p.lineID).Scan(&lineName); err != nil {
			l.log.Warn().Int("line_id", p.lineID).Err(err).Msg("skipping line with no metadata")
			continue
		}

		route, err := l.buildRoute(ctx, p.lineID, p.direction, lineName, dayType, stopDBToID)
		if err != nil {
			return nil, err
		}
		if route == nil {
			continue
		}
		routes = append(routes, *route)
	}
	l.log.Info().Int("count", len(routes)).Str("period", dayType).Msg("routes loaded")
	return routes, nil
}

func (l *Loader) buildRoute(ctx context.Context, lineID, direction int, lineName, dayType string, stopDBToID map[int]transit.StopID) (*transit.Route, error) {
	stopRows, err := l.db.Query(ctx,
		`SELECT stop_id FROM line_stops WHERE line_id=$1 AND direction=$2 ORDER BY stop_sequence`,
		lineID, direction)
	if err != nil {
		return nil, err
	}
	var stopIDs []transit.StopID
	var firstStopDB int
	first := true
	for stopRows.Next() {
		var dbID int
		if err := stopRows.Scan(&dbID); err != nil {
			stopRows.Close()
			return nil, err
		}
		if id, ok := stopDBToID[dbID]; ok {
			stopIDs = append(stopIDs, id)
			if first {
				firstStopDB = dbID
				first = false
			}
		}
	}
	stopRows.Close()
	if len(stopIDs) < 2 {
		return nil, nil
	}

	tripRows, err := l.db.Query(ctx,
		`SELECT departure_time FROM schedules WHERE line_id=$1 AND direction=$2 AND stop_id=$3 AND day_type=$4 ORDER BY departure_time`,
		lineID, direction, firstStopDB, dayType)
	if err != nil {
		return nil, err
	}
	defer tripRows.Close()

	s := len(stopIDs)
	var schedule []int32
	var tripIDs []transit.TripID
	tripID := transit.TripID(0)
	for tripRows.Next() {
		var departure time.Time
		if err := tripRows.Scan(&departure); err != nil {
			return nil, err
		}
		start := int32(departure.Hour()*3600 + departure.Minute()*60 + departure.Second())
		row := make([]int32, s)
		cur := start
		for i := range row {
			row[i] = cur
			cur += averageSecondsPerHop
		}
		schedule = append(schedule, row...)
		tripIDs = append(tripIDs, tripID)
		tripID++
	}

	route := &transit.Route{
		ID:       transit.RouteID(lineID),
		Name:     lineName,
		StopIDs:  stopIDs,
		TripIDs:  tripIDs,
		Schedule: schedule,
	}
	return route, nil
}

func (l *Loader) loadTransfers(ctx context.Context, stops []transit.Stop, stopDBToID map[int]transit.StopID) error {
	rows, err := l.db.Query(ctx, `
		SELECT s1.id, s2.id, ST_Distance(s1.location::geography, s2.location::geography)
		FROM stops s1
		JOIN stops s2 ON ST_DWithin(s1.location::geography, s2.location::geography, 300)
		WHERE s1.id != s2.id
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var dbFrom, dbTo int
		var distMeters float64
		if err := rows.Scan(&dbFrom, &dbTo, &distMeters); err != nil {
			return err
		}
		fromID, ok1 := stopDBToID[dbFrom]
		toID, ok2 := stopDBToID[dbTo]
		if !ok1 || !ok2 {
			continue
		}
		stops[fromID].Transfers = append(stops[fromID].Transfers, transit.StopTransfer{
			TargetStopID: toID,
			WalkSeconds:  int32(distMeters), // ~1 m/s walking speed, same as the teacher's loader
		})
		count++
	}
	l.log.Info().Int("count", count).Msg("transfers generated")
	return rows.Err()
}
