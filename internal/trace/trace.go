// Package trace is the debug side channel §7 describes: when attached,
// it logs the round loop's scan-route/scan-transfer decisions through
// zerolog; when not attached, every call is a no-op. Nothing in
// internal/routing reads trace state back, so attaching or detaching a
// sink cannot change a query's output — only what gets logged about it.
package trace

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Sink receives round-by-round events for a single query. A nil *Sink is
// valid and silently discards everything, so callers that never want
// tracing pay no cost beyond a pointer nil-check per event.
type Sink struct {
	id  uuid.UUID
	log zerolog.Logger
}

// New starts a trace for one query, tagged with a fresh id so concurrent
// queries against different facades don't interleave in the same log
// stream unreadably.
func New(log zerolog.Logger) *Sink {
	id := uuid.New()
	return &Sink{id: id, log: log.With().Str("trace_id", id.String()).Logger()}
}

// ID returns the trace's identifier, or the zero UUID if s is nil.
func (s *Sink) ID() uuid.UUID {
	if s == nil {
		return uuid.UUID{}
	}
	return s.id
}

// Round logs the start of round k.
func (s *Sink) Round(k int, markedCount int) {
	if s == nil {
		return
	}
	s.log.Debug().Int("round", k).Int("marked_prev", markedCount).Msg("round start")
}

// Board logs a boarding or reboarding decision on a route scan.
func (s *Sink) Board(round int, routeID int32, stopIdx int32, trip int32, pos int32) {
	if s == nil {
		return
	}
	s.log.Debug().Int("round", round).Int32("route", routeID).Int32("stop", stopIdx).
		Int32("trip", trip).Int32("pos", pos).Msg("board")
}

// Improve logs a bestArrival improvement at a stop.
func (s *Sink) Improve(round int, stopIdx int32, arrival int64) {
	if s == nil {
		return
	}
	s.log.Debug().Int("round", round).Int32("stop", stopIdx).Int64("arrival", arrival).Msg("improve")
}

// Transfer logs a relaxed walking edge.
func (s *Sink) Transfer(round int, from, to int32, walkSeconds int32) {
	if s == nil {
		return
	}
	s.log.Debug().Int("round", round).Int32("from", from).Int32("to", to).
		Int32("walk_seconds", walkSeconds).Msg("transfer")
}

// Done logs the query's terminal bestAtDestination bound.
func (s *Sink) Done(roundsRun int, bestAtDestination int64) {
	if s == nil {
		return
	}
	s.log.Debug().Int("rounds_run", roundsRun).Int64("best_at_destination", bestAtDestination).Msg("query done")
}
