// Package journey reconstructs rider-facing journeys from a routing.State
// after a query, and enumerates the non-dominated (arrival-time,
// transfer-count) Pareto set across rounds. This is reconstruction and
// selection only — the human-readable narration of a journey remains an
// external collaborator, per the out-of-scope pretty-printer.
package journey

import (
	"github.com/transitcore/raptorengine/internal/network"
	"github.com/transitcore/raptorengine/internal/routing"
)

// StopTime is one scheduled stop passed through during a transit leg,
// strictly between its boarding and alighting positions.
type StopTime struct {
	StopIndex int32
	Time      int64
}

// Leg is one segment of a journey: either a transit ride (IsTransfer
// false, RouteName/RouteID/Direction populated) or a walking transfer
// (IsTransfer true, those fields meaningless).
type Leg struct {
	IsTransfer   bool
	FromStop     int32
	ToStop       int32
	Departure    int64
	Arrival      int64
	RouteID      int32
	RouteName    string
	Direction    string // display name of the route pattern's last stop
	Intermediate []StopTime
}

// Journey is one complete, temporally consistent itinerary: departure is
// the first leg's departure, arrival is the last leg's arrival, and
// transfers is the number of transit legs (the round it was found at).
type Journey struct {
	Legs      []Leg
	Departure int64
	Arrival   int64
	Transfers int
}

// Reconstruct chases state's parent pointers backward from (destination,
// round) to build the journey that achieves state.BestArrival(round,
// destination), reversing legs into departure-first order. ok is false if
// destination was never reached by round (including the case where
// destination IS the origin with no legs at all).
func Reconstruct(state *routing.State, net *network.Network, destination int32, round int) (Journey, bool) {
	arrival := state.BestArrival(round, destination)
	if arrival == routing.Infinity {
		return Journey{}, false
	}

	var legs []Leg
	stop := destination
	r := round

	for {
		fromStop, fromRound, route, departure, trip, boardPos, alightPos, atRound, ok := state.ParentAt(r, stop)
		if !ok {
			break
		}

		legArrival := state.BestArrival(atRound, stop)

		if routing.IsTransferLeg(route) {
			legs = append(legs, Leg{
				IsTransfer: true,
				FromStop:   fromStop,
				ToStop:     stop,
				Departure:  departure,
				Arrival:    legArrival,
			})
		} else {
			rt := net.Route(route)
			pattern := net.RouteStopIndices(route)

			lo, hi := int(boardPos), int(alightPos)
			var intermediate []StopTime
			for p := lo + 1; p < hi; p++ {
				intermediate = append(intermediate, StopTime{
					StopIndex: pattern[p],
					Time:      int64(rt.At(int(trip), p)),
				})
			}

			legs = append(legs, Leg{
				FromStop:     fromStop,
				ToStop:       stop,
				Departure:    departure,
				Arrival:      legArrival,
				RouteID:      int32(rt.ID),
				RouteName:    rt.Name,
				Direction:    net.Stop(pattern[len(pattern)-1]).Name,
				Intermediate: intermediate,
			})
		}

		stop = fromStop
		r = int(fromRound)
	}

	if len(legs) == 0 {
		// destination is reachable only as the origin itself (O == D): no
		// movement occurred, so this is not a meaningful journey.
		return Journey{}, false
	}

	reverse(legs)
	return Journey{Legs: legs, Departure: legs[0].Departure, Arrival: arrival, Transfers: round}, true
}

func reverse(legs []Leg) {
	for i, j := 0, len(legs)-1; i < j; i, j = i+1, j-1 {
		legs[i], legs[j] = legs[j], legs[i]
	}
}

// ParetoSet enumerates, for k = 1..K, the destination minimizing
// BestArrival(k, d) over d in destinations, emitting a journey only when
// its arrival strictly improves on the previously emitted one. The result
// is non-dominated and ordered by increasing transfer count and strictly
// decreasing arrival time, matching the round loop's own
// monotonic-improvement guarantee.
func ParetoSet(state *routing.State, net *network.Network, destinations []int32, kMax int) []Journey {
	var out []Journey
	bestEmitted := routing.Infinity

	for k := 1; k <= kMax; k++ {
		var bestDest int32 = -1
		bestArrival := routing.Infinity
		for _, d := range destinations {
			if v := state.BestArrival(k, d); v < bestArrival {
				bestArrival = v
				bestDest = d
			}
		}
		if bestDest < 0 || bestArrival >= bestEmitted {
			continue
		}
		j, ok := Reconstruct(state, net, bestDest, k)
		if !ok {
			continue
		}
		out = append(out, j)
		bestEmitted = bestArrival
	}
	return out
}
