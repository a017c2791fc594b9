package routing

import (
	"github.com/transitcore/raptorengine/internal/network"
	"github.com/transitcore/raptorengine/internal/trace"
)

// RouteFilter decides whether a route may be boarded during a scan. A nil
// filter allows every route; routes not allowed are skipped entirely, as if
// they carried no service. routeID and routeName are the route's domain
// identity (as loaded from the data source), not its internal scan index.
type RouteFilter interface {
	Allows(routeID int32, routeName string) bool
}

// Query runs round-based earliest-arrival search from every stop in
// origins, all departing no earlier than departureTime, for up to kMax
// rounds (transfers), writing every intermediate result into state so later
// rounds and journey reconstruction can read it back. state must have been
// built against net with KMax() >= kMax; kMax is clamped down to
// state.KMax() otherwise. origins and destinations must be non-empty.
//
// destinations enables target pruning: once any path reaches any stop in
// destinations, no relaxation producing a later arrival than the best
// known so far is explored further.
func Query(state *State, net *network.Network, filter RouteFilter, origins, destinations []int32, departureTime int64, kMax int) {
	QueryTraced(state, net, filter, origins, destinations, departureTime, kMax, nil)
}

// QueryTraced is Query with an attached debug trace (§7). tr may be nil
// (equivalent to Query); it only ever receives events, never feeds
// anything back into the search, so attaching one cannot change the
// result of any query.
func QueryTraced(state *State, net *network.Network, filter RouteFilter, origins, destinations []int32, departureTime int64, kMax int, tr *trace.Sink) {
	if kMax > state.KMax() {
		kMax = state.KMax()
	}
	state.reset(kMax)
	state.markDestinations(destinations)
	defer state.clearDestinations()

	for _, o := range origins {
		state.improve(0, o, departureTime)
		state.mark(o)
	}

	bestAtDestination := Infinity
	for _, d := range destinations {
		if v := state.BestArrival(0, d); v < bestAtDestination {
			bestAtDestination = v
		}
	}

	roundsRun := 0
	for k := 1; k <= kMax; k++ {
		state.shiftMarks()
		tr.Round(k, len(state.prevMarkedList))
		if len(state.prevMarkedList) == 0 {
			break
		}
		roundsRun = k

		routes := net.CollectRoutesServingMarks(state.prevMarkedList, state.routesSeen, state.routesBuf)
		state.routesBuf = routes

		for _, r := range routes {
			route := net.Route(r)
			if filter != nil && !filter.Allows(int32(route.ID), route.Name) {
				continue
			}
			scanRoute(state, net, r, k, &bestAtDestination, tr)
		}

		scanTransfers(state, net, k, &bestAtDestination, tr)

		if len(state.markedList) == 0 {
			break
		}
	}
	tr.Done(roundsRun, bestAtDestination)
}

// scanRoute walks route r's stop pattern once in order, carrying the
// earliest trip boardable so far. At every position it first tries to
// alight the currently-held trip (updating the position's arrival) and only
// then checks whether this position offers an earlier boarding — so a stop
// marked in the previous round never gets to "reboard" the very trip it
// just arrived on before that arrival has been recorded.
func scanRoute(state *State, net *network.Network, r int32, k int, bestAtDestination *int64, tr *trace.Sink) {
	route := net.Route(r)
	pattern := net.RouteStopIndices(r)

	activeTrip := int32(-1)
	boardStop := int32(-1)
	boardRound := int32(-1)
	boardPos := int32(-1)
	var boardDeparture int64

	for pos, stopIdx := range pattern {
		if stopIdx == -1 {
			continue
		}

		if activeTrip != -1 {
			arrival := int64(route.At(int(activeTrip), pos))
			if arrival < *bestAtDestination && state.improve(k, stopIdx, arrival) {
				state.setTransitParent(k, stopIdx, boardStop, boardRound, r, boardDeparture, activeTrip, boardPos, int32(pos))
				state.mark(stopIdx)
				tr.Improve(k, stopIdx, arrival)
				if state.isDestination[stopIdx] {
					*bestAtDestination = arrival
				}
			}
		}

		if state.markedPrevRound[stopIdx] {
			prevArrival := state.BestArrival(k-1, stopIdx)
			if prevArrival < Infinity {
				if trip := earliestTrip(net, r, pos, prevArrival); trip != -1 && (activeTrip == -1 || trip < activeTrip) {
					activeTrip = trip
					boardStop = stopIdx
					boardRound = int32(k - 1)
					boardPos = int32(pos)
					boardDeparture = int64(route.At(int(trip), pos))
					tr.Board(k, int32(route.ID), stopIdx, trip, int32(pos))
				}
			}
		}
	}
}

// scanTransfers relaxes every walking edge (explicit and same-name
// implicit) out of the stops reached by this round's route scan. It
// snapshots that stop set before relaxing so a transfer's result never
// feeds another transfer within the same round — RAPTOR transfers are
// single-hop per round by construction.
func scanTransfers(state *State, net *network.Network, k int, bestAtDestination *int64, tr *trace.Sink) {
	state.transferSnapshot = append(state.transferSnapshot[:0], state.markedList...)

	for _, i := range state.transferSnapshot {
		legDeparture := state.BestArrival(k, i)

		for idx := 0; idx < net.ExplicitTransferCount(i); idx++ {
			target, walk := net.ExplicitTransfer(i, idx)
			relax(state, k, i, target, legDeparture, legDeparture+int64(walk), walk, bestAtDestination, tr)
		}
		for _, target := range net.ImplicitTransfers(i) {
			walk := net.ImplicitTransferSeconds()
			relax(state, k, i, target, legDeparture, legDeparture+int64(walk), walk, bestAtDestination, tr)
		}
	}
}

// relax applies one walking edge from -> to, departing at legDeparture (the
// arrival time at from, since walking begins immediately) and arriving at
// arrival.
func relax(state *State, k int, from, to int32, legDeparture, arrival int64, walkSeconds int32, bestAtDestination *int64, tr *trace.Sink) {
	if arrival >= *bestAtDestination {
		return
	}
	if !state.improve(k, to, arrival) {
		return
	}
	state.setTransferParent(k, to, from, legDeparture)
	state.mark(to)
	tr.Transfer(k, from, to, walkSeconds)
	if state.isDestination[to] {
		*bestAtDestination = arrival
	}
}
