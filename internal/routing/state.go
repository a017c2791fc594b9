// Package routing holds the per-query mutable routing state and the
// round-based earliest-arrival algorithm (RAPTOR) that reads a network and
// writes it.
package routing

import (
	"math"

	"github.com/transitcore/raptorengine/internal/network"
)

// Infinity is the sentinel "unreached" arrival time. It is generous enough
// that adding a walk time or a schedule delta never overflows.
const Infinity int64 = math.MaxInt64 / 4

// noParent is the sentinel stored in every parent array when a (round,
// stop) pair has no predecessor, either because it was never reached or
// because it is an origin.
const noParent int32 = -1

// State is the per-query mutable routing state described in spec.md §3:
// a (K+1)xN best-arrival matrix, a struct-of-arrays parent table, and the
// mark bookkeeping the round loop needs. One State is built per network
// and reused across queries against that network; it is not safe for
// concurrent use.
type State struct {
	net *network.Network

	k int // current query's round limit, <= kMax
	n int // stop count
	r int // route count

	bestArrival [][]int64 // [round][stopIndex], round in [0, kMax]
	touched     [][]int32 // [round] -> stop indices written finite this query

	parentStop      [][]int32 // [round][stopIndex]
	parentRound     [][]int32
	parentRoute     [][]int32 // -1 for a transfer leg
	parentDeparture [][]int64
	parentTrip      [][]int32 // -1 for a transfer leg
	parentBoardPos  [][]int32 // -1 for a transfer leg
	parentAlightPos [][]int32 // -1 for a transfer leg

	markedThisRound []bool
	markedPrevRound []bool
	markedList      []int32 // indices currently set in markedThisRound
	prevMarkedList  []int32 // indices currently set in markedPrevRound

	routesSeen []bool  // len R scratch for CollectRoutesServingMarks
	routesBuf  []int32 // reused output buffer, grows to steady-state size once

	transferSnapshot []int32 // reused snapshot of a round's route-scan marks

	isDestination []bool  // len N scratch, set for the current query's D
	destList      []int32 // indices currently set in isDestination, for O(|D|) clearing

	lastMaxRoundUsed int
}

// NewState allocates routing state for net, sized for round limits up to
// kMax (spec's default is 5; long-distance callers may raise it to ~15).
// The per-stop and per-route arrays are allocated once here; the index
// lists (touched stops, marks, transfer snapshot, destinations) grow by
// append during the first queries and are reused afterwards.
func NewState(net *network.Network, kMax int) *State {
	n := net.StopCount()
	r := net.RouteCount()

	s := &State{
		net: net,
		n:   n,
		r:   r,

		bestArrival: make([][]int64, kMax+1),
		touched:     make([][]int32, kMax+1),

		parentStop:      make([][]int32, kMax+1),
		parentRound:     make([][]int32, kMax+1),
		parentRoute:     make([][]int32, kMax+1),
		parentDeparture: make([][]int64, kMax+1),
		parentTrip:      make([][]int32, kMax+1),
		parentBoardPos:  make([][]int32, kMax+1),
		parentAlightPos: make([][]int32, kMax+1),

		markedThisRound: make([]bool, n),
		markedPrevRound: make([]bool, n),

		routesSeen:    make([]bool, r),
		isDestination: make([]bool, n),
	}

	for k := 0; k <= kMax; k++ {
		s.bestArrival[k] = make([]int64, n)
		for i := range s.bestArrival[k] {
			s.bestArrival[k][i] = Infinity
		}
		s.parentStop[k] = make([]int32, n)
		s.parentRound[k] = make([]int32, n)
		s.parentRoute[k] = make([]int32, n)
		s.parentDeparture[k] = make([]int64, n)
		s.parentTrip[k] = make([]int32, n)
		s.parentBoardPos[k] = make([]int32, n)
		s.parentAlightPos[k] = make([]int32, n)
		fill32(s.parentStop[k], noParent)
		fill32(s.parentRoute[k], noParent)
		fill32(s.parentTrip[k], noParent)
		fill32(s.parentBoardPos[k], noParent)
		fill32(s.parentAlightPos[k], noParent)
	}

	return s
}

func fill32(dst []int32, v int32) {
	for i := range dst {
		dst[i] = v
	}
}

// KMax returns the largest round limit this state was allocated for.
func (s *State) KMax() int { return len(s.bestArrival) - 1 }

// reset clears only the rounds and marks the previous query actually
// touched, bounding reset cost by the previous query's work rather than by
// N or K.
func (s *State) reset(k int) {
	s.k = k
	for round := 0; round <= s.lastMaxRoundUsed && round < len(s.bestArrival); round++ {
		for _, i := range s.touched[round] {
			s.bestArrival[round][i] = Infinity
			s.parentStop[round][i] = noParent
			s.parentRoute[round][i] = noParent
			s.parentTrip[round][i] = noParent
			s.parentBoardPos[round][i] = noParent
			s.parentAlightPos[round][i] = noParent
		}
		s.touched[round] = s.touched[round][:0]
	}
	for _, i := range s.markedList {
		s.markedThisRound[i] = false
	}
	s.markedList = s.markedList[:0]
	for _, i := range s.prevMarkedList {
		s.markedPrevRound[i] = false
	}
	s.prevMarkedList = s.prevMarkedList[:0]
	s.lastMaxRoundUsed = 0
}

// improve sets bestArrival[round][i] = t if t is strictly earlier than
// BestArrival(round, i) (which already reflects earlier rounds), returning
// whether it did. The caller records the matching parent. Callers must
// not call this for a round beyond the state's allocation.
func (s *State) improve(round int, i int32, t int64) bool {
	if t >= s.BestArrival(round, i) {
		return false
	}
	if s.bestArrival[round][i] == Infinity {
		s.touched[round] = append(s.touched[round], i)
	}
	s.bestArrival[round][i] = t
	if round > s.lastMaxRoundUsed {
		s.lastMaxRoundUsed = round
	}
	return true
}

func (s *State) setTransitParent(round int, i int32, fromStop int32, fromRound int32, route int32, departure int64, trip int32, boardPos, alightPos int32) {
	s.parentStop[round][i] = fromStop
	s.parentRound[round][i] = fromRound
	s.parentRoute[round][i] = route
	s.parentDeparture[round][i] = departure
	s.parentTrip[round][i] = trip
	s.parentBoardPos[round][i] = boardPos
	s.parentAlightPos[round][i] = alightPos
}

func (s *State) setTransferParent(round int, i int32, fromStop int32, departure int64) {
	s.parentStop[round][i] = fromStop
	s.parentRound[round][i] = int32(round)
	s.parentRoute[round][i] = noParent
	s.parentDeparture[round][i] = departure
	s.parentTrip[round][i] = noParent
	s.parentBoardPos[round][i] = noParent
	s.parentAlightPos[round][i] = noParent
}

func (s *State) mark(i int32) {
	if s.markedThisRound[i] {
		return
	}
	s.markedThisRound[i] = true
	s.markedList = append(s.markedList, i)
}

// shiftMarks moves the current round's marks into "previous round" and
// clears the current set for fresh marking, reusing both the boolean
// vectors and their backing index-list arrays.
func (s *State) shiftMarks() {
	for _, i := range s.prevMarkedList {
		s.markedPrevRound[i] = false
	}
	for _, i := range s.markedList {
		s.markedThisRound[i] = false
		s.markedPrevRound[i] = true
	}
	s.prevMarkedList, s.markedList = s.markedList, s.prevMarkedList[:0]
}

// BestArrival returns the earliest known arrival at stop i using at most
// round boarded trips, or Infinity if unreached. Rounds only ever record an
// explicit value when that round's scans improve on it, so a round that
// left a stop untouched falls back to the nearest earlier round that
// improved it — equivalent to physically copying bestArrival[k-1] forward
// into bestArrival[k] before each round's scans, without paying for the
// copy.
func (s *State) BestArrival(round int, i int32) int64 {
	r := s.bestArrivalRound(round, i)
	if r < 0 {
		return Infinity
	}
	return s.bestArrival[r][i]
}

// bestArrivalRound returns the most recent round <= upTo at which stop i's
// arrival was explicitly improved, or -1 if i was never reached by upTo.
func (s *State) bestArrivalRound(upTo int, i int32) int {
	for r := upTo; r >= 0; r-- {
		if s.bestArrival[r][i] != Infinity {
			return r
		}
	}
	return -1
}

// ParentAt resolves stop i's predecessor edge as of round upTo: it finds
// the most recent round <= upTo at which i was actually improved (parent
// entries are only written in the round they were set, not copied forward
// the way BestArrival is) and returns that round's parent tuple. atRound
// is the round the returned edge — and i's arrival — belong to; ok is
// false if i was never reached, or was only ever reached as an origin.
func (s *State) ParentAt(upTo int, i int32) (fromStop, fromRound, route int32, departure int64, trip, boardPos, alightPos int32, atRound int, ok bool) {
	r := s.bestArrivalRound(upTo, i)
	if r < 0 {
		return 0, 0, 0, 0, 0, 0, 0, -1, false
	}
	fromStop, fromRound, route, departure, trip, boardPos, alightPos, ok = s.Parent(r, i)
	return fromStop, fromRound, route, departure, trip, boardPos, alightPos, r, ok
}

// markDestinations flags dest as the current query's destination set, for
// O(1) destination membership checks in the hot loop. Callers must pair
// this with clearDestinations once the query completes.
func (s *State) markDestinations(dest []int32) {
	s.destList = append(s.destList[:0], dest...)
	for _, d := range s.destList {
		s.isDestination[d] = true
	}
}

func (s *State) clearDestinations() {
	for _, d := range s.destList {
		s.isDestination[d] = false
	}
}

// Parent returns the predecessor edge recorded for stop i at round. ok is
// false if the stop has no predecessor at this round (unreached, or the
// journey's origin). route == -1 marks a transfer leg rather than a transit
// leg; boardPos/alightPos and trip are meaningless for a transfer leg.
func (s *State) Parent(round int, i int32) (fromStop, fromRound, route int32, departure int64, trip, boardPos, alightPos int32, ok bool) {
	if s.parentStop[round][i] == noParent {
		return 0, 0, 0, 0, 0, 0, 0, false
	}
	return s.parentStop[round][i], s.parentRound[round][i], s.parentRoute[round][i],
		s.parentDeparture[round][i], s.parentTrip[round][i], s.parentBoardPos[round][i], s.parentAlightPos[round][i], true
}

// IsTransferLeg reports whether the route value returned by Parent denotes
// a walking transfer rather than a boarded route.
func IsTransferLeg(route int32) bool { return route == noParent }
