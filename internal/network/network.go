// Package network builds the derived, read-only indices the routing
// algorithm scans against: stop->route membership, precomputed per-route
// stop-index arrays, and walking transfers (explicit and same-name
// implicit). Everything here is built once at load time and is safe to
// share across concurrent facades, provided each has its own routing state.
package network

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/transitcore/raptorengine/internal/transit"
)

const implicitTransferSeconds int32 = 120

// transferEntry is one (targetStopIndex, walkSeconds) pair, stored flat per
// origin stop so the hot loop never allocates or hashes.
type transferEntry struct {
	targetIdx int32
	walk      int32
}

// Network is the immutable-after-build representation the core algorithm
// reads. Index i always refers to a stop's position in Network.stops;
// index r always refers to a route's position in Network.routes. Both are
// internal and distinct from the StopID/RouteID the data model carries.
type Network struct {
	stops  []transit.Stop
	routes []transit.Route

	stopIDToIndex map[transit.StopID]int32

	// routeStopIndices[r][k] is the global stop index for pattern position
	// k of route r, or -1 if that position's StopID is unknown.
	routeStopIndices [][]int32

	// routesByStopIndex[i] is the dense list of internal route indices
	// whose pattern contains stop i.
	routesByStopIndex [][]int32

	explicitTransfers [][]transferEntry
	implicitTransfers [][]int32

	spatial *spatialIndex

	log zerolog.Logger
}

// Build constructs a Network from a flat set of stops and routes. It
// validates every route's monotonicity invariants and resolves every
// StopID reference; unresolved references become -1 sentinels that scans
// skip rather than error on, per spec.
func Build(stops []transit.Stop, routes []transit.Route, log zerolog.Logger) (*Network, error) {
	n := &Network{
		stops:         stops,
		routes:        routes,
		stopIDToIndex: make(map[transit.StopID]int32, len(stops)),
		log:           log,
	}

	for i, s := range stops {
		if _, dup := n.stopIDToIndex[s.ID]; dup {
			return nil, errors.Errorf("duplicate stop id %d", s.ID)
		}
		n.stopIDToIndex[s.ID] = int32(i)
	}

	n.routeStopIndices = make([][]int32, len(routes))
	n.routesByStopIndex = make([][]int32, len(stops))
	for r := range routes {
		if err := routes[r].Validate(); err != nil {
			return nil, errors.Wrap(err, "loading route")
		}
		pattern := make([]int32, len(routes[r].StopIDs))
		for k, sid := range routes[r].StopIDs {
			idx, ok := n.stopIDToIndex[sid]
			if !ok {
				pattern[k] = -1
				continue
			}
			pattern[k] = idx
			n.routesByStopIndex[idx] = append(n.routesByStopIndex[idx], int32(r))
		}
		n.routeStopIndices[r] = pattern
	}

	n.buildExplicitTransfers()
	n.buildImplicitTransfers()
	n.buildSpatialIndex()

	n.log.Info().
		Int("stops", len(n.stops)).
		Int("routes", len(n.routes)).
		Msg("network built")

	return n, nil
}

func (n *Network) buildExplicitTransfers() {
	n.explicitTransfers = make([][]transferEntry, len(n.stops))
	for i, s := range n.stops {
		for _, tr := range s.Transfers {
			targetIdx, ok := n.stopIDToIndex[tr.TargetStopID]
			if !ok || int(targetIdx) == i {
				continue
			}
			n.explicitTransfers[i] = append(n.explicitTransfers[i], transferEntry{
				targetIdx: targetIdx,
				walk:      tr.WalkSeconds,
			})
		}
	}
}

func (n *Network) buildImplicitTransfers() {
	byName := make(map[string][]int32)
	for i, s := range n.stops {
		byName[s.Name] = append(byName[s.Name], int32(i))
	}
	n.implicitTransfers = make([][]int32, len(n.stops))
	for _, group := range byName {
		if len(group) < 2 {
			continue
		}
		for _, i := range group {
			for _, j := range group {
				if i == j {
					continue
				}
				n.implicitTransfers[i] = append(n.implicitTransfers[i], j)
			}
		}
	}
}

// StopCount returns N, the number of stops in the network.
func (n *Network) StopCount() int { return len(n.stops) }

// RouteCount returns R, the number of route objects in the network.
func (n *Network) RouteCount() int { return len(n.routes) }

// StopIndex resolves a StopID to its internal index, or -1 if unknown.
func (n *Network) StopIndex(id transit.StopID) int32 {
	if idx, ok := n.stopIDToIndex[id]; ok {
		return idx
	}
	return -1
}

// Stop returns the stop at internal index i.
func (n *Network) Stop(i int32) *transit.Stop { return &n.stops[i] }

// Route returns the route at internal index r.
func (n *Network) Route(r int32) *transit.Route { return &n.routes[r] }

// RouteStopIndices returns the precomputed global stop index for every
// position of route r's pattern (-1 for unresolved positions).
func (n *Network) RouteStopIndices(r int32) []int32 { return n.routeStopIndices[r] }

// RoutesByStopIndex returns the internal route indices whose pattern
// contains stop i.
func (n *Network) RoutesByStopIndex(i int32) []int32 { return n.routesByStopIndex[i] }

// ExplicitTransferCount returns the number of explicit walking transfers
// out of stop i.
func (n *Network) ExplicitTransferCount(i int32) int { return len(n.explicitTransfers[i]) }

// ExplicitTransfer returns the k-th explicit transfer out of stop i.
func (n *Network) ExplicitTransfer(i int32, k int) (targetIdx int32, walkSeconds int32) {
	e := n.explicitTransfers[i][k]
	return e.targetIdx, e.walk
}

// ImplicitTransfers returns the other stop indices sharing stop i's
// display name; these are same-name walk transfers fixed at 120 seconds.
func (n *Network) ImplicitTransfers(i int32) []int32 { return n.implicitTransfers[i] }

// ImplicitTransferSeconds is the fixed walk cost of a same-name transfer.
func (n *Network) ImplicitTransferSeconds() int32 { return implicitTransferSeconds }

// CollectRoutesServingMarks unions routesByStopIndex over every stop index
// in markedPrev, writing each internal route index exactly once into out
// (truncated and reused, never reallocated once it has grown to fit a
// round's worth of routes). seen is a caller-owned scratch buffer of length
// RouteCount that this routine both populates and clears before returning,
// so the caller never pays for a full-buffer reset.
func (n *Network) CollectRoutesServingMarks(markedPrev []int32, seen []bool, out []int32) []int32 {
	out = out[:0]
	for _, stopIdx := range markedPrev {
		for _, r := range n.routesByStopIndex[stopIdx] {
			if !seen[r] {
				seen[r] = true
				out = append(out, r)
			}
		}
	}
	for _, r := range out {
		seen[r] = false
	}
	return out
}

// FindStopsByName performs a case-insensitive substring search over stop
// display names. This is the minimal home for the "stop-by-name
// contains-substring lookup" referenced by §6's public query surface; the
// richer stop-search helper itself remains an external collaborator.
func (n *Network) FindStopsByName(substr string) []int32 {
	substr = strings.ToLower(substr)
	var out []int32
	for i, s := range n.stops {
		if strings.Contains(strings.ToLower(s.Name), substr) {
			out = append(out, int32(i))
		}
	}
	return out
}
