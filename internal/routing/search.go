package routing

import "github.com/transitcore/raptorengine/internal/network"

// earliestTrip finds the earliest trip on route r that can be boarded at
// pattern position pos no earlier than arrivalTime, by binary search over
// the route's trip axis (O(log T)). It relies on Route.Validate's
// column-monotonicity invariant: departures at a fixed position are
// non-decreasing in trip index. Returns -1 if no such trip exists.
func earliestTrip(net *network.Network, r int32, pos int, arrivalTime int64) int32 {
	route := net.Route(r)
	t := route.TripCount()

	lo, hi := 0, t
	for lo < hi {
		mid := (lo + hi) / 2
		if int64(route.At(mid, pos)) >= arrivalTime {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	if lo == t {
		return -1
	}
	return int32(lo)
}
