package facade

import (
	"github.com/transitcore/raptorengine/internal/journey"
	"github.com/transitcore/raptorengine/internal/transit"
)

// DefaultWindowMinutes is the lower-bound horizon an arrive-by search
// probes before the deadline when the caller does not specify one.
const DefaultWindowMinutes = 120

const probeStepSeconds = 60

// ArriveByQuery finds the latest departure time within
// [max(0, arrivalDeadline-windowMinutes*60), arrivalDeadline] whose forward
// search still reaches the destination set by arrivalDeadline, and returns
// the Pareto set produced at that departure. Each probe runs a full
// forward query, so the binary search costs O(log(windowMinutes*60/60))
// full queries — about 7 for the default two-hour window — rather than a
// single combined pass.
func (f *Facade) ArriveByQuery(originIDs, destIDs []transit.StopID, arrivalDeadline int64, k int, windowMinutes int, rf *RouteFilter) ([]journey.Journey, error) {
	if f.active == nil {
		return nil, ErrNoPeriodActive
	}
	if k <= 0 {
		k = DefaultK
	}
	if windowMinutes <= 0 {
		windowMinutes = DefaultWindowMinutes
	}

	lo := arrivalDeadline - int64(windowMinutes)*60
	if lo < 0 {
		lo = 0
	}
	hi := arrivalDeadline

	var best []journey.Journey
	var bestDeparture int64 = -1

	for lo <= hi {
		mid := lo + (hi-lo)/2
		mid -= mid % probeStepSeconds

		journeys, err := f.ForwardQuery(originIDs, destIDs, mid, k, rf)
		if err != nil {
			return nil, err
		}

		reaches := false
		for _, j := range journeys {
			if j.Arrival <= arrivalDeadline {
				reaches = true
				break
			}
		}

		if reaches {
			if mid > bestDeparture {
				bestDeparture = mid
				best = journeys
			}
			lo = mid + probeStepSeconds
		} else {
			hi = mid - probeStepSeconds
		}
	}

	return best, nil
}
