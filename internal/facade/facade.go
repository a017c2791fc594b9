// Package facade is the public query surface (§4.F): it resolves stop ids
// or names to internal indices, drives the round-based algorithm in
// internal/routing, Pareto-enumerates the resulting journeys, and hides the
// period-switching and metrics plumbing a caller should never have to
// touch directly. The teacher's transport_handler.GetRoute plays the same
// role for the original REST API — parse inputs, resolve stops, call the
// router, shape the answer — just retargeted from HTTP query params to a
// Go method surface so cmd/raptord can be a thin transport layer on top.
package facade

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/transitcore/raptorengine/internal/filter"
	"github.com/transitcore/raptorengine/internal/journey"
	"github.com/transitcore/raptorengine/internal/network"
	"github.com/transitcore/raptorengine/internal/routing"
	"github.com/transitcore/raptorengine/internal/trace"
	"github.com/transitcore/raptorengine/internal/transit"
)

// DefaultK is the round limit used when a caller does not specify one.
const DefaultK = 5

// ErrNoPeriodActive is returned by any query method when no period has
// been registered yet (the first AddPeriod makes its period active).
var ErrNoPeriodActive = errors.New("facade: no active period")

// Facade is not safe for concurrent use: it owns one routing.State, whose
// arrays are reused across queries (§5). Callers needing concurrency hold
// one Facade per worker goroutine.
type Facade struct {
	periods  map[string]*network.Network
	activeID string
	active   *network.Network
	state    *routing.State
	log      zerolog.Logger
	metrics  *Metrics
	trace    *trace.Sink
}

// EnableTrace attaches a debug trace sink (§7) that every subsequent query
// logs its round-by-round decisions to. Passing it in is opt-in and purely
// observational: the returned sink cannot influence a query's result.
func (f *Facade) EnableTrace() *trace.Sink {
	f.trace = trace.New(f.log)
	return f.trace
}

// DisableTrace detaches any trace sink; subsequent queries stop logging.
func (f *Facade) DisableTrace() { f.trace = nil }

// New builds an empty facade. Periods are registered with AddPeriod (the
// first one becomes active) and switched with SetPeriod; no query can run
// until at least one period is registered.
func New(log zerolog.Logger, metrics *Metrics) *Facade {
	return &Facade{
		periods: make(map[string]*network.Network),
		log:     log,
		metrics: metrics,
	}
}

// RouteFilter configures an allow/block list for the route scan, see
// internal/filter.
type RouteFilter = filter.Filter

// ForwardQuery maps origin/destination stop ids to internal indices
// (dropping unknowns), runs the round-based algorithm, and returns the
// non-dominated Pareto set of journeys. An empty result after id
// resolution, or an unreachable destination set, both yield an empty
// slice with no error — that is the algorithm's documented failure mode,
// not a facade error.
func (f *Facade) ForwardQuery(originIDs, destIDs []transit.StopID, departureTime int64, k int, rf *RouteFilter) ([]journey.Journey, error) {
	if f.active == nil {
		return nil, ErrNoPeriodActive
	}
	if k <= 0 {
		k = DefaultK
	}

	origins := resolveIndices(f.active, originIDs)
	destinations := resolveIndices(f.active, destIDs)
	if len(origins) == 0 || len(destinations) == 0 {
		return nil, nil
	}

	stop := f.metrics.startTimer()
	routing.QueryTraced(f.state, f.active, filterOrNil(rf), origins, destinations, departureTime, k, f.trace)
	journeys := journey.ParetoSet(f.state, f.active, destinations, k)
	stop(len(journeys) > 0)

	return journeys, nil
}

// QueryByStopNames is the search-and-format convenience entry point: it
// resolves origin/destination substrings against stop names via
// Network.FindStopsByName, then runs the same search and Pareto
// enumeration ForwardQuery runs. Ambiguous
// substrings naturally widen the origin/destination sets rather than
// erroring, same permissive resolution ForwardQuery already applies to
// unknown ids.
func (f *Facade) QueryByStopNames(originName, destName string, departureTime int64, k int, rf *RouteFilter) ([]journey.Journey, error) {
	if f.active == nil {
		return nil, ErrNoPeriodActive
	}
	if k <= 0 {
		k = DefaultK
	}
	origins := f.active.FindStopsByName(originName)
	destinations := f.active.FindStopsByName(destName)
	if len(origins) == 0 || len(destinations) == 0 {
		return nil, nil
	}

	stop := f.metrics.startTimer()
	routing.QueryTraced(f.state, f.active, filterOrNil(rf), origins, destinations, departureTime, k, f.trace)
	journeys := journey.ParetoSet(f.state, f.active, destinations, k)
	stop(len(journeys) > 0)

	return journeys, nil
}

func filterOrNil(rf *RouteFilter) routing.RouteFilter {
	if rf == nil {
		return nil
	}
	return *rf
}

func resolveIndices(net *network.Network, ids []transit.StopID) []int32 {
	out := make([]int32, 0, len(ids))
	for _, id := range ids {
		if idx := net.StopIndex(id); idx >= 0 {
			out = append(out, idx)
		}
	}
	return out
}
