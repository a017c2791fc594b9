package routing

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transitcore/raptorengine/internal/network"
	"github.com/transitcore/raptorengine/internal/transit"
)

// buildFixture constructs a small five-stop, two-route network:
//
//	R1: A -> B -> C, two trips (0900/1000/1100 and 2000/2100/2200)
//	explicit transfer: C -> D, 30s walk
//	R2: D -> E, one trip (1300/1400)
//
// so a rider boarding R1's first trip at A, walking from C to D, then
// boarding R2 reaches E in round 2 at 1400.
func buildFixture(t *testing.T) *network.Network {
	t.Helper()

	stops := []transit.Stop{
		{ID: 1, Name: "A"},
		{ID: 2, Name: "B"},
		{ID: 3, Name: "C", Transfers: []transit.StopTransfer{{TargetStopID: 4, WalkSeconds: 30}}},
		{ID: 4, Name: "D"},
		{ID: 5, Name: "E"},
	}

	r1 := transit.Route{
		ID:      10,
		Name:    "R1",
		StopIDs: []transit.StopID{1, 2, 3},
		TripIDs: []transit.TripID{100, 101},
		Schedule: []int32{
			900, 1000, 1100,
			2000, 2100, 2200,
		},
	}
	r2 := transit.Route{
		ID:       20,
		Name:     "R2",
		StopIDs:  []transit.StopID{4, 5},
		TripIDs:  []transit.TripID{200},
		Schedule: []int32{1300, 1400},
	}

	net, err := network.Build(stops, []transit.Route{r1, r2}, zerolog.Nop())
	require.NoError(t, err)
	return net
}

func TestQueryDirectRide(t *testing.T) {
	net := buildFixture(t)
	state := NewState(net, 5)

	a := net.StopIndex(1)
	c := net.StopIndex(3)

	Query(state, net, nil, []int32{a}, []int32{c}, 800, 2)

	require.Equal(t, int64(1100), state.BestArrival(1, c))
	assert.Equal(t, int64(1100), state.BestArrival(2, c), "round 2 must not regress a round-1 arrival")
}

func TestQueryTransferThenSecondRoute(t *testing.T) {
	net := buildFixture(t)
	state := NewState(net, 5)

	a := net.StopIndex(1)
	e := net.StopIndex(5)

	Query(state, net, nil, []int32{a}, []int32{e}, 800, 5)

	require.Equal(t, Infinity, state.BestArrival(1, e), "E is unreachable with a single transit leg")
	assert.Equal(t, int64(1400), state.BestArrival(2, e))

	fromStop, _, route, _, _, _, _, ok := state.Parent(2, e)
	require.True(t, ok)
	assert.True(t, route >= 0, "the final leg into E is a transit leg, not a transfer")
	assert.Equal(t, net.StopIndex(4), fromStop)
}

func TestQueryMonotonicAcrossRounds(t *testing.T) {
	net := buildFixture(t)
	state := NewState(net, 5)

	a := net.StopIndex(1)
	e := net.StopIndex(5)

	Query(state, net, nil, []int32{a}, []int32{e}, 800, 5)

	for _, stop := range []int32{net.StopIndex(1), net.StopIndex(2), net.StopIndex(3), net.StopIndex(4), e} {
		for k := 1; k <= 5; k++ {
			assert.LessOrEqual(t, state.BestArrival(k, stop), state.BestArrival(k-1, stop))
		}
	}
}

func TestQueryExactDepartureIsBoardable(t *testing.T) {
	net := buildFixture(t)
	state := NewState(net, 5)

	a := net.StopIndex(1)
	b := net.StopIndex(2)

	// departing at exactly the scheduled time must board (>=, not >).
	Query(state, net, nil, []int32{a}, []int32{b}, 900, 1)
	assert.Equal(t, int64(1000), state.BestArrival(1, b))
}

func TestQuerySameOriginAndDestination(t *testing.T) {
	net := buildFixture(t)
	state := NewState(net, 5)

	a := net.StopIndex(1)

	Query(state, net, nil, []int32{a}, []int32{a}, 800, 5)
	assert.Equal(t, int64(800), state.BestArrival(0, a))
}

type idFilter struct {
	blocked map[int32]bool
}

func (f idFilter) Allows(routeID int32, routeName string) bool { return !f.blocked[routeID] }

func TestQueryFilterBlocksRoute(t *testing.T) {
	net := buildFixture(t)
	state := NewState(net, 5)

	a := net.StopIndex(1)
	c := net.StopIndex(3)

	Query(state, net, idFilter{blocked: map[int32]bool{10: true}}, []int32{a}, []int32{c}, 800, 5)
	assert.Equal(t, Infinity, state.BestArrival(5, c))
}

func TestQueryDeterministic(t *testing.T) {
	net := buildFixture(t)
	state := NewState(net, 5)
	a := net.StopIndex(1)
	e := net.StopIndex(5)

	Query(state, net, nil, []int32{a}, []int32{e}, 800, 5)
	first := state.BestArrival(5, e)

	Query(state, net, nil, []int32{a}, []int32{e}, 800, 5)
	second := state.BestArrival(5, e)

	assert.Equal(t, first, second)
}

func TestQueryUnreachableDestination(t *testing.T) {
	net := buildFixture(t)
	state := NewState(net, 5)

	// No route or transfer leads from E back to A, so A is unreachable
	// from E.
	e := net.StopIndex(5)
	a := net.StopIndex(1)

	Query(state, net, nil, []int32{e}, []int32{a}, 800, 5)
	assert.Equal(t, Infinity, state.BestArrival(5, a))
}
