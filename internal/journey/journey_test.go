package journey

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transitcore/raptorengine/internal/network"
	"github.com/transitcore/raptorengine/internal/routing"
	"github.com/transitcore/raptorengine/internal/transit"
)

// buildFixture mirrors internal/routing's fixture: A -> B -> C on R1 (two
// trips), a 30s explicit transfer C -> D, then D -> E on R2.
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

func TestReconstructDirectRide(t *testing.T) {
	net := buildFixture(t)
	state := routing.NewState(net, 5)

	a, c := net.StopIndex(1), net.StopIndex(3)
	routing.Query(state, net, nil, []int32{a}, []int32{c}, 800, 5)

	j, ok := Reconstruct(state, net, c, 1)
	require.True(t, ok)
	require.Len(t, j.Legs, 1)
	assert.False(t, j.Legs[0].IsTransfer)
	assert.Equal(t, "R1", j.Legs[0].RouteName)
	assert.Equal(t, int64(900), j.Legs[0].Departure)
	assert.Equal(t, int64(1100), j.Legs[0].Arrival)
	assert.Equal(t, int64(900), j.Departure)
	assert.Equal(t, int64(1100), j.Arrival)
	assert.GreaterOrEqual(t, j.Legs[0].Departure, int64(800))
}

func TestReconstructTransferThenSecondRoute(t *testing.T) {
	net := buildFixture(t)
	state := routing.NewState(net, 5)

	a, e := net.StopIndex(1), net.StopIndex(5)
	routing.Query(state, net, nil, []int32{a}, []int32{e}, 800, 5)

	j, ok := Reconstruct(state, net, e, 2)
	require.True(t, ok)
	require.Len(t, j.Legs, 3)

	assert.False(t, j.Legs[0].IsTransfer)
	assert.Equal(t, "R1", j.Legs[0].RouteName)
	assert.True(t, j.Legs[1].IsTransfer)
	assert.False(t, j.Legs[2].IsTransfer)
	assert.Equal(t, "R2", j.Legs[2].RouteName)

	// temporal consistency: each leg's departure <= arrival, and legs chain.
	for i, leg := range j.Legs {
		assert.LessOrEqual(t, leg.Departure, leg.Arrival)
		if i > 0 {
			assert.LessOrEqual(t, j.Legs[i-1].Arrival, leg.Departure)
		}
	}
	assert.GreaterOrEqual(t, j.Legs[0].Departure, int64(800))
	assert.Equal(t, int64(1400), j.Arrival)
}

func TestReconstructSameOriginAndDestinationIsNotAJourney(t *testing.T) {
	net := buildFixture(t)
	state := routing.NewState(net, 5)

	a := net.StopIndex(1)
	routing.Query(state, net, nil, []int32{a}, []int32{a}, 800, 5)

	_, ok := Reconstruct(state, net, a, 1)
	assert.False(t, ok)
}

func TestParetoSetStrictlyImproves(t *testing.T) {
	net := buildFixture(t)
	state := routing.NewState(net, 5)

	a, e := net.StopIndex(1), net.StopIndex(5)
	routing.Query(state, net, nil, []int32{a}, []int32{e}, 800, 5)

	journeys := ParetoSet(state, net, []int32{e}, 5)
	require.NotEmpty(t, journeys)
	for i := 1; i < len(journeys); i++ {
		assert.Less(t, journeys[i].Arrival, journeys[i-1].Arrival,
			"each later (higher-transfer-count) journey must strictly improve arrival")
	}
}

func TestParetoSetEmptyWhenUnreachable(t *testing.T) {
	net := buildFixture(t)
	state := routing.NewState(net, 5)

	e, a := net.StopIndex(5), net.StopIndex(1)
	routing.Query(state, net, nil, []int32{e}, []int32{a}, 800, 5)

	journeys := ParetoSet(state, net, []int32{a}, 5)
	assert.Empty(t, journeys)
}
