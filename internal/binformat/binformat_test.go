package binformat

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transitcore/raptorengine/internal/transit"
)

// --- hand-rolled encoders mirroring the §6 wire format, used only to build
// fixtures for the decoder tests below; production code never writes this
// format, only reads it (a preprocessor outside this repo is the writer).

func encodeStopsV2(t *testing.T, stops []transit.Stop) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.Write(stopsMagicV2[:])
	binary.Write(&buf, binary.LittleEndian, uint16(2))
	binary.Write(&buf, binary.LittleEndian, uint32(len(stops)))
	for _, s := range stops {
		binary.Write(&buf, binary.LittleEndian, uint32(s.ID))
		binary.Write(&buf, binary.LittleEndian, uint16(len(s.Name)))
		buf.WriteString(s.Name)
		binary.Write(&buf, binary.LittleEndian, s.Lat)
		binary.Write(&buf, binary.LittleEndian, s.Lon)
		binary.Write(&buf, binary.LittleEndian, uint32(len(s.RouteIDs)))
		for _, rid := range s.RouteIDs {
			binary.Write(&buf, binary.LittleEndian, uint32(rid))
		}
		binary.Write(&buf, binary.LittleEndian, uint32(len(s.Transfers)))
		for _, tr := range s.Transfers {
			binary.Write(&buf, binary.LittleEndian, uint32(tr.TargetStopID))
			binary.Write(&buf, binary.LittleEndian, tr.WalkSeconds)
		}
	}
	return buf.Bytes()
}

// encodeRoutesV1 writes a routes file holding one route in the V1
// (unsorted, trip-id-then-delta) layout; trips are written in the order
// given, independent of their absolute first-stop time, to exercise the
// stable-sort-after-load requirement.
func encodeRoutesV1(t *testing.T, routeID uint32, name string, stopIDs []transit.StopID, trips []struct {
	id    uint32
	times []int32 // absolute times at each pattern position, file order
}) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.Write(routesMagicV1[:])
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint32(1)) // one route

	binary.Write(&buf, binary.LittleEndian, routeID)
	binary.Write(&buf, binary.LittleEndian, uint16(len(name)))
	buf.WriteString(name)
	binary.Write(&buf, binary.LittleEndian, uint32(len(stopIDs)))
	binary.Write(&buf, binary.LittleEndian, uint32(len(trips)))
	for _, sid := range stopIDs {
		binary.Write(&buf, binary.LittleEndian, uint32(sid))
	}

	for _, trip := range trips {
		binary.Write(&buf, binary.LittleEndian, trip.id)
		prev := int32(0)
		for _, abs := range trip.times {
			binary.Write(&buf, binary.LittleEndian, abs-prev)
			prev = abs
		}
	}
	return buf.Bytes()
}

func TestReadStopsRoundTripsV2(t *testing.T) {
	stops := []transit.Stop{
		{ID: 1, Name: "Alpha", Lat: 1.5, Lon: 2.5, RouteIDs: []transit.RouteID{7}, Transfers: []transit.StopTransfer{{TargetStopID: 2, WalkSeconds: 30}}},
		{ID: 2, Name: "Beta", Lat: 3.5, Lon: 4.5},
	}
	data := encodeStopsV2(t, stops)

	got, version, err := ReadStops(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, V2, version)
	require.Len(t, got, 2)
	assert.Equal(t, "Alpha", got[0].Name)
	assert.Equal(t, 1.5, got[0].Lat)
	assert.Equal(t, []transit.RouteID{7}, got[0].RouteIDs)
	require.Len(t, got[0].Transfers, 1)
	assert.Equal(t, int32(30), got[0].Transfers[0].WalkSeconds)
}

func TestReadStopsRejectsUnknownMagic(t *testing.T) {
	data := append([]byte{'X', 'X', 'X', 'X'}, make([]byte, 10)...)
	_, _, err := ReadStops(bytes.NewReader(data))
	assert.Error(t, err)
}

func TestReadStopsRejectsTruncatedStream(t *testing.T) {
	data := encodeStopsV2(t, []transit.Stop{{ID: 1, Name: "A"}})
	_, _, err := ReadStops(bytes.NewReader(data[:len(data)-4]))
	assert.Error(t, err)
}

func TestReadRoutesV1StableSortsByFirstStopTime(t *testing.T) {
	data := encodeRoutesV1(t, 5, "R1", []transit.StopID{1, 2}, []struct {
		id    uint32
		times []int32
	}{
		{id: 200, times: []int32{2000, 2100}}, // written first, departs later
		{id: 100, times: []int32{1000, 1100}}, // written second, departs earlier
	})

	routes, version, err := ReadRoutes(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, V1, version)
	require.Len(t, routes, 1)

	r := routes[0]
	require.Len(t, r.TripIDs, 2)
	assert.Equal(t, transit.TripID(100), r.TripIDs[0], "earlier-departing trip must sort first")
	assert.Equal(t, transit.TripID(200), r.TripIDs[1])
	assert.Equal(t, int32(1000), r.At(0, 0))
	assert.Equal(t, int32(2000), r.At(1, 0))
	assert.NoError(t, r.Validate())
}

func TestReadRoutesRejectsUnknownMagic(t *testing.T) {
	data := append([]byte{'Q', 'Q', 'Q', 'Q'}, make([]byte, 10)...)
	_, _, err := ReadRoutes(bytes.NewReader(data))
	assert.Error(t, err)
}

func TestLoadStopsAndRoutesCombinesBothStreams(t *testing.T) {
	stops := []transit.Stop{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}}
	stopsData := encodeStopsV2(t, stops)
	routesData := encodeRoutesV1(t, 1, "R1", []transit.StopID{1, 2}, []struct {
		id    uint32
		times []int32
	}{
		{id: 1, times: []int32{0, 100}},
	})

	gotStops, gotRoutes, err := LoadStopsAndRoutes(bytes.NewReader(stopsData), bytes.NewReader(routesData))
	require.NoError(t, err)
	assert.Len(t, gotStops, 2)
	assert.Len(t, gotRoutes, 1)
}
