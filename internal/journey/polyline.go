package journey

import (
	"github.com/twpayne/go-polyline"

	"github.com/transitcore/raptorengine/internal/network"
)

// EncodePolyline renders a leg's stop sequence (boarding stop, every
// intermediate stop, alighting stop) as a Google polyline-encoded string.
// This is geometry grounded in the teacher's Leg.Geometry [][2]float64
// field, re-expressed through the encoded-polyline wire format instead of
// raw coordinate pairs; it does not narrate the leg in any way.
func EncodePolyline(net *network.Network, leg Leg) string {
	coords := make([][]float64, 0, len(leg.Intermediate)+2)
	coords = append(coords, stopCoord(net, leg.FromStop))
	for _, st := range leg.Intermediate {
		coords = append(coords, stopCoord(net, st.StopIndex))
	}
	coords = append(coords, stopCoord(net, leg.ToStop))
	return string(polyline.EncodeCoords(coords))
}

func stopCoord(net *network.Network, idx int32) []float64 {
	s := net.Stop(idx)
	return []float64{s.Lat, s.Lon}
}
