package network

import (
	"math"

	"github.com/tidwall/rtree"
)

// spatialIndex answers nearest-stop-by-coordinate queries. It is a
// supplement to the core algorithm (which never needs geography), grounded
// in the teacher's PostGIS ST_DWithin viewport query and in the pack's
// tidwall/rtree usage for the same kind of transit lookup.
type spatialIndex struct {
	tree *rtree.RTreeG[int32]
}

func (n *Network) buildSpatialIndex() {
	tree := &rtree.RTreeG[int32]{}
	for i, s := range n.stops {
		point := [2]float64{s.Lon, s.Lat}
		tree.Insert(point, point, int32(i))
	}
	n.spatial = &spatialIndex{tree: tree}
}

// earthRadiusMeters is the mean Earth radius used for the haversine
// distance below.
const earthRadiusMeters = 6371000.0

func haversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMeters * c
}

// degreesPerMeter is a coarse over-estimate of how many degrees of
// latitude a meter spans, used only to size the rtree bounding box query
// (the longitude pad is widened by 1/cos(lat)); the haversine check below
// does the real filtering.
const degreesPerMeter = 1.0 / 100000.0

// NearestStops returns the internal indices of every stop within
// radiusMeters of (lat, lon), nearest first.
func (n *Network) NearestStops(lat, lon, radiusMeters float64) []int32 {
	latPad := radiusMeters * degreesPerMeter
	lonPad := latPad / math.Cos(lat*math.Pi/180)
	min := [2]float64{lon - lonPad, lat - latPad}
	max := [2]float64{lon + lonPad, lat + latPad}

	type candidate struct {
		idx  int32
		dist float64
	}
	var candidates []candidate
	n.spatial.tree.Search(min, max, func(_, _ [2]float64, idx int32) bool {
		s := n.stops[idx]
		d := haversineMeters(lat, lon, s.Lat, s.Lon)
		if d <= radiusMeters {
			candidates = append(candidates, candidate{idx: idx, dist: d})
		}
		return true
	})

	for i := 1; i < len(candidates); i++ {
		for j := i; j > 0 && candidates[j].dist < candidates[j-1].dist; j-- {
			candidates[j], candidates[j-1] = candidates[j-1], candidates[j]
		}
	}
	out := make([]int32, len(candidates))
	for i, c := range candidates {
		out[i] = c.idx
	}
	return out
}
