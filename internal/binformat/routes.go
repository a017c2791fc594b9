package binformat

import (
	"bufio"
	"encoding/binary"
	"io"
	"sort"

	"github.com/pkg/errors"

	"github.com/transitcore/raptorengine/internal/transit"
)

// ReadRoutes parses the binary routes stream described in spec.md §6:
// header magic RRTS (v1) or RRT2 (v2). V1 stores trips in file order with a
// leading trip id and must be stable-sorted by first-stop absolute time
// after loading; V2 stores trip ids and deltas as parallel arrays, already
// sorted.
func ReadRoutes(r io.Reader) ([]transit.Route, FormatVersion, error) {
	br, closeFn, err := openStream(r)
	if err != nil {
		return nil, 0, err
	}
	defer closeFn()

	magic, err := peekMagic(br)
	if err != nil {
		return nil, 0, err
	}

	var version FormatVersion
	switch magic {
	case routesMagicV1:
		version = V1
	case routesMagicV2:
		version = V2
	default:
		return nil, 0, errors.Errorf("routes file: unknown magic %q (%v)", string(magic[:]), magic)
	}
	if err := discard(br, 4); err != nil {
		return nil, 0, err
	}

	var fileVersion uint16
	if err := binary.Read(br, binary.LittleEndian, &fileVersion); err != nil {
		return nil, 0, errors.Wrap(err, "routes file: truncated version field")
	}

	var routeCount uint32
	if err := binary.Read(br, binary.LittleEndian, &routeCount); err != nil {
		return nil, 0, errors.Wrap(err, "routes file: truncated route count")
	}

	routes := make([]transit.Route, routeCount)
	for i := range routes {
		route, err := readOneRoute(br, version)
		if err != nil {
			return nil, 0, errors.Wrapf(err, "routes file: route %d", i)
		}
		routes[i] = route
	}
	return routes, version, nil
}

func readOneRoute(br *bufio.Reader, version FormatVersion) (transit.Route, error) {
	var route transit.Route

	var routeID uint32
	if err := binary.Read(br, binary.LittleEndian, &routeID); err != nil {
		return route, errors.Wrap(err, "route id")
	}
	route.ID = transit.RouteID(routeID)

	var nameLen uint16
	if err := binary.Read(br, binary.LittleEndian, &nameLen); err != nil {
		return route, errors.Wrap(err, "name length")
	}
	nameBuf := make([]byte, nameLen)
	if _, err := io.ReadFull(br, nameBuf); err != nil {
		return route, errors.Wrap(err, "name bytes")
	}
	route.Name = string(nameBuf)

	var s, t uint32
	if err := binary.Read(br, binary.LittleEndian, &s); err != nil {
		return route, errors.Wrap(err, "stop pattern length")
	}
	if err := binary.Read(br, binary.LittleEndian, &t); err != nil {
		return route, errors.Wrap(err, "trip count")
	}

	route.StopIDs = make([]transit.StopID, s)
	for i := range route.StopIDs {
		var sid uint32
		if err := binary.Read(br, binary.LittleEndian, &sid); err != nil {
			return route, errors.Wrapf(err, "pattern stop %d", i)
		}
		route.StopIDs[i] = transit.StopID(sid)
	}

	switch version {
	case V1:
		return readTripsV1(br, route, int(t), int(s))
	default:
		return readTripsV2(br, route, int(t), int(s))
	}
}

// readTripsV1 reads trip-id-then-deltas records in file order, then
// stable-sorts by first-stop absolute time (spec.md §6: "loader must
// stable-sort trips by their first-stop absolute time").
func readTripsV1(br *bufio.Reader, route transit.Route, t, s int) (transit.Route, error) {
	tripIDs := make([]transit.TripID, t)
	schedule := make([]int32, t*s)

	for trip := 0; trip < t; trip++ {
		var tripID uint32
		if err := binary.Read(br, binary.LittleEndian, &tripID); err != nil {
			return route, errors.Wrapf(err, "trip %d id", trip)
		}
		tripIDs[trip] = transit.TripID(tripID)

		var acc int32
		for pos := 0; pos < s; pos++ {
			var delta int32
			if err := binary.Read(br, binary.LittleEndian, &delta); err != nil {
				return route, errors.Wrapf(err, "trip %d delta %d", trip, pos)
			}
			acc += delta
			schedule[trip*s+pos] = acc
		}
	}

	order := make([]int, t)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return schedule[order[a]*s] < schedule[order[b]*s]
	})

	route.TripIDs = make([]transit.TripID, t)
	route.Schedule = make([]int32, t*s)
	for newIdx, oldIdx := range order {
		route.TripIDs[newIdx] = tripIDs[oldIdx]
		copy(route.Schedule[newIdx*s:(newIdx+1)*s], schedule[oldIdx*s:(oldIdx+1)*s])
	}
	return route, nil
}

// readTripsV2 reads the pre-sorted V2 encoding: T trip ids, then T*S
// deltas. No sort is required.
func readTripsV2(br *bufio.Reader, route transit.Route, t, s int) (transit.Route, error) {
	route.TripIDs = make([]transit.TripID, t)
	for trip := 0; trip < t; trip++ {
		var tripID uint32
		if err := binary.Read(br, binary.LittleEndian, &tripID); err != nil {
			return route, errors.Wrapf(err, "trip %d id", trip)
		}
		route.TripIDs[trip] = transit.TripID(tripID)
	}

	route.Schedule = make([]int32, t*s)
	for trip := 0; trip < t; trip++ {
		var acc int32
		for pos := 0; pos < s; pos++ {
			var delta int32
			if err := binary.Read(br, binary.LittleEndian, &delta); err != nil {
				return route, errors.Wrapf(err, "trip %d delta %d", trip, pos)
			}
			acc += delta
			route.Schedule[trip*s+pos] = acc
		}
	}
	return route, nil
}
