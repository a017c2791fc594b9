package transit

import "github.com/pkg/errors"

// Route is a direction-specific line: a fixed stop pattern and every trip
// that follows it. Route.Schedule is row-major, T*S entries: the time the
// t-th trip serves the s-th pattern position is Schedule[t*S+s]. Times may
// exceed 86400 to encode post-midnight service; a zero-trip route is legal
// and simply never matches a boarding.
type Route struct {
	ID       RouteID
	Name     string
	StopIDs  []StopID
	TripIDs  []TripID
	Schedule []int32
}

// StopCount returns S, the length of the route's stop pattern.
func (r *Route) StopCount() int {
	return len(r.StopIDs)
}

// TripCount returns T, the number of scheduled trips on this route.
func (r *Route) TripCount() int {
	return len(r.TripIDs)
}

// At returns the absolute time (seconds since midnight, possibly >= 86400)
// the t-th trip serves the s-th pattern position.
func (r *Route) At(trip, pos int) int32 {
	return r.Schedule[trip*r.StopCount()+pos]
}

// Validate checks the two RAPTOR-required monotonicity invariants: trips do
// not overtake each other (schedule rows are non-decreasing in trip index
// at every column), and no trip travels back in time along its own pattern.
// Zero-trip routes trivially satisfy both and are kept (they carry no
// service but are valid patterns).
func (r *Route) Validate() error {
	s := r.StopCount()
	t := r.TripCount()
	if s == 0 {
		return errors.Errorf("route %d (%s): empty stop pattern", r.ID, r.Name)
	}
	if len(r.Schedule) != t*s {
		return errors.Errorf("route %d (%s): schedule has %d entries, want %d (T=%d S=%d)",
			r.ID, r.Name, len(r.Schedule), t*s, t, s)
	}
	for trip := 0; trip < t; trip++ {
		for pos := 1; pos < s; pos++ {
			if r.At(trip, pos) < r.At(trip, pos-1) {
				return errors.Errorf("route %d (%s): trip %d travels backward in time at pattern position %d",
					r.ID, r.Name, trip, pos)
			}
		}
	}
	for pos := 0; pos < s; pos++ {
		for trip := 1; trip < t; trip++ {
			if r.At(trip, pos) < r.At(trip-1, pos) {
				return errors.Errorf("route %d (%s): trip %d departs before trip %d at pattern position %d, trips must be sorted",
					r.ID, r.Name, trip, trip-1, pos)
			}
		}
	}
	return nil
}
