// Package transit holds the flat, immutable-after-load data model that the
// routing engine operates on: stops, routes and their trip schedules.
package transit

// StopID is the stable integer identifier assigned to a stop by whatever
// produced the binary stop file (§6). It is unique across the Network.
type StopID int32

// RouteID is a route's declared identifier. It is NOT guaranteed unique:
// two Route values may carry the same RouteID when they represent
// directional variants of the same line (see spec.md's open question on
// this). Internal code almost never keys off RouteID directly — it keys
// off the route's position in Network.routes instead.
type RouteID int32

// TripID is the identifier of one scheduled run of a route.
type TripID int32

// StopTransfer is one explicit, pre-computed walking edge out of a stop.
type StopTransfer struct {
	TargetStopID  StopID
	WalkSeconds   int32
}

// Stop is one immutable stop record as produced by a loader.
type Stop struct {
	ID        StopID
	Name      string
	Lat       float64
	Lon       float64
	RouteIDs  []RouteID
	Transfers []StopTransfer
}
