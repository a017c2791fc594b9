// Package filter implements the whitelist/blacklist route predicate the
// query facade may pass down to the core algorithm. A Filter is a plain
// configuration record, not a closure, so its dispatch is predictable and
// it is trivially comparable/loggable.
package filter

// Filter restricts which routes a query may board, evaluated once per
// route at the start of each round's scan. The zero value allows every
// route.
type Filter struct {
	AllowedIDs   map[int32]bool
	AllowedNames map[string]bool
	BlockedIDs   map[int32]bool
	BlockedNames map[string]bool
}

// Allows reports whether the route identified by id/name may be boarded.
// An allow-list, if present, is exclusive: absence from it rejects the
// route even if no block-list mentions it. Block-lists always take effect
// regardless of allow-lists. This satisfies routing.RouteFilter.
func (f Filter) Allows(id int32, name string) bool {
	if f.AllowedIDs != nil && !f.AllowedIDs[id] {
		return false
	}
	if f.AllowedNames != nil && !f.AllowedNames[name] {
		return false
	}
	if f.BlockedIDs[id] {
		return false
	}
	if f.BlockedNames[name] {
		return false
	}
	return true
}
