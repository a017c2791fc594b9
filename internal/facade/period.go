package facade

import (
	"github.com/pkg/errors"

	"github.com/transitcore/raptorengine/internal/network"
	"github.com/transitcore/raptorengine/internal/routing"
)

// AddPeriod registers a network under id (e.g. "weekday", "saturday",
// matching the teacher's day_type values). The first period registered
// becomes active automatically; component H's "only one active" invariant
// (§5) is enforced simply by always rebuilding the routing.State against
// whichever network SetPeriod most recently chose.
func (f *Facade) AddPeriod(id string, net *network.Network) {
	f.periods[id] = net
	if f.active == nil {
		f.activeID = id
		f.active = net
		f.state = routing.NewState(net, DefaultK)
	}
}

// SetPeriod switches the active network. Returns an error if id was never
// registered via AddPeriod. Switching periods discards the previous
// routing.State outright rather than resetting it in place, since its
// array sizes are tied to the old network's stop/route counts.
func (f *Facade) SetPeriod(id string) error {
	net, ok := f.periods[id]
	if !ok {
		return errors.Errorf("facade: unknown period %q", id)
	}
	f.activeID = id
	f.active = net
	f.state = routing.NewState(net, DefaultK)
	return nil
}

// CurrentPeriod returns the id of the active period, or "" if none has
// been registered yet.
func (f *Facade) CurrentPeriod() string { return f.activeID }

// AvailablePeriods lists every registered period id, in no particular
// order.
func (f *Facade) AvailablePeriods() []string {
	ids := make([]string, 0, len(f.periods))
	for id := range f.periods {
		ids = append(ids, id)
	}
	return ids
}
