package binformat

import (
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/transitcore/raptorengine/internal/network"
	"github.com/transitcore/raptorengine/internal/transit"
)

// Loader reads the two binary streams (§6) into a built Network. It plays
// the role the teacher's internal/routing.Loader played against Postgres,
// but against the binary on-disk format instead — see internal/dbload for
// the Postgres-backed sibling.
type Loader struct {
	log zerolog.Logger
}

// NewLoader returns a Loader that logs load progress through log.
func NewLoader(log zerolog.Logger) *Loader {
	return &Loader{log: log}
}

// Load parses stopsStream and routesStream and builds the Network they
// describe. Any parse failure (unknown magic, truncated stream, a
// monotonicity violation) is fatal and returned wrapped with its waypoint.
func (l *Loader) Load(stopsStream, routesStream io.Reader) (*network.Network, error) {
	start := time.Now()

	stops, stopsVersion, err := ReadStops(stopsStream)
	if err != nil {
		return nil, errors.Wrap(err, "loading stops")
	}
	l.log.Info().Int("count", len(stops)).Int("version", int(stopsVersion)).Msg("stops loaded")

	routes, routesVersion, err := ReadRoutes(routesStream)
	if err != nil {
		return nil, errors.Wrap(err, "loading routes")
	}
	l.log.Info().Int("count", len(routes)).Int("version", int(routesVersion)).Msg("routes loaded")

	n, err := network.Build(stops, routes, l.log)
	if err != nil {
		return nil, errors.Wrap(err, "building network index")
	}

	l.log.Info().Dur("elapsed", time.Since(start)).Msg("binary load complete")
	return n, nil
}

// LoadStopsAndRoutes exposes the raw flat data model without building a
// Network, for callers (tests, the dbload importer's counterpart tooling)
// that want to inspect or re-encode it.
func LoadStopsAndRoutes(stopsStream, routesStream io.Reader) ([]transit.Stop, []transit.Route, error) {
	stops, _, err := ReadStops(stopsStream)
	if err != nil {
		return nil, nil, errors.Wrap(err, "loading stops")
	}
	routes, _, err := ReadRoutes(routesStream)
	if err != nil {
		return nil, nil, errors.Wrap(err, "loading routes")
	}
	return stops, routes, nil
}
