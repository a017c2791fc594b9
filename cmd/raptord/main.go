// Command raptord is a minimal HTTP demonstration server for the query
// facade. It loads one network per period from the binary format (§6) and
// exposes the forward and arrive-by queries over chi routes, mirroring the
// teacher's main.go shape: flat setup in main, no generic CLI framework,
// PORT from the environment.
package main

import (
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/transitcore/raptorengine/internal/binformat"
	"github.com/transitcore/raptorengine/internal/facade"
	"github.com/transitcore/raptorengine/internal/network"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	log.Logger = logger

	reg := prometheus.NewRegistry()
	metrics := facade.NewMetrics(reg)
	fc := facade.New(logger, metrics)

	dataDir := os.Getenv("RAPTORD_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	loader := binformat.NewLoader(logger)
	for _, period := range []string{"weekday", "saturday", "sunday"} {
		net, err := loadPeriod(loader, dataDir, period)
		if err != nil {
			logger.Warn().Str("period", period).Err(err).Msg("skipping period, no binary snapshot found")
			continue
		}
		fc.AddPeriod(period, net)
	}
	if fc.CurrentPeriod() == "" {
		logger.Fatal().Msg("no periods loaded, nothing to serve")
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","service":"raptorengine"}`))
	})
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/route", routeHandler(fc))
		r.Get("/route/arrive-by", arriveByHandler(fc))
		r.Get("/periods", periodsHandler(fc))
		r.Post("/periods/active", setPeriodHandler(fc))
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	logger.Info().Str("port", port).Str("period", fc.CurrentPeriod()).Msg("server starting")
	if err := http.ListenAndServe(":"+port, r); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

// loadPeriod reads "<period>.stops.bin" and "<period>.routes.bin" from
// dataDir. A missing pair is reported as an error so main can skip that
// period rather than failing the whole process — a deployment serving only
// weekday data is legitimate.
func loadPeriod(loader *binformat.Loader, dataDir, period string) (*network.Network, error) {
	stopsPath := filepath.Join(dataDir, period+".stops.bin")
	routesPath := filepath.Join(dataDir, period+".routes.bin")

	stopsFile, err := os.Open(stopsPath)
	if err != nil {
		return nil, err
	}
	defer stopsFile.Close()

	routesFile, err := os.Open(routesPath)
	if err != nil {
		return nil, err
	}
	defer routesFile.Close()

	return loader.Load(stopsFile, routesFile)
}
