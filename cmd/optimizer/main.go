package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"warehouse-route-optimizer/internal/adapters/cache"
	"warehouse-route-optimizer/internal/adapters/coordfile"
	"warehouse-route-optimizer/internal/adapters/distance"
	"warehouse-route-optimizer/internal/adapters/geocode"
	"warehouse-route-optimizer/internal/adapters/repositories"
	"warehouse-route-optimizer/internal/config"
	"warehouse-route-optimizer/internal/domain"
	"warehouse-route-optimizer/internal/platform/db"
	"warehouse-route-optimizer/internal/platform/obs"
	"warehouse-route-optimizer/internal/ports"
	"warehouse-route-optimizer/internal/services"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// main reads delivery addresses from stdin (or a coordinates file), finds a
// warehouse location with truck routes and prints the best plan.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	configPath := flag.String("config", config.Get("OPTIMIZER_CONFIG", "optimizer.yaml"), "optimizer parameters (YAML)")
	coordsIn := flag.String("coords", "", "read stops from a coordinates file instead of geocoding stdin")
	coordsOut := flag.String("out", config.Get("COORDINATES_PATH", "coordinates.txt"), "where to write geocoded coordinates")
	metric := flag.String("distance", "vincenty", "distance metric: vincenty or haversine")
	trucks := flag.Int("trucks", 0, "override the configured truck count")
	runs := flag.Int("runs", 0, "override the configured number of runs")
	seed := flag.Uint64("seed", 0, "override the configured seed")
	verbose := flag.Bool("v", false, "report every generation")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, options{
		configPath: *configPath,
		coordsIn:   *coordsIn,
		coordsOut:  *coordsOut,
		metric:     *metric,
		trucks:     *trucks,
		runs:       *runs,
		seed:       *seed,
		verbose:    *verbose,
	}, os.Stdin, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

type options struct {
	configPath string
	coordsIn   string
	coordsOut  string
	metric     string
	trucks     int
	runs       int
	seed       uint64
	verbose    bool
}

func run(ctx context.Context, opt options, stdin io.Reader, stdout io.Writer) error {
	cfg, err := config.Load(opt.configPath)
	if err != nil {
		return err
	}
	if opt.trucks > 0 {
		cfg.Trucks = opt.trucks
	}
	if opt.runs > 0 {
		cfg.Runs = opt.runs
	}
	if opt.seed > 0 {
		cfg.Seed = opt.seed
	}
	if opt.verbose {
		cfg.ReportEvery = 1
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	fn, err := distanceFunc(opt.metric)
	if err != nil {
		return err
	}

	// Postgres is optional; without it nothing is cached or stored.
	var conn *sql.DB
	if url := strings.TrimSpace(os.Getenv("DATABASE_URL")); url != "" {
		conn, err = db.Open(ctx, url)
		if err != nil {
			return err
		}
		defer conn.Close()

		if err := repositories.InitSchema(ctx, conn); err != nil {
			return err
		}
	}

	ctx = obs.WithRunID(ctx, uuid.NewString())

	stops, err := loadStops(ctx, opt, conn, stdin)
	if err != nil {
		return err
	}

	store, closeStore, err := distanceStore(ctx, conn)
	if err != nil {
		return err
	}
	defer closeStore()

	distances, err := services.NewDistanceCache(fn, store)
	if err != nil {
		return err
	}

	every := max(cfg.ReportEvery, 1)
	plan, err := services.PlanRoutes(ctx, services.PlanRoutesRequest{
		Stops:  stops,
		Trucks: cfg.Trucks,
		Runs:   cfg.Runs,
		Seed:   cfg.Seed,
		Engine: cfg.Engine(),
		OnReport: func(run int, r services.Report) {
			if cfg.ReportEvery == 0 || r.Generation%every != 0 {
				return
			}
			log.Printf(
				"run=%d gen=%d best=%.3f mean=%.3f std=%.3f elapsed=%dms",
				run+1, r.Generation, r.Best, r.Mean, r.StdDev, r.Elapsed.Milliseconds(),
			)
		},
	}, distances)
	if err != nil {
		return err
	}

	if conn != nil {
		repo := repositories.NewPostgresPlanRepository(conn)
		if id, err := repo.SavePlan(context.WithoutCancel(ctx), plan); err != nil {
			log.Printf("save plan failed: %v", err)
		} else {
			log.Printf("plan saved id=%s", id)
		}
	}

	return printPlan(stdout, plan)
}

func distanceFunc(metric string) (ports.DistanceFunc, error) {
	switch metric {
	case "vincenty":
		return distance.Geodesic, nil
	case "haversine":
		return distance.Haversine, nil
	}
	return nil, fmt.Errorf("unknown distance metric %q", metric)
}

// loadStops reads a coordinates file, or geocodes addresses from stdin and
// writes the resolved coordinates out.
func loadStops(ctx context.Context, opt options, conn *sql.DB, stdin io.Reader) ([]domain.Point, error) {
	if opt.coordsIn != "" {
		f, err := os.Open(opt.coordsIn)
		if err != nil {
			return nil, fmt.Errorf("open coordinates: %w", err)
		}
		defer f.Close()
		return coordfile.Read(f)
	}

	addresses, err := coordfile.ReadAddresses(stdin)
	if err != nil {
		return nil, err
	}

	geocoder, err := geocode.NewNominatimGeocoder(
		config.Get("NOMINATIM_URL", "https://nominatim.openstreetmap.org"),
		config.Get("NOMINATIM_USER_AGENT", "warehouse-route-optimizer/1.0"),
		1,
	)
	if err != nil {
		return nil, err
	}

	var geoCache ports.GeocodeCache
	if conn != nil {
		geoCache = cache.NewSQLGeocodeCache(conn)
	}

	resolved, unresolved, err := services.ResolveAddresses(ctx, geocoder, geoCache, addresses)
	if err != nil {
		return nil, err
	}
	for _, u := range unresolved {
		log.Printf("skipping address: %v", u)
	}

	points := domain.Locations(resolved)
	if err := writeCoordinates(opt.coordsOut, points); err != nil {
		return nil, err
	}
	return points, nil
}

func writeCoordinates(path string, points []domain.Point) error {
	if path == "" {
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create coordinates file: %w", err)
	}
	if err := coordfile.Write(f, points); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// distanceStore prefers Redis, then Postgres, then no persistence.
func distanceStore(ctx context.Context, conn *sql.DB) (ports.DistanceStore, func(), error) {
	if url := strings.TrimSpace(os.Getenv("REDIS_URL")); url != "" {
		rdb, err := cache.NewRedisClient(ctx, url)
		if err != nil {
			return nil, nil, err
		}
		return cache.NewRedisDistanceStore(rdb, 0), func() { _ = rdb.Close() }, nil
	}
	if conn != nil {
		return cache.NewSQLDistanceCache(conn), func() {}, nil
	}
	return nil, func() {}, nil
}

func printPlan(w io.Writer, p *domain.RoutePlan) error {
	var b strings.Builder
	fmt.Fprintf(&b, "warehouse: %s\n", p.Warehouse)
	fmt.Fprintf(&b, "total: %.3f km over %d generations (%d of %d trucks used)\n",
		p.TotalKm, p.Generations, p.ActiveTrucks(), len(p.Routes))
	for _, r := range p.Routes {
		fmt.Fprintf(&b, "truck %d: %d stops, %.3f km\n", r.TruckID, r.Len(), r.DistanceKm)
		for i, s := range r.Stops {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, s)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
