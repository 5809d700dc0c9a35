package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	"warehouse-route-optimizer/internal/adapters/cache"
	"warehouse-route-optimizer/internal/adapters/distance"
	"warehouse-route-optimizer/internal/adapters/geocode"
	"warehouse-route-optimizer/internal/adapters/repositories"
	"warehouse-route-optimizer/internal/api"
	"warehouse-route-optimizer/internal/api/handlers"
	"warehouse-route-optimizer/internal/config"
	"warehouse-route-optimizer/internal/platform/db"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

// main is the application composition root.
// It wires concrete adapters (Postgres, Redis, Nominatim) behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context) error {
	port := config.Get("PORT", "8080")

	defaults, err := config.Load(config.Get("OPTIMIZER_CONFIG", "optimizer.yaml"))
	if err != nil {
		return err
	}

	maxBudget, err := time.ParseDuration(config.Get("PLAN_MAX_TIME_BUDGET", "60s"))
	if err != nil {
		return fmt.Errorf("PLAN_MAX_TIME_BUDGET: %w", err)
	}

	geocoder, err := geocode.NewNominatimGeocoder(
		config.Get("NOMINATIM_URL", "https://nominatim.openstreetmap.org"),
		config.Get("NOMINATIM_USER_AGENT", "warehouse-route-optimizer/1.0"),
		1,
	)
	if err != nil {
		return err
	}

	plans := &handlers.PlanHandler{
		Defaults:      defaults,
		Distance:      distance.Geodesic,
		Geocoder:      geocoder,
		MaxTimeBudget: maxBudget,
	}
	health := &handlers.HealthHandler{Checks: map[string]func(context.Context) error{}}

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

		// Postgres caches geocodes, stores plans and backs distances unless Redis is set.
		plans.GeocodeCache = cache.NewSQLGeocodeCache(conn)
		plans.Repo = repositories.NewPostgresPlanRepository(conn)
		plans.Store = cache.NewSQLDistanceCache(conn)
		health.Checks["postgres"] = conn.PingContext
	} else {
		log.Println("DATABASE_URL not set: plans are not stored")
	}

	if url := strings.TrimSpace(os.Getenv("REDIS_URL")); url != "" {
		rdb, err := cache.NewRedisClient(ctx, url)
		if err != nil {
			return err
		}
		defer rdb.Close()

		plans.Store = cache.NewRedisDistanceStore(rdb, 30*24*time.Hour)
		health.Checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	router := api.NewRouter(plans, health)

	// Timeouts leave room for the longest allowed search.
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      maxBudget + 30*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("Server listening addr=:%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Println("Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
