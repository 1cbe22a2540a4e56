// README: Config loader with env defaults for HTTP, fleet, dispatch, and optional stores.
package config

import (
	"os"
	"strconv"
	"time"

	"taxipark/internal/types"
)

type DispatchConfig struct {
	Workers     int
	PollTimeout time.Duration
}

type FleetConfig struct {
	Vehicles int
	MinSpeed float64
	MaxSpeed float64
	Bounds   types.Bounds
}

type Config struct {
	HTTP struct {
		Addr string
	}
	DB struct {
		DSN string
	}
	Redis struct {
		Addr string
	}
	Fleet    FleetConfig
	Dispatch DispatchConfig
	Ride     struct {
		StepInterval time.Duration
	}
	Client struct {
		DefaultPatience time.Duration
	}
	Queue struct {
		Capacity int
	}
	SeedOrders int
}

func Load() (Config, error) {
	var cfg Config
	cfg.HTTP.Addr = envOrDefault("TAXIPARK_HTTP_ADDR", ":8080")
	// Empty DSN / Redis addr leave the optional stores disabled.
	cfg.DB.DSN = envOrDefault("TAXIPARK_DB_DSN", "")
	cfg.Redis.Addr = envOrDefault("TAXIPARK_REDIS_ADDR", "")
	cfg.Fleet.Vehicles = envOrDefaultInt("TAXIPARK_VEHICLES", 3)
	cfg.Fleet.MinSpeed = envOrDefaultFloat("TAXIPARK_MIN_SPEED", 3.0)
	cfg.Fleet.MaxSpeed = envOrDefaultFloat("TAXIPARK_MAX_SPEED", 6.0)
	cfg.Fleet.Bounds = types.Bounds{
		MinX: 50, MinY: 50,
		MaxX: envOrDefaultFloat("TAXIPARK_WORLD_W", 750),
		MaxY: envOrDefaultFloat("TAXIPARK_WORLD_H", 550),
	}
	cfg.Dispatch.Workers = envOrDefaultInt("TAXIPARK_DISPATCHERS", 2)
	cfg.Dispatch.PollTimeout = envOrDefaultDuration("TAXIPARK_POLL_TIMEOUT", 500*time.Millisecond)
	cfg.Ride.StepInterval = envOrDefaultDuration("TAXIPARK_STEP_INTERVAL", 50*time.Millisecond)
	cfg.Client.DefaultPatience = envOrDefaultDuration("TAXIPARK_PATIENCE", 30*time.Second)
	cfg.Queue.Capacity = envOrDefaultInt("TAXIPARK_QUEUE_CAP", 256)
	cfg.SeedOrders = envOrDefaultInt("TAXIPARK_SEED_ORDERS", 0)
	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envOrDefaultFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			return n
		}
	}
	return def
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
