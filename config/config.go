package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Controller ControllerConfig `yaml:"controller"`
	Server     ServerConfig     `yaml:"server"`
	Journal    JournalConfig    `yaml:"journal"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
	Health     HealthConfig     `yaml:"health"`
}

// ControllerConfig holds the elevator-bank parameters.
type ControllerConfig struct {
	TravelTimePerFloorMS int           `yaml:"travel_time_per_floor_ms"`
	TravelTimePerFloor   time.Duration `yaml:"-"` // Ignored by YAML parser
	DoorOpenTimeMS       int           `yaml:"door_open_time_ms"`
	DoorOpenTime         time.Duration `yaml:"-"`
	EstimationLimitMS    int           `yaml:"estimation_limit_ms"`
	EstimationLimit      time.Duration `yaml:"-"`
	UseFreeFirst         *bool         `yaml:"use_free_first"`
	MinFloor             int           `yaml:"min_floor"`
	MaxFloor             int           `yaml:"max_floor"`
	NrOfElevators        int           `yaml:"nr_of_elevators"`
	InitialFloor         int           `yaml:"initial_floor"`
	Strategy             string        `yaml:"strategy"`
	LogLevel             string        `yaml:"log_level"`
}

// FreeFirst reports whether the free-first selection tier is enabled.
func (c *ControllerConfig) FreeFirst() bool {
	return c.UseFreeFirst == nil || *c.UseFreeFirst
}

// Debug reports whether verbose decision-step logging is enabled.
func (c *ControllerConfig) Debug() bool {
	return c.LogLevel == "debug"
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// JournalConfig holds the optional event-journal database configuration.
type JournalConfig struct {
	Enabled                bool   `yaml:"enabled"`
	Driver                 string `yaml:"driver"` // sqlite or postgres
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// PushConfig holds the VAPID keys for web push arrival notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// HealthConfig holds the periodic health-probe configuration.
type HealthConfig struct {
	Enabled         bool          `yaml:"enabled"`
	IntervalSeconds int           `yaml:"interval_seconds"`
	Interval        time.Duration `yaml:"-"`
	ProbeTimeoutMS  int           `yaml:"probe_timeout_ms"`
	ProbeTimeout    time.Duration `yaml:"-"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with every default applied, for embedders
// that run the controller without a config file.
func Default() *Config {
	var cfg Config
	if err := cfg.applyDefaults(); err != nil {
		panic(err) // defaults are always valid
	}
	return &cfg
}

func (cfg *Config) applyDefaults() error {
	ctl := &cfg.Controller
	if ctl.TravelTimePerFloorMS <= 0 {
		ctl.TravelTimePerFloorMS = 2000
	}
	if ctl.DoorOpenTimeMS <= 0 {
		ctl.DoorOpenTimeMS = 5000
	}
	if ctl.EstimationLimitMS <= 0 {
		ctl.EstimationLimitMS = 10000
	}
	ctl.TravelTimePerFloor = time.Duration(ctl.TravelTimePerFloorMS) * time.Millisecond
	ctl.DoorOpenTime = time.Duration(ctl.DoorOpenTimeMS) * time.Millisecond
	ctl.EstimationLimit = time.Duration(ctl.EstimationLimitMS) * time.Millisecond

	if ctl.MinFloor == 0 && ctl.MaxFloor == 0 {
		ctl.MaxFloor = 20
	}
	if ctl.MinFloor > ctl.MaxFloor {
		return fmt.Errorf("min_floor %d above max_floor %d", ctl.MinFloor, ctl.MaxFloor)
	}
	if ctl.NrOfElevators <= 0 {
		log.Printf("nr_of_elevators is not set or invalid; defaulting to 3")
		ctl.NrOfElevators = 3
	}
	if ctl.InitialFloor < ctl.MinFloor || ctl.InitialFloor > ctl.MaxFloor {
		return fmt.Errorf("initial_floor %d outside [%d, %d]", ctl.InitialFloor, ctl.MinFloor, ctl.MaxFloor)
	}
	if ctl.Strategy == "" {
		ctl.Strategy = "stopEnRoute"
	}
	if ctl.LogLevel == "" {
		ctl.LogLevel = "info"
	}

	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 1
	}

	if cfg.Journal.Driver == "" {
		cfg.Journal.Driver = "sqlite"
	}
	if cfg.Journal.DSN == "" {
		cfg.Journal.DSN = "./elevator-journal.db"
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}

	if cfg.Health.IntervalSeconds <= 0 {
		cfg.Health.IntervalSeconds = 30
	}
	cfg.Health.Interval = time.Duration(cfg.Health.IntervalSeconds) * time.Second
	if cfg.Health.ProbeTimeoutMS <= 0 {
		cfg.Health.ProbeTimeoutMS = 2000
	}
	cfg.Health.ProbeTimeout = time.Duration(cfg.Health.ProbeTimeoutMS) * time.Millisecond

	return nil
}
