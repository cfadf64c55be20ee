package config

import (
	"errors"
	"fmt"
	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"io/fs"
	"time"
)

const (
	// DatastorePostgres selects postgres as lead storage
	DatastorePostgres = "postgres"
	// DatastoreMongo selects mongodb as lead storage
	DatastoreMongo = "mongo"
)

type HTTPCfg struct {
	Port            int           `env:"HTTP_PORT" envDefault:"3000"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

type PostgresCfg struct {
	Host           string        `env:"POSTGRES_HOST" envDefault:"localhost"`
	Port           int           `env:"POSTGRES_PORT" envDefault:"5432"`
	User           string        `env:"POSTGRES_USER" envDefault:""`
	Password       string        `env:"POSTGRES_PASSWORD" envDefault:""`
	Database       string        `env:"POSTGRES_DB" envDefault:""`
	SslMode        string        `env:"POSTGRES_SLL_MODE" envDefault:"disable"`
	PoolMaxConn    int           `env:"POSTGRES_POOL_MAX_CONN" envDefault:"100"`
	ConnectTimeout time.Duration `env:"POSTGRES_CONNECT_TIMEOUT" envDefault:"5s"`
}

func (c PostgresCfg) DSN() string {
	return fmt.Sprintf(
		"user=%s password=%s host=%s port=%d dbname=%s sslmode=%s pool_max_conns=%d",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SslMode, c.PoolMaxConn,
	)
}

type MongoCfg struct {
	Host        string `env:"MONGO_HOST" envDefault:"localhost"`
	Port        int    `env:"MONGO_PORT" envDefault:"27017"`
	User        string `env:"MONGO_USER" envDefault:""`
	Password    string `env:"MONGO_PASSWORD" envDefault:""`
	Database    string `env:"MONGO_DB" envDefault:"leads"`
	MaxPoolSize int    `env:"MONGO_MAX_POOL_SIZE" envDefault:"100"`
}

func (c MongoCfg) URI() string {
	if c.User == "" {
		return fmt.Sprintf("mongodb://%s:%d/?maxPoolSize=%d", c.Host, c.Port, c.MaxPoolSize)
	}
	return fmt.Sprintf("mongodb://%s:%s@%s:%d/?maxPoolSize=%d", c.User, c.Password, c.Host, c.Port, c.MaxPoolSize)
}

// RedisCfg is configuration of export snapshot cache, empty address disables it
type RedisCfg struct {
	Addr      string        `env:"REDIS_ADDR" envDefault:""`
	Password  string        `env:"REDIS_PASSWORD" envDefault:""`
	DB        int           `env:"REDIS_DB" envDefault:"0"`
	ExportTTL time.Duration `env:"REDIS_EXPORT_TTL" envDefault:"10m"`
}

func (c RedisCfg) Enabled() bool {
	return c.Addr != ""
}

type ExportCfg struct {
	Dir string `env:"EXPORT_DIR" envDefault:""`
}

type LogCfg struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// SentryCfg is error reporting configuration, empty dsn disables it
type SentryCfg struct {
	Dsn         string `env:"SENTRY_DSN" envDefault:""`
	Environment string `env:"SENTRY_ENVIRONMENT" envDefault:"development"`
}

type Config struct {
	Datastore   string `env:"DATASTORE" envDefault:"postgres"`
	HTTPCfg     HTTPCfg
	PostgresCfg PostgresCfg
	MongoCfg    MongoCfg
	RedisCfg    RedisCfg
	ExportCfg   ExportCfg
	LogCfg      LogCfg
	SentryCfg   SentryCfg
}

// Build loads optional .env file and parses environment into Config
func Build() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file - %w", err)
	}
	return Parse()
}

// Parse builds Config from environment variables only
func Parse() (*Config, error) {
	var cfg Config
	opts := env.Options{RequiredIfNoDef: true}

	if err := env.Parse(&cfg, opts); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables - %w", err)
	}

	switch cfg.Datastore {
	case DatastorePostgres:
		pg := cfg.PostgresCfg
		if pg.User == "" || pg.Database == "" {
			return nil, errors.New("POSTGRES_USER and POSTGRES_DB must be set for postgres datastore")
		}
	case DatastoreMongo:
	default:
		return nil, fmt.Errorf("unknown datastore %q, expected %s or %s", cfg.Datastore, DatastorePostgres, DatastoreMongo)
	}

	return &cfg, nil
}
