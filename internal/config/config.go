package config

import (
	"fmt"
	"sync"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Server struct {
		Env      string `envconfig:"ENV" default:"development"`
		LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
		Port     string `envconfig:"PORT" default:"8080"`
		Shutdown struct {
			GracePeriodSeconds int64 `envconfig:"GRACE_PERIOD_SECONDS" default:"30"`
		} `envconfig:"SHUTDOWN"`
	} `envconfig:"SERVER"`

	DB struct {
		Postgres struct {
			Host        string `envconfig:"HOST" default:"localhost"`
			Port        string `envconfig:"PORT" default:"5432"`
			Username    string `envconfig:"USER" default:"postgres"`
			Password    string `envconfig:"PASSWORD"`
			Name        string `envconfig:"NAME" default:"flytau"`
			SSLMode     string `envconfig:"SSL_MODE" default:"disable"`
			AutoMigrate bool   `envconfig:"AUTO_MIGRATE" default:"true"`
		} `envconfig:"POSTGRES"`
	} `envconfig:"DB"`

	Cache struct {
		Redis struct {
			Host     string `envconfig:"HOST" default:"localhost"`
			Port     string `envconfig:"PORT" default:"6379"`
			Password string `envconfig:"PASSWORD"`
			DB       int    `envconfig:"DB" default:"0"`
		} `envconfig:"REDIS"`
		SeatLockTTLSeconds int `envconfig:"SEAT_LOCK_TTL_SECONDS" default:"30"`
	} `envconfig:"CACHE"`
}

var (
	conf        Config
	once        sync.Once
	initialized bool
)

func Init() error {
	var err error

	once.Do(func() {
		if loadErr := godotenv.Load(".env"); loadErr != nil {
			log.Warn().Err(loadErr).Msg("Could not load .env file, continuing with existing environment variables")
		} else {
			log.Info().Msg("Successfully loaded variables from .env file into environment")
		}

		err = envconfig.Process("", &conf)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to process environment variables")
		}

		initialized = true

		log.Info().Msg("Service configuration initialized successfully")
	})

	if err != nil {
		return fmt.Errorf("processing environment: %w", err)
	}

	return nil
}

func Get() *Config {
	if !initialized {
		if err := Init(); err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize configuration")
		}
	}

	return &conf
}

// PostgresDSN builds the connection string for the configured database.
func (c *Config) PostgresDSN() string {
	p := c.DB.Postgres
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		p.Username, p.Password, p.Host, p.Port, p.Name, p.SSLMode)
}

// RedisAddr returns the host:port of the configured Redis instance.
func (c *Config) RedisAddr() string {
	return c.Cache.Redis.Host + ":" + c.Cache.Redis.Port
}
