package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

var ErrMissingRequiredValue = errors.New("missing required value")
var ErrInvalidValue = errors.New("invalid value")

type environment string

const (
	production  environment = "production"
	staging     environment = "staging"
	development environment = "development"
)

type Store string

const (
	StorePostgres Store = "postgres"
	StoreSQLite   Store = "sqlite"
)

const (
	defaultPort       = "8080"
	defaultSQLitePath = "timba.db"
)

type Config struct {
	port                  string
	store                 Store
	sqlitePath            string
	dBHost                string
	dBPassword            string
	dBUsername            string
	sentryDSN             string
	rulesPath             string
	allowedOriginSuffixes []string
	otelEnabled           bool
	env                   environment
}

func (c *Config) Port() string {
	return c.port
}

func (c *Config) Store() Store {
	return c.store
}

func (c *Config) SQLitePath() string {
	return c.sqlitePath
}

func (c *Config) DBHost() string {
	return c.dBHost
}

func (c *Config) DBPassword() string {
	return c.dBPassword
}

func (c *Config) DBUsername() string {
	return c.dBUsername
}

func (c *Config) SentryDSN() string {
	return c.sentryDSN
}

// Path to a YAML file overriding the default balance rules. Empty when unset.
func (c *Config) RulesPath() string {
	return c.rulesPath
}

func (c *Config) AllowedOriginSuffixes() []string {
	return append([]string(nil), c.allowedOriginSuffixes...)
}

func (c *Config) OTelEnabled() bool {
	return c.otelEnabled
}

func (c *Config) IsProduction() bool {
	return c.env == production
}

func (c *Config) IsStaging() bool {
	return c.env == staging
}

func (c *Config) IsDevelopment() bool {
	return c.env == development
}

// Return a string representation suitable for logging etc
func (c *Config) NonSensitiveString() string {
	return fmt.Sprintf(
		"Config{env: %s, port: %s, store: %s, rulesPath: %q, otelEnabled: %t, ...}",
		string(c.env), c.port, string(c.store), c.rulesPath, c.otelEnabled,
	)
}

func ConfigFromEnv() (Config, error) {
	missingKey := func(key string) (Config, error) {
		return Config{}, fmt.Errorf("%w: %s", ErrMissingRequiredValue, key)
	}

	var env environment
	rawEnv, ok := os.LookupEnv("TIMBA_ENVIRONMENT")
	if !ok {
		return missingKey("TIMBA_ENVIRONMENT")
	}
	switch rawEnv {
	case "production":
		env = production
	case "staging":
		env = staging
	case "development":
		env = development
	default:
		return Config{}, fmt.Errorf("%w: TIMBA_ENVIRONMENT (%s)", ErrInvalidValue, rawEnv)
	}
	if string(env) == "" {
		panic("logic error: env is empty")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}
	if n, err := strconv.Atoi(port); err != nil || n <= 0 || n > 65535 {
		return Config{}, fmt.Errorf("%w: PORT (%s)", ErrInvalidValue, port)
	}

	var store Store
	switch rawStore := os.Getenv("TIMBA_STORE"); rawStore {
	case "", "postgres":
		store = StorePostgres
	case "sqlite":
		store = StoreSQLite
	default:
		return Config{}, fmt.Errorf("%w: TIMBA_STORE (%s)", ErrInvalidValue, rawStore)
	}

	sqlitePath := os.Getenv("SQLITE_PATH")
	if sqlitePath == "" {
		sqlitePath = defaultSQLitePath
	}

	otelEnabled := false
	if rawOTel := os.Getenv("OTEL_ENABLED"); rawOTel != "" {
		parsed, err := strconv.ParseBool(rawOTel)
		if err != nil {
			return Config{}, fmt.Errorf("%w: OTEL_ENABLED (%s)", ErrInvalidValue, rawOTel)
		}
		otelEnabled = parsed
	}

	allowedOriginSuffixes := []string{}
	for _, suffix := range strings.Split(os.Getenv("ALLOWED_ORIGIN_SUFFIXES"), ",") {
		suffix = strings.TrimSpace(suffix)
		if suffix == "" {
			continue
		}
		allowedOriginSuffixes = append(allowedOriginSuffixes, suffix)
	}

	dbHost := os.Getenv("DB_HOST")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbUsername := os.Getenv("DB_USERNAME")
	sentryDSN := os.Getenv("SENTRY_DSN")
	rulesPath := os.Getenv("TIMBA_RULES_PATH")

	if env == production || env == staging {
		if store == StorePostgres {
			if dbHost == "" {
				return missingKey("DB_HOST")
			}
			if dbUsername == "" {
				return missingKey("DB_USERNAME")
			}
			if dbPassword == "" {
				return missingKey("DB_PASSWORD")
			}
		}
		if sentryDSN == "" {
			return missingKey("SENTRY_DSN")
		}
	}

	return Config{
		port:                  port,
		store:                 store,
		sqlitePath:            sqlitePath,
		dBHost:                dbHost,
		dBPassword:            dbPassword,
		dBUsername:            dbUsername,
		sentryDSN:             sentryDSN,
		rulesPath:             rulesPath,
		allowedOriginSuffixes: allowedOriginSuffixes,
		otelEnabled:           otelEnabled,
		env:                   env,
	}, nil
}
