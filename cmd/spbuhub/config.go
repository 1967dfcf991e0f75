package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/nkiryanov/spbuhub/internal/logger"
)

const (
	defaultListenAddr    = "localhost:8000"
	defaultLoggingLevel  = logger.LevelInfo
	defaultEnvironment   = logger.EnvProduction
	defaultAllowedOrigin = "http://localhost:3000"
	defaultAuthRateLimit = 5
)

type Config struct {
	// Default logging level
	LogLevel string

	// Address on which the service will be run
	ListenAddr string

	// Database to connect to
	DatabaseDSN string

	// Key JWT tokens are signed with
	SecretKey string

	// Environment
	Environment string

	// Origins allowed by CORS, "*" allows any
	AllowedOrigins []string

	// Payment gateway address. Payments are simulated when empty
	PaymentGatewayAddr string

	// Pending transactions older than this are cancelled in background. Zero disables it
	PendingTTL time.Duration

	// Requests per second one client may send to register, login and forgot_password
	AuthRateLimit float64
}

func NewConfig() *Config {
	return &Config{
		LogLevel:       defaultLoggingLevel,
		ListenAddr:     defaultListenAddr,
		Environment:    defaultEnvironment,
		AllowedOrigins: []string{defaultAllowedOrigin},
		AuthRateLimit:  defaultAuthRateLimit,
	}
}

// Load variable from '.env' file (should be located at working directory)
func (c *Config) LoadDotEnv(getwd func() (string, error)) error {
	wd, err := getwd()
	if err != nil {
		return err
	}

	envMap, err := godotenv.Read(filepath.Join(wd, ".env"))

	switch {
	case err == nil:
		return c.LoadEnv(func(key string) string {
			return envMap[key]
		})
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

func (c *Config) LoadEnv(getenv func(string) string) error {
	// Set option to value if it not empty
	setString := func(o *string) func(value string) error {
		return func(value string) error {
			if value != "" {
				*o = value
			}
			return nil
		}
	}
	setList := func(o *[]string) func(value string) error {
		return func(value string) error {
			if value == "" {
				return nil
			}
			var list []string
			for _, item := range strings.Split(value, ",") {
				if item = strings.TrimSpace(item); item != "" {
					list = append(list, item)
				}
			}
			*o = list
			return nil
		}
	}
	setDuration := func(o *time.Duration) func(value string) error {
		return func(value string) error {
			if value == "" {
				return nil
			}
			d, err := time.ParseDuration(value)
			*o = d
			return err
		}
	}
	setFloat := func(o *float64) func(value string) error {
		return func(value string) error {
			if value == "" {
				return nil
			}
			f, err := strconv.ParseFloat(value, 64)
			*o = f
			return err
		}
	}

	// Keys listed later win, so DATABASE_URI overrides DATABASE_URL
	envKeys := []struct {
		key     string
		parseFn func(string) error
	}{
		{"RUN_ADDRESS", setString(&c.ListenAddr)},
		{"DATABASE_URL", setString(&c.DatabaseDSN)},
		{"DATABASE_URI", setString(&c.DatabaseDSN)},
		{"JWT_SECRET", setString(&c.SecretKey)},
		{"SECRET_KEY", setString(&c.SecretKey)},
		{"LOG_LEVEL", setString(&c.LogLevel)},
		{"ENVIRONMENT", setString(&c.Environment)},
		{"ALLOWED_ORIGIN", setList(&c.AllowedOrigins)},
		{"PAYMENT_GATEWAY_ADDRESS", setString(&c.PaymentGatewayAddr)},
		{"PENDING_TTL", setDuration(&c.PendingTTL)},
		{"AUTH_RATE_LIMIT", setFloat(&c.AuthRateLimit)},
	}

	for _, e := range envKeys {
		if err := e.parseFn(getenv(e.key)); err != nil {
			return fmt.Errorf("invalid %s: %w", e.key, err)
		}
	}
	return nil
}

func (c *Config) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("spbuhub", pflag.ContinueOnError)

	fs.StringVarP(&c.ListenAddr, "address", "a", c.ListenAddr, "Server listen address")
	fs.StringVarP(&c.DatabaseDSN, "database", "d", c.DatabaseDSN, "Database connection string")
	fs.StringVarP(&c.SecretKey, "secret-key", "s", c.SecretKey, "Secret key to sign tokens with")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (development, production)")
	fs.StringSliceVarP(&c.AllowedOrigins, "allowed-origin", "o", c.AllowedOrigins, "Origins allowed by CORS, comma separated")
	fs.StringVarP(&c.PaymentGatewayAddr, "payment-gateway", "p", c.PaymentGatewayAddr, "Payment gateway address, payments are simulated if empty")
	fs.DurationVar(&c.PendingTTL, "pending-ttl", c.PendingTTL, "Cancel pending transactions older than this (0 disables)")
	fs.Float64Var(&c.AuthRateLimit, "auth-rate-limit", c.AuthRateLimit, "Requests per second per client to auth endpoints")

	return fs.Parse(args)
}

// Validate checks options the server can't start without
func (c *Config) Validate() error {
	switch {
	case c.DatabaseDSN == "":
		return errors.New("database DSN is required")
	case c.SecretKey == "":
		return errors.New("secret key is required")
	case c.PendingTTL < 0:
		return errors.New("pending TTL must not be negative")
	case c.AuthRateLimit <= 0:
		return errors.New("auth rate limit must be positive")
	}
	return nil
}
