package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"golang.org/x/crypto/bcrypt"

	"github.com/nvoropaev/authkeeper/internal/logger"
)

const (
	defaultListenAddr    = "localhost:8000"
	defaultLoggingLevel  = logger.LevelInfo
	defaultEnvironment   = logger.EnvProduction
	defaultAccessTTL     = time.Hour
	defaultRefreshTTL    = 7 * 24 * time.Hour
	defaultPurgeInterval = time.Hour

	defaultBcryptCost         = bcrypt.DefaultCost
	defaultPasswordMinLength  = 8
	defaultPasswordMinClasses = 2
)

type Config struct {
	// Default logging level
	LogLevel string

	// Address on which the authkeeper service will be run
	ListenAddr string

	// Database to connect to
	DatabaseDSN string

	// Secret key
	// JWT tokens are signed symmetrically, so this key is used for that purpose
	SecretKey string

	// Environment
	Environment string

	// Lifetimes of issued tokens
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// How often expired revocation entries are purged
	PurgeInterval time.Duration

	// Bcrypt work factor for password hashing
	BcryptCost int

	// Password strength policy
	PasswordMinLength  int
	PasswordMinClasses int
}

func NewConfig() *Config {
	return &Config{
		LogLevel:      defaultLoggingLevel,
		ListenAddr:    defaultListenAddr,
		Environment:   defaultEnvironment,
		AccessTTL:     defaultAccessTTL,
		RefreshTTL:    defaultRefreshTTL,
		PurgeInterval: defaultPurgeInterval,

		BcryptCost:         defaultBcryptCost,
		PasswordMinLength:  defaultPasswordMinLength,
		PasswordMinClasses: defaultPasswordMinClasses,
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
	setDuration := func(o *time.Duration) func(value string) error {
		return func(value string) error {
			if value == "" {
				return nil
			}
			d, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			*o = d
			return nil
		}
	}
	setInt := func(o *int) func(value string) error {
		return func(value string) error {
			if value == "" {
				return nil
			}
			n, err := strconv.Atoi(value)
			if err != nil {
				return err
			}
			*o = n
			return nil
		}
	}

	envMap := map[string]func(string) error{
		"RUN_ADDRESS":          setString(&c.ListenAddr),
		"DATABASE_URI":         setString(&c.DatabaseDSN),
		"SECRET_KEY":           setString(&c.SecretKey),
		"LOG_LEVEL":            setString(&c.LogLevel),
		"ENVIRONMENT":          setString(&c.Environment),
		"ACCESS_TTL":           setDuration(&c.AccessTTL),
		"REFRESH_TTL":          setDuration(&c.RefreshTTL),
		"PURGE_INTERVAL":       setDuration(&c.PurgeInterval),
		"BCRYPT_COST":          setInt(&c.BcryptCost),
		"PASSWORD_MIN_LENGTH":  setInt(&c.PasswordMinLength),
		"PASSWORD_MIN_CLASSES": setInt(&c.PasswordMinClasses),
	}

	for key, parseFn := range envMap {
		if err := parseFn(getenv(key)); err != nil {
			return fmt.Errorf("invalid value for %s: %w", key, err)
		}
	}

	return nil
}

func (c *Config) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("authkeeper", pflag.ContinueOnError)

	fs.StringVarP(&c.ListenAddr, "address", "a", c.ListenAddr, "Server listen address")
	fs.StringVarP(&c.DatabaseDSN, "database", "d", c.DatabaseDSN, "Database connection string")
	fs.StringVarP(&c.SecretKey, "secret-key", "s", c.SecretKey, "Secret key")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (dev, prod)")
	fs.DurationVar(&c.AccessTTL, "access-ttl", c.AccessTTL, "Access token lifetime")
	fs.DurationVar(&c.RefreshTTL, "refresh-ttl", c.RefreshTTL, "Refresh token lifetime")
	fs.DurationVar(&c.PurgeInterval, "purge-interval", c.PurgeInterval, "How often expired revocation entries are purged")
	fs.IntVar(&c.BcryptCost, "bcrypt-cost", c.BcryptCost, "Bcrypt work factor for password hashing")
	fs.IntVar(&c.PasswordMinLength, "password-min-length", c.PasswordMinLength, "Minimal password length in runes")
	fs.IntVar(&c.PasswordMinClasses, "password-min-classes", c.PasswordMinClasses, "Character classes a password must contain")

	return fs.Parse(args)
}
