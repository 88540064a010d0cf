package main

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/AMICLONE1/powernetpro/internal/logger"
)

const (
	defaultListenAddr   = "localhost:8000"
	defaultLoggingLevel = logger.LevelInfo
	defaultDiscomAddr   = "http://localhost:3000"
	defaultPaymentAddr  = "http://localhost:3100"
	defaultEnvironment  = logger.EnvProduction
)

type Config struct {
	// Default logging level
	LogLevel string

	// Address on which the powernetpro service will be run
	ListenAddr string

	// DISCOM bill-payment gateway address to connect to
	DiscomAddr string

	// Payment gateway address and the shared secret its callbacks are signed with
	PaymentAddr   string
	PaymentSecret string

	// Database to connect to
	DatabaseDSN string

	// Secret key
	// Some internal parts (like signing JWT tokens) uses symmetric encryption, so this key is used for that purpose
	SecretKey string

	// Environment
	Environment string
}

func NewConfig() *Config {
	return &Config{
		LogLevel:    defaultLoggingLevel,
		ListenAddr:  defaultListenAddr,
		DiscomAddr:  defaultDiscomAddr,
		PaymentAddr: defaultPaymentAddr,
		Environment: defaultEnvironment,
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
		c.LoadEnv(func(key string) string {
			return envMap[key]
		})
		return nil
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

func (c *Config) LoadEnv(getenv func(string) string) {
	// Set option to value if it not empty
	setString := func(o *string) func(value string) {
		return func(value string) {
			if value != "" {
				*o = value
			}
		}
	}

	envMap := map[string]func(string){
		"RUN_ADDRESS":             setString(&c.ListenAddr),
		"DATABASE_URI":            setString(&c.DatabaseDSN),
		"SECRET_KEY":              setString(&c.SecretKey),
		"LOG_LEVEL":               setString(&c.LogLevel),
		"DISCOM_GATEWAY_ADDRESS":  setString(&c.DiscomAddr),
		"PAYMENT_GATEWAY_ADDRESS": setString(&c.PaymentAddr),
		"PAYMENT_GATEWAY_SECRET":  setString(&c.PaymentSecret),
		"ENVIRONMENT":             setString(&c.Environment),
	}

	for key, parseFn := range envMap {
		parseFn(getenv(key))
	}
}

func (c *Config) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("powernetpro", pflag.ContinueOnError)

	fs.StringVarP(&c.ListenAddr, "address", "a", c.ListenAddr, "Server listen address")
	fs.StringVarP(&c.DatabaseDSN, "database", "d", c.DatabaseDSN, "Database connection string")
	fs.StringVarP(&c.SecretKey, "secret-key", "s", c.SecretKey, "Secret key")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVarP(&c.DiscomAddr, "discom", "g", c.DiscomAddr, "DISCOM bill-payment gateway address")
	fs.StringVarP(&c.PaymentAddr, "payment", "p", c.PaymentAddr, "Payment gateway address")
	fs.StringVar(&c.PaymentSecret, "payment-secret", c.PaymentSecret, "Payment gateway callback secret")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (dev, prod)")

	return fs.Parse(args)
}
