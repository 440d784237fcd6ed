package config

import (
	"log"
	"os"
	"strconv"
)

// Config holds application configuration values.
type Config struct {
	Secret      string
	DatabaseDSN string
	HTTPPort    string
	PrimaryCity string
	SeedFile    string
}

// Load reads configuration from environment variables with reasonable defaults.
func Load() Config {
	secret := os.Getenv("SECRET")
	if secret == "" {
		secret = "dev_secret"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" {
		dsn = "file:medimart.db?_pragma=busy_timeout(5000)"
	}

	// City whose dedicated price column applies at checkout.
	city := os.Getenv("PRIMARY_CITY")
	if city == "" {
		city = "johrabad"
	}

	seedFile := os.Getenv("PRODUCT_SEED_FILE")
	if seedFile == "" {
		seedFile = "assets/products.csv"
	}

	// Validate that port is numeric.
	if _, err := strconv.Atoi(port); err != nil {
		log.Printf("invalid HTTP_PORT value %q, defaulting to 8080", port)
		port = "8080"
	}

	return Config{Secret: secret, DatabaseDSN: dsn, HTTPPort: port, PrimaryCity: city, SeedFile: seedFile}
}
