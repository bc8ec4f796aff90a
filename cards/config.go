package cards

import (
	"os"
	"strings"
)

// Config is a configuration for the cards application
type Config struct {
	HTTPAddr string
	// RepoBackend selects the card store: "pg" (default) or "mem".
	RepoBackend string
	// DBDSN is the PostgreSQL connection string used by the pg backend.
	DBDSN string
	// AllowMemBackend must be set for the mem backend to start; it exists for tests and demos.
	AllowMemBackend bool
	// ExpiryTZ is an IANA timezone name used to compute the current year for expiry checks.
	ExpiryTZ string
	// CORSOrigins lists allowed browser origins; "*" allows any.
	CORSOrigins []string
	// ValidateOnUpdate re-runs the field checks on partial updates.
	ValidateOnUpdate bool
}

func DefaultConfig() *Config {
	return &Config{
		HTTPAddr:         "localhost:3001",
		RepoBackend:      "pg",
		CORSOrigins:      []string{"*"},
		ValidateOnUpdate: true,
	}
}

// ConfigFromEnv starts from DefaultConfig and applies the environment:
// HTTP_ADDR (or PORT), REPO_BACKEND, DB_DSN, ALLOW_MEM_BACKEND_FOR_TESTS,
// EXPIRY_TZ, CORS_ORIGINS (comma separated) and VALIDATE_ON_UPDATE.
func ConfigFromEnv() *Config {
	cfg := DefaultConfig()

	if port := os.Getenv("PORT"); port != "" {
		cfg.HTTPAddr = ":" + port
	}
	cfg.HTTPAddr = getenv("HTTP_ADDR", cfg.HTTPAddr)
	cfg.RepoBackend = getenv("REPO_BACKEND", cfg.RepoBackend)
	cfg.DBDSN = getenv("DB_DSN", "")
	cfg.AllowMemBackend = getenv("ALLOW_MEM_BACKEND_FOR_TESTS", "false") == "true"
	cfg.ExpiryTZ = getenv("EXPIRY_TZ", "")
	cfg.ValidateOnUpdate = getenv("VALIDATE_ON_UPDATE", "true") != "false"

	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		cfg.CORSOrigins = nil
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}

	return cfg
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
