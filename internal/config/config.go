package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds application configuration values.
type Config struct {
	HTTPPort    string
	DatabaseDSN string

	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	CookieSecure  bool

	CORSOrigins       []string
	ExposeErrorDetail bool
	LogLevel          string

	DefaultStaffPassword string
	AdminUsername        string
	AdminPassword        string
	SeedCatalog          string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// source resolves keys from the environment first and the optional YAML
// file second.
type source struct {
	file map[string]string
}

func (s source) get(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	if v, ok := s.file[strings.ToLower(key)]; ok && v != "" {
		return v
	}
	return def
}

// Load reads configuration from environment variables with reasonable
// defaults. When CONFIG_FILE names a YAML file its keys (lower-cased
// variable names) fill in anything the environment leaves unset.
func Load() (Config, error) {
	var src source
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		file, err := readFile(path)
		if err != nil {
			return Config{}, err
		}
		src.file = file
	}

	cfg := Config{
		HTTPPort:             src.get("HTTP_PORT", "8080"),
		DatabaseDSN:          src.get("DATABASE_DSN", ""),
		AccessSecret:         src.get("JWT_ACCESS_SECRET", "dev_access_secret"),
		RefreshSecret:        src.get("JWT_REFRESH_SECRET", "dev_refresh_secret"),
		LogLevel:             strings.ToLower(src.get("LOG_LEVEL", "info")),
		DefaultStaffPassword: src.get("DEFAULT_STAFF_PASSWORD", "Staff@123"),
		AdminUsername:        src.get("ADMIN_USERNAME", ""),
		AdminPassword:        src.get("ADMIN_PASSWORD", ""),
		SeedCatalog:          src.get("SEED_CATALOG", ""),
	}

	if _, err := strconv.Atoi(cfg.HTTPPort); err != nil {
		return Config{}, fmt.Errorf("invalid HTTP_PORT value %q", cfg.HTTPPort)
	}

	if cfg.DatabaseDSN == "" {
		cfg.DatabaseDSN = defaultDSN(src)
	}

	for _, origin := range strings.Split(src.get("CORS_ALLOWED_ORIGINS", "http://localhost:3000"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
		}
	}

	var err error
	if cfg.AccessTTL, err = duration(src, "ACCESS_TOKEN_TTL", 48*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.RefreshTTL, err = duration(src, "REFRESH_TOKEN_TTL", 7*24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.ConnMaxLifetime, err = duration(src, "DB_CONN_MAX_LIFETIME", time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.CookieSecure, err = boolean(src, "COOKIE_SECURE", false); err != nil {
		return Config{}, err
	}
	if cfg.ExposeErrorDetail, err = boolean(src, "EXPOSE_ERROR_DETAIL", true); err != nil {
		return Config{}, err
	}
	if cfg.MaxOpenConns, err = integer(src, "DB_MAX_OPEN_CONNS", 25); err != nil {
		return Config{}, err
	}
	if cfg.MaxIdleConns, err = integer(src, "DB_MAX_IDLE_CONNS", 5); err != nil {
		return Config{}, err
	}

	if cfg.AdminUsername != "" && cfg.AdminPassword == "" {
		return Config{}, fmt.Errorf("ADMIN_PASSWORD is required when ADMIN_USERNAME is set")
	}

	return cfg, nil
}

// defaultDSN composes a postgres DSN from DB_* parts when DB_HOST is set and
// falls back to a local SQLite file otherwise.
func defaultDSN(src source) string {
	host := src.get("DB_HOST", "")
	if host == "" {
		return "file:pharmacy.db"
	}
	user := src.get("DB_USER", "postgres")
	port := src.get("DB_PORT", "5432")
	name := src.get("DB_NAME", "pharmacy")
	password := src.get("DB_PASSWORD", "")
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, name)
}

func readFile(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	values := map[string]string{}
	if err := yaml.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	lowered := make(map[string]string, len(values))
	for k, v := range values {
		lowered[strings.ToLower(k)] = v
	}
	return lowered, nil
}

func duration(src source, key string, def time.Duration) (time.Duration, error) {
	raw := src.get(key, "")
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s value %q", key, raw)
	}
	return d, nil
}

func boolean(src source, key string, def bool) (bool, error) {
	raw := src.get(key, "")
	if raw == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q", key, raw)
	}
	return b, nil
}

func integer(src source, key string, def int) (int, error) {
	raw := src.get(key, "")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s value %q", key, raw)
	}
	return n, nil
}
