package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/SscSPs/mma_fxrates/internal/core/domain"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL    string
	Port           string
	IsProduction   bool
	EnableDBCheck  bool
	JWTSecret      string
	MigrationsPath string

	// Rate engine
	AnchorCurrency      string
	RateProviders       []string
	RateProviderURLs    map[string]string
	ProviderTimeout     time.Duration
	FetchBudget         time.Duration
	MajorCurrencies     []string
	MinMajorCoverage    int
	StalenessWindowDays int

	// Emergency table and plausibility thresholds are point-in-time values; see EmergencyRatesAsOf.
	EmergencyRates           map[string]decimal.Decimal // currency -> units of anchor per 1 unit
	EmergencyRatesAsOf       time.Time
	EmergencyRatesMaxAgeDays int
	PlausibilityMinRates     map[string]decimal.Decimal // "FROM/TO" -> minimum acceptable rate

	// Scheduler
	RefreshTime       string
	RefreshTimezone   *time.Location
	RefreshMaxRetries int
	RefreshRetryDelay time.Duration
	RefreshOnStartup  bool

	// Redis read cache (disabled when RedisAddr is empty)
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisCacheTTL time.Duration

	RateLimit          string
	CORSAllowedOrigins []string
	PosthogAPIKey      string
}

const (
	defaultEmergencyRates = "USD:85.0,EUR:92.0,GBP:108.0,JPY:0.57,AUD:56.0,CAD:61.0,CHF:97.0,CNY:11.8,SGD:64.0,AED:23.2"
	defaultPlausibility   = "USD/INR:50,EUR/INR:50,GBP/INR:60,CHF/INR:50,AUD/INR:30,CAD/INR:30,SGD/INR:30,AED/INR:10"
)

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("MIGRATIONS_PATH", "file://migrations")
	viper.SetDefault("ANCHOR_CURRENCY", "INR")
	viper.SetDefault("RATE_PROVIDERS", "open_er_api,frankfurter,exchangerate_host")
	viper.SetDefault("RATE_PROVIDER_URLS", "")
	viper.SetDefault("PROVIDER_TIMEOUT", "10s")
	viper.SetDefault("FETCH_BUDGET", "30s")
	viper.SetDefault("MAJOR_CURRENCIES", "USD,EUR,GBP,JPY,AUD,CAD,CHF,CNY,SGD,AED")
	viper.SetDefault("MIN_MAJOR_COVERAGE", 3)
	viper.SetDefault("STALENESS_WINDOW_DAYS", 7)
	viper.SetDefault("EMERGENCY_RATES", defaultEmergencyRates)
	viper.SetDefault("EMERGENCY_RATES_AS_OF", "2025-01-01")
	viper.SetDefault("EMERGENCY_RATES_MAX_AGE_DAYS", 90)
	viper.SetDefault("PLAUSIBILITY_MIN_RATES", defaultPlausibility)
	viper.SetDefault("REFRESH_TIME", "06:00")
	viper.SetDefault("REFRESH_TIMEZONE", "UTC")
	viper.SetDefault("REFRESH_MAX_RETRIES", 3)
	viper.SetDefault("REFRESH_RETRY_DELAY", "5m")
	viper.SetDefault("REFRESH_ON_STARTUP", true)
	viper.SetDefault("REDIS_ADDR", "")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("REDIS_CACHE_TTL", "24h")
	viper.SetDefault("RATE_LIMIT", "120-M")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("POSTHOG_API_KEY", "")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set. Rates will be kept in memory only.")
	}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "a-very-secret-key-should-be-longer-and-random" // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")
	cfg.MigrationsPath = viper.GetString("MIGRATIONS_PATH")

	cfg.AnchorCurrency = domain.NormalizeCurrency(viper.GetString("ANCHOR_CURRENCY"))
	if len(cfg.AnchorCurrency) != 3 {
		return nil, fmt.Errorf("invalid ANCHOR_CURRENCY %q: must be a 3-letter code", cfg.AnchorCurrency)
	}

	cfg.RateProviders = splitCSV(viper.GetString("RATE_PROVIDERS"))
	if len(cfg.RateProviders) == 0 {
		return nil, fmt.Errorf("RATE_PROVIDERS must name at least one provider")
	}
	providerURLs, err := parseKeyValues(viper.GetString("RATE_PROVIDER_URLS"), "=")
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_PROVIDER_URLS: %w", err)
	}
	cfg.RateProviderURLs = providerURLs

	cfg.ProviderTimeout = durationOrDefault("PROVIDER_TIMEOUT", 10*time.Second)
	cfg.FetchBudget = durationOrDefault("FETCH_BUDGET", 30*time.Second)
	if cfg.FetchBudget < cfg.ProviderTimeout {
		log.Printf("Warning: FETCH_BUDGET (%s) is shorter than PROVIDER_TIMEOUT (%s); later providers may never be tried.\n", cfg.FetchBudget, cfg.ProviderTimeout)
	}

	cfg.MajorCurrencies = make([]string, 0)
	for _, c := range splitCSV(viper.GetString("MAJOR_CURRENCIES")) {
		cfg.MajorCurrencies = append(cfg.MajorCurrencies, domain.NormalizeCurrency(c))
	}
	cfg.MinMajorCoverage = viper.GetInt("MIN_MAJOR_COVERAGE")
	if cfg.MinMajorCoverage <= 0 {
		cfg.MinMajorCoverage = 3
		log.Printf("Warning: Invalid MIN_MAJOR_COVERAGE. Defaulting to %d.\n", cfg.MinMajorCoverage)
	}
	cfg.StalenessWindowDays = viper.GetInt("STALENESS_WINDOW_DAYS")
	if cfg.StalenessWindowDays < 0 {
		cfg.StalenessWindowDays = 7
		log.Printf("Warning: Invalid STALENESS_WINDOW_DAYS. Defaulting to %d.\n", cfg.StalenessWindowDays)
	}

	cfg.EmergencyRates, err = parseEmergencyRates(viper.GetString("EMERGENCY_RATES"))
	if err != nil {
		return nil, fmt.Errorf("invalid EMERGENCY_RATES: %w", err)
	}
	asOf, err := domain.ParseDate(viper.GetString("EMERGENCY_RATES_AS_OF"))
	if err != nil {
		return nil, fmt.Errorf("invalid EMERGENCY_RATES_AS_OF: %w", err)
	}
	cfg.EmergencyRatesAsOf = asOf
	cfg.EmergencyRatesMaxAgeDays = viper.GetInt("EMERGENCY_RATES_MAX_AGE_DAYS")

	cfg.PlausibilityMinRates, err = parsePlausibility(viper.GetString("PLAUSIBILITY_MIN_RATES"))
	if err != nil {
		return nil, fmt.Errorf("invalid PLAUSIBILITY_MIN_RATES: %w", err)
	}

	cfg.RefreshTime = viper.GetString("REFRESH_TIME")
	if _, err := time.Parse("15:04", cfg.RefreshTime); err != nil {
		return nil, fmt.Errorf("invalid REFRESH_TIME %q: expected HH:MM", cfg.RefreshTime)
	}
	loc, err := time.LoadLocation(viper.GetString("REFRESH_TIMEZONE"))
	if err != nil {
		log.Printf("Warning: Invalid REFRESH_TIMEZONE ('%s'). Defaulting to UTC.\n", viper.GetString("REFRESH_TIMEZONE"))
		loc = time.UTC
	}
	cfg.RefreshTimezone = loc
	cfg.RefreshMaxRetries = viper.GetInt("REFRESH_MAX_RETRIES")
	if cfg.RefreshMaxRetries < 0 {
		cfg.RefreshMaxRetries = 0
	}
	cfg.RefreshRetryDelay = durationOrDefault("REFRESH_RETRY_DELAY", 5*time.Minute)
	cfg.RefreshOnStartup = viper.GetBool("REFRESH_ON_STARTUP")

	cfg.RedisAddr = viper.GetString("REDIS_ADDR")
	cfg.RedisPassword = viper.GetString("REDIS_PASSWORD")
	cfg.RedisDB = viper.GetInt("REDIS_DB")
	cfg.RedisCacheTTL = durationOrDefault("REDIS_CACHE_TTL", 24*time.Hour)

	cfg.RateLimit = viper.GetString("RATE_LIMIT")
	cfg.CORSAllowedOrigins = splitCSV(viper.GetString("CORS_ALLOWED_ORIGINS"))
	cfg.PosthogAPIKey = viper.GetString("POSTHOG_API_KEY")

	return cfg, nil
}

// EmergencyRatesAge returns how old the emergency table is relative to now, in whole days.
func (c *Config) EmergencyRatesAge(now time.Time) int {
	return int(domain.DateOf(now).Sub(c.EmergencyRatesAsOf).Hours() / 24)
}

// EmergencyRatesStale reports whether the emergency table is older than the configured max age.
func (c *Config) EmergencyRatesStale(now time.Time) bool {
	return c.EmergencyRatesMaxAgeDays > 0 && c.EmergencyRatesAge(now) > c.EmergencyRatesMaxAgeDays
}

func durationOrDefault(key string, def time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, def.String())
		}
		return def
	}
	return d
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseKeyValues(s, sep string) (map[string]string, error) {
	out := make(map[string]string)
	for _, part := range splitCSV(s) {
		k, v, ok := strings.Cut(part, sep)
		if !ok || strings.TrimSpace(k) == "" || strings.TrimSpace(v) == "" {
			return nil, fmt.Errorf("entry %q is not in key%svalue form", part, sep)
		}
		out[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return out, nil
}

func parsePositiveDecimals(s string) (map[string]decimal.Decimal, error) {
	raw, err := parseKeyValues(s, ":")
	if err != nil {
		return nil, err
	}
	out := make(map[string]decimal.Decimal, len(raw))
	for k, v := range raw {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return nil, fmt.Errorf("value for %s: %w", k, err)
		}
		if !d.IsPositive() {
			return nil, fmt.Errorf("value for %s must be positive", k)
		}
		out[k] = d
	}
	return out, nil
}

func parseEmergencyRates(s string) (map[string]decimal.Decimal, error) {
	raw, err := parsePositiveDecimals(s)
	if err != nil {
		return nil, err
	}
	out := make(map[string]decimal.Decimal, len(raw))
	for k, v := range raw {
		out[domain.NormalizeCurrency(k)] = v
	}
	return out, nil
}

func parsePlausibility(s string) (map[string]decimal.Decimal, error) {
	raw, err := parsePositiveDecimals(s)
	if err != nil {
		return nil, err
	}
	out := make(map[string]decimal.Decimal, len(raw))
	for k, v := range raw {
		from, to, ok := strings.Cut(k, "/")
		if !ok {
			return nil, fmt.Errorf("pair %q must be FROM/TO", k)
		}
		out[PairKey(from, to)] = v
	}
	return out, nil
}

// PairKey is the canonical "FROM/TO" key used by plausibility thresholds.
func PairKey(from, to string) string {
	return domain.NormalizeCurrency(from) + "/" + domain.NormalizeCurrency(to)
}
