package config

import (
	"errors"
	"io/fs"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Session store kinds.
const (
	SessionStoreMemory = "memory"
	SessionStoreFile   = "file"
	SessionStoreRedis  = "redis"
)

type Config struct {
	Env  string
	Port int

	Backend BackendConfig
	Session SessionConfig
	Redis   RedisConfig
	CORS    CORSConfig
	Log     LogConfig
	Table   TableConfig
	Capture CaptureConfig
	Alerts  AlertConfig
	Clock   ClockConfig
	Metrics MetricsConfig
}

// BackendConfig points the client at the attendance REST API.
type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

// SessionConfig controls where the credential token is kept.
type SessionConfig struct {
	Store      string
	TokenKey   string
	FilePath   string
	CookieName string
	TTL        time.Duration
	SecureOnly bool
	// PollEvery is how often a file-backed session is re-read for writes
	// made by another process.
	PollEvery time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// TableConfig lists the admissible page sizes offered by every table.
type TableConfig struct {
	PageSizes       []int
	DefaultPageSize int
}

// CaptureConfig tunes the photo/geolocation check-in flow.
type CaptureConfig struct {
	LocationTimeout time.Duration
	JPEGQuality     int
}

// AlertConfig governs transient alert lifetime.
type AlertConfig struct {
	DismissAfter time.Duration
}

// ClockConfig drives the live clock shown on the attendance page.
type ClockConfig struct {
	Interval time.Duration
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")

	cfg.Backend = BackendConfig{
		BaseURL: strings.TrimRight(v.GetString("BACKEND_BASE_URL"), "/"),
		Timeout: parseDuration(v.GetString("BACKEND_TIMEOUT"), 15*time.Second),
	}

	cfg.Session = SessionConfig{
		Store:      strings.ToLower(v.GetString("SESSION_STORE")),
		TokenKey:   v.GetString("SESSION_TOKEN_KEY"),
		FilePath:   v.GetString("SESSION_FILE_PATH"),
		CookieName: v.GetString("SESSION_COOKIE_NAME"),
		TTL:        parseDuration(v.GetString("SESSION_TTL"), 24*time.Hour),
		SecureOnly: v.GetBool("SESSION_COOKIE_SECURE"),
		PollEvery:  parseDuration(v.GetString("SESSION_POLL_INTERVAL"), time.Second),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	sizes := parseInts(v.GetString("TABLE_PAGE_SIZES"))
	if len(sizes) == 0 {
		sizes = []int{5, 10, 20, 50}
	}
	defaultSize := v.GetInt("TABLE_DEFAULT_PAGE_SIZE")
	if !slices.Contains(sizes, defaultSize) {
		defaultSize = sizes[0]
	}
	cfg.Table = TableConfig{PageSizes: sizes, DefaultPageSize: defaultSize}

	quality := v.GetInt("CAPTURE_JPEG_QUALITY")
	if quality <= 0 || quality > 100 {
		quality = 80
	}
	cfg.Capture = CaptureConfig{
		LocationTimeout: parseDuration(v.GetString("CAPTURE_LOCATION_TIMEOUT"), 30*time.Second),
		JPEGQuality:     quality,
	}

	cfg.Alerts = AlertConfig{DismissAfter: parseDuration(v.GetString("ALERT_DISMISS_AFTER"), 5*time.Second)}
	cfg.Clock = ClockConfig{Interval: parseDuration(v.GetString("CLOCK_INTERVAL"), time.Second)}
	cfg.Metrics = MetricsConfig{Enabled: v.GetBool("ENABLE_METRICS")}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8081)

	v.SetDefault("BACKEND_BASE_URL", "http://localhost:8080")
	v.SetDefault("BACKEND_TIMEOUT", "15s")

	v.SetDefault("SESSION_STORE", SessionStoreMemory)
	v.SetDefault("SESSION_TOKEN_KEY", "token")
	v.SetDefault("SESSION_FILE_PATH", ".attendctl/session.json")
	v.SetDefault("SESSION_COOKIE_NAME", "attendance_session")
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("SESSION_COOKIE_SECURE", false)
	v.SetDefault("SESSION_POLL_INTERVAL", "1s")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("TABLE_PAGE_SIZES", "5,10,20,50")
	v.SetDefault("TABLE_DEFAULT_PAGE_SIZE", 5)

	v.SetDefault("CAPTURE_LOCATION_TIMEOUT", "30s")
	v.SetDefault("CAPTURE_JPEG_QUALITY", 80)

	v.SetDefault("ALERT_DISMISS_AFTER", "5s")
	v.SetDefault("CLOCK_INTERVAL", "1s")
	v.SetDefault("ENABLE_METRICS", true)
}

func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

func parseInts(raw string) []int {
	parts := splitAndTrim(raw)
	result := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n <= 0 {
			continue
		}
		result = append(result, n)
	}
	return result
}
