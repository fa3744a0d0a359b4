package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/matchtv/tvsync/internal/platform/logging"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

// Config stores runtime configuration for the sync pipeline.
type Config struct {
	AppEnv         string `validate:"required,oneof=dev stage prod"`
	ServiceName    string `validate:"required"`
	ServiceVersion string

	DBURL                   string `validate:"required"`
	DBDisablePreparedBinary bool

	SportMonksBaseURL               string
	SportMonksToken                 string `validate:"required"`
	SportMonksTimeout               time.Duration
	SportMonksMaxRetries            int
	SportMonksCircuitEnabled        bool
	SportMonksCircuitFailureCount   int
	SportMonksCircuitOpenTimeout    time.Duration
	SportMonksCircuitHalfOpenMaxReq int
	SportMonksRequestDelay          time.Duration `validate:"min=0"`

	TVSyncEnabled        bool
	HomeMarketCountryIDs []int64       `validate:"required,min=1,dive,gt=0"`
	ExclusionKeywords    []string
	ReclassifyWorkers    int
	BroadcastRetention   time.Duration `validate:"min=0"`

	UptraceEnabled             bool
	UptraceDSN                 string
	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration

	LogLevel logging.Level
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	dbURL := strings.TrimSpace(getEnv("DATABASE_URL", ""))
	dbDisablePreparedBinary, err := strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY: %w", err)
	}

	sportMonksTimeout, err := time.ParseDuration(getEnv("SPORTMONKS_TIMEOUT", "20s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SPORTMONKS_TIMEOUT: %w", err)
	}
	if sportMonksTimeout <= 0 {
		return Config{}, fmt.Errorf("SPORTMONKS_TIMEOUT must be > 0")
	}
	sportMonksMaxRetries, err := getEnvAsInt("SPORTMONKS_MAX_RETRIES", 3)
	if err != nil {
		return Config{}, fmt.Errorf("parse SPORTMONKS_MAX_RETRIES: %w", err)
	}
	if sportMonksMaxRetries < 0 {
		return Config{}, fmt.Errorf("SPORTMONKS_MAX_RETRIES must be >= 0")
	}
	sportMonksCircuitEnabled, err := strconv.ParseBool(getEnv("SPORTMONKS_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SPORTMONKS_CIRCUIT_ENABLED: %w", err)
	}
	sportMonksCircuitFailureCount, err := getEnvAsInt("SPORTMONKS_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse SPORTMONKS_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	sportMonksCircuitOpenTimeout, err := time.ParseDuration(getEnv("SPORTMONKS_CIRCUIT_OPEN_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SPORTMONKS_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	sportMonksCircuitHalfOpenMaxReq, err := getEnvAsInt("SPORTMONKS_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse SPORTMONKS_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	sportMonksRequestDelay, err := time.ParseDuration(getEnv("SPORTMONKS_REQUEST_DELAY", "1s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SPORTMONKS_REQUEST_DELAY: %w", err)
	}

	tvSyncEnabled, err := strconv.ParseBool(getEnv("TV_SYNC_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse TV_SYNC_ENABLED: %w", err)
	}
	homeMarketCountryIDs, err := parseIDList(getEnv("TV_HOME_MARKET_COUNTRY_IDS", "462,556"))
	if err != nil {
		return Config{}, fmt.Errorf("parse TV_HOME_MARKET_COUNTRY_IDS: %w", err)
	}
	exclusionKeywords := splitCSV(getEnv("TV_EXCLUSION_KEYWORDS", "highlights,radio,news"))
	reclassifyWorkers, err := getEnvAsInt("TV_RECLASSIFY_WORKERS", 8)
	if err != nil {
		return Config{}, fmt.Errorf("parse TV_RECLASSIFY_WORKERS: %w", err)
	}
	if reclassifyWorkers <= 0 {
		return Config{}, fmt.Errorf("TV_RECLASSIFY_WORKERS must be > 0")
	}
	broadcastRetention, err := time.ParseDuration(getEnv("TV_BROADCAST_RETENTION", "0s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse TV_BROADCAST_RETENTION: %w", err)
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	cfg := Config{
		AppEnv:         appEnv,
		ServiceName:    getEnv("SERVICE_NAME", "tvsync"),
		ServiceVersion: getEnv("SERVICE_VERSION", "dev"),

		DBURL:                   dbURL,
		DBDisablePreparedBinary: dbDisablePreparedBinary,

		SportMonksBaseURL:               strings.TrimSpace(getEnv("SPORTMONKS_BASE_URL", "")),
		SportMonksToken:                 strings.TrimSpace(getEnv("SPORTMONKS_TOKEN", "")),
		SportMonksTimeout:               sportMonksTimeout,
		SportMonksMaxRetries:            sportMonksMaxRetries,
		SportMonksCircuitEnabled:        sportMonksCircuitEnabled,
		SportMonksCircuitFailureCount:   sportMonksCircuitFailureCount,
		SportMonksCircuitOpenTimeout:    sportMonksCircuitOpenTimeout,
		SportMonksCircuitHalfOpenMaxReq: sportMonksCircuitHalfOpenMaxReq,
		SportMonksRequestDelay:          sportMonksRequestDelay,

		TVSyncEnabled:        tvSyncEnabled,
		HomeMarketCountryIDs: homeMarketCountryIDs,
		ExclusionKeywords:    exclusionKeywords,
		ReclassifyWorkers:    reclassifyWorkers,
		BroadcastRetention:   broadcastRetention,

		UptraceEnabled:             uptraceEnabled,
		UptraceDSN:                 uptraceDSN,
		PyroscopeEnabled:           pyroscopeEnabled,
		PyroscopeServerAddress:     pyroscopeServerAddress,
		PyroscopeAppName:           getEnv("PYROSCOPE_APP_NAME", "tvsync"),
		PyroscopeAuthToken:         strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:     strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:        pyroscopeUploadRate,

		LogLevel: parseLogLevel(getEnv("LOG_LEVEL", "info")),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseIDList(raw string) ([]int64, error) {
	parts := splitCSV(raw)
	out := make([]int64, 0, len(parts))
	for _, part := range parts {
		value, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: %w", part, err)
		}
		if value <= 0 {
			return nil, fmt.Errorf("id must be > 0, got %q", part)
		}
		out = append(out, value)
	}
	return out, nil
}

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
