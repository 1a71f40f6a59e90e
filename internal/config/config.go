package config

import (
	"fmt"
	"os"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

const (
	EnvPort                    = "PORT"
	EnvAPIURL                  = "API_URL"
	EnvDBURL                   = "DB_URL"
	EnvJWTSecret               = "JWT_SECRET"
	EnvSessionCookieName       = "SESSION_COOKIE_NAME"
	EnvLockStore               = "LOCK_STORE"
	EnvRedisAddr               = "REDIS_ADDR"
	EnvRedisPassword           = "REDIS_PASSWORD"
	EnvRedisDB                 = "REDIS_DB"
	EnvMongoURI                = "MONGO_URI"
	EnvMongoDatabase           = "MONGO_DATABASE"
	EnvCourtLockTimeoutMinutes = "COURT_LOCK_TIMEOUT_MINUTES"
	EnvCourtLockRetention      = "COURT_LOCK_RETENTION"
	EnvCourtLockReapInterval   = "COURT_LOCK_REAP_INTERVAL"
	EnvCourtCacheSize          = "COURT_CACHE_SIZE"
	EnvCourtCacheTTL           = "COURT_CACHE_TTL"
	EnvRequestTimeout          = "REQUEST_TIMEOUT"
	EnvSenderEmail             = "SENDER_EMAIL"
	EnvSenderEmailPassword     = "SENDER_EMAIL_PASSWORD"
	EnvSMTPHost                = "SMTP_HOST"
	EnvSMTPPort                = "SMTP_PORT"
	EnvEmailWorkers            = "EMAIL_WORKERS"
	EnvLogLevel                = "LOG_LEVEL"
	EnvLogFormat               = "LOG_FORMAT"
)

const (
	LockStorePostgres = "postgres"
	LockStoreRedis    = "redis"
	LockStoreMongo    = "mongo"
	LockStoreMemory   = "memory"
)

const (
	DefaultPort                    = "8080"
	DefaultSessionCookieName       = "fact_session"
	DefaultLockStore               = LockStorePostgres
	DefaultRedisAddr               = "localhost:6379"
	DefaultMongoDatabase           = "fact"
	DefaultCourtLockTimeoutMinutes = 2
	DefaultCourtLockRetention      = 24 * time.Hour
	DefaultCourtCacheSize          = 256
	DefaultCourtCacheTTL           = time.Minute
	DefaultRequestTimeout          = 30 * time.Second
	DefaultSMTPHost                = "smtp.gmail.com"
	DefaultSMTPPort                = 587
	DefaultEmailWorkers            = 1
	DefaultLogLevel                = "info"
	DefaultLogFormat               = "text"
)

var lockStores = []string{LockStorePostgres, LockStoreRedis, LockStoreMongo, LockStoreMemory}

type EmailConfig struct {
	Sender         string
	SenderPassword string
	SMTPHost       string
	SMTPPort       int
	Workers        int
}

// Enabled reports whether outgoing mail has a sender configured.
func (e EmailConfig) Enabled() bool {
	return e.Sender != ""
}

type Config struct {
	Port   string
	APIURL string

	DBURL string

	JWTSecret         string
	SessionCookieName string

	LockStore     string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	MongoURI      string
	MongoDatabase string

	CourtLockTimeout      time.Duration
	CourtLockRetention    time.Duration
	CourtLockReapInterval time.Duration

	CourtCacheSize int
	CourtCacheTTL  time.Duration

	RequestTimeout time.Duration

	Email EmailConfig

	LogLevel  string
	LogFormat string
}

// Load reads .env (when present) and the process environment into a validated Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warnf("unable to load .env file, %v", err)
	}

	cfg := &Config{
		Port:   getEnvStr(EnvPort, DefaultPort),
		APIURL: getEnvStr(EnvAPIURL, ""),

		DBURL: getEnvStr(EnvDBURL, ""),

		JWTSecret:         getEnvStr(EnvJWTSecret, ""),
		SessionCookieName: getEnvStr(EnvSessionCookieName, DefaultSessionCookieName),

		LockStore:     strings.ToLower(getEnvStr(EnvLockStore, DefaultLockStore)),
		RedisAddr:     getEnvStr(EnvRedisAddr, DefaultRedisAddr),
		RedisPassword: getEnvStr(EnvRedisPassword, ""),
		RedisDB:       getEnvNum(EnvRedisDB, 0),
		MongoURI:      getEnvStr(EnvMongoURI, ""),
		MongoDatabase: getEnvStr(EnvMongoDatabase, DefaultMongoDatabase),

		CourtLockTimeout: time.Duration(
			getEnvNum(EnvCourtLockTimeoutMinutes, DefaultCourtLockTimeoutMinutes),
		) * time.Minute,
		CourtLockRetention:    getEnvDuration(EnvCourtLockRetention, DefaultCourtLockRetention),
		CourtLockReapInterval: getEnvDuration(EnvCourtLockReapInterval, 0),

		CourtCacheSize: getEnvNum(EnvCourtCacheSize, DefaultCourtCacheSize),
		CourtCacheTTL:  getEnvDuration(EnvCourtCacheTTL, DefaultCourtCacheTTL),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),

		Email: EmailConfig{
			Sender:         getEnvStr(EnvSenderEmail, ""),
			SenderPassword: getEnvStr(EnvSenderEmailPassword, ""),
			SMTPHost:       getEnvStr(EnvSMTPHost, DefaultSMTPHost),
			SMTPPort:       getEnvNum(EnvSMTPPort, DefaultSMTPPort),
			Workers:        getEnvNum(EnvEmailWorkers, DefaultEmailWorkers),
		},

		LogLevel:  getEnvStr(EnvLogLevel, DefaultLogLevel),
		LogFormat: getEnvStr(EnvLogFormat, DefaultLogFormat),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("PORT must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.JWTSecret == "" {
		errors = append(errors, "JWT_SECRET cannot be empty")
	}

	if !slices.Contains(lockStores, cfg.LockStore) {
		errors = append(errors, fmt.Sprintf("LOCK_STORE must be one of %v, got: %s", lockStores, cfg.LockStore))
	}

	// courts are always read from postgres, whichever lock store is used
	if cfg.DBURL == "" {
		errors = append(errors, "DB_URL cannot be empty")
	}

	switch cfg.LockStore {
	case LockStoreRedis:
		if cfg.RedisAddr == "" {
			errors = append(errors, "REDIS_ADDR cannot be empty when LOCK_STORE is redis")
		}
		if cfg.CourtLockRetention < cfg.CourtLockTimeout {
			errors = append(errors, fmt.Sprintf(
				"COURT_LOCK_RETENTION (%s) must not be shorter than the lock timeout (%s)",
				cfg.CourtLockRetention, cfg.CourtLockTimeout,
			))
		}
	case LockStoreMongo:
		if !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
			errors = append(errors, fmt.Sprintf("MONGO_URI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactURI(cfg.MongoURI)))
		}
		if cfg.MongoDatabase == "" {
			errors = append(errors, "MONGO_DATABASE cannot be empty")
		}
	}

	if cfg.CourtLockTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("COURT_LOCK_TIMEOUT_MINUTES must be positive, got: %s", cfg.CourtLockTimeout))
	}
	if cfg.CourtLockReapInterval < 0 {
		errors = append(errors, fmt.Sprintf("COURT_LOCK_REAP_INTERVAL cannot be negative, got: %s", cfg.CourtLockReapInterval))
	}
	if cfg.CourtCacheSize <= 0 {
		errors = append(errors, fmt.Sprintf("COURT_CACHE_SIZE must be positive, got: %d", cfg.CourtCacheSize))
	}
	if cfg.CourtCacheTTL <= 0 {
		errors = append(errors, fmt.Sprintf("COURT_CACHE_TTL must be positive, got: %s", cfg.CourtCacheTTL))
	}
	if cfg.RequestTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("REQUEST_TIMEOUT must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.Email.Workers <= 0 {
		errors = append(errors, fmt.Sprintf("EMAIL_WORKERS must be positive, got: %d", cfg.Email.Workers))
	}
	if _, err := log.ParseLevel(cfg.LogLevel); err != nil {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL is invalid, got: %s", cfg.LogLevel))
	}

	if len(errors) > 0 {
		errMsg := "configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	log.WithFields(log.Fields{
		"port":                  cfg.Port,
		"db_url":                redactURI(cfg.DBURL),
		"lock_store":            cfg.LockStore,
		"redis_addr":            cfg.RedisAddr,
		"mongo_uri":             redactURI(cfg.MongoURI),
		"mongo_database":        cfg.MongoDatabase,
		"court_lock_timeout":    cfg.CourtLockTimeout,
		"court_lock_retention":  cfg.CourtLockRetention,
		"court_lock_reap_every": cfg.CourtLockReapInterval,
		"court_cache_size":      cfg.CourtCacheSize,
		"court_cache_ttl":       cfg.CourtCacheTTL,
		"request_timeout":       cfg.RequestTimeout,
		"email_enabled":         cfg.Email.Enabled(),
		"email_workers":         cfg.Email.Workers,
		"log_level":             cfg.LogLevel,
	}).Info("configuration loaded")
}

func redactURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(://)[^:/@]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		log.Warnf("%s is not a number, using default %d", key, fallback)
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Warnf("%s is not a duration, using default %s", key, fallback)
	}
	return fallback
}
