package config

import (
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Search    SearchConfig    `yaml:"search"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Log       LogConfig       `yaml:"log"`
	CORS      CORSConfig      `yaml:"cors"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// RedisConfig holds remote cache settings. An empty URL leaves the cache
// store unconfigured: every cache operation reports failure, the rate
// limiter fails closed, and the persistent store remains the only source
// of truth.
type RedisConfig struct {
	URL          string        `yaml:"url"           env:"REDIS_URL"`
	MaxRetries   int           `yaml:"max_retries"   env:"REDIS_MAX_RETRIES"   env-default:"3"`
	PoolSize     int           `yaml:"pool_size"     env:"REDIS_POOL_SIZE"     env-default:"10"`
	DialTimeout  time.Duration `yaml:"dial_timeout"  env:"REDIS_DIAL_TIMEOUT"  env-default:"5s"`
	ReadTimeout  time.Duration `yaml:"read_timeout"  env:"REDIS_READ_TIMEOUT"  env-default:"3s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"REDIS_WRITE_TIMEOUT" env-default:"3s"`
}

// SearchConfig holds orchestration settings for the search lifecycle.
type SearchConfig struct {
	CacheTTL       time.Duration `yaml:"cache_ttl"       env:"SEARCH_CACHE_TTL"       env-default:"2h"`
	DedupWindow    time.Duration `yaml:"dedup_window"    env:"SEARCH_DEDUP_WINDOW"    env-default:"2h"`
	PollMaxWait    time.Duration `yaml:"poll_max_wait"   env:"SEARCH_POLL_MAX_WAIT"   env-default:"8s"`
	PollInterval   time.Duration `yaml:"poll_interval"   env:"SEARCH_POLL_INTERVAL"   env-default:"500ms"`
	ReusePollWait  time.Duration `yaml:"reuse_poll_wait" env:"SEARCH_REUSE_POLL_WAIT" env-default:"1s"`
	WorkerURL      string        `yaml:"worker_url"      env:"SEARCH_WORKER_URL"      env-required:"true"`
	TriggerTimeout time.Duration `yaml:"trigger_timeout" env:"SEARCH_TRIGGER_TIMEOUT" env-default:"5s"`
	RetentionDays  int           `yaml:"retention_days"  env:"SEARCH_RETENTION_DAYS"  env-default:"30"`
}

// LimitConfig is one fixed-window quota: at most Max requests per Window.
type LimitConfig struct {
	Max    int           `yaml:"max"`
	Window time.Duration `yaml:"window"`
}

// RateLimitConfig holds the independently configured limiter granularities.
type RateLimitConfig struct {
	GlobalMax     int           `yaml:"global_max"      env:"RATELIMIT_GLOBAL_MAX"      env-default:"300"`
	GlobalWindow  time.Duration `yaml:"global_window"   env:"RATELIMIT_GLOBAL_WINDOW"   env-default:"1m"`
	IPMax         int           `yaml:"ip_max"          env:"RATELIMIT_IP_MAX"          env-default:"10"`
	IPWindow      time.Duration `yaml:"ip_window"       env:"RATELIMIT_IP_WINDOW"       env-default:"1m"`
	IPDailyMax    int           `yaml:"ip_daily_max"    env:"RATELIMIT_IP_DAILY_MAX"    env-default:"50"`
	IPDailyWindow time.Duration `yaml:"ip_daily_window" env:"RATELIMIT_IP_DAILY_WINDOW" env-default:"24h"`
	TopicMax      int           `yaml:"topic_max"       env:"RATELIMIT_TOPIC_MAX"       env-default:"3"`
	TopicWindow   time.Duration `yaml:"topic_window"    env:"RATELIMIT_TOPIC_WINDOW"    env-default:"10m"`
}

// Global returns the process-wide quota.
func (c RateLimitConfig) Global() LimitConfig { return LimitConfig{Max: c.GlobalMax, Window: c.GlobalWindow} }

// PerIP returns the short-window per-client quota.
func (c RateLimitConfig) PerIP() LimitConfig { return LimitConfig{Max: c.IPMax, Window: c.IPWindow} }

// PerIPDaily returns the daily per-client quota.
func (c RateLimitConfig) PerIPDaily() LimitConfig { return LimitConfig{Max: c.IPDailyMax, Window: c.IPDailyWindow} }

// PerTopic returns the per-logical-request quota.
func (c RateLimitConfig) PerTopic() LimitConfig { return LimitConfig{Max: c.TopicMax, Window: c.TopicWindow} }

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Authorization,Content-Type"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"true"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}
