package config

import "time"

// Config is the viostream configuration.
type Config struct {
	API      APIConfig      `yaml:"api" envconfig:"API"`
	Listener ListenerConfig `yaml:"listener" envconfig:"LISTENER"`
	Poller   PollerConfig   `yaml:"poller" envconfig:"POLLER"`
	Cache    CacheConfig    `yaml:"cache" envconfig:"CACHE"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Health   HealthConfig   `yaml:"health" envconfig:"HEALTH"`
}

// APIConfig holds endpoint and credential settings.
type APIConfig struct {
	RestURL    string        `yaml:"rest_url" envconfig:"REST_URL"`
	WSURL      string        `yaml:"ws_url" envconfig:"WS_URL"`
	APIKey     string        `yaml:"api_key" envconfig:"KEY"`
	APIKeyFile string        `yaml:"api_key_file" envconfig:"KEY_FILE"`
	Timeout    time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`
}

// ListenerConfig holds live feed settings.
type ListenerConfig struct {
	Disabled            bool          `yaml:"disabled" envconfig:"DISABLED"`
	Backoff             string        `yaml:"backoff" envconfig:"BACKOFF"` // "exponential" or "constant"
	ReconnectBaseDelay  time.Duration `yaml:"reconnect_base_delay" envconfig:"RECONNECT_BASE_DELAY"`
	ReconnectMaxDelay   time.Duration `yaml:"reconnect_max_delay" envconfig:"RECONNECT_MAX_DELAY"`
	HandshakeTimeout    time.Duration `yaml:"handshake_timeout" envconfig:"HANDSHAKE_TIMEOUT"`
	PingInterval        time.Duration `yaml:"ping_interval" envconfig:"PING_INTERVAL"`
	ReadTimeout         time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	DispatchConcurrency int           `yaml:"dispatch_concurrency" envconfig:"DISPATCH_CONCURRENCY"`
}

// PollerConfig holds REST fallback polling settings.
type PollerConfig struct {
	Enabled  bool          `yaml:"enabled" envconfig:"ENABLED"`
	Interval time.Duration `yaml:"interval" envconfig:"INTERVAL"`
	Timeout  time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`
}

// CacheConfig holds snapshot cache settings.
type CacheConfig struct {
	Capacity int `yaml:"capacity" envconfig:"CAPACITY"` // 0 = unbounded
}

// LoggingConfig holds log output settings. When File is set, logs are
// written there with rotation.
type LoggingConfig struct {
	Level      string `yaml:"level" envconfig:"LEVEL"`   // debug, info, warn, error
	Format     string `yaml:"format" envconfig:"FORMAT"` // text or json
	File       string `yaml:"file" envconfig:"FILE"`
	MaxSizeMB  int    `yaml:"max_size_mb" envconfig:"MAX_SIZE_MB"`
	MaxBackups int    `yaml:"max_backups" envconfig:"MAX_BACKUPS"`
	MaxAgeDays int    `yaml:"max_age_days" envconfig:"MAX_AGE_DAYS"`
	Compress   bool   `yaml:"compress" envconfig:"COMPRESS"`
}

// HealthConfig holds the health endpoint settings. Port 0 disables it.
type HealthConfig struct {
	Port int    `yaml:"port" envconfig:"PORT"`
	Path string `yaml:"path" envconfig:"PATH"`
}
