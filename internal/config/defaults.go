package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultRestURL            = "http://adv.vi-o.tech/api"
	DefaultWSURL              = "ws://adv.vi-o.tech/ws"
	DefaultAPITimeout         = 30 * time.Second
	DefaultBackoff            = BackoffExponential
	DefaultReconnectBaseDelay = 1 * time.Second
	DefaultReconnectMaxDelay  = 60 * time.Second
	DefaultHandshakeTimeout   = 10 * time.Second
	DefaultPingInterval       = 30 * time.Second
	DefaultReadTimeout        = 90 * time.Second
	DefaultPollInterval       = 1 * time.Minute
	DefaultPollTimeout        = 30 * time.Second
	DefaultLogLevel           = "info"
	DefaultLogFormat          = "text"
	DefaultLogMaxSizeMB       = 100
	DefaultLogMaxBackups      = 5
	DefaultLogMaxAgeDays      = 30
	DefaultHealthPath         = "/health"
)

// Backoff kinds.
const (
	BackoffExponential = "exponential"
	BackoffConstant    = "constant"
)

func (c *Config) applyDefaults() {
	// API defaults
	if c.API.RestURL == "" {
		c.API.RestURL = DefaultRestURL
	}
	if c.API.WSURL == "" {
		c.API.WSURL = DefaultWSURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}

	// Listener defaults
	if c.Listener.Backoff == "" {
		c.Listener.Backoff = DefaultBackoff
	}
	if c.Listener.ReconnectBaseDelay == 0 {
		c.Listener.ReconnectBaseDelay = DefaultReconnectBaseDelay
	}
	if c.Listener.ReconnectMaxDelay == 0 {
		c.Listener.ReconnectMaxDelay = DefaultReconnectMaxDelay
	}
	if c.Listener.HandshakeTimeout == 0 {
		c.Listener.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if c.Listener.PingInterval == 0 {
		c.Listener.PingInterval = DefaultPingInterval
	}
	if c.Listener.ReadTimeout == 0 {
		c.Listener.ReadTimeout = DefaultReadTimeout
	}

	// Poller defaults
	if c.Poller.Interval == 0 {
		c.Poller.Interval = DefaultPollInterval
	}
	if c.Poller.Timeout == 0 {
		c.Poller.Timeout = DefaultPollTimeout
	}

	// Logging defaults
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
	if c.Logging.MaxSizeMB == 0 {
		c.Logging.MaxSizeMB = DefaultLogMaxSizeMB
	}
	if c.Logging.MaxBackups == 0 {
		c.Logging.MaxBackups = DefaultLogMaxBackups
	}
	if c.Logging.MaxAgeDays == 0 {
		c.Logging.MaxAgeDays = DefaultLogMaxAgeDays
	}

	// Health defaults
	if c.Health.Path == "" {
		c.Health.Path = DefaultHealthPath
	}
}
