package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.API.APIKey == "" && c.API.APIKeyFile == "" {
		return errors.New("api.api_key or api.api_key_file is required")
	}
	if err := validateURL("api.rest_url", c.API.RestURL, "http", "https"); err != nil {
		return err
	}
	if err := validateURL("api.ws_url", c.API.WSURL, "ws", "wss"); err != nil {
		return err
	}
	if c.API.Timeout < 0 {
		return errors.New("api.timeout must be >= 0")
	}

	if err := c.Listener.validate("listener"); err != nil {
		return err
	}

	if c.Poller.Enabled && c.Poller.Interval <= 0 {
		return errors.New("poller.interval must be > 0")
	}

	if c.Cache.Capacity < 0 {
		return errors.New("cache.capacity must be >= 0")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}

	if c.Health.Port < 0 || c.Health.Port > 65535 {
		return fmt.Errorf("health.port must be between 0 and 65535, got %d", c.Health.Port)
	}

	return nil
}

func (l *ListenerConfig) validate(prefix string) error {
	switch l.Backoff {
	case BackoffExponential, BackoffConstant:
	default:
		return fmt.Errorf("%s.backoff must be %q or %q, got %q", prefix, BackoffExponential, BackoffConstant, l.Backoff)
	}
	if l.ReconnectBaseDelay <= 0 {
		return fmt.Errorf("%s.reconnect_base_delay must be > 0", prefix)
	}
	if l.ReconnectBaseDelay > l.ReconnectMaxDelay {
		return fmt.Errorf("%s.reconnect_base_delay (%s) cannot exceed reconnect_max_delay (%s)", prefix, l.ReconnectBaseDelay, l.ReconnectMaxDelay)
	}
	if l.ReadTimeout > 0 && l.PingInterval >= l.ReadTimeout {
		return fmt.Errorf("%s.ping_interval (%s) must be less than read_timeout (%s)", prefix, l.PingInterval, l.ReadTimeout)
	}
	if l.DispatchConcurrency < 0 {
		return fmt.Errorf("%s.dispatch_concurrency must be >= 0", prefix)
	}
	return nil
}

func validateURL(field, raw string, schemes ...string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	for _, s := range schemes {
		if u.Scheme == s && u.Host != "" {
			return nil
		}
	}
	return fmt.Errorf("%s must be a %s URL, got %q", field, schemes[0], raw)
}
