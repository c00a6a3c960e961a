package config

import (
	"fmt"
	"net/url"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1-65535 (got %d)", c.Server.Port)
	}

	u, err := url.Parse(c.Search.WorkerURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("search.worker_url must be an absolute URL (got %q)", c.Search.WorkerURL)
	}

	if c.Search.PollInterval <= 0 {
		return fmt.Errorf("search.poll_interval must be > 0 (got %v)", c.Search.PollInterval)
	}
	if c.Search.PollMaxWait < c.Search.PollInterval {
		return fmt.Errorf("search.poll_max_wait %v must be >= poll_interval %v",
			c.Search.PollMaxWait, c.Search.PollInterval)
	}
	if c.Search.CacheTTL <= 0 {
		return fmt.Errorf("search.cache_ttl must be > 0 (got %v)", c.Search.CacheTTL)
	}
	if c.Search.RetentionDays <= 0 {
		return fmt.Errorf("search.retention_days must be > 0 (got %d)", c.Search.RetentionDays)
	}

	if err := c.RateLimit.validate(); err != nil {
		return fmt.Errorf("rate_limit: %w", err)
	}

	return nil
}

func (c RateLimitConfig) validate() error {
	limits := map[string]LimitConfig{
		"global":   c.Global(),
		"ip":       c.PerIP(),
		"ip_daily": c.PerIPDaily(),
		"topic":    c.PerTopic(),
	}
	for name, l := range limits {
		if l.Max <= 0 {
			return fmt.Errorf("%s.max must be > 0 (got %d)", name, l.Max)
		}
		if l.Window <= 0 {
			return fmt.Errorf("%s.window must be > 0 (got %v)", name, l.Window)
		}
	}
	return nil
}
