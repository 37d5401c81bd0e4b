package cache

import (
	"context"
	"log/slog"
	"time"
)

// DefaultPurgeInterval is used by RunJanitor when interval is not positive.
const DefaultPurgeInterval = time.Minute

// Purge evicts expired entries from both stores.
func (c *SkuCache) Purge() int {
	if c == nil {
		return 0
	}
	return c.Lists.Purge() + c.Counts.Purge()
}

// RunJanitor purges expired entries every interval until ctx is done.
// Get evicts lazily; the janitor bounds memory held by entries nobody reads.
func RunJanitor(ctx context.Context, c *SkuCache, interval time.Duration, logger *slog.Logger) error {
	if interval <= 0 {
		interval = DefaultPurgeInterval
	}
	if logger == nil {
		logger = slog.Default()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug("cache janitor stopping")
			return ctx.Err()
		case <-ticker.C:
			if n := c.Purge(); n > 0 {
				logger.Debug("cache entries purged", slog.Int("count", n))
			}
		}
	}
}
