package services

import (
	"context"
	"time"

	"github.com/benmeehan/climate-node/internal/state"
	"github.com/benmeehan/climate-node/pkg/netlink"
	"github.com/rs/zerolog"
)

// ConnectivityService keeps the network link up. Each cycle either
// re-associates a down link with a bounded number of status polls, or checks
// that a connected link is still there.
type ConnectivityService struct {
	Link          netlink.Link
	Store         *state.Store
	RetryInterval time.Duration
	PollInterval  time.Duration
	MaxAttempts   int

	*task
}

// NewConnectivityService initializes a new ConnectivityService.
func NewConnectivityService(link netlink.Link, store *state.Store, retryInterval, pollInterval time.Duration,
	maxAttempts int, logger zerolog.Logger) *ConnectivityService {

	return &ConnectivityService{
		Link:          link,
		Store:         store,
		RetryInterval: retryInterval,
		PollInterval:  pollInterval,
		MaxAttempts:   maxAttempts,
		task:          newTask("connectivity", logger),
	}
}

// Start launches the connectivity loop in a separate goroutine.
func (c *ConnectivityService) Start() error {
	return c.start(func(ctx context.Context) {
		every(ctx, c.RetryInterval, true, c.cycle)
	})
}

// Stop gracefully stops the connectivity service.
func (c *ConnectivityService) Stop() error {
	return c.stop()
}

func (c *ConnectivityService) cycle(ctx context.Context) {
	if c.Store.LinkConnected() {
		if status := c.Link.Status(); status != netlink.Connected {
			c.Store.SetLinkConnected(false)
			c.logger.Warn().Stringer("status", status).Msg("Network link lost")
		}
		return
	}
	c.associate(ctx)
}

// associate starts association and polls the link status up to MaxAttempts
// times. It reports whether the link came up.
func (c *ConnectivityService) associate(ctx context.Context) bool {
	c.logger.Info().Msg("Connecting to network")
	if err := c.Link.Begin(ctx); err != nil {
		c.logger.Error().Err(err).Msg("Failed to start network association")
		return false
	}

	for attempt := 1; attempt <= c.MaxAttempts; attempt++ {
		if c.Link.Status() == netlink.Connected {
			info := c.Link.Info()
			c.Store.SetLinkConnected(true)
			c.logger.Info().
				Str("local_ip", info.LocalIP).
				Str("ssid", info.SSID).
				Int("attempts", attempt).
				Msg("Network link connected")
			return true
		}
		if !sleepCtx(ctx, c.PollInterval) {
			return false
		}
	}

	c.logger.Warn().Int("attempts", c.MaxAttempts).Msg("Network association timed out, retrying next cycle")
	return false
}
