package rtt

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"math"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/openrba/stepgate/core"
	"github.com/openrba/stepgate/ports"
)

const (
	// SessionAttr is the session attribute holding the measured RTT in
	// rounded integer milliseconds
	SessionAttr = "rtt"

	// maxSamples bounds both attacker cost and server resource use
	maxSamples = 5

	// tokenBytes gives each token 256 bits of entropy
	tokenBytes = 32
)

// Conn is one bidirectional timing connection to a browser. Receive blocks
// until the client's next message, a transport error or an idle timeout
// enforced by the hosting layer.
type Conn interface {
	Send(token string) error
	Receive() (string, error)
	Close() error
}

// Collector runs the RTT sampling protocol: it sends opaque random tokens,
// times the client's echo and records the minimum observed round trip as
// the session's latency signal. The minimum rather than the mean discards
// network jitter that would bias the signal toward higher latency.
type Collector struct {
	store    ports.SessionStore
	registry *Registry
	logger   zerolog.Logger
	now      func() time.Time
}

// NewCollector creates a new RTT collector
func NewCollector(store ports.SessionStore, registry *Registry, logger zerolog.Logger) *Collector {
	return &Collector{
		store:    store,
		registry: registry,
		logger:   logger.With().Str("component", "rtt").Logger(),
		now:      time.Now,
	}
}

// Run drives the protocol for one connection and blocks until it closes.
// A connection without a resolvable session key is rejected outright: an
// RTT signal must be attributable to a known session.
func (c *Collector) Run(ctx context.Context, sessionKey string, conn Conn) {
	defer conn.Close()

	if sessionKey == "" {
		c.logger.Warn().Err(core.ErrSessionRequired).Msg("rejecting timing connection")
		return
	}

	record, err := c.registry.acquire(sessionKey)
	if err != nil {
		c.logger.Warn().Str("session", sessionKey).Err(err).Msg("rejecting timing connection")
		return
	}

	// A fresh connection invalidates any previous measurement
	if err := c.store.Delete(ctx, sessionKey, SessionAttr); err != nil {
		c.logger.Warn().Str("session", sessionKey).Err(err).Msg("failed to clear stale rtt attribute")
	}

	violated := false
	defer func() {
		c.finalize(ctx, sessionKey, record, violated)
	}()

	for {
		token, err := c.issueToken(record)
		if err != nil {
			c.logger.Error().Err(err).Msg("failed to issue token")
			return
		}

		if err := conn.Send(token); err != nil {
			return
		}

		msg, err := conn.Receive()
		end := c.now()
		if err != nil {
			return
		}

		start, ok := record.pending[msg]
		if !ok {
			// Unknown or stale token: terminate rather than record a
			// spurious sample an attacker could inject
			c.logger.Warn().Str("session", sessionKey).Msg("protocol violation on timing connection")
			violated = true
			return
		}
		delete(record.pending, msg)

		record.samples = append(record.samples, float64(end.Sub(start))/float64(time.Millisecond))

		if len(record.samples) >= maxSamples {
			return
		}
	}
}

// issueToken generates a fresh token and records its start timestamp. The
// protocol has at most one outstanding token awaiting echo.
func (c *Collector) issueToken(record *TimingRecord) (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	token := base64.RawURLEncoding.EncodeToString(buf)
	record.pending[token] = c.now()

	return token, nil
}

// finalize discards the timing record and, when at least one round trip
// completed normally, writes the minimum sample into the session.
func (c *Collector) finalize(ctx context.Context, sessionKey string, record *TimingRecord, violated bool) {
	c.registry.release(sessionKey)

	if violated || len(record.samples) == 0 {
		return
	}

	lowest := record.samples[0]
	for _, sample := range record.samples[1:] {
		if sample < lowest {
			lowest = sample
		}
	}
	value := strconv.Itoa(int(math.Round(lowest)))

	// The connection context is usually gone by the time we finalize; the
	// session write must still happen.
	ctx = context.WithoutCancel(ctx)

	if err := c.store.Set(ctx, sessionKey, SessionAttr, value); err != nil {
		c.logger.Error().Str("session", sessionKey).Err(err).Msg("failed to store rtt")
		return
	}

	if err := c.store.Save(ctx, sessionKey); err != nil {
		c.logger.Error().Str("session", sessionKey).Err(err).Msg("failed to persist session")
	}
}
