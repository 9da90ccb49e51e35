package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/deusflow/newslens/internal/apperr"
	"github.com/deusflow/newslens/internal/logger"
)

// Budget caps calls to one external service: a daily quota that resets 24h
// after the window opened, plus an optional per-minute pace.
type Budget struct {
	mu        sync.Mutex
	service   string
	maxPerDay int
	used      int
	denied    int
	resetTime time.Time
	limiter   *rate.Limiter
	now       func() time.Time
	log       *slog.Logger
}

// NewBudget creates a budget. Zero maxPerDay or perMinute disables that limit.
func NewBudget(service string, maxPerDay, perMinute int, log *slog.Logger) *Budget {
	b := &Budget{
		service:   service,
		maxPerDay: maxPerDay,
		now:       time.Now,
		log:       logger.OrDefault(log),
	}
	b.resetTime = b.now().Add(24 * time.Hour)
	if perMinute > 0 {
		b.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
	}
	return b
}

// Acquire reserves one call. It fails with apperr.ErrQuotaExceeded when the
// daily quota is spent, and otherwise waits for the pace limiter.
func (b *Budget) Acquire(ctx context.Context) error {
	if err := b.reserve(); err != nil {
		return err
	}
	if b.limiter == nil {
		return nil
	}
	if err := b.limiter.Wait(ctx); err != nil {
		b.release()
		return fmt.Errorf("%s rate limit wait: %w", b.service, err)
	}
	return nil
}

func (b *Budget) reserve() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.checkReset()

	if b.maxPerDay > 0 && b.used >= b.maxPerDay {
		b.denied++
		b.log.Warn("Daily request budget reached", "service", b.service, "used", b.used, "limit", b.maxPerDay)
		return fmt.Errorf("%s: %w (%d/%d)", b.service, apperr.ErrQuotaExceeded, b.used, b.maxPerDay)
	}
	b.used++
	b.log.Debug("Request budget used", "service", b.service, "used", b.used, "limit", b.maxPerDay)
	return nil
}

func (b *Budget) release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.used > 0 {
		b.used--
	}
}

// Remaining is the number of calls left today, or -1 when unlimited.
func (b *Budget) Remaining() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.checkReset()
	if b.maxPerDay <= 0 {
		return -1
	}
	return max(0, b.maxPerDay-b.used)
}

func (b *Budget) GetStats() map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()

	return map[string]any{
		"service":    b.service,
		"used":       b.used,
		"limit":      b.maxPerDay,
		"denied":     b.denied,
		"reset_time": b.resetTime.Format(time.RFC3339),
	}
}

// checkReset must be called with mu held.
func (b *Budget) checkReset() {
	if b.now().After(b.resetTime) {
		b.log.Info("Resetting request budget", "service", b.service, "used", b.used, "denied", b.denied)
		b.used = 0
		b.denied = 0
		b.resetTime = b.now().Add(24 * time.Hour)
	}
}
