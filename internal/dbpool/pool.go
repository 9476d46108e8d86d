// Package dbpool implements a bounded connection pool over database/sql,
// following the teacher's ghostpool maintain-loop shape, adapted to plain
// *sql.DB connections with a health probe and borrow timeout.
package dbpool

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq"
)

// Config controls pool sizing and health behavior.
type Config struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	BorrowTimeout   time.Duration
	HealthInterval  time.Duration
	RetryBaseDelay  time.Duration
	RetryMaxAttempts int
}

// DefaultConfig matches spec.md's pool contract: small bounded pool,
// short borrow timeout, periodic health probing, 3-attempt exponential
// backoff starting at 100ms.
func DefaultConfig(dsn string) Config {
	return Config{
		DSN:              dsn,
		MaxOpenConns:     8,
		MaxIdleConns:     4,
		BorrowTimeout:    5 * time.Second,
		HealthInterval:   30 * time.Second,
		RetryBaseDelay:   100 * time.Millisecond,
		RetryMaxAttempts: 3,
	}
}

// Pool wraps a *sql.DB with bounded sizing, periodic health probing, and
// a borrow helper that enforces the configured timeout.
type Pool struct {
	db     *sql.DB
	cfg    Config
	log    *log.Logger
	cancel context.CancelFunc
}

// Open connects and starts the background health-probe loop, mirroring
// ghostpool.PoolManager's maintainPool ticker.
func Open(cfg Config, logger *log.Logger) (*Pool, error) {
	if logger == nil {
		logger = log.New(log.Writer(), "[dbpool] ", log.LstdFlags)
	}
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("dbpool: open: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{db: db, cfg: cfg, log: logger, cancel: cancel}
	go p.maintain(ctx)
	return p, nil
}

func (p *Pool) maintain(ctx context.Context) {
	if p.cfg.HealthInterval <= 0 {
		return
	}
	ticker := time.NewTicker(p.cfg.HealthInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			probeCtx, cancel := context.WithTimeout(ctx, p.cfg.BorrowTimeout)
			if _, err := p.db.ExecContext(probeCtx, "SELECT 1"); err != nil {
				p.log.Printf("health probe failed: %v", err)
			}
			cancel()
		}
	}
}

// Borrow returns a context-bound connection handle, failing fast if the
// borrow timeout elapses before a connection becomes available.
func (p *Pool) Borrow(ctx context.Context) (*sql.Conn, error) {
	borrowCtx, cancel := context.WithTimeout(ctx, p.cfg.BorrowTimeout)
	defer cancel()
	conn, err := p.db.Conn(borrowCtx)
	if err != nil {
		return nil, fmt.Errorf("dbpool: borrow: %w", err)
	}
	return conn, nil
}

// WithRetry runs fn up to cfg.RetryMaxAttempts times in total, waiting
// with exponential backoff (base, base*2, base*4, ...) between attempts.
func (p *Pool) WithRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	var lastErr error
	delay := p.cfg.RetryBaseDelay
	for attempt := 0; attempt < p.cfg.RetryMaxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
			delay *= 2
		}
		if lastErr = fn(ctx); lastErr == nil {
			return nil
		}
		p.log.Printf("attempt %d/%d failed: %v", attempt+1, p.cfg.RetryMaxAttempts, lastErr)
	}
	return fmt.Errorf("dbpool: exhausted %d attempts: %w", p.cfg.RetryMaxAttempts, lastErr)
}

// DB exposes the underlying *sql.DB for repositories that need direct
// transaction control.
func (p *Pool) DB() *sql.DB { return p.db }

// Close stops the maintenance loop and closes the underlying pool.
func (p *Pool) Close() error {
	p.cancel()
	return p.db.Close()
}
