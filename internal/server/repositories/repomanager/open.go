package repomanager

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/scribblenest/internal/common"
	"github.com/dmitrijs2005/scribblenest/internal/logging"
	"github.com/dmitrijs2005/scribblenest/internal/server/config"
	"github.com/sethvargo/go-retry"
)

type opener func(ctx context.Context, cfg *config.Config) (RepositoryManager, error)

// Backend openers; replaced in tests.
var (
	openMongoBackend = func(ctx context.Context, cfg *config.Config) (RepositoryManager, error) {
		return openMongo(ctx, cfg.DatabaseDSN, cfg.DatabaseName, cfg.UseTransactions)
	}
	openPostgresBackend = func(ctx context.Context, cfg *config.Config) (RepositoryManager, error) {
		return openPostgres(ctx, cfg.DatabaseDSN)
	}
	openMemoryBackend = func(context.Context, *config.Config) (RepositoryManager, error) {
		return NewMemoryRepositoryManager(), nil
	}
)

// Backend names the store selected by a DSN.
func Backend(dsn string) (string, error) {
	switch {
	case strings.HasPrefix(dsn, "mongodb://"), strings.HasPrefix(dsn, "mongodb+srv://"):
		return "mongodb", nil
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return "postgres", nil
	case strings.HasPrefix(dsn, "memory://"):
		return "memory", nil
	default:
		return "", fmt.Errorf("unsupported database DSN %q", redact(dsn))
	}
}

func openerFor(dsn string) (opener, error) {
	backend, err := Backend(dsn)
	if err != nil {
		return nil, err
	}
	switch backend {
	case "mongodb":
		return openMongoBackend, nil
	case "postgres":
		return openPostgresBackend, nil
	default:
		return openMemoryBackend, nil
	}
}

// Open connects to the store named by cfg.DatabaseDSN. Each attempt is
// bounded by cfg.StoreTimeout; failed attempts are retried with exponential
// backoff up to cfg.ConnectAttempts in total. When every attempt fails the
// last error is returned wrapped in common.ErrStoreUnavailable.
func Open(ctx context.Context, cfg *config.Config, logger logging.Logger) (RepositoryManager, error) {
	open, err := openerFor(cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	attempts := cfg.ConnectAttempts
	if attempts < 1 {
		attempts = 1
	}
	base := cfg.ConnectBackoff
	if base <= 0 {
		base = time.Millisecond
	}
	backoff := retry.WithMaxRetries(uint64(attempts-1), retry.NewExponential(base))

	var (
		m       RepositoryManager
		attempt int
	)
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++

		actx, cancel := withOptionalTimeout(ctx, cfg.StoreTimeout)
		defer cancel()

		var err error
		m, err = open(actx, cfg)
		if err != nil {
			logger.Warn(ctx, "store connection failed", "attempt", attempt, "of", attempts, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
	}

	logger.Info(ctx, "store connected", "dsn", redact(cfg.DatabaseDSN), "attempts", attempt)
	return m, nil
}

func withOptionalTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// redact hides the userinfo part of a DSN for logging.
func redact(dsn string) string {
	scheme, rest, ok := strings.Cut(dsn, "://")
	if !ok {
		return dsn
	}
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		rest = "***@" + rest[at+1:]
	}
	return scheme + "://" + rest
}
