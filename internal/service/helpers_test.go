package service

import (
	"context"
	"io"

	"ticketpay/pkg/logger"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// fakeTx satisfies pgx.Tx for service tests. Repositories are mocked, so
// only Commit/Rollback are ever called.
type fakeTx struct {
	pgx.Tx
	commits   int
	rollbacks int
}

func (t *fakeTx) Commit(ctx context.Context) error {
	t.commits++
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	t.rollbacks++
	return nil
}

func testLogger() zerolog.Logger {
	return logger.NewWithWriter("debug", io.Discard)
}
