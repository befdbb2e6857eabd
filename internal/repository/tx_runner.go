package repository

import (
	"context"

	"github.com/irihojaphet/kozi-chatbot-admin/internal/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TxRunner provides transactional repositories using a pgx pool.
type TxRunner struct {
	pool *pgxpool.Pool
}

func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// WithTx runs fn in one transaction, rolling back when fn fails.
func (r *TxRunner) WithTx(ctx context.Context, fn func(repos service.TxRepositories) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}

	if err := fn(&txRepos{tx: tx}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	return tx.Commit(ctx)
}

type txRepos struct {
	tx pgx.Tx
}

func (r *txRepos) Chat() service.ChatRepositoryInterface {
	return NewChatRepositoryWithTx(r.tx)
}
