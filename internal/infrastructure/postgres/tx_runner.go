package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/adiallo/labostock-api/internal/application/stock"
	"github.com/adiallo/labostock-api/internal/domain/repository"
)

var _ stock.TxRunner = (*TxRunner)(nil)

// TxRunner exécute les callbacks du moteur dans une transaction PostgreSQL:
// mutation du lot et écriture de journal sont commitées ensemble.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construit le runner sur le pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run ouvre une transaction, exécute fn avec des dépôts liés à la tx et fait
// Commit ou Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	lots repository.LotRepository,
	mouvements repository.MouvementRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewLotRepository(tx), NewMouvementRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
