package memory

import (
	"context"

	"github.com/adiallo/labostock-api/internal/application/stock"
	"github.com/adiallo/labostock-api/internal/domain/repository"
)

var _ stock.TxRunner = (*TxRunner)(nil)

// TxRunner version mémoire du runner transactionnel: pas de transaction réelle,
// la fonction travaille directement sur les dépôts vivants. L'atomicité
// lot+journal repose alors sur l'écriture compensatoire du moteur.
type TxRunner struct {
	store *Store
}

// NewTxRunner construit le runner sur le store.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

// Run exécute fn avec les dépôts du store.
func (r *TxRunner) Run(ctx context.Context, fn func(
	lots repository.LotRepository,
	mouvements repository.MouvementRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(r.store.Lots(), r.store.Mouvements())
}
