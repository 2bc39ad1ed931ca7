package stock

import (
	"context"

	"github.com/adiallo/labostock-api/internal/domain/repository"
)

// TxRunner exécute une fonction dans une unité atomique de persistance, en lui
// passant des dépôts liés à cette unité. Sous PostgreSQL c'est une transaction
// (Commit/Rollback); sous le store mémoire la fonction travaille directement
// sur les dépôts et l'écriture compensatoire du moteur sert de garde-fou.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		lots repository.LotRepository,
		mouvements repository.MouvementRepository,
	) error) error
}
