package stock

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/adiallo/labostock-api/internal/domain"
	"github.com/adiallo/labostock-api/internal/domain/entity"
	"github.com/adiallo/labostock-api/internal/domain/repository"
)

// QuarantaineUseCase mise en quarantaine d'une quantité d'un lot en attente de
// contrôle qualité. La quantité en quarantaine n'est pas stockée sur le lot:
// elle se dérive du journal (solde des QUARANTAINE_ENTREE/SORTIE), ce qui
// garde QuantiteRestante comme unique champ mutable.
type QuarantaineUseCase struct {
	lots       repository.LotRepository
	mouvements repository.MouvementRepository
	engine     *Engine
}

// NewQuarantaineUseCase construit le cas d'usage.
func NewQuarantaineUseCase(lots repository.LotRepository, mouvements repository.MouvementRepository, engine *Engine) *QuarantaineUseCase {
	return &QuarantaineUseCase{lots: lots, mouvements: mouvements, engine: engine}
}

// Mettre retire quantite du stock disponible vers la quarantaine
// (QUARANTAINE_ENTREE, delta négatif).
func (uc *QuarantaineUseCase) Mettre(ctx context.Context, lotID string, quantite decimal.Decimal, motif, acteur string) (*entity.Mouvement, error) {
	if !quantite.GreaterThan(decimal.Zero) {
		return nil, fmt.Errorf("%w: quantité non positive", domain.ErrInvalidInput)
	}
	return uc.engine.ApplyMovement(ctx, lotID, entity.MouvementQuarantaineEntree, quantite.Neg(), MovementContext{
		Description: "mise en quarantaine: " + motif,
		Acteur:      acteur,
	})
}

// Lever rend quantite de la quarantaine au stock disponible
// (QUARANTAINE_SORTIE, delta positif), bornée par le solde en quarantaine.
func (uc *QuarantaineUseCase) Lever(ctx context.Context, lotID string, quantite decimal.Decimal, motif, acteur string) (*entity.Mouvement, error) {
	if !quantite.GreaterThan(decimal.Zero) {
		return nil, fmt.Errorf("%w: quantité non positive", domain.ErrInvalidInput)
	}
	solde, err := uc.mouvements.SumQuarantaine(lotID)
	if err != nil {
		return nil, err
	}
	if quantite.GreaterThan(solde) {
		return nil, &domain.InsufficientStockError{LotID: lotID, Disponible: solde, Demandee: quantite}
	}
	return uc.engine.ApplyMovement(ctx, lotID, entity.MouvementQuarantaineSortie, quantite, MovementContext{
		Description: "levée de quarantaine: " + motif,
		Acteur:      acteur,
	})
}

// Solde renvoie la quantité actuellement en quarantaine pour un lot.
func (uc *QuarantaineUseCase) Solde(ctx context.Context, lotID string) (decimal.Decimal, error) {
	lot, err := uc.lots.GetByID(lotID)
	if err != nil {
		return decimal.Zero, err
	}
	if lot == nil {
		return decimal.Zero, fmt.Errorf("%w: lot %s", domain.ErrNotFound, lotID)
	}
	return uc.mouvements.SumQuarantaine(lotID)
}
