package stock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/adiallo/labostock-api/internal/domain"
	"github.com/adiallo/labostock-api/internal/domain/entity"
	"github.com/adiallo/labostock-api/internal/domain/repository"
)

// ReceptionInput entrée pour la réception d'un lot.
type ReceptionInput struct {
	Numero         string
	ArticleID      string
	Quantite       decimal.Decimal
	Unite          string
	Fournisseur    string
	Emplacement    string
	DatePeremption *time.Time
	Acteur         string
}

// LotUseCase réception de lots et changement d'emplacement. La réception est le
// seul point de création d'un lot: le lot naît vide et son écriture ENTREE de
// naissance porte la quantité initiale, si bien que la somme du journal d'un
// lot vaut toujours sa quantité restante.
type LotUseCase struct {
	lots     repository.LotRepository
	articles repository.ArticleRepository
	engine   *Engine
}

// NewLotUseCase construit le cas d'usage.
func NewLotUseCase(lots repository.LotRepository, articles repository.ArticleRepository, engine *Engine) *LotUseCase {
	return &LotUseCase{lots: lots, articles: articles, engine: engine}
}

// Receptionner crée le lot puis poste son ENTREE de naissance via le moteur.
func (uc *LotUseCase) Receptionner(ctx context.Context, in ReceptionInput) (*entity.Lot, error) {
	if !in.Quantite.GreaterThan(decimal.Zero) {
		return nil, fmt.Errorf("%w: quantité réceptionnée non positive", domain.ErrInvalidInput)
	}
	article, err := uc.articles.GetByID(in.ArticleID)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, fmt.Errorf("%w: article %s", domain.ErrNotFound, in.ArticleID)
	}

	unite := in.Unite
	if unite == "" {
		unite = article.Unite
	}
	now := time.Now()
	lot := &entity.Lot{
		ID:               uuid.New().String(),
		Numero:           in.Numero,
		ArticleID:        article.ID,
		QuantiteInitiale: in.Quantite,
		QuantiteRestante: decimal.Zero,
		Unite:            unite,
		Fournisseur:      in.Fournisseur,
		Emplacement:      in.Emplacement,
		DatePeremption:   in.DatePeremption,
		DateReception:    now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := uc.lots.Create(lot); err != nil {
		return nil, err
	}

	if _, err := uc.engine.ApplyMovement(ctx, lot.ID, entity.MouvementENTREE, in.Quantite, MovementContext{
		Reference:   lot.Numero,
		Description: "réception fournisseur " + in.Fournisseur,
		Acteur:      in.Acteur,
	}); err != nil {
		return nil, err
	}

	return uc.lots.GetByID(lot.ID)
}

// Get renvoie un lot par identifiant.
func (uc *LotUseCase) Get(ctx context.Context, id string) (*entity.Lot, error) {
	lot, err := uc.lots.GetByID(id)
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, fmt.Errorf("%w: lot %s", domain.ErrNotFound, id)
	}
	return lot, nil
}

// List liste les lots selon le filtre.
func (uc *LotUseCase) List(ctx context.Context, f repository.LotFilter) ([]*entity.Lot, error) {
	return uc.lots.List(f)
}

// Transferer change l'emplacement d'un lot et journalise un TRANSFERT de
// quantité nulle (avant = apres): le déplacement est tracé sans toucher au
// stock.
func (uc *LotUseCase) Transferer(ctx context.Context, lotID, emplacement, acteur string) (*entity.Lot, error) {
	if emplacement == "" {
		return nil, fmt.Errorf("%w: emplacement vide", domain.ErrInvalidInput)
	}
	lot, err := uc.Get(ctx, lotID)
	if err != nil {
		return nil, err
	}
	if _, err := uc.engine.ApplyMovement(ctx, lot.ID, entity.MouvementTRANSFERT, decimal.Zero, MovementContext{
		Reference:   lot.Numero,
		Description: fmt.Sprintf("transfert %s -> %s", lot.Emplacement, emplacement),
		Acteur:      acteur,
	}); err != nil {
		return nil, err
	}
	if err := uc.lots.UpdateEmplacement(lot.ID, emplacement); err != nil {
		return nil, err
	}
	return uc.lots.GetByID(lot.ID)
}
