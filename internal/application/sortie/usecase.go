package sortie

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/adiallo/labostock-api/internal/application/stock"
	"github.com/adiallo/labostock-api/internal/domain"
	"github.com/adiallo/labostock-api/internal/domain/entity"
	"github.com/adiallo/labostock-api/internal/domain/repository"
)

// CreateInput entrée pour la création d'une sortie.
type CreateInput struct {
	LotID      string
	Quantite   decimal.Decimal
	TypeSortie string
	Motif      string
	Acteur     string
}

// UseCase workflow de sortie de stock. Le décrément du lot a lieu à la
// création (la validation n'est qu'une approbation a posteriori); l'annulation
// est l'action compensatoire et une sortie validée est définitive.
type UseCase struct {
	sorties repository.SortieRepository
	lots    repository.LotRepository
	engine  *stock.Engine
}

// NewUseCase construit le workflow.
func NewUseCase(sorties repository.SortieRepository, lots repository.LotRepository, engine *stock.Engine) *UseCase {
	return &UseCase{sorties: sorties, lots: lots, engine: engine}
}

// Create valide la demande, décrémente immédiatement le lot (mouvement SORTIE
// de quantité négative) puis enregistre la sortie EN_ATTENTE. Si
// l'enregistrement échoue après le décrément, celui-ci est défait par une
// écriture compensatoire.
func (uc *UseCase) Create(ctx context.Context, in CreateInput) (*entity.Sortie, error) {
	if !in.Quantite.GreaterThan(decimal.Zero) {
		return nil, fmt.Errorf("%w: quantité non positive", domain.ErrInvalidInput)
	}
	if !entity.SortieTypeValide(in.TypeSortie) {
		return nil, fmt.Errorf("%w: type de sortie %q", domain.ErrInvalidInput, in.TypeSortie)
	}
	lot, err := uc.lots.GetByID(in.LotID)
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, fmt.Errorf("%w: lot %s", domain.ErrNotFound, in.LotID)
	}
	if in.Quantite.GreaterThan(lot.QuantiteRestante) {
		return nil, &domain.InsufficientStockError{
			LotID:      lot.ID,
			Disponible: lot.QuantiteRestante,
			Demandee:   in.Quantite,
		}
	}

	s := &entity.Sortie{
		ID:         uuid.New().String(),
		LotID:      lot.ID,
		ArticleID:  lot.ArticleID,
		TypeSortie: in.TypeSortie,
		Quantite:   in.Quantite,
		Motif:      in.Motif,
		Statut:     entity.SortieEnAttente,
		DemandePar: in.Acteur,
		CreatedAt:  time.Now(),
	}

	mvt, err := uc.engine.ApplyMovement(ctx, lot.ID, entity.MouvementSORTIE, in.Quantite.Neg(), stock.MovementContext{
		Reference:   s.ID,
		Description: fmt.Sprintf("sortie %s: %s", in.TypeSortie, in.Motif),
		Acteur:      in.Acteur,
	})
	if err != nil {
		return nil, err
	}

	if err := uc.sorties.Create(s); err != nil {
		// Le décrément est déjà appliqué: le défaire plutôt que laisser une
		// écriture de journal sans sortie correspondante.
		if _, cerr := uc.engine.ApplyMovement(ctx, lot.ID, entity.MouvementSORTIE, in.Quantite, stock.MovementContext{
			Reference:   s.ID,
			Description: "contre-passation: enregistrement de la sortie échoué",
			Acteur:      in.Acteur,
		}); cerr != nil {
			return nil, fmt.Errorf("enregistrement sortie: %w (contre-passation échouée: %v, mouvement %s)", err, cerr, mvt.ID)
		}
		return nil, err
	}
	return s, nil
}

// Validate approuve une sortie EN_ATTENTE. Aucun nouvel appel au moteur: le
// changement de quantité a déjà eu lieu à la création.
func (uc *UseCase) Validate(ctx context.Context, sortieID, acteur string) (*entity.Sortie, error) {
	s, err := uc.get(sortieID)
	if err != nil {
		return nil, err
	}
	if err := uc.reserver(s.ID, entity.SortieValidee); err != nil {
		return nil, err
	}
	now := time.Now()
	s.Statut = entity.SortieValidee
	s.Valide = true
	s.ValidePar = acteur
	s.DateValidation = &now
	if err := uc.sorties.Update(s); err != nil {
		return nil, err
	}
	return s, nil
}

// Cancel annule une sortie EN_ATTENTE par écriture inverse (+quantité, type
// SORTIE): le mouvement d'origine n'est jamais supprimé, la piste d'audit
// garde « décrémenté, puis contre-passé ». Refusée une fois la sortie validée.
// Le statut ANNULEE est réservé avant de poster la contre-passation: de deux
// annulations concurrentes, une seule franchit la garde et crédite le lot.
func (uc *UseCase) Cancel(ctx context.Context, sortieID, motif, acteur string) (*entity.Sortie, error) {
	s, err := uc.get(sortieID)
	if err != nil {
		return nil, err
	}
	if err := uc.reserver(s.ID, entity.SortieAnnulee); err != nil {
		return nil, err
	}

	if _, err := uc.engine.ApplyMovement(ctx, s.LotID, entity.MouvementSORTIE, s.Quantite, stock.MovementContext{
		Reference:   s.ID,
		Description: "annulation de sortie: " + motif,
		Acteur:      acteur,
	}); err != nil {
		// Le statut est réservé mais le crédit n'a pas eu lieu: rendre la
		// sortie à EN_ATTENTE pour qu'une nouvelle annulation puisse rejouer.
		if rerr := uc.sorties.UpdateStatut(s.ID, entity.SortieAnnulee, entity.SortieEnAttente); rerr != nil {
			return nil, fmt.Errorf("annulation sortie: %w (retour en EN_ATTENTE échoué: %v)", err, rerr)
		}
		return nil, err
	}

	s.Statut = entity.SortieAnnulee
	s.MotifAnnulation = motif
	if err := uc.sorties.Update(s); err != nil {
		return nil, err
	}
	return s, nil
}

// reserver tente la transition gardée EN_ATTENTE -> vers. Sur conflit, la
// sortie est relue pour rendre l'erreur de l'état réellement observé plutôt
// qu'un conflit brut.
func (uc *UseCase) reserver(id, vers string) error {
	err := uc.sorties.UpdateStatut(id, entity.SortieEnAttente, vers)
	if err == nil || !errors.Is(err, domain.ErrConflict) {
		return err
	}
	cur, gerr := uc.get(id)
	if gerr != nil {
		return gerr
	}
	if cur.Statut == entity.SortieValidee {
		return fmt.Errorf("%w: sortie %s", domain.ErrAlreadyValidated, id)
	}
	return &domain.TransitionError{Entite: "sortie", De: cur.Statut, Vers: vers}
}

// Get renvoie une sortie par identifiant.
func (uc *UseCase) Get(ctx context.Context, sortieID string) (*entity.Sortie, error) {
	return uc.get(sortieID)
}

// List liste les sorties selon le filtre.
func (uc *UseCase) List(ctx context.Context, f repository.SortieFilter) ([]*entity.Sortie, error) {
	return uc.sorties.List(f)
}

func (uc *UseCase) get(id string) (*entity.Sortie, error) {
	s, err := uc.sorties.GetByID(id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("%w: sortie %s", domain.ErrNotFound, id)
	}
	return s, nil
}
