package stock

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/adiallo/labostock-api/internal/domain"
	"github.com/adiallo/labostock-api/internal/domain/entity"
	"github.com/adiallo/labostock-api/internal/domain/repository"
)

// TraceLot vue de traçabilité d'un lot: le lot, son historique complet dans
// l'ordre du journal et le solde en quarantaine dérivé.
type TraceLot struct {
	Lot         *entity.Lot
	Mouvements  []*entity.Mouvement
	Quarantaine decimal.Decimal
}

// EcartLot une ligne du rapport de cohérence: un lot dont la quantité restante
// ne correspond plus à la somme signée de son journal.
type EcartLot struct {
	LotID        string
	Numero       string
	Restante     decimal.Decimal
	SommeJournal decimal.Decimal
	Ecart        decimal.Decimal
}

// AlerteStock un article dont le total restant passe sous ses seuils.
type AlerteStock struct {
	Article  *entity.Article
	Restant  decimal.Decimal
	Critique bool
}

// TracabiliteUseCase requêtes en lecture seule sur le journal et les lots.
// Aucune écriture: une interface peut interroger ces vues comme elle veut.
type TracabiliteUseCase struct {
	lots       repository.LotRepository
	mouvements repository.MouvementRepository
	articles   repository.ArticleRepository
}

// NewTracabiliteUseCase construit le cas d'usage.
func NewTracabiliteUseCase(lots repository.LotRepository, mouvements repository.MouvementRepository, articles repository.ArticleRepository) *TracabiliteUseCase {
	return &TracabiliteUseCase{lots: lots, mouvements: mouvements, articles: articles}
}

// MouvementsParLot historique d'un lot, du plus ancien au plus récent.
func (uc *TracabiliteUseCase) MouvementsParLot(ctx context.Context, lotID string) ([]*entity.Mouvement, error) {
	lot, err := uc.lots.GetByID(lotID)
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, fmt.Errorf("%w: lot %s", domain.ErrNotFound, lotID)
	}
	return uc.mouvements.ListByLot(lotID)
}

// MouvementsParArticle historique d'un article, tous lots confondus.
func (uc *TracabiliteUseCase) MouvementsParArticle(ctx context.Context, articleID string, f repository.MouvementFilter) ([]*entity.Mouvement, error) {
	article, err := uc.articles.GetByID(articleID)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, fmt.Errorf("%w: article %s", domain.ErrNotFound, articleID)
	}
	return uc.mouvements.ListByArticle(articleID, f)
}

// Trace reconstitue la vue complète d'un lot.
func (uc *TracabiliteUseCase) Trace(ctx context.Context, lotID string) (*TraceLot, error) {
	lot, err := uc.lots.GetByID(lotID)
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, fmt.Errorf("%w: lot %s", domain.ErrNotFound, lotID)
	}
	mouvements, err := uc.mouvements.ListByLot(lotID)
	if err != nil {
		return nil, err
	}
	quarantaine, err := uc.mouvements.SumQuarantaine(lotID)
	if err != nil {
		return nil, err
	}
	return &TraceLot{Lot: lot, Mouvements: mouvements, Quarantaine: quarantaine}, nil
}

// RapportCoherence détecte la dérive: lots dont QuantiteRestante diffère de la
// somme signée du journal (l'ENTREE de naissance portant la quantité initiale,
// la somme complète doit valoir exactement la quantité restante).
func (uc *TracabiliteUseCase) RapportCoherence(ctx context.Context) ([]EcartLot, error) {
	lots, err := uc.lots.List(repository.LotFilter{Epuises: true})
	if err != nil {
		return nil, err
	}
	var ecarts []EcartLot
	for _, lot := range lots {
		somme, err := uc.mouvements.SumByLot(lot.ID)
		if err != nil {
			return nil, err
		}
		if !somme.Equal(lot.QuantiteRestante) {
			ecarts = append(ecarts, EcartLot{
				LotID:        lot.ID,
				Numero:       lot.Numero,
				Restante:     lot.QuantiteRestante,
				SommeJournal: somme,
				Ecart:        lot.QuantiteRestante.Sub(somme),
			})
		}
	}
	return ecarts, nil
}

// Alertes articles dont le total restant est sous le seuil d'alerte; Critique
// est levé quand le seuil critique est lui aussi franchi.
func (uc *TracabiliteUseCase) Alertes(ctx context.Context) ([]AlerteStock, error) {
	totaux, err := uc.lots.TotalRestantParArticle()
	if err != nil {
		return nil, err
	}
	articles, err := uc.articles.List(0, 0)
	if err != nil {
		return nil, err
	}
	var alertes []AlerteStock
	for _, a := range articles {
		restant := totaux[a.ID]
		if restant.LessThanOrEqual(a.SeuilAlerte) {
			alertes = append(alertes, AlerteStock{
				Article:  a,
				Restant:  restant,
				Critique: restant.LessThanOrEqual(a.SeuilCritique),
			})
		}
	}
	return alertes, nil
}

// LotsPerimes lots périmés ou périmant avant l'horizon donné.
func (uc *TracabiliteUseCase) LotsPerimes(ctx context.Context, horizon time.Time) ([]*entity.Lot, error) {
	return uc.lots.List(repository.LotFilter{PerimesAvant: &horizon})
}
