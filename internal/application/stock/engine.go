package stock

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/adiallo/labostock-api/internal/domain"
	"github.com/adiallo/labostock-api/internal/domain/entity"
	"github.com/adiallo/labostock-api/internal/domain/repository"
)

// Nombre maximal de tentatives quand la garde optimiste détecte un conflit.
const maxTentatives = 5

// MovementContext métadonnées portées par l'écriture de journal.
type MovementContext struct {
	Reference   string // document lié: sortie, inventaire, bon de réception
	Description string
	Acteur      string
}

// Engine moteur de réconciliation: applique un delta signé sur un lot et
// ajoute l'écriture de journal correspondante comme une seule unité.
// C'est le seul chemin de mutation de QuantiteRestante; les workflows de
// sortie et d'inventaire passent tous par ApplyMovement.
type Engine struct {
	tx TxRunner
}

// NewEngine construit le moteur.
func NewEngine(tx TxRunner) *Engine {
	return &Engine{tx: tx}
}

// ApplyMovement applique quantite (signée) sur le lot et journalise le
// mouvement. Algorithme:
//  1. lire QuantiteRestante courante (avant);
//  2. calculer apres = avant + quantite;
//  3. Adjust avec garde optimiste expected=avant — sur ErrConflict, rejouer
//     l'ensemble depuis 1 (borné à maxTentatives, backoff avec gigue), puis
//     ErrConcurrencyExhausted;
//  4. ajouter l'écriture de journal avant/apres.
//
// Les deux écritures sont atomiques: si l'ajout au journal échoue après la
// mutation du lot, la mutation est défaite par écriture compensatoire et
// l'erreur remonte. Un changement de quantité orphelin (sans écriture de
// journal) est pire qu'un non-événement.
func (e *Engine) ApplyMovement(ctx context.Context, lotID, typeMouvement string, quantite decimal.Decimal, mctx MovementContext) (*entity.Mouvement, error) {
	if !entity.MouvementTypeValide(typeMouvement) {
		return nil, fmt.Errorf("%w: type de mouvement %q", domain.ErrInvalidInput, typeMouvement)
	}

	var mouvement *entity.Mouvement
	for tentative := 0; tentative < maxTentatives; tentative++ {
		if tentative > 0 {
			if err := attendre(ctx, tentative); err != nil {
				return nil, err
			}
		}

		err := e.tx.Run(ctx, func(lots repository.LotRepository, mouvements repository.MouvementRepository) error {
			lot, err := lots.GetByID(lotID)
			if err != nil {
				return err
			}
			if lot == nil {
				return fmt.Errorf("%w: lot %s", domain.ErrNotFound, lotID)
			}

			avant := lot.QuantiteRestante
			apres := avant.Add(quantite)
			ajustement := typeMouvement == entity.MouvementAJUSTEMENT

			if _, err := lots.Adjust(lotID, quantite, &avant, ajustement); err != nil {
				return err
			}

			m := &entity.Mouvement{
				ID:            uuid.New().String(),
				ArticleID:     lot.ArticleID,
				LotID:         lot.ID,
				Type:          typeMouvement,
				Quantite:      quantite,
				QuantiteAvant: avant,
				QuantiteApres: apres,
				Reference:     mctx.Reference,
				Description:   mctx.Description,
				CreatedAt:     time.Now(),
				CreatedBy:     mctx.Acteur,
			}
			if err := mouvements.Append(m); err != nil {
				// Écriture compensatoire: le journal fait foi, une mutation de
				// lot sans écriture correspondante ne doit pas survivre.
				if _, cerr := lots.Adjust(lotID, quantite.Neg(), &apres, true); cerr != nil {
					return fmt.Errorf("append journal: %w (compensation échouée: %v)", err, cerr)
				}
				return fmt.Errorf("append journal: %w", err)
			}
			mouvement = m
			return nil
		})

		if errors.Is(err, domain.ErrConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return mouvement, nil
	}
	return nil, fmt.Errorf("%w: lot %s, %d tentatives", domain.ErrConcurrencyExhausted, lotID, maxTentatives)
}

// attendre backoff exponentiel avec gigue entre deux tentatives, interruptible
// par le contexte.
func attendre(ctx context.Context, tentative int) error {
	base := time.Duration(1<<uint(tentative-1)) * 2 * time.Millisecond
	d := base + time.Duration(rand.Int63n(int64(base)))
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
