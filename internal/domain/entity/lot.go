package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Lot un lot réceptionné d'un article: l'unité atomique de mutation du stock.
// QuantiteInitiale est figée à la réception; QuantiteRestante est le seul champ
// mutable et ne bouge que via le moteur de réconciliation. Un lot épuisé n'est
// jamais supprimé (traçabilité).
type Lot struct {
	ID               string
	Numero           string // code lisible (ex: LOT-2026-0042)
	ArticleID        string
	QuantiteInitiale decimal.Decimal
	QuantiteRestante decimal.Decimal
	Unite            string
	Fournisseur      string
	Emplacement      string
	DatePeremption   *time.Time
	DateReception    time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Epuise vrai si le lot n'a plus de quantité disponible.
func (l *Lot) Epuise() bool {
	return l.QuantiteRestante.LessThanOrEqual(decimal.Zero)
}

// Perime vrai si la date de péremption est passée à l'instant ref.
func (l *Lot) Perime(ref time.Time) bool {
	return l.DatePeremption != nil && l.DatePeremption.Before(ref)
}
