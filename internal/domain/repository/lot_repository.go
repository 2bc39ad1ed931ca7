package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/adiallo/labostock-api/internal/domain/entity"
)

// LotFilter critères de listing des lots.
type LotFilter struct {
	ArticleID    string
	Emplacement  string
	PerimesAvant *time.Time // lots dont la péremption est antérieure à cette date
	Epuises      bool       // inclure les lots à quantité nulle
	Limit        int
	Offset       int
}

// LotRepository source de vérité de la quantité restante par lot.
//
// Adjust est l'unique mutateur de QuantiteRestante et ne doit être appelé que
// par le moteur de réconciliation:
//   - expected non-nil = garde optimiste; si la valeur stockée diffère,
//     ErrConflict (l'appelant relit et rejoue).
//   - un delta qui rendrait la quantité négative échoue avec
//     InsufficientStockError (toujours: un comptage physique n'est jamais
//     négatif).
//   - le plafond QuantiteInitiale n'est pas appliqué quand ajustement est vrai,
//     un recomptage physique faisant foi.
type LotRepository interface {
	Create(lot *entity.Lot) error
	GetByID(id string) (*entity.Lot, error)
	List(f LotFilter) ([]*entity.Lot, error)
	Adjust(id string, delta decimal.Decimal, expected *decimal.Decimal, ajustement bool) (*entity.Lot, error)
	UpdateEmplacement(id, emplacement string) error
	TotalRestantParArticle() (map[string]decimal.Decimal, error)
}
