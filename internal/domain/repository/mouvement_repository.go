package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/adiallo/labostock-api/internal/domain/entity"
)

// MouvementFilter critères de listing des mouvements d'un article.
type MouvementFilter struct {
	Type   string
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

// MouvementRepository journal de stock en écriture seule: on ajoute, jamais de
// mise à jour ni de suppression. Les listes par lot sont triées par séquence
// d'insertion croissante (Seq), pas par horodatage.
type MouvementRepository interface {
	Append(m *entity.Mouvement) error
	GetByID(id string) (*entity.Mouvement, error)
	ListByLot(lotID string) ([]*entity.Mouvement, error)
	ListByArticle(articleID string, f MouvementFilter) ([]*entity.Mouvement, error)
	// SumByLot somme signée de tous les mouvements d'un lot (audit de cohérence).
	SumByLot(lotID string) (decimal.Decimal, error)
	// SumQuarantaine solde en quarantaine d'un lot, dérivé du journal:
	// -(somme des QUARANTAINE_ENTREE + QUARANTAINE_SORTIE).
	SumQuarantaine(lotID string) (decimal.Decimal, error)
}
