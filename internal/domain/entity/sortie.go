package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Motifs de sortie de stock.
const (
	SortieCONSOMMATION      = "CONSOMMATION"
	SortieANALYSE           = "ANALYSE"
	SortiePERTE             = "PERTE"
	SortiePEREMPTION        = "PEREMPTION"
	SortieRetourFournisseur = "RETOUR_FOURNISSEUR"
	SortieDESTRUCTION       = "DESTRUCTION"
	SortieAUTRE             = "AUTRE"
)

// Statuts d'une sortie.
const (
	SortieEnAttente = "EN_ATTENTE"
	SortieValidee   = "VALIDEE"
	SortieAnnulee   = "ANNULEE"
)

// SortieTypeValide vérifie qu'un motif de sortie est connu.
func SortieTypeValide(t string) bool {
	switch t {
	case SortieCONSOMMATION, SortieANALYSE, SortiePERTE, SortiePEREMPTION,
		SortieRetourFournisseur, SortieDESTRUCTION, SortieAUTRE:
		return true
	}
	return false
}

// Sortie une demande de retrait de quantité sur un lot. Le décrément du lot a
// lieu à la création; la validation est une approbation a posteriori et
// l'annulation une écriture compensatoire. Une sortie validée est définitive.
type Sortie struct {
	ID              string
	LotID           string
	ArticleID       string
	TypeSortie      string
	Quantite        decimal.Decimal
	Motif           string
	Statut          string // EN_ATTENTE, VALIDEE, ANNULEE
	Valide          bool
	DemandePar      string
	ValidePar       string
	DateValidation  *time.Time
	MotifAnnulation string
	CreatedAt       time.Time
}
