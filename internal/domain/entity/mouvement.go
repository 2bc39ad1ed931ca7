package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Types de mouvement de stock.
const (
	MouvementENTREE            = "ENTREE"
	MouvementSORTIE            = "SORTIE"
	MouvementTRANSFERT         = "TRANSFERT"
	MouvementAJUSTEMENT        = "AJUSTEMENT"
	MouvementQuarantaineEntree = "QUARANTAINE_ENTREE"
	MouvementQuarantaineSortie = "QUARANTAINE_SORTIE"
)

// MouvementTypeValide vérifie qu'un type de mouvement est connu.
func MouvementTypeValide(t string) bool {
	switch t {
	case MouvementENTREE, MouvementSORTIE, MouvementTRANSFERT,
		MouvementAJUSTEMENT, MouvementQuarantaineEntree, MouvementQuarantaineSortie:
		return true
	}
	return false
}

// Mouvement une écriture immuable du journal de stock. Jamais modifiée ni
// supprimée après insertion: c'est la piste d'audit et le seul moyen de
// reconstruire la traçabilité d'un lot.
//
// Invariant: QuantiteApres = QuantiteAvant + Quantite (quantité signée).
// Seq est un numéro de séquence monotone par insertion; c'est lui, et non
// l'horodatage, qui ordonne les écritures (la dérive d'horloge ne doit pas
// réordonner des écritures causalement liées).
type Mouvement struct {
	ID            string
	Seq           int64
	ArticleID     string
	LotID         string // vide pour les mouvements sans lot
	Type          string
	Quantite      decimal.Decimal // signée: négative pour une sortie
	QuantiteAvant decimal.Decimal
	QuantiteApres decimal.Decimal
	Reference     string // document lié: sortie, inventaire, bon de réception...
	Description   string
	CreatedAt     time.Time
	CreatedBy     string
}
