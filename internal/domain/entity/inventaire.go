package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Types d'inventaire.
const (
	InventaireCOMPLET  = "COMPLET"
	InventairePARTIEL  = "PARTIEL"
	InventaireTOURNANT = "TOURNANT"
	InventaireANNUEL   = "ANNUEL"
)

// Statuts d'une session d'inventaire.
// PLANIFIE -> EN_COURS -> TERMINE -> VALIDE (terminal), ANNULE atteignable
// depuis tout état sauf VALIDE.
const (
	InventairePlanifie = "PLANIFIE"
	InventaireEnCours  = "EN_COURS"
	InventaireTermine  = "TERMINE"
	InventaireValide   = "VALIDE"
	InventaireAnnule   = "ANNULE"
)

// InventaireTypeValide vérifie qu'un type d'inventaire est connu.
func InventaireTypeValide(t string) bool {
	switch t {
	case InventaireCOMPLET, InventairePARTIEL, InventaireTOURNANT, InventaireANNUEL:
		return true
	}
	return false
}

// Inventaire une campagne de comptage physique bornée dans le temps, qui
// rapproche le stock système du stock réellement compté.
type Inventaire struct {
	ID             string
	TypeInventaire string
	Emplacement    string // périmètre: vide = tout le stock
	Statut         string
	DateDebut      time.Time
	DateFin        *time.Time
	Responsable    string
	Notes          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Lignes         []*LigneInventaire
}

// LigneInventaire un couple article/lot dans un inventaire.
// QuantiteTheorique est un instantané de QuantiteRestante pris à la création de
// la session, jamais modifié ensuite. QuantiteComptee reste nil tant que la
// ligne n'a pas été comptée: un écart n'existe pas avant comptage (ne jamais le
// lire comme zéro).
type LigneInventaire struct {
	ID                 string
	InventaireID       string
	ArticleID          string
	LotID              string
	QuantiteTheorique  decimal.Decimal
	QuantiteComptee    *decimal.Decimal
	ComptePar          string
	DateComptage       *time.Time
	Commentaire        string
	AjustementApplique bool
	AjustementMvtID    string // mouvement AJUSTEMENT posté à la validation
}

// Comptee vrai si la ligne a été comptée.
func (l *LigneInventaire) Comptee() bool { return l.QuantiteComptee != nil }

// Ecart variance signée comptée - théorique. Le booléen est faux tant que la
// ligne n'est pas comptée.
func (l *LigneInventaire) Ecart() (decimal.Decimal, bool) {
	if l.QuantiteComptee == nil {
		return decimal.Zero, false
	}
	return l.QuantiteComptee.Sub(l.QuantiteTheorique), true
}
