package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/adiallo/labostock-api/internal/application/inventaire"
	"github.com/adiallo/labostock-api/internal/domain/entity"
)

// CreateInventaireRequest planification d'une session d'inventaire.
type CreateInventaireRequest struct {
	TypeInventaire string     `json:"type_inventaire"`
	Emplacement    string     `json:"emplacement"`
	DateDebut      *time.Time `json:"date_debut"`
	Notes          string     `json:"notes"`
}

// UpdateNotesRequest remplacement des notes libres d'une session.
type UpdateNotesRequest struct {
	Notes string `json:"notes"`
}

// CompterLigneRequest saisie d'un comptage.
type CompterLigneRequest struct {
	Quantite    decimal.Decimal `json:"quantite"`
	Commentaire string          `json:"commentaire"`
}

// LigneInventaireResponse une ligne d'inventaire. Ecart est absent tant que la
// ligne n'est pas comptée (jamais sérialisé comme zéro).
type LigneInventaireResponse struct {
	ID                 string           `json:"id"`
	ArticleID          string           `json:"article_id"`
	LotID              string           `json:"lot_id"`
	QuantiteTheorique  decimal.Decimal  `json:"quantite_theorique"`
	QuantiteComptee    *decimal.Decimal `json:"quantite_comptee,omitempty"`
	Ecart              *decimal.Decimal `json:"ecart,omitempty"`
	ComptePar          string           `json:"compte_par,omitempty"`
	DateComptage       *time.Time       `json:"date_comptage,omitempty"`
	Commentaire        string           `json:"commentaire,omitempty"`
	AjustementApplique bool             `json:"ajustement_applique"`
}

// FromLigne convertit l'entité en réponse API.
func FromLigne(l *entity.LigneInventaire) LigneInventaireResponse {
	out := LigneInventaireResponse{
		ID:                 l.ID,
		ArticleID:          l.ArticleID,
		LotID:              l.LotID,
		QuantiteTheorique:  l.QuantiteTheorique,
		QuantiteComptee:    l.QuantiteComptee,
		ComptePar:          l.ComptePar,
		DateComptage:       l.DateComptage,
		Commentaire:        l.Commentaire,
		AjustementApplique: l.AjustementApplique,
	}
	if ecart, comptee := l.Ecart(); comptee {
		out.Ecart = &ecart
	}
	return out
}

// InventaireResponse représentation API d'une session.
type InventaireResponse struct {
	ID             string                    `json:"id"`
	TypeInventaire string                    `json:"type_inventaire"`
	Emplacement    string                    `json:"emplacement,omitempty"`
	Statut         string                    `json:"statut"`
	DateDebut      time.Time                 `json:"date_debut"`
	DateFin        *time.Time                `json:"date_fin,omitempty"`
	Responsable    string                    `json:"responsable"`
	Notes          string                    `json:"notes,omitempty"`
	Lignes         []LigneInventaireResponse `json:"lignes,omitempty"`
}

// FromInventaire convertit l'entité en réponse API.
func FromInventaire(inv *entity.Inventaire) InventaireResponse {
	out := InventaireResponse{
		ID:             inv.ID,
		TypeInventaire: inv.TypeInventaire,
		Emplacement:    inv.Emplacement,
		Statut:         inv.Statut,
		DateDebut:      inv.DateDebut,
		DateFin:        inv.DateFin,
		Responsable:    inv.Responsable,
		Notes:          inv.Notes,
	}
	for _, l := range inv.Lignes {
		out.Lignes = append(out.Lignes, FromLigne(l))
	}
	return out
}

// FromInventaires convertit une liste de sessions.
func FromInventaires(invs []*entity.Inventaire) []InventaireResponse {
	out := make([]InventaireResponse, len(invs))
	for i, inv := range invs {
		out[i] = FromInventaire(inv)
	}
	return out
}

// ComptageResponse résultat d'un comptage, avec signalement d'écrasement.
type ComptageResponse struct {
	Ligne      LigneInventaireResponse `json:"ligne"`
	Ecrasement bool                    `json:"ecrasement"`
	Precedente *decimal.Decimal        `json:"quantite_precedente,omitempty"`
}

// FromComptage convertit le résultat de comptage.
func FromComptage(r *inventaire.ComptageResult) ComptageResponse {
	return ComptageResponse{
		Ligne:      FromLigne(r.Ligne),
		Ecrasement: r.Ecrasement,
		Precedente: r.Precedente,
	}
}

// ResumeResponse avancement dérivé d'une session.
type ResumeResponse struct {
	InventaireID   string          `json:"inventaire_id"`
	Statut         string          `json:"statut"`
	TotalLignes    int             `json:"total_lignes"`
	LignesComptees int             `json:"lignes_comptees"`
	EcartTotal     decimal.Decimal `json:"ecart_total"`
	LignesOuvertes []string        `json:"lignes_ouvertes,omitempty"`
	LignesAjustees int             `json:"lignes_ajustees"`
}

// FromResume convertit le résumé.
func FromResume(r *inventaire.Resume) ResumeResponse {
	return ResumeResponse{
		InventaireID:   r.InventaireID,
		Statut:         r.Statut,
		TotalLignes:    r.TotalLignes,
		LignesComptees: r.LignesComptees,
		EcartTotal:     r.EcartTotal,
		LignesOuvertes: r.LignesOuvertes,
		LignesAjustees: r.LignesAjustees,
	}
}
