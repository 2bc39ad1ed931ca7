package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/adiallo/labostock-api/internal/domain/entity"
)

// CreateSortieRequest création d'une sortie de stock.
type CreateSortieRequest struct {
	LotID      string          `json:"lot_id"`
	Quantite   decimal.Decimal `json:"quantite"`
	TypeSortie string          `json:"type_sortie"`
	Motif      string          `json:"motif"`
}

// CancelSortieRequest annulation d'une sortie en attente.
type CancelSortieRequest struct {
	Motif string `json:"motif"`
}

// SortieResponse représentation API d'une sortie.
type SortieResponse struct {
	ID              string          `json:"id"`
	LotID           string          `json:"lot_id"`
	ArticleID       string          `json:"article_id"`
	TypeSortie      string          `json:"type_sortie"`
	Quantite        decimal.Decimal `json:"quantite"`
	Motif           string          `json:"motif"`
	Statut          string          `json:"statut"`
	Valide          bool            `json:"valide"`
	DemandePar      string          `json:"demande_par"`
	ValidePar       string          `json:"valide_par,omitempty"`
	DateValidation  *time.Time      `json:"date_validation,omitempty"`
	MotifAnnulation string          `json:"motif_annulation,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// FromSortie convertit l'entité en réponse API.
func FromSortie(s *entity.Sortie) SortieResponse {
	return SortieResponse{
		ID:              s.ID,
		LotID:           s.LotID,
		ArticleID:       s.ArticleID,
		TypeSortie:      s.TypeSortie,
		Quantite:        s.Quantite,
		Motif:           s.Motif,
		Statut:          s.Statut,
		Valide:          s.Valide,
		DemandePar:      s.DemandePar,
		ValidePar:       s.ValidePar,
		DateValidation:  s.DateValidation,
		MotifAnnulation: s.MotifAnnulation,
		CreatedAt:       s.CreatedAt,
	}
}

// FromSorties convertit une liste de sorties.
func FromSorties(ss []*entity.Sortie) []SortieResponse {
	out := make([]SortieResponse, len(ss))
	for i, s := range ss {
		out[i] = FromSortie(s)
	}
	return out
}
