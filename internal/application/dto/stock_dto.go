package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/adiallo/labostock-api/internal/application/stock"
	"github.com/adiallo/labostock-api/internal/domain/entity"
)

// ReceptionRequest réception d'un nouveau lot.
type ReceptionRequest struct {
	Numero         string          `json:"numero"`
	ArticleID      string          `json:"article_id"`
	Quantite       decimal.Decimal `json:"quantite"`
	Unite          string          `json:"unite"`
	Fournisseur    string          `json:"fournisseur"`
	Emplacement    string          `json:"emplacement"`
	DatePeremption *time.Time      `json:"date_peremption"`
}

// TransfertRequest changement d'emplacement d'un lot.
type TransfertRequest struct {
	Emplacement string `json:"emplacement"`
}

// QuarantaineRequest mise en/levée de quarantaine d'une quantité d'un lot.
type QuarantaineRequest struct {
	Quantite decimal.Decimal `json:"quantite"`
	Motif    string          `json:"motif"`
}

// LotResponse représentation API d'un lot.
type LotResponse struct {
	ID               string          `json:"id"`
	Numero           string          `json:"numero"`
	ArticleID        string          `json:"article_id"`
	QuantiteInitiale decimal.Decimal `json:"quantite_initiale"`
	QuantiteRestante decimal.Decimal `json:"quantite_restante"`
	Unite            string          `json:"unite"`
	Fournisseur      string          `json:"fournisseur"`
	Emplacement      string          `json:"emplacement"`
	DatePeremption   *time.Time      `json:"date_peremption,omitempty"`
	DateReception    time.Time       `json:"date_reception"`
}

// FromLot convertit l'entité en réponse API.
func FromLot(l *entity.Lot) LotResponse {
	return LotResponse{
		ID:               l.ID,
		Numero:           l.Numero,
		ArticleID:        l.ArticleID,
		QuantiteInitiale: l.QuantiteInitiale,
		QuantiteRestante: l.QuantiteRestante,
		Unite:            l.Unite,
		Fournisseur:      l.Fournisseur,
		Emplacement:      l.Emplacement,
		DatePeremption:   l.DatePeremption,
		DateReception:    l.DateReception,
	}
}

// MouvementResponse une écriture du journal de stock.
type MouvementResponse struct {
	ID            string          `json:"id"`
	Seq           int64           `json:"seq"`
	ArticleID     string          `json:"article_id"`
	LotID         string          `json:"lot_id,omitempty"`
	Type          string          `json:"type"`
	Quantite      decimal.Decimal `json:"quantite"`
	QuantiteAvant decimal.Decimal `json:"quantite_avant"`
	QuantiteApres decimal.Decimal `json:"quantite_apres"`
	Reference     string          `json:"reference,omitempty"`
	Description   string          `json:"description,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	CreatedBy     string          `json:"created_by,omitempty"`
}

// FromMouvement convertit l'entité en réponse API.
func FromMouvement(m *entity.Mouvement) MouvementResponse {
	return MouvementResponse{
		ID:            m.ID,
		Seq:           m.Seq,
		ArticleID:     m.ArticleID,
		LotID:         m.LotID,
		Type:          m.Type,
		Quantite:      m.Quantite,
		QuantiteAvant: m.QuantiteAvant,
		QuantiteApres: m.QuantiteApres,
		Reference:     m.Reference,
		Description:   m.Description,
		CreatedAt:     m.CreatedAt,
		CreatedBy:     m.CreatedBy,
	}
}

// FromMouvements convertit une liste d'écritures.
func FromMouvements(ms []*entity.Mouvement) []MouvementResponse {
	out := make([]MouvementResponse, len(ms))
	for i, m := range ms {
		out[i] = FromMouvement(m)
	}
	return out
}

// TraceResponse vue de traçabilité complète d'un lot.
type TraceResponse struct {
	Lot         LotResponse         `json:"lot"`
	Mouvements  []MouvementResponse `json:"mouvements"`
	Quarantaine decimal.Decimal     `json:"quantite_quarantaine"`
}

// FromTrace convertit la vue de traçabilité.
func FromTrace(t *stock.TraceLot) TraceResponse {
	return TraceResponse{
		Lot:         FromLot(t.Lot),
		Mouvements:  FromMouvements(t.Mouvements),
		Quarantaine: t.Quarantaine,
	}
}

// EcartLotResponse une ligne du rapport de cohérence.
type EcartLotResponse struct {
	LotID        string          `json:"lot_id"`
	Numero       string          `json:"numero"`
	Restante     decimal.Decimal `json:"quantite_restante"`
	SommeJournal decimal.Decimal `json:"somme_journal"`
	Ecart        decimal.Decimal `json:"ecart"`
}

// AlerteStockResponse un article sous ses seuils.
type AlerteStockResponse struct {
	ArticleID   string          `json:"article_id"`
	Code        string          `json:"code"`
	Designation string          `json:"designation"`
	Restant     decimal.Decimal `json:"restant"`
	Critique    bool            `json:"critique"`
}
