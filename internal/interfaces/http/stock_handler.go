package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/adiallo/labostock-api/internal/application/dto"
	"github.com/adiallo/labostock-api/internal/application/stock"
	"github.com/adiallo/labostock-api/internal/domain/repository"
)

// StockHandler vues transverses en lecture seule: mouvements par article,
// alertes de seuil et rapport de cohérence.
type StockHandler struct {
	trace *stock.TracabiliteUseCase
}

// NewStockHandler construit le handler.
func NewStockHandler(trace *stock.TracabiliteUseCase) *StockHandler {
	return &StockHandler{trace: trace}
}

// MouvementsParArticle GET /api/articles/:id/mouvements
func (h *StockHandler) MouvementsParArticle(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err == nil {
		page.DefaultPage()
	}
	f := repository.MouvementFilter{
		Type:   c.Query("type"),
		Limit:  page.Limit,
		Offset: page.Offset,
	}
	if v := c.Query("from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			f.From = &t
		}
	}
	if v := c.Query("to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			f.To = &t
		}
	}
	mouvements, err := h.trace.MouvementsParArticle(c.Context(), c.Params("id"), f)
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(mouvements), "mouvements": dto.FromMouvements(mouvements)})
}

// Alertes GET /api/stock/alertes — articles sous leurs seuils.
func (h *StockHandler) Alertes(c *fiber.Ctx) error {
	alertes, err := h.trace.Alertes(c.Context())
	if err != nil {
		return renderError(c, err)
	}
	out := make([]dto.AlerteStockResponse, len(alertes))
	for i, a := range alertes {
		out[i] = dto.AlerteStockResponse{
			ArticleID:   a.Article.ID,
			Code:        a.Article.Code,
			Designation: a.Article.Designation,
			Restant:     a.Restant,
			Critique:    a.Critique,
		}
	}
	return c.JSON(fiber.Map{"total": len(out), "alertes": out})
}

// Coherence GET /api/stock/coherence — lots en dérive journal/quantité.
func (h *StockHandler) Coherence(c *fiber.Ctx) error {
	ecarts, err := h.trace.RapportCoherence(c.Context())
	if err != nil {
		return renderError(c, err)
	}
	out := make([]dto.EcartLotResponse, len(ecarts))
	for i, e := range ecarts {
		out[i] = dto.EcartLotResponse{
			LotID:        e.LotID,
			Numero:       e.Numero,
			Restante:     e.Restante,
			SommeJournal: e.SommeJournal,
			Ecart:        e.Ecart,
		}
	}
	return c.JSON(fiber.Map{"total": len(out), "ecarts": out})
}
