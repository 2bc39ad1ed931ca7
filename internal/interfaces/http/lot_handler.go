package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/adiallo/labostock-api/internal/application/dto"
	"github.com/adiallo/labostock-api/internal/application/stock"
	"github.com/adiallo/labostock-api/internal/domain/repository"
)

// LotHandler requêtes HTTP des lots: réception, consultation, transfert,
// quarantaine et traçabilité.
type LotHandler struct {
	lots        *stock.LotUseCase
	quarantaine *stock.QuarantaineUseCase
	trace       *stock.TracabiliteUseCase
}

// NewLotHandler construit le handler.
func NewLotHandler(lots *stock.LotUseCase, quarantaine *stock.QuarantaineUseCase, trace *stock.TracabiliteUseCase) *LotHandler {
	return &LotHandler{lots: lots, quarantaine: quarantaine, trace: trace}
}

// Receptionner POST /api/lots — réceptionne un lot et poste son ENTREE.
func (h *LotHandler) Receptionner(c *fiber.Ctx) error {
	var in dto.ReceptionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corps invalide"})
	}
	lot, err := h.lots.Receptionner(c.Context(), stock.ReceptionInput{
		Numero:         in.Numero,
		ArticleID:      in.ArticleID,
		Quantite:       in.Quantite,
		Unite:          in.Unite,
		Fournisseur:    in.Fournisseur,
		Emplacement:    in.Emplacement,
		DatePeremption: in.DatePeremption,
		Acteur:         GetUserID(c),
	})
	if err != nil {
		return renderError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromLot(lot))
}

// List GET /api/lots
func (h *LotHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err == nil {
		page.DefaultPage()
	}
	lots, err := h.lots.List(c.Context(), repository.LotFilter{
		ArticleID:   c.Query("article_id"),
		Emplacement: c.Query("emplacement"),
		Epuises:     c.QueryBool("epuises", false),
		Limit:       page.Limit,
		Offset:      page.Offset,
	})
	if err != nil {
		return renderError(c, err)
	}
	out := make([]dto.LotResponse, len(lots))
	for i, l := range lots {
		out[i] = dto.FromLot(l)
	}
	return c.JSON(fiber.Map{"total": len(out), "lots": out})
}

// GetByID GET /api/lots/:id
func (h *LotHandler) GetByID(c *fiber.Ctx) error {
	lot, err := h.lots.Get(c.Context(), c.Params("id"))
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(dto.FromLot(lot))
}

// Mouvements GET /api/lots/:id/mouvements — historique ordonné du lot.
func (h *LotHandler) Mouvements(c *fiber.Ctx) error {
	mouvements, err := h.trace.MouvementsParLot(c.Context(), c.Params("id"))
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(mouvements), "mouvements": dto.FromMouvements(mouvements)})
}

// Trace GET /api/lots/:id/trace — lot, historique et solde quarantaine.
func (h *LotHandler) Trace(c *fiber.Ctx) error {
	t, err := h.trace.Trace(c.Context(), c.Params("id"))
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(dto.FromTrace(t))
}

// Transferer POST /api/lots/:id/transfert
func (h *LotHandler) Transferer(c *fiber.Ctx) error {
	var in dto.TransfertRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corps invalide"})
	}
	lot, err := h.lots.Transferer(c.Context(), c.Params("id"), in.Emplacement, GetUserID(c))
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(dto.FromLot(lot))
}

// MettreQuarantaine POST /api/lots/:id/quarantaine
func (h *LotHandler) MettreQuarantaine(c *fiber.Ctx) error {
	var in dto.QuarantaineRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corps invalide"})
	}
	mvt, err := h.quarantaine.Mettre(c.Context(), c.Params("id"), in.Quantite, in.Motif, GetUserID(c))
	if err != nil {
		return renderError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromMouvement(mvt))
}

// LeverQuarantaine DELETE /api/lots/:id/quarantaine
func (h *LotHandler) LeverQuarantaine(c *fiber.Ctx) error {
	var in dto.QuarantaineRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corps invalide"})
	}
	mvt, err := h.quarantaine.Lever(c.Context(), c.Params("id"), in.Quantite, in.Motif, GetUserID(c))
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(dto.FromMouvement(mvt))
}

// Perimes GET /api/lots/perimes?horizon_jours=30
func (h *LotHandler) Perimes(c *fiber.Ctx) error {
	horizon := time.Now().AddDate(0, 0, c.QueryInt("horizon_jours", 0))
	lots, err := h.trace.LotsPerimes(c.Context(), horizon)
	if err != nil {
		return renderError(c, err)
	}
	out := make([]dto.LotResponse, len(lots))
	for i, l := range lots {
		out[i] = dto.FromLot(l)
	}
	return c.JSON(fiber.Map{"total": len(out), "lots": out})
}
