package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/adiallo/labostock-api/internal/application/dto"
	"github.com/adiallo/labostock-api/internal/application/sortie"
	"github.com/adiallo/labostock-api/internal/domain/repository"
)

// SortieHandler requêtes HTTP du workflow de sortie.
type SortieHandler struct {
	uc *sortie.UseCase
}

// NewSortieHandler construit le handler.
func NewSortieHandler(uc *sortie.UseCase) *SortieHandler {
	return &SortieHandler{uc: uc}
}

// Create POST /api/sorties — décrémente le lot immédiatement, sortie EN_ATTENTE.
func (h *SortieHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSortieRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corps invalide"})
	}
	s, err := h.uc.Create(c.Context(), sortie.CreateInput{
		LotID:      in.LotID,
		Quantite:   in.Quantite,
		TypeSortie: in.TypeSortie,
		Motif:      in.Motif,
		Acteur:     GetUserID(c),
	})
	if err != nil {
		return renderError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromSortie(s))
}

// Validate PUT /api/sorties/:id/valider
func (h *SortieHandler) Validate(c *fiber.Ctx) error {
	s, err := h.uc.Validate(c.Context(), c.Params("id"), GetUserID(c))
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(dto.FromSortie(s))
}

// Cancel PUT /api/sorties/:id/annuler — contre-passe le décrément.
func (h *SortieHandler) Cancel(c *fiber.Ctx) error {
	var in dto.CancelSortieRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corps invalide"})
	}
	s, err := h.uc.Cancel(c.Context(), c.Params("id"), in.Motif, GetUserID(c))
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(dto.FromSortie(s))
}

// GetByID GET /api/sorties/:id
func (h *SortieHandler) GetByID(c *fiber.Ctx) error {
	s, err := h.uc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(dto.FromSortie(s))
}

// List GET /api/sorties
func (h *SortieHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err == nil {
		page.DefaultPage()
	}
	sorties, err := h.uc.List(c.Context(), repository.SortieFilter{
		LotID:  c.Query("lot_id"),
		Statut: c.Query("statut"),
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(sorties), "sorties": dto.FromSorties(sorties)})
}
