package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/adiallo/labostock-api/internal/application/dto"
	"github.com/adiallo/labostock-api/internal/application/inventaire"
	"github.com/adiallo/labostock-api/internal/domain/repository"
)

// InventaireHandler requêtes HTTP des sessions d'inventaire.
type InventaireHandler struct {
	uc *inventaire.UseCase
}

// NewInventaireHandler construit le handler.
func NewInventaireHandler(uc *inventaire.UseCase) *InventaireHandler {
	return &InventaireHandler{uc: uc}
}

// Create POST /api/inventaires — planifie la session et fige les lignes.
func (h *InventaireHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateInventaireRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corps invalide"})
	}
	debut := time.Time{}
	if in.DateDebut != nil {
		debut = *in.DateDebut
	}
	inv, err := h.uc.Create(c.Context(), inventaire.CreateInput{
		TypeInventaire: in.TypeInventaire,
		Emplacement:    in.Emplacement,
		DateDebut:      debut,
		Responsable:    GetUserID(c),
		Notes:          in.Notes,
	})
	if err != nil {
		return renderError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromInventaire(inv))
}

// List GET /api/inventaires
func (h *InventaireHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err == nil {
		page.DefaultPage()
	}
	invs, err := h.uc.List(c.Context(), repository.InventaireFilter{
		Statut: c.Query("statut"),
		Type:   c.Query("type"),
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(invs), "inventaires": dto.FromInventaires(invs)})
}

// GetByID GET /api/inventaires/:id
func (h *InventaireHandler) GetByID(c *fiber.Ctx) error {
	inv, err := h.uc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(dto.FromInventaire(inv))
}

// Demarrer PUT /api/inventaires/:id/demarrer
func (h *InventaireHandler) Demarrer(c *fiber.Ctx) error {
	inv, err := h.uc.Demarrer(c.Context(), c.Params("id"))
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(dto.FromInventaire(inv))
}

// CompterLigne PUT /api/inventaires/:id/lignes/:ligneId/compter
func (h *InventaireHandler) CompterLigne(c *fiber.Ctx) error {
	var in dto.CompterLigneRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corps invalide"})
	}
	res, err := h.uc.CompterLigne(c.Context(), c.Params("id"), c.Params("ligneId"), in.Quantite, in.Commentaire, GetUserID(c))
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(dto.FromComptage(res))
}

// Terminer PUT /api/inventaires/:id/terminer — gèle le comptage.
func (h *InventaireHandler) Terminer(c *fiber.Ctx) error {
	inv, err := h.uc.Terminer(c.Context(), c.Params("id"))
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(dto.FromInventaire(inv))
}

// Valider PUT /api/inventaires/:id/valider — poste les AJUSTEMENT.
func (h *InventaireHandler) Valider(c *fiber.Ctx) error {
	inv, err := h.uc.Valider(c.Context(), c.Params("id"), GetUserID(c))
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(dto.FromInventaire(inv))
}

// Notes PUT /api/inventaires/:id/notes
func (h *InventaireHandler) Notes(c *fiber.Ctx) error {
	var in dto.UpdateNotesRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corps invalide"})
	}
	inv, err := h.uc.UpdateNotes(c.Context(), c.Params("id"), in.Notes)
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(dto.FromInventaire(inv))
}

// Annuler PUT /api/inventaires/:id/annuler
func (h *InventaireHandler) Annuler(c *fiber.Ctx) error {
	inv, err := h.uc.Annuler(c.Context(), c.Params("id"))
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(dto.FromInventaire(inv))
}

// Resume GET /api/inventaires/:id/resume — avancement dérivé.
func (h *InventaireHandler) Resume(c *fiber.Ctx) error {
	r, err := h.uc.GetResume(c.Context(), c.Params("id"))
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(dto.FromResume(r))
}
