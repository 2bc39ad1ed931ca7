package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/adiallo/labostock-api/internal/application/dto"
	"github.com/adiallo/labostock-api/internal/domain"
)

// renderError traduit la taxonomie d'erreurs du domaine en statuts HTTP.
// Rien n'est avalé: tout échec remonte avec assez de détail pour reprendre.
func renderError(c *fiber.Ctx, err error) error {
	var partial *domain.PartialValidationError
	if errors.As(err, &partial) {
		details := make([]string, len(partial.Echecs))
		for i, e := range partial.Echecs {
			details[i] = e.LigneID
		}
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code:    "PARTIAL_VALIDATION",
			Message: "validation partielle: certaines lignes n'ont pas été ajustées, rejouer la validation",
			Details: details,
		})
	}

	var insufficient *domain.InsufficientStockError
	if errors.As(err, &insufficient) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code:    "INSUFFICIENT_STOCK",
			Message: insufficient.Error(),
		})
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidScope):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_SCOPE", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrAlreadyValidated):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ALREADY_VALIDATED", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidTransition):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INVALID_TRANSITION", Message: err.Error()})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: err.Error()})
	case errors.Is(err, domain.ErrConcurrencyExhausted):
		// Sans danger à rejouer côté client.
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONCURRENCY_EXHAUSTED", Message: err.Error()})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
