package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Erreurs de domaine (sans dépendances externes).
var (
	ErrNotFound             = errors.New("ressource introuvable")
	ErrInvalidInput         = errors.New("entrée invalide")
	ErrInvalidScope         = errors.New("périmètre d'inventaire invalide")
	ErrInvalidTransition    = errors.New("transition d'état invalide")
	ErrAlreadyValidated     = errors.New("déjà validé")
	ErrInsufficientStock    = errors.New("stock insuffisant")
	ErrConflict             = errors.New("conflit avec l'état courant")
	ErrConcurrencyExhausted = errors.New("tentatives de réconciliation épuisées")
	ErrPartialValidation    = errors.New("validation partielle de l'inventaire")
	ErrUnauthorized         = errors.New("non autorisé")
)

// InsufficientStockError porte la quantité disponible pour que l'appelant
// puisse ajuster sa demande. Se déballe vers ErrInsufficientStock.
type InsufficientStockError struct {
	LotID      string
	Disponible decimal.Decimal
	Demandee   decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuffisant sur le lot %s: disponible %s, demandé %s",
		e.LotID, e.Disponible, e.Demandee)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// TransitionError décrit une transition refusée par la machine à états.
type TransitionError struct {
	Entite string // "sortie" ou "inventaire"
	De     string
	Vers   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: transition %s -> %s refusée", e.Entite, e.De, e.Vers)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// LigneEchec une ligne d'inventaire dont l'ajustement a échoué lors de la validation.
type LigneEchec struct {
	LigneID string
	Cause   error
}

// PartialValidationError validation d'inventaire appliquée pour une partie des
// lignes seulement. La session reste en TERMINE et la validation peut être
// relancée: les lignes déjà ajustées sont ignorées au rejeu.
type PartialValidationError struct {
	InventaireID string
	Echecs       []LigneEchec
}

func (e *PartialValidationError) Error() string {
	ids := make([]string, len(e.Echecs))
	for i, l := range e.Echecs {
		ids[i] = l.LigneID
	}
	return fmt.Sprintf("inventaire %s: %d ligne(s) en échec [%s]",
		e.InventaireID, len(e.Echecs), strings.Join(ids, ", "))
}

func (e *PartialValidationError) Unwrap() error { return ErrPartialValidation }
