package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Article référence catalogue (SKU) d'un réactif ou consommable de laboratoire.
// Donnée de référence immuable pour ce moteur: le catalogue appartient à un
// collaborateur externe, on ne fait que le lire.
type Article struct {
	ID            string
	Code          string
	Designation   string
	Unite         string // ml, g, unité, boîte...
	SeuilAlerte   decimal.Decimal
	SeuilCritique decimal.Decimal
	CreatedAt     time.Time
}
