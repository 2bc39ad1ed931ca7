package memory_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adiallo/labostock-api/internal/domain"
	"github.com/adiallo/labostock-api/internal/domain/entity"
	"github.com/adiallo/labostock-api/internal/infrastructure/memory"
)

func lotDeTest(restante, initiale int64) *entity.Lot {
	return &entity.Lot{
		ID:               "lot-1",
		Numero:           "LOT-01",
		ArticleID:        "art-1",
		QuantiteInitiale: decimal.NewFromInt(initiale),
		QuantiteRestante: decimal.NewFromInt(restante),
		DateReception:    time.Now(),
	}
}

// Le contrat d'Adjust est celui du dépôt PostgreSQL: garde optimiste, plancher
// zéro, plafond quantité initiale hors ajustement.
func TestLotAdjust_Contrat(t *testing.T) {
	dix := decimal.NewFromInt(10)
	cinquante := decimal.NewFromInt(50)

	cas := []struct {
		nom        string
		delta      int64
		expected   *decimal.Decimal
		ajustement bool
		attendu    error
	}{
		{nom: "sans garde", delta: -10, expected: nil},
		{nom: "garde correcte", delta: -10, expected: &cinquante},
		{nom: "garde fausse", delta: -10, expected: &dix, attendu: domain.ErrConflict},
		{nom: "plancher zero", delta: -60, attendu: domain.ErrInsufficientStock},
		{nom: "plafond initiale", delta: 60, attendu: domain.ErrConflict},
		{nom: "plafond leve en ajustement", delta: 60, ajustement: true},
	}
	for _, c := range cas {
		t.Run(c.nom, func(t *testing.T) {
			store := memory.NewStore()
			require.NoError(t, store.Lots().Create(lotDeTest(50, 100)))

			lot, err := store.Lots().Adjust("lot-1", decimal.NewFromInt(c.delta), c.expected, c.ajustement)
			if c.attendu != nil {
				require.ErrorIs(t, err, c.attendu)
				relu, _ := store.Lots().GetByID("lot-1")
				assert.True(t, relu.QuantiteRestante.Equal(decimal.NewFromInt(50)), "échec sans effet")
				return
			}
			require.NoError(t, err)
			assert.True(t, lot.QuantiteRestante.Equal(decimal.NewFromInt(50+c.delta)))
		})
	}

	_, err := memory.NewStore().Lots().Adjust("lot-fantome", decimal.NewFromInt(1), nil, false)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Les écritures reçoivent des numéros de séquence croissants, et le listing
// par lot les restitue dans cet ordre même si les horloges mentent.
func TestMouvements_OrdreParSequence(t *testing.T) {
	store := memory.NewStore()
	base := time.Now()

	// Horodatages volontairement décroissants.
	for i := 0; i < 3; i++ {
		require.NoError(t, store.Mouvements().Append(&entity.Mouvement{
			LotID:     "lot-1",
			ArticleID: "art-1",
			Type:      entity.MouvementENTREE,
			Quantite:  decimal.NewFromInt(int64(i + 1)),
			CreatedAt: base.Add(-time.Duration(i) * time.Hour),
		}))
	}

	mvts, err := store.Mouvements().ListByLot("lot-1")
	require.NoError(t, err)
	require.Len(t, mvts, 3)
	for i, m := range mvts {
		assert.Equal(t, int64(i+1), m.Seq)
		assert.True(t, m.Quantite.Equal(decimal.NewFromInt(int64(i+1))),
			"l'ordre d'insertion prime sur l'horodatage")
	}
}

// Le contrat d'UpdateStatut des sorties est celui du dépôt PostgreSQL: écriture
// conditionnelle sur le statut courant, ErrConflict sur garde périmée.
func TestSortieUpdateStatut_Contrat(t *testing.T) {
	store := memory.NewStore()
	require.NoError(t, store.Sorties().Create(&entity.Sortie{
		ID:         "sortie-1",
		LotID:      "lot-1",
		ArticleID:  "art-1",
		TypeSortie: entity.SortieCONSOMMATION,
		Quantite:   decimal.NewFromInt(5),
		Statut:     entity.SortieEnAttente,
		CreatedAt:  time.Now(),
	}))

	require.NoError(t, store.Sorties().UpdateStatut("sortie-1", entity.SortieEnAttente, entity.SortieAnnulee))
	lu, err := store.Sorties().GetByID("sortie-1")
	require.NoError(t, err)
	assert.Equal(t, entity.SortieAnnulee, lu.Statut)

	// Garde périmée: le statut n'est plus EN_ATTENTE.
	err = store.Sorties().UpdateStatut("sortie-1", entity.SortieEnAttente, entity.SortieValidee)
	assert.ErrorIs(t, err, domain.ErrConflict)
	relu, _ := store.Sorties().GetByID("sortie-1")
	assert.Equal(t, entity.SortieAnnulee, relu.Statut, "échec sans effet")

	err = store.Sorties().UpdateStatut("sortie-fantome", entity.SortieEnAttente, entity.SortieValidee)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Les dépôts renvoient des copies: muter le résultat ne touche pas le store.
func TestClonageDefensif(t *testing.T) {
	store := memory.NewStore()
	require.NoError(t, store.Lots().Create(lotDeTest(50, 100)))

	lu, err := store.Lots().GetByID("lot-1")
	require.NoError(t, err)
	lu.QuantiteRestante = decimal.NewFromInt(999)

	relu, err := store.Lots().GetByID("lot-1")
	require.NoError(t, err)
	assert.True(t, relu.QuantiteRestante.Equal(decimal.NewFromInt(50)))
}
