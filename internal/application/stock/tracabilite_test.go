package stock_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adiallo/labostock-api/internal/application/stock"
	"github.com/adiallo/labostock-api/internal/domain"
	"github.com/adiallo/labostock-api/internal/domain/entity"
	"github.com/adiallo/labostock-api/internal/domain/repository"
)

func (b *banc) quarantaine() *stock.QuarantaineUseCase {
	return stock.NewQuarantaineUseCase(b.store.Lots(), b.store.Mouvements(), b.engine)
}

func (b *banc) tracabilite() *stock.TracabiliteUseCase {
	return stock.NewTracabiliteUseCase(b.store.Lots(), b.store.Mouvements(), b.store.Articles())
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests quarantaine
// ──────────────────────────────────────────────────────────────────────────────

// Mise en quarantaine: le disponible baisse, le solde quarantaine monte, et la
// levée restitue exactement. Le solde n'est jamais stocké, toujours dérivé.
func TestQuarantaine_CycleComplet(t *testing.T) {
	b := nouveauBanc(t)
	lot := b.receptionner(t, 100)
	q := b.quarantaine()

	mvt, err := q.Mettre(context.Background(), lot.ID, decimal.NewFromInt(20),
		"contrôle qualité en attente", "technicien-1")
	require.NoError(t, err)
	assert.Equal(t, entity.MouvementQuarantaineEntree, mvt.Type)
	assert.True(t, mvt.Quantite.Equal(decimal.NewFromInt(-20)), "la mise retire du disponible")

	solde, err := q.Solde(context.Background(), lot.ID)
	require.NoError(t, err)
	assert.True(t, solde.Equal(decimal.NewFromInt(20)))

	apres, _ := b.store.Lots().GetByID(lot.ID)
	assert.True(t, apres.QuantiteRestante.Equal(decimal.NewFromInt(80)))

	// Lever plus que le solde: refusé.
	_, err = q.Lever(context.Background(), lot.ID, decimal.NewFromInt(25), "", "technicien-1")
	var insuffisant *domain.InsufficientStockError
	require.ErrorAs(t, err, &insuffisant)
	assert.True(t, insuffisant.Disponible.Equal(decimal.NewFromInt(20)),
		"le disponible rapporté est le solde en quarantaine")

	// Levée partielle puis totale.
	_, err = q.Lever(context.Background(), lot.ID, decimal.NewFromInt(15), "conforme", "technicien-1")
	require.NoError(t, err)
	solde, _ = q.Solde(context.Background(), lot.ID)
	assert.True(t, solde.Equal(decimal.NewFromInt(5)))

	_, err = q.Lever(context.Background(), lot.ID, decimal.NewFromInt(5), "conforme", "technicien-1")
	require.NoError(t, err)
	apres, _ = b.store.Lots().GetByID(lot.ID)
	assert.True(t, apres.QuantiteRestante.Equal(decimal.NewFromInt(100)), "tout est restitué")
}

func TestQuarantaine_EntreesInvalides(t *testing.T) {
	b := nouveauBanc(t)
	lot := b.receptionner(t, 10)
	q := b.quarantaine()

	_, err := q.Mettre(context.Background(), lot.ID, decimal.Zero, "", "technicien-1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = q.Lever(context.Background(), lot.ID, decimal.NewFromInt(-1), "", "technicien-1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = q.Solde(context.Background(), "lot-fantome")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests traçabilité
// ──────────────────────────────────────────────────────────────────────────────

// La trace d'un lot rejoue toute sa vie dans l'ordre du journal.
func TestTrace_VieCompleteDuLot(t *testing.T) {
	b := nouveauBanc(t)
	lot := b.receptionner(t, 100)
	q := b.quarantaine()

	_, err := b.engine.ApplyMovement(context.Background(), lot.ID, entity.MouvementSORTIE,
		decimal.NewFromInt(-30), stock.MovementContext{Acteur: "technicien-1"})
	require.NoError(t, err)
	_, err = q.Mettre(context.Background(), lot.ID, decimal.NewFromInt(10), "suspect", "technicien-1")
	require.NoError(t, err)

	trace, err := b.tracabilite().Trace(context.Background(), lot.ID)
	require.NoError(t, err)
	assert.Equal(t, lot.ID, trace.Lot.ID)
	require.Len(t, trace.Mouvements, 3)
	assert.Equal(t, entity.MouvementENTREE, trace.Mouvements[0].Type)
	assert.Equal(t, entity.MouvementSORTIE, trace.Mouvements[1].Type)
	assert.Equal(t, entity.MouvementQuarantaineEntree, trace.Mouvements[2].Type)
	assert.True(t, trace.Quarantaine.Equal(decimal.NewFromInt(10)))

	_, err = b.tracabilite().Trace(context.Background(), "lot-fantome")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// L'historique par article agrège les lots et respecte le filtre temporel.
func TestMouvementsParArticle(t *testing.T) {
	b := nouveauBanc(t)
	b.receptionner(t, 50)
	b.receptionner(t, 30)

	mvts, err := b.tracabilite().MouvementsParArticle(context.Background(), "art-ethanol",
		repository.MouvementFilter{})
	require.NoError(t, err)
	assert.Len(t, mvts, 2, "une ENTREE de naissance par lot")

	futur := time.Now().Add(time.Hour)
	mvts, err = b.tracabilite().MouvementsParArticle(context.Background(), "art-ethanol",
		repository.MouvementFilter{From: &futur})
	require.NoError(t, err)
	assert.Empty(t, mvts)

	_, err = b.tracabilite().MouvementsParArticle(context.Background(), "art-fantome",
		repository.MouvementFilter{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Un stock sain ne produit aucun écart; une mutation hors moteur en produit un.
func TestRapportCoherence(t *testing.T) {
	b := nouveauBanc(t)
	lot := b.receptionner(t, 100)
	_, err := b.engine.ApplyMovement(context.Background(), lot.ID, entity.MouvementSORTIE,
		decimal.NewFromInt(-40), stock.MovementContext{Acteur: "technicien-1"})
	require.NoError(t, err)

	ecarts, err := b.tracabilite().RapportCoherence(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ecarts, "tout passe par le moteur: aucun écart")

	// Mutation directe du lot, sans écriture de journal: la dérive que le
	// rapport existe pour attraper.
	_, err = b.store.Lots().Adjust(lot.ID, decimal.NewFromInt(-5), nil, true)
	require.NoError(t, err)

	ecarts, err = b.tracabilite().RapportCoherence(context.Background())
	require.NoError(t, err)
	require.Len(t, ecarts, 1)
	assert.Equal(t, lot.ID, ecarts[0].LotID)
	assert.True(t, ecarts[0].Restante.Equal(decimal.NewFromInt(55)))
	assert.True(t, ecarts[0].SommeJournal.Equal(decimal.NewFromInt(60)))
	assert.True(t, ecarts[0].Ecart.Equal(decimal.NewFromInt(-5)))
}

// Les alertes se déclenchent sur le total restant par article.
func TestAlertes(t *testing.T) {
	b := nouveauBanc(t)
	require.NoError(t, b.store.Articles().Create(&entity.Article{
		ID: "art-critique", Code: "CRT-01", Designation: "Réactif rare", Unite: "g",
		SeuilAlerte: decimal.NewFromInt(10), SeuilCritique: decimal.NewFromInt(3),
	}))

	// art-ethanol (seuil 50): 60 restants, pas d'alerte.
	b.receptionner(t, 60)

	alertes, err := b.tracabilite().Alertes(context.Background())
	require.NoError(t, err)
	require.Len(t, alertes, 1, "l'article sans aucun lot est sous tous ses seuils")
	assert.Equal(t, "art-critique", alertes[0].Article.ID)
	assert.True(t, alertes[0].Restant.IsZero())
	assert.True(t, alertes[0].Critique)

	// Sous le seuil d'alerte mais au-dessus du critique: alerte non critique.
	_, err = b.lots.Receptionner(context.Background(), stock.ReceptionInput{
		Numero: "LOT-CRT", ArticleID: "art-critique", Quantite: decimal.NewFromInt(8), Acteur: "technicien-1",
	})
	require.NoError(t, err)
	alertes, err = b.tracabilite().Alertes(context.Background())
	require.NoError(t, err)
	require.Len(t, alertes, 1)
	assert.False(t, alertes[0].Critique)
}

// LotsPerimes ne rapporte que les lots dont la péremption précède l'horizon.
func TestLotsPerimes(t *testing.T) {
	b := nouveauBanc(t)
	hier := time.Now().Add(-24 * time.Hour)
	dansUnAn := time.Now().AddDate(1, 0, 0)

	perime, err := b.lots.Receptionner(context.Background(), stock.ReceptionInput{
		Numero: "LOT-VIEUX", ArticleID: "art-ethanol", Quantite: decimal.NewFromInt(5),
		DatePeremption: &hier, Acteur: "technicien-1",
	})
	require.NoError(t, err)
	_, err = b.lots.Receptionner(context.Background(), stock.ReceptionInput{
		Numero: "LOT-FRAIS", ArticleID: "art-ethanol", Quantite: decimal.NewFromInt(5),
		DatePeremption: &dansUnAn, Acteur: "technicien-1",
	})
	require.NoError(t, err)
	b.receptionner(t, 5) // sans date de péremption: jamais rapporté

	lots, err := b.tracabilite().LotsPerimes(context.Background(), time.Now())
	require.NoError(t, err)
	require.Len(t, lots, 1)
	assert.Equal(t, perime.ID, lots[0].ID)
}
