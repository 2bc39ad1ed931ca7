package inventaire_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adiallo/labostock-api/internal/application/inventaire"
	"github.com/adiallo/labostock-api/internal/domain/entity"
	"github.com/adiallo/labostock-api/internal/domain/repository"
	"github.com/adiallo/labostock-api/pkg/logger"
)

// Le déclenchement cron ouvre une session TOURNANT sur l'emplacement configuré.
func TestScheduler_PlanifieTournant(t *testing.T) {
	b := nouveauBanc(t)
	b.receptionner(t, "LOT-A", "frigo-A", 10)

	log := logger.New(logger.Config{Env: "development", Level: "error"})
	s := inventaire.NewScheduler(b.uc, log, "frigo-A", "responsable-1")
	require.NoError(t, s.Start("@every 100ms"))
	defer s.Stop()

	// Laisser au moins un déclenchement passer.
	var sessions []*entity.Inventaire
	require.Eventually(t, func() bool {
		var err error
		sessions, err = b.uc.List(context.Background(), repository.InventaireFilter{
			Type: entity.InventaireTOURNANT,
		})
		return err == nil && len(sessions) > 0
	}, 2*time.Second, 50*time.Millisecond, "au moins une session doit être planifiée")

	premiere := sessions[0]
	assert.Equal(t, entity.InventairePlanifie, premiere.Statut)
	assert.Equal(t, "frigo-A", premiere.Emplacement)
	assert.Equal(t, "responsable-1", premiere.Responsable)
	assert.Len(t, premiere.Lignes, 1)
}

// Une expression cron invalide est refusée au démarrage.
func TestScheduler_SpecInvalide(t *testing.T) {
	b := nouveauBanc(t)
	log := logger.New(logger.Config{Env: "development", Level: "error"})
	s := inventaire.NewScheduler(b.uc, log, "frigo-A", "responsable-1")
	assert.Error(t, s.Start("pas-un-cron"))
}
