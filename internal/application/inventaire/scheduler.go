package inventaire

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/adiallo/labostock-api/internal/domain/entity"
	"github.com/adiallo/labostock-api/pkg/logger"
)

// Scheduler planifie des inventaires TOURNANT récurrents sur une expression
// cron (ex: "0 6 * * 1" pour tous les lundis à 6h). Chaque déclenchement ouvre
// une session PLANIFIE sur l'emplacement configuré; le comptage reste manuel.
type Scheduler struct {
	uc          *UseCase
	cron        *cron.Cron
	log         *logger.Logger
	emplacement string
	responsable string
}

// NewScheduler construit le planificateur.
func NewScheduler(uc *UseCase, log *logger.Logger, emplacement, responsable string) *Scheduler {
	return &Scheduler{
		uc:          uc,
		cron:        cron.New(),
		log:         log,
		emplacement: emplacement,
		responsable: responsable,
	}
}

// Start enregistre le job et démarre le cron.
func (s *Scheduler) Start(spec string) error {
	_, err := s.cron.AddFunc(spec, s.planifierTournant)
	if err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info().Str("cron", spec).Str("emplacement", s.emplacement).
		Msg("planificateur d'inventaires tournants démarré")
	return nil
}

// Stop arrête le cron et attend la fin du job en cours.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) planifierTournant() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	inv, err := s.uc.Create(ctx, CreateInput{
		TypeInventaire: entity.InventaireTOURNANT,
		Emplacement:    s.emplacement,
		DateDebut:      time.Now(),
		Responsable:    s.responsable,
		Notes:          "inventaire tournant planifié automatiquement",
	})
	if err != nil {
		s.log.Warn().Err(err).Str("emplacement", s.emplacement).
			Msg("planification d'inventaire tournant échouée")
		return
	}
	s.log.Info().Str("inventaire_id", inv.ID).Int("lignes", len(inv.Lignes)).
		Msg("inventaire tournant planifié")
}
