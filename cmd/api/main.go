package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/adiallo/labostock-api/internal/application/inventaire"
	"github.com/adiallo/labostock-api/internal/application/sortie"
	"github.com/adiallo/labostock-api/internal/application/stock"
	"github.com/adiallo/labostock-api/internal/domain/repository"
	"github.com/adiallo/labostock-api/internal/infrastructure/memory"
	"github.com/adiallo/labostock-api/internal/infrastructure/postgres"
	httpRouter "github.com/adiallo/labostock-api/internal/interfaces/http"
	"github.com/adiallo/labostock-api/pkg/config"
	"github.com/adiallo/labostock-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("charger la configuration: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.App.StoreDriver).
		Msg("démarrage de l'application")

	ctx := context.Background()

	var (
		articleRepo    repository.ArticleRepository
		lotRepo        repository.LotRepository
		mouvementRepo  repository.MouvementRepository
		sortieRepo     repository.SortieRepository
		inventaireRepo repository.InventaireRepository
		txRunner       stock.TxRunner
	)

	switch cfg.App.StoreDriver {
	case "memory":
		// Store volatil pour démo et tests d'intégration.
		store := memory.NewStore()
		articleRepo = store.Articles()
		lotRepo = store.Lots()
		mouvementRepo = store.Mouvements()
		sortieRepo = store.Sorties()
		inventaireRepo = store.Inventaires()
		txRunner = memory.NewTxRunner(store)
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("connexion PostgreSQL")
		}
		defer pool.Close()
		articleRepo = postgres.NewArticleRepository(pool)
		lotRepo = postgres.NewLotRepository(pool)
		mouvementRepo = postgres.NewMouvementRepository(pool)
		sortieRepo = postgres.NewSortieRepository(pool)
		inventaireRepo = postgres.NewInventaireRepository(pool)
		txRunner = postgres.NewTxRunner(pool)
	}

	engine := stock.NewEngine(txRunner)
	lotUC := stock.NewLotUseCase(lotRepo, articleRepo, engine)
	quarantaineUC := stock.NewQuarantaineUseCase(lotRepo, mouvementRepo, engine)
	tracabiliteUC := stock.NewTracabiliteUseCase(lotRepo, mouvementRepo, articleRepo)
	sortieUC := sortie.NewUseCase(sortieRepo, lotRepo, engine)
	inventaireUC := inventaire.NewUseCase(inventaireRepo, lotRepo, engine)

	// Planificateur d'inventaires tournants (optionnel).
	if cfg.Inventaire.TournantCron != "" {
		scheduler := inventaire.NewScheduler(inventaireUC, log,
			cfg.Inventaire.TournantEmplacement, cfg.Inventaire.TournantResponsable)
		if err := scheduler.Start(cfg.Inventaire.TournantCron); err != nil {
			log.Fatal().Err(err).Msg("démarrage du planificateur d'inventaires")
		}
		defer scheduler.Stop()
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "LaboStock API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		LotUC:         lotUC,
		QuarantaineUC: quarantaineUC,
		TracabiliteUC: tracabiliteUC,
		SortieUC:      sortieUC,
		InventaireUC:  inventaireUC,
		JWTSecret:     cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("serveur HTTP terminé")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("signal d'arrêt reçu, fermeture du serveur...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("arrêt du serveur")
	}

	log.Info().Msg("application arrêtée")
}
