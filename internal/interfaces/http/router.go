package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/adiallo/labostock-api/internal/application/inventaire"
	"github.com/adiallo/labostock-api/internal/application/sortie"
	"github.com/adiallo/labostock-api/internal/application/stock"
)

// RouterDeps dépendances du router.
type RouterDeps struct {
	LotUC         *stock.LotUseCase
	QuarantaineUC *stock.QuarantaineUseCase
	TracabiliteUC *stock.TracabiliteUseCase
	SortieUC      *sortie.UseCase
	InventaireUC  *inventaire.UseCase
	JWTSecret     string
}

// Router enregistre les routes de l'API. Tout est protégé par Bearer Token;
// l'authentification elle-même vit chez un collaborateur externe. Les écritures
// sont réservées aux rôles responsable et technicien, la validation finale
// (sorties, inventaires) au seul responsable.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	ecriture := RequireRole("responsable", "technicien")
	validation := RequireRole("responsable")

	lotHandler := NewLotHandler(deps.LotUC, deps.QuarantaineUC, deps.TracabiliteUC)
	lots := api.Group("/lots")
	lots.Post("/", ecriture, lotHandler.Receptionner)
	lots.Get("/", lotHandler.List)
	// Avant /:id, sinon "perimes" serait pris pour un identifiant.
	lots.Get("/perimes", lotHandler.Perimes)
	lots.Get("/:id", lotHandler.GetByID)
	lots.Get("/:id/mouvements", lotHandler.Mouvements)
	lots.Get("/:id/trace", lotHandler.Trace)
	lots.Post("/:id/transfert", ecriture, lotHandler.Transferer)
	lots.Post("/:id/quarantaine", ecriture, lotHandler.MettreQuarantaine)
	lots.Delete("/:id/quarantaine", ecriture, lotHandler.LeverQuarantaine)

	stockHandler := NewStockHandler(deps.TracabiliteUC)
	api.Get("/articles/:id/mouvements", stockHandler.MouvementsParArticle)
	stockGroup := api.Group("/stock")
	stockGroup.Get("/alertes", stockHandler.Alertes)
	stockGroup.Get("/coherence", stockHandler.Coherence)

	sortieHandler := NewSortieHandler(deps.SortieUC)
	sorties := api.Group("/sorties")
	sorties.Post("/", ecriture, sortieHandler.Create)
	sorties.Get("/", sortieHandler.List)
	sorties.Get("/:id", sortieHandler.GetByID)
	sorties.Put("/:id/valider", validation, sortieHandler.Validate)
	sorties.Put("/:id/annuler", ecriture, sortieHandler.Cancel)

	inventaireHandler := NewInventaireHandler(deps.InventaireUC)
	inventaires := api.Group("/inventaires")
	inventaires.Post("/", ecriture, inventaireHandler.Create)
	inventaires.Get("/", inventaireHandler.List)
	inventaires.Get("/:id", inventaireHandler.GetByID)
	inventaires.Get("/:id/resume", inventaireHandler.Resume)
	inventaires.Put("/:id/demarrer", ecriture, inventaireHandler.Demarrer)
	inventaires.Put("/:id/terminer", ecriture, inventaireHandler.Terminer)
	inventaires.Put("/:id/valider", validation, inventaireHandler.Valider)
	inventaires.Put("/:id/annuler", ecriture, inventaireHandler.Annuler)
	inventaires.Put("/:id/notes", ecriture, inventaireHandler.Notes)
	inventaires.Put("/:id/lignes/:ligneId/compter", ecriture, inventaireHandler.CompterLigne)
}
