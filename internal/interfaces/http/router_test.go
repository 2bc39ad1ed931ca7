package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adiallo/labostock-api/internal/application/inventaire"
	"github.com/adiallo/labostock-api/internal/application/sortie"
	"github.com/adiallo/labostock-api/internal/application/stock"
	"github.com/adiallo/labostock-api/internal/domain/entity"
	"github.com/adiallo/labostock-api/internal/infrastructure/memory"
	apphttp "github.com/adiallo/labostock-api/internal/interfaces/http"
	pkgjwt "github.com/adiallo/labostock-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testIssuer    = "labostock-test"
	testExpMin    = 60
)

// buildTestApp monte l'API complète sur le store mémoire, avec un article de
// référence déjà créé.
func buildTestApp(t *testing.T) (*fiber.App, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	require.NoError(t, store.Articles().Create(&entity.Article{
		ID: "art-acetone", Code: "ACE-01", Designation: "Acétone", Unite: "ml",
	}))

	engine := stock.NewEngine(memory.NewTxRunner(store))
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		LotUC:         stock.NewLotUseCase(store.Lots(), store.Articles(), engine),
		QuarantaineUC: stock.NewQuarantaineUseCase(store.Lots(), store.Mouvements(), engine),
		TracabiliteUC: stock.NewTracabiliteUseCase(store.Lots(), store.Mouvements(), store.Articles()),
		SortieUC:      sortie.NewUseCase(store.Sorties(), store.Lots(), engine),
		InventaireUC:  inventaire.NewUseCase(store.Inventaires(), store.Lots(), engine),
		JWTSecret:     testJWTSecret,
	})
	return app, store
}

// tokenForRole génère un Bearer Token pour le rôle indiqué.
func tokenForRole(t *testing.T, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, role, testIssuer, testExpMin)
	require.NoError(t, err, "le token JWT doit se générer")
	return "Bearer " + tok
}

// doJSON lance une requête JSON authentifiée et renvoie la réponse.
func doJSON(t *testing.T, app *fiber.App, method, path, authHeader string, body any) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// receptionner passe par l'API pour créer un lot et renvoie son ID.
func receptionner(t *testing.T, app *fiber.App, quantite string) string {
	t.Helper()
	resp := doJSON(t, app, http.MethodPost, "/api/lots", tokenForRole(t, "technicien"), map[string]any{
		"numero":     "LOT-HTTP-01",
		"article_id": "art-acetone",
		"quantite":   quantite,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decode(t, resp)
	id, _ := body["id"].(string)
	require.NotEmpty(t, id)
	return id
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests authentification
// ──────────────────────────────────────────────────────────────────────────────

// Sans Authorization: 401 avant tout traitement.
func TestAuth_TokenManquant(t *testing.T) {
	app, _ := buildTestApp(t)
	resp := doJSON(t, app, http.MethodGet, "/api/lots", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "MISSING_TOKEN", decode(t, resp)["code"])
}

// En-tête mal formé ou signature invalide: 401.
func TestAuth_TokenInvalide(t *testing.T) {
	app, _ := buildTestApp(t)

	resp := doJSON(t, app, http.MethodGet, "/api/lots", "Basic abc123", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	mauvais, err := pkgjwt.Generate("autre-secret", testUserID, "responsable", testIssuer, testExpMin)
	require.NoError(t, err)
	resp = doJSON(t, app, http.MethodGet, "/api/lots", "Bearer "+mauvais, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "INVALID_TOKEN", decode(t, resp)["code"])
}

// Le rôle lecteur consulte mais n'écrit pas.
func TestAuth_LecteurEnLectureSeule(t *testing.T) {
	app, _ := buildTestApp(t)

	resp := doJSON(t, app, http.MethodGet, "/api/lots", tokenForRole(t, "lecteur"), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/api/lots", tokenForRole(t, "lecteur"), map[string]any{
		"numero": "LOT-X", "article_id": "art-acetone", "quantite": "10",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", decode(t, resp)["code"])
}

// La validation d'une sortie est réservée au responsable.
func TestAuth_ValidationReserveeAuResponsable(t *testing.T) {
	app, _ := buildTestApp(t)
	lotID := receptionner(t, app, "100")

	resp := doJSON(t, app, http.MethodPost, "/api/sorties", tokenForRole(t, "technicien"), map[string]any{
		"lot_id": lotID, "quantite": "30", "type_sortie": "CONSOMMATION", "motif": "analyse",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	sortieID, _ := decode(t, resp)["id"].(string)
	require.NotEmpty(t, sortieID)

	resp = doJSON(t, app, http.MethodPut, "/api/sorties/"+sortieID+"/valider",
		tokenForRole(t, "technicien"), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPut, "/api/sorties/"+sortieID+"/valider",
		tokenForRole(t, "responsable"), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, "VALIDEE", body["statut"])
	assert.Equal(t, testUserID, body["valide_par"], "l'acteur vient du token")
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests parcours API
// ──────────────────────────────────────────────────────────────────────────────

// Réception puis consultation: le lot et son ENTREE de naissance sont visibles.
func TestAPI_ReceptionPuisTrace(t *testing.T) {
	app, _ := buildTestApp(t)
	lotID := receptionner(t, app, "250")

	resp := doJSON(t, app, http.MethodGet, "/api/lots/"+lotID, tokenForRole(t, "lecteur"), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	lot := decode(t, resp)
	assert.Equal(t, "250", lot["quantite_restante"])

	resp = doJSON(t, app, http.MethodGet, "/api/lots/"+lotID+"/trace", tokenForRole(t, "lecteur"), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	trace := decode(t, resp)
	mouvements, _ := trace["mouvements"].([]any)
	require.Len(t, mouvements, 1)
	premier, _ := mouvements[0].(map[string]any)
	assert.Equal(t, "ENTREE", premier["type"])
}

// Demande au-delà du stock: 409 typé, le lot ne bouge pas.
func TestAPI_SortieStockInsuffisant(t *testing.T) {
	app, _ := buildTestApp(t)
	lotID := receptionner(t, app, "70")

	resp := doJSON(t, app, http.MethodPost, "/api/sorties", tokenForRole(t, "technicien"), map[string]any{
		"lot_id": lotID, "quantite": "80", "type_sortie": "CONSOMMATION", "motif": "trop gourmand",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", decode(t, resp)["code"])

	resp = doJSON(t, app, http.MethodGet, "/api/lots/"+lotID, tokenForRole(t, "lecteur"), nil)
	assert.Equal(t, "70", decode(t, resp)["quantite_restante"])
}

// Identifiant inconnu: 404 avec code NOT_FOUND.
func TestAPI_LotInconnu(t *testing.T) {
	app, _ := buildTestApp(t)
	resp := doJSON(t, app, http.MethodGet, "/api/lots/lot-fantome", tokenForRole(t, "lecteur"), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decode(t, resp)["code"])
}

// Cycle d'inventaire complet par l'API, comptage 65 sur 70: ajustement visible
// sur le lot après validation.
func TestAPI_CycleInventaire(t *testing.T) {
	app, _ := buildTestApp(t)
	lotID := receptionner(t, app, "70")
	responsable := tokenForRole(t, "responsable")

	resp := doJSON(t, app, http.MethodPost, "/api/inventaires", responsable, map[string]any{
		"type_inventaire": "COMPLET",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode(t, resp)
	invID, _ := created["id"].(string)
	lignes, _ := created["lignes"].([]any)
	require.Len(t, lignes, 1)
	ligne, _ := lignes[0].(map[string]any)
	ligneID, _ := ligne["id"].(string)

	resp = doJSON(t, app, http.MethodPut, "/api/inventaires/"+invID+"/demarrer", responsable, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPut,
		"/api/inventaires/"+invID+"/lignes/"+ligneID+"/compter", responsable, map[string]any{
			"quantite": "65", "commentaire": "flacon entamé",
		})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPut, "/api/inventaires/"+invID+"/terminer", responsable, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPut, "/api/inventaires/"+invID+"/valider", responsable, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "VALIDE", decode(t, resp)["statut"])

	resp = doJSON(t, app, http.MethodGet, "/api/lots/"+lotID, responsable, nil)
	assert.Equal(t, "65", decode(t, resp)["quantite_restante"])

	// Valider à nouveau: transition refusée.
	resp = doJSON(t, app, http.MethodPut, "/api/inventaires/"+invID+"/valider", responsable, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}
