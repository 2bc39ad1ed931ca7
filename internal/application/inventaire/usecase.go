package inventaire

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/adiallo/labostock-api/internal/application/stock"
	"github.com/adiallo/labostock-api/internal/domain"
	"github.com/adiallo/labostock-api/internal/domain/entity"
	"github.com/adiallo/labostock-api/internal/domain/repository"
)

// CreateInput entrée pour la planification d'un inventaire.
type CreateInput struct {
	TypeInventaire string
	Emplacement    string // périmètre; requis pour PARTIEL et TOURNANT
	DateDebut      time.Time
	Responsable    string
	Notes          string
}

// ComptageResult résultat d'un comptage de ligne. Un recomptage écrase le
// précédent: Ecrasement et Precedente le signalent à l'appelant au lieu d'une
// fusion silencieuse.
type ComptageResult struct {
	Ligne      *entity.LigneInventaire
	Ecrasement bool
	Precedente *decimal.Decimal
}

// Resume avancement dérivé d'une session: jamais persisté comme état faisant
// autorité.
type Resume struct {
	InventaireID   string
	Statut         string
	TotalLignes    int
	LignesComptees int
	EcartTotal     decimal.Decimal // somme des écarts des lignes comptées
	LignesOuvertes []string        // lignes non comptées (écarts ouverts, pas zéro)
	LignesAjustees int
}

// UseCase sessions d'inventaire physique: planification avec instantané des
// quantités théoriques, comptage, clôture, puis validation qui poste les
// AJUSTEMENT via le moteur de réconciliation.
type UseCase struct {
	inventaires repository.InventaireRepository
	lots        repository.LotRepository
	engine      *stock.Engine

	// Un mutex par session: la validation itère et mute plusieurs lots et ne
	// doit pas s'exécuter en concurrence avec elle-même pour la même session.
	// Les validations de sessions différentes restent indépendantes. Le verrou
	// est local au processus; entre instances, c'est la transition gardée et
	// le marquage AjustementApplique par ligne qui arbitrent. L'entrée est
	// libérée quand la session atteint un état terminal.
	verrous sync.Map // inventaireID -> *sync.Mutex
}

// NewUseCase construit le cas d'usage.
func NewUseCase(inventaires repository.InventaireRepository, lots repository.LotRepository, engine *stock.Engine) *UseCase {
	return &UseCase{inventaires: inventaires, lots: lots, engine: engine}
}

func (uc *UseCase) verrou(id string) *sync.Mutex {
	v, _ := uc.verrous.LoadOrStore(id, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// Create planifie une session et fige les lignes: un instantané de
// QuantiteRestante est pris pour chaque lot du périmètre dans
// QuantiteTheorique. Aucun effet sur le stock.
func (uc *UseCase) Create(ctx context.Context, in CreateInput) (*entity.Inventaire, error) {
	if !entity.InventaireTypeValide(in.TypeInventaire) {
		return nil, fmt.Errorf("%w: type d'inventaire %q", domain.ErrInvalidInput, in.TypeInventaire)
	}
	switch in.TypeInventaire {
	case entity.InventairePARTIEL, entity.InventaireTOURNANT:
		if in.Emplacement == "" {
			return nil, fmt.Errorf("%w: emplacement requis pour un inventaire %s", domain.ErrInvalidScope, in.TypeInventaire)
		}
	default:
		// COMPLET et ANNUEL couvrent tout le stock.
		in.Emplacement = ""
	}

	lots, err := uc.lots.List(repository.LotFilter{Emplacement: in.Emplacement, Epuises: true})
	if err != nil {
		return nil, err
	}
	if len(lots) == 0 {
		return nil, fmt.Errorf("%w: aucun lot dans le périmètre", domain.ErrInvalidScope)
	}

	now := time.Now()
	debut := in.DateDebut
	if debut.IsZero() {
		debut = now
	}
	inv := &entity.Inventaire{
		ID:             uuid.New().String(),
		TypeInventaire: in.TypeInventaire,
		Emplacement:    in.Emplacement,
		Statut:         entity.InventairePlanifie,
		DateDebut:      debut,
		Responsable:    in.Responsable,
		Notes:          in.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	for _, lot := range lots {
		inv.Lignes = append(inv.Lignes, &entity.LigneInventaire{
			ID:                uuid.New().String(),
			InventaireID:      inv.ID,
			ArticleID:         lot.ArticleID,
			LotID:             lot.ID,
			QuantiteTheorique: lot.QuantiteRestante,
		})
	}
	if err := uc.inventaires.Create(inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// Demarrer PLANIFIE -> EN_COURS: les lignes deviennent comptables.
func (uc *UseCase) Demarrer(ctx context.Context, inventaireID string) (*entity.Inventaire, error) {
	return uc.transition(inventaireID, entity.InventairePlanifie, entity.InventaireEnCours)
}

// Terminer EN_COURS -> TERMINE: le comptage est gelé. Les lignes non comptées
// restent à nil et sont rapportées comme écarts ouverts, pas ramenées à zéro.
func (uc *UseCase) Terminer(ctx context.Context, inventaireID string) (*entity.Inventaire, error) {
	return uc.transition(inventaireID, entity.InventaireEnCours, entity.InventaireTermine)
}

// Annuler abandonne la session sans toucher au stock, depuis n'importe quel
// état sauf VALIDE. Les comptages déjà saisis sont simplement abandonnés.
func (uc *UseCase) Annuler(ctx context.Context, inventaireID string) (*entity.Inventaire, error) {
	inv, err := uc.get(inventaireID)
	if err != nil {
		return nil, err
	}
	if inv.Statut == entity.InventaireValide || inv.Statut == entity.InventaireAnnule {
		return nil, &domain.TransitionError{Entite: "inventaire", De: inv.Statut, Vers: entity.InventaireAnnule}
	}
	if err := uc.inventaires.UpdateStatut(inv.ID, inv.Statut, entity.InventaireAnnule); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, &domain.TransitionError{Entite: "inventaire", De: inv.Statut, Vers: entity.InventaireAnnule}
		}
		return nil, err
	}
	uc.verrous.Delete(inventaireID)
	return uc.get(inventaireID)
}

// CompterLigne saisit un comptage pendant EN_COURS. Recompter une ligne écrase
// le comptage précédent (le plus récent gagne); l'écrasement est signalé dans
// le résultat. Le comptage n'écrit jamais dans les lots.
func (uc *UseCase) CompterLigne(ctx context.Context, inventaireID, ligneID string, quantite decimal.Decimal, commentaire, acteur string) (*ComptageResult, error) {
	if quantite.IsNegative() {
		return nil, fmt.Errorf("%w: quantité comptée négative", domain.ErrInvalidInput)
	}
	inv, err := uc.get(inventaireID)
	if err != nil {
		return nil, err
	}
	if inv.Statut != entity.InventaireEnCours {
		return nil, &domain.TransitionError{Entite: "inventaire", De: inv.Statut, Vers: entity.InventaireEnCours}
	}
	ligne, err := uc.inventaires.GetLigne(inventaireID, ligneID)
	if err != nil {
		return nil, err
	}
	if ligne == nil {
		return nil, fmt.Errorf("%w: ligne %s", domain.ErrNotFound, ligneID)
	}

	now := time.Now()
	res := &ComptageResult{}
	if ligne.QuantiteComptee != nil {
		// Dernier comptage gagnant: l'écriture écrase, le résultat le signale.
		prev := *ligne.QuantiteComptee
		res.Ecrasement = true
		res.Precedente = &prev
	}

	ligne.QuantiteComptee = &quantite
	ligne.ComptePar = acteur
	ligne.DateComptage = &now
	ligne.Commentaire = commentaire
	if err := uc.inventaires.UpdateLigne(ligne); err != nil {
		return nil, err
	}
	res.Ligne = ligne
	return res, nil
}

// Valider TERMINE -> VALIDE: poste un AJUSTEMENT par ligne comptée à écart non
// nul. Chaque ligne est sa propre unité atomique: en cas d'échec partiel, les
// ajustements déjà postés restent appliqués, la session reste TERMINE et
// l'erreur liste précisément les lignes en échec. Le rejeu ignore les lignes
// dont l'ajustement a déjà été posté (suivi par l'état de la ligne, pas
// redérivé de l'écart). Valider une session déjà VALIDE ne réapplique rien.
func (uc *UseCase) Valider(ctx context.Context, inventaireID, acteur string) (*entity.Inventaire, error) {
	mu := uc.verrou(inventaireID)
	mu.Lock()
	defer mu.Unlock()

	inv, err := uc.get(inventaireID)
	if err != nil {
		return nil, err
	}
	if inv.Statut == entity.InventaireValide {
		uc.verrous.Delete(inventaireID)
		return inv, &domain.TransitionError{Entite: "inventaire", De: inv.Statut, Vers: entity.InventaireValide}
	}
	if inv.Statut != entity.InventaireTermine {
		return nil, &domain.TransitionError{Entite: "inventaire", De: inv.Statut, Vers: entity.InventaireValide}
	}

	var echecs []domain.LigneEchec
	for _, ligne := range inv.Lignes {
		ecart, comptee := ligne.Ecart()
		if !comptee || ecart.IsZero() || ligne.AjustementApplique {
			continue
		}
		mvt, err := uc.engine.ApplyMovement(ctx, ligne.LotID, entity.MouvementAJUSTEMENT, ecart, stock.MovementContext{
			Reference:   inv.ID,
			Description: fmt.Sprintf("ajustement d'inventaire %s: %s", inv.TypeInventaire, ligne.Commentaire),
			Acteur:      acteur,
		})
		if err != nil {
			echecs = append(echecs, domain.LigneEchec{LigneID: ligne.ID, Cause: err})
			continue
		}
		ligne.AjustementApplique = true
		ligne.AjustementMvtID = mvt.ID
		if err := uc.inventaires.UpdateLigne(ligne); err != nil {
			// L'ajustement est posté mais le marquage a échoué: remonter la
			// ligne pour que l'appelant constate l'état avant tout rejeu.
			echecs = append(echecs, domain.LigneEchec{LigneID: ligne.ID, Cause: err})
		}
	}

	if len(echecs) > 0 {
		return inv, &domain.PartialValidationError{InventaireID: inv.ID, Echecs: echecs}
	}
	if err := uc.inventaires.UpdateStatut(inv.ID, entity.InventaireTermine, entity.InventaireValide); err != nil {
		return nil, err
	}
	// État terminal: un éventuel appelant en attente relira VALIDE et
	// n'appliquera rien, le verrou n'a plus de raison de survivre.
	uc.verrous.Delete(inventaireID)
	return uc.get(inventaireID)
}

// UpdateNotes remplace les notes libres d'une session. Refusé sur un état
// terminal: une session figée ne se commente plus.
func (uc *UseCase) UpdateNotes(ctx context.Context, inventaireID, notes string) (*entity.Inventaire, error) {
	inv, err := uc.get(inventaireID)
	if err != nil {
		return nil, err
	}
	if inv.Statut == entity.InventaireValide || inv.Statut == entity.InventaireAnnule {
		return nil, &domain.TransitionError{Entite: "inventaire", De: inv.Statut, Vers: inv.Statut}
	}
	if err := uc.inventaires.UpdateNotes(inv.ID, notes); err != nil {
		return nil, err
	}
	return uc.get(inventaireID)
}

// GetResume avancement dérivé de la session.
func (uc *UseCase) GetResume(ctx context.Context, inventaireID string) (*Resume, error) {
	inv, err := uc.get(inventaireID)
	if err != nil {
		return nil, err
	}
	r := &Resume{
		InventaireID: inv.ID,
		Statut:       inv.Statut,
		TotalLignes:  len(inv.Lignes),
		EcartTotal:   decimal.Zero,
	}
	for _, ligne := range inv.Lignes {
		if ecart, comptee := ligne.Ecart(); comptee {
			r.LignesComptees++
			r.EcartTotal = r.EcartTotal.Add(ecart)
		} else {
			r.LignesOuvertes = append(r.LignesOuvertes, ligne.ID)
		}
		if ligne.AjustementApplique {
			r.LignesAjustees++
		}
	}
	return r, nil
}

// Get renvoie une session avec ses lignes.
func (uc *UseCase) Get(ctx context.Context, inventaireID string) (*entity.Inventaire, error) {
	return uc.get(inventaireID)
}

// List liste les sessions selon le filtre.
func (uc *UseCase) List(ctx context.Context, f repository.InventaireFilter) ([]*entity.Inventaire, error) {
	return uc.inventaires.List(f)
}

func (uc *UseCase) get(id string) (*entity.Inventaire, error) {
	inv, err := uc.inventaires.GetByID(id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, fmt.Errorf("%w: inventaire %s", domain.ErrNotFound, id)
	}
	return inv, nil
}

// transition applique une transition gardée de -> vers et renvoie la session à
// jour; sur garde violée, TransitionError avec l'état réellement observé.
func (uc *UseCase) transition(id, de, vers string) (*entity.Inventaire, error) {
	inv, err := uc.get(id)
	if err != nil {
		return nil, err
	}
	if inv.Statut != de {
		return nil, &domain.TransitionError{Entite: "inventaire", De: inv.Statut, Vers: vers}
	}
	if err := uc.inventaires.UpdateStatut(id, de, vers); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			cur, gerr := uc.get(id)
			if gerr == nil {
				return nil, &domain.TransitionError{Entite: "inventaire", De: cur.Statut, Vers: vers}
			}
		}
		return nil, err
	}
	return uc.get(id)
}
