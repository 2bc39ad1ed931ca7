// Package memory fournit une implémentation en mémoire des dépôts, protégée
// par mutex. Elle sert de store de démonstration (STORE_DRIVER=memory) et de
// substrat aux tests des cas d'usage: la sémantique de garde optimiste est la
// même que sous PostgreSQL.
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/adiallo/labostock-api/internal/domain"
	"github.com/adiallo/labostock-api/internal/domain/entity"
	"github.com/adiallo/labostock-api/internal/domain/repository"
)

// Store conteneur unique de toutes les tables en mémoire. Les dépôts renvoyés
// par les accesseurs partagent le même verrou; chaque opération est atomique.
type Store struct {
	mu sync.RWMutex

	articles    map[string]*entity.Article
	lots        map[string]*entity.Lot
	lotOrdre    []string // ordre d'insertion pour des listings stables
	mouvements  []*entity.Mouvement
	mvtParID    map[string]*entity.Mouvement
	seq         int64
	sorties     map[string]*entity.Sortie
	sortieOrdre []string
	inventaires map[string]*entity.Inventaire
	invOrdre    []string
}

// NewStore crée un store vide.
func NewStore() *Store {
	return &Store{
		articles:    make(map[string]*entity.Article),
		lots:        make(map[string]*entity.Lot),
		mvtParID:    make(map[string]*entity.Mouvement),
		sorties:     make(map[string]*entity.Sortie),
		inventaires: make(map[string]*entity.Inventaire),
	}
}

// Accesseurs de dépôts.
func (s *Store) Articles() repository.ArticleRepository       { return &articleRepo{s: s} }
func (s *Store) Lots() repository.LotRepository               { return &lotRepo{s: s} }
func (s *Store) Mouvements() repository.MouvementRepository   { return &mouvementRepo{s: s} }
func (s *Store) Sorties() repository.SortieRepository         { return &sortieRepo{s: s} }
func (s *Store) Inventaires() repository.InventaireRepository { return &inventaireRepo{s: s} }

// ────────────────────────────────────────────────────────────────────────────
// Articles
// ────────────────────────────────────────────────────────────────────────────

type articleRepo struct{ s *Store }

func (r *articleRepo) Create(a *entity.Article) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if _, ok := r.s.articles[a.ID]; ok {
		return domain.ErrConflict
	}
	c := *a
	r.s.articles[a.ID] = &c
	return nil
}

func (r *articleRepo) GetByID(id string) (*entity.Article, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.articles[id]
	if !ok {
		return nil, nil
	}
	c := *a
	return &c, nil
}

func (r *articleRepo) List(limit, offset int) ([]*entity.Article, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ids := make([]string, 0, len(r.s.articles))
	for id := range r.s.articles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var out []*entity.Article
	for i, id := range ids {
		if i < offset {
			continue
		}
		if limit > 0 && len(out) >= limit {
			break
		}
		c := *r.s.articles[id]
		out = append(out, &c)
	}
	return out, nil
}

// ────────────────────────────────────────────────────────────────────────────
// Lots
// ────────────────────────────────────────────────────────────────────────────

type lotRepo struct{ s *Store }

func cloneLot(l *entity.Lot) *entity.Lot {
	c := *l
	if l.DatePeremption != nil {
		d := *l.DatePeremption
		c.DatePeremption = &d
	}
	return &c
}

func (r *lotRepo) Create(lot *entity.Lot) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if lot.ID == "" {
		lot.ID = uuid.New().String()
	}
	if _, ok := r.s.lots[lot.ID]; ok {
		return domain.ErrConflict
	}
	r.s.lots[lot.ID] = cloneLot(lot)
	r.s.lotOrdre = append(r.s.lotOrdre, lot.ID)
	return nil
}

func (r *lotRepo) GetByID(id string) (*entity.Lot, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	lot, ok := r.s.lots[id]
	if !ok {
		return nil, nil
	}
	return cloneLot(lot), nil
}

func (r *lotRepo) List(f repository.LotFilter) ([]*entity.Lot, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.Lot
	skipped := 0
	for _, id := range r.s.lotOrdre {
		lot := r.s.lots[id]
		if f.ArticleID != "" && lot.ArticleID != f.ArticleID {
			continue
		}
		if f.Emplacement != "" && lot.Emplacement != f.Emplacement {
			continue
		}
		if f.PerimesAvant != nil {
			if lot.DatePeremption == nil || !lot.DatePeremption.Before(*f.PerimesAvant) {
				continue
			}
		}
		if !f.Epuises && lot.QuantiteRestante.LessThanOrEqual(decimal.Zero) {
			continue
		}
		if skipped < f.Offset {
			skipped++
			continue
		}
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
		out = append(out, cloneLot(lot))
	}
	return out, nil
}

// Adjust mutation CAS de QuantiteRestante sous verrou. Même contrat que le
// dépôt PostgreSQL: garde optimiste, plancher zéro, plafond QuantiteInitiale
// hors ajustement.
func (r *lotRepo) Adjust(id string, delta decimal.Decimal, expected *decimal.Decimal, ajustement bool) (*entity.Lot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	lot, ok := r.s.lots[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if expected != nil && !lot.QuantiteRestante.Equal(*expected) {
		return nil, domain.ErrConflict
	}
	apres := lot.QuantiteRestante.Add(delta)
	if apres.IsNegative() {
		return nil, &domain.InsufficientStockError{
			LotID:      id,
			Disponible: lot.QuantiteRestante,
			Demandee:   delta.Neg(),
		}
	}
	if !ajustement && apres.GreaterThan(lot.QuantiteInitiale) {
		return nil, domain.ErrConflict
	}
	lot.QuantiteRestante = apres
	lot.UpdatedAt = time.Now()
	return cloneLot(lot), nil
}

func (r *lotRepo) UpdateEmplacement(id, emplacement string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	lot, ok := r.s.lots[id]
	if !ok {
		return domain.ErrNotFound
	}
	lot.Emplacement = emplacement
	lot.UpdatedAt = time.Now()
	return nil
}

func (r *lotRepo) TotalRestantParArticle() (map[string]decimal.Decimal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	totaux := make(map[string]decimal.Decimal)
	for _, lot := range r.s.lots {
		totaux[lot.ArticleID] = totaux[lot.ArticleID].Add(lot.QuantiteRestante)
	}
	return totaux, nil
}

// ────────────────────────────────────────────────────────────────────────────
// Mouvements (journal en écriture seule)
// ────────────────────────────────────────────────────────────────────────────

type mouvementRepo struct{ s *Store }

func (r *mouvementRepo) Append(m *entity.Mouvement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if _, ok := r.s.mvtParID[m.ID]; ok {
		return domain.ErrConflict
	}
	r.s.seq++
	m.Seq = r.s.seq
	c := *m
	r.s.mouvements = append(r.s.mouvements, &c)
	r.s.mvtParID[m.ID] = &c
	return nil
}

func (r *mouvementRepo) GetByID(id string) (*entity.Mouvement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	m, ok := r.s.mvtParID[id]
	if !ok {
		return nil, nil
	}
	c := *m
	return &c, nil
}

func (r *mouvementRepo) ListByLot(lotID string) ([]*entity.Mouvement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.Mouvement
	// r.s.mouvements est déjà en ordre de séquence croissante.
	for _, m := range r.s.mouvements {
		if m.LotID == lotID {
			c := *m
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *mouvementRepo) ListByArticle(articleID string, f repository.MouvementFilter) ([]*entity.Mouvement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.Mouvement
	skipped := 0
	for _, m := range r.s.mouvements {
		if m.ArticleID != articleID {
			continue
		}
		if f.Type != "" && m.Type != f.Type {
			continue
		}
		if f.From != nil && m.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && m.CreatedAt.After(*f.To) {
			continue
		}
		if skipped < f.Offset {
			skipped++
			continue
		}
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
		c := *m
		out = append(out, &c)
	}
	return out, nil
}

func (r *mouvementRepo) SumByLot(lotID string) (decimal.Decimal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	somme := decimal.Zero
	for _, m := range r.s.mouvements {
		if m.LotID == lotID {
			somme = somme.Add(m.Quantite)
		}
	}
	return somme, nil
}

func (r *mouvementRepo) SumQuarantaine(lotID string) (decimal.Decimal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	somme := decimal.Zero
	for _, m := range r.s.mouvements {
		if m.LotID != lotID {
			continue
		}
		if m.Type == entity.MouvementQuarantaineEntree || m.Type == entity.MouvementQuarantaineSortie {
			somme = somme.Add(m.Quantite)
		}
	}
	// Les entrées en quarantaine sont négatives sur le lot: le solde est l'opposé.
	return somme.Neg(), nil
}

// ────────────────────────────────────────────────────────────────────────────
// Sorties
// ────────────────────────────────────────────────────────────────────────────

type sortieRepo struct{ s *Store }

func cloneSortie(s *entity.Sortie) *entity.Sortie {
	c := *s
	if s.DateValidation != nil {
		d := *s.DateValidation
		c.DateValidation = &d
	}
	return &c
}

func (r *sortieRepo) Create(s *entity.Sortie) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if _, ok := r.s.sorties[s.ID]; ok {
		return domain.ErrConflict
	}
	r.s.sorties[s.ID] = cloneSortie(s)
	r.s.sortieOrdre = append(r.s.sortieOrdre, s.ID)
	return nil
}

func (r *sortieRepo) GetByID(id string) (*entity.Sortie, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	s, ok := r.s.sorties[id]
	if !ok {
		return nil, nil
	}
	return cloneSortie(s), nil
}

func (r *sortieRepo) List(f repository.SortieFilter) ([]*entity.Sortie, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.Sortie
	skipped := 0
	for _, id := range r.s.sortieOrdre {
		s := r.s.sorties[id]
		if f.LotID != "" && s.LotID != f.LotID {
			continue
		}
		if f.Statut != "" && s.Statut != f.Statut {
			continue
		}
		if skipped < f.Offset {
			skipped++
			continue
		}
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
		out = append(out, cloneSortie(s))
	}
	return out, nil
}

func (r *sortieRepo) Update(s *entity.Sortie) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.sorties[s.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.sorties[s.ID] = cloneSortie(s)
	return nil
}

// UpdateStatut transition gardée: n'écrit que si le statut stocké vaut encore
// `de`, sinon ErrConflict.
func (r *sortieRepo) UpdateStatut(id, de, vers string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	s, ok := r.s.sorties[id]
	if !ok {
		return domain.ErrNotFound
	}
	if s.Statut != de {
		return domain.ErrConflict
	}
	s.Statut = vers
	return nil
}

// ────────────────────────────────────────────────────────────────────────────
// Inventaires
// ────────────────────────────────────────────────────────────────────────────

type inventaireRepo struct{ s *Store }

func cloneLigne(l *entity.LigneInventaire) *entity.LigneInventaire {
	c := *l
	if l.QuantiteComptee != nil {
		q := *l.QuantiteComptee
		c.QuantiteComptee = &q
	}
	if l.DateComptage != nil {
		d := *l.DateComptage
		c.DateComptage = &d
	}
	return &c
}

func cloneInventaire(inv *entity.Inventaire) *entity.Inventaire {
	c := *inv
	if inv.DateFin != nil {
		d := *inv.DateFin
		c.DateFin = &d
	}
	c.Lignes = make([]*entity.LigneInventaire, len(inv.Lignes))
	for i, l := range inv.Lignes {
		c.Lignes[i] = cloneLigne(l)
	}
	return &c
}

func (r *inventaireRepo) Create(inv *entity.Inventaire) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	if _, ok := r.s.inventaires[inv.ID]; ok {
		return domain.ErrConflict
	}
	r.s.inventaires[inv.ID] = cloneInventaire(inv)
	r.s.invOrdre = append(r.s.invOrdre, inv.ID)
	return nil
}

func (r *inventaireRepo) GetByID(id string) (*entity.Inventaire, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	inv, ok := r.s.inventaires[id]
	if !ok {
		return nil, nil
	}
	return cloneInventaire(inv), nil
}

func (r *inventaireRepo) List(f repository.InventaireFilter) ([]*entity.Inventaire, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.Inventaire
	skipped := 0
	for _, id := range r.s.invOrdre {
		inv := r.s.inventaires[id]
		if f.Statut != "" && inv.Statut != f.Statut {
			continue
		}
		if f.Type != "" && inv.TypeInventaire != f.Type {
			continue
		}
		if skipped < f.Offset {
			skipped++
			continue
		}
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
		out = append(out, cloneInventaire(inv))
	}
	return out, nil
}

// UpdateStatut transition gardée: n'écrit que si le statut stocké vaut encore
// `de`, sinon ErrConflict. Fige DateFin au passage en TERMINE.
func (r *inventaireRepo) UpdateStatut(id, de, vers string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.inventaires[id]
	if !ok {
		return domain.ErrNotFound
	}
	if inv.Statut != de {
		return domain.ErrConflict
	}
	inv.Statut = vers
	inv.UpdatedAt = time.Now()
	if vers == entity.InventaireTermine && inv.DateFin == nil {
		now := time.Now()
		inv.DateFin = &now
	}
	return nil
}

func (r *inventaireRepo) UpdateNotes(id, notes string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.inventaires[id]
	if !ok {
		return domain.ErrNotFound
	}
	inv.Notes = notes
	inv.UpdatedAt = time.Now()
	return nil
}

func (r *inventaireRepo) GetLigne(inventaireID, ligneID string) (*entity.LigneInventaire, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	inv, ok := r.s.inventaires[inventaireID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	for _, l := range inv.Lignes {
		if l.ID == ligneID {
			return cloneLigne(l), nil
		}
	}
	return nil, nil
}

func (r *inventaireRepo) UpdateLigne(l *entity.LigneInventaire) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.inventaires[l.InventaireID]
	if !ok {
		return domain.ErrNotFound
	}
	for i, cur := range inv.Lignes {
		if cur.ID == l.ID {
			inv.Lignes[i] = cloneLigne(l)
			return nil
		}
	}
	return domain.ErrNotFound
}
