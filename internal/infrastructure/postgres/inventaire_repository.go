package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/adiallo/labostock-api/internal/domain"
	"github.com/adiallo/labostock-api/internal/domain/entity"
	"github.com/adiallo/labostock-api/internal/domain/repository"
)

var _ repository.InventaireRepository = (*InventaireRepo)(nil)

// InventaireRepo persistance des sessions d'inventaire et de leurs lignes.
type InventaireRepo struct {
	q Querier
}

// NewInventaireRepository construit l'adaptateur. Passer un pool ou une tx.
func NewInventaireRepository(q Querier) *InventaireRepo {
	return &InventaireRepo{q: q}
}

const inventaireColonnes = `id, type_inventaire, emplacement, statut, date_debut, date_fin,
		responsable, notes, created_at, updated_at`

const ligneColonnes = `id, inventaire_id, article_id, lot_id, quantite_theorique, quantite_comptee,
		compte_par, date_comptage, commentaire, ajustement_applique, ajustement_mvt_id`

func scanInventaire(row pgx.Row) (*entity.Inventaire, error) {
	var inv entity.Inventaire
	err := row.Scan(
		&inv.ID, &inv.TypeInventaire, &inv.Emplacement, &inv.Statut, &inv.DateDebut, &inv.DateFin,
		&inv.Responsable, &inv.Notes, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func scanLigne(row pgx.Row) (*entity.LigneInventaire, error) {
	var l entity.LigneInventaire
	err := row.Scan(
		&l.ID, &l.InventaireID, &l.ArticleID, &l.LotID, &l.QuantiteTheorique, &l.QuantiteComptee,
		&l.ComptePar, &l.DateComptage, &l.Commentaire, &l.AjustementApplique, &l.AjustementMvtID,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Create persiste la session et ses lignes figées.
func (r *InventaireRepo) Create(inv *entity.Inventaire) error {
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	query := `
		INSERT INTO inventaires (` + inventaireColonnes + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(context.Background(), query,
		inv.ID, inv.TypeInventaire, inv.Emplacement, inv.Statut, inv.DateDebut, inv.DateFin,
		inv.Responsable, inv.Notes, inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("create inventaire: %w", err)
	}
	for _, l := range inv.Lignes {
		if l.ID == "" {
			l.ID = uuid.New().String()
		}
		lq := `
			INSERT INTO lignes_inventaire (` + ligneColonnes + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
		_, err := r.q.Exec(context.Background(), lq,
			l.ID, inv.ID, l.ArticleID, l.LotID, l.QuantiteTheorique, l.QuantiteComptee,
			l.ComptePar, l.DateComptage, l.Commentaire, l.AjustementApplique, l.AjustementMvtID,
		)
		if err != nil {
			return fmt.Errorf("create ligne inventaire: %w", err)
		}
	}
	return nil
}

// GetByID renvoie une session avec ses lignes, nil si absente.
func (r *InventaireRepo) GetByID(id string) (*entity.Inventaire, error) {
	query := `SELECT ` + inventaireColonnes + ` FROM inventaires WHERE id = $1`
	inv, err := scanInventaire(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inventaire: %w", err)
	}

	rows, err := r.q.Query(context.Background(),
		`SELECT `+ligneColonnes+` FROM lignes_inventaire WHERE inventaire_id = $1 ORDER BY lot_id`, id)
	if err != nil {
		return nil, fmt.Errorf("list lignes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		l, err := scanLigne(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ligne: %w", err)
		}
		inv.Lignes = append(inv.Lignes, l)
	}
	return inv, rows.Err()
}

// List liste les sessions (sans leurs lignes), des plus récentes aux plus
// anciennes.
func (r *InventaireRepo) List(f repository.InventaireFilter) ([]*entity.Inventaire, error) {
	query := `SELECT ` + inventaireColonnes + ` FROM inventaires WHERE 1=1`
	var args []any
	pos := 1
	if f.Statut != "" {
		query += fmt.Sprintf(" AND statut = $%d", pos)
		args = append(args, f.Statut)
		pos++
	}
	if f.Type != "" {
		query += fmt.Sprintf(" AND type_inventaire = $%d", pos)
		args = append(args, f.Type)
		pos++
	}
	query += " ORDER BY created_at DESC"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", pos, pos+1)
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list inventaires: %w", err)
	}
	defer rows.Close()
	var out []*entity.Inventaire
	for rows.Next() {
		inv, err := scanInventaire(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inventaire: %w", err)
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

// UpdateStatut transition gardée: n'écrit que si le statut stocké vaut encore
// `de`, sinon ErrConflict. Fige date_fin au passage en TERMINE.
func (r *InventaireRepo) UpdateStatut(id, de, vers string) error {
	query := `
		UPDATE inventaires
		SET statut = $3, updated_at = now(),
		    date_fin = CASE WHEN $3 = $4 AND date_fin IS NULL THEN now() ELSE date_fin END
		WHERE id = $1 AND statut = $2`
	tag, err := r.q.Exec(context.Background(), query, id, de, vers, entity.InventaireTermine)
	if err != nil {
		return fmt.Errorf("update statut inventaire: %w", err)
	}
	if tag.RowsAffected() == 0 {
		cur, gerr := r.GetByID(id)
		if gerr != nil {
			return gerr
		}
		if cur == nil {
			return domain.ErrNotFound
		}
		return domain.ErrConflict
	}
	return nil
}

// UpdateNotes met à jour les notes libres.
func (r *InventaireRepo) UpdateNotes(id, notes string) error {
	tag, err := r.q.Exec(context.Background(),
		`UPDATE inventaires SET notes = $2, updated_at = now() WHERE id = $1`, id, notes)
	if err != nil {
		return fmt.Errorf("update notes: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetLigne renvoie une ligne d'une session, nil si absente; ErrNotFound si la
// session elle-même n'existe pas.
func (r *InventaireRepo) GetLigne(inventaireID, ligneID string) (*entity.LigneInventaire, error) {
	var exists bool
	err := r.q.QueryRow(context.Background(),
		`SELECT EXISTS(SELECT 1 FROM inventaires WHERE id = $1)`, inventaireID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check inventaire: %w", err)
	}
	if !exists {
		return nil, domain.ErrNotFound
	}
	query := `SELECT ` + ligneColonnes + ` FROM lignes_inventaire WHERE inventaire_id = $1 AND id = $2`
	l, err := scanLigne(r.q.QueryRow(context.Background(), query, inventaireID, ligneID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get ligne: %w", err)
	}
	return l, nil
}

// UpdateLigne met à jour comptage et marquage d'ajustement d'une ligne. La
// quantité théorique n'est jamais réécrite.
func (r *InventaireRepo) UpdateLigne(l *entity.LigneInventaire) error {
	query := `
		UPDATE lignes_inventaire
		SET quantite_comptee = $3, compte_par = $4, date_comptage = $5, commentaire = $6,
		    ajustement_applique = $7, ajustement_mvt_id = $8
		WHERE inventaire_id = $1 AND id = $2`
	tag, err := r.q.Exec(context.Background(), query,
		l.InventaireID, l.ID, l.QuantiteComptee, l.ComptePar, l.DateComptage, l.Commentaire,
		l.AjustementApplique, l.AjustementMvtID,
	)
	if err != nil {
		return fmt.Errorf("update ligne: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
