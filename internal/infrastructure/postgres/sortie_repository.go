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

var _ repository.SortieRepository = (*SortieRepo)(nil)

// SortieRepo persistance des sorties sur PostgreSQL.
type SortieRepo struct {
	q Querier
}

// NewSortieRepository construit l'adaptateur. Passer un pool ou une tx.
func NewSortieRepository(q Querier) *SortieRepo {
	return &SortieRepo{q: q}
}

const sortieColonnes = `id, lot_id, article_id, type_sortie, quantite, motif, statut, valide,
		demande_par, valide_par, date_validation, motif_annulation, created_at`

func scanSortie(row pgx.Row) (*entity.Sortie, error) {
	var s entity.Sortie
	err := row.Scan(
		&s.ID, &s.LotID, &s.ArticleID, &s.TypeSortie, &s.Quantite, &s.Motif, &s.Statut, &s.Valide,
		&s.DemandePar, &s.ValidePar, &s.DateValidation, &s.MotifAnnulation, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create persiste une sortie.
func (r *SortieRepo) Create(s *entity.Sortie) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	query := `
		INSERT INTO sorties (` + sortieColonnes + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(context.Background(), query,
		s.ID, s.LotID, s.ArticleID, s.TypeSortie, s.Quantite, s.Motif, s.Statut, s.Valide,
		s.DemandePar, s.ValidePar, s.DateValidation, s.MotifAnnulation, s.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("create sortie: %w", err)
	}
	return nil
}

// GetByID renvoie une sortie par ID, nil si absente.
func (r *SortieRepo) GetByID(id string) (*entity.Sortie, error) {
	query := `SELECT ` + sortieColonnes + ` FROM sorties WHERE id = $1`
	s, err := scanSortie(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sortie: %w", err)
	}
	return s, nil
}

// List liste les sorties selon le filtre, des plus récentes aux plus anciennes.
func (r *SortieRepo) List(f repository.SortieFilter) ([]*entity.Sortie, error) {
	query := `SELECT ` + sortieColonnes + ` FROM sorties WHERE 1=1`
	var args []any
	pos := 1
	if f.LotID != "" {
		query += fmt.Sprintf(" AND lot_id = $%d", pos)
		args = append(args, f.LotID)
		pos++
	}
	if f.Statut != "" {
		query += fmt.Sprintf(" AND statut = $%d", pos)
		args = append(args, f.Statut)
		pos++
	}
	query += " ORDER BY created_at DESC"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", pos, pos+1)
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sorties: %w", err)
	}
	defer rows.Close()
	var out []*entity.Sortie
	for rows.Next() {
		s, err := scanSortie(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sortie: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Update met à jour les champs d'approbation/annulation d'une sortie. La
// quantité et le lot ne changent jamais après création.
func (r *SortieRepo) Update(s *entity.Sortie) error {
	query := `
		UPDATE sorties
		SET statut = $2, valide = $3, valide_par = $4, date_validation = $5, motif_annulation = $6
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		s.ID, s.Statut, s.Valide, s.ValidePar, s.DateValidation, s.MotifAnnulation,
	)
	if err != nil {
		return fmt.Errorf("update sortie: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateStatut transition gardée: n'écrit que si le statut stocké vaut encore
// `de`, sinon ErrConflict.
func (r *SortieRepo) UpdateStatut(id, de, vers string) error {
	query := `UPDATE sorties SET statut = $3 WHERE id = $1 AND statut = $2`
	tag, err := r.q.Exec(context.Background(), query, id, de, vers)
	if err != nil {
		return fmt.Errorf("update statut sortie: %w", err)
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
