package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/adiallo/labostock-api/internal/domain"
	"github.com/adiallo/labostock-api/internal/domain/entity"
	"github.com/adiallo/labostock-api/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepo)(nil)

// LotRepo implémentation de LotRepository sur PostgreSQL (pool ou tx).
type LotRepo struct {
	q Querier
}

// NewLotRepository construit l'adaptateur. Passer un pool ou une tx (Querier).
func NewLotRepository(q Querier) *LotRepo {
	return &LotRepo{q: q}
}

const lotColonnes = `id, numero, article_id, quantite_initiale, quantite_restante, unite,
		fournisseur, emplacement, date_peremption, date_reception, created_at, updated_at`

func scanLot(row pgx.Row) (*entity.Lot, error) {
	var l entity.Lot
	err := row.Scan(
		&l.ID, &l.Numero, &l.ArticleID, &l.QuantiteInitiale, &l.QuantiteRestante, &l.Unite,
		&l.Fournisseur, &l.Emplacement, &l.DatePeremption, &l.DateReception, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Create persiste un lot.
func (r *LotRepo) Create(lot *entity.Lot) error {
	if lot.ID == "" {
		lot.ID = uuid.New().String()
	}
	query := `
		INSERT INTO lots (` + lotColonnes + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(context.Background(), query,
		lot.ID, lot.Numero, lot.ArticleID, lot.QuantiteInitiale, lot.QuantiteRestante, lot.Unite,
		lot.Fournisseur, lot.Emplacement, lot.DatePeremption, lot.DateReception, lot.CreatedAt, lot.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("create lot: %w", err)
	}
	return nil
}

// GetByID renvoie un lot par ID, nil si absent.
func (r *LotRepo) GetByID(id string) (*entity.Lot, error) {
	query := `SELECT ` + lotColonnes + ` FROM lots WHERE id = $1`
	lot, err := scanLot(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lot: %w", err)
	}
	return lot, nil
}

// List liste les lots selon le filtre, dans l'ordre de réception.
func (r *LotRepo) List(f repository.LotFilter) ([]*entity.Lot, error) {
	query := `SELECT ` + lotColonnes + ` FROM lots WHERE 1=1`
	var args []any
	pos := 1
	if f.ArticleID != "" {
		query += fmt.Sprintf(" AND article_id = $%d", pos)
		args = append(args, f.ArticleID)
		pos++
	}
	if f.Emplacement != "" {
		query += fmt.Sprintf(" AND emplacement = $%d", pos)
		args = append(args, f.Emplacement)
		pos++
	}
	if f.PerimesAvant != nil {
		query += fmt.Sprintf(" AND date_peremption IS NOT NULL AND date_peremption < $%d", pos)
		args = append(args, *f.PerimesAvant)
		pos++
	}
	if !f.Epuises {
		query += " AND quantite_restante > 0"
	}
	query += " ORDER BY date_reception, id"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", pos, pos+1)
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list lots: %w", err)
	}
	defer rows.Close()
	var out []*entity.Lot
	for rows.Next() {
		lot, err := scanLot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lot: %w", err)
		}
		out = append(out, lot)
	}
	return out, rows.Err()
}

// Adjust applique le delta sous garde optimiste, plancher zéro et plafond
// QuantiteInitiale (levé quand ajustement est vrai) dans un seul UPDATE
// conditionnel; l'absence de ligne mise à jour est requalifiée en relisant le
// lot.
func (r *LotRepo) Adjust(id string, delta decimal.Decimal, expected *decimal.Decimal, ajustement bool) (*entity.Lot, error) {
	query := `
		UPDATE lots
		SET quantite_restante = quantite_restante + $2, updated_at = now()
		WHERE id = $1
		  AND ($3::numeric IS NULL OR quantite_restante = $3)
		  AND quantite_restante + $2 >= 0
		  AND ($4 OR quantite_restante + $2 <= quantite_initiale)
		RETURNING ` + lotColonnes
	lot, err := scanLot(r.q.QueryRow(context.Background(), query, id, delta, expected, ajustement))
	if err == nil {
		return lot, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("adjust lot: %w", err)
	}

	// Aucune ligne touchée: requalifier la cause.
	cur, gerr := r.GetByID(id)
	if gerr != nil {
		return nil, gerr
	}
	if cur == nil {
		return nil, domain.ErrNotFound
	}
	if expected != nil && !cur.QuantiteRestante.Equal(*expected) {
		return nil, domain.ErrConflict
	}
	if cur.QuantiteRestante.Add(delta).IsNegative() {
		return nil, &domain.InsufficientStockError{
			LotID:      id,
			Disponible: cur.QuantiteRestante,
			Demandee:   delta.Neg(),
		}
	}
	// Reste le plafond, ou une course perdue entre l'UPDATE et la relecture.
	return nil, domain.ErrConflict
}

// UpdateEmplacement change l'emplacement d'un lot.
func (r *LotRepo) UpdateEmplacement(id, emplacement string) error {
	tag, err := r.q.Exec(context.Background(),
		`UPDATE lots SET emplacement = $2, updated_at = now() WHERE id = $1`, id, emplacement)
	if err != nil {
		return fmt.Errorf("update emplacement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// TotalRestantParArticle agrège la quantité restante par article.
func (r *LotRepo) TotalRestantParArticle() (map[string]decimal.Decimal, error) {
	rows, err := r.q.Query(context.Background(),
		`SELECT article_id, COALESCE(SUM(quantite_restante), 0) FROM lots GROUP BY article_id`)
	if err != nil {
		return nil, fmt.Errorf("totaux par article: %w", err)
	}
	defer rows.Close()
	totaux := make(map[string]decimal.Decimal)
	for rows.Next() {
		var articleID string
		var total decimal.Decimal
		if err := rows.Scan(&articleID, &total); err != nil {
			return nil, fmt.Errorf("scan total: %w", err)
		}
		totaux[articleID] = total
	}
	return totaux, rows.Err()
}
