package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/adiallo/labostock-api/internal/domain/entity"
	"github.com/adiallo/labostock-api/internal/domain/repository"
)

var _ repository.MouvementRepository = (*MouvementRepo)(nil)

// MouvementRepo journal de stock sur PostgreSQL. Seule l'insertion est exposée;
// la table ne connaît ni UPDATE ni DELETE. La colonne seq est un BIGSERIAL:
// c'est elle qui ordonne les écritures, jamais l'horodatage.
type MouvementRepo struct {
	q Querier
}

// NewMouvementRepository construit l'adaptateur. Passer un pool ou une tx.
func NewMouvementRepository(q Querier) *MouvementRepo {
	return &MouvementRepo{q: q}
}

const mouvementColonnes = `id, seq, article_id, lot_id, type, quantite, quantite_avant,
		quantite_apres, reference, description, created_at, created_by`

func scanMouvement(row pgx.Row) (*entity.Mouvement, error) {
	var m entity.Mouvement
	err := row.Scan(
		&m.ID, &m.Seq, &m.ArticleID, &m.LotID, &m.Type, &m.Quantite, &m.QuantiteAvant,
		&m.QuantiteApres, &m.Reference, &m.Description, &m.CreatedAt, &m.CreatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Append insère une écriture et récupère sa séquence attribuée.
func (r *MouvementRepo) Append(m *entity.Mouvement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	query := `
		INSERT INTO mouvements_stock (id, article_id, lot_id, type, quantite, quantite_avant,
			quantite_apres, reference, description, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING seq`
	err := r.q.QueryRow(context.Background(), query,
		m.ID, m.ArticleID, m.LotID, m.Type, m.Quantite, m.QuantiteAvant,
		m.QuantiteApres, m.Reference, m.Description, m.CreatedAt, m.CreatedBy,
	).Scan(&m.Seq)
	if err != nil {
		return fmt.Errorf("append mouvement: %w", err)
	}
	return nil
}

// GetByID renvoie une écriture par ID, nil si absente.
func (r *MouvementRepo) GetByID(id string) (*entity.Mouvement, error) {
	query := `SELECT ` + mouvementColonnes + ` FROM mouvements_stock WHERE id = $1`
	m, err := scanMouvement(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get mouvement: %w", err)
	}
	return m, nil
}

// ListByLot historique d'un lot en ordre de séquence croissante.
func (r *MouvementRepo) ListByLot(lotID string) ([]*entity.Mouvement, error) {
	query := `SELECT ` + mouvementColonnes + ` FROM mouvements_stock WHERE lot_id = $1 ORDER BY seq`
	rows, err := r.q.Query(context.Background(), query, lotID)
	if err != nil {
		return nil, fmt.Errorf("list mouvements lot: %w", err)
	}
	defer rows.Close()
	var out []*entity.Mouvement
	for rows.Next() {
		m, err := scanMouvement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan mouvement: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ListByArticle historique d'un article, filtrable par type et dates.
func (r *MouvementRepo) ListByArticle(articleID string, f repository.MouvementFilter) ([]*entity.Mouvement, error) {
	query := `SELECT ` + mouvementColonnes + ` FROM mouvements_stock WHERE article_id = $1`
	args := []any{articleID}
	pos := 2
	if f.Type != "" {
		query += fmt.Sprintf(" AND type = $%d", pos)
		args = append(args, f.Type)
		pos++
	}
	if f.From != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *f.From)
		pos++
	}
	if f.To != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", pos)
		args = append(args, *f.To)
		pos++
	}
	query += " ORDER BY seq"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", pos, pos+1)
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list mouvements article: %w", err)
	}
	defer rows.Close()
	var out []*entity.Mouvement
	for rows.Next() {
		m, err := scanMouvement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan mouvement: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// SumByLot somme signée du journal d'un lot.
func (r *MouvementRepo) SumByLot(lotID string) (decimal.Decimal, error) {
	var somme decimal.Decimal
	err := r.q.QueryRow(context.Background(),
		`SELECT COALESCE(SUM(quantite), 0) FROM mouvements_stock WHERE lot_id = $1`, lotID,
	).Scan(&somme)
	if err != nil {
		return decimal.Zero, fmt.Errorf("somme journal: %w", err)
	}
	return somme, nil
}

// SumQuarantaine solde en quarantaine d'un lot (les entrées étant négatives
// sur le lot, le solde est l'opposé de la somme).
func (r *MouvementRepo) SumQuarantaine(lotID string) (decimal.Decimal, error) {
	var somme decimal.Decimal
	err := r.q.QueryRow(context.Background(),
		`SELECT COALESCE(-SUM(quantite), 0) FROM mouvements_stock
		 WHERE lot_id = $1 AND type IN ($2, $3)`,
		lotID, entity.MouvementQuarantaineEntree, entity.MouvementQuarantaineSortie,
	).Scan(&somme)
	if err != nil {
		return decimal.Zero, fmt.Errorf("solde quarantaine: %w", err)
	}
	return somme, nil
}
