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

var _ repository.ArticleRepository = (*ArticleRepo)(nil)

// ArticleRepo lecture du catalogue d'articles sur PostgreSQL.
type ArticleRepo struct {
	q Querier
}

// NewArticleRepository construit l'adaptateur. Passer un pool ou une tx.
func NewArticleRepository(q Querier) *ArticleRepo {
	return &ArticleRepo{q: q}
}

const articleColonnes = `id, code, designation, unite, seuil_alerte, seuil_critique, created_at`

func scanArticle(row pgx.Row) (*entity.Article, error) {
	var a entity.Article
	err := row.Scan(&a.ID, &a.Code, &a.Designation, &a.Unite, &a.SeuilAlerte, &a.SeuilCritique, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create insère un article (amorçage uniquement, le catalogue est externe).
func (r *ArticleRepo) Create(a *entity.Article) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	query := `
		INSERT INTO articles (` + articleColonnes + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		a.ID, a.Code, a.Designation, a.Unite, a.SeuilAlerte, a.SeuilCritique, a.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("create article: %w", err)
	}
	return nil
}

// GetByID renvoie un article par ID, nil si absent.
func (r *ArticleRepo) GetByID(id string) (*entity.Article, error) {
	query := `SELECT ` + articleColonnes + ` FROM articles WHERE id = $1`
	a, err := scanArticle(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get article: %w", err)
	}
	return a, nil
}

// List liste le catalogue par code.
func (r *ArticleRepo) List(limit, offset int) ([]*entity.Article, error) {
	query := `SELECT ` + articleColonnes + ` FROM articles ORDER BY code`
	var args []any
	if limit > 0 {
		query += " LIMIT $1 OFFSET $2"
		args = append(args, limit, offset)
	}
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()
	var out []*entity.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
