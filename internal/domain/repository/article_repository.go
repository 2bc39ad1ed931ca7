package repository

import "github.com/adiallo/labostock-api/internal/domain/entity"

// ArticleRepository lecture du catalogue d'articles. Le catalogue est géré par
// un collaborateur externe; Create n'existe que pour l'amorçage et les tests.
type ArticleRepository interface {
	Create(a *entity.Article) error
	GetByID(id string) (*entity.Article, error)
	List(limit, offset int) ([]*entity.Article, error)
}
