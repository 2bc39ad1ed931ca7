package repository

import "github.com/adiallo/labostock-api/internal/domain/entity"

// SortieFilter critères de listing des sorties.
type SortieFilter struct {
	LotID  string
	Statut string
	Limit  int
	Offset int
}

// SortieRepository persistance des demandes de sortie. Update ne touche que les
// champs d'approbation/annulation; la quantité d'une sortie ne change jamais.
// UpdateStatut est la transition gardée: elle n'écrit que si le statut stocké
// vaut encore `de` et renvoie ErrConflict sinon. C'est elle qui arbitre les
// passages vers un état terminal, jamais Update.
type SortieRepository interface {
	Create(s *entity.Sortie) error
	GetByID(id string) (*entity.Sortie, error)
	List(f SortieFilter) ([]*entity.Sortie, error)
	Update(s *entity.Sortie) error
	UpdateStatut(id, de, vers string) error
}
