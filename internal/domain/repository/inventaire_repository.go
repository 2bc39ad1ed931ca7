package repository

import "github.com/adiallo/labostock-api/internal/domain/entity"

// InventaireFilter critères de listing des inventaires.
type InventaireFilter struct {
	Statut string
	Type   string
	Limit  int
	Offset int
}

// InventaireRepository persistance des sessions d'inventaire et de leurs lignes.
//
// UpdateStatut est une transition gardée: la mise à jour n'a lieu que si le
// statut stocké vaut encore `de`, sinon ErrConflict. C'est la barrière
// mono-écrivain qui empêche deux validations concurrentes de la même session.
type InventaireRepository interface {
	Create(inv *entity.Inventaire) error
	GetByID(id string) (*entity.Inventaire, error) // lignes incluses
	List(f InventaireFilter) ([]*entity.Inventaire, error)
	UpdateStatut(id, de, vers string) error
	UpdateNotes(id, notes string) error
	GetLigne(inventaireID, ligneID string) (*entity.LigneInventaire, error)
	UpdateLigne(l *entity.LigneInventaire) error
}
