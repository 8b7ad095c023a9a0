package repo

import (
	"dia-relay/backend/app/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ClientRepository struct{ db *gorm.DB }

func NewClientRepository(db *gorm.DB) *ClientRepository { return &ClientRepository{db: db} }

// WithTx returns a repository bound to tx.
func (r *ClientRepository) WithTx(tx *gorm.DB) *ClientRepository { return &ClientRepository{db: tx} }

// UpsertMany replaces each row keyed by name. Rows must have unique names.
func (r *ClientRepository) UpsertMany(rows []models.ClientStatus) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		UpdateAll: true,
	}).Create(&rows).Error
}

func (r *ClientRepository) FindByName(name string) (*models.ClientStatus, error) {
	var c models.ClientStatus
	if err := r.db.Where("name = ?", name).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ClientRepository) ListAll() ([]models.ClientStatus, error) {
	var out []models.ClientStatus
	err := r.db.Order("last_report DESC").Find(&out).Error
	return out, err
}
