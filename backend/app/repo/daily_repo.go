package repo

import (
	"dia-relay/backend/app/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DailyRepository struct{ db *gorm.DB }

func NewDailyRepository(db *gorm.DB) *DailyRepository { return &DailyRepository{db: db} }

func (r *DailyRepository) WithTx(tx *gorm.DB) *DailyRepository { return &DailyRepository{db: tx} }

// UpsertMany replaces each row keyed by (date, name). Keys must be unique.
func (r *DailyRepository) UpsertMany(rows []models.DailyDia) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}, {Name: "name"}},
		UpdateAll: true,
	}).Create(&rows).Error
}

// ListByDates returns the rows of the given days ordered by day then name.
func (r *DailyRepository) ListByDates(dates []string) ([]models.DailyDia, error) {
	var out []models.DailyDia
	if len(dates) == 0 {
		return out, nil
	}
	err := r.db.Where("date IN ?", dates).Order("date ASC, name ASC").Find(&out).Error
	return out, err
}
