package ingest

import (
	"fmt"

	"dia-relay/backend/app/models"
	"dia-relay/backend/app/repo"

	"gorm.io/gorm"
)

const StatusAlive = "alive"

// GormStore writes a batch to the snapshot and daily tables in one transaction.
type GormStore struct {
	db      *gorm.DB
	clients *repo.ClientRepository
	daily   *repo.DailyRepository
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{
		db:      db,
		clients: repo.NewClientRepository(db),
		daily:   repo.NewDailyRepository(db),
	}
}

func (s *GormStore) SaveBatch(records []Record) error {
	if len(records) == 0 {
		return nil
	}
	snap := SnapshotRows(records)
	days := DailyRows(records)
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.clients.WithTx(tx).UpsertMany(snap); err != nil {
			return fmt.Errorf("upsert clients: %w", err)
		}
		if err := s.daily.WithTx(tx).UpsertMany(days); err != nil {
			return fmt.Errorf("upsert daily_dia: %w", err)
		}
		return nil
	})
}

// SnapshotRows keeps the last record of each agent, in first-seen order.
func SnapshotRows(records []Record) []models.ClientStatus {
	idx := make(map[string]int, len(records))
	out := make([]models.ClientStatus, 0, len(records))
	for _, r := range records {
		row := models.ClientStatus{
			Name:       r.Name,
			IP:         r.IP,
			Game:       r.Game,
			Server:     r.GameServer,
			Dia:        r.Dia,
			LastReport: r.ReceivedAt,
			Status:     StatusAlive,
			Message:    r.Message,
		}
		if i, ok := idx[r.Name]; ok {
			out[i] = row
			continue
		}
		idx[r.Name] = len(out)
		out = append(out, row)
	}
	return out
}

// DailyRows keeps the last record of each (day, agent) pair. The day is the
// local calendar date the hub received the report.
func DailyRows(records []Record) []models.DailyDia {
	type key struct{ date, name string }
	idx := make(map[key]int, len(records))
	out := make([]models.DailyDia, 0, len(records))
	for _, r := range records {
		k := key{r.ReceivedAt.Local().Format(models.DateLayout), r.Name}
		row := models.DailyDia{
			Date:    k.date,
			Name:    r.Name,
			IP:      r.IP,
			Game:    r.Game,
			Server:  r.GameServer,
			Dia:     r.Dia,
			Status:  StatusAlive,
			Message: r.Message,
		}
		if i, ok := idx[k]; ok {
			out[i] = row
			continue
		}
		idx[k] = len(out)
		out = append(out, row)
	}
	return out
}
