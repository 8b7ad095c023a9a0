package repo

import (
	"time"

	"dia-relay/backend/app/models"

	"gorm.io/gorm"
)

type AgentCommandRepository struct {
	db *gorm.DB
}

func NewAgentCommandRepository(db *gorm.DB) *AgentCommandRepository {
	return &AgentCommandRepository{db: db}
}

func (r *AgentCommandRepository) Create(cmd *models.AgentCommand) error {
	return r.db.Create(cmd).Error
}

// MarkSent records that the transport accepted the command.
func (r *AgentCommandRepository) MarkSent(id uint, at time.Time) error {
	return r.db.Model(&models.AgentCommand{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":  models.CommandSent,
			"sent_at": at,
		}).Error
}

// MarkFailed stores the connect/send error.
func (r *AgentCommandRepository) MarkFailed(id uint, lastError string) error {
	if len(lastError) > 512 {
		lastError = lastError[:512]
	}
	return r.db.Model(&models.AgentCommand{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     models.CommandFailed,
			"last_error": lastError,
		}).Error
}

// ListByAgent returns the newest commands first; an empty name lists all agents.
func (r *AgentCommandRepository) ListByAgent(name string, limit int) ([]models.AgentCommand, error) {
	if limit <= 0 {
		limit = 50
	}
	q := r.db.Order("id DESC").Limit(limit)
	if name != "" {
		q = q.Where("agent_name = ?", name)
	}
	var cmds []models.AgentCommand
	if err := q.Find(&cmds).Error; err != nil {
		return nil, err
	}
	return cmds, nil
}
