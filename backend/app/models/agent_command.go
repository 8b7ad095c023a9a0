package models

import "time"

type CommandStatus string

const (
	CommandPending CommandStatus = "pending"
	CommandSent    CommandStatus = "sent"
	CommandFailed  CommandStatus = "failed"
)

// AgentCommand records one command relayed to an agent. Sent only means the
// transport accepted the bytes; agents never acknowledge.
type AgentCommand struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	RequestID string        `gorm:"size:36;uniqueIndex" json:"request_id"`
	AgentName string        `gorm:"size:191;index" json:"agent_name"`
	AgentIP   string        `gorm:"size:64" json:"agent_ip"`
	Command   string        `gorm:"type:text" json:"command"`
	Status    CommandStatus `gorm:"size:32;index" json:"status"`
	LastError string        `gorm:"size:512" json:"last_error,omitempty"`
	CreatedAt time.Time     `gorm:"autoCreateTime" json:"created_at"`
	SentAt    *time.Time    `json:"sent_at,omitempty"`
}
