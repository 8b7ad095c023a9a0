package models

import "time"

// ClientStatus is the current snapshot of one agent; the newest report wins.
type ClientStatus struct {
	Name       string    `gorm:"primaryKey;size:191" json:"name"`
	IP         string    `gorm:"size:64" json:"ip"`
	Game       string    `gorm:"size:128" json:"game"`
	Server     string    `gorm:"size:128" json:"server"`
	Dia        int64     `json:"dia"`
	LastReport time.Time `gorm:"index" json:"last_report"`
	Status     string    `gorm:"size:32" json:"status"`
	Message    string    `gorm:"type:text" json:"message"`
}

func (ClientStatus) TableName() string { return "clients" }
