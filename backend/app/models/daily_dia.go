package models

// DailyDia keeps the last report of each agent per calendar day.
type DailyDia struct {
	Date    string `gorm:"primaryKey;size:10" json:"date"` // YYYY-MM-DD
	Name    string `gorm:"primaryKey;size:191" json:"name"`
	IP      string `gorm:"size:64" json:"ip"`
	Game    string `gorm:"size:128" json:"game"`
	Server  string `gorm:"size:128" json:"server"`
	Dia     int64  `json:"dia"`
	Status  string `gorm:"size:32" json:"status"`
	Message string `gorm:"type:text" json:"message"`
}

func (DailyDia) TableName() string { return "daily_dia" }

// DateLayout is the calendar-day key format of daily_dia.
const DateLayout = "2006-01-02"
