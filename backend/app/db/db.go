package db

import (
	"fmt"

	"dia-relay/backend/app/models"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	Driver   string
	Path     string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// Connect opens the store. SQLite runs in WAL mode so dashboard readers do not
// block the batch writer.
func Connect(cfg Config) (*gorm.DB, error) {
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	switch cfg.Driver {
	case "", "sqlite":
		dsn := fmt.Sprintf("file:%s?_busy_timeout=30000&_journal_mode=WAL", cfg.Path)
		gdb, err := gorm.Open(sqlite.Open(dsn), gcfg)
		if err != nil {
			return nil, err
		}
		if err := gdb.Exec("PRAGMA journal_mode=WAL").Error; err != nil {
			return nil, fmt.Errorf("enable wal: %w", err)
		}
		return gdb, nil
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local", cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName)
		return gorm.Open(mysql.Open(dsn), gcfg)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.Driver)
	}
}

// Migrate creates or updates the hub tables.
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(&models.ClientStatus{}, &models.DailyDia{}, &models.AgentCommand{})
}
