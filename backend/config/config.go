package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/gookit/validate"
	"github.com/spf13/viper"
)

type TCP struct {
	Host string
	Port int `validate:"required|min:1|max:65535"`
}

type Ingest struct {
	TCP             `mapstructure:",squash"`
	MaxPayloadBytes int           `mapstructure:"max_payload_bytes" validate:"required|min:1"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
}

type DB struct {
	Driver string `validate:"required|in:sqlite,mysql"`
	Path   string
	Host   string
	Port   int
	User   string
	Pass   string
	Name   string
}

type Batch struct {
	Window      time.Duration `validate:"required"`
	MaxSize     int           `mapstructure:"max_size" validate:"required|min:1"`
	PollTimeout time.Duration `mapstructure:"poll_timeout" validate:"required"`
}

type Watchdog struct {
	Interval        time.Duration `validate:"required"`
	ReportInterval  time.Duration `mapstructure:"report_interval" validate:"required"`
	AlertMultiplier float64       `mapstructure:"alert_multiplier" validate:"required"`
}

// AlertAfter is the silence after which an agent is reported stale.
func (w Watchdog) AlertAfter() time.Duration {
	return time.Duration(float64(w.ReportInterval) * w.AlertMultiplier)
}

type Relay struct {
	AgentPort int           `mapstructure:"agent_port" validate:"required|min:1|max:65535"`
	Timeout   time.Duration `validate:"required"`
}

type Log struct {
	Level string `validate:"in:trace,debug,info,warn,error"`
	Path  string
}

type Metrics struct {
	Enabled bool
}

type Cache struct {
	Enabled bool
	SizeMB  int `mapstructure:"size_mb"`
	TTLSec  int `mapstructure:"ttl_sec"`
}

type Redis struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	Channel  string
}

type JWT struct {
	Secret string `validate:"required"`
	Issuer string
	ExpMin int `mapstructure:"exp_min"`
}

type Admin struct {
	Username     string `validate:"required"`
	PasswordHash string `mapstructure:"password_hash" validate:"required"`
}

type Config struct {
	Ingest   Ingest
	HTTP     TCP
	DB       DB
	Batch    Batch
	Watchdog Watchdog
	Relay    Relay
	Log      Log
	Metrics  Metrics
	Cache    Cache
	Redis    Redis
	JWT      JWT
	Admin    Admin
}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("diarelay")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("backend.ingest.host", "0.0.0.0")
	v.SetDefault("backend.ingest.max_payload_bytes", 2048)
	v.SetDefault("backend.ingest.read_timeout", 5*time.Second)
	v.SetDefault("backend.http.host", "127.0.0.1")
	v.SetDefault("backend.http.port", 8000)
	v.SetDefault("backend.db.driver", "sqlite")
	v.SetDefault("backend.db.path", "client_status.db")
	v.SetDefault("backend.db.host", "127.0.0.1")
	v.SetDefault("backend.db.port", 3306)
	v.SetDefault("backend.db.user", "root")
	v.SetDefault("backend.db.name", "dia_relay")
	v.SetDefault("backend.batch.window", 5*time.Second)
	v.SetDefault("backend.batch.max_size", 100)
	v.SetDefault("backend.batch.poll_timeout", time.Second)
	v.SetDefault("backend.watchdog.interval", 60*time.Second)
	v.SetDefault("backend.watchdog.report_interval", 58*time.Second)
	v.SetDefault("backend.watchdog.alert_multiplier", 2)
	v.SetDefault("backend.relay.agent_port", 6000)
	v.SetDefault("backend.relay.timeout", 5*time.Second)
	v.SetDefault("backend.log.level", "info")
	v.SetDefault("backend.cache.size_mb", 8)
	v.SetDefault("backend.cache.ttl_sec", 5)
	v.SetDefault("backend.redis.addr", "127.0.0.1:6379")
	v.SetDefault("backend.redis.channel", "diarelay:reports")
	v.SetDefault("backend.jwt.issuer", "dia-relay")
	v.SetDefault("backend.jwt.exp_min", 60)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Unmarshal goes through AllSettings, which merges defaults and env;
	// UnmarshalKey would only see the file's sub-map.
	var file struct {
		Backend Config `mapstructure:"backend"`
	}
	if err := v.Unmarshal(&file); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg := file.Backend
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first missing or malformed required key.
func Validate(cfg *Config) error {
	v := validate.Struct(cfg)
	if !v.Validate() {
		return fmt.Errorf("invalid config: %s", v.Errors.One())
	}
	if cfg.DB.Driver == "sqlite" && cfg.DB.Path == "" {
		return fmt.Errorf("invalid config: db.path is required for sqlite")
	}
	if cfg.Redis.Enabled && cfg.Redis.Addr == "" {
		return fmt.Errorf("invalid config: redis.addr is required when redis is enabled")
	}
	return nil
}
