package config

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gookit/validate"
	"github.com/spf13/viper"
)

type Endpoint struct {
	Host string `validate:"required"`
	Port int    `validate:"required|min:1|max:65535"`
}

type Command struct {
	Host     string
	Port     int `validate:"required|min:1|max:65535"`
	MaxBytes int `mapstructure:"max_bytes" validate:"required|min:1"`
}

type HTTP struct {
	Port int `validate:"required|min:1|max:65535"`
}

type Files struct {
	Log          string `validate:"required"`
	LogFallback  string `mapstructure:"log_fallback"`
	MessageCache string `mapstructure:"message_cache" validate:"required"`
	CommandState string `mapstructure:"command_state" validate:"required"`
	Version      string
}

type Log struct {
	MaxSizeMB  int `mapstructure:"max_size_mb"`
	MaxAgeDays int `mapstructure:"max_age_days"`
}

type AppConfig struct {
	Hub                  Endpoint
	Command              Command
	HTTP                 HTTP
	Files                Files
	Log                  Log
	MessageCacheMaxLines int               `mapstructure:"message_cache_max_lines" validate:"required|min:1"`
	InstanceName         string            `mapstructure:"instance_name" validate:"required"`
	SensitiveCommands    []string          `mapstructure:"sensitive_commands"`
	Targets              []string          `mapstructure:"targets"`
	TargetAlias          map[string]string `mapstructure:"target_alias"`
	ReportTimeout        time.Duration     `mapstructure:"report_timeout"`
}

// Keys that must be present even when their value may legitimately be empty.
var presenceKeys = []string{
	"agent::sensitive_commands",
	"agent::targets",
	"agent::target_alias",
}

// keyDelim keeps dotted process names such as "game.exe" intact as
// target_alias map keys.
const keyDelim = "::"

// Store holds the live agent configuration. Network endpoints and file
// paths are fixed at startup; the command policy and process lists follow
// the file on disk.
type Store struct {
	v   *viper.Viper
	cur atomic.Pointer[AppConfig]

	mu       sync.Mutex
	onChange []func(*AppConfig)
}

func Load(path string) (*Store, error) {
	v := viper.NewWithOptions(viper.KeyDelimiter(keyDelim))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("diarelay")
	v.SetEnvKeyReplacer(strings.NewReplacer(keyDelim, "_"))
	v.AutomaticEnv()

	// defaults
	v.SetDefault("agent::command::host", "0.0.0.0")
	v.SetDefault("agent::command::max_bytes", 1024)
	v.SetDefault("agent::files::log_fallback", "log_fail.txt")
	v.SetDefault("agent::files::version", "VERSION.txt")
	v.SetDefault("agent::log::max_size_mb", 5)
	v.SetDefault("agent::log::max_age_days", 7)
	v.SetDefault("agent::report_timeout", 3*time.Second)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	s := &Store{v: v}
	s.cur.Store(cfg)
	return s, nil
}

func decode(v *viper.Viper) (*AppConfig, error) {
	for _, k := range presenceKeys {
		if !v.IsSet(k) {
			return nil, fmt.Errorf("invalid config: %s is required", k)
		}
	}
	var file struct {
		Agent AppConfig `mapstructure:"agent"`
	}
	if err := v.Unmarshal(&file); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg := file.Agent
	vd := validate.Struct(&cfg)
	if !vd.Validate() {
		return nil, fmt.Errorf("invalid config: %s", vd.Errors.One())
	}
	return &cfg, nil
}

func (s *Store) Get() *AppConfig { return s.cur.Load() }

// IsSensitive reports whether cmd must not leave a trace after processing.
func (s *Store) IsSensitive(cmd string) bool {
	return slices.Contains(s.Get().SensitiveCommands, cmd)
}

// Targets returns the monitored process names and their aliases.
func (s *Store) Targets() ([]string, map[string]string) {
	c := s.Get()
	return c.Targets, c.TargetAlias
}

// OnChange registers fn to run after every successful reload.
func (s *Store) OnChange(fn func(*AppConfig)) {
	s.mu.Lock()
	s.onChange = append(s.onChange, fn)
	s.mu.Unlock()
}

// Reload re-reads the file. An invalid file leaves the current config in place.
func (s *Store) Reload() error {
	if err := s.v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	next, err := decode(s.v)
	if err != nil {
		return err
	}
	merged := *s.Get()
	merged.SensitiveCommands = next.SensitiveCommands
	merged.Targets = next.Targets
	merged.TargetAlias = next.TargetAlias
	merged.MessageCacheMaxLines = next.MessageCacheMaxLines
	s.cur.Store(&merged)

	s.mu.Lock()
	fns := slices.Clone(s.onChange)
	s.mu.Unlock()
	for _, fn := range fns {
		fn(&merged)
	}
	return nil
}

// Watch reloads the config whenever the file changes on disk.
func (s *Store) Watch(onErr func(error)) {
	s.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		if err := s.Reload(); err != nil && onErr != nil {
			onErr(err)
		}
	})
	s.v.WatchConfig()
}
