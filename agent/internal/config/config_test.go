package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const agentYAML = `
agent:
  hub:
    host: 10.0.0.1
    port: 5050
  command:
    port: 6000
  http:
    port: 8765
  files:
    log: client.log
    message_cache: MessageCache.txt
    command_state: command.ini
  message_cache_max_lines: 50
  instance_name: dia-agent
  sensitive_commands: ["WIPE"]
  targets: ["game.exe"]
  target_alias:
    game.exe: GAME
`

func write(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.yaml")
	write(t, path, agentYAML)
	s, err := Load(path)
	require.NoError(t, err)

	c := s.Get()
	assert.Equal(t, "10.0.0.1", c.Hub.Host)
	assert.Equal(t, "0.0.0.0", c.Command.Host)
	assert.Equal(t, 1024, c.Command.MaxBytes)
	assert.Equal(t, "log_fail.txt", c.Files.LogFallback)
	assert.Equal(t, "VERSION.txt", c.Files.Version)
	assert.Equal(t, 5, c.Log.MaxSizeMB)
	assert.Equal(t, 3*time.Second, c.ReportTimeout)
	assert.True(t, s.IsSensitive("WIPE"))
	assert.False(t, s.IsSensitive("wipe"))

	targets, alias := s.Targets()
	assert.Equal(t, []string{"game.exe"}, targets)
	assert.Equal(t, "GAME", alias["game.exe"])
}

func TestLoad_MissingKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.yaml")
	write(t, path, `
agent:
  hub:
    host: 10.0.0.1
    port: 5050
  command:
    port: 6000
  http:
    port: 8765
  files:
    log: client.log
    message_cache: MessageCache.txt
    command_state: command.ini
  message_cache_max_lines: 50
  instance_name: dia-agent
  targets: ["game.exe"]
  target_alias: {}
`)
	_, err := Load(path)
	assert.ErrorContains(t, err, "sensitive_commands")
}

func TestLoad_InvalidPort(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.yaml")
	write(t, path, agentYAML+"  http:\n    port: 70000\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestReload_OnlyPolicyFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.yaml")
	write(t, path, agentYAML)
	s, err := Load(path)
	require.NoError(t, err)

	var notified *AppConfig
	s.OnChange(func(c *AppConfig) { notified = c })

	changed := `
agent:
  hub:
    host: 10.9.9.9
    port: 5050
  command:
    port: 6001
  http:
    port: 8765
  files:
    log: client.log
    message_cache: MessageCache.txt
    command_state: command.ini
  message_cache_max_lines: 10
  instance_name: dia-agent
  sensitive_commands: ["WIPE", "DUMP"]
  targets: ["other.exe"]
  target_alias: {}
`
	write(t, path, changed)
	require.NoError(t, s.Reload())

	c := s.Get()
	assert.True(t, s.IsSensitive("DUMP"))
	assert.Equal(t, []string{"other.exe"}, c.Targets)
	assert.Equal(t, 10, c.MessageCacheMaxLines)
	assert.Equal(t, "10.0.0.1", c.Hub.Host)
	assert.Equal(t, 6000, c.Command.Port)
	require.NotNil(t, notified)
	assert.Equal(t, c, notified)
}

func TestReload_InvalidKeepsCurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.yaml")
	write(t, path, agentYAML)
	s, err := Load(path)
	require.NoError(t, err)

	write(t, path, "agent:\n  hub:\n    host: x\n")
	assert.Error(t, s.Reload())
	assert.True(t, s.IsSensitive("WIPE"))
}

func TestLoad_EnvOverridesDefault(t *testing.T) {
	t.Setenv("DIARELAY_AGENT_REPORT_TIMEOUT", "7s")
	t.Setenv("DIARELAY_AGENT_COMMAND_MAX_BYTES", "512")
	path := filepath.Join(t.TempDir(), "agent.yaml")
	write(t, path, agentYAML)
	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7*time.Second, s.Get().ReportTimeout)
	assert.Equal(t, 512, s.Get().Command.MaxBytes)
}

func TestLoad_ExampleFile(t *testing.T) {
	s, err := Load(filepath.Join("..", "..", "config", "config.example.yaml"))
	require.NoError(t, err)
	c := s.Get()
	assert.Equal(t, 1024, c.Command.MaxBytes)
	assert.Equal(t, "GAME", c.TargetAlias["game.exe"])
}

func TestReload_KeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.yaml")
	write(t, path, agentYAML)
	s, err := Load(path)
	require.NoError(t, err)

	write(t, path, agentYAML)
	require.NoError(t, s.Reload())
	assert.Equal(t, 1024, s.Get().Command.MaxBytes)
	assert.Equal(t, "GAME", s.Get().TargetAlias["game.exe"])
}
