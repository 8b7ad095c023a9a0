package procwatch

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixed(targets []string, alias map[string]string) TargetSource {
	return func() ([]string, map[string]string) { return targets, alias }
}

func TestProcessDetector(t *testing.T) {
	d := NewProcessDetector(fixed([]string{"Game.exe"}, map[string]string{"game.exe": "GAME", "tool.exe": "TOOL"}))
	d.list = func() ([]string, error) { return []string{"init", "tool.exe", "game.exe"}, nil }

	assert.True(t, d.IsTargetRunning())
	assert.Equal(t, "TOOL", d.RunningAlias())

	d.list = func() ([]string, error) { return []string{"init"}, nil }
	assert.False(t, d.IsTargetRunning())
	assert.Equal(t, NoAlias, d.RunningAlias())
}

func TestProcessDetector_ListError(t *testing.T) {
	d := NewProcessDetector(fixed([]string{"game.exe"}, map[string]string{"game.exe": "GAME"}))
	d.list = func() ([]string, error) { return nil, errors.New("denied") }
	assert.False(t, d.IsTargetRunning())
	assert.Equal(t, NoAlias, d.RunningAlias())
}

func TestProcessDetector_NoTargets(t *testing.T) {
	d := NewProcessDetector(fixed(nil, nil))
	assert.False(t, d.IsTargetRunning())
	assert.Equal(t, NoAlias, d.RunningAlias())
}

func TestProcessDetector_SeesCurrentProcess(t *testing.T) {
	exe, err := os.Executable()
	require.NoError(t, err)
	names, err := processNames()
	require.NoError(t, err)
	require.NotEmpty(t, names)

	self := filepath.Base(exe)
	d := NewProcessDetector(fixed([]string{self}, map[string]string{self: "SELF"}))
	if !d.IsTargetRunning() {
		// process names are truncated on some platforms
		t.Skipf("process name %q not visible", self)
	}
	assert.Equal(t, "SELF", d.RunningAlias())
}
