package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFile_WriteRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "command.ini")
	f := NewFile(path)
	at := time.Date(2024, 5, 1, 9, 15, 30, 0, time.Local)

	require.NoError(t, f.Write(CommandState{Last: "RESTART", Timestamp: at, Executed: false, Target: "GAME"}))
	got, err := f.Read()
	require.NoError(t, err)
	assert.Equal(t, CommandState{Last: "RESTART", Timestamp: at, Executed: false, Target: "GAME"}, got)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[Command]")
	assert.Contains(t, string(raw), "False")
	assert.Contains(t, string(raw), "2024-05-01 09:15:30")
}

func TestFile_CommentCharsWrittenRaw(t *testing.T) {
	path := filepath.Join(t.TempDir(), "command.ini")
	f := NewFile(path)
	now := time.Now().Truncate(time.Second)

	require.NoError(t, f.Write(CommandState{Last: "goto #3; fast", Timestamp: now, Target: "GAME"}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "goto #3; fast")
	assert.NotContains(t, string(raw), "`")

	got, err := f.Read()
	require.NoError(t, err)
	assert.Equal(t, "goto #3; fast", got.Last)
}

func TestFile_OverwriteKeepsSingleSlot(t *testing.T) {
	dir := t.TempDir()
	f := NewFile(filepath.Join(dir, "command.ini"))
	now := time.Now().Truncate(time.Second)

	require.NoError(t, f.Write(CommandState{Last: "first", Timestamp: now, Target: "NONE"}))
	require.NoError(t, f.Write(CommandState{Last: "", Timestamp: now, Executed: true, Target: "NONE"}))

	got, err := f.Read()
	require.NoError(t, err)
	assert.Equal(t, "", got.Last)
	assert.True(t, got.Executed)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFile_ReadMissing(t *testing.T) {
	_, err := NewFile(filepath.Join(t.TempDir(), "none.ini")).Read()
	assert.Error(t, err)
}
