package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackWriter_Primary(t *testing.T) {
	dir := t.TempDir()
	w := &FallbackWriter{Path: filepath.Join(dir, "client.log"), Fallback: filepath.Join(dir, "log_fail.txt")}
	_, err := w.Write([]byte("one\n"))
	require.NoError(t, err)
	_, err = w.Write([]byte("two\n"))
	require.NoError(t, err)

	b, err := os.ReadFile(w.Path)
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\n", string(b))
	assert.NoFileExists(t, w.Fallback)
}

func TestFallbackWriter_UsesFallback(t *testing.T) {
	dir := t.TempDir()
	w := &FallbackWriter{Path: filepath.Join(dir, "missing", "client.log"), Fallback: filepath.Join(dir, "log_fail.txt")}
	n, err := w.Write([]byte("hello\n"))
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	b, err := os.ReadFile(w.Fallback)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(b), "[log write failed] "))
	assert.True(t, strings.HasSuffix(string(b), "hello\n"))
}

func TestInit_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.log")
	require.NoError(t, Init(path, ""))
	Infof("agent started (%s)", "v1")
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "agent started (v1)")
}

func TestRotate_BySize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "client.log")
	require.NoError(t, os.WriteFile(path+".1", []byte("older"), 0o644))
	require.NoError(t, os.WriteFile(path+".2", []byte("oldest"), 0o644))
	require.NoError(t, os.WriteFile(path, make([]byte, 1024*1024+1), 0o644))

	require.NoError(t, Rotate(path, 1, 7, time.Now()))
	assert.NoFileExists(t, path)
	info, err := os.Stat(path + ".1")
	require.NoError(t, err)
	assert.Equal(t, int64(1024*1024+1), info.Size())
	b, err := os.ReadFile(path + ".2")
	require.NoError(t, err)
	assert.Equal(t, "older", string(b))
}

func TestRotate_ByAge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.log")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	old := time.Now().Add(-10 * 24 * time.Hour)
	require.NoError(t, os.Chtimes(path, old, old))

	require.NoError(t, Rotate(path, 5, 7, time.Now()))
	assert.NoFileExists(t, path)
}

func TestRotate_Missing(t *testing.T) {
	assert.NoError(t, Rotate(filepath.Join(t.TempDir(), "none.log"), 5, 7, time.Now()))
}
