package msgcache

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const timeFormat = "2006-01-02 15:04:05"

// One message is one line.
var lineBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// Cache is an append-only text file of received commands, bounded to the
// newest max lines after every append.
type Cache struct {
	path string
	max  func() int
	mu   sync.Mutex
}

// New creates a cache at path. max is consulted on every append so a
// reloaded limit applies to the next command.
func New(path string, max func() int) *Cache {
	return &Cache{path: path, max: max}
}

func (c *Cache) Append(msg string, at time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	f, err := os.OpenFile(c.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(f, "[%s] %s\n", at.Format(timeFormat), lineBreaks.Replace(msg)); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return c.trim()
}

// Lines returns the cached lines, oldest first.
func (c *Cache) Lines() ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.readLines()
}

func (c *Cache) readLines() ([]string, error) {
	b, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var out []string
	sc := bufio.NewScanner(bytes.NewReader(b))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		out = append(out, sc.Text())
	}
	return out, sc.Err()
}

func (c *Cache) trim() error {
	max := c.max()
	if max <= 0 {
		return nil
	}
	lines, err := c.readLines()
	if err != nil {
		return err
	}
	if len(lines) <= max {
		return nil
	}
	var buf bytes.Buffer
	for _, l := range lines[len(lines)-max:] {
		buf.WriteString(l)
		buf.WriteByte('\n')
	}
	tmp, err := os.CreateTemp(filepath.Dir(c.path), filepath.Base(c.path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), c.path)
}
