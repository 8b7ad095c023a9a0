package state

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/ini.v1"
)

const (
	section         = "Command"
	TimestampFormat = "2006-01-02 15:04:05"
)

// Commands are free text; '#' and ';' are part of the value, not comments,
// and must be written unquoted.
var iniOptions = ini.LoadOptions{IgnoreInlineComment: true}

// CommandState is the single live command slot read by the automation
// running next to the agent.
type CommandState struct {
	Last      string
	Timestamp time.Time
	Executed  bool
	Target    string
}

// File persists CommandState as an INI file. Every write replaces the whole
// file through a rename so readers never see a partial state.
type File struct {
	path string
	mu   sync.Mutex
}

func NewFile(path string) *File { return &File{path: path} }

func (f *File) Path() string { return f.path }

func (f *File) Write(s CommandState) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	cfg := ini.Empty(iniOptions)
	sec, err := cfg.NewSection(section)
	if err != nil {
		return err
	}
	sec.Key("Last").SetValue(s.Last)
	sec.Key("Timestamp").SetValue(s.Timestamp.Format(TimestampFormat))
	sec.Key("Executed").SetValue(iniBool(s.Executed))
	sec.Key("Target").SetValue(s.Target)

	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp state: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := cfg.WriteTo(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("write state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace state: %w", err)
	}
	return nil
}

func (f *File) Read() (CommandState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	cfg, err := ini.LoadSources(iniOptions, f.path)
	if err != nil {
		return CommandState{}, err
	}
	sec, err := cfg.GetSection(section)
	if err != nil {
		return CommandState{}, err
	}
	ts, _ := time.ParseInLocation(TimestampFormat, sec.Key("Timestamp").String(), time.Local)
	return CommandState{
		Last:      sec.Key("Last").String(),
		Timestamp: ts,
		Executed:  sec.Key("Executed").MustBool(false),
		Target:    sec.Key("Target").String(),
	}, nil
}

// Existing readers of the file expect capitalized booleans.
func iniBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
