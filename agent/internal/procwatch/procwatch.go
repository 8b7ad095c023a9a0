package procwatch

import (
	"strings"

	"github.com/shirou/gopsutil/v3/process"
)

// NoAlias is reported when none of the aliased processes is running.
const NoAlias = "NONE"

type Detector interface {
	IsTargetRunning() bool
	RunningAlias() string
}

// TargetSource returns the process names to look for and their aliases.
type TargetSource func() (targets []string, alias map[string]string)

// ProcessDetector matches running process names against the configured
// targets. Names compare case-insensitively.
type ProcessDetector struct {
	source TargetSource
	list   func() ([]string, error)
}

func NewProcessDetector(source TargetSource) *ProcessDetector {
	return &ProcessDetector{source: source, list: processNames}
}

func processNames() ([]string, error) {
	procs, err := process.Processes()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(procs))
	for _, p := range procs {
		name, err := p.Name()
		if err != nil {
			// exited between listing and lookup
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

func (d *ProcessDetector) IsTargetRunning() bool {
	targets, _ := d.source()
	if len(targets) == 0 {
		return false
	}
	want := make(map[string]struct{}, len(targets))
	for _, t := range targets {
		want[strings.ToLower(t)] = struct{}{}
	}
	names, err := d.list()
	if err != nil {
		return false
	}
	for _, n := range names {
		if _, ok := want[strings.ToLower(n)]; ok {
			return true
		}
	}
	return false
}

// RunningAlias returns the alias of the first aliased process found in the
// process list, or NoAlias.
func (d *ProcessDetector) RunningAlias() string {
	_, alias := d.source()
	if len(alias) == 0 {
		return NoAlias
	}
	lower := make(map[string]string, len(alias))
	for k, v := range alias {
		lower[strings.ToLower(k)] = v
	}
	names, err := d.list()
	if err != nil {
		return NoAlias
	}
	for _, n := range names {
		if a, ok := lower[strings.ToLower(n)]; ok {
			return a
		}
	}
	return NoAlias
}
