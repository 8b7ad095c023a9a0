package command

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"dia-relay/agent/internal/logger"
	"dia-relay/agent/internal/msgcache"
	"dia-relay/agent/internal/procwatch"
	"dia-relay/agent/internal/state"
	"dia-relay/network"
)

// Outcome is where one received command ended up.
type Outcome int

const (
	// OutcomeEmpty: nothing usable was received.
	OutcomeEmpty Outcome = iota
	// OutcomeSuppressed: the target process is not running, the command was dropped.
	OutcomeSuppressed
	// OutcomeApplied: cached and recorded as the pending command.
	OutcomeApplied
	// OutcomeSensitive: recorded, then cleared from the command state.
	OutcomeSensitive
)

func (o Outcome) String() string {
	switch o {
	case OutcomeEmpty:
		return "empty"
	case OutcomeSuppressed:
		return "suppressed"
	case OutcomeApplied:
		return "applied"
	case OutcomeSensitive:
		return "sensitive"
	}
	return "unknown"
}

// Policy decides which commands must not leave a trace.
type Policy interface {
	IsSensitive(cmd string) bool
}

type Listener struct {
	detector procwatch.Detector
	policy   Policy
	cache    *msgcache.Cache
	state    *state.File
	maxBytes int
	readWait time.Duration
	now      func() time.Time
}

func NewListener(detector procwatch.Detector, policy Policy, cache *msgcache.Cache, st *state.File, maxBytes int) *Listener {
	return &Listener{
		detector: detector,
		policy:   policy,
		cache:    cache,
		state:    st,
		maxBytes: maxBytes,
		readWait: 10 * time.Second,
		now:      time.Now,
	}
}

// Serve accepts commands until ctx is cancelled.
func (l *Listener) Serve(ctx context.Context, srv *network.TCPServer) error {
	logger.Infof("Waiting for hub commands on %s", srv.Addr())
	return srv.Serve(ctx, l.HandleConn, func(err error) {
		logger.Errorf("Command accept failed: %v", err)
	})
}

func (l *Listener) HandleConn(c *network.TCPClient) {
	defer c.Close()
	_ = c.SetDeadline(l.now().Add(l.readWait))
	raw, err := c.Recv(l.maxBytes)
	if err != nil {
		logger.Errorf("Command receive from %s failed: %v", c.RemoteIP(), err)
		return
	}
	logger.Infof("Command received from %s", c.RemoteIP())
	l.Handle(raw)
}

// Handle runs one command through the stealth gate and the sensitive policy.
func (l *Listener) Handle(raw []byte) Outcome {
	if !utf8.Valid(raw) {
		logger.Warn("Command dropped: payload is not valid UTF-8")
		return OutcomeEmpty
	}
	cmd := strings.TrimSpace(string(raw))
	if cmd == "" {
		return OutcomeEmpty
	}
	if !l.detector.IsTargetRunning() {
		logger.Infof("Target not running, command ignored (stealth): %s", cmd)
		return OutcomeSuppressed
	}

	sensitive := l.policy.IsSensitive(cmd)
	now := l.now()
	if !sensitive {
		if err := l.cache.Append(cmd, now); err != nil {
			logger.Errorf("Message cache write failed: %v", err)
		} else {
			logger.Infof("Message cached: %s", cmd)
		}
	}

	alias := l.detector.RunningAlias()
	if err := l.state.Write(state.CommandState{Last: cmd, Timestamp: now, Executed: false, Target: alias}); err != nil {
		logger.Errorf("Command state write failed: %v", err)
	} else {
		logger.Infof("Command state saved to %s: %s", l.state.Path(), cmd)
	}
	if !sensitive {
		return OutcomeApplied
	}

	if err := l.state.Write(state.CommandState{Last: "", Timestamp: l.now(), Executed: true, Target: alias}); err != nil {
		logger.Errorf("Command state clear failed: %v", err)
	} else {
		logger.Info("Command state cleared after sensitive command")
	}
	return OutcomeSensitive
}
