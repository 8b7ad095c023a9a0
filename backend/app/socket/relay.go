package socket

import (
	"errors"
	"time"

	"dia-relay/network"

	"github.com/rs/zerolog"
)

var ErrEmptyCommand = errors.New("empty command")

// Relay pushes command strings to agents. Each send is a fresh connection
// carrying one frame; agents never answer.
type Relay struct {
	port    int
	timeout time.Duration
	log     zerolog.Logger
}

func NewRelay(agentPort int, timeout time.Duration, log zerolog.Logger) *Relay {
	return &Relay{port: agentPort, timeout: timeout, log: log}
}

func (r *Relay) Send(ip, command string) error {
	if command == "" {
		return ErrEmptyCommand
	}
	if err := network.SendOnce(ip, r.port, []byte(command), r.timeout); err != nil {
		r.log.Warn().Err(err).Str("ip", ip).Int("port", r.port).Msg("command relay failed")
		return err
	}
	r.log.Info().Str("ip", ip).Str("command", command).Msg("command relayed")
	return nil
}
