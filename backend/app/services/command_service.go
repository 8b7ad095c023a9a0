package services

import (
	"errors"
	"fmt"
	"time"

	"dia-relay/backend/app/dto"
	"dia-relay/backend/app/metrics"
	"dia-relay/backend/app/models"
	"dia-relay/backend/app/repo"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

var (
	ErrMissingCommand = errors.New("command is required")
	ErrMissingTarget  = errors.New("name or ip is required")
	ErrUnknownAgent   = errors.New("unknown agent")
)

// Sender delivers one command to the agent at ip.
type Sender interface {
	Send(ip, command string) error
}

type CommandService struct {
	clients  *repo.ClientRepository
	commands *repo.AgentCommandRepository
	relay    Sender
	metrics  metrics.Recorder
	log      zerolog.Logger
	now      func() time.Time
}

func NewCommandService(clients *repo.ClientRepository, commands *repo.AgentCommandRepository, relay Sender, rec metrics.Recorder, log zerolog.Logger) *CommandService {
	if rec == nil {
		rec = metrics.Noop()
	}
	return &CommandService{clients: clients, commands: commands, relay: relay, metrics: rec, log: log, now: time.Now}
}

// Dispatch records the command and relays it once. A relay failure is not
// an error of Dispatch: it is reported through the response status.
func (s *CommandService) Dispatch(req dto.CommandRequest) (dto.CommandResponse, error) {
	if req.Command == "" {
		return dto.CommandResponse{}, ErrMissingCommand
	}
	if req.Name == "" && req.IP == "" {
		return dto.CommandResponse{}, ErrMissingTarget
	}
	ip := req.IP
	if ip == "" {
		c, err := s.clients.FindByName(req.Name)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CommandResponse{}, fmt.Errorf("%w: %s", ErrUnknownAgent, req.Name)
		}
		if err != nil {
			return dto.CommandResponse{}, err
		}
		ip = c.IP
	}

	cmd := &models.AgentCommand{
		RequestID: uuid.NewString(),
		AgentName: req.Name,
		AgentIP:   ip,
		Command:   req.Command,
		Status:    models.CommandPending,
	}
	if err := s.commands.Create(cmd); err != nil {
		return dto.CommandResponse{}, fmt.Errorf("record command: %w", err)
	}

	resp := dto.CommandResponse{RequestID: cmd.RequestID, AgentIP: ip}
	if err := s.relay.Send(ip, req.Command); err != nil {
		s.metrics.IncCommands(false)
		if uerr := s.commands.MarkFailed(cmd.ID, err.Error()); uerr != nil {
			s.log.Error().Err(uerr).Str("request_id", cmd.RequestID).Msg("mark command failed")
		}
		resp.Status = string(models.CommandFailed)
		resp.Error = err.Error()
		return resp, nil
	}
	s.metrics.IncCommands(true)
	if err := s.commands.MarkSent(cmd.ID, s.now()); err != nil {
		s.log.Error().Err(err).Str("request_id", cmd.RequestID).Msg("mark command sent")
	}
	resp.Status = string(models.CommandSent)
	return resp, nil
}

func (s *CommandService) History(name string, limit int) ([]models.AgentCommand, error) {
	return s.commands.ListByAgent(name, limit)
}
