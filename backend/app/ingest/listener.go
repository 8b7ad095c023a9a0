package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"dia-relay/backend/app/dto"
	"dia-relay/backend/app/metrics"
	"dia-relay/network"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

var ErrNotObject = errors.New("payload is not a JSON object")

// Notifier receives every accepted record after it is queued.
type Notifier interface {
	Publish(ctx context.Context, r Record) error
}

type ListenerConfig struct {
	MaxPayloadBytes int
	ReadTimeout     time.Duration
}

// Listener accepts one framed JSON report per connection and hands it to the
// queue. The hub never writes back on these connections.
type Listener struct {
	cfg      ListenerConfig
	queue    *Queue
	liveness *Liveness
	notifier Notifier
	metrics  metrics.Recorder
	log      zerolog.Logger
	now      func() time.Time
}

func NewListener(cfg ListenerConfig, q *Queue, l *Liveness, notifier Notifier, rec metrics.Recorder, log zerolog.Logger) *Listener {
	if rec == nil {
		rec = metrics.Noop()
	}
	return &Listener{
		cfg:      cfg,
		queue:    q,
		liveness: l,
		notifier: notifier,
		metrics:  rec,
		log:      log,
		now:      time.Now,
	}
}

// Serve runs the accept loop on srv until ctx is cancelled.
func (l *Listener) Serve(ctx context.Context, srv *network.TCPServer) error {
	l.log.Info().Str("addr", srv.Addr().String()).Msg("ingestion listener ready")
	return srv.Serve(ctx, l.HandleConn, func(err error) {
		l.log.Warn().Err(err).Msg("accept failed")
	})
}

// HandleConn processes a single report connection and closes it.
func (l *Listener) HandleConn(c *network.TCPClient) {
	defer c.Close()
	peer := c.RemoteIP()
	if l.cfg.ReadTimeout > 0 {
		_ = c.SetDeadline(l.now().Add(l.cfg.ReadTimeout))
	}
	payload, err := c.Recv(l.cfg.MaxPayloadBytes)
	if err != nil {
		l.metrics.IncReportsRejected("read")
		l.log.Warn().Err(err).Str("peer", peer).Msg("report read failed")
		return
	}
	rec, err := Parse(payload, peer, l.now())
	if err != nil {
		l.metrics.IncReportsRejected("parse")
		l.log.Warn().Err(err).Str("peer", peer).Msg("report parse failed")
		return
	}

	l.liveness.Touch(rec.Name, rec.ReceivedAt)
	l.queue.Push(rec)
	l.metrics.IncReportsReceived()

	l.log.Info().
		Str("ip", rec.IP).
		Str("name", rec.Name).
		Str("server", rec.GameServer).
		Str("game", rec.Game).
		Int64("dia", rec.Dia).
		Str("msg", rec.Message).
		Msg("report received")

	if l.notifier != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := l.notifier.Publish(ctx, rec); err != nil {
			l.log.Warn().Err(err).Str("name", rec.Name).Msg("report publish failed")
		}
	}
}

// Parse decodes one report. Absent fields get sentinel values; a missing ip
// falls back to the connection peer.
func Parse(payload []byte, peerIP string, at time.Time) (Record, error) {
	trimmed := bytes.TrimSpace(payload)
	if !utf8.Valid(trimmed) {
		return Record{}, errors.New("payload is not valid UTF-8")
	}
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Record{}, ErrNotObject
	}
	var r dto.Report
	if err := json.Unmarshal(trimmed, &r); err != nil {
		return Record{}, fmt.Errorf("decode report: %w", err)
	}
	ipDefault := peerIP
	if ipDefault == "" {
		ipDefault = "?"
	}
	return Record{
		Name:       dto.Or(r.Name, "unknown"),
		IP:         dto.Or(r.IP, ipDefault),
		Game:       dto.Or(r.Game, "?"),
		GameServer: dto.Or(r.GameServer, "?"),
		Dia:        int64(r.Dia),
		Message:    dto.Or(r.Msg, "?"),
		Mode:       dto.Or(r.Mode, ""),
		ReceivedAt: at,
	}, nil
}
