package ingest

import (
	"context"
	"sort"
	"time"

	"dia-relay/backend/app/metrics"

	"github.com/rs/zerolog"
)

type Stale struct {
	Name    string
	Elapsed time.Duration
}

// Watchdog periodically reports agents that have gone quiet. It only reads
// the liveness map; stale agents keep being reported until they report again.
type Watchdog struct {
	liveness   *Liveness
	interval   time.Duration
	alertAfter time.Duration
	metrics    metrics.Recorder
	log        zerolog.Logger
	now        func() time.Time
}

func NewWatchdog(l *Liveness, interval, alertAfter time.Duration, rec metrics.Recorder, log zerolog.Logger) *Watchdog {
	if rec == nil {
		rec = metrics.Noop()
	}
	return &Watchdog{
		liveness:   l,
		interval:   interval,
		alertAfter: alertAfter,
		metrics:    rec,
		log:        log,
		now:        time.Now,
	}
}

// Scan returns the agents silent for longer than the alert threshold,
// sorted by name, and logs one warning per agent.
func (w *Watchdog) Scan(now time.Time) []Stale {
	var out []Stale
	for name, seen := range w.liveness.Snapshot() {
		if d := now.Sub(seen); d > w.alertAfter {
			out = append(out, Stale{Name: name, Elapsed: d})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	for _, s := range out {
		w.log.Warn().
			Str("name", s.Name).
			Float64("minutes", s.Elapsed.Minutes()).
			Msgf("no report from %s for %.1f minutes", s.Name, s.Elapsed.Minutes())
	}
	w.metrics.SetStaleAgents(len(out))
	return out
}

func (w *Watchdog) Run(ctx context.Context) {
	t := time.NewTicker(w.interval)
	defer t.Stop()
	w.log.Info().Dur("interval", w.interval).Dur("alert_after", w.alertAfter).Msg("watchdog started")
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			w.Scan(w.now())
		}
	}
}
