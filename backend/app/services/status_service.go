package services

import (
	"fmt"
	"sort"
	"time"

	"dia-relay/backend/app/cache"
	"dia-relay/backend/app/dto"
	"dia-relay/backend/app/ingest"
	"dia-relay/backend/app/models"
	"dia-relay/backend/app/repo"

	"github.com/goccy/go-json"
)

const (
	DefaultHistoryDays = 7
	MaxHistoryDays     = 90
)

// StatusService answers dashboard queries over the persisted state and the
// in-memory liveness table.
type StatusService struct {
	clients    *repo.ClientRepository
	daily      *repo.DailyRepository
	cache      cache.Provider
	liveness   *ingest.Liveness
	alertAfter time.Duration
}

func NewStatusService(clients *repo.ClientRepository, daily *repo.DailyRepository, c cache.Provider, l *ingest.Liveness, alertAfter time.Duration) *StatusService {
	if c == nil {
		c = cache.New(false, 0, 0)
	}
	return &StatusService{clients: clients, daily: daily, cache: c, liveness: l, alertAfter: alertAfter}
}

func (s *StatusService) ListClients() ([]models.ClientStatus, error) {
	return s.clients.ListAll()
}

// DiaHistory returns the last days calendar days ending at today, keyed by
// date. Each agent's diff is against the previous day, which counts as 0
// when the agent has no row for it.
func (s *StatusService) DiaHistory(days int, today time.Time) (map[string]dto.DayStats, error) {
	if days <= 0 {
		days = DefaultHistoryDays
	}
	days = min(days, MaxHistoryDays)
	key := fmt.Sprintf("dia-history:%d:%s", days, today.Format(models.DateLayout))
	if b, ok := s.cache.Get(key); ok {
		var cached map[string]dto.DayStats
		if json.Unmarshal(b, &cached) == nil {
			return cached, nil
		}
	}

	// One extra day so the oldest requested day has a baseline.
	dates := make([]string, 0, days+1)
	for i := 0; i <= days; i++ {
		dates = append(dates, today.AddDate(0, 0, -i).Format(models.DateLayout))
	}
	rows, err := s.daily.ListByDates(dates)
	if err != nil {
		return nil, err
	}
	byDay := make(map[string]map[string]models.DailyDia, len(dates))
	for _, r := range rows {
		if byDay[r.Date] == nil {
			byDay[r.Date] = make(map[string]models.DailyDia)
		}
		byDay[r.Date][r.Name] = r
	}

	out := make(map[string]dto.DayStats, days)
	for i := 0; i < days; i++ {
		d, prev := dates[i], dates[i+1]
		stats := dto.DayStats{Agents: make(map[string]dto.AgentDay)}
		for name, r := range byDay[d] {
			var before int64
			if p, ok := byDay[prev][name]; ok {
				before = p.Dia
			}
			stats.Agents[name] = dto.AgentDay{Today: r.Dia, Diff: r.Dia - before, Game: r.Game, Server: r.Server}
			stats.Total += r.Dia
		}
		out[d] = stats
	}

	if b, err := json.Marshal(out); err == nil {
		s.cache.Set(key, b)
	}
	return out, nil
}

// Liveness lists every agent heard from since the hub started, by name.
func (s *StatusService) Liveness(now time.Time) []dto.LivenessEntry {
	snap := s.liveness.Snapshot()
	out := make([]dto.LivenessEntry, 0, len(snap))
	for name, seen := range snap {
		elapsed := now.Sub(seen)
		out = append(out, dto.LivenessEntry{
			Name:       name,
			LastSeen:   seen.Format(time.RFC3339),
			ElapsedSec: int64(elapsed.Seconds()),
			Stale:      elapsed > s.alertAfter,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
