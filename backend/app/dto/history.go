package dto

// AgentDay is one agent's dia on one day together with the change from the
// previous day.
type AgentDay struct {
	Today  int64  `json:"today"`
	Diff   int64  `json:"diff"`
	Game   string `json:"game"`
	Server string `json:"server"`
}

// DayStats is one day of dia history keyed by agent name.
type DayStats struct {
	Total  int64               `json:"total"`
	Agents map[string]AgentDay `json:"agents"`
}

// LivenessEntry describes when an agent was last heard from.
type LivenessEntry struct {
	Name       string `json:"name"`
	LastSeen   string `json:"last_seen"`
	ElapsedSec int64  `json:"elapsed_sec"`
	Stale      bool   `json:"stale"`
}
