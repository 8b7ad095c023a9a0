package ingest

import "time"

// Record is one parsed telemetry report waiting to be persisted.
type Record struct {
	Name       string    `json:"name"`
	IP         string    `json:"ip"`
	Game       string    `json:"game"`
	GameServer string    `json:"game_server"`
	Dia        int64     `json:"dia"`
	Message    string    `json:"msg"`
	Mode       string    `json:"mode"`
	ReceivedAt time.Time `json:"received_at"`
}
