package protocolclient

import (
	"fmt"
	"time"

	"dia-relay/network"

	"github.com/goccy/go-json"
)

// Report is the telemetry object forwarded to the hub. Dia travels as the
// string the local caller supplied; the hub parses it.
type Report struct {
	Name       string `json:"name"`
	IP         string `json:"ip"`
	Dia        string `json:"dia"`
	Mode       string `json:"mode"`
	Game       string `json:"game"`
	Msg        string `json:"msg"`
	GameServer string `json:"game_server"`
}

// SendReport opens a short-lived TCP connection to the hub and writes one
// framed report. The hub never answers.
func SendReport(host string, port int, r Report, timeout time.Duration) error {
	b, err := json.Marshal(r)
	if err != nil {
		return err
	}
	if err := network.SendOnce(host, port, b, timeout); err != nil {
		return fmt.Errorf("send report to %s:%d: %w", host, port, err)
	}
	return nil
}
