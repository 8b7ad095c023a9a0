package dto

// CommandRequest asks the hub to relay a command to one agent, addressed by
// name (resolved through its snapshot) or directly by IP.
type CommandRequest struct {
	Name    string `json:"name,omitempty"`
	IP      string `json:"ip,omitempty"`
	Command string `json:"command"`
}

type CommandResponse struct {
	RequestID string `json:"request_id"`
	AgentIP   string `json:"agent_ip"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}
