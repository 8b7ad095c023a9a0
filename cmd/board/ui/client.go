package ui

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"dia-relay/backend/app/dto"
	"dia-relay/backend/app/models"

	"github.com/goccy/go-json"
)

// Client talks to the hub HTTP API.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	token   string
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Login exchanges operator credentials for a token used by SendCommand.
func (c *Client) Login(username, password string) error {
	body, _ := json.Marshal(dto.LoginRequest{Username: username, Password: password})
	var tok dto.TokenResponse
	if err := c.do(http.MethodPost, "/login", body, false, &tok); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	c.token = tok.AccessToken
	return nil
}

func (c *Client) HasToken() bool { return c.token != "" }

func (c *Client) Clients() ([]models.ClientStatus, error) {
	var out []models.ClientStatus
	err := c.do(http.MethodGet, "/api/clients", nil, false, &out)
	return out, err
}

func (c *Client) DiaHistory(days int) (map[string]dto.DayStats, error) {
	var out map[string]dto.DayStats
	err := c.do(http.MethodGet, "/api/dia-history?days="+url.QueryEscape(fmt.Sprint(days)), nil, false, &out)
	return out, err
}

func (c *Client) SendCommand(name, command string) (dto.CommandResponse, error) {
	body, _ := json.Marshal(dto.CommandRequest{Name: name, Command: command})
	var out dto.CommandResponse
	err := c.do(http.MethodPost, "/admin/command", body, true, &out)
	return out, err
}

func (c *Client) do(method, path string, body []byte, auth bool, out any) error {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequest(method, c.BaseURL+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		if c.token == "" {
			return fmt.Errorf("not logged in")
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			return fmt.Errorf("%s: %s", resp.Status, e.Error)
		}
		return fmt.Errorf("%s", resp.Status)
	}
	return json.Unmarshal(data, out)
}
