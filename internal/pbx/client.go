// Package pbx provides the HTTP client for the PBX core internal API.
package pbx

import (
	"FlexPBX-Admin/internal/config"
	"FlexPBX-Admin/internal/service"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Client клиент внутреннего REST API ядра PBX. Реализует
// service.PBXClient для панели супервизора.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        *zap.Logger
}

// NewClient создает новый клиент ядра PBX
func NewClient(cfg *config.PBX, log *zap.Logger) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

type monitorRequest struct {
	CallID        string `json:"call_id"`
	Mode          string `json:"mode"`
	SupervisorExt string `json:"supervisor_ext"`
}

type broadcastRequest struct {
	Message    string   `json:"message"`
	Extensions []string `json:"extensions,omitempty"`
}

// ListAgents возвращает состояние агентов из ядра PBX
func (c *Client) ListAgents(ctx context.Context) ([]service.Agent, error) {
	body, err := c.makeRequest(ctx, http.MethodGet, "/internal/agents", nil)
	if err != nil {
		return nil, err
	}

	var agents []service.Agent
	if err := json.Unmarshal(body, &agents); err != nil {
		return nil, fmt.Errorf("failed to parse agents response: %w", err)
	}
	return agents, nil
}

// ListActiveCalls возвращает активные вызовы из ядра PBX
func (c *Client) ListActiveCalls(ctx context.Context) ([]service.ActiveCall, error) {
	body, err := c.makeRequest(ctx, http.MethodGet, "/internal/calls", nil)
	if err != nil {
		return nil, err
	}

	var calls []service.ActiveCall
	if err := json.Unmarshal(body, &calls); err != nil {
		return nil, fmt.Errorf("failed to parse calls response: %w", err)
	}
	return calls, nil
}

// Monitor подключает супервизора к вызову
func (c *Client) Monitor(ctx context.Context, callID, mode, supervisorExt string) error {
	payload := monitorRequest{
		CallID:        callID,
		Mode:          mode,
		SupervisorExt: supervisorExt,
	}

	_, err := c.makeRequest(ctx, http.MethodPost, "/internal/monitor", payload)
	return err
}

// Broadcast рассылает сообщение на добавочные номера
func (c *Client) Broadcast(ctx context.Context, message string, extensions []string) error {
	payload := broadcastRequest{
		Message:    message,
		Extensions: extensions,
	}

	_, err := c.makeRequest(ctx, http.MethodPost, "/internal/broadcast", payload)
	return err
}

// makeRequest выполняет запрос к внутреннему API ядра PBX
func (c *Client) makeRequest(ctx context.Context, method, path string, payload interface{}) ([]byte, error) {
	var body []byte
	var err error
	if payload != nil {
		body, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Error("PBX core API error",
			zap.Int("status_code", resp.StatusCode),
			zap.String("path", path),
			zap.String("response", string(respBody)),
		)
		return nil, fmt.Errorf("PBX core API error: %d %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}
