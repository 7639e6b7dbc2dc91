package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultTimeout = 60 * time.Second

// Options configures the agent service client.
type Options struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client wraps HTTP access to the hosted agent service. Every workflow
// call goes through Invoke; the target capability is selected by agent ID.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	log        *zap.Logger
}

// New creates a new agent service client.
func New(opts Options, log *zap.Logger) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		apiKey:     opts.APIKey,
		log:        log,
	}
}

// invokeRequest is the request body for an agent invocation.
type invokeRequest struct {
	Input string `json:"input"`
}

// Invoke sends the input to the named agent and returns the raw result
// payload. Interpretation of the payload is left to the caller; every
// failure mode (network, non-2xx, undecodable body, error envelope) is
// returned as an error, never a panic.
func (c *Client) Invoke(ctx context.Context, agentID, input string) (json.RawMessage, error) {
	if agentID == "" {
		return nil, fmt.Errorf("agent id is empty")
	}

	reqBody, err := json.Marshal(invokeRequest{Input: input})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := c.baseURL + "/v1/agents/" + agentID + "/invoke"
	httpReq, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.New().String()
	c.setHeaders(httpReq, requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.log.Warn("agent request failed",
			zap.String("agent_id", agentID),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.log.Warn("agent returned non-OK status",
			zap.String("agent_id", agentID),
			zap.String("request_id", requestID),
			zap.Int("status_code", resp.StatusCode),
		)
		return nil, fmt.Errorf("agent API error: status=%d body=%s", resp.StatusCode, string(body))
	}

	var env Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if env.Status != EnvelopeSuccess {
		msg := env.Error
		if msg == "" {
			msg = "agent reported an unspecified error"
		}
		c.log.Warn("agent returned error envelope",
			zap.String("agent_id", agentID),
			zap.String("request_id", requestID),
			zap.String("error", msg),
		)
		return nil, fmt.Errorf("agent error: %s", msg)
	}

	fields := []zap.Field{
		zap.String("agent_id", agentID),
		zap.String("request_id", requestID),
		zap.Duration("duration", time.Since(start)),
	}
	if env.Metadata != nil {
		if env.Metadata.AgentName != "" {
			fields = append(fields, zap.String("agent_name", env.Metadata.AgentName))
		}
		if env.Metadata.Timestamp != "" {
			fields = append(fields, zap.String("agent_timestamp", env.Metadata.Timestamp))
		}
	}
	c.log.Debug("agent call completed", fields...)

	return env.Result, nil
}

// setHeaders sets common request headers. The API key never reaches logs.
func (c *Client) setHeaders(req *http.Request, requestID string) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}
