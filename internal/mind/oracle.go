package mind

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"
)

// Sentinel errors. Callers match with errors.Is.
var (
	ErrUnavailable = errors.New("oracle unavailable")
	ErrParse       = errors.New("oracle response unparseable")
	ErrBusy        = errors.New("oracle request already in flight")
	ErrCooldown    = errors.New("oracle cooldown active")
	ErrTimeout     = errors.New("oracle request timed out")
	ErrStatus      = errors.New("oracle returned an error status")
)

// maxErrorBody bounds how much of an error response is kept in the error.
const maxErrorBody = 256

// Oracle answers decision requests. Implementations must be safe for
// concurrent use: the dispatcher calls Decide from one goroutine per agent.
type Oracle interface {
	Decide(ctx context.Context, req Request) (Decision, error)
	Probe(ctx context.Context) error
}

// Client talks to an Ollama-compatible generate endpoint.
type Client struct {
	endpoint   string
	model      string
	httpClient *http.Client
}

// NewClient creates an oracle client. The timeout bounds each HTTP call.
func NewClient(endpoint, model string, timeout time.Duration) *Client {
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		model:    model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

// generateRequest is the /api/generate request body.
type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	System  string          `json:"system,omitempty"`
	Stream  bool            `json:"stream"`
	Format  string          `json:"format,omitempty"`
	Options generateOptions `json:"options"`
}

// generateResponse is the /api/generate response body.
type generateResponse struct {
	Response        string `json:"response"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
}

// Decide sends the request prompt to the model and parses the reply.
func (c *Client) Decide(ctx context.Context, req Request) (Decision, error) {
	body, err := json.Marshal(generateRequest{
		Model:   c.model,
		Prompt:  Prompt(req),
		System:  systemPrompt,
		Format:  "json",
		Options: generateOptions{Temperature: 0.8, NumPredict: 150},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, transportError("generate", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if len(respBody) > maxErrorBody {
			respBody = respBody[:maxErrorBody]
		}
		return nil, fmt.Errorf("%w: %d: %s", ErrStatus, resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var gen generateResponse
	if err := json.Unmarshal(respBody, &gen); err != nil {
		return nil, fmt.Errorf("%w: envelope: %v", ErrParse, err)
	}

	slog.Debug("oracle call",
		"agent", req.AgentID,
		"prompt_tokens", gen.PromptEvalCount,
		"output_tokens", gen.EvalCount,
	)

	return Parse(gen.Response, req.AgentID)
}

// Probe checks that the endpoint is reachable.
func (c *Client) Probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("create probe: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportError("probe", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: probe status %d", ErrUnavailable, resp.StatusCode)
	}
	return nil
}

// transportError classifies a failed HTTP exchange as a timeout or an
// unreachable endpoint.
func transportError(op string, err error) error {
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return fmt.Errorf("%w: %s: %v", ErrTimeout, op, err)
	}
	return fmt.Errorf("%w: %s: %v", ErrUnavailable, op, err)
}
