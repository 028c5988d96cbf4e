package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrRateLimited is returned when every attempt was throttled (HTTP 429).
	ErrRateLimited = errors.New("API rate limited: 429 Too Many Requests. Try again later")
	// ErrTransport is returned when every attempt failed to reach the API.
	ErrTransport = errors.New("model API unreachable")
)

const (
	systemPrompt = "Output valid JSON object only. No markdown, no code fences, no extra text. Ensure JSON ends with '}'."
	userSuffix   = "\n\nReturn JSON only."
)

// Options configures a Client.
type Options struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
	Referer string
	Title   string

	Policy Policy
	Sleep  Sleeper
	Log    *slog.Logger
	Stats  *LLMStats
}

// Client calls an OpenAI-compatible chat-completions endpoint (OpenRouter
// by default).
type Client struct {
	endpoint   string
	apiKey     string
	model      string
	referer    string
	title      string
	httpClient *http.Client
	policy     Policy
	sleep      Sleeper
	log        *slog.Logger

	Stats *LLMStats
}

func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 180 * time.Second
	}
	if opts.Policy.MaxAttempts == 0 {
		opts.Policy = DefaultPolicy
	}
	if opts.Sleep == nil {
		opts.Sleep = SleepContext
	}
	if opts.Log == nil {
		opts.Log = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if opts.Stats == nil {
		opts.Stats = NewLLMStats(time.Hour)
	}
	return &Client{
		endpoint: strings.TrimRight(opts.BaseURL, "/") + "/chat/completions",
		apiKey:   opts.APIKey,
		model:    opts.Model,
		referer:  opts.Referer,
		title:    opts.Title,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		policy: opts.Policy,
		sleep:  opts.Sleep,
		log:    opts.Log,
		Stats:  opts.Stats,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Code    any    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Model returns the default model identifier.
func (c *Client) Model() string {
	return c.model
}

// Complete sends prompt to the model and returns the text of the first
// choice. Throttling and transport failures are retried per the client's
// Policy; any other non-2xx status fails at once with a *StatusError.
func (c *Client) Complete(ctx context.Context, prompt, model string) (string, error) {
	if model == "" {
		model = c.model
	}
	body, err := json.Marshal(chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: strings.TrimSpace(prompt) + userSuffix},
		},
		Temperature: 0.8,
		MaxTokens:   25000,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	log := c.log.With("model", model)
	start := time.Now()
	r := c.policy.Start()
	for {
		text, retryAfter, err := c.attempt(ctx, body)
		if err == nil {
			r.Succeed()
			c.Stats.Record(time.Since(start).Milliseconds(), r.Attempt(), true)
			return text, nil
		}
		if ctx.Err() != nil {
			c.Stats.Record(time.Since(start).Milliseconds(), r.Attempt(), false)
			return "", fmt.Errorf("model call aborted: %w", ctx.Err())
		}
		if !isRetryable(err) {
			c.Stats.Record(time.Since(start).Milliseconds(), r.Attempt(), false)
			return "", err
		}

		wait := r.Fail(err, retryAfter)
		if r.State() == StateExhausted {
			c.Stats.Record(time.Since(start).Milliseconds(), r.Attempt(), false)
			log.Error("model call exhausted retries", "attempts", r.Attempt(), "error", err)
			return "", r.Err()
		}

		log.Warn("retryable model error",
			"attempt", r.Attempt(),
			"max_attempts", c.policy.MaxAttempts,
			"wait", wait.String(),
			"error", err,
		)
		if err := c.sleep(ctx, wait); err != nil {
			c.Stats.Record(time.Since(start).Milliseconds(), r.Attempt(), false)
			return "", err
		}
		r.Resume()
	}
}

// attempt performs one HTTP round trip. On 429 it returns a
// *rateLimitError and the parsed Retry-After delay.
func (c *Client) attempt(ctx context.Context, body []byte) (string, time.Duration, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", 0, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	if c.referer != "" {
		httpReq.Header.Set("HTTP-Referer", c.referer)
	}
	if c.title != "" {
		httpReq.Header.Set("X-Title", c.title)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", 0, &transportError{err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return "", 0, &transportError{err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
		return "", retryAfter, &rateLimitError{retryAfter: retryAfter}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", 0, &StatusError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var apiResp chatResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", 0, fmt.Errorf("decode response: %w", err)
	}
	if apiResp.Error != nil {
		return "", 0, fmt.Errorf("model error: %v: %s", apiResp.Error.Code, apiResp.Error.Message)
	}
	if len(apiResp.Choices) == 0 {
		return "", 0, errors.New("model response has no choices")
	}
	return apiResp.Choices[0].Message.Content, 0, nil
}

// parseRetryAfter accepts only a plain number of seconds.
func parseRetryAfter(v string) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	for _, r := range v {
		if r < '0' || r > '9' {
			return 0
		}
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func isRetryable(err error) bool {
	var rl *rateLimitError
	var te *transportError
	return errors.As(err, &rl) || errors.As(err, &te)
}

// StatusError is a non-retryable HTTP failure from the model API.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("model api status %d: %s", e.StatusCode, truncate(e.Body, 200))
}

type rateLimitError struct {
	retryAfter time.Duration
}

func (e *rateLimitError) Error() string {
	if e.retryAfter > 0 {
		return fmt.Sprintf("status 429 (retry after %s)", e.retryAfter)
	}
	return "status 429"
}

type transportError struct {
	err error
}

func (e *transportError) Error() string { return "transport: " + e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
