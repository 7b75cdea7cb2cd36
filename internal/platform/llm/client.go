// Package llm is the client for the hosted generation provider (DashScope in
// OpenAI-compatible mode). Each call makes a single attempt; retries belong to the caller.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/meannnn/MindM/internal/platform/logger"
	"github.com/meannnn/MindM/internal/prompts"
)

const (
	DefaultBaseURL = "https://dashscope.aliyuncs.com/compatible-mode/v1"
	DefaultModel   = "qwen-max"
	FilePurpose    = "file-extract"
)

type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	TopP        float64
	MaxTokens   int
	Timeout     time.Duration
	Stream      bool
	// RateLimit is requests per second; zero disables limiting.
	RateLimit float64
	RateBurst int
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type Generation struct {
	Text      string
	RequestID string
	Model     string
	Usage     *Usage
}

type Client struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
}

func New(log *logger.Logger, cfg Config) (*Client, error) {
	return NewWithHTTPClient(log, cfg, nil)
}

// NewWithHTTPClient uses hc for transport; a nil hc gets one with cfg.Timeout.
func NewWithHTTPClient(log *logger.Logger, cfg Config, hc *http.Client) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing DASHSCOPE_API_KEY")
	}
	if log == nil {
		log = logger.Nop()
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = DefaultModel
	}
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	c := &Client{log: log, cfg: cfg, httpClient: hc}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return c, nil
}

func (c *Client) Model() string { return c.cfg.Model }

// Generate sends the material and template text inline in one prompt.
func (c *Client) Generate(ctx context.Context, primaryText, templateText string) (*Generation, error) {
	return c.Complete(ctx, []Message{
		{Role: "system", Content: prompts.SystemRole},
		{Role: "user", Content: prompts.TeachingDesign(primaryText, templateText)},
	})
}

// GenerateViaHandles references files previously uploaded with UploadFile.
func (c *Client) GenerateViaHandles(ctx context.Context, primaryHandle, templateHandle string) (*Generation, error) {
	refs := []string{"fileid://" + primaryHandle}
	if strings.TrimSpace(templateHandle) != "" {
		refs = append(refs, "fileid://"+templateHandle)
	}
	return c.Complete(ctx, []Message{
		{Role: "system", Content: prompts.SystemRole},
		{Role: "system", Content: strings.Join(refs, ",")},
		{Role: "user", Content: prompts.TeachingDesignForFiles()},
	})
}

// Chat runs a multi-turn conversation as given.
func (c *Client) Chat(ctx context.Context, messages []Message) (*Generation, error) {
	return c.Complete(ctx, messages)
}

type chatRequest struct {
	Model         string         `json:"model"`
	Messages      []Message      `json:"messages"`
	Temperature   *float64       `json:"temperature,omitempty"`
	TopP          *float64       `json:"top_p,omitempty"`
	MaxTokens     int            `json:"max_tokens,omitempty"`
	Stream        bool           `json:"stream,omitempty"`
	StreamOptions map[string]any `json:"stream_options,omitempty"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
	Usage *Usage `json:"usage"`
}

func (c *Client) buildRequest(messages []Message) chatRequest {
	req := chatRequest{Model: c.cfg.Model, Messages: messages, MaxTokens: c.cfg.MaxTokens}
	if c.cfg.Temperature > 0 {
		t := c.cfg.Temperature
		req.Temperature = &t
	}
	if c.cfg.TopP > 0 {
		p := c.cfg.TopP
		req.TopP = &p
	}
	if c.cfg.Stream {
		req.Stream = true
		req.StreamOptions = map[string]any{"include_usage": true}
	}
	return req
}

// Complete posts to /chat/completions, accumulating streamed chunks when streaming is enabled.
func (c *Client) Complete(ctx context.Context, messages []Message) (*Generation, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, transportError(err)
		}
	}
	body := c.buildRequest(messages)
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &GenerationError{Kind: KindDecode, Message: err.Error(), Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, &GenerationError{Kind: KindNetwork, Message: err.Error(), Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	if body.Stream {
		req.Header.Set("Accept", "text/event-stream")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		ge := transportError(err)
		c.log.Warn("Generation request failed", "model", body.Model, "kind", ge.Kind, "error", err)
		return nil, ge
	}
	defer resp.Body.Close()
	headerID := resp.Header.Get("X-Request-Id")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		ge := providerError(resp.StatusCode, raw, resp.Header)
		c.log.Warn("Generation provider error",
			"model", body.Model,
			"status", resp.StatusCode,
			"code", ge.Code,
			"request_id", ge.RequestID,
			"retryable", ge.Retryable,
		)
		return nil, ge
	}

	var gen *Generation
	if body.Stream {
		gen, err = c.readStream(resp.Body)
	} else {
		gen, err = c.readJSON(resp.Body)
	}
	if err != nil {
		return nil, err
	}
	if gen.RequestID == "" {
		gen.RequestID = headerID
	}
	if gen.Model == "" {
		gen.Model = body.Model
	}

	kv := []any{"model", gen.Model, "request_id", gen.RequestID, "duration_ms", time.Since(start).Milliseconds(), "chars", len([]rune(gen.Text))}
	if gen.Usage != nil {
		kv = append(kv, "prompt_tokens", gen.Usage.PromptTokens, "completion_tokens", gen.Usage.CompletionTokens)
	}
	c.log.Info("Generation completed", kv...)
	return gen, nil
}

func (c *Client) readJSON(r io.Reader) (*Generation, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, transportError(err)
	}
	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &GenerationError{Kind: KindDecode, Message: fmt.Sprintf("decode response: %v", err), Err: err}
	}
	if len(out.Choices) == 0 {
		return nil, &GenerationError{Kind: KindDecode, Message: "response has no choices", RequestID: out.ID}
	}
	return &Generation{Text: out.Choices[0].Message.Content, RequestID: out.ID, Model: out.Model, Usage: out.Usage}, nil
}

func (c *Client) readStream(r io.Reader) (*Generation, error) {
	gen := &Generation{}
	var full strings.Builder
	err := streamSSE(r, func(_ string, data string) error {
		data = strings.TrimSpace(data)
		if data == "" || data == "[DONE]" {
			return nil
		}
		var chunk chatResponse
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			var perr providerErrorBody
			if json.Unmarshal([]byte(data), &perr) == nil && perr.Error != nil {
				return &GenerationError{Kind: KindProvider, Message: perr.Error.Message, Code: perr.Error.Type}
			}
			return nil
		}
		if gen.RequestID == "" {
			gen.RequestID = chunk.ID
		}
		if chunk.Model != "" {
			gen.Model = chunk.Model
		}
		if chunk.Usage != nil {
			gen.Usage = chunk.Usage
		}
		for _, ch := range chunk.Choices {
			full.WriteString(ch.Delta.Content)
		}
		return nil
	})
	if err != nil {
		var ge *GenerationError
		if errors.As(err, &ge) {
			return nil, ge
		}
		return nil, transportError(err)
	}
	gen.Text = full.String()
	return gen, nil
}

// UploadFile stores content with the provider and returns its file id.
func (c *Client) UploadFile(ctx context.Context, filename string, content []byte) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", transportError(err)
		}
	}
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := fw.Write(content); err != nil {
		return "", err
	}
	if err := mw.WriteField("purpose", FilePurpose); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/files", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", transportError(err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", transportError(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", providerError(resp.StatusCode, raw, resp.Header)
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &out); err != nil || out.ID == "" {
		return "", &GenerationError{Kind: KindDecode, Message: "file upload response has no id", Err: err}
	}
	c.log.Info("Provider file uploaded", "filename", filename, "provider_file_id", out.ID, "bytes", len(content))
	return out.ID, nil
}
