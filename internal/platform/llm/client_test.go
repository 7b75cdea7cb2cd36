package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

type roundTripperFunc func(req *http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func jsonResponse(status int, v any) *http.Response {
	b, _ := json.Marshal(v)
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewReader(b)),
	}
}

func newTestClient(t *testing.T, cfg Config, rt roundTripperFunc) *Client {
	t.Helper()
	if cfg.APIKey == "" {
		cfg.APIKey = "sk-test"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://provider/v1"
	}
	c, err := NewWithHTTPClient(nil, cfg, &http.Client{Transport: rt})
	if err != nil {
		t.Fatalf("NewWithHTTPClient: %v", err)
	}
	return c
}

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := New(nil, Config{}); err == nil {
		t.Fatalf("expected error for missing key")
	}
}

func TestGenerateTextMode(t *testing.T) {
	c := newTestClient(t, Config{Model: "qwen-max", Temperature: 0.7, TopP: 0.8}, func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/v1/chat/completions" {
			t.Fatalf("unexpected path: %s", req.URL.Path)
		}
		if got := req.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Fatalf("authorization=%q", got)
		}
		var in chatRequest
		if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
			t.Fatalf("decode req: %v", err)
		}
		if in.Model != "qwen-max" || in.Temperature == nil || *in.Temperature != 0.7 {
			t.Fatalf("unexpected request: %+v", in)
		}
		if len(in.Messages) != 2 || !strings.Contains(in.Messages[1].Content, "材料正文") {
			t.Fatalf("material text not inlined")
		}
		return jsonResponse(http.StatusOK, map[string]any{
			"id":      "chatcmpl-1",
			"model":   "qwen-max",
			"choices": []map[string]any{{"message": map[string]any{"content": `{"lesson_name":"春"}`}}},
			"usage":   map[string]any{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
		}), nil
	})

	gen, err := c.Generate(context.Background(), "材料正文", "模板")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if gen.Text != `{"lesson_name":"春"}` || gen.RequestID != "chatcmpl-1" {
		t.Fatalf("unexpected generation: %+v", gen)
	}
	if gen.Usage == nil || gen.Usage.TotalTokens != 15 {
		t.Fatalf("usage=%+v", gen.Usage)
	}
}

func TestGenerateViaHandlesReferencesFiles(t *testing.T) {
	c := newTestClient(t, Config{}, func(req *http.Request) (*http.Response, error) {
		var in chatRequest
		_ = json.NewDecoder(req.Body).Decode(&in)
		if len(in.Messages) != 3 || in.Messages[1].Content != "fileid://file-a,fileid://file-b" {
			t.Fatalf("messages=%+v", in.Messages)
		}
		return jsonResponse(http.StatusOK, map[string]any{
			"id":      "chatcmpl-2",
			"choices": []map[string]any{{"message": map[string]any{"content": "ok"}}},
		}), nil
	})

	gen, err := c.GenerateViaHandles(context.Background(), "file-a", "file-b")
	if err != nil {
		t.Fatalf("GenerateViaHandles: %v", err)
	}
	if gen.Text != "ok" || gen.Model != DefaultModel {
		t.Fatalf("unexpected generation: %+v", gen)
	}
}

func TestStreamAccumulatesChunks(t *testing.T) {
	stream := strings.Join([]string{
		`data: {"id":"chatcmpl-s","choices":[{"delta":{"content":"{\"a\":"}}]}`,
		``,
		`data: {"id":"chatcmpl-s","choices":[{"delta":{"content":"1}"}}]}`,
		``,
		`data: {"id":"chatcmpl-s","choices":[],"usage":{"prompt_tokens":3,"completion_tokens":2,"total_tokens":5}}`,
		``,
		`data: [DONE]`,
		``,
	}, "\n")

	c := newTestClient(t, Config{Stream: true}, func(req *http.Request) (*http.Response, error) {
		var in chatRequest
		_ = json.NewDecoder(req.Body).Decode(&in)
		if !in.Stream {
			t.Fatalf("expected stream request")
		}
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": []string{"text/event-stream"}},
			Body:       io.NopCloser(strings.NewReader(stream)),
		}, nil
	})

	gen, err := c.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if gen.Text != `{"a":1}` {
		t.Fatalf("text=%q", gen.Text)
	}
	if gen.RequestID != "chatcmpl-s" || gen.Usage == nil || gen.Usage.TotalTokens != 5 {
		t.Fatalf("unexpected generation: %+v", gen)
	}
}

func TestProviderErrorIsNotRetryable(t *testing.T) {
	c := newTestClient(t, Config{}, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusBadRequest, map[string]any{
			"error":      map[string]any{"message": "Input data may contain inappropriate content.", "type": "data_inspection_failed"},
			"request_id": "req-42",
		}), nil
	})

	_, err := c.Generate(context.Background(), "x", "")
	var ge *GenerationError
	if !errors.As(err, &ge) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
	if ge.Kind != KindProvider || ge.Retryable || ge.StatusCode != 400 {
		t.Fatalf("unexpected error: %+v", ge)
	}
	if ge.RequestID != "req-42" || ge.Code != "data_inspection_failed" {
		t.Fatalf("unexpected error fields: %+v", ge)
	}
}

func TestGatewayFailureIsRetryable(t *testing.T) {
	c := newTestClient(t, Config{}, func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusBadGateway,
			Header:     http.Header{},
			Body:       io.NopCloser(strings.NewReader("<html>bad gateway</html>")),
		}, nil
	})

	_, err := c.Generate(context.Background(), "x", "")
	var ge *GenerationError
	if !errors.As(err, &ge) || !ge.IsRetryable() {
		t.Fatalf("expected retryable error, got %v", err)
	}
}

func TestThrottleCarriesRetryAfter(t *testing.T) {
	c := newTestClient(t, Config{}, func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusTooManyRequests,
			Header:     http.Header{"Retry-After": []string{"7"}},
			Body:       io.NopCloser(strings.NewReader("slow down")),
		}, nil
	})

	_, err := c.Generate(context.Background(), "x", "")
	var ge *GenerationError
	if !errors.As(err, &ge) || !ge.IsRetryable() {
		t.Fatalf("expected retryable error, got %v", err)
	}
	if ge.RetryDelay() != 7*time.Second {
		t.Fatalf("retry delay = %v", ge.RetryDelay())
	}
}

func TestTimeoutIsRetryable(t *testing.T) {
	c := newTestClient(t, Config{}, func(req *http.Request) (*http.Response, error) {
		return nil, timeoutErr{}
	})

	_, err := c.Generate(context.Background(), "x", "")
	var ge *GenerationError
	if !errors.As(err, &ge) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
	if ge.Kind != KindTimeout || !ge.Retryable {
		t.Fatalf("unexpected error: %+v", ge)
	}
}

func TestUploadFile(t *testing.T) {
	c := newTestClient(t, Config{}, func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/v1/files" {
			t.Fatalf("unexpected path: %s", req.URL.Path)
		}
		if err := req.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if req.FormValue("purpose") != FilePurpose {
			t.Fatalf("purpose=%q", req.FormValue("purpose"))
		}
		f, hdr, err := req.FormFile("file")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer f.Close()
		if hdr.Filename != "lesson.docx" {
			t.Fatalf("filename=%q", hdr.Filename)
		}
		return jsonResponse(http.StatusOK, map[string]any{"id": "file-fe-1"}), nil
	})

	id, err := c.UploadFile(context.Background(), "lesson.docx", []byte("PK"))
	if err != nil {
		t.Fatalf("UploadFile: %v", err)
	}
	if id != "file-fe-1" {
		t.Fatalf("id=%q", id)
	}
}
