package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// WorkerProvider posts the conversation to a chat proxy that speaks the
// Chat Completions response shape. The proxy holds the real API key.
type WorkerProvider struct {
	url    string
	client *http.Client
}

// NewWorkerProvider creates a provider for the given worker URL. A nil
// client means http.DefaultClient.
func NewWorkerProvider(url string, client *http.Client) *WorkerProvider {
	if client == nil {
		client = http.DefaultClient
	}
	return &WorkerProvider{url: url, client: client}
}

func (p *WorkerProvider) Name() string {
	return "worker"
}

type workerRequest struct {
	Messages []Message `json:"messages"`
}

type workerResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Model string `json:"model"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// Complete sends one request. There is no retry: any failure is returned
// to the caller as-is.
func (p *WorkerProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	body, err := json.Marshal(workerRequest{Messages: req.Messages})
	if err != nil {
		return nil, fmt.Errorf("encoding chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sending chat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrRequestFailed, resp.StatusCode)
	}

	var out workerResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding chat response: %w", err)
	}

	if len(out.Choices) == 0 {
		return nil, ErrEmptyResponse
	}
	choice := out.Choices[0]
	content := strings.TrimSpace(choice.Message.Content)
	if content == "" {
		return nil, ErrEmptyResponse
	}

	return &CompletionResponse{
		Content:      content,
		InputTokens:  out.Usage.PromptTokens,
		OutputTokens: out.Usage.CompletionTokens,
		Model:        out.Model,
		FinishReason: choice.FinishReason,
	}, nil
}
