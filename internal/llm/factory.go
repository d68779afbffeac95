package llm

import (
	"fmt"
	"net/http"
	"os"
	"time"
)

// Options configures NewProvider.
type Options struct {
	// Mode is "worker" or "openai".
	Mode string
	// WorkerURL is the chat proxy URL for worker mode. Empty means the
	// advisor is unconfigured.
	WorkerURL string
	// Model is used in openai mode.
	Model string
	// BaseURL optionally overrides the OpenAI API base URL.
	BaseURL string
	// RequestsPerMinute wraps the provider in a rate limiter when positive.
	RequestsPerMinute int
}

// NewProvider creates the chat provider described by opts. Worker mode
// without a URL yields Unconfigured rather than an error.
func NewProvider(opts Options) (Provider, error) {
	var p Provider

	switch opts.Mode {
	case "", "worker":
		if opts.WorkerURL == "" {
			return Unconfigured{}, nil
		}
		p = NewWorkerProvider(opts.WorkerURL, &http.Client{Timeout: 120 * time.Second})

	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
		}
		p = NewOpenAIProvider(apiKey, opts.Model, opts.BaseURL)

	default:
		return nil, fmt.Errorf("unsupported chat mode: %s", opts.Mode)
	}

	if opts.RequestsPerMinute > 0 {
		p = NewRateLimitedProvider(p, opts.RequestsPerMinute)
	}
	return p, nil
}
