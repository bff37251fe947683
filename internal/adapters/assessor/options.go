package assessor

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/passbet/arena/pkg/logger"
)

// Option applies a configuration option to the OpenAIClient.
type Option func(*OpenAIClient)

// WithModel sets the chat model used for verdicts and test cases.
func WithModel(model string) Option {
	return func(c *OpenAIClient) {
		if model != "" {
			c.model = model
		}
	}
}

// WithRequestTimeout bounds a single API call.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *OpenAIClient) {
		if d > 0 {
			c.requestTimeout = d
		}
	}
}

// WithMaxRetryElapsed bounds the total retry window for one request.
func WithMaxRetryElapsed(d time.Duration) Option {
	return func(c *OpenAIClient) {
		if d > 0 {
			c.maxRetryElapsed = d
		}
	}
}

// WithRequestsPerSecond rate-limits calls to the provider.
func WithRequestsPerSecond(n int) Option {
	return func(c *OpenAIClient) {
		if n > 0 {
			c.limiter = rate.NewLimiter(rate.Every(time.Second), n)
		}
	}
}

// WithLogger sets a custom logger for the client.
func WithLogger(l logger.Logger) Option {
	return func(c *OpenAIClient) {
		if l != nil {
			c.logger = l
		}
	}
}
