package assessor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/passbet/arena/internal/domain/model"
	"github.com/passbet/arena/pkg/logger"
	"github.com/passbet/arena/pkg/metrics"
)

// OpenAIClient implements Assessor and TestCaseGenerator over the OpenAI
// chat completions API. Calls are rate-limited and retried with
// exponential backoff; a request that exhausts the retry window returns
// ErrUnavailable.
type OpenAIClient struct {
	client          *openai.Client
	model           string
	requestTimeout  time.Duration
	maxRetryElapsed time.Duration
	limiter         *rate.Limiter
	logger          logger.Logger
}

// compile-time interface checks.
var (
	_ Assessor          = (*OpenAIClient)(nil)
	_ TestCaseGenerator = (*OpenAIClient)(nil)
)

// NewOpenAIClient creates a new client with configuration options.
func NewOpenAIClient(apiKey string, opts ...Option) *OpenAIClient {
	c := &OpenAIClient{
		client:          openai.NewClient(apiKey),
		model:           openai.GPT4oMini,
		requestTimeout:  30 * time.Second,
		maxRetryElapsed: 2 * time.Minute,
		limiter:         rate.NewLimiter(rate.Every(time.Second), 5),
		logger:          logger.Named("assessor"),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// verdict mirrors the JSON object the model is asked to produce for an
// assessment.
type verdict struct {
	WillPass  bool   `json:"willPass"`
	Reasoning string `json:"reasoning"`
}

// generated mirrors the JSON object the model is asked to produce for
// test-case generation.
type generated struct {
	TestCases []model.TestCase `json:"testCases"`
}

// Assess judges a submitted solution against the challenge's test cases.
func (c *OpenAIClient) Assess(ctx context.Context, req AssessmentRequest) (model.Outcome, error) {
	metrics.RecordAssessorCall("assess")
	start := time.Now()
	defer func() {
		metrics.RecordAssessorLatency(float64(time.Since(start).Milliseconds()))
	}()

	prompt := buildAssessmentPrompt(req)

	raw, err := c.complete(ctx, prompt)
	if err != nil {
		metrics.RecordAssessorError("assess")
		return model.Outcome{}, err
	}

	var v verdict
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		metrics.RecordAssessorError("assess")
		return model.Outcome{}, fmt.Errorf("%w: %w", ErrMalformedVerdict, err)
	}
	if strings.TrimSpace(v.Reasoning) == "" {
		metrics.RecordAssessorError("assess")
		return model.Outcome{}, fmt.Errorf("%w: empty reasoning", ErrMalformedVerdict)
	}

	c.logger.Debug(ctx, "assessment verdict",
		logger.Bool("willPass", v.WillPass),
		logger.String("language", req.Language),
	)
	return model.Outcome{WillPass: v.WillPass, Reasoning: v.Reasoning}, nil
}

// GenerateTestCases produces test cases for a challenge description.
func (c *OpenAIClient) GenerateTestCases(ctx context.Context, description, language string) ([]model.TestCase, error) {
	metrics.RecordAssessorCall("generate")

	prompt := buildGenerationPrompt(description, language)

	raw, err := c.complete(ctx, prompt)
	if err != nil {
		metrics.RecordAssessorError("generate")
		return nil, err
	}

	var g generated
	if err := json.Unmarshal([]byte(raw), &g); err != nil {
		metrics.RecordAssessorError("generate")
		return nil, fmt.Errorf("%w: %w", ErrMalformedVerdict, err)
	}
	if len(g.TestCases) == 0 {
		metrics.RecordAssessorError("generate")
		return nil, fmt.Errorf("%w: no test cases produced", ErrMalformedVerdict)
	}

	metrics.RecordTestCasesGenerated(len(g.TestCases))
	return g.TestCases, nil
}

// complete sends one prompt through the rate limiter and retry policy and
// returns the model's raw JSON answer.
func (c *OpenAIClient) complete(ctx context.Context, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	var content string
	operation := func() error {
		reqCtx, cancel := context.WithTimeout(ctx, c.requestTimeout)
		defer cancel()

		resp, err := c.client.CreateChatCompletion(reqCtx, openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
		})
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("empty choices")
		}
		content = resp.Choices[0].Message.Content
		return nil
	}

	strategy := backoff.NewExponentialBackOff()
	strategy.MaxElapsedTime = c.maxRetryElapsed

	if err := backoff.Retry(operation, backoff.WithContext(strategy, ctx)); err != nil {
		c.logger.Warn(ctx, "assessor call exhausted retries", logger.Error(err))
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return content, nil
}

func buildAssessmentPrompt(req AssessmentRequest) string {
	var sb strings.Builder
	sb.WriteString("You are an expert software engineer reviewing a submitted solution to a coding challenge.\n\n")
	sb.WriteString("Challenge description: ")
	sb.WriteString(req.ChallengeDescription)
	sb.WriteString("\nProgramming language: ")
	sb.WriteString(req.Language)
	sb.WriteString("\nTest cases (JSON): ")
	sb.WriteString(req.TestCases)
	sb.WriteString("\n\nSubmitted code:\n")
	sb.WriteString(req.Code)
	sb.WriteString("\n\nDecide whether this code would pass all the test cases. ")
	sb.WriteString(`Answer with a JSON object: {"willPass": <bool>, "reasoning": "<1-3 sentences>"}`)
	return sb.String()
}

func buildGenerationPrompt(description, language string) string {
	var sb strings.Builder
	sb.WriteString("You are an expert software engineer. Generate test cases for the following coding challenge. ")
	sb.WriteString("The test cases should be comprehensive and cover various scenarios, including edge cases and invalid inputs.\n\n")
	sb.WriteString("Coding challenge description: ")
	sb.WriteString(description)
	sb.WriteString("\nProgramming language: ")
	sb.WriteString(language)
	sb.WriteString("\n\n")
	sb.WriteString(`Answer with a JSON object: {"testCases": [{"input": "<input>", "expectedOutput": "<output>"}, ...]}`)
	return sb.String()
}
