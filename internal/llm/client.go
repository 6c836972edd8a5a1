package llm

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/ManojkumarGunda/Assignment-Agent/internal/util"
)

// Defaults for the retry loop; overridable via Client fields.
const (
	DefaultMaxRetries  = 3
	DefaultBackoffBase = 1 * time.Second
)

// Blob is a binary prompt part (e.g. a slide image).
type Blob struct {
	MIMEType string
	Data     []byte
}

// Request describes one generation call. Immutable once constructed.
type Request struct {
	Text  string
	Blobs []Blob

	System          string
	Temperature     float32
	MaxOutputTokens int32

	// Out, when non-nil, is the decode target for structured output. The raw
	// response must be valid JSON for this shape or the call fails with
	// FailureParse.
	Out any

	// Operation is a human-readable label used in log lines.
	Operation string

	// Model overrides the client's default model for this call only. The
	// consensus path pins its evaluation model through this field instead of
	// mutating shared state.
	Model string
}

// Generator is the remote generation call: one model invocation, raw text out.
// The production implementation wraps the Gemini SDK; tests substitute fakes.
type Generator interface {
	Generate(ctx context.Context, model string, req Request) (string, error)
}

// Client wraps a Generator with retry, backoff and failure classification.
// A Client is safe for concurrent use: nothing is mutated after construction.
type Client struct {
	APIKey     string
	Model      string
	MaxRetries int
	Backoff    time.Duration

	Gen Generator

	sleep func(time.Duration)
}

func New(apiKey, model string) *Client {
	apiKey = strings.TrimSpace(apiKey)
	return &Client{
		APIKey:     apiKey,
		Model:      strings.TrimSpace(model),
		MaxRetries: DefaultMaxRetries,
		Backoff:    DefaultBackoffBase,
		Gen:        &geminiGenerator{apiKey: apiKey},
		sleep:      time.Sleep,
	}
}

// Execute runs the call with up to MaxRetries+1 attempts and returns a tagged
// Outcome. It never panics and never returns a Go error: every failure mode is
// a Failure value.
func (c *Client) Execute(ctx context.Context, req Request) Outcome {
	if c.APIKey == "" {
		return failure(FailureConfig, "Gemini API key is missing", nil, "client not initialized")
	}
	if strings.TrimSpace(req.Text) == "" && len(req.Blobs) == 0 {
		return failure(FailureConfig, "prompt content is empty", nil, "empty request")
	}

	op := req.Operation
	if op == "" {
		op = "LLM Call"
	}
	model := req.Model
	if model == "" {
		model = c.Model
	}

	var (
		lastMsg  string
		lastCode *int
	)
	for attempt := 0; attempt <= c.MaxRetries; attempt++ {
		log.Printf("[llm] %s attempt %d/%d model=%s input=%q",
			op, attempt+1, c.MaxRetries+1, model, util.Truncate(req.Text, 200))

		raw, err := c.Gen.Generate(ctx, model, req)
		if err != nil {
			lastMsg = err.Error()
			lastCode = statusCodeOf(err)

			if isRetryable(lastCode, lastMsg) && attempt < c.MaxRetries {
				delay := c.Backoff * (1 << attempt)
				log.Printf("[llm] %s failed (status=%s), retrying in %s (attempt %d/%d): %s",
					op, codeString(lastCode), delay, attempt+1, c.MaxRetries, util.Truncate(lastMsg, 200))
				c.sleep(delay)
				continue
			}

			log.Printf("[llm] %s failed permanently after %d attempts: %s",
				op, attempt+1, util.Truncate(lastMsg, 500))
			return failure(FailureUnavailable,
				"LLM service unavailable after retries (e.g. 503 model overloaded), please try again later",
				lastCode, lastMsg)
		}

		log.Printf("[llm] %s output=%q", op, util.Truncate(raw, 200))

		if req.Out == nil {
			return Outcome{Success: true, Text: raw}
		}
		return parseInto(raw, req.Out, op)
	}

	return failure(FailureUnavailable, "LLM service exceeded maximum retry attempts", lastCode, lastMsg)
}

func codeString(code *int) string {
	if code == nil {
		return "unknown"
	}
	return fmt.Sprintf("%d", *code)
}
