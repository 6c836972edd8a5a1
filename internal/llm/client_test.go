package llm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

// scriptedGen replays a fixed sequence of responses and records every call.
type scriptedGen struct {
	mu     sync.Mutex
	script []scriptStep
	calls  int
	models []string
}

type scriptStep struct {
	text string
	err  error
}

func (g *scriptedGen) Generate(_ context.Context, model string, _ Request) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	i := g.calls
	g.calls++
	g.models = append(g.models, model)
	if i >= len(g.script) {
		i = len(g.script) - 1
	}
	return g.script[i].text, g.script[i].err
}

func (g *scriptedGen) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func newTestClient(gen Generator) (*Client, *[]time.Duration) {
	var sleeps []time.Duration
	c := &Client{
		APIKey:     "test-key",
		Model:      "default-model",
		MaxRetries: DefaultMaxRetries,
		Backoff:    DefaultBackoffBase,
		Gen:        gen,
		sleep:      func(d time.Duration) { sleeps = append(sleeps, d) },
	}
	return c, &sleeps
}

func TestExecuteMissingCredential(t *testing.T) {
	gen := &scriptedGen{script: []scriptStep{{text: "never reached"}}}
	c, _ := newTestClient(gen)
	c.APIKey = ""

	out := c.Execute(context.Background(), Request{Text: "hello"})

	require.False(t, out.Success)
	require.NotNil(t, out.Failure)
	assert.Equal(t, FailureConfig, out.Failure.Kind)
	assert.Nil(t, out.Failure.StatusCode)
	assert.Equal(t, 0, gen.callCount(), "no network attempt may happen without a credential")
}

func TestExecuteEmptyPrompt(t *testing.T) {
	gen := &scriptedGen{script: []scriptStep{{text: "never reached"}}}
	c, _ := newTestClient(gen)

	out := c.Execute(context.Background(), Request{})

	require.NotNil(t, out.Failure)
	assert.Equal(t, FailureConfig, out.Failure.Kind)
	assert.Equal(t, 0, gen.callCount())
}

func TestExecuteRetriesTransientThenSucceeds(t *testing.T) {
	unavailable := &googleapi.Error{Code: 503, Message: "model overloaded"}
	gen := &scriptedGen{script: []scriptStep{
		{err: unavailable},
		{err: unavailable},
		{text: "all good"},
	}}
	c, sleeps := newTestClient(gen)

	out := c.Execute(context.Background(), Request{Text: "grade this"})

	require.True(t, out.Success)
	assert.Equal(t, "all good", out.Text)
	assert.Equal(t, 3, gen.callCount())
	assert.Equal(t, []time.Duration{1 * time.Second, 2 * time.Second}, *sleeps,
		"backoff must double per attempt")
}

func TestExecuteNonRetryableStatusFailsImmediately(t *testing.T) {
	gen := &scriptedGen{script: []scriptStep{
		{err: &googleapi.Error{Code: 400, Message: "bad request"}},
	}}
	c, sleeps := newTestClient(gen)

	out := c.Execute(context.Background(), Request{Text: "grade this"})

	require.False(t, out.Success)
	require.NotNil(t, out.Failure)
	assert.Equal(t, FailureUnavailable, out.Failure.Kind)
	require.NotNil(t, out.Failure.StatusCode)
	assert.Equal(t, 400, *out.Failure.StatusCode)
	assert.Equal(t, 1, gen.callCount(), "non-retryable errors must not be retried")
	assert.Empty(t, *sleeps)
}

func TestExecuteExhaustsRetries(t *testing.T) {
	gen := &scriptedGen{script: []scriptStep{
		{err: &googleapi.Error{Code: 429, Message: "rate limit"}},
	}}
	c, sleeps := newTestClient(gen)
	c.MaxRetries = 2

	out := c.Execute(context.Background(), Request{Text: "grade this"})

	require.False(t, out.Success)
	assert.Equal(t, FailureUnavailable, out.Failure.Kind)
	require.NotNil(t, out.Failure.StatusCode)
	assert.Equal(t, 429, *out.Failure.StatusCode)
	assert.Equal(t, 3, gen.callCount())
	assert.Equal(t, []time.Duration{1 * time.Second, 2 * time.Second}, *sleeps)
}

func TestExecuteRetryableByMessageFragment(t *testing.T) {
	gen := &scriptedGen{script: []scriptStep{
		{err: errors.New("upstream connection reset")},
		{text: "recovered"},
	}}
	c, _ := newTestClient(gen)

	out := c.Execute(context.Background(), Request{Text: "grade this"})

	require.True(t, out.Success)
	assert.Equal(t, 2, gen.callCount())
}

func TestExecuteInfersStatusCodeFromMessage(t *testing.T) {
	gen := &scriptedGen{script: []scriptStep{
		{err: fmt.Errorf("rpc error: 503 Service Unavailable")},
		{text: "recovered"},
	}}
	c, sleeps := newTestClient(gen)

	out := c.Execute(context.Background(), Request{Text: "grade this"})

	require.True(t, out.Success)
	assert.Equal(t, []time.Duration{1 * time.Second}, *sleeps)
}

func TestExecuteModelOverride(t *testing.T) {
	gen := &scriptedGen{script: []scriptStep{{text: "ok"}}}
	c, _ := newTestClient(gen)

	c.Execute(context.Background(), Request{Text: "x"})
	c.Execute(context.Background(), Request{Text: "x", Model: "pinned-model"})

	require.Equal(t, []string{"default-model", "pinned-model"}, gen.models)
	assert.Equal(t, "default-model", c.Model, "override must not touch shared state")
}

func TestExecuteRawTextWhenNoShapeExpected(t *testing.T) {
	gen := &scriptedGen{script: []scriptStep{{text: "free-form answer"}}}
	c, _ := newTestClient(gen)

	out := c.Execute(context.Background(), Request{Text: "x"})

	require.True(t, out.Success)
	assert.Equal(t, "free-form answer", out.Text)
}
