package llm

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

func TestStatusCodeOfTypedError(t *testing.T) {
	code := statusCodeOf(&googleapi.Error{Code: 429, Message: "quota"})
	require.NotNil(t, code)
	assert.Equal(t, 429, *code)
}

func TestStatusCodeOfWrappedTypedError(t *testing.T) {
	err := fmt.Errorf("generate: %w", &googleapi.Error{Code: 503, Message: "overloaded"})
	code := statusCodeOf(err)
	require.NotNil(t, code)
	assert.Equal(t, 503, *code)
}

func TestStatusCodeOfTextFallback(t *testing.T) {
	code := statusCodeOf(errors.New("upstream returned 502 while proxying"))
	require.NotNil(t, code)
	assert.Equal(t, 502, *code)
}

func TestStatusCodeOfUnknown(t *testing.T) {
	assert.Nil(t, statusCodeOf(errors.New("something else entirely")))
}

func TestIsRetryable(t *testing.T) {
	c := func(v int) *int { return &v }
	tests := []struct {
		name string
		code *int
		msg  string
		want bool
	}{
		{"429", c(429), "quota", true},
		{"500", c(500), "", true},
		{"502", c(502), "", true},
		{"503", c(503), "", true},
		{"504", c(504), "", true},
		{"400", c(400), "bad request", false},
		{"401", c(401), "unauthorized", false},
		{"no code, overloaded", nil, "The model is Overloaded", true},
		{"no code, timeout", nil, "context timeout exceeded", true},
		{"no code, deadline", nil, "DEADLINE exceeded", true},
		{"no code, connection", nil, "connection refused", true},
		{"no code, rate limit", nil, "rate limit hit", true},
		{"no code, busy", nil, "server busy", true},
		{"no code, plain failure", nil, "invalid argument", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryable(tt.code, tt.msg))
		})
	}
}
