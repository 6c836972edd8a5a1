package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvalDetailVote(t *testing.T) {
	half := 0.5
	zero := 0.0

	tests := []struct {
		name   string
		detail EvalDetail
		want   float64
	}{
		{"correct", EvalDetail{IsCorrect: true}, 1.0},
		{"correct wins over partial credit", EvalDetail{IsCorrect: true, PartialCredit: &half}, 1.0},
		{"partial credit", EvalDetail{PartialCredit: &half}, 0.5},
		{"explicit zero credit", EvalDetail{PartialCredit: &zero}, 0.0},
		{"no verdict at all", EvalDetail{}, 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.detail.Vote())
		})
	}
}
