package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// geminiGenerator is the production Generator: one Gemini SDK call per invocation.
type geminiGenerator struct {
	apiKey string
}

func (g *geminiGenerator) Generate(ctx context.Context, model string, req Request) (string, error) {
	cl, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return "", err
	}
	defer cl.Close()

	m := cl.GenerativeModel(strings.TrimSpace(model))
	if m == nil {
		return "", fmt.Errorf("gemini: model is nil")
	}

	cfg := genai.GenerationConfig{
		Temperature: ptrFloat32(req.Temperature),
	}
	if req.Out != nil {
		// Structured calls must answer in JSON only.
		cfg.ResponseMIMEType = "application/json"
	}
	if req.MaxOutputTokens > 0 {
		cfg.MaxOutputTokens = ptrInt32(req.MaxOutputTokens)
	}
	m.GenerationConfig = cfg

	if strings.TrimSpace(req.System) != "" {
		m.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(req.System)},
		}
	}

	parts := make([]genai.Part, 0, 1+len(req.Blobs))
	if req.Text != "" {
		parts = append(parts, genai.Text(req.Text))
	}
	for _, b := range req.Blobs {
		parts = append(parts, &genai.Blob{MIMEType: b.MIMEType, Data: b.Data})
	}

	resp, err := m.GenerateContent(ctx, parts...)
	if err != nil {
		return "", err
	}
	txt := firstText(resp)
	if txt == "" {
		return "", fmt.Errorf("gemini: empty response")
	}
	return txt, nil
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }
func ptrInt32(v int32) *int32       { return &v }
