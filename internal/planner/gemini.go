package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultGeminiBase = "https://generativelanguage.googleapis.com/v1beta"

// ErrNoAPIKey means the Gemini client was constructed without credentials.
var ErrNoAPIKey = errors.New("gemini api key not configured")

// Gemini calls the generateContent REST endpoint directly. BaseURL exists so
// tests can point the client at a local httptest server.
type Gemini struct {
	APIKey  string
	Model   string
	BaseURL string
	HTTP    *http.Client
}

func NewGemini(apiKey, model string) *Gemini {
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &Gemini{
		APIKey: apiKey,
		Model:  model,
		HTTP:   &http.Client{Timeout: 2 * time.Minute},
	}
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig geminiGenConfig `json:"generationConfig"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (g *Gemini) GenerateText(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if g.APIKey == "" {
		return "", ErrNoAPIKey
	}
	base := g.BaseURL
	if base == "" {
		base = defaultGeminiBase
	}
	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		strings.TrimRight(base, "/"), url.PathEscape(g.Model), url.QueryEscape(g.APIKey))

	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: geminiGenConfig{
			Temperature:     0.7,
			TopK:            40,
			TopP:            0.95,
			MaxOutputTokens: maxTokens,
		},
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	httpClient := g.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	res, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		var apiErr map[string]any
		_ = json.NewDecoder(res.Body).Decode(&apiErr)
		return "", fmt.Errorf("gemini status %d: %v", res.StatusCode, apiErr)
	}
	var out geminiResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode gemini response: %w", err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("empty gemini response")
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
}
