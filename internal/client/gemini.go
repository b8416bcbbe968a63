package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"
)

const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiModel   = "gemini-3-pro-preview"
	geminiTimeout        = 15 * time.Second
)

// LessonAnalysis is the structured result the model is asked to return.
type LessonAnalysis struct {
	Summary     string   `json:"summary"`
	Bottlenecks []string `json:"bottlenecks"`
}

// GeminiClient вызывает generateContent REST API
type GeminiClient struct {
	httpClient *http.Client
	baseURL    string
	model      string
}

func NewGeminiClient(model string) *GeminiClient {
	if model == "" {
		model = defaultGeminiModel
	}
	return &GeminiClient{
		httpClient: &http.Client{Timeout: geminiTimeout},
		baseURL:    defaultGeminiBaseURL,
		model:      model,
	}
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Модель оборачивает JSON в markdown или поясняющий текст; берём
// первый блок в фигурных скобках.
var jsonBlockRe = regexp.MustCompile(`\{[\s\S]*\}`)

// Analyze отправляет prompt и разбирает структурированный JSON-ответ.
// Некорректный ответ модели — ошибка, а не паника; вызывающий слой
// изолирует её от CRUD-операций.
func (c *GeminiClient) Analyze(ctx context.Context, apiKey, prompt string) (*LessonAnalysis, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("missing api key")
	}

	payload, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call gemini: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gemini returned status %d", resp.StatusCode)
	}

	var parsed geminiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	text := ""
	if len(parsed.Candidates) > 0 && len(parsed.Candidates[0].Content.Parts) > 0 {
		text = parsed.Candidates[0].Content.Parts[0].Text
	}

	jsonBlock := jsonBlockRe.FindString(text)
	if jsonBlock == "" {
		return nil, fmt.Errorf("no JSON found in model response")
	}

	var analysis LessonAnalysis
	if err := json.Unmarshal([]byte(jsonBlock), &analysis); err != nil {
		return nil, fmt.Errorf("parse analysis JSON: %w", err)
	}

	return &analysis, nil
}
