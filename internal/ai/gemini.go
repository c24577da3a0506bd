package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"farmlink-be/internal/logger"
	"farmlink-be/internal/market"

	"go.uber.org/zap"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

var (
	errEmptyResponse = errors.New("gemini returned no candidates")
	errUnavailable   = errors.New("gemini api key not configured")
)

type geminiGateway struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	observer   Observer
}

// NewGeminiGateway returns a Gateway backed by the Gemini REST API. An empty
// apiKey yields a gateway that reports unavailable and answers with fallbacks.
func NewGeminiGateway(apiKey, model string, timeout time.Duration, observer Observer) Gateway {
	if apiKey == "" {
		logger.L().Warn("Gemini API key is empty, AI features disabled")
	}
	if observer == nil {
		observer = nopObserver{}
	}

	return &geminiGateway{
		apiKey:  apiKey,
		model:   model,
		baseURL: geminiBaseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		observer: observer,
	}
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
	ResponseSchema   *schema `json:"responseSchema,omitempty"`
}

type generateRequest struct {
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	Contents          []content         `json:"contents"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func (g *geminiGateway) Available() bool {
	return g.apiKey != ""
}

func (g *geminiGateway) AnalyzeCropImage(ctx context.Context, imageBase64, mimeType string) *CropAnalysis {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	req := generateRequest{
		Contents: []content{{
			Role: "user",
			Parts: []part{
				{InlineData: &inlineData{MimeType: mimeType, Data: imageBase64}},
				{Text: analyzeImagePrompt},
			},
		}},
		GenerationConfig: jsonOutput(cropAnalysisSchema),
	}

	var out CropAnalysis
	if !g.generateJSON(ctx, CapabilityAnalyzeImage, req, &out) {
		return nil
	}
	return &out
}

func (g *geminiGateway) PredictPrice(ctx context.Context, crop, location, season string) *PricePrediction {
	req := generateRequest{
		Contents:         []content{userText(pricePrompt(crop, location, season))},
		GenerationConfig: jsonOutput(pricePredictionSchema),
	}

	var out PricePrediction
	if !g.generateJSON(ctx, CapabilityPredictPrice, req, &out) {
		return nil
	}
	return &out
}

func (g *geminiGateway) MatchOpportunities(ctx context.Context, listings []market.CropListing, requests []market.BuyerRequest) []Match {
	prompt, err := matchPrompt(listings, requests)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to build match prompt", zap.Error(err))
		return []Match{}
	}

	req := generateRequest{
		Contents:         []content{userText(prompt)},
		GenerationConfig: jsonOutput(matchSchema),
	}

	var out []Match
	if !g.generateJSON(ctx, CapabilityMatch, req, &out) || out == nil {
		return []Match{}
	}
	return clampScore(out)
}

func (g *geminiGateway) ChatAssistance(ctx context.Context, history []Turn, message string) string {
	if !g.Available() {
		g.observer.ObserveAICall(CapabilityChat, OutcomeUnavailable, 0)
		return OfflineReply
	}

	contents := make([]content, 0, len(history)+1)
	for _, t := range history {
		role := "user"
		if t.FromAssistant {
			role = "model"
		}
		contents = append(contents, content{Role: role, Parts: []part{{Text: t.Text}}})
	}
	contents = append(contents, userText(message))

	req := generateRequest{
		SystemInstruction: &content{Parts: []part{{Text: assistantInstruction}}},
		Contents:          contents,
	}

	text, err := g.generate(ctx, CapabilityChat, req)
	if err != nil || strings.TrimSpace(text) == "" {
		return FailureReply
	}
	return text
}

// generateJSON decodes the model's text answer into out. It reports false for
// every failure, including an unavailable gateway.
func (g *geminiGateway) generateJSON(ctx context.Context, capability string, req generateRequest, out any) bool {
	text, err := g.generate(ctx, capability, req)
	if err != nil {
		return false
	}
	if strings.TrimSpace(text) == "" {
		return false
	}
	if err := json.Unmarshal([]byte(text), out); err != nil {
		logger.FromCtx(ctx).Warn("malformed AI response",
			zap.String("capability", capability),
			zap.Error(err),
		)
		return false
	}
	return true
}

func (g *geminiGateway) generate(ctx context.Context, capability string, body generateRequest) (string, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "ai"),
		zap.String("capability", capability),
		zap.String("model", g.model),
	)

	if !g.Available() {
		g.observer.ObserveAICall(capability, OutcomeUnavailable, 0)
		return "", errUnavailable
	}

	start := time.Now()
	text, err := g.do(ctx, body)
	elapsed := time.Since(start)

	if err != nil {
		log.Error("AI request failed", zap.Error(err), zap.Duration("elapsed", elapsed))
		g.observer.ObserveAICall(capability, OutcomeError, elapsed)
		return "", err
	}

	log.Debug("AI request completed", zap.Duration("elapsed", elapsed))
	g.observer.ObserveAICall(capability, OutcomeOK, elapsed)
	return text, nil
}

func (g *geminiGateway) do(ctx context.Context, body generateRequest) (string, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, url.PathEscape(g.model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read gemini response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var res generateResponse
	if err := json.Unmarshal(bodyBytes, &res); err != nil {
		return "", err
	}
	if len(res.Candidates) == 0 {
		return "", errEmptyResponse
	}

	var sb strings.Builder
	for _, p := range res.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String(), nil
}

func userText(text string) content {
	return content{Role: "user", Parts: []part{{Text: text}}}
}

func jsonOutput(s *schema) *generationConfig {
	return &generationConfig{ResponseMimeType: "application/json", ResponseSchema: s}
}
