// Package ai is the gateway to the generative model used for crop analysis,
// price suggestions, opportunity matching and the chat assistant. Every call
// degrades to a "no result" value instead of returning an error.
package ai

import (
	"context"
	"time"

	"farmlink-be/internal/market"
)

const (
	OfflineReply = "I'm offline right now (No API Key)."
	FailureReply = "Sorry, I couldn't process that."
)

// Capability names used in logs and metrics.
const (
	CapabilityAnalyzeImage = "analyze_image"
	CapabilityPredictPrice = "predict_price"
	CapabilityMatch        = "match"
	CapabilityChat         = "chat"
)

// Call outcomes.
const (
	OutcomeOK          = "ok"
	OutcomeError       = "error"
	OutcomeUnavailable = "unavailable"
)

type CropAnalysis struct {
	CropName       string       `json:"cropName"`
	QualityGrade   market.Grade `json:"qualityGrade"`
	EstimatedPrice float64      `json:"estimatedPrice"`
	Description    string       `json:"description"`
	Confidence     float64      `json:"confidence"`
}

type PricePrediction struct {
	MinPrice  float64 `json:"minPrice"`
	MaxPrice  float64 `json:"maxPrice"`
	Currency  string  `json:"currency"`
	Reasoning string  `json:"reasoning,omitempty"`
}

type Match struct {
	ListingID  string  `json:"listingId"`
	RequestID  string  `json:"requestId"`
	MatchScore float64 `json:"matchScore"`
	Reason     string  `json:"reason"`
}

// Turn is one prior message of an assistant conversation.
type Turn struct {
	FromAssistant bool
	Text          string
}

// Gateway methods never fail: nil, an empty slice or a fallback reply mean
// "no suggestion".
type Gateway interface {
	Available() bool
	AnalyzeCropImage(ctx context.Context, imageBase64, mimeType string) *CropAnalysis
	PredictPrice(ctx context.Context, crop, location, season string) *PricePrediction
	MatchOpportunities(ctx context.Context, listings []market.CropListing, requests []market.BuyerRequest) []Match
	ChatAssistance(ctx context.Context, history []Turn, message string) string
}

// Observer receives one notification per gateway call.
type Observer interface {
	ObserveAICall(capability, outcome string, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObserveAICall(string, string, time.Duration) {}
