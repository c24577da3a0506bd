package ai

import (
	"encoding/json"
	"fmt"

	"farmlink-be/internal/market"
)

const (
	analyzeImagePrompt   = "Analyze this crop image. Identify the crop name, estimate a quality grade (A, B, or C), and suggest a competitive market price per kg in INR (Indian Rupee) based on visual quality. Return JSON."
	assistantInstruction = "You are a helpful AI assistant for farmers and buyers. Keep responses concise and professional."
)

// schema mirrors the subset of the OpenAPI schema object the model accepts.
type schema struct {
	Type        string             `json:"type"`
	Properties  map[string]*schema `json:"properties,omitempty"`
	Items       *schema            `json:"items,omitempty"`
	Enum        []string           `json:"enum,omitempty"`
	Description string             `json:"description,omitempty"`
}

var (
	stringSchema = &schema{Type: "STRING"}
	numberSchema = &schema{Type: "NUMBER"}

	cropAnalysisSchema = &schema{
		Type: "OBJECT",
		Properties: map[string]*schema{
			"cropName":       stringSchema,
			"qualityGrade":   {Type: "STRING", Enum: []string{"A", "B", "C"}},
			"estimatedPrice": numberSchema,
			"description":    stringSchema,
			"confidence":     numberSchema,
		},
	}

	pricePredictionSchema = &schema{
		Type: "OBJECT",
		Properties: map[string]*schema{
			"minPrice":  numberSchema,
			"maxPrice":  numberSchema,
			"currency":  stringSchema,
			"reasoning": stringSchema,
		},
	}

	matchSchema = &schema{
		Type: "ARRAY",
		Items: &schema{
			Type: "OBJECT",
			Properties: map[string]*schema{
				"listingId":  stringSchema,
				"requestId":  stringSchema,
				"matchScore": {Type: "NUMBER", Description: "0 to 100"},
				"reason":     stringSchema,
			},
		},
	}
)

func pricePrompt(crop, location, season string) string {
	return fmt.Sprintf(
		"Predict the current market price range for %s in %s during %s. Return a JSON object with minPrice, maxPrice, and currency (use INR).",
		crop, location, season,
	)
}

type listingSummary struct {
	ID       string  `json:"id"`
	Crop     string  `json:"crop"`
	Location string  `json:"loc"`
	Quantity float64 `json:"qty"`
}

func matchPrompt(listings []market.CropListing, requests []market.BuyerRequest) (string, error) {
	ls := make([]listingSummary, 0, len(listings))
	for _, l := range listings {
		ls = append(ls, listingSummary{ID: l.ID, Crop: l.CropName, Location: l.Location, Quantity: l.Quantity})
	}
	rs := make([]listingSummary, 0, len(requests))
	for _, r := range requests {
		rs = append(rs, listingSummary{ID: r.ID, Crop: r.CropName, Location: r.Location, Quantity: r.QuantityNeeded})
	}

	rawListings, err := json.Marshal(ls)
	if err != nil {
		return "", err
	}
	rawRequests, err := json.Marshal(rs)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(
		"Act as a matching engine.\nListings: %s\nRequests: %s\n\nFind the best matches. Return a JSON array of objects.",
		rawListings, rawRequests,
	), nil
}

// clampScore keeps match scores on the documented 0-100 scale.
func clampScore(matches []Match) []Match {
	for i := range matches {
		switch {
		case matches[i].MatchScore < 0:
			matches[i].MatchScore = 0
		case matches[i].MatchScore > 100:
			matches[i].MatchScore = 100
		}
	}
	return matches
}
