package market

import "time"

type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
)

func (g Grade) Valid() bool {
	return g == "" || g == GradeA || g == GradeB || g == GradeC
}

type ListingStatus string

const (
	ListingActive ListingStatus = "active"
	ListingSold   ListingStatus = "sold"
)

type RequestStatus string

const (
	RequestOpen      RequestStatus = "open"
	RequestFulfilled RequestStatus = "fulfilled"
)

// CropListing is a farmer's offer to sell a quantity of a crop at a unit price.
type CropListing struct {
	ID           string        `json:"id"`
	FarmerID     string        `json:"farmerId"`
	FarmerName   string        `json:"farmerName"`
	CropName     string        `json:"cropName"`
	Quantity     float64       `json:"quantity"`
	Unit         string        `json:"unit"`
	PricePerUnit float64       `json:"pricePerUnit"`
	Location     string        `json:"location"`
	ImageURL     string        `json:"imageUrl,omitempty"`
	Description  string        `json:"description"`
	QualityGrade Grade         `json:"qualityGrade,omitempty"`
	Status       ListingStatus `json:"status"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// Purchase returns the listing after q units are taken. Quantity is clamped at
// zero and the status is sold exactly when nothing is left.
func (l CropListing) Purchase(q float64) CropListing {
	remaining := l.Quantity - q
	if remaining <= 0 {
		l.Quantity = 0
		l.Status = ListingSold
		return l
	}
	l.Quantity = remaining
	l.Status = ListingActive
	return l
}

// BuyerRequest is a buyer's stated need for a crop, quantity and budget.
type BuyerRequest struct {
	ID             string        `json:"id"`
	BuyerID        string        `json:"buyerId"`
	BuyerName      string        `json:"buyerName"`
	CropName       string        `json:"cropName"`
	QuantityNeeded float64       `json:"quantityNeeded"`
	MaxBudget      float64       `json:"maxBudget"`
	Location       string        `json:"location"`
	Status         RequestStatus `json:"status"`
	CreatedAt      time.Time     `json:"createdAt"`
}
