package market

import "time"

// SeedListings returns the demo listings, timestamped relative to now.
func SeedListings(now time.Time) []CropListing {
	return []CropListing{
		{
			ID:           "l1",
			FarmerID:     "u1",
			FarmerName:   "John Appleseed",
			CropName:     "Organic Avocados",
			Quantity:     500,
			Unit:         "kg",
			PricePerUnit: 250,
			Location:     "Bangalore, KA",
			QualityGrade: GradeA,
			Description:  "Freshly harvested Hass avocados. Organic certified.",
			ImageURL:     "https://picsum.photos/400/300?random=1",
			Status:       ListingActive,
			CreatedAt:    now.Add(-100 * time.Second),
		},
		{
			ID:           "l2",
			FarmerID:     "u1",
			FarmerName:   "John Appleseed",
			CropName:     "Sweet Corn",
			Quantity:     1200,
			Unit:         "ears",
			PricePerUnit: 15,
			Location:     "Pune, MH",
			QualityGrade: GradeB,
			Description:  "Sweet yellow corn, bulk harvest.",
			ImageURL:     "https://picsum.photos/400/300?random=2",
			Status:       ListingActive,
			CreatedAt:    now.Add(-200 * time.Second),
		},
	}
}

func SeedRequests(now time.Time) []BuyerRequest {
	return []BuyerRequest{
		{
			ID:             "r1",
			BuyerID:        "u2",
			BuyerName:      "Fresh Mart Ltd",
			CropName:       "Organic Avocados",
			QuantityNeeded: 200,
			MaxBudget:      60000,
			Location:       "Mumbai, MH",
			Status:         RequestOpen,
			CreatedAt:      now.Add(-50 * time.Second),
		},
	}
}
