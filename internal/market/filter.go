package market

import "strings"

func matchesSearch(term, cropName, location string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(cropName), term) ||
		strings.Contains(strings.ToLower(location), term)
}

// BrowseListings returns active listings not owned by viewerID whose crop name
// or location contains term (case-insensitive). Order is preserved.
func BrowseListings(listings []CropListing, viewerID, term string) []CropListing {
	term = strings.TrimSpace(term)
	out := make([]CropListing, 0, len(listings))
	for _, l := range listings {
		if l.Status != ListingActive || l.FarmerID == viewerID {
			continue
		}
		if matchesSearch(term, l.CropName, l.Location) {
			out = append(out, l)
		}
	}
	return out
}

// BrowseRequests is the buyer-request counterpart of BrowseListings.
func BrowseRequests(requests []BuyerRequest, viewerID, term string) []BuyerRequest {
	term = strings.TrimSpace(term)
	out := make([]BuyerRequest, 0, len(requests))
	for _, r := range requests {
		if r.Status != RequestOpen || r.BuyerID == viewerID {
			continue
		}
		if matchesSearch(term, r.CropName, r.Location) {
			out = append(out, r)
		}
	}
	return out
}

func ListingsByFarmer(listings []CropListing, farmerID string) []CropListing {
	var out []CropListing
	for _, l := range listings {
		if l.FarmerID == farmerID {
			out = append(out, l)
		}
	}
	return out
}

func RequestsByBuyer(requests []BuyerRequest, buyerID string) []BuyerRequest {
	var out []BuyerRequest
	for _, r := range requests {
		if r.BuyerID == buyerID {
			out = append(out, r)
		}
	}
	return out
}
