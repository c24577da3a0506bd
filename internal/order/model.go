package order

import (
	"sort"
	"time"

	"farmlink-be/internal/user"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// Statuses lists every status in lifecycle display order.
var Statuses = []Status{StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled}

// ParseStatus accepts any of the five statuses. No transition rules apply:
// every status is reachable from every other.
func ParseStatus(s string) (Status, error) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", ErrInvalidStatus
}

type Order struct {
	ID         string    `json:"id"`
	BuyerID    string    `json:"buyerId"`
	BuyerName  string    `json:"buyerName"`
	FarmerID   string    `json:"farmerId"`
	FarmerName string    `json:"farmerName"`
	ListingID  string    `json:"listingId"`
	CropName   string    `json:"cropName"`
	Quantity   float64   `json:"quantity"`
	Unit       string    `json:"unit"`
	TotalPrice float64   `json:"totalPrice"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	Address    string    `json:"address"`
}

// ForUser returns the orders a user takes part in: farmers see what they sold,
// everyone else what they bought. Newest first.
func ForUser(orders []Order, u user.User) []Order {
	var out []Order
	for _, o := range orders {
		if u.Role == user.RoleFarmer {
			if o.FarmerID == u.ID {
				out = append(out, o)
			}
			continue
		}
		if o.BuyerID == u.ID {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
