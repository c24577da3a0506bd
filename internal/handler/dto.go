package handler

import (
	"farmlink-be/internal/ai"
	"farmlink-be/internal/chat"
	"farmlink-be/internal/checkout"
	"farmlink-be/internal/user"
)

type signupRequest struct {
	Name       string `json:"name" validate:"required,notblank,max=120"`
	Identifier string `json:"identifier" validate:"required,notblank,max=254"`
	Password   string `json:"password" validate:"required,maxbytes=72"`
	Role       string `json:"role" validate:"required,oneof=farmer buyer admin"`
}

type loginRequest struct {
	Identifier string `json:"identifier" validate:"required,notblank"`
	Password   string `json:"password" validate:"required,maxbytes=72"`
	Role       string `json:"role" validate:"omitempty,oneof=farmer buyer admin"`
}

type authResponse struct {
	Token     string    `json:"token"`
	ExpiresAt int64     `json:"expiresAt"`
	User      user.User `json:"user"`
}

type updateProfileRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=120"`
	Email       *string `json:"email" validate:"omitempty,email"`
	PhoneNumber *string `json:"phoneNumber" validate:"omitempty,max=32"`
	Avatar      *string `json:"avatar" validate:"omitempty,url"`
	Location    *string `json:"location" validate:"omitempty,max=200"`
}

func (r updateProfileRequest) toUpdate() user.ProfileUpdate {
	return user.ProfileUpdate{
		Name:        r.Name,
		Email:       r.Email,
		PhoneNumber: r.PhoneNumber,
		Avatar:      r.Avatar,
		Location:    r.Location,
	}
}

type createListingRequest struct {
	CropName     string  `json:"cropName" validate:"required,max=120"`
	Quantity     float64 `json:"quantity" validate:"gt=0"`
	Unit         string  `json:"unit" validate:"required,max=20"`
	PricePerUnit float64 `json:"pricePerUnit" validate:"gt=0"`
	Location     string  `json:"location" validate:"max=200"`
	ImageURL     string  `json:"imageUrl" validate:"omitempty,url"`
	Description  string  `json:"description" validate:"max=2000"`
	QualityGrade string  `json:"qualityGrade" validate:"omitempty,oneof=A B C"`
}

type createRequestRequest struct {
	CropName       string  `json:"cropName" validate:"required,max=120"`
	QuantityNeeded float64 `json:"quantityNeeded" validate:"gt=0"`
	MaxBudget      float64 `json:"maxBudget" validate:"gt=0"`
	Location       string  `json:"location" validate:"max=200"`
}

type purchaseRequest struct {
	Quantity float64 `json:"quantity" validate:"gt=0"`
}

type addToCartRequest struct {
	ListingID string `json:"listingId" validate:"required"`
}

type checkoutRequest struct {
	ListingID     string  `json:"listingId" validate:"required"`
	Quantity      float64 `json:"quantity"`
	Address       string  `json:"address" validate:"max=500"`
	PaymentMethod string  `json:"paymentMethod" validate:"omitempty,oneof=online cod"`
}

func (r checkoutRequest) toCheckout() checkout.Request {
	return checkout.Request{
		ListingID:     r.ListingID,
		Quantity:      r.Quantity,
		Address:       r.Address,
		PaymentMethod: checkout.PaymentMethod(r.PaymentMethod),
	}
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type createChatRequest struct {
	UserID string `json:"userId" validate:"required"`
}

type createChatResponse struct {
	RoomID string `json:"roomId"`
}

type sendMessageRequest struct {
	Text string `json:"text" validate:"required,max=4000"`
}

type sendMessageResponse struct {
	Message chat.Message  `json:"message"`
	Reply   *chat.Message `json:"reply,omitempty"`
}

type roomResponse struct {
	chat.Room
	OtherUser *user.User `json:"otherUser,omitempty"`
}

type analyzeImageRequest struct {
	Image    string `json:"image" validate:"required,base64"`
	MimeType string `json:"mimeType" validate:"omitempty,oneof=image/jpeg image/png image/webp"`
}

type analyzeImageResponse struct {
	Analysis *ai.CropAnalysis `json:"analysis"`
}

type predictPriceRequest struct {
	Crop     string `json:"crop" validate:"required,max=120"`
	Location string `json:"location" validate:"required,max=200"`
	Season   string `json:"season" validate:"required,max=60"`
}

type predictPriceResponse struct {
	Prediction *ai.PricePrediction `json:"prediction"`
}

type assistRequest struct {
	Message string   `json:"message" validate:"required,max=4000"`
	History []string `json:"history" validate:"max=50"`
}

type assistResponse struct {
	Reply string `json:"reply"`
}

// publicUser strips the password hash before a user leaves the server.
func publicUser(u user.User) user.User {
	u.Password = ""
	return u
}
