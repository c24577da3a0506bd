package checkout

import (
	"context"
	"strings"
	"time"

	"farmlink-be/internal/events"
	"farmlink-be/internal/logger"
	"farmlink-be/internal/market"
	"farmlink-be/internal/order"
	"farmlink-be/internal/user"
	"farmlink-be/internal/utils"

	"go.uber.org/zap"
)

type Store interface {
	Listing(id string) (market.CropListing, bool)
	PlaceOrderWithinStock(o order.Order) bool
}

type Recorder interface {
	OrderPlaced(paymentMethod string, total float64)
}

type Service struct {
	store     Store
	publisher events.Publisher
	recorder  Recorder
	delay     time.Duration
	now       func() time.Time
}

func NewService(store Store, publisher events.Publisher, recorder Recorder, delay time.Duration) *Service {
	if publisher == nil {
		publisher = events.NewNopPublisher()
	}
	return &Service{
		store:     store,
		publisher: publisher,
		recorder:  recorder,
		delay:     delay,
		now:       time.Now,
	}
}

// Validate checks a request against the listing and resolves defaults: the
// payment method falls back to online and a blank address to the buyer's
// location.
func Validate(buyer user.User, listing market.CropListing, req Request) (Request, error) {
	if req.Quantity <= 0 || req.Quantity > listing.Quantity {
		return req, ErrInvalidQuantity
	}

	req.Address = strings.TrimSpace(req.Address)
	if req.Address == "" {
		req.Address = strings.TrimSpace(buyer.Location)
	}
	if req.Address == "" {
		return req, ErrMissingAddress
	}

	if req.PaymentMethod == "" {
		req.PaymentMethod = PaymentOnline
	}
	if !req.PaymentMethod.Valid() {
		return req, ErrInvalidPaymentMethod
	}
	return req, nil
}

// Checkout validates the request, waits out the simulated payment and places
// a pending order. Validation failures and a cancelled ctx leave the store
// untouched.
func (s *Service) Checkout(ctx context.Context, buyer user.User, req Request) (*Receipt, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Checkout"),
		zap.String("listing_id", req.ListingID),
	)

	listing, ok := s.store.Listing(req.ListingID)
	if !ok {
		log.Warn("listing not found")
		return nil, ErrListingNotFound
	}

	req, err := Validate(buyer, listing, req)
	if err != nil {
		log.Info("checkout rejected", zap.Error(err))
		return nil, err
	}

	quote := NewQuote(listing.PricePerUnit, req.Quantity, req.PaymentMethod)

	if err := s.simulatePayment(ctx); err != nil {
		log.Info("checkout abandoned during payment", zap.Error(err))
		return nil, err
	}

	o := order.Order{
		ID:         utils.NewID("ord"),
		BuyerID:    buyer.ID,
		BuyerName:  buyer.Name,
		FarmerID:   listing.FarmerID,
		FarmerName: listing.FarmerName,
		ListingID:  listing.ID,
		CropName:   listing.CropName,
		Quantity:   req.Quantity,
		Unit:       listing.Unit,
		TotalPrice: quote.Total,
		Status:     order.StatusPending,
		CreatedAt:  s.now(),
		Address:    req.Address,
	}

	if !s.store.PlaceOrderWithinStock(o) {
		log.Warn("stock changed during payment", zap.Float64("quantity", req.Quantity))
		return nil, ErrInsufficientStock
	}

	if s.recorder != nil {
		s.recorder.OrderPlaced(string(req.PaymentMethod), quote.Total)
	}

	e := order.NewEvent(order.EventPlaced, o, o.CreatedAt)
	e.PaymentMethod = string(req.PaymentMethod)
	events.PublishOrder(ctx, s.publisher, e)

	log.Info("order placed",
		zap.String("order_id", o.ID),
		zap.Float64("total", quote.Total),
		zap.Float64("paid_now", quote.PayNow),
	)

	receipt := &Receipt{Order: o, PaymentMethod: req.PaymentMethod, Quote: quote}
	receipt.Instructions = receiptInstructions(receipt)
	return receipt, nil
}

func (s *Service) simulatePayment(ctx context.Context) error {
	if s.delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
