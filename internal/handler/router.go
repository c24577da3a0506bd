package handler

import (
	"net/http"

	"farmlink-be/internal/logger"
	"farmlink-be/internal/middleware"
)

// Routes registers every endpoint on a fresh mux, each instrumented under its
// route pattern.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	handle := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, h.Metrics.Instrument(pattern, fn))
	}

	handle("GET /health", h.Health)
	mux.Handle("GET /metrics", h.Metrics.Handler())

	handle("POST /auth/signup", h.Signup)
	handle("POST /auth/login", h.Login)
	handle("POST /auth/logout", h.Logout)
	handle("GET /me", h.Me)
	handle("PATCH /me", h.UpdateMe)

	handle("GET /listings", h.ListListings)
	handle("POST /listings", h.CreateListing)
	handle("POST /listings/{id}/purchase", h.PurchaseListing)
	handle("GET /requests", h.ListRequests)
	handle("POST /requests", h.CreateRequest)

	handle("GET /cart", h.GetCart)
	handle("POST /cart", h.AddToCart)
	handle("POST /checkout", h.PlaceOrder)
	handle("GET /orders", h.ListOrders)
	handle("PATCH /orders/{id}/status", h.UpdateOrderStatus)

	handle("GET /chats", h.ListChats)
	handle("POST /chats", h.CreateChat)
	handle("GET /chats/{id}/messages", h.ListMessages)
	handle("POST /chats/{id}/messages", h.SendMessage)
	handle("GET /ws", h.ServeWS)

	handle("POST /ai/analyze-image", h.AnalyzeImage)
	handle("POST /ai/predict-price", h.PredictPrice)
	handle("POST /ai/assist", h.Assist)

	handle("POST /matches", h.StartMatching)
	handle("GET /matches", h.GetMatches)

	return mux
}

// NewRouter wraps the routes in the middleware chain, outermost first:
// request id, access log, panic recovery, CORS, auth, rate limiting.
func NewRouter(h *Handler, corsOrigins []string) http.Handler {
	var next http.Handler = h.Routes()
	next = middleware.RateLimitMiddleware(next)
	next = middleware.Auth(h.Tokens, h.Sessions)(next)
	next = middleware.CORS(corsOrigins)(next)
	next = middleware.Recover(next)
	next = logger.LoggingMiddleware(next)
	next = logger.RequestIDMiddleware(next)
	return next
}
