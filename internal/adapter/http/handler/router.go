package handler

import (
	"ticketpay/internal/adapter/http/middleware"
	redisStore "ticketpay/internal/adapter/storage/redis"
	"ticketpay/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	OnboardingSvc  ports.OnboardingService
	OrderSvc       ports.OrderService
	WalletSvc      ports.WalletService
	PayoutSvc      ports.PayoutService
	WebhookSvc     ports.WebhookProcessor
	JWTSecret      string
	JWTIssuer      string
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep, verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	auth := middleware.JWTAuth(deps.JWTSecret, deps.JWTIssuer, deps.Logger)
	organizerOnly := middleware.RequireRole(middleware.RoleOrganizer)

	// --- Merchant onboarding (organizer JWT) ---
	connectHandler := NewConnectHandler(deps.OnboardingSvc)
	connect := r.Group("/connect", auth, organizerOnly)
	{
		connect.GET("/onboard-organizer", rl("connect"), connectHandler.OnboardOrganizer)
		connect.GET("/check-paypal-status", rl("connect"), connectHandler.CheckStatus)
		connect.POST("/save-merchant", rl("connect"), connectHandler.SaveMerchant)
	}

	// --- Ticket orders (buyer JWT) ---
	paymentHandler := NewPaymentHandler(deps.OrderSvc)
	payment := r.Group("/payment", auth)
	{
		payment.POST("/create-paypal-order", rl("orders"), paymentHandler.CreateOrder)
		payment.POST("/capture-paypal-order", rl("orders"), paymentHandler.CaptureOrder)
	}

	// --- Wallet & payouts (organizer JWT) ---
	walletHandler := NewWalletHandler(deps.WalletSvc, deps.PayoutSvc)
	r.GET("/wallet", auth, organizerOnly, rl("wallet"), walletHandler.GetWallet)
	r.GET("/transactions", auth, organizerOnly, rl("wallet"), walletHandler.ListTransactions)
	r.POST("/wallet/request-payout", auth, organizerOnly, rl("payout"), walletHandler.RequestPayout)

	// --- Provider webhooks (signature-verified, no JWT) ---
	webhookHandler := NewWebhookHandler(deps.WebhookSvc)
	r.POST("/webhook/paypal-webhook", rl("webhook"), webhookHandler.HandlePayPalWebhook)

	return r
}
