package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/AMICLONE1/powernetpro/internal/handlers/middleware"
	"github.com/AMICLONE1/powernetpro/internal/logger"
	"github.com/AMICLONE1/powernetpro/internal/models"
	"github.com/AMICLONE1/powernetpro/internal/service/bill"
	"github.com/AMICLONE1/powernetpro/internal/service/subscription"
)

const (
	// Fixed-window limits; bill operations hit external gateways and get a
	// tighter budget than reads
	generalRateLimit = 60
	billRateLimit    = 10
	rateLimitWindow  = time.Minute
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewRouter(
	authService authService,
	billService billService,
	creditService creditService,
	subService subscriptionService,
	logger logger.Logger,
) http.Handler {
	authMiddleware := middleware.AuthMiddleware(authService)
	billLimiter := middleware.NewRateLimiter(billRateLimit, rateLimitWindow).Middleware()

	withAuth := func(h http.Handler) http.Handler {
		return authMiddleware(h)
	}
	withAuthLimited := func(h http.Handler) http.Handler {
		return chain(h, authMiddleware, billLimiter)
	}

	api := http.NewServeMux()

	api.Handle("POST /user/register", handleRegister(authService, logger))
	api.Handle("POST /user/login", handleLogin(authService, logger))
	api.Handle("POST /user/refresh", handleTokenRefresh(authService, logger))
	api.Handle("GET /user/me", withAuth(handleUserMe()))

	api.Handle("POST /subscriptions", withAuth(handleReserveCapacity(subService, logger)))
	api.Handle("GET /subscriptions", withAuth(handleListSubscriptions(subService, logger)))

	api.Handle("POST /bills", withAuthLimited(handleCreateBill(billService, logger)))
	api.Handle("POST /bills/manual", withAuthLimited(handleCreateBill(billService, logger)))
	api.Handle("POST /bills/fetch", withAuthLimited(handleFetchBill(billService, logger)))
	api.Handle("POST /bills/pay", withAuthLimited(handlePayBill(billService, logger)))
	api.Handle("GET /bills", withAuth(handleListBills(billService, logger)))

	api.Handle("POST /payments/verify", withAuthLimited(handleVerifyPayment(billService, logger)))

	api.Handle("GET /credits", withAuth(handleListCredits(creditService, logger)))
	api.Handle("GET /credits/balance", withAuth(handleCreditBalance(creditService, logger)))

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))

	handler := chain(root,
		middleware.LoggerMiddleware(logger),
		middleware.NewRateLimiter(generalRateLimit, rateLimitWindow).Middleware(),
	)

	return handler
}

type authService interface {
	// Register user with username and password
	// Has to return apperrors.ErrUserAlreadyExists if user already exists
	Register(ctx context.Context, username string, password string) (models.TokenPair, error)

	// Login user with username and password
	// Has to return apperrors.ErrUserNotFound if user not found
	Login(ctx context.Context, username string, password string) (models.TokenPair, error)

	// Refresh tokens using refresh token
	// If token expired: has to return apperrors.ErrRefreshTokenExpired
	// If token not found: has to return apperrors.ErrRefreshTokenNotFound
	Refresh(ctx context.Context, refresh string) (models.TokenPair, error)

	// Set auth tokens (access, refresh) to response
	SetTokens(w http.ResponseWriter, pair models.TokenPair)

	// Get refresh token from request
	GetRefresh(r *http.Request) (string, error)

	// Get request and return user if it authenticated or error
	Auth(ctx context.Context, r *http.Request) (models.User, error)
}

type billService interface {
	CreateBill(ctx context.Context, userID uuid.UUID, params bill.CreateBillParams) (models.Bill, error)
	FetchBill(ctx context.Context, userID uuid.UUID, consumerNumber string, discomName string) (models.Bill, error)
	PayBill(ctx context.Context, userID uuid.UUID, billID uuid.UUID) (bill.PayResult, error)
	ConfirmPayment(ctx context.Context, userID uuid.UUID, billID uuid.UUID, orderID string, paymentID string, signature string) (models.Bill, error)
	ListBills(ctx context.Context, userID uuid.UUID) ([]models.Bill, error)
}

type creditService interface {
	ListCredits(ctx context.Context, userID uuid.UUID) ([]models.CreditEntry, error)
	GetBalance(ctx context.Context, userID uuid.UUID) (models.CreditBalance, error)
}

type subscriptionService interface {
	Reserve(ctx context.Context, userID uuid.UUID, params subscription.ReserveParams) (models.Subscription, error)
	ListSubscriptions(ctx context.Context, userID uuid.UUID) ([]models.Subscription, error)
}
