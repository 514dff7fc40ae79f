package router

import (
	"time"

	"learnhub/config"
	"learnhub/internal/domain"
	"learnhub/internal/handler"
	"learnhub/internal/middleware"
	"learnhub/internal/repository"
	"learnhub/internal/service"
	"learnhub/pkg/currency"
	"learnhub/pkg/payment"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, logger *zap.Logger) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewSlidingWindowLimiter(100, 60*time.Second)))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)

	// Optional exchange-rate cache
	var rateCache *redis.Client
	if cfg.Redis.Addr != "" {
		rateCache = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		logger.Info("exchange-rate cache enabled", zap.String("addr", cfg.Redis.Addr))
	}
	converter := currency.NewConverter(cfg.Exchange.BaseURL, rateCache, cfg.Exchange.CacheTTL, logger)

	// Processor adapters; the stub stands in when a key is unset so
	// local development works without live credentials.
	providers := map[string]payment.Provider{}
	if cfg.Stripe.SecretKey != "" {
		providers[domain.MethodCard] = payment.NewStripeProvider(cfg.Stripe.SecretKey, cfg.Stripe.Mode, logger)
	} else {
		logger.Warn("STRIPE_SECRET_KEY unset, card payments use the stub provider")
		providers[domain.MethodCard] = &payment.StubProvider{}
	}
	if cfg.Paystack.SecretKey != "" {
		providers[domain.MethodMobileBank] = payment.NewPaystackProvider(cfg.Paystack.BaseURL, cfg.Paystack.SecretKey, logger)
	} else {
		logger.Warn("PAYSTACK_SECRET_KEY unset, mobile/bank payments use the stub provider")
		providers[domain.MethodMobileBank] = &payment.StubProvider{}
	}

	// Services
	authSvc := service.NewAuthService(cfg, userRepo)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, logger)
	paymentSvc := service.NewPaymentService(
		paymentRepo,
		courseRepo,
		enrollmentSvc,
		providers,
		converter,
		cfg.Paystack.Currency,
		cfg.Server.ClientBaseURL,
		logger,
	)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	courseHandler := handler.NewCourseHandler(courseRepo)
	paymentHandler := handler.NewPaymentHandler(paymentSvc)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc)

	authMw := middleware.AuthRequired(&cfg.JWT)

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}

		api.GET("/courses", courseHandler.List)
		api.GET("/courses/:id", courseHandler.Get)

		payments := api.Group("/payments")
		payments.Use(authMw)
		{
			payments.POST("/initiate", paymentHandler.Initiate)
			payments.POST("/verify", paymentHandler.Verify)
		}

		me := api.Group("/me")
		me.Use(authMw)
		{
			me.GET("/enrollments", enrollmentHandler.ListMine)
			me.GET("/payments", paymentHandler.ListMine)
		}
	}

	return r
}
