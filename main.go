package main

import (
	"github.com/d-g-Szabo/Club-backend/config"
	"github.com/d-g-Szabo/Club-backend/internal/gateway"
	"github.com/d-g-Szabo/Club-backend/internal/handler"
	"github.com/d-g-Szabo/Club-backend/internal/middleware"
	"github.com/d-g-Szabo/Club-backend/internal/repository"
	"github.com/d-g-Szabo/Club-backend/internal/service"
	"github.com/d-g-Szabo/Club-backend/pkg/database"
	"github.com/d-g-Szabo/Club-backend/pkg/logger"
	"github.com/d-g-Szabo/Club-backend/pkg/rabbitmq"
	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)
	defer log.Sync()

	db := database.NewPostgresDB(cfg.DSN())

	// RabbitMQ publisher: refund/completion events for the ops workflow
	publisher, err := rabbitmq.NewPublisher(cfg.RabbitURL, log)
	if err != nil {
		log.Fatal("failed to connect to RabbitMQ", zap.Error(err))
	}
	defer publisher.Close()

	paypalGw, err := gateway.NewPayPalGateway(
		cfg.PayPalClientID,
		cfg.PayPalSecret,
		cfg.PayPalAPIBase,
		cfg.PayPalWebhookID,
		cfg.PayPalReturnURL,
		cfg.PayPalCancelURL,
	)
	if err != nil {
		log.Fatal("failed to initialize PayPal client", zap.Error(err))
	}

	// Repositories
	sessionRepo := repository.NewSessionRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	// Services
	sessionSvc := service.NewSessionService(sessionRepo)
	bookingSvc := service.NewBookingService(bookingRepo, sessionRepo)
	paymentSvc := service.NewPaymentService(paymentRepo, bookingRepo, bookingSvc, paypalGw, publisher, log)

	// Echo
	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Validator = handler.NewValidator()
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			log.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
			)
			return nil
		},
	}))
	e.Use(echoMw.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok", "service": "club-backend"})
	})

	handler.NewSessionHandler(sessionSvc).RegisterRoutes(e)
	handler.NewBookingHandler(bookingSvc).RegisterRoutes(e)
	handler.NewPaymentHandler(paymentSvc).RegisterRoutes(e)

	log.Info("Club backend starting", zap.String("port", cfg.ServerPort))
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
