package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/streadway/amqp"

	"mandale/internal/config"
	"mandale/internal/database"
	"mandale/internal/handlers"
	"mandale/internal/middleware"
	"mandale/internal/repositories"
	"mandale/internal/services"
	"mandale/pkg/idempotency"
	"mandale/pkg/rabbitmq"
	"mandale/pkg/wallet"
)

// routeRegistrar is implemented by every handler.
type routeRegistrar interface {
	RegisterRoutes(router fiber.Router, authRequired fiber.Handler)
}

// app bundles the Fiber app with the resources it owns.
type app struct {
	fiber    *fiber.App
	mqClient *rabbitmq.Client
	closers  []func() error
}

// Close releases every resource opened by newApp, in reverse order.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	}
}

// newApp wires repositories, services and handlers from cfg. RabbitMQ and
// Redis are optional: without them events are dropped and idempotency keys
// are kept in memory.
func newApp(cfg *config.Config) (*app, error) {
	a := &app{}

	// --- Database ---
	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	a.closers = append(a.closers, sqlDB.Close)

	if err := database.Migrate(db); err != nil {
		a.Close()
		return nil, err
	}

	// --- RabbitMQ ---
	var publisher services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
		}
		a.mqClient = mqClient
		a.closers = append(a.closers, mqClient.Close)
		publisher = mqClient
	} else {
		log.Println("RABBITMQ_URL not set, domain events are disabled")
	}

	// --- Idempotency keys ---
	var keys services.KeyReserver
	if cfg.RedisURL != "" {
		store, err := idempotency.NewRedisStore(cfg.RedisURL, cfg.IdempotencyTTL)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, store.Close)
		keys = store
	} else {
		keys = idempotency.NewMemoryStore(cfg.IdempotencyTTL)
	}

	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	productRepo := repositories.NewGORMProductRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	questionRepo := repositories.NewGORMQuestionRepository(db)
	offerRepo := repositories.NewGORMOfferRepository(db)
	shipmentRepo := repositories.NewGORMShipmentRepository(db)
	ratingRepo := repositories.NewGORMRatingRepository(db)
	messageRepo := repositories.NewGORMMessageRepository(db)

	// --- Services ---
	authService := services.NewAuthService(userRepo, productRepo, cfg.JWTSecret, cfg.JWTTTL)
	productService := services.NewProductService(productRepo, publisher)
	negotiationService := services.NewNegotiationService(productRepo, questionRepo, offerRepo, publisher)
	paymentService := services.NewPaymentService(userRepo, wallet.NewSimulator(cfg.PaymentDelay), publisher)
	shippingService := services.NewShippingService(productRepo, orderRepo, shipmentRepo, publisher, cfg.ShippingWebhookSecret)
	checkoutService := services.NewCheckoutService(productRepo, orderRepo, paymentService, shippingService, keys, publisher)
	orderService := services.NewOrderService(orderRepo, shipmentRepo, publisher)
	ratingService := services.NewRatingService(ratingRepo, orderRepo, userRepo)
	messagingService := services.NewMessagingService(messageRepo, userRepo, orderRepo, publisher)

	if cfg.SeedDemoData {
		seedDemoData(authService, productService)
	}

	// --- Handlers ---
	validate := validator.New()
	routes := []routeRegistrar{
		handlers.NewAuthHandler(authService, validate),
		handlers.NewProductHandler(productService, validate),
		handlers.NewNegotiationHandler(negotiationService, validate),
		handlers.NewOrderHandler(checkoutService, orderService, validate),
		handlers.NewPaymentHandler(paymentService, validate),
		handlers.NewShippingHandler(shippingService, validate),
		handlers.NewRatingHandler(ratingService, validate),
		handlers.NewMessageHandler(messagingService, validate),
	}

	// --- Fiber ---
	a.fiber = fiber.New(fiber.Config{
		AppName:      "Mandale API",
		ErrorHandler: middleware.ErrorHandler,
	})
	middleware.SetupMiddleware(a.fiber, cfg.CORSAllowOrigins)

	a.fiber.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"rabbitmq": a.mqClient != nil,
		})
	})

	api := a.fiber.Group("/api")
	authRequired := middleware.AuthRequired(authService)
	for _, r := range routes {
		r.RegisterRoutes(api, authRequired)
	}

	a.fiber.Use(middleware.NotFound)
	return a, nil
}

// logEvent is the consumer of the events queue. It only logs; a delivery
// that is not JSON is rejected.
func logEvent(msg amqp.Delivery) error {
	if !json.Valid(msg.Body) {
		return fmt.Errorf("event %s has an invalid JSON body", msg.RoutingKey)
	}
	log.Printf("Received %s event (tag %d): %s", msg.RoutingKey, msg.DeliveryTag, msg.Body)
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	a, err := newApp(cfg)
	if err != nil {
		log.Fatalf("Failed to create app: %v", err)
	}
	defer a.Close()

	if a.mqClient != nil {
		if err := a.mqClient.ConsumeEvents(logEvent); err != nil {
			log.Printf("Failed to start RabbitMQ consumer: %v", err)
		}
	}

	log.Printf("Starting server on port %s", cfg.AppPort)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := a.fiber.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := a.fiber.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}
