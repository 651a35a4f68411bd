package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"mandale/internal/database"
	"mandale/internal/handlers"
	"mandale/internal/middleware"
	"mandale/internal/repositories"
	"mandale/internal/services"
	"mandale/pkg/idempotency"
	"mandale/pkg/wallet"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const webhookSecret = "test_webhook_secret"

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

// setupApp builds the full API on a private in-memory SQLite database.
func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := database.Open("sqlite", dsn)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	userRepo := repositories.NewGORMUserRepository(db)
	productRepo := repositories.NewGORMProductRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	shipmentRepo := repositories.NewGORMShipmentRepository(db)

	authService := services.NewAuthService(userRepo, productRepo, "test_jwt_secret", time.Hour)
	productService := services.NewProductService(productRepo, nil)
	negotiationService := services.NewNegotiationService(productRepo, repositories.NewGORMQuestionRepository(db), repositories.NewGORMOfferRepository(db), nil)
	paymentService := services.NewPaymentService(userRepo, wallet.NewSimulator(0), nil)
	shippingService := services.NewShippingService(productRepo, orderRepo, shipmentRepo, nil, webhookSecret)
	checkoutService := services.NewCheckoutService(productRepo, orderRepo, paymentService, shippingService, idempotency.NewMemoryStore(time.Hour), nil)
	orderService := services.NewOrderService(orderRepo, shipmentRepo, nil)
	ratingService := services.NewRatingService(repositories.NewGORMRatingRepository(db), orderRepo, userRepo)
	messagingService := services.NewMessagingService(repositories.NewGORMMessageRepository(db), userRepo, orderRepo, nil)

	validate := validator.New()
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler})
	api := app.Group("/api")
	authRequired := middleware.AuthRequired(authService)

	handlers.NewAuthHandler(authService, validate).RegisterRoutes(api, authRequired)
	handlers.NewProductHandler(productService, validate).RegisterRoutes(api, authRequired)
	handlers.NewNegotiationHandler(negotiationService, validate).RegisterRoutes(api, authRequired)
	handlers.NewOrderHandler(checkoutService, orderService, validate).RegisterRoutes(api, authRequired)
	handlers.NewPaymentHandler(paymentService, validate).RegisterRoutes(api, authRequired)
	handlers.NewShippingHandler(shippingService, validate).RegisterRoutes(api, authRequired)
	handlers.NewRatingHandler(ratingService, validate).RegisterRoutes(api, authRequired)
	handlers.NewMessageHandler(messagingService, validate).RegisterRoutes(api, authRequired)
	app.Use(middleware.NotFound)

	return app
}

// doRequest sends a JSON request and decodes the JSON answer into out when
// out is not nil.
func doRequest(t *testing.T, app *fiber.App, method, path, token string, body interface{}, out interface{}, headers ...string) int {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

// registerUser registers email and returns its token and user id.
func registerUser(t *testing.T, app *fiber.App, email string) (string, string) {
	t.Helper()
	var result struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	status := doRequest(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    email,
		"password": "password123",
		"name":     "Test User",
	}, &result)
	require.Equal(t, http.StatusCreated, status)
	require.NotEmpty(t, result.Token)
	return result.Token, result.User.ID
}

func createProduct(t *testing.T, app *fiber.App, token string, price float64, stock int) string {
	t.Helper()
	var product map[string]interface{}
	status := doRequest(t, app, http.MethodPost, "/api/products/", token, map[string]interface{}{
		"title":     "Campera de cuero",
		"price":     price,
		"category":  "ropa",
		"condition": "Used",
		"stock":     stock,
		"weight_kg": 1.2,
	}, &product)
	require.Equal(t, http.StatusCreated, status)
	return product["id"].(string)
}

func TestAuthRoutes(t *testing.T) {
	app := setupApp(t)
	token, _ := registerUser(t, app, "ana@example.com")

	t.Run("DuplicateEmail", func(t *testing.T) {
		var body map[string]interface{}
		status := doRequest(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
			"email":    "ANA@example.com",
			"password": "password123",
		}, &body)
		assert.Equal(t, http.StatusConflict, status)
		assert.Contains(t, body["message"], "already registered")
	})

	t.Run("InvalidBody", func(t *testing.T) {
		var body map[string]interface{}
		status := doRequest(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
			"password": "123",
		}, &body)
		assert.Equal(t, http.StatusBadRequest, status)
		fields := body["errors"].(map[string]interface{})
		assert.Contains(t, fields, "Email")
		assert.Contains(t, fields, "Password")
	})

	t.Run("WrongPassword", func(t *testing.T) {
		status := doRequest(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email":    "ana@example.com",
			"password": "wrong-password",
		}, nil)
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("Login", func(t *testing.T) {
		var body map[string]interface{}
		status := doRequest(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email":    "ana@example.com",
			"password": "password123",
		}, &body)
		assert.Equal(t, http.StatusOK, status)
		assert.NotEmpty(t, body["token"])
		assert.NotContains(t, body["user"], "password")
	})

	t.Run("Profile", func(t *testing.T) {
		var profile map[string]interface{}
		status := doRequest(t, app, http.MethodPut, "/api/auth/me", token, map[string]string{
			"name":       "Ana García",
			"city":       "Rosario",
			"store_name": "Ana Store",
		}, &profile)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "Ana García", profile["name"])

		profile = nil
		status = doRequest(t, app, http.MethodGet, "/api/auth/me", token, nil, &profile)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "ana", profile["username"])
		assert.Equal(t, "Rosario", profile["city"])
		assert.Len(t, profile["wallets"], 3)
	})

	t.Run("MissingToken", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, doRequest(t, app, http.MethodGet, "/api/auth/me", "", nil, nil))
		assert.Equal(t, http.StatusUnauthorized, doRequest(t, app, http.MethodGet, "/api/auth/me", "not-a-jwt", nil, nil))
	})
}

func TestProductRoutes(t *testing.T) {
	app := setupApp(t)
	sellerToken, sellerID := registerUser(t, app, "seller@example.com")
	strangerToken, _ := registerUser(t, app, "stranger@example.com")
	productID := createProduct(t, app, sellerToken, 1000, 2)

	var products []map[string]interface{}
	status := doRequest(t, app, http.MethodGet, "/api/products/?category=ropa", "", nil, &products)
	assert.Equal(t, http.StatusOK, status)
	require.Len(t, products, 1)
	assert.Equal(t, sellerID, products[0]["owner_id"])

	var product map[string]interface{}
	status = doRequest(t, app, http.MethodGet, "/api/products/"+productID, "", nil, &product)
	assert.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, product["views"])

	update := map[string]interface{}{
		"title":     "Campera de cuero negra",
		"price":     900,
		"category":  "ropa",
		"condition": "Used",
		"stock":     2,
	}
	assert.Equal(t, http.StatusForbidden, doRequest(t, app, http.MethodPut, "/api/products/"+productID, strangerToken, update, nil))

	product = nil
	status = doRequest(t, app, http.MethodPut, "/api/products/"+productID, sellerToken, update, &product)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Campera de cuero negra", product["title"])

	var mine []map[string]interface{}
	status = doRequest(t, app, http.MethodGet, "/api/products/mine", sellerToken, nil, &mine)
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, mine, 1)

	assert.Equal(t, http.StatusOK, doRequest(t, app, http.MethodDelete, "/api/products/"+productID, sellerToken, nil, nil))
	assert.Equal(t, http.StatusNotFound, doRequest(t, app, http.MethodGet, "/api/products/"+productID, "", nil, nil))
}

func TestNegotiationRoutes(t *testing.T) {
	app := setupApp(t)
	sellerToken, _ := registerUser(t, app, "seller@example.com")
	buyerToken, _ := registerUser(t, app, "buyer@example.com")
	productID := createProduct(t, app, sellerToken, 1000, 1)

	t.Run("Questions", func(t *testing.T) {
		var question map[string]interface{}
		status := doRequest(t, app, http.MethodPost, "/api/questions/crear", buyerToken, map[string]string{
			"product_id": productID,
			"question":   "¿Tiene detalles?",
		}, &question)
		require.Equal(t, http.StatusCreated, status)
		questionID := question["id"].(string)

		answer := map[string]string{"answer": "Ninguno"}
		assert.Equal(t, http.StatusForbidden, doRequest(t, app, http.MethodPost, "/api/questions/"+questionID+"/responder", buyerToken, answer, nil))
		assert.Equal(t, http.StatusOK, doRequest(t, app, http.MethodPost, "/api/questions/"+questionID+"/responder", sellerToken, answer, nil))
		assert.Equal(t, http.StatusConflict, doRequest(t, app, http.MethodPost, "/api/questions/"+questionID+"/responder", sellerToken, answer, nil))

		var questions []map[string]interface{}
		status = doRequest(t, app, http.MethodGet, "/api/questions/producto/"+productID, "", nil, &questions)
		assert.Equal(t, http.StatusOK, status)
		require.Len(t, questions, 1)
		assert.Equal(t, "Ninguno", questions[0]["answer"])
	})

	t.Run("Offers", func(t *testing.T) {
		tooHigh := map[string]interface{}{"product_id": productID, "offered_price": 1200}
		assert.Equal(t, http.StatusBadRequest, doRequest(t, app, http.MethodPost, "/api/offers/crear", buyerToken, tooHigh, nil))

		var offer map[string]interface{}
		status := doRequest(t, app, http.MethodPost, "/api/offers/crear", buyerToken, map[string]interface{}{
			"product_id":    productID,
			"offered_price": 800,
			"message":       "¿Lo dejás en 800?",
		}, &offer)
		require.Equal(t, http.StatusCreated, status)
		offerID := offer["id"].(string)

		assert.Equal(t, http.StatusForbidden, doRequest(t, app, http.MethodGet, "/api/offers/producto/"+productID, buyerToken, nil, nil))
		assert.Equal(t, http.StatusBadRequest, doRequest(t, app, http.MethodPost, "/api/offers/"+offerID+"/responder", sellerToken, map[string]string{"action": "maybe"}, nil))

		offer = nil
		status = doRequest(t, app, http.MethodPost, "/api/offers/"+offerID+"/responder", sellerToken, map[string]string{"action": "aceptar"}, &offer)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "Accepted", offer["status"])
		assert.Equal(t, http.StatusConflict, doRequest(t, app, http.MethodPost, "/api/offers/"+offerID+"/responder", sellerToken, map[string]string{"action": "reject"}, nil))

		var product map[string]interface{}
		doRequest(t, app, http.MethodGet, "/api/products/"+productID, "", nil, &product)
		assert.EqualValues(t, 800, product["price"])
	})
}

func TestCheckoutRoutes(t *testing.T) {
	app := setupApp(t)
	sellerToken, _ := registerUser(t, app, "seller@example.com")
	buyerToken, buyerID := registerUser(t, app, "buyer@example.com")
	productID := createProduct(t, app, sellerToken, 500, 3)

	order := map[string]interface{}{
		"product_id":       productID,
		"quantity":         1,
		"payment_method":   "lemon",
		"delivery_address": "Av. Siempreviva 742",
	}

	t.Run("DisconnectedWallet", func(t *testing.T) {
		lemon := map[string]string{"type": "lemon", "account": "lemon-123"}
		require.Equal(t, http.StatusOK, doRequest(t, app, http.MethodPost, "/api/payments/conectar-billetera", buyerToken, lemon, nil))
		require.Equal(t, http.StatusOK, doRequest(t, app, http.MethodPost, "/api/payments/desconectar-billetera", buyerToken, lemon, nil))

		var body map[string]interface{}
		status := doRequest(t, app, http.MethodPost, "/api/orders/crear", buyerToken, order, &body)
		assert.Equal(t, http.StatusPaymentRequired, status)
		assert.Contains(t, body["message"], "not connected")
	})

	t.Run("Purchase", func(t *testing.T) {
		var connected struct {
			Wallets map[string]map[string]interface{} `json:"wallets"`
		}
		status := doRequest(t, app, http.MethodPost, "/api/payments/conectar-billetera", buyerToken, map[string]string{"type": "lemon", "account": "lemon-123"}, &connected)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, true, connected.Wallets["lemon"]["active"])

		var result struct {
			Order map[string]interface{} `json:"order"`
		}
		status = doRequest(t, app, http.MethodPost, "/api/orders/crear", buyerToken, order, &result, "Idempotency-Key", "key-1")
		require.Equal(t, http.StatusCreated, status)
		assert.Equal(t, buyerID, result.Order["buyer_id"])
		assert.Equal(t, "Completed", result.Order["status"])
		assert.EqualValues(t, 500, result.Order["total_price"])
		assert.Contains(t, result.Order["transaction_id"], "LEMON-")

		assert.Equal(t, http.StatusConflict, doRequest(t, app, http.MethodPost, "/api/orders/crear", buyerToken, order, nil, "Idempotency-Key", "key-1"))

		var product map[string]interface{}
		doRequest(t, app, http.MethodGet, "/api/products/"+productID, "", nil, &product)
		assert.EqualValues(t, 2, product["stock"])

		orderID := result.Order["id"].(string)
		var purchases, sales []map[string]interface{}
		assert.Equal(t, http.StatusOK, doRequest(t, app, http.MethodGet, "/api/orders/mis-compras", buyerToken, nil, &purchases))
		assert.Equal(t, http.StatusOK, doRequest(t, app, http.MethodGet, "/api/orders/mis-ventas", sellerToken, nil, &sales))
		assert.Len(t, purchases, 1)
		assert.Len(t, sales, 1)

		assert.Equal(t, http.StatusForbidden, doRequest(t, app, http.MethodPatch, "/api/orders/"+orderID+"/estado", buyerToken, map[string]string{"status": "Shipped"}, nil))
		assert.Equal(t, http.StatusOK, doRequest(t, app, http.MethodPatch, "/api/orders/"+orderID+"/estado", sellerToken, map[string]string{"status": "Shipped"}, nil))

		var detail map[string]interface{}
		assert.Equal(t, http.StatusOK, doRequest(t, app, http.MethodGet, "/api/orders/"+orderID, buyerToken, nil, &detail))
		assert.Equal(t, "Shipped", detail["status"])

		var rating map[string]interface{}
		status = doRequest(t, app, http.MethodPost, "/api/ratings/crear", buyerToken, map[string]interface{}{"order_id": orderID, "stars": 5}, &rating)
		assert.Equal(t, http.StatusCreated, status)
	})

	t.Run("OwnProduct", func(t *testing.T) {
		status := doRequest(t, app, http.MethodPost, "/api/orders/crear", sellerToken, order, nil)
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("Cart", func(t *testing.T) {
		var result struct {
			Succeeded int `json:"succeeded"`
			Failed    int `json:"failed"`
		}
		status := doRequest(t, app, http.MethodPost, "/api/orders/checkout", buyerToken, map[string]interface{}{
			"cart": map[string]interface{}{
				"items": []map[string]interface{}{
					{"product_id": productID, "quantity": 1},
					{"product_id": "missing", "quantity": 1},
				},
			},
			"payment_method": "lemon",
		}, &result)
		assert.Equal(t, http.StatusCreated, status)
		assert.Equal(t, 1, result.Succeeded)
		assert.Equal(t, 1, result.Failed)
	})

	t.Run("RequiresToken", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, doRequest(t, app, http.MethodPost, "/api/orders/crear", "", order, nil))
	})
}

func TestPaymentAndShippingRoutes(t *testing.T) {
	app := setupApp(t)
	token, _ := registerUser(t, app, "buyer@example.com")

	var methods struct {
		Methods []map[string]interface{} `json:"methods"`
	}
	assert.Equal(t, http.StatusOK, doRequest(t, app, http.MethodGet, "/api/payments/metodos-disponibles", "", nil, &methods))
	assert.Len(t, methods.Methods, 3)

	assert.Equal(t, http.StatusBadRequest, doRequest(t, app, http.MethodPost, "/api/payments/conectar-billetera", token, map[string]string{"type": "paypal", "account": "x"}, nil))
	assert.Equal(t, http.StatusBadRequest, doRequest(t, app, http.MethodPost, "/api/payments/procesar-pago", token, map[string]interface{}{"type": "lemon", "amount": -5}, nil))

	webhook := map[string]string{"tracking_number": "MOOVA-123", "status": "in_transit"}
	assert.Equal(t, http.StatusForbidden, doRequest(t, app, http.MethodPost, "/api/shipping/webhook", "", webhook, nil, "X-Webhook-Secret", "wrong"))
	assert.Equal(t, http.StatusNotFound, doRequest(t, app, http.MethodPost, "/api/shipping/webhook", "", webhook, nil, "X-Webhook-Secret", webhookSecret))
}

func TestMessageRoutes(t *testing.T) {
	app := setupApp(t)
	sellerToken, sellerID := registerUser(t, app, "seller@example.com")
	buyerToken, _ := registerUser(t, app, "buyer@example.com")

	var message map[string]interface{}
	status := doRequest(t, app, http.MethodPost, "/api/messages/enviar", buyerToken, map[string]string{
		"recipient_id": sellerID,
		"subject":      "Campera",
		"message":      "¿Hacés envíos a Mendoza?",
	}, &message)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, false, message["read"])
	messageID := message["id"].(string)

	missingOrder := map[string]string{"recipient_id": sellerID, "order_id": "missing", "message": "hola"}
	assert.Equal(t, http.StatusNotFound, doRequest(t, app, http.MethodPost, "/api/messages/enviar", buyerToken, missingOrder, nil))
	assert.Equal(t, http.StatusBadRequest, doRequest(t, app, http.MethodPost, "/api/messages/enviar", buyerToken, map[string]string{"recipient_id": sellerID}, nil))

	var inbox []map[string]interface{}
	assert.Equal(t, http.StatusOK, doRequest(t, app, http.MethodGet, "/api/messages/mis-mensajes", sellerToken, nil, &inbox))
	assert.Len(t, inbox, 1)

	assert.Equal(t, http.StatusForbidden, doRequest(t, app, http.MethodPatch, "/api/messages/"+messageID+"/leido", buyerToken, nil, nil))

	message = nil
	status = doRequest(t, app, http.MethodPatch, "/api/messages/"+messageID+"/leido", sellerToken, nil, &message)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, message["read"])

	assert.Equal(t, http.StatusUnauthorized, doRequest(t, app, http.MethodGet, "/api/messages/mis-mensajes", "", nil, nil))
}

func TestUnknownRoute(t *testing.T) {
	app := setupApp(t)
	var body map[string]interface{}
	assert.Equal(t, http.StatusNotFound, doRequest(t, app, http.MethodGet, "/api/nothing-here", "", nil, &body))
	assert.NotEmpty(t, body["message"])
}
