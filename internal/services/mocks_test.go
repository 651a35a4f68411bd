package services_test

import (
	"context"
	"io"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"mandale/internal/models"
	"mandale/internal/repositories"
	"mandale/internal/services"
	"mandale/pkg/wallet"

	"github.com/stretchr/testify/mock"
)

// TestMain is used to setup test environment
func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	log.SetOutput(io.Discard)
	code := m.Run()
	os.Exit(code)
}

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) user(args mock.Arguments) (*models.User, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return m.user(m.Called(ctx, username))
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.user(m.Called(ctx, email))
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return m.user(m.Called(ctx, id))
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) SaveWallet(ctx context.Context, account *models.WalletAccount) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockUserRepository) ListWallets(ctx context.Context, userID string) ([]models.WalletAccount, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.WalletAccount), args.Error(1)
}

// MockQuestionRepository is a mock implementation of repositories.QuestionRepository
type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) Create(ctx context.Context, question *models.Question) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *MockQuestionRepository) GetByID(ctx context.Context, id string) (*models.Question, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) ListByProduct(ctx context.Context, productID string) ([]models.Question, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).([]models.Question), args.Error(1)
}

func (m *MockQuestionRepository) Answer(ctx context.Context, id, answer, answeredBy string, at time.Time) error {
	args := m.Called(ctx, id, answer, answeredBy, at)
	return args.Error(0)
}

// MockOfferRepository is a mock implementation of repositories.OfferRepository
type MockOfferRepository struct {
	mock.Mock
}

func (m *MockOfferRepository) Create(ctx context.Context, offer *models.Offer) error {
	args := m.Called(ctx, offer)
	return args.Error(0)
}

func (m *MockOfferRepository) GetByID(ctx context.Context, id string) (*models.Offer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Offer), args.Error(1)
}

func (m *MockOfferRepository) ListByProduct(ctx context.Context, productID string) ([]models.Offer, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).([]models.Offer), args.Error(1)
}

func (m *MockOfferRepository) Accept(ctx context.Context, offer *models.Offer, at time.Time) error {
	args := m.Called(ctx, offer, at)
	return args.Error(0)
}

func (m *MockOfferRepository) Reject(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

// MockMessageRepository is a mock implementation of repositories.MessageRepository
type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) Create(ctx context.Context, message *models.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockMessageRepository) GetByID(ctx context.Context, id string) (*models.Message, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

func (m *MockMessageRepository) ListByUser(ctx context.Context, userID string) ([]models.Message, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.Message), args.Error(1)
}

func (m *MockMessageRepository) MarkRead(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockPayer is a mock implementation of services.Payer
type MockPayer struct {
	mock.Mock
}

func (m *MockPayer) ProcessPayment(ctx context.Context, userID string, kind wallet.Kind, amount float64, description string) (*wallet.Transaction, error) {
	args := m.Called(ctx, userID, kind, amount, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.Transaction), args.Error(1)
}

// MockShipper is a mock implementation of services.Shipper
type MockShipper struct {
	mock.Mock
}

func (m *MockShipper) CreateShipment(ctx context.Context, userID string, req services.ShipmentRequest) (*models.Shipment, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Shipment), args.Error(1)
}

// recordingPublisher collects published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(routingKey string, _ []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, routingKey)
	return nil
}

func (p *recordingPublisher) keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

var (
	_ repositories.UserRepository    = (*MockUserRepository)(nil)
	_ repositories.MessageRepository = (*MockMessageRepository)(nil)
)
