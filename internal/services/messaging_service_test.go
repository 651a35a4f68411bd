package services_test

import (
	"context"
	"testing"

	"mandale/internal/errs"
	"mandale/internal/models"
	"mandale/internal/repositories"
	"mandale/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type messagingFixture struct {
	service  *services.MessagingService
	messages *MockMessageRepository
	users    *MockUserRepository
	order    *models.Order
	events   *recordingPublisher
}

func newMessagingFixture(t *testing.T) *messagingFixture {
	t.Helper()
	orders := repositories.NewMockOrderRepository()
	f := &messagingFixture{
		messages: new(MockMessageRepository),
		users:    new(MockUserRepository),
		order:    &models.Order{ProductID: "p-1", BuyerID: "buyer", SellerID: "seller", Quantity: 1, Status: models.OrderCompleted},
		events:   &recordingPublisher{},
	}
	require.NoError(t, orders.Create(context.Background(), f.order))
	f.service = services.NewMessagingService(f.messages, f.users, orders, f.events)
	return f
}

func TestSendMessageAboutOrder(t *testing.T) {
	ctx := context.Background()
	f := newMessagingFixture(t)
	f.users.On("GetByID", ctx, "seller").Return(&models.User{ID: "seller"}, nil)
	f.messages.On("Create", ctx, mock.AnythingOfType("*models.Message")).Return(nil)

	message, err := f.service.Send(ctx, "buyer", services.MessageRequest{
		RecipientID: "seller",
		OrderID:     f.order.ID,
		Subject:     "Envío",
		Message:     "  ¿Cuándo despachás?  ",
	})
	require.NoError(t, err)
	assert.Equal(t, "buyer", message.SenderID)
	assert.Equal(t, "¿Cuándo despachás?", message.Body)
	require.NotNil(t, message.OrderID)
	assert.Equal(t, f.order.ID, *message.OrderID)
	assert.False(t, message.Read)
	assert.Equal(t, []string{services.EventMessageSent}, f.events.keys())
	f.messages.AssertExpectations(t)
}

func TestSendMessageRejectsStrangerOnOrder(t *testing.T) {
	ctx := context.Background()
	f := newMessagingFixture(t)
	f.users.On("GetByID", ctx, "seller").Return(&models.User{ID: "seller"}, nil)

	_, err := f.service.Send(ctx, "stranger", services.MessageRequest{
		RecipientID: "seller",
		OrderID:     f.order.ID,
		Message:     "hola",
	})
	assert.ErrorIs(t, err, errs.ErrForbidden)
	f.messages.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Empty(t, f.events.keys())
}

func TestSendMessageValidatesRecipientAndOrder(t *testing.T) {
	ctx := context.Background()
	f := newMessagingFixture(t)
	f.users.On("GetByID", ctx, "ghost").Return(nil, errs.NotFound("user with ID ghost not found"))
	f.users.On("GetByID", ctx, "seller").Return(&models.User{ID: "seller"}, nil)

	_, err := f.service.Send(ctx, "buyer", services.MessageRequest{RecipientID: "ghost", Message: "hola"})
	assert.ErrorIs(t, err, errs.ErrNotFound)

	_, err = f.service.Send(ctx, "buyer", services.MessageRequest{RecipientID: "seller", OrderID: "missing", Message: "hola"})
	assert.ErrorIs(t, err, errs.ErrNotFound)

	_, err = f.service.Send(ctx, "buyer", services.MessageRequest{RecipientID: "seller", Message: "   "})
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)
	f.messages.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestMarkReadOnlyByRecipient(t *testing.T) {
	ctx := context.Background()
	f := newMessagingFixture(t)
	f.messages.On("GetByID", ctx, "m-1").Return(&models.Message{ID: "m-1", SenderID: "buyer", RecipientID: "seller"}, nil)
	f.messages.On("MarkRead", ctx, "m-1").Return(nil).Once()

	_, err := f.service.MarkRead(ctx, "buyer", "m-1")
	assert.ErrorIs(t, err, errs.ErrForbidden)
	f.messages.AssertNotCalled(t, "MarkRead", ctx, "m-1")

	message, err := f.service.MarkRead(ctx, "seller", "m-1")
	require.NoError(t, err)
	assert.True(t, message.Read)
	f.messages.AssertExpectations(t)
}

func TestMessagesWithGORMRepository(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMMessageRepository(setupDB(t))
	f := newMessagingFixture(t)
	f.users.On("GetByID", ctx, mock.Anything).Return(&models.User{}, nil)
	service := services.NewMessagingService(repo, f.users, repositories.NewMockOrderRepository(), nil)

	first, err := service.Send(ctx, "buyer", services.MessageRequest{RecipientID: "seller", Message: "primero"})
	require.NoError(t, err)
	_, err = service.Send(ctx, "seller", services.MessageRequest{RecipientID: "buyer", Message: "segundo"})
	require.NoError(t, err)
	_, err = service.Send(ctx, "other", services.MessageRequest{RecipientID: "stranger", Message: "ajeno"})
	require.NoError(t, err)

	mine, err := service.ListMine(ctx, "buyer")
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	_, err = service.MarkRead(ctx, "seller", first.ID)
	require.NoError(t, err)
	stored, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, stored.Read)

	_, err = service.MarkRead(ctx, "seller", "missing")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}
