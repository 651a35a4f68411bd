package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mandale/internal/errs"
	"mandale/internal/models"
	"mandale/internal/repositories"
	"mandale/pkg/wallet"
)

// PaymentGateway charges a wallet. *wallet.Simulator implements it.
type PaymentGateway interface {
	Charge(ctx context.Context, kind wallet.Kind, amount float64, account, description string) (*wallet.Transaction, error)
	Methods() []wallet.Method
}

// PaymentService keeps the wallet bookkeeping of users and charges them
// through the gateway.
type PaymentService struct {
	userRepo  repositories.UserRepository
	gateway   PaymentGateway
	publisher EventPublisher
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(userRepo repositories.UserRepository, gateway PaymentGateway, publisher EventPublisher) *PaymentService {
	return &PaymentService{
		userRepo:  userRepo,
		gateway:   gateway,
		publisher: publisher,
	}
}

func parseWalletKind(s string) (wallet.Kind, error) {
	kind, err := wallet.ParseKind(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return "", errs.InvalidArgument("invalid wallet type %q", s)
	}
	return kind, nil
}

// ConnectWallet activates a wallet for userID with the given account.
func (s *PaymentService) ConnectWallet(ctx context.Context, userID, kind, account string) (map[wallet.Kind]models.WalletState, error) {
	k, err := parseWalletKind(kind)
	if err != nil {
		return nil, err
	}
	account = strings.TrimSpace(account)
	if account == "" {
		return nil, errs.InvalidArgument("an account number is required")
	}

	err = s.userRepo.SaveWallet(ctx, &models.WalletAccount{UserID: userID, Provider: k, Active: true, Account: account})
	if err != nil {
		return nil, err
	}

	publishEvent(s.publisher, EventWalletConnected, map[string]interface{}{
		"userID":   userID,
		"provider": k,
	})
	return s.ListWallets(ctx, userID)
}

// DisconnectWallet deactivates a wallet and forgets its account.
func (s *PaymentService) DisconnectWallet(ctx context.Context, userID, kind string) (map[wallet.Kind]models.WalletState, error) {
	k, err := parseWalletKind(kind)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.SaveWallet(ctx, &models.WalletAccount{UserID: userID, Provider: k}); err != nil {
		return nil, err
	}
	return s.ListWallets(ctx, userID)
}

// ListWallets returns the state of every provider for userID.
func (s *PaymentService) ListWallets(ctx context.Context, userID string) (map[wallet.Kind]models.WalletState, error) {
	accounts, err := s.userRepo.ListWallets(ctx, userID)
	if err != nil {
		return nil, err
	}
	return models.WalletMap(accounts), nil
}

// AvailableMethods lists the supported payment methods.
func (s *PaymentService) AvailableMethods() []wallet.Method {
	return s.gateway.Methods()
}

// ProcessPayment charges amount to the user's wallet of the given kind. The
// wallet must be connected and active.
func (s *PaymentService) ProcessPayment(ctx context.Context, userID string, kind wallet.Kind, amount float64, description string) (*wallet.Transaction, error) {
	if amount <= 0 {
		return nil, errs.InvalidArgument("amount must be greater than zero")
	}

	accounts, err := s.userRepo.ListWallets(ctx, userID)
	if err != nil {
		return nil, err
	}
	state, ok := models.WalletMap(accounts)[kind]
	if !ok {
		return nil, errs.InvalidArgument("invalid wallet type %q", kind)
	}
	if !state.Active {
		return nil, errs.PaymentRejected(nil, "the %s wallet is not connected", kind)
	}

	tx, err := s.gateway.Charge(ctx, kind, amount, state.Account, description)
	if err != nil {
		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil, fmt.Errorf("payment with %s interrupted: %w", kind, err)
		case errors.Is(err, wallet.ErrUnsupportedKind), errors.Is(err, wallet.ErrInvalidAmount):
			return nil, errs.InvalidArgument("%v", err)
		}
		return nil, errs.PaymentRejected(err, "payment with %s failed", kind)
	}

	publishEvent(s.publisher, EventPaymentProcessed, map[string]interface{}{
		"userID":        userID,
		"transactionID": tx.ID,
		"provider":      kind,
		"amount":        amount,
	})
	return tx, nil
}
