// Package wallet simulates the virtual-wallet payment gateways buyers pay
// with. Each supported provider is one Provider implementation; the set is
// closed.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind identifies a wallet provider.
type Kind string

const (
	MercadoPago Kind = "mercadopago"
	Lemon       Kind = "lemon"
	Brubank     Kind = "brubank"
)

var (
	ErrUnsupportedKind = errors.New("unsupported wallet type")
	ErrInvalidAmount   = errors.New("amount must be greater than zero")
)

// Kinds lists the supported providers in display order.
func Kinds() []Kind {
	return []Kind{MercadoPago, Lemon, Brubank}
}

// ParseKind validates a wallet type coming from a request.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedKind, s)
}

// Method describes a provider for clients choosing how to pay.
type Method struct {
	ID          Kind   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Transaction is the gateway's receipt for a charge.
type Transaction struct {
	ID          string    `json:"id"`
	Kind        Kind      `json:"type"`
	Amount      float64   `json:"amount"`
	Status      string    `json:"status"`
	Message     string    `json:"message"`
	Description string    `json:"description,omitempty"`
	ProcessedAt time.Time `json:"processed_at"`
}

// Provider settles charges for one wallet kind. The unexported method keeps
// implementations inside this package.
type Provider interface {
	Kind() Kind
	Method() Method
	settle(amount float64, account string, at time.Time) Transaction
}

// Simulator stands in for the real gateways: it waits for a fixed latency and
// returns a synthetic transaction namespaced by provider.
type Simulator struct {
	delay     time.Duration
	providers map[Kind]Provider
	now       func() time.Time
}

// NewSimulator returns a Simulator with every supported provider.
func NewSimulator(delay time.Duration) *Simulator {
	providers := make(map[Kind]Provider)
	for _, p := range []Provider{mercadoPago{}, lemon{}, brubank{}} {
		providers[p.Kind()] = p
	}
	return &Simulator{
		delay:     delay,
		providers: providers,
		now:       time.Now,
	}
}

// Methods returns the payment methods offered to buyers.
func (s *Simulator) Methods() []Method {
	methods := make([]Method, 0, len(s.providers))
	for _, k := range Kinds() {
		methods = append(methods, s.providers[k].Method())
	}
	return methods
}

// Charge simulates a payment. It blocks for the configured latency unless ctx
// is done first.
func (s *Simulator) Charge(ctx context.Context, kind Kind, amount float64, account, description string) (*Transaction, error) {
	provider, ok := s.providers[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedKind, kind)
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	tx := provider.settle(amount, account, s.now())
	tx.Description = description
	return &tx, nil
}

func transactionID(prefix string, at time.Time) string {
	return fmt.Sprintf("%s-%d-%s", prefix, at.UnixMilli(), uuid.New().String()[:8])
}
