package wallet

import "time"

type mercadoPago struct{}

func (mercadoPago) Kind() Kind { return MercadoPago }

func (mercadoPago) Method() Method {
	return Method{ID: MercadoPago, Name: "Mercado Pago", Description: "Paga con tu cuenta de Mercado Pago", Icon: "💳"}
}

func (mercadoPago) settle(amount float64, _ string, at time.Time) Transaction {
	return Transaction{
		ID:          transactionID("MP", at),
		Kind:        MercadoPago,
		Amount:      amount,
		Status:      "approved",
		Message:     "Pago aprobado con MercadoPago",
		ProcessedAt: at,
	}
}

type lemon struct{}

func (lemon) Kind() Kind { return Lemon }

func (lemon) Method() Method {
	return Method{ID: Lemon, Name: "Lemon", Description: "Paga con tu billetera Lemon", Icon: "🍋"}
}

func (lemon) settle(amount float64, _ string, at time.Time) Transaction {
	return Transaction{
		ID:          transactionID("LEMON", at),
		Kind:        Lemon,
		Amount:      amount,
		Status:      "completed",
		Message:     "Pago completado con Lemon",
		ProcessedAt: at,
	}
}

type brubank struct{}

func (brubank) Kind() Kind { return Brubank }

func (brubank) Method() Method {
	return Method{ID: Brubank, Name: "Brubank", Description: "Paga con tu cuenta Brubank", Icon: "🏦"}
}

func (brubank) settle(amount float64, _ string, at time.Time) Transaction {
	return Transaction{
		ID:          transactionID("BRU", at),
		Kind:        Brubank,
		Amount:      amount,
		Status:      "success",
		Message:     "Pago exitoso con Brubank",
		ProcessedAt: at,
	}
}
