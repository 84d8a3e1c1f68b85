package postgres

import "github.com/hostedpay/payflow/internal/domain"

func toPaymentModel(p *domain.Payment) PaymentModel {
	return PaymentModel{
		Identifier:  p.Identifier,
		OrderID:     p.OrderID,
		AmountCents: p.AmountCents,
		Currency:    p.Currency,
		GatewayName: p.GatewayName,
		Status:      string(p.Status),
		SuccessURL:  p.SuccessURL,
		FailureURL:  p.FailureURL,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toPaymentDomain(m PaymentModel) *domain.Payment {
	return &domain.Payment{
		Identifier:  m.Identifier,
		OrderID:     m.OrderID,
		AmountCents: m.AmountCents,
		Currency:    m.Currency,
		GatewayName: m.GatewayName,
		Status:      domain.Status(m.Status),
		SuccessURL:  m.SuccessURL,
		FailureURL:  m.FailureURL,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toInteractionModel(e *domain.InteractionEntry) InteractionModel {
	return InteractionModel{
		ID:                e.ID,
		PaymentIdentifier: e.PaymentIdentifier,
		Kind:              string(e.Kind),
		Reference:         e.Reference,
		Payload:           e.Payload,
		CreatedAt:         e.CreatedAt,
	}
}

func toInteractionDomain(m InteractionModel) *domain.InteractionEntry {
	return &domain.InteractionEntry{
		ID:                m.ID,
		PaymentIdentifier: m.PaymentIdentifier,
		Kind:              domain.EntryKind(m.Kind),
		Reference:         m.Reference,
		Payload:           m.Payload,
		CreatedAt:         m.CreatedAt,
	}
}
