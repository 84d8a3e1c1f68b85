package postgres

import "time"

// PaymentModel mirrors the payments table.
type PaymentModel struct {
	Identifier  string
	OrderID     string
	AmountCents int64
	Currency    string
	GatewayName string
	Status      string
	SuccessURL  string
	FailureURL  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// InteractionModel mirrors the interaction_log table.
type InteractionModel struct {
	ID                int64
	PaymentIdentifier string
	Kind              string
	Reference         string
	Payload           string
	CreatedAt         time.Time
}
